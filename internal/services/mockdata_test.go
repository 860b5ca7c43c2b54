package services_test

import (
	"context"
	"testing"

	"github.com/basedoracle/oracle-web-ui/internal/services"
)

func TestMockDataMetric(t *testing.T) {
	md := services.NewMockData()
	ctx := context.Background()

	tests := []struct {
		name        string
		wantName    string
		wantCurrent float64
		wantUnit    string
	}{
		{name: "tvl", wantName: "tvl", wantCurrent: 2_140_000_000},
		{name: "users", wantName: "users", wantCurrent: 450_000},
		{name: "transactions", wantName: "transactions", wantCurrent: 15_000_000},
		{name: "gasPrice", wantName: "gasPrice", wantCurrent: 15, wantUnit: "gwei"},
		{name: "unknown-metric", wantName: "unknown-metric", wantCurrent: 2_140_000_000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotName, metric, err := md.Metric(ctx, tt.name)
			if err != nil {
				t.Fatalf("Metric() error = %v", err)
			}
			if gotName != tt.wantName {
				t.Errorf("Metric() name = %q, want %q", gotName, tt.wantName)
			}
			if metric.Current != tt.wantCurrent {
				t.Errorf("Metric() current = %v, want %v", metric.Current, tt.wantCurrent)
			}
			if metric.Unit != tt.wantUnit {
				t.Errorf("Metric() unit = %q, want %q", metric.Unit, tt.wantUnit)
			}
		})
	}
}

func TestMockDataMetricHistory(t *testing.T) {
	md := services.NewMockData()

	_, metric, err := md.Metric(context.Background(), "tvl")
	if err != nil {
		t.Fatalf("Metric() error = %v", err)
	}
	if len(metric.History) == 0 {
		t.Fatal("Metric() tvl history should not be empty")
	}
	last := metric.History[len(metric.History)-1]
	if last.Value != metric.Current {
		t.Errorf("last history value = %v, want the current value %v", last.Value, metric.Current)
	}
}

func TestMockDataFeed(t *testing.T) {
	md := services.NewMockData()
	ctx := context.Background()

	tests := []struct {
		name       string
		feedType   string
		limit      int
		wantPosts  int
		wantAuthor string
	}{
		{name: "base feed", feedType: "base", limit: 10, wantPosts: 2, wantAuthor: "Base Protocol"},
		{name: "defi feed", feedType: "defi", limit: 10, wantPosts: 1, wantAuthor: "DeFi Alerts"},
		{name: "limit applies", feedType: "base", limit: 1, wantPosts: 1, wantAuthor: "Base Protocol"},
		{name: "unknown type falls back to base", feedType: "dogecoin", limit: 10, wantPosts: 2, wantAuthor: "Base Protocol"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotType, posts, err := md.Feed(ctx, tt.feedType, tt.limit)
			if err != nil {
				t.Fatalf("Feed() error = %v", err)
			}
			if gotType != tt.feedType {
				t.Errorf("Feed() type = %q, want %q", gotType, tt.feedType)
			}
			if len(posts) != tt.wantPosts {
				t.Fatalf("Feed() returned %d posts, want %d", len(posts), tt.wantPosts)
			}
			if posts[0].Author != tt.wantAuthor {
				t.Errorf("Feed() first author = %q, want %q", posts[0].Author, tt.wantAuthor)
			}
		})
	}
}

func TestMockDataTranscribe(t *testing.T) {
	md := services.NewMockData()

	got, err := md.Transcribe(context.Background(), "audio-bytes", "es-ES")
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if got.Transcription == "" {
		t.Error("Transcribe() transcription should not be empty")
	}
	if got.Language != "es-ES" {
		t.Errorf("Transcribe() language = %q, want %q", got.Language, "es-ES")
	}
	if got.Confidence <= 0 || got.Confidence > 1 {
		t.Errorf("Transcribe() confidence = %v, want a value in (0, 1]", got.Confidence)
	}
}
