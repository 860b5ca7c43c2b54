package services

import (
	"context"
	"time"

	"github.com/basedoracle/oracle-web-ui/internal/models"
)

// MockData serves the dashboard cards that are not yet backed by a real ingestion pipeline:
// analytics metrics and social feeds. It satisfies the same provider interfaces a real data
// source would, so swapping in live integrations leaves the handlers untouched.
type MockData struct{}

// NewMockData creates a MockData provider.
func NewMockData() MockData {
	return MockData{}
}

func analyticsPayloads() map[string]models.AnalyticsMetric {
	return map[string]models.AnalyticsMetric{
		"tvl": {
			Current:   2_140_000_000,
			Change24h: 5.2,
			Change7d:  12.5,
			History: []models.MetricPoint{
				{Date: "2024-01-09", Value: 2_030_000_000},
				{Date: "2024-01-10", Value: 2_050_000_000},
				{Date: "2024-01-11", Value: 2_100_000_000},
				{Date: "2024-01-12", Value: 2_140_000_000},
			},
		},
		"users": {
			Current:   450_000,
			Change24h: 3.2,
			Change7d:  15.8,
		},
		"transactions": {
			Current:   15_000_000,
			Change24h: 8.5,
			Change7d:  22.3,
		},
		"gasPrice": {
			Current:   15,
			Unit:      "gwei",
			Change24h: -5.2,
		},
	}
}

// Metric returns the payload for the named metric. Unknown names fall back to tvl; the resolved
// name is returned alongside the payload.
func (MockData) Metric(_ context.Context, name string) (string, models.AnalyticsMetric, error) {
	payloads := analyticsPayloads()
	if metric, ok := payloads[name]; ok {
		return name, metric, nil
	}
	return name, payloads["tvl"], nil
}

func socialFeeds(now time.Time) map[string][]models.SocialPost {
	return map[string][]models.SocialPost{
		"base": {
			{
				ID:         "1",
				Platform:   "twitter",
				Author:     "Base Protocol",
				Content:    "Base ecosystem growing strong with $2B+ TVL",
				Timestamp:  now.Add(-1 * time.Hour),
				Engagement: models.Engagement{Likes: 1500, Retweets: 300},
				URL:        "https://twitter.com/base/status/1",
			},
			{
				ID:         "2",
				Platform:   "farcaster",
				Author:     "base.eth",
				Content:    "New dApps launching on Base daily",
				Timestamp:  now.Add(-2 * time.Hour),
				Engagement: models.Engagement{Likes: 800},
				URL:        "https://warpcast.com/~base",
			},
		},
		"defi": {
			{
				ID:         "3",
				Platform:   "twitter",
				Author:     "DeFi Alerts",
				Content:    "ETH crossed $2500 - largest daily gain in 2 weeks",
				Timestamp:  now.Add(-30 * time.Minute),
				Engagement: models.Engagement{Likes: 2300},
				URL:        "https://twitter.com/defi",
			},
		},
		"trending": {
			{
				ID:         "4",
				Platform:   "farcaster",
				Author:     "Crypto News",
				Content:    "Bitcoin ecosystem expands with new protocols",
				Timestamp:  now.Add(-45 * time.Minute),
				Engagement: models.Engagement{Likes: 5000},
				URL:        "https://warpcast.com/~trending",
			},
		},
	}
}

// Feed returns up to limit posts for the given feed type. Unknown types fall back to the base
// feed; the requested type is echoed back for the response body.
func (MockData) Feed(_ context.Context, feedType string, limit int) (string, []models.SocialPost, error) {
	feeds := socialFeeds(time.Now())

	posts, ok := feeds[feedType]
	if !ok {
		posts = feeds["base"]
	}

	if limit > 0 && len(posts) > limit {
		posts = posts[:limit]
	}
	return feedType, posts, nil
}

// Transcribe is a placeholder for speech-to-text processing. It returns a fixed transcription
// with the caller's language echoed back.
func (MockData) Transcribe(_ context.Context, _, language string) (models.Transcription, error) {
	return models.Transcription{
		Transcription: "Voice transcription would be processed here",
		Confidence:    0.95,
		Language:      language,
		Timestamp:     time.Now(),
	}, nil
}
