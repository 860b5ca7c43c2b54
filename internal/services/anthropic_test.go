package services_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/basedoracle/oracle-web-ui/internal/models"
	"github.com/basedoracle/oracle-web-ui/internal/services"
)

func TestAnthropicChatStreams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("x-api-key"); got != "test-key" {
			t.Errorf("x-api-key header = %q, want %q", got, "test-key")
		}
		if got := r.Header.Get("anthropic-version"); got == "" {
			t.Error("anthropic-version header should be set")
		}

		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte("event: content_block_delta\n" +
			`data: {"type":"content_block_delta","delta":{"text":"Base is "}}` + "\n\n" +
			"event: content_block_delta\n" +
			`data: {"type":"content_block_delta","delta":{"text":"a Layer 2."}}` + "\n\n" +
			"event: message_stop\ndata: {}\n\n"))
	}))
	defer srv.Close()

	a := services.NewAnthropicWithEndpoint("test-key", "claude-3-5-haiku-latest", "prompt", srv.URL, services.GenParams{})

	var sb strings.Builder
	for fragment, err := range a.Chat(context.Background(), []models.Message{newMessage(models.RoleUser, "What is Base?")}) {
		if err != nil {
			t.Fatalf("Chat() yielded error = %v", err)
		}
		sb.WriteString(fragment)
	}

	if got := sb.String(); got != "Base is a Layer 2." {
		t.Errorf("Chat() concatenation = %q, want %q", got, "Base is a Layer 2.")
	}
}

func TestAnthropicChatUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`))
	}))
	defer srv.Close()

	a := services.NewAnthropicWithEndpoint("bad-key", "claude-3-5-haiku-latest", "prompt", srv.URL, services.GenParams{})

	var got error
	for _, err := range a.Chat(context.Background(), []models.Message{newMessage(models.RoleUser, "hi")}) {
		if err != nil {
			got = err
			break
		}
	}

	if got == nil {
		t.Fatal("Chat() against a failing upstream should yield an error, not an empty stream")
	}
	if !strings.Contains(got.Error(), "invalid x-api-key") {
		t.Errorf("Chat() error = %v, want it to carry the upstream message", got)
	}
}

func TestAnthropicGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"Base is "},{"type":"text","text":"a Layer 2."}]}`))
	}))
	defer srv.Close()

	a := services.NewAnthropicWithEndpoint("test-key", "claude-3-5-haiku-latest", "prompt", srv.URL, services.GenParams{})

	got, err := a.Generate(context.Background(), []models.Message{newMessage(models.RoleUser, "What is Base?")})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != "Base is a Layer 2." {
		t.Errorf("Generate() = %q, want %q", got, "Base is a Layer 2.")
	}
}
