package models_test

import (
	"strings"
	"testing"

	"github.com/basedoracle/oracle-web-ui/internal/models"
)

func TestNewWelcomeMessage(t *testing.T) {
	msg := models.NewWelcomeMessage()

	if msg.ID == "" {
		t.Error("NewWelcomeMessage() ID should not be empty")
	}
	if msg.Role != models.RoleAssistant {
		t.Errorf("NewWelcomeMessage() role = %q, want %q", msg.Role, models.RoleAssistant)
	}
	if !strings.Contains(msg.Content, "Base Oracle") {
		t.Errorf("NewWelcomeMessage() content = %q, should introduce Base Oracle", msg.Content)
	}
	if msg.Timestamp.IsZero() {
		t.Error("NewWelcomeMessage() timestamp should be set")
	}

	other := models.NewWelcomeMessage()
	if msg.ID == other.ID {
		t.Error("NewWelcomeMessage() should mint a fresh ID each time")
	}
}

func TestRenderMarkdown(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "bold list items",
			content: "- **Onchain Analytics** - data\n- **Wallet Intelligence** - wallets",
			want:    []string{"<ul>", "<strong>Onchain Analytics</strong>"},
		},
		{
			name:    "fenced code block",
			content: "```go\nfmt.Println(\"hi\")\n```",
			want:    []string{"<pre", "Println"},
		},
		{
			name:    "gfm table",
			content: "| a | b |\n|---|---|\n| 1 | 2 |",
			want:    []string{"<table>", "<td>1</td>"},
		},
		{
			name:    "plain text",
			content: "just words",
			want:    []string{"<p>just words</p>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := models.RenderMarkdown(tt.content)
			if err != nil {
				t.Fatalf("RenderMarkdown() error = %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("RenderMarkdown() = %q, want it to contain %q", got, want)
				}
			}
		})
	}
}
