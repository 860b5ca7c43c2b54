package services

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/basedoracle/oracle-web-ui/internal/models"
	"github.com/ollama/ollama/api"
)

// Ollama provides an implementation of the LLM interface for interacting with Ollama's language
// models. It manages connections to an Ollama server instance and handles both streaming and
// blocking chat completions.
type Ollama struct {
	host         string
	model        string
	systemPrompt string

	params GenParams

	client *api.Client
}

// NewOllama creates a new Ollama instance with the specified host URL and model name. The host
// parameter should be a valid URL pointing to an Ollama server. If the provided host URL is
// invalid, the function will panic.
func NewOllama(host, model, systemPrompt string, params GenParams) Ollama {
	u, err := url.Parse(host)
	if err != nil {
		panic(err)
	}

	return Ollama{
		host:         host,
		model:        model,
		systemPrompt: systemPrompt,
		params:       params.Normalize(),
		client:       api.NewClient(u, &http.Client{}),
	}
}

func (o Ollama) chatRequest(messages []models.Message, stream bool) *api.ChatRequest {
	msgs := make([]api.Message, 0, len(messages))
	for _, msg := range messages {
		if msg.Content == "" {
			continue
		}
		msgs = append(msgs, api.Message{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}
	msgs = slices.Insert(msgs, 0, api.Message{
		Role:    "system",
		Content: o.systemPrompt,
	})

	return &api.ChatRequest{
		Model:    o.model,
		Messages: msgs,
		Stream:   &stream,
		Options: map[string]any{
			"temperature": o.params.Temperature,
			"num_predict": o.params.MaxTokens,
		},
	}
}

// Chat implements the LLM interface by streaming responses from the Ollama model. The function
// returns an iterator that yields response fragments as strings and potential errors. The response
// is streamed incrementally, allowing for real-time processing of model outputs.
func (o Ollama) Chat(ctx context.Context, messages []models.Message) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		req := o.chatRequest(messages, true)

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		if err := o.client.Chat(ctx, req, func(res api.ChatResponse) error {
			if !yield(res.Message.Content, nil) {
				cancel()
			}
			return nil
		}); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			yield("", fmt.Errorf("error sending request: %w", err))
		}
	}
}

// Generate returns the full response text for the given conversation in one blocking call.
func (o Ollama) Generate(ctx context.Context, messages []models.Message) (string, error) {
	req := o.chatRequest(messages, false)

	var sb strings.Builder
	if err := o.client.Chat(ctx, req, func(res api.ChatResponse) error {
		sb.WriteString(res.Message.Content)
		return nil
	}); err != nil {
		return "", fmt.Errorf("error sending request: %w", err)
	}

	return sb.String(), nil
}
