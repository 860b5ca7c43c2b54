package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"

	"github.com/basedoracle/oracle-web-ui/internal/models"
	"github.com/tmaxmax/go-sse"
)

// Anthropic provides an interface to the Anthropic API for large language model interactions. It
// implements the LLM interface and handles both streaming and blocking chat completions using
// Claude models.
type Anthropic struct {
	apiKey       string
	model        string
	systemPrompt string
	endpoint     string

	params GenParams

	client *http.Client
}

type anthropicChatRequest struct {
	Model       string             `json:"model"`
	Messages    []anthropicMessage `json:"messages"`
	System      string             `json:"system,omitempty"`
	MaxTokens   int                `json:"max_tokens,omitempty"`
	Temperature float32            `json:"temperature"`
	Stream      bool               `json:"stream"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicStreamResponse struct {
	Type  string `json:"type"`
	Delta struct {
		Text string `json:"text"`
	} `json:"delta"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

type anthropicError struct {
	Type  string `json:"type"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

const (
	anthropicAPIEndpoint = "https://api.anthropic.com/v1"
)

// NewAnthropic creates a new Anthropic instance with the specified API key, model name, system
// prompt, and generation parameters. It initializes an HTTP client for API communication and
// returns a configured Anthropic instance ready for chat interactions.
func NewAnthropic(apiKey, model, systemPrompt string, params GenParams) Anthropic {
	return Anthropic{
		apiKey:       apiKey,
		model:        model,
		systemPrompt: systemPrompt,
		endpoint:     anthropicAPIEndpoint,
		params:       params.Normalize(),
		client:       &http.Client{},
	}
}

// NewAnthropicWithEndpoint creates an Anthropic client pointed at a custom endpoint. Used by tests
// to stand in a fake upstream.
func NewAnthropicWithEndpoint(apiKey, model, systemPrompt, endpoint string, params GenParams) Anthropic {
	a := NewAnthropic(apiKey, model, systemPrompt, params)
	a.endpoint = endpoint
	return a
}

func (a Anthropic) chatRequest(messages []models.Message, stream bool) anthropicChatRequest {
	msgs := make([]anthropicMessage, 0, len(messages))
	for _, msg := range messages {
		if msg.Content == "" {
			continue
		}
		msgs = append(msgs, anthropicMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	return anthropicChatRequest{
		Model:       a.model,
		Messages:    msgs,
		System:      a.systemPrompt,
		MaxTokens:   a.params.MaxTokens,
		Temperature: a.params.Temperature,
		Stream:      stream,
	}
}

func (a Anthropic) doRequest(ctx context.Context, reqBody anthropicChatRequest) (*http.Response, error) {
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("error marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.endpoint+"/messages", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	return a.client.Do(req)
}

// Chat streams responses from the Anthropic API for a given sequence of messages. It returns an
// iterator that yields response fragments and potential errors. The context can be used to cancel
// ongoing requests.
func (a Anthropic) Chat(ctx context.Context, messages []models.Message) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		resp, err := a.doRequest(ctx, a.chatRequest(messages, true))
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			yield("", fmt.Errorf("error sending request: %w", err))
			return
		}
		defer resp.Body.Close()

		// A non-200 carries a JSON error body, not an event stream
		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			var e anthropicError
			if err := json.Unmarshal(body, &e); err == nil && e.Error.Message != "" {
				yield("", fmt.Errorf("anthropic error %s: %s", e.Error.Type, e.Error.Message))
				return
			}
			yield("", fmt.Errorf("anthropic returned status %d", resp.StatusCode))
			return
		}

		for ev, err := range sse.Read(resp.Body, nil) {
			if err != nil {
				yield("", fmt.Errorf("error reading response: %w", err))
				return
			}
			switch ev.Type {
			case "error":
				var e anthropicError
				if err := json.Unmarshal([]byte(ev.Data), &e); err != nil {
					yield("", fmt.Errorf("error unmarshaling error: %w", err))
					return
				}
				yield("", fmt.Errorf("anthropic error %s: %s", e.Error.Type, e.Error.Message))
				return
			case "message_stop":
				return
			case "content_block_delta":
				var res anthropicStreamResponse
				if err := json.Unmarshal([]byte(ev.Data), &res); err != nil {
					yield("", fmt.Errorf("error unmarshaling response: %w", err))
					return
				}
				if !yield(res.Delta.Text, nil) {
					return
				}
			default:
				continue
			}
		}
	}
}

// Generate returns the full completion text for a given sequence of messages in one blocking call.
func (a Anthropic) Generate(ctx context.Context, messages []models.Message) (string, error) {
	resp, err := a.doRequest(ctx, a.chatRequest(messages, false))
	if err != nil {
		return "", fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var e anthropicError
		if err := json.Unmarshal(body, &e); err == nil && e.Error.Message != "" {
			return "", fmt.Errorf("anthropic error %s: %s", e.Error.Type, e.Error.Message)
		}
		return "", fmt.Errorf("anthropic returned status %d", resp.StatusCode)
	}

	var res anthropicResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return "", fmt.Errorf("error unmarshaling response: %w", err)
	}

	var text string
	for _, block := range res.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	return text, nil
}
