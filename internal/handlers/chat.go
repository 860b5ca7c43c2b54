package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/basedoracle/oracle-web-ui/internal/models"
	"github.com/google/uuid"
	"github.com/tmaxmax/go-sse"
)

type messageView struct {
	ID        string
	Role      string
	Content   template.HTML
	Timestamp time.Time

	StreamingState string
}

// SSE event type for real-time message updates.
var messagesSSEType = sse.Type("messages")

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatAPIRequest struct {
	Messages    []apiMessage `json:"messages"`
	UserMessage string       `json:"userMessage"`
}

type chatAPIResponse struct {
	Content   string `json:"content"`
	Timestamp string `json:"timestamp,omitempty"`
	Error     string `json:"error,omitempty"`
}

// fallbackContent is the user-visible reply returned when the completion backend fails; the UI
// shows this instead of a raw error.
const fallbackContent = "I encountered an issue processing your request. " +
	"Please try again or check if your API keys are properly configured."

func historyMessages(msgs []apiMessage) ([]models.Message, error) {
	out := make([]models.Message, 0, len(msgs))
	for _, msg := range msgs {
		role := models.Role(msg.Role)
		if role != models.RoleUser && role != models.RoleAssistant {
			return nil, fmt.Errorf("invalid message role: %q", msg.Role)
		}
		out = append(out, models.Message{
			ID:        uuid.New().String(),
			Role:      role,
			Content:   msg.Content,
			Timestamp: time.Now(),
		})
	}
	return out, nil
}

// HandleChat serves the blocking chat contract. It validates the request shape, assembles the
// model input from the supplied history and latest user text, and returns the full generated
// reply with a timestamp. A backend failure degrades to a static fallback reply with HTTP 500
// rather than a bare error.
func (m Main) HandleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		m.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req chatAPIRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		m.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.UserMessage) == "" {
		m.writeError(w, http.StatusBadRequest, "No message provided")
		return
	}

	messages, err := historyMessages(req.Messages)
	if err != nil {
		m.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	messages = append(messages, models.Message{
		ID:        uuid.New().String(),
		Role:      models.RoleUser,
		Content:   req.UserMessage,
		Timestamp: time.Now(),
	})

	content, err := m.llm.Generate(r.Context(), messages)
	if err != nil {
		m.logger.Error("Generation failed", slog.String(errLoggerKey, err.Error()))
		m.writeJSON(w, http.StatusInternalServerError, chatAPIResponse{
			Content: fallbackContent,
			Error:   err.Error(),
		})
		return
	}

	m.writeJSON(w, http.StatusOK, chatAPIResponse{
		Content:   content,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleChatStream serves the streaming chat contract. The request carries the full message
// history with the latest user text as the final entry; fragments are written to the response as
// they arrive from the backend. A failure before the first fragment yields a non-2xx plain-text
// error; once streaming has begun a failure simply terminates the stream.
func (m Main) HandleChatStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Messages []apiMessage `json:"messages"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if len(req.Messages) == 0 {
		http.Error(w, "No message provided", http.StatusBadRequest)
		return
	}
	last := req.Messages[len(req.Messages)-1]
	if last.Role != string(models.RoleUser) || strings.TrimSpace(last.Content) == "" {
		http.Error(w, "No message provided", http.StatusBadRequest)
		return
	}

	messages, err := historyMessages(req.Messages)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")

	started := false
	for fragment, err := range m.llm.Chat(r.Context(), messages) {
		if err != nil {
			if !started {
				m.logger.Error("Generation failed", slog.String(errLoggerKey, err.Error()))
				http.Error(w, "Generation failed", http.StatusInternalServerError)
				return
			}
			// The status line is already out; all we can do is stop the stream.
			m.logger.Error("Stream interrupted", slog.String(errLoggerKey, err.Error()))
			return
		}

		if _, err := w.Write([]byte(fragment)); err != nil {
			m.logger.Error("Failed to write fragment", slog.String(errLoggerKey, err.Error()))
			return
		}
		flusher.Flush()
		started = true
	}
}

// HandleChats processes chat interactions from the web interface through HTTP POST requests. It
// accepts the user message through form data, appends it to the session's conversation along with
// a placeholder assistant message, and initiates asynchronous generation. The assistant reply
// streams to the browser through Server-Sent Events while this handler returns the rendered
// message partials.
func (m Main) HandleChats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		m.logger.Error("Method not allowed", slog.String("method", r.Method))
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	msg := r.FormValue("message")
	if strings.TrimSpace(msg) == "" {
		m.logger.Error("Message is required")
		http.Error(w, "Message is required", http.StatusBadRequest)
		return
	}

	sessionID := m.sessionID(w, r)

	if err := m.seedSession(r.Context(), sessionID); err != nil {
		m.logger.Error("Failed to seed session", slog.String(errLoggerKey, err.Error()))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// We create two messages: user's input and a placeholder for the assistant response
	um := models.Message{
		ID:        uuid.New().String(),
		Role:      models.RoleUser,
		Content:   msg,
		Timestamp: time.Now(),
	}
	if _, err := m.store.AppendMessage(r.Context(), sessionID, um); err != nil {
		m.logger.Error("Failed to add user message",
			slog.String("message", fmt.Sprintf("%+v", um)),
			slog.String(errLoggerKey, err.Error()))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	am := models.Message{
		ID:        uuid.New().String(),
		Role:      models.RoleAssistant,
		Timestamp: time.Now(),
	}
	if _, err := m.store.AppendMessage(r.Context(), sessionID, am); err != nil {
		m.logger.Error("Failed to add assistant message",
			slog.String("message", fmt.Sprintf("%+v", am)),
			slog.String(errLoggerKey, err.Error()))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	messages, err := m.store.Messages(r.Context(), sessionID)
	if err != nil {
		m.logger.Error("Failed to get messages",
			slog.String("sessionID", sessionID),
			slog.String(errLoggerKey, err.Error()))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// Start async generation; fragments reach the browser via SSE
	go m.chat(sessionID, messages)

	uv, err := newMessageView(um, models.StreamingStateEnded)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := m.templates.ExecuteTemplate(w, "user_message", uv); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	av, err := newMessageView(am, models.StreamingStateLoading)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := m.templates.ExecuteTemplate(w, "ai_message", av); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// HandleReset discards the session's conversation and seeds it with the welcome message. It
// renders a fresh chatbox for the browser to swap in.
func (m Main) HandleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID := m.sessionID(w, r)

	welcome, err := m.store.Reset(r.Context(), sessionID)
	if err != nil {
		m.logger.Error("Failed to reset session",
			slog.String("sessionID", sessionID),
			slog.String(errLoggerKey, err.Error()))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	wv, err := newMessageView(welcome, models.StreamingStateEnded)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data := homePageData{Messages: []messageView{wv}}
	if err := m.templates.ExecuteTemplate(w, "chatbox", data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// seedSession ensures a session starts with the welcome message before any user message lands.
func (m Main) seedSession(ctx context.Context, sessionID string) error {
	messages, err := m.store.Messages(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to get messages: %w", err)
	}
	if len(messages) > 0 {
		return nil
	}

	if _, err := m.store.Reset(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to seed session: %w", err)
	}
	return nil
}

// chat drives one assistant reply: it streams fragments from the completion backend, accumulates
// them into the placeholder message, and publishes the rendered content to the message's SSE
// topic. A backend error terminates the reply; nothing is retried.
func (m Main) chat(sessionID string, messages []models.Message) {
	aiMsg := messages[len(messages)-1]
	history := messages[:len(messages)-1]

	// Ensure SSE consumers of this message stop listening when generation ends. The close event
	// is scoped to the message topic; a broadcast would end every session's stream.
	defer func() {
		e := &sse.Message{Type: sse.Type("closeMessage")}
		e.AppendData("bye")
		_ = m.sseSrv.Publish(e, messageIDTopic(aiMsg.ID))
	}()

	for fragment, err := range m.llm.Chat(context.Background(), history) {
		msg := sse.Message{Type: messagesSSEType}
		if err != nil {
			m.logger.Error("Error from llm provider", slog.String(errLoggerKey, err.Error()))
			msg.AppendData(err.Error())
			_ = m.sseSrv.Publish(&msg, messageIDTopic(aiMsg.ID))
			return
		}

		aiMsg.Content += fragment

		if err := m.store.UpdateMessage(context.Background(), sessionID, aiMsg); err != nil {
			m.logger.Error("Failed to update message",
				slog.String("message", fmt.Sprintf("%+v", aiMsg)),
				slog.String(errLoggerKey, err.Error()))
			return
		}

		rendered, err := models.RenderMarkdown(aiMsg.Content)
		if err != nil {
			m.logger.Error("Failed to render content",
				slog.String("message", fmt.Sprintf("%+v", aiMsg)),
				slog.String(errLoggerKey, err.Error()))
			return
		}
		msg.AppendData(rendered)
		if err := m.sseSrv.Publish(&msg, messageIDTopic(aiMsg.ID)); err != nil {
			m.logger.Error("Failed to publish message",
				slog.String("message", fmt.Sprintf("%+v", aiMsg)),
				slog.String(errLoggerKey, err.Error()))
			return
		}
	}
}

func newMessageView(msg models.Message, streamingState string) (messageView, error) {
	rendered, err := models.RenderMarkdown(msg.Content)
	if err != nil {
		return messageView{}, fmt.Errorf("failed to render content: %w", err)
	}

	return messageView{
		ID:             msg.ID,
		Role:           string(msg.Role),
		Content:        template.HTML(rendered),
		Timestamp:      msg.Timestamp,
		StreamingState: streamingState,
	}, nil
}
