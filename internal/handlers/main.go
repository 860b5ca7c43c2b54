package handlers

import (
	"context"
	"fmt"
	"html/template"
	"iter"
	"log/slog"
	"net/http"
	"time"

	oraclewebui "github.com/basedoracle/oracle-web-ui"
	"github.com/basedoracle/oracle-web-ui/internal/models"
	"github.com/google/uuid"
	"github.com/tmaxmax/go-sse"
)

// LLM represents the completion backend. Chat streams response fragments for a conversation;
// Generate returns the full text in one blocking call. Both inject the operator's system prompt
// at call time, so callers only supply the stored history.
type LLM interface {
	Chat(ctx context.Context, messages []models.Message) iter.Seq2[string, error]
	Generate(ctx context.Context, messages []models.Message) (string, error)
}

// Store defines the interface for the per-session conversation store. Messages are append-only
// within a session; Reset discards the session and seeds it with a single assistant welcome
// message. UpdateMessage exists solely so a streaming assistant reply can accumulate in place.
type Store interface {
	Messages(ctx context.Context, sessionID string) ([]models.Message, error)
	AppendMessage(ctx context.Context, sessionID string, message models.Message) (string, error)
	UpdateMessage(ctx context.Context, sessionID string, message models.Message) error
	Reset(ctx context.Context, sessionID string) (models.Message, error)
}

// WalletProvider fetches wallet balances and token portfolios from the upstream wallet data API.
type WalletProvider interface {
	WalletOverview(ctx context.Context, address string) (models.WalletOverview, error)
}

// TokenSearcher looks up token metadata matching a free-text query.
type TokenSearcher interface {
	SearchTokens(ctx context.Context, query string) ([]models.Token, error)
}

// AnalyticsProvider serves dashboard metrics. The resolved metric name is returned alongside the
// payload so callers can tell when an unknown name fell back to the default.
type AnalyticsProvider interface {
	Metric(ctx context.Context, name string) (string, models.AnalyticsMetric, error)
}

// SocialProvider serves social feed entries by feed type.
type SocialProvider interface {
	Feed(ctx context.Context, feedType string, limit int) (string, []models.SocialPost, error)
}

// Transcriber converts captured audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio, language string) (models.Transcription, error)
}

// Main handles the core functionality of the dashboard, managing server-sent events, HTML
// templates, and interactions between the completion backend, the conversation store, and the
// upstream data providers.
type Main struct {
	sseSrv    *sse.Server
	templates *template.Template

	llm       LLM
	store     Store
	wallet    WalletProvider
	tokens    TokenSearcher
	analytics AnalyticsProvider
	social    SocialProvider
	voice     Transcriber

	logger *slog.Logger
}

const errLoggerKey = "err"

const sessionCookieName = "oracle_session"

// NewMain creates a new Main instance with the provided collaborators. It parses the required
// HTML templates from the embedded filesystem and configures the SSE server to subscribe clients
// to message-specific topics on request.
func NewMain(
	llm LLM,
	store Store,
	wallet WalletProvider,
	tokens TokenSearcher,
	analytics AnalyticsProvider,
	social SocialProvider,
	voice Transcriber,
	logger *slog.Logger,
) (Main, error) {
	// We parse templates from three distinct directories to separate layout, pages, and partial views
	tmpl, err := template.ParseFS(
		oraclewebui.TemplateFS,
		"templates/layout/*.html",
		"templates/pages/*.html",
		"templates/partials/*.html",
	)
	if err != nil {
		return Main{}, err
	}

	return Main{
		sseSrv: &sse.Server{
			OnSession: func(s *sse.Session) (sse.Subscription, bool) {
				topics := []string{sse.DefaultTopic}

				// We create a message-specific topic if the client requests updates for a particular message
				messageID := s.Req.URL.Query().Get("message_id")
				if messageID != "" {
					topics = append(topics, messageIDTopic(messageID))
				}

				return sse.Subscription{
					Client:      s,
					LastEventID: s.LastEventID,
					Topics:      topics,
				}, true
			},
		},
		templates: tmpl,
		llm:       llm,
		store:     store,
		wallet:    wallet,
		tokens:    tokens,
		analytics: analytics,
		social:    social,
		voice:     voice,
		logger:    logger.With(slog.String("module", "handlers")),
	}, nil
}

func messageIDTopic(messageID string) string {
	return fmt.Sprintf("message-%s", messageID)
}

// sessionID returns the session identifier from the request cookie, issuing a fresh one when the
// request carries none. Each browser session owns exactly one conversation; sessions are never
// shared.
func (m Main) sessionID(w http.ResponseWriter, r *http.Request) string {
	cookie, err := r.Cookie(sessionCookieName)
	if err == nil && cookie.Value != "" {
		return cookie.Value
	}

	id := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// HandleSSE serves the server-sent events stream that carries live message updates to the
// browser.
func (m Main) HandleSSE(w http.ResponseWriter, r *http.Request) {
	m.sseSrv.ServeHTTP(w, r)
}

// Shutdown gracefully terminates the Main instance's SSE server. It broadcasts a close message
// to all connected clients and waits up to 5 seconds for connections to terminate. After the
// timeout, any remaining connections are forcefully closed.
func (m Main) Shutdown(ctx context.Context) error {
	e := &sse.Message{Type: sse.Type("closeChat")}
	// We create a close event that complies with SSE spec requiring data
	e.AppendData("bye")

	// We ignore the error here since we're shutting down anyway
	_ = m.sseSrv.Publish(e)

	ctx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	return m.sseSrv.Shutdown(ctx)
}
