package handlers

import (
	"log/slog"
	"net/http"

	"github.com/basedoracle/oracle-web-ui/internal/models"
)

type homePageData struct {
	Messages []messageView
}

// HandleHome renders the dashboard page with the session's conversation. A session seen for the
// first time is seeded with the assistant welcome message.
func (m Main) HandleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	sessionID := m.sessionID(w, r)

	if err := m.seedSession(r.Context(), sessionID); err != nil {
		m.logger.Error("Failed to seed session", slog.String(errLoggerKey, err.Error()))
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

	views := make([]messageView, len(messages))
	for i, msg := range messages {
		v, err := newMessageView(msg, models.StreamingStateEnded)
		if err != nil {
			m.logger.Error("Failed to render message", slog.String(errLoggerKey, err.Error()))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		views[i] = v
	}

	data := homePageData{Messages: views}
	if err := m.templates.ExecuteTemplate(w, "home.html", data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
