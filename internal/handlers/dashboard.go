package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/basedoracle/oracle-web-ui/internal/models"
)

type walletRequest struct {
	Address string `json:"address"`
}

type tokensResponse struct {
	Tokens []models.Token `json:"tokens"`
}

type analyticsResponse struct {
	Metric    string                 `json:"metric"`
	Data      models.AnalyticsMetric `json:"data"`
	Timestamp string                 `json:"timestamp"`
}

type socialResponse struct {
	Feeds []models.SocialPost `json:"feeds"`
	Type  string              `json:"type"`
}

type voiceRequest struct {
	Audio    string `json:"audio"`
	Language string `json:"language"`
}

const defaultSocialLimit = 10

// HandleWallet proxies the wallet data provider. It requires a wallet address in the request
// body and an operator-configured upstream credential; the absence of the credential is reported
// as a configuration failure, not a network one.
func (m Main) HandleWallet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		m.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req walletRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		m.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.Address) == "" {
		m.writeError(w, http.StatusBadRequest, "Wallet address is required")
		return
	}

	overview, err := m.wallet.WalletOverview(r.Context(), req.Address)
	if err != nil {
		m.logger.Error("Wallet lookup failed",
			slog.String("address", req.Address),
			slog.String(errLoggerKey, err.Error()))
		if errors.Is(err, models.ErrNotConfigured) {
			m.writeError(w, http.StatusInternalServerError, "Moralis API key not configured")
			return
		}
		m.writeError(w, http.StatusInternalServerError, "Failed to fetch wallet data")
		return
	}

	m.writeJSON(w, http.StatusOK, overview)
}

// HandleTokens proxies the token metadata provider's search endpoint, returning at most the top
// ten matches.
func (m Main) HandleTokens(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		m.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	query := r.URL.Query().Get("query")
	if strings.TrimSpace(query) == "" {
		m.writeError(w, http.StatusBadRequest, "Search query is required")
		return
	}

	tokens, err := m.tokens.SearchTokens(r.Context(), query)
	if err != nil {
		m.logger.Error("Token search failed",
			slog.String("query", query),
			slog.String(errLoggerKey, err.Error()))
		m.writeError(w, http.StatusInternalServerError, "Failed to search tokens")
		return
	}

	m.writeJSON(w, http.StatusOK, tokensResponse{Tokens: tokens})
}

// HandleAnalytics serves dashboard metrics. An unknown metric name falls back to the tvl payload.
func (m Main) HandleAnalytics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		m.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	name := r.URL.Query().Get("metric")
	if name == "" {
		name = "tvl"
	}

	metric, data, err := m.analytics.Metric(r.Context(), name)
	if err != nil {
		m.logger.Error("Analytics lookup failed",
			slog.String("metric", name),
			slog.String(errLoggerKey, err.Error()))
		m.writeError(w, http.StatusInternalServerError, "Failed to fetch analytics")
		return
	}

	m.writeJSON(w, http.StatusOK, analyticsResponse{
		Metric:    metric,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleSocial serves social feed entries. An unknown feed type falls back to the base feed.
func (m Main) HandleSocial(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		m.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	feedType := r.URL.Query().Get("type")
	if feedType == "" {
		feedType = "base"
	}

	limit := defaultSocialLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	resolved, feeds, err := m.social.Feed(r.Context(), feedType, limit)
	if err != nil {
		m.logger.Error("Social feed lookup failed",
			slog.String("type", feedType),
			slog.String(errLoggerKey, err.Error()))
		m.writeError(w, http.StatusInternalServerError, "Failed to fetch social feeds")
		return
	}

	m.writeJSON(w, http.StatusOK, socialResponse{Feeds: feeds, Type: resolved})
}

// HandleVoice accepts captured audio and returns a transcription. Speech-to-text is not wired to
// a real backend; the response shape matches what one would return. A GET describes the endpoint.
func (m Main) HandleVoice(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		m.writeJSON(w, http.StatusOK, map[string]any{
			"message": "Voice processing endpoint",
			"methods": []string{http.MethodPost},
		})
		return
	}
	if r.Method != http.MethodPost {
		m.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req voiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		m.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Audio == "" {
		m.writeError(w, http.StatusBadRequest, "Audio data is required")
		return
	}
	if req.Language == "" {
		req.Language = "en-US"
	}

	transcription, err := m.voice.Transcribe(r.Context(), req.Audio, req.Language)
	if err != nil {
		m.logger.Error("Transcription failed", slog.String(errLoggerKey, err.Error()))
		m.writeError(w, http.StatusInternalServerError, "Failed to process voice")
		return
	}

	m.writeJSON(w, http.StatusOK, transcription)
}
