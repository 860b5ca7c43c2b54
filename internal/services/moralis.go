package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/basedoracle/oracle-web-ui/internal/models"
)

const defaultMoralisEndpoint = "https://deep-index.moralis.io/api/v2"

// Moralis is a thin client for the Moralis wallet data API, scoped to the Base chain. It fetches
// native balances and token portfolios for a wallet address.
type Moralis struct {
	apiKey   string
	endpoint string
	chain    string

	client *http.Client

	logger *slog.Logger
}

type moralisBalanceResponse struct {
	Balance       string `json:"balance"`
	NativeBalance string `json:"native_balance"`
}

type moralisPortfolioResponse struct {
	Result []models.WalletToken `json:"result"`
}

// NewMoralis creates a Moralis client with the given API key. An empty key is allowed at
// construction time; requests will fail with ErrNotConfigured.
func NewMoralis(apiKey string, logger *slog.Logger) Moralis {
	return Moralis{
		apiKey:   apiKey,
		endpoint: defaultMoralisEndpoint,
		chain:    "base",
		client:   &http.Client{},
		logger:   logger.With(slog.String("module", "moralis")),
	}
}

// NewMoralisWithEndpoint creates a Moralis client pointed at a custom endpoint. Used by tests to
// stand in a fake upstream.
func NewMoralisWithEndpoint(apiKey, endpoint string, logger *slog.Logger) Moralis {
	m := NewMoralis(apiKey, logger)
	m.endpoint = endpoint
	return m
}

func (m Moralis) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.endpoint+path, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("X-API-Key", m.apiKey)

	return m.client.Do(req)
}

// WalletOverview fetches the native balance and token portfolio of an address. The balance call
// is authoritative: its failure fails the whole lookup. A portfolio failure degrades to an empty
// token list, matching the dashboard's partial-data behavior.
func (m Moralis) WalletOverview(ctx context.Context, address string) (models.WalletOverview, error) {
	if m.apiKey == "" {
		return models.WalletOverview{}, fmt.Errorf("moralis: %w", models.ErrNotConfigured)
	}

	query := "?chain=" + url.QueryEscape(m.chain)

	resp, err := m.get(ctx, "/"+url.PathEscape(address)+query)
	if err != nil {
		return models.WalletOverview{}, fmt.Errorf("error fetching wallet balance: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return models.WalletOverview{}, fmt.Errorf("wallet balance request returned %d: %s", resp.StatusCode, string(body))
	}

	var balance moralisBalanceResponse
	if err := json.NewDecoder(resp.Body).Decode(&balance); err != nil {
		return models.WalletOverview{}, fmt.Errorf("error decoding wallet balance: %w", err)
	}

	overview := models.WalletOverview{
		Address:       address,
		Balance:       balance.Balance,
		NativeBalance: balance.NativeBalance,
		Tokens:        []models.WalletToken{},
	}

	portfolioResp, err := m.get(ctx, "/"+url.PathEscape(address)+"/token"+query)
	if err != nil {
		m.logger.Warn("Failed to fetch token portfolio", slog.String("err", err.Error()))
		return overview, nil
	}
	defer portfolioResp.Body.Close()

	if portfolioResp.StatusCode != http.StatusOK {
		m.logger.Warn("Token portfolio request failed", slog.Int("status", portfolioResp.StatusCode))
		return overview, nil
	}

	var portfolio moralisPortfolioResponse
	if err := json.NewDecoder(portfolioResp.Body).Decode(&portfolio); err != nil {
		m.logger.Warn("Failed to decode token portfolio", slog.String("err", err.Error()))
		return overview, nil
	}
	if portfolio.Result != nil {
		overview.Tokens = portfolio.Result
	}

	return overview, nil
}
