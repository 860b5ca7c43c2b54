package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/basedoracle/oracle-web-ui/internal/models"
)

const defaultCoinGeckoEndpoint = "https://api.coingecko.com/api/v3"

// maxSearchResults caps how many coins a single token search returns.
const maxSearchResults = 10

// CoinGecko is a thin client for the CoinGecko search API. The free tier needs no authentication.
type CoinGecko struct {
	endpoint string

	client *http.Client
}

type coinGeckoSearchResponse struct {
	Coins []struct {
		ID            string `json:"id"`
		Name          string `json:"name"`
		Symbol        string `json:"symbol"`
		Large         string `json:"large"`
		MarketCapRank int    `json:"market_cap_rank"`
	} `json:"coins"`
}

// NewCoinGecko creates a CoinGecko client against the public API.
func NewCoinGecko() CoinGecko {
	return CoinGecko{
		endpoint: defaultCoinGeckoEndpoint,
		client:   &http.Client{},
	}
}

// NewCoinGeckoWithEndpoint creates a CoinGecko client pointed at a custom endpoint. Used by tests
// to stand in a fake upstream.
func NewCoinGeckoWithEndpoint(endpoint string) CoinGecko {
	return CoinGecko{
		endpoint: endpoint,
		client:   &http.Client{},
	}
}

// SearchTokens looks up coins matching the query and reshapes the top results for the dashboard.
func (c CoinGecko) SearchTokens(ctx context.Context, query string) ([]models.Token, error) {
	u := c.endpoint + "/search?query=" + url.QueryEscape(query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error fetching token data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("token search returned %d: %s", resp.StatusCode, string(body))
	}

	var search coinGeckoSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&search); err != nil {
		return nil, fmt.Errorf("error decoding token data: %w", err)
	}

	coins := search.Coins
	if len(coins) > maxSearchResults {
		coins = coins[:maxSearchResults]
	}

	tokens := make([]models.Token, len(coins))
	for i, coin := range coins {
		tokens[i] = models.Token{
			ID:            coin.ID,
			Name:          coin.Name,
			Symbol:        coin.Symbol,
			Image:         coin.Large,
			MarketCapRank: coin.MarketCapRank,
		}
	}
	return tokens, nil
}
