package services_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/basedoracle/oracle-web-ui/internal/models"
	"github.com/basedoracle/oracle-web-ui/internal/services"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMoralisWalletOverviewMissingKey(t *testing.T) {
	m := services.NewMoralis("", discardLogger())

	_, err := m.WalletOverview(context.Background(), "0xabc")
	if err == nil {
		t.Fatal("WalletOverview() with empty API key should return an error")
	}
	if !errors.Is(err, models.ErrNotConfigured) {
		t.Errorf("WalletOverview() error = %v, want ErrNotConfigured", err)
	}
}

func TestMoralisWalletOverview(t *testing.T) {
	const address = "0x1234567890abcdef1234567890abcdef12345678"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-API-Key"); got != "test-key" {
			t.Errorf("X-API-Key header = %q, want %q", got, "test-key")
		}
		if got := r.URL.Query().Get("chain"); got != "base" {
			t.Errorf("chain query = %q, want %q", got, "base")
		}

		w.Header().Set("Content-Type", "application/json")
		if strings.HasSuffix(r.URL.Path, "/token") {
			_, _ = w.Write([]byte(`{"result":[{"token_address":"0xdef","symbol":"USDC","name":"USD Coin","balance":"5000000","decimals":6}]}`))
			return
		}
		_, _ = w.Write([]byte(`{"balance":"1000000000000000000","native_balance":"1.0"}`))
	}))
	defer srv.Close()

	m := services.NewMoralisWithEndpoint("test-key", srv.URL, discardLogger())

	got, err := m.WalletOverview(context.Background(), address)
	if err != nil {
		t.Fatalf("WalletOverview() error = %v", err)
	}

	if got.Address != address {
		t.Errorf("Address = %q, want %q", got.Address, address)
	}
	if got.Balance != "1000000000000000000" {
		t.Errorf("Balance = %q, want %q", got.Balance, "1000000000000000000")
	}
	if len(got.Tokens) != 1 {
		t.Fatalf("Tokens has %d entries, want 1", len(got.Tokens))
	}
	if got.Tokens[0].Symbol != "USDC" {
		t.Errorf("Tokens[0].Symbol = %q, want %q", got.Tokens[0].Symbol, "USDC")
	}
}

func TestMoralisWalletOverviewBalanceFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"invalid key"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	m := services.NewMoralisWithEndpoint("bad-key", srv.URL, discardLogger())

	if _, err := m.WalletOverview(context.Background(), "0xabc"); err == nil {
		t.Error("WalletOverview() should fail when the balance request fails")
	}
}

func TestMoralisWalletOverviewPortfolioDegrades(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/token") {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"balance":"42","native_balance":"0.000000000000000042"}`))
	}))
	defer srv.Close()

	m := services.NewMoralisWithEndpoint("test-key", srv.URL, discardLogger())

	got, err := m.WalletOverview(context.Background(), "0xabc")
	if err != nil {
		t.Fatalf("WalletOverview() error = %v, portfolio failure should not fail the lookup", err)
	}
	if got.Balance != "42" {
		t.Errorf("Balance = %q, want %q", got.Balance, "42")
	}
	if len(got.Tokens) != 0 {
		t.Errorf("Tokens has %d entries, want 0 after portfolio failure", len(got.Tokens))
	}
}
