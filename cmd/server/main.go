package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	oraclewebui "github.com/basedoracle/oracle-web-ui"
	"github.com/basedoracle/oracle-web-ui/internal/handlers"
	"github.com/basedoracle/oracle-web-ui/internal/services"
	"github.com/caarlos0/env/v9"
	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("shutting down due to error", slog.String("err", err.Error()))
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

func run(logger *slog.Logger) error {
	envCfg := envConfig{}
	if err := env.Parse(&envCfg); err != nil {
		return fmt.Errorf("error parsing env config: %w", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	port := cfg.Port
	if port == "" {
		port = envCfg.Port
	}
	systemPrompt := cfg.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = defaultSystemPrompt
	}
	params := services.GenParams{
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	}

	llmCfg := cfg.LLM
	if llmCfg == nil {
		llmCfg = openAIConfig{}
	}
	llm, err := llmCfg.llm(systemPrompt, params, envCfg, logger)
	if err != nil {
		return err
	}

	var store handlers.Store
	var storeCloser io.Closer
	if cfg.StorePath != "" {
		boltDB, err := services.NewBoltDB(cfg.StorePath)
		if err != nil {
			return err
		}
		store = boltDB
		storeCloser = boltDB
		logger.Info("using bolt conversation store", slog.String("path", cfg.StorePath))
	} else {
		store = services.NewMemory()
		logger.Info("using in-memory conversation store")
	}

	mockData := services.NewMockData()

	m, err := handlers.NewMain(
		llm,
		store,
		services.NewMoralis(envCfg.MoralisAPIKey, logger),
		services.NewCoinGecko(),
		mockData,
		mockData,
		mockData,
		logger,
	)
	if err != nil {
		return err
	}

	// Serve static files
	staticFS, err := fs.Sub(oraclewebui.StaticFS, "static")
	if err != nil {
		return err
	}
	fileServer := http.FileServer(http.FS(staticFS))

	// Create custom mux
	mux := http.NewServeMux()
	mux.Handle("/static/", http.StripPrefix("/static/", fileServer))
	mux.HandleFunc("/", m.HandleHome)
	mux.HandleFunc("/chats", m.HandleChats)
	mux.HandleFunc("/chats/reset", m.HandleReset)
	mux.HandleFunc("/sse/messages", m.HandleSSE)
	mux.HandleFunc("/api/chat", m.HandleChat)
	mux.HandleFunc("/api/chat/stream", m.HandleChatStream)
	mux.HandleFunc("/api/wallet", m.HandleWallet)
	mux.HandleFunc("/api/tokens", m.HandleTokens)
	mux.HandleFunc("/api/analytics", m.HandleAnalytics)
	mux.HandleFunc("/api/social", m.HandleSocial)
	mux.HandleFunc("/api/voice", m.HandleVoice)

	// Create custom server
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	srv.RegisterOnShutdown(func() {
		if err := m.Shutdown(context.Background()); err != nil {
			logger.Error("failed to shutdown sse server", slog.String("err", err.Error()))
		}
	})

	// Channel to listen for errors coming from the listener
	serverErrors := make(chan error, 1)

	// Start server in goroutine
	go func() {
		logger.Info("server starting", slog.String("port", port))
		serverErrors <- srv.ListenAndServe()
	}()

	// Channel to listen for interrupt/terminate signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Blocking select waiting for either interrupt or server error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info("start shutdown", slog.String("signal", sig.String()))

		// Create context with timeout for shutdown
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		var result *multierror.Error

		// Gracefully shutdown the server
		if err := srv.Shutdown(ctx); err != nil {
			result = multierror.Append(result, err)
			if err := srv.Close(); err != nil {
				result = multierror.Append(result, err)
			}
		}

		if storeCloser != nil {
			if err := storeCloser.Close(); err != nil {
				result = multierror.Append(result, err)
			}
		}

		return result.ErrorOrNil()
	}
}

// loadConfig reads the optional YAML config file from the user config directory. A missing file
// is not an error; the server then runs on defaults and environment variables.
func loadConfig() (config, error) {
	cfg := config{}

	cfgDir, err := os.UserConfigDir()
	if err != nil {
		return cfg, fmt.Errorf("error getting user config dir: %w", err)
	}

	cfgFilePath := filepath.Join(cfgDir, "oracle-web-ui", "config.yaml")
	cfgFile, err := os.Open(cfgFilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("error opening config file: %w", err)
	}
	defer cfgFile.Close()

	if err := yaml.NewDecoder(cfgFile).Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("error decoding config file: %w", err)
	}
	return cfg, nil
}
