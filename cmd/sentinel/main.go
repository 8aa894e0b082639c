// Sentinel server — tails the configured log sources, runs the enrichment
// and alerting pipeline, and provides the admin HTTP API.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/sentinelsec/sentinel/pkg/alerting"
	"github.com/sentinelsec/sentinel/pkg/api"
	"github.com/sentinelsec/sentinel/pkg/config"
	"github.com/sentinelsec/sentinel/pkg/engine"
	"github.com/sentinelsec/sentinel/pkg/enrich"
	"github.com/sentinelsec/sentinel/pkg/llm"
	"github.com/sentinelsec/sentinel/pkg/storage"
	"github.com/sentinelsec/sentinel/pkg/version"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("Could not load .env file, continuing with existing environment", "error", err)
	}

	ctx := context.Background()

	// 1. Configuration
	cfg, err := config.LoadFromEnv()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if cfg.APIKey == "" {
		slog.Warn("API_KEY is not set, falling back to the development key; do not use in production")
		cfg.APIKey = "dev-secret-key"
	}

	slog.Info("Starting sentinel",
		"version", version.Full(),
		"http_port", cfg.HTTPPort,
		"sources", cfg.LogSources,
		"llm_provider", cfg.LLMProvider)

	// 2. Storage client
	store, err := storage.NewClient(storage.Config{
		Host:     cfg.ESHost,
		Port:     cfg.ESPort,
		Username: cfg.ESUser,
		Password: cfg.ESPassword,
		Index:    cfg.ESIndexName,
	})
	if err != nil {
		slog.Error("Failed to create storage client", "error", err)
		os.Exit(1)
	}

	// 3. Enrichment provider (optional)
	var enricherOpts []enrich.Option
	switch cfg.LLMProvider {
	case config.ProviderOllama:
		provider, err := llm.NewOllama(cfg.OllamaHost, cfg.OllamaModel)
		if err != nil {
			slog.Error("Failed to create ollama provider", "error", err)
			os.Exit(1)
		}
		enricherOpts = append(enricherOpts, enrich.WithProvider(provider))
	case config.ProviderGemini:
		provider, err := llm.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			slog.Error("Failed to create gemini provider", "error", err)
			os.Exit(1)
		}
		enricherOpts = append(enricherOpts, enrich.WithProvider(provider))
	}

	// 4. Engine
	engineOpts := []engine.Option{
		engine.WithEnricher(enrich.New(enricherOpts...)),
		engine.WithAnomalyThreshold(cfg.AnomalyThreshold),
		engine.WithTrainingDays(cfg.TrainingDays),
		engine.WithSinks(
			alerting.NewWebhookSink(cfg.AlertWebhook),
			alerting.NewSlackSink(cfg.SlackToken, cfg.SlackChannel),
		),
	}
	if cfg.RulesFile != "" {
		extra, err := config.LoadRules(cfg.RulesFile)
		if err != nil {
			slog.Error("Failed to load rules file", "path", cfg.RulesFile, "error", err)
			os.Exit(1)
		}
		engineOpts = append(engineOpts, engine.WithRules(extra...))
		slog.Info("Loaded extra rules", "path", cfg.RulesFile, "count", len(extra))
	}
	eng := engine.New(store, engineOpts...)

	// 5. Initialize and start monitoring. Failures here leave the pipeline
	// degraded (unfit scorer, unreachable store) but the API still serves.
	if err := eng.Initialize(ctx, cfg.LogSources); err != nil {
		slog.Error("Failed to initialize engine", "error", err)
		os.Exit(1)
	}
	if err := eng.StartMonitoring(); err != nil {
		slog.Error("Failed to start monitoring", "error", err)
		os.Exit(1)
	}

	// 6. HTTP server (non-blocking)
	httpServer := api.NewServer(cfg, eng, store)
	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.HTTPPort
		slog.Info("HTTP server listening", "addr", addr)
		if err := httpServer.Start(addr); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			errCh <- err
		}
	}()

	// 7. Wait for shutdown signal or server error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-sigCh:
		slog.Info("Shutdown signal received", "signal", sig)
	case err := <-errCh:
		slog.Error("Server error triggered shutdown", "error", err)
	}

	// 8. Graceful shutdown: drain in-flight batches, then stop HTTP.
	eng.StopMonitoring()

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Shutdown complete")
}
