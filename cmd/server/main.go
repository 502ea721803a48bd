package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"persona-relay/internal/config"
	"persona-relay/internal/handlers"
	"persona-relay/internal/persona"
	"persona-relay/internal/router"
	"persona-relay/internal/services"
)

func main() {
	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()

	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Logger()
	} else {
		logger = zerolog.New(os.Stdout).
			With().
			Timestamp().
			Logger()
	}
	logger.Info().Str("env", cfg.Env).Msg("starting persona relay")

	// ──── Step 2: Resolve Persona ────
	p, err := persona.Lookup(cfg.Persona)
	if err != nil {
		logger.Fatal().Err(err).Msg("persona lookup failed")
	}
	logger.Info().Str("persona", p.Name).Str("title", p.Title).Msg("persona loaded")

	// ──── Step 3: Initialize Gemini Client ────
	ctx := context.Background()
	geminiService, err := services.NewGeminiService(ctx, services.GeminiOptions{
		APIKey:         cfg.GeminiAPIKey,
		Model:          cfg.GeminiModel,
		BaseURL:        cfg.GeminiBaseURL,
		Transport:      cfg.GeminiTransport,
		ConcurrentReqs: cfg.GeminiConcurrentReqs,
	}, p, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("gemini client initialization failed")
	}
	defer geminiService.Close()

	if !geminiService.Configured() {
		logger.Warn().Msg("GEMINI_API_KEY is not set, chat requests will fail until it is configured")
	} else {
		logger.Info().
			Str("model", cfg.GeminiModel).
			Str("transport", cfg.GeminiTransport).
			Int("concurrent_requests", cfg.GeminiConcurrentReqs).
			Msg("gemini client initialized")
	}

	// ──── Step 4: Initialize Handlers ────
	chatHandler := handlers.NewChatHandler(geminiService, logger)
	healthHandler := handlers.NewHealthHandler(geminiService, cfg.GeminiModel, cfg.GeminiTransport)

	// ──── Step 5: Start HTTP Server ────
	r := router.New(logger, chatHandler, healthHandler, router.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		MaxBodyBytes:   cfg.MaxBodyBytes,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second, // one upstream generation per request
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info().Msg("shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Error().Err(err).Msg("shutdown error")
		}
		close(done)
	}()

	logger.Info().
		Str("addr", server.Addr).
		Str("chat", fmt.Sprintf("http://localhost:%s/api/chat", cfg.Port)).
		Msg("persona relay ready")

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		logger.Fatal().Err(err).Msg("server error")
	}
	<-done
}
