package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"planbuddy/internal/anthropic"
	"planbuddy/internal/config"
	"planbuddy/internal/extract"
	"planbuddy/internal/gcal"
	"planbuddy/internal/openai"
	"planbuddy/internal/server"
)

func main() {
	cfg := config.LoadFromEnv()
	logger := initLogger(cfg)

	pipeline := extract.NewPipeline(logger, initStrategies(cfg, logger)...)

	var calendarService server.CalendarService
	gcalClient, err := gcal.NewClient(cfg.GoogleCredentialsFile, cfg.GoogleTokenFile)
	if err != nil {
		logger.Warn().Err(err).Msg("Google Calendar client unavailable, scheduling without conflict checks")
	} else {
		calendarService = gcalClient
		if gcalClient.IsAuthenticated() {
			logger.Info().Msg("Google Calendar client authenticated")
		} else {
			logger.Info().Msg("Google Calendar client created, waiting for OAuth authorization")
		}
	}

	srv := server.New(server.Config{
		Pipeline:        pipeline,
		Calendar:        calendarService,
		CalendarID:      cfg.CalendarID,
		DefaultTimezone: cfg.DefaultTimezone,
		Port:            cfg.HTTPPort,
		Logger:          logger,
	})
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	waitForShutdown(srv, logger)
}

func initLogger(cfg *config.Config) zerolog.Logger {
	level := zerolog.InfoLevel
	if cfg.Debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().Logger()
}

// initStrategies builds the generative extraction strategies for every
// configured LLM provider, in priority order. With no providers configured
// the pipeline still works off the deterministic extractor alone.
func initStrategies(cfg *config.Config, logger zerolog.Logger) []extract.Strategy {
	var strategies []extract.Strategy

	anthropicClient := anthropic.NewClient(cfg.AnthropicAPIKey, cfg.AnthropicModel, cfg.LLMTemperature)
	if anthropicClient.IsConfigured() {
		strategies = append(strategies, extract.NewGenerativeStrategy("anthropic", anthropicClient))
		logger.Info().Str("model", cfg.AnthropicModel).Msg("Anthropic extraction strategy configured")
	}

	openaiClient := openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.LLMTemperature)
	if openaiClient.IsConfigured() {
		strategies = append(strategies, extract.NewGenerativeStrategy("openai", openaiClient))
		logger.Info().Str("model", cfg.OpenAIModel).Msg("OpenAI extraction strategy configured")
	}

	if len(strategies) == 0 {
		logger.Warn().Msg("no LLM provider configured, using deterministic extraction only")
	}

	return strategies
}

func waitForShutdown(srv *server.Server, logger zerolog.Logger) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	logger.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown failed")
	}
}
