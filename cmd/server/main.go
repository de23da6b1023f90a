package main

import (
	"fmt"
	"os"

	"github.com/neuralgenius/tupi-proxy/config"
	httpDelivery "github.com/neuralgenius/tupi-proxy/internal/delivery/http"
	"github.com/neuralgenius/tupi-proxy/internal/domain"
	"github.com/neuralgenius/tupi-proxy/internal/infrastructure/chaindesk"
	"github.com/neuralgenius/tupi-proxy/internal/infrastructure/thinkcomm"
	"github.com/neuralgenius/tupi-proxy/internal/infrastructure/tupi"
	"github.com/neuralgenius/tupi-proxy/internal/usecase"
	"github.com/rs/zerolog"
)

const version = "1.0.0"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	if cfg.Server.Environment == "development" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.Warn().Str("level", cfg.Log.Level).Msg("unknown log level, using info")
		level = zerolog.InfoLevel
	}
	logger = logger.Level(level)

	logger.Info().
		Str("version", version).
		Str("environment", cfg.Server.Environment).
		Str("port", cfg.Server.Port).
		Msg("starting tupi-proxy")

	// Initialize infrastructure dependencies
	catalogClient := tupi.NewClient(cfg.Catalog.BaseURL, cfg.Catalog.UserAgent, cfg.Catalog.Timeout, logger)

	messagingClient := chaindesk.NewClient(chaindesk.Options{
		BaseURL:           cfg.Messaging.BaseURL,
		APIKey:            cfg.Messaging.APIKey,
		AgentID:           cfg.Messaging.AgentID,
		Channel:           cfg.Messaging.Channel,
		Take:              cfg.Messaging.Take,
		RequestsPerSecond: cfg.Messaging.RequestsPerSecond,
		Timeout:           cfg.Messaging.Timeout,
	}, logger)

	queueClient := thinkcomm.NewClient(thinkcomm.Options{
		URL:     cfg.Queue.URL,
		Token:   cfg.Queue.Token,
		Source:  cfg.Queue.Source,
		Action:  cfg.Queue.Action,
		Timeout: cfg.Queue.Timeout,
	}, logger)

	logger.Info().
		Str("catalog", cfg.Catalog.BaseURL).
		Str("messaging", cfg.Messaging.BaseURL).
		Int("take", cfg.Messaging.Take).
		Int("max_concurrency", cfg.Messaging.MaxConcurrency).
		Float64("requests_per_second", cfg.Messaging.RequestsPerSecond).
		Msg("upstreams configured")

	// Initialize usecase layer
	catalogService := usecase.NewCatalogService(
		catalogClient,
		domain.Credentials{User: cfg.Catalog.User, Password: cfg.Catalog.Password},
		logger,
	)
	conversationService := usecase.NewConversationService(
		messagingClient,
		queueClient,
		usecase.ConversationServiceConfig{MaxConcurrency: cfg.Messaging.MaxConcurrency},
		logger,
	)

	handler := httpDelivery.NewHandler(catalogService, conversationService, logger)
	router := httpDelivery.SetupRouter(cfg, handler, logger)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	logger.Info().Str("addr", addr).Msg("server listening")

	if err := router.Run(addr); err != nil {
		logger.Fatal().Err(err).Msg("failed to start server")
	}
}
