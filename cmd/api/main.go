package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/naomedical/translator/backend/internal/config"
	"github.com/naomedical/translator/backend/internal/handler"
	"github.com/naomedical/translator/backend/internal/logging"
	"github.com/naomedical/translator/backend/internal/model/participant"
	"github.com/naomedical/translator/backend/internal/service/ai"
	conversationService "github.com/naomedical/translator/backend/internal/service/conversation"
	"github.com/naomedical/translator/backend/internal/service/relay"
	summaryService "github.com/naomedical/translator/backend/internal/service/summary"
	"github.com/naomedical/translator/backend/internal/service/translation"
	"github.com/naomedical/translator/backend/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.L().Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(logging.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	logger := logging.L()
	if envErr != nil {
		logger.Warn().Err(envErr).Msg("no .env file loaded, continuing with system environment variables only")
	}

	backend, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("failed to open storage")
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close storage")
		}
	}()
	logger.Info().Str("driver", cfg.Storage.Driver).Msg("storage ready")

	participants := participant.NewMemoryStore(participant.Seed())

	completer, err := ai.NewCompleter(ctx, cfg.AI)
	switch {
	case errors.Is(err, ai.ErrNotConfigured):
		logger.Warn().Str("provider", cfg.AI.Provider).Msg("language collaborator credentials missing, translations will report a missing API key")
	case err != nil:
		logger.Error().Err(err).Str("provider", cfg.AI.Provider).Msg("failed to initialize language collaborator, translations will fail")
		completer = ai.Unavailable(err)
	default:
		logger.Info().Str("provider", cfg.AI.Provider).Msg("language collaborator initialized")
	}
	aiService := ai.NewService(completer, cfg.AI.Provider)

	translations := translation.NewService(aiService, participants, cfg.Conversation.TranslateTimeout)
	summaries := summaryService.NewService(aiService, cfg.Conversation.SummaryTimeout)
	registry := conversationService.NewRegistry(backend, cfg.Storage.KeyPrefix, cfg.Conversation.DefaultSessionID)
	sender := relay.New(registry, translations)

	streamCtx, closeStreams := context.WithCancel(context.Background())
	defer closeStreams()

	router := handler.NewRouter(handler.Dependencies{
		StreamContext:  streamCtx,
		Participants:   participants,
		Registry:       registry,
		Relay:          sender,
		Translations:   translations,
		Summaries:      summaries,
		MetricsEnabled: cfg.MetricsEnabled,
	})

	startServer(ctx, cfg.Server, router, closeStreams)

	closeStreams()
	// Let in-flight translations land in storage before it closes.
	sender.Close()
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler, onShutdown func()) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	// Shutdown does not wait for hijacked WebSocket connections.
	srv.RegisterOnShutdown(onShutdown)

	logging.L().Info().Str("addr", serverCfg.Addr).Msg("medical translator backend listening")
	if err := runServer(ctx, srv); err != nil {
		logging.L().Error().Err(err).Msg("server error")
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
