package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/naomedical/translator/backend/internal/config"
	"github.com/naomedical/translator/backend/internal/logging"
	"github.com/naomedical/translator/backend/internal/model/conversation"
	"github.com/naomedical/translator/backend/internal/model/participant"
	"github.com/naomedical/translator/backend/internal/service/ai"
	conversationService "github.com/naomedical/translator/backend/internal/service/conversation"
	summaryService "github.com/naomedical/translator/backend/internal/service/summary"
	"github.com/naomedical/translator/backend/internal/service/translation"
	"github.com/naomedical/translator/backend/internal/storage"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.L().Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Pretty: true})
	logger := logging.L()
	if envErr != nil {
		logger.Warn().Err(envErr).Msg("no .env file loaded, using system environment variables")
	}

	mode := flag.String("mode", "", "translate, summary or show")
	text := flag.String("text", "", "text to translate")
	to := flag.String("to", "patient", "role the translation is addressed to")
	session := flag.String("session", cfg.Conversation.DefaultSessionID, "conversation id for summary and show")
	viewer := flag.String("as", "doctor", "panel to render in show mode")
	timeout := flag.Duration("timeout", 90*time.Second, "request timeout")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	switch *mode {
	case "translate":
		err = runTranslate(ctx, cfg, *text, *to)
	case "summary":
		err = runSummary(ctx, cfg, *session)
	case "show":
		err = runShow(ctx, cfg, *session, *viewer)
	default:
		flag.Usage()
		logger.Fatal().Str("mode", *mode).Msg("choose -mode=translate, -mode=summary or -mode=show")
	}
	if err != nil {
		logger.Fatal().Err(err).Str("mode", *mode).Msg("command failed")
	}
}

func newAIService(ctx context.Context, cfg *config.Config) *ai.Service {
	completer, err := ai.NewCompleter(ctx, cfg.AI)
	if err != nil && !errors.Is(err, ai.ErrNotConfigured) {
		logging.L().Warn().Err(err).Msg("language collaborator unavailable")
	}
	return ai.NewService(completer, cfg.AI.Provider)
}

func runTranslate(ctx context.Context, cfg *config.Config, text, to string) error {
	if strings.TrimSpace(text) == "" {
		return errors.New("-text is required in translate mode")
	}
	target, err := conversation.ParseRole(to)
	if err != nil {
		return err
	}

	participants := participant.NewMemoryStore(participant.Seed())
	svc := translation.NewService(newAIService(ctx, cfg), participants, cfg.Conversation.TranslateTimeout)

	t := svc.Translate(ctx, text, target)
	if t.State == conversation.StateFailed {
		logging.L().Warn().Str("reason", t.Reason).Msg("translation failed")
	}
	fmt.Println(t.DisplayText())
	return nil
}

func openStore(ctx context.Context, cfg *config.Config, sessionID string) (*conversationService.Store, func(), error) {
	backend, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() { _ = backend.Close() }

	registry := conversationService.NewRegistry(backend, cfg.Storage.KeyPrefix, cfg.Conversation.DefaultSessionID)
	store, err := registry.Open(ctx, sessionID)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return store, closeFn, nil
}

func runSummary(ctx context.Context, cfg *config.Config, sessionID string) error {
	store, closeFn, err := openStore(ctx, cfg, sessionID)
	if err != nil {
		return err
	}
	defer closeFn()

	svc := summaryService.NewService(newAIService(ctx, cfg), cfg.Conversation.SummaryTimeout)
	out, err := svc.Summarize(ctx, conversation.Lines(store.Snapshot()))
	if errors.Is(err, summaryService.ErrNothingToSummarize) {
		fmt.Println(summaryService.NothingToSummarizeText)
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

func runShow(ctx context.Context, cfg *config.Config, sessionID, as string) error {
	role, err := conversation.ParseRole(as)
	if err != nil {
		return err
	}

	store, closeFn, err := openStore(ctx, cfg, sessionID)
	if err != nil {
		return err
	}
	defer closeFn()

	for _, entry := range conversation.RenderPanel(store.Snapshot(), role) {
		side := "  "
		if entry.Own {
			side = "> "
		}
		fmt.Fprintf(os.Stdout, "%s[%s] %s: %s\n", side, entry.Timestamp, strings.ToUpper(string(entry.Sender)), entry.Text)
	}
	return nil
}
