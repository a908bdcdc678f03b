package ai

import (
	"context"
	"fmt"

	"github.com/naomedical/translator/backend/internal/config"
)

// Completer sends one prompt to the language collaborator and returns its
// text answer.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// NewCompleter builds the completer for the configured provider.
func NewCompleter(ctx context.Context, cfg config.AIConfig) (Completer, error) {
	if !cfg.Enabled() {
		return nil, ErrNotConfigured
	}

	switch cfg.Provider {
	case config.ProviderArk:
		chatModel, err := cfg.NewChatModel(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create chat model: %w", err)
		}
		completer, err := NewEinoCompleter(ctx, chatModel)
		if err != nil {
			return nil, err
		}
		return completer, nil
	case config.ProviderOpenAI, config.ProviderGemini:
		return NewOpenAICompleter(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported AI provider %q", cfg.Provider)
	}
}

type unavailableCompleter struct {
	err error
}

// Unavailable returns a Completer that fails every call with err. It stands
// in for a provider that is configured but could not be initialized.
func Unavailable(err error) Completer {
	return unavailableCompleter{err: err}
}

func (c unavailableCompleter) Complete(context.Context, string) (string, error) {
	return "", fmt.Errorf("collaborator unavailable: %w", c.err)
}
