package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/naomedical/translator/backend/internal/metrics"
)

var (
	ErrNotConfigured = errors.New("language collaborator not configured")
	ErrEmptyResponse = errors.New("language collaborator returned an empty response")
)

// Service turns translation and summary requests into prompts for the
// collaborator. A Service without a completer reports ErrNotConfigured.
type Service struct {
	completer Completer
	provider  string
}

// NewService wraps completer; provider labels latency metrics.
func NewService(completer Completer, provider string) *Service {
	return &Service{completer: completer, provider: provider}
}

// Configured reports whether a completer is available.
func (s *Service) Configured() bool {
	return s != nil && s.completer != nil
}

// Translate returns text translated into language.
func (s *Service) Translate(ctx context.Context, text, language string) (string, error) {
	out, err := s.complete(ctx, TranslatePrompt(language, text))
	if err != nil {
		return "", fmt.Errorf("translate: %w", err)
	}
	return out, nil
}

// Summarize returns the clinical summary of a formatted transcript.
func (s *Service) Summarize(ctx context.Context, transcript string) (string, error) {
	out, err := s.complete(ctx, SummaryPrompt(transcript))
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	return out, nil
}

func (s *Service) complete(ctx context.Context, prompt string) (string, error) {
	if !s.Configured() {
		return "", ErrNotConfigured
	}

	start := time.Now()
	out, err := s.completer.Complete(ctx, prompt)
	metrics.ObserveCollaborator(s.provider, start)
	if err != nil {
		return "", err
	}

	// The answer is relayed as returned; only a blank one is a failure.
	if strings.TrimSpace(out) == "" {
		return "", ErrEmptyResponse
	}
	return out, nil
}
