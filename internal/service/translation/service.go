package translation

import (
	"context"
	"errors"
	"time"

	"github.com/naomedical/translator/backend/internal/logging"
	"github.com/naomedical/translator/backend/internal/metrics"
	"github.com/naomedical/translator/backend/internal/model/conversation"
	"github.com/naomedical/translator/backend/internal/model/participant"
	"github.com/naomedical/translator/backend/internal/service/ai"
)

// Translator is the collaborator call; *ai.Service satisfies it.
type Translator interface {
	Translate(ctx context.Context, text, language string) (string, error)
}

// Service turns collaborator outcomes into translation values. It never
// returns an error: failures become a failed translation carrying the
// sentinel text the counterpart panel shows.
type Service struct {
	translator   Translator
	participants participant.Store
	timeout      time.Duration
}

// NewService builds a Service. A zero timeout leaves the caller's deadline
// in charge.
func NewService(translator Translator, participants participant.Store, timeout time.Duration) *Service {
	return &Service{translator: translator, participants: participants, timeout: timeout}
}

// Translate translates text into the language of target.
func (s *Service) Translate(ctx context.Context, text string, target conversation.Role) conversation.Translation {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	language := participant.LanguageFor(s.participants, target)
	if s.translator == nil {
		return s.missingCredential(ctx, ai.ErrNotConfigured)
	}

	out, err := s.translator.Translate(ctx, text, language)
	switch {
	case err == nil:
		metrics.Translations.WithLabelValues(metrics.OutcomeOK).Inc()
		return conversation.Translated(out)
	case errors.Is(err, ai.ErrNotConfigured):
		return s.missingCredential(ctx, err)
	default:
		metrics.Translations.WithLabelValues(metrics.OutcomeFailed).Inc()
		logging.Ctx(ctx).Error().Err(err).Str("target", string(target)).Msg("translation failed")
		return conversation.Failed(conversation.TranslationError, err.Error())
	}
}

func (s *Service) missingCredential(ctx context.Context, err error) conversation.Translation {
	metrics.Translations.WithLabelValues(metrics.OutcomeMissingCredential).Inc()
	logging.Ctx(ctx).Warn().Msg("translation skipped, no collaborator credential")
	return conversation.Failed(conversation.MissingCredential, err.Error())
}
