package summary

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/naomedical/translator/backend/internal/logging"
	"github.com/naomedical/translator/backend/internal/metrics"
	"github.com/naomedical/translator/backend/internal/model/conversation"
)

// Texts shown to the user.
const (
	NothingToSummarizeText = "No conversation to summarize yet!"
	FailedText             = "Summary Failed"
)

var (
	ErrNothingToSummarize = errors.New("nothing to summarize")
	ErrSummaryFailed      = errors.New("summary failed")
)

// Summarizer is the collaborator call; *ai.Service satisfies it.
type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (string, error)
}

// Service assembles transcripts and asks the collaborator for a summary.
type Service struct {
	summarizer Summarizer
	timeout    time.Duration
}

func NewService(summarizer Summarizer, timeout time.Duration) *Service {
	return &Service{summarizer: summarizer, timeout: timeout}
}

// Summarize returns the clinical summary of lines. An empty conversation
// yields ErrNothingToSummarize without calling the collaborator; any
// collaborator failure is wrapped in ErrSummaryFailed.
func (s *Service) Summarize(ctx context.Context, lines []conversation.TranscriptLine) (string, error) {
	if len(lines) == 0 {
		metrics.Summaries.WithLabelValues(metrics.OutcomeRejected).Inc()
		return "", ErrNothingToSummarize
	}
	if s.summarizer == nil {
		metrics.Summaries.WithLabelValues(metrics.OutcomeMissingCredential).Inc()
		return "", fmt.Errorf("%w: no collaborator configured", ErrSummaryFailed)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	out, err := s.summarizer.Summarize(ctx, conversation.FormatTranscript(lines))
	if err != nil {
		metrics.Summaries.WithLabelValues(metrics.OutcomeFailed).Inc()
		logging.Ctx(ctx).Error().Err(err).Int("lines", len(lines)).Msg("summary failed")
		return "", fmt.Errorf("%w: %v", ErrSummaryFailed, err)
	}

	metrics.Summaries.WithLabelValues(metrics.OutcomeOK).Inc()
	return out, nil
}
