package summary_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naomedical/translator/backend/internal/model/conversation"
	"github.com/naomedical/translator/backend/internal/service/summary"
)

type fakeSummarizer struct {
	calls      int
	transcript string
	reply      string
	err        error
}

func (f *fakeSummarizer) Summarize(_ context.Context, transcript string) (string, error) {
	f.calls++
	f.transcript = transcript
	return f.reply, f.err
}

func TestSummarizeRejectsEmptyConversation(t *testing.T) {
	fake := &fakeSummarizer{}
	_, err := summary.NewService(fake, 0).Summarize(context.Background(), nil)
	require.ErrorIs(t, err, summary.ErrNothingToSummarize)
	assert.Zero(t, fake.calls)
}

func TestSummarizeSendsTranscript(t *testing.T) {
	fake := &fakeSummarizer{reply: "🩺 Chief Complaint: headache"}
	lines := []conversation.TranscriptLine{
		{Sender: "doctor", OriginalText: "How are you feeling?"},
		{Sender: "patient", OriginalText: "Me duele la cabeza"},
	}

	out, err := summary.NewService(fake, 0).Summarize(context.Background(), lines)
	require.NoError(t, err)
	assert.Equal(t, "🩺 Chief Complaint: headache", out)
	assert.Equal(t, "DOCTOR: How are you feeling?\nPATIENT: Me duele la cabeza", fake.transcript)
}

func TestSummarizeFailure(t *testing.T) {
	lines := []conversation.TranscriptLine{{Sender: "doctor", OriginalText: "hi"}}

	_, err := summary.NewService(&fakeSummarizer{err: errors.New("timeout")}, 0).Summarize(context.Background(), lines)
	require.ErrorIs(t, err, summary.ErrSummaryFailed)

	_, err = summary.NewService(nil, 0).Summarize(context.Background(), lines)
	require.ErrorIs(t, err, summary.ErrSummaryFailed)
}
