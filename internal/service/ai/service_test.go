package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompleter struct {
	prompts []string
	reply   string
	err     error
}

func (f *fakeCompleter) Complete(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.err
}

func TestTranslatePrompt(t *testing.T) {
	got := TranslatePrompt("Spanish", "How are you feeling?")
	assert.Equal(t, `Translate this medical text to Spanish. Return ONLY the translation. Text: "How are you feeling?"`, got)
}

func TestSummaryPromptHasThreeSections(t *testing.T) {
	got := SummaryPrompt("DOCTOR: Hi\nPATIENT: Hola")
	for _, header := range []string{HeaderChiefComplaint, HeaderSymptoms, HeaderActionPlan} {
		assert.Contains(t, got, header)
	}
	assert.True(t, strings.HasSuffix(got, "Conversation:\nDOCTOR: Hi\nPATIENT: Hola"))
}

func TestServiceTranslate(t *testing.T) {
	fake := &fakeCompleter{reply: "¿Cómo se siente?\n"}
	svc := NewService(fake, "test")

	out, err := svc.Translate(context.Background(), "How are you feeling?", "Spanish")
	require.NoError(t, err)
	assert.Equal(t, "¿Cómo se siente?\n", out)
	require.Len(t, fake.prompts, 1)
	assert.Contains(t, fake.prompts[0], "to Spanish")
}

func TestServiceNotConfigured(t *testing.T) {
	var nilSvc *Service
	assert.False(t, nilSvc.Configured())

	svc := NewService(nil, "test")
	_, err := svc.Translate(context.Background(), "x", "English")
	require.ErrorIs(t, err, ErrNotConfigured)
	_, err = svc.Summarize(context.Background(), "DOCTOR: x")
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestServicePropagatesFailures(t *testing.T) {
	boom := errors.New("quota exceeded")
	svc := NewService(&fakeCompleter{err: boom}, "test")
	_, err := svc.Summarize(context.Background(), "DOCTOR: x")
	require.ErrorIs(t, err, boom)

	svc = NewService(&fakeCompleter{reply: "   "}, "test")
	_, err = svc.Translate(context.Background(), "x", "English")
	require.ErrorIs(t, err, ErrEmptyResponse)
}

func TestServiceUnavailableCompleter(t *testing.T) {
	cause := errors.New("ark: invalid region")
	svc := NewService(Unavailable(cause), "ark")
	require.True(t, svc.Configured())

	_, err := svc.Translate(context.Background(), "x", "English")
	require.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrNotConfigured)
}
