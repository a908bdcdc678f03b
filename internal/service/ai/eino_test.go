package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoModel struct {
	err      error
	received []*schema.Message
}

func (m *echoModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	m.received = input
	if m.err != nil {
		return nil, m.err
	}
	last := input[len(input)-1]
	return schema.AssistantMessage("echo: "+last.Content, nil), nil
}

func (m *echoModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func (m *echoModel) BindTools(_ []*schema.ToolInfo) error { return nil }

func TestEinoCompleterRendersPromptAsUserMessage(t *testing.T) {
	fake := &echoModel{}
	completer, err := NewEinoCompleter(context.Background(), fake)
	require.NoError(t, err)

	out, err := completer.Complete(context.Background(), `Translate this medical text to English. Text: "{braces} stay"`)
	require.NoError(t, err)
	assert.Equal(t, `echo: Translate this medical text to English. Text: "{braces} stay"`, out)
	require.Len(t, fake.received, 1)
	assert.Equal(t, schema.User, fake.received[0].Role)
}

func TestEinoCompleterWrapsModelErrors(t *testing.T) {
	boom := errors.New("ark unavailable")
	completer, err := NewEinoCompleter(context.Background(), &echoModel{err: boom})
	require.NoError(t, err)

	_, err = completer.Complete(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ark unavailable")
}
