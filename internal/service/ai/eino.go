package ai

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
)

// EinoCompleter runs prompts through an eino chain: template → chat model.
type EinoCompleter struct {
	chain compose.Runnable[map[string]any, *schema.Message]
}

// NewEinoCompleter compiles the chain around chatModel.
func NewEinoCompleter(ctx context.Context, chatModel model.ChatModel) (*EinoCompleter, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.UserMessage("{prompt}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile completion chain: %w", err)
	}

	return &EinoCompleter{chain: runnable}, nil
}

// Complete implements Completer.
func (c *EinoCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	response, err := c.chain.Invoke(ctx, map[string]any{"prompt": prompt})
	if err != nil {
		return "", fmt.Errorf("failed to run completion chain: %w", err)
	}
	if response == nil {
		return "", nil
	}
	return response.Content, nil
}
