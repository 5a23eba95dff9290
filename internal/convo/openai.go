package convo

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

// OpenAIClient produces chat completions through the OpenAI API.
type OpenAIClient struct {
	client    openai.Client
	model     string
	maxTokens int64
}

// NewOpenAIClient creates an OpenAI chat backend.
func NewOpenAIClient(apiKey, model string, maxTokens int64) *OpenAIClient {
	return &OpenAIClient{
		client:    openai.NewClient(option.WithAPIKey(apiKey)),
		model:     model,
		maxTokens: maxTokens,
	}
}

// Chat sends the full message list and returns the completion text.
func (c *OpenAIClient) Chat(ctx context.Context, messages []Message) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:     openai.ChatModel(c.model),
		Messages:  make([]openai.ChatCompletionMessageParamUnion, 0, len(messages)),
		MaxTokens: openai.Int(c.maxTokens),
	}

	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			params.Messages = append(params.Messages, openai.SystemMessage(m.Content))
		case RoleAssistant:
			params.Messages = append(params.Messages, openai.AssistantMessage(m.Content))
		default:
			params.Messages = append(params.Messages, openai.UserMessage(m.Content))
		}
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai chat: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("openai chat: empty response")
	}

	return completion.Choices[0].Message.Content, nil
}
