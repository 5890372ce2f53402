package provider

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/weftlabs/weft/pkg/store"
)

// SDKCaller routes resolved calls to the official SDK matching the
// provider key: "anthropic" uses the Anthropic SDK, everything else is
// treated as an OpenAI-compatible endpoint.
type SDKCaller struct{}

// NewSDKCaller creates the production caller.
func NewSDKCaller() *SDKCaller {
	return &SDKCaller{}
}

// Complete performs the remote call for res.
func (s *SDKCaller) Complete(ctx context.Context, res Resolved, turns []store.Turn, temperature float64, maxTokens int) (string, error) {
	if res.Provider == "anthropic" {
		return anthropicCall(ctx, res, turns, temperature, maxTokens)
	}
	return openAICall(ctx, res, turns, temperature, maxTokens)
}

// openAICall converts the conversation turns to the chat-completion
// format and performs the call against res.Endpoint.
func openAICall(ctx context.Context, res Resolved, turns []store.Turn, temperature float64, maxTokens int) (string, error) {
	opts := []option.RequestOption{option.WithAPIKey(res.Credential)}
	if res.Endpoint != "" {
		opts = append(opts, option.WithBaseURL(res.Endpoint))
	}
	client := openai.NewClient(opts...)

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(turns))
	for _, turn := range turns {
		switch turn.Role {
		case store.RoleUser:
			messages = append(messages, openai.UserMessage(turn.Content))
		case store.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(turn.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(res.RemoteModel),
		Messages: messages,
	}
	if temperature > 0 {
		params.Temperature = openai.Float(temperature)
	}
	if maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(maxTokens))
	}

	response, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", err
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no response choices returned")
	}
	return response.Choices[0].Message.Content, nil
}
