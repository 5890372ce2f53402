package provider

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/weftlabs/weft/pkg/store"
)

// anthropicCall converts the conversation turns to the Anthropic
// message format and performs the call.
func anthropicCall(ctx context.Context, res Resolved, turns []store.Turn, temperature float64, maxTokens int) (string, error) {
	opts := []option.RequestOption{option.WithAPIKey(res.Credential)}
	if res.Endpoint != "" {
		opts = append(opts, option.WithBaseURL(res.Endpoint))
	}
	client := anthropic.NewClient(opts...)

	messages := make([]anthropic.MessageParam, 0, len(turns))
	for _, turn := range turns {
		switch turn.Role {
		case store.RoleUser:
			messages = append(messages, anthropic.NewUserMessage(
				anthropic.NewTextBlock(turn.Content),
			))
		case store.RoleAssistant:
			messages = append(messages, anthropic.MessageParam{
				Role: anthropic.MessageParamRoleAssistant,
				Content: []anthropic.ContentBlockParamUnion{
					anthropic.NewTextBlock(turn.Content),
				},
			})
		}
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(res.RemoteModel),
		Messages:  messages,
		MaxTokens: int64(maxTokens),
	}
	if temperature > 0 {
		params.Temperature = anthropic.Float(temperature)
	}

	response, err := client.Messages.New(ctx, params)
	if err != nil {
		return "", err
	}

	content := ""
	for _, block := range response.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			content += text.Text
		}
	}
	if content == "" {
		return "", fmt.Errorf("empty completion from %s", res.Provider)
	}
	return content, nil
}
