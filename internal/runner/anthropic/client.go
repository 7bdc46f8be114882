// Package anthropic provides an Anthropic API client implementation, backed
// by the official anthropic-sdk-go client rather than a hand-rolled HTTP call.
package anthropic

import (
	"context"
	"fmt"
	"time"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/dspygo/optimizer/internal/runner"
)

const (
	defaultMaxTokens = 4096
	defaultTimeout   = 60 * time.Second
)

// Client is an Anthropic API client wrapping the official SDK.
type Client struct {
	sdk     anthropicsdk.Client
	timeout time.Duration
}

// ClientOptions configures the Anthropic client.
type ClientOptions struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// NewClient creates a new Anthropic client.
func NewClient(opts ClientOptions) (*Client, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	if opts.Timeout == 0 {
		opts.Timeout = defaultTimeout
	}

	sdkOpts := []option.RequestOption{option.WithAPIKey(opts.APIKey)}
	if opts.BaseURL != "" {
		sdkOpts = append(sdkOpts, option.WithBaseURL(opts.BaseURL))
	}

	return &Client{
		sdk:     anthropicsdk.NewClient(sdkOpts...),
		timeout: opts.Timeout,
	}, nil
}

// Call sends a request to the Anthropic API via the SDK's Messages.New.
func (c *Client) Call(ctx context.Context, request *runner.Request, model string) (*runner.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var systemPrompt string
	messages := make([]anthropicsdk.MessageParam, 0, len(request.Messages))

	for _, msg := range request.Messages {
		switch msg.Role {
		case "system":
			systemPrompt = msg.Content
		case "assistant":
			messages = append(messages, anthropicsdk.NewAssistantMessage(anthropicsdk.NewTextBlock(msg.Content)))
		default:
			messages = append(messages, anthropicsdk.NewUserMessage(anthropicsdk.NewTextBlock(msg.Content)))
		}
	}

	if len(messages) == 0 && request.Prompt != "" {
		messages = append(messages, anthropicsdk.NewUserMessage(anthropicsdk.NewTextBlock(request.Prompt)))
	}
	if len(messages) == 0 {
		return nil, fmt.Errorf("no messages to send")
	}

	maxTokens := request.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	params := anthropicsdk.MessageNewParams{
		Model:       anthropicsdk.Model(model),
		Messages:    messages,
		MaxTokens:   int64(maxTokens),
		Temperature: anthropicsdk.Float(request.Temperature),
	}
	if systemPrompt != "" {
		params.System = []anthropicsdk.TextBlockParam{{Text: systemPrompt}}
	}
	if len(request.StopSequences) > 0 {
		params.StopSequences = request.StopSequences
	}
	if request.TopP != 0 {
		params.TopP = anthropicsdk.Float(request.TopP)
	}

	message, err := c.sdk.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic API call failed: %w", err)
	}

	var text string
	for _, block := range message.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}

	return &runner.Response{
		ID:    message.ID,
		Model: string(message.Model),
		Choices: []runner.Choice{
			{
				Index:        0,
				FinishReason: string(message.StopReason),
				Message: runner.Message{
					Role:    "assistant",
					Content: text,
				},
			},
		},
		Usage: runner.Usage{
			PromptTokens:     int(message.Usage.InputTokens),
			CompletionTokens: int(message.Usage.OutputTokens),
			TotalTokens:      int(message.Usage.InputTokens + message.Usage.OutputTokens),
		},
	}, nil
}

// CountTokens estimates token count for Anthropic models.
// This is a rough approximation; for accurate counting, use the official API.
func CountTokens(text string) int {
	return len(text) / 4
}

// ModelInfo describes pricing and capability facts about a Claude model.
type ModelInfo struct {
	Name            string
	ContextWindow   int
	MaxTokens       int
	SupportsVision  bool
	CostPer1MInput  float64
	CostPer1MOutput float64
}

// GetModelInfo returns model-specific information.
func GetModelInfo(model string) ModelInfo {
	switch model {
	case "claude-3-opus-20240229", "claude-3-opus":
		return ModelInfo{Name: model, ContextWindow: 200000, MaxTokens: 4096, SupportsVision: true, CostPer1MInput: 15.00, CostPer1MOutput: 75.00}
	case "claude-3-5-sonnet-20240620", "claude-3-5-sonnet":
		return ModelInfo{Name: model, ContextWindow: 200000, MaxTokens: 4096, SupportsVision: true, CostPer1MInput: 3.00, CostPer1MOutput: 15.00}
	case "claude-3-sonnet-20240229", "claude-3-sonnet":
		return ModelInfo{Name: model, ContextWindow: 200000, MaxTokens: 4096, SupportsVision: true, CostPer1MInput: 3.00, CostPer1MOutput: 15.00}
	case "claude-3-haiku-20240307", "claude-3-haiku":
		return ModelInfo{Name: model, ContextWindow: 200000, MaxTokens: 4096, SupportsVision: true, CostPer1MInput: 0.25, CostPer1MOutput: 1.25}
	default:
		return ModelInfo{Name: model, ContextWindow: 100000, MaxTokens: 4096}
	}
}
