// Package azure provides an Azure OpenAI API client implementation, backed by
// the official azopenai/azcore SDKs rather than a hand-rolled HTTP call.
package azure

import (
	"context"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/ai/azopenai"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore"

	"github.com/dspygo/optimizer/internal/runner"
)

const (
	defaultTimeout    = 60 * time.Second
	defaultAPIVersion = "2024-02-15-preview"
)

// Client is an Azure OpenAI API client wrapping the official SDK.
type Client struct {
	sdk        *azopenai.Client
	keyCred    *azcore.KeyCredential
	auth       AuthProvider
	lastToken  string
	endpoint   string
	apiVersion string
	timeout    time.Duration
}

// ClientOptions configures the Azure OpenAI client.
type ClientOptions struct {
	Endpoint   string
	APIKey     string
	APIVersion string
	Timeout    time.Duration

	// Auth overrides how the client obtains its credential. Leave nil to
	// authenticate with APIKey directly. Set to an AzureADAuth (or any other
	// AuthProvider) to have the client refresh its credential on every call
	// instead of a fixed key.
	Auth AuthProvider
}

// NewClient creates a new Azure OpenAI client.
func NewClient(opts ClientOptions) (*Client, error) {
	if opts.Endpoint == "" {
		return nil, fmt.Errorf("Azure OpenAI endpoint is required")
	}
	if opts.Auth == nil && opts.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if opts.APIVersion == "" {
		opts.APIVersion = defaultAPIVersion
	}
	if opts.Timeout == 0 {
		opts.Timeout = defaultTimeout
	}

	auth := opts.Auth
	if auth == nil {
		auth = NewAPIKeyAuth(opts.APIKey)
	}

	token, err := auth.GetToken(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to obtain initial Azure OpenAI credential: %w", err)
	}

	keyCredential := azcore.NewKeyCredential(token)
	sdkClient, err := azopenai.NewClientWithKeyCredential(opts.Endpoint, keyCredential, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to construct Azure OpenAI client: %w", err)
	}

	return &Client{
		sdk:        sdkClient,
		keyCred:    keyCredential,
		auth:       auth,
		lastToken:  token,
		endpoint:   opts.Endpoint,
		apiVersion: opts.APIVersion,
		timeout:    opts.Timeout,
	}, nil
}

// NewClientWithAuth creates a client that resolves its credential through
// authProvider on every call, instead of a fixed API key — the hook
// AzureADAuth and ManagedIdentityAuth are meant to be plugged into.
func NewClientWithAuth(opts ClientOptions, authProvider AuthProvider) (*Client, error) {
	opts.Auth = authProvider
	return NewClient(opts)
}

// refreshCredential re-resolves the client's token through its AuthProvider
// and rotates the SDK's key credential if it changed, so a long-lived
// Client stays valid across AzureADAuth's token expiry.
func (c *Client) refreshCredential(ctx context.Context) error {
	token, err := c.auth.GetToken(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh Azure OpenAI credential: %w", err)
	}
	if token != c.lastToken {
		c.keyCred.Update(token)
		c.lastToken = token
	}
	return nil
}

func ptr[T any](v T) *T { return &v }

// Call sends a request to the Azure OpenAI API via the SDK's GetChatCompletions.
func (c *Client) Call(ctx context.Context, request *runner.Request, deploymentName string) (*runner.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.refreshCredential(ctx); err != nil {
		return nil, err
	}

	messages := make([]azopenai.ChatRequestMessageClassification, 0, len(request.Messages)+1)
	for _, msg := range request.Messages {
		switch msg.Role {
		case "system":
			messages = append(messages, &azopenai.ChatRequestSystemMessage{
				Content: azopenai.NewChatRequestSystemMessageContent(msg.Content),
			})
		case "assistant":
			messages = append(messages, &azopenai.ChatRequestAssistantMessage{
				Content: azopenai.NewChatRequestAssistantMessageContent(msg.Content),
			})
		default:
			messages = append(messages, &azopenai.ChatRequestUserMessage{
				Content: azopenai.NewChatRequestUserMessageContent(msg.Content),
			})
		}
	}
	if len(messages) == 0 && request.Prompt != "" {
		messages = append(messages, &azopenai.ChatRequestUserMessage{
			Content: azopenai.NewChatRequestUserMessageContent(request.Prompt),
		})
	}
	if len(messages) == 0 {
		return nil, fmt.Errorf("no messages to send")
	}

	maxTokens := request.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1000
	}

	body := azopenai.ChatCompletionsOptions{
		Messages:       messages,
		DeploymentName: ptr(deploymentName),
		Temperature:    ptr(float32(request.Temperature)),
		MaxTokens:      ptr(int32(maxTokens)),
	}
	if request.TopP != 0 {
		body.TopP = ptr(float32(request.TopP))
	}
	if len(request.StopSequences) > 0 {
		body.Stop = request.StopSequences
	}
	if request.N != 0 {
		body.N = ptr(int32(request.N))
	}

	resp, err := c.sdk.GetChatCompletions(ctx, body, nil)
	if err != nil {
		return nil, fmt.Errorf("Azure OpenAI API call failed: %w", err)
	}

	response := &runner.Response{
		Choices: make([]runner.Choice, 0, len(resp.Choices)),
	}
	if resp.ID != nil {
		response.ID = *resp.ID
	}
	if resp.Model != nil {
		response.Model = *resp.Model
	}
	if resp.Usage != nil {
		if resp.Usage.PromptTokens != nil {
			response.Usage.PromptTokens = int(*resp.Usage.PromptTokens)
		}
		if resp.Usage.CompletionTokens != nil {
			response.Usage.CompletionTokens = int(*resp.Usage.CompletionTokens)
		}
		if resp.Usage.TotalTokens != nil {
			response.Usage.TotalTokens = int(*resp.Usage.TotalTokens)
		}
	}

	for i, choice := range resp.Choices {
		var content, finishReason string
		if choice.Message != nil && choice.Message.Content != nil {
			content = *choice.Message.Content
		}
		if choice.FinishReason != nil {
			finishReason = string(*choice.FinishReason)
		}
		response.Choices = append(response.Choices, runner.Choice{
			Index:        i,
			FinishReason: finishReason,
			Message: runner.Message{
				Role:    "assistant",
				Content: content,
			},
		})
	}

	return response, nil
}
