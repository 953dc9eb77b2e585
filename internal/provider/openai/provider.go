// Package openai implements domain.ChatModel on top of any OpenAI-compatible
// chat completions endpoint. The default endpoint is Gemini's compatibility
// layer.
package openai

import (
	"context"
	"net/http"

	openaiapi "github.com/tjfontaine/searchbot/internal/api/openai"
	"github.com/tjfontaine/searchbot/internal/domain"
)

// ProviderOption configures the provider.
type ProviderOption func(*Provider)

// WithBaseURL sets a custom base URL for the API.
func WithBaseURL(baseURL string) ProviderOption {
	return func(p *Provider) {
		p.baseURL = baseURL
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ProviderOption {
	return func(p *Provider) {
		p.httpClient = httpClient
	}
}

// Provider implements domain.ChatModel using our OpenAI-compatible client.
type Provider struct {
	client     *openaiapi.Client
	baseURL    string
	httpClient *http.Client
}

// New creates a new OpenAI-compatible provider.
func New(apiKey string, opts ...ProviderOption) *Provider {
	p := &Provider{}

	for _, opt := range opts {
		opt(p)
	}

	// Build client options
	var clientOpts []openaiapi.ClientOption
	if p.baseURL != "" {
		clientOpts = append(clientOpts, openaiapi.WithBaseURL(p.baseURL))
	}
	if p.httpClient != nil {
		clientOpts = append(clientOpts, openaiapi.WithHTTPClient(p.httpClient))
	}

	p.client = openaiapi.NewClient(apiKey, clientOpts...)
	return p
}

func (p *Provider) Name() string {
	return ProviderType
}

func (p *Provider) Complete(ctx context.Context, req *domain.ChatRequest) (*domain.ChatResponse, error) {
	resp, err := p.client.CreateChatCompletion(ctx, toAPIRequest(req))
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, domain.ErrServer("openai: response contained no choices").WithSource(ProviderType)
	}
	return toDomainResponse(resp), nil
}

// toAPIRequest converts a domain request to an OpenAI API request.
func toAPIRequest(req *domain.ChatRequest) *openaiapi.ChatCompletionRequest {
	messages := make([]openaiapi.ChatCompletionMessage, len(req.Messages))
	for i, m := range req.Messages {
		msg := openaiapi.ChatCompletionMessage{
			Role:       string(m.Role),
			Content:    m.Content,
			Name:       m.Name,
			ToolCallID: m.ToolCallID,
		}
		for _, tc := range m.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, openaiapi.ToolCall{
				ID:   tc.ID,
				Type: "function",
				Function: openaiapi.FunctionCall{
					Name:      tc.Name,
					Arguments: tc.Arguments,
				},
			})
		}
		messages[i] = msg
	}

	apiReq := &openaiapi.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}

	// Convert tools if present
	if len(req.Tools) > 0 {
		apiReq.Tools = make([]openaiapi.Tool, len(req.Tools))
		for i, t := range req.Tools {
			apiReq.Tools[i] = openaiapi.Tool{
				Type: "function",
				Function: openaiapi.FunctionTool{
					Name:        t.Name,
					Description: t.Description,
					Parameters:  t.Parameters,
				},
			}
		}
		apiReq.ToolChoice = "auto"
	}

	return apiReq
}

// toDomainResponse converts the first choice of an API response.
func toDomainResponse(resp *openaiapi.ChatCompletionResponse) *domain.ChatResponse {
	c := resp.Choices[0]
	msg := domain.Message{
		Role:    domain.RoleAssistant,
		Content: c.Message.Content,
	}
	for _, tc := range c.Message.ToolCalls {
		msg.ToolCalls = append(msg.ToolCalls, domain.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}

	return &domain.ChatResponse{
		ID:           resp.ID,
		Model:        resp.Model,
		Message:      msg,
		FinishReason: c.FinishReason,
		Usage: domain.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}
}
