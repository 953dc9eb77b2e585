// Package anthropic implements domain.ChatModel on the Anthropic Messages API.
package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	anthropic "github.com/liushuangls/go-anthropic/v2"

	"github.com/tjfontaine/searchbot/internal/domain"
)

// defaultMaxTokens is used when the request does not set one; the Messages
// API requires max_tokens.
const defaultMaxTokens = 1024

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

// Provider implements domain.ChatModel using go-anthropic.
type Provider struct {
	client     *anthropic.Client
	baseURL    string
	httpClient *http.Client
}

// New creates a new Anthropic provider.
func New(apiKey string, opts ...ProviderOption) *Provider {
	p := &Provider{}

	for _, opt := range opts {
		opt(p)
	}

	var clientOpts []anthropic.ClientOption
	if p.baseURL != "" {
		clientOpts = append(clientOpts, anthropic.WithBaseURL(p.baseURL))
	}
	if p.httpClient != nil {
		clientOpts = append(clientOpts, anthropic.WithHTTPClient(p.httpClient))
	}

	p.client = anthropic.NewClient(apiKey, clientOpts...)
	return p
}

func (p *Provider) Name() string {
	return ProviderType
}

func (p *Provider) Complete(ctx context.Context, req *domain.ChatRequest) (*domain.ChatResponse, error) {
	resp, err := p.client.CreateMessages(ctx, toAPIRequest(req))
	if err != nil {
		return nil, toDomainError(err)
	}
	return toDomainResponse(&resp), nil
}

// toAPIRequest converts a domain request. System messages are lifted into
// the system prompt and consecutive tool results are merged into a single
// user turn, which is what the Messages API expects.
func toAPIRequest(req *domain.ChatRequest) anthropic.MessagesRequest {
	var system []string
	var messages []anthropic.Message

	for _, m := range req.Messages {
		switch m.Role {
		case domain.RoleSystem:
			system = append(system, m.Content)
		case domain.RoleAssistant:
			var content []anthropic.MessageContent
			if m.Content != "" {
				content = append(content, anthropic.NewTextMessageContent(m.Content))
			}
			for _, tc := range m.ToolCalls {
				input := json.RawMessage(tc.Arguments)
				if !json.Valid(input) {
					input = json.RawMessage("{}")
				}
				content = append(content, anthropic.NewToolUseMessageContent(tc.ID, tc.Name, input))
			}
			messages = append(messages, anthropic.Message{
				Role:    anthropic.RoleAssistant,
				Content: content,
			})
		case domain.RoleTool:
			result := anthropic.NewToolResultMessageContent(m.ToolCallID, m.Content, false)
			if n := len(messages); n > 0 && messages[n-1].Role == anthropic.RoleUser && isToolResultTurn(messages[n-1]) {
				messages[n-1].Content = append(messages[n-1].Content, result)
				continue
			}
			messages = append(messages, anthropic.Message{
				Role:    anthropic.RoleUser,
				Content: []anthropic.MessageContent{result},
			})
		default:
			messages = append(messages, anthropic.NewUserTextMessage(m.Content))
		}
	}

	apiReq := anthropic.MessagesRequest{
		Model:       anthropic.Model(req.Model),
		System:      strings.Join(system, "\n\n"),
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	if apiReq.MaxTokens <= 0 {
		apiReq.MaxTokens = defaultMaxTokens
	}

	for _, t := range req.Tools {
		apiReq.Tools = append(apiReq.Tools, anthropic.ToolDefinition{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.Parameters,
		})
	}

	return apiReq
}

func isToolResultTurn(m anthropic.Message) bool {
	for _, c := range m.Content {
		if c.Type != anthropic.MessagesContentTypeToolResult {
			return false
		}
	}
	return len(m.Content) > 0
}

func toDomainResponse(resp *anthropic.MessagesResponse) *domain.ChatResponse {
	msg := domain.Message{Role: domain.RoleAssistant}

	var text []string
	for _, c := range resp.Content {
		switch c.Type {
		case anthropic.MessagesContentTypeText:
			if c.Text != nil {
				text = append(text, *c.Text)
			}
		case anthropic.MessagesContentTypeToolUse:
			if c.MessageContentToolUse != nil {
				msg.ToolCalls = append(msg.ToolCalls, domain.ToolCall{
					ID:        c.MessageContentToolUse.ID,
					Name:      c.MessageContentToolUse.Name,
					Arguments: string(c.MessageContentToolUse.Input),
				})
			}
		}
	}
	msg.Content = strings.Join(text, "")

	return &domain.ChatResponse{
		ID:           resp.ID,
		Model:        string(resp.Model),
		Message:      msg,
		FinishReason: string(resp.StopReason),
		Usage: domain.Usage{
			PromptTokens:     resp.Usage.InputTokens,
			CompletionTokens: resp.Usage.OutputTokens,
			TotalTokens:      resp.Usage.InputTokens + resp.Usage.OutputTokens,
		},
	}
}

// toDomainError maps go-anthropic errors onto the canonical taxonomy.
func toDomainError(err error) error {
	var apiErr *anthropic.APIError
	if errors.As(err, &apiErr) {
		return &domain.APIError{
			Type:    mapErrorType(string(apiErr.Type)),
			Message: apiErr.Message,
			Source:  ProviderType,
		}
	}

	var reqErr *anthropic.RequestError
	if errors.As(err, &reqErr) {
		return domain.ErrorFromStatus(ProviderType, reqErr.StatusCode, err.Error())
	}

	return err
}

func mapErrorType(errType string) domain.ErrorType {
	switch errType {
	case "invalid_request_error":
		return domain.ErrorTypeInvalidRequest
	case "authentication_error":
		return domain.ErrorTypeAuthentication
	case "permission_error":
		return domain.ErrorTypePermission
	case "not_found_error":
		return domain.ErrorTypeNotFound
	case "rate_limit_error":
		return domain.ErrorTypeRateLimit
	case "overloaded_error":
		return domain.ErrorTypeOverloaded
	default:
		return domain.ErrorTypeServer
	}
}
