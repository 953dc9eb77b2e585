package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/tjfontaine/searchbot/internal/domain"
)

// ScriptedModel is a domain.ChatModel that replays canned responses in order
// and records every request it receives.
type ScriptedModel struct {
	mu        sync.Mutex
	responses []*domain.ChatResponse
	err       error
	Requests  []*domain.ChatRequest
}

// NewScriptedModel returns a model that answers with responses in order.
func NewScriptedModel(responses ...*domain.ChatResponse) *ScriptedModel {
	return &ScriptedModel{responses: responses}
}

// FailWith makes every subsequent call fail with err.
func (m *ScriptedModel) FailWith(err error) *ScriptedModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

func (m *ScriptedModel) Name() string { return "scripted" }

func (m *ScriptedModel) Complete(ctx context.Context, req *domain.ChatRequest) (*domain.ChatResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	clone := *req
	clone.Messages = append([]domain.Message(nil), req.Messages...)
	m.Requests = append(m.Requests, &clone)

	if m.err != nil {
		return nil, m.err
	}
	if len(m.responses) == 0 {
		return nil, fmt.Errorf("scripted model: no response left for call %d", len(m.Requests))
	}
	resp := m.responses[0]
	m.responses = m.responses[1:]
	return resp, nil
}

// Calls returns the number of requests received.
func (m *ScriptedModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Requests)
}

// TextResponse is a final answer.
func TextResponse(text string) *domain.ChatResponse {
	return &domain.ChatResponse{
		Message:      domain.Message{Role: domain.RoleAssistant, Content: text},
		FinishReason: "stop",
	}
}

// ToolCallResponse asks for one tool call.
func ToolCallResponse(id, name, arguments string) *domain.ChatResponse {
	return &domain.ChatResponse{
		Message: domain.Message{
			Role:      domain.RoleAssistant,
			ToolCalls: []domain.ToolCall{{ID: id, Name: name, Arguments: arguments}},
		},
		FinishReason: "tool_calls",
	}
}

// ReactModel is a deterministic stand-in for a real model in end-to-end
// tests. On a fresh conversation it calls the first declared tool with the
// user text; once a tool has answered it replies with the user text and the
// observation joined by Separator.
type ReactModel struct {
	Separator string
}

func (m ReactModel) Name() string { return "react" }

func (m ReactModel) Complete(ctx context.Context, req *domain.ChatRequest) (*domain.ChatResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var user, observation string
	for _, msg := range req.Messages {
		switch msg.Role {
		case domain.RoleUser:
			user = msg.Content
		case domain.RoleTool:
			observation = msg.Content
		}
	}

	if observation == "" && len(req.Tools) > 0 {
		args, _ := json.Marshal(map[string]string{"query": user})
		return ToolCallResponse("call_1", req.Tools[0].Name, string(args)), nil
	}

	sep := m.Separator
	if sep == "" {
		sep = "\n"
	}
	return TextResponse(strings.TrimSpace(user) + sep + strings.TrimSpace(observation)), nil
}
