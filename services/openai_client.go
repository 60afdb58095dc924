package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// ChatMessage is one turn in a conversation, in chat-completions wire shape.
// The same struct is what gets persisted into conversation_logs.messages.
type ChatMessage struct {
	Role       string     `json:"role"` // "system" | "user" | "assistant" | "tool"
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	Name       string     `json:"name,omitempty"`
}

type ToolCall struct {
	ID       string           `json:"id"`
	Type     string           `json:"type"`
	Function ToolCallFunction `json:"function"`
}

type ToolCallFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"` // raw JSON
}

type ToolDefinition struct {
	Type     string       `json:"type"`
	Function ToolFunction `json:"function"`
}

type ToolFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// ChatClient is the coach's view of the model API. Tests swap in a fake.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, messages []ChatMessage, tools []ToolDefinition) (ChatMessage, error)
}

type OpenAIClient struct {
	apiKey     string
	baseURL    string
	model      string
	client     *http.Client
	maxRetries int
}

// NewOpenAIClient builds the client from the environment.
func NewOpenAIClient() (*OpenAIClient, error) {
	apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	if apiKey == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}

	baseURL := strings.TrimSpace(os.Getenv("OPENAI_BASE_URL"))
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	baseURL = strings.TrimRight(baseURL, "/")

	model := strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
	if model == "" {
		model = "gpt-4o"
	}

	return &OpenAIClient{
		apiKey:     apiKey,
		baseURL:    baseURL,
		model:      model,
		client:     &http.Client{Timeout: 60 * time.Second},
		maxRetries: 2,
	}, nil
}

type chatCompletionRequest struct {
	Model    string           `json:"model"`
	Messages []ChatMessage    `json:"messages"`
	Tools    []ToolDefinition `json:"tools,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message      ChatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (c *OpenAIClient) CreateChatCompletion(ctx context.Context, messages []ChatMessage, tools []ToolDefinition) (ChatMessage, error) {
	payload, err := json.Marshal(chatCompletionRequest{
		Model:    c.model,
		Messages: messages,
		Tools:    tools,
	})
	if err != nil {
		return ChatMessage{}, fmt.Errorf("marshal chat request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ChatMessage{}, ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			c.baseURL+"/v1/chat/completions", bytes.NewReader(payload))
		if err != nil {
			return ChatMessage{}, err
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("chat completion request: %w", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read chat completion response: %w", err)
			continue
		}

		// 429 and 5xx are worth retrying; everything else is final.
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("chat completion API error %d: %s", resp.StatusCode, string(body))
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return ChatMessage{}, fmt.Errorf("chat completion API error %d: %s", resp.StatusCode, string(body))
		}

		var cr chatCompletionResponse
		if err := json.Unmarshal(body, &cr); err != nil {
			return ChatMessage{}, fmt.Errorf("parse chat completion JSON: %w", err)
		}
		if cr.Error != nil {
			return ChatMessage{}, fmt.Errorf("chat completion: %s", cr.Error.Message)
		}
		if len(cr.Choices) == 0 {
			return ChatMessage{}, fmt.Errorf("chat completion: empty choices")
		}
		return cr.Choices[0].Message, nil
	}

	return ChatMessage{}, lastErr
}
