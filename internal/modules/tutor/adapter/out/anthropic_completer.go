package out

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"huixue/internal/modules/tutor/domain"
	tutorout "huixue/internal/modules/tutor/port/out"
)

const (
	anthropicVersion = "2023-06-01"
	maxTokens        = 500
	temperature      = 0.7
	requestTimeout   = 60 * time.Second

	// EmptyReply stands in for a response that carried no text.
	EmptyReply = "抱歉，我没有理解您的问题。"
)

// AnthropicCompleter talks to any endpoint speaking the Anthropic messages
// API.
type AnthropicCompleter struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

func NewAnthropicCompleter(apiKey, baseURL, model string, client *http.Client) *AnthropicCompleter {
	if client == nil {
		client = &http.Client{Timeout: requestTimeout}
	}
	return &AnthropicCompleter{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  client,
	}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	System      string    `json:"system,omitempty"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *AnthropicCompleter) Complete(ctx context.Context, req tutorout.Request) (string, error) {
	body := messagesRequest{
		Model:       c.model,
		MaxTokens:   maxTokens,
		System:      req.System,
		Messages:    make([]message, 0, len(req.Messages)),
		Temperature: temperature,
	}
	for _, t := range req.Messages {
		body.Messages = append(body.Messages, message{Role: roleName(t.Role), Content: t.Content})
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("tutor api status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("tutor api error: %s", out.Error.Message)
	}
	if len(out.Content) == 0 || out.Content[0].Text == "" {
		return EmptyReply, nil
	}
	return out.Content[0].Text, nil
}

func roleName(r domain.Role) string {
	if r == domain.RoleAssistant {
		return "assistant"
	}
	return "user"
}
