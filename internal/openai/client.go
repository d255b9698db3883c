package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"textassist/engine/internal/egress"
	"textassist/engine/internal/errinfo"
	"textassist/engine/internal/llm"
)

const DefaultBaseURL = "https://api.openai.com"

const (
	Model             = "gpt-4"
	Temperature       = 0.9
	maxErrorBodyBytes = 2048
)

const (
	systemPromptPrefix = "You are a helpful assistant that improves text. Follow these instructions: "
	userPromptPrefix   = "Please improve the following text while maintaining its meaning: "
)

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []llm.Message `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message llm.Message `json:"message"`
	} `json:"choices"`
}

type errorEnvelope struct {
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type,omitempty"`
	} `json:"error"`
}

// Client talks to the chat-completions endpoint. It never retries and sets
// no request timeout; cancel ctx to abandon a request.
type Client struct {
	baseURL string
	client  *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the allowlisted default transport.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.client = client
		}
	}
}

func NewClient(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	transport, err := egress.ForBaseURL(http.DefaultTransport, baseURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL: baseURL,
		client:  &http.Client{Transport: transport},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) endpoint() string {
	return c.baseURL + "/v1/chat/completions"
}

// BuildMessages returns the system and user messages sent for one request.
func BuildMessages(text, instructions string) []llm.Message {
	return []llm.Message{
		{Role: llm.RoleSystem, Content: systemPromptPrefix + Sanitize(instructions)},
		{Role: llm.RoleUser, Content: userPromptPrefix + Sanitize(text)},
	}
}

// Complete sends text and instructions as one chat-completions request and
// returns the first choice's content verbatim. Errors are *llm.Error.
func (c *Client) Complete(ctx context.Context, text, apiKey, instructions string) (string, error) {
	if err := ValidateCredential(apiKey); err != nil {
		return "", err
	}
	payload := chatRequest{
		Model:       Model,
		Messages:    BuildMessages(text, instructions),
		Temperature: Temperature,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", requestFailed(errinfo.MessageRequestFailed, 0, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(body))
	if err != nil {
		return "", requestFailed(errinfo.MessageRequestFailed, 0, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)
	if requestID, ok := llm.RequestIDFromContext(ctx); ok {
		req.Header.Set("X-Client-Request-Id", requestID)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, llm.ErrEgressBlocked) {
			return "", requestFailed("completion endpoint not allowed", 0, llm.ErrEgressBlocked)
		}
		return "", requestFailed(errinfo.MessageRequestFailed, 0, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", statusError(resp)
	}
	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", requestFailed("invalid response from completion endpoint", resp.StatusCode, err)
	}
	if len(decoded.Choices) == 0 {
		return "", requestFailed("completion endpoint returned no choices", resp.StatusCode, nil)
	}
	return decoded.Choices[0].Message.Content, nil
}

func statusError(resp *http.Response) error {
	body := readErrorBody(resp)
	if resp.StatusCode == http.StatusUnauthorized {
		return &llm.Error{
			Kind:    llm.ErrUnauthorized,
			Status:  resp.StatusCode,
			Message: errinfo.MessageUnauthorized,
		}
	}
	var envelope errorEnvelope
	if err := json.Unmarshal([]byte(body), &envelope); err == nil && envelope.Error != nil && envelope.Error.Message != "" {
		return &llm.Error{
			Kind:    llm.ErrProvider,
			Status:  resp.StatusCode,
			Message: envelope.Error.Message,
		}
	}
	return requestFailed(fmt.Sprintf("API request failed with status %d", resp.StatusCode), resp.StatusCode, nil)
}

func requestFailed(message string, status int, cause error) error {
	return &llm.Error{
		Kind:    llm.ErrRequestFailed,
		Status:  status,
		Message: message,
		Err:     cause,
	}
}

func readErrorBody(resp *http.Response) string {
	if resp == nil || resp.Body == nil {
		return ""
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	return strings.TrimSpace(string(data))
}
