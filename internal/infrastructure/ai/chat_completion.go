package ai

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/doeshing/quest/internal/domain"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Temperature carries no omitempty: a zero value must reach the wire.
type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatCompletionResponse struct {
	ID      string       `json:"id"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
}

type chatChoice struct {
	Index        int              `json:"index"`
	Message      *responseMessage `json:"message"`
	FinishReason string           `json:"finish_reason"`
}

type responseMessage struct {
	Role    string  `json:"role"`
	Content *string `json:"content"`
}

func newChatCompletionRequest(messages []domain.Message) chatCompletionRequest {
	return chatCompletionRequest{
		Model:       domain.CompletionModel,
		Messages:    toChatMessages(messages),
		Temperature: domain.CompletionTemperature,
	}
}

func toChatMessages(messages []domain.Message) []chatMessage {
	out := make([]chatMessage, 0, len(messages))
	for _, msg := range messages {
		out = append(out, chatMessage{Role: string(msg.Role), Content: msg.Content})
	}
	return out
}

// FirstMessage returns choices[0].message.content without trimming.
func (c chatCompletionResponse) FirstMessage() (string, error) {
	if c.Choices == nil {
		return "", fmt.Errorf("%w: choices field missing", ErrMalformedResponse)
	}
	if len(c.Choices) == 0 {
		return "", ErrNoChoices
	}
	first := c.Choices[0]
	if first.Message == nil {
		return "", fmt.Errorf("%w: choices[0].message missing", ErrMalformedResponse)
	}
	if first.Message.Content == nil {
		return "", fmt.Errorf("%w: choices[0].message.content missing", ErrMalformedResponse)
	}
	return *first.Message.Content, nil
}

// APIError is returned when the endpoint answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
	Type       string
	Code       string
	Body       string
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "chat completion: %s", e.Status)
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	} else if e.Body != "" {
		fmt.Fprintf(&b, ": %s", e.Body)
	}
	if e.Type != "" {
		fmt.Fprintf(&b, " (type=%s", e.Type)
		if e.Code != "" {
			fmt.Fprintf(&b, ", code=%s", e.Code)
		}
		b.WriteString(")")
	}
	return b.String()
}

// Unauthorized reports a rejected or missing credential.
func (e *APIError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// RateLimited reports a 429 answer.
func (e *APIError) RateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

type apiErrorEnvelope struct {
	Error *struct {
		Message string          `json:"message"`
		Type    string          `json:"type"`
		Code    json.RawMessage `json:"code"`
	} `json:"error"`
}

func newAPIError(resp *http.Response, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       truncate(strings.TrimSpace(string(body)), maxErrorBodyChars),
	}
	if apiErr.Status == "" {
		apiErr.Status = fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	var envelope apiErrorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil {
		apiErr.Message = envelope.Error.Message
		apiErr.Type = envelope.Error.Type
		apiErr.Code = rawCode(envelope.Error.Code)
	}
	return apiErr
}

// rawCode accepts string, numeric or null codes.
func rawCode(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
