// Package ai talks to the hosted chat-completion endpoint.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/doeshing/quest/internal/domain"
	"github.com/doeshing/quest/internal/ports"
)

// Requester sends a conversation to the completion endpoint with the fixed
// model and zero temperature. It holds no per-call state and is safe for
// concurrent use.
type Requester struct {
	endpoint   string
	authEnvVar string
	orgEnvVar  string
	httpClient *http.Client
}

// NewRequester builds a Requester from the provider section of the config.
// A nil client gets a default one with domain.DefaultHTTPClientTimeout.
func NewRequester(settings domain.ProviderSettings, client *http.Client) *Requester {
	if client == nil {
		client = &http.Client{Timeout: domain.DefaultHTTPClientTimeout}
	}
	return &Requester{
		endpoint:   valueOrDefault(settings.Endpoint, domain.DefaultCompletionsEndpoint),
		authEnvVar: settings.AuthEnvVar,
		orgEnvVar:  settings.OrgEnvVar,
		httpClient: client,
	}
}

// Endpoint returns the URL completions are posted to.
func (r *Requester) Endpoint() string {
	return r.endpoint
}

// GetCompletion posts messages in order and returns choices[0].message.content.
// Exactly one request is issued; every failure is returned to the caller.
func (r *Requester) GetCompletion(ctx context.Context, messages []domain.Message) (string, error) {
	apiKey := resolveEnv(r.authEnvVar, domain.EnvOpenAIKey)
	if apiKey == "" {
		return "", fmt.Errorf("%w: set %s", ErrMissingAPIKey, valueOrDefault(r.authEnvVar, domain.EnvOpenAIKey))
	}

	body, err := json.Marshal(newChatCompletionRequest(messages))
	if err != nil {
		return "", fmt.Errorf("marshal chat completion request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create chat completion request: %w", err)
	}
	httpReq.Header.Set("authorization", "Bearer "+apiKey)
	httpReq.Header.Set("content-type", "application/json")
	if org := resolveEnv(r.orgEnvVar, domain.EnvOpenAIOrgID); org != "" {
		httpReq.Header.Set("OpenAI-Organization", org)
	}

	resp, err := r.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("chat completion request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read chat completion response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", newAPIError(resp, raw)
	}

	var decoded chatCompletionResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("%w: %s", ErrMalformedResponse, truncate(string(raw), maxErrorBodyChars))
	}
	return decoded.FirstMessage()
}

var _ ports.Completer = (*Requester)(nil)
