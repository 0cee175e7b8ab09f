package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// defaultTimeout bounds one alignment round trip. Requests carry a full
// reference transcript, so responses routinely take minutes.
const defaultTimeout = 5 * time.Minute

// message is a chat message in the Ollama API format.
type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest is the JSON body for POST /api/chat.
type chatRequest struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
	Stream   bool      `json:"stream"`
}

// chatResponse is the JSON returned by POST /api/chat (non-streaming).
type chatResponse struct {
	Message message `json:"message"`
}

// Ollama submits alignment requests to an Ollama-compatible chat
// endpoint. It implements Oracle.
type Ollama struct {
	baseURL    string
	model      string
	timeout    time.Duration
	httpClient *http.Client
}

// NewOllama creates an adapter targeting the given base URL and model.
// timeout bounds each Submit call; <= 0 uses the default.
func NewOllama(baseURL, model string, timeout time.Duration) *Ollama {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Ollama{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		timeout: timeout,
		httpClient: &http.Client{
			Timeout: 0,
		},
	}
}

// Submit sends the request as a single user message and returns the
// assistant's full response text.
func (o *Ollama) Submit(ctx context.Context, request string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	body, err := json.Marshal(chatRequest{
		Model:    o.model,
		Messages: []message{{Role: "user", Content: request}},
		Stream:   false,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat: unexpected status %d", resp.StatusCode)
	}

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding chat response: %w", err)
	}
	return result.Message.Content, nil
}

// IsReady returns true if the server responds to GET /api/tags with 200.
func (o *Ollama) IsReady(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := o.httpClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
