package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/edgard/schoolbot/internal/prompt"
)

const maxResponseBytes = 1 << 20

// YandexConfig configures a YandexClient.
type YandexConfig struct {
	Endpoint    string
	APIKey      string
	FolderID    string
	Model       string
	Temperature float32
	MaxTokens   int32
	Timeout     time.Duration
}

// YandexClient calls the YandexGPT foundation models completion API.
type YandexClient struct {
	endpoint    string
	apiKey      string
	modelURI    string
	temperature float32
	maxTokens   int32
	httpClient  *http.Client
}

// NewYandexClient creates a client. The model URI is derived from the
// folder id and model name as gpt://<folder>/<model>.
func NewYandexClient(cfg YandexConfig) *YandexClient {
	return &YandexClient{
		endpoint:    cfg.Endpoint,
		apiKey:      cfg.APIKey,
		modelURI:    ModelURI(cfg.FolderID, cfg.Model),
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
	}
}

// ModelURI formats the deployment identifier expected by the API.
func ModelURI(folderID, model string) string {
	return fmt.Sprintf("gpt://%s/%s", folderID, model)
}

type yandexRequest struct {
	ModelURI          string            `json:"modelUri"`
	CompletionOptions completionOptions `json:"completionOptions"`
	Messages          []prompt.Message  `json:"messages"`
}

type completionOptions struct {
	Temperature float32 `json:"temperature"`
	MaxTokens   int32   `json:"maxTokens"`
}

type yandexResponse struct {
	Result *struct {
		Alternatives []struct {
			Message struct {
				Role string `json:"role"`
				Text string `json:"text"`
			} `json:"message"`
			Status string `json:"status"`
		} `json:"alternatives"`
	} `json:"result"`
}

// Complete sends one completion request and returns the first alternative.
func (c *YandexClient) Complete(ctx context.Context, messages []prompt.Message) (string, error) {
	payload, err := json.Marshal(yandexRequest{
		ModelURI: c.modelURI,
		CompletionOptions: completionOptions{
			Temperature: c.temperature,
			MaxTokens:   c.maxTokens,
		},
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Api-Key "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read completion response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: %d - %s", ErrStatus, resp.StatusCode, truncate(string(body), 400))
	}

	var parsed yandexResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse completion response: %w", err)
	}
	if parsed.Result == nil || len(parsed.Result.Alternatives) == 0 {
		return "", ErrEmptyResponse
	}

	text := strings.TrimSpace(parsed.Result.Alternatives[0].Message.Text)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func truncate(s string, maxChars int) string {
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars])
}
