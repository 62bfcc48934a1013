package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/coursekit/coursekit-backend/internal/apperr"
	"github.com/coursekit/coursekit-backend/internal/logger"
	"github.com/coursekit/coursekit-backend/internal/utils"
)

// Client is the OpenAI-compatible chat client used for block content
// generation. Responses are requested as JSON so the caller can shape them
// per block variant.
type Client interface {
	GenerateJSON(ctx context.Context, system, user string, maxTokens int, temperature float64) (json.RawMessage, error)
}

type client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	maxRetries int
}

func NewClient(log *logger.Logger) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	apiKey := strings.TrimSpace(utils.GetEnv("OPENAI_API_KEY", "", log))
	if apiKey == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}
	baseURL := strings.TrimRight(utils.GetEnv("OPENAI_BASE_URL", "https://api.openai.com/v1", log), "/")
	model := utils.GetEnv("OPENAI_MODEL", "gpt-4o-mini", log)
	timeoutSec := utils.GetEnvAsInt("OPENAI_TIMEOUT_SECONDS", 120, log)
	maxRetries := utils.GetEnvAsInt("OPENAI_MAX_RETRIES", 3, log)

	return &client{
		log:        log.With("service", "OpenAIClient"),
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
		maxRetries: maxRetries,
	}, nil
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	MaxTokens      int           `json:"max_tokens,omitempty"`
	Temperature    *float64      `json:"temperature,omitempty"`
	ResponseFormat *respFormat   `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type respFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *client) GenerateJSON(ctx context.Context, system, user string, maxTokens int, temperature float64) (json.RawMessage, error) {
	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		MaxTokens:      maxTokens,
		Temperature:    &temperature,
		ResponseFormat: &respFormat{Type: "json_object"},
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	// exponential backoff: 1s, 2s, 4s (cap ~8s)
	backoff := 1 * time.Second
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			if backoff < 8*time.Second {
				backoff *= 2
			}
		}

		raw, status, err := c.post(ctx, "/chat/completions", body)
		if err != nil {
			lastErr = apperr.Transient("openai_request", err)
			c.log.Warn("openai request failed", "attempt", attempt, "error", err)
			continue
		}
		if status == http.StatusUnauthorized {
			return nil, apperr.Auth("openai_unauthorized", fmt.Errorf("openai: status %d", status))
		}
		if status == http.StatusTooManyRequests || status >= 500 {
			lastErr = apperr.Transient("openai_status", fmt.Errorf("openai: status %d", status))
			c.log.Warn("openai transient status", "attempt", attempt, "status", status)
			continue
		}
		if status >= 400 {
			return nil, fmt.Errorf("openai: status %d: %s", status, truncate(string(raw), 512))
		}

		var parsed chatResponse
		if err := json.Unmarshal(raw, &parsed); err != nil {
			return nil, fmt.Errorf("openai: decode response: %w", err)
		}
		if parsed.Error != nil {
			return nil, fmt.Errorf("openai: %s", parsed.Error.Message)
		}
		if len(parsed.Choices) == 0 {
			return nil, fmt.Errorf("openai: empty choices")
		}
		return json.RawMessage(parsed.Choices[0].Message.Content), nil
	}
	if lastErr == nil {
		lastErr = apperr.Transient("openai_retries", fmt.Errorf("openai: retries exhausted"))
	}
	return nil, lastErr
}

func (c *client) post(ctx context.Context, path string, body []byte) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return raw, resp.StatusCode, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
