// Package llm provides a small, pluggable chat client used by the query
// clarifier. Providers: an OpenAI-compatible HTTP endpoint, Gemini's
// native REST API, and langchaingo's Google AI binding.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// ErrDisabled is returned by NewFromEnv when no usable provider is configured.
var ErrDisabled = errors.New("llm client disabled (missing key or base url)")

// Client is the minimal interface the clarifier needs.
type Client interface {
	Chat(ctx context.Context, system, user string) (string, error)
	Name() string
}

// OpenAIClient is an OpenAI-compatible HTTP client.
type OpenAIClient struct {
	BaseURL string
	APIKey  string
	Model   string
	HTTP    *http.Client
}

type chatReq struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
	Stream      bool          `json:"stream,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResp struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Choices []chatChoice `json:"choices"`
	Error   *struct {
		Message string      `json:"message"`
		Type    string      `json:"type,omitempty"`
		Code    interface{} `json:"code,omitempty"`
	} `json:"error,omitempty"`
}

type chatChoice struct {
	Index        int         `json:"index"`
	FinishReason string      `json:"finish_reason"`
	Message      chatMessage `json:"message"`
}

// NewFromEnv creates a client using relaxed env precedence.
// Provider selection: LLM_PROVIDER in {openai, gemini, googleai}; default
// is openai-compatible against Google's OpenAI endpoint.
// Key precedence: LLM_API_KEY > GEMINI_API_KEY > GOOGLE_API_KEY > OPENAI_API_KEY.
// Local hosts (localhost/127.0.0.1) allow empty key or LLM_ALLOW_NO_KEY=true.
func NewFromEnv() (Client, error) {
	key := firstNonEmpty(
		os.Getenv("LLM_API_KEY"),
		os.Getenv("GEMINI_API_KEY"),
		os.Getenv("GOOGLE_API_KEY"),
		os.Getenv("OPENAI_API_KEY"),
	)
	model := strings.TrimSpace(os.Getenv("LLM_MODEL"))

	timeout := 12 * time.Second
	if v := strings.TrimSpace(os.Getenv("LLM_TIMEOUT_MS")); v != "" {
		if d, err := time.ParseDuration(v + "ms"); err == nil {
			timeout = d
		}
	}

	switch strings.ToLower(strings.TrimSpace(os.Getenv("LLM_PROVIDER"))) {
	case "gemini", "gemini-native":
		if key == "" {
			return nil, ErrDisabled
		}
		return NewGeminiClient(key, model, timeout), nil
	case "googleai", "langchain":
		if key == "" {
			return nil, ErrDisabled
		}
		return NewGoogleAIClient(key, model)
	}

	base := firstNonEmpty(
		os.Getenv("LLM_BASE_URL"),
		os.Getenv("LLM_URL"),
	)
	if base == "" {
		base = "https://generativelanguage.googleapis.com/v1beta/openai"
	}
	base = normalizeBase(base)

	if model == "" {
		model = "gemini-2.5-flash"
	}

	allowNoKey := strings.EqualFold(os.Getenv("LLM_ALLOW_NO_KEY"), "true") ||
		strings.Contains(base, "localhost") || strings.Contains(base, "127.0.0.1")
	if key == "" && !allowNoKey {
		return nil, ErrDisabled
	}

	return &OpenAIClient{
		BaseURL: strings.TrimRight(base, "/"),
		APIKey:  key,
		Model:   model,
		HTTP:    newHTTPClient(timeout),
	}, nil
}

// Name identifies the configured model for diagnostics.
func (c *OpenAIClient) Name() string { return c.Model }

// Chat sends a synchronous chat.completions request.
func (c *OpenAIClient) Chat(ctx context.Context, system, user string) (string, error) {
	reqBody := chatReq{
		Model:       c.Model,
		Messages:    []chatMessage{{Role: "system", Content: system}, {Role: "user", Content: user}},
		MaxTokens:   320,
		Temperature: 0.2,
	}
	b, _ := json.Marshal(reqBody)

	endpoint := c.BaseURL + "/chat/completions"
	httpReq, _ := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(b))
	httpReq.Header.Set("Content-Type", "application/json")
	if strings.TrimSpace(c.APIKey) != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	res, err := c.HTTP.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	body, _ := io.ReadAll(res.Body)
	var out chatResp
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("llm decode failed: %w; raw=%s", err, strings.TrimSpace(string(body)))
	}
	if out.Error != nil {
		return "", errors.New(strings.TrimSpace(out.Error.Message))
	}
	if len(out.Choices) == 0 {
		return "", errors.New("llm: empty choices")
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

// ---------- shared helpers ----------

func newHTTPClient(timeout time.Duration) *http.Client {
	c := &http.Client{Timeout: timeout}
	if strings.EqualFold(os.Getenv("LLM_TRACE"), "true") {
		c.Transport = &loggingRT{base: http.DefaultTransport}
	}
	return c
}

func firstNonEmpty(vs ...string) string {
	for _, v := range vs {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// normalizeBase adds /v1 for local OpenAI-compatible servers if necessary.
func normalizeBase(u string) string {
	s := strings.TrimRight(strings.TrimSpace(u), "/")
	if s == "" {
		return s
	}
	isLocal := strings.Contains(s, "localhost") || strings.Contains(s, "127.0.0.1")
	if isLocal {
		if !strings.HasSuffix(s, "/v1") && !strings.Contains(s, "/openai/v1") {
			s += "/v1"
		}
	}
	return s
}
