package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aktagon/llmkit/anthropic"
	"github.com/aktagon/llmkit/anthropic/types"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const maxResponseBytes = 10 * 1024 * 1024

// NewProvider builds the provider named in settings
func NewProvider(settings CompletionSettings, apiKey, siteURL string) (Provider, error) {
	switch settings.Provider {
	case providerOpenRouter:
		return NewOpenRouterProvider(settings, apiKey, siteURL), nil
	case providerAnthropic:
		return NewAnthropicProvider(settings, apiKey), nil
	default:
		return nil, &ConfigError{Reason: "unknown completion provider: " + settings.Provider}
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Code    any    `json:"code,omitempty"`
	} `json:"error,omitempty"`
}

// OpenRouterProvider calls an OpenAI-compatible chat completions endpoint
type OpenRouterProvider struct {
	apiKey      string
	baseURL     string
	model       string
	maxTokens   int
	temperature float64
	siteURL     string
	siteName    string
	httpClient  *http.Client
}

// NewOpenRouterProvider creates a provider from completion settings
func NewOpenRouterProvider(settings CompletionSettings, apiKey, siteURL string) *OpenRouterProvider {
	timeout := settings.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &OpenRouterProvider{
		apiKey:      apiKey,
		baseURL:     strings.TrimRight(settings.BaseURL, "/"),
		model:       settings.Model,
		maxTokens:   settings.MaxTokens,
		temperature: settings.Temperature,
		siteURL:     siteURL,
		siteName:    settings.SiteName,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

func (p *OpenRouterProvider) Model() string {
	return p.model
}

func (p *OpenRouterProvider) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		MaxTokens:   p.maxTokens,
		Temperature: p.temperature,
	})
	if err != nil {
		return "", errors.Wrap(err, "marshaling request")
	}

	url := p.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "creating request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	if p.siteURL != "" {
		req.Header.Set("HTTP-Referer", p.siteURL)
	}
	if p.siteName != "" {
		req.Header.Set("X-Title", p.siteName)
	}

	start := time.Now()
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", errors.Wrap(err, "reading response")
	}
	zap.S().Debugf("OpenRouter response: status=%d bytes=%d elapsed=%s", resp.StatusCode, len(data), time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &HTTPError{StatusCode: resp.StatusCode, URL: url, Body: truncate(strings.TrimSpace(string(data)), 500)}
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", errors.Wrap(err, "parsing response")
	}
	if parsed.Error != nil {
		return "", errors.Errorf("API error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", nil
	}
	return parsed.Choices[0].Message.Content, nil
}

// AnthropicProvider calls the Anthropic messages API through llmkit
type AnthropicProvider struct {
	apiKey   string
	settings types.RequestSettings
}

// NewAnthropicProvider creates a provider from completion settings
func NewAnthropicProvider(settings CompletionSettings, apiKey string) *AnthropicProvider {
	return &AnthropicProvider{
		apiKey: apiKey,
		settings: types.RequestSettings{
			Model:       settings.Model,
			MaxTokens:   settings.MaxTokens,
			Temperature: settings.Temperature,
		},
	}
}

func (p *AnthropicProvider) Model() string {
	return p.settings.Model
}

func (p *AnthropicProvider) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	response, err := anthropic.PromptWithSettings(systemPrompt, userPrompt, "", p.apiKey, p.settings)
	if err != nil {
		return "", errors.Wrap(err, "anthropic prompt")
	}
	if len(response.Content) == 0 {
		return "", nil
	}
	return response.Content[0].Text, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
