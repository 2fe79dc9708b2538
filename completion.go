package main

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Provider performs a single completion request
type Provider interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	Model() string
}

// Completer turns a prompt into page copy, retrying as configured
type Completer interface {
	Complete(ctx context.Context, prompt string, maxRetries int) (string, error)
}

// SleepFunc waits for d or until ctx is done
type SleepFunc func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// CompletionClient wraps a Provider with retries, output cleanup and caching
type CompletionClient struct {
	provider     Provider
	systemPrompt string
	filters      []ContentFilter
	retryDelay   time.Duration
	minLength    int
	cache        *CompletionCache
	bypassCache  bool
	sleep        SleepFunc
}

// NewCompletionClient creates a client using the retry and cache settings
func NewCompletionClient(provider Provider, settings *Settings) *CompletionClient {
	return &CompletionClient{
		provider:     provider,
		systemPrompt: settings.SystemPrompt(),
		filters:      NewContentFilters(),
		retryDelay:   settings.RetryDelay,
		minLength:    settings.MinContentLength,
		cache:        NewCompletionCache(settings.CacheDir),
		sleep:        sleepContext,
	}
}

// SetBypassCache skips cache reads. Successful completions are still stored.
func (c *CompletionClient) SetBypassCache(bypass bool) {
	c.bypassCache = bypass
}

// Complete makes up to maxRetries attempts. Attempts are separated by the
// fixed retry delay; there is no wait after the last one.
func (c *CompletionClient) Complete(ctx context.Context, prompt string, maxRetries int) (string, error) {
	if maxRetries < 1 {
		maxRetries = 1
	}

	key := c.cache.Key(c.provider.Model(), c.systemPrompt, prompt)
	if !c.bypassCache {
		if text, ok := c.cache.Get(key); ok {
			zap.S().Infof("  → Using cached completion (%d characters)", len(text))
			return text, nil
		}
	}

	var lastErr error
	attempts := 0
	for attempts < maxRetries {
		attempts++
		text, err := c.attempt(ctx, prompt)
		if err == nil {
			if err := c.cache.Put(key, text); err != nil {
				zap.S().Warnf("  Caching completion failed: %v", err)
			}
			return text, nil
		}
		lastErr = err
		zap.S().Warnf("  ✗ Attempt %d/%d failed: %v", attempts, maxRetries, err)

		if attempts == maxRetries || ctx.Err() != nil {
			break
		}
		zap.S().Infof("  → Retrying in %s...", c.retryDelay)
		if err := c.sleep(ctx, c.retryDelay); err != nil {
			lastErr = err
			break
		}
	}

	return "", &CompletionError{Attempts: attempts, Err: lastErr}
}

func (c *CompletionClient) attempt(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	raw, err := c.provider.Generate(ctx, c.systemPrompt, prompt)
	if err != nil {
		return "", err
	}

	text, err := ApplyFilters(c.filters, raw)
	if err != nil {
		return "", errors.Wrap(err, "cleaning completion")
	}

	if n := utf8.RuneCountInString(text); n < c.minLength {
		return "", errors.Wrapf(ErrShortCompletion, "got %d characters, want at least %d", n, c.minLength)
	}
	return text, nil
}
