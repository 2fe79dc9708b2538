package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultSettings(t *testing.T) {
	s := NewDefaultSettings()

	assert.Equal(t, 20, s.BatchSize)
	assert.Equal(t, 3*time.Second, s.RequestDelay)
	assert.Equal(t, 6*time.Second, s.RetryDelay)
	assert.Equal(t, 3, s.MaxRetries)
	assert.Equal(t, "generation-log.json", s.SummaryFile)
	assert.Equal(t, providerOpenRouter, s.Completion.Provider)
	assert.Equal(t, "tngtech/deepseek-r1t2-chimera:free", s.Completion.Model)
	assert.Equal(t, 8000, s.Completion.MaxTokens)
	assert.Equal(t, "OPENROUTER_API_KEY", s.Completion.CredentialEnv())
	assert.Empty(t, s.Validate())
	assert.Contains(t, s.SystemPrompt(), "SEO")
}

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadSettingsFile(t *testing.T) {
	path := writeSettings(t, `batch_size: 5
request_delay: 500ms
completion:
  provider: anthropic
  model: claude-test
  system_prompt: Custom instruction.
`)
	output := t.TempDir()

	s, err := LoadSettings(&ConfigOverrides{SettingsPath: &path, OutputDirectory: &output})
	require.NoError(t, err)

	assert.Equal(t, 5, s.BatchSize)
	assert.Equal(t, 500*time.Millisecond, s.RequestDelay)
	assert.Equal(t, providerAnthropic, s.Completion.Provider)
	assert.Equal(t, "claude-test", s.Completion.Model)
	assert.Equal(t, "ANTHROPIC_API_KEY", s.Completion.CredentialEnv())
	assert.Equal(t, "Custom instruction.", s.SystemPrompt())

	// Unset keys keep their defaults
	assert.Equal(t, 3, s.MaxRetries)
	assert.Equal(t, 8000, s.Completion.MaxTokens)

	assert.Equal(t, filepath.Join(output, "app", "locations"), s.PagesRoot())
	assert.Equal(t, filepath.Join(output, "generation-log.json"), s.SummaryPath())
}

func TestLoadSettingsEnvOverride(t *testing.T) {
	path := writeSettings(t, "batch_size: 5\nmax_retries: 3\n")
	t.Setenv("CITY_WRITER_BATCH_SIZE", "7")

	s, err := LoadSettings(&ConfigOverrides{SettingsPath: &path})
	require.NoError(t, err)
	assert.Equal(t, 7, s.BatchSize)
}

func TestLoadSettingsErrors(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.yaml")
	_, err := LoadSettings(&ConfigOverrides{SettingsPath: &missing})
	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Contains(t, cfgErr.Reason, "settings file missing")

	invalid := writeSettings(t, "batch_size: 0\nmax_retries: 0\ncompletion:\n  provider: smoke-signals\n")
	_, err = LoadSettings(&ConfigOverrides{SettingsPath: &invalid})
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "invalid settings", cfgErr.Reason)
	assert.Len(t, cfgErr.Details, 3)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Settings)
		want   string
	}{
		{"negative delay", func(s *Settings) { s.RetryDelay = -time.Second }, "delays must not be negative"},
		{"empty model", func(s *Settings) { s.Completion.Model = "" }, "completion.model"},
		{"missing base url", func(s *Settings) { s.Completion.BaseURL = "" }, "base_url"},
		{"empty summary file", func(s *Settings) { s.SummaryFile = "" }, "summary_file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewDefaultSettings()
			tt.modify(s)

			errs := s.Validate()
			require.Len(t, errs, 1)
			assert.True(t, strings.Contains(errs[0].Error(), tt.want), errs[0].Error())
		})
	}
}

func TestReadOverride(t *testing.T) {
	content, err := readOverride(nil, "fallback")
	require.NoError(t, err)
	assert.Equal(t, "fallback", content)

	path := filepath.Join(t.TempDir(), "override.txt")
	require.NoError(t, os.WriteFile(path, []byte("custom"), 0644))
	content, err = readOverride(&path, "fallback")
	require.NoError(t, err)
	assert.Equal(t, "custom", content)
}
