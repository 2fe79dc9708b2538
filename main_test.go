package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const runCatalog = `- {city: Las Vegas, state: Nevada, state_abbr: NV}
- {city: Mesa, state: Arizona, state_abbr: AZ}
- {city: Reno, state: Nevada, state_abbr: NV}
`

const runSettings = `batch_size: 20
request_delay: 0s
retry_delay: 0s
failure_delay: 0s
max_retries: 1
cache_dir: ""
`

// runFixture writes a settings file and catalog and returns options rooted
// in a temp output directory
func runFixture(t *testing.T) runOptions {
	t.Helper()
	dir := t.TempDir()
	settings := filepath.Join(dir, "settings.yaml")
	catalog := filepath.Join(dir, "cities.yaml")
	output := filepath.Join(dir, "out")
	require.NoError(t, os.WriteFile(settings, []byte(runSettings), 0644))
	require.NoError(t, os.WriteFile(catalog, []byte(runCatalog), 0644))

	return runOptions{
		SettingsPath:    settings,
		CatalogPath:     catalog,
		OutputDirectory: &output,
	}
}

func unexpectedProvider(t *testing.T) providerFactory {
	return func(CompletionSettings, string, string) (Provider, error) {
		t.Error("provider should not be built")
		return nil, errors.New("unexpected")
	}
}

func failingProvider(t *testing.T) providerFactory {
	return func(CompletionSettings, string, string) (Provider, error) {
		ctrl := gomock.NewController(t)
		provider := NewMockProvider(ctrl)
		provider.EXPECT().Model().Return("test-model").AnyTimes()
		provider.EXPECT().Generate(gomock.Any(), gomock.Any(), gomock.Any()).
			Return("", &HTTPError{StatusCode: 503, URL: "test"}).Times(3)
		return provider, nil
	}
}

func TestRun(t *testing.T) {
	tests := []struct {
		name       string
		apiKey     string
		state      string
		factory    func(t *testing.T) providerFactory
		wantErr    bool
		wantStderr []string
		wantFailed int
	}{
		{
			name:       "missing credential",
			apiKey:     "",
			factory:    unexpectedProvider,
			wantErr:    true,
			wantStderr: []string{"OPENROUTER_API_KEY environment variable is required", "Usage:"},
		},
		{
			name:       "unknown state",
			apiKey:     "test-key",
			state:      "Atlantis",
			factory:    unexpectedProvider,
			wantErr:    true,
			wantStderr: []string{"No cities found for state: Atlantis", "Available states:", "  - Nevada", "  - Arizona"},
		},
		{
			name:       "every city fails",
			apiKey:     "test-key",
			factory:    failingProvider,
			wantFailed: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("OPENROUTER_API_KEY", tt.apiKey)
			opts := runFixture(t)
			opts.State = tt.state

			var stderr bytes.Buffer
			err := run(context.Background(), opts, &stderr, tt.factory(t))

			if tt.wantErr {
				var cfgErr *ConfigError
				require.True(t, errors.As(err, &cfgErr), "got %v", err)
			} else {
				require.NoError(t, err)
			}
			for _, s := range tt.wantStderr {
				assert.Contains(t, stderr.String(), s)
			}

			data, readErr := os.ReadFile(filepath.Join(*opts.OutputDirectory, "generation-log.json"))
			if tt.wantErr {
				assert.True(t, os.IsNotExist(readErr), "no summary expected after a setup error")
				return
			}
			require.NoError(t, readErr)
			var summary RunSummary
			require.NoError(t, json.Unmarshal(data, &summary))
			assert.Equal(t, tt.wantFailed, summary.Failed)
		})
	}
}

func TestDescribeBatch(t *testing.T) {
	tests := []struct {
		name                            string
		batch, batchSize, selected, all int
		expected                        string
	}{
		{"first batch", 1, 20, 20, 100, "Batch 1: cities 1-20 of 100"},
		{"partial batch", 3, 20, 5, 45, "Batch 3: cities 41-45 of 45"},
		{"past the end", 3, 20, 0, 40, ""},
		{"no batch", 0, 20, 100, 100, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := describeBatch(tt.batch, tt.batchSize, tt.selected, tt.all)
			if result != tt.expected {
				t.Errorf("describeBatch() = %q, want %q", result, tt.expected)
			}
		})
	}
}
