package main

import (
	_ "embed"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const defaultConfigDir = ".city-writer/"

const (
	providerOpenRouter = "openrouter"
	providerAnthropic  = "anthropic"
)

// Embedded configuration files
//
//go:embed config/settings.yaml
var defaultSettings string

//go:embed config/system-prompt.md
var defaultSystemPrompt string

//go:embed config/cities.yaml
var defaultCatalog []byte

//go:embed config/city-page.tsx.tmpl
var defaultPageTemplate string

//go:embed config/state-page.tsx.tmpl
var defaultHubTemplate string

// ConfigOverrides allows overriding embedded defaults with file paths
type ConfigOverrides struct {
	SettingsPath     *string
	CatalogPath      *string
	PageTemplatePath *string
	HubTemplatePath  *string
	OutputDirectory  *string
}

// CompletionSettings configures the text-completion backend
type CompletionSettings struct {
	Provider     string        `yaml:"provider"`
	Model        string        `yaml:"model"`
	BaseURL      string        `yaml:"base_url"`
	MaxTokens    int           `yaml:"max_tokens"`
	Temperature  float64       `yaml:"temperature"`
	Timeout      time.Duration `yaml:"timeout"`
	SiteName     string        `yaml:"site_name"`
	SystemPrompt string        `yaml:"system_prompt"`
}

// CredentialEnv names the environment variable holding the provider's API key.
func (c CompletionSettings) CredentialEnv() string {
	if c.Provider == providerAnthropic {
		return "ANTHROPIC_API_KEY"
	}
	return "OPENROUTER_API_KEY"
}

// Settings represents the YAML configuration structure
type Settings struct {
	OutputDirectory  string             `yaml:"output_directory"`
	PagesDir         string             `yaml:"pages_dir"`
	SummaryFile      string             `yaml:"summary_file"`
	SiteURL          string             `yaml:"site_url"`
	BatchSize        int                `yaml:"batch_size"`
	RequestDelay     time.Duration      `yaml:"request_delay"`
	RetryDelay       time.Duration      `yaml:"retry_delay"`
	FailureDelay     time.Duration      `yaml:"failure_delay"`
	MaxRetries       int                `yaml:"max_retries"`
	MinContentLength int                `yaml:"min_content_length"`
	CacheDir         string             `yaml:"cache_dir"`
	Completion       CompletionSettings `yaml:"completion"`
}

// PagesRoot is the directory that holds one sub-directory per state.
func (s *Settings) PagesRoot() string {
	return filepath.Join(s.OutputDirectory, s.PagesDir)
}

// SummaryPath is the fixed location of the run summary.
func (s *Settings) SummaryPath() string {
	return filepath.Join(s.OutputDirectory, s.SummaryFile)
}

// SystemPrompt returns the configured system instruction or the embedded one.
func (s *Settings) SystemPrompt() string {
	if p := strings.TrimSpace(s.Completion.SystemPrompt); p != "" {
		return p
	}
	return strings.TrimSpace(defaultSystemPrompt)
}

// Validate reports every invalid setting at once.
func (s *Settings) Validate() []error {
	var errs []error
	if s.OutputDirectory == "" {
		errs = append(errs, errors.New("output_directory must not be empty"))
	}
	if s.SummaryFile == "" {
		errs = append(errs, errors.New("summary_file must not be empty"))
	}
	if s.BatchSize <= 0 {
		errs = append(errs, errors.Errorf("batch_size must be positive, got %d", s.BatchSize))
	}
	if s.MaxRetries < 1 {
		errs = append(errs, errors.Errorf("max_retries must be at least 1, got %d", s.MaxRetries))
	}
	if s.MinContentLength < 0 {
		errs = append(errs, errors.Errorf("min_content_length must not be negative, got %d", s.MinContentLength))
	}
	if s.RequestDelay < 0 || s.RetryDelay < 0 || s.FailureDelay < 0 {
		errs = append(errs, errors.New("delays must not be negative"))
	}
	switch s.Completion.Provider {
	case providerOpenRouter:
		if s.Completion.BaseURL == "" {
			errs = append(errs, errors.New("completion.base_url is required for openrouter"))
		}
	case providerAnthropic:
	default:
		errs = append(errs, errors.Errorf("unknown completion.provider %q", s.Completion.Provider))
	}
	if s.Completion.Model == "" {
		errs = append(errs, errors.New("completion.model must not be empty"))
	}
	if s.Completion.MaxTokens <= 0 {
		errs = append(errs, errors.Errorf("completion.max_tokens must be positive, got %d", s.Completion.MaxTokens))
	}
	return errs
}

// NewDefaultSettings parses the embedded settings file
func NewDefaultSettings() *Settings {
	var settings Settings
	if err := yaml.Unmarshal([]byte(defaultSettings), &settings); err != nil {
		// The embedded file ships with the binary
		panic(errors.Wrap(err, "parsing embedded settings"))
	}
	return &settings
}

// LoadSettings resolves settings from the explicit override, or from the
// default config directory which is seeded on first run.
func LoadSettings(overrides *ConfigOverrides) (*Settings, error) {
	var settings *Settings
	var err error

	if overrides != nil && overrides.SettingsPath != nil {
		// Explicit settings file must exist
		settings, err = loadSettingsFile(*overrides.SettingsPath)
		if err != nil {
			return nil, err
		}
	} else {
		if err := ensureConfigExists(); err != nil {
			return nil, errors.Wrap(err, "ensuring config files exist")
		}
		settings, err = loadSettingsFile(GetConfigPath("settings.yaml"))
		if err != nil {
			return nil, err
		}
	}

	if overrides != nil && overrides.OutputDirectory != nil {
		settings.OutputDirectory = *overrides.OutputDirectory
	}

	if errs := settings.Validate(); len(errs) > 0 {
		details := make([]string, 0, len(errs))
		for _, e := range errs {
			details = append(details, e.Error())
		}
		return nil, &ConfigError{Reason: "invalid settings", Details: details}
	}
	return settings, nil
}

// loadSettingsFile overlays a YAML file and CITY_WRITER_* environment
// variables on top of the embedded defaults.
func loadSettingsFile(path string) (*Settings, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, &ConfigError{Reason: "settings file missing: " + path}
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("CITY_WRITER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		return nil, &ConfigError{Reason: "parsing settings file " + path + ": " + err.Error()}
	}

	settings := NewDefaultSettings()
	if err := v.Unmarshal(settings, func(config *mapstructure.DecoderConfig) {
		config.TagName = "yaml"
	}); err != nil {
		return nil, &ConfigError{Reason: "decoding settings file " + path + ": " + err.Error()}
	}

	zap.S().Debugf("Loaded settings from %s", path)
	return settings, nil
}

// GetConfigPath returns the full path to a config file
func GetConfigPath(filename string) string {
	return filepath.Join(defaultConfigDir, filename)
}

// ensureConfigExists creates config directory and writes settings.yaml if needed
func ensureConfigExists() error {
	if err := os.MkdirAll(defaultConfigDir, 0755); err != nil {
		return errors.Wrap(err, "creating config directory")
	}

	// settings.yaml is meant to be customized by users
	settingsFile := GetConfigPath("settings.yaml")
	if _, err := os.Stat(settingsFile); os.IsNotExist(err) {
		if err := os.WriteFile(settingsFile, []byte(defaultSettings), 0644); err != nil {
			return errors.Wrap(err, "writing settings.yaml")
		}
		zap.S().Infof("Wrote default settings to %s", settingsFile)
	}

	return nil
}

// readOverride returns the override file's content, or fallback when no
// override is set.
func readOverride(path *string, fallback string) (string, error) {
	if path == nil {
		return fallback, nil
	}
	data, err := os.ReadFile(*path)
	if err != nil {
		return "", &ConfigError{Reason: "reading " + *path + ": " + err.Error()}
	}
	return string(data), nil
}
