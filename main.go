package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	stateFilter      string
	batchNumber      int
	outputDir        string
	catalogPath      string
	settingsPath     string
	pageTemplatePath string
	hubTemplatePath  string
	overwriteMode    bool
	debugMode        bool
)

// runOptions carries the parsed flags into run
type runOptions struct {
	State            string
	Batch            int
	OutputDirectory  *string
	CatalogPath      string
	SettingsPath     string
	PageTemplatePath string
	HubTemplatePath  string
	Overwrite        bool
}

// providerFactory builds the completion backend once settings are known
type providerFactory func(settings CompletionSettings, apiKey, siteURL string) (Provider, error)

var rootCmd = &cobra.Command{
	Use:   "city-writer",
	Short: "Generate city landing pages with an LLM",
	Long: `Generates one landing page per city in the catalog, plus a hub page per
state and a JSON generation log. Cities whose page already exists are skipped,
so an interrupted run can simply be started again.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger(debugMode)
		if err != nil {
			return errors.Wrap(err, "creating logger")
		}
		zap.ReplaceGlobals(logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Missing files are fine, the environment may already be set
		_ = godotenv.Load(".env", ".env.local")

		opts := runOptions{
			State:            stateFilter,
			Batch:            batchNumber,
			CatalogPath:      catalogPath,
			SettingsPath:     settingsPath,
			PageTemplatePath: pageTemplatePath,
			HubTemplatePath:  hubTemplatePath,
			Overwrite:        overwriteMode,
		}
		if cmd.Flags().Changed("output") {
			opts.OutputDirectory = &outputDir
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return run(ctx, opts, cmd.ErrOrStderr(), NewProvider)
	},
}

// run executes one generation run. Per-city failures are reported in the
// log, not the returned error.
func run(ctx context.Context, opts runOptions, stderr io.Writer, newProvider providerFactory) error {
	overrides := opts.overrides()

	settings, err := LoadSettings(overrides)
	if err != nil {
		return err
	}

	credentialEnv := settings.Completion.CredentialEnv()
	apiKey := os.Getenv(credentialEnv)
	if apiKey == "" {
		fmt.Fprintf(stderr, "%s environment variable is required.\n", credentialEnv)
		fmt.Fprintf(stderr, "Usage: %s=your-key city-writer [--state <state>] [--batch <n>]\n", credentialEnv)
		return &ConfigError{Reason: "missing " + credentialEnv}
	}

	catalog, err := LoadCatalog(opts.CatalogPath)
	if err != nil {
		return err
	}

	units, err := SelectUnits(catalog, Filters{State: opts.State, Batch: opts.Batch}, settings.BatchSize)
	if err != nil {
		var cfgErr *ConfigError
		if errors.As(err, &cfgErr) && opts.State != "" && len(cfgErr.Details) > 0 {
			fmt.Fprintf(stderr, "No cities found for state: %s\n", opts.State)
			fmt.Fprintln(stderr, "Available states:")
			for _, s := range cfgErr.Details {
				fmt.Fprintf(stderr, "  - %s\n", s)
			}
		}
		return err
	}

	if line := describeBatch(opts.Batch, settings.BatchSize, len(units), catalog.Len()); line != "" {
		zap.S().Info(line)
	}
	if len(units) == 0 {
		zap.S().Warn("No cities selected, nothing to do")
	}

	provider, err := newProvider(settings.Completion, apiKey, settings.SiteURL)
	if err != nil {
		return err
	}
	zap.S().Infof("Using %s model %s", settings.Completion.Provider, provider.Model())

	emitter, err := NewEmitter(settings, overrides)
	if err != nil {
		return err
	}

	orchestrator := NewOrchestrator(NewCompletionClient(provider, settings), emitter, settings)
	orchestrator.SetOverwrite(opts.Overwrite)

	if _, err := orchestrator.Run(ctx, units); err != nil {
		return err
	}
	return nil
}

// overrides collects the options that replace embedded defaults
func (o runOptions) overrides() *ConfigOverrides {
	overrides := &ConfigOverrides{OutputDirectory: o.OutputDirectory}
	if o.SettingsPath != "" {
		overrides.SettingsPath = &o.SettingsPath
	}
	if o.CatalogPath != "" {
		overrides.CatalogPath = &o.CatalogPath
	}
	if o.PageTemplatePath != "" {
		overrides.PageTemplatePath = &o.PageTemplatePath
	}
	if o.HubTemplatePath != "" {
		overrides.HubTemplatePath = &o.HubTemplatePath
	}
	return overrides
}

// describeBatch returns the progress line for a batch run, or "" when no
// batch was requested or it selected nothing.
func describeBatch(batch, batchSize, selected, total int) string {
	if batch <= 0 || selected == 0 {
		return ""
	}
	start := (batch-1)*batchSize + 1
	return fmt.Sprintf("Batch %d: cities %d-%d of %d", batch, start, start+selected-1, total)
}

func init() {
	rootCmd.Flags().StringVar(&stateFilter, "state", "", "Only generate cities in this state (case-insensitive)")
	rootCmd.Flags().IntVar(&batchNumber, "batch", 0, "Only generate the Nth batch of cities (1-based)")
	rootCmd.Flags().StringVar(&outputDir, "output", ".", "Project root that receives the pages and generation log")
	rootCmd.Flags().StringVar(&catalogPath, "catalog", "", "Path to a custom city catalog YAML file")
	rootCmd.Flags().StringVar(&settingsPath, "settings", "", "Path to a custom settings file")
	rootCmd.Flags().StringVar(&pageTemplatePath, "page-template", "", "Path to a custom city page template")
	rootCmd.Flags().StringVar(&hubTemplatePath, "hub-template", "", "Path to a custom state page template")
	rootCmd.Flags().BoolVar(&overwriteMode, "overwrite", false, "Regenerate cities whose page already exists")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
