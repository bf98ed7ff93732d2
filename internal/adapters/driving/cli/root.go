// Package cli provides the repodoc command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/repodoc-cli/internal/adapters/driven/config/env"
	"github.com/custodia-labs/repodoc-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/repodoc-cli/internal/adapters/driven/config/memory"
	"github.com/custodia-labs/repodoc-cli/internal/core/domain"
	"github.com/custodia-labs/repodoc-cli/internal/core/services"
	"github.com/custodia-labs/repodoc-cli/internal/logger"
)

// version is set at build time with -ldflags "-X .../cli.version=...".
var version = "dev"

// Global flags.
var (
	envFile    string
	configPath string
	logFile    string
	verbose    bool
)

// Run flags. They only override configuration when set explicitly.
var (
	outputDir       string
	provider        string
	model           string
	sections        []string
	repositories    []string
	parallel        int
	includeArchived bool
	includeForks    bool
	budget          int64
	contextLimit    int
	forceChunking   bool
	interactive     bool
)

// flagKeys maps run flags to configuration keys.
var flagKeys = map[string]string{
	"output":           services.KeyOutputDir,
	"provider":         services.KeyLLMProvider,
	"model":            services.KeyLLMModel,
	"sections":         services.KeySections,
	"repo":             services.KeyRepositories,
	"parallel":         services.KeyParallel,
	"include-archived": services.KeyIncludeArchived,
	"include-forks":    services.KeyIncludeForks,
	"budget":           services.KeyBudget,
	"context-limit":    services.KeyContextLimit,
	"force-chunking":   services.KeyForceChunking,
	"interactive":      services.KeyInteractive,
}

var rootCmd = &cobra.Command{
	Use:   "repodoc <organization>",
	Short: "Generate documentation for every repository of a GitHub organization",
	Long: `repodoc clones or updates every repository of a GitHub organization and
writes AI generated documentation into a docs/ folder inside each checkout:
getting started, data elements, flow chart and architecture overview.

The organization may be a name ("acme") or a URL ("https://github.com/acme").

GITHUB_TOKEN and the API key of the selected provider (ANTHROPIC_API_KEY by
default) are read from the environment or from the .env file.`,
	Example: `  repodoc acme
  repodoc https://github.com/acme --repo api --repo web
  repodoc acme --provider openai --model gpt-4o --parallel 4`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		logger.SetOutput(cmd.ErrOrStderr())
		return nil
	},
	RunE: runDocument,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&envFile, "env-file", env.DefaultFile, "environment file with credentials")
	pf.StringVar(&configPath, "config", "", "configuration file (default ~/.repodoc/config.toml)")
	pf.StringVar(&logFile, "log-file", "", "also write the log to this file")
	pf.BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	f := rootCmd.Flags()
	f.StringVarP(&outputDir, "output", "o", domain.DefaultOutputDir, "workspace directory receiving one checkout per repository")
	f.StringVar(&provider, "provider", domain.AIProviderAnthropic.String(), "LLM provider: anthropic, openai, gemini or ollama")
	f.StringVar(&model, "model", "", "LLM model (default depends on the provider)")
	f.StringSliceVar(&sections, "sections", nil, "sections to generate (default getting-started,data-elements,flow-chart,architecture-overview)")
	f.StringArrayVar(&repositories, "repo", nil, "only document this repository (repeatable)")
	f.IntVar(&parallel, "parallel", domain.DefaultParallelism, "repositories processed at once")
	f.BoolVar(&includeArchived, "include-archived", false, "include archived repositories")
	f.BoolVar(&includeForks, "include-forks", false, "include forked repositories")
	f.Int64Var(&budget, "budget", domain.DefaultBudget, "maximum bytes of file content per repository")
	f.IntVar(&contextLimit, "context-limit", domain.DefaultContextLimit, "maximum bytes of content per completion request")
	f.BoolVar(&forceChunking, "force-chunking", false, "always summarise in chunks before consolidating")
	f.BoolVarP(&interactive, "interactive", "i", false, "ask before documenting each repository")
}

// Execute runs the root command and returns the process exit code.
// Cancelling ctx stops the run between steps.
func Execute(ctx context.Context) int {
	return exitCode(rootCmd.ExecuteContext(ctx), rootCmd.ErrOrStderr())
}

// loadSettings resolves and validates the run settings from flags,
// environment, config file and defaults.
func loadSettings(cmd *cobra.Command) (domain.Settings, error) {
	loader, err := settingsLoader(cmd)
	if err != nil {
		return domain.Settings{}, err
	}
	return loader.Load()
}

func settingsLoader(cmd *cobra.Command) (*services.SettingsLoader, error) {
	if err := env.Load(envFile, cmd.Flags().Changed("env-file")); err != nil {
		return nil, &domain.ConfigError{Key: "env-file", Err: err}
	}

	store, err := file.NewConfigStore(configPath)
	if err != nil {
		return nil, &domain.ConfigError{Key: "config", Err: err}
	}
	logger.Debug("configuration file: %s", store.Path())

	return services.NewSettingsLoader(store, flagOverrides(cmd), env.Lookup), nil
}

// flagOverrides records only the flags set on the command line.
func flagOverrides(cmd *cobra.Command) *memory.ConfigStore {
	values := make(map[string]any)
	flags := cmd.Flags()
	for name, key := range flagKeys {
		if !flags.Changed(name) {
			continue
		}
		switch name {
		case "output":
			values[key] = outputDir
		case "provider":
			values[key] = provider
		case "model":
			values[key] = model
		case "sections":
			values[key] = sections
		case "repo":
			values[key] = repositories
		case "parallel":
			values[key] = parallel
		case "include-archived":
			values[key] = includeArchived
		case "include-forks":
			values[key] = includeForks
		case "budget":
			values[key] = budget
		case "context-limit":
			values[key] = contextLimit
		case "force-chunking":
			values[key] = forceChunking
		case "interactive":
			values[key] = interactive
		}
	}
	return memory.NewConfigStore(values)
}

// Exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitPartial = 2
)

// errPartial reports a run that finished with failed repositories or sections.
var errPartial = errors.New("some repositories were not fully documented")

// exitCode maps a command error to the process exit code and prints it.
func exitCode(err error, stderr io.Writer) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, errPartial):
		return ExitPartial
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitFailure
	}
}
