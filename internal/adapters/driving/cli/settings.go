package cli

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/repodoc-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/repodoc-cli/internal/core/domain"
	"github.com/custodia-labs/repodoc-cli/internal/core/services"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure repodoc settings.

Settings are read from the configuration file, the environment and the .env
file, and command line flags, in increasing order of precedence.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard that writes the LLM provider and output directory to the configuration file.`,
	RunE:  runSettingsWizard,
}

var settingsPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file and prompt directory",
	RunE:  runSettingsPath,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	settingsCmd.AddCommand(settingsPathCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	loader, err := settingsLoader(cmd)
	if err != nil {
		return err
	}
	settings, err := loader.Resolve()
	if err != nil {
		return err
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[GitHub]")
	cmd.Printf("  Token: %s\n", secretStatus(settings.GitHubToken))
	cmd.Printf("  Output directory: %s\n", settings.Run.OutputDir)
	cmd.Printf("  Parallel: %d\n", settings.Run.Parallelism)
	cmd.Printf("  Include archived: %t, forks: %t\n", settings.Run.IncludeArchived, settings.Run.IncludeForks)
	cmd.Println()

	cmd.Println("[LLM]")
	cmd.Printf("  Provider: %s\n", settings.LLM.Provider.Description())
	model := settings.LLM.Model
	if model == "" {
		model = "(provider default)"
	}
	cmd.Printf("  Model: %s\n", model)
	if settings.LLM.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.LLM.BaseURL)
	}
	if settings.LLM.Provider.RequiresAPIKey() {
		cmd.Printf("  API Key (%s): %s\n", settings.LLM.Provider.APIKeyEnv(), secretStatus(settings.LLM.APIKey))
	}
	cmd.Println()

	cmd.Println("[Triage]")
	cmd.Printf("  Budget: %s\n", formatBytes(settings.Triage.Budget))
	cmd.Printf("  Max file size: %s\n", formatBytes(settings.Triage.MaxFileSize))
	cmd.Printf("  Excerpt limit: %s\n", formatBytes(settings.Triage.ExcerptLimit))
	for _, tier := range domain.AllTiers() {
		cmd.Printf("  Weight %s: %d\n", tier, settings.Triage.Weights.Weight(tier))
	}
	cmd.Println()

	cmd.Println("[Generation]")
	names := make([]string, len(settings.Generation.Sections))
	for i, kind := range settings.Generation.Sections {
		names[i] = kind.String()
	}
	cmd.Printf("  Sections: %s\n", strings.Join(names, ", "))
	cmd.Printf("  Context limit: %s\n", formatBytes(int64(settings.Generation.ContextLimit)))
	cmd.Printf("  Max attempts: %d (backoff %s to %s)\n",
		settings.Generation.MaxAttempts, settings.Generation.InitialBackoff, settings.Generation.MaxBackoff)
	cmd.Println()

	status := "ready"
	if err := settings.Validate(); err != nil {
		status = err.Error()
	}
	cmd.Printf("Status: %s\n", status)
	return nil
}

func runSettingsPath(cmd *cobra.Command, _ []string) error {
	store, err := file.NewConfigStore(configPath)
	if err != nil {
		return err
	}
	dir, err := file.DefaultDir()
	if err != nil {
		return err
	}
	cmd.Printf("Config:  %s\n", store.Path())
	cmd.Printf("Prompts: %s\n", filepath.Join(dir, "prompts"))
	return nil
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	store, err := file.NewConfigStore(configPath)
	if err != nil {
		return err
	}
	return settingsWizard(cmd, bufio.NewReader(cmd.InOrStdin()), store, readPassword)
}

// configWriter is the part of the config store the wizard needs.
type configWriter interface {
	GetString(key string) string
	Set(key string, value any) error
	Path() string
}

func settingsWizard(cmd *cobra.Command, reader *bufio.Reader, store configWriter, secret func(*bufio.Reader) string) error {
	cmd.Println("repodoc Setup Wizard")
	cmd.Println("====================")
	cmd.Println()

	cmd.Println("Step 1: Select LLM Provider")
	cmd.Println("---------------------------")
	providers := domain.AllAIProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	selected := providers[parseChoice(readLine(reader), len(providers), 1)-1]
	if err := store.Set(services.KeyLLMProvider, selected.String()); err != nil {
		return fmt.Errorf("failed to save provider: %w", err)
	}

	cmd.Print("Model (blank for the provider default): ")
	if model := readLine(reader); model != "" {
		if err := store.Set(services.KeyLLMModel, model); err != nil {
			return fmt.Errorf("failed to save model: %w", err)
		}
	}

	if selected == domain.AIProviderOllama {
		cmd.Print("Base URL [http://localhost:11434]: ")
		if baseURL := readLine(reader); baseURL != "" {
			if err := store.Set(services.KeyLLMBaseURL, baseURL); err != nil {
				return fmt.Errorf("failed to save base URL: %w", err)
			}
		}
	}

	if selected.RequiresAPIKey() {
		cmd.Printf("API key (blank to read %s from the environment): ", selected.APIKeyEnv())
		if key := secret(reader); key != "" {
			if err := store.Set(services.KeyLLMAPIKey, key); err != nil {
				return fmt.Errorf("failed to save API key: %w", err)
			}
		}
		cmd.Println()
	}

	cmd.Println()
	cmd.Println("Step 2: Output Directory")
	cmd.Println("------------------------")
	current := store.GetString(services.KeyOutputDir)
	if current == "" {
		current = domain.DefaultOutputDir
	}
	cmd.Printf("Output directory [%s]: ", current)
	if dir := readLine(reader); dir != "" {
		if err := store.Set(services.KeyOutputDir, dir); err != nil {
			return fmt.Errorf("failed to save output directory: %w", err)
		}
	}

	cmd.Println()
	cmd.Printf("Settings saved to %s\n", store.Path())
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo on a terminal, or a plain line otherwise.
func readPassword(reader *bufio.Reader) string {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func secretStatus(secret string) string {
	if secret == "" {
		return "(not set)"
	}
	return maskAPIKey(secret)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
