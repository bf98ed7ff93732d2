package cli

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/repodoc-cli/internal/adapters/driven/ai"
	"github.com/custodia-labs/repodoc-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/repodoc-cli/internal/adapters/driven/ghcli"
	"github.com/custodia-labs/repodoc-cli/internal/adapters/driven/git"
	"github.com/custodia-labs/repodoc-cli/internal/adapters/driven/storage/filesystem"
	"github.com/custodia-labs/repodoc-cli/internal/connectors/github"
	"github.com/custodia-labs/repodoc-cli/internal/core/domain"
	"github.com/custodia-labs/repodoc-cli/internal/core/ports/driven"
	"github.com/custodia-labs/repodoc-cli/internal/core/ports/driving"
	"github.com/custodia-labs/repodoc-cli/internal/core/services"
	"github.com/custodia-labs/repodoc-cli/internal/logger"
)

// newDocumenter wires the pipeline for a run. Replaced in tests.
var newDocumenter = buildDocumenter

func runDocument(cmd *cobra.Command, args []string) error {
	org, err := domain.ParseOrganization(args[0])
	if err != nil {
		return &domain.ConfigError{Key: "organization", Err: err}
	}

	if logFile != "" {
		closer, err := logger.OpenFile(logFile)
		if err != nil {
			return &domain.ConfigError{Key: "log-file", Err: err}
		}
		defer closer.Close()
	}

	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	logger.Info("documenting %s into %s", org, settings.Run.OutputDir)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var confirmer driven.Confirmer
	if settings.Run.Interactive {
		if c, ok := newTerminalConfirmer(cmd.InOrStdin(), cmd.OutOrStdout()); ok {
			confirmer = c
		} else {
			logger.Warn("--interactive ignored: standard input is not a terminal")
		}
	}

	documenter, cleanup, err := newDocumenter(ctx, settings, org, confirmer)
	if err != nil {
		return err
	}
	defer cleanup()

	report, err := documenter.Run(ctx, org)
	if report != nil && (err == nil || len(report.Repositories) > 0) {
		renderReport(cmd.OutOrStdout(), report)
	}
	if err != nil {
		return err
	}
	if !report.FullySucceeded() {
		return errPartial
	}
	return nil
}

// buildDocumenter wires the production adapters. The returned cleanup
// releases the language model client.
func buildDocumenter(
	ctx context.Context,
	settings domain.Settings,
	org domain.OrganizationHandle,
	confirmer driven.Confirmer,
) (driving.Documenter, func(), error) {
	gh := ghcli.New(ghcli.ExecRunner{}, settings.Run.ListLimit)

	var opts []github.Option
	if org.IsEnterprise() {
		opts = append(opts, github.WithBaseURL(org.BaseURL))
	}
	lister := github.NewLister(github.NewClient(settings.GitHubToken, opts...), gh)
	acquirer := git.New(settings.GitHubToken, gh)

	llm, err := ai.CreateAndValidateLLMService(ctx, settings.LLM)
	if err != nil {
		return nil, nil, &domain.ConfigError{Key: "llm", Err: err}
	}
	logger.Info("using %s model %s", settings.LLM.Provider.Description(), llm.ModelName())

	dir, err := file.DefaultDir()
	if err != nil {
		llm.Close()
		return nil, nil, &domain.ConfigError{Key: "prompts", Err: err}
	}
	prompts, err := file.NewPromptStore(filepath.Join(dir, "prompts"))
	if err != nil {
		llm.Close()
		return nil, nil, &domain.ConfigError{Key: "prompts", Err: err}
	}

	documenter := services.NewDocumentationService(
		lister,
		acquirer,
		services.NewTriageEngine(settings.Triage),
		services.NewGenerator(llm, prompts, settings.Generation),
		services.NewAssembler(filesystem.NewDocumentWriter()),
		confirmer,
		settings.Run,
	)

	cleanup := func() {
		if err := llm.Close(); err != nil {
			logger.Debug("close %s client: %v", settings.LLM.Provider, err)
		}
	}
	return documenter, cleanup, nil
}
