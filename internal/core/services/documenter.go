package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/repodoc-cli/internal/core/domain"
	"github.com/custodia-labs/repodoc-cli/internal/core/ports/driven"
	"github.com/custodia-labs/repodoc-cli/internal/core/ports/driving"
	"github.com/custodia-labs/repodoc-cli/internal/logger"
)

// Ensure DocumentationService implements the interface.
var _ driving.Documenter = (*DocumentationService)(nil)

// DocumentationService runs the pipeline list -> acquire -> triage -> generate -> assemble.
// Repositories are isolated: a failure in one never stops the others.
type DocumentationService struct {
	lister    driven.RepositoryLister
	acquirer  driven.RepositoryAcquirer
	triage    *TriageEngine
	generator *Generator
	assembler *Assembler
	confirmer driven.Confirmer
	settings  domain.RunSettings

	now func() time.Time
}

// NewDocumentationService creates the pipeline service.
// The confirmer is optional; without it every repository is processed.
func NewDocumentationService(
	lister driven.RepositoryLister,
	acquirer driven.RepositoryAcquirer,
	triage *TriageEngine,
	generator *Generator,
	assembler *Assembler,
	confirmer driven.Confirmer,
	settings domain.RunSettings,
) *DocumentationService {
	return &DocumentationService{
		lister:    lister,
		acquirer:  acquirer,
		triage:    triage,
		generator: generator,
		assembler: assembler,
		confirmer: confirmer,
		settings:  settings,
		now:       time.Now,
	}
}

// Run documents every selected repository of the organization.
func (s *DocumentationService) Run(ctx context.Context, org domain.OrganizationHandle) (*domain.RunReport, error) {
	report := &domain.RunReport{
		ID:           uuid.New().String(),
		Organization: org,
		StartedAt:    s.now(),
	}
	defer func() { report.FinishedAt = s.now() }()

	logger.Section("Discovering repositories")
	repos, err := s.lister.ListRepositories(ctx, org)
	if err != nil {
		var discoveryErr *domain.DiscoveryError
		if !errors.As(err, &discoveryErr) {
			err = &domain.DiscoveryError{Organization: org.Name, Err: err}
		}
		return report, err
	}

	repos = s.filter(repos)
	logger.Info("%d repositories selected in %s", len(repos), org.Name)

	selected, declined := s.confirm(ctx, repos)
	if err := ctx.Err(); err != nil {
		return report, err
	}

	results := make([]domain.RepositoryReport, len(selected))
	if s.settings.Parallelism > 1 {
		g := new(errgroup.Group)
		g.SetLimit(s.settings.Parallelism)
		for i, repo := range selected {
			g.Go(func() error {
				// Never return an error: one repository must not cancel the others.
				results[i] = s.document(ctx, repo)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i, repo := range selected {
			results[i] = s.document(ctx, repo)
		}
	}

	report.Repositories = mergeInOrder(repos, results, declined)
	return report, ctx.Err()
}

// filter applies the archived, fork and name selections.
func (s *DocumentationService) filter(repos []domain.RepositoryDescriptor) []domain.RepositoryDescriptor {
	wanted := make(map[string]bool, len(s.settings.Repositories))
	for _, name := range s.settings.Repositories {
		wanted[name] = false
	}

	var out []domain.RepositoryDescriptor
	for _, repo := range repos {
		if len(wanted) > 0 {
			if _, ok := wanted[repo.Name]; !ok {
				continue
			}
			wanted[repo.Name] = true
		} else {
			if repo.Archived && !s.settings.IncludeArchived {
				logger.Debug("skipping archived repository %s", repo.FullName)
				continue
			}
			if repo.Fork && !s.settings.IncludeForks {
				logger.Debug("skipping fork %s", repo.FullName)
				continue
			}
		}
		out = append(out, repo)
	}

	for _, name := range s.settings.Repositories {
		if !wanted[name] {
			logger.Warn("repository %q not found in organization", name)
		}
	}
	return out
}

// confirm asks about each repository up front, so prompts never interleave
// with parallel work.
func (s *DocumentationService) confirm(
	ctx context.Context,
	repos []domain.RepositoryDescriptor,
) (selected []domain.RepositoryDescriptor, declined map[string]bool) {
	declined = make(map[string]bool)
	if !s.settings.Interactive || s.confirmer == nil {
		return repos, declined
	}

	for _, repo := range repos {
		ok, err := s.confirmer.Confirm(ctx, repo)
		if err != nil {
			if ctx.Err() == nil {
				logger.Warn("confirmation failed for %s, skipping: %v", repo.FullName, err)
			}
			declined[repo.FullName] = true
			continue
		}
		if !ok {
			declined[repo.FullName] = true
			continue
		}
		selected = append(selected, repo)
	}
	return selected, declined
}

// document runs one repository through the pipeline. Failures end up in the report.
func (s *DocumentationService) document(ctx context.Context, repo domain.RepositoryDescriptor) domain.RepositoryReport {
	report := domain.RepositoryReport{Repository: repo, Status: domain.CloneStatusFailed}

	if err := ctx.Err(); err != nil {
		report.Err = err
		return report
	}

	logger.Section(repo.FullName)
	local, err := s.acquirer.Acquire(ctx, repo, s.settings.OutputDir)
	if err != nil {
		var acqErr *domain.AcquisitionError
		if !errors.As(err, &acqErr) {
			err = &domain.AcquisitionError{Repository: repo.FullName, Err: err}
		}
		logger.Error("%v", err)
		report.Err = err
		return report
	}
	report.Status = local.Status
	report.Path = local.Path
	logger.Info("%s: %s", repo.FullName, local.Status)

	files, err := s.triage.Triage(ctx, local)
	if err != nil {
		report.Err = fmt.Errorf("triage %s: %w", repo.FullName, err)
		logger.Error("%v", report.Err)
		return report
	}
	if files.Empty() {
		report.Err = fmt.Errorf("triage %s: %w", repo.FullName, domain.ErrEmptyContent)
		logger.Warn("%v", report.Err)
		return report
	}
	logger.Info("%s: %d files, %d bytes selected", repo.FullName, len(files.Files), files.TotalSize)

	set := s.generator.Generate(ctx, repo, files)

	assembled := s.assembler.Assemble(ctx, local, set)
	assembled.FilesSelected = len(files.Files)
	assembled.BytesSelected = files.TotalSize

	logger.Info("%s: %s (%d of %d sections)", repo.FullName, assembled.Outcome(), assembled.Written(), len(assembled.Sections))
	return assembled
}

// mergeInOrder returns reports in listing order, declined repositories included.
func mergeInOrder(
	repos []domain.RepositoryDescriptor,
	results []domain.RepositoryReport,
	declined map[string]bool,
) []domain.RepositoryReport {
	out := make([]domain.RepositoryReport, 0, len(repos))
	next := 0
	for _, repo := range repos {
		if declined[repo.FullName] {
			out = append(out, domain.RepositoryReport{Repository: repo, Declined: true})
			continue
		}
		out = append(out, results[next])
		next++
	}
	return out
}
