package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/repodoc-cli/internal/core/domain"
	"github.com/custodia-labs/repodoc-cli/internal/core/ports/driven"
	"github.com/custodia-labs/repodoc-cli/internal/logger"
)

// generatedNotice heads every written file so readers know edits are overwritten.
const generatedNotice = "<!-- Generated by repodoc from %s. Changes are overwritten on the next run. -->\n\n"

// Assembler writes generated sections into the docs folder of a checkout.
type Assembler struct {
	writer driven.DocumentWriter
}

// NewAssembler creates an assembler.
func NewAssembler(writer driven.DocumentWriter) *Assembler {
	return &Assembler{writer: writer}
}

// Assemble writes one Markdown file per generated section and an index of
// the files written in this run. Sections that failed generation or could
// not be written are reported with their error.
func (a *Assembler) Assemble(ctx context.Context, local *domain.LocalRepository, set *domain.GeneratedDocumentSet) domain.RepositoryReport {
	report := domain.RepositoryReport{
		Repository: local.Descriptor,
		Status:     local.Status,
		Path:       local.Path,
	}

	docsDir := filepath.Join(local.Path, domain.DocsDir)
	dirErr := a.writer.EnsureDir(ctx, docsDir)
	if dirErr != nil {
		dirErr = &domain.WriteError{Path: docsDir, Err: dirErr}
		logger.Warn("%s: %v", local.Descriptor.FullName, dirErr)
	}

	var written []domain.SectionKind
	for _, kind := range set.Order {
		outcome := domain.SectionOutcome{Kind: kind}

		section, ok := set.Sections[kind]
		switch {
		case !ok:
			outcome.Err = set.Failures[kind]
			if outcome.Err == nil {
				outcome.Err = &domain.GenerationError{Repository: local.Descriptor.FullName, Section: kind, Err: domain.ErrNotFound}
			}
		case dirErr != nil:
			outcome.Err = dirErr
		default:
			path := filepath.Join(docsDir, kind.FileName())
			if err := a.writer.WriteFile(ctx, path, renderSection(local.Descriptor, section)); err != nil {
				outcome.Err = &domain.WriteError{Path: path, Err: err}
				logger.Warn("%s: %v", local.Descriptor.FullName, outcome.Err)
			} else {
				outcome.Path = path
				written = append(written, kind)
				logger.Debug("%s: wrote %s", local.Descriptor.Name, path)
			}
		}

		report.Sections = append(report.Sections, outcome)
	}

	if len(written) > 0 {
		index := filepath.Join(docsDir, domain.IndexFileName)
		if err := a.writer.WriteFile(ctx, index, renderIndex(local.Descriptor, written)); err != nil {
			logger.Warn("%s: %v", local.Descriptor.FullName, &domain.WriteError{Path: index, Err: err})
		}
	}

	return report
}

func renderSection(repo domain.RepositoryDescriptor, section domain.DocumentationSection) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, generatedNotice, repo.FullName)

	text := strings.TrimSpace(section.Text)
	// Models often open with their own top-level heading.
	if !strings.HasPrefix(text, "# ") {
		fmt.Fprintf(&b, "# %s\n\n", section.Kind.Title())
	}
	b.WriteString(text)
	b.WriteByte('\n')
	return []byte(b.String())
}

func renderIndex(repo domain.RepositoryDescriptor, kinds []domain.SectionKind) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, generatedNotice, repo.FullName)
	fmt.Fprintf(&b, "# %s Documentation\n\n", repo.Name)
	if repo.Description != "" {
		b.WriteString(repo.Description)
		b.WriteString("\n\n")
	}
	for _, kind := range kinds {
		fmt.Fprintf(&b, "- [%s](%s)\n", kind.Title(), kind.FileName())
	}
	return []byte(b.String())
}
