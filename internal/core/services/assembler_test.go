package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/repodoc-cli/internal/adapters/driven/storage/filesystem"
	"github.com/custodia-labs/repodoc-cli/internal/core/domain"
)

// failingWriter fails writes to the named files.
type failingWriter struct {
	*filesystem.DocumentWriter
	fail    map[string]bool
	dirFail bool
}

func (w *failingWriter) EnsureDir(ctx context.Context, dir string) error {
	if w.dirFail {
		return errors.New("read-only file system")
	}
	return w.DocumentWriter.EnsureDir(ctx, dir)
}

func (w *failingWriter) WriteFile(ctx context.Context, path string, content []byte) error {
	if w.fail[filepath.Base(path)] {
		return errors.New("disk full")
	}
	return w.DocumentWriter.WriteFile(ctx, path, content)
}

func documentSet(order ...domain.SectionKind) *domain.GeneratedDocumentSet {
	set := domain.NewGeneratedDocumentSet(testRepo, order)
	for _, kind := range order {
		set.Add(domain.DocumentationSection{Kind: kind, Text: "Body of " + kind.String(), Chunks: 1})
	}
	return set
}

func readDoc(t *testing.T, root, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, domain.DocsDir, name))
	require.NoError(t, err)
	return string(data)
}

func TestAssembler_WritesSectionsAndIndex(t *testing.T) {
	root := t.TempDir()
	local := &domain.LocalRepository{Descriptor: testRepo, Path: root, Status: domain.CloneStatusCloned}

	report := NewAssembler(filesystem.NewDocumentWriter()).Assemble(context.Background(), local,
		documentSet(domain.SectionGettingStarted, domain.SectionFlowChart))

	assert.Equal(t, domain.OutcomeDocumented, report.Outcome())
	assert.Equal(t, domain.CloneStatusCloned, report.Status)
	require.Len(t, report.Sections, 2)
	assert.Equal(t, filepath.Join(root, "docs", "getting-started.md"), report.Sections[0].Path)

	doc := readDoc(t, root, "getting-started.md")
	assert.Contains(t, doc, "Generated by repodoc from acme/api")
	assert.Contains(t, doc, "# Getting Started\n\nBody of getting_started\n")

	index := readDoc(t, root, "README.md")
	assert.Contains(t, index, "# api Documentation")
	assert.Contains(t, index, "Billing API")
	assert.Contains(t, index, "- [Getting Started](getting-started.md)\n- [Flow Chart](flow-chart.md)\n")
}

func TestAssembler_KeepsModelHeading(t *testing.T) {
	root := t.TempDir()
	set := domain.NewGeneratedDocumentSet(testRepo, []domain.SectionKind{domain.SectionFAQ})
	set.Add(domain.DocumentationSection{Kind: domain.SectionFAQ, Text: "# FAQ\n\nQ and A"})

	NewAssembler(filesystem.NewDocumentWriter()).Assemble(context.Background(),
		&domain.LocalRepository{Descriptor: testRepo, Path: root}, set)

	doc := readDoc(t, root, "faqs.md")
	assert.NotContains(t, doc, "Frequently Asked Questions")
	assert.Contains(t, doc, "# FAQ\n\nQ and A\n")
}

func TestAssembler_OverwritesPreviousRun(t *testing.T) {
	root := t.TempDir()
	local := &domain.LocalRepository{Descriptor: testRepo, Path: root}
	assembler := NewAssembler(filesystem.NewDocumentWriter())

	assembler.Assemble(context.Background(), local, documentSet(domain.SectionGettingStarted))
	set := domain.NewGeneratedDocumentSet(testRepo, []domain.SectionKind{domain.SectionGettingStarted})
	set.Add(domain.DocumentationSection{Kind: domain.SectionGettingStarted, Text: "second run"})
	report := assembler.Assemble(context.Background(), local, set)

	assert.Equal(t, domain.OutcomeDocumented, report.Outcome())
	doc := readDoc(t, root, "getting-started.md")
	assert.Contains(t, doc, "second run")
	assert.NotContains(t, doc, "Body of")
}

func TestAssembler_GenerationFailureIsReported(t *testing.T) {
	root := t.TempDir()
	set := documentSet(domain.SectionGettingStarted, domain.SectionDataElements)
	genErr := &domain.GenerationError{Repository: "acme/api", Section: domain.SectionDataElements, Err: errors.New("boom")}
	set.Fail(domain.SectionDataElements, genErr)

	report := NewAssembler(filesystem.NewDocumentWriter()).Assemble(context.Background(),
		&domain.LocalRepository{Descriptor: testRepo, Path: root}, set)

	assert.Equal(t, domain.OutcomePartial, report.Outcome())
	assert.Equal(t, genErr, report.Sections[1].Err)
	assert.NoFileExists(t, filepath.Join(root, "docs", "data-elements.md"))
	assert.NotContains(t, readDoc(t, root, "README.md"), "data-elements.md")
}

func TestAssembler_WriteFailureIsPerSection(t *testing.T) {
	root := t.TempDir()
	writer := &failingWriter{DocumentWriter: filesystem.NewDocumentWriter(), fail: map[string]bool{"flow-chart.md": true}}

	report := NewAssembler(writer).Assemble(context.Background(),
		&domain.LocalRepository{Descriptor: testRepo, Path: root},
		documentSet(domain.SectionFlowChart, domain.SectionFAQ))

	assert.Equal(t, domain.OutcomePartial, report.Outcome())
	var writeErr *domain.WriteError
	require.ErrorAs(t, report.Sections[0].Err, &writeErr)
	assert.Equal(t, filepath.Join(root, "docs", "flow-chart.md"), writeErr.Path)
	assert.True(t, report.Sections[1].Succeeded())
}

func TestAssembler_MissingDocsDirFailsEverySection(t *testing.T) {
	writer := &failingWriter{DocumentWriter: filesystem.NewDocumentWriter(), dirFail: true}

	report := NewAssembler(writer).Assemble(context.Background(),
		&domain.LocalRepository{Descriptor: testRepo, Path: t.TempDir()},
		documentSet(domain.SectionGettingStarted, domain.SectionFAQ))

	assert.Equal(t, domain.OutcomeSkipped, report.Outcome())
	for _, s := range report.Sections {
		var writeErr *domain.WriteError
		assert.ErrorAs(t, s.Err, &writeErr)
	}
}

func TestAssembler_NothingWrittenSkipsIndex(t *testing.T) {
	root := t.TempDir()
	set := domain.NewGeneratedDocumentSet(testRepo, []domain.SectionKind{domain.SectionFAQ})
	set.Fail(domain.SectionFAQ, domain.ErrEmptyContent)

	report := NewAssembler(filesystem.NewDocumentWriter()).Assemble(context.Background(),
		&domain.LocalRepository{Descriptor: testRepo, Path: root}, set)

	assert.Equal(t, domain.OutcomeSkipped, report.Outcome())
	assert.NoFileExists(t, filepath.Join(root, "docs", "README.md"))
}
