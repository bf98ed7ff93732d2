package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/custodia-labs/repodoc-cli/internal/core/domain"
	"github.com/custodia-labs/repodoc-cli/internal/core/ports/driven"
	"github.com/custodia-labs/repodoc-cli/internal/logger"
	"github.com/custodia-labs/repodoc-cli/internal/postprocessors/chunker"
)

// Generator turns triaged repository content into documentation sections.
// Large content is summarised chunk by chunk and the summaries consolidated.
type Generator struct {
	completer driven.Completer
	prompts   driven.PromptStore
	settings  domain.GenerationSettings
	chunker   *chunker.Processor

	// newBackOff builds the retry policy of one completion. Replaced in tests.
	newBackOff func() backoff.BackOff

	// observe, when set, sees every section state transition.
	observe func(kind domain.SectionKind, state domain.SectionState)
}

// NewGenerator creates a generator.
func NewGenerator(completer driven.Completer, prompts driven.PromptStore, settings domain.GenerationSettings) *Generator {
	g := &Generator{
		completer: completer,
		prompts:   prompts,
		settings:  settings,
		chunker:   chunker.New(chunker.WithLimit(settings.ContextLimit), chunker.WithOverlap(settings.ChunkOverlap)),
	}
	g.newBackOff = g.exponential
	return g
}

// exponential returns the retry policy of one completion.
func (g *Generator) exponential() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	if g.settings.InitialBackoff > 0 {
		b.InitialInterval = g.settings.InitialBackoff
	}
	if g.settings.MaxBackoff > 0 {
		b.MaxInterval = g.settings.MaxBackoff
	}
	// Attempts are bounded by count, not elapsed time.
	b.MaxElapsedTime = 0
	return b
}

// sectionRun tracks one section through its states.
type sectionRun struct {
	repo    domain.RepositoryDescriptor
	kind    domain.SectionKind
	state   domain.SectionState
	observe func(domain.SectionKind, domain.SectionState)
}

func (r *sectionRun) enter(state domain.SectionState, detail string) {
	r.state = state
	if r.observe != nil {
		r.observe(r.kind, state)
	}
	if detail == "" {
		logger.Debug("%s/%s: %s", r.repo.Name, r.kind, state)
		return
	}
	logger.Debug("%s/%s: %s (%s)", r.repo.Name, r.kind, state, detail)
}

// Generate produces every configured section for the repository.
// A failed section is recorded as a GenerationError and the others continue.
func (g *Generator) Generate(ctx context.Context, repo domain.RepositoryDescriptor, files *domain.TriagedFileSet) *domain.GeneratedDocumentSet {
	set := domain.NewGeneratedDocumentSet(repo, g.settings.Sections)
	if files.Empty() {
		for _, kind := range g.settings.Sections {
			set.Fail(kind, &domain.GenerationError{Repository: repo.FullName, Section: kind, Err: domain.ErrEmptyContent})
		}
		return set
	}

	chunks := g.chunker.Pack(files.Files)
	logger.Debug("%s: %d bytes in %d chunk(s) of at most %d bytes", repo.Name, files.TotalSize, len(chunks), g.chunker.Limit())

	for _, kind := range g.settings.Sections {
		section, err := g.generateSection(ctx, repo, kind, chunks)
		if err != nil {
			set.Fail(kind, &domain.GenerationError{Repository: repo.FullName, Section: kind, Err: err})
			logger.Warn("%s: %s not generated: %v", repo.FullName, kind, err)
			continue
		}
		set.Add(section)
	}
	return set
}

func (g *Generator) generateSection(
	ctx context.Context,
	repo domain.RepositoryDescriptor,
	kind domain.SectionKind,
	chunks []chunker.Chunk,
) (domain.DocumentationSection, error) {
	run := &sectionRun{repo: repo, kind: kind, observe: g.observe}
	run.enter(domain.SectionStateChunking, strconv.Itoa(len(chunks))+" chunk(s)")

	text, err := g.sectionText(ctx, run, chunks)
	if err != nil {
		run.enter(domain.SectionStateFailed, err.Error())
		return domain.DocumentationSection{}, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		run.enter(domain.SectionStateFailed, "empty completion")
		return domain.DocumentationSection{}, fmt.Errorf("%w: empty completion", domain.ErrEmptyContent)
	}

	run.enter(domain.SectionStateDone, "")
	return domain.DocumentationSection{Kind: kind, Text: text, Chunks: len(chunks)}, nil
}

// sectionText runs the single-call path for one chunk and the
// summarise-then-consolidate path for several, or always when forced.
func (g *Generator) sectionText(ctx context.Context, run *sectionRun, chunks []chunker.Chunk) (string, error) {
	system, err := g.prompts.Load(driven.PromptSystem)
	if err != nil {
		return "", err
	}
	section, err := g.prompts.Load(driven.SectionPromptName(run.kind.String()))
	if err != nil {
		return "", err
	}

	vars := g.vars(run.repo, run.kind)
	vars["chunks"] = strconv.Itoa(len(chunks))

	if len(chunks) == 1 && !g.settings.ForceChunking {
		run.enter(domain.SectionStateConsolidating, "")
		vars["content"] = chunks[0].Content
		return g.complete(ctx, run, system, render(section, vars))
	}

	summaryPrompt, err := g.prompts.Load(driven.PromptChunkSummary)
	if err != nil {
		return "", err
	}
	consolidate, err := g.prompts.Load(driven.PromptConsolidate)
	if err != nil {
		return "", err
	}

	summaries := make([]string, 0, len(chunks))
	for _, c := range chunks {
		run.enter(domain.SectionStateChunkSummarizing, fmt.Sprintf("%d/%d", c.Index+1, len(chunks)))
		vars["chunk"] = strconv.Itoa(c.Index + 1)
		vars["content"] = c.Content
		summary, err := g.complete(ctx, run, system, render(summaryPrompt, vars))
		if err != nil {
			return "", fmt.Errorf("chunk %d of %d: %w", c.Index+1, len(chunks), err)
		}
		summaries = append(summaries, fmt.Sprintf("## Part %d of %d\n\n%s", c.Index+1, len(chunks), strings.TrimSpace(summary)))
	}

	run.enter(domain.SectionStateConsolidating, "")
	delete(vars, "chunk")
	delete(vars, "content")
	vars["summaries"] = strings.Join(summaries, "\n\n")
	vars["content"] = render(consolidate, vars)
	return g.complete(ctx, run, system, render(section, vars))
}

// complete sends one prompt, retrying transient failures with exponential backoff.
func (g *Generator) complete(ctx context.Context, run *sectionRun, system, prompt string) (string, error) {
	req := driven.CompletionRequest{
		System:      system,
		Prompt:      prompt,
		MaxTokens:   g.settings.MaxTokens,
		Temperature: g.settings.Temperature,
	}

	attempts := g.settings.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	attempt := 0
	var text string
	operation := func() error {
		attempt++
		out, err := g.completer.Complete(ctx, req)
		if err == nil {
			text = out
			return nil
		}
		if ctx.Err() != nil || !driven.IsRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		logger.Warn("%s/%s: attempt %d of %d failed, retrying in %s: %v",
			run.repo.Name, run.kind, attempt, attempts, wait.Round(time.Millisecond), err)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(g.newBackOff(), uint64(attempts-1)), ctx)
	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		if attempt > 1 {
			return "", fmt.Errorf("after %d attempts: %w", attempt, err)
		}
		return "", err
	}
	return text, nil
}

// vars returns the placeholders shared by every prompt of a section.
func (g *Generator) vars(repo domain.RepositoryDescriptor, kind domain.SectionKind) map[string]string {
	description := repo.Description
	if description == "" {
		description = "(none)"
	}
	name := repo.FullName
	if name == "" {
		name = repo.Name
	}
	return map[string]string{
		"repository":  name,
		"description": description,
		"section":     kind.Title(),
	}
}

// render substitutes {name} placeholders in a single pass, so values that
// contain placeholder syntax are left untouched.
func render(template string, vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for name, value := range vars {
		pairs = append(pairs, "{"+name+"}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
