package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/repodoc-cli/internal/core/domain"
	"github.com/custodia-labs/repodoc-cli/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads LLM prompts from user-editable files on disk,
// falling back to the embedded defaults.
//
// The store initialises lazily: the directory and default files are only
// created on the first Load, never in the constructor.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// DefaultPrompts returns the embedded prompt templates keyed by name.
func DefaultPrompts() map[string]string {
	prompts := map[string]string{
		driven.PromptSystem: `You are a technical documentation expert. You read source repositories and write accurate, well-structured Markdown documentation for developers who are new to the codebase. Only describe what the provided files show. Do not invent features, commands or configuration.`,

		driven.PromptChunkSummary: `Repository: {repository}
Description: {description}

You are preparing the "{section}" documentation for this repository. The repository is too large to read at once, so you are seeing part {chunk} of {chunks}.

Extract every fact from this part that is relevant to the "{section}" documentation. Be concise and keep file paths, names and commands exactly as written.

{content}`,

		driven.PromptConsolidate: `The repository was too large to read at once. The notes below were taken from its {chunks} parts while preparing the "{section}" document. Merge them into one document, remove duplicates and resolve contradictions in favour of the most specific note.

{summaries}`,
	}

	for kind, instructions := range sectionInstructions {
		prompts[driven.SectionPromptName(kind.String())] = `Repository: {repository}
Description: {description}

` + instructions + `

Base the document only on the repository content below.

{content}`
	}

	return prompts
}

// sectionInstructions describe each document. The consolidation prompt is
// rendered into a section prompt as its {content}, so these apply to both paths.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var sectionInstructions = map[domain.SectionKind]string{
	domain.SectionGettingStarted: `Write a "Getting Started" guide in Markdown covering prerequisites, installation steps, configuration options and basic usage examples.`,

	domain.SectionDataElements: `Write a "Data Elements" document in Markdown describing the key data structures and models, any database schema, API endpoints and their payloads, and how data moves between them.`,

	domain.SectionFlowChart: `Write a "Flow Chart" document in Markdown showing the main application workflows, data flows and process flows. Use Mermaid syntax in fenced mermaid code blocks for every diagram and explain each diagram in a short paragraph.`,

	domain.SectionArchitectureOverview: `Write an "Architecture Overview" in Markdown describing the system architecture, the key components and modules, design patterns in use, important functions and types, and integration points with external systems.`,

	domain.SectionFAQ: `Write a "Frequently Asked Questions" document in Markdown with questions a new contributor or user would ask about this repository, each followed by a concise answer.`,
}

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to ~/.repodoc/prompts/.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		promptDir = filepath.Join(dir, "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the prompt template for the given name.
// User files override the embedded defaults. Unknown names without a file
// are an error.
func (s *PromptStore) Load(name string) (string, error) {
	s.initOnce.Do(s.initialise)

	defaults := DefaultPrompts()
	if s.initErr != nil {
		if prompt, ok := defaults[name]; ok {
			return prompt, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	s.mu.RLock()
	if prompt, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return prompt, nil
	}
	s.mu.RUnlock()

	prompt, err := s.loadFromFile(name)
	if err != nil || prompt == "" {
		if fallback, ok := defaults[name]; ok {
			return fallback, nil
		}
		if err == nil {
			err = domain.ErrEmptyContent
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	s.mu.Lock()
	if cached, ok := s.cache[name]; ok {
		prompt = cached
	} else {
		s.cache[name] = prompt
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// initialise creates the prompt directory and any missing default files.
func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.promptDir, 0o700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	for name, content := range DefaultPrompts() {
		path := s.path(name)
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			if err := os.WriteFile(path, []byte(content+"\n"), 0o600); err != nil {
				s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
				return
			}
		}
	}

	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

func (s *PromptStore) path(name string) string {
	return filepath.Join(s.promptDir, name+".txt")
}

func (s *PromptStore) loadFromFile(name string) (string, error) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// createReadme explains the prompts directory to users editing it.
func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		return nil
	}

	var b strings.Builder
	b.WriteString("# repodoc Prompts\n\n")
	b.WriteString("This directory contains the prompts used to generate repository documentation.\n")
	b.WriteString("Delete a file to restore its default on the next run.\n\n")
	b.WriteString("## Files\n\n")
	b.WriteString("- `system.txt` - System prompt sent with every request\n")
	for _, kind := range domain.AllSections() {
		fmt.Fprintf(&b, "- `%s.txt` - %s document\n", driven.SectionPromptName(kind.String()), kind.Title())
	}
	b.WriteString("- `chunk_summary.txt` - Notes taken from one part of a large repository\n")
	b.WriteString("- `consolidate.txt` - Merges the notes into the final document\n\n")
	b.WriteString("## Placeholders\n\n")
	b.WriteString("- `{repository}` - Full repository name\n")
	b.WriteString("- `{description}` - Repository description\n")
	b.WriteString("- `{section}` - Title of the document being written\n")
	b.WriteString("- `{content}` - Selected repository files, or the merged notes\n")
	b.WriteString("- `{chunk}` and `{chunks}` - Part number and part count\n")
	b.WriteString("- `{summaries}` - Notes from every part\n")

	return os.WriteFile(path, []byte(b.String()), 0o600)
}
