package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/repodoc-cli/internal/core/domain"
	"github.com/custodia-labs/repodoc-cli/internal/logger"
)

// Names matched case-insensitively by tier.
var (
	manifestNames = map[string]bool{
		"go.mod": true, "package.json": true, "requirements.txt": true, "pyproject.toml": true,
		"setup.py": true, "cargo.toml": true, "pom.xml": true, "build.gradle": true,
		"build.gradle.kts": true, "gemfile": true, "composer.json": true, "mix.exs": true,
		"cmakelists.txt": true, "dockerfile": true, "docker-compose.yml": true,
		"docker-compose.yaml": true, "makefile": true,
	}

	entryPointStems = map[string]bool{
		"main": true, "index": true, "app": true, "server": true, "cli": true,
		"__main__": true, "manage": true, "program": true,
	}

	configExtensions = map[string]bool{".yaml": true, ".yml": true, ".toml": true, ".ini": true}

	configNames = map[string]bool{".env.example": true, ".env.sample": true}

	domainKeywords = []string{
		"model", "type", "interface", "service", "schema", "route", "handler", "controller", "entity",
	}

	binaryExtensions = map[string]bool{
		".exe": true, ".dll": true, ".so": true, ".dylib": true,
		".zip": true, ".tar": true, ".gz": true, ".bz2": true, ".7z": true, ".jar": true,
		".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".ico": true, ".webp": true, ".svg": true,
		".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
		".mp3": true, ".mp4": true, ".avi": true, ".mov": true,
		".woff": true, ".woff2": true, ".ttf": true, ".eot": true,
		".bin": true, ".dat": true, ".db": true, ".sqlite": true,
		".pyc": true, ".pyo": true, ".class": true, ".o": true, ".a": true,
	}
)

// candidate is a file that passed filtering but has not been read.
type candidate struct {
	rel  string
	abs  string
	size int64
	tier domain.Tier
}

// TriageEngine selects the files that best explain a repository within a byte budget.
type TriageEngine struct {
	settings   domain.TriageSettings
	extensions map[string]bool
	ignored    map[string]bool
	generated  map[string]bool
}

// NewTriageEngine creates a triage engine.
func NewTriageEngine(settings domain.TriageSettings) *TriageEngine {
	e := &TriageEngine{
		settings:   settings,
		extensions: make(map[string]bool, len(settings.Extensions)),
		ignored:    make(map[string]bool, len(settings.IgnoredDirs)),
		generated:  map[string]bool{path.Join(domain.DocsDir, domain.IndexFileName): true},
	}
	for _, ext := range settings.Extensions {
		e.extensions[strings.ToLower(ext)] = true
	}
	for _, dir := range settings.IgnoredDirs {
		e.ignored[dir] = true
	}
	for _, kind := range domain.AllSections() {
		e.generated[path.Join(domain.DocsDir, kind.FileName())] = true
	}
	return e
}

// Triage walks the checkout and returns the ranked, budget-bounded selection.
// Unreadable or non-text files are skipped, never fatal.
func (e *TriageEngine) Triage(ctx context.Context, local *domain.LocalRepository) (*domain.TriagedFileSet, error) {
	candidates, err := e.collect(ctx, local.Path)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", local.Descriptor.Name, err)
	}

	weights := e.settings.Weights
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if wa, wb := weights.Weight(a.tier), weights.Weight(b.tier); wa != wb {
			return wa > wb
		}
		if a.size != b.size {
			return a.size > b.size
		}
		return a.rel < b.rel
	})

	set := &domain.TriagedFileSet{Budget: e.settings.Budget, Considered: len(candidates)}
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		cost := c.size
		if limit := e.settings.ExcerptLimit; limit > 0 && cost > limit {
			cost = limit
		}
		if cost > set.Budget-set.TotalSize {
			set.Skipped++
			continue
		}

		content, ok := readText(c.abs, cost, cost < c.size)
		if !ok {
			logger.Debug("skipping %s: not readable as text", c.rel)
			set.Skipped++
			continue
		}

		set.Files = append(set.Files, domain.TriagedFile{
			Path:    c.rel,
			Content: content,
			Size:    int64(len(content)),
			Tier:    c.tier,
		})
		set.TotalSize += int64(len(content))
	}

	logger.Debug("%s: selected %d of %d files, %d of %d bytes",
		local.Descriptor.Name, len(set.Files), set.Considered, set.TotalSize, set.Budget)
	return set, nil
}

// collect walks root in lexical order and returns classified candidates.
func (e *TriageEngine) collect(ctx context.Context, root string) ([]candidate, error) {
	var candidates []candidate

	err := filepath.WalkDir(root, func(abs string, d fs.DirEntry, err error) error {
		if err != nil {
			if abs == root {
				return err
			}
			logger.Debug("skipping %s: %v", abs, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if d.IsDir() {
			if abs != root && e.ignored[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, abs)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if e.generated[rel] || e.ignoredByPattern(rel) {
			return nil
		}
		if binaryExtensions[strings.ToLower(path.Ext(rel))] {
			return nil
		}

		tier := e.classify(rel)
		if tier == "" {
			return nil
		}

		info, err := d.Info()
		if err != nil || info.Size() == 0 || info.Size() > e.settings.MaxFileSize {
			return nil
		}

		candidates = append(candidates, candidate{rel: rel, abs: abs, size: info.Size(), tier: tier})
		return nil
	})

	return candidates, err
}

// ignoredByPattern matches globs against the base name and the relative path.
func (e *TriageEngine) ignoredByPattern(rel string) bool {
	base := path.Base(rel)
	for _, pattern := range e.settings.IgnorePatterns {
		if matched, err := path.Match(pattern, base); err == nil && matched {
			return true
		}
		if matched, err := path.Match(pattern, rel); err == nil && matched {
			return true
		}
	}
	return false
}

// classify returns the tier of a relative path, or "" when the file is not a candidate.
func (e *TriageEngine) classify(rel string) domain.Tier {
	lower := strings.ToLower(rel)
	base := path.Base(lower)
	ext := path.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	switch {
	case stem == "readme":
		return domain.TierReadme
	case manifestNames[base]:
		return domain.TierManifest
	case entryPointStems[stem] && e.extensions[ext] && ext != ".md":
		return domain.TierEntryPoint
	case configExtensions[ext] || configNames[base]:
		return domain.TierConfig
	case !e.extensions[ext]:
		return ""
	}

	for _, keyword := range domainKeywords {
		if strings.Contains(stem, keyword) {
			return domain.TierDomain
		}
	}
	for _, dir := range strings.Split(path.Dir(lower), "/") {
		for _, keyword := range domainKeywords {
			if strings.Contains(dir, keyword) {
				return domain.TierDomain
			}
		}
	}
	return domain.TierSource
}

// readText reads at most limit bytes of a UTF-8 text file.
// A truncated file is cut at a rune boundary.
func readText(abs string, limit int64, truncated bool) (string, bool) {
	f, err := os.Open(abs)
	if err != nil {
		return "", false
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit))
	if err != nil || len(data) == 0 {
		return "", false
	}
	if bytes.IndexByte(data, 0) >= 0 {
		return "", false
	}
	if truncated {
		data = trimPartialRune(data)
	}
	if len(data) == 0 || !utf8.Valid(data) {
		return "", false
	}
	return string(data), true
}

// trimPartialRune drops an incomplete rune at the end of data.
func trimPartialRune(data []byte) []byte {
	for i := len(data) - 1; i >= 0 && i >= len(data)-utf8.UTFMax; i-- {
		if utf8.RuneStart(data[i]) {
			if !utf8.FullRune(data[i:]) {
				return data[:i]
			}
			break
		}
	}
	return data
}
