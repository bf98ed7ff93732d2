package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/repodoc-cli/internal/core/domain"
	"github.com/custodia-labs/repodoc-cli/internal/core/ports/driven"
)

// Config keys shared by the TOML file and the CLI flag overlay.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	KeyGitHubToken     = "github.token"
	KeyOutputDir       = "output_dir"
	KeyRepositories    = "run.repositories"
	KeyIncludeArchived = "run.include_archived"
	KeyIncludeForks    = "run.include_forks"
	KeyParallel        = "run.parallel"
	KeyListLimit       = "run.list_limit"
	KeyInteractive     = "run.interactive"

	KeyLLMProvider = "llm.provider"
	KeyLLMModel    = "llm.model"
	KeyLLMBaseURL  = "llm.base_url"
	KeyLLMAPIKey   = "llm.api_key"

	KeyBudget         = "triage.budget"
	KeyMaxFileSize    = "triage.max_file_size"
	KeyExcerptLimit   = "triage.excerpt_limit"
	KeyIgnoredDirs    = "triage.ignored_dirs"
	KeyIgnorePatterns = "triage.ignore_patterns"
	KeyExtensions     = "triage.extensions"
	KeyWeightsPrefix  = "triage.weights."

	KeySections       = "generation.sections"
	KeyContextLimit   = "generation.context_limit"
	KeyChunkOverlap   = "generation.chunk_overlap"
	KeyMaxTokens      = "generation.max_tokens"
	KeyTemperature    = "generation.temperature"
	KeyMaxAttempts    = "generation.max_attempts"
	KeyInitialBackoff = "generation.initial_backoff"
	KeyMaxBackoff     = "generation.max_backoff"
	KeyForceChunking  = "generation.force_chunking"
)

// Environment variables read by the loader.
//
//nolint:gosec // G101: These are variable names, not actual credentials.
const (
	EnvGitHubToken = "GITHUB_TOKEN"
	EnvGHToken     = "GH_TOKEN"
	EnvOutputDir   = "REPODOC_OUTPUT_DIR"
	EnvProvider    = "REPODOC_PROVIDER"
	EnvModel       = "REPODOC_MODEL"
)

// LookupEnv reads an environment variable, reporting whether it is set.
type LookupEnv func(key string) (string, bool)

// SettingsLoader assembles the immutable run settings.
// Precedence, lowest first: defaults, config file, environment, flags.
type SettingsLoader struct {
	file  driven.ConfigStore
	flags driven.ConfigStore
	env   LookupEnv
}

// NewSettingsLoader creates a loader. Any source may be nil.
func NewSettingsLoader(file, flags driven.ConfigStore, env LookupEnv) *SettingsLoader {
	return &SettingsLoader{file: file, flags: flags, env: env}
}

// Load resolves and validates the settings. Every error is a domain.ConfigError.
func (l *SettingsLoader) Load() (domain.Settings, error) {
	s, err := l.Resolve()
	if err != nil {
		return domain.Settings{}, err
	}
	if err := s.Validate(); err != nil {
		return domain.Settings{}, err
	}
	return s, nil
}

// Resolve merges the sources over the defaults without validating the result,
// so incomplete settings can still be displayed.
func (l *SettingsLoader) Resolve() (domain.Settings, error) {
	s := domain.DefaultSettings()
	r := &resolver{loader: l}

	s.GitHubToken = r.str(KeyGitHubToken, s.GitHubToken, EnvGitHubToken, EnvGHToken)

	s.Run.OutputDir = r.str(KeyOutputDir, s.Run.OutputDir, EnvOutputDir)
	s.Run.Repositories = r.list(KeyRepositories, s.Run.Repositories)
	s.Run.IncludeArchived = r.boolean(KeyIncludeArchived, s.Run.IncludeArchived)
	s.Run.IncludeForks = r.boolean(KeyIncludeForks, s.Run.IncludeForks)
	s.Run.Parallelism = r.integer(KeyParallel, s.Run.Parallelism)
	s.Run.ListLimit = r.integer(KeyListLimit, s.Run.ListLimit)
	s.Run.Interactive = r.boolean(KeyInteractive, s.Run.Interactive)

	s.LLM.Provider = domain.AIProvider(strings.ToLower(r.str(KeyLLMProvider, s.LLM.Provider.String(), EnvProvider)))
	s.LLM.Model = r.str(KeyLLMModel, s.LLM.Model, EnvModel)
	s.LLM.BaseURL = r.str(KeyLLMBaseURL, s.LLM.BaseURL)
	if envKey := s.LLM.Provider.APIKeyEnv(); envKey != "" {
		s.LLM.APIKey = r.str(KeyLLMAPIKey, s.LLM.APIKey, envKey)
	}

	s.Triage.Budget = r.size(KeyBudget, s.Triage.Budget)
	s.Triage.MaxFileSize = r.size(KeyMaxFileSize, s.Triage.MaxFileSize)
	s.Triage.ExcerptLimit = r.size(KeyExcerptLimit, s.Triage.ExcerptLimit)
	s.Triage.IgnoredDirs = r.list(KeyIgnoredDirs, s.Triage.IgnoredDirs)
	s.Triage.IgnorePatterns = r.list(KeyIgnorePatterns, s.Triage.IgnorePatterns)
	s.Triage.Extensions = normalizeExtensions(r.list(KeyExtensions, s.Triage.Extensions))
	s.Triage.Weights = r.weights(s.Triage.Weights)

	if raw := r.list(KeySections, nil); raw != nil {
		kinds, err := domain.ParseSections(raw)
		if err != nil {
			r.fail(KeySections, err)
		} else {
			s.Generation.Sections = kinds
		}
	}
	s.Generation.ContextLimit = r.integer(KeyContextLimit, s.Generation.ContextLimit)
	s.Generation.ChunkOverlap = r.integer(KeyChunkOverlap, s.Generation.ChunkOverlap)
	s.Generation.MaxTokens = r.integer(KeyMaxTokens, s.Generation.MaxTokens)
	s.Generation.Temperature = r.float(KeyTemperature, s.Generation.Temperature)
	s.Generation.MaxAttempts = r.integer(KeyMaxAttempts, s.Generation.MaxAttempts)
	s.Generation.InitialBackoff = r.duration(KeyInitialBackoff, s.Generation.InitialBackoff)
	s.Generation.MaxBackoff = r.duration(KeyMaxBackoff, s.Generation.MaxBackoff)
	s.Generation.ForceChunking = r.boolean(KeyForceChunking, s.Generation.ForceChunking)

	if r.err != nil {
		return domain.Settings{}, r.err
	}
	return s, nil
}

// resolver looks keys up across the sources and keeps the first conversion error.
type resolver struct {
	loader *SettingsLoader
	err    error
}

func (r *resolver) fail(key string, err error) {
	if r.err == nil {
		r.err = &domain.ConfigError{Key: key, Err: err}
	}
}

// lookup returns the highest-precedence value for key.
// Environment variables are consulted in order and sit between file and flags.
func (r *resolver) lookup(key string, envKeys ...string) (any, bool) {
	l := r.loader
	if l.flags != nil {
		if v, ok := l.flags.Get(key); ok {
			return v, true
		}
	}
	if l.env != nil {
		for _, envKey := range envKeys {
			if v, ok := l.env(envKey); ok && v != "" {
				return v, true
			}
		}
	}
	if l.file != nil {
		if v, ok := l.file.Get(key); ok {
			return v, true
		}
	}
	return nil, false
}

func (r *resolver) str(key, def string, envKeys ...string) string {
	v, ok := r.lookup(key, envKeys...)
	if !ok {
		return def
	}
	s, ok := v.(string)
	if !ok {
		r.fail(key, fmt.Errorf("%w: expected a string, got %T", domain.ErrInvalidInput, v))
		return def
	}
	return strings.TrimSpace(s)
}

func (r *resolver) list(key string, def []string) []string {
	v, ok := r.lookup(key)
	if !ok {
		return def
	}
	switch t := v.(type) {
	case []string:
		return t
	case string:
		return splitList(t)
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				r.fail(key, fmt.Errorf("%w: expected a list of strings", domain.ErrInvalidInput))
				return def
			}
			out = append(out, s)
		}
		return out
	default:
		r.fail(key, fmt.Errorf("%w: expected a list of strings, got %T", domain.ErrInvalidInput, v))
		return def
	}
}

func (r *resolver) size(key string, def int64) int64 {
	v, ok := r.lookup(key)
	if !ok {
		return def
	}
	n, err := toInt64(v)
	if err != nil {
		r.fail(key, err)
		return def
	}
	return n
}

func (r *resolver) integer(key string, def int) int {
	return int(r.size(key, int64(def)))
}

func (r *resolver) float(key string, def float64) float64 {
	v, ok := r.lookup(key)
	if !ok {
		return def
	}
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err == nil {
			return f
		}
	}
	r.fail(key, fmt.Errorf("%w: expected a number, got %v", domain.ErrInvalidInput, v))
	return def
}

func (r *resolver) boolean(key string, def bool) bool {
	v, ok := r.lookup(key)
	if !ok {
		return def
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		if err == nil {
			return b
		}
	}
	r.fail(key, fmt.Errorf("%w: expected true or false, got %v", domain.ErrInvalidInput, v))
	return def
}

// duration accepts Go duration strings ("2s", "1m30s") or whole seconds.
func (r *resolver) duration(key string, def time.Duration) time.Duration {
	v, ok := r.lookup(key)
	if !ok {
		return def
	}
	switch t := v.(type) {
	case time.Duration:
		return t
	case string:
		d, err := time.ParseDuration(strings.TrimSpace(t))
		if err == nil && d >= 0 {
			return d
		}
	default:
		if n, err := toInt64(v); err == nil && n >= 0 {
			return time.Duration(n) * time.Second
		}
	}
	r.fail(key, fmt.Errorf("%w: expected a duration such as \"2s\", got %v", domain.ErrInvalidInput, v))
	return def
}

// weights overlays triage.weights.<tier> keys on the defaults.
func (r *resolver) weights(def domain.TierWeights) domain.TierWeights {
	out := make(domain.TierWeights, len(def))
	for tier, w := range def {
		out[tier] = w
	}

	var keys []string
	seen := make(map[string]bool)
	for _, store := range []driven.ConfigStore{r.loader.file, r.loader.flags} {
		if store == nil {
			continue
		}
		for _, key := range store.Keys() {
			if strings.HasPrefix(key, KeyWeightsPrefix) && !seen[key] {
				seen[key] = true
				keys = append(keys, key)
			}
		}
	}
	sort.Strings(keys)

	for _, key := range keys {
		tier := domain.Tier(strings.TrimPrefix(key, KeyWeightsPrefix))
		if !tier.IsValid() {
			r.fail(key, fmt.Errorf("%w: unknown tier %q", domain.ErrInvalidInput, tier))
			continue
		}
		out[tier] = r.integer(key, out[tier])
	}
	return out
}

func toInt64(v any) (int64, error) {
	switch t := v.(type) {
	case int:
		return int64(t), nil
	case int64:
		return t, nil
	case float64:
		if t == float64(int64(t)) {
			return int64(t), nil
		}
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(strings.ReplaceAll(t, "_", "")), 10, 64)
		if err == nil {
			return n, nil
		}
	}
	return 0, fmt.Errorf("%w: expected an integer, got %v", domain.ErrInvalidInput, v)
}

// splitList splits a comma-separated value, dropping empty items.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// normalizeExtensions lowercases extensions and adds the leading dot.
func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out = append(out, ext)
	}
	return out
}
