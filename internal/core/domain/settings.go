package domain

import (
	"fmt"
	"time"
)

// AIProvider identifies a language model provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderGemini is Google Gemini cloud API.
	AIProviderGemini AIProvider = "gemini"

	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"
)

// AllAIProviders returns every provider, the default first.
func AllAIProviders() []AIProvider {
	return []AIProvider{AIProviderAnthropic, AIProviderOpenAI, AIProviderGemini, AIProviderOllama}
}

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderAnthropic, AIProviderOpenAI, AIProviderGemini, AIProviderOllama:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p != AIProviderOllama
}

// APIKeyEnv returns the environment variable holding the provider key.
func (p AIProvider) APIKeyEnv() string {
	switch p {
	case AIProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	case AIProviderOpenAI:
		return "OPENAI_API_KEY"
	case AIProviderGemini:
		return "GEMINI_API_KEY"
	default:
		return ""
	}
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderGemini:
		return "Gemini (cloud)"
	default:
		return unknownDescription
	}
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name. Empty selects the provider default.
	Model string

	// BaseURL is the API endpoint. Empty selects the provider default.
	BaseURL string

	// APIKey is the API key (for cloud providers).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// TriageSettings controls file selection.
type TriageSettings struct {
	// Budget is the maximum combined size in bytes of selected content.
	Budget int64

	// MaxFileSize skips files larger than this many bytes.
	MaxFileSize int64

	// ExcerptLimit truncates selected files to this many bytes. Zero keeps files whole.
	ExcerptLimit int64

	// IgnoredDirs are directory names never descended into.
	IgnoredDirs []string

	// IgnorePatterns are globs matched against base names and relative paths.
	IgnorePatterns []string

	// Extensions is the source allow-list, with leading dots.
	Extensions []string

	// Weights ranks tiers. Higher weights are selected first.
	Weights TierWeights
}

// GenerationSettings controls how sections are generated.
type GenerationSettings struct {
	// Sections are the kinds to generate, in output order.
	Sections []SectionKind

	// ContextLimit is the maximum number of content bytes per completion request.
	ContextLimit int

	// ChunkOverlap is how many bytes of a file split across chunks are
	// repeated at the start of the next part.
	ChunkOverlap int

	// MaxTokens caps each completion response.
	MaxTokens int

	// Temperature of completions. Zero keeps output reproducible.
	Temperature float64

	// MaxAttempts bounds tries per completion, including the first.
	MaxAttempts int

	// InitialBackoff and MaxBackoff bound the exponential retry delay.
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// ForceChunking always takes the chunk-then-consolidate path.
	ForceChunking bool
}

// RunSettings controls the run as a whole.
type RunSettings struct {
	// OutputDir is the workspace root receiving one checkout per repository.
	OutputDir string

	// Repositories restricts the run to the named repositories. Empty means all.
	Repositories []string

	IncludeArchived bool
	IncludeForks    bool

	// Parallelism is the number of repositories processed at once.
	Parallelism int

	// ListLimit caps the repositories requested from the gh CLI fallback.
	ListLimit int

	// Interactive asks for confirmation before each repository.
	Interactive bool
}

// Settings is the immutable configuration of a run.
// It is built once at start-up and passed to each component at construction.
type Settings struct {
	// GitHubToken authenticates listing and cloning.
	GitHubToken string

	Run        RunSettings
	Triage     TriageSettings
	Generation GenerationSettings
	LLM        LLMSettings
}

// Default values.
const (
	DefaultOutputDir      = "./repositories"
	DefaultBudget         = 240_000
	DefaultMaxFileSize    = 1 << 20
	DefaultExcerptLimit   = 16_000
	DefaultContextLimit   = 80_000
	DefaultChunkOverlap   = 200
	DefaultMaxTokens      = 4000
	DefaultMaxAttempts    = 4
	DefaultInitialBackoff = 2 * time.Second
	DefaultMaxBackoff     = 30 * time.Second
	DefaultParallelism    = 1
	DefaultListLimit      = 1000
)

// DefaultIgnoredDirs returns directories that never hold documentable source.
func DefaultIgnoredDirs() []string {
	return []string{
		".git", ".hg", ".svn", ".idea", ".vscode",
		"node_modules", "vendor", "dist", "build", "target", "out", "bin",
		"__pycache__", ".venv", "venv", ".tox", ".mypy_cache", ".pytest_cache",
		".next", ".gradle", "coverage",
	}
}

// DefaultIgnorePatterns returns globs for generated or lock files.
func DefaultIgnorePatterns() []string {
	return []string{
		"*.lock", "package-lock.json", "go.sum", "*.min.js", "*.min.css",
		"*.map", "*.pb.go", "*_generated.go", "*.snap",
	}
}

// DefaultExtensions returns the source allow-list.
func DefaultExtensions() []string {
	return []string{
		".go", ".py", ".js", ".jsx", ".ts", ".tsx", ".java", ".kt", ".scala",
		".rb", ".php", ".cs", ".rs", ".c", ".h", ".cpp", ".hpp", ".swift",
		".sh", ".sql", ".proto", ".graphql",
		".md", ".rst", ".txt",
		".yaml", ".yml", ".toml", ".json", ".ini", ".cfg",
	}
}

// DefaultSettings returns settings with every default applied and no credentials.
func DefaultSettings() Settings {
	return Settings{
		Run: RunSettings{
			OutputDir:   DefaultOutputDir,
			Parallelism: DefaultParallelism,
			ListLimit:   DefaultListLimit,
		},
		Triage: TriageSettings{
			Budget:         DefaultBudget,
			MaxFileSize:    DefaultMaxFileSize,
			ExcerptLimit:   DefaultExcerptLimit,
			IgnoredDirs:    DefaultIgnoredDirs(),
			IgnorePatterns: DefaultIgnorePatterns(),
			Extensions:     DefaultExtensions(),
			Weights:        DefaultTierWeights(),
		},
		Generation: GenerationSettings{
			Sections:       DefaultSections(),
			ContextLimit:   DefaultContextLimit,
			ChunkOverlap:   DefaultChunkOverlap,
			MaxTokens:      DefaultMaxTokens,
			MaxAttempts:    DefaultMaxAttempts,
			InitialBackoff: DefaultInitialBackoff,
			MaxBackoff:     DefaultMaxBackoff,
		},
		LLM: LLMSettings{
			Provider: AIProviderAnthropic,
		},
	}
}

// Validate checks that the settings are complete and consistent.
// Every failure is a ConfigError.
func (s Settings) Validate() error {
	if s.GitHubToken == "" {
		return &ConfigError{Key: "GITHUB_TOKEN", Err: ErrMissingCredential}
	}
	if !s.LLM.Provider.IsValid() {
		return &ConfigError{Key: "llm.provider", Err: fmt.Errorf("%w: %q", ErrUnsupportedProvider, s.LLM.Provider)}
	}
	if s.LLM.Provider.RequiresAPIKey() && s.LLM.APIKey == "" {
		return &ConfigError{Key: s.LLM.Provider.APIKeyEnv(), Err: ErrMissingCredential}
	}
	if s.Run.OutputDir == "" {
		return &ConfigError{Key: "output_dir", Err: fmt.Errorf("%w: empty", ErrInvalidInput)}
	}
	if s.Run.Parallelism < 1 {
		return &ConfigError{Key: "run.parallel", Err: fmt.Errorf("%w: must be at least 1", ErrInvalidInput)}
	}
	if s.Triage.Budget <= 0 {
		return &ConfigError{Key: "triage.budget", Err: fmt.Errorf("%w: must be positive", ErrInvalidInput)}
	}
	if s.Triage.MaxFileSize <= 0 {
		return &ConfigError{Key: "triage.max_file_size", Err: fmt.Errorf("%w: must be positive", ErrInvalidInput)}
	}
	for tier := range s.Triage.Weights {
		if !tier.IsValid() {
			return &ConfigError{Key: "triage.weights", Err: fmt.Errorf("%w: unknown tier %q", ErrInvalidInput, tier)}
		}
	}
	if s.Generation.ContextLimit <= 0 {
		return &ConfigError{Key: "generation.context_limit", Err: fmt.Errorf("%w: must be positive", ErrInvalidInput)}
	}
	if s.Generation.ChunkOverlap < 0 {
		return &ConfigError{Key: "generation.chunk_overlap", Err: fmt.Errorf("%w: must not be negative", ErrInvalidInput)}
	}
	if s.Generation.MaxAttempts < 1 {
		return &ConfigError{Key: "generation.max_attempts", Err: fmt.Errorf("%w: must be at least 1", ErrInvalidInput)}
	}
	if len(s.Generation.Sections) == 0 {
		return &ConfigError{Key: "generation.sections", Err: fmt.Errorf("%w: no sections", ErrInvalidInput)}
	}
	for _, kind := range s.Generation.Sections {
		if !kind.IsValid() {
			return &ConfigError{Key: "generation.sections", Err: fmt.Errorf("%w: %q", ErrInvalidInput, kind)}
		}
	}
	return nil
}
