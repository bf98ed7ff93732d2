package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names used throughout the application.
// These constants define the contract between prompt consumers and providers.
//
// Templates use named placeholders: {repository}, {description}, {section},
// {content}, {chunk}, {chunks} and {summaries}.
const (
	// PromptSystem is the system prompt sent with every request.
	PromptSystem = "system"

	// PromptChunkSummary summarises one chunk of a large repository for a section.
	PromptChunkSummary = "chunk_summary"

	// PromptConsolidate merges chunk summaries into the final section.
	PromptConsolidate = "consolidate"
)

// SectionPromptName returns the prompt name of a section kind, e.g. "section_flow_chart".
func SectionPromptName(kind string) string {
	return "section_" + kind
}
