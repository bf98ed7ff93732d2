package domain

import (
	"fmt"
	"strings"
)

// SectionKind identifies one documentation artifact.
type SectionKind string

// Section kinds.
const (
	SectionGettingStarted       SectionKind = "getting_started"
	SectionDataElements         SectionKind = "data_elements"
	SectionFlowChart            SectionKind = "flow_chart"
	SectionArchitectureOverview SectionKind = "architecture_overview"

	// SectionFAQ is optional and only generated when requested.
	SectionFAQ SectionKind = "faqs"
)

// DefaultSections returns the kinds generated when none are requested.
func DefaultSections() []SectionKind {
	return []SectionKind{
		SectionGettingStarted,
		SectionDataElements,
		SectionFlowChart,
		SectionArchitectureOverview,
	}
}

// AllSections returns every known kind in output order.
func AllSections() []SectionKind {
	return append(DefaultSections(), SectionFAQ)
}

// IsValid returns true if the kind is recognised.
func (k SectionKind) IsValid() bool {
	switch k {
	case SectionGettingStarted, SectionDataElements, SectionFlowChart,
		SectionArchitectureOverview, SectionFAQ:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (k SectionKind) String() string {
	return string(k)
}

// FileName returns the stable Markdown filename inside docs/.
func (k SectionKind) FileName() string {
	switch k {
	case SectionGettingStarted:
		return "getting-started.md"
	case SectionDataElements:
		return "data-elements.md"
	case SectionFlowChart:
		return "flow-chart.md"
	case SectionArchitectureOverview:
		return "architecture-overview.md"
	case SectionFAQ:
		return "faqs.md"
	default:
		return strings.ReplaceAll(string(k), "_", "-") + ".md"
	}
}

// Title returns the human heading of the section.
func (k SectionKind) Title() string {
	switch k {
	case SectionGettingStarted:
		return "Getting Started"
	case SectionDataElements:
		return "Data Elements"
	case SectionFlowChart:
		return "Flow Chart"
	case SectionArchitectureOverview:
		return "Architecture Overview"
	case SectionFAQ:
		return "Frequently Asked Questions"
	default:
		return unknownDescription
	}
}

const unknownDescription = "Unknown"

// ParseSections parses a list like "getting-started,flow_chart".
// Hyphens and underscores are interchangeable. An empty list yields the defaults.
func ParseSections(values []string) ([]SectionKind, error) {
	var kinds []SectionKind
	seen := make(map[SectionKind]bool)
	for _, raw := range values {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(strings.ToLower(part))
			if part == "" {
				continue
			}
			kind := SectionKind(strings.ReplaceAll(part, "-", "_"))
			if kind == "faq" {
				kind = SectionFAQ
			}
			if !kind.IsValid() {
				return nil, fmt.Errorf("%w: unknown section %q", ErrInvalidInput, part)
			}
			if !seen[kind] {
				seen[kind] = true
				kinds = append(kinds, kind)
			}
		}
	}
	if len(kinds) == 0 {
		return DefaultSections(), nil
	}
	return kinds, nil
}

// SectionState is the progress of one section through generation.
type SectionState string

// Section states. A section moves Chunking -> ChunkSummarizing -> Consolidating
// -> Done, or to Failed from any state. Single-chunk content skips straight
// from Chunking to Consolidating.
const (
	SectionStateChunking         SectionState = "chunking"
	SectionStateChunkSummarizing SectionState = "chunk_summarizing"
	SectionStateConsolidating    SectionState = "consolidating"
	SectionStateDone             SectionState = "done"
	SectionStateFailed           SectionState = "failed"
)

// Terminal reports whether no further transitions are possible.
func (s SectionState) Terminal() bool {
	return s == SectionStateDone || s == SectionStateFailed
}

// DocumentationSection is the generated text of one kind for one repository.
type DocumentationSection struct {
	Kind SectionKind
	Text string

	// Chunks is how many content chunks the text was built from.
	Chunks int
}

// GeneratedDocumentSet holds the sections of one repository for one run.
type GeneratedDocumentSet struct {
	Repository RepositoryDescriptor
	Sections   map[SectionKind]DocumentationSection
	Failures   map[SectionKind]error

	// Order is the requested section order.
	Order []SectionKind
}

// NewGeneratedDocumentSet creates an empty set for a repository.
func NewGeneratedDocumentSet(repo RepositoryDescriptor, order []SectionKind) *GeneratedDocumentSet {
	return &GeneratedDocumentSet{
		Repository: repo,
		Sections:   make(map[SectionKind]DocumentationSection, len(order)),
		Failures:   make(map[SectionKind]error),
		Order:      order,
	}
}

// Add records a generated section.
func (s *GeneratedDocumentSet) Add(section DocumentationSection) {
	s.Sections[section.Kind] = section
	delete(s.Failures, section.Kind)
}

// Fail records a failed section.
func (s *GeneratedDocumentSet) Fail(kind SectionKind, err error) {
	s.Failures[kind] = err
	delete(s.Sections, kind)
}
