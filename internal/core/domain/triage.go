package domain

// Tier classifies a file by how likely it is to explain a repository.
type Tier string

// Triage tiers, from most to least informative by default.
const (
	TierReadme     Tier = "readme"
	TierEntryPoint Tier = "entry_point"
	TierManifest   Tier = "manifest"
	TierConfig     Tier = "config"
	TierDomain     Tier = "domain"
	TierSource     Tier = "source"
)

// AllTiers returns every tier in default priority order.
func AllTiers() []Tier {
	return []Tier{TierReadme, TierEntryPoint, TierManifest, TierConfig, TierDomain, TierSource}
}

// IsValid returns true if the tier is recognised.
func (t Tier) IsValid() bool {
	for _, known := range AllTiers() {
		if t == known {
			return true
		}
	}
	return false
}

// TierWeights maps tiers to ranking scores. Higher scores are selected first.
type TierWeights map[Tier]int

// DefaultTierWeights returns the stock ranking: documentation and entry points
// first, then build manifests and configuration, then the rest of the source.
func DefaultTierWeights() TierWeights {
	return TierWeights{
		TierReadme:     100,
		TierEntryPoint: 80,
		TierManifest:   60,
		TierConfig:     40,
		TierDomain:     30,
		TierSource:     10,
	}
}

// Weight returns the weight for a tier, zero when unset.
func (w TierWeights) Weight(t Tier) int {
	return w[t]
}

// TriagedFile is one file selected for documentation context.
type TriagedFile struct {
	// Path is relative to the repository root, slash-separated.
	Path string

	Content string
	Size    int64
	Tier    Tier
}

// TriagedFileSet is the ordered, budget-bounded selection for one repository.
// TotalSize never exceeds Budget.
type TriagedFileSet struct {
	Files     []TriagedFile
	TotalSize int64
	Budget    int64

	// Considered counts candidate files after filtering.
	Considered int

	// Skipped counts candidates rejected for budget or decoding reasons.
	Skipped int
}

// Empty reports whether nothing was selected.
func (s *TriagedFileSet) Empty() bool {
	return s == nil || len(s.Files) == 0
}

// Paths returns the selected paths in order.
func (s *TriagedFileSet) Paths() []string {
	if s == nil {
		return nil
	}
	paths := make([]string, len(s.Files))
	for i, f := range s.Files {
		paths[i] = f.Path
	}
	return paths
}
