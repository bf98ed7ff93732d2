package domain

import "time"

// RepositoryOutcome summarises what happened to one repository.
type RepositoryOutcome string

// Repository outcomes.
const (
	// OutcomeDocumented means every requested section was written.
	OutcomeDocumented RepositoryOutcome = "documented"

	// OutcomePartial means at least one section was written and at least one was not.
	OutcomePartial RepositoryOutcome = "partial"

	// OutcomeSkipped means no section was written.
	OutcomeSkipped RepositoryOutcome = "skipped"

	// OutcomeDeclined means the user chose not to document the repository.
	OutcomeDeclined RepositoryOutcome = "declined"
)

// SectionOutcome is the result of one section of one repository.
type SectionOutcome struct {
	Kind SectionKind

	// Path is the written file, empty on failure.
	Path string

	// Err is the GenerationError or WriteError that skipped the section.
	Err error
}

// Succeeded reports whether the section was written.
func (o SectionOutcome) Succeeded() bool {
	return o.Err == nil && o.Path != ""
}

// RepositoryReport is the per-repository summary of a run.
type RepositoryReport struct {
	Repository RepositoryDescriptor
	Status     CloneStatus
	Path       string

	// Err is set when the repository was skipped as a whole,
	// e.g. an AcquisitionError.
	Err error

	Sections []SectionOutcome

	// FilesSelected and BytesSelected describe the triaged context.
	FilesSelected int
	BytesSelected int64

	Declined bool
}

// Outcome classifies the repository result.
func (r RepositoryReport) Outcome() RepositoryOutcome {
	if r.Declined {
		return OutcomeDeclined
	}
	if r.Err != nil {
		return OutcomeSkipped
	}
	written := r.Written()
	switch {
	case written == 0:
		return OutcomeSkipped
	case written == len(r.Sections):
		return OutcomeDocumented
	default:
		return OutcomePartial
	}
}

// Written counts sections written to disk.
func (r RepositoryReport) Written() int {
	n := 0
	for _, s := range r.Sections {
		if s.Succeeded() {
			n++
		}
	}
	return n
}

// RunReport is the final report of a run.
type RunReport struct {
	// ID uniquely identifies the run.
	ID           string
	Organization OrganizationHandle
	StartedAt    time.Time
	FinishedAt   time.Time
	Repositories []RepositoryReport
}

// Count returns how many repositories ended with the given outcome.
func (r *RunReport) Count(outcome RepositoryOutcome) int {
	n := 0
	for _, repo := range r.Repositories {
		if repo.Outcome() == outcome {
			n++
		}
	}
	return n
}

// FullySucceeded reports whether every processed repository was fully documented.
// Repositories declined by the user do not count against the run.
func (r *RunReport) FullySucceeded() bool {
	for _, repo := range r.Repositories {
		switch repo.Outcome() {
		case OutcomeDocumented, OutcomeDeclined:
		default:
			return false
		}
	}
	return true
}

// Duration returns the wall time of the run.
func (r *RunReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
