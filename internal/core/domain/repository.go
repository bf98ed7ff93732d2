package domain

// Visibility describes who can see a repository.
type Visibility string

// Repository visibilities reported by GitHub.
const (
	VisibilityPublic   Visibility = "public"
	VisibilityPrivate  Visibility = "private"
	VisibilityInternal Visibility = "internal"
)

// RepositoryDescriptor describes a repository discovered under an organization.
// Produced by a RepositoryLister and read-only downstream.
type RepositoryDescriptor struct {
	// Name is the repository name without owner, e.g. "api".
	Name string

	// FullName is "owner/name".
	FullName string

	// CloneURL is the HTTPS clone address.
	CloneURL string

	// DefaultBranch is the branch pulled on update. Empty means the remote HEAD.
	DefaultBranch string

	Visibility  Visibility
	Description string
	Archived    bool
	Fork        bool
}

// CloneStatus records what the acquirer did with a repository.
type CloneStatus string

// Clone statuses.
const (
	// CloneStatusCloned means the repository was freshly cloned.
	CloneStatusCloned CloneStatus = "cloned"

	// CloneStatusUpdated means an existing clone received new commits.
	CloneStatusUpdated CloneStatus = "updated"

	// CloneStatusUpToDate means an existing clone was already current.
	CloneStatusUpToDate CloneStatus = "up_to_date"

	// CloneStatusStale means the update failed and the existing snapshot is used.
	CloneStatusStale CloneStatus = "stale"

	// CloneStatusFailed means no usable checkout exists.
	CloneStatusFailed CloneStatus = "failed"
)

// Usable reports whether the checkout can be documented.
func (s CloneStatus) Usable() bool {
	switch s {
	case CloneStatusCloned, CloneStatusUpdated, CloneStatusUpToDate, CloneStatusStale:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s CloneStatus) String() string {
	return string(s)
}

// LocalRepository is a repository checked out into the workspace.
type LocalRepository struct {
	Descriptor RepositoryDescriptor

	// Path is the absolute checkout directory.
	Path string

	Status CloneStatus
}

// DocsDir is the folder inside each checkout that receives generated files.
const DocsDir = "docs"

// IndexFileName is the index written next to the section files in DocsDir.
const IndexFileName = "README.md"
