package driven

import (
	"context"

	"github.com/custodia-labs/repodoc-cli/internal/core/domain"
)

// RepositoryLister discovers the repositories of an organization.
type RepositoryLister interface {
	// ListRepositories returns every repository of the organization,
	// deduplicated by name, in listing order.
	// Failures are reported as *domain.DiscoveryError.
	ListRepositories(ctx context.Context, org domain.OrganizationHandle) ([]domain.RepositoryDescriptor, error)
}

// RepositoryAcquirer checks repositories out into the workspace.
type RepositoryAcquirer interface {
	// Acquire clones the repository below root, or updates an existing clone.
	// A partially cloned directory is never returned as a success.
	// Failures are reported as *domain.AcquisitionError.
	Acquire(ctx context.Context, repo domain.RepositoryDescriptor, root string) (*domain.LocalRepository, error)
}

// Command is an external program invocation.
type Command struct {
	// Dir is the working directory. Empty means the current directory.
	Dir string

	Name string
	Args []string

	// Env is appended to the inherited environment, as KEY=VALUE pairs.
	Env []string
}

// CommandRunner runs external programs. It exists so the gh CLI fallbacks
// can be replaced by deterministic fakes.
type CommandRunner interface {
	// LookPath reports whether the program is installed.
	LookPath(name string) (string, error)

	// Run executes cmd and returns its standard output.
	// A non-zero exit returns an error carrying standard error.
	Run(ctx context.Context, cmd Command) ([]byte, error)
}
