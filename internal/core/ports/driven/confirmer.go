package driven

import (
	"context"

	"github.com/custodia-labs/repodoc-cli/internal/core/domain"
)

// Confirmer asks the user whether a repository should be documented.
type Confirmer interface {
	Confirm(ctx context.Context, repo domain.RepositoryDescriptor) (bool, error)
}
