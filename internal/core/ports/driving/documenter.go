package driving

import (
	"context"

	"github.com/custodia-labs/repodoc-cli/internal/core/domain"
)

// Documenter runs the documentation pipeline for an organization.
type Documenter interface {
	// Run lists, acquires, triages, generates and writes documentation for
	// every repository of org. The report is returned even when some
	// repositories fail. An error is returned only for failures that abort
	// the run, such as a *domain.DiscoveryError.
	Run(ctx context.Context, org domain.OrganizationHandle) (*domain.RunReport, error)
}
