package github

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/repodoc-cli/internal/core/domain"
	"github.com/custodia-labs/repodoc-cli/internal/core/ports/driven"
	"github.com/custodia-labs/repodoc-cli/internal/logger"
)

// Ensure Lister implements the interface.
var _ driven.RepositoryLister = (*Lister)(nil)

// Lister lists organization repositories through the REST API.
// When the API refuses access for reasons other than a missing organization
// or a bad token, typically SAML enforcement, it delegates to a fallback lister.
type Lister struct {
	client   *Client
	fallback driven.RepositoryLister
}

// NewLister creates a lister. fallback may be nil.
func NewLister(client *Client, fallback driven.RepositoryLister) *Lister {
	return &Lister{client: client, fallback: fallback}
}

// ListRepositories returns every repository of the organization.
func (l *Lister) ListRepositories(
	ctx context.Context, org domain.OrganizationHandle,
) ([]domain.RepositoryDescriptor, error) {
	repos, err := l.client.ListOrgRepos(ctx, org.Name)
	if IsNotFound(err) {
		// Personal accounts are not organizations but own repositories too.
		logger.Debug("organization %s not found, trying user account", org.Name)
		repos, err = l.client.ListUserRepos(ctx, org.Name)
	}
	if err == nil {
		descriptors := toDescriptors(repos)
		logger.Info("listed %d repositories of %s via API", len(descriptors), org.Name)
		q := l.client.RateLimiter().Quota()
		logger.Debug("GitHub quota: %d of %d requests left", q.Remaining, q.Limit)
		return descriptors, nil
	}

	switch {
	case ctx.Err() != nil:
		return nil, &domain.DiscoveryError{Organization: org.Name, Err: ctx.Err()}
	case IsNotFound(err):
		return nil, &domain.DiscoveryError{
			Organization: org.Name,
			Err:          fmt.Errorf("%w: organization %s: %w", domain.ErrNotFound, org.Name, err),
		}
	case IsUnauthorized(err):
		return nil, &domain.DiscoveryError{
			Organization: org.Name,
			Err:          fmt.Errorf("%w: %w", domain.ErrAuthInvalid, err),
		}
	}

	if IsForbidden(err) {
		err = fmt.Errorf("%w: %w", domain.ErrAuthForbidden, err)
	} else if IsRateLimited(err) {
		err = fmt.Errorf("%w: %w", domain.ErrRateLimited, err)
	}

	if l.fallback == nil {
		return nil, &domain.DiscoveryError{Organization: org.Name, Err: err}
	}

	logger.Warn("GitHub API listing failed for %s (%v), falling back to gh CLI", org.Name, err)
	descriptors, fbErr := l.fallback.ListRepositories(ctx, org)
	if fbErr != nil {
		var discovery *domain.DiscoveryError
		if errors.As(fbErr, &discovery) {
			fbErr = discovery.Err
		}
		return nil, &domain.DiscoveryError{Organization: org.Name, Err: errors.Join(err, fbErr)}
	}
	return descriptors, nil
}
