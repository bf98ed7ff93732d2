package github

import (
	gh "github.com/google/go-github/v80/github"

	"github.com/custodia-labs/repodoc-cli/internal/core/domain"
)

// toDescriptors converts API repositories into descriptors, dropping disabled
// repositories and duplicate names. The first occurrence of a name wins, so
// results stay stable when pages shift during listing.
func toDescriptors(repos []*gh.Repository) []domain.RepositoryDescriptor {
	seen := make(map[string]bool, len(repos))
	out := make([]domain.RepositoryDescriptor, 0, len(repos))
	for _, r := range repos {
		if r == nil || r.GetDisabled() {
			continue
		}
		name := r.GetName()
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, toDescriptor(r))
	}
	return out
}

func toDescriptor(r *gh.Repository) domain.RepositoryDescriptor {
	return domain.RepositoryDescriptor{
		Name:          r.GetName(),
		FullName:      r.GetFullName(),
		CloneURL:      r.GetCloneURL(),
		DefaultBranch: r.GetDefaultBranch(),
		Visibility:    visibility(r),
		Description:   r.GetDescription(),
		Archived:      r.GetArchived(),
		Fork:          r.GetFork(),
	}
}

func visibility(r *gh.Repository) domain.Visibility {
	switch v := domain.Visibility(r.GetVisibility()); v {
	case domain.VisibilityPublic, domain.VisibilityPrivate, domain.VisibilityInternal:
		return v
	}
	if r.GetPrivate() {
		return domain.VisibilityPrivate
	}
	return domain.VisibilityPublic
}
