package ghcli

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/custodia-labs/repodoc-cli/internal/core/domain"
	"github.com/custodia-labs/repodoc-cli/internal/core/ports/driven"
	"github.com/custodia-labs/repodoc-cli/internal/logger"
)

// Ensure CLI implements the interface.
var _ driven.RepositoryLister = (*CLI)(nil)

// Binary is the gh executable name.
const Binary = "gh"

// listFields are the JSON fields requested from gh repo list.
const listFields = "name,nameWithOwner,url,defaultBranchRef,visibility,isArchived,isFork,description"

// CLI lists, clones and syncs repositories through gh.
type CLI struct {
	runner driven.CommandRunner
	limit  int
}

// New creates a gh CLI adapter. limit caps the repositories listed.
func New(runner driven.CommandRunner, limit int) *CLI {
	if limit <= 0 {
		limit = domain.DefaultListLimit
	}
	return &CLI{runner: runner, limit: limit}
}

// Available reports whether gh is installed.
func (c *CLI) Available() error {
	if c.runner == nil {
		return domain.ErrCLIUnavailable
	}
	if _, err := c.runner.LookPath(Binary); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrCLIUnavailable, err)
	}
	return nil
}

// repoListEntry is one element of gh repo list --json output.
type repoListEntry struct {
	Name             string `json:"name"`
	NameWithOwner    string `json:"nameWithOwner"`
	URL              string `json:"url"`
	Description      string `json:"description"`
	Visibility       string `json:"visibility"`
	IsArchived       bool   `json:"isArchived"`
	IsFork           bool   `json:"isFork"`
	DefaultBranchRef *struct {
		Name string `json:"name"`
	} `json:"defaultBranchRef"`
}

// ListRepositories runs gh repo list and parses its JSON output.
func (c *CLI) ListRepositories(
	ctx context.Context, org domain.OrganizationHandle,
) ([]domain.RepositoryDescriptor, error) {
	if err := c.Available(); err != nil {
		return nil, &domain.DiscoveryError{Organization: org.Name, Err: err}
	}

	out, err := c.runner.Run(ctx, driven.Command{
		Name: Binary,
		Args: []string{"repo", "list", org.Name, "--limit", strconv.Itoa(c.limit), "--json", listFields},
		Env:  hostEnv(org),
	})
	if err != nil {
		return nil, &domain.DiscoveryError{Organization: org.Name, Err: err}
	}

	repos, err := ParseRepoList(out)
	if err != nil {
		return nil, &domain.DiscoveryError{Organization: org.Name, Err: err}
	}
	logger.Info("listed %d repositories of %s via gh CLI", len(repos), org.Name)
	return repos, nil
}

// ParseRepoList parses gh repo list --json output, deduplicating by name.
func ParseRepoList(data []byte) ([]domain.RepositoryDescriptor, error) {
	var entries []repoListEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse gh repo list output: %w", err)
	}

	seen := make(map[string]bool, len(entries))
	repos := make([]domain.RepositoryDescriptor, 0, len(entries))
	for _, e := range entries {
		if e.Name == "" || seen[e.Name] {
			continue
		}
		seen[e.Name] = true

		repo := domain.RepositoryDescriptor{
			Name:        e.Name,
			FullName:    e.NameWithOwner,
			Visibility:  domain.Visibility(strings.ToLower(e.Visibility)),
			Description: e.Description,
			Archived:    e.IsArchived,
			Fork:        e.IsFork,
		}
		if e.URL != "" {
			repo.CloneURL = strings.TrimSuffix(e.URL, "/") + ".git"
		}
		if e.DefaultBranchRef != nil {
			repo.DefaultBranch = e.DefaultBranchRef.Name
		}
		repos = append(repos, repo)
	}
	return repos, nil
}

// Clone clones a repository into dest with gh repo clone.
func (c *CLI) Clone(ctx context.Context, repo domain.RepositoryDescriptor, dest string) error {
	if err := c.Available(); err != nil {
		return err
	}
	_, err := c.runner.Run(ctx, driven.Command{
		Name: Binary,
		Args: []string{"repo", "clone", cloneTarget(repo), dest},
	})
	return err
}

// Sync updates the checkout in dir from its remote with gh repo sync.
func (c *CLI) Sync(ctx context.Context, dir string) error {
	if err := c.Available(); err != nil {
		return err
	}
	_, err := c.runner.Run(ctx, driven.Command{
		Dir:  dir,
		Name: Binary,
		Args: []string{"repo", "sync"},
	})
	return err
}

// cloneTarget returns OWNER/REPO, or HOST/OWNER/REPO for Enterprise hosts.
func cloneTarget(repo domain.RepositoryDescriptor) string {
	target := repo.FullName
	if target == "" {
		target = repo.Name
	}
	if repo.CloneURL == "" {
		return target
	}
	host := hostOf(repo.CloneURL)
	if host == "" || host == "github.com" {
		return target
	}
	return host + "/" + target
}

func hostOf(rawURL string) string {
	rest, ok := strings.CutPrefix(rawURL, "https://")
	if !ok {
		return ""
	}
	host, _, _ := strings.Cut(rest, "/")
	return strings.ToLower(host)
}

// hostEnv selects the gh host for Enterprise organizations.
func hostEnv(org domain.OrganizationHandle) []string {
	if !org.IsEnterprise() {
		return nil
	}
	return []string{"GH_HOST=" + org.Host()}
}
