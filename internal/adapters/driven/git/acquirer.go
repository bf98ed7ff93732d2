package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/google/uuid"

	"github.com/custodia-labs/repodoc-cli/internal/core/domain"
	"github.com/custodia-labs/repodoc-cli/internal/core/ports/driven"
	"github.com/custodia-labs/repodoc-cli/internal/logger"
)

// Ensure Acquirer implements the interface.
var _ driven.RepositoryAcquirer = (*Acquirer)(nil)

// tokenUser is the username GitHub expects with a token as password.
const tokenUser = "x-access-token"

// Fallback is an alternate transport used once after an authentication failure.
type Fallback interface {
	Clone(ctx context.Context, repo domain.RepositoryDescriptor, dest string) error
	Sync(ctx context.Context, dir string) error
}

// Acquirer clones and updates repositories with go-git.
type Acquirer struct {
	token    string
	fallback Fallback
}

// New creates an acquirer authenticating with token. fallback may be nil.
func New(token string, fallback Fallback) *Acquirer {
	return &Acquirer{token: token, fallback: fallback}
}

// Acquire clones repo into root/<name>, or pulls an existing checkout.
func (a *Acquirer) Acquire(
	ctx context.Context, repo domain.RepositoryDescriptor, root string,
) (*domain.LocalRepository, error) {
	if err := validateName(repo.Name); err != nil {
		return nil, &domain.AcquisitionError{Repository: repo.Name, Err: err}
	}

	root, err := filepath.Abs(root)
	if err != nil {
		return nil, &domain.AcquisitionError{Repository: repo.Name, Err: err}
	}
	dest := filepath.Join(root, repo.Name)

	info, err := os.Stat(dest)
	switch {
	case err == nil && info.IsDir():
		return a.update(ctx, repo, dest)
	case err == nil:
		return nil, &domain.AcquisitionError{Repository: repo.Name, Err: domain.ErrNotARepository}
	case !errors.Is(err, os.ErrNotExist):
		return nil, &domain.AcquisitionError{Repository: repo.Name, Err: err}
	}

	return a.clone(ctx, repo, root, dest)
}

func (a *Acquirer) clone(
	ctx context.Context, repo domain.RepositoryDescriptor, root, dest string,
) (*domain.LocalRepository, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, &domain.AcquisitionError{Repository: repo.Name, Err: fmt.Errorf("create workspace: %w", err)}
	}

	logger.Debug("cloning %s into %s", repo.FullName, dest)
	tmp := partialDir(root, repo.Name)
	err := a.cloneInto(ctx, repo, tmp)
	if err != nil && isAuthFailure(err) && a.fallback != nil && ctx.Err() == nil {
		logger.Warn("clone of %s failed authentication (%v), retrying with gh CLI", repo.Name, err)
		tmp = partialDir(root, repo.Name)
		if fbErr := a.fallback.Clone(ctx, repo, tmp); fbErr != nil {
			_ = os.RemoveAll(tmp)
			err = errors.Join(err, fbErr)
		} else {
			err = nil
		}
	}
	if err != nil {
		return nil, &domain.AcquisitionError{Repository: repo.Name, Err: err}
	}

	if err := os.Rename(tmp, dest); err != nil {
		_ = os.RemoveAll(tmp)
		return nil, &domain.AcquisitionError{Repository: repo.Name, Err: fmt.Errorf("move clone into place: %w", err)}
	}

	return &domain.LocalRepository{Descriptor: repo, Path: dest, Status: domain.CloneStatusCloned}, nil
}

// cloneInto clones with go-git, removing dir on failure.
func (a *Acquirer) cloneInto(ctx context.Context, repo domain.RepositoryDescriptor, dir string) error {
	opts := &gogit.CloneOptions{
		URL:          repo.CloneURL,
		Auth:         a.auth(repo.CloneURL),
		SingleBranch: true,
	}
	if repo.DefaultBranch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(repo.DefaultBranch)
	}

	if _, err := gogit.PlainCloneContext(ctx, dir, false, opts); err != nil {
		_ = os.RemoveAll(dir)
		return fmt.Errorf("clone %s: %w", repo.CloneURL, err)
	}
	return nil
}

// update fetches the default branch and hard-resets the checkout to it. The
// workspace belongs to repodoc, so local changes such as docs written by an
// earlier run are discarded rather than merged.
func (a *Acquirer) update(
	ctx context.Context, repo domain.RepositoryDescriptor, dest string,
) (*domain.LocalRepository, error) {
	r, err := gogit.PlainOpen(dest)
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			err = domain.ErrNotARepository
		}
		return nil, &domain.AcquisitionError{Repository: repo.Name, Err: err}
	}

	w, err := r.Worktree()
	if err != nil {
		return nil, &domain.AcquisitionError{Repository: repo.Name, Err: err}
	}

	branch, err := trackedBranch(r, repo)
	if err != nil {
		return nil, &domain.AcquisitionError{Repository: repo.Name, Err: err}
	}

	logger.Debug("fetching %s (%s) in %s", repo.FullName, branch, dest)
	local := &domain.LocalRepository{Descriptor: repo, Path: dest}
	err = r.FetchContext(ctx, &gogit.FetchOptions{
		RemoteName: gogit.DefaultRemoteName,
		Auth:       a.auth(repo.CloneURL),
		RefSpecs: []config.RefSpec{config.RefSpec(fmt.Sprintf(
			"+refs/heads/%[1]s:refs/remotes/%[2]s/%[1]s", branch, gogit.DefaultRemoteName))},
	})
	if err != nil && !errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		if ctx.Err() != nil {
			return nil, &domain.AcquisitionError{Repository: repo.Name, Err: ctx.Err()}
		}
		return a.syncFallback(ctx, w, local, err), nil
	}

	status, err := resetToRemote(r, w, branch)
	if err != nil {
		logger.Warn("could not update %s, using existing files: %v", repo.Name, err)
		local.Status = domain.CloneStatusStale
		return local, nil
	}
	local.Status = status
	return local, nil
}

// syncFallback retries a failed fetch through the fallback when the failure
// was about access. Anything else leaves the existing files in use.
func (a *Acquirer) syncFallback(
	ctx context.Context, w *gogit.Worktree, local *domain.LocalRepository, err error,
) *domain.LocalRepository {
	name := local.Descriptor.Name
	if isAuthFailure(err) && a.fallback != nil {
		logger.Warn("fetch of %s failed authentication (%v), retrying with gh CLI", name, err)
		// A fast-forward refuses to run over modified tracked files.
		if resetErr := w.Reset(&gogit.ResetOptions{Mode: gogit.HardReset}); resetErr != nil {
			logger.Debug("discard local changes in %s: %v", name, resetErr)
		}
		fbErr := a.fallback.Sync(ctx, local.Path)
		if fbErr == nil {
			local.Status = domain.CloneStatusUpdated
			return local
		}
		err = errors.Join(err, fbErr)
	}

	logger.Warn("could not update %s, using existing files: %v", name, err)
	local.Status = domain.CloneStatusStale
	return local
}

// trackedBranch is the branch the checkout follows: the default branch when
// known, otherwise the branch currently checked out.
func trackedBranch(r *gogit.Repository, repo domain.RepositoryDescriptor) (string, error) {
	if repo.DefaultBranch != "" {
		return repo.DefaultBranch, nil
	}
	head, err := r.Head()
	if err != nil {
		return "", fmt.Errorf("read HEAD: %w", err)
	}
	if !head.Name().IsBranch() {
		return "", fmt.Errorf("%w: HEAD is detached and no default branch is known", domain.ErrInvalidInput)
	}
	return head.Name().Short(), nil
}

// resetToRemote checks out branch and hard-resets it to its remote-tracking
// ref. It reports Updated when HEAD moved and UpToDate otherwise.
func resetToRemote(r *gogit.Repository, w *gogit.Worktree, branch string) (domain.CloneStatus, error) {
	remote, err := r.Reference(plumbing.NewRemoteReferenceName(gogit.DefaultRemoteName, branch), true)
	if err != nil {
		return "", fmt.Errorf("resolve %s/%s: %w", gogit.DefaultRemoteName, branch, err)
	}

	before := plumbing.ZeroHash
	head, err := r.Head()
	if err == nil {
		before = head.Hash()
	}

	branchRef := plumbing.NewBranchReferenceName(branch)
	if err != nil || head.Name() != branchRef {
		_, missing := r.Reference(branchRef, false)
		opts := &gogit.CheckoutOptions{Branch: branchRef, Create: missing != nil, Force: true}
		if missing != nil {
			opts.Hash = remote.Hash()
		}
		if err := w.Checkout(opts); err != nil {
			return "", fmt.Errorf("checkout %s: %w", branch, err)
		}
	}

	if err := w.Reset(&gogit.ResetOptions{Commit: remote.Hash(), Mode: gogit.HardReset}); err != nil {
		return "", fmt.Errorf("reset to %s/%s: %w", gogit.DefaultRemoteName, branch, err)
	}

	if before == remote.Hash() {
		return domain.CloneStatusUpToDate, nil
	}
	return domain.CloneStatusUpdated, nil
}

// auth returns token credentials for HTTP(S) remotes.
func (a *Acquirer) auth(remote string) transport.AuthMethod {
	if a.token == "" || !strings.HasPrefix(remote, "http") {
		return nil
	}
	return &githttp.BasicAuth{Username: tokenUser, Password: a.token}
}

// isAuthFailure reports transport errors caused by missing access.
// GitHub answers "not found" for private repositories the token cannot see.
func isAuthFailure(err error) bool {
	return errors.Is(err, transport.ErrAuthenticationRequired) ||
		errors.Is(err, transport.ErrAuthorizationFailed) ||
		errors.Is(err, transport.ErrRepositoryNotFound)
}

func partialDir(root, name string) string {
	return filepath.Join(root, fmt.Sprintf(".%s.partial-%s", name, uuid.NewString()))
}

func validateName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: repository name %q", domain.ErrInvalidInput, name)
	}
	return nil
}
