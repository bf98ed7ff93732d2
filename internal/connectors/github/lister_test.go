package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/repodoc-cli/internal/core/domain"
	"github.com/custodia-labs/repodoc-cli/internal/core/ports/driven"
)

// mockLister implements driven.RepositoryLister for testing.
type mockLister struct {
	repos []domain.RepositoryDescriptor
	err   error
	calls int
}

func (m *mockLister) ListRepositories(
	_ context.Context, _ domain.OrganizationHandle,
) ([]domain.RepositoryDescriptor, error) {
	m.calls++
	return m.repos, m.err
}

var acme = domain.OrganizationHandle{Name: "acme", BaseURL: domain.DefaultBaseURL}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("test-token",
		WithAPIURL(srv.URL),
		WithHTTPClient(srv.Client()),
		WithRateLimiter(NewRateLimiterWithRate(rate.Inf, 0)),
	)
}

func repoJSON(name string) map[string]any {
	return map[string]any{
		"name":           name,
		"full_name":      "acme/" + name,
		"clone_url":      "https://github.com/acme/" + name + ".git",
		"default_branch": "main",
		"visibility":     "private",
		"private":        true,
	}
}

// pagedRepos serves /orgs/acme/repos with one page per slice entry.
func pagedRepos(pages [][]string, requests *int32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if requests != nil {
			atomic.AddInt32(requests, 1)
		}
		page := 1
		if p := r.URL.Query().Get("page"); p != "" {
			page, _ = strconv.Atoi(p)
		}
		if page < len(pages) {
			w.Header().Set("Link", fmt.Sprintf(`<http://%s%s?page=%d&per_page=100>; rel="next"`,
				r.Host, r.URL.Path, page+1))
		}
		w.Header().Set("Content-Type", "application/json")
		repos := make([]map[string]any, 0, len(pages[page-1]))
		for _, name := range pages[page-1] {
			repos = append(repos, repoJSON(name))
		}
		_ = json.NewEncoder(w).Encode(repos)
	}
}

func errorStatus(status int, message string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = fmt.Fprintf(w, `{"message": %q}`, message)
	}
}

func TestLister_ImplementsInterface(t *testing.T) {
	var _ driven.RepositoryLister = NewLister(nil, nil)
}

func TestLister_ListRepositories_FollowsPages(t *testing.T) {
	var requests int32
	mux := http.NewServeMux()
	mux.HandleFunc("/orgs/acme/repos", pagedRepos([][]string{
		{"api", "web"},
		{"worker", "docs"},
		{"infra"},
	}, &requests))
	lister := NewLister(newTestClient(t, mux), nil)

	repos, err := lister.ListRepositories(context.Background(), acme)

	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&requests))
	require.Len(t, repos, 5)
	assert.Equal(t, "api", repos[0].Name)
	assert.Equal(t, "acme/api", repos[0].FullName)
	assert.Equal(t, "https://github.com/acme/api.git", repos[0].CloneURL)
	assert.Equal(t, "main", repos[0].DefaultBranch)
	assert.Equal(t, domain.VisibilityPrivate, repos[0].Visibility)
	assert.Equal(t, "infra", repos[4].Name)
}

func TestLister_ListRepositories_UniqueRegardlessOfPages(t *testing.T) {
	names := []string{"a", "b", "c", "d", "e", "f", "g"}

	for pageSize := 1; pageSize <= len(names); pageSize++ {
		t.Run(fmt.Sprintf("page size %d", pageSize), func(t *testing.T) {
			var pages [][]string
			for i := 0; i < len(names); i += pageSize {
				end := min(i+pageSize, len(names))
				pages = append(pages, names[i:end])
			}
			// A repository shifting between pages appears twice.
			pages[len(pages)-1] = append(pages[len(pages)-1], names[0])

			mux := http.NewServeMux()
			mux.HandleFunc("/orgs/acme/repos", pagedRepos(pages, nil))
			lister := NewLister(newTestClient(t, mux), nil)

			repos, err := lister.ListRepositories(context.Background(), acme)

			require.NoError(t, err)
			assert.Len(t, repos, len(names))
		})
	}
}

func TestLister_ListRepositories_NotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/orgs/ghost/repos", errorStatus(http.StatusNotFound, "Not Found"))
	mux.HandleFunc("/users/ghost/repos", errorStatus(http.StatusNotFound, "Not Found"))
	fallback := &mockLister{}
	lister := NewLister(newTestClient(t, mux), fallback)

	_, err := lister.ListRepositories(context.Background(), domain.OrganizationHandle{Name: "ghost"})

	var discovery *domain.DiscoveryError
	require.ErrorAs(t, err, &discovery)
	assert.Equal(t, "ghost", discovery.Organization)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Zero(t, fallback.calls, "a missing organization must not fall back")
}

func TestLister_ListRepositories_UserAccount(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/orgs/octocat/repos", errorStatus(http.StatusNotFound, "Not Found"))
	mux.HandleFunc("/users/octocat/repos", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]map[string]any{repoJSON("hello-world")})
	})
	lister := NewLister(newTestClient(t, mux), nil)

	repos, err := lister.ListRepositories(context.Background(), domain.OrganizationHandle{Name: "octocat"})

	require.NoError(t, err)
	require.Len(t, repos, 1)
	assert.Equal(t, "hello-world", repos[0].Name)
}

func TestLister_ListRepositories_Unauthorized(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/orgs/acme/repos", errorStatus(http.StatusUnauthorized, "Bad credentials"))
	fallback := &mockLister{}
	lister := NewLister(newTestClient(t, mux), fallback)

	_, err := lister.ListRepositories(context.Background(), acme)

	var discovery *domain.DiscoveryError
	require.ErrorAs(t, err, &discovery)
	assert.ErrorIs(t, err, domain.ErrAuthInvalid)
	assert.Zero(t, fallback.calls)
}

func TestLister_ListRepositories_SAMLFallsBack(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/orgs/acme/repos",
		errorStatus(http.StatusForbidden, "Resource protected by organization SAML enforcement."))
	fallback := &mockLister{repos: []domain.RepositoryDescriptor{{Name: "api"}}}
	lister := NewLister(newTestClient(t, mux), fallback)

	repos, err := lister.ListRepositories(context.Background(), acme)

	require.NoError(t, err)
	assert.Equal(t, 1, fallback.calls)
	assert.Equal(t, []domain.RepositoryDescriptor{{Name: "api"}}, repos)
}

func TestLister_ListRepositories_FallbackFails(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/orgs/acme/repos", errorStatus(http.StatusForbidden, "SAML enforcement"))
	fallback := &mockLister{err: &domain.DiscoveryError{Organization: "acme", Err: domain.ErrCLIUnavailable}}
	lister := NewLister(newTestClient(t, mux), fallback)

	_, err := lister.ListRepositories(context.Background(), acme)

	var discovery *domain.DiscoveryError
	require.ErrorAs(t, err, &discovery)
	assert.ErrorIs(t, err, domain.ErrCLIUnavailable)
	assert.ErrorIs(t, err, domain.ErrAuthForbidden)
}

func TestLister_ListRepositories_ForbiddenWithoutFallback(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/orgs/acme/repos", errorStatus(http.StatusForbidden, "SAML enforcement"))
	lister := NewLister(newTestClient(t, mux), nil)

	_, err := lister.ListRepositories(context.Background(), acme)

	var discovery *domain.DiscoveryError
	require.ErrorAs(t, err, &discovery)
	assert.ErrorIs(t, err, domain.ErrAuthForbidden)
}

func TestLister_ListRepositories_CanceledContext(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/orgs/acme/repos", pagedRepos([][]string{{"api"}}, nil))
	fallback := &mockLister{}
	lister := NewLister(newTestClient(t, mux), fallback)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := lister.ListRepositories(ctx, acme)

	assert.True(t, errors.Is(err, context.Canceled))
	assert.Zero(t, fallback.calls)
}

func TestClient_SendsBearerToken(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte("[]"))
	}))
	defer srv.Close()

	client := NewClient("secret-token",
		WithAPIURL(srv.URL),
		WithRateLimiter(NewRateLimiterWithRate(rate.Inf, 0)),
	)

	_, err := client.ListOrgRepos(context.Background(), "acme")

	require.NoError(t, err)
	assert.Equal(t, "Bearer secret-token", auth)
}

func TestClient_UpdatesRateLimitFromHeaders(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/orgs/acme/repos", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("X-RateLimit-Limit", "5000")
		w.Header().Set("X-RateLimit-Remaining", "4321")
		w.Header().Set("X-RateLimit-Reset", "1900000000")
		_, _ = w.Write([]byte("[]"))
	})
	client := newTestClient(t, mux)

	_, err := client.ListOrgRepos(context.Background(), "acme")

	require.NoError(t, err)
	quota := client.RateLimiter().Quota()
	assert.Equal(t, 4321, quota.Remaining)
	assert.Equal(t, 5000, quota.Limit)
	assert.Equal(t, int64(1900000000), quota.Reset.Unix())
}

func TestClient_EnterpriseBaseURL(t *testing.T) {
	client := NewClient("token", WithBaseURL("https://ghe.example.com/"))

	require.NoError(t, client.ensureClient(context.Background()))
	assert.Equal(t, "https://ghe.example.com/api/v3/", client.gh.BaseURL.String())
}

func TestClient_PublicBaseURL(t *testing.T) {
	client := NewClient("token", WithBaseURL(domain.DefaultBaseURL))

	require.NoError(t, client.ensureClient(context.Background()))
	assert.Equal(t, "https://api.github.com/", client.gh.BaseURL.String())
}

func TestErrorHelpers(t *testing.T) {
	notFound := fmt.Errorf("wrapped: %w", &APIError{StatusCode: 404})
	assert.True(t, IsNotFound(notFound))
	assert.False(t, IsUnauthorized(notFound))

	assert.True(t, IsUnauthorized(&APIError{StatusCode: 401}))
	assert.True(t, IsForbidden(&APIError{StatusCode: 403}))
	assert.True(t, IsRateLimited(&RateLimitError{}))
	assert.False(t, IsRateLimited(errors.New("other")))
	assert.False(t, IsNotFound(errors.New("other")))
}
