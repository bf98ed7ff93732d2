package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// PageSize is the number of repositories requested per page (GitHub maximum).
	PageSize = 100
)

// Client wraps the go-github client with helper methods.
type Client struct {
	gh          *gh.Client
	token       string
	baseURL     string
	apiURL      string
	httpClient  *http.Client
	rateLimiter *RateLimiter
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a GitHub Enterprise host, given its web root
// (e.g. "https://ghe.example.com"). The REST API is expected under /api/v3/.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithAPIURL sets the REST API root directly. Useful for testing.
func WithAPIURL(apiURL string) Option {
	return func(c *Client) {
		c.apiURL = apiURL
	}
}

// WithHTTPClient uses httpClient instead of an oauth2 client built from the token.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithRateLimiter replaces the default rate limiter.
func WithRateLimiter(r *RateLimiter) Option {
	return func(c *Client) {
		c.rateLimiter = r
	}
}

// NewClient creates a new GitHub API client authenticated with a static token.
func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		token:       token,
		rateLimiter: NewRateLimiter(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ensureClient initializes the go-github client if not already done.
// This is called lazily so construction never fails.
func (c *Client) ensureClient(ctx context.Context) error {
	if c.gh != nil {
		return nil
	}

	httpClient := c.httpClient
	if httpClient == nil {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: c.token},
		)
		httpClient = oauth2.NewClient(ctx, ts)
		httpClient.Timeout = DefaultTimeout
	}

	client := gh.NewClient(httpClient)

	switch {
	case c.apiURL != "":
		u, err := url.Parse(strings.TrimSuffix(c.apiURL, "/") + "/")
		if err != nil {
			return fmt.Errorf("parse API URL: %w", err)
		}
		client.BaseURL = u
	case c.baseURL != "" && !isPublicGitHub(c.baseURL):
		enterprise, err := client.WithEnterpriseURLs(c.baseURL+"/api/v3/", c.baseURL+"/api/uploads/")
		if err != nil {
			return fmt.Errorf("configure enterprise URL: %w", err)
		}
		client = enterprise
	}

	c.gh = client
	return nil
}

func isPublicGitHub(baseURL string) bool {
	u, err := url.Parse(baseURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Host)
	return host == "github.com" || host == "www.github.com"
}

// ListOrgRepos returns every repository of an organization, following pagination.
func (c *Client) ListOrgRepos(ctx context.Context, org string) ([]*gh.Repository, error) {
	opts := &gh.RepositoryListByOrgOptions{
		Type:        "all",
		Sort:        "full_name",
		ListOptions: gh.ListOptions{PerPage: PageSize},
	}

	return c.paginate(ctx, "list org repos", func(page int) ([]*gh.Repository, *gh.Response, error) {
		opts.Page = page
		return c.gh.Repositories.ListByOrg(ctx, org, opts)
	})
}

// ListUserRepos returns every repository owned by a user account.
// Used when the organization reference names a personal account.
func (c *Client) ListUserRepos(ctx context.Context, user string) ([]*gh.Repository, error) {
	opts := &gh.RepositoryListByUserOptions{
		Type:        "owner",
		Sort:        "full_name",
		ListOptions: gh.ListOptions{PerPage: PageSize},
	}

	return c.paginate(ctx, "list user repos", func(page int) ([]*gh.Repository, *gh.Response, error) {
		opts.Page = page
		return c.gh.Repositories.ListByUser(ctx, user, opts)
	})
}

// paginate calls fetch for each page until GitHub reports no next page.
func (c *Client) paginate(
	ctx context.Context,
	operation string,
	fetch func(page int) ([]*gh.Repository, *gh.Response, error),
) ([]*gh.Repository, error) {
	if err := c.ensureClient(ctx); err != nil {
		return nil, err
	}

	var all []*gh.Repository
	page := 0

	for {
		select {
		case <-ctx.Done():
			return all, ctx.Err()
		default:
		}

		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}

		repos, resp, err := fetch(page)
		if err != nil {
			return nil, c.wrapError(err, operation)
		}

		if resp != nil {
			c.rateLimiter.Observe(resp.Response)
		}

		all = append(all, repos...)

		if resp == nil || resp.NextPage == 0 {
			break
		}
		page = resp.NextPage
	}

	return all, nil
}

// RateLimiter returns the rate limiter for external access.
func (c *Client) RateLimiter() *RateLimiter {
	return c.rateLimiter
}

// wrapError converts go-github errors to our error types.
func (c *Client) wrapError(err error, operation string) error {
	if err == nil {
		return nil
	}

	// Check for rate limit error
	var rateLimitErr *gh.RateLimitError
	if errors.As(err, &rateLimitErr) {
		return &RateLimitError{
			ResetAt:   rateLimitErr.Rate.Reset.Time,
			Remaining: rateLimitErr.Rate.Remaining,
			Limit:     rateLimitErr.Rate.Limit,
		}
	}

	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return &RateLimitError{
			ResetAt: time.Now().Add(abuseErr.GetRetryAfter()),
			Limit:   c.rateLimiter.Quota().Limit,
		}
	}

	// Check for GitHub error response
	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		apiErr := &APIError{
			StatusCode: ghErr.Response.StatusCode,
			Message:    ghErr.Message,
		}
		if ghErr.Response.Request != nil {
			apiErr.URL = ghErr.Response.Request.URL.String()
		}
		return apiErr
	}

	return fmt.Errorf("%s: %w", operation, err)
}
