// Package github lists the repositories of a GitHub organization through the
// REST API.
//
// # Authentication
//
// A personal access token (classic or fine-grained) is sent as a bearer token
// through an oauth2 static token source. Private repositories require the
// 'repo' scope, or read access to metadata for fine-grained tokens.
//
// # Paging
//
// Repositories are requested 100 per page and the Link header is followed
// until GitHub reports no next page. Names are deduplicated, first occurrence
// wins, so an organization with N repositories yields N descriptors regardless
// of the number of pages.
//
// # Rate Limiting
//
// Requests go through a dual-strategy limiter:
//
//  1. Proactive throttling: a token bucket limits requests to approximately
//     1.2 requests per second.
//
//  2. Reactive handling: X-RateLimit-Remaining and X-RateLimit-Reset are read
//     from every response. When the remaining quota drops below a reserve the
//     limiter waits until the reset time.
//
// # Error Handling
//
//   - 404: the organization does not exist. User accounts are tried before
//     reporting [domain.ErrNotFound].
//   - 401: the token is invalid, reported as [domain.ErrAuthInvalid].
//   - 403 and anything else: the fallback lister (the gh CLI) is tried. This
//     covers organizations that enforce SAML single sign-on, where the gh CLI
//     holds an authorized session.
//
// All failures are returned as *[domain.DiscoveryError].
//
// # GitHub Enterprise
//
// [WithBaseURL] points the client at an Enterprise host; the REST API is
// addressed under /api/v3/.
package github
