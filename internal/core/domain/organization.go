package domain

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// DefaultBaseURL is the web address of public GitHub.
const DefaultBaseURL = "https://github.com"

// orgNamePattern matches GitHub login rules: alphanumerics and single
// hyphens, not starting with a hyphen, at most 39 characters.
var orgNamePattern = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9-]{0,37}[A-Za-z0-9])?$`)

// OrganizationHandle identifies the organization whose repositories are documented.
// It is built once from user input and never modified.
type OrganizationHandle struct {
	// Name is the organization login, e.g. "acme".
	Name string

	// BaseURL is the web root of the hosting instance, e.g. "https://github.com".
	BaseURL string
}

// IsEnterprise reports whether the organization lives on a GitHub Enterprise host.
func (o OrganizationHandle) IsEnterprise() bool {
	return o.BaseURL != "" && o.BaseURL != DefaultBaseURL
}

// Host returns the host name of the hosting instance.
func (o OrganizationHandle) Host() string {
	u, err := url.Parse(o.BaseURL)
	if err != nil || u.Host == "" {
		return "github.com"
	}
	return u.Host
}

// String returns the organization URL.
func (o OrganizationHandle) String() string {
	return strings.TrimSuffix(o.BaseURL, "/") + "/" + o.Name
}

// ParseOrganization builds an OrganizationHandle from a user-supplied reference.
//
// Accepted forms:
//
//	acme
//	github.com/acme
//	https://github.com/acme
//	https://github.com/orgs/acme/repositories
//	https://ghe.example.com/acme
func ParseOrganization(ref string) (OrganizationHandle, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return OrganizationHandle{}, fmt.Errorf("%w: empty reference", ErrInvalidOrganization)
	}

	if !strings.Contains(ref, "/") {
		return newHandle(ref, DefaultBaseURL)
	}

	if !strings.Contains(ref, "://") {
		ref = "https://" + ref
	}

	u, err := url.Parse(ref)
	if err != nil || u.Host == "" {
		return OrganizationHandle{}, fmt.Errorf("%w: %q", ErrInvalidOrganization, ref)
	}

	segments := make([]string, 0, 4)
	for _, s := range strings.Split(u.Path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	if len(segments) == 0 {
		return OrganizationHandle{}, fmt.Errorf("%w: no organization in %q", ErrInvalidOrganization, ref)
	}

	name := segments[0]
	if name == "orgs" {
		if len(segments) < 2 {
			return OrganizationHandle{}, fmt.Errorf("%w: no organization in %q", ErrInvalidOrganization, ref)
		}
		name = segments[1]
	}

	base := DefaultBaseURL
	if host := strings.ToLower(u.Host); host != "github.com" && host != "www.github.com" {
		scheme := u.Scheme
		if scheme == "" {
			scheme = "https"
		}
		base = scheme + "://" + host
	}

	return newHandle(name, base)
}

func newHandle(name, base string) (OrganizationHandle, error) {
	if !orgNamePattern.MatchString(name) || strings.Contains(name, "--") {
		return OrganizationHandle{}, fmt.Errorf("%w: invalid name %q", ErrInvalidOrganization, name)
	}
	return OrganizationHandle{Name: name, BaseURL: base}, nil
}
