package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidOrganization indicates the organization reference cannot be parsed.
	ErrInvalidOrganization = errors.New("invalid organization reference")

	// ErrMissingCredential indicates a required token or API key is not set.
	ErrMissingCredential = errors.New("missing credential")

	// ErrUnsupportedProvider indicates an unknown language model provider.
	ErrUnsupportedProvider = errors.New("unsupported provider")

	// ErrLLMUnavailable indicates the completion service could not be created.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrCLIUnavailable indicates the gh command line tool is not installed.
	ErrCLIUnavailable = errors.New("gh CLI unavailable")

	// ErrNotARepository indicates a destination directory exists but is not a git checkout.
	ErrNotARepository = errors.New("destination exists and is not a git repository")

	// ErrEmptyContent indicates triage selected no files for a repository.
	ErrEmptyContent = errors.New("no documentable content")

	// Authentication Errors.

	// ErrAuthInvalid indicates the authentication credentials are invalid.
	ErrAuthInvalid = errors.New("authentication invalid")

	// ErrAuthForbidden indicates the credential is valid but access is denied,
	// typically by SAML single sign-on enforcement.
	ErrAuthForbidden = errors.New("access forbidden")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)

// DiscoveryError reports that the repositories of an organization could not be listed.
// It aborts the whole run.
type DiscoveryError struct {
	Organization string
	Err          error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("discover repositories of %s: %v", e.Organization, e.Err)
}

func (e *DiscoveryError) Unwrap() error {
	return e.Err
}

// AcquisitionError reports that a repository could not be cloned or updated.
// The repository is skipped.
type AcquisitionError struct {
	Repository string
	Err        error
}

func (e *AcquisitionError) Error() string {
	return fmt.Sprintf("acquire %s: %v", e.Repository, e.Err)
}

func (e *AcquisitionError) Unwrap() error {
	return e.Err
}

// GenerationError reports that a section could not be generated.
// Only that section is skipped.
type GenerationError struct {
	Repository string
	Section    SectionKind
	Err        error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate %s for %s: %v", e.Section, e.Repository, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// WriteError reports that a generated section could not be written to disk.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// ConfigError reports an invalid or incomplete configuration. It aborts the run.
type ConfigError struct {
	Key string
	Err error
}

func (e *ConfigError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("configuration: %v", e.Err)
	}
	return fmt.Sprintf("configuration %s: %v", e.Key, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether err must abort the whole run.
func IsFatal(err error) bool {
	var discovery *DiscoveryError
	var config *ConfigError
	return errors.As(err, &discovery) || errors.As(err, &config)
}
