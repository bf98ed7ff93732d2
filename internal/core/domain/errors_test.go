package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrInvalidOrganization", ErrInvalidOrganization},
		{"ErrMissingCredential", ErrMissingCredential},
		{"ErrUnsupportedProvider", ErrUnsupportedProvider},
		{"ErrLLMUnavailable", ErrLLMUnavailable},
		{"ErrCLIUnavailable", ErrCLIUnavailable},
		{"ErrNotARepository", ErrNotARepository},
		{"ErrEmptyContent", ErrEmptyContent},
		{"ErrAuthInvalid", ErrAuthInvalid},
		{"ErrAuthForbidden", ErrAuthForbidden},
		{"ErrRateLimited", ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestDiscoveryError(t *testing.T) {
	err := &DiscoveryError{Organization: "acme", Err: ErrAuthInvalid}

	assert.Contains(t, err.Error(), "acme")
	assert.ErrorIs(t, err, ErrAuthInvalid)
	assert.True(t, IsFatal(err))
	assert.True(t, IsFatal(fmt.Errorf("run: %w", err)))
}

func TestAcquisitionError(t *testing.T) {
	cause := errors.New("authentication required")
	err := &AcquisitionError{Repository: "api", Err: cause}

	assert.Equal(t, "acquire api: authentication required", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.False(t, IsFatal(err))
}

func TestGenerationError(t *testing.T) {
	err := &GenerationError{Repository: "api", Section: SectionFlowChart, Err: ErrRateLimited}

	assert.Equal(t, "generate flow_chart for api: rate limited", err.Error())
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.False(t, IsFatal(err))

	var genErr *GenerationError
	assert.True(t, errors.As(fmt.Errorf("wrapped: %w", err), &genErr))
	assert.Equal(t, SectionFlowChart, genErr.Section)
}

func TestWriteError(t *testing.T) {
	cause := errors.New("disk full")
	err := &WriteError{Path: "docs/flow-chart.md", Err: cause}

	assert.Equal(t, "write docs/flow-chart.md: disk full", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestConfigError(t *testing.T) {
	t.Run("with key", func(t *testing.T) {
		err := &ConfigError{Key: "GITHUB_TOKEN", Err: ErrMissingCredential}

		assert.Equal(t, "configuration GITHUB_TOKEN: missing credential", err.Error())
		assert.ErrorIs(t, err, ErrMissingCredential)
		assert.True(t, IsFatal(err))
	})

	t.Run("without key", func(t *testing.T) {
		err := &ConfigError{Err: ErrInvalidInput}

		assert.Equal(t, "configuration: invalid input", err.Error())
	})
}

func TestIsFatal_PlainError(t *testing.T) {
	assert.False(t, IsFatal(errors.New("plain")))
	assert.False(t, IsFatal(nil))
}
