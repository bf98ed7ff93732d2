package cli

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/repodoc-cli/internal/core/domain"
)

func TestRenderReport(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	partial := documented("web")
	partial.Sections = append(partial.Sections, domain.SectionOutcome{
		Kind: domain.SectionFlowChart,
		Err:  &domain.GenerationError{Repository: "acme/web", Section: domain.SectionFlowChart, Err: errors.New("overloaded")},
	})
	report := &domain.RunReport{
		ID:           "run-42",
		Organization: domain.OrganizationHandle{Name: "acme", BaseURL: domain.DefaultBaseURL},
		StartedAt:    start,
		FinishedAt:   start.Add(90 * time.Second),
		Repositories: []domain.RepositoryReport{
			documented("api"),
			partial,
			{Repository: domain.RepositoryDescriptor{Name: "docs", FullName: "acme/docs"}, Declined: true},
		},
	}

	var buf bytes.Buffer
	renderReport(&buf, report)
	out := buf.String()

	assert.Contains(t, out, "Documentation report for https://github.com/acme")
	assert.Contains(t, out, "run run-42, 1m30s")
	assert.Contains(t, out, "api   documented  1/1 sections")
	assert.Contains(t, out, "web   partial     1/2 sections")
	assert.Contains(t, out, "flow_chart generate flow_chart for acme/web: overloaded")
	assert.Contains(t, out, "docs  declined    declined by user")
	assert.Contains(t, out, "3 repositories: 1 documented, 1 partial, 1 declined")
	assert.NotContains(t, out, "\x1b[", "no colour when not writing to a terminal")
}

func TestRenderReport_Empty(t *testing.T) {
	var buf bytes.Buffer
	renderReport(&buf, &domain.RunReport{Organization: domain.OrganizationHandle{Name: "acme", BaseURL: domain.DefaultBaseURL}})

	assert.Contains(t, buf.String(), "No repositories selected.")
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.5 KB", formatBytes(1536))
	assert.Equal(t, "2.0 MB", formatBytes(2<<20))
}
