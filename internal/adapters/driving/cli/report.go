package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/repodoc-cli/internal/core/domain"
)

// reportStyles colours the final report. The renderer strips colour when
// the output is not a terminal.
type reportStyles struct {
	title   lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	failure lipgloss.Style
	muted   lipgloss.Style
}

func newReportStyles(w io.Writer) reportStyles {
	r := lipgloss.NewRenderer(w)
	return reportStyles{
		title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED")),
		success: r.NewStyle().Foreground(lipgloss.Color("#A6E3A1")),
		warning: r.NewStyle().Foreground(lipgloss.Color("#F9E2AF")),
		failure: r.NewStyle().Foreground(lipgloss.Color("#F38BA8")),
		muted:   r.NewStyle().Foreground(lipgloss.Color("#6C7086")),
	}
}

func (s reportStyles) outcome(o domain.RepositoryOutcome) lipgloss.Style {
	switch o {
	case domain.OutcomeDocumented:
		return s.success
	case domain.OutcomePartial:
		return s.warning
	case domain.OutcomeSkipped:
		return s.failure
	default:
		return s.muted
	}
}

// renderReport prints the per-repository summary of a run.
func renderReport(w io.Writer, report *domain.RunReport) {
	styles := newReportStyles(w)

	fmt.Fprintln(w)
	fmt.Fprintln(w, styles.title.Render(fmt.Sprintf("Documentation report for %s", report.Organization)))
	fmt.Fprintln(w, styles.muted.Render(fmt.Sprintf("run %s, %s", report.ID, report.Duration().Round(time.Second))))
	fmt.Fprintln(w)

	if len(report.Repositories) == 0 {
		fmt.Fprintln(w, styles.muted.Render("No repositories selected."))
		return
	}

	width := 0
	for _, repo := range report.Repositories {
		width = max(width, len(repo.Repository.Name))
	}

	for _, repo := range report.Repositories {
		outcome := repo.Outcome()
		name := fmt.Sprintf("%-*s", width, repo.Repository.Name)
		label := styles.outcome(outcome).Render(fmt.Sprintf("%-10s", outcome))
		fmt.Fprintf(w, "  %s  %s  %s\n", name, label, repositoryDetail(repo))

		if repo.Err != nil {
			fmt.Fprintf(w, "      %s\n", styles.failure.Render(repo.Err.Error()))
			continue
		}
		for _, section := range repo.Sections {
			if section.Err != nil {
				fmt.Fprintf(w, "      %s %s\n", section.Kind, styles.failure.Render(section.Err.Error()))
			}
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, summaryLine(report))
}

func repositoryDetail(repo domain.RepositoryReport) string {
	switch {
	case repo.Declined:
		return "declined by user"
	case repo.Err != nil:
		return string(repo.Status)
	}
	return fmt.Sprintf("%d/%d sections, %d files, %s, %s",
		repo.Written(), len(repo.Sections), repo.FilesSelected, formatBytes(repo.BytesSelected), repo.Status)
}

func summaryLine(report *domain.RunReport) string {
	var parts []string
	for _, outcome := range []domain.RepositoryOutcome{
		domain.OutcomeDocumented, domain.OutcomePartial, domain.OutcomeSkipped, domain.OutcomeDeclined,
	} {
		if n := report.Count(outcome); n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, outcome))
		}
	}
	return fmt.Sprintf("%d repositories: %s", len(report.Repositories), strings.Join(parts, ", "))
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	if n < unit*unit {
		return fmt.Sprintf("%.1f KB", float64(n)/unit)
	}
	return fmt.Sprintf("%.1f MB", float64(n)/(unit*unit))
}
