package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/RecoveryAshes/legiscrape/internal/models"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/schollz/progressbar/v3"
)

// SummaryFileName is written at the root of each run's output directory.
const SummaryFileName = "run_summary.json"

// Reporter persists and prints run summaries.
type Reporter struct {
	outputDir string
	out       io.Writer
}

// NewReporter writes to outputDir and prints to out (stdout when nil).
func NewReporter(outputDir string, out io.Writer) *Reporter {
	if out == nil {
		out = os.Stdout
	}
	return &Reporter{
		outputDir: outputDir,
		out:       out,
	}
}

// SaveSummary writes run_summary.json and returns its path.
func (r *Reporter) SaveSummary(summary *models.ScrapeRunSummary) (string, error) {
	if err := os.MkdirAll(r.outputDir, 0755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}

	data, err := summary.ToJSON()
	if err != nil {
		return "", fmt.Errorf("encode summary: %w", err)
	}

	path := filepath.Join(r.outputDir, SummaryFileName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", &models.PersistenceError{Path: path, Cause: err}
	}

	Debugf("saved run summary: %s", path)
	return path, nil
}

// PrintSummary renders one row per unit plus a totals footer.
func (r *Reporter) PrintSummary(summary *models.ScrapeRunSummary) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleRounded)
	t.SetTitle(fmt.Sprintf("%s run %s", summary.Mode, summary.RunID))
	t.AppendHeader(table.Row{"#", "Unit", "Status", "Detail", "Seconds"})

	for i, u := range summary.Units {
		detail := u.Error
		if detail == "" {
			detail = u.Artifact
		}
		if detail == "" && len(u.Sections) > 0 {
			detail = formatSections(u.Sections)
		}
		t.AppendRow(table.Row{i + 1, u.Unit, u.Status, detail, fmt.Sprintf("%.1f", u.Duration)})
	}

	t.AppendFooter(table.Row{"", "Total", summary.Attempted,
		fmt.Sprintf("%d ok / %d failed / %d error / %d skipped",
			summary.Succeeded, summary.Failed, summary.Errored, summary.Skipped), ""})
	t.Render()
}

func formatSections(sections map[string]int) string {
	order := []string{"active_bills", "sponsors", "committees", "viewed_bills", "monitored_bills"}
	out := ""
	for _, name := range order {
		n, ok := sections[name]
		if !ok {
			continue
		}
		if out != "" {
			out += " "
		}
		out += fmt.Sprintf("%s=%d", name, n)
	}
	return out
}

// NewProgressBar draws on stderr so it does not interleave with the summary table.
func NewProgressBar(max int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(max,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}
