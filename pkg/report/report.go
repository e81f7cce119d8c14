package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/fatih/color"

	"webscan/pkg/banner"
	"webscan/pkg/models"
)

// maxTitleWidth is how much of a title the table shows
const maxTitleWidth = 50

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)

	// IP, port, status, title
	columnColors = []lipgloss.Color{"6", "5", "2", "3"}
)

// PrintTable renders the results as a table in result-list order
func PrintTable(w io.Writer, results []models.ProbeResult) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("IP Address", "Port", "Status", "Title").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col < len(columnColors) {
				return cellStyle.Foreground(columnColors[col])
			}
			return cellStyle
		})

	for _, r := range results {
		t.Row(
			r.Host,
			strconv.Itoa(r.Port),
			strconv.Itoa(r.StatusCode),
			banner.Shorten(r.Title, maxTitleWidth),
		)
	}

	color.New(color.FgCyan, color.Bold).Fprintln(w, "Web Application Scan Results")
	fmt.Fprintln(w, t.Render())
}

// PrintSummary prints the closing lines of a scan
func PrintSummary(w io.Writer, elapsed time.Duration, results, probes int) {
	color.New(color.FgGreen).Fprintf(w, "\n✅ Scan completed in %v\n", elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "📊 Found %d web services out of %d probes\n", results, probes)
}

// WriteLines writes one line per result:
//
//	{host}:{port} - Status: {status}, Title: {title}
func WriteLines(w io.Writer, results []models.ProbeResult) error {
	bw := bufio.NewWriter(w)
	for _, r := range results {
		if _, err := fmt.Fprintf(bw, "%s:%d - Status: %d, Title: %s\n", r.Host, r.Port, r.StatusCode, r.Title); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteFile replaces path with the line-oriented results
func WriteFile(path string, results []models.ProbeResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := WriteLines(f, results); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return f.Close()
}
