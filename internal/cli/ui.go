package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/cyclesearch/pkg/core/search"
	"github.com/matzehuels/cyclesearch/pkg/ctp"
	"github.com/matzehuels/cyclesearch/pkg/pipeline"
)

// output receives all command output. Tests replace it.
var output io.Writer = os.Stdout

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - links
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight for emphasized values.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for numeric values.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)

	styleHeader = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	styleBorder = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(output, styleIconSuccess.Render(iconSuccess)+" "+msg)
}

// printError prints an error message.
func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(output, styleIconError.Render(iconError)+" "+msg)
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(output, styleIconWarning.Render(iconWarning)+" "+StyleWarning.Render(msg))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(output, styleIconInfo.Render(iconInfo)+" "+msg)
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(output, "  "+StyleDim.Render(msg))
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Fprintln(output, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Fprintln(output, keyStyle.Render(key)+" "+StyleValue.Render(value))
}

// =============================================================================
// Stats Display
// =============================================================================

// printStats prints search statistics on a single line.
func printStats(candidates int64, d time.Duration, cached bool) {
	parts := []string{
		fmt.Sprintf("%d candidates", candidates),
		d.Round(time.Millisecond).String(),
	}

	status := iconFresh
	statusStyle := styleComputed
	if cached {
		status = iconCached
		statusStyle = styleCached
	}

	line := "  "
	for i, part := range parts {
		if i > 0 {
			line += StyleDim.Render(" · ")
		}
		line += StyleDim.Render(part)
	}
	line += StyleDim.Render(" · ") + statusStyle.Render(status)
	fmt.Fprintln(output, line)
}

// =============================================================================
// Search Results
// =============================================================================

// printResult prints the outcome of a search with a table of cycles.
func printResult(d *ctp.Descriptor, res *pipeline.Result) {
	sr := res.Search
	name := d.Name
	if name == "" {
		name = fmt.Sprintf("%d pathways", d.Len())
	}

	if !sr.Found() {
		printWarning("No %s cycle for %s up to %d scans", sr.Family, name, sr.Stats.LastScans)
		printStats(sr.Stats.Candidates, sr.Stats.Duration, res.CacheInfo.SearchHit)
		return
	}

	printSuccess("Found %s %s with %s scans for %s",
		StyleNumber.Render(fmt.Sprint(len(sr.Cycles))),
		plural(len(sr.Cycles), "cycle", "cycles"),
		StyleNumber.Render(fmt.Sprint(sr.NScans)),
		name)
	if sr.LastZero {
		printDetail("last block pinned to winding 0")
	}
	fmt.Fprintln(output, cycleTable(sr))
	printStats(sr.Stats.Candidates, sr.Stats.Duration, res.CacheInfo.SearchHit)

	if res.CacheInfo.Archived {
		printNewline()
		printNextStep("Phase table", fmt.Sprintf("%s phases --run %s", appName, res.RunID))
	}
}

// cycleTable renders the cycles of a result with one row per cycle.
func cycleTable(res *search.Result) string {
	var headers []string
	rows := make([][]string, len(res.Cycles))
	switch res.Family {
	case search.FamilyCogwheel:
		headers = []string{"#", "Windings"}
		for i, c := range res.Cycles {
			rows[i] = []string{fmt.Sprint(i + 1), formatInts(c.Windings)}
		}
	case search.FamilyNested:
		headers = []string{"#", "Lengths", "Blocks"}
		for i, c := range res.Cycles {
			rows[i] = []string{fmt.Sprint(i + 1), formatInts(c.Lengths), formatRows(c.Blocks)}
		}
	default:
		headers = []string{"#", "Lengths", "Windings"}
		for i, c := range res.Cycles {
			rows[i] = []string{fmt.Sprint(i + 1), formatInts(c.Lengths), formatRows(c.Rows)}
		}
	}
	return newTable(headers, rows).Render()
}

// newTable returns a rounded table in the CLI palette.
func newTable(headers []string, rows [][]string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleBorder).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader.Padding(0, 1)
			}
			if col == 0 {
				return StyleDim.Padding(0, 1)
			}
			return StyleValue.Padding(0, 1)
		})
}

// =============================================================================
// Commands & Next Steps
// =============================================================================

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Fprintln(output, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

// =============================================================================
// Utilities
// =============================================================================

// printNewline prints an empty line.
func printNewline() {
	fmt.Fprintln(output)
}

// formatInts formats a vector as "[2 1 0]".
func formatInts(v []int) string {
	return fmt.Sprint(v)
}

// formatRows formats a list of vectors as "[1 0] [0 1]".
func formatRows(rows [][]int) string {
	parts := make([]string, len(rows))
	for i, r := range rows {
		parts[i] = formatInts(r)
	}
	return strings.Join(parts, " ")
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
