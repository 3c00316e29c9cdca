package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/graphedit/pkg/graph"
)

// =============================================================================
// Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorBlue   = lipgloss.Color("75")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

var (
	// StyleTitle for the editor header.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight for node and edge ids.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleLink for URLs.
	StyleLink = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)

	// StyleDim for secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleSuccess for the last completed action.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	styleWarning     = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(12)
)

const (
	iconSuccess = "✓"
	iconWarning = "!"
	iconError   = "✗"
	iconInfo    = "›"
	iconArrow   = "→"
)

// stdout receives all status output of one-shot commands.
var stdout io.Writer = os.Stdout

// =============================================================================
// Status lines
// =============================================================================

func printLine(icon string, iconStyle lipgloss.Style, msg string) {
	fmt.Fprintln(stdout, iconStyle.Render(icon)+" "+msg)
}

func printSuccess(format string, args ...any) {
	printLine(iconSuccess, StyleSuccess, fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	printLine(iconWarning, styleWarning, styleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	printLine(iconInfo, styleIconInfo, fmt.Sprintf(format, args...))
}

// printDetail prints an indented secondary line under a status line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints the path a command wrote to.
func printFile(path string) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(iconArrow)+" "+path)
}

func printKeyValue(key, value string) {
	fmt.Fprintln(stdout, styleKey.Render(key)+" "+value)
}

func printNextStep(description, cmd string) {
	fmt.Fprintln(stdout, StyleDim.Render(description+":")+" "+StyleLink.UnsetUnderline().Render(cmd))
}

func printNewline() {
	fmt.Fprintln(stdout)
}

// =============================================================================
// Graph summaries
// =============================================================================

// countSummary renders "2 nodes and 1 edge".
func countSummary(g graph.Graph) string {
	return plural(g.NodeCount(), "node") + " and " + plural(g.EdgeCount(), "edge")
}

// printGraphSummary prints the counts and revision of g on one dim line.
func printGraphSummary(g graph.Graph, revision uint64) {
	parts := []string{
		plural(g.NodeCount(), "node"),
		plural(g.EdgeCount(), "edge"),
		fmt.Sprintf("rev %d", revision),
	}
	fmt.Fprintln(stdout, "  "+StyleDim.Render(strings.Join(parts, " · ")))
}

// printDangling warns about edges whose endpoints are missing. Imports keep
// such edges as they are.
func printDangling(g graph.Graph) {
	d := g.Dangling()
	if len(d) == 0 {
		return
	}
	printWarning("%s reference missing nodes", plural(len(d), "edge"))
	for _, e := range d {
		printDetail("%s %s", e.ID, describeEdge(e))
	}
}

// describeEdge renders the endpoints of e as "1 → 2".
func describeEdge(e graph.Edge) string {
	return e.Source + " " + iconArrow + " " + e.Target
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// =============================================================================
// Tables
// =============================================================================

func nodeTable(g graph.Graph) string {
	rows := make([][]string, 0, g.NodeCount())
	for _, n := range g.Nodes {
		rows = append(rows, []string{
			n.ID,
			n.DisplayLabel(),
			fmt.Sprintf("%g, %g", n.Position.X, n.Position.Y),
			mark(n.Selected),
		})
	}
	return styledTable(rows, "Node", "Label", "Position", "Sel")
}

func edgeTable(g graph.Graph) string {
	rows := make([][]string, 0, g.EdgeCount())
	for _, e := range g.Edges {
		rows = append(rows, []string{
			e.ID,
			describeEdge(e),
			orDash(e.SourceHandle) + " / " + orDash(e.TargetHandle),
			e.Label,
			mark(e.Selected),
		})
	}
	return styledTable(rows, "Edge", "Link", "Handles", "Label", "Sel")
}

func styledTable(rows [][]string, headers ...string) string {
	header := lipgloss.NewStyle().Foreground(colorGray).Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return header
			case col == 0:
				return cell.Foreground(colorCyan)
			default:
				return cell
			}
		}).
		Render()
}

func mark(b bool) string {
	if b {
		return iconSuccess
	}
	return ""
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
