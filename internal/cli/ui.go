package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Palette. ANSI 256 colors so the output looks the same in most terminals.
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
	StyleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleDim     = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
	styleHeader      = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	styleAmount      = lipgloss.NewStyle().Foreground(colorCyan)
	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(14)
)

// statusOut receives every status line. Status goes to stderr so that
// stdout only carries command output such as graph JSON.
var statusOut io.Writer = os.Stderr

// A marker is the glyph in front of a status line.
type marker struct {
	glyph string
	style lipgloss.Style
}

var (
	markSuccess = marker{"✓", lipgloss.NewStyle().Foreground(colorGreen)}
	markError   = marker{"✗", lipgloss.NewStyle().Foreground(colorRed)}
	markWarning = marker{"!", lipgloss.NewStyle().Foreground(colorYellow)}
	markInfo    = marker{"›", lipgloss.NewStyle().Foreground(colorGray)}
)

func (m marker) icon() string { return m.style.Render(m.glyph) }

func status(m marker, msg string) {
	fmt.Fprintln(statusOut, m.icon()+" "+msg)
}

func printSuccess(format string, args ...any) { status(markSuccess, fmt.Sprintf(format, args...)) }
func printError(format string, args ...any)   { status(markError, fmt.Sprintf(format, args...)) }
func printInfo(format string, args ...any)    { status(markInfo, fmt.Sprintf(format, args...)) }

func printWarning(format string, args ...any) {
	status(markWarning, StyleWarning.Render(fmt.Sprintf(format, args...)))
}

// printDetail prints an indented, muted line under the previous status.
func printDetail(format string, args ...any) {
	fmt.Fprintln(statusOut, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

func printFile(path string) {
	fmt.Fprintln(statusOut, "  "+StyleDim.Render("→")+" "+StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Fprintln(statusOut, styleKey.Render(key)+" "+StyleValue.Render(value))
}

func printNextStep(description, cmd string) {
	fmt.Fprintln(statusOut, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

// graphStats is the summary line printed after build, layout and render.
type graphStats struct {
	nodes   int
	edges   int
	skipped int
	cached  bool
}

func (s graphStats) String() string {
	var parts []string
	if s.nodes > 0 {
		parts = append(parts, fmt.Sprintf("%d nodes", s.nodes))
	}
	if s.edges > 0 {
		parts = append(parts, fmt.Sprintf("%d edges", s.edges))
	}
	if s.skipped > 0 {
		parts = append(parts, fmt.Sprintf("%d rows skipped", s.skipped))
	}
	if s.cached {
		parts = append(parts, "cached")
	} else {
		parts = append(parts, "fresh")
	}
	return strings.Join(parts, " · ")
}

func printStats(s graphStats) {
	fmt.Fprintln(statusOut, "  "+StyleDim.Render(s.String()))
}

// renderTable draws rows under headers with a rounded border. The first
// column is the entity, the rest are figures.
func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1: // header
				return styleHeader
			case col == 0:
				return StyleValue
			default:
				return styleAmount
			}
		}).
		Render()
}
