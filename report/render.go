package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/wippyai/wasm-typecanon/canon"
)

// Styles used by Render and by the interactive browser.
var (
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	IndexStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	KindStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	BorderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7D56F4"))
)

// Columns of the rendered table.
var Columns = []string{"#", "kind", "super", "depth", "flags", "type"}

// Options controls rendering.
type Options struct {
	// Color enables styling. Without it the output is plain ASCII.
	Color bool
	// From skips the first From entries, so the predefined arrays can be
	// hidden.
	From int
}

// Row returns the table cells for one entry.
func Row(t canon.TypeInfo) []string {
	depth := strconv.Itoa(t.Depth)
	if t.Depth < 0 {
		depth = "cycle"
	}
	return []string{
		strconv.FormatUint(uint64(t.Index), 10),
		t.Kind.String(),
		t.Supertype.String(),
		depth,
		Flags(t),
		t.Text,
	}
}

// Flags returns the final and shared markers of an entry.
func Flags(t canon.TypeInfo) string {
	var f []string
	if t.Final {
		f = append(f, "final")
	}
	if t.Shared {
		f = append(f, "shared")
	}
	if len(f) == 0 {
		return "-"
	}
	return strings.Join(f, ",")
}

// Render draws the snapshot as a table followed by a summary line.
func Render(s canon.Snapshot, opts Options) string {
	var rows [][]string
	for _, t := range s.Types {
		if int(t.Index) < opts.From {
			continue
		}
		rows = append(rows, Row(t))
	}

	tbl := table.New().Headers(Columns...).Rows(rows...)
	if opts.Color {
		tbl = tbl.
			Border(lipgloss.RoundedBorder()).
			BorderStyle(BorderStyle).
			StyleFunc(func(row, col int) lipgloss.Style {
				switch {
				case row == table.HeaderRow:
					return HeaderStyle
				case col == 0:
					return IndexStyle.Padding(0, 1)
				case col == 1:
					return KindStyle.Padding(0, 1)
				default:
					return lipgloss.NewStyle().Padding(0, 1)
				}
			})
	} else {
		tbl = tbl.
			Border(lipgloss.ASCIIBorder()).
			StyleFunc(func(int, int) lipgloss.Style {
				return lipgloss.NewStyle().Padding(0, 1)
			})
	}

	var b strings.Builder
	b.WriteString(tbl.String())
	b.WriteString("\n")
	b.WriteString(Summary(s))
	return b.String()
}

// Summary is a one-line description of table occupancy.
func Summary(s canon.Snapshot) string {
	return fmt.Sprintf("%d types, %d groups, %d singletons, ~%d bytes",
		len(s.Types), s.Groups, s.Singletons, s.MemoryBytes)
}
