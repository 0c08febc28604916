package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/wasm-typecanon/canon"
	"github.com/wippyai/wasm-typecanon/report"
	"github.com/wippyai/wasm-typecanon/runtime"
	"github.com/wippyai/wasm-typecanon/types"
)

var (
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	trueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	falseStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))
)

const pageSize = 15

type browserState int

const (
	stateBrowse browserState = iota
	stateQuery
)

type browserModel struct {
	rt       *runtime.Runtime
	snap     canon.Snapshot
	owners   map[types.CanonicalTypeIndex][]string
	input    textinput.Model
	result   string
	err      error
	selected int
	state    browserState
}

func newBrowserModel(rt *runtime.Runtime, names []string, opts report.Options) *browserModel {
	snap := rt.Canonicalizer().Snapshot()
	snap.Types = snap.Types[min(opts.From, len(snap.Types)):]

	owners := make(map[types.CanonicalTypeIndex][]string)
	for _, name := range names {
		m, ok := rt.Module(name)
		if !ok {
			continue
		}
		for i, id := range m.CanonicalTypeIDs() {
			owners[id] = append(owners[id], fmt.Sprintf("%s:$%d", name, i))
		}
	}

	ti := textinput.New()
	ti.Placeholder = "canonical index"
	ti.Prompt = "supertype #"
	ti.Width = 20

	return &browserModel{rt: rt, snap: snap, owners: owners, input: ti}
}

func (m *browserModel) Init() tea.Cmd {
	return nil
}

func (m *browserModel) current() (canon.TypeInfo, bool) {
	if m.selected < 0 || m.selected >= len(m.snap.Types) {
		return canon.TypeInfo{}, false
	}
	return m.snap.Types[m.selected], true
}

func (m *browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, isKey := msg.(tea.KeyMsg)
	if m.state == stateQuery {
		switch {
		case !isKey:
		case key.String() == "ctrl+c":
			return m, tea.Quit
		case key.String() == "esc":
			m.state = stateBrowse
			m.input.Blur()
			return m, nil
		case key.String() == "enter":
			m.query()
			m.state = stateBrowse
			m.input.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	if !isKey {
		return m, nil
	}

	switch key.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < len(m.snap.Types)-1 {
			m.selected++
		}
	case "pgup":
		m.selected = max(m.selected-pageSize, 0)
	case "pgdown":
		m.selected = max(min(m.selected+pageSize, len(m.snap.Types)-1), 0)
	case "s", "/":
		m.state = stateQuery
		m.input.SetValue("")
		m.result = ""
		m.err = nil
		return m, m.input.Focus()
	}
	return m, nil
}

// query checks the selected type against the index typed by the user.
func (m *browserModel) query() {
	cur, ok := m.current()
	if !ok {
		return
	}
	n, err := strconv.ParseUint(strings.TrimPrefix(strings.TrimSpace(m.input.Value()), "#"), 10, 32)
	if err != nil {
		m.err = fmt.Errorf("not an index: %q", m.input.Value())
		return
	}
	super := types.CanonicalTypeIndex(n)
	c := m.rt.Canonicalizer()
	if int(n) >= c.Count() {
		m.err = fmt.Errorf("%s is beyond the table (%d entries)", super, c.Count())
		return
	}
	m.err = nil
	if c.IsSubtype(cur.Index, super) {
		m.result = fmt.Sprintf("%s <: %s  %s", cur.Index, super, trueStyle.Render("yes"))
	} else {
		m.result = fmt.Sprintf("%s <: %s  %s", cur.Index, super, falseStyle.Render("no"))
	}
}

func (m *browserModel) View() string {
	var b strings.Builder

	b.WriteString(report.HeaderStyle.Render("Canonical Types"))
	b.WriteString(" ")
	b.WriteString(report.DimStyle.Render(report.Summary(m.snap)))
	b.WriteString("\n\n")

	if len(m.snap.Types) == 0 {
		b.WriteString("No types loaded.\n\n")
		b.WriteString(report.DimStyle.Render("q quit"))
		return b.String()
	}

	start := max(min(m.selected-pageSize/2, len(m.snap.Types)-pageSize), 0)
	end := min(start+pageSize, len(m.snap.Types))
	for i := start; i < end; i++ {
		t := m.snap.Types[i]
		line := fmt.Sprintf("%-8s %-6s %s", t.Index, t.Kind, t.Text)
		if i == m.selected {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + report.IndexStyle.Render(fmt.Sprintf("%-8s", t.Index)) + " " +
				report.KindStyle.Render(fmt.Sprintf("%-6s", t.Kind)) + " " + t.Text)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	cur, _ := m.current()
	b.WriteString(m.details(cur))
	b.WriteString("\n")

	switch {
	case m.state == stateQuery:
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		b.WriteString(report.DimStyle.Render("enter check • esc back"))
	default:
		if m.err != nil {
			b.WriteString(falseStyle.Render(fmt.Sprintf("Error: %v", m.err)))
			b.WriteString("\n")
		} else if m.result != "" {
			b.WriteString(m.result)
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(report.DimStyle.Render("↑/↓ select • s subtype query • q quit"))
	}
	return b.String()
}

func (m *browserModel) details(t canon.TypeInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  flags %s\n", report.IndexStyle.Render(t.Index.String()), report.Flags(t))

	if d, ok := m.rt.Descriptor(t.Index); ok {
		chain := make([]string, 0, len(d.Display))
		for i := len(d.Display) - 1; i >= 0; i-- {
			chain = append(chain, d.Display[i].String())
		}
		fmt.Fprintf(&b, "supertypes %s\n", strings.Join(chain, " <: "))
	} else {
		fmt.Fprintf(&b, "supertype %s, depth %d\n", t.Supertype, t.Depth)
	}

	if owners := m.owners[t.Index]; len(owners) > 0 {
		fmt.Fprintf(&b, "declared by %s\n", strings.Join(owners, ", "))
	}
	return b.String()
}

func runInteractive(rt *runtime.Runtime, names []string, opts report.Options) error {
	p := tea.NewProgram(newBrowserModel(rt, names, opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
