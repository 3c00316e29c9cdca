package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/graphedit/pkg/connect"
	"github.com/matzehuels/graphedit/pkg/deletion"
	"github.com/matzehuels/graphedit/pkg/editor"
	"github.com/matzehuels/graphedit/pkg/errors"
	"github.com/matzehuels/graphedit/pkg/graph"
	"github.com/matzehuels/graphedit/pkg/store"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listMarkedStyle   = lipgloss.NewStyle().Foreground(colorGreen)
	statusErrorStyle  = lipgloss.NewStyle().Foreground(colorRed)
)

// tuiCenter is where new nodes are placed; the terminal has no viewport.
var tuiCenter = graph.Position{X: 400, Y: 300}

func (c *CLI) tuiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Edit the graph in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			m := newEditorModel(cmd.Context(), s.editor)
			_, err = tea.NewProgram(m, tea.WithContext(cmd.Context()), tea.WithAltScreen()).Run()
			return err
		},
	}
}

// =============================================================================
// EditorModel - Interactive graph editing
// =============================================================================

type focus int

const (
	focusNodes focus = iota
	focusEdges
)

type mode int

const (
	modeNormal mode = iota
	modeConnect     // source marked, waiting for the target
	modeNodeLabel   // inline node label editor open
	modeEdgeLabel   // edge label prompt open
)

// editorModel is the bubbletea model of the terminal canvas. It reads a
// fresh snapshot after every action rather than subscribing to the store,
// so no store callback ever runs inside the program loop.
type editorModel struct {
	ctx context.Context
	ed  *editor.Editor

	g   graph.Graph
	rev uint64

	focus  focus
	cursor [2]int
	mode   mode
	source string // marked connection source
	target string // node or edge being labelled

	input  textinput.Model
	status string
	err    error
}

func newEditorModel(ctx context.Context, ed *editor.Editor) editorModel {
	ti := textinput.New()
	ti.Prompt = "› "
	ti.CharLimit = 256
	m := editorModel{ctx: ctx, ed: ed, input: ti}
	m.refresh()
	return m
}

func (m *editorModel) refresh() {
	m.g, m.rev = m.ed.Snapshot()
	for f, n := range []int{m.g.NodeCount(), m.g.EdgeCount()} {
		if m.cursor[f] >= n {
			m.cursor[f] = max(n-1, 0)
		}
	}
}

func (m *editorModel) report(err error, format string, args ...any) {
	m.err = err
	if err == nil {
		m.status = fmt.Sprintf(format, args...)
	}
	m.refresh()
}

func (m editorModel) currentNode() (graph.Node, bool) {
	if m.g.NodeCount() == 0 {
		return graph.Node{}, false
	}
	return m.g.Nodes[m.cursor[focusNodes]], true
}

func (m editorModel) currentEdge() (graph.Edge, bool) {
	if m.g.EdgeCount() == 0 {
		return graph.Edge{}, false
	}
	return m.g.Edges[m.cursor[focusEdges]], true
}

func (m editorModel) Init() tea.Cmd {
	return nil
}

func (m editorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		if m.mode == modeNodeLabel || m.mode == modeEdgeLabel {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	switch m.mode {
	case modeNodeLabel:
		return m.updateNodeLabel(key)
	case modeEdgeLabel:
		return m.updateEdgeLabel(key)
	}
	return m.updateNormal(key)
}

func (m editorModel) updateNormal(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.mode, m.source = modeNormal, ""
		m.status, m.err = "", nil
	case "tab":
		m.focus = 1 - m.focus
	case "up", "k":
		if m.cursor[m.focus] > 0 {
			m.cursor[m.focus]--
		}
	case "down", "j":
		count := m.g.NodeCount()
		if m.focus == focusEdges {
			count = m.g.EdgeCount()
		}
		if m.cursor[m.focus] < count-1 {
			m.cursor[m.focus]++
		}
	case " ":
		m.toggleSelection()
	case "a":
		n, err := m.ed.AddNode(tuiCenter)
		m.report(err, "Added node %s", n.ID)
		if err == nil {
			m.focus, m.cursor[focusNodes] = focusNodes, m.g.NodeCount()-1
		}
	case "c":
		m.connect()
	case "delete", "x":
		plan, _, err := m.ed.HandleKey(m.ctx, deletion.DeleteKey)
		if plan.IsEmpty() && err == nil {
			m.report(nil, "Nothing selected")
			break
		}
		m.report(err, "Deleted %s and %s", plural(len(plan.NodeIDs), "node"), plural(len(plan.EdgeIDs), "edge"))
	case "e", "enter":
		return m.openLabel()
	case "X":
		m.mode, m.source = modeNormal, ""
		m.report(m.ed.Clear(m.ctx), "Graph cleared")
	case "w":
		m.report(m.export(), "Exported %s", graph.ExportFilename)
	}
	return m, nil
}

func (m *editorModel) toggleSelection() {
	if m.focus == focusNodes {
		if n, ok := m.currentNode(); ok {
			m.report(m.ed.ApplyNodeChanges([]store.NodeChange{store.SelectNode(n.ID, !n.Selected)}), "")
		}
		return
	}
	if e, ok := m.currentEdge(); ok {
		m.report(m.ed.ApplyEdgeChanges([]store.EdgeChange{store.SelectEdge(e.ID, !e.Selected)}), "")
	}
}

func (m *editorModel) connect() {
	n, ok := m.currentNode()
	if !ok || m.focus != focusNodes {
		return
	}
	if m.mode != modeConnect {
		m.mode, m.source = modeConnect, n.ID
		m.status, m.err = fmt.Sprintf("Connecting from %s: pick a target and press c", n.ID), nil
		return
	}
	e, err := m.ed.Connect(connect.Connection{
		Source:       m.source,
		Target:       n.ID,
		SourceHandle: graph.HandleRightSource,
		TargetHandle: graph.HandleLeft,
	})
	m.mode, m.source = modeNormal, ""
	m.report(err, "Connected %s", describeEdge(e))
}

func (m editorModel) openLabel() (tea.Model, tea.Cmd) {
	var (
		seed string
		err  error
	)
	if m.focus == focusNodes {
		n, ok := m.currentNode()
		if !ok {
			return m, nil
		}
		seed, err = m.ed.BeginEdit(n.ID)
		m.mode, m.target = modeNodeLabel, n.ID
	} else {
		e, ok := m.currentEdge()
		if !ok {
			return m, nil
		}
		seed, err = m.ed.OpenEdgePrompt(e.ID)
		m.mode, m.target = modeEdgeLabel, e.ID
	}
	if err != nil {
		m.mode = modeNormal
		m.report(err, "")
		return m, nil
	}
	m.input.SetValue(seed)
	m.input.CursorEnd()
	m.status, m.err = "", nil
	return m, m.input.Focus()
}

func (m editorModel) updateNodeLabel(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "enter":
		m.closeInput()
		m.report(m.ed.CommitEdit(m.target), "Labelled node %s", m.target)
		return m, nil
	case "esc":
		m.closeInput()
		m.report(m.ed.CancelEdit(m.target), "Edit cancelled")
		return m, nil
	case "ctrl+c":
		m.closeInput()
		m.report(m.ed.BlurEdit(m.target), "")
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(key)
	if err := m.ed.EditInput(m.target, m.input.Value()); err != nil {
		m.closeInput()
		m.report(err, "")
	}
	return m, cmd
}

func (m editorModel) updateEdgeLabel(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "enter":
		m.closeInput()
		m.report(m.ed.CommitEdgePromptFor(m.target, m.input.Value()), "Labelled edge %s", m.target)
		return m, nil
	case "esc", "ctrl+c":
		m.closeInput()
		m.report(m.ed.CancelEdgePromptFor(m.target), "Edit cancelled")
		if key.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(key)
	return m, cmd
}

func (m *editorModel) closeInput() {
	m.mode = modeNormal
	m.input.Blur()
	m.input.Reset()
}

func (m editorModel) export() error {
	f, err := os.Create(graph.ExportFilename)
	if err != nil {
		return err
	}
	if err := m.ed.Export(m.ctx, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// =============================================================================
// View
// =============================================================================

func (m editorModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("graphedit"))
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  %s · %s · rev %d",
		plural(m.g.NodeCount(), "node"), plural(m.g.EdgeCount(), "edge"), m.rev)))
	b.WriteString("\n\n")

	b.WriteString(m.section("Nodes", focusNodes))
	for i, n := range m.g.Nodes {
		label := n.DisplayLabel()
		if m.mode == modeNodeLabel && m.target == n.ID {
			label = m.input.View()
		}
		line := fmt.Sprintf("%s %-4s %s", selMark(n.Selected), n.ID, label)
		if m.mode == modeConnect && m.source == n.ID {
			line += " " + listMarkedStyle.Render("(source)")
		}
		b.WriteString(m.row(focusNodes, i, line))
	}
	if m.g.NodeCount() == 0 {
		b.WriteString(listDimStyle.Render("    press a to add a node\n"))
	}

	b.WriteString("\n")
	b.WriteString(m.section("Edges", focusEdges))
	for i, e := range m.g.Edges {
		line := fmt.Sprintf("%s %-8s %s  %s", selMark(e.Selected), e.ID, describeEdge(e), e.Label)
		b.WriteString(m.row(focusEdges, i, line))
	}

	if m.mode == modeEdgeLabel {
		b.WriteString("\n")
		b.WriteString(StyleHighlight.Render("Edge label for " + m.target))
		b.WriteString("\n")
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case m.err != nil:
		b.WriteString(statusErrorStyle.Render(iconError + " " + errors.UserMessage(m.err)))
	case m.status != "":
		b.WriteString(StyleSuccess.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(m.help()))
	return b.String()
}

func (m editorModel) section(title string, f focus) string {
	if m.focus == f {
		return StyleHighlight.Render(title) + "\n"
	}
	return listDimStyle.Render(title) + "\n"
}

func (m editorModel) row(f focus, i int, line string) string {
	if m.focus == f && m.cursor[f] == i {
		return listSelectedStyle.Render("▸ "+line) + "\n"
	}
	return listNormalStyle.Render("  "+line) + "\n"
}

func (m editorModel) help() string {
	switch m.mode {
	case modeNodeLabel, modeEdgeLabel:
		return "⏎ save  esc cancel"
	case modeConnect:
		return "↑/↓ pick target  c connect  esc cancel"
	}
	return "↑/↓ move  tab nodes/edges  space select  a add  c connect  x delete  e label  w export  X clear  q quit"
}

func selMark(selected bool) string {
	if selected {
		return "●"
	}
	return "○"
}
