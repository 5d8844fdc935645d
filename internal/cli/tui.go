package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/mindcanvas/pkg/editor"
	"github.com/matzehuels/mindcanvas/pkg/export"
	"github.com/matzehuels/mindcanvas/pkg/keys"
	"github.com/matzehuels/mindcanvas/pkg/mindmap"
	"github.com/matzehuels/mindcanvas/pkg/notify"
	"github.com/matzehuels/mindcanvas/pkg/workspace"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listErrorStyle    = lipgloss.NewStyle().Foreground(colorRed)
)

// =============================================================================
// EditorModel - Interactive node editing
// =============================================================================

// EditorModel is the bubbletea model of the terminal editor. The cursor
// row is the selected node, so the copy, paste, delete and duplicate
// shortcuts act on it.
type EditorModel struct {
	ctx    context.Context
	ws     *workspace.Workspace
	events *notify.Recorder

	Nodes  []*mindmap.Node
	Cursor int
	Height int
	Offset int

	// Editing is true while the label input has focus.
	Editing bool
	Input   textinput.Model

	// Dirty is true when the document changed since the last save.
	Dirty bool
}

// NewEditorModel creates a model over the open document of ws. events
// must be the notifier ws reports to.
func NewEditorModel(ctx context.Context, ws *workspace.Workspace, events *notify.Recorder) EditorModel {
	in := textinput.New()
	in.CharLimit = 256
	in.Width = 50

	m := EditorModel{
		ctx:    ctx,
		ws:     ws,
		events: events,
		Height: 15,
		Input:  in,
	}
	m.refresh()
	return m
}

// refresh reloads the node list and selects the node under the cursor.
func (m *EditorModel) refresh() {
	m.Nodes = m.ws.Current().Nodes
	if m.Cursor >= len(m.Nodes) {
		m.Cursor = len(m.Nodes) - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
	if len(m.Nodes) > 0 {
		m.ws.Editor().SelectNode(m.Nodes[m.Cursor].ID)
	}
}

// current returns the node under the cursor, if any.
func (m EditorModel) current() *mindmap.Node {
	if m.Cursor < len(m.Nodes) {
		return m.Nodes[m.Cursor]
	}
	return nil
}

// focus reports which control owns the keyboard.
func (m EditorModel) focus() keys.Focus {
	if m.Editing {
		return keys.FocusTextInput
	}
	return keys.FocusCanvas
}

func (m EditorModel) Init() tea.Cmd {
	return nil
}

func (m EditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.Editing {
			return m.updateInput(msg)
		}

		res := m.ws.Keys().HandleKey(m.ctx, keys.FromKeyMsg(msg), m.focus())
		if res.Handled || res.PreventDefault {
			if res.Handled && res.Action != keys.ActionCopy {
				m.Dirty = true
			}
			m.refresh()
			return m, nil
		}

		switch msg.String() {
		case "q", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				m.refresh()
			}
		case "down", "j":
			if m.Cursor < len(m.Nodes)-1 {
				m.Cursor++
				m.refresh()
			}
		case "a":
			if _, err := m.ws.Editor().AddNode(m.ctx, mindmap.TypeTopic, editor.Overrides{}); err == nil {
				m.Dirty = true
				m.Cursor = len(m.ws.Current().Nodes) - 1
				m.refresh()
			}
		case "e", "enter":
			if n := m.current(); n != nil {
				m.Editing = true
				m.Input.SetValue(n.Data.Label)
				m.Input.CursorEnd()
				return m, m.Input.Focus()
			}
		case "s":
			if err := m.ws.SaveCurrent(m.ctx); err == nil {
				m.Dirty = false
			}
		}

	case tea.WindowSizeMsg:
		m.Height = msg.Height - 8
		if m.Height < 5 {
			m.Height = 5
		}
		m.refresh()
	}
	return m, nil
}

// updateInput handles keys while the label input has focus. Editor
// shortcuts never fire here.
func (m EditorModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		if n := m.current(); n != nil {
			patch := mindmap.Patch{"label": m.Input.Value()}
			if err := m.ws.Editor().UpdateNodeData(m.ctx, n.ID, patch); err == nil {
				m.Dirty = true
			}
		}
		m.Editing = false
		m.Input.Blur()
		m.refresh()
		return m, nil
	case tea.KeyEsc:
		m.Editing = false
		m.Input.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.Input, cmd = m.Input.Update(msg)
	return m, cmd
}

func (m EditorModel) View() string {
	var b strings.Builder

	name := m.ws.Current().Name
	if m.Dirty {
		name += " *"
	}
	b.WriteString(StyleTitle.Render(name))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ select  e edit  a add  ctrl+c copy  ctrl+v paste  ctrl+d duplicate  del delete  s save  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Nodes) {
		end = len(m.Nodes)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		n := m.Nodes[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		label := strings.ReplaceAll(export.Label(n), "\n", " · ")
		rows = append(rows, []string{cursor, n.ID, n.Data.NodeType, label})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "ID", "Type", "Label").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if m.Offset+row == m.Cursor {
				return listSelectedStyle
			}
			if col == 2 {
				return listDimStyle
			}
			return listNormalStyle
		})

	b.WriteString(t.Render())
	b.WriteString("\n")

	if m.Editing {
		b.WriteString("\n")
		b.WriteString(m.Input.View())
		b.WriteString("\n")
		b.WriteString(listDimStyle.Render("⏎ apply  esc cancel"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.statusLine())
	return b.String()
}

// statusLine renders the most recent event.
func (m EditorModel) statusLine() string {
	e, ok := m.events.Last()
	if !ok {
		return listDimStyle.Render(m.position())
	}
	if e.IsError() {
		return listErrorStyle.Render(iconError + " " + e.Description)
	}
	return StyleSuccess.Render(iconSuccess+" "+e.Description) + listDimStyle.Render(m.position())
}

// position renders the cursor row as "[row/total]".
func (m EditorModel) position() string {
	if len(m.Nodes) == 0 {
		return "  [0/0]"
	}
	return fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Nodes))
}
