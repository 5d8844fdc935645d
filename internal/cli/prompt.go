package cli

import (
	"context"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	mcerrors "github.com/matzehuels/mindcanvas/pkg/errors"
	"github.com/matzehuels/mindcanvas/pkg/workspace"
)

// =============================================================================
// NamePromptModel - single-line name entry
// =============================================================================

// NamePromptModel asks for a mind map name.
type NamePromptModel struct {
	Title    string
	Input    textinput.Model
	Value    string
	Declined bool
}

// NewNamePromptModel creates a focused prompt.
func NewNamePromptModel(title string) NamePromptModel {
	in := textinput.New()
	in.Placeholder = "my mind map"
	in.CharLimit = 128
	in.Width = 40
	in.Focus()
	return NamePromptModel{Title: title, Input: in}
}

func (m NamePromptModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m NamePromptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyEnter:
			m.Value = strings.TrimSpace(m.Input.Value())
			m.Declined = m.Value == ""
			return m, tea.Quit
		case tea.KeyEsc, tea.KeyCtrlC:
			m.Declined = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.Input, cmd = m.Input.Update(msg)
	return m, cmd
}

func (m NamePromptModel) View() string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("\n\n")
	b.WriteString(m.Input.View())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render("⏎ confirm  esc cancel"))
	b.WriteString("\n")
	return b.String()
}

// terminalPrompter asks for names on the terminal.
var terminalPrompter = workspace.PrompterFunc(func(ctx context.Context, title string) (string, error) {
	p := tea.NewProgram(NewNamePromptModel(title), tea.WithContext(ctx), tea.WithOutput(os.Stderr))
	final, err := p.Run()
	if err != nil {
		return "", err
	}
	m := final.(NamePromptModel)
	if m.Declined {
		return "", mcerrors.New(mcerrors.ErrCodeMissingInput, "no name provided")
	}
	return m.Value, nil
})
