package cli

import (
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// ConfirmModel - Interactive run confirmation
// =============================================================================

// ConfirmModel asks a yes/no question before labels are allocated.
// Anything but an explicit yes declines.
type ConfirmModel struct {
	Title     string
	Details   []string
	Confirmed bool
	Done      bool
}

// NewConfirmModel creates a confirmation prompt.
func NewConfirmModel(title string, details ...string) ConfirmModel {
	return ConfirmModel{Title: title, Details: details}
}

func (m ConfirmModel) Init() tea.Cmd {
	return nil
}

func (m ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "y", "Y":
			m.Confirmed = true
			m.Done = true
			return m, tea.Quit
		case "n", "N", "q", "esc", "ctrl+c", "enter":
			m.Done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m ConfirmModel) View() string {
	if m.Done {
		return ""
	}
	var b strings.Builder
	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("\n")
	for _, d := range m.Details {
		b.WriteString("  " + StyleDim.Render(d) + "\n")
	}
	b.WriteString("\n")
	b.WriteString(StyleValue.Render("Continue? ") + StyleDim.Render("[y/N]"))
	b.WriteString("\n")
	return b.String()
}

// confirm runs the prompt on in and out.
func confirm(in io.Reader, out io.Writer, title string, details ...string) (bool, error) {
	p := tea.NewProgram(NewConfirmModel(title, details...), tea.WithInput(in), tea.WithOutput(out))
	finalModel, err := p.Run()
	if err != nil {
		return false, err
	}
	fm, ok := finalModel.(ConfirmModel)
	return ok && fm.Confirmed, nil
}
