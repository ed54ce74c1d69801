package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type confirmKeyMap struct {
	Yes  key.Binding
	No   key.Binding
	Quit key.Binding
}

func defaultConfirmKeyMap() confirmKeyMap {
	return confirmKeyMap{
		Yes: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "yes"),
		),
		No: key.NewBinding(
			key.WithKeys("n", "N", "enter", "esc"),
			key.WithHelp("n/enter", "no"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

var confirmStyles = struct {
	Question lipgloss.Style
	Danger   lipgloss.Style
	Help     lipgloss.Style
}{
	Question: lipgloss.NewStyle().Bold(true),
	Danger:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1")),
	Help:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
}

// ConfirmModel is a yes/no question. Anything but an explicit yes answers no.
type ConfirmModel struct {
	question  string
	dangerous bool
	keys      confirmKeyMap
	answered  bool
	confirmed bool
}

// NewConfirmModel creates a confirmation for question. Dangerous questions
// are rendered in red.
func NewConfirmModel(question string, dangerous bool) ConfirmModel {
	return ConfirmModel{
		question:  question,
		dangerous: dangerous,
		keys:      defaultConfirmKeyMap(),
	}
}

// Init implements tea.Model.
func (m ConfirmModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Yes):
		m.answered = true
		m.confirmed = true
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.No), key.Matches(keyMsg, m.keys.Quit):
		m.answered = true
		m.confirmed = false
		return m, tea.Quit
	}
	return m, nil
}

// View implements tea.Model.
func (m ConfirmModel) View() string {
	if m.answered {
		answer := "no"
		if m.confirmed {
			answer = "yes"
		}
		return fmt.Sprintf("%s %s\n", m.question, answer)
	}

	style := confirmStyles.Question
	if m.dangerous {
		style = confirmStyles.Danger
	}

	help := []string{
		m.keys.Yes.Help().Key + " " + m.keys.Yes.Help().Desc,
		m.keys.No.Help().Key + " " + m.keys.No.Help().Desc,
	}
	return style.Render(m.question+" [y/N]") + "\n" + confirmStyles.Help.Render(strings.Join(help, " • ")) + "\n"
}

// Confirmed reports whether the user answered yes.
func (m ConfirmModel) Confirmed() bool {
	return m.confirmed
}

// RunConfirm asks question on the given terminal streams.
func RunConfirm(question string, dangerous bool, in io.Reader, out io.Writer) (bool, error) {
	finalModel, err := tea.NewProgram(
		NewConfirmModel(question, dangerous),
		tea.WithInput(in),
		tea.WithOutput(out),
	).Run()
	if err != nil {
		return false, err
	}
	if m, ok := finalModel.(ConfirmModel); ok {
		return m.Confirmed(), nil
	}
	return false, nil
}
