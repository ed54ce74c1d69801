package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/klauern/agentsync/internal/sync"
)

// DeleteAction represents the action chosen in the delete list.
type DeleteAction int

const (
	// DeleteActionNone means the user quit without deleting.
	DeleteActionNone DeleteAction = iota
	// DeleteActionDelete means the user confirmed deletion of the selected items.
	DeleteActionDelete
)

// DeleteListResult contains the result of the delete list interaction.
type DeleteListResult struct {
	Action   DeleteAction
	Selected []sync.Item
}

// IDs returns the ids of the selected items.
func (r DeleteListResult) IDs() []string {
	ids := make([]string, 0, len(r.Selected))
	for _, item := range r.Selected {
		ids = append(ids, item.ID)
	}
	return ids
}

type deleteListKeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Toggle    key.Binding
	ToggleAll key.Binding
	Confirm   key.Binding
	Filter    key.Binding
	ClearFlt  key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func defaultDeleteListKeyMap() deleteListKeyMap {
	return deleteListKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "tab"),
			key.WithHelp("space/tab", "toggle"),
		),
		ToggleAll: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "toggle all"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("d", "enter"),
			key.WithHelp("d/enter", "delete selected"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		ClearFlt: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear filter"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// DeleteListModel lets the user pick which deletion candidates to remove.
type DeleteListModel struct {
	table       table.Model
	items       []sync.Item
	filtered    []sync.Item
	selected    map[string]bool // keyed by item id
	keys        deleteListKeyMap
	result      DeleteListResult
	filter      string
	filtering   bool
	showHelp    bool
	confirmMode bool
	quitting    bool
	nameWidth   int
}

var deleteListStyles = struct {
	Title       lipgloss.Style
	Help        lipgloss.Style
	Filter      lipgloss.Style
	FilterInput lipgloss.Style
	Confirm     lipgloss.Style
	Status      lipgloss.Style
	Warning     lipgloss.Style
}{
	Title:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1")).Padding(0, 1),
	Help:        lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	Filter:      lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	FilterInput: lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
	Confirm:     lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true).Padding(1, 2),
	Status:      lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Padding(0, 1),
	Warning:     lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true),
}

const (
	deleteListCheckboxWidth = 3
	deleteListNameWidth     = 30
	deleteListTypeWidth     = 12
	deleteListIDWidth       = 12
	deleteListColumnPadding = 2
	deleteListColumnCount   = 4
)

func deleteListColumns(totalWidth int) ([]table.Column, int) {
	nameWidth := deleteListNameWidth
	base := deleteListCheckboxWidth + nameWidth + deleteListTypeWidth + deleteListIDWidth +
		deleteListColumnPadding*deleteListColumnCount
	if extra := totalWidth - base; extra > 0 {
		nameWidth += extra
	}

	return []table.Column{
		{Title: " ", Width: deleteListCheckboxWidth},
		{Title: "Name", Width: nameWidth},
		{Title: "Type", Width: deleteListTypeWidth},
		{Title: "ID", Width: deleteListIDWidth},
	}, nameWidth
}

// NewDeleteListModel creates a delete list over the given candidates.
// Every candidate starts selected; the user unmarks what should survive.
func NewDeleteListModel(items []sync.Item) DeleteListModel {
	sorted := make([]sync.Item, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Type != sorted[j].Type {
			return sorted[i].Type < sorted[j].Type
		}
		return strings.ToLower(sorted[i].Name) < strings.ToLower(sorted[j].Name)
	})

	selected := make(map[string]bool, len(sorted))
	for _, item := range sorted {
		selected[item.ID] = true
	}

	columns, nameWidth := deleteListColumns(0)
	m := DeleteListModel{
		items:     sorted,
		filtered:  sorted,
		selected:  selected,
		keys:      defaultDeleteListKeyMap(),
		nameWidth: nameWidth,
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(m.itemsToRows(sorted)),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("52")).
		Bold(false)
	t.SetStyles(s)

	m.table = t
	return m
}

func (m DeleteListModel) itemsToRows(items []sync.Item) []table.Row {
	rows := make([]table.Row, len(items))
	for i, item := range items {
		checkbox := "[ ]"
		if m.selected[item.ID] {
			checkbox = "[x]"
		}
		rows[i] = table.Row{
			checkbox,
			truncateText(item.Name, m.nameWidth),
			truncateText(string(item.Type), deleteListTypeWidth),
			truncateText(item.ID, deleteListIDWidth),
		}
	}
	return rows
}

// Init implements tea.Model.
func (m DeleteListModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m DeleteListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.table.SetHeight(max(msg.Height-10, 5))
		var columns []table.Column
		columns, m.nameWidth = deleteListColumns(msg.Width)
		m.table.SetColumns(columns)
		m.table.SetRows(m.itemsToRows(m.filtered))

	case tea.KeyMsg:
		if m.confirmMode {
			switch msg.String() {
			case "y", "Y":
				m.result = DeleteListResult{
					Action:   DeleteActionDelete,
					Selected: m.selectedItems(),
				}
				m.quitting = true
				return m, tea.Quit
			case "n", "N", "esc":
				m.confirmMode = false
			}
			return m, nil
		}

		if m.filtering {
			switch msg.String() {
			case "enter":
				m.filtering = false
			case "esc":
				m.filter = ""
				m.filtering = false
				m.applyFilter()
			case "backspace":
				if len(m.filter) > 0 {
					m.filter = m.filter[:len(m.filter)-1]
					m.applyFilter()
				}
			default:
				if len(msg.String()) == 1 {
					m.filter += msg.String()
					m.applyFilter()
				}
			}
			return m, nil
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
			return m, nil

		case key.Matches(msg, m.keys.Filter):
			m.filtering = true
			return m, nil

		case key.Matches(msg, m.keys.ClearFlt):
			m.filter = ""
			m.applyFilter()
			return m, nil

		case key.Matches(msg, m.keys.Toggle):
			if item, ok := m.cursorItem(); ok {
				m.selected[item.ID] = !m.selected[item.ID]
				m.table.SetRows(m.itemsToRows(m.filtered))
			}
			return m, nil

		case key.Matches(msg, m.keys.ToggleAll):
			count := 0
			for _, item := range m.filtered {
				if m.selected[item.ID] {
					count++
				}
			}
			selectAll := count < len(m.filtered)
			for _, item := range m.filtered {
				m.selected[item.ID] = selectAll
			}
			m.table.SetRows(m.itemsToRows(m.filtered))
			return m, nil

		case key.Matches(msg, m.keys.Confirm):
			if len(m.selectedItems()) > 0 {
				m.confirmMode = true
			}
			return m, nil
		}
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *DeleteListModel) applyFilter() {
	if m.filter == "" {
		m.filtered = m.items
	} else {
		var filtered []sync.Item
		lower := strings.ToLower(m.filter)
		for _, item := range m.items {
			if strings.Contains(strings.ToLower(item.Name), lower) ||
				strings.Contains(string(item.Type), lower) {
				filtered = append(filtered, item)
			}
		}
		m.filtered = filtered
	}
	m.table.SetRows(m.itemsToRows(m.filtered))
}

func (m DeleteListModel) cursorItem() (sync.Item, bool) {
	cursor := m.table.Cursor()
	if cursor >= 0 && cursor < len(m.filtered) {
		return m.filtered[cursor], true
	}
	return sync.Item{}, false
}

// selectedItems returns selected items in list order, including ones hidden by the filter.
func (m DeleteListModel) selectedItems() []sync.Item {
	var selected []sync.Item
	for _, item := range m.items {
		if m.selected[item.ID] {
			selected = append(selected, item)
		}
	}
	return selected
}

// View implements tea.Model.
func (m DeleteListModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(deleteListStyles.Title.Render("Deletion candidates"))
	b.WriteString("\n")
	b.WriteString(deleteListStyles.Warning.Render("These artifacts exist in the store but not locally. Unmark any you want to keep."))
	b.WriteString("\n\n")

	if m.filter != "" || m.filtering {
		filterVal := deleteListStyles.FilterInput.Render(m.filter)
		if m.filtering {
			filterVal += "█"
		}
		b.WriteString(deleteListStyles.Filter.Render("Filter: ") + filterVal + "\n\n")
	}

	b.WriteString(m.table.View())
	b.WriteString("\n")

	selectedCount := len(m.selectedItems())
	if m.confirmMode {
		b.WriteString("\n")
		msg := fmt.Sprintf("Delete %d artifact(s) from the store? This cannot be undone. (y/n)", selectedCount)
		b.WriteString(deleteListStyles.Confirm.Render(msg))
		return b.String()
	}

	status := fmt.Sprintf("%d of %d marked for deletion", selectedCount, len(m.items))
	if m.filter != "" {
		status = fmt.Sprintf("%d marked for deletion, %d of %d shown (filtered)", selectedCount, len(m.filtered), len(m.items))
	}
	b.WriteString(deleteListStyles.Status.Render(status))
	b.WriteString("\n")

	if m.showHelp {
		b.WriteString("\n")
		b.WriteString(m.renderFullHelp())
	} else {
		b.WriteString(m.renderShortHelp())
	}

	return b.String()
}

func (m DeleteListModel) renderShortHelp() string {
	bindings := []key.Binding{m.keys.Toggle, m.keys.ToggleAll, m.keys.Confirm, m.keys.Filter, m.keys.Help, m.keys.Quit}
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		parts = append(parts, b.Help().Key+" "+b.Help().Desc)
	}
	return deleteListStyles.Help.Render(strings.Join(parts, " • "))
}

func (m DeleteListModel) renderFullHelp() string {
	help := `Navigation:
  ↑/k      Move up
  ↓/j      Move down

Selection:
  Space/Tab  Toggle current artifact
  a          Toggle all shown artifacts

Actions:
  d/Enter  Confirm and delete marked artifacts

Filter:
  /        Start filtering (by name or type)
  Esc      Clear filter
  Enter    Finish filtering

General:
  ?        Toggle full help
  q        Quit without deleting`
	return deleteListStyles.Help.Render(help)
}

// Result returns the result of the user interaction.
func (m DeleteListModel) Result() DeleteListResult {
	return m.result
}

// RunDeleteList runs the interactive delete list on the terminal.
func RunDeleteList(items []sync.Item) (DeleteListResult, error) {
	if len(items) == 0 {
		return DeleteListResult{}, nil
	}

	finalModel, err := Run(NewDeleteListModel(items))
	if err != nil {
		return DeleteListResult{}, err
	}
	if m, ok := finalModel.(DeleteListModel); ok {
		return m.Result(), nil
	}
	return DeleteListResult{}, nil
}
