package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/klauern/agentsync/internal/model"
	"github.com/klauern/agentsync/internal/sync"
)

func candidates() []sync.Item {
	return []sync.Item{
		{Name: "zeta", Type: model.TypeCommand, ID: "id-1"},
		{Name: "alpha", Type: model.TypeCommand, ID: "id-2"},
		{Name: "helper", Type: model.TypeSkill, ID: "id-3"},
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m DeleteListModel, msgs ...tea.Msg) DeleteListModel {
	for _, msg := range msgs {
		updated, _ := m.Update(msg)
		m = updated.(DeleteListModel)
	}
	return m
}

func TestNewDeleteListModel(t *testing.T) {
	m := NewDeleteListModel(candidates())

	if len(m.items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(m.items))
	}
	if m.items[0].Name != "alpha" || m.items[1].Name != "zeta" || m.items[2].Name != "helper" {
		t.Errorf("unexpected order: %v", m.items)
	}
	if got := len(m.selectedItems()); got != 3 {
		t.Errorf("expected every candidate selected by default, got %d", got)
	}
}

func TestDeleteListToggle(t *testing.T) {
	m := NewDeleteListModel(candidates())

	m = press(m, runes(" "))
	if m.selected["id-2"] {
		t.Error("expected cursor item to be unmarked")
	}
	if got := len(m.selectedItems()); got != 2 {
		t.Errorf("expected 2 selected, got %d", got)
	}

	m = press(m, runes("a"))
	if got := len(m.selectedItems()); got != 3 {
		t.Errorf("toggle all should select everything when some are unmarked, got %d", got)
	}
	m = press(m, runes("a"))
	if got := len(m.selectedItems()); got != 0 {
		t.Errorf("toggle all should clear a full selection, got %d", got)
	}
}

func TestDeleteListConfirm(t *testing.T) {
	tests := map[string]struct {
		keys       []tea.Msg
		wantAction DeleteAction
		wantIDs    []string
	}{
		"confirm all": {
			keys:       []tea.Msg{runes("d"), runes("y")},
			wantAction: DeleteActionDelete,
			wantIDs:    []string{"id-2", "id-1", "id-3"},
		},
		"confirm after unmarking": {
			keys:       []tea.Msg{runes(" "), runes("d"), runes("y")},
			wantAction: DeleteActionDelete,
			wantIDs:    []string{"id-1", "id-3"},
		},
		"decline then quit": {
			keys:       []tea.Msg{runes("d"), runes("n"), runes("q")},
			wantAction: DeleteActionNone,
		},
		"nothing selected cannot confirm": {
			keys:       []tea.Msg{runes("a"), runes("d"), runes("y"), runes("q")},
			wantAction: DeleteActionNone,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			m := press(NewDeleteListModel(candidates()), tt.keys...)
			res := m.Result()
			if res.Action != tt.wantAction {
				t.Fatalf("action = %v, want %v", res.Action, tt.wantAction)
			}
			if tt.wantAction != DeleteActionDelete {
				return
			}
			ids := res.IDs()
			if strings.Join(ids, ",") != strings.Join(tt.wantIDs, ",") {
				t.Errorf("ids = %v, want %v", ids, tt.wantIDs)
			}
		})
	}
}

func TestDeleteListFilter(t *testing.T) {
	m := NewDeleteListModel(candidates())
	m = press(m, runes("/"), runes("h"), runes("e"), runes("l"))

	if len(m.filtered) != 1 || m.filtered[0].Name != "helper" {
		t.Fatalf("unexpected filter result: %v", m.filtered)
	}
	if !strings.Contains(m.View(), "1 of 3 shown (filtered)") {
		t.Errorf("view missing filter status:\n%s", m.View())
	}

	m = press(m, tea.KeyMsg{Type: tea.KeyBackspace})
	if m.filter != "he" {
		t.Errorf("filter = %q, want %q", m.filter, "he")
	}

	m = press(m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.filter != "" || m.filtering || len(m.filtered) != 3 {
		t.Errorf("esc should clear the filter, got %q (%d shown)", m.filter, len(m.filtered))
	}
}

func TestDeleteListView(t *testing.T) {
	m := NewDeleteListModel(candidates())
	view := m.View()
	for _, want := range []string{"Deletion candidates", "alpha", "helper", "3 of 3 marked for deletion"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	m = press(m, runes("d"))
	if !strings.Contains(m.View(), "Delete 3 artifact(s) from the store?") {
		t.Errorf("confirm view missing prompt:\n%s", m.View())
	}

	m = press(m, runes("y"))
	if m.View() != "" {
		t.Error("view should be empty after quitting")
	}
}

func TestDeleteListWindowResize(t *testing.T) {
	m := NewDeleteListModel(candidates())
	m = press(m, tea.WindowSizeMsg{Width: 120, Height: 40})
	if m.nameWidth <= deleteListNameWidth {
		t.Errorf("expected name column to grow, got %d", m.nameWidth)
	}
}
