package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nibzard/taskman/internal/todo"
	"github.com/nibzard/taskman/internal/users"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := todo.ParseDate(s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func fixture(t *testing.T) Snapshot {
	t.Helper()
	assigned := mustDate(t, "2024-01-01")
	late := todo.New("alice", "Late report", "was due last year", mustDate(t, "2023-06-01"), assigned)
	open := todo.New("bob", "Plan sprint", "", mustDate(t, "2030-01-01"), assigned)
	done := todo.New("alice", "Ship release", "tagged", mustDate(t, "2024-02-01"), assigned)
	done.Completed = true
	return Snapshot{
		Tasks: []todo.Task{late, open, done},
		Users: []users.Entry{{Username: "admin"}, {Username: "alice"}, {Username: "bob"}},
	}
}

func newTestModel(t *testing.T, snap Snapshot, opts ...TUIOption) *tuiModel {
	t.Helper()
	today := mustDate(t, "2024-06-15")
	opts = append([]TUIOption{WithInterval(0), WithClock(func() time.Time { return today })}, opts...)
	m := newTUIModel(func() (Snapshot, error) { return snap, nil }, opts...)
	if cmd := m.Init(); cmd != nil {
		t.Fatal("Init should not tick with a zero interval")
	}
	return m
}

func press(m *tuiModel, key string) tea.Cmd {
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)})
	return cmd
}

func TestViewOverview(t *testing.T) {
	m := newTestModel(t, fixture(t), WithSource("tasks.txt"))
	view := m.View()

	for _, want := range []string{
		"Taskman Dashboard",
		"Tasks: 3  Completed: 1  Uncompleted: 2  Overdue: 1  Users: 3",
		"All Tasks",
		"! [0] Late report (alice, due 2023-06-01)",
		"  [1] Plan sprint (bob, due 2030-01-01)",
		"x [2] Ship release (alice, due 2024-02-01)",
		"Records: tasks.txt",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestFilters(t *testing.T) {
	tests := []struct {
		key   string
		label string
		want  []string
		skip  []string
	}{
		{"1", "Pending Tasks", []string{"Late report", "Plan sprint"}, []string{"Ship release"}},
		{"2", "Completed Tasks", []string{"Ship release"}, []string{"Late report", "Plan sprint"}},
		{"3", "Overdue Tasks", []string{"Late report"}, []string{"Plan sprint", "Ship release"}},
		{"0", "All Tasks", []string{"Late report", "Plan sprint", "Ship release"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			m := newTestModel(t, fixture(t))
			press(m, "2")
			press(m, tt.key)
			view := m.View()
			if !strings.Contains(view, tt.label) {
				t.Errorf("missing label %q:\n%s", tt.label, view)
			}
			for _, w := range tt.want {
				if !strings.Contains(view, w) {
					t.Errorf("missing %q", w)
				}
			}
			for _, s := range tt.skip {
				if strings.Contains(view, s) {
					t.Errorf("unexpected %q", s)
				}
			}
		})
	}
}

func TestMineToggle(t *testing.T) {
	m := newTestModel(t, fixture(t), WithUser("bob"))
	press(m, "m")
	view := m.View()
	if !strings.Contains(view, "All Tasks for bob") || strings.Contains(view, "Late report") {
		t.Errorf("mine filter:\n%s", view)
	}

	press(m, "m")
	if !strings.Contains(m.View(), "Late report") {
		t.Error("second press should clear the mine filter")
	}

	anon := newTestModel(t, fixture(t))
	press(anon, "m")
	if anon.mine {
		t.Error("mine toggle needs a user")
	}
}

func TestEmptyFilter(t *testing.T) {
	m := newTestModel(t, Snapshot{Users: []users.Entry{users.Bootstrap()}})
	press(m, "3")
	if !strings.Contains(m.View(), "No tasks to display.") {
		t.Errorf("empty view:\n%s", m.View())
	}
}

func TestReload(t *testing.T) {
	snap := fixture(t)
	calls := 0
	var loadErr error
	m := newTUIModel(func() (Snapshot, error) {
		calls++
		return snap, loadErr
	}, WithInterval(0))
	m.Init()

	snap.Tasks = snap.Tasks[:1]
	press(m, "r")
	if calls != 2 {
		t.Fatalf("loader calls: got %d, want 2", calls)
	}
	if len(m.visible()) != 1 {
		t.Errorf("visible after reload: got %d, want 1", len(m.visible()))
	}

	loadErr = errors.New("disk on fire")
	m.Update(tickMsg(time.Now()))
	view := m.View()
	if !strings.Contains(view, "Error loading records:") || !strings.Contains(view, "disk on fire") {
		t.Errorf("error view:\n%s", view)
	}
}

func TestHelpAndQuit(t *testing.T) {
	m := newTestModel(t, fixture(t), WithUser("alice"))
	press(m, "h")
	view := m.View()
	if !strings.Contains(view, "Keyboard Shortcuts") || !strings.Contains(view, "Toggle my tasks") {
		t.Errorf("help view:\n%s", view)
	}
	press(m, "h")
	if strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Error("help should toggle off")
	}

	cmd := press(m, "q")
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestIsTTY(t *testing.T) {
	if IsTTY(&bytes.Buffer{}) {
		t.Error("buffer is not a TTY")
	}
}
