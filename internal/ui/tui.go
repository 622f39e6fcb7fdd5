// Package ui provides optional terminal interfaces.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nibzard/taskman/internal/report"
	"github.com/nibzard/taskman/internal/todo"
	"github.com/nibzard/taskman/internal/users"
)

// Snapshot is the data shown by the dashboard.
type Snapshot struct {
	Tasks []todo.Task
	Users []users.Entry
}

// Loader re-reads the records. It is called on start, on every tick and
// when the user presses r.
type Loader func() (Snapshot, error)

// Filter selects which tasks the dashboard lists.
type Filter string

const (
	FilterAll       Filter = ""
	FilterPending   Filter = "pending"
	FilterCompleted Filter = "completed"
	FilterOverdue   Filter = "overdue"
)

// TUIOption configures the TUI behavior.
type TUIOption func(*tuiConfig)

type tuiConfig struct {
	user     string
	source   string
	interval time.Duration
	now      func() time.Time
}

// WithUser sets the username used by the "mine" toggle.
func WithUser(name string) TUIOption {
	return func(c *tuiConfig) {
		c.user = name
	}
}

// WithSource sets the record location shown in the footer.
func WithSource(desc string) TUIOption {
	return func(c *tuiConfig) {
		c.source = desc
	}
}

// WithInterval sets the refresh interval. Zero disables ticking.
func WithInterval(d time.Duration) TUIOption {
	return func(c *tuiConfig) {
		c.interval = d
	}
}

// WithClock overrides the clock used to decide which tasks are overdue.
func WithClock(now func() time.Time) TUIOption {
	return func(c *tuiConfig) {
		c.now = now
	}
}

// RunTUI starts the read-only task dashboard.
func RunTUI(ctx context.Context, load Loader, opts ...TUIOption) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}
	model := newTUIModel(load, opts...)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

type tuiModel struct {
	cfg      tuiConfig
	load     Loader
	loadErr  error
	data     *Snapshot
	summary  report.Report
	filter   Filter
	mine     bool
	showHelp bool
	loadedAt time.Time
}

type tickMsg time.Time

func newTUIModel(load Loader, opts ...TUIOption) *tuiModel {
	c := tuiConfig{interval: 2 * time.Second, now: time.Now}
	for _, opt := range opts {
		opt(&c)
	}
	return &tuiModel{cfg: c, load: load}
}

func (m *tuiModel) Init() tea.Cmd {
	m.refresh()
	return tickCmd(m.cfg.interval)
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r", "f5":
			m.refresh()
		case "h", "?":
			m.showHelp = !m.showHelp
		case "0":
			m.filter = FilterAll
		case "1":
			m.filter = FilterPending
		case "2":
			m.filter = FilterCompleted
		case "3":
			m.filter = FilterOverdue
		case "m":
			if m.cfg.user != "" {
				m.mine = !m.mine
			}
		}
	case tickMsg:
		m.refresh()
		return m, tickCmd(m.cfg.interval)
	}
	return m, nil
}

func (m *tuiModel) View() string {
	var b strings.Builder
	writeTitle(&b)

	if m.showHelp {
		writeHelp(&b, m.cfg.user != "")
		m.writeFooter(&b)
		return b.String()
	}

	if m.loadErr != nil {
		b.WriteString("Error loading records:\n")
		b.WriteString("  " + m.loadErr.Error() + "\n\n")
		m.writeFooter(&b)
		return b.String()
	}
	if m.data == nil {
		b.WriteString("Loading...\n\n")
		m.writeFooter(&b)
		return b.String()
	}

	writeOverview(&b, m.summary)
	m.writeTasks(&b)
	m.writeFooter(&b)
	return b.String()
}

func tickCmd(d time.Duration) tea.Cmd {
	if d <= 0 {
		return nil
	}
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *tuiModel) refresh() {
	snap, err := m.load()
	if err != nil {
		m.loadErr = err
		m.data = nil
		return
	}
	m.loadErr = nil
	m.data = &snap
	m.loadedAt = m.cfg.now()
	m.summary = report.Generate(snap.Tasks, snap.Users, m.loadedAt)
}

// visible returns the indexed tasks matching the active filters.
func (m *tuiModel) visible() []int {
	if m.data == nil {
		return nil
	}
	var out []int
	for i := range m.data.Tasks {
		t := &m.data.Tasks[i]
		if m.mine && !t.OwnedBy(m.cfg.user) {
			continue
		}
		if !matches(t, m.filter, m.loadedAt) {
			continue
		}
		out = append(out, i)
	}
	return out
}

func matches(t *todo.Task, f Filter, today time.Time) bool {
	switch f {
	case FilterPending:
		return !t.Completed
	case FilterCompleted:
		return t.Completed
	case FilterOverdue:
		return t.IsOverdue(today)
	default:
		return true
	}
}

func writeTitle(b *strings.Builder) {
	title := "Taskman Dashboard"
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n\n")
}

func writeOverview(b *strings.Builder, r report.Report) {
	b.WriteString("Overview\n\n")
	fmt.Fprintf(b, "  Tasks: %d  Completed: %d  Uncompleted: %d  Overdue: %d  Users: %d\n\n",
		r.TotalTasks, r.Completed, r.Uncompleted, r.Overdue, r.TotalUsers)
}

func (m *tuiModel) writeTasks(b *strings.Builder) {
	label := "All Tasks"
	if m.filter != FilterAll {
		label = strings.ToUpper(string(m.filter[:1])) + string(m.filter[1:]) + " Tasks"
	}
	if m.mine {
		label += " for " + m.cfg.user
	}
	b.WriteString(label + "\n\n")

	idx := m.visible()
	if len(idx) == 0 {
		b.WriteString("  No tasks to display.\n\n")
		return
	}
	for _, i := range idx {
		b.WriteString(formatTask(i, &m.data.Tasks[i], m.loadedAt))
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func writeHelp(b *strings.Builder, withUser bool) {
	b.WriteString("Keyboard Shortcuts\n\n")
	b.WriteString("  q, ctrl+c    Quit\n")
	b.WriteString("  r, F5        Reload records\n")
	b.WriteString("  h, ?         Toggle this help screen\n")
	b.WriteString("  1            Show pending tasks\n")
	b.WriteString("  2            Show completed tasks\n")
	b.WriteString("  3            Show overdue tasks\n")
	if withUser {
		b.WriteString("  m            Toggle my tasks\n")
	}
	b.WriteString("  0            Clear filter\n\n")
}

func (m *tuiModel) writeFooter(b *strings.Builder) {
	if m.cfg.source != "" {
		fmt.Fprintf(b, "Records: %s\n", m.cfg.source)
	}
	if m.cfg.interval > 0 {
		fmt.Fprintf(b, "Press h for help | q to quit | Refreshing every %s\n", m.cfg.interval)
		return
	}
	b.WriteString("Press h for help | q to quit\n")
}

func formatTask(index int, t *todo.Task, today time.Time) string {
	icon := " "
	switch {
	case t.Completed:
		icon = "x"
	case t.IsOverdue(today):
		icon = "!"
	}
	line := fmt.Sprintf("  %s [%d] %s (%s, due %s)", icon, index, t.Title, t.Username, todo.FormatDate(t.DueDate))
	if t.Description == "" {
		return line
	}
	desc := t.Description
	if len(desc) > 60 {
		desc = desc[:57] + "..."
	}
	return line + "\n      " + desc
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
