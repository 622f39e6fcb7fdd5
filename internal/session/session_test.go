package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nibzard/taskman/internal/console"
	"github.com/nibzard/taskman/internal/logging"
	"github.com/nibzard/taskman/internal/store"
	"github.com/nibzard/taskman/internal/todo"
	"github.com/nibzard/taskman/internal/users"
)

var today = time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)

type captureSink struct {
	events []logging.Event
}

func (c *captureSink) Record(e logging.Event) error {
	c.events = append(c.events, e)
	return nil
}

func (c *captureSink) kinds() []string {
	var out []string
	for _, e := range c.events {
		out = append(out, e.Kind)
	}
	return out
}

type harness struct {
	ctl    *Controller
	out    *strings.Builder
	mem    *store.Memory
	tasks  *store.Tasks
	users  *store.Users
	events *captureSink
	dir    string
}

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := todo.ParseDate(s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

// fixture has alice owning tasks 0 and 2 (2 is completed) and bob owning 1.
func fixture(t *testing.T) *store.Memory {
	t.Helper()
	done := todo.New("alice", "Ship", "release", date(t, "2024-01-10"), date(t, "2024-01-01"))
	done.Completed = true
	return &store.Memory{
		Users: []users.Entry{
			{Username: "admin", Password: "password"},
			{Username: "alice", Password: "a"},
			{Username: "bob", Password: "b"},
		},
		Tasks: []todo.Task{
			todo.New("alice", "Write", "draft notes", date(t, "2024-07-01"), date(t, "2024-06-01")),
			todo.New("bob", "Review", "check notes", date(t, "2024-07-02"), date(t, "2024-06-01")),
			done,
		},
	}
}

func newHarness(t *testing.T, mem *store.Memory, input string) *harness {
	t.Helper()
	u, err := store.OpenUsers(mem, []string{"admin"})
	if err != nil {
		t.Fatalf("OpenUsers failed: %v", err)
	}
	tasks, err := store.OpenTasks(mem)
	if err != nil {
		t.Fatalf("OpenTasks failed: %v", err)
	}
	mem.UserSaves, mem.TaskSaves = 0, 0

	out := &strings.Builder{}
	dir := t.TempDir()
	events := &captureSink{}
	ctl, err := New(Options{
		Users:    u,
		Tasks:    tasks,
		Prompter: console.NewPrompter(strings.NewReader(input), out),
		Reports: ReportPaths{
			TaskOverview: filepath.Join(dir, "task_overview.txt"),
			UserOverview: filepath.Join(dir, "user_overview.txt"),
		},
		Events: events,
		Now:    func() time.Time { return today },
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return &harness{ctl: ctl, out: out, mem: mem, tasks: tasks, users: u, events: events, dir: dir}
}

func (h *harness) run(t *testing.T) {
	t.Helper()
	if err := h.ctl.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v\noutput:\n%s", err, h.out.String())
	}
}

func (h *harness) contains(t *testing.T, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(h.out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, h.out.String())
		}
	}
}

func (h *harness) lacks(t *testing.T, unwanted ...string) {
	t.Helper()
	for _, u := range unwanted {
		if strings.Contains(h.out.String(), u) {
			t.Errorf("output should not contain %q:\n%s", u, h.out.String())
		}
	}
}

func TestNewRequiresStores(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Fatal("expected error without stores")
	}
}

func TestAuthenticate(t *testing.T) {
	h := newHarness(t, fixture(t), "ghost\nx\nalice\nwrong\nalice\na\n")

	entry, err := h.ctl.Authenticate(context.Background())
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if entry.Username != "alice" || h.ctl.User().Username != "alice" {
		t.Errorf("user: got %+v", entry)
	}
	if h.ctl.State() != MenuLoop {
		t.Errorf("state: got %s, want %s", h.ctl.State(), MenuLoop)
	}
	h.contains(t, "\nUser does not exist\n", "\nWrong password\n", "\nLogin Successful!\n")
	if got := strings.Count(h.out.String(), "LOGIN\n"); got != 3 {
		t.Errorf("login prompts: got %d, want 3", got)
	}

	want := []string{logging.EventLoginFailed, logging.EventLoginFailed, logging.EventLogin}
	if strings.Join(h.events.kinds(), ",") != strings.Join(want, ",") {
		t.Errorf("events: got %v, want %v", h.events.kinds(), want)
	}
}

func TestRunExit(t *testing.T) {
	h := newHarness(t, fixture(t), "alice\na\nE\n")
	h.run(t)

	if h.ctl.State() != Exited {
		t.Errorf("state: got %s, want %s", h.ctl.State(), Exited)
	}
	h.contains(t, "You are exiting the program. Goodbye.")
}

func TestRunInputClosed(t *testing.T) {
	h := newHarness(t, fixture(t), "alice\na\nva\n")
	err := h.ctl.Run(context.Background())
	if !errors.Is(err, console.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if h.ctl.State() != MenuLoop {
		t.Errorf("state: got %s", h.ctl.State())
	}
}

func TestRunCanceled(t *testing.T) {
	h := newHarness(t, fixture(t), "alice\na\ne\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := h.ctl.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestMenuText(t *testing.T) {
	tests := []struct {
		user  string
		input string
		admin bool
	}{
		{"admin", "admin\npassword\n", true},
		{"alice", "alice\na\n", false},
	}
	for _, tt := range tests {
		t.Run(tt.user, func(t *testing.T) {
			h := newHarness(t, fixture(t), tt.input)
			if _, err := h.ctl.Authenticate(context.Background()); err != nil {
				t.Fatal(err)
			}
			text := h.ctl.MenuText()
			if !strings.HasPrefix(text, "Please select one of the following options below:\n") {
				t.Errorf("menu header: %q", text)
			}
			if !strings.HasSuffix(text, "        e - Exit\n        : ") {
				t.Errorf("menu footer: %q", text)
			}
			if got := strings.Contains(text, "gr - Generate reports"); got != tt.admin {
				t.Errorf("gr listed = %v, want %v", got, tt.admin)
			}
			if got := strings.Contains(text, "ds - Display statistics"); got != tt.admin {
				t.Errorf("ds listed = %v, want %v", got, tt.admin)
			}
		})
	}
}

func TestNonAdminReportCommandsAreInvalid(t *testing.T) {
	h := newHarness(t, fixture(t), "alice\na\ngr\nds\nxyz\ne\n")
	h.run(t)

	if got := strings.Count(h.out.String(), "Invalid choice. Please Try again"); got != 3 {
		t.Errorf("invalid choice messages: got %d, want 3", got)
	}
	if _, err := os.Stat(filepath.Join(h.dir, "task_overview.txt")); !os.IsNotExist(err) {
		t.Errorf("report should not be written for a regular user, stat err = %v", err)
	}
}

func TestViewAll(t *testing.T) {
	h := newHarness(t, fixture(t), "alice\na\nVA\ne\n")
	h.run(t)
	h.contains(t, "Task Number: \t 0\n", "Task Number: \t 1\n", "Task Number: \t 2\n", "Assigned to: \t bob\n")

	empty := newHarness(t, &store.Memory{Users: []users.Entry{{Username: "alice", Password: "a"}}, Tasks: []todo.Task{}}, "alice\na\nva\ne\n")
	empty.run(t)
	empty.contains(t, "There are no tasks to display.")
}

func TestViewMineNoTasks(t *testing.T) {
	mem := fixture(t)
	mem.Users = append(mem.Users, users.Entry{Username: "carol", Password: "c"})
	h := newHarness(t, mem, "carol\nc\nvm\ne\n")
	h.run(t)

	h.contains(t, "You have no tasks assigned to you.")
	h.lacks(t, "Select a task number", "Task Number:")
	if mem.TaskSaves != 0 {
		t.Errorf("task saves: got %d, want 0", mem.TaskSaves)
	}
}

func TestViewMineListsOnlyOwnTasks(t *testing.T) {
	h := newHarness(t, fixture(t), "alice\na\nvm\n-1\ne\n")
	h.run(t)

	h.contains(t, "Task Number: \t 0\n", "Task Number: \t 2\n")
	h.lacks(t, "Task Number: \t 1\n")
}

func TestViewMineAbandon(t *testing.T) {
	mem := fixture(t)
	before := todo.FormatRecord(mem.Tasks)
	h := newHarness(t, mem, "alice\na\nvm\n-1\ne\n")
	h.run(t)

	h.lacks(t, "Would you like")
	if mem.TaskSaves != 0 {
		t.Errorf("task saves: got %d, want 0", mem.TaskSaves)
	}
	if string(todo.FormatRecord(h.tasks.All())) != string(before) {
		t.Error("tasks changed after abandoning the flow")
	}
}

func TestViewMineSelectionReprompts(t *testing.T) {
	h := newHarness(t, fixture(t), "alice\na\nvm\nabc\n99\n-5\n1\n-1\ne\n")
	h.run(t)

	if got := strings.Count(h.out.String(), "This is not a valid task number."); got != 2 {
		t.Errorf("invalid index messages: got %d, want 2", got)
	}
	h.contains(t, "This task is not assigned to you.", console.InvalidInt)
	if got := strings.Count(h.out.String(), "Select a task number to update, or input -1 to return to menu: "); got != 5 {
		t.Errorf("selection prompts: got %d, want 5", got)
	}
}

func TestViewMineLockedTask(t *testing.T) {
	mem := fixture(t)
	h := newHarness(t, mem, "alice\na\nvm\n2\ne\n")
	h.run(t)

	h.contains(t, "This task is complete and cannot be edited.")
	h.lacks(t, "Would you like")
	if mem.TaskSaves != 0 {
		t.Errorf("task saves: got %d, want 0", mem.TaskSaves)
	}
}

func TestViewMineMarkComplete(t *testing.T) {
	mem := fixture(t)
	h := newHarness(t, mem, "alice\na\nvm\n0\nmaybe\nY\ne\n")
	h.run(t)

	h.contains(t, "Task successfully marked as complete.", console.InvalidYesNo)
	h.lacks(t, "update the username")
	task, _ := h.tasks.At(0)
	if !task.Completed {
		t.Error("task 0 should be completed")
	}
	if mem.TaskSaves != 1 || !mem.Tasks[0].Completed {
		t.Errorf("persisted: saves=%d completed=%v", mem.TaskSaves, mem.Tasks[0].Completed)
	}
}

func TestViewMineUnknownReassignmentAborts(t *testing.T) {
	mem := fixture(t)
	before := todo.FormatRecord(mem.Tasks)
	h := newHarness(t, mem, "alice\na\nvm\n0\nn\ny\nghost\ne\n")
	h.run(t)

	h.contains(t, "Username not recognised. Exiting.")
	h.lacks(t, "update the due date", "successfully updated")
	if mem.TaskSaves != 0 {
		t.Errorf("task saves: got %d, want 0", mem.TaskSaves)
	}
	if string(todo.FormatRecord(mem.Tasks)) != string(before) {
		t.Error("tasks changed after an aborted reassignment")
	}
}

func TestViewMineReassignAndReschedule(t *testing.T) {
	mem := fixture(t)
	h := newHarness(t, mem, "alice\na\nvm\n0\nn\ny\nbob\ny\n2024-02-30\n2030-05-05\ne\n")
	h.run(t)

	h.contains(t, "Task username successfully updated.", "Task due date successfully updated.", console.InvalidDate)
	if mem.TaskSaves != 2 {
		t.Errorf("task saves: got %d, want 2", mem.TaskSaves)
	}
	got := mem.Tasks[0]
	if got.Username != "bob" || todo.FormatDate(got.DueDate) != "2030-05-05" || got.Completed {
		t.Errorf("task 0: got %+v", got)
	}
	if todo.FormatDate(got.AssignedDate) != "2024-06-01" {
		t.Errorf("assigned date changed: %s", todo.FormatDate(got.AssignedDate))
	}
}

func TestViewMineDeclineEverything(t *testing.T) {
	mem := fixture(t)
	h := newHarness(t, mem, "alice\na\nvm\n0\nn\nn\nn\ne\n")
	h.run(t)

	if mem.TaskSaves != 0 {
		t.Errorf("task saves: got %d, want 0", mem.TaskSaves)
	}
}

func TestRegister(t *testing.T) {
	t.Run("adds user", func(t *testing.T) {
		mem := fixture(t)
		h := newHarness(t, mem, "alice\na\nr\ncarol\npw\npw\ne\n")
		h.run(t)

		h.contains(t, "New user added")
		if !h.users.Exists("carol") || mem.UserSaves != 1 {
			t.Errorf("carol not stored: saves=%d", mem.UserSaves)
		}
		entry, _ := h.users.Lookup("carol")
		if entry.IsAdmin() {
			t.Error("new users should not be admins")
		}
	})

	t.Run("duplicate asks no password", func(t *testing.T) {
		mem := fixture(t)
		h := newHarness(t, mem, "alice\na\nr\nbob\ne\n")
		h.run(t)

		h.contains(t, "Username already exists. Please choose a different username.")
		h.lacks(t, "New Password: ")
		if mem.UserSaves != 0 {
			t.Errorf("user saves: got %d, want 0", mem.UserSaves)
		}
	})

	t.Run("password mismatch", func(t *testing.T) {
		mem := fixture(t)
		h := newHarness(t, mem, "alice\na\nr\ndave\none\ntwo\ne\n")
		h.run(t)

		h.contains(t, "Passwords do not match")
		if h.users.Exists("dave") || mem.UserSaves != 0 {
			t.Error("dave should not be stored")
		}
	})

	t.Run("unencodable username", func(t *testing.T) {
		mem := fixture(t)
		h := newHarness(t, mem, "alice\na\nr\nda;ve\npw\npw\ne\n")
		h.run(t)

		h.contains(t, "invalid input")
		if mem.UserSaves != 0 {
			t.Errorf("user saves: got %d, want 0", mem.UserSaves)
		}
	})
}

func TestAddTask(t *testing.T) {
	t.Run("unknown assignee", func(t *testing.T) {
		mem := fixture(t)
		h := newHarness(t, mem, "alice\na\na\nghost\ne\n")
		h.run(t)

		h.contains(t, "User does not exist. Please enter a valid username")
		h.lacks(t, "Title of Task")
		if mem.TaskSaves != 0 {
			t.Errorf("task saves: got %d, want 0", mem.TaskSaves)
		}
	})

	t.Run("appends task", func(t *testing.T) {
		mem := fixture(t)
		h := newHarness(t, mem, "alice\na\na\nbob\nPlan\nQ3 plan\n15/07/2024\n2024-07-15\ne\n")
		h.run(t)

		h.contains(t, "Task successfully added.", console.InvalidDate)
		if h.tasks.Len() != 4 || mem.TaskSaves != 1 {
			t.Fatalf("tasks: len=%d saves=%d", h.tasks.Len(), mem.TaskSaves)
		}
		got := todo.FormatLine(mem.Tasks[3])
		if got != "bob;Plan;Q3 plan;2024-07-15;2024-06-15;No" {
			t.Errorf("stored line: got %q", got)
		}
	})

	t.Run("rejects separator in title", func(t *testing.T) {
		mem := fixture(t)
		h := newHarness(t, mem, "alice\na\na\nbob\nPl;an\nx\n2024-07-15\ne\n")
		h.run(t)

		h.contains(t, "invalid input")
		if mem.TaskSaves != 0 || h.tasks.Len() != 3 {
			t.Errorf("task should not be stored: saves=%d len=%d", mem.TaskSaves, h.tasks.Len())
		}
		if h.ctl.State() != Exited {
			t.Error("session should continue after invalid input")
		}
	})
}

func TestReports(t *testing.T) {
	h := newHarness(t, fixture(t), "admin\npassword\ngr\nds\ne\n")
	h.run(t)

	h.contains(t, "Reports generated.", "TASK OVERVIEW:\n--------------\n", "USER OVERVIEW:\n--------------\n")

	data, err := os.ReadFile(filepath.Join(h.dir, "task_overview.txt"))
	if err != nil {
		t.Fatalf("task overview not written: %v", err)
	}
	// Task 2 is completed, tasks 0 and 1 are due after today.
	if !strings.HasPrefix(string(data), "Total Number of Tasks: \t\t\t\t3\nTotal Number of Completed Tasks: \t1\n") {
		t.Errorf("task overview: got %q", data)
	}
	user, err := os.ReadFile(filepath.Join(h.dir, "user_overview.txt"))
	if err != nil {
		t.Fatalf("user overview not written: %v", err)
	}
	if !strings.HasPrefix(string(user), "Total Number of Users: \t3\n") {
		t.Errorf("user overview: got %q", user)
	}

	var reports int
	for _, k := range h.events.kinds() {
		if k == logging.EventReports {
			reports++
		}
	}
	if reports != 2 {
		t.Errorf("report events: got %d, want 2", reports)
	}
}

func TestSaveFailureEndsSession(t *testing.T) {
	mem := fixture(t)
	h := newHarness(t, mem, "alice\na\nvm\n0\ny\ne\n")
	mem.SaveErr = errors.New("disk full")

	err := h.ctl.Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("expected save error, got %v", err)
	}
	task, _ := h.tasks.At(0)
	if task.Completed {
		t.Error("in-memory task should be unchanged when the save fails")
	}
}

func TestEvents(t *testing.T) {
	h := newHarness(t, fixture(t), "alice\na\nvm\n0\ny\ne\n")
	h.run(t)

	want := []string{logging.EventLogin, logging.EventTaskCompleted, logging.EventExit}
	if strings.Join(h.events.kinds(), ",") != strings.Join(want, ",") {
		t.Fatalf("events: got %v, want %v", h.events.kinds(), want)
	}
	completed := h.events.events[1]
	if completed.User != "alice" || completed.Task == nil || *completed.Task != 0 {
		t.Errorf("completed event: got %+v", completed)
	}
	if !completed.Time.Equal(today) {
		t.Errorf("event time: got %v", completed.Time)
	}
}
