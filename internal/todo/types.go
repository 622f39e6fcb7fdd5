package todo

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar date format used in records and prompts.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// FormatDate formats a calendar date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DateOf returns the calendar date of t in t's location, stored at UTC midnight
// so it compares equal to dates returned by ParseDate.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Task represents a single unit of work assigned to one user.
type Task struct {
	Username     string    `json:"username" yaml:"username"`
	Title        string    `json:"title" yaml:"title"`
	Description  string    `json:"description" yaml:"description"`
	DueDate      time.Time `json:"due_date" yaml:"due_date"`
	AssignedDate time.Time `json:"assigned_date" yaml:"assigned_date"`
	Completed    bool      `json:"completed" yaml:"completed"`
}

// New returns an uncompleted task assigned on the given day.
func New(username, title, description string, due, assigned time.Time) Task {
	return Task{
		Username:     username,
		Title:        title,
		Description:  description,
		DueDate:      DateOf(due),
		AssignedDate: DateOf(assigned),
	}
}

// IsOverdue reports whether the task is not completed and due strictly before today.
func (t *Task) IsOverdue(today time.Time) bool {
	if t.Completed {
		return false
	}
	return DateOf(t.DueDate).Before(DateOf(today))
}

// OwnedBy reports whether the task belongs to username.
func (t *Task) OwnedBy(username string) bool {
	return t.Username == username
}

// Mutation describes the fields an update may change.
// Nil fields are left untouched.
type Mutation struct {
	Completed *bool
	Username  *string
	DueDate   *time.Time
}

// IsZero returns true if the mutation changes nothing.
func (m Mutation) IsZero() bool {
	return m.Completed == nil && m.Username == nil && m.DueDate == nil
}

// MarkComplete returns a mutation that completes a task.
func MarkComplete() Mutation {
	done := true
	return Mutation{Completed: &done}
}

// Reassign returns a mutation that changes the owner.
func Reassign(username string) Mutation {
	return Mutation{Username: &username}
}

// Reschedule returns a mutation that changes the due date.
func Reschedule(due time.Time) Mutation {
	d := DateOf(due)
	return Mutation{DueDate: &d}
}

// Apply applies m to the task. A completed task is never changed.
func (t *Task) Apply(m Mutation) error {
	if t.Completed {
		return ErrTaskLocked
	}
	if m.Username != nil {
		t.Username = *m.Username
	}
	if m.DueDate != nil {
		t.DueDate = DateOf(*m.DueDate)
	}
	if m.Completed != nil {
		t.Completed = *m.Completed
	}
	return nil
}

// CompletedLabel returns "Yes" or "No".
func (t *Task) CompletedLabel() string {
	if t.Completed {
		return "Yes"
	}
	return "No"
}

// FormatDisplay renders the task block shown in task listings.
func (t *Task) FormatDisplay(index int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Task Number: \t %d\n", index)
	fmt.Fprintf(&b, "Task: \t\t %s\n", t.Title)
	fmt.Fprintf(&b, "Assigned to: \t %s\n", t.Username)
	fmt.Fprintf(&b, "Date Assigned: \t %s\n", FormatDate(t.AssignedDate))
	fmt.Fprintf(&b, "Due Date: \t %s\n", FormatDate(t.DueDate))
	fmt.Fprintf(&b, "Complete: \t %s\n", t.CompletedLabel())
	fmt.Fprintf(&b, "Task Description: \n\t%s\n", t.Description)
	return b.String()
}

// ValidateText rejects values that cannot be stored in a record field.
func ValidateText(field, value string) error {
	if strings.ContainsAny(value, Separator+"\r\n") {
		return fmt.Errorf("%w: %s must not contain %q or line breaks", ErrInvalidInput, field, Separator)
	}
	return nil
}
