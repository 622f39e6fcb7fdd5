package todo

import (
	"fmt"
	"strings"
)

// Separator splits fields within a record line.
const Separator = ";"

// fieldCount is the number of fields in a task line.
const fieldCount = 6

// ParseLine parses a single task line.
func ParseLine(line string) (Task, error) {
	parts := strings.Split(line, Separator)
	if len(parts) != fieldCount {
		return Task{}, fmt.Errorf("expected %d fields, got %d", fieldCount, len(parts))
	}

	due, err := ParseDate(parts[3])
	if err != nil {
		return Task{}, fmt.Errorf("due_date: %w", err)
	}
	assigned, err := ParseDate(parts[4])
	if err != nil {
		return Task{}, fmt.Errorf("assigned_date: %w", err)
	}

	return Task{
		Username:     parts[0],
		Title:        parts[1],
		Description:  parts[2],
		DueDate:      due,
		AssignedDate: assigned,
		Completed:    parts[5] == "Yes",
	}, nil
}

// FormatLine formats a task as a single record line.
func FormatLine(t Task) string {
	return strings.Join([]string{
		t.Username,
		t.Title,
		t.Description,
		FormatDate(t.DueDate),
		FormatDate(t.AssignedDate),
		t.CompletedLabel(),
	}, Separator)
}

// ParseRecord parses a full task record. Blank lines are skipped.
func ParseRecord(data []byte) ([]Task, error) {
	var tasks []Task
	for i, line := range SplitLines(data) {
		if line == "" {
			continue
		}
		t, err := ParseLine(line)
		if err != nil {
			return nil, Malformed(i+1, err)
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// FormatRecord formats tasks newline-joined, without a trailing newline.
func FormatRecord(tasks []Task) []byte {
	lines := make([]string, len(tasks))
	for i, t := range tasks {
		lines[i] = FormatLine(t)
	}
	return []byte(strings.Join(lines, "\n"))
}

// SplitLines splits a record into lines, tolerating CRLF endings.
func SplitLines(data []byte) []string {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	return strings.Split(text, "\n")
}
