package store

import (
	"fmt"

	"github.com/nibzard/taskman/internal/todo"
	"github.com/nibzard/taskman/internal/users"
)

// Memory is an in-process backend. A nil slice means the record is absent.
type Memory struct {
	Users []users.Entry
	Tasks []todo.Task

	// SaveErr, when set, is returned by every save.
	SaveErr error

	UserSaves int
	TaskSaves int
}

// LoadUsers returns a copy of the stored entries.
func (m *Memory) LoadUsers() ([]users.Entry, error) {
	if m.Users == nil {
		return nil, fmt.Errorf("memory users: %w", ErrAbsent)
	}
	return append([]users.Entry(nil), m.Users...), nil
}

// SaveUsers stores a copy of entries.
func (m *Memory) SaveUsers(entries []users.Entry) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Users = append(make([]users.Entry, 0, len(entries)), entries...)
	m.UserSaves++
	return nil
}

// LoadTasks returns a copy of the stored tasks.
func (m *Memory) LoadTasks() ([]todo.Task, error) {
	if m.Tasks == nil {
		return nil, fmt.Errorf("memory tasks: %w", ErrAbsent)
	}
	return append([]todo.Task(nil), m.Tasks...), nil
}

// SaveTasks stores a copy of tasks.
func (m *Memory) SaveTasks(tasks []todo.Task) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Tasks = append(make([]todo.Task, 0, len(tasks)), tasks...)
	m.TaskSaves++
	return nil
}

// Close is a no-op.
func (m *Memory) Close() error {
	return nil
}
