package store

import (
	"fmt"

	"github.com/nibzard/taskman/internal/todo"
)

// Indexed pairs a task with its position in the sequence.
type Indexed struct {
	Index int
	Task  todo.Task
}

// Tasks is the in-memory task store. Indices are sequence positions and
// stay stable because tasks are never deleted.
type Tasks struct {
	backend TaskBackend
	tasks   []todo.Task
}

// OpenTasks loads the task store, creating an empty record if absent.
func OpenTasks(backend TaskBackend) (*Tasks, error) {
	s := &Tasks{backend: backend}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-reads the task record from the backend.
func (s *Tasks) Reload() error {
	tasks, err := s.backend.LoadTasks()
	if err != nil {
		if !isAbsent(err) {
			return fmt.Errorf("load tasks: %w", err)
		}
		if err := s.backend.SaveTasks(nil); err != nil {
			return fmt.Errorf("create task record: %w", err)
		}
		tasks = nil
	}
	s.tasks = tasks
	return nil
}

// Len returns the number of tasks.
func (s *Tasks) Len() int {
	return len(s.tasks)
}

// All returns a copy of the task sequence.
func (s *Tasks) All() []todo.Task {
	return append([]todo.Task(nil), s.tasks...)
}

// At returns the task at index.
func (s *Tasks) At(index int) (todo.Task, error) {
	if index < 0 || index >= len(s.tasks) {
		return todo.Task{}, fmt.Errorf("task %d: %w", index, todo.ErrIndexOutOfRange)
	}
	return s.tasks[index], nil
}

// OwnedBy returns the tasks belonging to username with their indices.
func (s *Tasks) OwnedBy(username string) []Indexed {
	var out []Indexed
	for i := range s.tasks {
		if s.tasks[i].OwnedBy(username) {
			out = append(out, Indexed{Index: i, Task: s.tasks[i]})
		}
	}
	return out
}

// Append adds a task at the end of the sequence and persists it.
func (s *Tasks) Append(task todo.Task) (int, error) {
	if err := validateTask(task); err != nil {
		return -1, err
	}

	next := make([]todo.Task, 0, len(s.tasks)+1)
	next = append(next, s.tasks...)
	next = append(next, task)
	if err := s.backend.SaveTasks(next); err != nil {
		return -1, fmt.Errorf("save tasks: %w", err)
	}
	s.tasks = next
	return len(next) - 1, nil
}

// Update applies m to the task at index and persists the sequence.
// A completed task is left untouched and ErrTaskLocked is returned.
func (s *Tasks) Update(index int, m todo.Mutation) (todo.Task, error) {
	current, err := s.At(index)
	if err != nil {
		return todo.Task{}, err
	}
	if current.Completed {
		return current, fmt.Errorf("task %d: %w", index, todo.ErrTaskLocked)
	}
	if m.Username != nil {
		if err := todo.ValidateText("username", *m.Username); err != nil {
			return current, err
		}
	}

	updated := current
	if err := updated.Apply(m); err != nil {
		return current, fmt.Errorf("task %d: %w", index, err)
	}

	next := append([]todo.Task(nil), s.tasks...)
	next[index] = updated
	if err := s.backend.SaveTasks(next); err != nil {
		return current, fmt.Errorf("save tasks: %w", err)
	}
	s.tasks = next
	return updated, nil
}

func validateTask(t todo.Task) error {
	fields := []struct{ name, value string }{
		{"username", t.Username},
		{"title", t.Title},
		{"description", t.Description},
	}
	for _, f := range fields {
		if err := todo.ValidateText(f.name, f.value); err != nil {
			return err
		}
	}
	return nil
}
