package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nibzard/taskman/internal/todo"
	"github.com/nibzard/taskman/internal/users"
)

// TextFiles stores credentials and tasks as line-oriented text records.
type TextFiles struct {
	UserPath string
	TaskPath string
}

// NewTextFiles returns a text backend for the given record paths.
func NewTextFiles(userPath, taskPath string) *TextFiles {
	return &TextFiles{UserPath: userPath, TaskPath: taskPath}
}

// LoadUsers reads the credential record.
func (t *TextFiles) LoadUsers() ([]users.Entry, error) {
	data, err := readRecord(t.UserPath)
	if err != nil {
		return nil, err
	}
	entries, err := users.ParseRecord(data)
	if err != nil {
		return nil, fmt.Errorf("parse user file %s: %w", t.UserPath, err)
	}
	return entries, nil
}

// SaveUsers rewrites the credential record.
func (t *TextFiles) SaveUsers(entries []users.Entry) error {
	return writeRecord(t.UserPath, users.FormatRecord(entries))
}

// LoadTasks reads the task record.
func (t *TextFiles) LoadTasks() ([]todo.Task, error) {
	data, err := readRecord(t.TaskPath)
	if err != nil {
		return nil, err
	}
	tasks, err := todo.ParseRecord(data)
	if err != nil {
		return nil, fmt.Errorf("parse task file %s: %w", t.TaskPath, err)
	}
	return tasks, nil
}

// SaveTasks rewrites the task record.
func (t *TextFiles) SaveTasks(tasks []todo.Task) error {
	return writeRecord(t.TaskPath, todo.FormatRecord(tasks))
}

// Close is a no-op for text records.
func (t *TextFiles) Close() error {
	return nil
}

func readRecord(path string) ([]byte, error) {
	if path == "" {
		return nil, errors.New("record path is empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("read %s: %w", path, ErrAbsent)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func writeRecord(path string, data []byte) error {
	if path == "" {
		return errors.New("record path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create record dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
