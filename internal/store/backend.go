package store

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/nibzard/taskman/internal/todo"
	"github.com/nibzard/taskman/internal/users"
)

// ErrAbsent is returned by backends whose durable record does not exist yet.
var ErrAbsent = fs.ErrNotExist

// TaskBackend loads and saves the full task sequence.
type TaskBackend interface {
	LoadTasks() ([]todo.Task, error)
	SaveTasks(tasks []todo.Task) error
}

// UserBackend loads and saves the full ordered credential list.
type UserBackend interface {
	LoadUsers() ([]users.Entry, error)
	SaveUsers(entries []users.Entry) error
}

// Backend persists both records.
type Backend interface {
	TaskBackend
	UserBackend
	Close() error
}

func isAbsent(err error) bool {
	return errors.Is(err, ErrAbsent)
}

// Backend kinds accepted by OpenBackend.
const (
	KindText   = "text"
	KindSQLite = "sqlite"
)

// Paths locates the durable records for every backend kind.
type Paths struct {
	UserFile string
	TaskFile string
	Database string
}

// OpenBackend opens the backend of the given kind.
func OpenBackend(kind string, paths Paths) (Backend, error) {
	switch kind {
	case "", KindText:
		return NewTextFiles(paths.UserFile, paths.TaskFile), nil
	case KindSQLite:
		return OpenSQLite(paths.Database)
	default:
		return nil, fmt.Errorf("unknown backend %q (want %s or %s)", kind, KindText, KindSQLite)
	}
}
