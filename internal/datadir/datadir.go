// Package datadir provides constants and utilities for the files kept in
// the taskman data directory.
package datadir

import "path/filepath"

const (
	// DefaultUserFile is the credential record file name.
	DefaultUserFile = "user.txt"

	// DefaultTaskFile is the task record file name.
	DefaultTaskFile = "tasks.txt"

	// DefaultTaskOverviewFile is the aggregate report file name.
	DefaultTaskOverviewFile = "task_overview.txt"

	// DefaultUserOverviewFile is the per-user report file name.
	DefaultUserOverviewFile = "user_overview.txt"

	// DefaultDatabaseFile is the SQLite database file name.
	DefaultDatabaseFile = "taskman.db"

	// DefaultConfigFile is the project config file name.
	DefaultConfigFile = "taskman.toml"
)

// Resolve returns name joined to dir unless name is already absolute.
func Resolve(dir, name string) string {
	if name == "" {
		return ""
	}
	if filepath.IsAbs(name) {
		return filepath.Clean(name)
	}
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, name)
}

// UserPath returns the credential record path within dir.
func UserPath(dir string) string {
	return Resolve(dir, DefaultUserFile)
}

// TaskPath returns the task record path within dir.
func TaskPath(dir string) string {
	return Resolve(dir, DefaultTaskFile)
}

// DatabasePath returns the SQLite database path within dir.
func DatabasePath(dir string) string {
	return Resolve(dir, DefaultDatabaseFile)
}
