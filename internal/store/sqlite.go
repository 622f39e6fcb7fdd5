package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/nibzard/taskman/internal/todo"
	"github.com/nibzard/taskman/internal/users"
)

// SQLite stores credentials and tasks in a single database file.
type SQLite struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(path string) (*SQLite, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create database dir: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	// One connection keeps the snapshot rewrite serialized.
	db.SetMaxOpenConns(1)

	s := &SQLite{db: db, path: path}
	if err := s.initTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init tables: %w", err)
	}
	return s, nil
}

// Path returns the database file path.
func (s *SQLite) Path() string {
	return s.path
}

// Close closes the database.
func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLite) initTables() error {
	_, err := s.db.Exec(`
        CREATE TABLE IF NOT EXISTS users (
            position INTEGER PRIMARY KEY,
            username TEXT NOT NULL UNIQUE,
            password TEXT NOT NULL,
            role TEXT NOT NULL DEFAULT 'user'
        )
    `)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
        CREATE TABLE IF NOT EXISTS tasks (
            position INTEGER PRIMARY KEY,
            username TEXT NOT NULL,
            title TEXT NOT NULL,
            description TEXT NOT NULL,
            due_date TEXT NOT NULL,
            assigned_date TEXT NOT NULL,
            completed INTEGER NOT NULL DEFAULT 0
        )
    `)
	return err
}

// LoadUsers returns all entries ordered by insertion position.
// An empty table is reported as ErrAbsent.
func (s *SQLite) LoadUsers() ([]users.Entry, error) {
	rows, err := s.db.Query(`SELECT username, password, role FROM users ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var entries []users.Entry
	for rows.Next() {
		var e users.Entry
		var role string
		if err := rows.Scan(&e.Username, &e.Password, &role); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		e.Role = users.ParseRole(role)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read users: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("users table is empty: %w", ErrAbsent)
	}
	return entries, nil
}

// SaveUsers replaces the users table contents in one transaction.
func (s *SQLite) SaveUsers(entries []users.Entry) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM users`); err != nil {
		return fmt.Errorf("clear users: %w", err)
	}
	for i, e := range entries {
		role := e.Role
		if role == "" {
			role = users.RoleUser
		}
		if _, err := tx.Exec(`
            INSERT INTO users (position, username, password, role)
            VALUES (?, ?, ?, ?)
        `, i, e.Username, e.Password, string(role)); err != nil {
			return fmt.Errorf("insert user %q: %w", e.Username, err)
		}
	}
	return tx.Commit()
}

// LoadTasks returns all tasks ordered by position.
func (s *SQLite) LoadTasks() ([]todo.Task, error) {
	rows, err := s.db.Query(`
        SELECT username, title, description, due_date, assigned_date, completed
        FROM tasks ORDER BY position
    `)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []todo.Task
	line := 0
	for rows.Next() {
		line++
		var t todo.Task
		var due, assigned string
		if err := rows.Scan(&t.Username, &t.Title, &t.Description, &due, &assigned, &t.Completed); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		if t.DueDate, err = todo.ParseDate(due); err != nil {
			return nil, todo.Malformed(line, err)
		}
		if t.AssignedDate, err = todo.ParseDate(assigned); err != nil {
			return nil, todo.Malformed(line, err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read tasks: %w", err)
	}
	return tasks, nil
}

// SaveTasks replaces the tasks table contents in one transaction.
func (s *SQLite) SaveTasks(tasks []todo.Task) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM tasks`); err != nil {
		return fmt.Errorf("clear tasks: %w", err)
	}
	for i, t := range tasks {
		if _, err := tx.Exec(`
            INSERT INTO tasks (position, username, title, description, due_date, assigned_date, completed)
            VALUES (?, ?, ?, ?, ?, ?, ?)
        `, i, t.Username, t.Title, t.Description, todo.FormatDate(t.DueDate), todo.FormatDate(t.AssignedDate), t.Completed); err != nil {
			return fmt.Errorf("insert task %d: %w", i, err)
		}
	}
	return tx.Commit()
}
