// Package users defines credential entries, roles, and their line format.
package users

import (
	"fmt"
	"strings"

	"github.com/nibzard/taskman/internal/todo"
)

// Role is an authorization level attached to a credential entry.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Bootstrap account created when the credential store is empty or absent.
const (
	BootstrapUsername = "admin"
	BootstrapPassword = "password"
)

// Entry is a username/password pair authorizing login.
type Entry struct {
	Username string `json:"username" yaml:"username"`
	Password string `json:"-" yaml:"-"`
	Role     Role   `json:"role" yaml:"role"`
}

// IsAdmin returns true if the entry has the elevated role.
func (e Entry) IsAdmin() bool {
	return e.Role == RoleAdmin
}

// Bootstrap returns the default elevated account.
func Bootstrap() Entry {
	return Entry{
		Username: BootstrapUsername,
		Password: BootstrapPassword,
		Role:     RoleAdmin,
	}
}

// ParseRole parses a role name, defaulting unknown or empty values to RoleUser.
func ParseRole(s string) Role {
	if Role(strings.ToLower(strings.TrimSpace(s))) == RoleAdmin {
		return RoleAdmin
	}
	return RoleUser
}

// ParseLine parses a username;password line.
func ParseLine(line string) (Entry, error) {
	parts := strings.Split(line, todo.Separator)
	if len(parts) != 2 {
		return Entry{}, fmt.Errorf("expected exactly one %q separator, got %d", todo.Separator, len(parts)-1)
	}
	return Entry{Username: parts[0], Password: parts[1], Role: RoleUser}, nil
}

// FormatLine formats an entry as a username;password line.
func FormatLine(e Entry) string {
	return e.Username + todo.Separator + e.Password
}

// ParseRecord parses a full credential record. Blank lines are skipped and
// usernames must be unique.
func ParseRecord(data []byte) ([]Entry, error) {
	var entries []Entry
	seen := make(map[string]bool)
	for i, line := range todo.SplitLines(data) {
		if line == "" {
			continue
		}
		e, err := ParseLine(line)
		if err != nil {
			return nil, todo.Malformed(i+1, err)
		}
		if seen[e.Username] {
			return nil, todo.Malformed(i+1, fmt.Errorf("duplicate username %q", e.Username))
		}
		seen[e.Username] = true
		entries = append(entries, e)
	}
	return entries, nil
}

// FormatRecord formats entries newline-joined, without a trailing newline.
func FormatRecord(entries []Entry) []byte {
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = FormatLine(e)
	}
	return []byte(strings.Join(lines, "\n"))
}

// ApplyAdmins grants the admin role to every entry named in admins.
func ApplyAdmins(entries []Entry, admins []string) {
	set := make(map[string]bool, len(admins))
	for _, name := range admins {
		set[name] = true
	}
	for i := range entries {
		if set[entries[i].Username] {
			entries[i].Role = RoleAdmin
		}
	}
}
