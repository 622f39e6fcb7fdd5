package store

import (
	"fmt"

	"github.com/nibzard/taskman/internal/todo"
	"github.com/nibzard/taskman/internal/users"
)

// Users is the in-memory credential store.
type Users struct {
	backend UserBackend
	admins  []string
	entries []users.Entry
	index   map[string]int
}

// OpenUsers loads the credential store. An absent or empty record is
// replaced by the bootstrap account, which is persisted immediately.
// Names listed in admins are granted the admin role.
func OpenUsers(backend UserBackend, admins []string) (*Users, error) {
	u := &Users{backend: backend, admins: append([]string(nil), admins...)}
	if err := u.Reload(); err != nil {
		return nil, err
	}
	return u, nil
}

// Reload re-reads the credential record from the backend.
func (u *Users) Reload() error {
	entries, err := u.backend.LoadUsers()
	if err != nil && !isAbsent(err) {
		return fmt.Errorf("load users: %w", err)
	}
	if len(entries) == 0 {
		entries = []users.Entry{users.Bootstrap()}
		if err := u.backend.SaveUsers(entries); err != nil {
			return fmt.Errorf("create bootstrap user: %w", err)
		}
	}
	users.ApplyAdmins(entries, u.admins)
	u.set(entries)
	return nil
}

func (u *Users) set(entries []users.Entry) {
	u.entries = entries
	u.index = make(map[string]int, len(entries))
	for i, e := range entries {
		u.index[e.Username] = i
	}
}

// Lookup returns the entry for username.
func (u *Users) Lookup(username string) (users.Entry, bool) {
	i, ok := u.index[username]
	if !ok {
		return users.Entry{}, false
	}
	return u.entries[i], true
}

// Exists returns true if username is registered.
func (u *Users) Exists(username string) bool {
	_, ok := u.index[username]
	return ok
}

// Register adds a new entry with the user role and persists the full list.
func (u *Users) Register(username, password string) (users.Entry, error) {
	if u.Exists(username) {
		return users.Entry{}, fmt.Errorf("register %q: %w", username, todo.ErrDuplicateUser)
	}
	if username == "" {
		return users.Entry{}, fmt.Errorf("%w: username is empty", todo.ErrInvalidInput)
	}
	if err := todo.ValidateText("username", username); err != nil {
		return users.Entry{}, err
	}
	if err := todo.ValidateText("password", password); err != nil {
		return users.Entry{}, err
	}

	entry := users.Entry{Username: username, Password: password, Role: users.RoleUser}
	for _, admin := range u.admins {
		if admin == username {
			entry.Role = users.RoleAdmin
		}
	}

	next := make([]users.Entry, 0, len(u.entries)+1)
	next = append(next, u.entries...)
	next = append(next, entry)
	if err := u.backend.SaveUsers(next); err != nil {
		return users.Entry{}, fmt.Errorf("save users: %w", err)
	}
	u.set(next)
	return entry, nil
}

// Entries returns the ordered credential list.
func (u *Users) Entries() []users.Entry {
	return append([]users.Entry(nil), u.entries...)
}

// Usernames returns the ordered usernames.
func (u *Users) Usernames() []string {
	names := make([]string, len(u.entries))
	for i, e := range u.entries {
		names[i] = e.Username
	}
	return names
}

// Len returns the number of entries.
func (u *Users) Len() int {
	return len(u.entries)
}
