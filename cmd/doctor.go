package cmd

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/nibzard/taskman/internal/config"
	"github.com/nibzard/taskman/internal/logging"
	"github.com/nibzard/taskman/internal/store"
	"github.com/nibzard/taskman/internal/todo"
	"github.com/nibzard/taskman/internal/users"
)

// doctorCommand checks config, the data directory, the records and the
// session log directory. It never creates or rewrites records.
func (a *app) doctorCommand(args []string) error {
	fs := flag.NewFlagSet("taskman doctor", flag.ContinueOnError)
	fs.SetOutput(a.io.Err)
	verbose := fs.Bool("v", false, "Verbose output")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	w := a.io.Out
	cfg := a.cfg

	fmt.Fprintln(w, "Taskman Doctor")
	fmt.Fprintln(w, "==============")
	fmt.Fprintln(w)

	allOK := true

	// Config
	fmt.Fprintln(w, "Config:")
	if file := a.sources.GetConfigFile(); file != "" {
		fmt.Fprintf(w, "  File: %s\n", file)
	} else {
		fmt.Fprintln(w, "  File: (none, using defaults)")
	}
	fmt.Fprintf(w, "  ✅ Backend: %s\n", cfg.Backend)
	fmt.Fprintf(w, "  ✅ Admins: %s\n", strings.Join(cfg.Admins, ", "))
	if len(cfg.Admins) == 0 {
		fmt.Fprintln(w, "  ⚠️  No admins configured. gr, ds and report are unavailable.")
	}
	for _, key := range a.sources.Unknown {
		fmt.Fprintf(w, "  ⚠️  Unknown key: %s\n", key)
	}
	if *verbose {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "  Values:")
		for _, kv := range configValues(cfg) {
			fmt.Fprintf(w, "    %-20s %-30s (%s)\n", kv[0], kv[1], a.sources.Sources[kv[0]])
		}
	}
	fmt.Fprintln(w)

	// Data directory
	fmt.Fprintf(w, "Data directory: %s\n", cfg.DataDir)
	if info, err := os.Stat(cfg.DataDir); err != nil {
		fmt.Fprintf(w, "  ❌ Error: %v\n", err)
		allOK = false
	} else if !info.IsDir() {
		fmt.Fprintln(w, "  ❌ Error: not a directory")
		allOK = false
	} else {
		fmt.Fprintln(w, "  ✅ OK")
	}
	fmt.Fprintln(w)

	// Records
	if !a.checkRecords() {
		allOK = false
	}

	// Session logs
	logDir, err := logging.FindLogDir(cfg.LogDir, cfg.DataDir)
	fmt.Fprintln(w, "Session logs:")
	switch {
	case err != nil:
		fmt.Fprintf(w, "  ❌ Error: %v\n", err)
		allOK = false
	case !cfg.SessionLog:
		fmt.Fprintf(w, "  ✅ Disabled (would use %s)\n", logDir)
	default:
		sessions, err := logging.FindSessions(logDir)
		if err != nil {
			fmt.Fprintf(w, "  ❌ Error: %v\n", err)
			allOK = false
		} else {
			fmt.Fprintf(w, "  ✅ %s (%d sessions)\n", logDir, len(sessions))
			if len(sessions) > 0 {
				latest := sessions[0]
				n, err := logging.ValidateSessionLog(latest.Path)
				if err != nil {
					fmt.Fprintf(w, "  ❌ Latest session %s: %v\n", latest.SessionID, err)
					allOK = false
				} else if *verbose {
					fmt.Fprintf(w, "  ✅ Latest session %s: %d valid events\n", latest.SessionID, n)
				}
			}
		}
	}
	fmt.Fprintln(w)

	if allOK {
		fmt.Fprintln(w, "✅ All checks passed!")
		return nil
	}
	fmt.Fprintln(w, "⚠️  Some checks failed. Taskman may not function correctly.")
	return fmt.Errorf("doctor checks failed")
}

// checkRecords loads the records read-only and reports what it finds.
func (a *app) checkRecords() bool {
	w := a.io.Out
	cfg := a.cfg

	if cfg.Backend == store.KindSQLite {
		if _, err := os.Stat(cfg.DatabasePath()); errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(w, "Database: %s\n", cfg.DatabasePath())
			fmt.Fprintln(w, "  ⚠️  Not found. It will be created with the bootstrap account.")
			fmt.Fprintln(w)
			return true
		}
	}

	backend, err := store.OpenBackend(cfg.Backend, a.paths())
	if err != nil {
		fmt.Fprintln(w, "Records:")
		fmt.Fprintf(w, "  ❌ Error: %v\n", err)
		fmt.Fprintln(w)
		return false
	}
	defer backend.Close()

	ok := true
	userLabel, taskLabel := cfg.UserPath(), cfg.TaskPath()
	if cfg.Backend == store.KindSQLite {
		userLabel, taskLabel = cfg.DatabasePath()+" (users)", cfg.DatabasePath()+" (tasks)"
	}

	fmt.Fprintf(w, "Users: %s\n", userLabel)
	entries, err := backend.LoadUsers()
	switch {
	case errors.Is(err, store.ErrAbsent):
		fmt.Fprintln(w, "  ⚠️  Not found. It will be created with the bootstrap account.")
	case err != nil:
		fmt.Fprintf(w, "  ❌ Error: %v\n", err)
		ok = false
	case len(entries) == 0:
		fmt.Fprintln(w, "  ⚠️  Empty. The bootstrap account will be added.")
	default:
		users.ApplyAdmins(entries, cfg.Admins)
		admins := 0
		for _, e := range entries {
			if e.IsAdmin() {
				admins++
			}
		}
		fmt.Fprintf(w, "  ✅ %d users, %d admins\n", len(entries), admins)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Tasks: %s\n", taskLabel)
	tasks, err := backend.LoadTasks()
	switch {
	case errors.Is(err, store.ErrAbsent):
		fmt.Fprintln(w, "  ⚠️  Not found. An empty record will be created.")
	case err != nil:
		fmt.Fprintf(w, "  ❌ Error: %v\n", err)
		ok = false
	default:
		completed, overdue := 0, 0
		today := a.now()
		for i := range tasks {
			if tasks[i].Completed {
				completed++
			}
			if tasks[i].IsOverdue(today) {
				overdue++
			}
		}
		fmt.Fprintf(w, "  ✅ %d tasks (%d completed, %d overdue)\n", len(tasks), completed, overdue)
		if unknown := unknownAssignees(tasks, entries); len(unknown) > 0 {
			fmt.Fprintf(w, "  ⚠️  Assigned to unregistered users: %s\n", strings.Join(unknown, ", "))
		}
	}
	fmt.Fprintln(w)
	return ok
}

func unknownAssignees(tasks []todo.Task, entries []users.Entry) []string {
	known := make(map[string]bool, len(entries))
	for _, e := range entries {
		known[e.Username] = true
	}
	seen := make(map[string]bool)
	var out []string
	for _, t := range tasks {
		if known[t.Username] || seen[t.Username] {
			continue
		}
		seen[t.Username] = true
		out = append(out, t.Username)
	}
	return out
}

// configValues lists every config field with its value, in file order.
func configValues(cfg *config.Config) [][2]string {
	return [][2]string{
		{"data_dir", cfg.DataDir},
		{"backend", cfg.Backend},
		{"database", cfg.Database},
		{"user_file", cfg.UserFile},
		{"task_file", cfg.TaskFile},
		{"task_overview_file", cfg.TaskOverviewFile},
		{"user_overview_file", cfg.UserOverviewFile},
		{"admins", strings.Join(cfg.Admins, ",")},
		{"log_dir", cfg.LogDir},
		{"session_log", strconv.FormatBool(cfg.SessionLog)},
		{"log_level", cfg.LogLevel},
		{"log_format", cfg.LogFormat},
		{"log_timestamps", strconv.FormatBool(cfg.LogTimestamps)},
		{"log_caller", strconv.FormatBool(cfg.LogCaller)},
	}
}
