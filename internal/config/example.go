package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# taskman configuration file
# Values can be overridden by TASKMAN_* environment variables or CLI flags

# Directory holding the records and reports (supports ~ expansion)
data_dir = "."

# Storage backend: "text" keeps user.txt and tasks.txt, "sqlite" keeps one database
backend = "text"

# SQLite database file (relative to data_dir)
database = "taskman.db"

# Text records (relative to data_dir)
user_file = "user.txt"
task_file = "tasks.txt"

# Report documents written by gr/ds (relative to data_dir)
task_overview_file = "task_overview.txt"
user_overview_file = "user_overview.txt"

# Usernames granted the admin role (gr and ds commands)
admins = ["admin"]

# Session logs, one JSONL file per session
log_dir = "~/.taskman"
session_log = true

# Console diagnostics on stderr
log_level = "warn"        # debug, info, warn, error
log_format = "text"       # text, json, logfmt
log_timestamps = false
log_caller = false
`
}
