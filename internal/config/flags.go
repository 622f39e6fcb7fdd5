package config

import (
	"flag"
	"strings"

	"github.com/nibzard/taskman/internal/utils"
)

// flagFields maps global flag names to config field names.
var flagFields = map[string]string{
	"data-dir":       "data_dir",
	"backend":        "backend",
	"database":       "database",
	"user-file":      "user_file",
	"task-file":      "task_file",
	"task-overview":  "task_overview_file",
	"user-overview":  "user_overview_file",
	"admins":         "admins",
	"log-dir":        "log_dir",
	"session-log":    "session_log",
	"log-level":      "log_level",
	"log-format":     "log_format",
	"log-timestamps": "log_timestamps",
	"log-caller":     "log_caller",
}

// parseFlags defines the global flags on fs, parses args, and records
// the fields set explicitly.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string, sources map[string]ConfigSource) error {
	if fs == nil {
		fs = flag.NewFlagSet("taskman", flag.ContinueOnError)
	}

	fs.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "Directory holding the record and report files")
	fs.StringVar(&cfg.Backend, "backend", cfg.Backend, "Storage backend (text|sqlite)")
	fs.StringVar(&cfg.Database, "database", cfg.Database, "SQLite database file (sqlite backend)")
	fs.StringVar(&cfg.UserFile, "user-file", cfg.UserFile, "Credential record file (text backend)")
	fs.StringVar(&cfg.TaskFile, "task-file", cfg.TaskFile, "Task record file (text backend)")
	fs.StringVar(&cfg.TaskOverviewFile, "task-overview", cfg.TaskOverviewFile, "Task overview report file")
	fs.StringVar(&cfg.UserOverviewFile, "user-overview", cfg.UserOverviewFile, "User overview report file")
	admins := strings.Join(cfg.Admins, ",")
	fs.StringVar(&admins, "admins", admins, "Comma-separated usernames granted the admin role")
	fs.StringVar(&cfg.LogDir, "log-dir", cfg.LogDir, "Session log directory")
	fs.BoolVar(&cfg.SessionLog, "session-log", cfg.SessionLog, "Write a JSONL session log")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text, json, logfmt)")
	fs.BoolVar(&cfg.LogTimestamps, "log-timestamps", cfg.LogTimestamps, "Show timestamps in logs")
	fs.BoolVar(&cfg.LogCaller, "log-caller", cfg.LogCaller, "Show caller location in logs")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "admins" {
			cfg.Admins = utils.SplitAndTrim(admins, ",")
		}
		field, ok := flagFields[f.Name]
		if ok && sources != nil {
			sources[field] = SourceFlag
		}
	})
	return nil
}
