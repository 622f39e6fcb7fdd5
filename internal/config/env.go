package config

import (
	"os"

	"github.com/nibzard/taskman/internal/utils"
)

// envBinding maps one environment variable onto a config field.
type envBinding struct {
	name  string
	field string
	apply func(cfg *Config, value string)
}

func envBindings() []envBinding {
	str := func(target func(*Config) *string) func(*Config, string) {
		return func(cfg *Config, v string) { *target(cfg) = v }
	}
	boolean := func(target func(*Config) *bool) func(*Config, string) {
		return func(cfg *Config, v string) { *target(cfg) = utils.BoolFromString(v) }
	}
	return []envBinding{
		{"TASKMAN_DATA_DIR", "data_dir", str(func(c *Config) *string { return &c.DataDir })},
		{"TASKMAN_BACKEND", "backend", str(func(c *Config) *string { return &c.Backend })},
		{"TASKMAN_DATABASE", "database", str(func(c *Config) *string { return &c.Database })},
		{"TASKMAN_USER_FILE", "user_file", str(func(c *Config) *string { return &c.UserFile })},
		{"TASKMAN_TASK_FILE", "task_file", str(func(c *Config) *string { return &c.TaskFile })},
		{"TASKMAN_TASK_OVERVIEW", "task_overview_file", str(func(c *Config) *string { return &c.TaskOverviewFile })},
		{"TASKMAN_USER_OVERVIEW", "user_overview_file", str(func(c *Config) *string { return &c.UserOverviewFile })},
		{"TASKMAN_ADMINS", "admins", func(c *Config, v string) { c.Admins = utils.SplitAndTrim(v, ",") }},
		{"TASKMAN_LOG_DIR", "log_dir", str(func(c *Config) *string { return &c.LogDir })},
		{"TASKMAN_SESSION_LOG", "session_log", boolean(func(c *Config) *bool { return &c.SessionLog })},
		{"TASKMAN_LOG_LEVEL", "log_level", str(func(c *Config) *string { return &c.LogLevel })},
		{"TASKMAN_LOG_FORMAT", "log_format", str(func(c *Config) *string { return &c.LogFormat })},
		{"TASKMAN_LOG_TIMESTAMPS", "log_timestamps", boolean(func(c *Config) *bool { return &c.LogTimestamps })},
		{"TASKMAN_LOG_CALLER", "log_caller", boolean(func(c *Config) *bool { return &c.LogCaller })},
	}
}

// loadFromEnv overrides config from environment variables.
// If sources is non-nil, it tracks the source of each value.
func loadFromEnv(cfg *Config, sources map[string]ConfigSource) {
	for _, b := range envBindings() {
		v := os.Getenv(b.name)
		if v == "" {
			continue
		}
		b.apply(cfg, v)
		if sources != nil {
			sources[b.field] = SourceEnv
		}
	}
}

// EnvNames returns the supported environment variables, in order.
func EnvNames() []string {
	bindings := envBindings()
	names := make([]string, len(bindings))
	for i, b := range bindings {
		names[i] = b.name
	}
	return names
}
