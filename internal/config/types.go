package config

import (
	"github.com/nibzard/taskman/internal/datadir"
)

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// ConfigWithSources holds configuration along with source information for each field.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource
	// Files lists the config files that were read, lowest priority first.
	Files []string
	// Unknown lists keys found in config files that no field uses.
	Unknown []string
}

// Default values.
const (
	DefaultDataDir   = "."
	DefaultBackend   = "text"
	DefaultLogDir    = "~/.taskman"
	DefaultLogLevel  = "warn"
	DefaultLogFormat = "text"
)

// DefaultAdmins returns the usernames granted the admin role by default.
func DefaultAdmins() []string {
	return []string{"admin"}
}

// Config holds the full configuration for taskman.
type Config struct {
	// Storage
	DataDir  string `toml:"data_dir"`
	Backend  string `toml:"backend"`
	Database string `toml:"database"`
	UserFile string `toml:"user_file"`
	TaskFile string `toml:"task_file"`

	// Reports
	TaskOverviewFile string `toml:"task_overview_file"`
	UserOverviewFile string `toml:"user_overview_file"`

	// Users granted the admin role
	Admins []string `toml:"admins"`

	// Session logs
	LogDir     string `toml:"log_dir"`
	SessionLog bool   `toml:"session_log"`

	// Console logging
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`
}

// UserPath returns the resolved credential record path.
func (c *Config) UserPath() string {
	return datadir.Resolve(c.DataDir, c.UserFile)
}

// TaskPath returns the resolved task record path.
func (c *Config) TaskPath() string {
	return datadir.Resolve(c.DataDir, c.TaskFile)
}

// DatabasePath returns the resolved SQLite database path.
func (c *Config) DatabasePath() string {
	return datadir.Resolve(c.DataDir, c.Database)
}

// TaskOverviewPath returns the resolved task overview report path.
func (c *Config) TaskOverviewPath() string {
	return datadir.Resolve(c.DataDir, c.TaskOverviewFile)
}

// UserOverviewPath returns the resolved user overview report path.
func (c *Config) UserOverviewPath() string {
	return datadir.Resolve(c.DataDir, c.UserOverviewFile)
}

func (c *Config) resolve(name string) string {
	return datadir.Resolve(c.DataDir, name)
}
