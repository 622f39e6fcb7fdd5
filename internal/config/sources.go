package config

import (
	"os"
	"path/filepath"

	"github.com/nibzard/taskman/internal/datadir"
)

// findProjectConfigFile looks for a config file in the current directory.
func findProjectConfigFile() string {
	for _, name := range []string{datadir.DefaultConfigFile, "." + datadir.DefaultConfigFile} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// findUserConfigFile looks for a user-level config file:
// ~/.taskman/taskman.toml, then <os config dir>/taskman/taskman.toml.
func findUserConfigFile() string {
	var candidates []string
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".taskman", datadir.DefaultConfigFile))
	}
	if dir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "taskman", datadir.DefaultConfigFile))
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	cfg.DataDir = DefaultDataDir
	cfg.Backend = DefaultBackend
	cfg.Database = datadir.DefaultDatabaseFile
	cfg.UserFile = datadir.DefaultUserFile
	cfg.TaskFile = datadir.DefaultTaskFile
	cfg.TaskOverviewFile = datadir.DefaultTaskOverviewFile
	cfg.UserOverviewFile = datadir.DefaultUserOverviewFile
	cfg.Admins = DefaultAdmins()
	cfg.LogDir = DefaultLogDir
	cfg.SessionLog = true
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
	cfg.LogTimestamps = false
	cfg.LogCaller = false
}

// GetConfigFile returns the highest-priority config file that was read.
func (cws *ConfigWithSources) GetConfigFile() string {
	if len(cws.Files) == 0 {
		return ""
	}
	return cws.Files[len(cws.Files)-1]
}
