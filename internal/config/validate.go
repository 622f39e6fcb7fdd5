package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	validBackends   = []string{"text", "sqlite"}
	validLogFormats = []string{"text", "json", "logfmt"}
	validLogLevels  = []string{"debug", "info", "warn", "warning", "error", "fatal"}
)

// Validate reports every invalid setting in cfg.
func Validate(cfg *Config) error {
	var errs []error
	if !contains(validBackends, cfg.Backend) {
		errs = append(errs, fmt.Errorf("backend %q: expected %s", cfg.Backend, strings.Join(validBackends, "|")))
	}
	if !contains(validLogFormats, cfg.LogFormat) {
		errs = append(errs, fmt.Errorf("log_format %q: expected %s", cfg.LogFormat, strings.Join(validLogFormats, "|")))
	}
	if !contains(validLogLevels, cfg.LogLevel) {
		errs = append(errs, fmt.Errorf("log_level %q: expected debug|info|warn|error|fatal", cfg.LogLevel))
	}

	files := []struct{ key, value string }{
		{"user_file", cfg.UserFile},
		{"task_file", cfg.TaskFile},
		{"task_overview_file", cfg.TaskOverviewFile},
		{"user_overview_file", cfg.UserOverviewFile},
	}
	if cfg.Backend == "sqlite" {
		files = append(files, struct{ key, value string }{"database", cfg.Database})
	}
	seen := make(map[string]string, len(files))
	for _, f := range files {
		if strings.TrimSpace(f.value) == "" {
			errs = append(errs, fmt.Errorf("%s: must not be empty", f.key))
			continue
		}
		path := cfg.resolve(f.value)
		if other, ok := seen[path]; ok {
			errs = append(errs, fmt.Errorf("%s and %s both point to %s", other, f.key, path))
			continue
		}
		seen[path] = f.key
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("invalid config: %w", errors.Join(errs...))
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
