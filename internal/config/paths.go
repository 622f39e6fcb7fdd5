package config

import (
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
)

// expandPath expands environment variables and a leading ~ in p.
// On Windows it also accepts ~\ and %VAR%.
func expandPath(p string) string {
	if p == "" {
		return ""
	}
	p = expandEnv(p)
	rest, ok := homeRelative(p)
	if !ok {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	if rest == "" {
		return home
	}
	return filepath.Join(home, rest)
}

// homeRelative reports whether p starts at the home directory and returns
// the remainder.
func homeRelative(p string) (string, bool) {
	if p == "~" {
		return "", true
	}
	seps := []string{"/"}
	if runtime.GOOS == "windows" {
		seps = append(seps, `\`)
	}
	for _, sep := range seps {
		if strings.HasPrefix(p, "~"+sep) {
			return p[2:], true
		}
	}
	return "", false
}

var windowsVar = regexp.MustCompile(`%([^%]+)%`)

func expandEnv(p string) string {
	p = os.ExpandEnv(p)
	if runtime.GOOS != "windows" {
		return p
	}
	// Unset variables are left as written.
	return windowsVar.ReplaceAllStringFunc(p, func(m string) string {
		if v, ok := os.LookupEnv(m[1 : len(m)-1]); ok {
			return v
		}
		return m
	})
}
