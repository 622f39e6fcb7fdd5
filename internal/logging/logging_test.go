// Package logging provides tests for session logs and tail output.
package logging

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

// TestNewSessionLog tests creating a session log under the base dir.
func TestNewSessionLog(t *testing.T) {
	t.Run("creates nested log file", func(t *testing.T) {
		baseDir := filepath.Join(t.TempDir(), "logs", "nested")
		dataDir := t.TempDir()

		sl, err := NewSessionLog(baseDir, dataDir)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		defer sl.Close()

		if sl.SessionID == "" {
			t.Error("expected SessionID to be set")
		}
		if !strings.HasPrefix(sl.LogPath, baseDir) {
			t.Errorf("log path %s should be under %s", sl.LogPath, baseDir)
		}
		if _, err := os.Stat(sl.LogPath); err != nil {
			t.Errorf("log file not created: %v", err)
		}
	})

	t.Run("empty base dir returns error", func(t *testing.T) {
		if _, err := NewSessionLog("", t.TempDir()); err == nil {
			t.Fatal("expected error for empty base dir, got nil")
		}
	})
}

// TestSessionLogRecord tests that events are written as JSON lines.
func TestSessionLogRecord(t *testing.T) {
	sl, err := NewSessionLog(t.TempDir(), t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	events := []Event{
		{Kind: EventLogin, User: "admin"},
		{Kind: EventTaskCompleted, User: "admin", Task: TaskIndex(3)},
	}
	for _, e := range events {
		if err := sl.Record(e); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}
	if err := sl.Close(); err != nil {
		t.Fatal(err)
	}
	if err := sl.Record(Event{Kind: EventExit}); err != nil {
		t.Errorf("Record after Close should be a no-op, got %v", err)
	}

	data, err := os.ReadFile(sl.LogPath)
	if err != nil {
		t.Fatal(err)
	}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	var got []Event
	for scanner.Scan() {
		var e Event
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			t.Fatalf("invalid JSON line %q: %v", scanner.Text(), err)
		}
		got = append(got, e)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	if got[0].Session != sl.SessionID || got[0].Time.IsZero() {
		t.Errorf("first event missing session or time: %+v", got[0])
	}
	if got[1].Task == nil || *got[1].Task != 3 {
		t.Errorf("task index not recorded: %+v", got[1])
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"simple", "simple"},
		{"Hello World", "Hello_World"},
		{"many   spaces", "many_spaces"},
		{"special@chars!", "special_chars"},
		{"", "data"},
		{"   ", "data"},
		{"___", "data"},
		{"test.-_project", "test.-_project"},
		{"test\\directory", "test_directory"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := slugify(tt.input); got != tt.want {
				t.Errorf("slugify(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestHashPath(t *testing.T) {
	for _, input := range []string{"/path/to/data", "/another/path", ""} {
		got := hashPath(input)
		if len(got) != 8 {
			t.Errorf("hashPath(%q) length = %d, want 8", input, len(got))
		}
		if got != hashPath(input) {
			t.Errorf("hashPath(%q) not deterministic", input)
		}
	}
	if hashPath("/a") == hashPath("/b") {
		t.Error("different paths produced the same hash")
	}
}

func TestSessionID(t *testing.T) {
	id := sessionID()

	// YYYYMMDD-HHMMSS-xxxxxxxx
	parts := strings.Split(id, "-")
	if len(parts) != 3 {
		t.Fatalf("expected 3 parts, got %d: %s", len(parts), id)
	}
	if _, err := time.Parse("20060102", parts[0]); err != nil {
		t.Errorf("first part not a valid date: %v", err)
	}
	if _, err := time.Parse("150405", parts[1]); err != nil {
		t.Errorf("second part not a valid time: %v", err)
	}
	if len(parts[2]) != 8 {
		t.Errorf("suffix should be 8 characters, got %q", parts[2])
	}
	if sessionID() == id {
		t.Error("session ids should be unique")
	}
}

func TestFindLogDir(t *testing.T) {
	baseDir := t.TempDir()
	dataDir := t.TempDir()

	logDir, err := FindLogDir(baseDir, dataDir)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if filepath.Dir(logDir) != baseDir {
		t.Errorf("log dir %s should be directly under %s", logDir, baseDir)
	}
	if !strings.HasPrefix(filepath.Base(logDir), slugify(filepath.Base(dataDir))+"-") {
		t.Errorf("log dir %s should start with the data dir slug", logDir)
	}

	again, _ := FindLogDir(baseDir, dataDir)
	if again != logDir {
		t.Errorf("FindLogDir not stable: %s vs %s", logDir, again)
	}

	other, _ := FindLogDir(baseDir, t.TempDir())
	if other == logDir {
		t.Error("different data dirs should get different log dirs")
	}

	if _, err := FindLogDir("", dataDir); err == nil {
		t.Fatal("expected error for empty base dir, got nil")
	}
}

func TestFindSessions(t *testing.T) {
	t.Run("newest first, jsonl only", func(t *testing.T) {
		logDir := t.TempDir()
		old := time.Now().Add(-time.Hour)

		write := func(name string, mod time.Time) {
			path := filepath.Join(logDir, name)
			if err := os.WriteFile(path, []byte("{}\n"), 0644); err != nil {
				t.Fatal(err)
			}
			if err := os.Chtimes(path, mod, mod); err != nil {
				t.Fatal(err)
			}
		}
		write("20240101-120000-aaaaaaaa.jsonl", old)
		write("20240101-130000-bbbbbbbb.jsonl", old.Add(time.Minute))
		write("readme.txt", time.Now())
		if err := os.Mkdir(filepath.Join(logDir, "sub.jsonl"), 0755); err != nil {
			t.Fatal(err)
		}

		sessions, err := FindSessions(logDir)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(sessions) != 2 {
			t.Fatalf("expected 2 sessions, got %d", len(sessions))
		}
		if sessions[0].SessionID != "20240101-130000-bbbbbbbb" {
			t.Errorf("newest session: got %s", sessions[0].SessionID)
		}

		latest, err := FindLatestLog(logDir)
		if err != nil {
			t.Fatal(err)
		}
		if latest != sessions[0].Path {
			t.Errorf("FindLatestLog = %s, want %s", latest, sessions[0].Path)
		}
	})

	t.Run("missing directory yields nothing", func(t *testing.T) {
		latest, err := FindLatestLog(filepath.Join(t.TempDir(), "missing"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if latest != "" {
			t.Errorf("expected empty path, got %s", latest)
		}
	})
}

func TestTailLog(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "test.jsonl")
	if err := os.WriteFile(logFile, []byte("line1\nline2\nline3\n"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		n    int
		want string
	}{
		{"whole file", 0, "line1\nline2\nline3\n"},
		{"last two", 2, "line2\nline3\n"},
		{"more than available", 10, "line1\nline2\nline3\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := TailLog(context.Background(), &buf, logFile, tt.n, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("got %q, want %q", buf.String(), tt.want)
			}
		})
	}

	t.Run("follow stops on cancel", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
		defer cancel()
		var buf bytes.Buffer
		if err := TailLog(ctx, &buf, logFile, 1, true); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if buf.String() != "line3\n" {
			t.Errorf("got %q", buf.String())
		}
	})

	t.Run("missing file", func(t *testing.T) {
		var buf bytes.Buffer
		if err := TailLog(context.Background(), &buf, filepath.Join(t.TempDir(), "nope.jsonl"), 0, false); err == nil {
			t.Fatal("expected error for missing file")
		}
	})
}

type captureRecorder struct {
	events []Event
}

func (c *captureRecorder) Record(e Event) error {
	c.events = append(c.events, e)
	return nil
}

func TestMulti(t *testing.T) {
	a, b := &captureRecorder{}, &captureRecorder{}
	m := NewMulti(a, nil, b)

	if err := m.Record(Event{Kind: EventRegister, Target: "bob"}); err != nil {
		t.Fatal(err)
	}
	if len(a.events) != 1 || len(b.events) != 1 {
		t.Fatalf("fan-out: got %d and %d events", len(a.events), len(b.events))
	}
	if a.events[0].Time.IsZero() {
		t.Error("Multi should stamp events")
	}
}

func TestConsoleRecorder(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsole(&buf, ConsoleOptions{Level: "debug", Format: "logfmt"})
	rec := NewConsoleRecorder(logger)

	if err := rec.Record(Event{Kind: EventLoginFailed, User: "ghost", Detail: "unknown user"}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"level=warn", "login failed", "user=ghost"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  log.Level
	}{
		{"debug", log.DebugLevel},
		{"INFO", log.InfoLevel},
		{"warning", log.WarnLevel},
		{"error", log.ErrorLevel},
		{"", log.WarnLevel},
		{"bogus", log.WarnLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
	if !ValidLevel("warn") || ValidLevel("loud") {
		t.Error("ValidLevel mismatch")
	}
	if !ValidFormat("logfmt") || ValidFormat("xml") {
		t.Error("ValidFormat mismatch")
	}
}
