package logging

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestValidateEvent(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		wantErr string
	}{
		{"valid", `{"time":"2024-06-15T10:00:00Z","session":"s1","kind":"login","user":"admin"}`, ""},
		{"with task", `{"time":"2024-06-15T10:00:00.5+02:00","kind":"task_completed","task":3}`, ""},
		{"missing kind", `{"time":"2024-06-15T10:00:00Z"}`, "kind"},
		{"unknown kind", `{"time":"2024-06-15T10:00:00Z","kind":"deleted"}`, "kind"},
		{"negative task", `{"time":"2024-06-15T10:00:00Z","kind":"task_added","task":-1}`, "task"},
		{"bad time", `{"time":"yesterday","kind":"exit"}`, "time"},
		{"not json", `{"time":`, "unexpected"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEvent([]byte(tt.line))
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateSessionLogRoundTrip(t *testing.T) {
	log, err := NewSessionLog(t.TempDir(), t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range []Event{
		{Kind: EventLogin, User: "admin", Time: time.Now()},
		{Kind: EventTaskAdded, User: "admin", Task: TaskIndex(0), Target: "bob"},
		{Kind: EventExit, User: "admin"},
	} {
		if err := log.Record(e); err != nil {
			t.Fatal(err)
		}
	}
	if err := log.Close(); err != nil {
		t.Fatal(err)
	}

	n, err := ValidateSessionLog(log.LogPath)
	if err != nil {
		t.Fatalf("recorded events should validate: %v", err)
	}
	if n != 3 {
		t.Errorf("valid events: got %d, want 3", n)
	}
}

func TestValidateSessionLogReportsLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.jsonl")
	content := `{"time":"2024-06-15T10:00:00Z","kind":"login"}

{"time":"2024-06-15T10:00:00Z","kind":"bogus"}
{"time":"2024-06-15T10:00:01Z","kind":"exit"}
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	n, err := ValidateSessionLog(path)
	if n != 2 {
		t.Errorf("valid events: got %d, want 2", n)
	}
	var le *LineError
	if !errors.As(err, &le) {
		t.Fatalf("expected LineError, got %v", err)
	}
	if le.Line != 3 || le.Path != "kind" {
		t.Errorf("line error: got %+v", le)
	}
}
