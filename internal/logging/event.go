package logging

import (
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Event kinds recorded by an interactive session.
const (
	EventLogin         = "login"
	EventLoginFailed   = "login_failed"
	EventRegister      = "register"
	EventTaskAdded     = "task_added"
	EventTaskCompleted = "task_completed"
	EventReassigned    = "task_reassigned"
	EventRescheduled   = "task_rescheduled"
	EventReports       = "reports_generated"
	EventInvalidInput  = "invalid_input"
	EventExit          = "exit"
)

// Event is a single session event.
type Event struct {
	Time    time.Time `json:"time"`
	Session string    `json:"session,omitempty"`
	Kind    string    `json:"kind"`
	User    string    `json:"user,omitempty"`
	Task    *int      `json:"task,omitempty"`
	Target  string    `json:"target,omitempty"`
	Detail  string    `json:"detail,omitempty"`
}

// TaskIndex returns a pointer for Event.Task.
func TaskIndex(i int) *int {
	return &i
}

// Recorder receives session events.
type Recorder interface {
	Record(Event) error
}

// Console writes events to a charmbracelet logger.
type Console struct {
	logger *log.Logger
}

// NewConsoleRecorder returns a recorder that logs events at debug level,
// and failures at warn level.
func NewConsoleRecorder(logger *log.Logger) *Console {
	return &Console{logger: logger}
}

// Record logs the event.
func (c *Console) Record(event Event) error {
	if c == nil || c.logger == nil {
		return nil
	}
	fields := eventFields(event)
	msg := strings.ReplaceAll(event.Kind, "_", " ")
	switch event.Kind {
	case EventLoginFailed, EventInvalidInput:
		c.logger.Warn(msg, fields...)
	case EventLogin, EventExit:
		c.logger.Info(msg, fields...)
	default:
		c.logger.Debug(msg, fields...)
	}
	return nil
}

func eventFields(event Event) []any {
	var fields []any
	if event.User != "" {
		fields = append(fields, "user", event.User)
	}
	if event.Task != nil {
		fields = append(fields, "task", *event.Task)
	}
	if event.Target != "" {
		fields = append(fields, "target", event.Target)
	}
	if event.Detail != "" {
		fields = append(fields, "detail", event.Detail)
	}
	return fields
}

// Multi fans events out to several recorders. Nil recorders are skipped.
type Multi struct {
	mu        sync.Mutex
	recorders []Recorder
}

// NewMulti returns a recorder writing to every non-nil recorder given.
func NewMulti(recorders ...Recorder) *Multi {
	m := &Multi{}
	for _, r := range recorders {
		if r != nil {
			m.recorders = append(m.recorders, r)
		}
	}
	return m
}

// Record forwards the event, returning the first error.
func (m *Multi) Record(event Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if event.Time.IsZero() {
		event.Time = time.Now()
	}
	var first error
	for _, r := range m.recorders {
		if err := r.Record(event); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// ConsoleOptions holds configuration for console diagnostics.
type ConsoleOptions struct {
	Level           string
	Format          string
	ReportTimestamp bool
	ReportCaller    bool
	Prefix          string
}

// DefaultConsoleOptions returns default options for console diagnostics.
func DefaultConsoleOptions() ConsoleOptions {
	return ConsoleOptions{
		Level:  "warn",
		Format: "text",
		Prefix: "taskman",
	}
}

// NewConsole builds a leveled logger writing to w.
func NewConsole(w io.Writer, opts ConsoleOptions) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           ParseLevel(opts.Level),
		Formatter:       ParseFormatter(opts.Format),
		ReportTimestamp: opts.ReportTimestamp,
		ReportCaller:    opts.ReportCaller,
		Prefix:          opts.Prefix,
	})
}

// ParseLevel parses a level name, defaulting to warn.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(level) {
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "warn", "warning", "":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	default:
		return log.WarnLevel
	}
}

// ParseFormatter parses a formatter name, defaulting to text.
func ParseFormatter(format string) log.Formatter {
	switch strings.ToLower(format) {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}

// ValidFormat returns true if format names a known formatter.
func ValidFormat(format string) bool {
	switch strings.ToLower(format) {
	case "", "text", "json", "logfmt":
		return true
	}
	return false
}

// ValidLevel returns true if level names a known level.
func ValidLevel(level string) bool {
	switch strings.ToLower(level) {
	case "", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	}
	return false
}
