// Package cmd implements the CLI command structure for taskman.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nibzard/taskman/internal/config"
	"github.com/nibzard/taskman/internal/console"
	"github.com/nibzard/taskman/internal/logging"
	"github.com/nibzard/taskman/internal/report"
	"github.com/nibzard/taskman/internal/session"
	"github.com/nibzard/taskman/internal/store"
	"github.com/nibzard/taskman/internal/todo"
	"github.com/nibzard/taskman/internal/ui"
	"github.com/nibzard/taskman/internal/users"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Streams are the terminal handles a command reads from and writes to.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// StdStreams returns the process standard streams.
func StdStreams() Streams {
	return Streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}

// app carries the loaded configuration into each command.
type app struct {
	cfg     *config.Config
	sources *config.ConfigWithSources
	io      Streams
	logger  *log.Logger
	now     func() time.Time
}

// Run executes the taskman CLI on the process streams.
func Run(ctx context.Context, args []string) error {
	return RunWithStreams(ctx, args, StdStreams())
}

// RunWithStreams executes the taskman CLI on the given streams.
func RunWithStreams(ctx context.Context, args []string, streams Streams) error {
	fs := flag.NewFlagSet("taskman", flag.ContinueOnError)
	fs.SetOutput(streams.Err)
	fs.Usage = func() {
		printUsage(fs, streams.Err)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	cws, err := config.LoadWithSources(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if *help {
		printUsage(fs, streams.Out)
		return nil
	}
	if *showVersion {
		return versionCommand(streams.Out)
	}

	cfg := cws.Config
	a := &app{
		cfg:     cfg,
		sources: cws,
		io:      streams,
		logger: logging.NewConsole(streams.Err, logging.ConsoleOptions{
			Level:           cfg.LogLevel,
			Format:          cfg.LogFormat,
			ReportTimestamp: cfg.LogTimestamps,
			ReportCaller:    cfg.LogCaller,
			Prefix:          "taskman",
		}),
		now: time.Now,
	}

	// If no args or first arg is a flag, use "run" as default
	subcommand := "run"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 && !strings.HasPrefix(remainingArgs[0], "-") {
		subcommand = remainingArgs[0]
		remainingArgs = remainingArgs[1:]
	}

	switch subcommand {
	case "run":
		return a.runCommand(ctx, remainingArgs)
	case "tui":
		return a.tuiCommand(ctx, remainingArgs)
	case "report":
		return a.reportCommand(ctx, remainingArgs)
	case "doctor":
		return a.doctorCommand(remainingArgs)
	case "tail":
		return a.tailCommand(ctx, remainingArgs)
	case "ls":
		return a.lsCommand(remainingArgs)
	case "config":
		fmt.Fprint(streams.Out, config.ExampleConfig())
		return nil
	case "version", "--version", "-v":
		return versionCommand(streams.Out)
	case "help", "--help", "-h":
		printUsage(fs, streams.Out)
		return nil
	default:
		fmt.Fprintf(streams.Err, "Unknown command: %s\n", subcommand)
		printUsage(fs, streams.Err)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// stores holds the opened backend and the two stores over it.
type stores struct {
	backend store.Backend
	users   *store.Users
	tasks   *store.Tasks
}

func (s *stores) Close() error {
	return s.backend.Close()
}

// openStores opens the configured backend, bootstrapping absent records.
func (a *app) openStores() (*stores, error) {
	backend, err := store.OpenBackend(a.cfg.Backend, a.paths())
	if err != nil {
		return nil, fmt.Errorf("opening %s backend: %w", a.cfg.Backend, err)
	}
	u, err := store.OpenUsers(backend, a.cfg.Admins)
	if err != nil {
		backend.Close()
		return nil, err
	}
	t, err := store.OpenTasks(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}
	a.logger.Debug("records opened", "backend", a.cfg.Backend, "users", u.Len(), "tasks", t.Len())
	return &stores{backend: backend, users: u, tasks: t}, nil
}

func (a *app) paths() store.Paths {
	return store.Paths{
		UserFile: a.cfg.UserPath(),
		TaskFile: a.cfg.TaskPath(),
		Database: a.cfg.DatabasePath(),
	}
}

// recordLocation describes where the records live, for display.
func (a *app) recordLocation() string {
	if a.cfg.Backend == store.KindSQLite {
		return a.cfg.DatabasePath()
	}
	return a.cfg.UserPath() + ", " + a.cfg.TaskPath()
}

// events builds the recorder for one session. The returned close func
// flushes the session log, if one was opened.
func (a *app) events() (*logging.Multi, func()) {
	recorders := []logging.Recorder{logging.NewConsoleRecorder(a.logger)}
	closeFn := func() {}
	if a.cfg.SessionLog {
		sl, err := logging.NewSessionLog(a.cfg.LogDir, a.cfg.DataDir)
		if err != nil {
			a.logger.Warn("session log disabled", "err", err)
		} else {
			a.logger.Debug("session log", "path", sl.LogPath)
			recorders = append(recorders, sl)
			closeFn = func() {
				if err := sl.Close(); err != nil {
					a.logger.Warn("closing session log", "err", err)
				}
			}
		}
	}
	return logging.NewMulti(recorders...), closeFn
}

func (a *app) newController(s *stores, events session.EventSink) (*session.Controller, error) {
	return session.New(session.Options{
		Users:    s.users,
		Tasks:    s.tasks,
		Prompter: console.NewPrompter(a.io.In, a.io.Out),
		Reports: session.ReportPaths{
			TaskOverview: a.cfg.TaskOverviewPath(),
			UserOverview: a.cfg.UserOverviewPath(),
		},
		Events: events,
		Now:    a.now,
	})
}

// interruptible runs fn until it returns or ctx is done. Console reads
// cannot be canceled, so an interrupted fn is abandoned.
func interruptible(ctx context.Context, fn func() error) error {
	done := make(chan error, 1)
	go func() { done <- fn() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runCommand runs the interactive login and menu session.
func (a *app) runCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("taskman run", flag.ContinueOnError)
	fs.SetOutput(a.io.Err)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	s, err := a.openStores()
	if err != nil {
		return err
	}
	defer s.Close()

	events, closeEvents := a.events()
	defer closeEvents()

	ctrl, err := a.newController(s, events)
	if err != nil {
		return err
	}
	err = interruptible(ctx, func() error { return ctrl.Run(ctx) })
	if errors.Is(err, console.ErrClosed) {
		a.logger.Info("input closed, exiting")
		return nil
	}
	return err
}

// tuiCommand logs in on the console, then opens the read-only dashboard.
func (a *app) tuiCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("taskman tui", flag.ContinueOnError)
	fs.SetOutput(a.io.Err)
	interval := fs.Duration("interval", 2*time.Second, "Refresh interval (0 disables)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !ui.IsTTY(a.io.Out) {
		return fmt.Errorf("tui requires a TTY")
	}

	s, err := a.openStores()
	if err != nil {
		return err
	}
	defer s.Close()

	events, closeEvents := a.events()
	defer closeEvents()

	ctrl, err := a.newController(s, events)
	if err != nil {
		return err
	}
	var entry users.Entry
	err = interruptible(ctx, func() error {
		var authErr error
		entry, authErr = ctrl.Authenticate(ctx)
		return authErr
	})
	if err != nil {
		return err
	}

	load := func() (ui.Snapshot, error) {
		if err := s.users.Reload(); err != nil {
			return ui.Snapshot{}, err
		}
		if err := s.tasks.Reload(); err != nil {
			return ui.Snapshot{}, err
		}
		return ui.Snapshot{Tasks: s.tasks.All(), Users: s.users.Entries()}, nil
	}
	return ui.RunTUI(ctx, load,
		ui.WithUser(entry.Username),
		ui.WithSource(a.recordLocation()),
		ui.WithInterval(*interval),
		ui.WithClock(a.now),
	)
}

// reportCommand logs in as an admin, regenerates the report documents and
// exports the report.
func (a *app) reportCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("taskman report", flag.ContinueOnError)
	fs.SetOutput(a.io.Err)
	format := fs.String("format", report.FormatText, "Export format ("+strings.Join(report.Formats(), "|")+")")
	out := fs.String("o", "", "Write the export to this file instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if strings.EqualFold(*format, report.FormatPDF) && *out == "" {
		return fmt.Errorf("pdf export requires -o")
	}

	s, err := a.openStores()
	if err != nil {
		return err
	}
	defer s.Close()

	events, closeEvents := a.events()
	defer closeEvents()

	ctrl, err := a.newController(s, events)
	if err != nil {
		return err
	}
	var entry users.Entry
	err = interruptible(ctx, func() error {
		var authErr error
		entry, authErr = ctrl.Authenticate(ctx)
		return authErr
	})
	if err != nil {
		return err
	}
	if !entry.IsAdmin() {
		return fmt.Errorf("report: %s: %w", entry.Username, todo.ErrUnauthorizedUser)
	}

	r := report.Generate(s.tasks.All(), s.users.Entries(), a.now())
	if err := report.WriteFiles(r, a.cfg.TaskOverviewPath(), a.cfg.UserOverviewPath()); err != nil {
		return err
	}
	data, err := report.Export(r, *format)
	if err != nil {
		return err
	}
	_ = events.Record(logging.Event{Kind: logging.EventReports, User: entry.Username, Detail: strings.ToLower(*format)})

	if *out == "" {
		fmt.Fprintln(a.io.Out)
		_, err := a.io.Out.Write(data)
		return err
	}
	if err := os.WriteFile(*out, data, 0644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	fmt.Fprintf(a.io.Out, "\nReport written to %s\n", *out)
	return nil
}

// tailCommand tails the latest session log, or lists session logs.
func (a *app) tailCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("taskman tail", flag.ContinueOnError)
	fs.SetOutput(a.io.Err)
	follow := fs.Bool("f", false, "Follow the log (like tail -f)")
	fs.BoolVar(follow, "follow", false, "Follow the log (like tail -f)")
	n := fs.Int("n", 0, "Number of lines to show (0 = all)")
	list := fs.Bool("list", false, "List session logs, newest first")
	if err := fs.Parse(args); err != nil {
		return err
	}

	logDir, err := logging.FindLogDir(a.cfg.LogDir, a.cfg.DataDir)
	if err != nil {
		return fmt.Errorf("finding log directory: %w", err)
	}

	if *list {
		sessions, err := logging.FindSessions(logDir)
		if err != nil {
			return err
		}
		if len(sessions) == 0 {
			fmt.Fprintln(a.io.Out, "No log files found.")
			return nil
		}
		for _, sf := range sessions {
			fmt.Fprintf(a.io.Out, "%s  %s  %6d bytes\n", sf.SessionID, sf.ModTime.Format(time.DateTime), sf.Size)
		}
		return nil
	}

	logPath, err := logging.FindLatestLog(logDir)
	if err != nil {
		return fmt.Errorf("finding latest log: %w", err)
	}
	if logPath == "" {
		fmt.Fprintln(a.io.Out, "No log files found.")
		return nil
	}

	fmt.Fprintf(a.io.Out, "Tailing: %s\n", logPath)
	if *follow {
		fmt.Fprintln(a.io.Out, "(Ctrl+C to stop)")
	}
	fmt.Fprintln(a.io.Out)

	return logging.TailLog(ctx, a.io.Out, logPath, *n, *follow)
}

// lsCommand lists tasks grouped by completion, without logging in.
func (a *app) lsCommand(args []string) error {
	fs := flag.NewFlagSet("taskman ls", flag.ContinueOnError)
	fs.SetOutput(a.io.Err)
	statusFilter := fs.String("status", "", "Filter by status (pending|completed|overdue)")
	user := fs.String("user", "", "Only show tasks assigned to this user")
	verbose := fs.Bool("v", false, "Show full task details")
	if err := fs.Parse(args); err != nil {
		return err
	}
	remaining := fs.Args()
	if len(remaining) == 1 && *statusFilter == "" {
		*statusFilter = remaining[0]
		remaining = nil
	}
	if len(remaining) > 0 {
		return fmt.Errorf("unexpected arguments: %v", remaining)
	}
	switch *statusFilter {
	case "", "pending", "completed", "overdue":
	default:
		return fmt.Errorf("unknown status %q (expected pending|completed|overdue)", *statusFilter)
	}

	s, err := a.openStores()
	if err != nil {
		return err
	}
	defer s.Close()

	today := a.now()
	var listed []store.Indexed
	for i, t := range s.tasks.All() {
		if *user != "" && !t.OwnedBy(*user) {
			continue
		}
		listed = append(listed, store.Indexed{Index: i, Task: t})
	}

	if *statusFilter == "" {
		a.printTasksByStatus("pending", listed, today, *verbose)
		a.printTasksByStatus("completed", listed, today, *verbose)
		return nil
	}
	a.printTaskList(filterStatus(listed, *statusFilter, today), today, *verbose)
	return nil
}

func filterStatus(tasks []store.Indexed, status string, today time.Time) []store.Indexed {
	var out []store.Indexed
	for _, it := range tasks {
		t := it.Task
		switch status {
		case "pending":
			if t.Completed {
				continue
			}
		case "completed":
			if !t.Completed {
				continue
			}
		case "overdue":
			if !t.IsOverdue(today) {
				continue
			}
		}
		out = append(out, it)
	}
	return out
}

// printTasksByStatus prints one status group with its count.
func (a *app) printTasksByStatus(status string, tasks []store.Indexed, today time.Time, verbose bool) {
	matching := filterStatus(tasks, status, today)
	fmt.Fprintf(a.io.Out, "%s (%d):\n", status, len(matching))
	if len(matching) == 0 {
		fmt.Fprintln(a.io.Out, "  (none)")
	} else {
		a.printTaskList(matching, today, verbose)
	}
	fmt.Fprintln(a.io.Out)
}

func (a *app) printTaskList(tasks []store.Indexed, today time.Time, verbose bool) {
	for _, it := range tasks {
		a.printTask(it, today, verbose)
	}
}

func (a *app) printTask(it store.Indexed, today time.Time, verbose bool) {
	if verbose {
		fmt.Fprintln(a.io.Out, it.Task.FormatDisplay(it.Index))
		return
	}
	marker := ""
	if it.Task.IsOverdue(today) {
		marker = " [overdue]"
	}
	fmt.Fprintf(a.io.Out, "  %d. %s (%s, due %s)%s\n",
		it.Index, it.Task.Title, it.Task.Username, todo.FormatDate(it.Task.DueDate), marker)
}

// versionCommand prints version information.
func versionCommand(w io.Writer) error {
	fmt.Fprintf(w, "taskman version %s\n", Version)
	return nil
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "Taskman - A small multi-user task manager for the terminal")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  taskman [options] [command] [command options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  run           Log in and use the interactive menu (default command)")
	fmt.Fprintln(w, "  tui           Log in and open the read-only task dashboard")
	fmt.Fprintln(w, "  report        Log in as an admin, regenerate and export the reports")
	fmt.Fprintln(w, "  doctor        Check config and records")
	fmt.Fprintln(w, "  tail          Tail the latest session log")
	fmt.Fprintln(w, "  ls [status]   List tasks by status")
	fmt.Fprintln(w, "  config        Print an example config file")
	fmt.Fprintln(w, "  version       Show version information")
	fmt.Fprintln(w, "  help          Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Tui Options (use with 'tui' command):")
	fmt.Fprintln(w, "  -interval duration")
	fmt.Fprintln(w, "        Refresh interval, 0 disables (default 2s)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Report Options (use with 'report' command):")
	fmt.Fprintln(w, "  -format string")
	fmt.Fprintf(w, "        Export format (%s) (default \"text\")\n", strings.Join(report.Formats(), "|"))
	fmt.Fprintln(w, "  -o string")
	fmt.Fprintln(w, "        Write the export to this file instead of stdout (required for pdf)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Doctor Options (use with 'doctor' command):")
	fmt.Fprintln(w, "  -v    Show every config value and where it came from")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Tail Options (use with 'tail' command):")
	fmt.Fprintln(w, "  -f, --follow")
	fmt.Fprintln(w, "        Follow the log (like tail -f)")
	fmt.Fprintln(w, "  -n int")
	fmt.Fprintln(w, "        Number of lines to show (0 = all)")
	fmt.Fprintln(w, "  -list")
	fmt.Fprintln(w, "        List session logs, newest first")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Ls Options (use with 'ls' command):")
	fmt.Fprintln(w, "  -status string")
	fmt.Fprintln(w, "        Filter by status (pending|completed|overdue)")
	fmt.Fprintln(w, "  -user string")
	fmt.Fprintln(w, "        Only show tasks assigned to this user")
	fmt.Fprintln(w, "  -v    Show full task details")
}
