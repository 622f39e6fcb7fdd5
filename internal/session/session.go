// Package session drives an interactive login and menu session over the
// credential and task stores.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nibzard/taskman/internal/console"
	"github.com/nibzard/taskman/internal/logging"
	"github.com/nibzard/taskman/internal/store"
	"github.com/nibzard/taskman/internal/todo"
	"github.com/nibzard/taskman/internal/users"
)

// State is the controller lifecycle state.
type State int

const (
	LoggedOut State = iota
	Authenticating
	MenuLoop
	Exited
)

func (s State) String() string {
	switch s {
	case LoggedOut:
		return "logged-out"
	case Authenticating:
		return "authenticating"
	case MenuLoop:
		return "menu"
	case Exited:
		return "exited"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// EventSink receives a record of every login and mutation.
type EventSink interface {
	Record(logging.Event) error
}

// ReportPaths names the files written by report commands.
type ReportPaths struct {
	TaskOverview string
	UserOverview string
}

// Options configures a Controller.
type Options struct {
	Users    *store.Users
	Tasks    *store.Tasks
	Prompter *console.Prompter
	Reports  ReportPaths
	Events   EventSink
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Controller owns the stores for the duration of one session.
type Controller struct {
	users   *store.Users
	tasks   *store.Tasks
	p       *console.Prompter
	reports ReportPaths
	events  EventSink
	now     func() time.Time

	state State
	user  users.Entry
}

// New returns a logged-out controller.
func New(opts Options) (*Controller, error) {
	if opts.Users == nil || opts.Tasks == nil {
		return nil, fmt.Errorf("session: users and tasks stores are required")
	}
	if opts.Prompter == nil {
		return nil, fmt.Errorf("session: prompter is required")
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Controller{
		users:   opts.Users,
		tasks:   opts.Tasks,
		p:       opts.Prompter,
		reports: opts.Reports,
		events:  opts.Events,
		now:     now,
	}, nil
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	return c.state
}

// User returns the authenticated entry. It is zero until login succeeds.
func (c *Controller) User() users.Entry {
	return c.user
}

// Authenticate prompts for credentials until they match an entry.
func (c *Controller) Authenticate(ctx context.Context) (users.Entry, error) {
	c.state = Authenticating
	for {
		if err := ctx.Err(); err != nil {
			return users.Entry{}, err
		}
		c.p.Say("LOGIN")
		name, err := c.p.Line("Username: ")
		if err != nil {
			return users.Entry{}, err
		}
		password, err := c.p.Line("Password: ")
		if err != nil {
			return users.Entry{}, err
		}

		entry, ok := c.users.Lookup(name)
		switch {
		case !ok:
			c.p.Say("\nUser does not exist")
			c.record(logging.Event{Kind: logging.EventLoginFailed, User: name, Detail: "unknown user"})
		case entry.Password != password:
			c.p.Say("\nWrong password")
			c.record(logging.Event{Kind: logging.EventLoginFailed, User: name, Detail: "wrong password"})
		default:
			c.p.Say("\nLogin Successful!")
			c.user = entry
			c.state = MenuLoop
			c.record(logging.Event{Kind: logging.EventLogin, User: name})
			return entry, nil
		}
	}
}

// Run authenticates if needed, then serves menu commands until the user
// exits. It returns nil on exit and console.ErrClosed if input runs out.
func (c *Controller) Run(ctx context.Context) error {
	if c.state != MenuLoop {
		if _, err := c.Authenticate(ctx); err != nil {
			return err
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		c.p.Say("")
		choice, err := c.p.Line(c.MenuText())
		if err != nil {
			return err
		}

		exit, err := c.Dispatch(ctx, choice)
		if err != nil {
			if !errors.Is(err, todo.ErrInvalidInput) {
				return err
			}
			c.p.Sayf("\n%s", err)
			c.record(logging.Event{Kind: logging.EventInvalidInput, User: c.user.Username, Detail: err.Error()})
		}
		if exit {
			return nil
		}
	}
}

// Dispatch runs one menu command and reports whether the session ended.
func (c *Controller) Dispatch(ctx context.Context, choice string) (bool, error) {
	cmd := Command(strings.ToLower(choice))
	if !c.Allowed(cmd) {
		c.p.Say("\nInvalid choice. Please Try again")
		return false, nil
	}

	switch cmd {
	case CmdRegister:
		return false, c.register(ctx)
	case CmdAddTask:
		return false, c.addTask(ctx)
	case CmdViewAll:
		c.viewAll()
		return false, nil
	case CmdViewMine:
		return false, c.viewMine(ctx)
	case CmdGenerate:
		return false, c.generateReports(false)
	case CmdDisplay:
		return false, c.generateReports(true)
	case CmdExit:
		c.p.Say("\nYou are exiting the program. Goodbye.")
		c.state = Exited
		c.record(logging.Event{Kind: logging.EventExit, User: c.user.Username})
		return true, nil
	}
	return false, nil
}

func (c *Controller) record(event logging.Event) {
	if c.events == nil {
		return
	}
	if event.Time.IsZero() {
		event.Time = c.now()
	}
	// Event recording never interrupts a session.
	_ = c.events.Record(event)
}
