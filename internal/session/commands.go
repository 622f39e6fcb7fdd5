package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/nibzard/taskman/internal/logging"
	"github.com/nibzard/taskman/internal/report"
	"github.com/nibzard/taskman/internal/todo"
)

func (c *Controller) register(ctx context.Context) error {
	name, err := c.p.Line("New Username: ")
	if err != nil {
		return err
	}
	if c.users.Exists(name) {
		c.p.Say("\nUsername already exists. Please choose a different username.")
		return nil
	}

	password, err := c.p.Line("New Password: ")
	if err != nil {
		return err
	}
	confirm, err := c.p.Line("Confirm Password: ")
	if err != nil {
		return err
	}
	if password != confirm {
		c.p.Say("Passwords do not match")
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	entry, err := c.users.Register(name, password)
	if err != nil {
		if errors.Is(err, todo.ErrDuplicateUser) {
			c.p.Say("\nUsername already exists. Please choose a different username.")
			return nil
		}
		return err
	}
	c.p.Say("\nNew user added")
	c.record(logging.Event{Kind: logging.EventRegister, User: c.user.Username, Target: entry.Username, Detail: string(entry.Role)})
	return nil
}

func (c *Controller) addTask(ctx context.Context) error {
	assignee, err := c.p.Line("\nName of person assigned to task: ")
	if err != nil {
		return err
	}
	if !c.users.Exists(assignee) {
		c.p.Say("\nUser does not exist. Please enter a valid username")
		return nil
	}
	title, err := c.p.Line("\nTitle of Task: ")
	if err != nil {
		return err
	}
	description, err := c.p.Line("\nDescription of Task: ")
	if err != nil {
		return err
	}
	due, err := c.p.Date("\nDue date of task (YYYY-MM-DD): ")
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	index, err := c.tasks.Append(todo.New(assignee, title, description, due, c.now()))
	if err != nil {
		return err
	}
	c.p.Say("\nTask successfully added.")
	c.record(logging.Event{Kind: logging.EventTaskAdded, User: c.user.Username, Task: logging.TaskIndex(index), Target: assignee})
	return nil
}

func (c *Controller) viewAll() {
	all := c.tasks.All()
	if len(all) == 0 {
		c.p.Say("\nThere are no tasks to display.")
		return
	}
	for i := range all {
		c.p.Say(all[i].FormatDisplay(i))
	}
}

// viewMine lists the caller's tasks and walks them through editing one.
func (c *Controller) viewMine(ctx context.Context) error {
	mine := c.tasks.OwnedBy(c.user.Username)
	for _, it := range mine {
		c.p.Say(it.Task.FormatDisplay(it.Index))
	}
	if len(mine) == 0 {
		c.p.Say("\nYou have no tasks assigned to you.")
		return nil
	}

	index, err := c.selectTask(ctx)
	if err != nil || index == -1 {
		return err
	}

	task, err := c.tasks.At(index)
	if err != nil {
		return err
	}
	if task.Completed {
		c.p.Say("\nThis task is complete and cannot be edited.")
		return nil
	}

	complete, err := c.p.YesNo("\nWould you like to mark the task as complete? (y/n): ")
	if err != nil {
		return err
	}
	if complete {
		if ok, err := c.update(index, todo.MarkComplete()); !ok {
			return err
		}
		c.p.Say("\nTask successfully marked as complete.")
		c.record(logging.Event{Kind: logging.EventTaskCompleted, User: c.user.Username, Task: logging.TaskIndex(index)})
		return nil
	}

	reassign, err := c.p.YesNo("\nWould you like update the username? (y/n): ")
	if err != nil {
		return err
	}
	if reassign {
		name, err := c.p.Line("\nProvide updated username: ")
		if err != nil {
			return err
		}
		if !c.users.Exists(name) {
			c.p.Say("\nUsername not recognised. Exiting.")
			return nil
		}
		if ok, err := c.update(index, todo.Reassign(name)); !ok {
			return err
		}
		c.p.Say("\nTask username successfully updated.")
		c.record(logging.Event{Kind: logging.EventReassigned, User: c.user.Username, Task: logging.TaskIndex(index), Target: name})
	}

	reschedule, err := c.p.YesNo("\nWould you like update the due date? (y/n): ")
	if err != nil {
		return err
	}
	if reschedule {
		due, err := c.p.Date("\nProvide updated due date (YYYY-MM-DD): ")
		if err != nil {
			return err
		}
		if ok, err := c.update(index, todo.Reschedule(due)); !ok {
			return err
		}
		c.p.Say("\nTask due date successfully updated.")
		c.record(logging.Event{Kind: logging.EventRescheduled, User: c.user.Username, Task: logging.TaskIndex(index), Detail: todo.FormatDate(due)})
	}
	return nil
}

// selectTask prompts until the caller picks one of their own tasks or -1.
func (c *Controller) selectTask(ctx context.Context) (int, error) {
	for {
		if err := ctx.Err(); err != nil {
			return -1, err
		}
		n, err := c.p.Int("Select a task number to update, or input -1 to return to menu: ")
		if err != nil {
			return -1, err
		}
		if n == -1 {
			return -1, nil
		}
		task, err := c.tasks.At(n)
		if err != nil {
			c.p.Say("\nThis is not a valid task number.")
			continue
		}
		if !task.OwnedBy(c.user.Username) {
			c.p.Say("\nThis task is not assigned to you.")
			continue
		}
		return n, nil
	}
}

// update applies m and reports whether the edit was stored. A locked task
// is reported to the user and yields no error.
func (c *Controller) update(index int, m todo.Mutation) (bool, error) {
	if _, err := c.tasks.Update(index, m); err != nil {
		if errors.Is(err, todo.ErrTaskLocked) {
			c.p.Say("\nThis task is complete and cannot be edited.")
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (c *Controller) generateReports(display bool) error {
	r := report.Generate(c.tasks.All(), c.users.Entries(), c.now())
	if err := report.WriteFiles(r, c.reports.TaskOverview, c.reports.UserOverview); err != nil {
		return fmt.Errorf("generate reports: %w", err)
	}
	c.record(logging.Event{Kind: logging.EventReports, User: c.user.Username, Detail: fmt.Sprintf("%d tasks", r.TotalTasks)})
	if display {
		c.p.Say(report.Display(r))
		return nil
	}
	c.p.Say("\nReports generated.")
	return nil
}
