package session

import "strings"

// Command is a menu token.
type Command string

const (
	CmdRegister Command = "r"
	CmdAddTask  Command = "a"
	CmdViewAll  Command = "va"
	CmdViewMine Command = "vm"
	CmdGenerate Command = "gr"
	CmdDisplay  Command = "ds"
	CmdExit     Command = "e"
)

type menuItem struct {
	cmd   Command
	label string
	admin bool
}

var menu = []menuItem{
	{CmdRegister, "Registering a user", false},
	{CmdAddTask, "Adding a task", false},
	{CmdViewAll, "View all tasks", false},
	{CmdViewMine, "View my task", false},
	{CmdGenerate, "Generate reports", true},
	{CmdDisplay, "Display statistics", true},
	{CmdExit, "Exit", false},
}

// Allowed reports whether the logged-in user may run cmd.
func (c *Controller) Allowed(cmd Command) bool {
	for _, item := range menu {
		if item.cmd == cmd {
			return !item.admin || c.user.IsAdmin()
		}
	}
	return false
}

// MenuText returns the menu prompt for the logged-in user's role.
func (c *Controller) MenuText() string {
	var b strings.Builder
	b.WriteString("Please select one of the following options below:\n")
	for _, item := range menu {
		if item.admin && !c.user.IsAdmin() {
			continue
		}
		b.WriteString("        ")
		b.WriteString(string(item.cmd))
		b.WriteString(" - ")
		b.WriteString(item.label)
		b.WriteString("\n")
	}
	b.WriteString("        : ")
	return b.String()
}
