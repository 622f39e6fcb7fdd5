package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Percent formats a fraction with two decimals, e.g. 0.5 as "50.00%".
func Percent(f float64) string {
	return fmt.Sprintf("%.2f%%", f*100)
}

// TaskOverview renders the aggregate summary document.
func TaskOverview(r Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total Number of Tasks: \t\t\t\t%d\n", r.TotalTasks)
	fmt.Fprintf(&b, "Total Number of Completed Tasks: \t%d\n", r.Completed)
	fmt.Fprintf(&b, "Total Number of Uncompleted Tasks: \t%d\n", r.Uncompleted)
	fmt.Fprintf(&b, "Total Number of Overdue Tasks: \t\t%d\n", r.Overdue)
	fmt.Fprintf(&b, "Percentage of Uncompleted Tasks \t%s\n", Percent(r.PctUncompleted))
	fmt.Fprintf(&b, "Percentage of Overdue Tasks \t\t%s", Percent(r.PctOverdue))
	return b.String()
}

// UserOverview renders the per-user summary document.
func UserOverview(r Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total Number of Users: \t%d\n", r.TotalUsers)
	fmt.Fprintf(&b, "Total Number of Tasks: \t%d", r.TotalTasks)
	for _, u := range r.Users {
		fmt.Fprintf(&b, "\n\nUsername: \t\t\t\t\t%s\n", u.Username)
		fmt.Fprintf(&b, "Number of User Tasks: \t\t%d\n", u.Tasks)
		fmt.Fprintf(&b, "Percentage of Total Tasks: \t%s\n", Percent(u.PctOfTotal))
		fmt.Fprintf(&b, "Percentage Completed: \t\t%s\n", Percent(u.PctCompleted))
		fmt.Fprintf(&b, "Percentage Uncompleted: \t%s\n", Percent(u.PctUncompleted))
		fmt.Fprintf(&b, "Percentage Overdue: \t\t%s", Percent(u.PctOverdue))
	}
	return b.String()
}

// Display renders both documents for the console. Tab runs are shortened
// because terminals expand tabs wider than most editors.
func Display(r Report) string {
	var b strings.Builder
	b.WriteString("\nTASK OVERVIEW:\n--------------\n")
	b.WriteString(strings.ReplaceAll(TaskOverview(r), "\t\t\t\t", "\t\t\t"))
	b.WriteString("\n\nUSER OVERVIEW:\n--------------\n")
	b.WriteString(strings.ReplaceAll(UserOverview(r), "\t\t\t\t", "\t\t"))
	b.WriteString("\n")
	return b.String()
}

// WriteFiles writes the task overview and user overview documents,
// replacing any previous contents.
func WriteFiles(r Report, taskPath, userPath string) error {
	if err := writeDocument(taskPath, TaskOverview(r)); err != nil {
		return fmt.Errorf("write task overview: %w", err)
	}
	if err := writeDocument(userPath, UserOverview(r)); err != nil {
		return fmt.Errorf("write user overview: %w", err)
	}
	return nil
}

func writeDocument(path, content string) error {
	if path == "" {
		return fmt.Errorf("document path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0644)
}
