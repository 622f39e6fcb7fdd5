// Package report computes completion and overdue statistics and renders
// them as the task overview and user overview documents.
package report

import (
	"time"

	"github.com/nibzard/taskman/internal/todo"
	"github.com/nibzard/taskman/internal/users"
)

// Report holds aggregate and per-user task statistics.
// Percentages are fractions in [0, 1].
type Report struct {
	GeneratedOn    time.Time   `json:"generated_on" yaml:"generated_on"`
	TotalTasks     int         `json:"total_tasks" yaml:"total_tasks"`
	Completed      int         `json:"completed" yaml:"completed"`
	Uncompleted    int         `json:"uncompleted" yaml:"uncompleted"`
	Overdue        int         `json:"overdue" yaml:"overdue"`
	PctUncompleted float64     `json:"pct_uncompleted" yaml:"pct_uncompleted"`
	PctOverdue     float64     `json:"pct_overdue" yaml:"pct_overdue"`
	TotalUsers     int         `json:"total_users" yaml:"total_users"`
	Users          []UserStats `json:"users" yaml:"users"`
}

// UserStats holds the statistics of one user.
type UserStats struct {
	Username       string  `json:"username" yaml:"username"`
	Tasks          int     `json:"tasks" yaml:"tasks"`
	Completed      int     `json:"completed" yaml:"completed"`
	Uncompleted    int     `json:"uncompleted" yaml:"uncompleted"`
	Overdue        int     `json:"overdue" yaml:"overdue"`
	PctOfTotal     float64 `json:"pct_of_total" yaml:"pct_of_total"`
	PctCompleted   float64 `json:"pct_completed" yaml:"pct_completed"`
	PctUncompleted float64 `json:"pct_uncompleted" yaml:"pct_uncompleted"`
	PctOverdue     float64 `json:"pct_overdue" yaml:"pct_overdue"`
}

// Generate computes the report for tasks and the known credential entries
// as of today. Every known user gets a row, even with zero tasks. Owners
// missing from entries are appended after the known users.
//
// A task that is completed is never counted as overdue.
func Generate(tasks []todo.Task, entries []users.Entry, today time.Time) Report {
	today = todo.DateOf(today)
	r := Report{
		GeneratedOn: today,
		TotalTasks:  len(tasks),
		TotalUsers:  len(entries),
	}

	rows := make([]UserStats, 0, len(entries))
	index := make(map[string]int, len(entries))
	for _, e := range entries {
		if _, ok := index[e.Username]; ok {
			continue
		}
		index[e.Username] = len(rows)
		rows = append(rows, UserStats{Username: e.Username})
	}

	for i := range tasks {
		t := &tasks[i]
		idx, ok := index[t.Username]
		if !ok {
			idx = len(rows)
			index[t.Username] = idx
			rows = append(rows, UserStats{Username: t.Username})
		}
		row := &rows[idx]
		row.Tasks++

		if t.Completed {
			r.Completed++
			row.Completed++
		} else if t.IsOverdue(today) {
			r.Overdue++
			row.Overdue++
		}
	}

	r.Uncompleted = r.TotalTasks - r.Completed
	r.PctUncompleted = ratio(r.Uncompleted, r.TotalTasks)
	r.PctOverdue = ratio(r.Overdue, r.TotalTasks)

	for i := range rows {
		row := &rows[i]
		row.Uncompleted = row.Tasks - row.Completed
		row.PctOfTotal = ratio(row.Tasks, r.TotalTasks)
		if row.Tasks > 0 {
			row.PctCompleted = ratio(row.Completed, row.Tasks)
			row.PctUncompleted = 1 - row.PctCompleted
			row.PctOverdue = ratio(row.Overdue, row.Tasks)
		}
	}
	r.Users = rows

	return r
}

// ratio divides n by d, treating a zero denominator as 0.
func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}
