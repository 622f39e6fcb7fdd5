// Package todo defines tasks, their update rules, and the line format
// used to persist them.
//
// The task record (tasks.txt) holds one task per line:
//
//	alice;Write report;Quarterly numbers;2024-03-01;2024-02-10;No
//
// Fields, in order:
//
//   - username: owner of the task
//   - title
//   - description
//   - due_date: YYYY-MM-DD
//   - assigned_date: YYYY-MM-DD, set when the task is created
//   - completed: "Yes" or "No"
//
// # Completion
//
// A completed task is locked. Apply rejects every mutation on it with
// ErrTaskLocked and leaves all fields unchanged.
//
// # Overdue
//
// A task is overdue when it is not completed and its due date is
// strictly before the current calendar date.
//
// # File Format
//
// When writing task records, the package uses:
//   - ';' as the field separator
//   - '\n' between records
//   - no trailing newline
package todo
