// Package store keeps the in-memory credential and task stores and the
// backends that persist them.
//
// Both stores follow a snapshot contract: every successful mutation
// rewrites the complete record through its backend before the in-memory
// state changes, so the durable record always matches a full, consistent
// snapshot. A failed write leaves the in-memory state unchanged.
//
// # Backends
//
//   - TextFiles: user.txt and tasks.txt, the default line-oriented records
//   - SQLite: a single database file with users and tasks tables
//   - Memory: an in-process backend for tests and dry runs
package store
