// Package testutils provides helpers shared by tests across loglens:
// a memory-backed slog handler for asserting log output and sample log
// fixtures in the format the parser accepts.
package testutils
