// Package domain contains the core entities of the log analysis pipeline:
// parsed log entries and their severity levels, and the analysis result
// record that tracks a submitted batch of logs through its lifecycle.
// It has no dependencies on infrastructure or delivery mechanisms.
package domain
