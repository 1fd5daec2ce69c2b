// Package store defines interfaces for task state storage.
// These interfaces abstract the underlying storage mechanism from
// the pipeline's core logic, so workers and the submission boundary
// depend only on the operations they need.
package store
