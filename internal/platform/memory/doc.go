// Package memory provides process-local implementations of the store
// interfaces. Nothing here survives a restart.
package memory
