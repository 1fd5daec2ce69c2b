// Package events provides types and interfaces for publishing analysis
// lifecycle events.
//
// The pipeline emits an AnalysisEvent whenever a task reaches a terminal
// state. Handlers registered with an EventEmitter (for example the Kafka
// publisher) receive those events without the pipeline knowing about them.
//
// The primary components are:
// - AnalysisEvent: a lifecycle change of one analysis task
// - EventHandler: interface for components that can handle events
// - EventEmitter: interface for components that can emit events
package events
