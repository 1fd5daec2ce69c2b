// Package service contains the application-specific use cases.
// It is the single submission and query boundary for analysis tasks, shared
// by every delivery mechanism (the HTTP API and the Kafka ingest consumer).
//
// Key components:
//
// 1. AnalysisService:
//   - Validates submitted log text before any task is created
//   - Hands accepted submissions to the task runner
//   - Looks up task records by ID
//
// 2. Error Handling:
//   - Translates store and queue errors to service sentinel errors
//   - Wraps unexpected errors in AnalysisServiceError with operation context
//
// The service layer depends on domain types and the task runner interface,
// never on specific infrastructure implementations.
package service
