// Package gemini provides an implementation of the analysis.Analyzer interface
// that uses Google's Gemini API to summarize parsed logs.
//
// This package is an infrastructure adapter, connecting the analysis pipeline
// to Google's external Gemini service without exposing the details of that
// service to the rest of the application.
//
// Key components:
//
// 1. Analyzer:
//   - Implements the analysis.Analyzer interface
//   - Renders prompts with analysis.PromptBuilder
//   - Sends them through the genai Models service
//
// 2. Response Processing:
//   - Extracts the text of the first candidate
//   - Rejects empty or malformed responses
//   - Detects content blocked by safety filters
//
// 3. Error Handling:
//   - Retries transient failures with exponential backoff and jitter
//   - Returns permanent failures immediately
//   - Honours context cancellation between and during attempts
package gemini
