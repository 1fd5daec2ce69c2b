// Package analysis defines the Analyzer boundary used by workers to
// summarize parsed logs, along with the pieces shared by its
// implementations: prompt rendering, an offline LocalAnalyzer and a
// Limiter that caps concurrent outbound calls. The Gemini-backed
// implementation lives in internal/platform/gemini.
package analysis
