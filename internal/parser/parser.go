// Package parser turns raw log text into structured entries.
//
// The expected line format is:
//
//	[2025-11-23 10:15:30] ERROR: Database connection failed
//
// Lines that do not match are skipped; a single malformed line never aborts
// parsing of the rest of the input. All functions are stateless and safe for
// concurrent use.
package parser

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/phrazzld/loglens/internal/domain"
)

var (
	// ErrMalformedLine is returned when a line does not match the line grammar.
	ErrMalformedLine = errors.New("malformed log line")

	// ErrInvalidTimestamp is returned when the bracketed timestamp cannot be parsed.
	// It is always wrapped together with ErrMalformedLine.
	ErrInvalidTimestamp = errors.New("invalid timestamp")
)

// timestampLayouts are tried in order. Layouts without a zone are read as UTC.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
}

// Stats describes how a parse run went.
type Stats struct {
	Lines   int
	Parsed  int
	Skipped int
}

// Parse parses raw log text. Entries keep the order of their input lines and
// unparseable lines are dropped.
func Parse(raw string) *domain.ParsedLogs {
	logs, _ := ParseWithStats(raw)
	return logs
}

// ParseWithStats is Parse that also reports line counts. Blank lines count as
// lines and as skipped.
func ParseWithStats(raw string) (*domain.ParsedLogs, Stats) {
	logs := domain.NewParsedLogs()
	var stats Stats

	if raw == "" {
		return logs, stats
	}

	for _, line := range strings.Split(raw, "\n") {
		stats.Lines++

		entry, err := parseLineSafe(strings.TrimSuffix(line, "\r"))
		if err != nil {
			stats.Skipped++
			continue
		}

		logs.Add(entry)
		stats.Parsed++
	}

	return logs, stats
}

// parseLineSafe isolates each line so that nothing a single line contains can
// take down the whole run.
func parseLineSafe(line string) (entry domain.LogEntry, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrMalformedLine, r)
		}
	}()
	return ParseLine(line)
}

// ParseLine parses a single log line of the form "[timestamp] LEVEL: message".
//
// The text after the bracket is split on colons with empty segments dropped;
// the first segment is the level and the second is the message, so anything
// after a second colon is discarded. An unrecognized level token resolves to
// domain.LogLevelInfo.
func ParseLine(line string) (domain.LogEntry, error) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "[") {
		return domain.LogEntry{}, fmt.Errorf("%w: missing opening bracket", ErrMalformedLine)
	}

	end := strings.IndexByte(trimmed, ']')
	if end < 0 {
		return domain.LogEntry{}, fmt.Errorf("%w: missing closing bracket", ErrMalformedLine)
	}

	timestamp, err := parseTimestamp(trimmed[1:end])
	if err != nil {
		return domain.LogEntry{}, err
	}

	segments := splitSegments(trimmed[end+1:])
	if len(segments) < 2 {
		return domain.LogEntry{}, fmt.Errorf("%w: expected level and message separated by ':'", ErrMalformedLine)
	}

	levelToken := strings.TrimSpace(segments[0])
	message := strings.TrimSpace(segments[1])
	if levelToken == "" {
		return domain.LogEntry{}, fmt.Errorf("%w: missing level", ErrMalformedLine)
	}
	if message == "" {
		return domain.LogEntry{}, fmt.Errorf("%w: missing message", ErrMalformedLine)
	}

	return domain.LogEntry{
		Timestamp: timestamp,
		Level:     domain.ParseLogLevel(levelToken),
		Message:   message,
	}, nil
}

// splitSegments splits s on ':' and drops empty segments.
func splitSegments(s string) []string {
	parts := strings.Split(s, ":")
	segments := parts[:0]
	for _, part := range parts {
		if part != "" {
			segments = append(segments, part)
		}
	}
	return segments
}

func parseTimestamp(s string) (time.Time, error) {
	value := strings.TrimSpace(s)
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: %w: empty", ErrMalformedLine, ErrInvalidTimestamp)
	}

	for _, layout := range timestampLayouts {
		if ts, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return ts, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %w: %q", ErrMalformedLine, ErrInvalidTimestamp, value)
}
