package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// LogLevel is the severity of a log entry. Levels are ordered so that
// comparisons like "at least Error" work with the usual operators.
type LogLevel int

// Severity levels in ascending order. LogLevelInfo is the zero value and
// is what unrecognized severity tokens resolve to.
const (
	LogLevelInfo LogLevel = iota
	LogLevelWarning
	LogLevelError
	LogLevelCritical
)

var logLevelNames = [...]string{
	LogLevelInfo:     "Info",
	LogLevelWarning:  "Warning",
	LogLevelError:    "Error",
	LogLevelCritical: "Critical",
}

// AllLogLevels returns every level in ascending order.
func AllLogLevels() []LogLevel {
	return []LogLevel{LogLevelInfo, LogLevelWarning, LogLevelError, LogLevelCritical}
}

// String returns the display name of the level.
func (l LogLevel) String() string {
	if l < LogLevelInfo || l > LogLevelCritical {
		return fmt.Sprintf("LogLevel(%d)", int(l))
	}
	return logLevelNames[l]
}

// IsValid reports whether l is one of the defined levels.
func (l LogLevel) IsValid() bool {
	return l >= LogLevelInfo && l <= LogLevelCritical
}

// AtLeast reports whether l is as severe as min or more.
func (l LogLevel) AtLeast(min LogLevel) bool {
	return l >= min
}

// MarshalText implements encoding.TextMarshaler, which also makes
// map[LogLevel]int serialize with level names as JSON object keys.
func (l LogLevel) MarshalText() ([]byte, error) {
	if !l.IsValid() {
		return nil, fmt.Errorf("%w: log level %d", ErrValidation, int(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unlike ParseLogLevel it
// rejects unknown names, since serialized data should only contain names
// this package produced.
func (l *LogLevel) UnmarshalText(text []byte) error {
	level, ok := LookupLogLevel(string(text))
	if !ok {
		return fmt.Errorf("%w: unknown log level %q", ErrValidation, string(text))
	}
	*l = level
	return nil
}

// LookupLogLevel matches s case-insensitively against the level names,
// ignoring surrounding whitespace.
func LookupLogLevel(s string) (LogLevel, bool) {
	token := strings.TrimSpace(s)
	for _, level := range AllLogLevels() {
		if strings.EqualFold(token, logLevelNames[level]) {
			return level, true
		}
	}
	return LogLevelInfo, false
}

// ParseLogLevel resolves a severity token to a level. Unrecognized tokens
// resolve to LogLevelInfo instead of failing.
func ParseLogLevel(s string) LogLevel {
	level, _ := LookupLogLevel(s)
	return level
}

// LogEntry is a single parsed log line.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     LogLevel  `json:"level"`
	Message   string    `json:"message"`
}

// ParsedLogs is the result of parsing a batch of raw log text.
//
// CountByLevel only contains levels that occurred at least once, and the
// sum of its values always equals len(Entries).
type ParsedLogs struct {
	Entries      []LogEntry       `json:"entries"`
	CountByLevel map[LogLevel]int `json:"count_by_level"`
}

// NewParsedLogs returns an empty ParsedLogs ready for Add.
func NewParsedLogs() *ParsedLogs {
	return &ParsedLogs{
		Entries:      make([]LogEntry, 0),
		CountByLevel: make(map[LogLevel]int),
	}
}

// Add appends an entry and updates the per-level count.
func (p *ParsedLogs) Add(entry LogEntry) {
	if p.CountByLevel == nil {
		p.CountByLevel = make(map[LogLevel]int)
	}
	p.Entries = append(p.Entries, entry)
	p.CountByLevel[entry.Level]++
}

// Total returns the number of parsed entries.
func (p *ParsedLogs) Total() int {
	return len(p.Entries)
}

// Count returns the number of entries at exactly the given level,
// or 0 when the level never occurred.
func (p *ParsedLogs) Count(level LogLevel) int {
	return p.CountByLevel[level]
}

// Filter returns the entries at min severity or above, in input order.
func (p *ParsedLogs) Filter(min LogLevel) []LogEntry {
	filtered := make([]LogEntry, 0, len(p.Entries))
	for _, entry := range p.Entries {
		if entry.Level.AtLeast(min) {
			filtered = append(filtered, entry)
		}
	}
	return filtered
}

// MostSevere returns up to limit entries ordered by descending severity.
// Entries of equal severity keep their input order.
func (p *ParsedLogs) MostSevere(limit int) []LogEntry {
	sorted := make([]LogEntry, len(p.Entries))
	copy(sorted, p.Entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Level > sorted[j].Level
	})
	if limit >= 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}
