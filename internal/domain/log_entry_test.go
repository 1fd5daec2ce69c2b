package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  LogLevel
	}{
		{"Info", LogLevelInfo},
		{"INFO", LogLevelInfo},
		{"warning", LogLevelWarning},
		{" Error ", LogLevelError},
		{"CRITICAL", LogLevelCritical},
		{"Debug", LogLevelInfo},
		{"", LogLevelInfo},
		{"WARN", LogLevelInfo},
	}

	for _, tc := range tests {
		if got := ParseLogLevel(tc.input); got != tc.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestLookupLogLevel(t *testing.T) {
	t.Parallel()

	if level, ok := LookupLogLevel("error"); !ok || level != LogLevelError {
		t.Errorf("Expected (Error, true), got (%v, %v)", level, ok)
	}

	if level, ok := LookupLogLevel("TRACE"); ok || level != LogLevelInfo {
		t.Errorf("Expected (Info, false), got (%v, %v)", level, ok)
	}
}

func TestLogLevelOrdering(t *testing.T) {
	t.Parallel()

	if !LogLevelCritical.AtLeast(LogLevelError) {
		t.Error("Expected Critical to be at least Error")
	}
	if !LogLevelError.AtLeast(LogLevelError) {
		t.Error("Expected Error to be at least Error")
	}
	if LogLevelWarning.AtLeast(LogLevelError) {
		t.Error("Expected Warning not to be at least Error")
	}
	if LogLevel(42).IsValid() {
		t.Error("Expected LogLevel(42) to be invalid")
	}
	if got := LogLevel(42).String(); got != "LogLevel(42)" {
		t.Errorf("Expected LogLevel(42), got %s", got)
	}
}

func TestLogLevelTextRoundTrip(t *testing.T) {
	t.Parallel()

	counts := map[LogLevel]int{LogLevelError: 2, LogLevelInfo: 1}
	data, err := json.Marshal(counts)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if string(data) != `{"Error":2,"Info":1}` {
		t.Errorf("Unexpected JSON: %s", data)
	}

	var decoded map[LogLevel]int
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if decoded[LogLevelError] != 2 || decoded[LogLevelInfo] != 1 {
		t.Errorf("Unexpected decoded counts: %v", decoded)
	}

	var level LogLevel
	if err := level.UnmarshalText([]byte("Verbose")); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected ErrValidation, got %v", err)
	}
}

func TestParsedLogsAdd(t *testing.T) {
	t.Parallel()

	logs := NewParsedLogs()
	ts := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

	logs.Add(LogEntry{Timestamp: ts, Level: LogLevelError, Message: "first"})
	logs.Add(LogEntry{Timestamp: ts, Level: LogLevelInfo, Message: "second"})
	logs.Add(LogEntry{Timestamp: ts, Level: LogLevelError, Message: "third"})

	if logs.Total() != 3 {
		t.Errorf("Expected 3 entries, got %d", logs.Total())
	}
	if logs.Count(LogLevelError) != 2 {
		t.Errorf("Expected 2 errors, got %d", logs.Count(LogLevelError))
	}
	if logs.Count(LogLevelWarning) != 0 {
		t.Errorf("Expected 0 warnings, got %d", logs.Count(LogLevelWarning))
	}
	if _, ok := logs.CountByLevel[LogLevelWarning]; ok {
		t.Error("Expected unseen level to be absent from CountByLevel")
	}

	// Zero value is usable too.
	var empty ParsedLogs
	empty.Add(LogEntry{Level: LogLevelCritical})
	if empty.Count(LogLevelCritical) != 1 {
		t.Errorf("Expected 1 critical, got %d", empty.Count(LogLevelCritical))
	}
}

func TestParsedLogsFilterAndMostSevere(t *testing.T) {
	t.Parallel()

	logs := NewParsedLogs()
	logs.Add(LogEntry{Level: LogLevelInfo, Message: "a"})
	logs.Add(LogEntry{Level: LogLevelError, Message: "b"})
	logs.Add(LogEntry{Level: LogLevelCritical, Message: "c"})
	logs.Add(LogEntry{Level: LogLevelError, Message: "d"})
	logs.Add(LogEntry{Level: LogLevelWarning, Message: "e"})

	filtered := logs.Filter(LogLevelError)
	if len(filtered) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(filtered))
	}
	for i, want := range []string{"b", "c", "d"} {
		if filtered[i].Message != want {
			t.Errorf("Filter[%d] = %s, want %s", i, filtered[i].Message, want)
		}
	}

	severe := logs.MostSevere(3)
	if len(severe) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(severe))
	}
	for i, want := range []string{"c", "b", "d"} {
		if severe[i].Message != want {
			t.Errorf("MostSevere[%d] = %s, want %s", i, severe[i].Message, want)
		}
	}

	if logs.Entries[0].Message != "a" {
		t.Error("MostSevere must not reorder the original entries")
	}
}
