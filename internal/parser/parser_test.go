package parser

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/loglens/internal/domain"
	"github.com/phrazzld/loglens/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_SingleErrorLine(t *testing.T) {
	t.Parallel()

	logs := Parse("[2025-11-23 10:15:30] ERROR: Database connection failed")

	require.Len(t, logs.Entries, 1)
	entry := logs.Entries[0]
	assert.Equal(t, time.Date(2025, 11, 23, 10, 15, 30, 0, time.UTC), entry.Timestamp)
	assert.Equal(t, domain.LogLevelError, entry.Level)
	assert.Equal(t, "Database connection failed", entry.Message)
	assert.Equal(t, map[domain.LogLevel]int{domain.LogLevelError: 1}, logs.CountByLevel)
}

func TestParse_SampleIncident(t *testing.T) {
	t.Parallel()

	logs := Parse(testutils.SampleLogs())

	require.Len(t, logs.Entries, 6)
	assert.Equal(t, map[domain.LogLevel]int{
		domain.LogLevelInfo:     2,
		domain.LogLevelWarning:  1,
		domain.LogLevelError:    2,
		domain.LogLevelCritical: 1,
	}, logs.CountByLevel)
	assert.Equal(t, "Retry attempt 1", logs.Entries[1].Message)
	assert.Equal(t, domain.LogLevelCritical, logs.Entries[5].Level)
}

func TestParse_CountInvariant(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"",
		"\n\n\n",
		testutils.SampleLogs(),
		testutils.GenerateLogs(101),
		"garbage\n[2025-11-23 10:15:30] DEBUG: unknown level\n[bad] ERROR: x\n[2025-11-23 10:15:30] ERROR",
	}

	for _, input := range inputs {
		logs := Parse(input)

		sum := 0
		for level, count := range logs.CountByLevel {
			assert.Positive(t, count, "level %s present with zero count", level)
			sum += count
		}
		assert.Equal(t, len(logs.Entries), sum)
	}
}

func TestParse_PreservesOrder(t *testing.T) {
	t.Parallel()

	logs := Parse(testutils.GenerateLogs(50))

	require.Len(t, logs.Entries, 50)
	for i := 1; i < len(logs.Entries); i++ {
		assert.True(t, logs.Entries[i].Timestamp.After(logs.Entries[i-1].Timestamp),
			"entry %d out of order", i)
	}
}

func TestParse_SkipsBadLine(t *testing.T) {
	t.Parallel()

	lines := append([]string{}, testutils.SampleLogLines[:3]...)
	lines = append(lines, "this line is not a log entry")
	lines = append(lines, testutils.SampleLogLines[3:]...)

	logs, stats := ParseWithStats(strings.Join(lines, "\n"))

	assert.Len(t, logs.Entries, 6)
	assert.Equal(t, Stats{Lines: 7, Parsed: 6, Skipped: 1}, stats)
}

func TestParse_CRLF(t *testing.T) {
	t.Parallel()

	logs := Parse(strings.Join(testutils.SampleLogLines, "\r\n"))

	require.Len(t, logs.Entries, 6)
	assert.Equal(t, "Database connection failed", logs.Entries[0].Message)
}

func TestParse_UnknownLevelIsInfo(t *testing.T) {
	t.Parallel()

	logs := Parse("[2025-11-23 10:15:30] DEBUG: cache warmed")

	require.Len(t, logs.Entries, 1)
	assert.Equal(t, domain.LogLevelInfo, logs.Entries[0].Level)
}

func TestParseLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		line      string
		wantErr   error
		wantLevel domain.LogLevel
		wantMsg   string
		wantTime  time.Time
	}{
		{
			name:      "message is the second colon segment",
			line:      "[2025-11-23 10:15:31] WARNING: Retry: attempt 1: backoff 2s",
			wantLevel: domain.LogLevelWarning,
			wantMsg:   "Retry",
			wantTime:  time.Date(2025, 11, 23, 10, 15, 31, 0, time.UTC),
		},
		{
			name:      "empty segments are dropped",
			line:      "[2025-11-23 10:15:31] ERROR::double colon",
			wantLevel: domain.LogLevelError,
			wantMsg:   "double colon",
			wantTime:  time.Date(2025, 11, 23, 10, 15, 31, 0, time.UTC),
		},
		{
			name:      "no space after bracket",
			line:      "[2025-11-23 10:15:31]error:tight",
			wantLevel: domain.LogLevelError,
			wantMsg:   "tight",
			wantTime:  time.Date(2025, 11, 23, 10, 15, 31, 0, time.UTC),
		},
		{
			name:      "rfc3339 with offset",
			line:      "[2025-11-23T10:15:31+02:00] CRITICAL: disk full",
			wantLevel: domain.LogLevelCritical,
			wantMsg:   "disk full",
			wantTime:  time.Date(2025, 11, 23, 8, 15, 31, 0, time.UTC),
		},
		{
			name:      "fractional seconds",
			line:      "[2025-11-23 10:15:31.250] INFO: tick",
			wantLevel: domain.LogLevelInfo,
			wantMsg:   "tick",
			wantTime:  time.Date(2025, 11, 23, 10, 15, 31, 250000000, time.UTC),
		},
		{name: "empty line", line: "", wantErr: ErrMalformedLine},
		{name: "no opening bracket", line: "2025-11-23 10:15:31] INFO: x", wantErr: ErrMalformedLine},
		{name: "no closing bracket", line: "[2025-11-23 10:15:31 INFO: x", wantErr: ErrMalformedLine},
		{name: "bad timestamp", line: "[yesterday] INFO: x", wantErr: ErrInvalidTimestamp},
		{name: "empty timestamp", line: "[] INFO: x", wantErr: ErrInvalidTimestamp},
		{name: "no separator", line: "[2025-11-23 10:15:31] INFO x", wantErr: ErrMalformedLine},
		{name: "empty message", line: "[2025-11-23 10:15:31] INFO:", wantErr: ErrMalformedLine},
		{name: "only colons after level", line: "[2025-11-23 10:15:31] INFO:::", wantErr: ErrMalformedLine},
		{name: "empty level", line: "[2025-11-23 10:15:31] : message", wantErr: ErrMalformedLine},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			entry, err := ParseLine(tc.line)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.wantLevel, entry.Level)
			assert.Equal(t, tc.wantMsg, entry.Message)
			assert.True(t, tc.wantTime.Equal(entry.Timestamp), "got %v", entry.Timestamp)
		})
	}
}

func TestParse_ConcurrentUse(t *testing.T) {
	t.Parallel()

	input := testutils.GenerateLogs(200)
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			logs := Parse(input)
			assert.Len(t, logs.Entries, 200)
			assert.Equal(t, 50, logs.Count(domain.LogLevelCritical))
		}()
	}

	wg.Wait()
}
