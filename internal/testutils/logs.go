package testutils

import (
	"fmt"
	"strings"
	"time"
)

// SampleLogLines is a small incident in the line format the parser expects.
// It yields two Info, one Warning, two Error and one Critical entry.
var SampleLogLines = []string{
	"[2025-11-23 10:15:30] ERROR: Database connection failed",
	"[2025-11-23 10:15:31] WARNING: Retry attempt 1",
	"[2025-11-23 10:15:35] ERROR: Connection timeout after 5 seconds",
	"[2025-11-23 10:15:40] INFO: Switching to backup database",
	"[2025-11-23 10:15:41] INFO: Connection restored",
	"[2025-11-23 10:16:00] CRITICAL: Data corruption detected",
}

// SampleLogs returns SampleLogLines joined with newlines.
func SampleLogs() string {
	return strings.Join(SampleLogLines, "\n")
}

// GenerateLogs builds n well-formed lines, one second apart, cycling
// through the four severity names.
func GenerateLogs(n int) string {
	levels := []string{"INFO", "WARNING", "ERROR", "CRITICAL"}
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	var b strings.Builder
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "[%s] %s: event %d",
			start.Add(time.Duration(i)*time.Second).Format("2006-01-02 15:04:05"),
			levels[i%len(levels)], i)
	}
	return b.String()
}
