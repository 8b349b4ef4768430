// Package util provides shared utilities: lap-time parsing and formatting,
// and error aggregation.
package util

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ─── Lap Times ────────────────────────────────────────────────────────────────

// lapTimePattern accepts M:SS and M:SS.mmm (one to three fraction digits).
var lapTimePattern = regexp.MustCompile(`^(\d+):([0-5]\d)(?:\.(\d{1,3}))?$`)

// maxLapMinutes keeps minutes*60_000 plus 59_999 inside int64.
const maxLapMinutes = (math.MaxInt64 - 59_999) / 60_000

// ParseLapTime parses a lap time string into milliseconds.
// Returns +Inf for anything that is not M:SS or M:SS.mmm, and for minute
// counts too large to represent.
func ParseLapTime(s string) float64 {
	m := lapTimePattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return math.Inf(1)
	}
	minutes, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || minutes > maxLapMinutes {
		return math.Inf(1)
	}
	seconds, _ := strconv.ParseInt(m[2], 10, 64)
	var millis int64
	if m[3] != "" {
		frac := m[3] + strings.Repeat("0", 3-len(m[3]))
		millis, _ = strconv.ParseInt(frac, 10, 64)
	}
	return float64(minutes*60_000 + seconds*1_000 + millis)
}

// LapTimeValue interprets a decoded JSON value as a lap time in
// milliseconds. Numbers are taken as milliseconds, strings are parsed with
// ParseLapTime. Everything else is +Inf.
func LapTimeValue(v any) float64 {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || x < 0 {
			return math.Inf(1)
		}
		return x
	case int64:
		return LapTimeValue(float64(x))
	case int:
		return LapTimeValue(float64(x))
	case string:
		return ParseLapTime(x)
	default:
		return math.Inf(1)
	}
}

// FormatLapTime renders milliseconds as M:SS.mmm, or "—" for +Inf.
func FormatLapTime(ms float64) string {
	if math.IsInf(ms, 1) || math.IsNaN(ms) {
		return "—"
	}
	total := int64(math.Round(ms))
	return fmt.Sprintf("%d:%02d.%03d", total/60_000, (total/1_000)%60, total%1_000)
}

// ─── Error Helpers ────────────────────────────────────────────────────────────

// MultiError collects multiple errors and presents them as one.
type MultiError struct {
	Errors []error
}

func (m *MultiError) Add(err error) {
	if err != nil {
		m.Errors = append(m.Errors, err)
	}
}

func (m *MultiError) Err() error {
	if len(m.Errors) == 0 {
		return nil
	}
	return m
}

func (m *MultiError) Error() string {
	msgs := make([]string, len(m.Errors))
	for i, e := range m.Errors {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}
