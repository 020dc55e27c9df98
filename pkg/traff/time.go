package traff

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// ISO 8601 timestamp with a permissive time zone grammar: Z, ±HH, ±HH:MM or
// ±HHMM are all accepted, as is a missing zone (treated as UTC).
var iso8601Regex = regexp.MustCompile(
	`([0-9]{4})-([0-9]{2})-([0-9]{2})T([0-9]{2}):([0-9]{2}):([0-9]{2}(\.[0-9]*)?)(Z|(([+-][0-9]{2})(:?([0-9]{2}))?))?`)

// ParseIsoTime parses a TraFF timestamp. A failure is reported as an error
// value, never a panic.
func ParseIsoTime(timeString string) (time.Time, error) {
	match := iso8601Regex.FindStringSubmatch(timeString)
	if match == nil {
		return time.Time{}, fmt.Errorf("not a valid ISO 8601 timestamp: %q", timeString)
	}

	year, _ := strconv.Atoi(match[1])
	month, _ := strconv.Atoi(match[2])
	day, _ := strconv.Atoi(match[3])
	hour, _ := strconv.Atoi(match[4])
	minute, _ := strconv.Atoi(match[5])
	seconds, _ := strconv.ParseFloat(match[6], 64)

	offsetSeconds := 0
	if match[10] != "" {
		offsetHours, _ := strconv.Atoi(match[10])
		offsetMinutes := 0
		if match[12] != "" {
			offsetMinutes, _ = strconv.Atoi(match[12])
		}
		if offsetHours < 0 {
			offsetMinutes = -offsetMinutes
		}
		offsetSeconds = offsetHours*3600 + offsetMinutes*60
	}

	second := int(seconds + 0.5)
	result := time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC)
	return result.Add(-time.Duration(offsetSeconds) * time.Second), nil
}

// FormatIsoTime renders a timestamp the way TraFF documents carry it, in UTC.
func FormatIsoTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}

// Valid duration formats: 01:30 (hh:mm), 1 h, 30 min.
var durationRegex = regexp.MustCompile(`(([0-9]+):([0-9]{2}))|(([0-9]+) *h)|(([0-9]+) *min)`)

// ParseDurationMins parses a TraFF duration quantifier into minutes.
func ParseDurationMins(durationString string) (int, error) {
	match := durationRegex.FindStringSubmatch(durationString)
	if match == nil {
		return 0, fmt.Errorf("not a valid duration: %q", durationString)
	}

	switch {
	case match[2] != "" && match[3] != "":
		hours, _ := strconv.Atoi(match[2])
		minutes, _ := strconv.Atoi(match[3])
		return hours*60 + minutes, nil
	case match[5] != "":
		hours, _ := strconv.Atoi(match[5])
		return hours * 60, nil
	case match[7] != "":
		minutes, _ := strconv.Atoi(match[7])
		return minutes, nil
	}
	return 0, fmt.Errorf("not a valid duration: %q", durationString)
}

// FormatDurationMins renders a duration in minutes as hh:mm.
func FormatDurationMins(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
