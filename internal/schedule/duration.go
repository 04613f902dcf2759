package schedule

import (
	"strconv"
	"strings"
	"time"
)

const allDayMinutes = 1440

// ParseDuration interprets a free-form activity duration string.
// Recognized forms: the picker strings ("30 minutes", "1 hour" ...
// "4 hours", "All day"), "h"/"m"-suffixed values ("1.5h", "45m"),
// anything containing "hour"/"min" with a leading numeric token, and a
// bare number read as minutes. The second return is false when nothing
// numeric can be extracted; callers treat that as expired, never as
// always-active.
func ParseDuration(s string) (time.Duration, bool) {
	lower := strings.ToLower(strings.TrimSpace(s))
	if lower == "" {
		return 0, false
	}

	if strings.Contains(lower, "all day") {
		return allDayMinutes * time.Minute, true
	}

	if v, ok := suffixNumber(lower, "h"); ok {
		return minutesDuration(v * 60)
	}
	if v, ok := suffixNumber(lower, "m"); ok {
		return minutesDuration(v)
	}

	if strings.Contains(lower, "hour") {
		if v, ok := firstNumber(lower); ok {
			return minutesDuration(v * 60)
		}
		return 0, false
	}
	if strings.Contains(lower, "min") {
		if v, ok := firstNumber(lower); ok {
			return minutesDuration(v)
		}
		return 0, false
	}

	if v, err := strconv.ParseFloat(lower, 64); err == nil {
		return minutesDuration(v)
	}
	return 0, false
}

func suffixNumber(s, suffix string) (float64, bool) {
	if !strings.HasSuffix(s, suffix) {
		return 0, false
	}
	num := strings.TrimSpace(strings.TrimSuffix(s, suffix))
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func firstNumber(s string) (float64, bool) {
	for _, field := range strings.Fields(s) {
		if v, err := strconv.ParseFloat(field, 64); err == nil {
			return v, true
		}
	}
	return 0, false
}

func minutesDuration(minutes float64) (time.Duration, bool) {
	if minutes <= 0 {
		return 0, false
	}
	return time.Duration(minutes * float64(time.Minute)), true
}

// ExpiresAt converts a creation instant plus a duration string into an
// absolute expiry. false means no expiry is computable.
func ExpiresAt(createdAt time.Time, duration string) (time.Time, bool) {
	d, ok := ParseDuration(duration)
	if !ok {
		return time.Time{}, false
	}
	return createdAt.Add(d), true
}

// StillActive reports whether now is before expiry plus the grace
// buffer. The buffer keeps items from flickering out of feeds right at
// the boundary. An uncomputable expiry is not active.
func StillActive(createdAt time.Time, duration string, now time.Time, buffer time.Duration) bool {
	expiry, ok := ExpiresAt(createdAt, duration)
	if !ok {
		return false
	}
	return now.Before(expiry.Add(buffer))
}
