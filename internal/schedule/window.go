package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"nearby-activity-backend/internal/models"
)

// Slot describes the next qualifying availability window
type Slot struct {
	Label     string `json:"label"`
	StartText string `json:"start_text"`
}

// validWindow reports whether a day entry counts as a real window. A
// missing bound, start == end, or a "0:00"/"00:00" bound all invalidate
// the entry; the zero-value guard keeps an uninitialized record from
// reading as a real midnight boundary.
func validWindow(w models.Window) bool {
	if w.Start == "" || w.End == "" {
		return false
	}
	if w.Start == w.End {
		return false
	}
	for _, v := range []string{w.Start, w.End} {
		if v == "0:00" || v == "00:00" {
			return false
		}
	}
	return true
}

func dayKey(t time.Time) string {
	return strings.ToLower(t.Weekday().String())
}

func clock(t time.Time) string {
	return t.Format("15:04")
}

// minutesOf converts "HH:MM" (or "H:MM") to minutes since midnight.
func minutesOf(hhmm string) (int, bool) {
	parts := strings.SplitN(hhmm, ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

// ValidClock reports whether s is a parseable 24-hour "HH:MM" value.
// Used at the storage boundary to reject malformed schedule entries.
func ValidClock(s string) bool {
	_, ok := minutesOf(s)
	return ok
}

// AvailableAt reports whether the schedule has t inside today's window.
// Windows whose end reads earlier than their start (e.g. 22:00-02:00)
// wrap past midnight: the early-morning hours up to the end bound count
// as part of that day's window.
func AvailableAt(s models.WeeklySchedule, t time.Time) bool {
	w, ok := s[dayKey(t)]
	if !ok || !validWindow(w) {
		return false
	}
	now := clock(t)
	if w.End < w.Start {
		return now >= w.Start || now <= w.End
	}
	return now >= w.Start && now <= w.End
}

// AvailableNow is AvailableAt for the current instant.
func AvailableNow(s models.WeeklySchedule) bool {
	return AvailableAt(s, time.Now())
}

// RemainingToday returns a human "Xh Ym left" for the time between t and
// today's window end, or false when the window is invalid, not yet open,
// or already closed. Wrapped windows count through midnight.
func RemainingToday(s models.WeeklySchedule, t time.Time) (string, bool) {
	w, ok := s[dayKey(t)]
	if !ok || !validWindow(w) {
		return "", false
	}
	nowMin := t.Hour()*60 + t.Minute()
	startMin, ok1 := minutesOf(w.Start)
	endMin, ok2 := minutesOf(w.End)
	if !ok1 || !ok2 {
		return "", false
	}

	var remaining int
	switch {
	case endMin < startMin && nowMin >= startMin:
		remaining = (24*60 - nowMin) + endMin
	case endMin < startMin && nowMin <= endMin:
		remaining = endMin - nowMin
	case endMin >= startMin && nowMin >= startMin && nowMin <= endMin:
		remaining = endMin - nowMin
	default:
		return "", false
	}
	return formatRemaining(remaining), true
}

func formatRemaining(minutes int) string {
	h := minutes / 60
	m := minutes % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm left", h, m)
	}
	return fmt.Sprintf("%dm left", m)
}

// NextAvailable scans today through the next six days for the first valid
// window. Today only qualifies while its start has not yet passed.
func NextAvailable(s models.WeeklySchedule, t time.Time) (Slot, bool) {
	for i := 0; i < 7; i++ {
		day := t.AddDate(0, 0, i)
		w, ok := s[dayKey(day)]
		if !ok || !validWindow(w) {
			continue
		}
		if i == 0 && clock(t) >= w.Start {
			continue
		}
		slot := Slot{StartText: FormatAMPM(w.Start)}
		switch i {
		case 0:
			slot.Label = "Today"
		case 1:
			slot.Label = "Tomorrow"
		default:
			slot.Label = day.Weekday().String()
		}
		return slot, true
	}
	return Slot{}, false
}

// FormatAMPM renders a 24-hour "HH:MM" as 12-hour with AM/PM.
// "00:00" reads as "12:00 AM". Input that does not parse is returned
// unchanged.
func FormatAMPM(hhmm string) string {
	total, ok := minutesOf(hhmm)
	if !ok {
		return hhmm
	}
	h := total / 60
	m := total % 60
	suffix := "AM"
	switch {
	case h == 0:
		h = 12
	case h == 12:
		suffix = "PM"
	case h > 12:
		h -= 12
		suffix = "PM"
	}
	return fmt.Sprintf("%d:%02d %s", h, m, suffix)
}
