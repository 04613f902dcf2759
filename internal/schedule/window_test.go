package schedule

import (
	"testing"
	"time"

	"nearby-activity-backend/internal/models"

	"github.com/stretchr/testify/assert"
)

// monday returns a fixed Monday at the given clock time
func monday(hour, min int) time.Time {
	return time.Date(2026, 8, 24, hour, min, 0, 0, time.UTC)
}

func TestAvailableAt(t *testing.T) {
	t.Run("inside window", func(t *testing.T) {
		s := models.WeeklySchedule{"monday": {Start: "09:00", End: "17:00"}}
		assert.True(t, AvailableAt(s, monday(12, 0)))
		assert.True(t, AvailableAt(s, monday(9, 0)))
		assert.True(t, AvailableAt(s, monday(17, 0)))
	})

	t.Run("outside window", func(t *testing.T) {
		s := models.WeeklySchedule{"monday": {Start: "09:00", End: "17:00"}}
		assert.False(t, AvailableAt(s, monday(8, 59)))
		assert.False(t, AvailableAt(s, monday(17, 1)))
	})

	t.Run("missing day", func(t *testing.T) {
		s := models.WeeklySchedule{"tuesday": {Start: "09:00", End: "17:00"}}
		assert.False(t, AvailableAt(s, monday(12, 0)))
	})

	t.Run("start equals end is invalid", func(t *testing.T) {
		s := models.WeeklySchedule{"monday": {Start: "09:00", End: "09:00"}}
		assert.False(t, AvailableAt(s, monday(9, 0)))
	})

	t.Run("zero-value bounds are invalid", func(t *testing.T) {
		for _, w := range []models.Window{
			{Start: "00:00", End: "00:00"},
			{Start: "0:00", End: "12:00"},
			{Start: "08:00", End: "00:00"},
			{Start: "", End: "17:00"},
			{Start: "09:00", End: ""},
		} {
			s := models.WeeklySchedule{"monday": w}
			assert.False(t, AvailableAt(s, monday(10, 0)), "window %+v", w)
		}
	})

	t.Run("overnight window wraps past midnight", func(t *testing.T) {
		s := models.WeeklySchedule{"monday": {Start: "22:00", End: "02:00"}}
		assert.True(t, AvailableAt(s, monday(23, 0)))
		assert.True(t, AvailableAt(s, monday(1, 30)))
		assert.False(t, AvailableAt(s, monday(12, 0)))
	})
}

func TestRemainingToday(t *testing.T) {
	t.Run("open window", func(t *testing.T) {
		s := models.WeeklySchedule{"monday": {Start: "09:00", End: "17:00"}}
		got, ok := RemainingToday(s, monday(15, 30))
		assert.True(t, ok)
		assert.Equal(t, "1h 30m left", got)
	})

	t.Run("under an hour", func(t *testing.T) {
		s := models.WeeklySchedule{"monday": {Start: "09:00", End: "17:00"}}
		got, ok := RemainingToday(s, monday(16, 45))
		assert.True(t, ok)
		assert.Equal(t, "15m left", got)
	})

	t.Run("window already closed", func(t *testing.T) {
		s := models.WeeklySchedule{"monday": {Start: "09:00", End: "17:00"}}
		_, ok := RemainingToday(s, monday(18, 0))
		assert.False(t, ok)
	})

	t.Run("window not yet open", func(t *testing.T) {
		s := models.WeeklySchedule{"monday": {Start: "09:00", End: "17:00"}}
		_, ok := RemainingToday(s, monday(8, 0))
		assert.False(t, ok)
	})

	t.Run("wrapped window counts through midnight", func(t *testing.T) {
		s := models.WeeklySchedule{"monday": {Start: "22:00", End: "02:00"}}
		got, ok := RemainingToday(s, monday(23, 0))
		assert.True(t, ok)
		assert.Equal(t, "3h 0m left", got)
	})

	t.Run("invalid window", func(t *testing.T) {
		s := models.WeeklySchedule{"monday": {Start: "00:00", End: "00:00"}}
		_, ok := RemainingToday(s, monday(12, 0))
		assert.False(t, ok)
	})
}

func TestNextAvailable(t *testing.T) {
	t.Run("today before start", func(t *testing.T) {
		s := models.WeeklySchedule{"monday": {Start: "18:00", End: "22:00"}}
		slot, ok := NextAvailable(s, monday(9, 0))
		assert.True(t, ok)
		assert.Equal(t, "Today", slot.Label)
		assert.Equal(t, "6:00 PM", slot.StartText)
	})

	t.Run("today already started, tomorrow qualifies", func(t *testing.T) {
		s := models.WeeklySchedule{
			"monday":  {Start: "09:00", End: "17:00"},
			"tuesday": {Start: "10:00", End: "16:00"},
		}
		slot, ok := NextAvailable(s, monday(12, 0))
		assert.True(t, ok)
		assert.Equal(t, "Tomorrow", slot.Label)
		assert.Equal(t, "10:00 AM", slot.StartText)
	})

	t.Run("later weekday name", func(t *testing.T) {
		s := models.WeeklySchedule{"friday": {Start: "19:00", End: "23:00"}}
		slot, ok := NextAvailable(s, monday(12, 0))
		assert.True(t, ok)
		assert.Equal(t, "Friday", slot.Label)
		assert.Equal(t, "7:00 PM", slot.StartText)
	})

	t.Run("nothing scheduled", func(t *testing.T) {
		_, ok := NextAvailable(models.WeeklySchedule{}, monday(12, 0))
		assert.False(t, ok)
	})

	t.Run("invalid entries are skipped", func(t *testing.T) {
		s := models.WeeklySchedule{
			"tuesday":   {Start: "00:00", End: "00:00"},
			"wednesday": {Start: "08:00", End: "12:00"},
		}
		slot, ok := NextAvailable(s, monday(12, 0))
		assert.True(t, ok)
		assert.Equal(t, "Wednesday", slot.Label)
	})
}

func TestFormatAMPM(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"00:00", "12:00 AM"},
		{"00:30", "12:30 AM"},
		{"09:05", "9:05 AM"},
		{"12:00", "12:00 PM"},
		{"13:45", "1:45 PM"},
		{"23:59", "11:59 PM"},
		{"garbage", "garbage"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatAMPM(tt.in))
		})
	}
}

func TestValidClock(t *testing.T) {
	assert.True(t, ValidClock("09:30"))
	assert.True(t, ValidClock("9:30"))
	assert.False(t, ValidClock("24:00"))
	assert.False(t, ValidClock("09:60"))
	assert.False(t, ValidClock("nine"))
}
