package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
		ok   bool
	}{
		{"30 minutes", 30 * time.Minute, true},
		{"1 hour", time.Hour, true},
		{"2 hours", 2 * time.Hour, true},
		{"3 hours", 3 * time.Hour, true},
		{"4 hours", 4 * time.Hour, true},
		{"All day", 1440 * time.Minute, true},
		{"all day long", 1440 * time.Minute, true},
		{"1.5h", 90 * time.Minute, true},
		{"2h", 2 * time.Hour, true},
		{"45m", 45 * time.Minute, true},
		{"1.5 hours", 90 * time.Minute, true},
		{"90", 90 * time.Minute, true},
		{"", 0, false},
		{"soon", 0, false},
		{"hours", 0, false},
		{"-5", 0, false},
		{"0", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseDuration(tt.in)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestExpiresAt(t *testing.T) {
	createdAt := time.Date(2026, 8, 24, 14, 0, 0, 0, time.UTC)

	t.Run("one hour", func(t *testing.T) {
		expiry, ok := ExpiresAt(createdAt, "1 hour")
		require.True(t, ok)
		assert.Equal(t, createdAt.Add(60*time.Minute), expiry)
	})

	t.Run("all day", func(t *testing.T) {
		expiry, ok := ExpiresAt(createdAt, "All day")
		require.True(t, ok)
		assert.Equal(t, createdAt.Add(1440*time.Minute), expiry)
	})

	t.Run("unparseable", func(t *testing.T) {
		_, ok := ExpiresAt(createdAt, "whenever")
		assert.False(t, ok)
	})
}

func TestStillActive(t *testing.T) {
	buffer := 30 * time.Minute
	createdAt := time.Date(2026, 8, 24, 14, 0, 0, 0, time.UTC)

	t.Run("buffer boundary", func(t *testing.T) {
		expiry := createdAt.Add(time.Hour)
		assert.True(t, StillActive(createdAt, "1 hour", expiry.Add(29*time.Minute), buffer))
		assert.False(t, StillActive(createdAt, "1 hour", expiry.Add(31*time.Minute), buffer))
	})

	t.Run("two hour ping timeline", func(t *testing.T) {
		// Created 14:00 with "2 hours": active at 15:59, active at
		// 16:29 thanks to the buffer, gone by 16:31.
		at := func(h, m int) time.Time {
			return time.Date(2026, 8, 24, h, m, 0, 0, time.UTC)
		}
		assert.True(t, StillActive(createdAt, "2 hours", at(15, 59), buffer))
		assert.True(t, StillActive(createdAt, "2 hours", at(16, 29), buffer))
		assert.False(t, StillActive(createdAt, "2 hours", at(16, 31), buffer))
	})

	t.Run("unparseable duration is not active", func(t *testing.T) {
		assert.False(t, StillActive(createdAt, "???", createdAt, buffer))
	})
}
