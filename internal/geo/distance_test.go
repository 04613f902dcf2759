package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceKm(t *testing.T) {
	t.Run("identity", func(t *testing.T) {
		assert.Equal(t, 0.0, DistanceKm(37.7749, -122.4194, 37.7749, -122.4194))
	})

	t.Run("symmetry", func(t *testing.T) {
		pairs := [][4]float64{
			{37.7749, -122.4194, 34.0522, -118.2437},
			{51.5074, -0.1278, 40.7128, -74.0060},
			{-33.8688, 151.2093, 35.6762, 139.6503},
		}
		for _, p := range pairs {
			ab := DistanceKm(p[0], p[1], p[2], p[3])
			ba := DistanceKm(p[2], p[3], p[0], p[1])
			assert.InDelta(t, ab, ba, 1e-9)
		}
	})

	t.Run("known distance", func(t *testing.T) {
		// San Francisco to Los Angeles, roughly 559 km
		d := DistanceKm(37.7749, -122.4194, 34.0522, -118.2437)
		assert.InDelta(t, 559, d, 5)
	})

	t.Run("non-finite inputs propagate", func(t *testing.T) {
		assert.True(t, math.IsNaN(DistanceKm(math.NaN(), 0, 0, 0)))
		assert.True(t, math.IsNaN(DistanceKm(0, 0, math.NaN(), 0)))
	})
}

func TestKmToMiles(t *testing.T) {
	assert.InDelta(t, 6.21371, KmToMiles(10), 1e-6)
	assert.Equal(t, 0.0, KmToMiles(0))
}

func TestDistanceMiles(t *testing.T) {
	km := DistanceKm(37.7749, -122.4194, 34.0522, -118.2437)
	assert.InDelta(t, km*0.621371, DistanceMiles(37.7749, -122.4194, 34.0522, -118.2437), 1e-9)
}

func TestParseRadiusMiles(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"10 miles", 10, true},
		{"5 mi", 5, true},
		{"2.5 miles", 2.5, true},
		{"15", 15, true},
		{"  20 Miles  ", 20, true},
		{"", 0, false},
		{"nearby", 0, false},
		{"miles", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseRadiusMiles(tt.in)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
