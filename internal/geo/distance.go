package geo

import (
	"math"
	"strconv"
	"strings"
)

const (
	earthRadiusKm = 6371.0
	milesPerKm    = 0.621371
)

// DistanceKm returns the great-circle distance in kilometers between two
// lat/lon points (haversine). Non-finite inputs propagate as non-finite
// output; callers decide what that means.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// KmToMiles converts kilometers to miles. Kept in one place; call sites
// must not re-derive the factor.
func KmToMiles(km float64) float64 {
	return km * milesPerKm
}

// DistanceMiles returns the great-circle distance in miles.
func DistanceMiles(lat1, lon1, lat2, lon2 float64) float64 {
	return KmToMiles(DistanceKm(lat1, lon1, lat2, lon2))
}

// ParseRadiusMiles parses a free-form radius string such as "10 miles",
// "5 mi" or a bare number. The second return is false when no numeric
// radius can be extracted.
func ParseRadiusMiles(s string) (float64, bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return 0, false
	}
	for _, field := range strings.Fields(s) {
		if v, err := strconv.ParseFloat(field, 64); err == nil && v >= 0 {
			return v, true
		}
	}
	return 0, false
}
