package utils

import (
	"fmt"
	"math"
)

const earthRadiusMiles = 3959.0

// DistanceMiles returns the haversine great-circle distance in statute miles.
func DistanceMiles(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMiles * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// LocationHash buckets a coordinate to three decimals (~110 m) for cache keys.
func LocationHash(lat, lng float64) string {
	return fmt.Sprintf("%.3f_%.3f", lat, lng)
}

func ValidCoordinates(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lng) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}
