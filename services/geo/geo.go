// Package geo provides the distance and travel-time primitives the
// recommendation and scheduling engines are built on.
package geo

import (
	"math"

	"wandr/models"
)

// earthRadiusMiles is the mean Earth radius used for great-circle distance.
const earthRadiusMiles = 3958.8

// travelBufferMinutes covers parking and walking overhead on top of the raw
// drive-time estimate.
const travelBufferMinutes = 5

// Distance returns the great-circle (Haversine) distance between two
// coordinates in miles. Pure and symmetric.
func Distance(a, b models.Coordinate) float64 {
	dLat := (b.Latitude - a.Latitude) * (math.Pi / 180)
	dLon := (b.Longitude - a.Longitude) * (math.Pi / 180)
	lat1Rad := a.Latitude * (math.Pi / 180)
	lat2Rad := b.Latitude * (math.Pi / 180)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusMiles * c
}

// EstimateTravelMinutes converts a distance into an estimated drive time
// using a piecewise speed model: short urban trips include parking and
// walking overhead a flat average speed would miss.
func EstimateTravelMinutes(distanceMiles float64) int {
	if distanceMiles <= 0 {
		return 0
	}
	var mph float64
	switch {
	case distanceMiles < 1:
		mph = 15
	case distanceMiles < 5:
		mph = 25
	default:
		mph = 35
	}
	return int(math.Ceil(distanceMiles / mph * 60))
}

// TravelTimeWithBuffer returns the estimated travel time between two points
// plus the parking/walking buffer, floored at the buffer itself so adjacent
// venues still get a realistic allowance.
func TravelTimeWithBuffer(from, to models.Coordinate) int {
	minutes := EstimateTravelMinutes(Distance(from, to)) + travelBufferMinutes
	if minutes < travelBufferMinutes {
		minutes = travelBufferMinutes
	}
	return minutes
}
