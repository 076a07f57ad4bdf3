package geo

import (
	"fmt"
	"math"
)

// earthRadiusKm is the mean Earth radius used by the haversine formula.
const earthRadiusKm = 6371

// Point is a WGS84 coordinate pair.
type Point struct {
	Latitude  float64
	Longitude float64
}

// NewPoint validates latitude/longitude ranges and returns a Point.
// Out-of-range values are rejected, never clamped.
func NewPoint(latitude, longitude float64) (Point, error) {
	if latitude < -90 || latitude > 90 {
		return Point{}, fmt.Errorf("latitude must be between -90 and 90, got %v", latitude)
	}
	if longitude < -180 || longitude > 180 {
		return Point{}, fmt.Errorf("longitude must be between -180 and 180, got %v", longitude)
	}
	return Point{Latitude: latitude, Longitude: longitude}, nil
}

// Distance returns the great-circle distance between two points in
// kilometers, rounded to 2 decimal places.
func Distance(a, b Point) float64 {
	lat1 := degToRad(a.Latitude)
	lon1 := degToRad(a.Longitude)
	lat2 := degToRad(b.Latitude)
	lon2 := degToRad(b.Longitude)

	latDiff := lat2 - lat1
	lonDiff := lon2 - lon1

	h := math.Sin(latDiff/2)*math.Sin(latDiff/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(lonDiff/2)*math.Sin(lonDiff/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return round2(earthRadiusKm * c)
}

// WithinRadius reports whether point lies within radiusKm of center.
func WithinRadius(center, point Point, radiusKm float64) bool {
	return Distance(center, point) <= radiusKm
}

// FormatDistance renders a distance for display, switching to meters
// below one kilometer.
func FormatDistance(distanceKm float64) string {
	if distanceKm < 1 {
		return fmt.Sprintf("%d m", int(math.Round(distanceKm*1000)))
	}
	return fmt.Sprintf("%.1f km", math.Round(distanceKm*10)/10)
}

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
