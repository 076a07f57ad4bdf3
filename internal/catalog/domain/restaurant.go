package domain

import "time"

// Restaurant publication statuses.
const (
	RestaurantStatusActive   = "active"
	RestaurantStatusInactive = "inactive"
	RestaurantStatusClosed   = "closed"
)

// Restaurant represents a publicly visible restaurant entity.
type Restaurant struct {
	ID                  string
	BiomeID             string
	Name                string
	Description         string
	CuisineStyle        string
	PriceRange          string
	Capacity            int
	Status              string
	SustainabilityScore float64
	Location            *Coordinates
	Address             string
	AverageRating       float64
	TotalReviews        int
	RatingsBreakdown    RatingBreakdown
	OpeningHours        []OpeningHours
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Coordinates holds a WGS84 position. Mongo stores the pair as
// [longitude, latitude], the domain keeps named fields.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// OpeningHours describes one weekday entry of a restaurant schedule.
type OpeningHours struct {
	Day    string
	Open   string
	Close  string
	Closed bool
}

// RestaurantWithDistance annotates a restaurant with its distance from
// a proximity-search center.
type RestaurantWithDistance struct {
	Restaurant
	DistanceKm float64
}

// IsOpenAt reports whether the restaurant schedule covers the given
// weekday and HH:MM time.
func (r Restaurant) IsOpenAt(day, clock string) bool {
	for _, hours := range r.OpeningHours {
		if hours.Day == day && !hours.Closed {
			return clock >= hours.Open && clock <= hours.Close
		}
	}
	return false
}
