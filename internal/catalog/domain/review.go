package domain

import "time"

// Review is a customer review attached to exactly one restaurant.
type Review struct {
	ID               string
	RestaurantID     string
	ReviewerName     string
	ReviewerEmail    string
	Rating           int
	Title            string
	Comment          string
	RatingsBreakdown RatingBreakdown
	HelpfulVotes     int
	VerifiedVisit    bool
	Response         *RestaurantResponse
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// RestaurantResponse is an owner reply embedded in a review.
type RestaurantResponse struct {
	FromRestaurant bool
	Reply          string
	RepliedAt      time.Time
}
