package domain

import "math"

// RatingBreakdown holds the five per-category sub-scores of a review,
// or their averaged form when cached on a restaurant.
type RatingBreakdown struct {
	FoodQuality   float64
	Service       float64
	Ambiance      float64
	ValueForMoney float64
	Cleanliness   float64
}

// UniformBreakdown fills every category with the same score. Used when
// a reviewer submits only an overall rating.
func UniformBreakdown(rating float64) RatingBreakdown {
	return RatingBreakdown{
		FoodQuality:   rating,
		Service:       rating,
		Ambiance:      rating,
		ValueForMoney: rating,
		Cleanliness:   rating,
	}
}

// RatingSnapshot は restaurants ドキュメントへ書き戻す導出値のまとまり。
// average_rating / total_reviews はこのスナップショット経由でのみ更新される。
type RatingSnapshot struct {
	AverageRating    float64
	TotalReviews     int
	RatingsBreakdown RatingBreakdown
}

// ComputeRatingSnapshot derives the cached aggregate from a full review
// set. It defines the reference semantics that every storage backend
// must reproduce: 1-decimal rounded means, zeros when no reviews exist.
func ComputeRatingSnapshot(reviews []Review) RatingSnapshot {
	if len(reviews) == 0 {
		return RatingSnapshot{}
	}

	var total float64
	var breakdown RatingBreakdown
	for _, review := range reviews {
		total += float64(review.Rating)
		breakdown.FoodQuality += review.RatingsBreakdown.FoodQuality
		breakdown.Service += review.RatingsBreakdown.Service
		breakdown.Ambiance += review.RatingsBreakdown.Ambiance
		breakdown.ValueForMoney += review.RatingsBreakdown.ValueForMoney
		breakdown.Cleanliness += review.RatingsBreakdown.Cleanliness
	}

	count := float64(len(reviews))
	return RatingSnapshot{
		AverageRating: Round1(total / count),
		TotalReviews:  len(reviews),
		RatingsBreakdown: RatingBreakdown{
			FoodQuality:   Round1(breakdown.FoodQuality / count),
			Service:       Round1(breakdown.Service / count),
			Ambiance:      Round1(breakdown.Ambiance / count),
			ValueForMoney: Round1(breakdown.ValueForMoney / count),
			Cleanliness:   Round1(breakdown.Cleanliness / count),
		},
	}
}

// Round1 rounds to one decimal place, the precision stored on the
// restaurant record.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
