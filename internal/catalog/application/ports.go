package application

import (
	"context"

	"github.com/biomebistro/biome-bistro-services/api/internal/catalog/domain"
	"github.com/biomebistro/biome-bistro-services/api/internal/geo"
)

// RestaurantRepository abstracts restaurant reads and the single write
// this subsystem performs: the derived-aggregate update.
type RestaurantRepository interface {
	Find(ctx context.Context, filter RestaurantFilter) ([]domain.Restaurant, error)
	FindByID(ctx context.Context, id string) (*domain.Restaurant, error)
	// FindNearby returns the in-radius candidate set, pre-filtered
	// store-side when a geospatial index exists.
	FindNearby(ctx context.Context, center geo.Point, radiusKm float64) ([]domain.Restaurant, error)
	FindSimilar(ctx context.Context, id string, limit int) ([]domain.Restaurant, error)
	// UpdateAggregates writes the derived rating fields back onto the
	// restaurant document. No other writer touches those fields.
	UpdateAggregates(ctx context.Context, restaurantID string, snapshot domain.RatingSnapshot) error
}

// ReviewRepository handles review reads/writes and the one-round-trip
// aggregate computation.
type ReviewRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Review, error)
	FindByRestaurant(ctx context.Context, restaurantID string, filter ReviewFilter) ([]domain.Review, error)
	FindByEmail(ctx context.Context, email string) ([]domain.Review, error)
	FindRecent(ctx context.Context, limit int) ([]domain.Review, error)
	FindTop(ctx context.Context, restaurantID string, limit int) ([]domain.Review, error)
	Create(ctx context.Context, review *domain.Review) error
	Update(ctx context.Context, review *domain.Review) error
	Delete(ctx context.Context, id string) error
	// AggregateRatings derives the rating snapshot for one restaurant
	// in a single store round trip.
	AggregateRatings(ctx context.Context, restaurantID string) (domain.RatingSnapshot, error)
	AddHelpfulVote(ctx context.Context, id string) (int, error)
	AddRestaurantResponse(ctx context.Context, id, reply string) error
}

// BiomeRepository reads the themed-environment catalog.
type BiomeRepository interface {
	FindAll(ctx context.Context) ([]domain.Biome, error)
	FindByID(ctx context.Context, id string) (*domain.Biome, error)
}

// RestaurantFilter expresses search criteria for restaurants.
type RestaurantFilter struct {
	BiomeID      string
	PriceRange   string
	MinRating    float64
	Status       string
	CuisineStyle string
	Keyword      string
	SortBy       string
	Limit        int
}

// ReviewFilter narrows restaurant review listings.
type ReviewFilter struct {
	MinRating     float64
	MaxRating     float64
	VerifiedVisit *bool
	Limit         int
}
