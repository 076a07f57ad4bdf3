package application_test

import (
	"context"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/biomebistro/biome-bistro-services/api/internal/catalog/application"
	"github.com/biomebistro/biome-bistro-services/api/internal/catalog/domain"
	"github.com/biomebistro/biome-bistro-services/api/internal/infrastructure/lock"
)

func newNearbyFixture() (*stubRestaurantRepo, application.RestaurantQueryService) {
	restaurants := newStubRestaurantRepo()
	logger := log.New(io.Discard, "", 0)
	ratings := application.NewRatingService(restaurants, newStubReviewRepo(), lock.NewMemory(), logger)
	return restaurants, application.NewRestaurantQueryService(restaurants, ratings)
}

func TestNearbySortsByDistance(t *testing.T) {
	restaurants, queries := newNearbyFixture()
	// Distances from the Paris center grow with the coordinate offsets.
	restaurants.put(domain.Restaurant{ID: "far", Name: "Far", Location: &domain.Coordinates{Latitude: 48.88, Longitude: 2.40}})
	restaurants.put(domain.Restaurant{ID: "near", Name: "Near", Location: &domain.Coordinates{Latitude: 48.857, Longitude: 2.353}})
	restaurants.put(domain.Restaurant{ID: "mid", Name: "Mid", Location: &domain.Coordinates{Latitude: 48.86, Longitude: 2.34}})

	results, err := queries.Nearby(context.Background(), 48.8566, 2.3522, 10)
	require.NoError(t, err)
	require.Len(t, results, 3)
	require.Equal(t, "near", results[0].ID)
	require.Equal(t, "mid", results[1].ID)
	require.Equal(t, "far", results[2].ID)
	require.True(t, results[0].DistanceKm <= results[1].DistanceKm)
	require.True(t, results[1].DistanceKm <= results[2].DistanceKm)
}

func TestNearbySkipsRestaurantsWithoutCoordinates(t *testing.T) {
	restaurants, queries := newNearbyFixture()
	restaurants.put(domain.Restaurant{ID: "located", Location: &domain.Coordinates{Latitude: 48.857, Longitude: 2.353}})
	restaurants.put(domain.Restaurant{ID: "unlocated"})

	results, err := queries.Nearby(context.Background(), 48.8566, 2.3522, 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "located", results[0].ID)
}

func TestNearbyEnforcesRadius(t *testing.T) {
	restaurants, queries := newNearbyFixture()
	restaurants.put(domain.Restaurant{ID: "inside", Location: &domain.Coordinates{Latitude: 48.857, Longitude: 2.353}})
	// Marseille is roughly 660 km away.
	restaurants.put(domain.Restaurant{ID: "outside", Location: &domain.Coordinates{Latitude: 43.2965, Longitude: 5.3698}})

	results, err := queries.Nearby(context.Background(), 48.8566, 2.3522, 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "inside", results[0].ID)
}

func TestNearbyRejectsInvalidCenter(t *testing.T) {
	_, queries := newNearbyFixture()

	_, err := queries.Nearby(context.Background(), 91, 2.3522, 5)
	var verr *application.ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = queries.Nearby(context.Background(), 48.8566, 181, 5)
	require.ErrorAs(t, err, &verr)
}

func TestTopRatedOrdersByRatingDescending(t *testing.T) {
	restaurants, queries := newNearbyFixture()
	restaurants.put(domain.Restaurant{ID: "a", Status: domain.RestaurantStatusActive, AverageRating: 3.2})
	restaurants.put(domain.Restaurant{ID: "b", Status: domain.RestaurantStatusActive, AverageRating: 4.8})
	restaurants.put(domain.Restaurant{ID: "c", Status: domain.RestaurantStatusActive, AverageRating: 4.1})

	results, err := queries.TopRated(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, "b", results[0].ID)
	require.Equal(t, "c", results[1].ID)
}
