package application

import (
	"context"
	"sort"

	"github.com/biomebistro/biome-bistro-services/api/internal/catalog/domain"
	"github.com/biomebistro/biome-bistro-services/api/internal/geo"
)

// DefaultNearbyRadiusKm は近隣検索の既定半径。
const DefaultNearbyRadiusKm = 5.0

// RestaurantQueryService exposes the restaurant read use-cases.
type RestaurantQueryService interface {
	List(ctx context.Context, filter RestaurantFilter) ([]domain.Restaurant, error)
	Detail(ctx context.Context, id string) (*domain.Restaurant, error)
	Nearby(ctx context.Context, lat, lon, radiusKm float64) ([]domain.RestaurantWithDistance, error)
	TopRated(ctx context.Context, limit int) ([]domain.Restaurant, error)
	Similar(ctx context.Context, id string, limit int) ([]domain.Restaurant, error)
	ByBiome(ctx context.Context, biomeID string) ([]domain.Restaurant, error)
}

// NewRestaurantQueryService returns a repository-backed reader that
// heals stale aggregates on detail reads.
func NewRestaurantQueryService(repo RestaurantRepository, ratings *RatingService) RestaurantQueryService {
	return &restaurantQueryService{repo: repo, ratings: ratings}
}

type restaurantQueryService struct {
	repo    RestaurantRepository
	ratings *RatingService
}

func (s *restaurantQueryService) List(ctx context.Context, filter RestaurantFilter) ([]domain.Restaurant, error) {
	return s.repo.Find(ctx, filter)
}

func (s *restaurantQueryService) Detail(ctx context.Context, id string) (*domain.Restaurant, error) {
	s.ratings.ReconcileIfDirty(ctx, id)
	return s.repo.FindByID(ctx, id)
}

// Nearby returns restaurants within radiusKm of the given point, each
// annotated with its distance, nearest first. Restaurants without
// stored coordinates are left out.
func (s *restaurantQueryService) Nearby(ctx context.Context, lat, lon, radiusKm float64) ([]domain.RestaurantWithDistance, error) {
	center, err := geo.NewPoint(lat, lon)
	if err != nil {
		var v validationCollector
		v.add("location", err.Error())
		return nil, v.err()
	}
	if radiusKm <= 0 {
		radiusKm = DefaultNearbyRadiusKm
	}

	candidates, err := s.repo.FindNearby(ctx, center, radiusKm)
	if err != nil {
		return nil, err
	}

	results := make([]domain.RestaurantWithDistance, 0, len(candidates))
	for _, r := range candidates {
		if r.Location == nil {
			continue
		}
		point, err := geo.NewPoint(r.Location.Latitude, r.Location.Longitude)
		if err != nil {
			continue
		}
		d := geo.Distance(center, point)
		if d > radiusKm {
			continue
		}
		results = append(results, domain.RestaurantWithDistance{Restaurant: r, DistanceKm: d})
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].DistanceKm < results[j].DistanceKm
	})
	return results, nil
}

func (s *restaurantQueryService) TopRated(ctx context.Context, limit int) ([]domain.Restaurant, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.repo.Find(ctx, RestaurantFilter{Status: domain.RestaurantStatusActive, SortBy: "rating", Limit: limit})
}

func (s *restaurantQueryService) Similar(ctx context.Context, id string, limit int) ([]domain.Restaurant, error) {
	if limit <= 0 {
		limit = 5
	}
	return s.repo.FindSimilar(ctx, id, limit)
}

func (s *restaurantQueryService) ByBiome(ctx context.Context, biomeID string) ([]domain.Restaurant, error) {
	return s.repo.Find(ctx, RestaurantFilter{BiomeID: biomeID})
}

// ReviewQueryService exposes the review read use-cases.
type ReviewQueryService interface {
	Detail(ctx context.Context, id string) (*domain.Review, error)
	ByRestaurant(ctx context.Context, restaurantID string, filter ReviewFilter) ([]domain.Review, error)
	ByEmail(ctx context.Context, email string) ([]domain.Review, error)
	Recent(ctx context.Context, limit int) ([]domain.Review, error)
	Top(ctx context.Context, restaurantID string, limit int) ([]domain.Review, error)
}

// NewReviewQueryService returns a repository-backed reader.
func NewReviewQueryService(repo ReviewRepository) ReviewQueryService {
	return &reviewQueryService{repo: repo}
}

type reviewQueryService struct {
	repo ReviewRepository
}

func (s *reviewQueryService) Detail(ctx context.Context, id string) (*domain.Review, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *reviewQueryService) ByRestaurant(ctx context.Context, restaurantID string, filter ReviewFilter) ([]domain.Review, error) {
	return s.repo.FindByRestaurant(ctx, restaurantID, filter)
}

func (s *reviewQueryService) ByEmail(ctx context.Context, email string) ([]domain.Review, error) {
	return s.repo.FindByEmail(ctx, email)
}

func (s *reviewQueryService) Recent(ctx context.Context, limit int) ([]domain.Review, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.repo.FindRecent(ctx, limit)
}

func (s *reviewQueryService) Top(ctx context.Context, restaurantID string, limit int) ([]domain.Review, error) {
	if limit <= 0 {
		limit = 5
	}
	return s.repo.FindTop(ctx, restaurantID, limit)
}

// BiomeQueryService lists the themed environments.
type BiomeQueryService interface {
	All(ctx context.Context) ([]domain.Biome, error)
	Detail(ctx context.Context, id string) (*domain.Biome, error)
}

// NewBiomeQueryService returns a repository-backed reader.
func NewBiomeQueryService(repo BiomeRepository) BiomeQueryService {
	return &biomeQueryService{repo: repo}
}

type biomeQueryService struct {
	repo BiomeRepository
}

func (s *biomeQueryService) All(ctx context.Context) ([]domain.Biome, error) {
	return s.repo.FindAll(ctx)
}

func (s *biomeQueryService) Detail(ctx context.Context, id string) (*domain.Biome, error) {
	return s.repo.FindByID(ctx, id)
}
