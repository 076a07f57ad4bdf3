package application_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/biomebistro/biome-bistro-services/api/internal/catalog/application"
	"github.com/biomebistro/biome-bistro-services/api/internal/catalog/domain"
	"github.com/biomebistro/biome-bistro-services/api/internal/geo"
	"github.com/biomebistro/biome-bistro-services/api/internal/infrastructure/lock"
)

// stubRestaurantRepo is an in-memory RestaurantRepository. The
// failUpdates switch simulates a store outage on the aggregate
// write-back so the self-healing path can be exercised.
type stubRestaurantRepo struct {
	mu          sync.Mutex
	restaurants map[string]domain.Restaurant
	failUpdates bool
}

func newStubRestaurantRepo() *stubRestaurantRepo {
	return &stubRestaurantRepo{restaurants: make(map[string]domain.Restaurant)}
}

func (r *stubRestaurantRepo) put(rest domain.Restaurant) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.restaurants[rest.ID] = rest
}

func (r *stubRestaurantRepo) Find(_ context.Context, filter application.RestaurantFilter) ([]domain.Restaurant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Restaurant
	for _, rest := range r.restaurants {
		if filter.BiomeID != "" && rest.BiomeID != filter.BiomeID {
			continue
		}
		if filter.Status != "" && rest.Status != filter.Status {
			continue
		}
		out = append(out, rest)
	}
	if filter.SortBy == "rating" {
		sort.Slice(out, func(i, j int) bool { return out[i].AverageRating > out[j].AverageRating })
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *stubRestaurantRepo) FindByID(_ context.Context, id string) (*domain.Restaurant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rest, ok := r.restaurants[id]
	if !ok {
		return nil, application.ErrRestaurantNotFound
	}
	return &rest, nil
}

func (r *stubRestaurantRepo) FindNearby(_ context.Context, _ geo.Point, _ float64) ([]domain.Restaurant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Restaurant, 0, len(r.restaurants))
	for _, rest := range r.restaurants {
		out = append(out, rest)
	}
	return out, nil
}

func (r *stubRestaurantRepo) FindSimilar(_ context.Context, id string, limit int) ([]domain.Restaurant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	base, ok := r.restaurants[id]
	if !ok {
		return nil, application.ErrRestaurantNotFound
	}
	var out []domain.Restaurant
	for _, rest := range r.restaurants {
		if rest.ID != id && rest.BiomeID == base.BiomeID {
			out = append(out, rest)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *stubRestaurantRepo) UpdateAggregates(_ context.Context, restaurantID string, snapshot domain.RatingSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failUpdates {
		return errors.New("write concern error")
	}
	rest, ok := r.restaurants[restaurantID]
	if !ok {
		return application.ErrRestaurantNotFound
	}
	rest.AverageRating = snapshot.AverageRating
	rest.TotalReviews = snapshot.TotalReviews
	rest.RatingsBreakdown = snapshot.RatingsBreakdown
	r.restaurants[restaurantID] = rest
	return nil
}

// stubReviewRepo keeps reviews in memory and derives aggregates with the
// reference computation.
type stubReviewRepo struct {
	mu      sync.Mutex
	seq     int
	reviews map[string]domain.Review
}

func newStubReviewRepo() *stubReviewRepo {
	return &stubReviewRepo{reviews: make(map[string]domain.Review)}
}

func (r *stubReviewRepo) FindByID(_ context.Context, id string) (*domain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rev, ok := r.reviews[id]
	if !ok {
		return nil, application.ErrReviewNotFound
	}
	return &rev, nil
}

func (r *stubReviewRepo) FindByRestaurant(_ context.Context, restaurantID string, filter application.ReviewFilter) ([]domain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Review
	for _, rev := range r.reviews {
		if rev.RestaurantID != restaurantID {
			continue
		}
		if filter.MinRating > 0 && float64(rev.Rating) < filter.MinRating {
			continue
		}
		if filter.MaxRating > 0 && float64(rev.Rating) > filter.MaxRating {
			continue
		}
		out = append(out, rev)
	}
	return out, nil
}

func (r *stubReviewRepo) FindByEmail(_ context.Context, email string) ([]domain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Review
	for _, rev := range r.reviews {
		if strings.EqualFold(rev.ReviewerEmail, email) {
			out = append(out, rev)
		}
	}
	return out, nil
}

func (r *stubReviewRepo) FindRecent(_ context.Context, limit int) ([]domain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Review, 0, len(r.reviews))
	for _, rev := range r.reviews {
		out = append(out, rev)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *stubReviewRepo) FindTop(_ context.Context, restaurantID string, limit int) ([]domain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Review
	for _, rev := range r.reviews {
		if rev.RestaurantID == restaurantID {
			out = append(out, rev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].HelpfulVotes > out[j].HelpfulVotes })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *stubReviewRepo) Create(_ context.Context, review *domain.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	review.ID = fmt.Sprintf("rev-%04d", r.seq)
	r.reviews[review.ID] = *review
	return nil
}

func (r *stubReviewRepo) Update(_ context.Context, review *domain.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reviews[review.ID]; !ok {
		return application.ErrReviewNotFound
	}
	r.reviews[review.ID] = *review
	return nil
}

func (r *stubReviewRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reviews[id]; !ok {
		return application.ErrReviewNotFound
	}
	delete(r.reviews, id)
	return nil
}

func (r *stubReviewRepo) AggregateRatings(_ context.Context, restaurantID string) (domain.RatingSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var set []domain.Review
	for _, rev := range r.reviews {
		if rev.RestaurantID == restaurantID {
			set = append(set, rev)
		}
	}
	return domain.ComputeRatingSnapshot(set), nil
}

func (r *stubReviewRepo) AddHelpfulVote(_ context.Context, id string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rev, ok := r.reviews[id]
	if !ok {
		return 0, application.ErrReviewNotFound
	}
	rev.HelpfulVotes++
	r.reviews[id] = rev
	return rev.HelpfulVotes, nil
}

func (r *stubReviewRepo) AddRestaurantResponse(_ context.Context, id, reply string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rev, ok := r.reviews[id]
	if !ok {
		return application.ErrReviewNotFound
	}
	rev.Response = &domain.RestaurantResponse{FromRestaurant: true, Reply: reply, RepliedAt: time.Now()}
	r.reviews[id] = rev
	return nil
}

type catalogFixture struct {
	restaurants *stubRestaurantRepo
	reviews     *stubReviewRepo
	ratings     *application.RatingService
	commands    *application.ReviewCommandService
}

func newCatalogFixture() *catalogFixture {
	restaurants := newStubRestaurantRepo()
	restaurants.put(domain.Restaurant{
		ID:       "r1",
		BiomeID:  "b1",
		Name:     "Canopy Table",
		Capacity: 40,
		Status:   domain.RestaurantStatusActive,
		Location: &domain.Coordinates{Latitude: 48.8566, Longitude: 2.3522},
	})
	reviews := newStubReviewRepo()
	logger := log.New(io.Discard, "", 0)
	ratings := application.NewRatingService(restaurants, reviews, lock.NewMemory(), logger)
	commands := application.NewReviewCommandService(reviews, restaurants, ratings, logger)
	return &catalogFixture{restaurants: restaurants, reviews: reviews, ratings: ratings, commands: commands}
}

func (f *catalogFixture) restaurant(t *testing.T) domain.Restaurant {
	t.Helper()
	rest, err := f.restaurants.FindByID(context.Background(), "r1")
	require.NoError(t, err)
	return *rest
}

func validSubmit(rating int) application.SubmitReviewCommand {
	return application.SubmitReviewCommand{
		RestaurantID:  "r1",
		ReviewerName:  "Claire Fontaine",
		ReviewerEmail: "claire@example.fr",
		Rating:        rating,
		Title:         "Lush and memorable",
		Comment:       "Dinner under the canopy was worth every minute.",
	}
}

func TestAggregatesFollowReviewLifecycle(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()

	// No reviews: everything zero.
	rest := f.restaurant(t)
	require.Zero(t, rest.AverageRating)
	require.Zero(t, rest.TotalReviews)

	first, err := f.commands.Submit(ctx, validSubmit(4))
	require.NoError(t, err)
	rest = f.restaurant(t)
	require.Equal(t, 4.0, rest.AverageRating)
	require.Equal(t, 1, rest.TotalReviews)

	second := validSubmit(5)
	second.ReviewerEmail = "marc@example.fr"
	second.ReviewerName = "Marc Dubois"
	_, err = f.commands.Submit(ctx, second)
	require.NoError(t, err)
	rest = f.restaurant(t)
	require.Equal(t, 4.5, rest.AverageRating)
	require.Equal(t, 2, rest.TotalReviews)

	require.NoError(t, f.commands.Delete(ctx, first.ID, "claire@example.fr"))
	rest = f.restaurant(t)
	require.Equal(t, 5.0, rest.AverageRating)
	require.Equal(t, 1, rest.TotalReviews)
}

func TestSubmitDefaultsUniformBreakdown(t *testing.T) {
	f := newCatalogFixture()

	review, err := f.commands.Submit(context.Background(), validSubmit(4))
	require.NoError(t, err)
	require.Equal(t, domain.UniformBreakdown(4), review.RatingsBreakdown)

	rest := f.restaurant(t)
	require.Equal(t, 4.0, rest.RatingsBreakdown.FoodQuality)
	require.Equal(t, 4.0, rest.RatingsBreakdown.Cleanliness)
}

func TestSubmitCollectsAllFieldErrors(t *testing.T) {
	f := newCatalogFixture()

	_, err := f.commands.Submit(context.Background(), application.SubmitReviewCommand{
		RestaurantID:  "r1",
		ReviewerName:  "",
		ReviewerEmail: "not-an-email",
		Rating:        6,
		Title:         "",
		Comment:       "too short",
	})

	var verr *application.ValidationError
	require.ErrorAs(t, err, &verr)
	fields := make([]string, 0, len(verr.Fields))
	for _, fe := range verr.Fields {
		fields = append(fields, fe.Field)
	}
	require.ElementsMatch(t, []string{"reviewer_name", "reviewer_email", "rating", "title", "comment"}, fields)
}

func TestSubmitRejectsBadBreakdownScores(t *testing.T) {
	f := newCatalogFixture()

	cmd := validSubmit(4)
	cmd.Breakdown = &domain.RatingBreakdown{FoodQuality: 4, Service: 0, Ambiance: 4, ValueForMoney: 6, Cleanliness: 4}
	_, err := f.commands.Submit(context.Background(), cmd)

	var verr *application.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, 2)
}

func TestSubmitUnknownRestaurant(t *testing.T) {
	f := newCatalogFixture()

	cmd := validSubmit(4)
	cmd.RestaurantID = "ghost"
	_, err := f.commands.Submit(context.Background(), cmd)
	require.ErrorIs(t, err, application.ErrRestaurantNotFound)
}

func TestUpdateRequiresOwnership(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()

	review, err := f.commands.Submit(ctx, validSubmit(4))
	require.NoError(t, err)

	newRating := 2
	_, err = f.commands.Update(ctx, review.ID, application.UpdateReviewCommand{
		ReviewerEmail: "intruder@example.fr",
		Rating:        &newRating,
	})
	require.ErrorIs(t, err, application.ErrNotReviewOwner)

	require.ErrorIs(t, f.commands.Delete(ctx, review.ID, "intruder@example.fr"), application.ErrNotReviewOwner)
}

func TestUpdateRefreshesAggregates(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()

	review, err := f.commands.Submit(ctx, validSubmit(3))
	require.NoError(t, err)

	newRating := 5
	updated, err := f.commands.Update(ctx, review.ID, application.UpdateReviewCommand{
		ReviewerEmail: "claire@example.fr",
		Rating:        &newRating,
	})
	require.NoError(t, err)
	require.Equal(t, 5, updated.Rating)

	rest := f.restaurant(t)
	require.Equal(t, 5.0, rest.AverageRating)
	require.Equal(t, 1, rest.TotalReviews)
}

func TestRecomputeIsIdempotent(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()

	_, err := f.commands.Submit(ctx, validSubmit(4))
	require.NoError(t, err)
	second := validSubmit(5)
	second.ReviewerEmail = "marc@example.fr"
	_, err = f.commands.Submit(ctx, second)
	require.NoError(t, err)

	before := f.restaurant(t)
	for i := 0; i < 3; i++ {
		require.NoError(t, f.ratings.Recompute(ctx, "r1"))
	}
	after := f.restaurant(t)
	require.Equal(t, before.AverageRating, after.AverageRating)
	require.Equal(t, before.TotalReviews, after.TotalReviews)
	require.Equal(t, before.RatingsBreakdown, after.RatingsBreakdown)
}

func TestAggregateFailureDoesNotRollBackReview(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()

	f.restaurants.failUpdates = true
	review, err := f.commands.Submit(ctx, validSubmit(4))
	require.NoError(t, err, "review write must survive an aggregate outage")

	stored, err := f.reviews.FindByID(ctx, review.ID)
	require.NoError(t, err)
	require.Equal(t, 4, stored.Rating)

	// Aggregates still show the pre-outage values.
	rest := f.restaurant(t)
	require.Zero(t, rest.TotalReviews)

	// Store recovers; the next detail read heals the cached values.
	f.restaurants.failUpdates = false
	queries := application.NewRestaurantQueryService(f.restaurants, f.ratings)
	healed, err := queries.Detail(ctx, "r1")
	require.NoError(t, err)
	require.Equal(t, 4.0, healed.AverageRating)
	require.Equal(t, 1, healed.TotalReviews)
}

func TestConcurrentSubmitsConvergeAggregates(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()

	errs := make(chan error, 10)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cmd := validSubmit(1 + i%5)
			cmd.ReviewerEmail = fmt.Sprintf("diner%d@example.fr", i)
			_, err := f.commands.Submit(ctx, cmd)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	rest := f.restaurant(t)
	require.Equal(t, 10, rest.TotalReviews)

	snapshot, err := f.reviews.AggregateRatings(ctx, "r1")
	require.NoError(t, err)
	require.Equal(t, snapshot.AverageRating, rest.AverageRating)
}

func TestVoteHelpfulAndRespond(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()

	review, err := f.commands.Submit(ctx, validSubmit(5))
	require.NoError(t, err)

	votes, err := f.commands.VoteHelpful(ctx, review.ID)
	require.NoError(t, err)
	require.Equal(t, 1, votes)

	require.NoError(t, f.commands.Respond(ctx, review.ID, "Merci, see you soon."))
	stored, err := f.reviews.FindByID(ctx, review.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Response)
	require.True(t, stored.Response.FromRestaurant)

	var verr *application.ValidationError
	require.ErrorAs(t, f.commands.Respond(ctx, review.ID, "   "), &verr)
}
