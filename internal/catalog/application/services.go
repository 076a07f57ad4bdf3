package application

import (
	"context"
	"log"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/biomebistro/biome-bistro-services/api/internal/catalog/domain"
	"github.com/biomebistro/biome-bistro-services/api/internal/infrastructure/lock"
)

const (
	MinRating        = 1
	MaxRating        = 5
	MinCommentLength = 10
)

// RatingService は店舗の評価集計値(平均・件数・カテゴリ内訳)を
// レビューの現況から再計算して書き戻す。同一店舗の再計算は
// 店舗単位のロックで直列化する。
type RatingService struct {
	restaurants RestaurantRepository
	reviews     ReviewRepository
	locker      lock.KeyedLocker
	logger      *log.Logger

	mu    sync.Mutex
	dirty map[string]struct{}
}

// NewRatingService builds the aggregate maintainer.
func NewRatingService(restaurants RestaurantRepository, reviews ReviewRepository, locker lock.KeyedLocker, logger *log.Logger) *RatingService {
	return &RatingService{
		restaurants: restaurants,
		reviews:     reviews,
		locker:      locker,
		logger:      logger,
		dirty:       make(map[string]struct{}),
	}
}

func ratingLockKey(restaurantID string) string {
	return "rating|" + restaurantID
}

// Recompute derives the rating snapshot from the review collection in a
// single round trip and writes it onto the restaurant. Safe to call any
// number of times; the result depends only on the stored reviews.
func (s *RatingService) Recompute(ctx context.Context, restaurantID string) error {
	release, err := s.locker.Acquire(ctx, ratingLockKey(restaurantID))
	if err != nil {
		return err
	}
	defer release()

	snapshot, err := s.reviews.AggregateRatings(ctx, restaurantID)
	if err != nil {
		return err
	}
	if err := s.restaurants.UpdateAggregates(ctx, restaurantID, snapshot); err != nil {
		return err
	}
	s.clearDirty(restaurantID)
	return nil
}

// markDirty records that the stored aggregates for a restaurant may lag
// its reviews. ReconcileIfDirty heals them on the next read.
func (s *RatingService) markDirty(restaurantID string) {
	s.mu.Lock()
	s.dirty[restaurantID] = struct{}{}
	s.mu.Unlock()
}

func (s *RatingService) clearDirty(restaurantID string) {
	s.mu.Lock()
	delete(s.dirty, restaurantID)
	s.mu.Unlock()
}

func (s *RatingService) isDirty(restaurantID string) bool {
	s.mu.Lock()
	_, ok := s.dirty[restaurantID]
	s.mu.Unlock()
	return ok
}

// ReconcileIfDirty recomputes the aggregates only when a previous
// write-back failed. A reconciliation failure is logged and retried on
// the next read rather than surfaced to the caller.
func (s *RatingService) ReconcileIfDirty(ctx context.Context, restaurantID string) {
	if !s.isDirty(restaurantID) {
		return
	}
	if err := s.Recompute(ctx, restaurantID); err != nil {
		s.logger.Printf("consistency warning: reconcile aggregates restaurant=%s: %v", restaurantID, err)
	}
}

// SubmitReviewCommand carries a new review.
type SubmitReviewCommand struct {
	RestaurantID  string
	ReviewerName  string
	ReviewerEmail string
	Rating        int
	Title         string
	Comment       string
	Breakdown     *domain.RatingBreakdown
	VerifiedVisit bool
}

// UpdateReviewCommand carries a partial review edit. Nil fields keep
// their current value. ReviewerEmail identifies the caller.
type UpdateReviewCommand struct {
	ReviewerEmail string
	Rating        *int
	Title         *string
	Comment       *string
	Breakdown     *domain.RatingBreakdown
}

// ReviewCommandService はレビューの登録・更新・削除を扱う。
// 各書き込みの後に集計の再計算を行い、再計算に失敗しても
// レビュー操作自体は取り消さない(次回読み取り時に自己修復する)。
type ReviewCommandService struct {
	reviews     ReviewRepository
	restaurants RestaurantRepository
	ratings     *RatingService
	logger      *log.Logger
	now         func() time.Time
}

// NewReviewCommandService wires the review write use-cases.
func NewReviewCommandService(reviews ReviewRepository, restaurants RestaurantRepository, ratings *RatingService, logger *log.Logger) *ReviewCommandService {
	return &ReviewCommandService{
		reviews:     reviews,
		restaurants: restaurants,
		ratings:     ratings,
		logger:      logger,
		now:         time.Now,
	}
}

// Submit validates and stores a review, then refreshes the restaurant
// aggregates.
func (s *ReviewCommandService) Submit(ctx context.Context, cmd SubmitReviewCommand) (*domain.Review, error) {
	var v validationCollector

	name := strings.TrimSpace(cmd.ReviewerName)
	if name == "" {
		v.add("reviewer_name", "reviewer name is required")
	}
	email := strings.TrimSpace(cmd.ReviewerEmail)
	if email == "" {
		v.add("reviewer_email", "reviewer email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		v.add("reviewer_email", "reviewer email is invalid")
	}
	if cmd.Rating < MinRating || cmd.Rating > MaxRating {
		v.add("rating", "rating must be between 1 and 5")
	}
	if strings.TrimSpace(cmd.Title) == "" {
		v.add("title", "title is required")
	}
	if len(strings.TrimSpace(cmd.Comment)) < MinCommentLength {
		v.add("comment", "comment must be at least 10 characters")
	}
	breakdown := validateBreakdown(cmd.Breakdown, cmd.Rating, &v)
	if err := v.err(); err != nil {
		return nil, err
	}

	if _, err := s.restaurants.FindByID(ctx, cmd.RestaurantID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	review := &domain.Review{
		RestaurantID:     cmd.RestaurantID,
		ReviewerName:     name,
		ReviewerEmail:    strings.ToLower(email),
		Rating:           cmd.Rating,
		Title:            strings.TrimSpace(cmd.Title),
		Comment:          strings.TrimSpace(cmd.Comment),
		RatingsBreakdown: breakdown,
		VerifiedVisit:    cmd.VerifiedVisit,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, err
	}
	s.refreshAggregates(ctx, cmd.RestaurantID)
	return review, nil
}

// Update edits an existing review. Only the original reviewer may edit.
func (s *ReviewCommandService) Update(ctx context.Context, id string, cmd UpdateReviewCommand) (*domain.Review, error) {
	review, err := s.reviews.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(review.ReviewerEmail, strings.TrimSpace(cmd.ReviewerEmail)) {
		return nil, ErrNotReviewOwner
	}

	var v validationCollector
	if cmd.Rating != nil {
		if *cmd.Rating < MinRating || *cmd.Rating > MaxRating {
			v.add("rating", "rating must be between 1 and 5")
		} else {
			review.Rating = *cmd.Rating
		}
	}
	if cmd.Title != nil {
		if strings.TrimSpace(*cmd.Title) == "" {
			v.add("title", "title is required")
		} else {
			review.Title = strings.TrimSpace(*cmd.Title)
		}
	}
	if cmd.Comment != nil {
		if len(strings.TrimSpace(*cmd.Comment)) < MinCommentLength {
			v.add("comment", "comment must be at least 10 characters")
		} else {
			review.Comment = strings.TrimSpace(*cmd.Comment)
		}
	}
	if cmd.Breakdown != nil {
		review.RatingsBreakdown = validateBreakdown(cmd.Breakdown, review.Rating, &v)
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	review.UpdatedAt = s.now().UTC()
	if err := s.reviews.Update(ctx, review); err != nil {
		return nil, err
	}
	s.refreshAggregates(ctx, review.RestaurantID)
	return review, nil
}

// Delete removes a review after an ownership check and refreshes the
// restaurant aggregates.
func (s *ReviewCommandService) Delete(ctx context.Context, id, reviewerEmail string) error {
	review, err := s.reviews.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !strings.EqualFold(review.ReviewerEmail, strings.TrimSpace(reviewerEmail)) {
		return ErrNotReviewOwner
	}
	if err := s.reviews.Delete(ctx, id); err != nil {
		return err
	}
	s.refreshAggregates(ctx, review.RestaurantID)
	return nil
}

// VoteHelpful increments the helpful counter of a review.
func (s *ReviewCommandService) VoteHelpful(ctx context.Context, id string) (int, error) {
	return s.reviews.AddHelpfulVote(ctx, id)
}

// Respond records the restaurant's reply to a review.
func (s *ReviewCommandService) Respond(ctx context.Context, id, reply string) error {
	reply = strings.TrimSpace(reply)
	if reply == "" {
		var v validationCollector
		v.add("response", "response text is required")
		return v.err()
	}
	return s.reviews.AddRestaurantResponse(ctx, id, reply)
}

// refreshAggregates recomputes after a review mutation. A failure here
// never rolls the mutation back: reviews are the source of truth, so
// the stored aggregates are marked stale and healed on the next read.
func (s *ReviewCommandService) refreshAggregates(ctx context.Context, restaurantID string) {
	if err := s.ratings.Recompute(ctx, restaurantID); err != nil {
		s.logger.Printf("consistency warning: aggregates stale restaurant=%s: %v", restaurantID, err)
		s.ratings.markDirty(restaurantID)
	}
}

// validateBreakdown checks the per-category scores, defaulting to a
// uniform breakdown at the overall rating when none is given.
func validateBreakdown(b *domain.RatingBreakdown, rating int, v *validationCollector) domain.RatingBreakdown {
	if b == nil {
		return domain.UniformBreakdown(float64(rating))
	}
	check := func(field string, score float64) {
		if score < MinRating || score > MaxRating {
			v.add("ratings_breakdown."+field, "score must be between 1 and 5")
		}
	}
	check("food_quality", b.FoodQuality)
	check("service", b.Service)
	check("ambiance", b.Ambiance)
	check("value_for_money", b.ValueForMoney)
	check("cleanliness", b.Cleanliness)
	return *b
}
