package mongo

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/biomebistro/biome-bistro-services/api/internal/catalog/application"
	"github.com/biomebistro/biome-bistro-services/api/internal/catalog/domain"
)

// ReviewRepository implements application.ReviewRepository using MongoDB.
type ReviewRepository struct {
	collection *mongo.Collection
}

// NewReviewRepository creates a new Mongo-backed review repository.
func NewReviewRepository(db *mongo.Database, collectionName string) *ReviewRepository {
	return &ReviewRepository{collection: db.Collection(collectionName)}
}

// FindByID はレビュー ID を ObjectID 化して単一エンティティを復元する。
func (r *ReviewRepository) FindByID(ctx context.Context, id string) (*domain.Review, error) {
	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return nil, application.ErrReviewNotFound
	}
	var doc ReviewDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, application.ErrReviewNotFound
		}
		return nil, err
	}
	review := mapReviewDocument(doc)
	return &review, nil
}

// FindByRestaurant returns a restaurant's reviews, newest first.
func (r *ReviewRepository) FindByRestaurant(ctx context.Context, restaurantID string, filter application.ReviewFilter) ([]domain.Review, error) {
	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(restaurantID))
	if err != nil {
		return nil, application.ErrRestaurantNotFound
	}

	mongoFilter := bson.M{"restaurant_id": objectID}
	ratingRange := bson.M{}
	if filter.MinRating > 0 {
		ratingRange["$gte"] = filter.MinRating
	}
	if filter.MaxRating > 0 {
		ratingRange["$lte"] = filter.MaxRating
	}
	if len(ratingRange) > 0 {
		mongoFilter["rating"] = ratingRange
	}
	if filter.VerifiedVisit != nil {
		mongoFilter["verified_visit"] = *filter.VerifiedVisit
	}

	findOpts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if filter.Limit > 0 {
		findOpts.SetLimit(int64(filter.Limit))
	}
	return r.findMany(ctx, mongoFilter, findOpts)
}

// FindByEmail returns every review written under the given email.
func (r *ReviewRepository) FindByEmail(ctx context.Context, email string) ([]domain.Review, error) {
	findOpts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return r.findMany(ctx, bson.M{"reviewer_email": strings.ToLower(strings.TrimSpace(email))}, findOpts)
}

// FindRecent returns the newest reviews across all restaurants.
func (r *ReviewRepository) FindRecent(ctx context.Context, limit int) ([]domain.Review, error) {
	findOpts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))
	return r.findMany(ctx, bson.M{}, findOpts)
}

// FindTop returns a restaurant's best reviews, highest rating first and
// helpful votes as the tiebreak.
func (r *ReviewRepository) FindTop(ctx context.Context, restaurantID string, limit int) ([]domain.Review, error) {
	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(restaurantID))
	if err != nil {
		return nil, application.ErrRestaurantNotFound
	}
	findOpts := options.Find().
		SetSort(bson.D{{Key: "rating", Value: -1}, {Key: "helpful_votes", Value: -1}}).
		SetLimit(int64(limit))
	return r.findMany(ctx, bson.M{"restaurant_id": objectID}, findOpts)
}

// Create はドメインレビューを Mongo ドキュメントへ変換して新規登録する。
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	if review == nil {
		return errors.New("review payload is nil")
	}
	doc, err := mapDomainReviewToDocument(review)
	if err != nil {
		return err
	}
	doc.ID = primitive.NewObjectID()
	review.ID = doc.ID.Hex()
	_, err = r.collection.InsertOne(ctx, doc)
	return err
}

// Update はレビューの差し替え更新を行う。
func (r *ReviewRepository) Update(ctx context.Context, review *domain.Review) error {
	if review == nil {
		return errors.New("review payload is nil")
	}
	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(review.ID))
	if err != nil {
		return application.ErrReviewNotFound
	}
	doc, err := mapDomainReviewToDocument(review)
	if err != nil {
		return err
	}
	update := bson.M{
		"rating":            doc.Rating,
		"title":             doc.Title,
		"comment":           doc.Comment,
		"ratings_breakdown": doc.RatingsBreakdown,
		"verified_visit":    doc.VerifiedVisit,
		"updated_at":        time.Now().UTC(),
	}
	result, err := r.collection.UpdateByID(ctx, objectID, bson.M{"$set": update})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return application.ErrReviewNotFound
	}
	return nil
}

// Delete removes a review document.
func (r *ReviewRepository) Delete(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return application.ErrReviewNotFound
	}
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return application.ErrReviewNotFound
	}
	return nil
}

// AggregateRatings は対象店舗のレビューを 1 往復で集計し、平均評価・件数・
// カテゴリ別平均のスナップショットを返す。レビューが無い場合はゼロ値。
func (r *ReviewRepository) AggregateRatings(ctx context.Context, restaurantID string) (domain.RatingSnapshot, error) {
	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(restaurantID))
	if err != nil {
		return domain.RatingSnapshot{}, application.ErrRestaurantNotFound
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"restaurant_id": objectID}}},
		{{Key: "$group", Value: bson.M{
			"_id":              nil,
			"totalReviews":     bson.M{"$sum": 1},
			"avgRating":        bson.M{"$avg": "$rating"},
			"avgFoodQuality":   bson.M{"$avg": "$ratings_breakdown.food_quality"},
			"avgService":       bson.M{"$avg": "$ratings_breakdown.service"},
			"avgAmbiance":      bson.M{"$avg": "$ratings_breakdown.ambiance"},
			"avgValueForMoney": bson.M{"$avg": "$ratings_breakdown.value_for_money"},
			"avgCleanliness":   bson.M{"$avg": "$ratings_breakdown.cleanliness"},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return domain.RatingSnapshot{}, err
	}
	defer cursor.Close(ctx)

	snapshot := domain.RatingSnapshot{}
	if cursor.Next(ctx) {
		var agg struct {
			TotalReviews     int     `bson:"totalReviews"`
			AvgRating        float64 `bson:"avgRating"`
			AvgFoodQuality   float64 `bson:"avgFoodQuality"`
			AvgService       float64 `bson:"avgService"`
			AvgAmbiance      float64 `bson:"avgAmbiance"`
			AvgValueForMoney float64 `bson:"avgValueForMoney"`
			AvgCleanliness   float64 `bson:"avgCleanliness"`
		}
		if err := cursor.Decode(&agg); err != nil {
			return domain.RatingSnapshot{}, err
		}
		snapshot = domain.RatingSnapshot{
			AverageRating: domain.Round1(agg.AvgRating),
			TotalReviews:  agg.TotalReviews,
			RatingsBreakdown: domain.RatingBreakdown{
				FoodQuality:   domain.Round1(agg.AvgFoodQuality),
				Service:       domain.Round1(agg.AvgService),
				Ambiance:      domain.Round1(agg.AvgAmbiance),
				ValueForMoney: domain.Round1(agg.AvgValueForMoney),
				Cleanliness:   domain.Round1(agg.AvgCleanliness),
			},
		}
	}
	if err := cursor.Err(); err != nil {
		return domain.RatingSnapshot{}, err
	}
	return snapshot, nil
}

// AddHelpfulVote increments the helpful counter and returns the new value.
func (r *ReviewRepository) AddHelpfulVote(ctx context.Context, id string) (int, error) {
	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return 0, application.ErrReviewNotFound
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc ReviewDocument
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objectID}, bson.M{"$inc": bson.M{"helpful_votes": 1}}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, application.ErrReviewNotFound
		}
		return 0, err
	}
	return doc.HelpfulVotes, nil
}

// AddRestaurantResponse embeds the owner reply into the review document.
func (r *ReviewRepository) AddRestaurantResponse(ctx context.Context, id, reply string) error {
	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return application.ErrReviewNotFound
	}
	update := bson.M{
		"response": ResponseDocument{
			FromRestaurant: true,
			Reply:          reply,
			RepliedAt:      time.Now().UTC(),
		},
		"updated_at": time.Now().UTC(),
	}
	result, err := r.collection.UpdateByID(ctx, objectID, bson.M{"$set": update})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return application.ErrReviewNotFound
	}
	return nil
}

func (r *ReviewRepository) findMany(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]domain.Review, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	reviews := make([]domain.Review, 0)
	for cursor.Next(ctx) {
		var doc ReviewDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		reviews = append(reviews, mapReviewDocument(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return reviews, nil
}

// mapReviewDocument は Mongo レビュー文書をドメイン Review へ変換する。
func mapReviewDocument(doc ReviewDocument) domain.Review {
	var response *domain.RestaurantResponse
	if doc.Response != nil {
		response = &domain.RestaurantResponse{
			FromRestaurant: doc.Response.FromRestaurant,
			Reply:          doc.Response.Reply,
			RepliedAt:      doc.Response.RepliedAt,
		}
	}
	return domain.Review{
		ID:               doc.ID.Hex(),
		RestaurantID:     doc.RestaurantID.Hex(),
		ReviewerName:     doc.ReviewerName,
		ReviewerEmail:    doc.ReviewerEmail,
		Rating:           doc.Rating,
		Title:            doc.Title,
		Comment:          doc.Comment,
		RatingsBreakdown: mapBreakdownDocument(doc.RatingsBreakdown),
		HelpfulVotes:     doc.HelpfulVotes,
		VerifiedVisit:    doc.VerifiedVisit,
		Response:         response,
		CreatedAt:        doc.CreatedAt,
		UpdatedAt:        doc.UpdatedAt,
	}
}

// mapDomainReviewToDocument はドメイン Review を Mongo 保存形式に射影する。
func mapDomainReviewToDocument(review *domain.Review) (ReviewDocument, error) {
	restaurantID, err := primitive.ObjectIDFromHex(strings.TrimSpace(review.RestaurantID))
	if err != nil {
		return ReviewDocument{}, application.ErrRestaurantNotFound
	}

	createdAt := review.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	updatedAt := review.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}

	return ReviewDocument{
		RestaurantID:  restaurantID,
		ReviewerName:  review.ReviewerName,
		ReviewerEmail: strings.ToLower(review.ReviewerEmail),
		Rating:        review.Rating,
		Title:         review.Title,
		Comment:       review.Comment,
		RatingsBreakdown: RatingsBreakdownDocument{
			FoodQuality:   review.RatingsBreakdown.FoodQuality,
			Service:       review.RatingsBreakdown.Service,
			Ambiance:      review.RatingsBreakdown.Ambiance,
			ValueForMoney: review.RatingsBreakdown.ValueForMoney,
			Cleanliness:   review.RatingsBreakdown.Cleanliness,
		},
		HelpfulVotes:  review.HelpfulVotes,
		VerifiedVisit: review.VerifiedVisit,
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}, nil
}
