package mongo

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/biomebistro/biome-bistro-services/api/internal/catalog/application"
	"github.com/biomebistro/biome-bistro-services/api/internal/catalog/domain"
	"github.com/biomebistro/biome-bistro-services/api/internal/geo"
)

// RestaurantRepository implements application.RestaurantRepository using
// MongoDB. It also serves the booking context's capacity lookups.
type RestaurantRepository struct {
	collection *mongo.Collection
}

// NewRestaurantRepository creates a new Mongo-backed restaurant repository.
func NewRestaurantRepository(db *mongo.Database, collectionName string) *RestaurantRepository {
	return &RestaurantRepository{collection: db.Collection(collectionName)}
}

// Find returns restaurants filtered and sorted according to the provided criteria.
func (r *RestaurantRepository) Find(ctx context.Context, filter application.RestaurantFilter) ([]domain.Restaurant, error) {
	mongoFilter := bson.M{}
	if filter.BiomeID != "" {
		biomeID, err := primitive.ObjectIDFromHex(strings.TrimSpace(filter.BiomeID))
		if err != nil {
			return nil, application.ErrBiomeNotFound
		}
		mongoFilter["biome_id"] = biomeID
	}
	if filter.PriceRange != "" {
		mongoFilter["price_range"] = strings.TrimSpace(filter.PriceRange)
	}
	if filter.CuisineStyle != "" {
		mongoFilter["cuisine_style"] = strings.TrimSpace(filter.CuisineStyle)
	}
	if filter.Status != "" {
		mongoFilter["status"] = filter.Status
	}
	if filter.MinRating > 0 {
		mongoFilter["average_rating"] = bson.M{"$gte": filter.MinRating}
	}
	if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(keyword), Options: "i"}
		mongoFilter["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"description": pattern},
			bson.M{"address": pattern},
		}
	}

	findOpts := options.Find().SetSort(sortSpec(filter.SortBy))
	if filter.Limit > 0 {
		findOpts.SetLimit(int64(filter.Limit))
	}

	cursor, err := r.collection.Find(ctx, mongoFilter, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	restaurants := make([]domain.Restaurant, 0)
	for cursor.Next(ctx) {
		var doc RestaurantDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		restaurants = append(restaurants, mapRestaurantDocument(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return restaurants, nil
}

// FindByID returns a single restaurant by its identifier.
func (r *RestaurantRepository) FindByID(ctx context.Context, id string) (*domain.Restaurant, error) {
	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return nil, application.ErrRestaurantNotFound
	}
	var doc RestaurantDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, application.ErrRestaurantNotFound
		}
		return nil, err
	}
	restaurant := mapRestaurantDocument(doc)
	return &restaurant, nil
}

// FindNearby は 2dsphere インデックスを使って半径内の候補を距離昇順で返す。
// 厳密な距離注釈と再ソートはアプリケーション層が行う。
func (r *RestaurantRepository) FindNearby(ctx context.Context, center geo.Point, radiusKm float64) ([]domain.Restaurant, error) {
	mongoFilter := bson.M{
		"status": domain.RestaurantStatusActive,
		"location": bson.M{
			"$nearSphere": bson.M{
				"$geometry": bson.M{
					"type":        "Point",
					"coordinates": bson.A{center.Longitude, center.Latitude},
				},
				"$maxDistance": radiusKm * 1000,
			},
		},
	}

	cursor, err := r.collection.Find(ctx, mongoFilter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	restaurants := make([]domain.Restaurant, 0)
	for cursor.Next(ctx) {
		var doc RestaurantDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		restaurants = append(restaurants, mapRestaurantDocument(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return restaurants, nil
}

// FindSimilar returns other active restaurants sharing the biome,
// best-rated first.
func (r *RestaurantRepository) FindSimilar(ctx context.Context, id string, limit int) ([]domain.Restaurant, error) {
	base, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	baseID, _ := primitive.ObjectIDFromHex(base.ID)
	biomeID, err := primitive.ObjectIDFromHex(base.BiomeID)
	if err != nil {
		return nil, application.ErrBiomeNotFound
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "average_rating", Value: -1}}).
		SetLimit(int64(limit))
	cursor, err := r.collection.Find(ctx, bson.M{
		"_id":      bson.M{"$ne": baseID},
		"biome_id": biomeID,
		"status":   domain.RestaurantStatusActive,
	}, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	restaurants := make([]domain.Restaurant, 0)
	for cursor.Next(ctx) {
		var doc RestaurantDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		restaurants = append(restaurants, mapRestaurantDocument(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return restaurants, nil
}

// UpdateAggregates はレビュー集計のスナップショットを店舗ドキュメントへ書き戻す。
func (r *RestaurantRepository) UpdateAggregates(ctx context.Context, restaurantID string, snapshot domain.RatingSnapshot) error {
	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(restaurantID))
	if err != nil {
		return application.ErrRestaurantNotFound
	}
	update := bson.M{
		"average_rating": snapshot.AverageRating,
		"total_reviews":  snapshot.TotalReviews,
		"ratings_breakdown": RatingsBreakdownDocument{
			FoodQuality:   snapshot.RatingsBreakdown.FoodQuality,
			Service:       snapshot.RatingsBreakdown.Service,
			Ambiance:      snapshot.RatingsBreakdown.Ambiance,
			ValueForMoney: snapshot.RatingsBreakdown.ValueForMoney,
			Cleanliness:   snapshot.RatingsBreakdown.Cleanliness,
		},
		"updated_at": time.Now().UTC(),
	}
	result, err := r.collection.UpdateByID(ctx, objectID, bson.M{"$set": update})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return application.ErrRestaurantNotFound
	}
	return nil
}

// CapacityByID は予約コンテキスト向けに座席数のみを引く。
func (r *RestaurantRepository) CapacityByID(ctx context.Context, restaurantID string) (int, error) {
	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(restaurantID))
	if err != nil {
		return 0, application.ErrRestaurantNotFound
	}
	var doc struct {
		Capacity int `bson:"capacity"`
	}
	opts := options.FindOne().SetProjection(bson.M{"capacity": 1})
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, application.ErrRestaurantNotFound
		}
		return 0, err
	}
	return doc.Capacity, nil
}

func sortSpec(sortKey string) bson.D {
	switch sortKey {
	case "rating":
		return bson.D{{Key: "average_rating", Value: -1}, {Key: "total_reviews", Value: -1}}
	case "reviews":
		return bson.D{{Key: "total_reviews", Value: -1}}
	case "name":
		return bson.D{{Key: "name", Value: 1}}
	// price_range は "€".."€€€€" の文字列なので辞書順で価格順になる。
	case "price_asc":
		return bson.D{{Key: "price_range", Value: 1}, {Key: "name", Value: 1}}
	case "price_desc":
		return bson.D{{Key: "price_range", Value: -1}, {Key: "name", Value: 1}}
	default:
		return bson.D{{Key: "created_at", Value: -1}}
	}
}

func mapRestaurantDocument(doc RestaurantDocument) domain.Restaurant {
	var location *domain.Coordinates
	if doc.Location != nil && len(doc.Location.Coordinates) == 2 {
		location = &domain.Coordinates{
			Latitude:  doc.Location.Coordinates[1],
			Longitude: doc.Location.Coordinates[0],
		}
	}

	hours := make([]domain.OpeningHours, 0, len(doc.OpeningHours))
	for _, h := range doc.OpeningHours {
		hours = append(hours, domain.OpeningHours{Day: h.Day, Open: h.Open, Close: h.Close, Closed: h.Closed})
	}

	return domain.Restaurant{
		ID:                  doc.ID.Hex(),
		BiomeID:             doc.BiomeID.Hex(),
		Name:                doc.Name,
		Description:         doc.Description,
		CuisineStyle:        doc.CuisineStyle,
		PriceRange:          doc.PriceRange,
		Capacity:            doc.Capacity,
		Status:              doc.Status,
		SustainabilityScore: doc.SustainabilityScore,
		Location:            location,
		Address:             doc.Address,
		AverageRating:       doc.AverageRating,
		TotalReviews:        doc.TotalReviews,
		RatingsBreakdown:    mapBreakdownDocument(doc.RatingsBreakdown),
		OpeningHours:        hours,
		CreatedAt:           doc.CreatedAt,
		UpdatedAt:           doc.UpdatedAt,
	}
}

func mapBreakdownDocument(doc RatingsBreakdownDocument) domain.RatingBreakdown {
	return domain.RatingBreakdown{
		FoodQuality:   doc.FoodQuality,
		Service:       doc.Service,
		Ambiance:      doc.Ambiance,
		ValueForMoney: doc.ValueForMoney,
		Cleanliness:   doc.Cleanliness,
	}
}
