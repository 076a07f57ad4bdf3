// Command seed populates a MongoDB instance with demo biomes,
// restaurants, reviews and reservations for local development.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/biomebistro/biome-bistro-services/api/internal/catalog/domain"
	"github.com/biomebistro/biome-bistro-services/api/internal/config"
	mongodoc "github.com/biomebistro/biome-bistro-services/api/internal/infrastructure/mongo"
)

type seedOptions struct {
	restaurantsPerBiome int
	reviewsPerPlace     int
	reservationsPerDay  int
	dropCollections     bool
	randomSeed          int64
}

type biomeSpec struct {
	name        string
	code        string
	icon        string
	climate     string
	description string
}

// 8 つのテーマ環境。確認コードの 2 文字コードと揃えている。
var biomeSpecs = []biomeSpec{
	{"Rainforest", "RF", "🌿", "humid", "Dense canopy dining under a living green roof."},
	{"Desert Oasis", "DO", "🌵", "arid", "Palm shade, sandstone walls and cool spring water."},
	{"Coral Reef", "CR", "🐠", "marine", "Aquarium walls and bioluminescent lighting."},
	{"Alpine Meadow", "AM", "🏔", "temperate", "Wildflower terraces with mountain air misting."},
	{"Arctic Tundra", "AT", "❄", "polar", "Ice-sculpted interiors kept crisp and bright."},
	{"Tropical Lagoon", "TF", "🏝", "tropical", "Overwater seating on a turquoise shallow."},
	{"Autumn Forest", "AS", "🍁", "temperate", "Amber light and a floor of falling leaves."},
	{"Mangrove Swamp", "MF", "🌊", "brackish", "Boardwalk tables threaded between the roots."},
}

var cuisineStyles = []string{"botanical French", "coastal fusion", "forest-to-table", "fire & stone", "market seasonal"}
var priceRanges = []string{"€", "€€", "€€€", "€€€€"}

var firstNames = []string{"Claire", "Marc", "Lucie", "Hugo", "Emma", "Noah", "Inès", "Louis", "Jade", "Gabriel"}
var lastNames = []string{"Fontaine", "Dubois", "Laurent", "Moreau", "Petit", "Roux", "Garnier", "Chevalier"}

var reviewTitles = []string{
	"A world away from the street outside",
	"Immersive and delicious",
	"Worth the booking wait",
	"Great for a celebration",
	"The setting steals the show",
}
var reviewComments = []string{
	"The themed room is stunning and the tasting menu keeps up with it.",
	"Service was warm and the pacing of the courses felt just right.",
	"We came for the decor and stayed for the dessert cart.",
	"A bit noisy at peak hour but the food made up for everything.",
	"Seasonal menu, clever cocktails and a room you will not forget.",
}

func main() {
	_ = godotenv.Load()

	opts := parseFlags()
	rng := rand.New(rand.NewSource(opts.randomSeed))

	cfg := config.Load()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	clientOptions := options.Client().ApplyURI(cfg.MongoURI).SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		log.Fatalf("MongoDB 接続に失敗しました: %v", err)
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	db := client.Database(cfg.MongoDatabase)
	biomes := db.Collection(cfg.BiomeCollection)
	restaurants := db.Collection(cfg.RestaurantCollection)
	reviews := db.Collection(cfg.ReviewCollection)
	reservations := db.Collection(cfg.ReservationCollection)

	if opts.dropCollections {
		for _, coll := range []*mongo.Collection{biomes, restaurants, reviews, reservations} {
			if err := coll.Drop(ctx); err != nil {
				log.Fatalf("コレクション %s の削除に失敗: %v", coll.Name(), err)
			}
		}
	}

	if err := ensureIndexes(ctx, restaurants, reviews, reservations); err != nil {
		log.Fatalf("インデックス作成に失敗: %v", err)
	}

	biomeIDs := seedBiomes(ctx, biomes)
	restaurantDocs := seedRestaurants(ctx, rng, restaurants, biomeIDs, opts.restaurantsPerBiome)
	reviewCount := seedReviews(ctx, rng, reviews, restaurants, restaurantDocs, opts.reviewsPerPlace)
	reservationCount := seedReservations(ctx, rng, reservations, restaurantDocs, opts.reservationsPerDay)

	fmt.Printf("seeded %d biomes, %d restaurants, %d reviews, %d reservations into %s\n",
		len(biomeIDs), len(restaurantDocs), reviewCount, reservationCount, cfg.MongoDatabase)
}

func parseFlags() seedOptions {
	opts := seedOptions{}
	flag.IntVar(&opts.restaurantsPerBiome, "restaurants", 2, "restaurants generated per biome")
	flag.IntVar(&opts.reviewsPerPlace, "reviews", 6, "reviews generated per restaurant")
	flag.IntVar(&opts.reservationsPerDay, "reservations", 4, "reservations generated per restaurant")
	flag.BoolVar(&opts.dropCollections, "drop", false, "drop target collections before seeding")
	flag.Int64Var(&opts.randomSeed, "seed", time.Now().UnixNano(), "random seed for reproducible runs")
	flag.Parse()

	if opts.restaurantsPerBiome <= 0 || opts.reviewsPerPlace < 0 || opts.reservationsPerDay < 0 {
		fmt.Fprintln(os.Stderr, "counts must be non-negative (restaurants at least 1)")
		os.Exit(2)
	}
	return opts
}

// ensureIndexes は API が前提とするインデックスを揃える。
// location の 2dsphere は近隣検索、confirmation_code の unique は照会用。
func ensureIndexes(ctx context.Context, restaurants, reviews, reservations *mongo.Collection) error {
	_, err := restaurants.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "location", Value: "2dsphere"}}},
		{Keys: bson.D{{Key: "biome_id", Value: 1}}},
		{Keys: bson.D{{Key: "average_rating", Value: -1}}},
	})
	if err != nil {
		return err
	}

	_, err = reviews.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "restaurant_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "reviewer_email", Value: 1}}},
	})
	if err != nil {
		return err
	}

	_, err = reservations.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "confirmation_code", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "restaurant_id", Value: 1}, {Key: "date", Value: 1}, {Key: "time", Value: 1}}},
		{Keys: bson.D{{Key: "customer.email", Value: 1}}},
	})
	return err
}

func seedBiomes(ctx context.Context, coll *mongo.Collection) map[string]primitive.ObjectID {
	ids := make(map[string]primitive.ObjectID, len(biomeSpecs))
	now := time.Now().UTC()
	docs := make([]any, 0, len(biomeSpecs))
	for _, spec := range biomeSpecs {
		id := primitive.NewObjectID()
		ids[spec.code] = id
		docs = append(docs, mongodoc.BiomeDocument{
			ID:          id,
			Name:        spec.name,
			Code:        spec.code,
			Icon:        spec.icon,
			Description: spec.description,
			Climate:     spec.climate,
			CreatedAt:   now,
		})
	}
	if _, err := coll.InsertMany(ctx, docs); err != nil {
		log.Fatalf("バイオームの投入に失敗: %v", err)
	}
	return ids
}

func seedRestaurants(ctx context.Context, rng *rand.Rand, coll *mongo.Collection, biomeIDs map[string]primitive.ObjectID, perBiome int) []mongodoc.RestaurantDocument {
	// パリ中心部の周囲に散らす。
	const centerLat, centerLon = 48.8566, 2.3522
	now := time.Now().UTC()

	docs := make([]mongodoc.RestaurantDocument, 0, len(biomeSpecs)*perBiome)
	inserts := make([]any, 0, cap(docs))
	for _, spec := range biomeSpecs {
		for i := 0; i < perBiome; i++ {
			lat := centerLat + (rng.Float64()-0.5)*0.08
			lon := centerLon + (rng.Float64()-0.5)*0.12
			doc := mongodoc.RestaurantDocument{
				ID:                  primitive.NewObjectID(),
				BiomeID:             biomeIDs[spec.code],
				Name:                fmt.Sprintf("%s Table %d", spec.name, i+1),
				Description:         spec.description,
				CuisineStyle:        cuisineStyles[rng.Intn(len(cuisineStyles))],
				PriceRange:          priceRanges[rng.Intn(len(priceRanges))],
				Capacity:            30 + rng.Intn(60),
				Status:              domain.RestaurantStatusActive,
				SustainabilityScore: float64(60+rng.Intn(40)) / 10,
				Location: &mongodoc.GeoPointDocument{
					Type:        "Point",
					Coordinates: []float64{lon, lat},
				},
				Address:   fmt.Sprintf("%d Rue des Biomes, Paris", 1+rng.Intn(200)),
				CreatedAt: now,
				UpdatedAt: now,
			}
			docs = append(docs, doc)
			inserts = append(inserts, doc)
		}
	}
	if _, err := coll.InsertMany(ctx, inserts); err != nil {
		log.Fatalf("店舗の投入に失敗: %v", err)
	}
	return docs
}

func seedReviews(ctx context.Context, rng *rand.Rand, reviews, restaurants *mongo.Collection, places []mongodoc.RestaurantDocument, perPlace int) int {
	total := 0
	for _, place := range places {
		docs := make([]any, 0, perPlace)
		var ratingSum int
		breakdownSum := mongodoc.RatingsBreakdownDocument{}
		for i := 0; i < perPlace; i++ {
			rating := 2 + rng.Intn(4)
			breakdown := mongodoc.RatingsBreakdownDocument{
				FoodQuality:   float64(clamp(rating+rng.Intn(3)-1, 1, 5)),
				Service:       float64(clamp(rating+rng.Intn(3)-1, 1, 5)),
				Ambiance:      float64(clamp(rating+rng.Intn(3)-1, 1, 5)),
				ValueForMoney: float64(clamp(rating+rng.Intn(3)-1, 1, 5)),
				Cleanliness:   float64(clamp(rating+rng.Intn(3)-1, 1, 5)),
			}
			name := firstNames[rng.Intn(len(firstNames))] + " " + lastNames[rng.Intn(len(lastNames))]
			createdAt := time.Now().UTC().AddDate(0, 0, -rng.Intn(120))
			docs = append(docs, mongodoc.ReviewDocument{
				ID:               primitive.NewObjectID(),
				RestaurantID:     place.ID,
				ReviewerName:     name,
				ReviewerEmail:    strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.fr",
				Rating:           rating,
				Title:            reviewTitles[rng.Intn(len(reviewTitles))],
				Comment:          reviewComments[rng.Intn(len(reviewComments))],
				RatingsBreakdown: breakdown,
				HelpfulVotes:     rng.Intn(30),
				VerifiedVisit:    rng.Intn(3) > 0,
				CreatedAt:        createdAt,
				UpdatedAt:        createdAt,
			})
			ratingSum += rating
			breakdownSum.FoodQuality += breakdown.FoodQuality
			breakdownSum.Service += breakdown.Service
			breakdownSum.Ambiance += breakdown.Ambiance
			breakdownSum.ValueForMoney += breakdown.ValueForMoney
			breakdownSum.Cleanliness += breakdown.Cleanliness
		}
		if len(docs) == 0 {
			continue
		}
		if _, err := reviews.InsertMany(ctx, docs); err != nil {
			log.Fatalf("レビューの投入に失敗: %v", err)
		}
		total += len(docs)

		// 集計キャッシュも投入済みレビューと整合させておく。
		count := float64(perPlace)
		update := bson.M{
			"average_rating": domain.Round1(float64(ratingSum) / count),
			"total_reviews":  perPlace,
			"ratings_breakdown": mongodoc.RatingsBreakdownDocument{
				FoodQuality:   domain.Round1(breakdownSum.FoodQuality / count),
				Service:       domain.Round1(breakdownSum.Service / count),
				Ambiance:      domain.Round1(breakdownSum.Ambiance / count),
				ValueForMoney: domain.Round1(breakdownSum.ValueForMoney / count),
				Cleanliness:   domain.Round1(breakdownSum.Cleanliness / count),
			},
		}
		if _, err := restaurants.UpdateByID(ctx, place.ID, bson.M{"$set": update}); err != nil {
			log.Fatalf("店舗集計の更新に失敗: %v", err)
		}
	}
	return total
}

func seedReservations(ctx context.Context, rng *rand.Rand, coll *mongo.Collection, places []mongodoc.RestaurantDocument, perPlace int) int {
	slots := []string{"11:00", "12:00", "12:30", "13:00", "18:00", "19:00", "19:30", "20:00", "20:30"}
	statuses := []string{"pending", "confirmed", "confirmed", "confirmed"}
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	total := 0
	for _, place := range places {
		docs := make([]any, 0, perPlace)
		for i := 0; i < perPlace; i++ {
			name := firstNames[rng.Intn(len(firstNames))] + " " + lastNames[rng.Intn(len(lastNames))]
			date := today.AddDate(0, 0, 1+rng.Intn(14))
			slot := slots[rng.Intn(len(slots))]
			code := fmt.Sprintf("BIO-%s-%s-%04d", biomeSpecs[rng.Intn(len(biomeSpecs))].code, date.Format("20060102"), rng.Intn(10000))
			docs = append(docs, mongodoc.ReservationDocument{
				ID:               primitive.NewObjectID(),
				RestaurantID:     place.ID,
				ConfirmationCode: code,
				Customer: mongodoc.CustomerDocument{
					Name:  name,
					Email: strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.fr",
					Phone: fmt.Sprintf("+33%d%08d", 1+rng.Intn(7), rng.Intn(100000000)),
				},
				Date:      date,
				Time:      slot,
				PartySize: 1 + rng.Intn(8),
				Status:    statuses[rng.Intn(len(statuses))],
				CreatedAt: now,
				UpdatedAt: now,
			})
		}
		if len(docs) == 0 {
			continue
		}
		if _, err := coll.InsertMany(ctx, docs); err != nil {
			log.Fatalf("予約の投入に失敗: %v", err)
		}
		total += len(docs)
	}
	return total
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
