package mongo

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/biomebistro/biome-bistro-services/api/internal/catalog/application"
	"github.com/biomebistro/biome-bistro-services/api/internal/catalog/domain"
)

// BiomeRepository implements application.BiomeRepository using MongoDB.
type BiomeRepository struct {
	collection *mongo.Collection
}

// NewBiomeRepository creates a new Mongo-backed biome repository.
func NewBiomeRepository(db *mongo.Database, collectionName string) *BiomeRepository {
	return &BiomeRepository{collection: db.Collection(collectionName)}
}

// FindAll returns the full biome catalog, alphabetically.
func (r *BiomeRepository) FindAll(ctx context.Context) ([]domain.Biome, error) {
	findOpts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	biomes := make([]domain.Biome, 0)
	for cursor.Next(ctx) {
		var doc BiomeDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		biomes = append(biomes, mapBiomeDocument(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return biomes, nil
}

// FindByID returns a single biome by its identifier.
func (r *BiomeRepository) FindByID(ctx context.Context, id string) (*domain.Biome, error) {
	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return nil, application.ErrBiomeNotFound
	}
	var doc BiomeDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, application.ErrBiomeNotFound
		}
		return nil, err
	}
	biome := mapBiomeDocument(doc)
	return &biome, nil
}

func mapBiomeDocument(doc BiomeDocument) domain.Biome {
	return domain.Biome{
		ID:          doc.ID.Hex(),
		Name:        doc.Name,
		Code:        doc.Code,
		Icon:        doc.Icon,
		Description: doc.Description,
		Climate:     doc.Climate,
		CreatedAt:   doc.CreatedAt,
	}
}
