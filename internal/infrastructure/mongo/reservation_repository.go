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

	"github.com/biomebistro/biome-bistro-services/api/internal/booking/application"
	"github.com/biomebistro/biome-bistro-services/api/internal/booking/domain"
)

// ReservationRepository implements application.ReservationRepository
// using MongoDB.
type ReservationRepository struct {
	collection *mongo.Collection
}

// NewReservationRepository creates a new Mongo-backed reservation repository.
func NewReservationRepository(db *mongo.Database, collectionName string) *ReservationRepository {
	return &ReservationRepository{collection: db.Collection(collectionName)}
}

// FindByID は予約 ID を ObjectID 化して単一エンティティを復元する。
func (r *ReservationRepository) FindByID(ctx context.Context, id string) (*domain.Reservation, error) {
	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return nil, application.ErrReservationNotFound
	}
	var doc ReservationDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, application.ErrReservationNotFound
		}
		return nil, err
	}
	reservation := mapReservationDocument(doc)
	return &reservation, nil
}

// FindByConfirmationCode looks a reservation up by its public code.
func (r *ReservationRepository) FindByConfirmationCode(ctx context.Context, code string) (*domain.Reservation, error) {
	var doc ReservationDocument
	filter := bson.M{"confirmation_code": strings.ToUpper(strings.TrimSpace(code))}
	if err := r.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, application.ErrReservationNotFound
		}
		return nil, err
	}
	reservation := mapReservationDocument(doc)
	return &reservation, nil
}

// FindByCustomerEmail returns a customer's reservations, newest first.
func (r *ReservationRepository) FindByCustomerEmail(ctx context.Context, email string) ([]domain.Reservation, error) {
	filter := bson.M{"customer.email": strings.ToLower(strings.TrimSpace(email))}
	findOpts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "time", Value: -1}})
	return r.findMany(ctx, filter, findOpts)
}

// FindByRestaurant returns a restaurant's reservations with optional
// date/status narrowing, earliest slot first.
func (r *ReservationRepository) FindByRestaurant(ctx context.Context, restaurantID string, filter application.ReservationFilter) ([]domain.Reservation, error) {
	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(restaurantID))
	if err != nil {
		return nil, application.ErrRestaurantNotFound
	}
	mongoFilter := bson.M{"restaurant_id": objectID}
	if filter.Date != nil {
		mongoFilter["date"] = *filter.Date
	}
	if filter.Status != "" {
		mongoFilter["status"] = string(filter.Status)
	}
	findOpts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "time", Value: 1}})
	return r.findMany(ctx, mongoFilter, findOpts)
}

// FindUpcoming returns future pending/confirmed reservations from the
// given day on, soonest first.
func (r *ReservationRepository) FindUpcoming(ctx context.Context, restaurantID string, from time.Time, limit int) ([]domain.Reservation, error) {
	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(restaurantID))
	if err != nil {
		return nil, application.ErrRestaurantNotFound
	}
	mongoFilter := bson.M{
		"restaurant_id": objectID,
		"date":          bson.M{"$gte": from},
		"status":        bson.M{"$in": bson.A{string(domain.StatusPending), string(domain.StatusConfirmed)}},
	}
	findOpts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "time", Value: 1}})
	if limit > 0 {
		findOpts.SetLimit(int64(limit))
	}
	return r.findMany(ctx, mongoFilter, findOpts)
}

// SumActivePartySize は対象スロットの pending/confirmed 予約の人数合計を
// 1 往復の集計で求める。excludeID は更新時に自分自身の寄与を除くために使う。
func (r *ReservationRepository) SumActivePartySize(ctx context.Context, restaurantID string, date time.Time, slot string, excludeID string) (int, error) {
	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(restaurantID))
	if err != nil {
		return 0, application.ErrRestaurantNotFound
	}
	match := bson.M{
		"restaurant_id": objectID,
		"date":          date,
		"time":          slot,
		"status":        bson.M{"$in": bson.A{string(domain.StatusPending), string(domain.StatusConfirmed)}},
	}
	if excludeID != "" {
		excludeObjectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(excludeID))
		if err != nil {
			return 0, application.ErrReservationNotFound
		}
		match["_id"] = bson.M{"$ne": excludeObjectID}
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id":        nil,
			"totalSeats": bson.M{"$sum": "$party_size"},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	total := 0
	if cursor.Next(ctx) {
		var agg struct {
			TotalSeats int `bson:"totalSeats"`
		}
		if err := cursor.Decode(&agg); err != nil {
			return 0, err
		}
		total = agg.TotalSeats
	}
	if err := cursor.Err(); err != nil {
		return 0, err
	}
	return total, nil
}

// CountByRestaurant counts a restaurant's reservations, optionally by status.
func (r *ReservationRepository) CountByRestaurant(ctx context.Context, restaurantID string, status domain.Status) (int64, error) {
	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(restaurantID))
	if err != nil {
		return 0, application.ErrRestaurantNotFound
	}
	filter := bson.M{"restaurant_id": objectID}
	if status != "" {
		filter["status"] = string(status)
	}
	return r.collection.CountDocuments(ctx, filter)
}

// Create はドメイン予約を Mongo ドキュメントへ変換して新規登録する。
func (r *ReservationRepository) Create(ctx context.Context, reservation *domain.Reservation) error {
	if reservation == nil {
		return errors.New("reservation payload is nil")
	}
	doc, err := mapDomainReservationToDocument(reservation)
	if err != nil {
		return err
	}
	doc.ID = primitive.NewObjectID()
	reservation.ID = doc.ID.Hex()
	_, err = r.collection.InsertOne(ctx, doc)
	return err
}

// Update は予約の差し替え更新を行う。
func (r *ReservationRepository) Update(ctx context.Context, reservation *domain.Reservation) error {
	if reservation == nil {
		return errors.New("reservation payload is nil")
	}
	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(reservation.ID))
	if err != nil {
		return application.ErrReservationNotFound
	}
	doc, err := mapDomainReservationToDocument(reservation)
	if err != nil {
		return err
	}
	update := bson.M{
		"customer":            doc.Customer,
		"date":                doc.Date,
		"time":                doc.Time,
		"party_size":          doc.PartySize,
		"status":              doc.Status,
		"special_requests":    doc.SpecialRequests,
		"reminder_sent":       doc.ReminderSent,
		"cancelled_at":        doc.CancelledAt,
		"cancellation_reason": doc.CancellationReason,
		"check_in_time":       doc.CheckInTime,
		"check_out_time":      doc.CheckOutTime,
		"updated_at":          time.Now().UTC(),
	}
	result, err := r.collection.UpdateByID(ctx, objectID, bson.M{"$set": update})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return application.ErrReservationNotFound
	}
	return nil
}

func (r *ReservationRepository) findMany(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]domain.Reservation, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	reservations := make([]domain.Reservation, 0)
	for cursor.Next(ctx) {
		var doc ReservationDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		reservations = append(reservations, mapReservationDocument(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return reservations, nil
}

// mapReservationDocument は Mongo 予約文書をドメイン Reservation へ変換する。
func mapReservationDocument(doc ReservationDocument) domain.Reservation {
	return domain.Reservation{
		ID:               doc.ID.Hex(),
		RestaurantID:     doc.RestaurantID.Hex(),
		ConfirmationCode: doc.ConfirmationCode,
		Customer: domain.CustomerInfo{
			Name:  doc.Customer.Name,
			Email: doc.Customer.Email,
			Phone: doc.Customer.Phone,
		},
		Date:               doc.Date.UTC(),
		Time:               doc.Time,
		PartySize:          doc.PartySize,
		Status:             domain.Status(doc.Status),
		SpecialRequests:    doc.SpecialRequests,
		ReminderSent:       doc.ReminderSent,
		CancelledAt:        doc.CancelledAt,
		CancellationReason: doc.CancellationReason,
		CheckInTime:        doc.CheckInTime,
		CheckOutTime:       doc.CheckOutTime,
		CreatedAt:          doc.CreatedAt,
		UpdatedAt:          doc.UpdatedAt,
	}
}

// mapDomainReservationToDocument はドメイン Reservation を Mongo 保存形式に射影する。
func mapDomainReservationToDocument(reservation *domain.Reservation) (ReservationDocument, error) {
	restaurantID, err := primitive.ObjectIDFromHex(strings.TrimSpace(reservation.RestaurantID))
	if err != nil {
		return ReservationDocument{}, application.ErrRestaurantNotFound
	}

	createdAt := reservation.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	updatedAt := reservation.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}

	return ReservationDocument{
		RestaurantID:     restaurantID,
		ConfirmationCode: reservation.ConfirmationCode,
		Customer: CustomerDocument{
			Name:  reservation.Customer.Name,
			Email: strings.ToLower(reservation.Customer.Email),
			Phone: reservation.Customer.Phone,
		},
		Date:               reservation.Date.UTC(),
		Time:               reservation.Time,
		PartySize:          reservation.PartySize,
		Status:             string(reservation.Status),
		SpecialRequests:    reservation.SpecialRequests,
		ReminderSent:       reservation.ReminderSent,
		CancelledAt:        reservation.CancelledAt,
		CancellationReason: reservation.CancellationReason,
		CheckInTime:        reservation.CheckInTime,
		CheckOutTime:       reservation.CheckOutTime,
		CreatedAt:          createdAt,
		UpdatedAt:          updatedAt,
	}, nil
}
