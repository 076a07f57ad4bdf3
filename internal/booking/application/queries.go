package application

import (
	"context"
	"time"

	"github.com/biomebistro/biome-bistro-services/api/internal/booking/domain"
)

// ReservationQueryService exposes the read use-cases of the booking
// context.
type ReservationQueryService interface {
	Detail(ctx context.Context, id string) (*domain.Reservation, error)
	ByConfirmationCode(ctx context.Context, code string) (*domain.Reservation, error)
	ByCustomerEmail(ctx context.Context, email string) ([]domain.Reservation, error)
	ByRestaurant(ctx context.Context, restaurantID string, filter ReservationFilter) ([]domain.Reservation, error)
	Upcoming(ctx context.Context, restaurantID string, limit int) ([]domain.Reservation, error)
	CountByRestaurant(ctx context.Context, restaurantID string, status domain.Status) (int64, error)
}

// NewReservationQueryService returns a repository-backed reader.
func NewReservationQueryService(repo ReservationRepository) ReservationQueryService {
	return &reservationQueryService{repo: repo, now: time.Now}
}

type reservationQueryService struct {
	repo ReservationRepository
	now  func() time.Time
}

func (s *reservationQueryService) Detail(ctx context.Context, id string) (*domain.Reservation, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *reservationQueryService) ByConfirmationCode(ctx context.Context, code string) (*domain.Reservation, error) {
	return s.repo.FindByConfirmationCode(ctx, code)
}

func (s *reservationQueryService) ByCustomerEmail(ctx context.Context, email string) ([]domain.Reservation, error) {
	return s.repo.FindByCustomerEmail(ctx, email)
}

func (s *reservationQueryService) ByRestaurant(ctx context.Context, restaurantID string, filter ReservationFilter) ([]domain.Reservation, error) {
	return s.repo.FindByRestaurant(ctx, restaurantID, filter)
}

// Upcoming lists future pending/confirmed reservations, soonest first.
func (s *reservationQueryService) Upcoming(ctx context.Context, restaurantID string, limit int) ([]domain.Reservation, error) {
	today := s.now().UTC().Truncate(24 * time.Hour)
	return s.repo.FindUpcoming(ctx, restaurantID, today, limit)
}

func (s *reservationQueryService) CountByRestaurant(ctx context.Context, restaurantID string, status domain.Status) (int64, error) {
	return s.repo.CountByRestaurant(ctx, restaurantID, status)
}
