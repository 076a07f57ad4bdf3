package application

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/biomebistro/biome-bistro-services/api/internal/booking/domain"
	"github.com/biomebistro/biome-bistro-services/api/internal/infrastructure/lock"
)

// AcceptanceThreshold is the fraction of seating capacity bookings may
// fill. The margin below hard capacity is deliberate walk-in headroom.
const AcceptanceThreshold = 0.8

// ReservationRepository は予約コンテキストの永続化ポート。
type ReservationRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Reservation, error)
	FindByConfirmationCode(ctx context.Context, code string) (*domain.Reservation, error)
	FindByCustomerEmail(ctx context.Context, email string) ([]domain.Reservation, error)
	FindByRestaurant(ctx context.Context, restaurantID string, filter ReservationFilter) ([]domain.Reservation, error)
	FindUpcoming(ctx context.Context, restaurantID string, from time.Time, limit int) ([]domain.Reservation, error)
	// SumActivePartySize totals party_size over pending/confirmed
	// reservations at the slot, optionally excluding one reservation
	// (its own prior contribution during an update).
	SumActivePartySize(ctx context.Context, restaurantID string, date time.Time, slot string, excludeID string) (int, error)
	CountByRestaurant(ctx context.Context, restaurantID string, status domain.Status) (int64, error)
	Create(ctx context.Context, reservation *domain.Reservation) error
	Update(ctx context.Context, reservation *domain.Reservation) error
}

// RestaurantCapacityReader exposes the single restaurant field the
// booking context needs. Unknown IDs yield ErrRestaurantNotFound.
type RestaurantCapacityReader interface {
	CapacityByID(ctx context.Context, restaurantID string) (int, error)
}

// ReservationFilter narrows restaurant reservation listings.
type ReservationFilter struct {
	Date   *time.Time
	Status domain.Status
}

// AvailabilityConfig carries the bookable slot grid, given per
// deployment rather than computed.
type AvailabilityConfig struct {
	ServiceWindows []domain.ServiceWindow
	SlotStep       int
}

// AvailabilityService decides whether a slot can take another party and
// enumerates the open slots of a day.
type AvailabilityService struct {
	restaurants  RestaurantCapacityReader
	reservations ReservationRepository
	slots        []string
}

// NewAvailabilityService builds the checker; zero-value config falls
// back to the standard lunch/dinner grid.
func NewAvailabilityService(restaurants RestaurantCapacityReader, reservations ReservationRepository, cfg AvailabilityConfig) *AvailabilityService {
	windows := cfg.ServiceWindows
	if len(windows) == 0 {
		windows = domain.StandardServiceWindows
	}
	return &AvailabilityService{
		restaurants:  restaurants,
		reservations: reservations,
		slots:        domain.SlotTimes(windows, cfg.SlotStep),
	}
}

// CheckSlot reports whether the slot is still below the acceptance
// threshold, judged on existing bookings only.
func (s *AvailabilityService) CheckSlot(ctx context.Context, restaurantID string, date time.Time, slot string) (bool, error) {
	return s.fits(ctx, restaurantID, date, slot, 0, "")
}

// CanAccommodate reports whether existing bookings plus the requested
// party stay below the acceptance threshold.
func (s *AvailabilityService) CanAccommodate(ctx context.Context, restaurantID string, date time.Time, slot string, partySize int, excludeReservationID string) (bool, error) {
	return s.fits(ctx, restaurantID, date, slot, partySize, excludeReservationID)
}

// ListOpenSlots walks the daily grid and returns the slots that pass
// the availability check.
func (s *AvailabilityService) ListOpenSlots(ctx context.Context, restaurantID string, date time.Time) ([]string, error) {
	capacity, err := s.restaurants.CapacityByID(ctx, restaurantID)
	if err != nil {
		return nil, err
	}

	open := make([]string, 0, len(s.slots))
	for _, slot := range s.slots {
		sum, err := s.reservations.SumActivePartySize(ctx, restaurantID, date, slot, "")
		if err != nil {
			return nil, err
		}
		if float64(sum) < float64(capacity)*AcceptanceThreshold {
			open = append(open, slot)
		}
	}
	return open, nil
}

// Slots returns the configured daily grid.
func (s *AvailabilityService) Slots() []string {
	return append([]string(nil), s.slots...)
}

func (s *AvailabilityService) fits(ctx context.Context, restaurantID string, date time.Time, slot string, partySize int, excludeID string) (bool, error) {
	capacity, err := s.restaurants.CapacityByID(ctx, restaurantID)
	if err != nil {
		return false, err
	}

	sum, err := s.reservations.SumActivePartySize(ctx, restaurantID, date, slot, excludeID)
	if err != nil {
		return false, err
	}
	return float64(sum+partySize) < float64(capacity)*AcceptanceThreshold, nil
}

// CreateReservationCommand captures a booking request.
type CreateReservationCommand struct {
	RestaurantID    string
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	Date            string
	Time            string
	PartySize       int
	Status          string
	SpecialRequests string
}

// UpdateReservationCommand carries the mutable reservation fields; nil
// means "leave unchanged".
type UpdateReservationCommand struct {
	CustomerName    *string
	CustomerPhone   *string
	Date            *string
	Time            *string
	PartySize       *int
	Status          *string
	SpecialRequests *string
}

// ReservationService orchestrates the reservation lifecycle. 予約の
// 受付判定と書き込みはスロット単位のロックで直列化し、同一スロットへの
// 同時予約が閾値を超えないことを保証する。
type ReservationService struct {
	repo         ReservationRepository
	availability *AvailabilityService
	locker       lock.KeyedLocker
	codes        *domain.CodeGenerator
	logger       *log.Logger
	now          func() time.Time
}

// NewReservationService wires the lifecycle service.
func NewReservationService(repo ReservationRepository, availability *AvailabilityService, locker lock.KeyedLocker, codes *domain.CodeGenerator, logger *log.Logger) *ReservationService {
	return &ReservationService{
		repo:         repo,
		availability: availability,
		locker:       locker,
		codes:        codes,
		logger:       logger,
		now:          time.Now,
	}
}

// Create validates the request, then checks and books the slot under
// its lock so concurrent requests cannot jointly oversell it.
func (s *ReservationService) Create(ctx context.Context, cmd CreateReservationCommand) (*domain.Reservation, error) {
	var check validationCollector

	name, err := domain.NewCustomerName(cmd.CustomerName)
	check.add("customer_name", err)
	email, err := domain.NewCustomerEmail(cmd.CustomerEmail)
	check.add("customer_email", err)
	phone, err := domain.NewCustomerPhone(cmd.CustomerPhone)
	check.add("customer_phone", err)
	date, err := domain.NewSlotDate(cmd.Date)
	check.add("date", err)
	slot, err := domain.NewSlotTime(cmd.Time)
	check.add("time", err)
	partySize, err := domain.NewPartySize(cmd.PartySize)
	check.add("party_size", err)

	status := domain.StatusConfirmed
	if cmd.Status != "" {
		parsed, err := domain.ParseStatus(cmd.Status)
		if err != nil {
			check.add("status", err)
		} else if parsed != domain.StatusPending && parsed != domain.StatusConfirmed {
			check.add("status", fmt.Errorf("new reservations must be pending or confirmed"))
		} else {
			status = parsed
		}
	}

	if err := check.err(); err != nil {
		return nil, err
	}

	release, err := s.locker.Acquire(ctx, domain.SlotKey(cmd.RestaurantID, date.Time(), slot.String()))
	if err != nil {
		return nil, err
	}
	defer release()

	ok, err := s.availability.CanAccommodate(ctx, cmd.RestaurantID, date.Time(), slot.String(), partySize.Int(), "")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s %s", ErrSlotUnavailable, date, slot)
	}

	now := s.now().UTC()
	reservation := &domain.Reservation{
		RestaurantID:     cmd.RestaurantID,
		ConfirmationCode: s.codes.Generate(),
		Customer: domain.CustomerInfo{
			Name:  name.String(),
			Email: email.String(),
			Phone: phone.String(),
		},
		Date:            date.Time(),
		Time:            slot.String(),
		PartySize:       partySize.Int(),
		Status:          status,
		SpecialRequests: cmd.SpecialRequests,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Create(ctx, reservation); err != nil {
		return nil, err
	}

	s.logger.Printf("予約を受け付けました: code=%s restaurant=%s slot=%s %s party=%d",
		reservation.ConfirmationCode, reservation.RestaurantID, reservation.Date.Format("2006-01-02"), reservation.Time, reservation.PartySize)
	return reservation, nil
}

// Update re-validates any changed slot fields against availability,
// excluding the reservation's own prior contribution to the sum.
func (s *ReservationService) Update(ctx context.Context, id string, cmd UpdateReservationCommand) (*domain.Reservation, error) {
	reservation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if reservation.Status == domain.StatusCancelled {
		return nil, ErrReservationCancelled
	}

	var check validationCollector

	if cmd.CustomerName != nil {
		name, err := domain.NewCustomerName(*cmd.CustomerName)
		check.add("customer_name", err)
		reservation.Customer.Name = name.String()
	}
	if cmd.CustomerPhone != nil {
		phone, err := domain.NewCustomerPhone(*cmd.CustomerPhone)
		check.add("customer_phone", err)
		reservation.Customer.Phone = phone.String()
	}
	if cmd.SpecialRequests != nil {
		reservation.SpecialRequests = *cmd.SpecialRequests
	}

	targetDate := reservation.Date
	targetSlot := reservation.Time
	targetParty := reservation.PartySize
	slotChanged := false

	if cmd.Date != nil {
		date, err := domain.NewSlotDate(*cmd.Date)
		check.add("date", err)
		if err == nil && !date.Time().Equal(targetDate) {
			targetDate = date.Time()
			slotChanged = true
		}
	}
	if cmd.Time != nil {
		slot, err := domain.NewSlotTime(*cmd.Time)
		check.add("time", err)
		if err == nil && slot.String() != targetSlot {
			targetSlot = slot.String()
			slotChanged = true
		}
	}
	if cmd.PartySize != nil {
		partySize, err := domain.NewPartySize(*cmd.PartySize)
		check.add("party_size", err)
		if err == nil && partySize.Int() != targetParty {
			targetParty = partySize.Int()
			slotChanged = true
		}
	}
	if cmd.Status != nil {
		next, err := domain.ParseStatus(*cmd.Status)
		if err != nil {
			check.add("status", err)
		} else if next != reservation.Status {
			if !reservation.Status.CanTransitionTo(next) {
				return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, reservation.Status, next)
			}
			reservation.Status = next
		}
	}

	if err := check.err(); err != nil {
		return nil, err
	}

	if slotChanged && reservation.IsActive() {
		release, err := s.locker.Acquire(ctx, domain.SlotKey(reservation.RestaurantID, targetDate, targetSlot))
		if err != nil {
			return nil, err
		}
		defer release()

		ok, err := s.availability.CanAccommodate(ctx, reservation.RestaurantID, targetDate, targetSlot, targetParty, reservation.ID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: %s %s", ErrSlotUnavailable, targetDate.Format("2006-01-02"), targetSlot)
		}
	}

	reservation.Date = targetDate
	reservation.Time = targetSlot
	reservation.PartySize = targetParty
	reservation.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, reservation); err != nil {
		return nil, err
	}
	return reservation, nil
}

// Cancel marks the reservation cancelled with a timestamp and reason.
// Cancelling an already-cancelled reservation is a no-op.
func (s *ReservationService) Cancel(ctx context.Context, id, reason string) (*domain.Reservation, error) {
	reservation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if reservation.Status == domain.StatusCancelled {
		return reservation, nil
	}
	if !reservation.Status.CanTransitionTo(domain.StatusCancelled) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, reservation.Status, domain.StatusCancelled)
	}

	now := s.now().UTC()
	reservation.Status = domain.StatusCancelled
	reservation.CancelledAt = &now
	reservation.CancellationReason = reason
	reservation.UpdatedAt = now

	if err := s.repo.Update(ctx, reservation); err != nil {
		return nil, err
	}
	return reservation, nil
}

// CheckIn completes the reservation at arrival.
func (s *ReservationService) CheckIn(ctx context.Context, id string) (*domain.Reservation, error) {
	reservation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !reservation.Status.CanTransitionTo(domain.StatusCompleted) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, reservation.Status, domain.StatusCompleted)
	}

	now := s.now().UTC()
	reservation.Status = domain.StatusCompleted
	reservation.CheckInTime = &now
	reservation.UpdatedAt = now

	if err := s.repo.Update(ctx, reservation); err != nil {
		return nil, err
	}
	return reservation, nil
}

// CheckOut records the departure time without touching the status.
func (s *ReservationService) CheckOut(ctx context.Context, id string) (*domain.Reservation, error) {
	reservation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	reservation.CheckOutTime = &now
	reservation.UpdatedAt = now

	if err := s.repo.Update(ctx, reservation); err != nil {
		return nil, err
	}
	return reservation, nil
}
