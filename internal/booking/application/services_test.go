package application_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/biomebistro/biome-bistro-services/api/internal/booking/application"
	"github.com/biomebistro/biome-bistro-services/api/internal/booking/domain"
	"github.com/biomebistro/biome-bistro-services/api/internal/infrastructure/lock"
)

// stubReservationRepo is an in-memory ReservationRepository. Mutations
// take an internal mutex so the concurrency tests exercise the service
// locking, not accidental repo races.
type stubReservationRepo struct {
	mu           sync.Mutex
	seq          int
	reservations map[string]domain.Reservation
}

func newStubReservationRepo() *stubReservationRepo {
	return &stubReservationRepo{reservations: make(map[string]domain.Reservation)}
}

func (r *stubReservationRepo) FindByID(_ context.Context, id string) (*domain.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.reservations[id]
	if !ok {
		return nil, application.ErrReservationNotFound
	}
	return &res, nil
}

func (r *stubReservationRepo) FindByConfirmationCode(_ context.Context, code string) (*domain.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, res := range r.reservations {
		if res.ConfirmationCode == code {
			return &res, nil
		}
	}
	return nil, application.ErrReservationNotFound
}

func (r *stubReservationRepo) FindByCustomerEmail(_ context.Context, email string) ([]domain.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Reservation
	for _, res := range r.reservations {
		if res.Customer.Email == email {
			out = append(out, res)
		}
	}
	return out, nil
}

func (r *stubReservationRepo) FindByRestaurant(_ context.Context, restaurantID string, filter application.ReservationFilter) ([]domain.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Reservation
	for _, res := range r.reservations {
		if res.RestaurantID != restaurantID {
			continue
		}
		if filter.Date != nil && !res.Date.Equal(*filter.Date) {
			continue
		}
		if filter.Status != "" && res.Status != filter.Status {
			continue
		}
		out = append(out, res)
	}
	return out, nil
}

func (r *stubReservationRepo) FindUpcoming(_ context.Context, restaurantID string, from time.Time, _ int) ([]domain.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Reservation
	for _, res := range r.reservations {
		if res.RestaurantID == restaurantID && !res.Date.Before(from) && res.IsActive() {
			out = append(out, res)
		}
	}
	return out, nil
}

func (r *stubReservationRepo) SumActivePartySize(_ context.Context, restaurantID string, date time.Time, slot string, excludeID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sum := 0
	for _, res := range r.reservations {
		if res.RestaurantID == restaurantID && res.Date.Equal(date) && res.Time == slot && res.IsActive() && res.ID != excludeID {
			sum += res.PartySize
		}
	}
	return sum, nil
}

func (r *stubReservationRepo) CountByRestaurant(_ context.Context, restaurantID string, status domain.Status) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, res := range r.reservations {
		if res.RestaurantID == restaurantID && (status == "" || res.Status == status) {
			count++
		}
	}
	return count, nil
}

func (r *stubReservationRepo) Create(_ context.Context, reservation *domain.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	reservation.ID = fmt.Sprintf("res-%04d", r.seq)
	r.reservations[reservation.ID] = *reservation
	return nil
}

func (r *stubReservationRepo) Update(_ context.Context, reservation *domain.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reservations[reservation.ID]; !ok {
		return application.ErrReservationNotFound
	}
	r.reservations[reservation.ID] = *reservation
	return nil
}

type stubCapacityReader struct {
	capacities map[string]int
}

func (r stubCapacityReader) CapacityByID(_ context.Context, restaurantID string) (int, error) {
	capacity, ok := r.capacities[restaurantID]
	if !ok {
		return 0, application.ErrRestaurantNotFound
	}
	return capacity, nil
}

func newBookingFixture(capacity int) (*application.ReservationService, *application.AvailabilityService, *stubReservationRepo) {
	repo := newStubReservationRepo()
	restaurants := stubCapacityReader{capacities: map[string]int{"r1": capacity}}
	availability := application.NewAvailabilityService(restaurants, repo, application.AvailabilityConfig{})
	codes := domain.NewCodeGenerator(
		func() time.Time { return time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC) },
		func(n int) int { return n - 1 },
	)
	logger := log.New(io.Discard, "", 0)
	svc := application.NewReservationService(repo, availability, lock.NewMemory(), codes, logger)
	return svc, availability, repo
}

func validCreate(partySize int) application.CreateReservationCommand {
	return application.CreateReservationCommand{
		RestaurantID:  "r1",
		CustomerName:  "Claire Fontaine",
		CustomerEmail: "claire@example.fr",
		CustomerPhone: "+33 6 12 34 56 78",
		Date:          "2026-03-15",
		Time:          "19:00",
		PartySize:     partySize,
	}
}

func TestCreateReservationHappyPath(t *testing.T) {
	svc, _, _ := newBookingFixture(50)

	reservation, err := svc.Create(context.Background(), validCreate(4))
	require.NoError(t, err)
	require.NotEmpty(t, reservation.ID)
	require.Equal(t, domain.StatusConfirmed, reservation.Status)
	require.Regexp(t, `^BIO-[A-Z]{2}-\d{8}-\d{4}$`, reservation.ConfirmationCode)
	require.Equal(t, "19:00", reservation.Time)
}

func TestCreateReservationCollectsValidationErrors(t *testing.T) {
	svc, _, _ := newBookingFixture(50)

	cmd := application.CreateReservationCommand{
		RestaurantID:  "r1",
		CustomerEmail: "not-an-email",
		CustomerPhone: "12345",
		Date:          "15/03/2026",
		Time:          "25:99",
		PartySize:     0,
	}
	_, err := svc.Create(context.Background(), cmd)

	var validation *application.ValidationError
	require.ErrorAs(t, err, &validation)
	fields := make(map[string]string, len(validation.Fields))
	for _, f := range validation.Fields {
		fields[f.Field] = f.Message
	}
	for _, want := range []string{"customer_name", "customer_email", "customer_phone", "date", "time", "party_size"} {
		require.Contains(t, fields, want)
	}
}

func TestCreateReservationUnknownRestaurant(t *testing.T) {
	svc, _, _ := newBookingFixture(50)

	cmd := validCreate(2)
	cmd.RestaurantID = "missing"
	_, err := svc.Create(context.Background(), cmd)
	require.ErrorIs(t, err, application.ErrRestaurantNotFound)
}

func TestCreateReservationRejectsOverThreshold(t *testing.T) {
	// capacity 10 → acceptance ceiling 8
	svc, _, _ := newBookingFixture(10)

	_, err := svc.Create(context.Background(), validCreate(5))
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), validCreate(5))
	require.ErrorIs(t, err, application.ErrSlotUnavailable)

	// a smaller party still fits: 5 + 2 < 8
	_, err = svc.Create(context.Background(), validCreate(2))
	require.NoError(t, err)
}

func TestConcurrentCreatesNeverOversellSlot(t *testing.T) {
	const capacity = 10
	svc, _, repo := newBookingFixture(capacity)

	const workers = 16
	var wg sync.WaitGroup
	wg.Add(workers)
	accepted := make(chan int, workers)
	rejected := make(chan error, workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			reservation, err := svc.Create(context.Background(), validCreate(5))
			if err != nil {
				rejected <- err
				return
			}
			accepted <- reservation.PartySize
		}()
	}
	wg.Wait()
	close(accepted)
	close(rejected)

	total := 0
	for size := range accepted {
		total += size
	}
	// ceiling is capacity*0.8 = 8: exactly one party of five fits
	require.Equal(t, 5, total)
	require.Len(t, rejected, workers-1)
	for err := range rejected {
		require.ErrorIs(t, err, application.ErrSlotUnavailable)
	}

	sum, err := repo.SumActivePartySize(context.Background(), "r1", time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), "19:00", "")
	require.NoError(t, err)
	require.Less(t, float64(sum), capacity*application.AcceptanceThreshold)
}

func TestListOpenSlotsSkipsFullOnes(t *testing.T) {
	_, availability, repo := newBookingFixture(10)

	// seed a pre-existing load of 8 guests at 19:00, right at the ceiling
	date := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	err := repo.Create(context.Background(), &domain.Reservation{
		RestaurantID: "r1",
		Date:         date,
		Time:         "19:00",
		PartySize:    8,
		Status:       domain.StatusConfirmed,
	})
	require.NoError(t, err)

	open, err := availability.ListOpenSlots(context.Background(), "r1", date)
	require.NoError(t, err)
	require.NotContains(t, open, "19:00")
	require.Contains(t, open, "12:00")
	require.Len(t, open, len(availability.Slots())-1)
}

func TestListOpenSlotsUnknownRestaurant(t *testing.T) {
	_, availability, _ := newBookingFixture(10)

	date := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	_, err := availability.ListOpenSlots(context.Background(), "missing", date)
	require.ErrorIs(t, err, application.ErrRestaurantNotFound)
}

func TestUpdateExcludesOwnContribution(t *testing.T) {
	svc, _, _ := newBookingFixture(10)

	reservation, err := svc.Create(context.Background(), validCreate(7))
	require.NoError(t, err)

	// 7 of 8 seats are its own; shrinking to 6 must not self-collide
	newSize := 6
	updated, err := svc.Update(context.Background(), reservation.ID, application.UpdateReservationCommand{PartySize: &newSize})
	require.NoError(t, err)
	require.Equal(t, 6, updated.PartySize)

	// growing beyond the ceiling is still rejected
	tooBig := 9
	_, err = svc.Update(context.Background(), reservation.ID, application.UpdateReservationCommand{PartySize: &tooBig})
	require.ErrorIs(t, err, application.ErrSlotUnavailable)
}

func TestUpdateMovesToAnotherSlot(t *testing.T) {
	svc, _, _ := newBookingFixture(10)

	reservation, err := svc.Create(context.Background(), validCreate(5))
	require.NoError(t, err)

	newTime := "20:30"
	updated, err := svc.Update(context.Background(), reservation.ID, application.UpdateReservationCommand{Time: &newTime})
	require.NoError(t, err)
	require.Equal(t, "20:30", updated.Time)
}

func TestCancelledReservationCannotBeUpdated(t *testing.T) {
	svc, _, _ := newBookingFixture(10)

	reservation, err := svc.Create(context.Background(), validCreate(4))
	require.NoError(t, err)

	cancelled, err := svc.Cancel(context.Background(), reservation.ID, "change of plans")
	require.NoError(t, err)
	require.Equal(t, domain.StatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)
	require.Equal(t, "change of plans", cancelled.CancellationReason)

	newTime := "20:00"
	_, err = svc.Update(context.Background(), reservation.ID, application.UpdateReservationCommand{Time: &newTime})
	require.ErrorIs(t, err, application.ErrReservationCancelled)
}

func TestCancelIsIdempotent(t *testing.T) {
	svc, _, _ := newBookingFixture(10)

	reservation, err := svc.Create(context.Background(), validCreate(4))
	require.NoError(t, err)

	first, err := svc.Cancel(context.Background(), reservation.ID, "first")
	require.NoError(t, err)

	second, err := svc.Cancel(context.Background(), reservation.ID, "second")
	require.NoError(t, err)
	require.Equal(t, domain.StatusCancelled, second.Status)
	// the original cancellation record is untouched
	require.Equal(t, "first", second.CancellationReason)
	require.Equal(t, first.CancelledAt, second.CancelledAt)
}

func TestCancelledSlotFreesCapacity(t *testing.T) {
	svc, _, _ := newBookingFixture(10)

	reservation, err := svc.Create(context.Background(), validCreate(7))
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), validCreate(5))
	require.ErrorIs(t, err, application.ErrSlotUnavailable)

	_, err = svc.Cancel(context.Background(), reservation.ID, "no-show")
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), validCreate(5))
	require.NoError(t, err)
}

func TestCheckInCompletesReservation(t *testing.T) {
	svc, _, _ := newBookingFixture(10)

	reservation, err := svc.Create(context.Background(), validCreate(4))
	require.NoError(t, err)

	completed, err := svc.CheckIn(context.Background(), reservation.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusCompleted, completed.Status)
	require.NotNil(t, completed.CheckInTime)

	// completed is terminal
	_, err = svc.Cancel(context.Background(), reservation.ID, "too late")
	require.ErrorIs(t, err, application.ErrInvalidTransition)
	_, err = svc.CheckIn(context.Background(), reservation.ID)
	require.ErrorIs(t, err, application.ErrInvalidTransition)

	checkedOut, err := svc.CheckOut(context.Background(), reservation.ID)
	require.NoError(t, err)
	require.NotNil(t, checkedOut.CheckOutTime)
}

func TestCheckInRejectsCancelled(t *testing.T) {
	svc, _, _ := newBookingFixture(10)

	reservation, err := svc.Create(context.Background(), validCreate(4))
	require.NoError(t, err)
	_, err = svc.Cancel(context.Background(), reservation.ID, "")
	require.NoError(t, err)

	_, err = svc.CheckIn(context.Background(), reservation.ID)
	require.ErrorIs(t, err, application.ErrInvalidTransition)
}

func TestUpdateUnknownReservation(t *testing.T) {
	svc, _, _ := newBookingFixture(10)
	newTime := "20:00"
	_, err := svc.Update(context.Background(), "nope", application.UpdateReservationCommand{Time: &newTime})
	require.True(t, errors.Is(err, application.ErrReservationNotFound))
}
