package domain

import (
	"fmt"
	"time"
)

// Status is the lifecycle state of a reservation.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// ParseStatus validates a raw status string.
func ParseStatus(value string) (Status, error) {
	switch Status(value) {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return Status(value), nil
	}
	return "", fmt.Errorf("unknown reservation status: %q", value)
}

// IsTerminal reports whether no further status transition is allowed.
func (s Status) IsTerminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// CanTransitionTo encodes the pending → confirmed → completed machine,
// with cancellation allowed from any non-terminal state.
func (s Status) CanTransitionTo(next Status) bool {
	if s.IsTerminal() {
		return false
	}
	switch next {
	case StatusConfirmed:
		return s == StatusPending
	case StatusCompleted:
		return s == StatusPending || s == StatusConfirmed
	case StatusCancelled:
		return true
	}
	return false
}

// CustomerInfo identifies the booking customer. The email doubles as the
// opaque customer identifier used to list "my reservations".
type CustomerInfo struct {
	Name  string
	Email string
	Phone string
}

// Reservation は 1 件のテーブル予約を表すエンティティ。
// ConfirmationCode は作成時に採番され、その後変更されない。
type Reservation struct {
	ID                 string
	RestaurantID       string
	ConfirmationCode   string
	Customer           CustomerInfo
	Date               time.Time
	Time               string
	PartySize          int
	Status             Status
	SpecialRequests    string
	ReminderSent       bool
	CancelledAt        *time.Time
	CancellationReason string
	CheckInTime        *time.Time
	CheckOutTime       *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// IsActive reports whether the reservation still counts against slot
// capacity.
func (r Reservation) IsActive() bool {
	return r.Status == StatusPending || r.Status == StatusConfirmed
}

// SlotKey identifies the shared capacity unit a reservation competes
// for. Locking is scoped to this key so distinct restaurants and slots
// never contend.
func SlotKey(restaurantID string, date time.Time, slot string) string {
	return restaurantID + "|" + date.Format("2006-01-02") + "|" + slot
}
