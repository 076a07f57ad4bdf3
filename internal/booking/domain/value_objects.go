package domain

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"
)

const (
	// MinPartySize and MaxPartySize bound a single booking.
	MinPartySize = 1
	MaxPartySize = 20
)

var (
	phonePattern = regexp.MustCompile(`^(\+33|0)[1-9]\d{8}$`)
	timePattern  = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):[0-5][0-9]$`)
)

type CustomerName string

func NewCustomerName(value string) (CustomerName, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", fmt.Errorf("name is required")
	}
	return CustomerName(trimmed), nil
}

func (n CustomerName) String() string {
	return string(n)
}

type CustomerEmail string

func NewCustomerEmail(value string) (CustomerEmail, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", fmt.Errorf("email is required")
	}
	if len(trimmed) > 254 {
		return "", fmt.Errorf("email too long")
	}
	if _, err := mail.ParseAddress(trimmed); err != nil {
		return "", fmt.Errorf("invalid email format")
	}
	return CustomerEmail(trimmed), nil
}

func (e CustomerEmail) String() string {
	return string(e)
}

// CustomerPhone accepts French numbers: +33 or 0 followed by 9 digits,
// spaces and dashes ignored.
type CustomerPhone string

func NewCustomerPhone(value string) (CustomerPhone, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", fmt.Errorf("phone is required")
	}
	cleaned := strings.NewReplacer(" ", "", "-", "").Replace(trimmed)
	if !phonePattern.MatchString(cleaned) {
		return "", fmt.Errorf("invalid phone format (use +33 1 XX XX XX XX)")
	}
	return CustomerPhone(trimmed), nil
}

func (p CustomerPhone) String() string {
	return string(p)
}

// SlotDate is a reservation day, normalized to UTC midnight.
type SlotDate time.Time

func NewSlotDate(value string) (SlotDate, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return SlotDate{}, fmt.Errorf("reservation date is required")
	}
	parsed, err := time.ParseInLocation("2006-01-02", trimmed, time.UTC)
	if err != nil {
		return SlotDate{}, fmt.Errorf("invalid date format (use YYYY-MM-DD)")
	}
	return SlotDate(parsed), nil
}

func (d SlotDate) Time() time.Time {
	return time.Time(d)
}

func (d SlotDate) String() string {
	return time.Time(d).Format("2006-01-02")
}

// SlotTime is an HH:MM slot within a service window.
type SlotTime string

func NewSlotTime(value string) (SlotTime, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", fmt.Errorf("reservation time is required")
	}
	if !timePattern.MatchString(trimmed) {
		return "", fmt.Errorf("invalid time format (use HH:MM)")
	}
	return SlotTime(trimmed), nil
}

func (t SlotTime) String() string {
	return string(t)
}

type PartySize int

func NewPartySize(value int) (PartySize, error) {
	if value < MinPartySize || value > MaxPartySize {
		return 0, fmt.Errorf("party size must be between %d and %d", MinPartySize, MaxPartySize)
	}
	return PartySize(value), nil
}

func (p PartySize) Int() int {
	return int(p)
}
