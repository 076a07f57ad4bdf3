package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/biomebistro/biome-bistro-services/api/internal/booking/domain"
)

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to domain.Status
		allowed  bool
	}{
		{domain.StatusPending, domain.StatusConfirmed, true},
		{domain.StatusPending, domain.StatusCompleted, true},
		{domain.StatusPending, domain.StatusCancelled, true},
		{domain.StatusConfirmed, domain.StatusCompleted, true},
		{domain.StatusConfirmed, domain.StatusCancelled, true},
		{domain.StatusConfirmed, domain.StatusPending, false},
		{domain.StatusCancelled, domain.StatusConfirmed, false},
		{domain.StatusCancelled, domain.StatusCompleted, false},
		{domain.StatusCompleted, domain.StatusCancelled, false},
		{domain.StatusCompleted, domain.StatusConfirmed, false},
	}
	for _, tc := range cases {
		require.Equalf(t, tc.allowed, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestParseStatus(t *testing.T) {
	for _, raw := range []string{"pending", "confirmed", "cancelled", "completed"} {
		status, err := domain.ParseStatus(raw)
		require.NoError(t, err)
		require.Equal(t, domain.Status(raw), status)
	}
	_, err := domain.ParseStatus("waitlisted")
	require.Error(t, err)
}

func TestNewCustomerPhone(t *testing.T) {
	valid := []string{"+33 1 42 86 82 00", "0142868200", "+33-6-12-34-56-78"}
	for _, v := range valid {
		_, err := domain.NewCustomerPhone(v)
		require.NoErrorf(t, err, "phone %q", v)
	}

	invalid := []string{"", "12345", "+44 20 7946 0958", "0042868200"}
	for _, v := range invalid {
		_, err := domain.NewCustomerPhone(v)
		require.Errorf(t, err, "phone %q", v)
	}
}

func TestNewPartySizeBounds(t *testing.T) {
	for _, v := range []int{0, -3, 21, 100} {
		_, err := domain.NewPartySize(v)
		require.Error(t, err)
	}
	size, err := domain.NewPartySize(20)
	require.NoError(t, err)
	require.Equal(t, 20, size.Int())
}

func TestSlotTimesStandardGrid(t *testing.T) {
	slots := domain.SlotTimes(domain.StandardServiceWindows, domain.DefaultSlotStep)
	require.Equal(t, []string{
		"11:00", "11:30", "12:00", "12:30", "13:00", "13:30", "14:00",
		"18:00", "18:30", "19:00", "19:30", "20:00", "20:30", "21:00", "21:30",
	}, slots)
}

func TestConfirmationCodeFormat(t *testing.T) {
	clock := func() time.Time { return time.Date(2026, 3, 15, 19, 0, 0, 0, time.UTC) }
	gen := domain.NewCodeGenerator(clock, func(n int) int {
		if n == 8 {
			return 0 // first biome tag
		}
		return 482
	})
	require.Equal(t, "BIO-RF-20260315-0482", gen.Generate())

	require.Regexp(t, `^BIO-[A-Z]{2}-\d{8}-\d{4}$`, domain.DefaultCodeGenerator().Generate())
}

func TestSlotKeyScopesLocking(t *testing.T) {
	date := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	key := domain.SlotKey("abc123", date, "19:00")
	require.Equal(t, "abc123|2026-03-15|19:00", key)
	require.NotEqual(t, key, domain.SlotKey("abc123", date, "19:30"))
	require.NotEqual(t, key, domain.SlotKey("def456", date, "19:00"))
}
