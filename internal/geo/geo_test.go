package geo_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/biomebistro/biome-bistro-services/api/internal/geo"
)

var (
	paris   = geo.Point{Latitude: 48.8566, Longitude: 2.3522}
	newYork = geo.Point{Latitude: 40.7128, Longitude: -74.0060}
)

func TestNewPointRejectsOutOfRangeCoordinates(t *testing.T) {
	cases := []struct {
		name     string
		lat, lon float64
	}{
		{"latitude too high", 90.5, 0},
		{"latitude too low", -91, 0},
		{"longitude too high", 0, 180.01},
		{"longitude too low", 0, -181},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := geo.NewPoint(tc.lat, tc.lon)
			require.Error(t, err)
		})
	}

	p, err := geo.NewPoint(48.8566, 2.3522)
	require.NoError(t, err)
	require.Equal(t, paris, p)
}

func TestDistanceSamePointIsZero(t *testing.T) {
	require.Equal(t, 0.0, geo.Distance(paris, paris))
}

func TestDistanceIsSymmetric(t *testing.T) {
	require.Equal(t, geo.Distance(paris, newYork), geo.Distance(newYork, paris))
}

func TestDistanceParisNewYork(t *testing.T) {
	d := geo.Distance(paris, newYork)
	require.InDelta(t, 5837, d, 10)
}

func TestDistanceShortHop(t *testing.T) {
	montmartre := geo.Point{Latitude: 48.8738, Longitude: 2.3505}
	d := geo.Distance(paris, montmartre)
	require.Greater(t, d, 0.0)
	require.Less(t, d, 5.0)
}

func TestWithinRadiusMonotonicity(t *testing.T) {
	d := geo.Distance(paris, newYork)
	require.False(t, geo.WithinRadius(paris, newYork, d-1))
	require.True(t, geo.WithinRadius(paris, newYork, d))
	// growing the radius can never exclude a point that was inside
	for _, extra := range []float64{1, 100, 10000} {
		require.True(t, geo.WithinRadius(paris, newYork, d+extra))
	}
}

func TestFormatDistance(t *testing.T) {
	require.Equal(t, "450 m", geo.FormatDistance(0.45))
	require.Equal(t, "1.5 km", geo.FormatDistance(1.49))
	require.Equal(t, "12.0 km", geo.FormatDistance(12.04))
}
