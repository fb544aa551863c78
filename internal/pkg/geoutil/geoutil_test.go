package geoutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHaversineKnownDistance(t *testing.T) {
	// Mumbai CST to Pune railway station, roughly 120 km apart.
	d := HaversineKm(18.9398, 72.8355, 18.5286, 73.8745)
	require.InDelta(t, 119, d, 5)
}

func TestHaversineZeroDistance(t *testing.T) {
	require.Equal(t, 0.0, HaversineKm(19.0760, 72.8777, 19.0760, 72.8777))
}

func TestHaversineShortDistance(t *testing.T) {
	// ~0.0001 degrees of latitude is about 11 meters.
	d := HaversineMeters(19.0760, 72.8777, 19.0761, 72.8778)
	require.Greater(t, d, 10.0)
	require.Less(t, d, 20.0)
}

func TestKmToRadians(t *testing.T) {
	require.InDelta(t, 25.0/6371.0, KmToRadians(25), 1e-12)
	require.Equal(t, 0.0, KmToRadians(0))
}

func TestNewPointCoordinateOrder(t *testing.T) {
	p := NewPoint(19.0760, 72.8777)
	require.Equal(t, "Point", p.Type)
	// GeoJSON order is [longitude, latitude].
	require.Equal(t, 72.8777, p.Coordinates[0])
	require.Equal(t, 19.0760, p.Coordinates[1])
	require.Equal(t, 72.8777, p.Lng())
	require.Equal(t, 19.0760, p.Lat())
}

func TestPointIsValid(t *testing.T) {
	require.True(t, NewPoint(19.0760, 72.8777).IsValid())
	require.False(t, Point{Type: "Point", Coordinates: []float64{200, 19}}.IsValid())
	require.False(t, Point{Type: "Point", Coordinates: []float64{72.8777}}.IsValid())
	require.False(t, Point{Type: "Polygon", Coordinates: []float64{72.8777, 19.076}}.IsValid())
}
