package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistanceProperties(t *testing.T) {
	a := Location{Lat: 12.34, Lng: 56.78}
	b := Location{Lat: 12.35, Lng: 56.79}

	assert.Equal(t, 0.0, Distance(a, a), "distance to self is zero")
	assert.Equal(t, Distance(a, b), Distance(b, a), "distance is symmetric")
	assert.Greater(t, Distance(a, b), 0.0)
}

func TestDistanceKnownValues(t *testing.T) {
	tests := []struct {
		name   string
		a, b   Location
		meters float64
		within float64
	}{
		{
			name:   "one degree of latitude at the equator",
			a:      Location{Lat: 0, Lng: 0},
			b:      Location{Lat: 1, Lng: 0},
			meters: 111195,
			within: 5,
		},
		{
			name:   "short campus-scale hop",
			a:      Location{Lat: 12.9716, Lng: 79.1594},
			b:      Location{Lat: 12.9721, Lng: 79.1594},
			meters: 55.6,
			within: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.meters, Distance(tt.a, tt.b), tt.within)
		})
	}
}

func TestFenceBoundaryIsInclusive(t *testing.T) {
	center := Location{Lat: 12.34, Lng: 56.78}
	candidate := Location{Lat: 12.3405, Lng: 56.78}
	d := Distance(center, candidate)
	require.Greater(t, d, 0.0)

	atBoundary := Fence{Center: &center, Radius: d}
	assert.True(t, atBoundary.Contains(candidate), "distance exactly equal to radius is admitted")

	justInside := Fence{Center: &center, Radius: d * (1 - 1e-9)}
	assert.False(t, justInside.Contains(candidate), "radius minus epsilon rejects")
}

func TestFenceFailsClosedWithoutCenter(t *testing.T) {
	f := Fence{Center: nil, Radius: 1e9}
	ok, d := f.Check(Location{Lat: 0, Lng: 0})
	assert.False(t, ok)
	assert.Equal(t, -1.0, d)
}

func TestFenceZeroRadiusAdmitsCenter(t *testing.T) {
	center := Location{Lat: -33.86, Lng: 151.21}
	f := Fence{Center: &center, Radius: 0}
	assert.True(t, f.Contains(center))
	assert.False(t, f.Contains(Location{Lat: -33.861, Lng: 151.21}))
}
