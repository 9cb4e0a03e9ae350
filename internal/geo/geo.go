package geo

import "math"

// earthRadiusMeters is the mean Earth radius used by the haversine formula.
const earthRadiusMeters = 6371000

// Location is a WGS84 coordinate pair in degrees.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Distance returns the great-circle distance between two points in meters.
// Accurate to within a few meters at campus scale; no ellipsoidal correction.
func Distance(a, b Location) float64 {
	dLat := radians(b.Lat - a.Lat)
	dLng := radians(b.Lng - a.Lng)

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)

	h := sinLat*sinLat + math.Cos(radians(a.Lat))*math.Cos(radians(b.Lat))*sinLng*sinLng
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusMeters * c
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Fence is a circular geofence around a center point.
type Fence struct {
	Center *Location
	Radius float64 // meters
}

// Contains reports whether the candidate falls inside the fence.
// The boundary is inclusive. A fence with no center admits nothing.
func (f Fence) Contains(candidate Location) bool {
	ok, _ := f.Check(candidate)
	return ok
}

// Check is Contains plus the measured distance, for rejection messages.
// When the fence has no center the distance is reported as -1.
func (f Fence) Check(candidate Location) (bool, float64) {
	if f.Center == nil {
		return false, -1
	}
	d := Distance(candidate, *f.Center)
	return d <= f.Radius, d
}
