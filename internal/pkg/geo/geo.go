package geo

import (
	"errors"
	"math"
)

// EarthRadiusMeters is the mean Earth radius used for haversine distances.
const EarthRadiusMeters = 6371000

var (
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	ErrInvalidRadius      = errors.New("invalid geofence radius")
)

// Coordinates is a WGS84 latitude/longitude pair in degrees.
type Coordinates struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// Validate rejects NaN, infinite and out-of-range values.
func (c Coordinates) Validate() error {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lng) || math.IsInf(c.Lat, 0) || math.IsInf(c.Lng, 0) {
		return ErrInvalidCoordinates
	}
	if c.Lat < -90 || c.Lat > 90 || c.Lng < -180 || c.Lng > 180 {
		return ErrInvalidCoordinates
	}
	return nil
}

// Distance returns the great-circle distance between a and b in meters.
func Distance(a, b Coordinates) float64 {
	dLat := toRadians(b.Lat - a.Lat)
	dLng := toRadians(b.Lng - a.Lng)

	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLng/2)*math.Sin(dLng/2)*math.Cos(lat1)*math.Cos(lat2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusMeters * c
}

// IsWithinGeofence reports whether point lies within radiusMeters of center.
// Malformed input is an error, never a silent false or true.
func IsWithinGeofence(point, center Coordinates, radiusMeters float64) (bool, error) {
	if err := point.Validate(); err != nil {
		return false, err
	}
	if err := center.Validate(); err != nil {
		return false, err
	}
	if math.IsNaN(radiusMeters) || radiusMeters < 0 {
		return false, ErrInvalidRadius
	}
	return Distance(point, center) <= radiusMeters, nil
}

func toRadians(deg float64) float64 {
	return deg * (math.Pi / 180.0)
}
