// Package geo computes great-circle proximity features for firm locations
// against fixed reference sets of cities and transport corridors.
package geo

import "math"

// EarthRadiusKM is the mean Earth radius used by Distance.
const EarthRadiusKM = 6371.0

// GeoPoint is a latitude/longitude pair in decimal degrees.
type GeoPoint struct {
	Lat float64 `yaml:"lat" json:"lat"`
	Lon float64 `yaml:"lon" json:"lon"`
}

// Distance returns the haversine great-circle distance between a and b in
// kilometers. Coordinates are not range-checked.
func Distance(a, b GeoPoint) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	// Rounding can push h a hair outside [0, 1] for antipodal points.
	h = math.Min(math.Max(h, 0), 1)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusKM * c
}
