// Package geo provides great-circle distance and travel-time estimation for
// the Cyprus road network. Distances are haversine; travel times apply a
// winding factor approximating non-straight mountain roads.
package geo

import "math"

const earthRadiusKm = 6371.0

// Troodos massif reference point. Segments passing near it are assumed to
// follow winding mountain roads.
var troodosCenter = Point{Lat: 34.95, Lon: 32.85}

const (
	mountainWindingFactor = 1.3
	defaultWindingFactor  = 1.1
	mountainRadiusKm      = 30.0
)

// Point is an immutable latitude/longitude pair in degrees.
type Point struct {
	Lat float64
	Lon float64
}

// Distance returns the great-circle distance between a and b in kilometers.
func Distance(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

// WindingFactor returns the road winding multiplier for the segment a-b.
// Segments whose midpoint lies within 30 km of the Troodos massif use the
// mountain factor.
func WindingFactor(a, b Point) float64 {
	mid := Point{Lat: (a.Lat + b.Lat) / 2, Lon: (a.Lon + b.Lon) / 2}
	if Distance(mid, troodosCenter) < mountainRadiusKm {
		return mountainWindingFactor
	}
	return defaultWindingFactor
}

// TravelTime estimates the driving time in minutes between a and b at the
// given cruising speed in km/h.
func TravelTime(a, b Point, speedKmh float64) float64 {
	road := Distance(a, b) * WindingFactor(a, b)
	return road / speedKmh * 60
}

// RouteDistance returns the total great-circle distance along an ordered
// sequence of points.
func RouteDistance(points []Point) float64 {
	if len(points) < 2 {
		return 0
	}
	total := 0.0
	for i := 0; i < len(points)-1; i++ {
		total += Distance(points[i], points[i+1])
	}
	return total
}
