package geo

import (
	"math"
	"testing"
)

func TestDistance_Symmetric(t *testing.T) {
	nicosia := Point{Lat: 35.1856, Lon: 33.3823}
	limassol := Point{Lat: 34.6841, Lon: 33.0379}

	d1 := Distance(nicosia, limassol)
	d2 := Distance(limassol, nicosia)
	if math.Abs(d1-d2) > 1e-9 {
		t.Fatalf("distance not symmetric: %f vs %f", d1, d2)
	}
	// Nicosia-Limassol is roughly 64 km as the crow flies.
	if d1 < 55 || d1 > 75 {
		t.Errorf("unexpected Nicosia-Limassol distance: %f km", d1)
	}
}

func TestDistance_ZeroAtSamePoint(t *testing.T) {
	p := Point{Lat: 34.9229, Lon: 33.6232}
	if d := Distance(p, p); d > 1e-9 {
		t.Errorf("distance to self should be zero, got %f", d)
	}
}

func TestWindingFactor_MountainRoads(t *testing.T) {
	platres := Point{Lat: 34.8894, Lon: 32.8636}
	pedoulas := Point{Lat: 34.9667, Lon: 32.8333}
	if f := WindingFactor(platres, pedoulas); f != 1.3 {
		t.Errorf("Troodos segment should use mountain factor, got %f", f)
	}

	ayiaNapa := Point{Lat: 34.9833, Lon: 34.0}
	protaras := Point{Lat: 35.0167, Lon: 34.05}
	if f := WindingFactor(ayiaNapa, protaras); f != 1.1 {
		t.Errorf("coastal segment should use default factor, got %f", f)
	}
}

func TestTravelTime(t *testing.T) {
	a := Point{Lat: 34.9833, Lon: 34.0}
	b := Point{Lat: 35.0167, Lon: 34.05}
	want := Distance(a, b) * 1.1 / 40.0 * 60
	got := TravelTime(a, b, 40.0)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("travel time = %f, want %f", got, want)
	}
	if got <= 0 {
		t.Errorf("travel time must be positive, got %f", got)
	}
}

func TestRouteDistance(t *testing.T) {
	a := Point{Lat: 35.1856, Lon: 33.3823}
	b := Point{Lat: 34.9229, Lon: 33.6232}
	c := Point{Lat: 34.6841, Lon: 33.0379}

	want := Distance(a, b) + Distance(b, c)
	if got := RouteDistance([]Point{a, b, c}); math.Abs(got-want) > 1e-9 {
		t.Errorf("route distance = %f, want %f", got, want)
	}
	if got := RouteDistance([]Point{a}); got != 0 {
		t.Errorf("single-point route should have zero distance, got %f", got)
	}
}
