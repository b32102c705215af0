package model

import (
	"fmt"

	"github.com/lastmile-cy/microtransit/core/geo"
)

// StopKind distinguishes pickup and dropoff entries in a vehicle route log.
type StopKind int

const (
	StopPickup StopKind = iota
	StopDropoff
)

func (k StopKind) String() string {
	if k == StopPickup {
		return "pickup"
	}
	return "dropoff"
}

// RouteStop is one entry in a vehicle's route log.
type RouteStop struct {
	Pos       geo.Point
	RequestID int64
	Kind      StopKind
}

// Vehicle represents one minibus in the fleet. Occupied never exceeds
// Capacity; Board and Alight enforce the invariant.
type Vehicle struct {
	ID       int
	Pos      geo.Point
	Capacity int
	Occupied int
	Route    []RouteStop
	SpeedKmh float64
}

// Validate checks that the vehicle configuration is sound.
func (v Vehicle) Validate() error {
	if v.Capacity <= 0 {
		return fmt.Errorf("vehicle %d: capacity must be positive", v.ID)
	}
	if v.SpeedKmh <= 0 {
		return fmt.Errorf("vehicle %d: speed must be positive", v.ID)
	}
	return nil
}

// FreeSeats returns the remaining seat capacity.
func (v Vehicle) FreeSeats() int { return v.Capacity - v.Occupied }

// CanCarry reports whether the vehicle has room for n more passengers.
func (v Vehicle) CanCarry(n int) bool { return n > 0 && v.FreeSeats() >= n }

// Board seats n passengers. It fails if the vehicle lacks capacity.
func (v *Vehicle) Board(n int) error {
	if !v.CanCarry(n) {
		return fmt.Errorf("vehicle %d: cannot board %d passengers with %d free seats", v.ID, n, v.FreeSeats())
	}
	v.Occupied += n
	return nil
}

// Alight releases n seats. It fails if more passengers leave than are aboard.
func (v *Vehicle) Alight(n int) error {
	if n <= 0 || n > v.Occupied {
		return fmt.Errorf("vehicle %d: cannot alight %d passengers with %d aboard", v.ID, n, v.Occupied)
	}
	v.Occupied -= n
	return nil
}

// AppendStops records the pickup and dropoff of a request in the route log.
func (v *Vehicle) AppendStops(r *RideRequest) {
	v.Route = append(v.Route,
		RouteStop{Pos: r.Pickup, RequestID: r.ID, Kind: StopPickup},
		RouteStop{Pos: r.Dropoff, RequestID: r.ID, Kind: StopDropoff},
	)
}
