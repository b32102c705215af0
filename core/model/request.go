package model

import (
	"fmt"

	"github.com/lastmile-cy/microtransit/core/geo"
)

// Unset marks pickup/dropoff times and vehicle references that have not been
// assigned yet.
const Unset = -1

// RideRequest is a single passenger request. Ids are assigned monotonically
// by the engine. PickupTime is set only once the request is assigned,
// DropoffTime only once it completes, and VehicleID stays Unset until
// assignment.
type RideRequest struct {
	ID          int64
	Pickup      geo.Point
	Dropoff     geo.Point
	Passengers  int
	RequestTime float64 // simulation minutes
	Status      Status
	VehicleID   int
	PickupTime  float64
	DropoffTime float64
}

// NewRideRequest returns a pending request created at the given simulation
// time.
func NewRideRequest(id int64, pickup, dropoff geo.Point, passengers int, now float64) (*RideRequest, error) {
	if passengers < 1 {
		return nil, fmt.Errorf("request %d: passengers must be at least 1, got %d", id, passengers)
	}
	return &RideRequest{
		ID:          id,
		Pickup:      pickup,
		Dropoff:     dropoff,
		Passengers:  passengers,
		RequestTime: now,
		Status:      StatusPending,
		VehicleID:   Unset,
		PickupTime:  Unset,
		DropoffTime: Unset,
	}, nil
}

// WaitTime returns how long the passenger has been, or was, waiting in
// minutes. For pending requests this grows with the clock; once picked up it
// is frozen at the assignment wait.
func (r *RideRequest) WaitTime(now float64) float64 {
	if r.Status == StatusPending {
		return now - r.RequestTime
	}
	if r.PickupTime > 0 {
		return r.PickupTime - r.RequestTime
	}
	return 0
}

// Assign transitions the request to ASSIGNED and records the serving vehicle
// and the estimated pickup time.
func (r *RideRequest) Assign(vehicleID int, pickupTime float64) error {
	next, err := r.Status.Transition(StatusAssigned)
	if err != nil {
		return err
	}
	r.Status = next
	r.VehicleID = vehicleID
	r.PickupTime = pickupTime
	return nil
}

// Complete transitions the request to COMPLETED and records the dropoff time.
func (r *RideRequest) Complete(dropoffTime float64) error {
	next, err := r.Status.Transition(StatusCompleted)
	if err != nil {
		return err
	}
	r.Status = next
	r.DropoffTime = dropoffTime
	return nil
}

// Cancel transitions the request to CANCELLED.
func (r *RideRequest) Cancel() error {
	next, err := r.Status.Transition(StatusCancelled)
	if err != nil {
		return err
	}
	r.Status = next
	return nil
}
