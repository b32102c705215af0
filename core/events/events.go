// Package events defines the simulation events emitted on the event bus.
//
// Available event types:
//   - RequestArrived: a new ride request entered the pending set
//   - RequestAssigned: a request was matched to a vehicle
//   - RequestCompleted: a passenger reached their dropoff
//   - RequestCancelled: a request timed out waiting
//   - EpisodeEnded: the simulation horizon was reached
package events

// Event is implemented by all simulation event types.
type Event interface {
	Kind() string
}

// RequestArrived is published when the arrival process or an external caller
// adds a request to the pending set.
type RequestArrived struct {
	RequestID  int64
	Passengers int
	Time       float64
}

func (RequestArrived) Kind() string { return "request_arrived" }

// RequestAssigned is published when a request is matched to a vehicle.
type RequestAssigned struct {
	RequestID  int64
	VehicleID  int
	WaitTime   float64
	PickupDist float64
	Time       float64
}

func (RequestAssigned) Kind() string { return "request_assigned" }

// RequestCompleted is published when a passenger reaches their dropoff.
type RequestCompleted struct {
	RequestID int64
	VehicleID int
	Time      float64
}

func (RequestCompleted) Kind() string { return "request_completed" }

// RequestCancelled is published when a pending request exceeds the maximum
// wait and is dropped.
type RequestCancelled struct {
	RequestID int64
	WaitTime  float64
	Time      float64
}

func (RequestCancelled) Kind() string { return "request_cancelled" }

// EpisodeEnded is published when the simulation clock reaches the horizon.
type EpisodeEnded struct {
	Completed      int
	Cancelled      int
	CompletionRate float64
	Time           float64
}

func (EpisodeEnded) Kind() string { return "episode_ended" }
