// Package vehiclestatus tracks the last known state of every vehicle in
// the fleet for observers outside the simulation loop.
package vehiclestatus

import (
	"sort"
	"sync"

	"github.com/lastmile-cy/microtransit/core/geo"
	"github.com/lastmile-cy/microtransit/core/model"
)

const (
	StateIdle    = "idle"
	StateServing = "serving"
)

// LastAssignment mirrors the summary of a dispatch decision.
type LastAssignment struct {
	RequestID  int64   `json:"request_id"`
	WaitTime   float64 `json:"wait_time"`
	PickupDist float64 `json:"pickup_dist"`
	Time       float64 `json:"time"`
}

// Status captures the current known state of a vehicle.
type Status struct {
	VehicleID      int            `json:"vehicle_id"`
	Position       geo.Point      `json:"position"`
	Occupied       int            `json:"occupied"`
	FreeSeats      int            `json:"free_seats"`
	State          string         `json:"state"`
	LastAssignment LastAssignment `json:"last_assignment"`
	// LastCompletionTime is the simulation minute of the most recent
	// dropoff served by this vehicle, zero before the first one.
	LastCompletionTime float64 `json:"last_completion_time"`
}

type Filter struct {
	State string
}

type Store interface {
	Set(Status)
	Get(id int) (Status, bool)
	List(Filter) []Status
	RecordAssignment(id int, a LastAssignment)
	RecordCompletion(id int, clock float64)
}

type MemoryStore struct {
	mu   sync.RWMutex
	data map[int]Status
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[int]Status{}}
}

func (s *MemoryStore) Set(st Status) {
	s.mu.Lock()
	s.data[st.VehicleID] = st
	s.mu.Unlock()
}

func (s *MemoryStore) Get(id int) (Status, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.data[id]
	return st, ok
}

func (s *MemoryStore) RecordAssignment(id int, a LastAssignment) {
	s.mu.Lock()
	st := s.data[id]
	st.VehicleID = id
	st.LastAssignment = a
	st.State = StateServing
	s.data[id] = st
	s.mu.Unlock()
}

func (s *MemoryStore) RecordCompletion(id int, clock float64) {
	s.mu.Lock()
	st := s.data[id]
	st.VehicleID = id
	st.LastCompletionTime = clock
	if st.Occupied == 0 {
		st.State = StateIdle
	}
	s.data[id] = st
	s.mu.Unlock()
}

func (s *MemoryStore) List(f Filter) []Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]Status, 0, len(s.data))
	for _, st := range s.data {
		if f.State != "" && st.State != f.State {
			continue
		}
		res = append(res, st)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].VehicleID < res[j].VehicleID })
	return res
}

// SyncFleet refreshes position and occupancy from a fleet snapshot while
// keeping the recorded dispatch history.
func (s *MemoryStore) SyncFleet(vehicles []model.Vehicle) {
	s.mu.Lock()
	for _, v := range vehicles {
		st := s.data[v.ID]
		st.VehicleID = v.ID
		st.Position = v.Pos
		st.Occupied = v.Occupied
		st.FreeSeats = v.FreeSeats()
		if st.State == "" {
			st.State = StateIdle
		}
		if v.Occupied > 0 {
			st.State = StateServing
		} else if st.State == StateServing {
			st.State = StateIdle
		}
		s.data[v.ID] = st
	}
	s.mu.Unlock()
}
