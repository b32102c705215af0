package vehiclestatus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lastmile-cy/microtransit/core/events"
	"github.com/lastmile-cy/microtransit/core/geo"
	"github.com/lastmile-cy/microtransit/core/model"
	"github.com/lastmile-cy/microtransit/internal/eventbus"
)

func TestMemoryStore_RecordAssignment(t *testing.T) {
	s := NewMemoryStore()
	s.RecordAssignment(2, LastAssignment{RequestID: 41, WaitTime: 3.5, Time: 12})

	st, ok := s.Get(2)
	require.True(t, ok)
	assert.Equal(t, StateServing, st.State)
	assert.Equal(t, int64(41), st.LastAssignment.RequestID)
	assert.Equal(t, 3.5, st.LastAssignment.WaitTime)
}

func TestMemoryStore_CompletionReturnsToIdle(t *testing.T) {
	s := NewMemoryStore()
	s.RecordAssignment(1, LastAssignment{RequestID: 7})
	s.RecordCompletion(1, 30)

	st, _ := s.Get(1)
	assert.Equal(t, StateIdle, st.State)
	assert.Equal(t, 30.0, st.LastCompletionTime)
}

func TestMemoryStore_CompletionKeepsServingWhileOccupied(t *testing.T) {
	s := NewMemoryStore()
	s.Set(Status{VehicleID: 1, Occupied: 2, State: StateServing})
	s.RecordCompletion(1, 30)

	st, _ := s.Get(1)
	assert.Equal(t, StateServing, st.State)
}

func TestMemoryStore_ListFiltersAndSorts(t *testing.T) {
	s := NewMemoryStore()
	s.Set(Status{VehicleID: 2, State: StateIdle})
	s.Set(Status{VehicleID: 0, State: StateServing})
	s.Set(Status{VehicleID: 1, State: StateIdle})

	all := s.List(Filter{})
	require.Len(t, all, 3)
	assert.Equal(t, 0, all[0].VehicleID)
	assert.Equal(t, 2, all[2].VehicleID)

	idle := s.List(Filter{State: StateIdle})
	require.Len(t, idle, 2)
	for _, st := range idle {
		assert.Equal(t, StateIdle, st.State)
	}
}

func TestMemoryStore_SyncFleet(t *testing.T) {
	s := NewMemoryStore()
	s.RecordAssignment(0, LastAssignment{RequestID: 9})

	s.SyncFleet([]model.Vehicle{
		{ID: 0, Pos: geo.Point{Lat: 34.9, Lon: 32.9}, Capacity: 8, Occupied: 3},
		{ID: 1, Pos: geo.Point{Lat: 34.7, Lon: 33.0}, Capacity: 8},
	})

	st0, _ := s.Get(0)
	assert.Equal(t, 3, st0.Occupied)
	assert.Equal(t, 5, st0.FreeSeats)
	assert.Equal(t, StateServing, st0.State)
	assert.Equal(t, int64(9), st0.LastAssignment.RequestID, "history survives sync")

	st1, _ := s.Get(1)
	assert.Equal(t, StateIdle, st1.State)
}

func TestTracker_ConsumesBusEvents(t *testing.T) {
	bus := eventbus.New[events.Event]()
	store := NewMemoryStore()
	tracker := NewTracker(store)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub := bus.Subscribe()
	done := make(chan struct{})
	go func() {
		tracker.Run(ctx, sub)
		close(done)
	}()

	bus.Publish(events.RequestAssigned{RequestID: 5, VehicleID: 1, WaitTime: 2, Time: 10})
	bus.Publish(events.RequestCompleted{RequestID: 5, VehicleID: 1, Time: 25})
	bus.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("tracker did not stop on bus close")
	}

	st, ok := store.Get(1)
	require.True(t, ok)
	assert.Equal(t, int64(5), st.LastAssignment.RequestID)
	assert.Equal(t, StateIdle, st.State)
	assert.Equal(t, 25.0, st.LastCompletionTime)
}
