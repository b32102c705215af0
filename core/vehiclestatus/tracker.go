package vehiclestatus

import (
	"context"

	"github.com/lastmile-cy/microtransit/core/events"
)

// Tracker consumes simulation events and keeps a Store current. It is
// meant to run on its own goroutine behind an event bus subscription.
type Tracker struct {
	store Store
}

func NewTracker(store Store) *Tracker {
	return &Tracker{store: store}
}

// Run processes events until the channel closes or the context ends.
func (t *Tracker) Run(ctx context.Context, ch <-chan events.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			t.handle(ev)
		}
	}
}

func (t *Tracker) handle(ev events.Event) {
	switch e := ev.(type) {
	case events.RequestAssigned:
		t.store.RecordAssignment(e.VehicleID, LastAssignment{
			RequestID:  e.RequestID,
			WaitTime:   e.WaitTime,
			PickupDist: e.PickupDist,
			Time:       e.Time,
		})
	case events.RequestCompleted:
		t.store.RecordCompletion(e.VehicleID, e.Time)
	}
}
