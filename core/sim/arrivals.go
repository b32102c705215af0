package sim

import (
	"fmt"
	"math"

	"github.com/lastmile-cy/microtransit/core/events"
	"github.com/lastmile-cy/microtransit/core/geo"
	"github.com/lastmile-cy/microtransit/core/model"
)

// currentHour returns the simulated hour of day in [0, 24).
func (e *Engine) currentHour() float64 {
	return math.Mod(e.startHour+e.clock/60, 24)
}

// timeOfDayMultiplier models peak demand: morning and lunch peaks, a stronger
// evening peak, shoulders around them and quiet nights.
func (e *Engine) timeOfDayMultiplier() float64 {
	hour := e.currentHour()
	switch {
	case (hour >= 8 && hour < 10) || (hour >= 12 && hour < 14):
		return 1.5
	case hour >= 17 && hour < 20:
		return 2.0
	case (hour >= 6 && hour < 8) || (hour >= 20 && hour < 22):
		return 1.0
	default:
		return 0.5
	}
}

// demandMultiplier combines the time-of-day and the per-episode seasonal
// multiplier.
func (e *Engine) demandMultiplier() float64 {
	return e.timeOfDayMultiplier() * e.seasonMult
}

// scheduleNextArrival draws an exponential inter-arrival time from the
// current demand level.
func (e *Engine) scheduleNextArrival() {
	meanInterval := 60 / (e.cfg.DemandRate * e.demandMultiplier())
	e.nextArrival = e.clock + e.rng.ExpFloat64()*meanInterval
}

// generateArrivals synthesizes requests whose scheduled arrival time has been
// reached. The pending ceiling suppresses the request but the arrival clock
// is always rescheduled.
func (e *Engine) generateArrivals() []events.Event {
	var evs []events.Event
	for e.clock >= e.nextArrival {
		if len(e.pending) < e.cfg.MaxPending {
			req := e.generateRequest()
			e.live[req.ID] = req
			e.pending = append(e.pending, req.ID)
			e.log.Debugf("request %d arrived (%d passengers)", req.ID, req.Passengers)
			evs = append(evs, events.RequestArrived{RequestID: req.ID, Passengers: req.Passengers, Time: e.clock})
		}
		e.scheduleNextArrival()
	}
	return evs
}

// generateRequest draws a pickup weighted toward tourist, beach and village
// locations, a distinct dropoff, geographic jitter, and a passenger count
// skewed toward single riders.
func (e *Engine) generateRequest() *model.RideRequest {
	locations := e.catalog.Locations()

	pickupIdx := e.weightedLocation(locations)
	dropIdx := e.rng.Intn(len(locations) - 1)
	if dropIdx >= pickupIdx {
		dropIdx++
	}

	pickup := geo.Point{
		Lat: locations[pickupIdx].Pos.Lat + e.uniform(-requestJitterDeg, requestJitterDeg),
		Lon: locations[pickupIdx].Pos.Lon + e.uniform(-requestJitterDeg, requestJitterDeg),
	}
	dropoff := geo.Point{
		Lat: locations[dropIdx].Pos.Lat + e.uniform(-requestJitterDeg, requestJitterDeg),
		Lon: locations[dropIdx].Pos.Lon + e.uniform(-requestJitterDeg, requestJitterDeg),
	}

	req, err := model.NewRideRequest(e.nextRequestID, pickup, dropoff, e.samplePassengers(), e.clock)
	if err != nil {
		panic(fmt.Sprintf("sim: generate request: %v", err))
	}
	e.nextRequestID++
	return req
}

// weightedLocation samples an index proportionally to category demand
// weights.
func (e *Engine) weightedLocation(locations []model.Location) int {
	total := 0.0
	for _, l := range locations {
		total += l.Category.RequestWeight()
	}
	target := e.rng.Float64() * total
	acc := 0.0
	for i, l := range locations {
		acc += l.Category.RequestWeight()
		if target < acc {
			return i
		}
	}
	return len(locations) - 1
}

// samplePassengers draws from {1, 2, 3, 4} with probabilities
// 0.5/0.3/0.15/0.05.
func (e *Engine) samplePassengers() int {
	r := e.rng.Float64()
	switch {
	case r < 0.5:
		return 1
	case r < 0.8:
		return 2
	case r < 0.95:
		return 3
	default:
		return 4
	}
}
