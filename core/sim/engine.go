// Package sim implements the time-stepped dispatch simulation for the
// demand-responsive fleet: request arrivals, assignment, completion and
// cancellation transitions, and the reward signal consumed by the policy
// learner.
package sim

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/lastmile-cy/microtransit/core/events"
	"github.com/lastmile-cy/microtransit/core/geo"
	"github.com/lastmile-cy/microtransit/core/logger"
	"github.com/lastmile-cy/microtransit/core/model"
	"github.com/lastmile-cy/microtransit/internal/eventbus"
	"github.com/lastmile-cy/microtransit/metrics"
)

// Reward shaping constants.
const (
	assignmentBonus    = 1.0
	waitPenaltyScale   = 10.0 // reward -= wait / waitPenaltyScale
	distPenaltyScale   = 20.0 // reward -= pickup km / distPenaltyScale
	completionBonus    = 5.0
	cancellationFine   = 10.0
	invalidPenalty     = 0.5
	terminalBonusScale = 20.0

	waitStepMinutes    = 1.0
	invalidStepMinutes = 0.5

	depotJitterDeg   = 0.01
	requestJitterDeg = 0.005
)

// ErrPendingLimit is returned by SubmitRequest when the pending ceiling is
// reached.
var ErrPendingLimit = fmt.Errorf("pending request limit reached")

// Diagnostics summarizes engine state after a step.
type Diagnostics struct {
	Clock         float64
	Completed     int
	Cancelled     int
	Pending       int
	TotalWait     float64
	TotalDistance float64
	EpisodeReward float64
	Events        []events.Event
}

// Stats is the aggregate view exposed to the service layer.
type Stats struct {
	Completed          int
	Cancelled          int
	Pending            int
	ActiveVehicles     int
	CumulativeWait     float64
	CumulativeDistance float64
	AvgWait            float64
	CompletionRate     float64
}

// Engine is the dispatch simulation. It is not safe for concurrent use: one
// caller owns an instance, and all randomness flows from the per-instance
// generator so a seed plus an action sequence reproduces a run exactly.
type Engine struct {
	cfg     Config
	catalog model.Catalog
	rng     *rand.Rand
	log     logger.Logger
	sink    metrics.Sink
	bus     *eventbus.Bus[events.Event]

	clock     float64
	vehicles  []model.Vehicle
	live      map[int64]*model.RideRequest
	pending   []int64 // pending request ids in arrival order
	completed []*model.RideRequest
	cancelled []*model.RideRequest

	nextRequestID int64
	nextArrival   float64
	startHour     float64
	seasonMult    float64

	totalWait     float64
	totalDistance float64
	episodeReward float64
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger wires a logger into the engine.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithMetrics wires a metrics sink into the engine.
func WithMetrics(s metrics.Sink) Option {
	return func(e *Engine) { e.sink = s }
}

// WithEventBus publishes simulation events on the given bus.
func WithEventBus(b *eventbus.Bus[events.Event]) Option {
	return func(e *Engine) { e.bus = b }
}

// WithCatalog replaces the default location catalogue.
func WithCatalog(c model.Catalog) Option {
	return func(e *Engine) { e.catalog = c }
}

// New validates the configuration and builds an engine. The engine starts in
// a reset state using cfg.Seed.
func New(cfg Config, opts ...Option) (*Engine, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		cfg:     cfg,
		catalog: model.DefaultCatalog(),
		log:     logger.Nop{},
		sink:    metrics.NopSink{},
	}
	for _, o := range opts {
		o(e)
	}
	if e.catalog.Len() < 2 {
		return nil, fmt.Errorf("sim: catalog needs at least two locations")
	}
	e.Reset(cfg.Seed)
	return e, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() Config { return e.cfg }

// Clock returns the current simulation time in minutes.
func (e *Engine) Clock() float64 { return e.clock }

// Vehicles returns a snapshot of the fleet.
func (e *Engine) Vehicles() []model.Vehicle {
	cp := make([]model.Vehicle, len(e.vehicles))
	copy(cp, e.vehicles)
	return cp
}

// PendingRequests returns snapshots of the pending requests in slot order.
func (e *Engine) PendingRequests() []model.RideRequest {
	out := make([]model.RideRequest, 0, len(e.pending))
	for _, id := range e.pending {
		out = append(out, *e.live[id])
	}
	return out
}

// Reset starts a new episode. Vehicles return to jittered depot positions,
// all request collections clear, the clock rewinds to zero and the first
// arrival is scheduled. Fully deterministic for a given seed.
func (e *Engine) Reset(seed int64) []float64 {
	e.rng = rand.New(rand.NewSource(seed))

	depots := e.catalog.Depots()
	if len(depots) == 0 {
		depots = e.catalog.Locations()
	}
	e.vehicles = make([]model.Vehicle, e.cfg.Vehicles)
	for i := range e.vehicles {
		depot := depots[i%len(depots)]
		e.vehicles[i] = model.Vehicle{
			ID: i,
			Pos: geo.Point{
				Lat: depot.Pos.Lat + e.uniform(-depotJitterDeg, depotJitterDeg),
				Lon: depot.Pos.Lon + e.uniform(-depotJitterDeg, depotJitterDeg),
			},
			Capacity: e.cfg.Capacity,
			SpeedKmh: e.cfg.SpeedKmh,
		}
	}

	e.live = make(map[int64]*model.RideRequest)
	e.pending = e.pending[:0]
	e.completed = nil
	e.cancelled = nil
	e.clock = 0
	e.nextRequestID = 0

	// Episodes start between 06:00 and 18:00. The seasonal demand multiplier
	// is drawn once per episode so observations stay idempotent between steps.
	e.startHour = float64(6 + e.rng.Intn(12))
	e.seasonMult = 1.0
	if e.rng.Float64() < 0.4 {
		e.seasonMult = 1.5
	}

	e.scheduleNextArrival()

	e.totalWait = 0
	e.totalDistance = 0
	e.episodeReward = 0

	e.log.Debugw("engine reset", map[string]any{
		"seed":       seed,
		"vehicles":   e.cfg.Vehicles,
		"start_hour": e.startHour,
	})
	return e.Observe()
}

// Step executes one decision. The action is either the wait sentinel or an
// encoded (vehicle, pending slot) assignment. Malformed and infeasible
// actions are penalized no-ops; Step never fails.
func (e *Engine) Step(action int) (obs []float64, reward float64, done bool, diag Diagnostics) {
	var evs []events.Event

	vehicleIdx, slot, wait, ok := e.cfg.DecodeAction(action)
	switch {
	case !ok:
		reward += e.penalizeInvalid()
	case wait:
		e.clock += waitStepMinutes
	default:
		r, ev := e.tryAssign(vehicleIdx, slot)
		reward += r
		if ev != nil {
			evs = append(evs, ev)
		}
	}

	evs = append(evs, e.generateArrivals()...)

	r, completedEvs := e.sweepCompletions()
	reward += r
	evs = append(evs, completedEvs...)

	r, cancelledEvs := e.sweepCancellations()
	reward += r
	evs = append(evs, cancelledEvs...)

	done = e.clock >= e.cfg.HorizonHours*60
	if done {
		total := len(e.completed) + len(e.cancelled)
		rate := 0.0
		if total > 0 {
			rate = float64(len(e.completed)) / float64(total)
			reward += rate * terminalBonusScale
		}
		evs = append(evs, events.EpisodeEnded{
			Completed:      len(e.completed),
			Cancelled:      len(e.cancelled),
			CompletionRate: rate,
			Time:           e.clock,
		})
		e.sink.RecordEpisode(rate, e.episodeReward+reward)
	}

	e.episodeReward += reward
	e.sink.RecordStepReward(reward)
	e.publish(evs)

	diag = Diagnostics{
		Clock:         e.clock,
		Completed:     len(e.completed),
		Cancelled:     len(e.cancelled),
		Pending:       len(e.pending),
		TotalWait:     e.totalWait,
		TotalDistance: e.totalDistance,
		EpisodeReward: e.episodeReward,
		Events:        evs,
	}
	return e.Observe(), reward, done, diag
}

// penalizeInvalid books a malformed or infeasible action as a penalized
// no-op: fixed penalty, small clock step, metric recorded.
func (e *Engine) penalizeInvalid() float64 {
	e.sink.RecordInvalidAction()
	e.clock += invalidStepMinutes
	return -invalidPenalty
}

// tryAssign attempts the decoded assignment. Infeasible assignments are
// penalized and advance the clock by the small fixed increment.
func (e *Engine) tryAssign(vehicleIdx, slot int) (float64, events.Event) {
	if vehicleIdx >= len(e.vehicles) || slot >= len(e.pending) {
		return e.penalizeInvalid(), nil
	}
	req := e.live[e.pending[slot]]
	veh := &e.vehicles[vehicleIdx]
	if !veh.CanCarry(req.Passengers) {
		return e.penalizeInvalid(), nil
	}

	// Wait and pickup distance are measured at the moment of assignment,
	// before the vehicle relocates.
	waitTime := req.WaitTime(e.clock)
	pickupDist := geo.Distance(veh.Pos, req.Pickup)
	travel := geo.TravelTime(veh.Pos, req.Pickup, veh.SpeedKmh)

	if err := req.Assign(veh.ID, e.clock+travel); err != nil {
		panic(fmt.Sprintf("sim: assign request %d: %v", req.ID, err))
	}
	if err := veh.Board(req.Passengers); err != nil {
		panic(fmt.Sprintf("sim: board request %d: %v", req.ID, err))
	}
	veh.Pos = req.Pickup
	veh.AppendStops(req)
	e.removePending(req.ID)

	e.totalWait += waitTime
	e.totalDistance += pickupDist
	e.clock += travel

	reward := assignmentBonus - waitTime/waitPenaltyScale - pickupDist/distPenaltyScale
	e.sink.RecordAssignment(waitTime, pickupDist)
	e.log.Debugf("request %d assigned to vehicle %d (wait %.1f min, pickup %.1f km)",
		req.ID, veh.ID, waitTime, pickupDist)

	return reward, events.RequestAssigned{
		RequestID:  req.ID,
		VehicleID:  veh.ID,
		WaitTime:   waitTime,
		PickupDist: pickupDist,
		Time:       e.clock,
	}
}

// sweepCompletions finishes every assigned trip whose dropoff travel time has
// elapsed. The vehicle relocates to the dropoff and releases the seats.
func (e *Engine) sweepCompletions() (float64, []events.Event) {
	reward := 0.0
	var evs []events.Event
	for _, id := range e.liveIDsAscending() {
		req := e.live[id]
		if req.Status != model.StatusAssigned {
			continue
		}
		veh := &e.vehicles[req.VehicleID]
		dropoffTravel := geo.TravelTime(req.Pickup, req.Dropoff, veh.SpeedKmh)
		if e.clock < req.PickupTime+dropoffTravel {
			continue
		}
		if err := req.Complete(req.PickupTime + dropoffTravel); err != nil {
			panic(fmt.Sprintf("sim: complete request %d: %v", req.ID, err))
		}
		if err := veh.Alight(req.Passengers); err != nil {
			panic(fmt.Sprintf("sim: alight request %d: %v", req.ID, err))
		}
		veh.Pos = req.Dropoff
		e.completed = append(e.completed, req)
		delete(e.live, id)

		reward += completionBonus
		e.sink.RecordCompletion()
		e.log.Debugf("request %d completed by vehicle %d", req.ID, veh.ID)
		evs = append(evs, events.RequestCompleted{RequestID: req.ID, VehicleID: veh.ID, Time: e.clock})
	}
	return reward, evs
}

// sweepCancellations drops every pending request whose wait exceeded the
// ceiling.
func (e *Engine) sweepCancellations() (float64, []events.Event) {
	reward := 0.0
	var evs []events.Event
	for _, id := range append([]int64(nil), e.pending...) {
		req := e.live[id]
		waitTime := req.WaitTime(e.clock)
		if waitTime <= e.cfg.MaxWaitMinutes {
			continue
		}
		if err := req.Cancel(); err != nil {
			panic(fmt.Sprintf("sim: cancel request %d: %v", req.ID, err))
		}
		e.cancelled = append(e.cancelled, req)
		e.removePending(id)
		delete(e.live, id)

		reward -= cancellationFine
		e.sink.RecordCancellation(waitTime)
		e.log.Debugf("request %d cancelled after %.1f min", req.ID, waitTime)
		evs = append(evs, events.RequestCancelled{RequestID: req.ID, WaitTime: waitTime, Time: e.clock})
	}
	return reward, evs
}

// SubmitRequest injects an externally originated request into the pending
// set, subject to the pending ceiling.
func (e *Engine) SubmitRequest(pickup, dropoff geo.Point, passengers int) (int64, error) {
	if len(e.pending) >= e.cfg.MaxPending {
		return 0, ErrPendingLimit
	}
	req, err := model.NewRideRequest(e.nextRequestID, pickup, dropoff, passengers, e.clock)
	if err != nil {
		return 0, err
	}
	e.nextRequestID++
	e.live[req.ID] = req
	e.pending = append(e.pending, req.ID)
	e.publish([]events.Event{events.RequestArrived{RequestID: req.ID, Passengers: passengers, Time: e.clock}})
	return req.ID, nil
}

// Stats returns aggregate statistics for the current episode.
func (e *Engine) Stats() Stats {
	completed := len(e.completed)
	cancelled := len(e.cancelled)
	total := completed + cancelled

	avgWait := 0.0
	if completed > 0 {
		avgWait = e.totalWait / float64(completed)
	}
	rate := 1.0
	if total > 0 {
		rate = float64(completed) / float64(total)
	}
	active := 0
	for i := range e.vehicles {
		if e.vehicles[i].Occupied > 0 {
			active++
		}
	}
	return Stats{
		Completed:          completed,
		Cancelled:          cancelled,
		Pending:            len(e.pending),
		ActiveVehicles:     active,
		CumulativeWait:     e.totalWait,
		CumulativeDistance: e.totalDistance,
		AvgWait:            avgWait,
		CompletionRate:     rate,
	}
}

func (e *Engine) publish(evs []events.Event) {
	if e.bus == nil {
		return
	}
	for _, ev := range evs {
		e.bus.Publish(ev)
	}
}

func (e *Engine) removePending(id int64) {
	for i, p := range e.pending {
		if p == id {
			e.pending = append(e.pending[:i], e.pending[i+1:]...)
			return
		}
	}
}

// liveIDsAscending returns the live request ids in creation order. Sweeps
// iterate it instead of the map to keep runs deterministic.
func (e *Engine) liveIDsAscending() []int64 {
	ids := make([]int64, 0, len(e.live))
	for id := range e.live {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (e *Engine) uniform(lo, hi float64) float64 {
	return lo + e.rng.Float64()*(hi-lo)
}
