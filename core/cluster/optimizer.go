package cluster

import (
	"math/rand"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/lastmile-cy/microtransit/core/geo"
	"github.com/lastmile-cy/microtransit/core/model"
)

// CO2 emission factors in kg per km. A shared minibus emits more per km than
// a car but replaces several individual trips.
const (
	carCO2PerKm     = 0.21
	minibusCO2PerKm = 0.35
)

// Reward shaping for the route value table.
const (
	distanceRewardScale = 0.1  // reward -= 0.1 * km
	proximityBonus      = 2.0  // next stop close to the remaining set
	proximityRadiusKm   = 20.0 //
	completionReward    = 10.0 // all destinations visited
	initQValueSpread    = 0.1  // fresh entries start in (-spread, spread)
)

// RouteAssignment is one optimized vehicle route over a cluster of requests.
// Assignments are produced per optimization call and not persisted.
type RouteAssignment struct {
	ID               string
	VehicleID        string
	Requests         []Request
	Route            []model.Location
	TotalDistanceKm  float64
	EstimatedMinutes float64
	CO2SavedKg       float64
	LoadEfficiency   float64
}

// RouteOptimizer sequences cluster destinations with an epsilon-greedy
// tabular action-value lookup. The value table persists across calls for the
// lifetime of the optimizer, so repeated optimization over the same regions
// converges toward shorter sequences.
type RouteOptimizer struct {
	cfg     Config
	epsilon float64
	rng     *rand.Rand
	qTable  map[string]map[string]float64
}

// NewRouteOptimizer builds an optimizer with a fresh value table.
func NewRouteOptimizer(cfg Config) *RouteOptimizer {
	cfg.SetDefaults()
	return &RouteOptimizer{
		cfg:     cfg,
		epsilon: cfg.Epsilon,
		rng:     rand.New(rand.NewSource(cfg.Seed)),
		qTable:  make(map[string]map[string]float64),
	}
}

// Epsilon returns the current exploration rate.
func (o *RouteOptimizer) Epsilon() float64 { return o.epsilon }

// stateKey encodes the optimizer state: current location plus the sorted set
// of remaining destination ids.
func stateKey(current model.Location, remaining []model.Location) string {
	ids := make([]string, len(remaining))
	for i, l := range remaining {
		ids[i] = l.ID
	}
	sort.Strings(ids)
	return current.ID + "|" + strings.Join(ids, ",")
}

// qValues returns the action-value row for the state, initializing fresh
// entries with small random values.
func (o *RouteOptimizer) qValues(key string, actions []model.Location) map[string]float64 {
	row, ok := o.qTable[key]
	if !ok {
		row = make(map[string]float64, len(actions))
		o.qTable[key] = row
	}
	for _, a := range actions {
		if _, ok := row[a.ID]; !ok {
			row[a.ID] = o.uniform(-initQValueSpread, initQValueSpread)
		}
	}
	return row
}

// selectNext picks the next destination epsilon-greedily.
func (o *RouteOptimizer) selectNext(current model.Location, remaining []model.Location) model.Location {
	if o.rng.Float64() < o.epsilon {
		return remaining[o.rng.Intn(len(remaining))]
	}
	row := o.qValues(stateKey(current, remaining), remaining)
	best := remaining[0]
	bestQ := row[best.ID]
	for _, l := range remaining[1:] {
		if q := row[l.ID]; q > bestQ {
			best, bestQ = l, q
		}
	}
	return best
}

// stepReward scores moving to next with the given destinations still ahead.
func (o *RouteOptimizer) stepReward(current, next model.Location, remaining []model.Location) float64 {
	reward := -geo.Distance(current.Pos, next.Pos) * distanceRewardScale
	if len(remaining) > 0 {
		sum := 0.0
		for _, l := range remaining {
			sum += geo.Distance(next.Pos, l.Pos)
		}
		if sum/float64(len(remaining)) < proximityRadiusKm {
			reward += proximityBonus
		}
	} else {
		reward += completionReward
	}
	return reward
}

// update applies the Bellman update to the taken action and decays epsilon
// toward its floor.
func (o *RouteOptimizer) update(key, actionID string, reward float64, nextKey string, nextActions []model.Location) {
	row, ok := o.qTable[key]
	if !ok {
		return
	}
	maxNext := 0.0
	if len(nextActions) > 0 {
		nextRow := o.qValues(nextKey, nextActions)
		first := true
		for _, q := range nextRow {
			if first || q > maxNext {
				maxNext = q
				first = false
			}
		}
	}
	current := row[actionID]
	row[actionID] = current + o.cfg.LearningRate*(reward+o.cfg.Gamma*maxNext-current)

	o.epsilon *= o.cfg.EpsilonDecay
	if o.epsilon < o.cfg.EpsilonMin {
		o.epsilon = o.cfg.EpsilonMin
	}
}

// distinctDestinations deduplicates cluster destinations preserving first
// appearance order.
func distinctDestinations(cluster []Request) []model.Location {
	seen := make(map[string]bool, len(cluster))
	var out []model.Location
	for _, r := range cluster {
		if !seen[r.Destination.ID] {
			seen[r.Destination.ID] = true
			out = append(out, r.Destination)
		}
	}
	return out
}

// OptimizeRoute sequences the cluster's distinct destinations starting from
// the vehicle's position, learning as it goes, and returns the assignment
// with its derived metrics.
func (o *RouteOptimizer) OptimizeRoute(vehicle FleetVehicle, cluster []Request) RouteAssignment {
	remaining := distinctDestinations(cluster)

	route := []model.Location{vehicle.Location}
	current := vehicle.Location
	for len(remaining) > 0 {
		next := o.selectNext(current, remaining)

		key := stateKey(current, remaining)
		o.qValues(key, remaining) // ensure the row exists before the update
		remaining = removeLocation(remaining, next.ID)
		reward := o.stepReward(current, next, remaining)
		o.update(key, next.ID, reward, stateKey(next, remaining), remaining)

		route = append(route, next)
		current = next
	}

	points := make([]geo.Point, len(route))
	for i, l := range route {
		points[i] = l.Pos
	}
	totalDistance := geo.RouteDistance(points)

	passengers := 0
	for _, r := range cluster {
		passengers += r.Passengers
	}
	efficiency := 0.0
	if vehicle.Capacity > 0 {
		efficiency = float64(passengers) / float64(vehicle.Capacity)
	}

	return RouteAssignment{
		ID:               uuid.NewString(),
		VehicleID:        vehicle.ID,
		Requests:         cluster,
		Route:            route,
		TotalDistanceKm:  totalDistance,
		EstimatedMinutes: totalDistance/o.cfg.AvgSpeedKmh*60 + float64(len(route))*o.cfg.StopOverheadMinutes,
		CO2SavedKg:       o.co2Saved(cluster, totalDistance),
		LoadEfficiency:   efficiency,
	}
}

// co2Saved compares per-request individual car trips against the shared
// minibus route, floored at zero.
func (o *RouteOptimizer) co2Saved(cluster []Request, sharedDistanceKm float64) float64 {
	individual := 0.0
	for _, r := range cluster {
		individual += geo.Distance(r.Origin.Pos, r.Destination.Pos) * carCO2PerKm * float64(r.Passengers)
	}
	saved := individual - sharedDistanceKm*minibusCO2PerKm
	if saved < 0 {
		return 0
	}
	return saved
}

func removeLocation(locations []model.Location, id string) []model.Location {
	for i, l := range locations {
		if l.ID == id {
			return append(locations[:i:i], locations[i+1:]...)
		}
	}
	return locations
}

func (o *RouteOptimizer) uniform(lo, hi float64) float64 {
	return lo + o.rng.Float64()*(hi-lo)
}
