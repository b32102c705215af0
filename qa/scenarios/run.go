package scenarios

import (
	"fmt"
	"sort"

	"github.com/lastmile-cy/microtransit/core/geo"
	"github.com/lastmile-cy/microtransit/core/model"
	"github.com/lastmile-cy/microtransit/core/sim"
)

const maxReplaySteps = 200000

// Result summarizes one trace replay.
type Result struct {
	Completed      int
	Cancelled      int
	CompletionRate float64
	TotalReward    float64
	Steps          int
}

// Run replays the scenario under a greedy nearest-vehicle policy and
// returns the outcome.
func Run(sc *Scenario) (Result, error) {
	cfg := sc.Fleet.ToConfig()
	eng, err := sim.New(cfg)
	if err != nil {
		return Result{}, err
	}
	cat := model.DefaultCatalog()

	type timedRequest struct {
		minute     float64
		pickup     geo.Point
		dropoff    geo.Point
		passengers int
	}
	queue := make([]timedRequest, 0, len(sc.Requests))
	for i, rd := range sc.Requests {
		pickup, err := rd.Pickup.Resolve(cat)
		if err != nil {
			return Result{}, fmt.Errorf("request %d: %w", i, err)
		}
		dropoff, err := rd.Dropoff.Resolve(cat)
		if err != nil {
			return Result{}, fmt.Errorf("request %d: %w", i, err)
		}
		passengers := rd.Passengers
		if passengers == 0 {
			passengers = 1
		}
		queue = append(queue, timedRequest{rd.Minute, pickup, dropoff, passengers})
	}
	sort.SliceStable(queue, func(i, j int) bool { return queue[i].minute < queue[j].minute })

	var res Result
	eng.Reset(cfg.Seed)
	next := 0
	for step := 0; step < maxReplaySteps; step++ {
		for next < len(queue) && queue[next].minute <= eng.Clock() {
			q := queue[next]
			if _, err := eng.SubmitRequest(q.pickup, q.dropoff, q.passengers); err != nil {
				// Pending set is full; retry on a later step.
				break
			}
			next++
		}

		_, reward, done, _ := eng.Step(greedyAction(eng, cfg))
		res.TotalReward += reward
		res.Steps++
		if done {
			break
		}
	}

	stats := eng.Stats()
	res.Completed = stats.Completed
	res.Cancelled = stats.Cancelled
	res.CompletionRate = stats.CompletionRate
	return res, nil
}

// greedyAction assigns the oldest pending request to the nearest vehicle
// with room, or waits when no assignment is feasible.
func greedyAction(eng *sim.Engine, cfg sim.Config) int {
	pending := eng.PendingRequests()
	if len(pending) == 0 {
		return cfg.WaitAction()
	}
	vehicles := eng.Vehicles()
	for slot, req := range pending {
		best := -1
		bestDist := 0.0
		for _, v := range vehicles {
			if !v.CanCarry(req.Passengers) {
				continue
			}
			d := geo.Distance(v.Pos, req.Pickup)
			if best == -1 || d < bestDist {
				best = v.ID
				bestDist = d
			}
		}
		if best >= 0 {
			return best*cfg.MaxPending + slot
		}
	}
	return cfg.WaitAction()
}

// Verify checks the outcome against the scenario's expected bounds.
func Verify(sc *Scenario, res Result) error {
	if res.Completed < sc.Expected.MinCompleted {
		return fmt.Errorf("scenario %s: completed %d, want at least %d",
			sc.Name, res.Completed, sc.Expected.MinCompleted)
	}
	if res.Cancelled > sc.Expected.MaxCancelled {
		return fmt.Errorf("scenario %s: cancelled %d, want at most %d",
			sc.Name, res.Cancelled, sc.Expected.MaxCancelled)
	}
	return nil
}
