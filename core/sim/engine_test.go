package sim

import (
	"math"
	"math/rand"
	"testing"

	"github.com/lastmile-cy/microtransit/core/geo"
	"github.com/lastmile-cy/microtransit/core/model"
)

func newTestEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	e, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

// quietEngine returns an engine whose arrival process will not fire, so tests
// control the pending set through SubmitRequest.
func quietEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	e := newTestEngine(t, cfg)
	e.Reset(42)
	e.nextArrival = math.Inf(1)
	return e
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cases := []Config{
		{Vehicles: -1},
		{Capacity: -1},
		{MaxPending: -3},
		{HorizonHours: -1},
		{DemandRate: -2},
		{MaxWaitMinutes: -10},
	}
	for _, cfg := range cases {
		if _, err := New(cfg); err == nil {
			t.Errorf("config %+v should be rejected", cfg)
		}
	}
}

func TestReset_Deterministic(t *testing.T) {
	cfg := Config{}
	a := newTestEngine(t, cfg)
	b := newTestEngine(t, cfg)

	obsA := a.Reset(42)
	obsB := b.Reset(42)
	if len(obsA) != len(obsB) {
		t.Fatalf("observation lengths differ: %d vs %d", len(obsA), len(obsB))
	}
	for i := range obsA {
		if obsA[i] != obsB[i] {
			t.Fatalf("observation differs at %d: %v vs %v", i, obsA[i], obsB[i])
		}
	}
}

func TestStep_DeterministicRun(t *testing.T) {
	cfg := Config{}
	cfg.SetDefaults()
	a := newTestEngine(t, cfg)
	b := newTestEngine(t, cfg)
	a.Reset(42)
	b.Reset(42)

	script := rand.New(rand.NewSource(7))
	for i := 0; i < 300; i++ {
		action := script.Intn(cfg.ActionSize())
		obsA, rewardA, doneA, _ := a.Step(action)
		obsB, rewardB, doneB, _ := b.Step(action)

		if rewardA != rewardB || doneA != doneB {
			t.Fatalf("step %d diverged: reward %v/%v done %v/%v", i, rewardA, rewardB, doneA, doneB)
		}
		for j := range obsA {
			if obsA[j] != obsB[j] {
				t.Fatalf("step %d observation diverged at %d", i, j)
			}
		}
		if doneA {
			break
		}
	}
}

func TestObserve_Idempotent(t *testing.T) {
	e := newTestEngine(t, Config{})
	e.Reset(42)
	e.Step(e.cfg.WaitAction())

	first := e.Observe()
	second := e.Observe()
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("observe not idempotent at index %d: %v vs %v", i, first[i], second[i])
		}
	}
	if len(first) != e.cfg.StateSize() {
		t.Errorf("observation length = %d, want %d", len(first), e.cfg.StateSize())
	}
}

func TestStep_AssignScenario(t *testing.T) {
	e := quietEngine(t, Config{Vehicles: 1, Capacity: 4})

	pickup := geo.Point{Lat: 34.9229, Lon: 33.6232}  // Larnaca
	dropoff := geo.Point{Lat: 35.1856, Lon: 33.3823} // Nicosia
	id, err := e.SubmitRequest(pickup, dropoff, 2)
	if err != nil {
		t.Fatalf("SubmitRequest: %v", err)
	}

	vehiclePos := e.vehicles[0].Pos
	wantDist := geo.Distance(vehiclePos, pickup)

	_, reward, done, diag := e.Step(0) // assign vehicle 0, slot 0

	if done {
		t.Fatal("episode should not end on the first assignment")
	}
	req := e.live[id]
	if req.Status != model.StatusAssigned {
		t.Fatalf("status = %s, want assigned", req.Status)
	}
	if e.vehicles[0].Occupied != 2 {
		t.Errorf("occupied = %d, want 2", e.vehicles[0].Occupied)
	}
	if req.VehicleID != 0 {
		t.Errorf("vehicle reference = %d, want 0", req.VehicleID)
	}
	// Request was pending for zero minutes: reward = 1 - 0 - dist/20.
	want := 1.0 - wantDist/20.0
	if math.Abs(reward-want) > 1e-9 {
		t.Errorf("reward = %f, want %f", reward, want)
	}
	if diag.Pending != 0 {
		t.Errorf("pending = %d after assignment", diag.Pending)
	}
	if len(e.vehicles[0].Route) != 2 {
		t.Errorf("route log length = %d, want 2", len(e.vehicles[0].Route))
	}
}

func TestStep_CapacityViolationIsPenalizedNoOp(t *testing.T) {
	e := quietEngine(t, Config{Vehicles: 1, Capacity: 2})

	_, err := e.SubmitRequest(geo.Point{Lat: 34.9, Lon: 33.6}, geo.Point{Lat: 35.1, Lon: 33.3}, 3)
	if err != nil {
		t.Fatalf("SubmitRequest: %v", err)
	}

	clockBefore := e.clock
	_, reward, _, _ := e.Step(0)

	if reward != -invalidPenalty {
		t.Errorf("reward = %f, want %f", reward, -invalidPenalty)
	}
	if e.vehicles[0].Occupied != 0 {
		t.Errorf("occupancy changed on rejected assignment: %d", e.vehicles[0].Occupied)
	}
	if e.clock != clockBefore+invalidStepMinutes {
		t.Errorf("clock = %f, want %f", e.clock, clockBefore+invalidStepMinutes)
	}
}

func TestStep_OutOfRangeActionsArePenalized(t *testing.T) {
	e := quietEngine(t, Config{})
	for _, action := range []int{-1, e.cfg.ActionSize(), e.cfg.ActionSize() + 100} {
		_, reward, _, _ := e.Step(action)
		if reward != -invalidPenalty {
			t.Errorf("action %d: reward = %f, want %f", action, reward, -invalidPenalty)
		}
	}
}

func TestStep_EmptySlotIsPenalized(t *testing.T) {
	e := quietEngine(t, Config{})
	// No pending requests: any assignment action targets an empty slot.
	_, reward, _, _ := e.Step(0)
	if reward != -invalidPenalty {
		t.Errorf("reward = %f, want %f", reward, -invalidPenalty)
	}
}

func TestStep_CancellationCrossesThresholdExactly(t *testing.T) {
	e := quietEngine(t, Config{MaxWaitMinutes: 30})

	if _, err := e.SubmitRequest(geo.Point{Lat: 34.9, Lon: 33.6}, geo.Point{Lat: 35.1, Lon: 33.3}, 1); err != nil {
		t.Fatalf("SubmitRequest: %v", err)
	}

	wait := e.cfg.WaitAction()
	for i := 0; i < 30; i++ {
		_, reward, _, _ := e.Step(wait)
		if reward != 0 {
			t.Fatalf("step %d: request cancelled early, reward %f", i+1, reward)
		}
	}
	// Wait is now exactly 30: not yet over the threshold. One more minute
	// crosses it.
	_, reward, _, diag := e.Step(wait)
	if reward != -cancellationFine {
		t.Errorf("reward = %f, want %f", reward, -cancellationFine)
	}
	if diag.Cancelled != 1 || diag.Pending != 0 {
		t.Errorf("diag = %+v, want one cancelled and none pending", diag)
	}
}

func TestStep_CompletionReleasesVehicle(t *testing.T) {
	e := quietEngine(t, Config{Vehicles: 1})

	pickup := geo.Point{Lat: 34.9229, Lon: 33.6232}
	dropoff := geo.Point{Lat: 35.1856, Lon: 33.3823}
	id, err := e.SubmitRequest(pickup, dropoff, 2)
	if err != nil {
		t.Fatalf("SubmitRequest: %v", err)
	}

	e.Step(0) // assign

	dropoffTravel := geo.TravelTime(pickup, dropoff, e.cfg.SpeedKmh)
	steps := int(dropoffTravel) + 1
	var lastReward float64
	for i := 0; i < steps; i++ {
		_, lastReward, _, _ = e.Step(e.cfg.WaitAction())
		if lastReward != 0 {
			break
		}
	}

	if lastReward != completionBonus {
		t.Fatalf("completion reward = %f, want %f", lastReward, completionBonus)
	}
	if e.vehicles[0].Occupied != 0 {
		t.Errorf("occupied = %d after completion", e.vehicles[0].Occupied)
	}
	if e.vehicles[0].Pos != dropoff {
		t.Errorf("vehicle should relocate to dropoff, got %+v", e.vehicles[0].Pos)
	}
	if len(e.completed) != 1 || e.completed[0].ID != id {
		t.Errorf("completed list = %+v", e.completed)
	}
	if _, live := e.live[id]; live {
		t.Error("completed request must leave the live set")
	}
}

func TestStep_TerminalBonus(t *testing.T) {
	e := quietEngine(t, Config{HorizonHours: 1})

	// Fabricate a finished episode history: 8 completed, 2 cancelled.
	for i := 0; i < 8; i++ {
		e.completed = append(e.completed, &model.RideRequest{ID: int64(i)})
	}
	for i := 8; i < 10; i++ {
		e.cancelled = append(e.cancelled, &model.RideRequest{ID: int64(i)})
	}
	e.clock = e.cfg.HorizonHours*60 - 0.5

	_, reward, done, _ := e.Step(e.cfg.WaitAction())
	if !done {
		t.Fatal("episode should end at the horizon")
	}
	want := 0.8 * terminalBonusScale
	if math.Abs(reward-want) > 1e-9 {
		t.Errorf("terminal reward = %f, want %f", reward, want)
	}
	if rate := e.Stats().CompletionRate; math.Abs(rate-0.8) > 1e-9 {
		t.Errorf("completion rate = %f, want 0.8", rate)
	}
}

func TestStep_OccupancyInvariantHolds(t *testing.T) {
	cfg := Config{Vehicles: 2, Capacity: 4, MaxPending: 5, HorizonHours: 2}
	e := newTestEngine(t, cfg)
	e.Reset(9)

	script := rand.New(rand.NewSource(3))
	for i := 0; i < 500; i++ {
		_, _, done, _ := e.Step(script.Intn(e.cfg.ActionSize()))
		for _, v := range e.vehicles {
			if v.Occupied < 0 || v.Occupied > v.Capacity {
				t.Fatalf("step %d: vehicle %d occupancy %d outside [0, %d]", i, v.ID, v.Occupied, v.Capacity)
			}
		}
		if done {
			break
		}
	}
}

func TestSubmitRequest_PendingCeiling(t *testing.T) {
	e := quietEngine(t, Config{MaxPending: 2})

	p := geo.Point{Lat: 34.9, Lon: 33.6}
	d := geo.Point{Lat: 35.1, Lon: 33.3}
	if _, err := e.SubmitRequest(p, d, 1); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if _, err := e.SubmitRequest(p, d, 1); err != nil {
		t.Fatalf("second submit: %v", err)
	}
	if _, err := e.SubmitRequest(p, d, 1); err != ErrPendingLimit {
		t.Errorf("expected ErrPendingLimit, got %v", err)
	}
}

func TestStats_Empty(t *testing.T) {
	e := quietEngine(t, Config{})
	s := e.Stats()
	if s.Completed != 0 || s.Cancelled != 0 || s.Pending != 0 {
		t.Errorf("fresh stats not zero: %+v", s)
	}
	if s.CompletionRate != 1.0 {
		t.Errorf("completion rate with no terminal requests = %f, want 1", s.CompletionRate)
	}
}

func TestConfig_ActionCodec(t *testing.T) {
	cfg := Config{}
	cfg.SetDefaults()

	if cfg.ActionSize() != cfg.Vehicles*cfg.MaxPending+1 {
		t.Fatalf("action size = %d", cfg.ActionSize())
	}
	v, s, wait, ok := cfg.DecodeAction(cfg.WaitAction())
	if !wait || !ok || v != 0 || s != 0 {
		t.Errorf("wait sentinel decoded as (%d, %d, %v, %v)", v, s, wait, ok)
	}
	v, s, wait, ok = cfg.DecodeAction(cfg.MaxPending*2 + 3)
	if wait || !ok || v != 2 || s != 3 {
		t.Errorf("decoded (%d, %d, %v, %v), want (2, 3)", v, s, wait, ok)
	}
	if _, _, _, ok := cfg.DecodeAction(-1); ok {
		t.Error("negative actions must be rejected")
	}
	if _, _, _, ok := cfg.DecodeAction(cfg.ActionSize()); ok {
		t.Error("actions past the sentinel must be rejected")
	}
}
