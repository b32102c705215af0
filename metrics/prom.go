package metrics

import "github.com/prometheus/client_golang/prometheus"

// PromSink records simulation outcomes in Prometheus metrics.
type PromSink struct {
	assignments    prometheus.Counter
	completions    prometheus.Counter
	cancellations  prometheus.Counter
	invalidActions prometheus.Counter
	waitMinutes    prometheus.Histogram
	pickupKm       prometheus.Histogram
	stepReward     prometheus.Histogram
	completionRate prometheus.Histogram
	episodeReward  prometheus.Histogram
}

func registerCounter(reg prometheus.Registerer, opts prometheus.CounterOpts) (prometheus.Counter, error) {
	c := prometheus.NewCounter(opts)
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(prometheus.Counter), nil
		}
		return nil, err
	}
	return c, nil
}

func registerHistogram(reg prometheus.Registerer, opts prometheus.HistogramOpts) (prometheus.Histogram, error) {
	h := prometheus.NewHistogram(opts)
	if err := reg.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(prometheus.Histogram), nil
		}
		return nil, err
	}
	return h, nil
}

// NewPromSink registers the simulation metrics on the provided registerer.
// If reg is nil, the default registerer is used. Already registered
// collectors are reused.
func NewPromSink(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{}
	var err error
	if s.assignments, err = registerCounter(reg, prometheus.CounterOpts{
		Name: "transit_assignments_total",
		Help: "Total number of request-to-vehicle assignments",
	}); err != nil {
		return nil, err
	}
	if s.completions, err = registerCounter(reg, prometheus.CounterOpts{
		Name: "transit_completed_rides_total",
		Help: "Total number of completed rides",
	}); err != nil {
		return nil, err
	}
	if s.cancellations, err = registerCounter(reg, prometheus.CounterOpts{
		Name: "transit_cancelled_rides_total",
		Help: "Total number of rides cancelled after excessive wait",
	}); err != nil {
		return nil, err
	}
	if s.invalidActions, err = registerCounter(reg, prometheus.CounterOpts{
		Name: "transit_invalid_actions_total",
		Help: "Total number of penalized out-of-range or capacity-violating actions",
	}); err != nil {
		return nil, err
	}
	if s.waitMinutes, err = registerHistogram(reg, prometheus.HistogramOpts{
		Name:    "transit_passenger_wait_minutes",
		Help:    "Passenger wait time at assignment or cancellation",
		Buckets: []float64{1, 2, 5, 10, 15, 20, 30, 45, 60},
	}); err != nil {
		return nil, err
	}
	if s.pickupKm, err = registerHistogram(reg, prometheus.HistogramOpts{
		Name:    "transit_pickup_distance_km",
		Help:    "Distance from vehicle to pickup point at assignment",
		Buckets: []float64{1, 2, 5, 10, 20, 40, 80, 160},
	}); err != nil {
		return nil, err
	}
	if s.stepReward, err = registerHistogram(reg, prometheus.HistogramOpts{
		Name:    "transit_step_reward",
		Help:    "Reward emitted by each simulation step",
		Buckets: []float64{-20, -10, -5, -1, -0.5, 0, 0.5, 1, 5, 10, 20},
	}); err != nil {
		return nil, err
	}
	if s.completionRate, err = registerHistogram(reg, prometheus.HistogramOpts{
		Name:    "transit_episode_completion_rate",
		Help:    "Fraction of terminal requests completed per episode",
		Buckets: prometheus.LinearBuckets(0, 0.1, 11),
	}); err != nil {
		return nil, err
	}
	if s.episodeReward, err = registerHistogram(reg, prometheus.HistogramOpts{
		Name:    "transit_episode_reward",
		Help:    "Cumulative reward per episode",
		Buckets: prometheus.LinearBuckets(-200, 50, 11),
	}); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PromSink) RecordAssignment(waitMinutes, pickupKm float64) {
	s.assignments.Inc()
	s.waitMinutes.Observe(waitMinutes)
	s.pickupKm.Observe(pickupKm)
}

func (s *PromSink) RecordCompletion() { s.completions.Inc() }

func (s *PromSink) RecordCancellation(waitMinutes float64) {
	s.cancellations.Inc()
	s.waitMinutes.Observe(waitMinutes)
}

func (s *PromSink) RecordInvalidAction() { s.invalidActions.Inc() }

func (s *PromSink) RecordStepReward(reward float64) { s.stepReward.Observe(reward) }

func (s *PromSink) RecordEpisode(completionRate, episodeReward float64) {
	s.completionRate.Observe(completionRate)
	s.episodeReward.Observe(episodeReward)
}
