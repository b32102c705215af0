// Package metrics defines the sink interface used by the simulation engine to
// record dispatch outcomes, plus Prometheus, no-op and fan-out
// implementations.
package metrics

// Sink receives simulation outcomes. Implementations must be cheap: the
// engine calls them synchronously inside Step.
type Sink interface {
	// RecordAssignment is called when a request is matched to a vehicle.
	RecordAssignment(waitMinutes, pickupKm float64)
	// RecordCompletion is called when a passenger reaches their dropoff.
	RecordCompletion()
	// RecordCancellation is called when a pending request times out.
	RecordCancellation(waitMinutes float64)
	// RecordInvalidAction is called when an out-of-range or
	// capacity-violating action is penalized.
	RecordInvalidAction()
	// RecordStepReward is called with the reward of every step.
	RecordStepReward(reward float64)
	// RecordEpisode is called once per episode when the horizon is reached.
	RecordEpisode(completionRate, episodeReward float64)
}

// NopSink discards all observations.
type NopSink struct{}

func (NopSink) RecordAssignment(float64, float64) {}
func (NopSink) RecordCompletion()                 {}
func (NopSink) RecordCancellation(float64)        {}
func (NopSink) RecordInvalidAction()              {}
func (NopSink) RecordStepReward(float64)          {}
func (NopSink) RecordEpisode(float64, float64)    {}
