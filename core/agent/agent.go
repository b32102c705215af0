// Package agent implements the dispatch policy learner: a small value
// network trained from prioritized replay with double-estimator targets
// and a slowly tracking target copy.
package agent

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/lastmile-cy/microtransit/core/logger"
)

const huberDelta = 1.0

// Agent selects dispatch actions and learns action values from recorded
// transitions.
type Agent struct {
	cfg        Config
	stateSize  int
	actionSize int

	online *network
	target *network
	buffer *replayBuffer
	rng    *rand.Rand
	log    logger.Logger

	epsilon float64
	steps   int
}

// Option customizes an Agent.
type Option func(*Agent)

// WithLogger attaches a logger for training diagnostics.
func WithLogger(l logger.Logger) Option {
	return func(a *Agent) { a.log = l }
}

// New builds an agent for the given observation and action sizes.
func New(stateSize, actionSize int, cfg Config, opts ...Option) (*Agent, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if stateSize <= 0 || actionSize <= 0 {
		return nil, fmt.Errorf("agent: state and action sizes must be positive")
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	a := &Agent{
		cfg:        cfg,
		stateSize:  stateSize,
		actionSize: actionSize,
		rng:        rng,
		log:        &logger.Nop{},
		epsilon:    cfg.EpsilonStart,
	}
	a.online = newNetwork(stateSize, cfg.Hidden, actionSize, rng)
	a.target = a.online.clone()
	a.buffer = newReplayBuffer(cfg.BufferSize, cfg.PriorityAlpha, rng)

	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// SelectAction returns an action for the observation. With explore set,
// it follows the epsilon-greedy schedule; otherwise it is purely greedy.
func (a *Agent) SelectAction(obs []float64, explore bool) int {
	if explore && a.rng.Float64() < a.epsilon {
		return a.rng.Intn(a.actionSize)
	}
	q := a.online.forward(obs)
	best := 0
	for i := 1; i < len(q); i++ {
		if q[i] > q[best] {
			best = i
		}
	}
	return best
}

// Record stores one transition for later replay.
func (a *Agent) Record(obs []float64, action int, reward float64, next []float64, done bool) {
	s := make([]float64, len(obs))
	copy(s, obs)
	ns := make([]float64, len(next))
	copy(ns, next)
	a.buffer.push(transition{state: s, action: action, reward: reward, next: ns, done: done})
}

// TrainStep runs one minibatch update. It reports the weighted Huber
// loss and whether an update actually happened; the buffer must hold at
// least one batch first.
func (a *Agent) TrainStep() (float64, bool) {
	if a.buffer.len() < a.cfg.BatchSize {
		return 0, false
	}
	if a.steps == 0 {
		a.log.Debugf("replay buffer warmed up with %d transitions, training begins", a.buffer.len())
	}
	batch, idx, weights := a.buffer.sample(a.cfg.BatchSize, a.cfg.PriorityBeta)
	n := len(batch)

	x := mat.NewDense(n, a.stateSize, nil)
	xn := mat.NewDense(n, a.stateSize, nil)
	for i, tr := range batch {
		x.SetRow(i, tr.state)
		xn.SetRow(i, tr.next)
	}

	// Double estimator: the online network picks the next action, the
	// target network prices it.
	nextOnline := a.online.forwardBatch(xn).q
	nextTarget := a.target.forwardBatch(xn).q
	targets := make([]float64, n)
	for i, tr := range batch {
		if tr.done {
			targets[i] = tr.reward
			continue
		}
		row := nextOnline.RawRowView(i)
		best := 0
		for j := 1; j < len(row); j++ {
			if row[j] > row[best] {
				best = j
			}
		}
		targets[i] = tr.reward + a.cfg.Gamma*nextTarget.At(i, best)
	}

	acts := a.online.forwardBatch(x)
	dQ := mat.NewDense(n, a.actionSize, nil)
	tdErr := make([]float64, n)
	var loss float64
	for i, tr := range batch {
		delta := acts.q.At(i, tr.action) - targets[i]
		tdErr[i] = delta
		loss += weights[i] * huberLoss(delta)
		dQ.Set(i, tr.action, weights[i]*huberGrad(delta)/float64(n))
	}
	loss /= float64(n)

	grads := a.online.backward(acts, dQ)
	grads.clipNorm(a.cfg.GradClip)
	a.online.apply(grads, a.cfg.LearningRate)

	a.buffer.updatePriorities(idx, tdErr)
	a.target.blendFrom(a.online, a.cfg.Tau)

	if a.epsilon > a.cfg.EpsilonEnd {
		a.epsilon = math.Max(a.cfg.EpsilonEnd, a.epsilon*a.cfg.EpsilonDecay)
	}
	a.steps++
	return loss, true
}

func huberLoss(delta float64) float64 {
	ad := math.Abs(delta)
	if ad <= huberDelta {
		return 0.5 * delta * delta
	}
	return huberDelta * (ad - 0.5*huberDelta)
}

func huberGrad(delta float64) float64 {
	if delta > huberDelta {
		return huberDelta
	}
	if delta < -huberDelta {
		return -huberDelta
	}
	return delta
}

// Epsilon reports the current exploration rate.
func (a *Agent) Epsilon() float64 { return a.epsilon }

// BufferLen reports how many transitions are stored.
func (a *Agent) BufferLen() int { return a.buffer.len() }

// TrainingSteps reports how many minibatch updates ran.
func (a *Agent) TrainingSteps() int { return a.steps }

// Values exposes the online network's action values for an observation.
func (a *Agent) Values(obs []float64) []float64 {
	return a.online.forward(obs)
}
