// Package trainer runs training episodes, coupling the dispatch engine
// with the policy learner.
package trainer

import (
	"context"
	"fmt"

	"github.com/lastmile-cy/microtransit/core/agent"
	"github.com/lastmile-cy/microtransit/core/logger"
	"github.com/lastmile-cy/microtransit/core/sim"
)

// Report summarizes one training run.
type Report struct {
	Steps     int
	Updates   int
	Episodes  int
	AvgLoss   float64
	AvgReward float64
	Epsilon   float64
}

// Trainer drives select/step/record/train cycles against an engine.
type Trainer struct {
	engine *sim.Engine
	agent  *agent.Agent
	log    logger.Logger

	seed int64
}

// Option customizes a Trainer.
type Option func(*Trainer)

// WithLogger attaches a logger for per-episode progress lines.
func WithLogger(l logger.Logger) Option {
	return func(t *Trainer) { t.log = l }
}

// New couples an engine and an agent. The agent's observation and action
// sizes must match the engine's configuration.
func New(engine *sim.Engine, ag *agent.Agent, opts ...Option) (*Trainer, error) {
	if engine == nil || ag == nil {
		return nil, fmt.Errorf("trainer: engine and agent are required")
	}
	t := &Trainer{
		engine: engine,
		agent:  ag,
		log:    &logger.Nop{},
		seed:   engine.Config().Seed,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Run executes steps environment steps, resetting the engine whenever an
// episode terminates. Each completed episode advances the reset seed so
// episodes differ while the whole run stays reproducible. The context
// is checked between steps.
func (t *Trainer) Run(ctx context.Context, steps int) (Report, error) {
	if steps <= 0 {
		return Report{}, fmt.Errorf("trainer: steps must be positive")
	}

	var rep Report
	var lossSum, rewardSum float64
	var episodeReward float64

	obs := t.engine.Reset(t.seed)
	for i := 0; i < steps; i++ {
		if err := ctx.Err(); err != nil {
			return rep, err
		}

		action := t.agent.SelectAction(obs, true)
		next, reward, done, _ := t.engine.Step(action)
		t.agent.Record(obs, action, reward, next, done)

		if loss, ok := t.agent.TrainStep(); ok {
			lossSum += loss
			rep.Updates++
		}

		rewardSum += reward
		episodeReward += reward
		rep.Steps++
		obs = next

		if done {
			rep.Episodes++
			stats := t.engine.Stats()
			t.log.Infof("episode %d done: reward=%.2f completion=%.2f epsilon=%.3f",
				rep.Episodes, episodeReward, stats.CompletionRate, t.agent.Epsilon())
			episodeReward = 0
			t.seed++
			obs = t.engine.Reset(t.seed)
		}
	}

	if rep.Updates > 0 {
		rep.AvgLoss = lossSum / float64(rep.Updates)
	}
	rep.AvgReward = rewardSum / float64(rep.Steps)
	rep.Epsilon = t.agent.Epsilon()
	return rep, nil
}
