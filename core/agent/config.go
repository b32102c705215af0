package agent

import "fmt"

// Config holds the learner hyperparameters.
type Config struct {
	// Hidden is the width of the first hidden layer; the second uses half.
	Hidden int `json:"hidden"`
	// LearningRate scales the gradient step.
	LearningRate float64 `json:"learning_rate"`
	// Gamma discounts bootstrapped next-state values.
	Gamma float64 `json:"gamma"`
	// Epsilon schedule for exploration.
	EpsilonStart float64 `json:"epsilon_start"`
	EpsilonEnd   float64 `json:"epsilon_end"`
	EpsilonDecay float64 `json:"epsilon_decay"`
	// BufferSize caps the experience store; BatchSize is the minibatch.
	BufferSize int `json:"buffer_size"`
	BatchSize  int `json:"batch_size"`
	// Tau is the soft-update blend fraction for the target network.
	Tau float64 `json:"tau"`
	// PriorityAlpha exponentiates stored priorities when sampling;
	// PriorityBeta powers the importance-sampling correction.
	PriorityAlpha float64 `json:"priority_alpha"`
	PriorityBeta  float64 `json:"priority_beta"`
	// GradClip caps the global gradient norm.
	GradClip float64 `json:"grad_clip"`
	// Seed initializes weight initialization and exploration.
	Seed int64 `json:"seed"`
}

// SetDefaults applies the standard training hyperparameters.
func (c *Config) SetDefaults() {
	if c.Hidden == 0 {
		c.Hidden = 256
	}
	if c.LearningRate == 0 {
		c.LearningRate = 1e-4
	}
	if c.Gamma == 0 {
		c.Gamma = 0.99
	}
	if c.EpsilonStart == 0 {
		c.EpsilonStart = 1.0
	}
	if c.EpsilonEnd == 0 {
		c.EpsilonEnd = 0.01
	}
	if c.EpsilonDecay == 0 {
		c.EpsilonDecay = 0.995
	}
	if c.BufferSize == 0 {
		c.BufferSize = 100000
	}
	if c.BatchSize == 0 {
		c.BatchSize = 64
	}
	if c.Tau == 0 {
		c.Tau = 0.005
	}
	if c.PriorityAlpha == 0 {
		c.PriorityAlpha = 0.6
	}
	if c.PriorityBeta == 0 {
		c.PriorityBeta = 0.4
	}
	if c.GradClip == 0 {
		c.GradClip = 1.0
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.Hidden < 2 {
		return fmt.Errorf("agent config: hidden width must be at least 2")
	}
	if c.LearningRate <= 0 {
		return fmt.Errorf("agent config: learning rate must be positive")
	}
	if c.Gamma <= 0 || c.Gamma >= 1 {
		return fmt.Errorf("agent config: gamma must be in (0, 1)")
	}
	if c.EpsilonDecay <= 0 || c.EpsilonDecay > 1 {
		return fmt.Errorf("agent config: epsilon decay must be in (0, 1]")
	}
	if c.BatchSize <= 0 || c.BufferSize < c.BatchSize {
		return fmt.Errorf("agent config: buffer must hold at least one batch")
	}
	if c.Tau <= 0 || c.Tau > 1 {
		return fmt.Errorf("agent config: tau must be in (0, 1]")
	}
	if c.GradClip <= 0 {
		return fmt.Errorf("agent config: grad clip must be positive")
	}
	return nil
}
