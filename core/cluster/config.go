package cluster

import "fmt"

// Config holds parameters for request clustering and route optimization.
type Config struct {
	// MaxClusterSize caps the total passenger count of one cluster.
	MaxClusterSize int `json:"max_cluster_size"`
	// TimeWindowMinutes caps the span between the first and last request in
	// a cluster.
	TimeWindowMinutes float64 `json:"time_window_minutes"`
	// LearningRate, Gamma and the epsilon schedule drive the tabular
	// action-value updates of the route optimizer.
	LearningRate float64 `json:"learning_rate"`
	Gamma        float64 `json:"gamma"`
	Epsilon      float64 `json:"epsilon"`
	EpsilonDecay float64 `json:"epsilon_decay"`
	EpsilonMin   float64 `json:"epsilon_min"`
	// AvgSpeedKmh and StopOverheadMinutes feed the duration estimate of an
	// optimized route.
	AvgSpeedKmh         float64 `json:"avg_speed_kmh"`
	StopOverheadMinutes float64 `json:"stop_overhead_minutes"`
	// Seed initializes the optimizer's random generator.
	Seed int64 `json:"seed"`
}

// SetDefaults applies the standard optimization parameters.
func (c *Config) SetDefaults() {
	if c.MaxClusterSize == 0 {
		c.MaxClusterSize = 8
	}
	if c.TimeWindowMinutes == 0 {
		c.TimeWindowMinutes = 30
	}
	if c.LearningRate == 0 {
		c.LearningRate = 0.001
	}
	if c.Gamma == 0 {
		c.Gamma = 0.95
	}
	if c.Epsilon == 0 {
		c.Epsilon = 1.0
	}
	if c.EpsilonDecay == 0 {
		c.EpsilonDecay = 0.995
	}
	if c.EpsilonMin == 0 {
		c.EpsilonMin = 0.01
	}
	if c.AvgSpeedKmh == 0 {
		c.AvgSpeedKmh = 40
	}
	if c.StopOverheadMinutes == 0 {
		c.StopOverheadMinutes = 5
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.MaxClusterSize <= 0 {
		return fmt.Errorf("cluster config: max cluster size must be positive")
	}
	if c.TimeWindowMinutes <= 0 {
		return fmt.Errorf("cluster config: time window must be positive")
	}
	if c.LearningRate <= 0 || c.LearningRate > 1 {
		return fmt.Errorf("cluster config: learning rate must be in (0, 1]")
	}
	if c.Gamma <= 0 || c.Gamma >= 1 {
		return fmt.Errorf("cluster config: gamma must be in (0, 1)")
	}
	if c.Epsilon < 0 || c.Epsilon > 1 {
		return fmt.Errorf("cluster config: epsilon must be in [0, 1]")
	}
	if c.EpsilonDecay <= 0 || c.EpsilonDecay > 1 {
		return fmt.Errorf("cluster config: epsilon decay must be in (0, 1]")
	}
	if c.AvgSpeedKmh <= 0 {
		return fmt.Errorf("cluster config: average speed must be positive")
	}
	return nil
}
