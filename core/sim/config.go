package sim

import "fmt"

// Config holds the simulation parameters for one engine instance.
type Config struct {
	// Vehicles is the fleet size.
	Vehicles int `json:"vehicles"`
	// Capacity is the seat capacity of each vehicle.
	Capacity int `json:"capacity"`
	// MaxPending caps the number of simultaneously pending requests. It also
	// fixes the number of request slots in the observation vector.
	MaxPending int `json:"max_pending"`
	// MaxWaitMinutes is the wait after which a pending request cancels.
	MaxWaitMinutes float64 `json:"max_wait_minutes"`
	// HorizonHours is the episode length.
	HorizonHours float64 `json:"horizon_hours"`
	// DemandRate is the mean number of requests per hour before time-of-day
	// and seasonal multipliers.
	DemandRate float64 `json:"demand_rate"`
	// SpeedKmh is the cruising speed of every vehicle.
	SpeedKmh float64 `json:"speed_kmh"`
	// Seed initializes the engine's random generator. Reset may override it.
	Seed int64 `json:"seed"`
}

// SetDefaults applies the standard fleet parameters.
func (c *Config) SetDefaults() {
	if c.Vehicles == 0 {
		c.Vehicles = 3
	}
	if c.Capacity == 0 {
		c.Capacity = 8
	}
	if c.MaxPending == 0 {
		c.MaxPending = 10
	}
	if c.MaxWaitMinutes == 0 {
		c.MaxWaitMinutes = 30
	}
	if c.HorizonHours == 0 {
		c.HorizonHours = 8
	}
	if c.DemandRate == 0 {
		c.DemandRate = 2
	}
	if c.SpeedKmh == 0 {
		c.SpeedKmh = 40
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.Vehicles <= 0 {
		return fmt.Errorf("sim config: vehicles must be positive, got %d", c.Vehicles)
	}
	if c.Capacity <= 0 {
		return fmt.Errorf("sim config: capacity must be positive, got %d", c.Capacity)
	}
	if c.MaxPending <= 0 {
		return fmt.Errorf("sim config: max pending must be positive, got %d", c.MaxPending)
	}
	if c.MaxWaitMinutes <= 0 {
		return fmt.Errorf("sim config: max wait must be positive, got %f", c.MaxWaitMinutes)
	}
	if c.HorizonHours <= 0 {
		return fmt.Errorf("sim config: horizon must be positive, got %f", c.HorizonHours)
	}
	if c.DemandRate <= 0 {
		return fmt.Errorf("sim config: demand rate must be positive, got %f", c.DemandRate)
	}
	if c.SpeedKmh <= 0 {
		return fmt.Errorf("sim config: speed must be positive, got %f", c.SpeedKmh)
	}
	return nil
}

// Observation vector layout: vehicleFeatures per vehicle, requestFeatures per
// pending slot, then the trailing time block. The layout is part of the
// contract with the policy learner and must stay stable for a configuration.
const (
	vehicleFeatures = 4 // lat, lon, occupancy ratio, free-capacity ratio
	requestFeatures = 5 // pickup lat/lon, dropoff lat/lon, normalized wait
	timeFeatures    = 4 // hour sin/cos, episode progress, demand multiplier
)

// StateSize returns the length of the observation vector.
func (c Config) StateSize() int {
	return c.Vehicles*vehicleFeatures + c.MaxPending*requestFeatures + timeFeatures
}

// ActionSize returns the number of discrete actions, including the trailing
// wait sentinel.
func (c Config) ActionSize() int {
	return c.Vehicles*c.MaxPending + 1
}

// WaitAction returns the index of the wait sentinel.
func (c Config) WaitAction() int {
	return c.Vehicles * c.MaxPending
}

// DecodeAction splits an action index into a (vehicle, pending slot) pair.
// wait is true only for the sentinel. ok is false for indices outside the
// action space; Step treats those as penalized no-ops.
func (c Config) DecodeAction(action int) (vehicle, slot int, wait, ok bool) {
	if action == c.WaitAction() {
		return 0, 0, true, true
	}
	if action < 0 || action > c.WaitAction() {
		return 0, 0, false, false
	}
	return action / c.MaxPending, action % c.MaxPending, false, true
}
