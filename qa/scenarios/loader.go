// Package scenarios loads and replays demand traces against the
// dispatch engine, for regression checks on fleet behavior.
package scenarios

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lastmile-cy/microtransit/core/geo"
	"github.com/lastmile-cy/microtransit/core/model"
	"github.com/lastmile-cy/microtransit/core/sim"
)

// PointDef names a catalogue location or gives raw coordinates.
type PointDef struct {
	Location string  `yaml:"location,omitempty"`
	Lat      float64 `yaml:"lat,omitempty"`
	Lon      float64 `yaml:"lon,omitempty"`
}

// Resolve turns the definition into a point, preferring the named
// catalogue entry when set.
func (p PointDef) Resolve(cat model.Catalog) (geo.Point, error) {
	if p.Location != "" {
		loc, ok := cat.Lookup(p.Location)
		if !ok {
			return geo.Point{}, fmt.Errorf("unknown location %q", p.Location)
		}
		return loc.Pos, nil
	}
	if p.Lat == 0 && p.Lon == 0 {
		return geo.Point{}, fmt.Errorf("point needs a location name or coordinates")
	}
	return geo.Point{Lat: p.Lat, Lon: p.Lon}, nil
}

// FleetDef configures the engine a trace runs against. Background
// demand is muted so only the trace's requests drive the outcome.
type FleetDef struct {
	Vehicles       int     `yaml:"vehicles"`
	Capacity       int     `yaml:"capacity"`
	MaxPending     int     `yaml:"max_pending"`
	MaxWaitMinutes float64 `yaml:"max_wait_minutes"`
	HorizonHours   float64 `yaml:"horizon_hours"`
	SpeedKmh       float64 `yaml:"speed_kmh"`
	Seed           int64   `yaml:"seed"`
}

// ToConfig builds the engine configuration for the trace.
func (d FleetDef) ToConfig() sim.Config {
	cfg := sim.Config{
		Vehicles:       d.Vehicles,
		Capacity:       d.Capacity,
		MaxPending:     d.MaxPending,
		MaxWaitMinutes: d.MaxWaitMinutes,
		HorizonHours:   d.HorizonHours,
		SpeedKmh:       d.SpeedKmh,
		Seed:           d.Seed,
	}
	cfg.SetDefaults()
	cfg.DemandRate = 0.001
	return cfg
}

// RequestDef is one timed ride request in the trace.
type RequestDef struct {
	Minute     float64  `yaml:"minute"`
	Pickup     PointDef `yaml:"pickup"`
	Dropoff    PointDef `yaml:"dropoff"`
	Passengers int      `yaml:"passengers"`
}

// Expected bounds the outcome of a replay.
type Expected struct {
	MinCompleted int `yaml:"min_completed"`
	MaxCancelled int `yaml:"max_cancelled"`
}

// Scenario is a full demand trace with the fleet it runs against.
type Scenario struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description,omitempty"`
	Fleet       FleetDef     `yaml:"fleet"`
	Requests    []RequestDef `yaml:"requests"`
	Expected    Expected     `yaml:"expected"`
}

// Load reads a scenario from a yaml file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if sc.Name == "" {
		return nil, fmt.Errorf("scenario %s: name is required", path)
	}
	if len(sc.Requests) == 0 {
		return nil, fmt.Errorf("scenario %s: at least one request is required", sc.Name)
	}
	return &sc, nil
}
