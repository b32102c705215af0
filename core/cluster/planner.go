package cluster

import (
	"github.com/lastmile-cy/microtransit/core/logger"
)

// Planner is the batch pipeline: cluster a request snapshot, hand each
// cluster to a free vehicle and optimize its route. It is stateless with
// respect to the stepped simulation; only the optimizer's value table
// persists between calls.
type Planner struct {
	clusterer *Clusterer
	optimizer *RouteOptimizer
	log       logger.Logger
}

// NewPlanner builds a planner from the configuration.
func NewPlanner(cfg Config, log logger.Logger) (*Planner, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop{}
	}
	return &Planner{
		clusterer: NewClusterer(cfg),
		optimizer: NewRouteOptimizer(cfg),
		log:       log,
	}, nil
}

// Plan clusters the snapshot and assigns clusters to vehicles with empty
// routes, in order. Clusters beyond the free fleet are left unserved.
// The vehicles slice is updated in place with the planned routes and loads.
func (p *Planner) Plan(vehicles []FleetVehicle, requests []Request) []RouteAssignment {
	clusters := p.clusterer.Cluster(requests)

	free := make([]*FleetVehicle, 0, len(vehicles))
	for i := range vehicles {
		if len(vehicles[i].Route) == 0 {
			free = append(free, &vehicles[i])
		}
	}

	assignments := make([]RouteAssignment, 0, len(clusters))
	for i, cl := range clusters {
		if i >= len(free) {
			p.log.Warnf("no free vehicle for %d remaining clusters", len(clusters)-i)
			break
		}
		v := free[i]
		asn := p.optimizer.OptimizeRoute(*v, cl)
		v.Route = asn.Route
		passengers := 0
		for _, r := range cl {
			passengers += r.Passengers
		}
		v.Passengers = passengers

		p.log.Debugw("route planned", map[string]any{
			"vehicle":    v.ID,
			"requests":   len(cl),
			"distance":   asn.TotalDistanceKm,
			"co2_saved":  asn.CO2SavedKg,
			"efficiency": asn.LoadEfficiency,
		})
		assignments = append(assignments, asn)
	}
	return assignments
}
