// Package cluster implements the batch dispatch path: grouping a snapshot of
// ride requests by destination region and sequencing each group's stops with
// a tabular action-value optimizer. It operates outside the stepped
// simulation and shares only the distance and vehicle primitives with it.
package cluster

import (
	"sort"

	"github.com/lastmile-cy/microtransit/core/model"
)

// Request is the batch-path view of one ride request. Ids are opaque strings
// because batch requests may originate outside the simulation.
type Request struct {
	ID          string
	Origin      model.Location
	Destination model.Location
	Passengers  int
	Timestamp   float64 // minutes
}

// FleetVehicle is the batch-path view of one minibus.
type FleetVehicle struct {
	ID         string
	Capacity   int
	Location   model.Location
	Route      []model.Location
	Passengers int
}

// Clusterer groups requests by destination region and time proximity.
type Clusterer struct {
	maxSize int
	window  float64
}

// NewClusterer builds a clusterer from the configuration.
func NewClusterer(cfg Config) *Clusterer {
	cfg.SetDefaults()
	return &Clusterer{maxSize: cfg.MaxClusterSize, window: cfg.TimeWindowMinutes}
}

// regionKey groups by destination region, falling back to the category name
// for locations without one.
func regionKey(r Request) string {
	if r.Destination.Region != "" {
		return r.Destination.Region
	}
	return r.Destination.Category.String()
}

// Cluster groups the snapshot. Within each region requests are ordered by
// arrival time and packed greedily: a request that would push the cluster
// past the passenger bound or the time window starts a new cluster. Arrival
// order is preserved inside clusters.
func (c *Clusterer) Cluster(requests []Request) [][]Request {
	groups := make(map[string][]Request)
	for _, r := range requests {
		key := regionKey(r)
		groups[key] = append(groups[key], r)
	}

	regions := make([]string, 0, len(groups))
	for key := range groups {
		regions = append(regions, key)
	}
	sort.Strings(regions) // deterministic output order

	var clusters [][]Request
	for _, region := range regions {
		group := groups[region]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Timestamp < group[j].Timestamp
		})

		var current []Request
		passengers := 0
		start := 0.0
		for _, r := range group {
			fits := passengers+r.Passengers <= c.maxSize &&
				(len(current) == 0 || r.Timestamp-start <= c.window)
			if fits {
				if len(current) == 0 {
					start = r.Timestamp
				}
				current = append(current, r)
				passengers += r.Passengers
				continue
			}
			if len(current) > 0 {
				clusters = append(clusters, current)
			}
			current = []Request{r}
			passengers = r.Passengers
			start = r.Timestamp
		}
		if len(current) > 0 {
			clusters = append(clusters, current)
		}
	}
	return clusters
}
