package model

import "github.com/lastmile-cy/microtransit/core/geo"

// Category classifies a catalogue location. It drives demand weighting when
// synthesizing ride requests.
type Category int

const (
	CategoryCity Category = iota
	CategoryVillage
	CategoryBeach
	CategoryLandmark
	CategoryTourist
	CategoryArchaeological
)

// String returns the lowercase name used in logs and region fallbacks.
func (c Category) String() string {
	switch c {
	case CategoryCity:
		return "city"
	case CategoryVillage:
		return "village"
	case CategoryBeach:
		return "beach"
	case CategoryLandmark:
		return "landmark"
	case CategoryTourist:
		return "tourist"
	case CategoryArchaeological:
		return "archaeological"
	default:
		return "unknown"
	}
}

// RequestWeight returns the relative demand weight of the category. Tourist
// and beach spots generate the bulk of the demand.
func (c Category) RequestWeight() float64 {
	switch c {
	case CategoryTourist:
		return 3.0
	case CategoryBeach:
		return 2.5
	case CategoryVillage:
		return 2.0
	case CategoryArchaeological:
		return 1.5
	default:
		return 1.0
	}
}

// Location is a fixed, named point on the island. Locations are immutable
// and drawn from a static catalogue.
type Location struct {
	ID       string
	Name     string
	Pos      geo.Point
	Category Category
	Region   string // optional grouping, e.g. "Troodos"
}

// Catalog is an immutable set of locations. Construct it once and share it;
// never mutate after construction.
type Catalog struct {
	locations []Location
	byID      map[string]Location
	depots    []Location
}

// NewCatalog builds a catalogue from the given locations. The depot ids name
// the vehicle starting hubs and must exist in the location set.
func NewCatalog(locations []Location, depotIDs []string) Catalog {
	byID := make(map[string]Location, len(locations))
	for _, l := range locations {
		byID[l.ID] = l
	}
	depots := make([]Location, 0, len(depotIDs))
	for _, id := range depotIDs {
		if l, ok := byID[id]; ok {
			depots = append(depots, l)
		}
	}
	cp := make([]Location, len(locations))
	copy(cp, locations)
	return Catalog{locations: cp, byID: byID, depots: depots}
}

// Locations returns the catalogue entries in declaration order.
func (c Catalog) Locations() []Location {
	cp := make([]Location, len(c.locations))
	copy(cp, c.locations)
	return cp
}

// Lookup returns the location with the given id.
func (c Catalog) Lookup(id string) (Location, bool) {
	l, ok := c.byID[id]
	return l, ok
}

// Depots returns the vehicle starting hubs.
func (c Catalog) Depots() []Location {
	cp := make([]Location, len(c.depots))
	copy(cp, c.depots)
	return cp
}

// Len returns the number of catalogue entries.
func (c Catalog) Len() int { return len(c.locations) }

// DefaultCatalog returns the built-in Cyprus location set: Troodos villages,
// coastal tourist areas, archaeological sites and the major cities.
func DefaultCatalog() Catalog {
	locations := []Location{
		// Troodos mountain villages
		{ID: "platres", Name: "Platres", Pos: geo.Point{Lat: 34.8894, Lon: 32.8636}, Category: CategoryVillage, Region: "Troodos"},
		{ID: "kakopetria", Name: "Kakopetria", Pos: geo.Point{Lat: 34.9833, Lon: 32.9000}, Category: CategoryVillage, Region: "Troodos"},
		{ID: "pedoulas", Name: "Pedoulas", Pos: geo.Point{Lat: 34.9667, Lon: 32.8333}, Category: CategoryVillage, Region: "Troodos"},
		{ID: "prodromos", Name: "Prodromos", Pos: geo.Point{Lat: 34.9500, Lon: 32.8333}, Category: CategoryVillage, Region: "Troodos"},
		{ID: "agros", Name: "Agros", Pos: geo.Point{Lat: 34.9167, Lon: 33.0167}, Category: CategoryVillage, Region: "Troodos"},
		{ID: "galata", Name: "Galata", Pos: geo.Point{Lat: 34.9833, Lon: 32.9000}, Category: CategoryVillage, Region: "Troodos"},
		{ID: "olympus", Name: "Mount Olympus", Pos: geo.Point{Lat: 34.9417, Lon: 32.8667}, Category: CategoryLandmark, Region: "Troodos"},

		// Coastal tourist areas
		{ID: "ayia_napa", Name: "Ayia Napa", Pos: geo.Point{Lat: 34.9833, Lon: 34.0000}, Category: CategoryTourist},
		{ID: "protaras", Name: "Protaras", Pos: geo.Point{Lat: 35.0167, Lon: 34.0500}, Category: CategoryTourist},
		{ID: "coral_bay", Name: "Coral Bay", Pos: geo.Point{Lat: 34.8500, Lon: 32.3667}, Category: CategoryTourist},
		{ID: "fig_tree_bay", Name: "Fig Tree Bay", Pos: geo.Point{Lat: 35.0139, Lon: 34.0556}, Category: CategoryBeach},
		{ID: "nissi_beach", Name: "Nissi Beach", Pos: geo.Point{Lat: 34.9917, Lon: 33.9750}, Category: CategoryBeach},

		// Archaeological sites
		{ID: "kourion", Name: "Kourion", Pos: geo.Point{Lat: 34.6667, Lon: 32.8833}, Category: CategoryArchaeological, Region: "Limassol"},
		{ID: "paphos_mosaics", Name: "Paphos Mosaics", Pos: geo.Point{Lat: 34.7583, Lon: 32.4083}, Category: CategoryArchaeological, Region: "Paphos"},
		{ID: "tombs_of_kings", Name: "Tombs of Kings", Pos: geo.Point{Lat: 34.7750, Lon: 32.4000}, Category: CategoryArchaeological, Region: "Paphos"},
		{ID: "choirokoitia", Name: "Choirokoitia", Pos: geo.Point{Lat: 34.7972, Lon: 33.3417}, Category: CategoryArchaeological, Region: "Larnaca"},

		// Major cities
		{ID: "nicosia", Name: "Nicosia", Pos: geo.Point{Lat: 35.1856, Lon: 33.3823}, Category: CategoryCity, Region: "Nicosia"},
		{ID: "limassol", Name: "Limassol", Pos: geo.Point{Lat: 34.6841, Lon: 33.0379}, Category: CategoryCity, Region: "Limassol"},
		{ID: "larnaca", Name: "Larnaca", Pos: geo.Point{Lat: 34.9229, Lon: 33.6232}, Category: CategoryCity, Region: "Larnaca"},
		{ID: "paphos", Name: "Paphos", Pos: geo.Point{Lat: 34.7754, Lon: 32.4245}, Category: CategoryCity, Region: "Paphos"},

		// Rural villages
		{ID: "lefkara", Name: "Lefkara", Pos: geo.Point{Lat: 34.8667, Lon: 33.3000}, Category: CategoryVillage, Region: "Larnaca"},
		{ID: "omodos", Name: "Omodos", Pos: geo.Point{Lat: 34.8500, Lon: 32.8000}, Category: CategoryVillage, Region: "Limassol"},
		{ID: "lofou", Name: "Lofou", Pos: geo.Point{Lat: 34.8333, Lon: 32.8167}, Category: CategoryVillage, Region: "Limassol"},
		{ID: "fikardou", Name: "Fikardou", Pos: geo.Point{Lat: 34.9667, Lon: 33.1333}, Category: CategoryVillage, Region: "Nicosia"},
	}
	return NewCatalog(locations, []string{"platres", "limassol", "ayia_napa"})
}
