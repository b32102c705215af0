// Package export serializes optimized route plans for downstream tools.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/lastmile-cy/microtransit/core/cluster"
)

// WriteJSON writes the route plan to w in JSON format.
func WriteJSON(w io.Writer, assignments []cluster.RouteAssignment) error {
	enc := json.NewEncoder(w)
	return enc.Encode(assignments)
}

// WriteCSV writes the route plan to w with one row per assignment. The
// stops column joins the ordered destination ids with semicolons.
func WriteCSV(w io.Writer, assignments []cluster.RouteAssignment) error {
	cw := csv.NewWriter(w)
	header := []string{"assignment_id", "vehicle_id", "requests", "stops", "distance_km", "duration_min", "co2_saved_kg", "load_efficiency"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, a := range assignments {
		stops := make([]string, len(a.Route))
		for i, loc := range a.Route {
			stops[i] = loc.ID
		}
		rec := []string{
			a.ID,
			a.VehicleID,
			strconv.Itoa(len(a.Requests)),
			strings.Join(stops, ";"),
			strconv.FormatFloat(a.TotalDistanceKm, 'f', -1, 64),
			strconv.FormatFloat(a.EstimatedMinutes, 'f', -1, 64),
			strconv.FormatFloat(a.CO2SavedKg, 'f', -1, 64),
			strconv.FormatFloat(a.LoadEfficiency, 'f', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
