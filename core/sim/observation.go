package sim

import "math"

// Observe builds the fixed-length observation vector: per-vehicle features,
// per-slot pending request features (zero-padded beyond the live count), and
// the trailing time block. Calling Observe twice without a Step in between
// returns identical vectors.
func (e *Engine) Observe() []float64 {
	obs := make([]float64, 0, e.cfg.StateSize())

	for i := range e.vehicles {
		v := &e.vehicles[i]
		cap := float64(v.Capacity)
		obs = append(obs,
			v.Pos.Lat,
			v.Pos.Lon,
			float64(v.Occupied)/cap,
			float64(v.FreeSeats())/cap,
		)
	}

	for slot := 0; slot < e.cfg.MaxPending; slot++ {
		if slot < len(e.pending) {
			req := e.live[e.pending[slot]]
			obs = append(obs,
				req.Pickup.Lat,
				req.Pickup.Lon,
				req.Dropoff.Lat,
				req.Dropoff.Lon,
				req.WaitTime(e.clock)/60, // normalized to hours
			)
		} else {
			obs = append(obs, 0, 0, 0, 0, 0)
		}
	}

	hour := e.currentHour()
	obs = append(obs,
		math.Sin(2*math.Pi*hour/24),
		math.Cos(2*math.Pi*hour/24),
		(e.clock/60)/e.cfg.HorizonHours,
		e.demandMultiplier()/2,
	)
	return obs
}
