package kpi

import "time"

// Record aggregates completed-trip figures for one vehicle and day.
type Record struct {
	Plate       string    `json:"plate"`
	Date        time.Time `json:"date"`
	Trips       int       `json:"trips"`
	Passengers  int       `json:"passengers"`
	Distance    float64   `json:"distance"`
	WaitSeconds float64   `json:"wait_seconds"`
}

// MeanOccupancy returns the average party size per trip.
func (r Record) MeanOccupancy() float64 {
	if r.Trips == 0 {
		return 0
	}
	return float64(r.Passengers) / float64(r.Trips)
}

// MeanWait returns the average time between request and pickup.
func (r Record) MeanWait() time.Duration {
	if r.Trips == 0 {
		return 0
	}
	return time.Duration(r.WaitSeconds / float64(r.Trips) * float64(time.Second))
}

func (r *Record) merge(o Record) {
	r.Trips += o.Trips
	r.Passengers += o.Passengers
	r.Distance += o.Distance
	r.WaitSeconds += o.WaitSeconds
}
