package simulator

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/ridedispatch/core/dispatch"
	"github.com/kilianp07/ridedispatch/core/model"
)

// History is the read side of the dispatcher used for reporting.
type History interface {
	Stats() dispatch.Stats
	ActiveTrips() []model.Trip
	CompletedTrips() []model.Trip
	LostFares() []model.Trip
}

// SourceStats counts the requests issued by one source.
type SourceStats struct {
	Requests  int `json:"requests"`
	Scheduled int `json:"scheduled"`
}

// Report summarises a simulation run.
type Report struct {
	Requests      int                    `json:"requests"`
	Scheduled     int                    `json:"scheduled"`
	Lost          int                    `json:"lost"`
	Completed     int                    `json:"completed"`
	Active        int                    `json:"active"`
	Available     int                    `json:"available"`
	LostFareRate  float64                `json:"lost_fare_rate"`
	MeanDistance  float64                `json:"mean_distance"`
	StdDistance   float64                `json:"std_distance"`
	MeanWait      time.Duration          `json:"mean_wait"`
	MeanGroupSize float64                `json:"mean_group_size"`
	Notifications int                    `json:"notifications"`
	Duplicates    int                    `json:"duplicates"`
	Sources       map[string]SourceStats `json:"sources,omitempty"`
}

// BuildReport computes the summary from the dispatcher history.
func BuildReport(h History) Report {
	st := h.Stats()
	r := Report{
		Requests:     st.Requests(),
		Scheduled:    st.Scheduled(),
		Lost:         st.LostFares,
		Completed:    st.CompletedTrips,
		Active:       st.ActiveTrips,
		Available:    st.Available,
		LostFareRate: st.LostFareRate(),
	}
	served := append(h.CompletedTrips(), h.ActiveTrips()...)
	lost := h.LostFares()

	var dist, wait, groups []float64
	for _, t := range served {
		dist = append(dist, t.Distance())
		if t.IsPickedUp() {
			wait = append(wait, t.WaitTime().Seconds())
		}
		groups = append(groups, float64(t.Passenger.GroupSize))
	}
	for _, t := range lost {
		groups = append(groups, float64(t.Passenger.GroupSize))
	}
	if len(dist) > 0 {
		r.MeanDistance, r.StdDistance = stat.MeanStdDev(dist, nil)
		if len(dist) == 1 {
			r.StdDistance = 0
		}
	}
	if len(wait) > 0 {
		r.MeanWait = time.Duration(stat.Mean(wait, nil) * float64(time.Second))
	}
	if len(groups) > 0 {
		r.MeanGroupSize = stat.Mean(groups, nil)
	}
	return r
}

// WriteTo prints the report as an aligned table.
func (r Report) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	tw := tabwriter.NewWriter(cw, 0, 4, 2, ' ', 0)
	rows := [][2]string{
		{"requests", fmt.Sprint(r.Requests)},
		{"scheduled", fmt.Sprint(r.Scheduled)},
		{"completed", fmt.Sprint(r.Completed)},
		{"active", fmt.Sprint(r.Active)},
		{"lost fares", fmt.Sprint(r.Lost)},
		{"lost fare rate", fmt.Sprintf("%.1f%%", r.LostFareRate*100)},
		{"available vehicles", fmt.Sprint(r.Available)},
		{"mean distance", fmt.Sprintf("%.2f", r.MeanDistance)},
		{"distance stddev", fmt.Sprintf("%.2f", r.StdDistance)},
		{"mean wait", r.MeanWait.String()},
		{"mean group size", fmt.Sprintf("%.2f", r.MeanGroupSize)},
		{"driver notifications", fmt.Sprintf("%d (%d duplicates)", r.Notifications, r.Duplicates)},
	}
	for _, row := range rows {
		fmt.Fprintf(tw, "%s\t%s\n", row[0], row[1])
	}
	names := make([]string, 0, len(r.Sources))
	for n := range r.Sources {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		s := r.Sources[n]
		fmt.Fprintf(tw, "source %s\t%d/%d scheduled\n", n, s.Scheduled, s.Requests)
	}
	err := tw.Flush()
	return cw.n, err
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
