package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/ridedispatch/core/metrics"
	"github.com/kilianp07/ridedispatch/infra/logger"
)

// InfluxSink writes trip events to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// InfluxConfig holds the connection settings of an InfluxSink.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg InfluxConfig) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// Close releases the underlying client.
func (s *InfluxSink) Close() { s.client.Close() }

// RecordTripOutcome writes one trip_outcome point.
func (s *InfluxSink) RecordTripOutcome(rec coremetrics.TripOutcome) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, tripOutcomePoint(rec))
}

func tripOutcomePoint(rec coremetrics.TripOutcome) *write.Point {
	p := write.NewPointWithMeasurement("trip_outcome").
		AddTag("outcome", rec.Outcome).
		AddTag("class", classLabel(rec.Class))
	if rec.VehicleID != 0 {
		p = p.AddTag("vehicle_id", strconv.Itoa(int(rec.VehicleID)))
	}
	return p.AddField("trip_id", int(rec.TripID)).
		AddField("group_size", rec.GroupSize).
		AddField("distance", round3(rec.Distance)).
		AddField("wait_s", round3(rec.WaitTime.Seconds())).
		AddField("ride_s", round3(rec.RideTime.Seconds())).
		SetTime(rec.Time)
}

// RecordVehicleStatus writes a vehicle_status point for the transition.
func (s *InfluxSink) RecordVehicleStatus(ev coremetrics.VehicleStatusEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("vehicle_status").
		AddTag("vehicle_id", strconv.Itoa(int(ev.VehicleID))).
		AddTag("class", classLabel(ev.Class)).
		AddTag("from", ev.From.String()).
		AddTag("to", ev.To.String()).
		AddField("busy", ev.To.Busy()).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordFleetState writes a fleet_state snapshot.
func (s *InfluxSink) RecordFleetState(st coremetrics.FleetState) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("fleet_state").
		AddField("vehicles", st.Vehicles).
		AddField("available", st.Available).
		AddField("maintenance", st.Maintenance).
		AddField("active_trips", st.ActiveTrips).
		AddField("completed_trips", st.CompletedTrips).
		AddField("lost_fares", st.LostFares).
		SetTime(st.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
