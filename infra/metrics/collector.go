package metrics

import (
	"context"

	"github.com/kilianp07/ridedispatch/core/events"
	coremetrics "github.com/kilianp07/ridedispatch/core/metrics"
	"github.com/kilianp07/ridedispatch/core/model"
	"github.com/kilianp07/ridedispatch/infra/logger"
)

// FleetStateFunc returns the current fleet snapshot.
type FleetStateFunc func() coremetrics.FleetState

// StartEventCollector subscribes to the event bus and records metrics for
// events. When state is non-nil and the sink records fleet snapshots, a
// snapshot is taken after every trip event. The returned channel is closed
// once the collector stops, on context cancellation or bus close.
func StartEventCollector(ctx context.Context, bus events.Bus, sink coremetrics.MetricsSink, state FleetStateFunc, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	fleetRec, _ := sink.(coremetrics.FleetStateRecorder)
	statusRec, _ := sink.(coremetrics.VehicleStatusRecorder)
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if e, ok := ev.(events.VehicleStatusChanged); ok {
					if statusRec != nil {
						if err := statusRec.RecordVehicleStatus(coremetrics.VehicleStatusEvent{
							VehicleID: e.VehicleID, Class: e.Class, From: e.From, To: e.To, Time: e.At,
						}); err != nil {
							log.Errorf("record vehicle status: %v", err)
						}
					}
					continue
				}
				rec, ok := TripOutcomeFromEvent(ev)
				if !ok {
					continue
				}
				if err := sink.RecordTripOutcome(rec); err != nil {
					log.Errorf("record trip outcome: %v", err)
				}
				if fleetRec != nil && state != nil {
					st := state()
					st.Time = rec.Time
					if err := fleetRec.RecordFleetState(st); err != nil {
						log.Errorf("record fleet state: %v", err)
					}
				}
			}
		}
	}()
	return done
}

// TripOutcomeFromEvent maps a trip event to its metrics record.
func TripOutcomeFromEvent(ev events.Event) (coremetrics.TripOutcome, bool) {
	var (
		t       model.Trip
		class   model.CapacityClass
		outcome string
	)
	switch e := ev.(type) {
	case events.TripScheduled:
		t, class, outcome = e.Trip, e.Vehicle.Class, coremetrics.OutcomeScheduled
	case events.FareLost:
		t, outcome = e.Trip, coremetrics.OutcomeLost
	case events.PassengerPickedUp:
		t, class, outcome = e.Trip, e.Vehicle.Class, coremetrics.OutcomePickedUp
	case events.TripCompleted:
		t, class, outcome = e.Trip, e.Vehicle.Class, coremetrics.OutcomeCompleted
	default:
		return coremetrics.TripOutcome{}, false
	}
	return coremetrics.TripOutcome{
		TripID:      t.ID,
		VehicleID:   t.Vehicle,
		PassengerID: t.Passenger.ID,
		Class:       class,
		GroupSize:   t.Passenger.GroupSize,
		Outcome:     outcome,
		Distance:    t.Distance(),
		WaitTime:    t.WaitTime(),
		RideTime:    t.RideTime(),
		Time:        ev.Time(),
	}, true
}
