package mqtt

import (
	"context"
	"strconv"

	"github.com/kilianp07/ridedispatch/core/events"
	"github.com/kilianp07/ridedispatch/core/monitoring"
	coremqtt "github.com/kilianp07/ridedispatch/core/mqtt"
)

// StartAssignmentPublisher forwards every scheduled trip on the bus to pub.
// The returned channel is closed once the subscription ends.
func StartAssignmentPublisher(ctx context.Context, bus events.Bus, pub coremqtt.AssignmentPublisher) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || pub == nil {
		close(done)
		return done
	}
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		defer monitoring.Recover()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if e, ok := ev.(events.TripScheduled); ok {
					if _, err := pub.PublishAssignment(e.Vehicle, e.Trip); err != nil {
						monitoring.CaptureException(err, map[string]string{
							"module":     "mqtt",
							"vehicle_id": strconv.Itoa(int(e.Vehicle.ID)),
						})
					}
				}
			}
		}
	}()
	return done
}
