package dispatch

import (
	"fmt"
	"slices"
	"time"

	"github.com/kilianp07/ridedispatch/core/events"
	"github.com/kilianp07/ridedispatch/core/model"
)

// Driver notifications are delivered at least once. Unknown vehicles,
// vehicles without a trip and out of order signals are ignored.

// NotifyArrivedAtPickup records that the driver reached the pickup point.
// The pickup time is stamped on the first notification only.
func (c *Company) NotifyArrivedAtPickup(id model.VehicleID) {
	c.notify(id, "arrived_at_pickup", func(v *model.Vehicle, t *model.Trip) []events.Event {
		now := c.clock()
		var out []events.Event
		if v.Status == model.StatusEnRouteToPickup {
			from := v.Status
			_ = v.ArriveAtPickup()
			out = append(out, statusChanged(v, from, now))
		}
		if t.MarkPickedUp(now) {
			out = append(out, events.PassengerPickedUp{Trip: *t, Vehicle: *v, At: now})
		}
		return out
	})
}

// NotifyDepartedPickup records that the party is on board and the vehicle
// left for the destination.
func (c *Company) NotifyDepartedPickup(id model.VehicleID) {
	c.notify(id, "departed_pickup", func(v *model.Vehicle, _ *model.Trip) []events.Event {
		if v.Status != model.StatusPickingUp {
			return nil
		}
		from := v.Status
		_ = v.DepartPickup()
		return []events.Event{statusChanged(v, from, c.clock())}
	})
}

// NotifyArrivedAtDestination records that the vehicle reached the drop-off
// point.
func (c *Company) NotifyArrivedAtDestination(id model.VehicleID) {
	c.notify(id, "arrived_at_destination", func(v *model.Vehicle, _ *model.Trip) []events.Event {
		if v.Status != model.StatusTransporting {
			return nil
		}
		from := v.Status
		_ = v.ArriveAtDestination()
		return []events.Event{statusChanged(v, from, c.clock())}
	})
}

// NotifyDroppedOff completes the current trip. The vehicle is parked at the
// trip destination and becomes available. A drop-off before pickup is
// ignored.
func (c *Company) NotifyDroppedOff(id model.VehicleID) {
	c.notify(id, "dropped_off", func(v *model.Vehicle, t *model.Trip) []events.Event {
		if !t.IsPickedUp() {
			return nil
		}
		now := c.clock()
		from := v.Status
		if err := v.CompleteTrip(t.Destination); err != nil {
			c.logger.Errorf("complete trip %d: %v", t.ID, err)
			return nil
		}
		t.MarkDroppedOff(now)
		c.active = slices.DeleteFunc(c.active, func(x model.TripID) bool { return x == t.ID })
		c.completed = append(c.completed, t.ID)
		c.updateAvailableLocked()
		tripsCompleted.WithLabelValues(v.Class.String()).Inc()
		return []events.Event{
			statusChanged(v, from, now),
			events.TripCompleted{Trip: *t, Vehicle: *v, At: now},
		}
	})
}

// notify runs fn with the vehicle and its current trip under the company
// lock and publishes the resulting events in mutation order.
func (c *Company) notify(id model.VehicleID, kind string, fn func(*model.Vehicle, *model.Trip) []events.Event) {
	c.mu.Lock()
	v, ok := c.vehicles[id]
	if !ok || !v.HasTrip() {
		c.mu.Unlock()
		c.logger.Debugw("notification ignored", map[string]any{
			"vehicle_id":   int(id),
			"notification": kind,
			"known":        ok,
		})
		return
	}
	t := c.trips[v.CurrentTrip]
	evs := fn(v, t)
	if len(evs) == 0 {
		c.mu.Unlock()
		c.logger.Debugw("notification had no effect", map[string]any{
			"vehicle_id":   int(id),
			"notification": kind,
		})
		return
	}
	c.unlockAndPublish(evs...)
}

// SetMaintenance takes an idle vehicle out of service or returns it. A
// vehicle serving a trip cannot enter maintenance. Repeating the current
// state is a no-op.
func (c *Company) SetMaintenance(id model.VehicleID, on bool) error {
	c.mu.Lock()
	v, ok := c.vehicles[id]
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("vehicle %d: %w", id, ErrUnknownVehicle)
	}
	from := v.Status
	var err error
	switch {
	case on && from == model.StatusMaintenance, !on && from == model.StatusAvailable:
		c.mu.Unlock()
		return nil
	case on:
		err = v.EnterMaintenance()
	default:
		err = v.LeaveMaintenance()
	}
	if err != nil {
		c.mu.Unlock()
		return err
	}
	now := c.clock()
	ev := statusChanged(v, from, now)
	c.updateAvailableLocked()
	c.unlockAndPublish(ev)

	c.logger.Infof("vehicle %d maintenance=%t", id, on)
	return nil
}

func statusChanged(v *model.Vehicle, from model.VehicleStatus, at time.Time) events.VehicleStatusChanged {
	return events.VehicleStatusChanged{VehicleID: v.ID, Class: v.Class, From: from, To: v.Status, At: at}
}
