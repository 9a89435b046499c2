package journal

import (
	"context"

	"github.com/kilianp07/ridedispatch/core/events"
	"github.com/kilianp07/ridedispatch/core/logger"
	"github.com/kilianp07/ridedispatch/core/monitoring"
)

// StartRecorder subscribes to the bus and appends every trip event to the
// store. It returns a channel closed once the subscription has drained,
// which happens when ctx is canceled or the bus is closed.
func StartRecorder(ctx context.Context, bus events.Bus, store Store, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || store == nil {
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
				rec, ok := FromEvent(ev)
				if !ok {
					continue
				}
				if err := store.Append(ctx, rec); err != nil {
					monitoring.CaptureException(err, map[string]string{"module": "journal", "event": rec.Event})
					if log != nil {
						log.Errorf("journal append %s trip %d: %v", rec.Event, rec.TripID, err)
					}
				}
			}
		}
	}()
	return done
}
