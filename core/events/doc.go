// Package events defines the dispatch related events emitted on the event bus.
//
// Available event types:
//   - TripScheduled: a request was matched to a vehicle
//   - FareLost: no eligible vehicle was available
//   - PassengerPickedUp: the driver reported arrival at the pickup
//   - TripCompleted: the party was dropped off
//   - VehicleStatusChanged: any vehicle status transition
package events
