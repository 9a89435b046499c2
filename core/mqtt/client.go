// Package mqtt declares the ports of the driver-app bridge. The Paho
// implementation lives in infra/mqtt.
package mqtt

import "github.com/kilianp07/ridedispatch/core/model"

// Notifier receives driver signals. It is implemented by dispatch.Company.
type Notifier interface {
	NotifyArrivedAtPickup(id model.VehicleID)
	NotifyDepartedPickup(id model.VehicleID)
	NotifyArrivedAtDestination(id model.VehicleID)
	NotifyDroppedOff(id model.VehicleID)
}

// AssignmentPublisher sends trip assignments to drivers and returns the
// message identifier.
type AssignmentPublisher interface {
	PublishAssignment(v model.Vehicle, t model.Trip) (messageID string, err error)
}
