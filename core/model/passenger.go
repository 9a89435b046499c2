package model

import "fmt"

// PassengerID identifies a rider request.
type PassengerID int

// Passenger is an immutable record of a rider party.
type Passenger struct {
	ID        PassengerID `json:"id"`
	Name      string      `json:"name"`
	Contact   string      `json:"contact"`
	GroupSize int         `json:"group_size"`
}

// NewPassenger validates the party and returns the record.
func NewPassenger(id PassengerID, name, contact string, groupSize int) (Passenger, error) {
	if id <= 0 {
		return Passenger{}, fmt.Errorf("passenger %d: %w", id, ErrInvalidID)
	}
	if groupSize < 1 {
		return Passenger{}, fmt.Errorf("passenger %d group of %d: %w", id, groupSize, ErrInvalidGroupSize)
	}
	return Passenger{ID: id, Name: name, Contact: contact, GroupSize: groupSize}, nil
}

func (p Passenger) String() string {
	return fmt.Sprintf("Passenger{id=%d, name=%q, groupSize=%d}", p.ID, p.Name, p.GroupSize)
}
