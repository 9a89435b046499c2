package model

import (
	"errors"
	"testing"
)

func TestNewPassengerValidation(t *testing.T) {
	cases := []struct {
		name  string
		id    PassengerID
		group int
		want  error
	}{
		{"valid", 1, 2, nil},
		{"empty party", 1, 0, ErrInvalidGroupSize},
		{"negative party", 1, -3, ErrInvalidGroupSize},
		{"zero id", 0, 2, ErrInvalidID},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p, err := NewPassenger(c.id, "Test Passenger", "+256701234567", c.group)
			if !errors.Is(err, c.want) {
				t.Fatalf("expected %v got %v", c.want, err)
			}
			if c.want == nil && p.GroupSize != c.group {
				t.Fatalf("group size not stored: %#v", p)
			}
			if c.want != nil && p != (Passenger{}) {
				t.Fatalf("expected zero passenger on error, got %#v", p)
			}
		})
	}
}
