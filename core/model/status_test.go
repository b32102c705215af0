package model

import "testing"

func TestStatus_LegalTransitions(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusPending, StatusAssigned, true},
		{StatusPending, StatusCancelled, true},
		{StatusAssigned, StatusCompleted, true},
		{StatusPending, StatusCompleted, false},
		{StatusAssigned, StatusCancelled, false},
		{StatusAssigned, StatusPending, false},
		{StatusCompleted, StatusPending, false},
		{StatusCompleted, StatusAssigned, false},
		{StatusCancelled, StatusAssigned, false},
		{StatusCancelled, StatusCompleted, false},
	}
	for _, c := range cases {
		got, err := c.from.Transition(c.to)
		if c.ok {
			if err != nil {
				t.Errorf("%s -> %s: unexpected error %v", c.from, c.to, err)
			}
			if got != c.to {
				t.Errorf("%s -> %s: got %s", c.from, c.to, got)
			}
		} else {
			if err == nil {
				t.Errorf("%s -> %s: expected error", c.from, c.to)
			}
			if got != c.from {
				t.Errorf("%s -> %s: status changed on illegal transition", c.from, c.to)
			}
		}
	}
}

func TestStatus_Terminal(t *testing.T) {
	if StatusPending.Terminal() || StatusAssigned.Terminal() {
		t.Error("pending and assigned must not be terminal")
	}
	if !StatusCompleted.Terminal() || !StatusCancelled.Terminal() {
		t.Error("completed and cancelled must be terminal")
	}
}
