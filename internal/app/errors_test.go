package app

import (
	"errors"
	"fmt"
	"testing"

	"sushigo/internal/domain"
)

func TestClassOf(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorClass
		msg  string
	}{
		{ErrSessionNotFound, ClassNotFound, "Game not found"},
		{domain.ErrSessionFull, ClassCapacity, "Could not join game (game may be full)"},
		{domain.ErrAlreadyStarted, ClassCapacity, "Game already started"},
		{domain.ErrInvalidPlayerCount, ClassCapacity, "Need 2-5 players"},
		{domain.ErrNotHost, ClassValidation, "Only host can start"},
		{fmt.Errorf("%w: card %q not in hand", domain.ErrInvalidSelection, "x"), ClassValidation, "Invalid selection"},
		{ErrInvalidToken, ClassValidation, "Invalid seat token"},
		{ErrInvalidName, ClassValidation, "Name is required"},
		{errors.New("boom"), ClassInternal, "Internal error"},
	}
	for _, tt := range tests {
		if got := ClassOf(tt.err); got != tt.want {
			t.Errorf("ClassOf(%v) = %s, want %s", tt.err, got, tt.want)
		}
		if got := UserMessage(tt.err); got != tt.msg {
			t.Errorf("UserMessage(%v) = %q, want %q", tt.err, got, tt.msg)
		}
	}
}

func TestErrorEventTargetsActor(t *testing.T) {
	ev := ErrorEvent("p1", domain.ErrWrongPhase)
	if ev.Kind != EventError || len(ev.Recipients) != 1 || ev.Recipients[0] != "p1" {
		t.Fatalf("error event = %+v", ev)
	}
	msg := ev.Message()
	if msg.Type != "error" {
		t.Fatalf("message type = %s, want error", msg.Type)
	}
}
