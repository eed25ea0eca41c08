package app

import (
	"errors"

	"sushigo/internal/domain"
)

var (
	// ErrSessionNotFound is returned for unknown or already closed session codes.
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidName     = errors.New("name is required")
)

// ErrorClass groups errors by how callers should surface them.
type ErrorClass string

const (
	ClassValidation ErrorClass = "validation"
	ClassCapacity   ErrorClass = "capacity"
	ClassNotFound   ErrorClass = "not_found"
	ClassInternal   ErrorClass = "internal"
)

// ClassOf maps an error to its class. Validation and capacity errors are
// rejections: state is unchanged and the reason goes back to the caller.
func ClassOf(err error) ErrorClass {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return ClassNotFound
	case errors.Is(err, domain.ErrSessionFull),
		errors.Is(err, domain.ErrAlreadyStarted),
		errors.Is(err, domain.ErrInvalidPlayerCount):
		return ClassCapacity
	case errors.Is(err, domain.ErrWrongPhase),
		errors.Is(err, domain.ErrNotHost),
		errors.Is(err, domain.ErrInvalidSelection),
		errors.Is(err, domain.ErrUnknownParticipant),
		errors.Is(err, domain.ErrDuplicateParticipant),
		errors.Is(err, ErrInvalidToken),
		errors.Is(err, ErrInvalidName):
		return ClassValidation
	}
	return ClassInternal
}

// UserMessage is the display string sent to the participant whose action failed.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return "Game not found"
	case errors.Is(err, domain.ErrAlreadyStarted):
		return "Game already started"
	case errors.Is(err, domain.ErrSessionFull):
		return "Could not join game (game may be full)"
	case errors.Is(err, domain.ErrNotHost):
		return "Only host can start"
	case errors.Is(err, domain.ErrInvalidPlayerCount):
		return "Need 2-5 players"
	case errors.Is(err, domain.ErrInvalidSelection):
		return "Invalid selection"
	case errors.Is(err, domain.ErrWrongPhase):
		return "Action not allowed right now"
	case errors.Is(err, domain.ErrUnknownParticipant):
		return "Player not found"
	case errors.Is(err, ErrInvalidToken):
		return "Invalid seat token"
	case errors.Is(err, ErrInvalidName):
		return "Name is required"
	}
	return "Internal error"
}
