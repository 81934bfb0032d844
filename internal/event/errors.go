package event

import "errors"

var (
	ErrNotFound          = errors.New("event not found")
	ErrInvalidDates      = errors.New("start date must not be after end date")
	ErrInvalidTransition = errors.New("illegal event state transition")
	ErrEventNotMutable   = errors.New("event is finalized or cancelled")
	ErrNotOwner          = errors.New("caller does not own this event")
)
