package core

import "errors"

var (
	// ErrUnknownColor is returned when a signal light channel name is not one of Colors
	ErrUnknownColor = errors.New("unknown signal light color")
	// ErrBroadcast is returned when the chat broadcast API rejects or cannot receive a message
	ErrBroadcast = errors.New("broadcast failed")
	// ErrNoAction is returned when an event has no entry in the action table
	ErrNoAction = errors.New("no action mapped for event")
)
