package core

import (
	"fmt"
	"time"
)

// Event is the kind of livestream notification a message announces
type Event int

const (
	// EventNone means the message is not a notification we act on
	EventNone Event = iota
	// EventStreamStarted is sent when the livestream has begun
	EventStreamStarted
	// EventStreamStartingSoon is sent shortly before the livestream begins
	EventStreamStartingSoon
)

// String returns the tag used in logs and metric labels
func (e Event) String() string {
	switch e {
	case EventStreamStarted:
		return "stream_started"
	case EventStreamStartingSoon:
		return "stream_starting_soon"
	default:
		return "none"
	}
}

// Color names one channel of the signal light
type Color string

const (
	ColorRed    Color = "red"
	ColorYellow Color = "yellow"
	ColorGreen  Color = "green"
	ColorBlue   Color = "blue"
)

// Colors lists every channel of the signal light in relay order
var Colors = []Color{ColorRed, ColorYellow, ColorGreen, ColorBlue}

// Valid reports whether c is one of the four signal light channels
func (c Color) Valid() bool {
	for _, known := range Colors {
		if c == known {
			return true
		}
	}
	return false
}

// MessageCandidate is the decoded header data of one unseen message
type MessageCandidate struct {
	UID     uint32
	Subject string
	From    string
}

// ChannelAction describes what every output channel does for an event.
// An empty VoiceCue or Color means that channel stays untouched.
type ChannelAction struct {
	Text     string
	VoiceCue string
	Color    Color
}

// ActionTable maps events to their channel actions
type ActionTable map[Event]ChannelAction

// Validate checks that every mapped color is a known channel
func (t ActionTable) Validate() error {
	for event, action := range t {
		if action.Color != "" && !action.Color.Valid() {
			return fmt.Errorf("%w: %q for event %s", ErrUnknownColor, action.Color, event)
		}
		if action.Text == "" {
			return fmt.Errorf("broadcast text for event %s is empty", event)
		}
	}
	return nil
}

// RunSummary is the outcome of one poll-classify-dispatch pass
type RunSummary struct {
	FinishedAt time.Time
	Sent       int
	Unseen     int
}

// summaryTimeLayout matches a microsecond ISO 8601 local timestamp
const summaryTimeLayout = "2006-01-02T15:04:05.000000"

// String renders the one-line summary printed at the end of a run
func (s RunSummary) String() string {
	return fmt.Sprintf("%s Done. sent=%d, unseen=%d", s.FinishedAt.Format(summaryTimeLayout), s.Sent, s.Unseen)
}
