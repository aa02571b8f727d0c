package core

import (
	"context"
)

// Mailbox opens sessions against the notification inbox
type Mailbox interface {
	// Open connects, authenticates and selects the inbox folder
	Open(ctx context.Context) (MailboxSession, error)
}

// MailboxSession is one authenticated session with the inbox selected
type MailboxSession interface {
	// SearchUnseen returns the UIDs of unseen messages, narrowed to the
	// given sender when from is not empty
	SearchUnseen(ctx context.Context, from string) ([]uint32, error)

	// Fetch returns the full message without marking it seen
	Fetch(ctx context.Context, uid uint32) ([]byte, error)

	// MarkSeen flags a message as seen
	MarkSeen(ctx context.Context, uid uint32) error

	// Close logs out and releases the connection
	Close() error
}

// MessageParser decodes a raw message into a candidate
type MessageParser interface {
	Parse(uid uint32, raw []byte) (*MessageCandidate, error)
}

// Broadcaster pushes a text message to every subscriber of the chat channel
type Broadcaster interface {
	Broadcast(ctx context.Context, text string) error
}

// SoundPlayer plays audio cues
type SoundPlayer interface {
	// Start begins playing a cue and returns without waiting for it
	Start(cue string) error

	// Play plays a cue and waits for it to finish
	Play(ctx context.Context, cue string) error
}

// SignalLight drives the multi-color indicator lamp
type SignalLight interface {
	On(color Color) error
	Off(color Color) error
	AllOff() error
	Close() error
}

// RunRecorder observes a run for metrics
type RunRecorder interface {
	MessageScanned(event Event)
	DispatchFinished(event Event, err error)
	RunFinished(summary *RunSummary, err error)
}

// NopRecorder discards every observation
type NopRecorder struct{}

func (NopRecorder) MessageScanned(Event) {}

func (NopRecorder) DispatchFinished(Event, error) {}

func (NopRecorder) RunFinished(*RunSummary, error) {}
