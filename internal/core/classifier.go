package core

import (
	"strings"
)

const (
	// DefaultFromKeyword is the sender address of the livestream platform's notifications
	DefaultFromKeyword = "noreply@kopichans.com"
	// DefaultBeganKeyword appears in the subject once the stream has started
	DefaultBeganKeyword = "ライブ配信が始まりました"
	// DefaultStartingSoonKeyword appears in the subject shortly before the stream starts
	DefaultStartingSoonKeyword = "がまもなく始まります"
)

// Keywords are the literal substrings a notification must contain
type Keywords struct {
	From         string
	Began        string
	StartingSoon string
}

// DefaultKeywords returns the keywords of the livestream platform's notifications
func DefaultKeywords() Keywords {
	return Keywords{
		From:         DefaultFromKeyword,
		Began:        DefaultBeganKeyword,
		StartingSoon: DefaultStartingSoonKeyword,
	}
}

// Classifier turns decoded message headers into events
type Classifier struct {
	keywords Keywords
}

// NewClassifier creates a new classifier
func NewClassifier(keywords Keywords) *Classifier {
	return &Classifier{keywords: keywords}
}

// Classify returns the event announced by the message, or EventNone.
// Matching is case-sensitive substring containment. When a subject holds
// both phrases the began phrase wins.
func (c *Classifier) Classify(msg *MessageCandidate) Event {
	if msg == nil || c.keywords.From == "" || !strings.Contains(msg.From, c.keywords.From) {
		return EventNone
	}

	switch {
	case c.keywords.Began != "" && strings.Contains(msg.Subject, c.keywords.Began):
		return EventStreamStarted
	case c.keywords.StartingSoon != "" && strings.Contains(msg.Subject, c.keywords.StartingSoon):
		return EventStreamStartingSoon
	default:
		return EventNone
	}
}

// FromKeyword returns the sender keyword, used to narrow mailbox searches
func (c *Classifier) FromKeyword() string {
	return c.keywords.From
}
