package core

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// Notifier runs one poll-classify-dispatch pass over the inbox
type Notifier struct {
	mailbox    Mailbox
	parser     MessageParser
	classifier *Classifier
	dispatcher *Dispatcher
	recorder   RunRecorder
	searchFrom bool
	clock      clockwork.Clock
	logger     *zap.Logger
}

// NewNotifier creates a new notifier. When searchFrom is set the mailbox
// search is narrowed server-side to the classifier's sender keyword.
func NewNotifier(
	mailbox Mailbox,
	parser MessageParser,
	classifier *Classifier,
	dispatcher *Dispatcher,
	recorder RunRecorder,
	searchFrom bool,
	clock clockwork.Clock,
	logger *zap.Logger,
) *Notifier {
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &Notifier{
		mailbox:    mailbox,
		parser:     parser,
		classifier: classifier,
		dispatcher: dispatcher,
		recorder:   recorder,
		searchFrom: searchFrom,
		clock:      clock,
		logger:     logger,
	}
}

// Run opens the inbox, dispatches a notification for every matching unseen
// message and marks it seen once its dispatch completed. Any mailbox or
// broadcast failure aborts the pass; messages not yet marked seen are
// picked up again by the next run.
func (n *Notifier) Run(ctx context.Context) (summary *RunSummary, err error) {
	defer func() {
		n.recorder.RunFinished(summary, err)
	}()

	session, err := n.mailbox.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("open mailbox: %w", err)
	}
	defer func() {
		if closeErr := session.Close(); closeErr != nil {
			n.logger.Warn("Failed to close mailbox session", zap.Error(closeErr))
		}
	}()

	var from string
	if n.searchFrom {
		from = n.classifier.FromKeyword()
	}

	uids, err := session.SearchUnseen(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("search unseen messages: %w", err)
	}
	n.logger.Debug("Found unseen messages", zap.Int("count", len(uids)))

	sent := 0
	for _, uid := range uids {
		raw, err := session.Fetch(ctx, uid)
		if err != nil {
			return nil, fmt.Errorf("fetch message %d: %w", uid, err)
		}

		candidate, err := n.parser.Parse(uid, raw)
		if err != nil {
			n.logger.Warn("Skipping undecodable message", zap.Uint32("uid", uid), zap.Error(err))
			continue
		}

		event := n.classifier.Classify(candidate)
		n.recorder.MessageScanned(event)
		if event == EventNone {
			n.logger.Debug("Message is not a notification",
				zap.Uint32("uid", uid),
				zap.String("from", candidate.From),
				zap.String("subject", candidate.Subject))
			continue
		}

		n.logger.Info("Notification matched",
			zap.Uint32("uid", uid),
			zap.Stringer("event", event),
			zap.String("subject", candidate.Subject))

		err = n.dispatcher.Dispatch(ctx, event)
		n.recorder.DispatchFinished(event, err)
		if err != nil {
			return nil, fmt.Errorf("dispatch %s for message %d: %w", event, uid, err)
		}

		if err := session.MarkSeen(ctx, uid); err != nil {
			return nil, fmt.Errorf("mark message %d seen: %w", uid, err)
		}
		sent++
	}

	return &RunSummary{
		FinishedAt: n.clock.Now(),
		Sent:       sent,
		Unseen:     len(uids),
	}, nil
}
