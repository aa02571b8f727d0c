package mailbox

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	imap "github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"github.com/mikey/kopi-bell/internal/config"
	"github.com/mikey/kopi-bell/internal/core"
	"go.uber.org/zap"
)

// ErrMessageNotFound is returned when a fetched UID is no longer in the mailbox
var ErrMessageNotFound = errors.New("message not found")

// IMAPMailbox opens implicit-TLS IMAP sessions against the notification inbox
type IMAPMailbox struct {
	cfg       config.IMAPConfig
	tlsConfig *tls.Config
	dial      func(address string, options *imapclient.Options) (*imapclient.Client, error)
	logger    *zap.Logger
}

// NewIMAPMailbox creates a new IMAP mailbox
func NewIMAPMailbox(cfg config.IMAPConfig, logger *zap.Logger) *IMAPMailbox {
	return &IMAPMailbox{
		cfg:       cfg,
		tlsConfig: &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12},
		dial:      imapclient.DialTLS,
		logger:    logger,
	}
}

// Open dials the server, logs in and selects the configured mailbox
func (m *IMAPMailbox) Open(ctx context.Context) (core.MailboxSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	addr := m.cfg.Address()
	client, err := m.dial(addr, &imapclient.Options{TLSConfig: m.tlsConfig})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}

	stop := closeOnDone(ctx, client)
	if err := client.Login(m.cfg.User, m.cfg.Password).Wait(); err != nil {
		stop()
		client.Close()
		return nil, fmt.Errorf("login as %s failed: %w", m.cfg.User, contextErr(ctx, err))
	}

	selected, err := client.Select(m.cfg.Mailbox, nil).Wait()
	if err != nil {
		if stop() {
			client.Logout().Wait()
		}
		client.Close()
		return nil, fmt.Errorf("failed to select %s: %w", m.cfg.Mailbox, contextErr(ctx, err))
	}
	if !stop() {
		// cancelled just as SELECT completed; the connection is already gone
		return nil, ctx.Err()
	}

	m.logger.Debug("Mailbox selected",
		zap.String("address", addr),
		zap.String("mailbox", m.cfg.Mailbox),
		zap.Uint32("messages", selected.NumMessages))

	return &imapSession{client: client, logger: m.logger}, nil
}

// imapSession is one logged-in connection with the mailbox selected
type imapSession struct {
	client    *imapclient.Client
	logger    *zap.Logger
	dropped   atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// closeOnDone closes the client when ctx is done, which fails any command
// still waiting on the server. The returned stop reports false if it fired.
func closeOnDone(ctx context.Context, client *imapclient.Client) func() bool {
	return context.AfterFunc(ctx, func() {
		_ = client.Close()
	})
}

// contextErr prefers the cancellation over the connection error it caused
func contextErr(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}

// watch is closeOnDone for an open session
func (s *imapSession) watch(ctx context.Context) func() bool {
	return context.AfterFunc(ctx, func() {
		s.dropped.Store(true)
		_ = s.client.Close()
	})
}

// SearchUnseen returns unseen UIDs in mailbox order
func (s *imapSession) SearchUnseen(ctx context.Context, from string) ([]uint32, error) {
	criteria := &imap.SearchCriteria{
		NotFlag: []imap.Flag{imap.FlagSeen},
	}
	if from != "" {
		criteria.Header = []imap.SearchCriteriaHeaderField{{Key: "From", Value: from}}
	}

	stop := s.watch(ctx)
	data, err := s.client.UIDSearch(criteria, nil).Wait()
	stop()
	if err != nil {
		return nil, fmt.Errorf("UID SEARCH failed: %w", contextErr(ctx, err))
	}

	found := data.AllUIDs()
	uids := make([]uint32, 0, len(found))
	for _, uid := range found {
		uids = append(uids, uint32(uid))
	}
	return uids, nil
}

// Fetch returns BODY.PEEK[] so reading a message never sets \Seen
func (s *imapSession) Fetch(ctx context.Context, uid uint32) ([]byte, error) {
	section := &imap.FetchItemBodySection{Peek: true}
	stop := s.watch(ctx)
	msgs, err := s.client.Fetch(imap.UIDSetNum(imap.UID(uid)), &imap.FetchOptions{
		UID:         true,
		BodySection: []*imap.FetchItemBodySection{section},
	}).Collect()
	stop()
	if err != nil {
		return nil, fmt.Errorf("UID FETCH failed: %w", contextErr(ctx, err))
	}
	if len(msgs) == 0 {
		return nil, fmt.Errorf("%w: uid %d", ErrMessageNotFound, uid)
	}

	body := msgs[0].FindBodySection(section)
	if body == nil {
		return nil, fmt.Errorf("%w: uid %d returned no body", ErrMessageNotFound, uid)
	}
	return body, nil
}

// MarkSeen adds \Seen; adding a flag that is already set changes nothing
func (s *imapSession) MarkSeen(ctx context.Context, uid uint32) error {
	stop := s.watch(ctx)
	err := s.client.Store(imap.UIDSetNum(imap.UID(uid)), &imap.StoreFlags{
		Op:     imap.StoreFlagsAdd,
		Silent: true,
		Flags:  []imap.Flag{imap.FlagSeen},
	}, nil).Close()
	stop()
	if err != nil {
		return fmt.Errorf("UID STORE failed: %w", contextErr(ctx, err))
	}
	s.logger.Debug("Message marked seen", zap.Uint32("uid", uid))
	return nil
}

// Close logs out and closes the connection. Safe to call more than once.
func (s *imapSession) Close() error {
	s.closeOnce.Do(func() {
		if s.dropped.Load() {
			_ = s.client.Close()
			return
		}
		s.closeErr = s.client.Logout().Wait()
		// The server drops the connection after LOGOUT, so a close error is expected
		_ = s.client.Close()
	})
	return s.closeErr
}
