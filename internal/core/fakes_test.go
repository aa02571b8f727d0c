package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

type fakeMessage struct {
	from    string
	subject string
	seen    bool
	marks   int
}

// fakeMailbox is an in-memory inbox keyed by UID
type fakeMailbox struct {
	mu       sync.Mutex
	messages map[uint32]*fakeMessage
	openErr  error
	fetchErr error
	opened   int
	closed   int
	searches []string
}

func newFakeMailbox() *fakeMailbox {
	return &fakeMailbox{messages: make(map[uint32]*fakeMessage)}
}

func (m *fakeMailbox) add(uid uint32, from, subject string) *fakeMessage {
	msg := &fakeMessage{from: from, subject: subject}
	m.messages[uid] = msg
	return msg
}

func (m *fakeMailbox) Open(ctx context.Context) (MailboxSession, error) {
	if m.openErr != nil {
		return nil, m.openErr
	}
	m.opened++
	return &fakeSession{box: m}, nil
}

type fakeSession struct {
	box *fakeMailbox
}

func (s *fakeSession) SearchUnseen(ctx context.Context, from string) ([]uint32, error) {
	s.box.mu.Lock()
	defer s.box.mu.Unlock()
	s.box.searches = append(s.box.searches, from)

	var uids []uint32
	for uid, msg := range s.box.messages {
		if msg.seen {
			continue
		}
		if from != "" && !strings.Contains(msg.from, from) {
			continue
		}
		uids = append(uids, uid)
	}
	sort.Slice(uids, func(i, j int) bool { return uids[i] < uids[j] })
	return uids, nil
}

func (s *fakeSession) Fetch(ctx context.Context, uid uint32) ([]byte, error) {
	if s.box.fetchErr != nil {
		return nil, s.box.fetchErr
	}
	msg, ok := s.box.messages[uid]
	if !ok {
		return nil, fmt.Errorf("no message %d", uid)
	}
	return []byte("From: " + msg.from + "\nSubject: " + msg.subject + "\n"), nil
}

func (s *fakeSession) MarkSeen(ctx context.Context, uid uint32) error {
	msg, ok := s.box.messages[uid]
	if !ok {
		return fmt.Errorf("no message %d", uid)
	}
	msg.seen = true
	msg.marks++
	return nil
}

func (s *fakeSession) Close() error {
	s.box.closed++
	return nil
}

// fakeParser reads the two header lines written by fakeSession.Fetch
type fakeParser struct {
	failUID uint32
}

func (p fakeParser) Parse(uid uint32, raw []byte) (*MessageCandidate, error) {
	if p.failUID != 0 && uid == p.failUID {
		return nil, errors.New("malformed message")
	}
	candidate := &MessageCandidate{UID: uid}
	for _, line := range strings.Split(string(raw), "\n") {
		if v, ok := strings.CutPrefix(line, "From: "); ok {
			candidate.From = v
		}
		if v, ok := strings.CutPrefix(line, "Subject: "); ok {
			candidate.Subject = v
		}
	}
	return candidate, nil
}

// fakeLight records every call in order
type fakeLight struct {
	mu     sync.Mutex
	calls  []string
	lit    map[Color]bool
	onErr  error
	offErr error
}

func newFakeLight() *fakeLight {
	return &fakeLight{lit: make(map[Color]bool)}
}

func (l *fakeLight) record(call string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, call)
}

func (l *fakeLight) On(color Color) error {
	l.record("on:" + string(color))
	if l.onErr != nil {
		return l.onErr
	}
	l.mu.Lock()
	l.lit[color] = true
	l.mu.Unlock()
	return nil
}

func (l *fakeLight) Off(color Color) error {
	l.record("off:" + string(color))
	l.mu.Lock()
	delete(l.lit, color)
	l.mu.Unlock()
	return nil
}

func (l *fakeLight) AllOff() error {
	l.record("alloff")
	if l.offErr != nil {
		return l.offErr
	}
	l.mu.Lock()
	l.lit = make(map[Color]bool)
	l.mu.Unlock()
	return nil
}

func (l *fakeLight) Close() error {
	l.record("close")
	return nil
}

func (l *fakeLight) anyLit() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.lit) > 0
}

func (l *fakeLight) history() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

// fakeSound records started and played cues
type fakeSound struct {
	mu       sync.Mutex
	started  []string
	played   []string
	startErr error
	playErr  error
}

func (s *fakeSound) Start(cue string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = append(s.started, cue)
	return s.startErr
}

func (s *fakeSound) Play(ctx context.Context, cue string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.played = append(s.played, cue)
	return s.playErr
}

func (s *fakeSound) playedCues() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.played...)
}

// fakeBroadcaster records texts and can check the light while sending
type fakeBroadcaster struct {
	mu     sync.Mutex
	texts  []string
	err    error
	during func()
}

func (b *fakeBroadcaster) Broadcast(ctx context.Context, text string) error {
	if b.during != nil {
		b.during()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.texts = append(b.texts, text)
	return b.err
}

func (b *fakeBroadcaster) sent() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.texts...)
}

// fakeRecorder counts observations
type fakeRecorder struct {
	scanned    map[Event]int
	dispatched map[Event]int
	failed     int
	summary    *RunSummary
	runErr     error
	finished   int
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{scanned: make(map[Event]int), dispatched: make(map[Event]int)}
}

func (r *fakeRecorder) MessageScanned(event Event) {
	r.scanned[event]++
}

func (r *fakeRecorder) DispatchFinished(event Event, err error) {
	r.dispatched[event]++
	if err != nil {
		r.failed++
	}
}

func (r *fakeRecorder) RunFinished(summary *RunSummary, err error) {
	r.finished++
	r.summary = summary
	r.runErr = err
}

var testActions = ActionTable{
	EventStreamStarted:      {Text: "LIVE now", VoiceCue: "voice_started.wav", Color: ColorRed},
	EventStreamStartingSoon: {Text: "LIVE soon", VoiceCue: "voice_soon.wav", Color: ColorYellow},
}
