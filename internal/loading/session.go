package loading

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/facebookgo/clock"

	"contract-console/internal/documents"
	"contract-console/internal/shared/config"
	"contract-console/internal/shared/metrics"
	"contract-console/internal/shared/telemetry"
)

// ErrSessionClosed is returned when talking to a torn down session.
var ErrSessionClosed = errors.New("poll session closed")

// Fetcher reads the current backend record of a document.
type Fetcher interface {
	Fetch(ctx context.Context, id string) (documents.Record, error)
}

// Options configures poll sessions.
type Options struct {
	Clock        clock.Clock
	Interval     time.Duration
	StallTimeout time.Duration
	Texts        config.Texts
}

func (o Options) withDefaults() Options {
	if o.Clock == nil {
		o.Clock = clock.New()
	}
	if o.Interval <= 0 {
		o.Interval = 500 * time.Millisecond
	}
	if o.StallTimeout <= 0 {
		o.StallTimeout = 60 * time.Second
	}
	return o
}

// Session drives one loading view. A single goroutine owns the state and all
// timers; everyone else reads snapshots.
type Session struct {
	viewID     string
	documentID string
	fetcher    Fetcher
	opts       Options

	commands chan command
	done     chan struct{}
	cancel   context.CancelFunc
	once     sync.Once

	skipped atomic.Uint64

	mu       sync.RWMutex
	state    State
	changed  chan struct{}
	lastSeen time.Time
}

type command struct {
	ev    Event
	reply chan State
}

type fetchResult struct {
	gen uint64
	rec documents.Record
	err error
}

// Start opens a session and issues the first poll immediately.
func Start(ctx context.Context, viewID, documentID string, f Fetcher, opts Options) *Session {
	opts = opts.withDefaults()
	ctx, cancel := context.WithCancel(ctx)
	s := &Session{
		viewID:     viewID,
		documentID: documentID,
		fetcher:    f,
		opts:       opts,
		commands:   make(chan command),
		done:       make(chan struct{}),
		cancel:     cancel,
		state:      Initial(documentID),
		changed:    make(chan struct{}),
		lastSeen:   opts.Clock.Now(),
	}
	metrics.IncSessionStarted()
	l := &loop{s: s, ctx: ctx, results: make(chan fetchResult, 1)}
	l.startTicker()
	go l.run()
	return s
}

// ViewID identifies the view instance that owns the session.
func (s *Session) ViewID() string { return s.viewID }

// DocumentID is the document being polled.
func (s *Session) DocumentID() string { return s.documentID }

// Snapshot returns the current state.
func (s *Session) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Changed returns a channel closed at the next state change. Grab it before
// reading Snapshot to avoid missing an update.
func (s *Session) Changed() <-chan struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.changed
}

// Wait blocks until ok accepts a snapshot, the session ends or ctx is done.
func (s *Session) Wait(ctx context.Context, ok func(State) bool) (State, error) {
	for {
		ch := s.Changed()
		st := s.Snapshot()
		if ok(st) {
			return st, nil
		}
		select {
		case <-ch:
		case <-s.done:
			st = s.Snapshot()
			if ok(st) {
				return st, nil
			}
			return st, ErrSessionClosed
		case <-ctx.Done():
			return s.Snapshot(), ctx.Err()
		}
	}
}

// Retry applies the manual retry and returns the resulting state.
func (s *Session) Retry(ctx context.Context) (State, error) {
	cmd := command{ev: Retry{}, reply: make(chan State, 1)}
	select {
	case s.commands <- cmd:
	case <-s.done:
		return s.Snapshot(), ErrSessionClosed
	case <-ctx.Done():
		return s.Snapshot(), ctx.Err()
	}
	select {
	case st := <-cmd.reply:
		return st, nil
	case <-s.done:
		return s.Snapshot(), ErrSessionClosed
	}
}

// SkippedTicks counts ticks dropped while a fetch was outstanding.
func (s *Session) SkippedTicks() uint64 { return s.skipped.Load() }

// Touch records that the owning page is still there.
func (s *Session) Touch() {
	now := s.opts.Clock.Now()
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

// IdleSince returns the last time the owning page asked for state.
func (s *Session) IdleSince() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSeen
}

// Done is closed once the session goroutine has exited.
func (s *Session) Done() <-chan struct{} { return s.done }

// Close tears the session down and waits for its goroutine. Safe to call
// more than once.
func (s *Session) Close() {
	s.once.Do(s.cancel)
	<-s.done
}

func (s *Session) publish(next State) {
	s.mu.Lock()
	s.state = next
	close(s.changed)
	s.changed = make(chan struct{})
	s.mu.Unlock()
}

// loop holds everything only the session goroutine may touch.
type loop struct {
	s   *Session
	ctx context.Context

	ticker *clock.Ticker
	tick   <-chan time.Time

	stall    *clock.Timer
	stallC   <-chan time.Time
	stallFor int

	results        chan fetchResult
	inflight       bool
	pollAfterDrain bool
	gen            uint64
	fetchCancel    context.CancelFunc
}

func (l *loop) run() {
	defer close(l.s.done)
	defer l.teardown()

	l.poll()
	for {
		select {
		case <-l.ctx.Done():
			return
		case <-l.tick:
			if l.inflight {
				l.s.skipped.Add(1)
				metrics.IncPollTickSkipped()
				continue
			}
			l.poll()
		case res := <-l.results:
			l.inflight = false
			l.fetchCancel = nil
			if res.gen == l.gen {
				if res.err != nil {
					l.apply(PollFailed{Err: res.err})
				} else {
					l.apply(Polled{Status: res.rec.Status})
				}
			}
			if l.pollAfterDrain {
				l.pollAfterDrain = false
				if l.ticker != nil {
					l.poll()
				}
			}
		case <-l.stallC:
			l.stall, l.stallC = nil, nil
			l.apply(StallExpired{Status: l.stallFor})
		case cmd := <-l.s.commands:
			cmd.reply <- l.apply(cmd.ev)
		}
	}
}

func (l *loop) apply(ev Event) State {
	prev := l.s.Snapshot()
	next, effects := Transition(l.s.opts.Texts, prev, ev)
	for _, eff := range effects {
		switch e := eff.(type) {
		case ArmStall:
			l.armStall(e.Status)
		case CancelStall:
			l.cancelStall()
		case StopPolling:
			l.stopPolling()
		case StartPolling:
			l.startTicker()
			if l.inflight {
				l.pollAfterDrain = true
			} else {
				l.poll()
			}
		case Navigate:
			metrics.IncSessionCompleted()
		}
	}
	if next != prev {
		if next.Phase != prev.Phase {
			l.logTransition(prev, next, ev)
		}
		l.s.publish(next)
	}
	return next
}

func (l *loop) poll() {
	if l.inflight {
		return
	}
	l.inflight = true
	l.gen++
	ctx, cancel := context.WithCancel(l.ctx)
	l.fetchCancel = cancel
	go func(gen uint64) {
		defer cancel()
		rec, err := l.s.fetcher.Fetch(ctx, l.s.documentID)
		select {
		case l.results <- fetchResult{gen: gen, rec: rec, err: err}:
		case <-l.ctx.Done():
		}
	}(l.gen)
}

func (l *loop) startTicker() {
	if l.ticker != nil {
		return
	}
	l.ticker = l.s.opts.Clock.Ticker(l.s.opts.Interval)
	l.tick = l.ticker.C
}

func (l *loop) stopPolling() {
	if l.ticker != nil {
		l.ticker.Stop()
		l.ticker, l.tick = nil, nil
	}
	// The outstanding fetch keeps inflight set until its result is drained;
	// bumping gen makes that result stale.
	if l.fetchCancel != nil {
		l.fetchCancel()
	}
	l.gen++
}

func (l *loop) armStall(status int) {
	l.cancelStall()
	l.stall = l.s.opts.Clock.Timer(l.s.opts.StallTimeout)
	l.stallC = l.stall.C
	l.stallFor = status
}

func (l *loop) cancelStall() {
	if l.stall != nil {
		l.stall.Stop()
	}
	l.stall, l.stallC = nil, nil
}

func (l *loop) teardown() {
	if l.ticker != nil {
		l.ticker.Stop()
		l.ticker, l.tick = nil, nil
	}
	l.cancelStall()
	if l.fetchCancel != nil {
		l.fetchCancel()
	}
}

func (l *loop) logTransition(prev, next State, ev Event) {
	fields := map[string]any{
		"view_id":     l.s.viewID,
		"document_id": l.s.documentID,
		"from":        string(prev.Phase),
		"to":          string(next.Phase),
		"last_status": next.LastStatus,
		"polls":       next.Polls,
	}
	switch next.Phase {
	case PhaseStalled:
		metrics.IncSessionStalled()
		fields["stage"] = next.Stage
		fields["reason"] = next.Reason
	case PhaseFailed:
		metrics.IncSessionFailed()
		fields["reason"] = next.Reason
		if e, ok := ev.(PollFailed); ok && e.Err != nil {
			fields["error"] = e.Err.Error()
		}
	case PhasePolling:
		metrics.IncSessionRetried()
	}
	if next.Phase == PhasePolling || next.Phase == PhaseComplete {
		telemetry.Info("loading.transition", fields)
		return
	}
	telemetry.Warn("loading.transition", fields)
}
