package loading

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"contract-console/internal/shared/metrics"
	"contract-console/internal/shared/telemetry"
)

// ErrSessionNotFound is returned for unknown or already reaped view ids.
var ErrSessionNotFound = errors.New("loading view not found")

// A page showing a stall or connection error may sit untouched while the user
// decides to retry, so those sessions get a longer idle allowance.
const parkedIdle = 10 * time.Minute

// Registry tracks one poll session per open loading page.
type Registry struct {
	fetcher Fetcher
	opts    Options
	idle    time.Duration
	parked  time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry builds a registry. Polling sessions idle for longer than idle
// are torn down by Run; stalled or failed ones are kept for parkedIdle.
func NewRegistry(f Fetcher, opts Options, idle time.Duration) *Registry {
	if idle <= 0 {
		idle = 15 * time.Second
	}
	parked := parkedIdle
	if parked < idle {
		parked = idle
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Registry{
		fetcher:  f,
		opts:     opts.withDefaults(),
		idle:     idle,
		parked:   parked,
		ctx:      ctx,
		cancel:   cancel,
		sessions: make(map[string]*Session),
	}
}

// Open starts a fresh session for a newly rendered loading page.
func (r *Registry) Open(documentID string) *Session {
	viewID := uuid.NewString()
	s := Start(r.ctx, viewID, documentID, r.fetcher, r.opts)
	r.mu.Lock()
	r.sessions[viewID] = s
	r.mu.Unlock()
	telemetry.Info("loading.session.open", map[string]any{
		"view_id":     viewID,
		"document_id": documentID,
	})
	return s
}

// Get returns a live session and marks it as seen.
func (r *Registry) Get(viewID string) (*Session, error) {
	r.mu.Lock()
	s, ok := r.sessions[viewID]
	r.mu.Unlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.Touch()
	return s, nil
}

// Release tears a session down.
func (r *Registry) Release(viewID string) {
	r.mu.Lock()
	s, ok := r.sessions[viewID]
	delete(r.sessions, viewID)
	r.mu.Unlock()
	if ok {
		s.Close()
	}
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Reap tears down sessions whose page went quiet and returns how many.
func (r *Registry) Reap() int {
	now := r.opts.Clock.Now()
	var stale []*Session
	r.mu.Lock()
	for id, s := range r.sessions {
		if now.Sub(s.IdleSince()) > r.allowance(s.Snapshot()) {
			stale = append(stale, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range stale {
		s.Close()
		metrics.IncSessionReaped()
		telemetry.Info("loading.session.reaped", map[string]any{
			"view_id":     s.ViewID(),
			"document_id": s.DocumentID(),
			"phase":       string(s.Snapshot().Phase),
		})
	}
	return len(stale)
}

func (r *Registry) allowance(st State) time.Duration {
	switch st.Phase {
	case PhaseStalled, PhaseFailed:
		return r.parked
	default:
		return r.idle
	}
}

// Run reaps idle sessions until ctx is done, then closes everything.
func (r *Registry) Run(ctx context.Context) error {
	every := r.idle / 2
	if every < time.Second {
		every = time.Second
	}
	ticker := r.opts.Clock.Ticker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.Shutdown()
			return nil
		case <-ticker.C:
			r.Reap()
		}
	}
}

// Shutdown closes every session.
func (r *Registry) Shutdown() {
	r.cancel()
	r.mu.Lock()
	all := make([]*Session, 0, len(r.sessions))
	for id, s := range r.sessions {
		all = append(all, s)
		delete(r.sessions, id)
	}
	r.mu.Unlock()
	for _, s := range all {
		s.Close()
	}
}
