package health

import "contract-console/internal/shared/metrics"

// SessionCounter reports how many loading views are open.
type SessionCounter interface {
	Len() int
}

// Service encapsulates health-related checks.
type Service struct {
	Sessions SessionCounter
	Backend  string
}

// NewService constructs a new health service.
func NewService(sessions SessionCounter, backend string) *Service {
	return &Service{Sessions: sessions, Backend: backend}
}

// Status returns a simple health payload.
func (s *Service) Status() map[string]any {
	out := map[string]any{
		"ok":                 true,
		"backend":            s.Backend,
		"poll_ticks_skipped": metrics.PollTicksSkipped(),
	}
	if s.Sessions != nil {
		out["sessions"] = s.Sessions.Len()
	}
	return out
}
