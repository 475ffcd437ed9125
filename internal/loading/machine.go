package loading

import (
	"net/url"

	"contract-console/internal/documents"
	"contract-console/internal/shared/config"
)

// Phase is the coarse state of a loading view.
type Phase string

const (
	PhasePolling  Phase = "POLLING"
	PhaseStalled  Phase = "STALLED"
	PhaseFailed   Phase = "FAILED"
	PhaseComplete Phase = "COMPLETE"
)

// State is an immutable snapshot of one loading view. Values are replaced,
// never mutated in place.
type State struct {
	DocumentID string
	Phase      Phase
	LastStatus int
	// Stage is the error table key for a stalled view (LastStatus + 1).
	Stage  int
	Reason string
	// Polls counts fetch results applied while polling.
	Polls int
	// StallArmed is set while a stall timer runs for StallArmedFor.
	StallArmed    bool
	StallArmedFor int
	// Target is the next view once the analysis completed.
	Target string
}

// Initial returns the state of a freshly opened loading view.
func Initial(documentID string) State {
	return State{DocumentID: documentID, Phase: PhasePolling}
}

// Terminal reports whether polling has stopped for good or until a retry.
func (s State) Terminal() bool { return s.Phase != PhasePolling }

// Message is the progress line shown for the state. Completed views show
// nothing since they are navigating away.
func (s State) Message(texts config.Texts) string {
	if s.Phase == PhaseComplete {
		return ""
	}
	return texts.ProgressMessage(s.LastStatus)
}

// Event is an input to Transition.
type Event interface{ event() }

// Polled is a successful status fetch.
type Polled struct{ Status int }

// PollFailed is a status fetch that never produced a record.
type PollFailed struct{ Err error }

// StallExpired fires when a status stayed unchanged for the stall timeout.
type StallExpired struct{ Status int }

// Retry is the user's manual retry.
type Retry struct{}

func (Polled) event()       {}
func (PollFailed) event()   {}
func (StallExpired) event() {}
func (Retry) event()        {}

// Effect is a side effect the driver must perform after a transition.
type Effect interface{ effect() }

type ArmStall struct{ Status int }
type CancelStall struct{}
type StopPolling struct{}
type StartPolling struct{}
type Navigate struct{ Path string }

func (ArmStall) effect()     {}
func (CancelStall) effect()  {}
func (StopPolling) effect()  {}
func (StartPolling) effect() {}
func (Navigate) effect()     {}

// VisualizationPath is where a completed document is shown.
func VisualizationPath(documentID string) string {
	return "/visualization/" + url.PathEscape(documentID)
}

// Transition is the pure poll state machine. It never blocks and never
// touches timers; the returned effects say what the driver must do.
func Transition(texts config.Texts, s State, ev Event) (State, []Effect) {
	if _, ok := ev.(Retry); ok {
		if s.Phase != PhaseStalled && s.Phase != PhaseFailed {
			return s, nil
		}
		next := Initial(s.DocumentID)
		next.Polls = s.Polls
		return next, []Effect{StartPolling{}}
	}

	// Late results after a stop, stall or completion are dropped.
	if s.Phase != PhasePolling {
		return s, nil
	}

	switch e := ev.(type) {
	case PollFailed:
		next := s
		next.Polls++
		next.Phase = PhaseFailed
		next.Reason = texts.ConnectionError()
		next.StallArmed = false
		return next, []Effect{CancelStall{}, StopPolling{}}

	case Polled:
		next := s
		next.Polls++
		if e.Status == documents.StatusComplete {
			next.LastStatus = e.Status
			next.Phase = PhaseComplete
			next.StallArmed = false
			next.Target = VisualizationPath(s.DocumentID)
			return next, []Effect{CancelStall{}, StopPolling{}, Navigate{Path: next.Target}}
		}
		if e.Status == s.LastStatus {
			if s.StallArmed && s.StallArmedFor == e.Status {
				return next, nil
			}
			next.StallArmed = true
			next.StallArmedFor = e.Status
			return next, []Effect{ArmStall{Status: e.Status}}
		}
		// Any differing status counts as progress, including one that went
		// backwards.
		next.LastStatus = e.Status
		next.StallArmed = false
		return next, []Effect{CancelStall{}}

	case StallExpired:
		if !s.StallArmed || s.StallArmedFor != e.Status || s.LastStatus != e.Status {
			return s, nil
		}
		next := s
		next.Phase = PhaseStalled
		next.Stage = e.Status + 1
		next.Reason = texts.StageError(next.Stage)
		next.StallArmed = false
		return next, []Effect{StopPolling{}}
	}

	return s, nil
}
