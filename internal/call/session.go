package call

import (
	"errors"
	"sync"
	"time"

	"github.com/asmitanand/mentorly/internal/mentor"
	"github.com/asmitanand/mentorly/internal/model"
)

// State identifies where a call session is in its lifecycle.
type State string

const (
	StateIdle       State = "idle"
	StateSelecting  State = "selecting"
	StateConnecting State = "connecting"
	StateConnected  State = "connected"
	StateEnded      State = "ended"
)

const (
	// DefaultConnectDelay is the simulated setup time before a call goes
	// live. No real media negotiation happens here.
	DefaultConnectDelay = 2500 * time.Millisecond

	// DefaultBudget is the per-call talk-time allowance.
	DefaultBudget = 600 * time.Second
)

var (
	// ErrInvalidTransition is returned when an operation is not legal in the
	// session's current state.
	ErrInvalidTransition = errors.New("operation not allowed in current call state")
)

// Summary describes a finished call for history recording.
type Summary struct {
	Mentor    model.Mentor
	Duration  time.Duration // talk time actually used
	StartedAt time.Time
}

// Session is one simulated live-talk call. Time is fed in explicitly through
// Advance so transitions are deterministic under test; a production caller
// drives Advance from a ticker (see Runner).
type Session struct {
	mu sync.Mutex

	registry     *mentor.Registry
	connectDelay time.Duration
	budget       time.Duration

	state        State
	mentor       model.Mentor
	hasMentor    bool
	connectWait  time.Duration // time left in connecting
	remaining    time.Duration // countdown, meaningful only while connected
	startedAt    time.Time
	endedFired   bool
	onEnded      func(Summary)
	now          func() time.Time
}

// Option adjusts a Session at construction.
type Option func(*Session)

// WithConnectDelay overrides the simulated connection delay.
func WithConnectDelay(d time.Duration) Option {
	return func(s *Session) { s.connectDelay = d }
}

// WithBudget overrides the talk-time allowance.
func WithBudget(d time.Duration) Option {
	return func(s *Session) { s.budget = d }
}

// WithOnEnded registers a callback invoked exactly once when the call ends,
// whether by countdown expiry or an explicit end action.
func WithOnEnded(fn func(Summary)) Option {
	return func(s *Session) { s.onEnded = fn }
}

// WithClock overrides the wall-clock source used to stamp call start times.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// NewSession creates an idle call session that resolves mentors through the
// given registry.
func NewSession(registry *mentor.Registry, opts ...Option) *Session {
	s := &Session{
		registry:     registry,
		connectDelay: DefaultConnectDelay,
		budget:       DefaultBudget,
		state:        StateIdle,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the session's current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Mentor returns the mentor on the call and whether one has been selected.
func (s *Session) Mentor() (model.Mentor, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mentor, s.hasMentor
}

// Remaining returns the countdown value. It only decrements while connected.
func (s *Session) Remaining() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remaining
}

// OpenPicker opens the subject-selection overlay.
func (s *Session) OpenPicker() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle && s.state != StateEnded {
		return ErrInvalidTransition
	}
	s.state = StateSelecting
	return nil
}

// SelectSubject resolves a mentor for the subject and begins connecting.
// Resolution is deterministic: when several mentors share a subject the first
// in catalog order is chosen. Returns mentor.ErrNotFound for an unknown
// subject, leaving the session in selecting.
func (s *Session) SelectSubject(subject string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateSelecting && s.state != StateIdle {
		return ErrInvalidTransition
	}
	m, err := s.registry.BySubject(subject)
	if err != nil {
		return err
	}
	s.mentor = m
	s.hasMentor = true
	s.beginConnecting()
	return nil
}

// beginConnecting resets the timers and enters connecting. Caller holds mu.
func (s *Session) beginConnecting() {
	s.state = StateConnecting
	s.connectWait = s.connectDelay
	s.remaining = s.budget
	s.endedFired = false
	s.startedAt = s.now()
}

// Advance feeds elapsed time into the session. While connecting it counts
// down the simulated setup delay and then goes live; while connected it
// decrements the countdown and ends the call when it reaches zero. Advancing
// in any other state is a no-op, so a tick that straggles in after an end
// action cannot fire a second transition.
func (s *Session) Advance(elapsed time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for elapsed > 0 {
		switch s.state {
		case StateConnecting:
			if elapsed < s.connectWait {
				s.connectWait -= elapsed
				return
			}
			elapsed -= s.connectWait
			s.connectWait = 0
			s.state = StateConnected
		case StateConnected:
			if elapsed < s.remaining {
				s.remaining -= elapsed
				return
			}
			s.remaining = 0
			s.finish()
			return
		default:
			return
		}
	}
}

// End terminates the call immediately, independent of the countdown.
func (s *Session) End() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateConnecting && s.state != StateConnected {
		return ErrInvalidTransition
	}
	s.finish()
	return nil
}

// finish moves to ended and fires the callback once. Caller holds mu.
func (s *Session) finish() {
	s.state = StateEnded
	if s.endedFired {
		return
	}
	s.endedFired = true
	if s.onEnded != nil {
		summary := Summary{
			Mentor:    s.mentor,
			Duration:  s.budget - s.remaining,
			StartedAt: s.startedAt,
		}
		s.onEnded(summary)
	}
}

// Reconnect replays the connection for the same mentor with a fresh
// countdown. Only valid after a call has ended.
func (s *Session) Reconnect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateEnded || !s.hasMentor {
		return ErrInvalidTransition
	}
	s.beginConnecting()
	return nil
}

// ReselectSubject discards the current mentor and reopens the subject picker.
func (s *Session) ReselectSubject() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateEnded {
		return ErrInvalidTransition
	}
	s.mentor = model.Mentor{}
	s.hasMentor = false
	s.state = StateSelecting
	return nil
}
