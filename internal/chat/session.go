package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/asmitanand/mentorly/internal/model"
)

// State identifies where a conversation session is in its lifecycle.
type State string

const (
	StateEmpty         State = "empty"
	StateReady         State = "ready"
	StateAwaitingReply State = "awaiting-reply"
)

var (
	// ErrEmptyMessage is returned when a submitted message is empty or
	// whitespace-only. No state changes.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrReplyPending is returned when a message is submitted while a prior
	// reply is still in flight. Exactly one request may be outstanding per
	// session.
	ErrReplyPending = errors.New("a reply is already pending")
)

// Session is one conversation between a learner and a mentor. The message log
// is append-only: entries are never mutated or removed, and a session seeds
// the log with the mentor's greeting exactly once.
type Session struct {
	mu sync.Mutex

	ID      string
	Mentor  model.Mentor
	Profile *model.LearnerProfile

	state    State
	log      []model.Message
	svc      *Service
	timeout  time.Duration
	playback *PlaybackController
}

// NewSession creates a session for the given mentor. The session starts empty;
// call Initialize to seed the greeting. timeout bounds each reply request;
// zero means no bound.
func NewSession(svc *Service, mentor model.Mentor, profile *model.LearnerProfile, playback SpeechPlayback, timeout time.Duration) *Session {
	return &Session{
		ID:       uuid.NewString(),
		Mentor:   mentor,
		Profile:  profile,
		state:    StateEmpty,
		svc:      svc,
		timeout:  timeout,
		playback: NewPlaybackController(playback),
	}
}

// Initialize seeds the log with the mentor's greeting as the first assistant
// turn. Calling it again on an initialized session is a no-op.
func (s *Session) Initialize() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateEmpty {
		return
	}
	s.log = append(s.log, model.Message{
		Role:    model.RoleAssistant,
		Content: s.Mentor.Greeting,
	})
	s.state = StateReady
}

// State returns the session's current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Messages returns a copy of the conversation log.
func (s *Session) Messages() []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Message, len(s.log))
	copy(out, s.log)
	return out
}

// Submit appends text as a user turn and requests the mentor's reply. It
// rejects empty or whitespace-only text with ErrEmptyMessage and rejects
// submission while a prior reply is pending with ErrReplyPending; neither
// rejection changes state.
//
// On success the reply is appended as an assistant turn and returned. On
// failure the user's message stays in the log, no assistant turn is appended,
// and the session returns to ready so the learner can retry.
func (s *Session) Submit(ctx context.Context, text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", ErrEmptyMessage
	}

	s.mu.Lock()
	if s.state == StateAwaitingReply {
		s.mu.Unlock()
		return "", ErrReplyPending
	}
	if s.state == StateEmpty {
		s.mu.Unlock()
		return "", errors.New("session not initialized")
	}
	s.log = append(s.log, model.Message{Role: model.RoleUser, Content: trimmed})
	s.state = StateAwaitingReply
	history := make([]model.Message, len(s.log))
	copy(history, s.log)
	s.mu.Unlock()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	reply, err := s.svc.Reply(ctx, s.Mentor, history, s.Profile)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateReady
	if err != nil {
		return "", err
	}
	s.log = append(s.log, model.Message{Role: model.RoleAssistant, Content: reply})
	return reply, nil
}

// Speak plays the given message text aloud, cancelling any playback already
// in progress.
func (s *Session) Speak(text string) error {
	return s.playback.Play(text)
}

// StopSpeaking stops any in-flight playback.
func (s *Session) StopSpeaking() {
	s.playback.Stop()
}
