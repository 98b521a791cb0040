package quiz

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/asmitanand/mentorly/internal/model"
)

// State identifies where a quiz session is in its lifecycle.
type State string

const (
	StateConfiguring State = "configuring"
	StateGenerating  State = "generating"
	StateInProgress  State = "in-progress"
	StateScored      State = "scored"
)

var (
	// ErrIncompleteConfig is returned when class, subject or chapter is
	// empty at generation time.
	ErrIncompleteConfig = errors.New("class, subject and chapter are required")

	// ErrGenerationPending is returned when Generate is called while a prior
	// generation is still in flight.
	ErrGenerationPending = errors.New("quiz generation already in progress")

	// ErrNotInProgress is returned by answer, navigation and submit
	// operations outside the in-progress state.
	ErrNotInProgress = errors.New("no quiz in progress")
)

// Session is one quiz attempt from configuration through scoring. Like the
// call session, countdown time is fed in through TickSecond so expiry is
// deterministic under test.
type Session struct {
	mu sync.Mutex

	gen     *Generator
	timeout time.Duration // bound on the generation call, zero means none

	state     State
	config    model.QuizConfiguration
	questions []model.QuizQuestion
	answers   []string
	index     int
	remaining time.Duration
	score     model.QuizScore
}

// NewSession creates a quiz session in the configuring state.
func NewSession(gen *Generator, timeout time.Duration) *Session {
	return &Session{gen: gen, timeout: timeout, state: StateConfiguring}
}

// State returns the session's current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Config returns the most recent configuration. After Restart it serves as
// the defaults for the next attempt.
func (s *Session) Config() model.QuizConfiguration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config
}

// Questions returns the generated questions.
func (s *Session) Questions() []model.QuizQuestion {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.QuizQuestion, len(s.questions))
	copy(out, s.questions)
	return out
}

// Answers returns a copy of the recorded answers.
func (s *Session) Answers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.answers))
	copy(out, s.answers)
	return out
}

// Index returns the current question index.
func (s *Session) Index() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// Remaining returns the countdown value.
func (s *Session) Remaining() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remaining
}

// validateConfig applies defaults and checks the required fields.
func validateConfig(cfg *model.QuizConfiguration) error {
	if strings.TrimSpace(cfg.Class) == "" ||
		strings.TrimSpace(cfg.Subject) == "" ||
		strings.TrimSpace(cfg.Chapter) == "" {
		return ErrIncompleteConfig
	}
	if cfg.Difficulty == "" {
		cfg.Difficulty = model.DifficultyModerate
	}
	if !model.ValidDifficulty(cfg.Difficulty) {
		return ErrIncompleteConfig
	}
	if cfg.TimeLimitMin <= 0 {
		cfg.TimeLimitMin = 10
	}
	return nil
}

// Generate requests a quiz for cfg and, on success, starts the attempt with
// a fresh answer slate and a countdown of cfg.TimeLimitMin minutes. On any
// failure the session stays in configuring so the user can retry.
func (s *Session) Generate(ctx context.Context, cfg model.QuizConfiguration) error {
	if err := validateConfig(&cfg); err != nil {
		return err
	}

	s.mu.Lock()
	if s.state == StateGenerating {
		s.mu.Unlock()
		return ErrGenerationPending
	}
	if s.state != StateConfiguring {
		s.mu.Unlock()
		return errors.New("quiz already generated; restart first")
	}
	s.state = StateGenerating
	s.config = cfg
	s.mu.Unlock()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	questions, err := s.gen.Generate(ctx, cfg)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = StateConfiguring
		return err
	}
	s.questions = questions
	s.answers = make([]string, len(questions))
	s.index = 0
	s.remaining = time.Duration(cfg.TimeLimitMin) * time.Minute
	s.state = StateInProgress
	return nil
}

// AnswerCurrent overwrites the answer for the current question. The index
// does not advance.
func (s *Session) AnswerCurrent(value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateInProgress {
		return ErrNotInProgress
	}
	s.answers[s.index] = value
	return nil
}

// Navigate moves the current index by delta, clamped to the question range.
// Stored answers are untouched.
func (s *Session) Navigate(delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateInProgress {
		return ErrNotInProgress
	}
	s.index += delta
	if s.index < 0 {
		s.index = 0
	}
	if s.index > len(s.questions)-1 {
		s.index = len(s.questions) - 1
	}
	return nil
}

// TickSecond feeds one second into the countdown. Reaching zero submits the
// attempt with whatever answers are recorded at that instant.
func (s *Session) TickSecond() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateInProgress {
		return
	}
	s.remaining -= time.Second
	if s.remaining <= 0 {
		s.remaining = 0
		s.finishLocked()
	}
}

// Submit grades the attempt and moves to scored. Callable at any question
// index.
func (s *Session) Submit() (model.QuizScore, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateInProgress {
		return model.QuizScore{}, ErrNotInProgress
	}
	s.finishLocked()
	return s.score, nil
}

// Score returns the grade of a scored attempt.
func (s *Session) Score() (model.QuizScore, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateScored {
		return model.QuizScore{}, errors.New("quiz not scored yet")
	}
	return s.score, nil
}

func (s *Session) finishLocked() {
	s.score = GradeAttempt(s.questions, s.answers)
	s.state = StateScored
}

// Restart discards the questions, answers and timer and returns to
// configuring. The prior configuration is kept as defaults.
func (s *Session) Restart() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.questions = nil
	s.answers = nil
	s.index = 0
	s.remaining = 0
	s.score = model.QuizScore{}
	s.state = StateConfiguring
}

// GradeAttempt scores answers against questions by case-insensitive exact
// match. There is no partial credit and no fuzzy matching: a free-text
// answer that is right in substance but differs in text scores wrong.
func GradeAttempt(questions []model.QuizQuestion, answers []string) model.QuizScore {
	score := model.QuizScore{Total: len(questions)}
	for i, q := range questions {
		if i >= len(answers) {
			break
		}
		if answerMatches(answers[i], q.CorrectAnswer) {
			score.Correct++
		}
	}
	if score.Total > 0 {
		score.Percentage = float64(score.Correct) / float64(score.Total) * 100
	}
	return score
}

func answerMatches(answer, correct string) bool {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return false
	}
	return strings.EqualFold(answer, strings.TrimSpace(correct))
}
