package model

import "time"

// Role represents a chat message role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Mentor represents a tutoring persona. Mentors are loaded once at startup
// from a static catalog and never change at runtime.
type Mentor struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Subject     string   `json:"subject"`
	Description string   `json:"description"`
	Avatar      string   `json:"avatar"`
	Greeting    string   `json:"greeting"`
	Expertise   []string `json:"expertise"`
}

// Message is one turn in a conversation. Messages are append-only: once added
// to a conversation log they are never mutated or removed.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// LearnerProfile holds the optional personalization fields forwarded into the
// chat system instruction.
type LearnerProfile struct {
	Name  string `json:"name"`
	Class string `json:"class"`
	Goal  string `json:"goal"`
}

// Difficulty represents quiz difficulty level.
type Difficulty string

const (
	DifficultyEasy     Difficulty = "easy"
	DifficultyModerate Difficulty = "moderate"
	DifficultyHard     Difficulty = "hard"
)

// ValidDifficulty reports whether d is one of the supported levels.
func ValidDifficulty(d Difficulty) bool {
	switch d {
	case DifficultyEasy, DifficultyModerate, DifficultyHard:
		return true
	}
	return false
}

// QuizConfiguration holds the user-supplied quiz parameters. A fresh one is
// created each time the quiz flow starts; it is never persisted.
type QuizConfiguration struct {
	Class        string     `json:"class"`
	Subject      string     `json:"subject"`
	Chapter      string     `json:"chapter"`
	Difficulty   Difficulty `json:"difficulty"`
	TimeLimitMin int        `json:"timeLimit"`
}

// QuizQuestion is a generated question. Absence of Options means free text.
// Questions are immutable once received from the generator.
type QuizQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
}

// QuizScore is the result of grading a QuizAttempt.
type QuizScore struct {
	Correct    int     `json:"correct"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

// QuizResult is a completed quiz recorded in the study-history store.
type QuizResult struct {
	ID         int64      `json:"id"`
	Class      string     `json:"class"`
	Subject    string     `json:"subject"`
	Chapter    string     `json:"chapter"`
	Difficulty Difficulty `json:"difficulty"`
	Correct    int        `json:"correct"`
	Total      int        `json:"total"`
	TakenAt    time.Time  `json:"taken_at"`
}

// CallLog is a finished live-talk call recorded in the study-history store.
type CallLog struct {
	ID        int64     `json:"id"`
	MentorID  string    `json:"mentor_id"`
	Subject   string    `json:"subject"`
	Duration  int       `json:"duration_seconds"`
	StartedAt time.Time `json:"started_at"`
}

// SubjectStats aggregates quiz performance for one subject.
type SubjectStats struct {
	Subject string  `json:"subject"`
	Quizzes int     `json:"quizzes"`
	Average float64 `json:"average"`
	Best    float64 `json:"best"`
}

// Analytics is the study summary served to the dashboard.
type Analytics struct {
	TotalQuizzes   int            `json:"total_quizzes"`
	OverallAverage float64        `json:"overall_average"`
	TotalCallMin   int            `json:"total_call_minutes"`
	Subjects       []SubjectStats `json:"subjects"`
}

// ServerConfig holds runtime server parameters set via CLI flags.
type ServerConfig struct {
	CORSOrigin    string        // Access-Control-Allow-Origin value
	ChatTimeout   time.Duration // upper bound on one chat-completion call
	QuizTimeout   time.Duration // upper bound on one quiz-generation call
	QuizQuestions int           // questions per generated quiz
	DefaultLang   string        // fallback UI language
}
