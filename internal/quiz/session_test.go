package quiz

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/asmitanand/mentorly/internal/llm"
	"github.com/asmitanand/mentorly/internal/model"
)

const validPayload = `{"questions":[
  {"question":"What is 2+2?","options":["3","4","5","6"],"correct_answer":"4","explanation":"Basic addition."},
  {"question":"Capital of France?","correct_answer":"Paris","explanation":"Geography."},
  {"question":"What is 10/2?","options":["2","5","10","20"],"correct_answer":"5","explanation":"Division."},
  {"question":"Square root of 9?","correct_answer":"3","explanation":"Roots."},
  {"question":"What is 3*3?","options":["6","9","12","3"],"correct_answer":"9","explanation":"Multiplication."}
]}`

var testConfig = model.QuizConfiguration{
	Class:        "8",
	Subject:      "Mathematics",
	Chapter:      "Arithmetic",
	Difficulty:   model.DifficultyEasy,
	TimeLimitMin: 10,
}

func inProgressSession(t *testing.T, payload string) *Session {
	t.Helper()
	provider := llm.NewMockProvider(llm.MockResponse{Text: payload})
	sess := NewSession(NewGenerator(provider, 5), 0)
	if err := sess.Generate(context.Background(), testConfig); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if sess.State() != StateInProgress {
		t.Fatalf("state = %q, want %q", sess.State(), StateInProgress)
	}
	return sess
}

func TestGenerateStartsAttempt(t *testing.T) {
	sess := inProgressSession(t, validPayload)

	if got := len(sess.Questions()); got != 5 {
		t.Fatalf("questions = %d, want 5", got)
	}
	answers := sess.Answers()
	if len(answers) != 5 {
		t.Fatalf("answer slots = %d, want 5", len(answers))
	}
	for i, a := range answers {
		if a != "" {
			t.Errorf("answer %d = %q, want empty", i, a)
		}
	}
	if sess.Index() != 0 {
		t.Errorf("index = %d, want 0", sess.Index())
	}
	if got := sess.Remaining(); got != 10*time.Minute {
		t.Errorf("remaining = %v, want 10m", got)
	}
}

func TestGenerateStripsCodeFences(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"bare", validPayload},
		{"json fence", "```json\n" + validPayload + "\n```"},
		{"plain fence", "```\n" + validPayload + "\n```"},
		{"surrounding whitespace", "\n\n  " + validPayload + "  \n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := inProgressSession(t, tt.payload)
			if got := len(sess.Questions()); got != 5 {
				t.Errorf("questions = %d, want 5", got)
			}
		})
	}
}

func TestGenerateFailureStaysConfiguring(t *testing.T) {
	tests := []struct {
		name     string
		response llm.MockResponse
	}{
		{"provider failure", llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("boom")}}},
		{"not json", llm.MockResponse{Text: "Sorry, I cannot generate a quiz."}},
		{"empty questions", llm.MockResponse{Text: `{"questions":[]}`}},
		{"wrong count", llm.MockResponse{Text: `{"questions":[{"question":"q","correct_answer":"a","explanation":"e"}]}`}},
		{"missing answer", llm.MockResponse{Text: `{"questions":[{"question":"q","explanation":"e"},{"question":"q","correct_answer":"a"},{"question":"q","correct_answer":"a"},{"question":"q","correct_answer":"a"},{"question":"q","correct_answer":"a"}]}`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := llm.NewMockProvider(tt.response)
			sess := NewSession(NewGenerator(provider, 5), 0)
			if err := sess.Generate(context.Background(), testConfig); err == nil {
				t.Fatal("Generate succeeded, want error")
			}
			if sess.State() != StateConfiguring {
				t.Errorf("state = %q, want %q for retry", sess.State(), StateConfiguring)
			}
		})
	}
}

func TestGenerateMalformedPayloadTyped(t *testing.T) {
	provider := llm.NewMockProvider(llm.MockResponse{Text: "not json at all"})
	sess := NewSession(NewGenerator(provider, 5), 0)
	err := sess.Generate(context.Background(), testConfig)
	var malformed *ErrMalformedPayload
	if !errors.As(err, &malformed) {
		t.Fatalf("err = %v, want ErrMalformedPayload", err)
	}
}

func TestGenerateValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  model.QuizConfiguration
	}{
		{"missing class", model.QuizConfiguration{Subject: "Math", Chapter: "Algebra"}},
		{"missing subject", model.QuizConfiguration{Class: "8", Chapter: "Algebra"}},
		{"missing chapter", model.QuizConfiguration{Class: "8", Subject: "Math"}},
		{"whitespace chapter", model.QuizConfiguration{Class: "8", Subject: "Math", Chapter: "  "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := llm.NewMockProvider()
			sess := NewSession(NewGenerator(provider, 5), 0)
			if err := sess.Generate(context.Background(), tt.cfg); !errors.Is(err, ErrIncompleteConfig) {
				t.Fatalf("err = %v, want ErrIncompleteConfig", err)
			}
			if provider.CallCount() != 0 {
				t.Error("provider called despite invalid configuration")
			}
			if sess.State() != StateConfiguring {
				t.Errorf("state = %q, want %q", sess.State(), StateConfiguring)
			}
		})
	}
}

func TestGenerateAppliesDefaults(t *testing.T) {
	provider := llm.NewMockProvider(llm.MockResponse{Text: validPayload})
	sess := NewSession(NewGenerator(provider, 5), 0)
	err := sess.Generate(context.Background(), model.QuizConfiguration{
		Class: "8", Subject: "Mathematics", Chapter: "Arithmetic",
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	cfg := sess.Config()
	if cfg.Difficulty != model.DifficultyModerate {
		t.Errorf("difficulty = %q, want default moderate", cfg.Difficulty)
	}
	if cfg.TimeLimitMin != 10 {
		t.Errorf("time limit = %d, want default 10", cfg.TimeLimitMin)
	}
}

func TestGradeAttempt(t *testing.T) {
	questions := []model.QuizQuestion{{Question: "Capital of France?", CorrectAnswer: "Paris"}}
	tests := []struct {
		name    string
		answer  string
		correct int
		percent float64
	}{
		{"exact", "Paris", 1, 100},
		{"case-insensitive", "paris", 1, 100},
		{"uppercase", "PARIS", 1, 100},
		{"wrong", "london", 0, 0},
		{"unanswered", "", 0, 0},
		{"semantically right but textually off", "Paris, France", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := GradeAttempt(questions, []string{tt.answer})
			if score.Correct != tt.correct || score.Total != 1 {
				t.Errorf("score = %d/%d, want %d/1", score.Correct, score.Total, tt.correct)
			}
			if score.Percentage != tt.percent {
				t.Errorf("percentage = %v, want %v", score.Percentage, tt.percent)
			}
		})
	}
}

func TestNavigateClamps(t *testing.T) {
	sess := inProgressSession(t, validPayload)

	if err := sess.Navigate(-1); err != nil {
		t.Fatal(err)
	}
	if sess.Index() != 0 {
		t.Errorf("index = %d after back from 0, want 0", sess.Index())
	}
	for i := 0; i < 10; i++ {
		if err := sess.Navigate(1); err != nil {
			t.Fatal(err)
		}
	}
	if sess.Index() != 4 {
		t.Errorf("index = %d after forward past end, want 4", sess.Index())
	}
}

func TestAnswerCurrentOverwrites(t *testing.T) {
	sess := inProgressSession(t, validPayload)

	if err := sess.AnswerCurrent("3"); err != nil {
		t.Fatal(err)
	}
	if err := sess.AnswerCurrent("4"); err != nil {
		t.Fatal(err)
	}
	if sess.Index() != 0 {
		t.Errorf("index = %d, answering must not advance", sess.Index())
	}
	if got := sess.Answers()[0]; got != "4" {
		t.Errorf("answer 0 = %q, want overwrite to 4", got)
	}

	// Navigation leaves stored answers untouched.
	if err := sess.Navigate(1); err != nil {
		t.Fatal(err)
	}
	if got := sess.Answers()[0]; got != "4" {
		t.Errorf("answer 0 = %q after navigate, want 4", got)
	}
}

func TestExplicitSubmitScores(t *testing.T) {
	sess := inProgressSession(t, validPayload)

	answers := []string{"4", "paris", "5", "wrong", ""}
	for i, a := range answers {
		if a != "" {
			if err := sess.AnswerCurrent(a); err != nil {
				t.Fatal(err)
			}
		}
		if i < len(answers)-1 {
			if err := sess.Navigate(1); err != nil {
				t.Fatal(err)
			}
		}
	}

	score, err := sess.Submit()
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if score.Correct != 3 || score.Total != 5 {
		t.Errorf("score = %d/%d, want 3/5", score.Correct, score.Total)
	}
	if sess.State() != StateScored {
		t.Errorf("state = %q, want %q", sess.State(), StateScored)
	}

	// Operations after scoring are rejected.
	if err := sess.AnswerCurrent("x"); !errors.Is(err, ErrNotInProgress) {
		t.Errorf("AnswerCurrent after scoring err = %v, want ErrNotInProgress", err)
	}
	if _, err := sess.Submit(); !errors.Is(err, ErrNotInProgress) {
		t.Errorf("double Submit err = %v, want ErrNotInProgress", err)
	}
}

func TestCountdownForcesSubmission(t *testing.T) {
	provider := llm.NewMockProvider(llm.MockResponse{Text: validPayload})
	sess := NewSession(NewGenerator(provider, 5), 0)
	cfg := testConfig
	cfg.TimeLimitMin = 1
	if err := sess.Generate(context.Background(), cfg); err != nil {
		t.Fatal(err)
	}
	if err := sess.AnswerCurrent("4"); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 60; i++ {
		sess.TickSecond()
	}
	if sess.State() != StateScored {
		t.Fatalf("state = %q after countdown expiry, want %q", sess.State(), StateScored)
	}
	score, err := sess.Score()
	if err != nil {
		t.Fatal(err)
	}
	if score.Correct != 1 || score.Total != 5 {
		t.Errorf("score = %d/%d, want 1/5 from answers at expiry", score.Correct, score.Total)
	}

	// Stale ticks after scoring change nothing.
	sess.TickSecond()
	if got, _ := sess.Score(); got != score {
		t.Errorf("score changed after stale tick: %+v", got)
	}
}

func TestRestartRetainsConfig(t *testing.T) {
	sess := inProgressSession(t, validPayload)
	if _, err := sess.Submit(); err != nil {
		t.Fatal(err)
	}

	sess.Restart()
	if sess.State() != StateConfiguring {
		t.Fatalf("state = %q, want %q", sess.State(), StateConfiguring)
	}
	if got := len(sess.Questions()); got != 0 {
		t.Errorf("questions = %d after restart, want 0", got)
	}
	if sess.Config() != testConfig {
		t.Errorf("config = %+v, want prior config retained", sess.Config())
	}
}
