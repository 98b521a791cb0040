package quiz

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/asmitanand/mentorly/internal/llm"
	"github.com/asmitanand/mentorly/internal/model"
)

const (
	generateMaxTokens   = 2048
	generateTemperature = 0.7
)

// ErrMalformedPayload is returned when the model's quiz payload is not valid
// JSON after code-fence stripping, or does not carry the expected questions.
type ErrMalformedPayload struct {
	Err error
}

func (e *ErrMalformedPayload) Error() string {
	return fmt.Sprintf("malformed quiz payload: %v", e.Err)
}

func (e *ErrMalformedPayload) Unwrap() error { return e.Err }

// Generator produces quizzes with a single model call per quiz.
type Generator struct {
	provider  llm.Provider
	questions int
}

// NewGenerator creates a Generator that asks for the given number of
// questions per quiz; zero or negative defaults to 5.
func NewGenerator(provider llm.Provider, questions int) *Generator {
	if questions <= 0 {
		questions = 5
	}
	return &Generator{provider: provider, questions: questions}
}

func (g *Generator) prompt(cfg model.QuizConfiguration) string {
	return fmt.Sprintf(`Generate a quiz with exactly %d questions for a class %s student on the subject %q, chapter %q, at %s difficulty.
Mix multiple-choice and short-answer questions. Respond with ONLY a JSON object in this exact shape, no prose before or after:
{"questions":[{"question":"...","options":["...","...","...","..."],"correct_answer":"...","explanation":"..."}]}
Omit "options" for short-answer questions. "correct_answer" must match one option exactly for multiple-choice questions.`,
		g.questions, cfg.Class, cfg.Subject, cfg.Chapter, cfg.Difficulty)
}

type quizPayload struct {
	Questions []model.QuizQuestion `json:"questions"`
}

// Generate requests a quiz for the given configuration and parses the
// model's JSON payload. Models sometimes wrap the object in markdown code
// fences; those are stripped before parsing.
func (g *Generator) Generate(ctx context.Context, cfg model.QuizConfiguration) ([]model.QuizQuestion, error) {
	resp, err := g.provider.Generate(ctx, llm.Request{
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: g.prompt(cfg)}},
		MaxTokens:   generateMaxTokens,
		Temperature: generateTemperature,
	})
	if err != nil {
		return nil, err
	}

	questions, err := parseQuestions(resp.Text)
	if err != nil {
		return nil, err
	}
	if len(questions) != g.questions {
		return nil, &ErrMalformedPayload{Err: fmt.Errorf("got %d questions, want %d", len(questions), g.questions)}
	}
	return questions, nil
}

func parseQuestions(content string) ([]model.QuizQuestion, error) {
	var payload quizPayload
	if err := json.Unmarshal([]byte(cleanJSONContent(content)), &payload); err != nil {
		return nil, &ErrMalformedPayload{Err: err}
	}
	if len(payload.Questions) == 0 {
		return nil, &ErrMalformedPayload{Err: fmt.Errorf("no questions in payload")}
	}
	for i, q := range payload.Questions {
		if strings.TrimSpace(q.Question) == "" || strings.TrimSpace(q.CorrectAnswer) == "" {
			return nil, &ErrMalformedPayload{Err: fmt.Errorf("question %d missing text or answer", i)}
		}
	}
	return payload.Questions, nil
}

// cleanJSONContent strips markdown code-fence wrapping that models sometimes
// add around JSON output.
func cleanJSONContent(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimSuffix(content, "```")
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
	}
	return strings.TrimSpace(content)
}
