package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/asmitanand/mentorly/internal/llm"
	"github.com/asmitanand/mentorly/internal/model"
)

const (
	replyMaxTokens   = 500
	replyTemperature = 0.7
)

// Service builds persona instructions and requests chat replies from the
// underlying model provider. It holds no conversation state: the full message
// log is sent with every call.
type Service struct {
	provider llm.Provider
}

// NewService creates a chat Service backed by the given provider.
func NewService(provider llm.Provider) *Service {
	return &Service{provider: provider}
}

// systemInstruction fixes the mentor persona, keeps answers in scope for the
// mentor's subject, and optionally personalizes for the learner.
func systemInstruction(mentor model.Mentor, profile *model.LearnerProfile) string {
	var b strings.Builder
	fmt.Fprintf(&b,
		"You are %s, an expert %s tutor. Keep answers concise, encouraging, and simple. "+
			"If the user asks something unrelated to %s, politely guide them back to %s.",
		mentor.Name, mentor.Subject, mentor.Subject, mentor.Subject)

	if profile != nil {
		if profile.Name != "" {
			fmt.Fprintf(&b, " The learner's name is %s.", profile.Name)
		}
		if profile.Class != "" {
			fmt.Fprintf(&b, " The learner is in class %s; match explanations to that level.", profile.Class)
		}
		if profile.Goal != "" {
			fmt.Fprintf(&b, " The learner's stated goal is: %s.", profile.Goal)
		}
	}
	return b.String()
}

// Reply sends the full conversation log to the model and returns the mentor's
// next reply. Provider failures are returned unwrapped so callers can map
// them to the error taxonomy.
func (s *Service) Reply(ctx context.Context, mentor model.Mentor, messages []model.Message, profile *model.LearnerProfile) (string, error) {
	req := llm.Request{
		System:      systemInstruction(mentor, profile),
		MaxTokens:   replyMaxTokens,
		Temperature: replyTemperature,
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, llm.Message{
			Role:    llm.Role(m.Role),
			Content: m.Content,
		})
	}

	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}
