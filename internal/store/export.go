package store

import (
	"fmt"

	"github.com/asmitanand/mentorly/internal/model"
)

// History is the export-ready snapshot of everything the store holds.
type History struct {
	Profile     model.LearnerProfile `json:"profile"`
	QuizResults []model.QuizResult   `json:"quiz_results"`
	Calls       []model.CallLog      `json:"calls"`
	Analytics   model.Analytics      `json:"analytics"`
}

// ExportHistory gathers the full study history for the export command.
func (s *Store) ExportHistory() (History, error) {
	var h History
	var err error

	if h.Profile, err = s.GetProfile(); err != nil {
		return h, fmt.Errorf("get profile: %w", err)
	}
	if h.QuizResults, err = s.ListQuizResults(); err != nil {
		return h, fmt.Errorf("list quiz results: %w", err)
	}
	if h.Calls, err = s.ListCalls(); err != nil {
		return h, fmt.Errorf("list calls: %w", err)
	}
	if h.Analytics, err = s.Analytics(); err != nil {
		return h, fmt.Errorf("analytics: %w", err)
	}
	return h, nil
}
