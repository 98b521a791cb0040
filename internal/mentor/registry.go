package mentor

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/asmitanand/mentorly/internal/model"
)

//go:embed catalog.json
var catalogFS embed.FS

// ErrNotFound indicates the requested mentor does not exist in the catalog.
var ErrNotFound = errors.New("mentor not found")

// Registry is an immutable keyed view of the mentor catalog, built once at
// startup. Lookups are pure functions over the table.
//
// When more than one mentor shares a subject, BySubject resolves to the first
// one in catalog order.
type Registry struct {
	mentors   []model.Mentor
	byID      map[string]int
	bySubject map[string]int
}

// Load builds a Registry from the embedded default catalog.
func Load() (*Registry, error) {
	data, err := catalogFS.ReadFile("catalog.json")
	if err != nil {
		return nil, fmt.Errorf("read embedded catalog: %w", err)
	}
	return buildRegistry(data)
}

// LoadFile builds a Registry from an external catalog JSON file.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return buildRegistry(data)
}

func buildRegistry(data []byte) (*Registry, error) {
	var mentors []model.Mentor
	if err := json.Unmarshal(data, &mentors); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(mentors) == 0 {
		return nil, errors.New("catalog is empty")
	}

	r := &Registry{
		mentors:   mentors,
		byID:      make(map[string]int, len(mentors)),
		bySubject: make(map[string]int, len(mentors)),
	}
	for i, m := range mentors {
		if m.ID == "" {
			return nil, fmt.Errorf("catalog entry %d has no id", i)
		}
		if _, dup := r.byID[m.ID]; dup {
			return nil, fmt.Errorf("duplicate mentor id %q", m.ID)
		}
		r.byID[m.ID] = i

		// First mentor per subject wins; later entries keep their id lookup
		// but do not shadow the subject mapping.
		key := subjectKey(m.Subject)
		if _, taken := r.bySubject[key]; !taken {
			r.bySubject[key] = i
		}
	}
	return r, nil
}

// All returns the catalog in its original order. The returned slice is a copy.
func (r *Registry) All() []model.Mentor {
	out := make([]model.Mentor, len(r.mentors))
	copy(out, r.mentors)
	return out
}

// ByID resolves a mentor by its stable identifier.
func (r *Registry) ByID(id string) (model.Mentor, error) {
	i, ok := r.byID[id]
	if !ok {
		return model.Mentor{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return r.mentors[i], nil
}

// BySubject resolves the mentor assigned to a subject. The match is
// case-insensitive.
func (r *Registry) BySubject(subject string) (model.Mentor, error) {
	i, ok := r.bySubject[subjectKey(subject)]
	if !ok {
		return model.Mentor{}, fmt.Errorf("%w: subject %q", ErrNotFound, subject)
	}
	return r.mentors[i], nil
}

// Subjects returns the distinct subjects in catalog order.
func (r *Registry) Subjects() []string {
	seen := make(map[string]bool, len(r.mentors))
	var out []string
	for _, m := range r.mentors {
		key := subjectKey(m.Subject)
		if !seen[key] {
			seen[key] = true
			out = append(out, m.Subject)
		}
	}
	return out
}

func subjectKey(subject string) string {
	return strings.ToLower(strings.TrimSpace(subject))
}
