package store

import (
	"database/sql"

	"github.com/asmitanand/mentorly/internal/model"
)

// setProfileValue upserts one profile field.
func (s *Store) setProfileValue(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO profile (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = ?`,
		key, value, value,
	)
	return err
}

// getProfileValue returns the value for a profile key.
// Returns empty string and nil error if the key is missing.
func (s *Store) getProfileValue(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM profile WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// SetProfile stores all learner profile fields.
func (s *Store) SetProfile(p model.LearnerProfile) error {
	pairs := []struct{ k, v string }{
		{"name", p.Name},
		{"class", p.Class},
		{"goal", p.Goal},
	}
	for _, pair := range pairs {
		if err := s.setProfileValue(pair.k, pair.v); err != nil {
			return err
		}
	}
	return nil
}

// GetProfile reads the learner profile. Unset fields come back empty.
func (s *Store) GetProfile() (model.LearnerProfile, error) {
	var p model.LearnerProfile
	var err error

	if p.Name, err = s.getProfileValue("name"); err != nil {
		return p, err
	}
	if p.Class, err = s.getProfileValue("class"); err != nil {
		return p, err
	}
	if p.Goal, err = s.getProfileValue("goal"); err != nil {
		return p, err
	}
	return p, nil
}
