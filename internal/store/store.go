package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/asmitanand/mentorly/internal/model"

	_ "modernc.org/sqlite"
)

// Store is the study-history database: quiz results, call logs and the
// learner profile. Conversation transcripts are never stored here.
type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS quiz_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		class TEXT NOT NULL,
		subject TEXT NOT NULL,
		chapter TEXT NOT NULL,
		difficulty TEXT NOT NULL,
		correct INTEGER NOT NULL,
		total INTEGER NOT NULL,
		taken_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS call_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		mentor_id TEXT NOT NULL,
		subject TEXT NOT NULL,
		duration_seconds INTEGER NOT NULL,
		started_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS profile (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// RecordQuizResult stores a completed quiz.
func (s *Store) RecordQuizResult(r model.QuizResult) (int64, error) {
	takenAt := r.TakenAt
	if takenAt.IsZero() {
		takenAt = time.Now()
	}
	res, err := s.db.Exec(
		`INSERT INTO quiz_results (class, subject, chapter, difficulty, correct, total, taken_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.Class, r.Subject, r.Chapter, r.Difficulty, r.Correct, r.Total, takenAt,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListQuizResults returns all recorded quizzes, newest first.
func (s *Store) ListQuizResults() ([]model.QuizResult, error) {
	rows, err := s.db.Query(
		`SELECT id, class, subject, chapter, difficulty, correct, total, taken_at
		 FROM quiz_results ORDER BY taken_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.QuizResult
	for rows.Next() {
		var r model.QuizResult
		if err := rows.Scan(&r.ID, &r.Class, &r.Subject, &r.Chapter, &r.Difficulty,
			&r.Correct, &r.Total, &r.TakenAt); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// RecordCall stores a finished live-talk call.
func (s *Store) RecordCall(c model.CallLog) (int64, error) {
	startedAt := c.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now()
	}
	res, err := s.db.Exec(
		`INSERT INTO call_logs (mentor_id, subject, duration_seconds, started_at)
		 VALUES (?, ?, ?, ?)`,
		c.MentorID, c.Subject, c.Duration, startedAt,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListCalls returns all recorded calls, newest first.
func (s *Store) ListCalls() ([]model.CallLog, error) {
	rows, err := s.db.Query(
		`SELECT id, mentor_id, subject, duration_seconds, started_at
		 FROM call_logs ORDER BY started_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var calls []model.CallLog
	for rows.Next() {
		var c model.CallLog
		if err := rows.Scan(&c.ID, &c.MentorID, &c.Subject, &c.Duration, &c.StartedAt); err != nil {
			return nil, err
		}
		calls = append(calls, c)
	}
	return calls, rows.Err()
}

// Analytics aggregates quiz performance and call time into the dashboard
// summary.
func (s *Store) Analytics() (model.Analytics, error) {
	var a model.Analytics

	rows, err := s.db.Query(
		`SELECT subject,
		        COUNT(*),
		        AVG(CAST(correct AS REAL) / total * 100),
		        MAX(CAST(correct AS REAL) / total * 100)
		 FROM quiz_results
		 WHERE total > 0
		 GROUP BY subject
		 ORDER BY subject`)
	if err != nil {
		return a, err
	}
	defer rows.Close()

	var totalWeighted float64
	for rows.Next() {
		var st model.SubjectStats
		if err := rows.Scan(&st.Subject, &st.Quizzes, &st.Average, &st.Best); err != nil {
			return a, err
		}
		a.Subjects = append(a.Subjects, st)
		a.TotalQuizzes += st.Quizzes
		totalWeighted += st.Average * float64(st.Quizzes)
	}
	if err := rows.Err(); err != nil {
		return a, err
	}
	if a.TotalQuizzes > 0 {
		a.OverallAverage = totalWeighted / float64(a.TotalQuizzes)
	}

	var callSeconds sql.NullInt64
	if err := s.db.QueryRow(`SELECT SUM(duration_seconds) FROM call_logs`).Scan(&callSeconds); err != nil {
		return a, err
	}
	if callSeconds.Valid {
		a.TotalCallMin = int(callSeconds.Int64 / 60)
	}
	return a, nil
}
