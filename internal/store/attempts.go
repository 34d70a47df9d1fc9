package store

import (
	"database/sql"
	"encoding/json"
	"log/slog"

	"github.com/techops-academy/certifier/internal/model"
)

// InsertAttempt stores one exam attempt. The attempt number is computed
// inside the transaction so concurrent submissions for the same user still
// get distinct, gap-free numbers.
func (s *Store) InsertAttempt(a model.ExamAttempt) (model.ExamAttempt, error) {
	resultJSON, err := json.Marshal(a.Result)
	if err != nil {
		return a, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return a, err
	}
	defer tx.Rollback()

	var prev int
	err = tx.QueryRow(
		`SELECT COUNT(*) FROM exam_attempts WHERE user_id = ? AND exam_type = ?`,
		a.UserID, a.ExamType,
	).Scan(&prev)
	if err != nil {
		return a, err
	}
	a.AttemptNo = prev + 1

	res, err := tx.Exec(
		`INSERT INTO exam_attempts
		 (user_id, exam_type, score, passed, theory_percent, simulation_percent, result_json, attempt_no, duration_seconds, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.UserID, a.ExamType, a.Score, a.Passed, a.TheoryPercent, a.SimulationPercent,
		string(resultJSON), a.AttemptNo, a.DurationSeconds, a.StartedAt, a.FinishedAt,
	)
	if err != nil {
		return a, err
	}
	a.ID, err = res.LastInsertId()
	if err != nil {
		return a, err
	}
	if err := tx.Commit(); err != nil {
		return a, err
	}
	slog.Info("stored exam attempt",
		"id", a.ID, "user_id", a.UserID, "exam_type", a.ExamType,
		"attempt_no", a.AttemptNo, "passed", a.Passed)
	return a, nil
}

// ListAttempts returns all attempts for a user, newest first.
func (s *Store) ListAttempts(userID int64) ([]model.ExamAttempt, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, exam_type, score, passed, theory_percent, simulation_percent, result_json, attempt_no, duration_seconds, started_at, finished_at
		 FROM exam_attempts WHERE user_id = ? ORDER BY id DESC`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAttempts(rows)
}

// ListAllAttempts returns every stored attempt, newest first.
func (s *Store) ListAllAttempts() ([]model.ExamAttempt, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, exam_type, score, passed, theory_percent, simulation_percent, result_json, attempt_no, duration_seconds, started_at, finished_at
		 FROM exam_attempts ORDER BY id DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAttempts(rows)
}

// GetAttempt returns one attempt by ID, or nil if not found.
func (s *Store) GetAttempt(id int64) (*model.ExamAttempt, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, exam_type, score, passed, theory_percent, simulation_percent, result_json, attempt_no, duration_seconds, started_at, finished_at
		 FROM exam_attempts WHERE id = ?`, id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	attempts, err := scanAttempts(rows)
	if err != nil {
		return nil, err
	}
	if len(attempts) == 0 {
		return nil, nil
	}
	return &attempts[0], nil
}

func scanAttempts(rows *sql.Rows) ([]model.ExamAttempt, error) {
	var attempts []model.ExamAttempt
	for rows.Next() {
		var a model.ExamAttempt
		var resultJSON string
		if err := rows.Scan(&a.ID, &a.UserID, &a.ExamType, &a.Score, &a.Passed,
			&a.TheoryPercent, &a.SimulationPercent, &resultJSON, &a.AttemptNo,
			&a.DurationSeconds, &a.StartedAt, &a.FinishedAt); err != nil {
			return nil, err
		}
		if resultJSON != "" {
			_ = json.Unmarshal([]byte(resultJSON), &a.Result)
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}
