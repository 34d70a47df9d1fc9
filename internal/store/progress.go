package store

import (
	"time"

	"github.com/techops-academy/certifier/internal/model"
)

// UpsertProgress records a trainee's per-module state. XP is only ever
// raised: re-completing a module keeps the highest value already earned.
func (s *Store) UpsertProgress(p model.Progress) error {
	_, err := s.db.Exec(
		`INSERT INTO progress (user_id, track, module_id, completed, xp, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, module_id) DO UPDATE SET
		   completed = MAX(completed, excluded.completed),
		   xp = MAX(xp, excluded.xp),
		   updated_at = excluded.updated_at`,
		p.UserID, p.Track, p.ModuleID, p.Completed, p.XP, time.Now(),
	)
	return err
}

// ListProgress returns all progress rows for a user.
func (s *Store) ListProgress(userID int64) ([]model.Progress, error) {
	rows, err := s.db.Query(
		`SELECT user_id, track, module_id, completed, xp, updated_at
		 FROM progress WHERE user_id = ? ORDER BY module_id`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var progress []model.Progress
	for rows.Next() {
		var p model.Progress
		if err := rows.Scan(&p.UserID, &p.Track, &p.ModuleID, &p.Completed, &p.XP, &p.UpdatedAt); err != nil {
			return nil, err
		}
		progress = append(progress, p)
	}
	return progress, rows.Err()
}
