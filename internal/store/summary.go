package store

import (
	"fmt"

	"github.com/techops-academy/certifier/internal/model"
)

// DashboardSummary builds one row per user aggregating training progress and
// exam history for the trainer dashboard.
func (s *Store) DashboardSummary() ([]model.TraineeSummary, error) {
	users, err := s.ListUsers()
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	var summaries []model.TraineeSummary
	for _, u := range users {
		sum := model.TraineeSummary{
			UserID: u.ID,
			Name:   u.Name,
			Email:  u.Email,
			Role:   u.Role,
		}

		progress, err := s.ListProgress(u.ID)
		if err != nil {
			return nil, fmt.Errorf("list progress for user %d: %w", u.ID, err)
		}
		for _, p := range progress {
			sum.TotalXP += p.XP
			if p.Completed {
				sum.ModulesCompleted++
			}
			if sum.LastProgressAt == nil || p.UpdatedAt.After(*sum.LastProgressAt) {
				t := p.UpdatedAt
				sum.LastProgressAt = &t
			}
		}

		attempts, err := s.ListAttempts(u.ID)
		if err != nil {
			return nil, fmt.Errorf("list attempts for user %d: %w", u.ID, err)
		}
		sum.AttemptsCount = len(attempts)
		if len(attempts) > 0 {
			// ListAttempts returns newest first.
			latest := attempts[0]
			t := latest.FinishedAt
			sum.LastExamAt = &t
			sum.LastExamScore = latest.Score
		}

		summaries = append(summaries, sum)
	}
	return summaries, nil
}
