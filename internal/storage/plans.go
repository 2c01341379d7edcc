package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/conorfennell/wordmill/internal/domain"
)

// ActivePlan retrieves the active study plan, creating one with the given
// daily quota if none exists yet.
func (db *DB) ActivePlan(defaultWordsPerDay int, now time.Time) (domain.StudyPlan, error) {
	plan, err := db.findActivePlan()
	if err != nil {
		return domain.StudyPlan{}, err
	}
	if plan != nil {
		return *plan, nil
	}

	res, err := db.conn.Exec(`
		INSERT INTO study_plans (words_per_day, active, created_at)
		VALUES (?, 1, ?)
	`, defaultWordsPerDay, now)
	if err != nil {
		return domain.StudyPlan{}, fmt.Errorf("failed to create initial study plan: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return domain.StudyPlan{}, fmt.Errorf("failed to get study plan ID: %w", err)
	}

	return domain.StudyPlan{
		ID:          id,
		WordsPerDay: defaultWordsPerDay,
		Active:      true,
		CreatedAt:   now,
	}, nil
}

// SetWordsPerDay changes the daily quota on the active plan. The value is
// validated at the API boundary before it reaches the store.
func (db *DB) SetWordsPerDay(wordsPerDay int) error {
	res, err := db.conn.Exec(`UPDATE study_plans SET words_per_day = ? WHERE active = 1`, wordsPerDay)
	if err != nil {
		return fmt.Errorf("failed to update study plan: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check study plan update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("no active study plan to update")
	}
	return nil
}

func (db *DB) findActivePlan() (*domain.StudyPlan, error) {
	var plan domain.StudyPlan
	var active int

	row := db.conn.QueryRow(`
		SELECT id, words_per_day, active, created_at
		FROM study_plans WHERE active = 1
		ORDER BY id LIMIT 1
	`)
	err := row.Scan(&plan.ID, &plan.WordsPerDay, &active, &plan.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find active study plan: %w", err)
	}
	plan.Active = active != 0
	return &plan, nil
}
