package storage

import (
	"fmt"
	"time"

	"github.com/conorfennell/wordmill/internal/domain"
	"github.com/conorfennell/wordmill/internal/study"
)

// SaveReview persists the outcome of one review: the word's new retention
// state and the appended event are written in a single transaction so a
// reader can never observe one without the other.
func (db *DB) SaveReview(w domain.Word, ev domain.ReviewEvent) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin review transaction: %w", err)
	}

	_, err = tx.Exec(`
		UPDATE words
		SET ease_factor = ?, interval_days = ?, repetitions = ?,
		    times_reviewed = ?, times_correct = ?,
		    last_reviewed_at = ?, next_due_at = ?
		WHERE word = ?
	`,
		w.EaseFactor,
		w.IntervalDays,
		w.Repetitions,
		w.TimesReviewed,
		w.TimesCorrect,
		nullTime(w.LastReviewedAt),
		nullTime(w.NextDueAt),
		w.Word,
	)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to update state for word %q: %w", w.Word, err)
	}

	_, err = tx.Exec(`
		INSERT INTO review_events (word, quality, occurred_at, ease_factor, interval_days, next_due_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		ev.Word,
		ev.Quality,
		ev.OccurredAt,
		ev.EaseFactor,
		ev.IntervalDays,
		ev.NextDueAt,
	)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to append review event for word %q: %w", ev.Word, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit review for word %q: %w", w.Word, err)
	}
	return nil
}

// EventsOnDay retrieves the review events recorded during the calendar day
// containing now, bounded by local midnights.
func (db *DB) EventsOnDay(now time.Time) ([]domain.ReviewEvent, error) {
	start := study.DayStart(now)
	end := start.AddDate(0, 0, 1)

	rows, err := db.conn.Query(`
		SELECT id, word, quality, occurred_at, ease_factor, interval_days, next_due_at
		FROM review_events
		WHERE occurred_at >= ? AND occurred_at < ?
		ORDER BY occurred_at
	`, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list events for day of %v: %w", now, err)
	}
	defer rows.Close()

	var events []domain.ReviewEvent
	for rows.Next() {
		var ev domain.ReviewEvent
		if err := rows.Scan(
			&ev.ID,
			&ev.Word,
			&ev.Quality,
			&ev.OccurredAt,
			&ev.EaseFactor,
			&ev.IntervalDays,
			&ev.NextDueAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan review event row: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// EventsForWord retrieves the full review history of one word, oldest first.
func (db *DB) EventsForWord(word string) ([]domain.ReviewEvent, error) {
	rows, err := db.conn.Query(`
		SELECT id, word, quality, occurred_at, ease_factor, interval_days, next_due_at
		FROM review_events
		WHERE word = ?
		ORDER BY occurred_at, id
	`, word)
	if err != nil {
		return nil, fmt.Errorf("failed to list events for word %q: %w", word, err)
	}
	defer rows.Close()

	var events []domain.ReviewEvent
	for rows.Next() {
		var ev domain.ReviewEvent
		if err := rows.Scan(
			&ev.ID,
			&ev.Word,
			&ev.Quality,
			&ev.OccurredAt,
			&ev.EaseFactor,
			&ev.IntervalDays,
			&ev.NextDueAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan review event row: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
