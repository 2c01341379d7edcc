package storage

import (
	"database/sql"
	"fmt"

	"github.com/conorfennell/wordmill/internal/domain"
)

const wordColumns = `word, meaning, example_sentence, part_of_speech, fingerprint,
	ease_factor, interval_days, repetitions, times_reviewed, times_correct,
	last_reviewed_at, next_due_at, created_at, source_id`

// InsertWord inserts a new word with the retention state carried on it.
func (db *DB) InsertWord(w domain.Word) error {
	_, err := db.conn.Exec(`
		INSERT INTO words (`+wordColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		w.Word,
		w.Meaning,
		w.Example,
		w.PartOfSpeech,
		w.Fingerprint,
		w.EaseFactor,
		w.IntervalDays,
		w.Repetitions,
		w.TimesReviewed,
		w.TimesCorrect,
		nullTime(w.LastReviewedAt),
		nullTime(w.NextDueAt),
		w.CreatedAt,
		nullInt64(w.SourceID),
	)
	if err != nil {
		return fmt.Errorf("failed to insert word %q: %w", w.Word, err)
	}
	return nil
}

// FindWord retrieves one word by its key. It returns (nil, nil) when the
// word does not exist.
func (db *DB) FindWord(word string) (*domain.Word, error) {
	row := db.conn.QueryRow(`SELECT `+wordColumns+` FROM words WHERE word = ?`, word)

	w, err := scanWord(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find word %q: %w", word, err)
	}
	return w, nil
}

// AllWords retrieves every stored word.
func (db *DB) AllWords() ([]domain.Word, error) {
	rows, err := db.conn.Query(`SELECT ` + wordColumns + ` FROM words ORDER BY created_at, word`)
	if err != nil {
		return nil, fmt.Errorf("failed to list words: %w", err)
	}
	defer rows.Close()

	return collectWords(rows)
}

// WordsBySourceID retrieves all words that came from one source.
func (db *DB) WordsBySourceID(sourceID int64) ([]domain.Word, error) {
	rows, err := db.conn.Query(`SELECT `+wordColumns+` FROM words WHERE source_id = ?`, sourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list words for source %d: %w", sourceID, err)
	}
	defer rows.Close()

	return collectWords(rows)
}

// UpdateWordContent refreshes the descriptive fields of a word without
// touching its retention state. Used by sync when a source entry changed.
func (db *DB) UpdateWordContent(w domain.Word) error {
	_, err := db.conn.Exec(`
		UPDATE words
		SET meaning = ?, example_sentence = ?, part_of_speech = ?, fingerprint = ?
		WHERE word = ?
	`, w.Meaning, w.Example, w.PartOfSpeech, w.Fingerprint, w.Word)
	if err != nil {
		return fmt.Errorf("failed to update content for word %q: %w", w.Word, err)
	}
	return nil
}

// DeleteWord removes a word; its review events cascade.
func (db *DB) DeleteWord(word string) error {
	_, err := db.conn.Exec(`DELETE FROM words WHERE word = ?`, word)
	if err != nil {
		return fmt.Errorf("failed to delete word %q: %w", word, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWord(row rowScanner) (*domain.Word, error) {
	var w domain.Word
	var lastReviewed, nextDue sql.NullTime
	var sourceID sql.NullInt64

	err := row.Scan(
		&w.Word,
		&w.Meaning,
		&w.Example,
		&w.PartOfSpeech,
		&w.Fingerprint,
		&w.EaseFactor,
		&w.IntervalDays,
		&w.Repetitions,
		&w.TimesReviewed,
		&w.TimesCorrect,
		&lastReviewed,
		&nextDue,
		&w.CreatedAt,
		&sourceID,
	)
	if err != nil {
		return nil, err
	}

	w.LastReviewedAt = timeValue(lastReviewed)
	w.NextDueAt = timeValue(nextDue)
	w.SourceID = sourceID.Int64
	return &w, nil
}

func collectWords(rows *sql.Rows) ([]domain.Word, error) {
	var words []domain.Word
	for rows.Next() {
		w, err := scanWord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan word row: %w", err)
		}
		words = append(words, *w)
	}
	return words, rows.Err()
}

func nullInt64(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: v != 0}
}
