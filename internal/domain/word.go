package domain

import (
	"time"

	"github.com/conorfennell/wordmill/internal/sm2"
)

// Word is a single vocabulary entry together with its retention state.
// The word text itself is the unique key. A zero LastReviewedAt or
// NextDueAt means the word has never been reviewed or scheduled.
type Word struct {
	Word         string
	Meaning      string
	Example      string
	PartOfSpeech string
	Fingerprint  string

	EaseFactor    float64
	IntervalDays  int
	Repetitions   int
	TimesReviewed int
	TimesCorrect  int

	LastReviewedAt time.Time
	NextDueAt      time.Time
	CreatedAt      time.Time

	SourceID int64
}

// State extracts the retention state carried on the word, in the form the
// scheduler consumes.
func (w Word) State() sm2.State {
	return sm2.State{
		EaseFactor:     w.EaseFactor,
		IntervalDays:   w.IntervalDays,
		Repetitions:    w.Repetitions,
		TimesReviewed:  w.TimesReviewed,
		TimesCorrect:   w.TimesCorrect,
		LastReviewedAt: w.LastReviewedAt,
		NextDueAt:      w.NextDueAt,
	}
}

// ApplyState copies a scheduler result back onto the word. All seven
// scheduling fields are replaced together; descriptive fields are untouched.
func (w *Word) ApplyState(s sm2.State) {
	w.EaseFactor = s.EaseFactor
	w.IntervalDays = s.IntervalDays
	w.Repetitions = s.Repetitions
	w.TimesReviewed = s.TimesReviewed
	w.TimesCorrect = s.TimesCorrect
	w.LastReviewedAt = s.LastReviewedAt
	w.NextDueAt = s.NextDueAt
}

// ReviewEvent records a single review of a word.
// Quality is the subjective recall score on the SM-2 scale:
// 0-2: lapse (forgotten)
// 3: recalled with serious difficulty
// 4: recalled after hesitation
// 5: perfect recall
// EaseFactor, IntervalDays and NextDueAt are snapshots of the state
// produced by the review. Events are immutable once written.
type ReviewEvent struct {
	ID           int64
	Word         string
	Quality      int
	OccurredAt   time.Time
	EaseFactor   float64
	IntervalDays int
	NextDueAt    time.Time
}

// StudyPlan caps how many words the selector will introduce per calendar day.
type StudyPlan struct {
	ID          int64
	WordsPerDay int
	Active      bool
	CreatedAt   time.Time
}

// DefaultWordsPerDay is the quota used when no plan has been configured yet.
const DefaultWordsPerDay = 20
