package sm2

import (
	"math"
	"time"
)

// Quality bounds for a review. Callers validate the score before calling
// Update; values outside [MinQuality, MaxQuality] are a caller error.
const (
	MinQuality = 0
	MaxQuality = 5

	// SuccessThreshold splits a review into lapse (below) and success (at or above).
	SuccessThreshold = 3
)

const (
	// DefaultEase is the ease factor assigned to a word that has never been reviewed.
	DefaultEase = 2.5

	// MinEase is the floor the ease factor can never drop below.
	MinEase = 1.3

	// lapsePenalty is subtracted from the ease factor on every lapse.
	lapsePenalty = 0.2

	firstInterval  = 1 // days until the second successful review
	secondInterval = 6 // days until the third successful review
)

// State is the retention state of one word. It is a plain value: Update
// returns a new State and never mutates or retains its input.
type State struct {
	EaseFactor     float64
	IntervalDays   int
	Repetitions    int
	TimesReviewed  int
	TimesCorrect   int
	LastReviewedAt time.Time
	NextDueAt      time.Time
}

// NewState returns the state for a word that has never been reviewed.
func NewState() State {
	return State{EaseFactor: DefaultEase}
}

// Update applies one review with the given quality score at the given time
// and returns the resulting state.
//
// A lapse (quality below SuccessThreshold) resets the repetition streak,
// schedules the word one day out and lowers the ease factor. A success grows
// the interval: 1 day after the first success, 6 after the second, then
// round(interval * ease) with math.Round, i.e. halves round away from zero.
//
// Update is deterministic: the same (state, quality, now) always yields the
// same result.
func Update(s State, quality int, now time.Time) State {
	if quality < SuccessThreshold {
		s.Repetitions = 0
		s.IntervalDays = 1
		s.EaseFactor = math.Max(MinEase, s.EaseFactor-lapsePenalty)
	} else {
		switch s.Repetitions {
		case 0:
			s.IntervalDays = firstInterval
		case 1:
			s.IntervalDays = secondInterval
		default:
			s.IntervalDays = int(math.Round(float64(s.IntervalDays) * s.EaseFactor))
		}

		q := float64(MaxQuality - quality)
		s.EaseFactor += 0.1 - q*(0.08+q*0.02)
		if s.EaseFactor < MinEase {
			s.EaseFactor = MinEase
		}
		s.Repetitions++
		s.TimesCorrect++
	}

	s.TimesReviewed++
	s.LastReviewedAt = now
	s.NextDueAt = now.AddDate(0, 0, s.IntervalDays)
	return s
}
