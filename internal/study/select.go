// Package study decides which word to review next and summarizes progress.
// Everything in it is a pure function over snapshots supplied by the caller;
// the store is queried elsewhere and never mutated here.
package study

import (
	"time"

	"github.com/conorfennell/wordmill/internal/domain"
)

// Due reports whether a word is ready for review at the given time. A word
// that has never been scheduled (zero NextDueAt) is always due.
func Due(w domain.Word, now time.Time) bool {
	return w.NextDueAt.IsZero() || !w.NextDueAt.After(now)
}

// DayStart returns local midnight of the day containing now. Both the
// selector's quota check and the aggregator's "studied today" count use this
// boundary so the two can never disagree within one request.
func DayStart(now time.Time) time.Time {
	year, month, day := now.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, now.Location())
}

// NextWord picks the word to present next:
//
//  1. The earliest-due word, if any is due. An unset due date sorts before
//     every set one; ties break by fewer repetitions, then earlier creation.
//  2. Nothing, if studiedToday has already reached the plan's daily quota.
//  3. Otherwise the earliest-created word whose repetition streak is zero.
//
// The ordering is total, so the same snapshot always yields the same pick.
// Returns nil when there is nothing to study.
func NextWord(words []domain.Word, studiedToday int, plan domain.StudyPlan, now time.Time) *domain.Word {
	if due := earliestDue(words, now); due != nil {
		return due
	}

	if studiedToday >= plan.WordsPerDay {
		return nil
	}

	var pick *domain.Word
	for i := range words {
		w := &words[i]
		if w.Repetitions != 0 {
			continue
		}
		if pick == nil || w.CreatedAt.Before(pick.CreatedAt) {
			pick = w
		}
	}
	return pick
}

func earliestDue(words []domain.Word, now time.Time) *domain.Word {
	var best *domain.Word
	for i := range words {
		w := &words[i]
		if !Due(*w, now) {
			continue
		}
		if best == nil || dueBefore(*w, *best) {
			best = w
		}
	}
	return best
}

// dueBefore orders due words: earliest NextDueAt first (the zero time is
// naturally earliest), then fewest repetitions, then earliest CreatedAt.
func dueBefore(a, b domain.Word) bool {
	if !a.NextDueAt.Equal(b.NextDueAt) {
		return a.NextDueAt.Before(b.NextDueAt)
	}
	if a.Repetitions != b.Repetitions {
		return a.Repetitions < b.Repetitions
	}
	return a.CreatedAt.Before(b.CreatedAt)
}
