package study

import (
	"time"

	"github.com/conorfennell/wordmill/internal/domain"
)

// Stats summarizes study progress over the whole collection plus one
// calendar day of review events.
type Stats struct {
	TotalWords      int     `json:"total_words"`
	DueCount        int     `json:"due_count"`
	StudiedToday    int     `json:"studied_today"`
	AvgQualityToday float64 `json:"avg_quality_today"`
	AccuracyPercent float64 `json:"accuracy_percent"`
}

// Summarize computes Stats from a snapshot of all words and the review
// events recorded today. An empty snapshot yields all zeros; the averages
// guard their denominators.
func Summarize(words []domain.Word, todayEvents []domain.ReviewEvent, now time.Time) Stats {
	stats := Stats{
		TotalWords:   len(words),
		StudiedToday: len(todayEvents),
	}

	var reviewed, correct int
	for _, w := range words {
		if Due(w, now) {
			stats.DueCount++
		}
		reviewed += w.TimesReviewed
		correct += w.TimesCorrect
	}
	if reviewed > 0 {
		stats.AccuracyPercent = 100 * float64(correct) / float64(reviewed)
	}

	if len(todayEvents) > 0 {
		var sum int
		for _, ev := range todayEvents {
			sum += ev.Quality
		}
		stats.AvgQualityToday = float64(sum) / float64(len(todayEvents))
	}

	return stats
}
