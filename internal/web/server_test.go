package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conorfennell/wordmill/internal/domain"
	"github.com/conorfennell/wordmill/internal/sm2"
	"github.com/conorfennell/wordmill/internal/storage"
)

func newTestServer(t *testing.T) (*Server, *storage.DB) {
	t.Helper()
	db, err := storage.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewServer(db, t.TempDir(), domain.DefaultWordsPerDay), db
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst))
}

func insertWord(t *testing.T, db *storage.DB, word string, createdAt time.Time) domain.Word {
	t.Helper()
	w := domain.Word{
		Word:       word,
		Meaning:    "meaning of " + word,
		EaseFactor: sm2.DefaultEase,
		CreatedAt:  createdAt,
	}
	require.NoError(t, db.InsertWord(w))
	return w
}

func TestHealthz(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	decodeBody(t, rec, &body)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "connected", body["database"])
}

func TestStudyNextEmptyStore(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/api/study/next", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	decodeBody(t, rec, &body)
	assert.Equal(t, true, body["done"])
}

func TestStudyReviewFlow(t *testing.T) {
	s, db := newTestServer(t)
	created := time.Now().AddDate(0, 0, -2)
	insertWord(t, db, "ephemeral", created)

	// A never-scheduled word is due immediately.
	rec := doJSON(t, s, http.MethodGet, "/api/study/next", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var next wordResponse
	decodeBody(t, rec, &next)
	assert.Equal(t, "ephemeral", next.Word)

	rec = doJSON(t, s, http.MethodPost, "/api/study/review", map[string]any{
		"word": "ephemeral", "quality": 4,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var reviewed wordResponse
	decodeBody(t, rec, &reviewed)
	assert.Equal(t, 1, reviewed.Repetitions)
	assert.Equal(t, 1, reviewed.IntervalDays)
	assert.Equal(t, 1, reviewed.TimesReviewed)
	assert.Equal(t, 1, reviewed.TimesCorrect)
	require.NotNil(t, reviewed.NextDueAt)

	// The review is on the event log with a state snapshot.
	events, err := db.EventsForWord("ephemeral")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, 4, events[0].Quality)
	assert.Equal(t, reviewed.EaseFactor, events[0].EaseFactor)
}

func TestStudyReviewValidation(t *testing.T) {
	s, db := newTestServer(t)
	insertWord(t, db, "bounded", time.Now())

	for _, quality := range []int{-1, 6} {
		rec := doJSON(t, s, http.MethodPost, "/api/study/review", map[string]any{
			"word": "bounded", "quality": quality,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code, "quality %d must be rejected", quality)
	}

	// Quality zero is a valid lapse, not a missing field.
	rec := doJSON(t, s, http.MethodPost, "/api/study/review", map[string]any{
		"word": "bounded", "quality": 0,
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/api/study/review", map[string]any{
		"word": "missing", "quality": 3,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/api/study/review", map[string]any{
		"quality": 3,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStudyQuota(t *testing.T) {
	s, db := newTestServer(t)
	now := time.Now()

	insertWord(t, db, "first", now.AddDate(0, 0, -3))
	// Not due, never successfully reviewed: only reachable as a "new" pick.
	later := domain.Word{
		Word:       "second",
		EaseFactor: sm2.DefaultEase,
		NextDueAt:  now.AddDate(0, 0, 2),
		CreatedAt:  now.AddDate(0, 0, -1),
	}
	require.NoError(t, db.InsertWord(later))

	rec := doJSON(t, s, http.MethodPut, "/api/plan", map[string]any{"words_per_day": 1})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/api/study/review", map[string]any{
		"word": "first", "quality": 5,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// One review today and a quota of one: the selector must stop.
	rec = doJSON(t, s, http.MethodGet, "/api/study/next", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var done map[string]any
	decodeBody(t, rec, &done)
	assert.Equal(t, true, done["done"])

	// Raising the quota frees the new word.
	rec = doJSON(t, s, http.MethodPut, "/api/plan", map[string]any{"words_per_day": 5})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/api/study/next", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var next wordResponse
	decodeBody(t, rec, &next)
	assert.Equal(t, "second", next.Word)
}

func TestStats(t *testing.T) {
	s, db := newTestServer(t)
	insertWord(t, db, "alpha", time.Now().AddDate(0, 0, -1))
	insertWord(t, db, "beta", time.Now().AddDate(0, 0, -1))

	rec := doJSON(t, s, http.MethodPost, "/api/study/review", map[string]any{
		"word": "alpha", "quality": 5,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats struct {
		TotalWords      int     `json:"total_words"`
		DueCount        int     `json:"due_count"`
		StudiedToday    int     `json:"studied_today"`
		AvgQualityToday float64 `json:"avg_quality_today"`
		AccuracyPercent float64 `json:"accuracy_percent"`
	}
	decodeBody(t, rec, &stats)

	assert.Equal(t, 2, stats.TotalWords)
	assert.Equal(t, 1, stats.DueCount, "beta is still unscheduled")
	assert.Equal(t, 1, stats.StudiedToday)
	assert.Equal(t, 5.0, stats.AvgQualityToday)
	assert.Equal(t, 100.0, stats.AccuracyPercent)
}

func TestStatsEmptyStore(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats map[string]float64
	decodeBody(t, rec, &stats)
	for field, value := range stats {
		assert.Zero(t, value, "field %s", field)
	}
}

func TestPlanDefaults(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/api/plan", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var plan planResponse
	decodeBody(t, rec, &plan)
	assert.Equal(t, domain.DefaultWordsPerDay, plan.WordsPerDay)
	assert.True(t, plan.Active)
}

func TestPlanRejectsNonPositiveQuota(t *testing.T) {
	s, _ := newTestServer(t)

	for _, quota := range []int{0, -4} {
		rec := doJSON(t, s, http.MethodPut, "/api/plan", map[string]any{"words_per_day": quota})
		assert.Equal(t, http.StatusBadRequest, rec.Code, "quota %d must be rejected", quota)
	}
}

func TestSourcesAndSync(t *testing.T) {
	s, db := newTestServer(t)

	dir := t.TempDir()
	list := "W: laconic\nM: using few words\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "words.txt"), []byte(list), 0o644))

	rec := doJSON(t, s, http.MethodPost, "/api/sources", map[string]any{"path": dir})
	require.Equal(t, http.StatusCreated, rec.Code)

	var src sourceResponse
	decodeBody(t, rec, &src)
	assert.Equal(t, "local", src.Type)

	rec = doJSON(t, s, http.MethodPost, "/api/sync", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	word, err := db.FindWord("laconic")
	require.NoError(t, err)
	require.NotNil(t, word)

	rec = doJSON(t, s, http.MethodGet, "/api/sources", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var sources []sourceResponse
	decodeBody(t, rec, &sources)
	require.Len(t, sources, 1)
	assert.NotNil(t, sources[0].LastScanned)

	rec = doJSON(t, s, http.MethodDelete, fmt.Sprintf("/api/sources/%d", src.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/api/sources", nil)
	decodeBody(t, rec, &sources)
	assert.Empty(t, sources)
}
