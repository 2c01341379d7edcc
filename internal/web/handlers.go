package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/conorfennell/wordmill/internal/domain"
	"github.com/conorfennell/wordmill/internal/sm2"
	"github.com/conorfennell/wordmill/internal/study"
	syncsrc "github.com/conorfennell/wordmill/internal/sync"
)

type wordResponse struct {
	Word           string     `json:"word"`
	Meaning        string     `json:"meaning"`
	Example        string     `json:"example,omitempty"`
	PartOfSpeech   string     `json:"part_of_speech,omitempty"`
	EaseFactor     float64    `json:"ease_factor"`
	IntervalDays   int        `json:"interval_days"`
	Repetitions    int        `json:"repetitions"`
	TimesReviewed  int        `json:"times_reviewed"`
	TimesCorrect   int        `json:"times_correct"`
	LastReviewedAt *time.Time `json:"last_reviewed_at,omitempty"`
	NextDueAt      *time.Time `json:"next_due_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

func toWordResponse(w domain.Word) wordResponse {
	resp := wordResponse{
		Word:          w.Word,
		Meaning:       w.Meaning,
		Example:       w.Example,
		PartOfSpeech:  w.PartOfSpeech,
		EaseFactor:    w.EaseFactor,
		IntervalDays:  w.IntervalDays,
		Repetitions:   w.Repetitions,
		TimesReviewed: w.TimesReviewed,
		TimesCorrect:  w.TimesCorrect,
		CreatedAt:     w.CreatedAt,
	}
	if !w.LastReviewedAt.IsZero() {
		t := w.LastReviewedAt
		resp.LastReviewedAt = &t
	}
	if !w.NextDueAt.IsZero() {
		t := w.NextDueAt
		resp.NextDueAt = &t
	}
	return resp
}

// handleHealth does a database roundtrip, mirroring a liveness probe.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(); err != nil {
		respondJSON(w, http.StatusInternalServerError, map[string]string{
			"status":   "error",
			"database": err.Error(),
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"database": "connected",
	})
}

// handleNextWord picks the next word to study: due words first, then new
// words under the daily quota. An empty pick is a normal outcome, not an
// error.
func (s *Server) handleNextWord(w http.ResponseWriter, r *http.Request) {
	now := time.Now()

	words, err := s.db.AllWords()
	if err != nil {
		slog.Error("failed to list words", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	events, err := s.db.EventsOnDay(now)
	if err != nil {
		slog.Error("failed to list today's events", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	plan, err := s.db.ActivePlan(s.defaultQuota, now)
	if err != nil {
		slog.Error("failed to load study plan", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	next := study.NextWord(words, len(events), plan, now)
	if next == nil {
		respondJSON(w, http.StatusOK, map[string]any{"done": true})
		return
	}
	respondJSON(w, http.StatusOK, toWordResponse(*next))
}

type reviewRequest struct {
	Word    string `json:"word" validate:"required"`
	Quality *int   `json:"quality" validate:"required,min=0,max=5"`
}

// handleReview applies one review. Quality is validated here, at the
// boundary; the scheduler assumes a valid score.
func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		respondError(w, http.StatusBadRequest, "word is required and quality must be between 0 and 5")
		return
	}

	s.reviewMu.Lock()
	defer s.reviewMu.Unlock()

	word, err := s.db.FindWord(req.Word)
	if err != nil {
		slog.Error("failed to find word", "word", req.Word, "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if word == nil {
		respondError(w, http.StatusNotFound, "unknown word")
		return
	}

	now := time.Now()
	state := sm2.Update(word.State(), *req.Quality, now)
	word.ApplyState(state)

	event := domain.ReviewEvent{
		Word:         word.Word,
		Quality:      *req.Quality,
		OccurredAt:   now,
		EaseFactor:   state.EaseFactor,
		IntervalDays: state.IntervalDays,
		NextDueAt:    state.NextDueAt,
	}
	if err := s.db.SaveReview(*word, event); err != nil {
		slog.Error("failed to save review", "word", word.Word, "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, http.StatusOK, toWordResponse(*word))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	now := time.Now()

	words, err := s.db.AllWords()
	if err != nil {
		slog.Error("failed to list words", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	events, err := s.db.EventsOnDay(now)
	if err != nil {
		slog.Error("failed to list today's events", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, http.StatusOK, study.Summarize(words, events, now))
}

type planResponse struct {
	WordsPerDay int  `json:"words_per_day"`
	Active      bool `json:"active"`
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	plan, err := s.db.ActivePlan(s.defaultQuota, time.Now())
	if err != nil {
		slog.Error("failed to load study plan", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, planResponse{WordsPerDay: plan.WordsPerDay, Active: plan.Active})
}

type planRequest struct {
	WordsPerDay int `json:"words_per_day" validate:"gt=0"`
}

func (s *Server) handlePutPlan(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		respondError(w, http.StatusBadRequest, "words_per_day must be positive")
		return
	}

	// Make sure a plan row exists before updating it.
	if _, err := s.db.ActivePlan(s.defaultQuota, time.Now()); err != nil {
		slog.Error("failed to load study plan", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if err := s.db.SetWordsPerDay(req.WordsPerDay); err != nil {
		slog.Error("failed to update study plan", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, http.StatusOK, planResponse{WordsPerDay: req.WordsPerDay, Active: true})
}

type sourceResponse struct {
	ID          int64      `json:"id"`
	Path        string     `json:"path"`
	Type        string     `json:"type"`
	LastScanned *time.Time `json:"last_scanned,omitempty"`
}

func (s *Server) handleListSources(w http.ResponseWriter, r *http.Request) {
	sources, err := s.db.AllSources()
	if err != nil {
		slog.Error("failed to list sources", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := make([]sourceResponse, 0, len(sources))
	for _, src := range sources {
		item := sourceResponse{ID: src.ID, Path: src.Path, Type: src.Type}
		if src.LastScanned.Valid {
			t := src.LastScanned.Time
			item.LastScanned = &t
		}
		resp = append(resp, item)
	}
	respondJSON(w, http.StatusOK, resp)
}

type sourceRequest struct {
	Path string `json:"path" validate:"required"`
}

func (s *Server) handleAddSource(w http.ResponseWriter, r *http.Request) {
	var req sourceRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		respondError(w, http.StatusBadRequest, "path is required")
		return
	}

	sourceType := syncsrc.DetectSourceType(req.Path)
	id, err := s.db.InsertSource(req.Path, sourceType)
	if err != nil {
		slog.Error("failed to insert source", "path", req.Path, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to add source")
		return
	}

	respondJSON(w, http.StatusCreated, sourceResponse{ID: id, Path: req.Path, Type: sourceType})
}

func (s *Server) handleDeleteSource(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "sourceID"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid source ID")
		return
	}

	if err := s.db.DeleteSource(id); err != nil {
		slog.Error("failed to delete source", "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to delete source")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleSync runs a full reconciliation in the foreground so the caller
// sees a fresh store when the request returns.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	if err := syncsrc.RunAll(s.db, s.reposDir, time.Now()); err != nil {
		slog.Error("sync failed", "error", err)
		respondError(w, http.StatusInternalServerError, "sync failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "synced"})
}

func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
