package sync

import (
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

func TestDetectSourceType(t *testing.T) {
	testCases := []struct {
		path     string
		expected string
	}{
		{"/home/me/wordlists", SourceTypeLocal},
		{"./lists", SourceTypeLocal},
		{"https://github.com/someone/gre-words.git", SourceTypeGit},
		{"https://github.com/someone/gre-words", SourceTypeGit},
		{"git@github.com:someone/gre-words.git", SourceTypeGit},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.expected, DetectSourceType(tc.path))
		})
	}
}

func TestGitURLToLocalPath(t *testing.T) {
	path, err := gitURLToLocalPath("repos", "https://github.com/someone/gre-words.git")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("repos", "github.com", "someone", "gre-words"), path)

	path, err = gitURLToLocalPath("repos", "git@github.com:someone/gre-words.git")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("repos", "github.com", "someone", "gre-words"), path)

	_, err = gitURLToLocalPath("repos", "not a url at all")
	assert.Error(t, err)
}

func TestRunAllReconcilesLocalSource(t *testing.T) {
	db, err := storage.OpenMemory()
	require.NoError(t, err)
	defer db.Close()

	dir := t.TempDir()
	writeList := func(name, content string) {
		t.Helper()
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	writeList("gre.txt", "W: Laconic\nM: using few words\n---\nW: terse\nM: brief\n")

	sourceID, err := db.InsertSource(dir, SourceTypeLocal)
	require.NoError(t, err)

	now := time.Date(2024, time.March, 10, 8, 0, 0, 0, time.UTC)
	require.NoError(t, RunAll(db, t.TempDir(), now))

	// Keys are normalized; both entries land with fresh state.
	laconic, err := db.FindWord("laconic")
	require.NoError(t, err)
	require.NotNil(t, laconic)
	assert.Equal(t, "using few words", laconic.Meaning)
	assert.Equal(t, sm2.DefaultEase, laconic.EaseFactor)
	assert.Zero(t, laconic.Repetitions)
	assert.Equal(t, sourceID, laconic.SourceID)

	src, err := db.FindSourceByPath(dir)
	require.NoError(t, err)
	assert.True(t, src.LastScanned.Valid)

	// Second pass: meaning changed, one entry removed, one added.
	writeList("gre.txt", "W: laconic\nM: marked by few words\n---\nW: pithy\nM: concise and forceful\n")

	// Give the surviving word some review history first; an update must not touch it.
	state := sm2.Update(sm2.NewState(), 5, now)
	reviewed := *laconic
	reviewed.ApplyState(state)
	require.NoError(t, db.SaveReview(reviewed, domain.ReviewEvent{
		Word: reviewed.Word, Quality: 5, OccurredAt: now,
		EaseFactor: state.EaseFactor, IntervalDays: state.IntervalDays, NextDueAt: state.NextDueAt,
	}))

	require.NoError(t, RunAll(db, t.TempDir(), now.AddDate(0, 0, 1)))

	laconic, err = db.FindWord("laconic")
	require.NoError(t, err)
	require.NotNil(t, laconic)
	assert.Equal(t, "marked by few words", laconic.Meaning, "changed entries are refreshed")
	assert.Equal(t, 1, laconic.Repetitions, "retention state survives content updates")

	terse, err := db.FindWord("terse")
	require.NoError(t, err)
	assert.Nil(t, terse, "orphaned words are deleted")

	pithy, err := db.FindWord("pithy")
	require.NoError(t, err)
	require.NotNil(t, pithy)
	assert.Equal(t, "concise and forceful", pithy.Meaning)
}

func TestRunAllNoSources(t *testing.T) {
	db, err := storage.OpenMemory()
	require.NoError(t, err)
	defer db.Close()

	assert.NoError(t, RunAll(db, t.TempDir(), time.Now()))
}
