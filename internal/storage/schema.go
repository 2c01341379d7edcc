package storage

const schema = `
-- The 'words' table holds one row per vocabulary entry, keyed by the word
-- itself, together with its SM-2 retention state.
CREATE TABLE IF NOT EXISTS words (
    word             TEXT PRIMARY KEY,
    meaning          TEXT NOT NULL DEFAULT '',
    example_sentence TEXT NOT NULL DEFAULT '',
    part_of_speech   TEXT NOT NULL DEFAULT '',
    fingerprint      TEXT NOT NULL DEFAULT '',
    ease_factor      REAL NOT NULL DEFAULT 2.5,
    interval_days    INTEGER NOT NULL DEFAULT 0,
    repetitions      INTEGER NOT NULL DEFAULT 0,
    times_reviewed   INTEGER NOT NULL DEFAULT 0,
    times_correct    INTEGER NOT NULL DEFAULT 0,
    last_reviewed_at DATETIME,
    next_due_at      DATETIME,
    created_at       DATETIME NOT NULL,
    source_id        INTEGER,

    FOREIGN KEY(source_id) REFERENCES sources(id)
);

CREATE INDEX IF NOT EXISTS idx_words_next_due ON words(next_due_at);

-- The 'review_events' table is an append-only log, one row per review, with
-- a snapshot of the state that review produced. Rows are removed only when
-- their word is deleted.
CREATE TABLE IF NOT EXISTS review_events (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    word          TEXT NOT NULL,
    quality       INTEGER NOT NULL,
    occurred_at   DATETIME NOT NULL,
    ease_factor   REAL NOT NULL,
    interval_days INTEGER NOT NULL,
    next_due_at   DATETIME NOT NULL,

    FOREIGN KEY(word) REFERENCES words(word) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_events_occurred ON review_events(occurred_at);

-- The 'study_plans' table holds the daily new-word quota. At most one row is
-- active at a time; a default row is created on first use.
CREATE TABLE IF NOT EXISTS study_plans (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    words_per_day INTEGER NOT NULL DEFAULT 20,
    active        INTEGER NOT NULL DEFAULT 1,
    created_at    DATETIME NOT NULL
);

-- The 'sources' table tracks where wordlists come from, either a local
-- directory or a git repository.
CREATE TABLE IF NOT EXISTS sources (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    path         TEXT NOT NULL UNIQUE,
    type         TEXT NOT NULL DEFAULT 'local',
    last_scanned DATETIME
);
`
