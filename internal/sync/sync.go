// Package sync reconciles registered wordlist sources against the store:
// new entries are inserted with a fresh retention state, changed entries
// have their descriptive fields refreshed, and entries that disappeared
// from their source are deleted along with their review history.
package sync

import (
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/conorfennell/wordmill/internal/domain"
	"github.com/conorfennell/wordmill/internal/gitsource"
	"github.com/conorfennell/wordmill/internal/sm2"
	"github.com/conorfennell/wordmill/internal/storage"
	"github.com/conorfennell/wordmill/internal/wordlist"
)

// SourceTypeLocal and SourceTypeGit are the two kinds of wordlist source.
const (
	SourceTypeLocal = "local"
	SourceTypeGit   = "git"
)

// DetectSourceType classifies a source path as a git URL or a local directory.
func DetectSourceType(path string) string {
	if strings.HasSuffix(path, ".git") || strings.HasPrefix(path, "git@") ||
		strings.HasPrefix(path, "https://") || strings.HasPrefix(path, "http://") {
		return SourceTypeGit
	}
	return SourceTypeLocal
}

// RunAll reconciles every registered source. Git sources are cloned or
// pulled into reposDir first. Failures on one source are logged and do not
// stop the others.
func RunAll(db *storage.DB, reposDir string, now time.Time) error {
	slog.Info("starting sync for all sources")
	sources, err := db.AllSources()
	if err != nil {
		return fmt.Errorf("failed to get sources: %w", err)
	}

	if len(sources) == 0 {
		slog.Info("no sources configured")
		return nil
	}

	for _, source := range sources {
		slog.Info("syncing source", "id", source.ID, "type", source.Type, "path", source.Path)

		localPath := source.Path
		if source.Type == SourceTypeGit {
			localPath, err = gitURLToLocalPath(reposDir, source.Path)
			if err != nil {
				slog.Error("cannot determine local path for git repo", "url", source.Path, "error", err)
				continue
			}
			if err := gitsource.Sync(source.Path, localPath); err != nil {
				slog.Error("failed to sync git repo", "url", source.Path, "error", err)
				continue
			}
		}

		if err := reconcile(db, source.ID, localPath, now); err != nil {
			slog.Error("failed to reconcile source", "id", source.ID, "path", localPath, "error", err)
		}
	}

	slog.Info("sync complete")
	return nil
}

// reconcile walks one source directory, applies its entries to the store and
// deletes words the source no longer contains.
func reconcile(db *storage.DB, sourceID int64, dir string, now time.Time) error {
	var parsed, inserted, updated int
	var parseErrors []error
	found := make(map[string]bool)

	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isWordlistFile(d.Name()) {
			return nil
		}

		entries, parseErr := wordlist.ParseFile(path)
		if parseErr != nil {
			parseErrors = append(parseErrors, fmt.Errorf("parsing %s: %w", path, parseErr))
		}

		for _, entry := range entries {
			key := wordlist.Key(entry.Word)
			if key == "" || found[key] {
				continue
			}
			parsed++
			found[key] = true
			fingerprint := wordlist.Fingerprint(entry)

			existing, findErr := db.FindWord(key)
			if findErr != nil {
				parseErrors = append(parseErrors, fmt.Errorf("db check for %q: %w", key, findErr))
				continue
			}

			switch {
			case existing == nil:
				word := domain.Word{
					Word:         key,
					Meaning:      entry.Meaning,
					Example:      entry.Example,
					PartOfSpeech: entry.PartOfSpeech,
					Fingerprint:  fingerprint,
					EaseFactor:   sm2.DefaultEase,
					CreatedAt:    now,
					SourceID:     sourceID,
				}
				if insertErr := db.InsertWord(word); insertErr != nil {
					parseErrors = append(parseErrors, fmt.Errorf("db insert for %q: %w", key, insertErr))
					continue
				}
				inserted++
			case existing.Fingerprint != fingerprint:
				existing.Meaning = entry.Meaning
				existing.Example = entry.Example
				existing.PartOfSpeech = entry.PartOfSpeech
				existing.Fingerprint = fingerprint
				if updateErr := db.UpdateWordContent(*existing); updateErr != nil {
					parseErrors = append(parseErrors, fmt.Errorf("db update for %q: %w", key, updateErr))
					continue
				}
				updated++
			}
		}
		return nil
	})
	if walkErr != nil {
		return fmt.Errorf("walking %s: %w", dir, walkErr)
	}

	stored, err := db.WordsBySourceID(sourceID)
	if err != nil {
		return fmt.Errorf("listing words for source %d: %w", sourceID, err)
	}

	var orphaned int
	for _, w := range stored {
		if found[w.Word] {
			continue
		}
		slog.Info("deleting orphaned word", "word", w.Word)
		if err := db.DeleteWord(w.Word); err != nil {
			slog.Warn("failed to delete orphaned word", "word", w.Word, "error", err)
			continue
		}
		orphaned++
	}

	if err := db.UpdateSourceLastScanned(sourceID, now); err != nil {
		slog.Warn("failed to update last scanned for source", "source_id", sourceID, "error", err)
	}

	slog.Info("reconciliation complete",
		"path", dir,
		"parsed", parsed,
		"inserted", inserted,
		"updated", updated,
		"orphaned_deleted", orphaned,
		"errors", len(parseErrors),
	)
	return nil
}

func isWordlistFile(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".txt") || strings.HasSuffix(lower, ".md")
}

func gitURLToLocalPath(baseDir, repoURL string) (string, error) {
	parsedURL, err := url.Parse(repoURL)
	if err != nil || (parsedURL.Scheme != "https" && parsedURL.Scheme != "http") {
		// scp-like syntax: git@host:user/repo.git
		if strings.Contains(repoURL, "@") {
			parts := strings.Split(repoURL, ":")
			if len(parts) == 2 {
				hostAndUser := strings.Split(parts[0], "@")
				if len(hostAndUser) == 2 {
					host := hostAndUser[1]
					repoPath := strings.TrimSuffix(parts[1], ".git")
					return filepath.Join(baseDir, host, repoPath), nil
				}
			}
		}
		return "", fmt.Errorf("could not parse git URL: %s", repoURL)
	}

	sanitizedPath := strings.TrimSuffix(parsedURL.Path, ".git")
	return filepath.Join(baseDir, parsedURL.Host, sanitizedPath), nil
}
