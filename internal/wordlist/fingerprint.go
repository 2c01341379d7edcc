package wordlist

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// Key returns the canonical store key for a word: trimmed and lowercased,
// so "Ephemeral " and "ephemeral" are the same entry.
func Key(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}

// Normalize concatenates an entry's content after cleaning each part. It
// trims whitespace, lowercases, and normalizes line endings so cosmetic
// edits in a source file do not count as content changes.
func Normalize(e Entry) string {
	normalizePart := func(part string) string {
		p := strings.ToLower(part)
		p = strings.TrimSpace(p)
		p = strings.ReplaceAll(p, "\r\n", "\n")
		return p
	}

	parts := []string{
		normalizePart(e.Word),
		normalizePart(e.Meaning),
		normalizePart(e.Example),
		normalizePart(e.PartOfSpeech),
	}

	// Joined with newlines so adjacent fields can never run together and
	// collide with a different entry's content.
	return strings.Join(parts, "\n")
}

// Fingerprint returns the SHA-256 of the normalized entry as a hex string.
// Sync compares fingerprints to decide whether a stored word's descriptive
// fields need refreshing.
func Fingerprint(e Entry) string {
	normalized := Normalize(e)
	hashBytes := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("%x", hashBytes)
}
