// Package wordlist parses plain-text wordlist files into vocabulary entries
// and fingerprints their content so sync can tell new, changed and unchanged
// entries apart.
//
// The format is line-oriented:
//
//	W: ephemeral
//	M: lasting for a very short time
//	E: The ephemeral joys of childhood.
//	P: adjective
//
// Entries are separated by a new W: line or an explicit "---". M, E and P
// values may continue over multiple lines.
package wordlist

import (
	"bufio"
	"io"
	"os"
	"strings"
)

// Entry is one parsed wordlist record, not yet attached to any store state.
type Entry struct {
	Word         string
	Meaning      string
	Example      string
	PartOfSpeech string
}

const (
	wordPrefix    = "W:"
	meaningPrefix = "M:"
	examplePrefix = "E:"
	posPrefix     = "P:"
)

type state int

const (
	seeking state = iota
	readingWord
	readingMeaning
	readingExample
	readingPOS
)

// ParseFile reads a wordlist file from the given path.
func ParseFile(path string) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Parse(file)
}

// Parse extracts all entries from an io.Reader. Text outside any entry is
// ignored, so wordlists can carry headings and commentary.
func Parse(r io.Reader) ([]Entry, error) {
	scanner := bufio.NewScanner(r)
	var entries []Entry
	var current Entry
	var block []string
	currentState := seeking

	flushBlock := func() {
		if len(block) == 0 {
			return
		}
		content := strings.Join(block, "\n")
		switch currentState {
		case readingWord:
			// A word key is a single token; extra lines are discarded.
			current.Word = strings.TrimSpace(block[0])
		case readingMeaning:
			current.Meaning = content
		case readingExample:
			current.Example = content
		case readingPOS:
			current.PartOfSpeech = strings.TrimSpace(content)
		}
		block = nil
	}

	finishEntry := func() {
		flushBlock()
		if current.Word != "" {
			entries = append(entries, current)
		}
		current = Entry{}
		currentState = seeking
	}

	startBlock := func(next state, line, prefix string) {
		flushBlock()
		currentState = next
		content := strings.TrimPrefix(line, prefix)
		if strings.HasPrefix(content, " ") {
			content = content[1:]
		}
		block = append(block, content)
	}

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case line == "---":
			finishEntry()
		case strings.HasPrefix(line, wordPrefix):
			if currentState != seeking {
				finishEntry()
			}
			startBlock(readingWord, line, wordPrefix)
		case strings.HasPrefix(line, meaningPrefix):
			startBlock(readingMeaning, line, meaningPrefix)
		case strings.HasPrefix(line, examplePrefix):
			startBlock(readingExample, line, examplePrefix)
		case strings.HasPrefix(line, posPrefix):
			startBlock(readingPOS, line, posPrefix)
		default:
			if currentState != seeking {
				block = append(block, line)
			}
		}
	}

	finishEntry()

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}
