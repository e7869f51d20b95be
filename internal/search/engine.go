package search

import (
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/pders01/popcorn/internal/storage"
)

// Engine scores the watched list in memory. It suits lists of a few
// thousand entries, which is far beyond what anyone rates by hand.
type Engine struct {
	entries []storage.WatchedEntry
}

func NewEngine(entries []storage.WatchedEntry) *Engine {
	e := &Engine{}
	e.OnWatchedChanged(entries)
	return e
}

func (e *Engine) OnWatchedChanged(entries []storage.WatchedEntry) {
	e.entries = make([]storage.WatchedEntry, len(entries))
	copy(e.entries, entries)
}

func (e *Engine) DocCount() (int, error) {
	return len(e.entries), nil
}

func (e *Engine) Search(query string, limit int) ([]*Result, error) {
	if utf8.RuneCountInString(strings.TrimSpace(query)) < MinQueryLength {
		return []*Result{}, nil
	}

	terms := tokenize(query)
	if len(terms) == 0 {
		return []*Result{}, nil
	}

	results := make([]*Result, 0)
	for _, entry := range e.entries {
		if r := scoreEntry(entry, terms); r != nil {
			results = append(results, r)
		}
	}

	// Stable so equal scores keep watched-list order.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func scoreEntry(entry storage.WatchedEntry, terms []string) *Result {
	var matches []Match
	var total float64

	if s := scoreField(entry.Title, terms, 4.0); s > 0 {
		matches = append(matches, Match{Field: "title", Text: entry.Title, Weight: s})
		total += s
	}
	if s := scoreField(entry.Year, terms, 1.0); s > 0 {
		matches = append(matches, Match{Field: "year", Text: entry.Year, Weight: s})
		total += s
	}

	if total == 0 {
		return nil
	}
	return &Result{Entry: entry, Score: total, Matches: matches}
}

// scoreField rewards substring, whole-word and prefix hits, and accepts a
// single typo for terms of four runes or more.
func scoreField(text string, terms []string, weight float64) float64 {
	if text == "" {
		return 0
	}

	lower := strings.ToLower(text)
	words := tokenize(text)
	if len(words) == 0 {
		return 0
	}

	var score float64
	matched := 0

	for _, term := range terms {
		hit := false
		if strings.Contains(lower, term) {
			score += 2.0
			hit = true
		}
		for _, word := range words {
			switch {
			case word == term:
				score += 1.5
				hit = true
			case strings.HasPrefix(word, term):
				score += 1.0
				hit = true
			case utf8.RuneCountInString(term) >= 4 && levenshtein.ComputeDistance(word, term) == 1:
				score += 0.75
				hit = true
			}
		}
		if hit {
			matched++
		}
	}

	if matched == 0 {
		return 0
	}
	if len(terms) > 1 && matched > 1 {
		score *= 1.0 + float64(matched)/float64(len(terms))
	}

	tf := float64(matched) / float64(len(words))
	score *= 1.0 + math.Log(1.0+tf)

	return score * weight
}

// tokenize lowercases text and splits it on anything that is not a letter
// or digit. Single runes are dropped.
func tokenize(text string) []string {
	var terms []string
	var current strings.Builder

	flush := func() {
		if utf8.RuneCountInString(current.String()) > 1 {
			terms = append(terms, current.String())
		}
		current.Reset()
	}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			current.WriteRune(unicode.ToLower(r))
		} else {
			flush()
		}
	}
	flush()

	return terms
}
