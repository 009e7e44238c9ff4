package service

import (
	"math"
	"sort"
	"strings"

	"github.com/stackshelf/backend/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	// DefaultMinConfidence is the threshold applied when the caller does
	// not supply one.
	DefaultMinConfidence = 0.5

	// hardConfidenceFloor: candidates at or below this confidence are
	// dropped regardless of the caller's threshold.
	hardConfidenceFloor = 0.3

	// maxCandidates caps the number of matches returned per article.
	maxCandidates = 5

	// titleMatchConfidence is assigned when a full normalized title occurs
	// verbatim in the article text.
	titleMatchConfidence = 0.9

	// minTitleMatchLen: full titles must be at least this long to qualify
	// for the substring pass; shorter ones match too much by accident.
	minTitleMatchLen = 10

	// minWordMatchLen: word tokens must be longer than this to be used in
	// the weak pass.
	minWordMatchLen = 3

	// wordMatchStep and wordMatchCeiling shape the weak-pass confidence:
	// min(wordMatchCeiling, occurrences*wordMatchStep).
	wordMatchStep    = 0.2
	wordMatchCeiling = 0.7
)

// DefaultIndicatorWords gates the weak word pass: it only runs when the
// article text contains at least one of these. Deployments matching other
// languages override the list via MATCH_INDICATOR_WORDS.
var DefaultIndicatorWords = []string{
	"book", "books", "reading", "read", "author", "chapter", "recommend", "recommended",
}

// Candidate is one scored book reference found in an article.
type Candidate struct {
	Book        *models.Book
	Confidence  float64
	MatchedText string
}

// Matcher finds probable book references in article text against a
// TitleIndex. It holds no mutable state and performs no I/O; Match is pure
// given the index it was built with.
type Matcher struct {
	index         *TitleIndex
	minConfidence float64
	indicators    map[string]bool
}

// NewMatcher builds a matcher over a title index. minConfidence <= 0 falls
// back to DefaultMinConfidence; an empty indicator list falls back to
// DefaultIndicatorWords.
func NewMatcher(index *TitleIndex, minConfidence float64, indicatorWords []string) *Matcher {
	if minConfidence <= 0 {
		minConfidence = DefaultMinConfidence
	}
	if len(indicatorWords) == 0 {
		indicatorWords = DefaultIndicatorWords
	}
	indicators := make(map[string]bool, len(indicatorWords))
	for _, w := range indicatorWords {
		indicators[strings.ToLower(strings.TrimSpace(w))] = true
	}
	return &Matcher{index: index, minConfidence: minConfidence, indicators: indicators}
}

// Match scans an article's title and body and returns up to maxCandidates
// scored candidates, highest confidence first. An empty body is fine; an
// article with no text at all matches nothing. The text goes through the
// same normalization as the index keys, so punctuated spellings like
// "Clean-Code" still hit the indexed "clean code".
//
// Two passes run in order. The title pass emits a candidate at
// titleMatchConfidence when a long-enough full normalized title occurs as a
// substring of the text. The word pass runs only when the text contains an
// indicator word, and scores each claimed title token by how many words of
// the text contain it. The first candidate seen per book wins, so the title
// pass outranks the word pass for the same book. Equal confidences keep
// discovery order.
func (m *Matcher) Match(title, body string) []Candidate {
	searchText := Normalize(title + " " + body)
	if searchText == "" {
		return nil
	}

	var candidates []Candidate
	seen := make(map[primitive.ObjectID]bool)

	for _, entry := range m.index.titles {
		if len(entry.normalized) < minTitleMatchLen {
			continue
		}
		if !strings.Contains(searchText, entry.normalized) {
			continue
		}
		if seen[entry.book.ID] {
			continue
		}
		seen[entry.book.ID] = true
		candidates = append(candidates, Candidate{
			Book:        entry.book,
			Confidence:  titleMatchConfidence,
			MatchedText: entry.normalized,
		})
	}

	words := strings.Fields(searchText)
	if m.containsIndicator(words) {
		for _, entry := range m.index.words {
			if len(entry.token) <= minWordMatchLen {
				continue
			}
			count := 0
			for _, w := range words {
				if strings.Contains(w, entry.token) {
					count++
				}
			}
			if count == 0 {
				continue
			}
			if seen[entry.book.ID] {
				continue
			}
			seen[entry.book.ID] = true
			candidates = append(candidates, Candidate{
				Book:        entry.book,
				Confidence:  math.Min(wordMatchCeiling, float64(count)*wordMatchStep),
				MatchedText: entry.token,
			})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})
	if len(candidates) > maxCandidates {
		candidates = candidates[:maxCandidates]
	}

	filtered := candidates[:0]
	for _, c := range candidates {
		if c.Confidence <= hardConfidenceFloor {
			continue
		}
		if c.Confidence < m.minConfidence {
			continue
		}
		filtered = append(filtered, c)
	}
	return filtered
}

func (m *Matcher) containsIndicator(words []string) bool {
	for _, w := range words {
		if m.indicators[w] {
			return true
		}
	}
	return false
}
