package service

import (
	"regexp"
	"strings"

	"github.com/stackshelf/backend/models"
)

var (
	nonWordChars   = regexp.MustCompile(`[^\w\s]`)
	whitespaceRuns = regexp.MustCompile(`\s+`)
)

// Normalize lowercases a title, turns every character that is neither a
// word character nor whitespace into a space, collapses whitespace runs to
// single spaces, and trims. Punctuation acts as a word boundary, so
// "Clean-Code" and "clean code" normalize identically. Pure and
// deterministic; stored on each book as normalizedTitle and used as the
// index key.
func Normalize(title string) string {
	s := strings.ToLower(title)
	s = nonWordChars.ReplaceAllString(s, " ")
	s = whitespaceRuns.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// minIndexTokenLen: title word tokens at or below this length are too
// generic to index.
const minIndexTokenLen = 2

type indexedTitle struct {
	normalized string
	book       *models.Book
}

type indexedWord struct {
	token string
	book  *models.Book
}

// TitleIndex is a point-in-time lookup from normalized text fragments to
// books. Callers rebuild it from the active catalog before each batch run;
// books added after a build stay invisible until the next one. Entries keep
// catalog insertion order so matching discovers candidates deterministically.
type TitleIndex struct {
	titles []indexedTitle
	words  []indexedWord
}

// BuildTitleIndex indexes every book by its full normalized title and by
// each title word token longer than minIndexTokenLen. A word token already
// claimed by an earlier book is not overwritten (first-registered wins).
// Because the index is rebuilt from the active catalog only, a word claimed
// by a book that later goes inactive falls to the next registrant at the
// next build.
func BuildTitleIndex(books []models.Book) *TitleIndex {
	idx := &TitleIndex{}
	claimed := make(map[string]bool)
	for i := range books {
		book := &books[i]
		normalized := book.NormalizedTitle
		if normalized == "" {
			normalized = Normalize(book.Title)
		}
		if normalized == "" {
			continue
		}
		idx.titles = append(idx.titles, indexedTitle{normalized: normalized, book: book})
		for _, token := range strings.Fields(normalized) {
			if len(token) <= minIndexTokenLen {
				continue
			}
			if claimed[token] {
				continue
			}
			claimed[token] = true
			idx.words = append(idx.words, indexedWord{token: token, book: book})
		}
	}
	return idx
}

// Size returns the number of indexed titles.
func (idx *TitleIndex) Size() int {
	return len(idx.titles)
}

// WordOwner returns the book that claimed a word token, or nil.
func (idx *TitleIndex) WordOwner(token string) *models.Book {
	for _, w := range idx.words {
		if w.token == token {
			return w.book
		}
	}
	return nil
}
