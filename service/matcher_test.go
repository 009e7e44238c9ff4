package service

import (
	"fmt"
	"testing"

	"github.com/stackshelf/backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func indexOf(titles ...string) *TitleIndex {
	books := make([]models.Book, len(titles))
	for i, title := range titles {
		books[i] = models.Book{
			ID:              primitive.NewObjectID(),
			Title:           title,
			NormalizedTitle: Normalize(title),
		}
	}
	return BuildTitleIndex(books)
}

func TestMatch_FullTitleSubstring(t *testing.T) {
	m := NewMatcher(indexOf("Clean Code"), DefaultMinConfidence, nil)

	got := m.Match("Weekend reads", "I recommend Clean Code for beginners")

	require.Len(t, got, 1)
	assert.Equal(t, "Clean Code", got[0].Book.Title)
	assert.Equal(t, 0.9, got[0].Confidence)
	assert.Equal(t, "clean code", got[0].MatchedText)
}

func TestMatch_TitleOnlyArticle(t *testing.T) {
	m := NewMatcher(indexOf("The Pragmatic Programmer"), DefaultMinConfidence, nil)

	got := m.Match("Why The Pragmatic Programmer still holds up", "")

	require.Len(t, got, 1)
	assert.Equal(t, 0.9, got[0].Confidence)
}

func TestMatch_EmptyInput(t *testing.T) {
	m := NewMatcher(indexOf("Clean Code"), DefaultMinConfidence, nil)
	assert.Empty(t, m.Match("", ""))
	assert.Empty(t, m.Match("   ", "  "))
}

func TestMatch_WordPassRequiresIndicator(t *testing.T) {
	m := NewMatcher(indexOf("Kubernetes Operators"), 0.1, nil)

	// Same token occurrences, with and without an indicator word.
	gated := m.Match("", "this guide covers kubernetes kubernetes-tooling kubernetes-network deeply")
	assert.Empty(t, gated, "word pass must not run without an indicator word")

	open := m.Match("", "this book covers kubernetes kubernetes-tooling kubernetes-network deeply")
	require.Len(t, open, 1)
	assert.InDelta(t, 0.6, open[0].Confidence, 1e-9)
	assert.Equal(t, "kubernetes", open[0].MatchedText)
}

func TestMatch_ConfidenceFloor(t *testing.T) {
	// A single weak occurrence scores 0.2, at or below the 0.3 floor even
	// when the caller's threshold is lower.
	m := NewMatcher(indexOf("Kubernetes Operators"), 0.1, nil)
	got := m.Match("", "great book about kubernetes")
	assert.Empty(t, got)
}

func TestMatch_WordConfidenceCeiling(t *testing.T) {
	m := NewMatcher(indexOf("Terraform Essentials"), 0.1, nil)
	got := m.Match("", "book terraform terraform-cloud terraform-modules terraform-state terraform-registry")
	require.Len(t, got, 1)
	assert.InDelta(t, 0.7, got[0].Confidence, 1e-9, "weak confidence is capped at 0.7")
}

func TestMatch_MinConfidenceThreshold(t *testing.T) {
	m := NewMatcher(indexOf("Clean Code"), 0.95, nil)
	got := m.Match("", "I recommend Clean Code for beginners")
	assert.Empty(t, got, "caller threshold above 0.9 drops title matches")
}

func TestMatch_CapsAtFiveCandidates(t *testing.T) {
	titles := make([]string, 8)
	body := "my favourite books this year:"
	for i := range titles {
		titles[i] = fmt.Sprintf("Volume Number %d Handbook", i)
		body += " " + titles[i]
	}
	m := NewMatcher(indexOf(titles...), DefaultMinConfidence, nil)

	got := m.Match("", body)

	assert.Len(t, got, 5)
	for _, c := range got {
		assert.Greater(t, c.Confidence, 0.3)
	}
}

func TestMatch_DedupePrefersTitlePass(t *testing.T) {
	// The full title occurs and its tokens repeat; the book must appear
	// once, at title-pass confidence.
	m := NewMatcher(indexOf("Designing Data-Intensive Applications"), DefaultMinConfidence, nil)
	got := m.Match("", "book review: Designing Data-Intensive Applications, data-intensive applications at scale")
	require.Len(t, got, 1)
	assert.Equal(t, 0.9, got[0].Confidence)
}

func TestMatch_PunctuatedSpellingStillMatches(t *testing.T) {
	// Punctuation is a word boundary on both sides of the comparison, so a
	// hyphenated spelling in the article hits the indexed title.
	m := NewMatcher(indexOf("Clean Code"), DefaultMinConfidence, nil)

	got := m.Match("", "I recommend Clean-Code for beginners, great book")

	require.Len(t, got, 1)
	assert.Equal(t, "Clean Code", got[0].Book.Title)
	assert.Equal(t, 0.9, got[0].Confidence)

	// The same spelling on the catalog side indexes identically.
	m = NewMatcher(indexOf("Clean-Code"), DefaultMinConfidence, nil)
	got = m.Match("", "I recommend clean code for beginners")
	require.Len(t, got, 1)
	assert.Equal(t, 0.9, got[0].Confidence)
}

func TestMatch_TiesKeepDiscoveryOrder(t *testing.T) {
	m := NewMatcher(indexOf("Structure and Interpretation", "Patterns of Enterprise"), DefaultMinConfidence, nil)
	got := m.Match("", "structure and interpretation next to patterns of enterprise on my shelf")
	require.Len(t, got, 2)
	assert.Equal(t, "Structure and Interpretation", got[0].Book.Title)
	assert.Equal(t, "Patterns of Enterprise", got[1].Book.Title)
}

func TestMatch_CustomIndicatorWords(t *testing.T) {
	m := NewMatcher(indexOf("Kubernetes Operators"), 0.1, []string{"livre"})
	got := m.Match("", "un livre sur kubernetes kubernetes-natif kubernetes-avance")
	require.Len(t, got, 1)

	got = m.Match("", "book kubernetes kubernetes-natif kubernetes-avance")
	assert.Empty(t, got, "default indicators are replaced, not extended")
}
