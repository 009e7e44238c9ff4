package service

import (
	"testing"

	"github.com/stackshelf/backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Clean Code", "clean code"},
		{" Clean-Code!! ", "clean code"},
		{"Atomic-Habits", "atomic habits"},
		{"The Pragmatic Programmer: Your Journey to Mastery", "the pragmatic programmer your journey to mastery"},
		{"Design   Patterns", "design patterns"},
		{"UPPER lower", "upper lower"},
		{"!!!", ""},
		{"", ""},
		{"  spaced\tout\n", "spaced out"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestNormalizeDeterminism(t *testing.T) {
	// Differently punctuated spellings of the same words normalize equally.
	assert.Equal(t, Normalize("clean code"), Normalize(" Clean-Code!! "))
	assert.Equal(t, Normalize("clean code"), Normalize(" Clean  Code!! "))
	assert.Equal(t, Normalize("clean code"), Normalize("Clean Code"))
}

func TestBuildTitleIndex_WordClaiming(t *testing.T) {
	books := []models.Book{
		{Title: "Effective Go Patterns", NormalizedTitle: "effective go patterns"},
		{Title: "Effective Java", NormalizedTitle: "effective java"},
	}
	idx := BuildTitleIndex(books)

	require.Equal(t, 2, idx.Size())
	// "effective" was claimed by the first book and is not overwritten.
	owner := idx.WordOwner("effective")
	require.NotNil(t, owner)
	assert.Equal(t, "Effective Go Patterns", owner.Title)
	// The second book still claims its own unclaimed token.
	owner = idx.WordOwner("java")
	require.NotNil(t, owner)
	assert.Equal(t, "Effective Java", owner.Title)
}

func TestBuildTitleIndex_SkipsShortTokens(t *testing.T) {
	idx := BuildTitleIndex([]models.Book{
		{Title: "Go in Action", NormalizedTitle: "go in action"},
	})
	assert.Nil(t, idx.WordOwner("go"), "two-letter tokens are not indexed")
	assert.Nil(t, idx.WordOwner("in"))
	assert.NotNil(t, idx.WordOwner("action"))
}

func TestBuildTitleIndex_NormalizesWhenMissing(t *testing.T) {
	idx := BuildTitleIndex([]models.Book{{Title: "Refactoring: Improving Code"}})
	require.Equal(t, 1, idx.Size())
	assert.NotNil(t, idx.WordOwner("refactoring"))
}

func TestBuildTitleIndex_SkipsEmptyTitles(t *testing.T) {
	idx := BuildTitleIndex([]models.Book{{Title: "!!!"}, {Title: ""}})
	assert.Equal(t, 0, idx.Size())
}
