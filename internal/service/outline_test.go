package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cardforge/cardforge-go/internal/models"
	"github.com/cardforge/cardforge-go/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdaptiveTopicRange(t *testing.T) {
	tests := []struct {
		name       string
		contentLen int
		wantMin    int
		wantMax    int
	}{
		{"short content", 500, 2, 8},
		{"threshold boundary", 5000, 2, 8},
		{"just above threshold", 5001, 3, 7},
		{"long content", 20000, 13, 25},
		{"max capped at 30", 30000, 20, 30},
		{"min clamped to cap", 100000, 30, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			minTopics, maxTopics := adaptiveTopicRange(tt.contentLen)
			assert.Equal(t, tt.wantMin, minTopics)
			assert.Equal(t, tt.wantMax, maxTopics)
			assert.LessOrEqual(t, minTopics, maxTopics)
		})
	}
}

func TestOutlinePromptEmbedsRange(t *testing.T) {
	gen := &scriptGen{fn: func(_ int, prompt string) (string, error) {
		assert.Contains(t, prompt, "between 13 and 25 topics")
		return `{"topics": [{"title": "t1"}]}`, nil
	}}
	e := newTestExtractor(newFakeStore(), gen)

	_, err := e.Outline(context.Background(), strings.Repeat("x", 20000), models.ModeStandard)
	require.NoError(t, err)
	assert.Equal(t, 1, gen.callCount())
}

func TestOutlineAcceptsAlternateFieldName(t *testing.T) {
	gen := &scriptGen{fn: func(int, string) (string, error) {
		return `{"outline": [
			{"title": "First", "difficulty": "Easy"},
			{"title": "Second", "difficulty": "Hard"}
		]}`, nil
	}}
	e := newTestExtractor(newFakeStore(), gen)

	topics, err := e.Outline(context.Background(), "short content", models.ModeStandard)
	require.NoError(t, err)
	require.Len(t, topics, 2)
	assert.Equal(t, "First", topics[0].Title)
	assert.Equal(t, models.DifficultyHard, topics[1].Difficulty)
}

func TestOutlineBelowMinimumProceeds(t *testing.T) {
	// 20000 chars asks for at least 13 topics; one topic is a warning, not
	// an error.
	gen := &scriptGen{fn: func(int, string) (string, error) {
		return `{"topics": [{"title": "only one"}]}`, nil
	}}
	e := newTestExtractor(newFakeStore(), gen)

	topics, err := e.Outline(context.Background(), strings.Repeat("x", 20000), models.ModeStandard)
	require.NoError(t, err)
	assert.Len(t, topics, 1)
}

func TestOutlineParseFailure(t *testing.T) {
	gen := &scriptGen{fn: func(int, string) (string, error) {
		return "no json here", nil
	}}
	e := newTestExtractor(newFakeStore(), gen)

	_, err := e.Outline(context.Background(), "content", models.ModeStandard)
	require.Error(t, err)
	assert.True(t, errors.Is(err, parser.ErrNoJSON))
}

func TestOutlineEmptyTopicsIsError(t *testing.T) {
	gen := &scriptGen{fn: func(int, string) (string, error) {
		return `{"topics": []}`, nil
	}}
	e := newTestExtractor(newFakeStore(), gen)

	_, err := e.Outline(context.Background(), "content", models.ModeStandard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no topics")
}
