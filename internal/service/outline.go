package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cardforge/cardforge-go/internal/models"
	"github.com/cardforge/cardforge-go/internal/parser"
)

// Adaptive topic-range constants. Short content gets a fixed small range;
// longer content scales so large documents are not under-segmented.
const (
	shortContentThreshold = 5000
	shortContentMinTopics = 2
	shortContentMaxTopics = 8
	charsPerMinTopic      = 1500
	charsPerMaxTopic      = 800
	maxTopicsCap          = 30
)

// adaptiveTopicRange returns the minimum and maximum topic counts for content
// of the given length.
func adaptiveTopicRange(contentLen int) (minTopics, maxTopics int) {
	if contentLen <= shortContentThreshold {
		return shortContentMinTopics, shortContentMaxTopics
	}
	minTopics = contentLen / charsPerMinTopic
	maxTopics = (contentLen + charsPerMaxTopic - 1) / charsPerMaxTopic
	if maxTopics > maxTopicsCap {
		maxTopics = maxTopicsCap
	}
	if minTopics > maxTopics {
		minTopics = maxTopics
	}
	return minTopics, maxTopics
}

// outlineResponse accepts topics under either of two field names the model
// has been observed to use.
type outlineResponse struct {
	Topics  []models.Topic `json:"topics"`
	Outline []models.Topic `json:"outline"`
}

// Outline derives an ordered topic list from job content with exactly one
// generation call. Unlike per-card expansion there is no retry here: a
// generation or parse failure aborts the whole job.
func (e *Extractor) Outline(ctx context.Context, content string, mode models.Mode) ([]models.Topic, error) {
	minTopics, maxTopics := adaptiveTopicRange(len(content))

	raw, err := e.generate(ctx, buildOutlinePrompt(content, minTopics, maxTopics, mode))
	if err != nil {
		return nil, fmt.Errorf("outline generation: %w", err)
	}

	var resp outlineResponse
	if err := parser.DecodeObject(raw, &resp); err != nil {
		return nil, fmt.Errorf("outline parse: %w", err)
	}

	topics := resp.Topics
	if len(topics) == 0 {
		topics = resp.Outline
	}
	if len(topics) == 0 {
		return nil, fmt.Errorf("outline contains no topics")
	}

	// Soft requirement: proceed with fewer topics than requested.
	if len(topics) < minTopics {
		slog.Warn("outline below requested minimum",
			"topics", len(topics), "min", minTopics, "content_len", len(content))
	}

	return topics, nil
}
