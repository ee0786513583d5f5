package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cardforge/cardforge-go/internal/models"
	"github.com/cardforge/cardforge-go/internal/parser"
)

// ExpandRequest carries everything one card expansion needs.
type ExpandRequest struct {
	JobID        string
	CollectionID string
	Topic        models.Topic
	Content      string
	Mode         models.Mode
	Index        int
	// Base anchors the synthetic creation timestamps for the whole job.
	Base time.Time
}

// cardPayload is the JSON contract expected from one card-expansion call.
type cardPayload struct {
	Title      string            `json:"title"`
	Category   string            `json:"category"`
	Difficulty models.Difficulty `json:"difficulty"`
	Body       string            `json:"body"`
	Flashcard  models.Flashcard  `json:"flashcard"`
}

// Expand turns one topic into a full card. Up to three attempts are made with
// a fixed backoff between them; generation and parse failures count alike.
// After exhaustion the topic yields no card and the job continues. A nil
// return is an expected outcome, not an error.
func (e *Extractor) Expand(ctx context.Context, req ExpandRequest) *models.Card {
	prompt := buildCardPrompt(req.Topic, req.Content, req.Mode)

	for attempt := 1; attempt <= maxCardAttempts; attempt++ {
		card, err := e.attemptCard(ctx, prompt, req)
		if err == nil {
			return card
		}

		slog.Warn("card attempt failed",
			"job_id", req.JobID, "topic", req.Topic.Title,
			"attempt", attempt, "error", err)

		if attempt < maxCardAttempts {
			select {
			case <-time.After(e.backoff):
			case <-ctx.Done():
				return nil
			}
		}
	}

	slog.Warn("card attempts exhausted, skipping topic",
		"job_id", req.JobID, "topic", req.Topic.Title, "attempts", maxCardAttempts)
	return nil
}

// attemptCard issues one generation call and assembles a card from its output.
func (e *Extractor) attemptCard(ctx context.Context, prompt string, req ExpandRequest) (*models.Card, error) {
	raw, err := e.generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("card generation: %w", err)
	}

	var payload cardPayload
	if err := parser.DecodeObject(raw, &payload); err != nil {
		return nil, fmt.Errorf("card parse: %w", err)
	}
	if payload.Body == "" {
		return nil, fmt.Errorf("card payload missing body")
	}

	return e.assembleCard(payload, req), nil
}

// assembleCard attaches generation metadata: the deterministic id, the
// collection, the presentation page and the synthetic creation timestamp.
func (e *Extractor) assembleCard(payload cardPayload, req ExpandRequest) *models.Card {
	title := payload.Title
	if title == "" {
		title = req.Topic.Title
	}
	category := payload.Category
	if category == "" {
		category = req.Topic.Category
	}
	difficulty := payload.Difficulty
	if difficulty == "" {
		difficulty = req.Topic.Difficulty
	}

	format := models.FormatPlain
	if req.Mode == models.ModeDialogue {
		format = models.FormatDialogue
	}

	return &models.Card{
		ID:           cardID(req.JobID, req.Index),
		Title:        title,
		Category:     category,
		Difficulty:   difficulty,
		Body:         payload.Body,
		Flashcard:    payload.Flashcard,
		CollectionID: req.CollectionID,
		Presentation: models.Page{
			Body:     payload.Body,
			Question: payload.Flashcard.Question,
			Answer:   payload.Flashcard.Answer,
			Format:   format,
		},
		IsCustomGenerated: true,
		// Offset per index so cards sort in generation order under a
		// sort-by-creation-time read; wall-clock times for rapid sequential
		// writes could tie or invert.
		CreatedAt: req.Base.Add(time.Duration(req.Index) * time.Second),
	}
}

// cardID derives a card id from generation order. Zero-padding keeps ids
// stable under lexicographic sorts as well.
func cardID(jobID string, index int) string {
	return fmt.Sprintf("%s_card_%03d", jobID, index+1)
}
