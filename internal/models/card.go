package models

import (
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// Difficulty is the outline-assigned difficulty of a topic or card.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Topic is one outline entry naming a knowledge unit to expand into a card.
// Topics are ephemeral: consumed immediately by the expansion stage, never
// persisted on their own.
type Topic struct {
	Title      string     `json:"title"`
	Category   string     `json:"category,omitempty"`
	Difficulty Difficulty `json:"difficulty,omitempty"`
}

// Flashcard is the question/answer pair attached to a card.
type Flashcard struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Page content format tags.
const (
	FormatPlain    = "plain"
	FormatDialogue = "dialogue"
)

// Page is the single presentation descriptor carried by a card.
type Page struct {
	Body     string `json:"body"`
	Question string `json:"question,omitempty"`
	Answer   string `json:"answer,omitempty"`
	Format   string `json:"format"`
}

// Card is a finished knowledge unit produced by the expansion stage.
// Cards are append-only: once created they are never mutated or deleted by
// the pipeline.
type Card struct {
	ID                string     `json:"id"`
	Title             string     `json:"title"`
	Category          string     `json:"category,omitempty"`
	Difficulty        Difficulty `json:"difficulty,omitempty"`
	Body              string     `json:"body"`
	Flashcard         Flashcard  `json:"flashcard"`
	CollectionID      string     `json:"collection_id"`
	Presentation      Page       `json:"presentation"`
	IsCustomGenerated bool       `json:"is_custom_generated"`
	CreatedAt         time.Time  `json:"created_at"`
}

// SavedCard is a card as persisted into the owner's personal collection at
// job completion. The record id is the deterministic card id, which makes the
// final batch write idempotent under retry.
type SavedCard struct {
	ID                surrealmodels.RecordID `json:"id"`
	OwnerID           string                 `json:"owner_id"`
	CollectionID      string                 `json:"collection_id"`
	SourceJobID       string                 `json:"source_job_id"`
	AutoSaved         bool                   `json:"auto_saved"`
	Title             string                 `json:"title"`
	Category          string                 `json:"category,omitempty"`
	Difficulty        Difficulty             `json:"difficulty,omitempty"`
	Body              string                 `json:"body"`
	Flashcard         Flashcard              `json:"flashcard"`
	Presentation      Page                   `json:"presentation"`
	IsCustomGenerated bool                   `json:"is_custom_generated"`
	CreatedAt         time.Time              `json:"created_at"`
}
