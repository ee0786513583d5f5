// Package models defines data structures for the Cardforge extraction backend.
package models

import (
	"fmt"
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// JobStatus represents the lifecycle state of an extraction job.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Terminal reports whether the status permits no further transitions.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// Mode selects the generation style. It affects prompt construction and the
// page content format only, never control flow.
type Mode string

const (
	ModeStandard   Mode = "standard"
	ModeSimplified Mode = "simplified"
	ModeRigorous   Mode = "rigorous"
	ModeDialogue   Mode = "dialogue"
)

// ParseMode normalizes a stored mode string, defaulting to standard.
func ParseMode(s string) Mode {
	switch Mode(s) {
	case ModeSimplified, ModeRigorous, ModeDialogue:
		return Mode(s)
	default:
		return ModeStandard
	}
}

// Job represents a persisted extraction job document. The document doubles as
// the progress channel: a reconnecting observer watches the document, not a
// connection.
type Job struct {
	ID                 surrealmodels.RecordID `json:"id"`
	OwnerID            string                 `json:"owner_id"`
	Content            string                 `json:"content"`
	TargetCollectionID string                 `json:"target_collection_id"`
	Mode               string                 `json:"mode"`
	Status             JobStatus              `json:"status"`
	Progress           float64                `json:"progress"`
	Message            string                 `json:"message,omitempty"`
	Error              *string                `json:"error,omitempty"`
	TotalCards         int                    `json:"total_cards"`
	SavedCount         int                    `json:"saved_count"`
	Cards              []Card                 `json:"cards,omitempty"`
	StartedAt          *time.Time             `json:"started_at,omitempty"`
	CompletedAt        *time.Time             `json:"completed_at,omitempty"`
	CreatedAt          time.Time              `json:"created_at"`
}

// RecordIDString safely extracts the string ID from a SurrealDB RecordID.
// Returns an error if the ID is not a string type.
func RecordIDString(id surrealmodels.RecordID) (string, error) {
	s, ok := id.ID.(string)
	if !ok {
		return "", fmt.Errorf("unexpected ID type: %T (expected string)", id.ID)
	}
	return s, nil
}
