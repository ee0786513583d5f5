package models

import (
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// Share tracks engagement counters for a shared collection link.
// Likes and saves are idempotent per caller identity; clicks and views are
// unconditional.
type Share struct {
	ID      surrealmodels.RecordID `json:"id"`
	OwnerID string                 `json:"owner_id"`
	Clicks  int                    `json:"clicks"`
	Views   int                    `json:"views"`
	Saves   int                    `json:"saves"`
	Likes   int                    `json:"likes"`
	LikedBy []string               `json:"liked_by,omitempty"`
	SavedBy []string               `json:"saved_by,omitempty"`
}

// Checkin records one daily check-in claim, keyed by user and calendar date.
type Checkin struct {
	ID        surrealmodels.RecordID `json:"id"`
	UserID    string                 `json:"user_id"`
	Date      string                 `json:"date"` // YYYY-MM-DD
	Streak    int                    `json:"streak"`
	ClaimedAt time.Time              `json:"claimed_at"`
}

// User holds the credential fields used by the security-question password
// reset flow. Session verification itself is a platform concern.
type User struct {
	ID               surrealmodels.RecordID `json:"id"`
	SecurityQuestion string                 `json:"security_question"`
	AnswerHash       string                 `json:"answer_hash"`
	PasswordHash     string                 `json:"password_hash"`
}
