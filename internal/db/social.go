package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/cardforge/cardforge-go/internal/models"
	"github.com/surrealdb/surrealdb.go"
)

// shareCounterFields maps a counter name to the membership array enforcing
// per-caller idempotency, if any.
var shareCounterFields = map[string]string{
	"clicks": "",
	"views":  "",
	"saves":  "saved_by",
	"likes":  "liked_by",
}

// CreateShare creates a share document and returns its id.
func (c *Client) CreateShare(ctx context.Context, id, ownerID string) error {
	_, err := surrealdb.Query[any](ctx, c.db, `
		CREATE type::record("share", $id) CONTENT {
			owner_id: $owner,
			clicks: 0, views: 0, saves: 0, likes: 0,
			liked_by: [], saved_by: []
		}
	`, map[string]any{"id": id, "owner": ownerID})
	if err != nil {
		return fmt.Errorf("create share: %w", wrapQueryError(err))
	}
	return nil
}

// IncrementShareCounter bumps a share counter. For likes and saves a caller
// identity makes the increment idempotent per caller; without one the
// increment is unconditional. Returns false when an idempotent increment was
// suppressed because the caller already counted.
func (c *Client) IncrementShareCounter(ctx context.Context, shareID, counter, callerID string) (bool, error) {
	memberField, ok := shareCounterFields[counter]
	if !ok {
		return false, fmt.Errorf("unknown share counter: %s", counter)
	}

	if memberField == "" || callerID == "" {
		_, err := surrealdb.Query[any](ctx, c.db, fmt.Sprintf(`
			UPDATE type::record("share", $id) SET %s += 1
		`, counter), map[string]any{"id": shareID})
		if err != nil {
			return false, fmt.Errorf("increment %s: %w", counter, wrapQueryError(err))
		}
		return true, nil
	}

	results, err := surrealdb.Query[[]models.Share](ctx, c.db, fmt.Sprintf(`
		UPDATE type::record("share", $id)
		SET %s += 1, %s += $caller
		WHERE $caller NOTINSIDE %s
	`, counter, memberField, memberField), map[string]any{
		"id":     shareID,
		"caller": callerID,
	})
	if err != nil {
		return false, fmt.Errorf("increment %s: %w", counter, wrapQueryError(err))
	}

	return results != nil && len(*results) > 0 && len((*results)[0].Result) > 0, nil
}

// GetShare retrieves a share document. Returns nil if not found.
func (c *Client) GetShare(ctx context.Context, id string) (*models.Share, error) {
	results, err := surrealdb.Query[[]models.Share](ctx, c.db, `
		SELECT * FROM type::record("share", $id)
	`, map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("get share: %w", err)
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, nil
	}
	return &(*results)[0].Result[0], nil
}

// ClaimCheckin records a daily check-in for a user. prevDate is the previous
// calendar date, used to continue a streak. Returns the claim and whether the
// date had already been claimed.
func (c *Client) ClaimCheckin(ctx context.Context, userID, date, prevDate string) (*models.Checkin, bool, error) {
	prevStreak := 0
	prevResults, err := surrealdb.Query[[]models.Checkin](ctx, c.db, `
		SELECT * FROM type::record("checkin", $id)
	`, map[string]any{"id": checkinID(userID, prevDate)})
	if err != nil {
		return nil, false, fmt.Errorf("get previous checkin: %w", err)
	}
	if prevResults != nil && len(*prevResults) > 0 && len((*prevResults)[0].Result) > 0 {
		prevStreak = (*prevResults)[0].Result[0].Streak
	}

	results, err := surrealdb.Query[[]models.Checkin](ctx, c.db, `
		CREATE type::record("checkin", $id) CONTENT {
			user_id: $user,
			date: $date,
			streak: $streak
		}
	`, map[string]any{
		"id":     checkinID(userID, date),
		"user":   userID,
		"date":   date,
		"streak": prevStreak + 1,
	})
	if err != nil {
		wrapped := wrapQueryError(err)
		if errors.Is(wrapped, ErrAlreadyExists) {
			existing, getErr := c.getCheckin(ctx, userID, date)
			if getErr != nil {
				return nil, true, getErr
			}
			return existing, true, nil
		}
		return nil, false, fmt.Errorf("claim checkin: %w", wrapped)
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, false, fmt.Errorf("claim checkin: empty create result")
	}
	return &(*results)[0].Result[0], false, nil
}

func (c *Client) getCheckin(ctx context.Context, userID, date string) (*models.Checkin, error) {
	results, err := surrealdb.Query[[]models.Checkin](ctx, c.db, `
		SELECT * FROM type::record("checkin", $id)
	`, map[string]any{"id": checkinID(userID, date)})
	if err != nil {
		return nil, fmt.Errorf("get checkin: %w", err)
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, ErrNotFound
	}
	return &(*results)[0].Result[0], nil
}

func checkinID(userID, date string) string {
	return userID + "_" + date
}

// GetUser retrieves a user's credential fields. Returns nil if not found.
func (c *Client) GetUser(ctx context.Context, id string) (*models.User, error) {
	results, err := surrealdb.Query[[]models.User](ctx, c.db, `
		SELECT * FROM type::record("user", $id)
	`, map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, nil
	}
	return &(*results)[0].Result[0], nil
}

// SetUserPassword replaces a user's password hash.
func (c *Client) SetUserPassword(ctx context.Context, id, passwordHash string) error {
	_, err := surrealdb.Query[any](ctx, c.db, `
		UPDATE type::record("user", $id) MERGE { password_hash: $hash }
	`, map[string]any{"id": id, "hash": passwordHash})
	if err != nil {
		return fmt.Errorf("set password: %w", wrapQueryError(err))
	}
	return nil
}

// UpsertUser creates or replaces a user's credential fields. Used by seeding
// and tests.
func (c *Client) UpsertUser(ctx context.Context, id, question, answerHash, passwordHash string) error {
	_, err := surrealdb.Query[any](ctx, c.db, `
		UPSERT type::record("user", $id) CONTENT {
			security_question: $question,
			answer_hash: $answer,
			password_hash: $password
		}
	`, map[string]any{
		"id":       id,
		"question": question,
		"answer":   answerHash,
		"password": passwordHash,
	})
	if err != nil {
		return fmt.Errorf("upsert user: %w", wrapQueryError(err))
	}
	return nil
}
