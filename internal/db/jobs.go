package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/cardforge/cardforge-go/internal/models"
	"github.com/surrealdb/surrealdb.go"
)

// CreateJob creates a pending job document with a caller-supplied id.
func (c *Client) CreateJob(ctx context.Context, id, ownerID, content, collectionID, mode string) error {
	_, err := surrealdb.Query[any](ctx, c.db, `
		CREATE type::record("job", $id) CONTENT {
			owner_id: $owner,
			content: $content,
			target_collection_id: $collection,
			mode: $mode,
			status: "pending",
			progress: 0.0,
			total_cards: 0,
			saved_count: 0
		}
	`, map[string]any{
		"id":         id,
		"owner":      ownerID,
		"content":    content,
		"collection": collectionID,
		"mode":       mode,
	})
	if err != nil {
		return fmt.Errorf("create job: %w", wrapQueryError(err))
	}
	return nil
}

// GetJob retrieves a job document by id.
// Returns nil if not found.
func (c *Client) GetJob(ctx context.Context, id string) (*models.Job, error) {
	results, err := surrealdb.Query[[]models.Job](ctx, c.db, `
		SELECT * FROM type::record("job", $id)
	`, map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, nil
	}
	return &(*results)[0].Result[0], nil
}

// MergeJob applies a partial field update to a job document. Unnamed fields
// are left untouched, so concurrent readers never observe a half-written
// document.
func (c *Client) MergeJob(ctx context.Context, id string, fields map[string]any) error {
	_, err := surrealdb.Query[any](ctx, c.db, `
		UPDATE type::record("job", $id) MERGE $fields
	`, map[string]any{"id": id, "fields": fields})
	if err != nil {
		return fmt.Errorf("merge job: %w", wrapQueryError(err))
	}
	return nil
}

// ClaimProcessing transitions a job from pending to processing, applying the
// given fields. The update is conditional on the current status, so only one
// of two concurrent invocations can win the claim.
func (c *Client) ClaimProcessing(ctx context.Context, id string, fields map[string]any) (bool, error) {
	results, err := surrealdb.Query[[]models.Job](ctx, c.db, `
		UPDATE type::record("job", $id) MERGE $fields WHERE status = "pending"
	`, map[string]any{"id": id, "fields": fields})
	if err != nil {
		return false, fmt.Errorf("claim job: %w", wrapQueryError(err))
	}

	return results != nil && len(*results) > 0 && len((*results)[0].Result) > 0, nil
}

// SaveCards writes every produced card into the owner's collection in a
// single transaction. Card record ids are deterministic, so re-running the
// batch overwrites rather than duplicates.
func (c *Client) SaveCards(ctx context.Context, ownerID, jobID string, cards []models.Card) error {
	if len(cards) == 0 {
		return nil
	}

	var sb strings.Builder
	vars := make(map[string]any, len(cards)*2)

	sb.WriteString("BEGIN TRANSACTION;\n")
	for i, card := range cards {
		idVar := fmt.Sprintf("id%d", i)
		contentVar := fmt.Sprintf("card%d", i)
		fmt.Fprintf(&sb, "UPSERT type::record(\"card\", $%s) CONTENT $%s;\n", idVar, contentVar)

		vars[idVar] = card.ID
		vars[contentVar] = map[string]any{
			"owner_id":            ownerID,
			"collection_id":       card.CollectionID,
			"source_job_id":       jobID,
			"auto_saved":          true,
			"title":               card.Title,
			"category":            card.Category,
			"difficulty":          card.Difficulty,
			"body":                card.Body,
			"flashcard":           card.Flashcard,
			"presentation":        card.Presentation,
			"is_custom_generated": card.IsCustomGenerated,
			"created_at":          card.CreatedAt,
		}
	}
	sb.WriteString("COMMIT TRANSACTION;\n")

	_, err := surrealdb.Query[any](ctx, c.db, sb.String(), vars)
	if err != nil {
		return fmt.Errorf("save cards: %w", wrapQueryError(err))
	}
	return nil
}

// GetCardsBySourceJob returns the cards saved from a job, in creation order.
func (c *Client) GetCardsBySourceJob(ctx context.Context, jobID string) ([]models.SavedCard, error) {
	results, err := surrealdb.Query[[]models.SavedCard](ctx, c.db, `
		SELECT * FROM card WHERE source_job_id = $job ORDER BY created_at ASC
	`, map[string]any{"job": jobID})
	if err != nil {
		return nil, fmt.Errorf("get cards by job: %w", err)
	}

	if results == nil || len(*results) == 0 {
		return []models.SavedCard{}, nil
	}
	return (*results)[0].Result, nil
}
