package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cardforge/cardforge-go/internal/metrics"
	"github.com/cardforge/cardforge-go/internal/models"
)

// Progress milestones. The outline contributes a flat step; card expansion
// fills the span between outline and persistence linearly per topic.
const (
	progressProcessing  = 0.1
	progressOutlineDone = 0.2
	progressCardsDone   = 0.9
)

// Run executes an extraction job end to end and returns the number of cards
// produced. Every stage boundary is a merge-update to the job document, which
// is how a disconnected observer resumes visibility.
//
// Once the job is processing, any error marks the document failed before
// being re-raised as an internal error. Terminal states are final.
func (e *Extractor) Run(ctx context.Context, jobID, callerID string) (int, error) {
	if callerID == "" {
		return 0, Errf(CodeUnauthenticated, "caller identity required")
	}
	if jobID == "" {
		return 0, Errf(CodeInvalidArgument, "jobId is required")
	}

	job, err := e.store.GetJob(ctx, jobID)
	if err != nil {
		return 0, WrapInternal("load job", err)
	}
	if job == nil {
		return 0, Errf(CodeNotFound, "job %s not found", jobID)
	}
	if job.OwnerID != callerID {
		return 0, Errf(CodePermissionDenied, "job %s does not belong to caller", jobID)
	}

	if job.Content == "" {
		// Fail fast before any generation call, and surface the failure on
		// the document for asynchronous observers.
		e.markFailed(ctx, jobID, "job content is empty")
		return 0, Errf(CodeInvalidArgument, "job content is empty")
	}

	started := e.now()
	claimed, err := e.store.ClaimProcessing(ctx, jobID, map[string]any{
		"status":     models.JobStatusProcessing,
		"progress":   progressProcessing,
		"message":    "Analyzing content",
		"started_at": started,
	})
	if err != nil {
		return 0, WrapInternal("claim job", err)
	}
	if !claimed {
		return 0, Errf(CodeInvalidArgument, "job %s is not pending", jobID)
	}

	slog.Info("job processing started",
		"job_id", jobID, "owner", callerID, "content_len", len(job.Content))

	cardCount, err := e.process(ctx, jobID, job, started)
	if err != nil {
		e.markFailed(ctx, jobID, err.Error())
		return 0, WrapInternal("extraction failed", err)
	}

	return cardCount, nil
}

// process runs the outline, expansion and persistence stages for a claimed
// job. Topics are processed strictly sequentially: progress must be
// monotonically reported and generation calls must not burst in parallel.
func (e *Extractor) process(ctx context.Context, jobID string, job *models.Job, started time.Time) (int, error) {
	mode := models.ParseMode(job.Mode)

	topics, err := e.Outline(ctx, job.Content, mode)
	if err != nil {
		return 0, err
	}

	if err := e.mergeJob(ctx, jobID, map[string]any{
		"progress":    progressOutlineDone,
		"total_cards": len(topics),
		"message":     fmt.Sprintf("Outline ready: %d topics", len(topics)),
	}); err != nil {
		return 0, err
	}

	cards := make([]models.Card, 0, len(topics))
	span := progressCardsDone - progressOutlineDone

	for i, topic := range topics {
		card := e.Expand(ctx, ExpandRequest{
			JobID:        jobID,
			CollectionID: job.TargetCollectionID,
			Topic:        topic,
			Content:      job.Content,
			Mode:         mode,
			Index:        i,
			Base:         started,
		})
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		if card != nil {
			cards = append(cards, *card)
		}

		progress := progressOutlineDone + span*float64(i+1)/float64(len(topics))
		if err := e.mergeJob(ctx, jobID, map[string]any{
			"progress": progress,
			"cards":    cards,
			"message":  fmt.Sprintf("Generating cards: %d/%d", i+1, len(topics)),
		}); err != nil {
			return 0, err
		}
	}

	// Durable save happens before the status flip: completed must imply the
	// cards are in the owner's collection.
	batchStart := time.Now()
	if err := e.store.SaveCards(ctx, job.OwnerID, jobID, cards); err != nil {
		return 0, fmt.Errorf("save cards: %w", err)
	}
	if e.metrics != nil {
		e.metrics.RecordTiming(metrics.OpCardBatch, time.Since(batchStart))
	}

	message := fmt.Sprintf("Generated %d cards", len(cards))
	if len(cards) < len(topics) {
		message = fmt.Sprintf("Generated %d of %d cards", len(cards), len(topics))
	}

	if err := e.mergeJob(ctx, jobID, map[string]any{
		"status":       models.JobStatusCompleted,
		"progress":     1.0,
		"saved_count":  len(cards),
		"message":      message,
		"completed_at": e.now(),
	}); err != nil {
		return 0, err
	}

	slog.Info("job completed",
		"job_id", jobID, "cards", len(cards), "topics", len(topics))
	return len(cards), nil
}

// markFailed writes the terminal failed state. The document is the only
// failure channel for observers who are no longer on the initiating call.
func (e *Extractor) markFailed(ctx context.Context, jobID, errMsg string) {
	if err := e.mergeJob(ctx, jobID, map[string]any{
		"status":       models.JobStatusFailed,
		"error":        errMsg,
		"message":      "Extraction failed",
		"completed_at": e.now(),
	}); err != nil {
		slog.Error("failed to mark job failed", "job_id", jobID, "error", err)
	}
	slog.Error("job failed", "job_id", jobID, "error", errMsg)
}
