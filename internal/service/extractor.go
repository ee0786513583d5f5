// Package service provides business logic for the Cardforge extraction
// pipeline: the job orchestrator, the outline and card-expansion stages, and
// the auxiliary counter/check-in/credential operations.
package service

import (
	"context"
	"time"

	"github.com/cardforge/cardforge-go/internal/metrics"
	"github.com/cardforge/cardforge-go/internal/models"
)

// JobStore is the durable state repository for jobs and cards. Any store with
// partial-field merge semantics and an atomic multi-document write satisfies
// it; the SurrealDB client is the production implementation.
type JobStore interface {
	GetJob(ctx context.Context, id string) (*models.Job, error)
	MergeJob(ctx context.Context, id string, fields map[string]any) error
	ClaimProcessing(ctx context.Context, id string, fields map[string]any) (bool, error)
	SaveCards(ctx context.Context, ownerID, jobID string, cards []models.Card) error
}

// Generator is the external text-generation capability: unreliable, with
// latency- and format-variable output. JSON output mode is requested on
// every call, but the result is still untrusted free text.
type Generator interface {
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}

// Per-card retry policy: three attempts total with a fixed backoff between
// them.
const (
	maxCardAttempts    = 3
	defaultCardBackoff = time.Second
)

// Extractor runs extraction jobs: outline, per-topic expansion, final
// persistence. One Extractor serves many jobs; each Run is a single logical
// worker with no intra-job parallelism.
type Extractor struct {
	store   JobStore
	gen     Generator
	metrics *metrics.Collector

	// backoff between card attempts; shortened in tests
	backoff time.Duration
	// now is stubbed in tests for deterministic synthetic timestamps
	now func() time.Time
}

// NewExtractor creates an extractor. The metrics collector may be nil.
func NewExtractor(store JobStore, gen Generator, collector *metrics.Collector) *Extractor {
	return &Extractor{
		store:   store,
		gen:     gen,
		metrics: collector,
		backoff: defaultCardBackoff,
		now:     time.Now,
	}
}

// generate issues one generation call, recording timing.
func (e *Extractor) generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	raw, err := e.gen.GenerateJSON(ctx, prompt)
	if e.metrics != nil {
		e.metrics.RecordTiming(metrics.OpLLMGenerate, time.Since(start))
	}
	return raw, err
}

// mergeJob applies a merge-update to the job document, recording timing.
func (e *Extractor) mergeJob(ctx context.Context, jobID string, fields map[string]any) error {
	start := time.Now()
	err := e.store.MergeJob(ctx, jobID, fields)
	if e.metrics != nil {
		e.metrics.RecordTiming(metrics.OpJobMerge, time.Since(start))
	}
	return err
}
