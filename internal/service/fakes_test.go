package service

import (
	"context"
	"sync"
	"time"

	"github.com/cardforge/cardforge-go/internal/models"
)

// fakeStore is an in-memory JobStore that applies merge-updates the way the
// document store would, and records every write for assertions.
type fakeStore struct {
	mu       sync.Mutex
	jobs     map[string]*models.Job
	saved    map[string][]models.Card // jobID -> cards from SaveCards
	merges   []map[string]any
	progress []float64

	mergeErr error
	saveErr  error
	getErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		jobs:  make(map[string]*models.Job),
		saved: make(map[string][]models.Card),
	}
}

func (f *fakeStore) addJob(id, owner, content, collection, mode string) *models.Job {
	job := &models.Job{
		OwnerID:            owner,
		Content:            content,
		TargetCollectionID: collection,
		Mode:               mode,
		Status:             models.JobStatusPending,
	}
	job.ID.Table = "job"
	job.ID.ID = id
	f.jobs[id] = job
	return job
}

func (f *fakeStore) GetJob(_ context.Context, id string) (*models.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	job, ok := f.jobs[id]
	if !ok {
		return nil, nil
	}
	copy := *job
	return &copy, nil
}

func (f *fakeStore) MergeJob(_ context.Context, id string, fields map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mergeErr != nil {
		return f.mergeErr
	}
	f.applyMerge(id, fields)
	return nil
}

func (f *fakeStore) ClaimProcessing(_ context.Context, id string, fields map[string]any) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok || job.Status != models.JobStatusPending {
		return false, nil
	}
	f.applyMerge(id, fields)
	return true, nil
}

func (f *fakeStore) SaveCards(_ context.Context, _, jobID string, cards []models.Card) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved[jobID] = append([]models.Card(nil), cards...)
	return nil
}

// applyMerge mirrors the store's field-level merge semantics onto the job
// struct. Caller must hold the lock.
func (f *fakeStore) applyMerge(id string, fields map[string]any) {
	job := f.jobs[id]
	f.merges = append(f.merges, fields)

	for k, v := range fields {
		switch k {
		case "status":
			job.Status = v.(models.JobStatus)
		case "progress":
			p := v.(float64)
			job.Progress = p
			f.progress = append(f.progress, p)
		case "message":
			job.Message = v.(string)
		case "error":
			s := v.(string)
			job.Error = &s
		case "total_cards":
			job.TotalCards = v.(int)
		case "saved_count":
			job.SavedCount = v.(int)
		case "cards":
			job.Cards = append([]models.Card(nil), v.([]models.Card)...)
		case "started_at":
			t := v.(time.Time)
			job.StartedAt = &t
		case "completed_at":
			t := v.(time.Time)
			job.CompletedAt = &t
		}
	}
}

// scriptGen is a Generator driven by a per-call function.
type scriptGen struct {
	mu    sync.Mutex
	calls int
	fn    func(call int, prompt string) (string, error)
}

func (g *scriptGen) GenerateJSON(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	call := g.calls
	g.calls++
	g.mu.Unlock()
	return g.fn(call, prompt)
}

func (g *scriptGen) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

// newTestExtractor builds an extractor with zero backoff and a fixed clock.
func newTestExtractor(store JobStore, gen Generator) *Extractor {
	e := NewExtractor(store, gen, nil)
	e.backoff = 0
	e.now = func() time.Time {
		return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	}
	return e
}
