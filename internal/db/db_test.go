//go:build integration

// Package db provides integration tests for SurrealDB operations.
// Run with: go test -tags integration ./internal/db/
package db

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/cardforge/cardforge-go/internal/models"
)

var testDB *Client
var testContainer testcontainers.Container

// TestMain sets up and tears down the SurrealDB container for all tests.
func TestMain(m *testing.M) {
	// Disable ryuk (cleanup container) as it can cause issues in some environments
	os.Setenv("TESTCONTAINERS_RYUK_DISABLED", "true")

	ctx := context.Background()

	var err error
	testContainer, err = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "surrealdb/surrealdb:v3.0.0-beta.1",
			ExposedPorts: []string{"8000/tcp"},
			Cmd:          []string{"start", "--log", "info", "--user", "root", "--pass", "root"},
			WaitingFor:   wait.ForLog("Started web server").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		log.Fatalf("Failed to start SurrealDB container: %v", err)
	}

	host, err := testContainer.Host(ctx)
	if err != nil {
		log.Fatalf("Failed to get container host: %v", err)
	}
	// Workaround: testcontainers may return "null" as host in some environments
	if host == "" || host == "null" {
		host = "localhost"
	}
	mappedPort, err := testContainer.MappedPort(ctx, "8000")
	if err != nil {
		log.Fatalf("Failed to get mapped port: %v", err)
	}

	testDB, err = NewClient(ctx, Config{
		URL:       fmt.Sprintf("ws://%s:%s/rpc", host, mappedPort.Port()),
		Namespace: "test",
		Database:  "test",
		Username:  "root",
		Password:  "root",
		AuthLevel: "root",
	}, nil)
	if err != nil {
		log.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := testDB.InitSchema(ctx); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	// Start from an empty but schema'd database
	if err := testDB.WipeData(ctx); err != nil {
		log.Fatalf("Failed to wipe test database: %v", err)
	}

	code := m.Run()

	_ = testDB.Close(ctx)
	_ = testContainer.Terminate(ctx)

	os.Exit(code)
}

func testCard(jobID, collectionID string, index int, base time.Time) models.Card {
	return models.Card{
		ID:           fmt.Sprintf("%s_card_%03d", jobID, index+1),
		Title:        fmt.Sprintf("Topic %d", index+1),
		Category:     "Concept",
		Difficulty:   models.DifficultyMedium,
		Body:         "A body of explanatory text.",
		Flashcard:    models.Flashcard{Question: "Q?", Answer: "A."},
		CollectionID: collectionID,
		Presentation: models.Page{Body: "A body of explanatory text.", Question: "Q?", Answer: "A.", Format: models.FormatPlain},
		CreatedAt:    base.Add(time.Duration(index) * time.Second),
	}
}

// =============================================================================
// JOB TESTS
// =============================================================================

func TestCreateAndGetJob(t *testing.T) {
	ctx := context.Background()

	if err := testDB.CreateJob(ctx, "job_create", "user1", "some content", "col1", "standard"); err != nil {
		t.Fatalf("CreateJob failed: %v", err)
	}

	job, err := testDB.GetJob(ctx, "job_create")
	if err != nil {
		t.Fatalf("GetJob failed: %v", err)
	}
	if job == nil {
		t.Fatal("Expected job, got nil")
	}
	if job.OwnerID != "user1" {
		t.Errorf("Expected owner 'user1', got %q", job.OwnerID)
	}
	if job.Status != models.JobStatusPending {
		t.Errorf("Expected status pending, got %q", job.Status)
	}
	if job.Progress != 0.0 {
		t.Errorf("Expected progress 0, got %v", job.Progress)
	}
}

func TestGetJobNotFound(t *testing.T) {
	job, err := testDB.GetJob(context.Background(), "job_missing")
	if err != nil {
		t.Fatalf("GetJob failed: %v", err)
	}
	if job != nil {
		t.Errorf("Expected nil for missing job, got %+v", job)
	}
}

func TestMergeJobPartialUpdate(t *testing.T) {
	ctx := context.Background()

	if err := testDB.CreateJob(ctx, "job_merge", "user1", "content", "col1", "standard"); err != nil {
		t.Fatalf("CreateJob failed: %v", err)
	}

	err := testDB.MergeJob(ctx, "job_merge", map[string]any{
		"progress": 0.5,
		"message":  "Halfway there",
	})
	if err != nil {
		t.Fatalf("MergeJob failed: %v", err)
	}

	job, err := testDB.GetJob(ctx, "job_merge")
	if err != nil {
		t.Fatalf("GetJob failed: %v", err)
	}
	if job.Progress != 0.5 {
		t.Errorf("Expected progress 0.5, got %v", job.Progress)
	}
	if job.Message != "Halfway there" {
		t.Errorf("Expected merged message, got %q", job.Message)
	}
	// Fields not named in the merge stay intact
	if job.Content != "content" {
		t.Errorf("Expected content untouched, got %q", job.Content)
	}
	if job.Status != models.JobStatusPending {
		t.Errorf("Expected status untouched, got %q", job.Status)
	}
}

func TestClaimProcessing(t *testing.T) {
	ctx := context.Background()

	if err := testDB.CreateJob(ctx, "job_claim", "user1", "content", "col1", "standard"); err != nil {
		t.Fatalf("CreateJob failed: %v", err)
	}

	fields := map[string]any{"status": "processing", "progress": 0.1}

	claimed, err := testDB.ClaimProcessing(ctx, "job_claim", fields)
	if err != nil {
		t.Fatalf("ClaimProcessing failed: %v", err)
	}
	if !claimed {
		t.Fatal("Expected first claim to win")
	}

	// A second claim must lose: the job is no longer pending
	claimed, err = testDB.ClaimProcessing(ctx, "job_claim", fields)
	if err != nil {
		t.Fatalf("ClaimProcessing failed: %v", err)
	}
	if claimed {
		t.Error("Expected second claim to lose")
	}

	job, err := testDB.GetJob(ctx, "job_claim")
	if err != nil {
		t.Fatalf("GetJob failed: %v", err)
	}
	if job.Status != models.JobStatusProcessing {
		t.Errorf("Expected status processing, got %q", job.Status)
	}
}

func TestSaveCardsIdempotent(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	cards := []models.Card{
		testCard("job_save", "col1", 0, base),
		testCard("job_save", "col1", 1, base),
		testCard("job_save", "col1", 2, base),
	}

	if err := testDB.SaveCards(ctx, "user1", "job_save", cards); err != nil {
		t.Fatalf("SaveCards failed: %v", err)
	}

	// Re-running the batch overwrites, never duplicates
	if err := testDB.SaveCards(ctx, "user1", "job_save", cards); err != nil {
		t.Fatalf("SaveCards rerun failed: %v", err)
	}

	saved, err := testDB.GetCardsBySourceJob(ctx, "job_save")
	if err != nil {
		t.Fatalf("GetCardsBySourceJob failed: %v", err)
	}
	if len(saved) != 3 {
		t.Fatalf("Expected 3 cards, got %d", len(saved))
	}
	for i, card := range saved {
		if card.OwnerID != "user1" {
			t.Errorf("Card %d: expected owner 'user1', got %q", i, card.OwnerID)
		}
		if !card.AutoSaved {
			t.Errorf("Card %d: expected auto_saved", i)
		}
		gotID, err := models.RecordIDString(card.ID)
		if err != nil {
			t.Fatalf("Card %d: %v", i, err)
		}
		if gotID != fmt.Sprintf("job_save_card_%03d", i+1) {
			t.Errorf("Card %d: unexpected id %q", i, gotID)
		}
	}
	// Creation order is preserved through the ORDER BY
	if !saved[0].CreatedAt.Before(saved[1].CreatedAt) || !saved[1].CreatedAt.Before(saved[2].CreatedAt) {
		t.Error("Expected cards ordered by created_at")
	}
}

func TestSaveCardsEmptyBatch(t *testing.T) {
	if err := testDB.SaveCards(context.Background(), "user1", "job_empty", nil); err != nil {
		t.Fatalf("SaveCards with empty batch failed: %v", err)
	}
}

// =============================================================================
// SHARE TESTS
// =============================================================================

func TestShareCounters(t *testing.T) {
	ctx := context.Background()

	if err := testDB.CreateShare(ctx, "share_counters", "user1"); err != nil {
		t.Fatalf("CreateShare failed: %v", err)
	}

	// Clicks are unconditional
	for i := 0; i < 3; i++ {
		counted, err := testDB.IncrementShareCounter(ctx, "share_counters", "clicks", "user2")
		if err != nil {
			t.Fatalf("IncrementShareCounter failed: %v", err)
		}
		if !counted {
			t.Error("Expected click to count")
		}
	}

	// Likes are idempotent per caller
	counted, err := testDB.IncrementShareCounter(ctx, "share_counters", "likes", "user2")
	if err != nil {
		t.Fatalf("IncrementShareCounter failed: %v", err)
	}
	if !counted {
		t.Error("Expected first like to count")
	}
	counted, err = testDB.IncrementShareCounter(ctx, "share_counters", "likes", "user2")
	if err != nil {
		t.Fatalf("IncrementShareCounter failed: %v", err)
	}
	if counted {
		t.Error("Expected repeated like to be suppressed")
	}
	counted, err = testDB.IncrementShareCounter(ctx, "share_counters", "likes", "user3")
	if err != nil {
		t.Fatalf("IncrementShareCounter failed: %v", err)
	}
	if !counted {
		t.Error("Expected like from a different caller to count")
	}

	share, err := testDB.GetShare(ctx, "share_counters")
	if err != nil {
		t.Fatalf("GetShare failed: %v", err)
	}
	if share.Clicks != 3 {
		t.Errorf("Expected 3 clicks, got %d", share.Clicks)
	}
	if share.Likes != 2 {
		t.Errorf("Expected 2 likes, got %d", share.Likes)
	}
	if len(share.LikedBy) != 2 {
		t.Errorf("Expected 2 likers, got %v", share.LikedBy)
	}
}

func TestShareAnonymousLike(t *testing.T) {
	ctx := context.Background()

	if err := testDB.CreateShare(ctx, "share_anon", "user1"); err != nil {
		t.Fatalf("CreateShare failed: %v", err)
	}

	// Without a caller identity there is nothing to dedupe on
	for i := 0; i < 2; i++ {
		counted, err := testDB.IncrementShareCounter(ctx, "share_anon", "likes", "")
		if err != nil {
			t.Fatalf("IncrementShareCounter failed: %v", err)
		}
		if !counted {
			t.Error("Expected anonymous like to count")
		}
	}

	share, err := testDB.GetShare(ctx, "share_anon")
	if err != nil {
		t.Fatalf("GetShare failed: %v", err)
	}
	if share.Likes != 2 {
		t.Errorf("Expected 2 likes, got %d", share.Likes)
	}
}

// =============================================================================
// CHECKIN TESTS
// =============================================================================

func TestClaimCheckinStreak(t *testing.T) {
	ctx := context.Background()

	claim, already, err := testDB.ClaimCheckin(ctx, "user_streak", "2026-03-14", "2026-03-13")
	if err != nil {
		t.Fatalf("ClaimCheckin failed: %v", err)
	}
	if already {
		t.Error("Expected fresh claim")
	}
	if claim.Streak != 1 {
		t.Errorf("Expected streak 1, got %d", claim.Streak)
	}

	// Same date again reports already claimed
	claim, already, err = testDB.ClaimCheckin(ctx, "user_streak", "2026-03-14", "2026-03-13")
	if err != nil {
		t.Fatalf("ClaimCheckin failed: %v", err)
	}
	if !already {
		t.Error("Expected repeat claim to be reported")
	}
	if claim.Streak != 1 {
		t.Errorf("Expected streak unchanged, got %d", claim.Streak)
	}

	// The next day continues the streak
	claim, already, err = testDB.ClaimCheckin(ctx, "user_streak", "2026-03-15", "2026-03-14")
	if err != nil {
		t.Fatalf("ClaimCheckin failed: %v", err)
	}
	if already {
		t.Error("Expected fresh claim")
	}
	if claim.Streak != 2 {
		t.Errorf("Expected streak 2, got %d", claim.Streak)
	}

	// A gap resets the streak
	claim, _, err = testDB.ClaimCheckin(ctx, "user_streak", "2026-03-20", "2026-03-19")
	if err != nil {
		t.Fatalf("ClaimCheckin failed: %v", err)
	}
	if claim.Streak != 1 {
		t.Errorf("Expected streak reset to 1, got %d", claim.Streak)
	}
}

// =============================================================================
// USER TESTS
// =============================================================================

func TestUserCredentials(t *testing.T) {
	ctx := context.Background()

	err := testDB.UpsertUser(ctx, "user_creds", "First pet?", "answer-hash", "password-hash")
	if err != nil {
		t.Fatalf("UpsertUser failed: %v", err)
	}

	user, err := testDB.GetUser(ctx, "user_creds")
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if user == nil {
		t.Fatal("Expected user, got nil")
	}
	if user.SecurityQuestion != "First pet?" {
		t.Errorf("Expected question, got %q", user.SecurityQuestion)
	}
	if user.AnswerHash != "answer-hash" {
		t.Errorf("Expected answer hash, got %q", user.AnswerHash)
	}

	if err := testDB.SetUserPassword(ctx, "user_creds", "new-hash"); err != nil {
		t.Fatalf("SetUserPassword failed: %v", err)
	}

	user, err = testDB.GetUser(ctx, "user_creds")
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if user.PasswordHash != "new-hash" {
		t.Errorf("Expected updated password hash, got %q", user.PasswordHash)
	}
	// Question and answer stay intact through the merge
	if user.SecurityQuestion != "First pet?" {
		t.Errorf("Expected question untouched, got %q", user.SecurityQuestion)
	}

	missing, err := testDB.GetUser(ctx, "user_nobody")
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if missing != nil {
		t.Errorf("Expected nil for missing user, got %+v", missing)
	}
}

// =============================================================================
// WIPE TESTS
// =============================================================================

// Kept last in the file: wiping removes every document the earlier tests
// created.
func TestWipeData(t *testing.T) {
	ctx := context.Background()

	if err := testDB.CreateJob(ctx, "job_wipe", "user1", "content", "col1", "standard"); err != nil {
		t.Fatalf("CreateJob failed: %v", err)
	}
	if err := testDB.CreateShare(ctx, "share_wipe", "user1"); err != nil {
		t.Fatalf("CreateShare failed: %v", err)
	}

	if err := testDB.WipeData(ctx); err != nil {
		t.Fatalf("WipeData failed: %v", err)
	}

	job, err := testDB.GetJob(ctx, "job_wipe")
	if err != nil {
		t.Fatalf("GetJob failed: %v", err)
	}
	if job != nil {
		t.Errorf("Expected job gone after wipe, got %+v", job)
	}
	share, err := testDB.GetShare(ctx, "share_wipe")
	if err != nil {
		t.Fatalf("GetShare failed: %v", err)
	}
	if share != nil {
		t.Errorf("Expected share gone after wipe, got %+v", share)
	}

	// Schema survives the wipe
	if err := testDB.CreateJob(ctx, "job_after_wipe", "user1", "content", "col1", "standard"); err != nil {
		t.Fatalf("CreateJob after wipe failed: %v", err)
	}
}
