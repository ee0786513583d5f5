package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/cardforge/cardforge-go/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// Minimum input lengths for the password reset flow.
const (
	minAnswerLen   = 2
	minPasswordLen = 6
)

// Share counter names accepted by RecordShareEvent.
var validCounters = map[string]bool{
	"clicks": true,
	"views":  true,
	"saves":  true,
	"likes":  true,
}

// SocialStore covers the keyed read-modify-write operations behind the
// auxiliary endpoints. No retry or backoff logic applies here.
type SocialStore interface {
	IncrementShareCounter(ctx context.Context, shareID, counter, callerID string) (bool, error)
	ClaimCheckin(ctx context.Context, userID, date, prevDate string) (*models.Checkin, bool, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	SetUserPassword(ctx context.Context, id, passwordHash string) error
}

// Social provides the auxiliary counter, check-in and credential operations.
type Social struct {
	store SocialStore
	now   func() time.Time
}

// NewSocial creates the auxiliary service.
func NewSocial(store SocialStore) *Social {
	return &Social{store: store, now: time.Now}
}

// RecordShareEvent increments one share counter. Likes and saves are
// idempotent per caller identity when one is present; clicks and views are
// unconditional. Returns whether the event was counted.
func (s *Social) RecordShareEvent(ctx context.Context, shareID, counter, callerID string) (bool, error) {
	if shareID == "" {
		return false, Errf(CodeInvalidArgument, "shareId is required")
	}
	if !validCounters[counter] {
		return false, Errf(CodeInvalidArgument, "unknown counter %q", counter)
	}

	counted, err := s.store.IncrementShareCounter(ctx, shareID, counter, callerID)
	if err != nil {
		return false, WrapInternal("increment share counter", err)
	}
	if !counted {
		slog.Debug("share event already counted", "share_id", shareID, "counter", counter, "caller", callerID)
	}
	return counted, nil
}

// CheckinResult reports the outcome of a daily check-in claim.
type CheckinResult struct {
	Date           string `json:"date"`
	Streak         int    `json:"streak"`
	AlreadyClaimed bool   `json:"alreadyClaimed"`
}

// Checkin claims the daily check-in for today. A repeated claim on the same
// calendar date is a no-op reported as already claimed.
func (s *Social) Checkin(ctx context.Context, userID string) (*CheckinResult, error) {
	if userID == "" {
		return nil, Errf(CodeUnauthenticated, "caller identity required")
	}

	today := s.now().UTC()
	date := today.Format("2006-01-02")
	prevDate := today.AddDate(0, 0, -1).Format("2006-01-02")

	claim, already, err := s.store.ClaimCheckin(ctx, userID, date, prevDate)
	if err != nil {
		return nil, WrapInternal("claim checkin", err)
	}

	return &CheckinResult{
		Date:           date,
		Streak:         claim.Streak,
		AlreadyClaimed: already,
	}, nil
}

// SecurityQuestion returns the user's configured security question.
func (s *Social) SecurityQuestion(ctx context.Context, userID string) (string, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return "", WrapInternal("load user", err)
	}
	if user == nil {
		return "", Errf(CodeNotFound, "user %s not found", userID)
	}
	if user.SecurityQuestion == "" {
		return "", Errf(CodeInvalidArgument, "user has no security question configured")
	}
	return user.SecurityQuestion, nil
}

// ResetPassword verifies the security answer against its stored hash and, on
// match, replaces the user's password hash.
func (s *Social) ResetPassword(ctx context.Context, userID, answer, newPassword string) error {
	if userID == "" {
		return Errf(CodeInvalidArgument, "userId is required")
	}
	if len(answer) < minAnswerLen {
		return Errf(CodeInvalidArgument, "answer must be at least %d characters", minAnswerLen)
	}
	if len(newPassword) < minPasswordLen {
		return Errf(CodeInvalidArgument, "password must be at least %d characters", minPasswordLen)
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return WrapInternal("load user", err)
	}
	if user == nil {
		return Errf(CodeNotFound, "user %s not found", userID)
	}
	if user.AnswerHash == "" {
		return Errf(CodeInvalidArgument, "user has no security answer configured")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.AnswerHash), []byte(answer)); err != nil {
		return Errf(CodePermissionDenied, "security answer does not match")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return WrapInternal("hash password", err)
	}

	if err := s.store.SetUserPassword(ctx, userID, string(hash)); err != nil {
		return WrapInternal("store password", err)
	}

	slog.Info("password reset", "user_id", userID)
	return nil
}

// HashAnswer produces the stored hash for a security answer. Used by seeding
// and tests.
func HashAnswer(answer string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(answer), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
