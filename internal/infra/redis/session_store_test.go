package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	"prepquiz-service/internal/domain"
)

func TestSessionStoreSurvivesClientReload(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewSessionStore(newClient(mr), time.Minute)

	session := &domain.QuizSession{
		ID:        "sess-1",
		UserID:    "user-1",
		Questions: sampleQuestions(),
		Answers:   []string{"4"},
		State:     domain.SessionInProgress,
		Deadline:  time.Date(2025, 3, 1, 12, 10, 0, 0, time.UTC),
	}
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !mr.Exists("quiz:session:sess-1") {
		t.Fatalf("expected redis key to be set")
	}

	// A second store over the same redis stands in for a page reload
	// talking to a fresh server instance.
	reloaded := NewSessionStore(newClient(mr), time.Minute)
	got, err := reloaded.Get(ctx, "sess-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Answers[0] != "4" || got.State != domain.SessionInProgress {
		t.Fatalf("got %+v", got)
	}
	if !got.Deadline.Equal(session.Deadline) {
		t.Fatalf("deadline = %v, want %v", got.Deadline, session.Deadline)
	}
}

func TestSessionStoreDeleteClearsKey(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewSessionStore(newClient(mr), time.Minute)

	session := &domain.QuizSession{ID: "sess-1", UserID: "user-1", Answers: []string{""}}
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Delete(ctx, "sess-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if mr.Exists("quiz:session:sess-1") {
		t.Fatalf("expected redis key to be removed")
	}
	if _, err := store.Get(ctx, "sess-1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("after delete: err = %v", err)
	}
}

func TestSessionStoreExpires(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewSessionStore(newClient(mr), time.Minute)

	if err := store.Save(ctx, &domain.QuizSession{ID: "sess-1", UserID: "user-1"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	if _, err := store.Get(ctx, "sess-1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("after ttl: err = %v", err)
	}
}
