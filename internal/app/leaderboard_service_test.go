package app_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"prepquiz-service/internal/app"
	"prepquiz-service/internal/domain"
	"prepquiz-service/internal/infra/memory"
)

func seedRankedUsers(t *testing.T, users *memory.UserStore, n int) []domain.User {
	t.Helper()
	ctx := context.Background()
	out := make([]domain.User, 0, n)
	for i := 0; i < n; i++ {
		u, err := users.Upsert(ctx, domain.Identity{
			UID:         fmt.Sprintf("uid-%d", i),
			Email:       fmt.Sprintf("user%d@example.com", i),
			DisplayName: fmt.Sprintf("User %d", i),
		})
		if err != nil {
			t.Fatalf("upsert: %v", err)
		}
		// user i ends up with average score i.
		if _, err := users.ApplyResult(ctx, u.ID, i); err != nil {
			t.Fatalf("apply result: %v", err)
		}
		out = append(out, u)
	}
	return out
}

func TestTopUsersCapsAtLimit(t *testing.T) {
	users := memory.NewUserStore()
	seedRankedUsers(t, users, 15)
	board := app.NewLeaderboardService(users, 0, nil)

	entries, err := board.TopUsers(context.Background())
	if err != nil {
		t.Fatalf("top users: %v", err)
	}
	if len(entries) != app.DefaultLeaderboardLimit {
		t.Fatalf("len = %d, want %d", len(entries), app.DefaultLeaderboardLimit)
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].AverageScore > entries[i-1].AverageScore {
			t.Fatalf("entries out of order at %d: %v > %v", i, entries[i].AverageScore, entries[i-1].AverageScore)
		}
	}
	if entries[0].DisplayName != "User 14" {
		t.Fatalf("top entry = %q, want User 14", entries[0].DisplayName)
	}
}

func TestTiesKeepArrivalOrder(t *testing.T) {
	ctx := context.Background()
	users := memory.NewUserStore()
	seeded := seedRankedUsers(t, users, 3)
	// Bring user 0 up to the same average as user 2.
	if _, err := users.ApplyResult(ctx, seeded[0].ID, 4); err != nil {
		t.Fatalf("apply result: %v", err)
	}
	board := app.NewLeaderboardService(users, 10, nil)

	entries, err := board.TopUsers(ctx)
	if err != nil {
		t.Fatalf("top users: %v", err)
	}
	// Both sit at 2.0 but user 0 arrived first.
	if entries[0].ID != seeded[0].ID || entries[1].ID != seeded[2].ID {
		t.Fatalf("tie order = %v, %v", entries[0].DisplayName, entries[1].DisplayName)
	}

	rank, err := board.Rank(ctx, seeded[2].ID)
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	if rank != 2 {
		t.Fatalf("rank = %d, want 2", rank)
	}
}

func TestSubscribeDeliversSnapshotThenUpdates(t *testing.T) {
	ctx := context.Background()
	users := memory.NewUserStore()
	seeded := seedRankedUsers(t, users, 2)
	board := app.NewLeaderboardService(users, 10, nil)

	feed, cancel, err := board.Subscribe(ctx)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()

	first := <-feed
	if len(first.Entries) != 2 {
		t.Fatalf("initial snapshot has %d entries, want 2", len(first.Entries))
	}

	if _, err := users.ApplyResult(ctx, seeded[0].ID, 100); err != nil {
		t.Fatalf("apply result: %v", err)
	}
	board.Publish(ctx)

	select {
	case update := <-feed:
		if update.Entries[0].ID != seeded[0].ID {
			t.Fatalf("leader = %s, want %s", update.Entries[0].ID, seeded[0].ID)
		}
	case <-time.After(time.Second):
		t.Fatal("no update after publish")
	}
}

func TestCancelStopsFeed(t *testing.T) {
	ctx := context.Background()
	users := memory.NewUserStore()
	seedRankedUsers(t, users, 1)
	board := app.NewLeaderboardService(users, 10, nil)

	feed, cancel, err := board.Subscribe(ctx)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	<-feed
	cancel()
	cancel() // idempotent

	if _, ok := <-feed; ok {
		t.Fatal("feed still open after cancel")
	}
	// Publishing after cancel must not panic on the closed channel.
	board.Publish(ctx)
}
