package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"prepquiz-service/internal/app"
	"prepquiz-service/internal/domain"
	"prepquiz-service/internal/infra/memory"
)

type testEnv struct {
	sessions *app.SessionService
	stats    *app.StatsService
	users    *memory.UserStore
	user     domain.User
	clock    *fakeClock
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	clock := &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}

	users := memory.NewUserStoreWithClock(clock.Now)
	user, err := users.Upsert(context.Background(), domain.Identity{
		UID:         "uid-1",
		Email:       "alice@example.com",
		DisplayName: "Alice",
	})
	if err != nil {
		t.Fatalf("upsert user: %v", err)
	}

	loader := memory.NewStaticQuestionLoader([]domain.Question{
		{
			ID:        1,
			Text:      "Pick the second option",
			Options:   []string{"A", "B", "C", "D"},
			Answer:    "B",
			SubjectID: 1, YearID: 2, CourseID: 3,
		},
		{
			ID:        2,
			Text:      "Pick the first option",
			Options:   []string{"A", "B", "C", "D"},
			Answer:    "A",
			SubjectID: 1, YearID: 2, CourseID: 3,
		},
	})
	questions := memory.NewQuestionRepository(loader, 5*time.Minute)

	stats := app.NewStatsServiceWithClock(users, users, users, nil, nil, clock.Now)
	sessions := app.NewSessionServiceWithClock(questions, memory.NewSessionStore(), stats, 600*time.Second, clock.Now)

	return &testEnv{sessions: sessions, stats: stats, users: users, user: user, clock: clock}
}

func TestStartReportsFirstQuestionAndCountdown(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	view, err := env.sessions.Start(ctx, env.user.ID, 1, 2, 3)
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if view.State != domain.SessionInProgress {
		t.Fatalf("expected in_progress, got %s", view.State)
	}
	if view.Total != 2 || view.Index != 0 || view.Unanswered != 2 {
		t.Fatalf("unexpected view: %+v", view)
	}
	if view.Question.Text != "Pick the second option" {
		t.Fatalf("expected first question, got %q", view.Question.Text)
	}
	if view.TimeLeftSec != 600 {
		t.Fatalf("expected full countdown, got %d", view.TimeLeftSec)
	}
}

func TestStartWithoutQuestionsIsTerminal(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.sessions.Start(ctx, env.user.ID, 9, 9, 9)
	if !errors.Is(err, domain.ErrNoQuestions) {
		t.Fatalf("expected ErrNoQuestions, got %v", err)
	}
}

func TestNavigationClampsAtBoundaries(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	view, _ := env.sessions.Start(ctx, env.user.ID, 1, 2, 3)

	view, err := env.sessions.Previous(ctx, view.ID)
	if err != nil {
		t.Fatalf("previous failed: %v", err)
	}
	if view.Index != 0 {
		t.Fatalf("previous at start should no-op, got index %d", view.Index)
	}

	view, _ = env.sessions.Next(ctx, view.ID)
	view, err = env.sessions.Next(ctx, view.ID)
	if err != nil {
		t.Fatalf("next failed: %v", err)
	}
	if view.Index != 1 {
		t.Fatalf("next at end should clamp, got index %d", view.Index)
	}

	if _, err := env.sessions.JumpTo(ctx, view.ID, 5); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected out-of-range jump to fail, got %v", err)
	}
	view, err = env.sessions.JumpTo(ctx, view.ID, 0)
	if err != nil || view.Index != 0 {
		t.Fatalf("jump to 0 failed: view=%+v err=%v", view, err)
	}
}

func TestFinishScoresExactMatches(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	view, _ := env.sessions.Start(ctx, env.user.ID, 1, 2, 3)

	// Answers B then C against correct B and A: one exact match.
	if _, err := env.sessions.SelectAnswer(ctx, view.ID, "B"); err != nil {
		t.Fatalf("answer failed: %v", err)
	}
	if _, err := env.sessions.Next(ctx, view.ID); err != nil {
		t.Fatalf("next failed: %v", err)
	}
	if _, err := env.sessions.SelectAnswer(ctx, view.ID, "C"); err != nil {
		t.Fatalf("answer failed: %v", err)
	}

	result, _, err := env.sessions.Finish(ctx, view.ID, false)
	if err != nil {
		t.Fatalf("finish failed: %v", err)
	}
	if result == nil {
		t.Fatal("expected a scored result")
	}
	if result.Score != 1 || result.Total != 2 || result.Percentage != 50 {
		t.Fatalf("expected score=1 total=2 percentage=50, got %+v", result)
	}
	if result.AverageScore != 50 {
		t.Fatalf("expected average 50, got %v", result.AverageScore)
	}

	// A submitted session is gone, and with it the cached answers.
	if _, err := env.sessions.Get(ctx, view.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected session to be cleared, got %v", err)
	}
}

func TestFinishWithGapsRequiresConfirmation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	view, _ := env.sessions.Start(ctx, env.user.ID, 1, 2, 3)
	if _, err := env.sessions.SelectAnswer(ctx, view.ID, "B"); err != nil {
		t.Fatalf("answer failed: %v", err)
	}

	result, review, err := env.sessions.Finish(ctx, view.ID, false)
	if err != nil {
		t.Fatalf("finish failed: %v", err)
	}
	if result != nil {
		t.Fatal("expected no result while review is pending")
	}
	if review.State != domain.SessionReviewPending || review.Unanswered != 1 {
		t.Fatalf("expected review_pending with 1 gap, got %+v", review)
	}

	result, _, err = env.sessions.Finish(ctx, view.ID, true)
	if err != nil {
		t.Fatalf("confirmed finish failed: %v", err)
	}
	if result == nil || result.Score != 1 || result.Percentage != 50 {
		t.Fatalf("expected confirmed submit with score 1, got %+v", result)
	}
}

func TestCountdownIsAdvisoryOnly(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	view, _ := env.sessions.Start(ctx, env.user.ID, 1, 2, 3)
	env.clock.Advance(700 * time.Second)

	view, err := env.sessions.Get(ctx, view.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if view.TimeLeftSec != 0 {
		t.Fatalf("expected countdown floored at 0, got %d", view.TimeLeftSec)
	}

	// The expired timer never auto-submits; answering still works.
	if _, err := env.sessions.SelectAnswer(ctx, view.ID, "B"); err != nil {
		t.Fatalf("answer after expiry failed: %v", err)
	}
}

func TestAnswerTextIsNotValidatedAgainstOptions(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	view, _ := env.sessions.Start(ctx, env.user.ID, 1, 2, 3)
	updated, err := env.sessions.SelectAnswer(ctx, view.ID, "not-an-option")
	if err != nil {
		t.Fatalf("answer failed: %v", err)
	}
	if updated.Answers[0] != "not-an-option" {
		t.Fatalf("expected raw answer stored, got %q", updated.Answers[0])
	}
}

func TestPercentageRounding(t *testing.T) {
	cases := []struct {
		score, total, want int
	}{
		{0, 1, 0},
		{1, 2, 50},
		{1, 3, 33},
		{2, 3, 67},
		{1, 8, 13}, // 12.5 rounds half up
		{3, 3, 100},
	}
	for _, tc := range cases {
		if got := app.Percentage(tc.score, tc.total); got != tc.want {
			t.Errorf("Percentage(%d, %d) = %d, want %d", tc.score, tc.total, got, tc.want)
		}
	}
}
