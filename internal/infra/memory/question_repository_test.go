package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"prepquiz-service/internal/domain"
)

type countingLoader struct {
	inner QuestionLoader
	calls int64
}

func (l *countingLoader) LoadQuestionSet(ctx context.Context, subjectID, yearID, courseID int64) ([]domain.Question, error) {
	atomic.AddInt64(&l.calls, 1)
	return l.inner.LoadQuestionSet(ctx, subjectID, yearID, courseID)
}

func sampleSet() []domain.Question {
	return []domain.Question{
		{ID: 1, Text: "q1", Options: []string{"A", "B", "C", "D"}, Answer: "A", SubjectID: 1, YearID: 2, CourseID: 3},
		{ID: 2, Text: "q2", Options: []string{"A", "B", "C", "D"}, Answer: "B", SubjectID: 1, YearID: 2, CourseID: 3},
	}
}

func TestQuestionSetIsCachedUntilTTL(t *testing.T) {
	ctx := context.Background()
	loader := &countingLoader{inner: NewStaticQuestionLoader(sampleSet())}
	repo := NewQuestionRepository(loader, time.Minute)

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	now := base
	repo.clock = func() time.Time { return now }

	for i := 0; i < 5; i++ {
		questions, err := repo.GetQuestionSet(ctx, 1, 2, 3)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if len(questions) != 2 {
			t.Fatalf("len = %d, want 2", len(questions))
		}
	}
	if got := atomic.LoadInt64(&loader.calls); got != 1 {
		t.Fatalf("loader calls = %d, want 1", got)
	}

	// Past the TTL (plus max jitter) the loader is hit again.
	now = base.Add(2 * time.Minute)
	if _, err := repo.GetQuestionSet(ctx, 1, 2, 3); err != nil {
		t.Fatalf("get after expiry: %v", err)
	}
	if got := atomic.LoadInt64(&loader.calls); got != 2 {
		t.Fatalf("loader calls = %d, want 2", got)
	}
}

func TestDistinctTriplesCacheSeparately(t *testing.T) {
	ctx := context.Background()
	static := NewStaticQuestionLoader(sampleSet())
	static.Add(domain.Question{ID: 3, Text: "q3", Options: []string{"A", "B", "C", "D"}, Answer: "C", SubjectID: 9, YearID: 9, CourseID: 9})
	loader := &countingLoader{inner: static}
	repo := NewQuestionRepository(loader, time.Minute)

	first, err := repo.GetQuestionSet(ctx, 1, 2, 3)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	second, err := repo.GetQuestionSet(ctx, 9, 9, 9)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(first) != 2 || len(second) != 1 {
		t.Fatalf("set sizes = %d, %d", len(first), len(second))
	}
	if got := atomic.LoadInt64(&loader.calls); got != 2 {
		t.Fatalf("loader calls = %d, want 2", got)
	}
}

func TestConcurrentMissesCollapseToOneLoad(t *testing.T) {
	ctx := context.Background()
	loader := &countingLoader{inner: NewStaticQuestionLoader(sampleSet())}
	repo := NewQuestionRepository(loader, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.GetQuestionSet(ctx, 1, 2, 3); err != nil {
				t.Errorf("get: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt64(&loader.calls); got != 1 {
		t.Fatalf("loader calls = %d, want 1", got)
	}
}
