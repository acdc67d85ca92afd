package memory

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"prepquiz-service/internal/domain"
)

// QuestionLoader fetches the question set for a catalog triple from the
// store of record.
type QuestionLoader interface {
	LoadQuestionSet(ctx context.Context, subjectID, yearID, courseID int64) ([]domain.Question, error)
}

type tripleKey struct {
	SubjectID int64
	YearID    int64
	CourseID  int64
}

func (k tripleKey) String() string {
	return fmt.Sprintf("%d:%d:%d", k.SubjectID, k.YearID, k.CourseID)
}

// QuestionRepository caches question sets with TTL to avoid repeated DB
// hits while quizzes on the same triple are running.
type QuestionRepository struct {
	loader QuestionLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[tripleKey]cachedSet
}

type cachedSet struct {
	questions []domain.Question
	expiresAt time.Time
}

func NewQuestionRepository(loader QuestionLoader, ttl time.Duration) *QuestionRepository {
	return &QuestionRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[tripleKey]cachedSet),
	}
}

func (r *QuestionRepository) GetQuestionSet(ctx context.Context, subjectID, yearID, courseID int64) ([]domain.Question, error) {
	key := tripleKey{SubjectID: subjectID, YearID: yearID, CourseID: courseID}
	now := r.clock()

	r.mu.RLock()
	if entry, ok := r.cache[key]; ok && entry.expiresAt.After(now) {
		r.mu.RUnlock()
		return entry.questions, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do(key.String(), func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if entry, ok := r.cache[key]; ok && entry.expiresAt.After(now) {
			r.mu.RUnlock()
			return entry.questions, nil
		}
		r.mu.RUnlock()

		questions, err := r.loader.LoadQuestionSet(ctx, subjectID, yearID, courseID)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.cache[key] = cachedSet{
			questions: questions,
			expiresAt: now.Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (r *QuestionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticQuestionLoader serves question sets from an in-memory catalog
// (useful for tests and for running without postgres).
type StaticQuestionLoader struct {
	mu        sync.RWMutex
	questions []domain.Question
}

func NewStaticQuestionLoader(questions []domain.Question) *StaticQuestionLoader {
	return &StaticQuestionLoader{questions: questions}
}

func (l *StaticQuestionLoader) LoadQuestionSet(_ context.Context, subjectID, yearID, courseID int64) ([]domain.Question, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	matched := make([]domain.Question, 0)
	for _, q := range l.questions {
		if q.SubjectID == subjectID && q.YearID == yearID && q.CourseID == courseID {
			matched = append(matched, q)
		}
	}
	return matched, nil
}

// Add appends a question set entry, mirroring admin catalog writes in
// the no-postgres setup.
func (l *StaticQuestionLoader) Add(q domain.Question) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.questions = append(l.questions, q)
}
