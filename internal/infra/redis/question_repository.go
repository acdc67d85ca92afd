package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"prepquiz-service/internal/domain"
	"prepquiz-service/internal/infra/memory"
)

// QuestionRepository caches whole question sets in Redis (one JSON
// value per catalog triple) and falls back to a loader on cache miss.
// Keys: questions:{subjectID}:{yearID}:{courseID}
type QuestionRepository struct {
	client *redis.Client
	loader memory.QuestionLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewQuestionRepository(client *redis.Client, loader memory.QuestionLoader, ttl time.Duration) *QuestionRepository {
	return &QuestionRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuestionRepository) GetQuestionSet(ctx context.Context, subjectID, yearID, courseID int64) ([]domain.Question, error) {
	key := r.key(subjectID, yearID, courseID)

	if cached, ok := r.fromCache(ctx, key); ok {
		return cached, nil
	}

	result, err, _ := r.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if cached, ok := r.fromCache(ctx, key); ok {
			return cached, nil
		}

		questions, err := r.loader.LoadQuestionSet(ctx, subjectID, yearID, courseID)
		if err != nil {
			return nil, err
		}

		raw, err := json.Marshal(questions)
		if err != nil {
			return nil, fmt.Errorf("marshal question set: %w", err)
		}
		// best-effort fill; a failed write just means the next call loads again
		_ = r.client.Set(ctx, key, raw, r.ttlWithJitter()).Err()

		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (r *QuestionRepository) fromCache(ctx context.Context, key string) ([]domain.Question, bool) {
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var questions []domain.Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, false
	}
	return questions, true
}

func (r *QuestionRepository) key(subjectID, yearID, courseID int64) string {
	return fmt.Sprintf("questions:%d:%d:%d", subjectID, yearID, courseID)
}

func (r *QuestionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
