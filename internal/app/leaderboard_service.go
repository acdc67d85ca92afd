package app

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"prepquiz-service/internal/domain"
)

// DefaultLeaderboardLimit caps the top-users view.
const DefaultLeaderboardLimit = 10

// LeaderboardService serves the top-users view and fans out fresh
// snapshots to live subscribers after every accepted submission.
type LeaderboardService struct {
	store LeaderboardStore
	limit int
	log   *zap.Logger
	now   func() time.Time

	mu          sync.Mutex
	subscribers map[chan domain.Leaderboard]struct{}
}

func NewLeaderboardService(store LeaderboardStore, limit int, log *zap.Logger) *LeaderboardService {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &LeaderboardService{
		store:       store,
		limit:       limit,
		log:         log,
		now:         time.Now,
		subscribers: make(map[chan domain.Leaderboard]struct{}),
	}
}

// TopUsers is a pure read, recomputed fully on each call.
func (s *LeaderboardService) TopUsers(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	return s.store.TopUsers(ctx, s.limit)
}

// Rank returns the 1-based position of a user under the leaderboard
// ordering.
func (s *LeaderboardService) Rank(ctx context.Context, userID string) (int, error) {
	return s.store.Rank(ctx, userID)
}

// Subscribe registers a live feed. The channel receives the current
// snapshot immediately and a new one after each accepted submission.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *LeaderboardService) Subscribe(ctx context.Context) (<-chan domain.Leaderboard, func(), error) {
	snapshot, err := s.snapshot(ctx)
	if err != nil {
		return nil, nil, err
	}

	ch := make(chan domain.Leaderboard, 8)
	ch <- snapshot

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel, nil
}

// Publish pushes a fresh snapshot to every subscriber. Slow subscribers
// have their stale update dropped rather than blocking the fan-out.
func (s *LeaderboardService) Publish(ctx context.Context) {
	s.mu.Lock()
	if len(s.subscribers) == 0 {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	snapshot, err := s.snapshot(ctx)
	if err != nil {
		s.log.Warn("leaderboard snapshot failed", zap.Error(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subscribers {
		select {
		case ch <- snapshot:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- snapshot
		}
	}
}

func (s *LeaderboardService) snapshot(ctx context.Context) (domain.Leaderboard, error) {
	entries, err := s.store.TopUsers(ctx, s.limit)
	if err != nil {
		return domain.Leaderboard{}, err
	}
	return domain.Leaderboard{Entries: entries, UpdatedAt: s.now()}, nil
}
