package memory

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"prepquiz-service/internal/domain"
)

// UserStore is the in-memory account store. It also carries the quiz
// results and streak rows owned by those accounts and derives the
// leaderboard from them, so one struct satisfies app.UserStore,
// app.ResultStore, app.StreakStore and app.LeaderboardStore.
type UserStore struct {
	clock func() time.Time

	mu      sync.RWMutex
	users   map[string]*domain.User
	seq     map[string]int // arrival order for stable leaderboard ties
	nextSeq int
	results []domain.QuizResult
	streaks []domain.Streak
}

func NewUserStore() *UserStore {
	return &UserStore{
		clock: time.Now,
		users: make(map[string]*domain.User),
		seq:   make(map[string]int),
	}
}

// NewUserStoreWithClock is test-only for deterministic timestamps.
func NewUserStoreWithClock(clock func() time.Time) *UserStore {
	s := NewUserStore()
	s.clock = clock
	return s
}

func (s *UserStore) Upsert(_ context.Context, identity domain.Identity) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ProviderUID == identity.UID {
			u.Email = identity.Email
			u.DisplayName = identity.DisplayName
			u.PhotoURL = identity.PhotoURL
			return *u, nil
		}
	}
	now := s.clock()
	user := &domain.User{
		ID:               uuid.NewString(),
		ProviderUID:      identity.UID,
		Email:            identity.Email,
		DisplayName:      identity.DisplayName,
		PhotoURL:         identity.PhotoURL,
		LastStreakUpdate: now,
		CreatedAt:        now,
	}
	s.users[user.ID] = user
	s.seq[user.ID] = s.nextSeq
	s.nextSeq++
	return *user, nil
}

func (s *UserStore) GetByID(_ context.Context, id string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[id]; ok {
		return *u, nil
	}
	return domain.User{}, domain.ErrUserNotFound
}

func (s *UserStore) GetByProviderUID(_ context.Context, uid string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.ProviderUID == uid {
			return *u, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

func (s *UserStore) GetByEmail(_ context.Context, email string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			return *u, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

func (s *UserStore) List(_ context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return s.seq[out[i].ID] < s.seq[out[j].ID] })
	return out, nil
}

func (s *UserStore) SetBanned(_ context.Context, id string, banned bool) (domain.User, error) {
	return s.update(id, func(u *domain.User) { u.IsBanned = banned })
}

func (s *UserStore) SetAccess(_ context.Context, id string, hasAccess bool) (domain.User, error) {
	return s.update(id, func(u *domain.User) { u.HasAccess = hasAccess })
}

func (s *UserStore) SetRoles(_ context.Context, id string, isAdmin, isBanned bool) (domain.User, error) {
	return s.update(id, func(u *domain.User) {
		u.IsAdmin = isAdmin
		u.IsBanned = isBanned
	})
}

func (s *UserStore) ApplyResult(_ context.Context, id string, percentage int) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return 0, domain.ErrUserNotFound
	}
	u.TotalScore += float64(percentage)
	u.QuizzesTaken++
	u.AverageScore = math.Round(u.TotalScore/float64(u.QuizzesTaken)*100) / 100
	return u.AverageScore, nil
}

func (s *UserStore) BumpStreak(_ context.Context, id string, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return 0, domain.ErrUserNotFound
	}
	u.StreakDays++
	u.LastStreakUpdate = now
	return u.StreakDays, nil
}

func (s *UserStore) Append(_ context.Context, result *domain.QuizResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	result.ID = int64(len(s.results) + 1)
	s.results = append(s.results, *result)
	return nil
}

func (s *UserStore) RecentByUser(_ context.Context, userID string, limit int) ([]domain.QuizResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.QuizResult, 0, limit)
	for i := len(s.results) - 1; i >= 0 && len(out) < limit; i-- {
		if s.results[i].UserID == userID {
			out = append(out, s.results[i])
		}
	}
	return out, nil
}

func (s *UserStore) Credit(_ context.Context, userID, date string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.streaks = append(s.streaks, domain.Streak{
		ID:     int64(len(s.streaks) + 1),
		UserID: userID,
		Date:   date,
	})
	return nil
}

func (s *UserStore) LastDate(_ context.Context, userID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.streaks) - 1; i >= 0; i-- {
		if s.streaks[i].UserID == userID {
			return s.streaks[i].Date, nil
		}
	}
	return "", nil
}

func (s *UserStore) TopUsers(_ context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ranked := s.rankedLocked()
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	out := make([]domain.LeaderboardEntry, 0, len(ranked))
	for _, u := range ranked {
		out = append(out, domain.LeaderboardEntry{
			ID:           u.ID,
			DisplayName:  u.DisplayName,
			AverageScore: u.AverageScore,
		})
	}
	return out, nil
}

func (s *UserStore) Rank(_ context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i, u := range s.rankedLocked() {
		if u.ID == userID {
			return i + 1, nil
		}
	}
	return 0, domain.ErrUserNotFound
}

// rankedLocked orders users by average score descending; ties keep
// arrival order (stable sort over the insertion sequence).
func (s *UserStore) rankedLocked() []*domain.User {
	ranked := make([]*domain.User, 0, len(s.users))
	for _, u := range s.users {
		ranked = append(ranked, u)
	}
	sort.Slice(ranked, func(i, j int) bool { return s.seq[ranked[i].ID] < s.seq[ranked[j].ID] })
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].AverageScore > ranked[j].AverageScore })
	return ranked
}

func (s *UserStore) update(id string, fn func(*domain.User)) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	fn(u)
	return *u, nil
}
