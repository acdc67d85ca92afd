package app

import (
	"context"
	"fmt"

	"prepquiz-service/internal/domain"
)

// recentResultCount matches the profile page's "last five attempts".
const recentResultCount = 5

// UserService covers account upserts, admin user management and the
// profile-page stats view.
type UserService struct {
	users   UserStore
	results ResultStore
	board   *LeaderboardService
}

func NewUserService(users UserStore, results ResultStore, board *LeaderboardService) *UserService {
	return &UserService{users: users, results: results, board: board}
}

// UpsertFromProvider creates or refreshes the local account keyed by
// the identity provider's uid. New accounts start with no paid access
// and zeroed aggregates.
func (s *UserService) UpsertFromProvider(ctx context.Context, identity domain.Identity) (domain.User, error) {
	if identity.UID == "" {
		return domain.User{}, fmt.Errorf("%w: missing provider uid", domain.ErrInvalidInput)
	}
	if identity.Email == "" {
		return domain.User{}, fmt.Errorf("%w: missing email", domain.ErrInvalidInput)
	}
	return s.users.Upsert(ctx, identity)
}

func (s *UserService) GetByID(ctx context.Context, id string) (domain.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *UserService) GetByProviderUID(ctx context.Context, uid string) (domain.User, error) {
	return s.users.GetByProviderUID(ctx, uid)
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return s.users.GetByEmail(ctx, email)
}

// List returns every account for the admin console.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

// SetBanned toggles the ban flag (admin only, enforced at transport).
func (s *UserService) SetBanned(ctx context.Context, userID string, banned bool) (domain.User, error) {
	if userID == "" {
		return domain.User{}, fmt.Errorf("%w: missing userId", domain.ErrInvalidInput)
	}
	return s.users.SetBanned(ctx, userID, banned)
}

// SetAccess toggles the paid-access flag (admin only, enforced at transport).
func (s *UserService) SetAccess(ctx context.Context, userID string, hasAccess bool) (domain.User, error) {
	if userID == "" {
		return domain.User{}, fmt.Errorf("%w: missing userId", domain.ErrInvalidInput)
	}
	return s.users.SetAccess(ctx, userID, hasAccess)
}

// SetRoles is the admin console's full-row role update.
func (s *UserService) SetRoles(ctx context.Context, userID string, isAdmin, isBanned bool) (domain.User, error) {
	if userID == "" {
		return domain.User{}, fmt.Errorf("%w: missing id", domain.ErrInvalidInput)
	}
	return s.users.SetRoles(ctx, userID, isAdmin, isBanned)
}

// Stats assembles the profile view: aggregates, recent attempts and the
// user's leaderboard rank.
func (s *UserService) Stats(ctx context.Context, userID string) (domain.UserStats, error) {
	if userID == "" {
		return domain.UserStats{}, fmt.Errorf("%w: missing userId", domain.ErrInvalidInput)
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return domain.UserStats{}, err
	}

	recent, err := s.results.RecentByUser(ctx, userID, recentResultCount)
	if err != nil {
		return domain.UserStats{}, fmt.Errorf("recent results: %w", err)
	}

	rank := 0
	if s.board != nil {
		rank, err = s.board.Rank(ctx, userID)
		if err != nil {
			return domain.UserStats{}, fmt.Errorf("rank: %w", err)
		}
	}

	return domain.UserStats{
		QuizzesTaken:    user.QuizzesTaken,
		AverageScore:    user.AverageScore,
		StreakDays:      user.StreakDays,
		LeaderboardRank: rank,
		RecentResults:   recent,
	}, nil
}
