package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"prepquiz-service/internal/domain"
)

// UserStore is the bun-backed account store. It also owns the
// quiz_results and streaks tables and the leaderboard read, so the one
// struct satisfies app.UserStore, app.ResultStore, app.StreakStore and
// app.LeaderboardStore.
type UserStore struct {
	db *bun.DB
}

func NewUserStore(db *bun.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Upsert(ctx context.Context, identity domain.Identity) (domain.User, error) {
	now := time.Now()
	user := domain.User{
		ID:               uuid.NewString(),
		ProviderUID:      identity.UID,
		Email:            identity.Email,
		DisplayName:      identity.DisplayName,
		PhotoURL:         identity.PhotoURL,
		LastStreakUpdate: now,
		CreatedAt:        now,
	}
	_, err := s.db.NewInsert().Model(&user).
		On("CONFLICT (provider_uid) DO UPDATE").
		Set("email = EXCLUDED.email").
		Set("display_name = EXCLUDED.display_name").
		Set("photo_url = EXCLUDED.photo_url").
		Returning("*").
		Exec(ctx)
	if err != nil {
		return domain.User{}, fmt.Errorf("upsert user: %w", err)
	}
	return user, nil
}

func (s *UserStore) GetByID(ctx context.Context, id string) (domain.User, error) {
	return s.getWhere(ctx, "id = ?", id)
}

func (s *UserStore) GetByProviderUID(ctx context.Context, uid string) (domain.User, error) {
	return s.getWhere(ctx, "provider_uid = ?", uid)
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return s.getWhere(ctx, "email = ?", email)
}

func (s *UserStore) List(ctx context.Context) ([]domain.User, error) {
	users := make([]domain.User, 0)
	if err := s.db.NewSelect().Model(&users).Order("created_at").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *UserStore) SetBanned(ctx context.Context, id string, banned bool) (domain.User, error) {
	return s.setFlags(ctx, id, map[string]interface{}{"is_banned": banned})
}

func (s *UserStore) SetAccess(ctx context.Context, id string, hasAccess bool) (domain.User, error) {
	return s.setFlags(ctx, id, map[string]interface{}{"has_access": hasAccess})
}

func (s *UserStore) SetRoles(ctx context.Context, id string, isAdmin, isBanned bool) (domain.User, error) {
	return s.setFlags(ctx, id, map[string]interface{}{"is_admin": isAdmin, "is_banned": isBanned})
}

// ApplyResult folds a percentage into the aggregates with one UPDATE so
// concurrent submissions cannot lose increments.
func (s *UserStore) ApplyResult(ctx context.Context, id string, percentage int) (float64, error) {
	var avg float64
	res, err := s.db.NewUpdate().Model((*domain.User)(nil)).
		Set("total_score = total_score + ?", percentage).
		Set("quizzes_taken = quizzes_taken + 1").
		Set("average_score = round(((total_score + ?) / (quizzes_taken + 1))::numeric, 2)", percentage).
		Where("id = ?", id).
		Returning("average_score").
		Exec(ctx, &avg)
	if err != nil {
		return 0, fmt.Errorf("apply result: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return 0, domain.ErrUserNotFound
	}
	return avg, nil
}

func (s *UserStore) BumpStreak(ctx context.Context, id string, now time.Time) (int, error) {
	var days int
	res, err := s.db.NewUpdate().Model((*domain.User)(nil)).
		Set("streak_days = streak_days + 1").
		Set("last_streak_update = ?", now).
		Where("id = ?", id).
		Returning("streak_days").
		Exec(ctx, &days)
	if err != nil {
		return 0, fmt.Errorf("bump streak: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return 0, domain.ErrUserNotFound
	}
	return days, nil
}

func (s *UserStore) Append(ctx context.Context, result *domain.QuizResult) error {
	if _, err := s.db.NewInsert().Model(result).Exec(ctx); err != nil {
		return fmt.Errorf("append quiz result: %w", err)
	}
	return nil
}

func (s *UserStore) RecentByUser(ctx context.Context, userID string, limit int) ([]domain.QuizResult, error) {
	results := make([]domain.QuizResult, 0, limit)
	err := s.db.NewSelect().Model(&results).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("recent results: %w", err)
	}
	return results, nil
}

// Credit inserts the day's streak row; the unique (user_id, date) index
// makes a repeated same-day credit a no-op.
func (s *UserStore) Credit(ctx context.Context, userID, date string) error {
	streak := domain.Streak{UserID: userID, Date: date}
	_, err := s.db.NewInsert().Model(&streak).
		On("CONFLICT (user_id, date) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("credit streak: %w", err)
	}
	return nil
}

func (s *UserStore) LastDate(ctx context.Context, userID string) (string, error) {
	var date string
	err := s.db.NewSelect().Model((*domain.Streak)(nil)).
		Column("date").
		Where("user_id = ?", userID).
		Order("date DESC").
		Limit(1).
		Scan(ctx, &date)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("last streak date: %w", err)
	}
	return date, nil
}

// TopUsers orders by average score descending with ties broken by
// arrival order (created_at, then id, for a total order).
func (s *UserStore) TopUsers(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	users := make([]domain.User, 0, limit)
	err := s.db.NewSelect().Model(&users).
		Column("id", "display_name", "average_score").
		OrderExpr("average_score DESC, created_at ASC, id ASC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("top users: %w", err)
	}
	entries := make([]domain.LeaderboardEntry, 0, len(users))
	for _, u := range users {
		entries = append(entries, domain.LeaderboardEntry{
			ID:           u.ID,
			DisplayName:  u.DisplayName,
			AverageScore: u.AverageScore,
		})
	}
	return entries, nil
}

func (s *UserStore) Rank(ctx context.Context, userID string) (int, error) {
	var rank int
	err := s.db.NewRaw(
		`SELECT count(*) + 1 FROM users u, users me
		 WHERE me.id = ?
		   AND (u.average_score > me.average_score
		     OR (u.average_score = me.average_score AND u.created_at < me.created_at)
		     OR (u.average_score = me.average_score AND u.created_at = me.created_at AND u.id < me.id))`,
		userID).Scan(ctx, &rank)
	if err != nil {
		return 0, fmt.Errorf("rank: %w", err)
	}
	return rank, nil
}

func (s *UserStore) getWhere(ctx context.Context, clause string, arg interface{}) (domain.User, error) {
	var user domain.User
	err := s.db.NewSelect().Model(&user).Where(clause, arg).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (s *UserStore) setFlags(ctx context.Context, id string, flags map[string]interface{}) (domain.User, error) {
	q := s.db.NewUpdate().Model((*domain.User)(nil)).Where("id = ?", id)
	for col, val := range flags {
		q = q.Set("? = ?", bun.Ident(col), val)
	}
	res, err := q.Exec(ctx)
	if err != nil {
		return domain.User{}, fmt.Errorf("update user flags: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.User{}, domain.ErrUserNotFound
	}
	return s.GetByID(ctx, id)
}
