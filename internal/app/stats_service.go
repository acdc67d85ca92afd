package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"prepquiz-service/internal/domain"
)

// streakWindow is the rolling window gating streak credits.
const streakWindow = 24 * time.Hour

// StatsService persists quiz results, folds them into user aggregates
// and keeps the streak bookkeeping.
type StatsService struct {
	users   UserStore
	results ResultStore
	streaks StreakStore
	board   *LeaderboardService
	log     *zap.Logger
	now     func() time.Time
}

func NewStatsService(users UserStore, results ResultStore, streaks StreakStore, board *LeaderboardService, log *zap.Logger) *StatsService {
	if log == nil {
		log = zap.NewNop()
	}
	return &StatsService{
		users:   users,
		results: results,
		streaks: streaks,
		board:   board,
		log:     log,
		now:     time.Now,
	}
}

// NewStatsServiceWithClock is test-only for deterministic timestamps.
func NewStatsServiceWithClock(users UserStore, results ResultStore, streaks StreakStore, board *LeaderboardService, log *zap.Logger, now func() time.Time) *StatsService {
	s := NewStatsService(users, results, streaks, board, log)
	s.now = now
	return s
}

// SubmitResult appends one result row and folds its percentage into the
// user's running aggregates in a single atomic store mutation. It
// returns the new average score. A same-day streak row is credited as a
// side effect, best effort.
func (s *StatsService) SubmitResult(ctx context.Context, result *domain.QuizResult) (float64, error) {
	if err := validateResult(result); err != nil {
		return 0, err
	}
	if _, err := s.users.GetByID(ctx, result.UserID); err != nil {
		return 0, err
	}

	result.CreatedAt = s.now()
	if err := s.results.Append(ctx, result); err != nil {
		return 0, fmt.Errorf("append result: %w", err)
	}

	avg, err := s.users.ApplyResult(ctx, result.UserID, result.Percentage)
	if err != nil {
		return 0, fmt.Errorf("apply result: %w", err)
	}

	today := s.now().UTC().Format("2006-01-02")
	last, err := s.streaks.LastDate(ctx, result.UserID)
	if err != nil {
		s.log.Warn("streak lookup failed", zap.String("userId", result.UserID), zap.Error(err))
	} else if last != today {
		if err := s.streaks.Credit(ctx, result.UserID, today); err != nil {
			s.log.Warn("streak credit failed", zap.String("userId", result.UserID), zap.Error(err))
		}
	}

	if s.board != nil {
		s.board.Publish(ctx)
	}

	s.log.Info("quiz result recorded",
		zap.String("userId", result.UserID),
		zap.Int("score", result.Score),
		zap.Int("total", result.Total),
		zap.Int("percentage", result.Percentage),
		zap.Float64("averageScore", avg),
	)
	return avg, nil
}

// CheckStreak reports the current count and whether the 24h window has
// elapsed since the last credit.
func (s *StatsService) CheckStreak(ctx context.Context, userID string) (domain.StreakStatus, error) {
	if userID == "" {
		return domain.StreakStatus{}, fmt.Errorf("%w: missing userId", domain.ErrInvalidInput)
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return domain.StreakStatus{}, err
	}
	return domain.StreakStatus{
		StreakDays:      user.StreakDays,
		CanUpdateStreak: s.now().Sub(user.LastStreakUpdate) >= streakWindow,
	}, nil
}

// UpdateStreak banks one streak day. Inside the 24h window it rejects
// with ErrStreakNotReady and mutates nothing, so repeated calls leave
// the count unchanged.
func (s *StatsService) UpdateStreak(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, fmt.Errorf("%w: missing userId", domain.ErrInvalidInput)
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	now := s.now()
	if now.Sub(user.LastStreakUpdate) < streakWindow {
		return user.StreakDays, domain.ErrStreakNotReady
	}

	days, err := s.users.BumpStreak(ctx, userID, now)
	if err != nil {
		return 0, fmt.Errorf("bump streak: %w", err)
	}
	if err := s.streaks.Credit(ctx, userID, now.UTC().Format("2006-01-02")); err != nil {
		s.log.Warn("streak credit failed", zap.String("userId", userID), zap.Error(err))
	}
	return days, nil
}

func validateResult(result *domain.QuizResult) error {
	switch {
	case result == nil:
		return fmt.Errorf("%w: missing body", domain.ErrInvalidInput)
	case result.UserID == "":
		return fmt.Errorf("%w: missing userId", domain.ErrInvalidInput)
	case result.Total <= 0:
		return fmt.Errorf("%w: total must be positive", domain.ErrInvalidInput)
	case result.Score < 0 || result.Score > result.Total:
		return fmt.Errorf("%w: score out of range", domain.ErrInvalidInput)
	case result.Percentage < 0 || result.Percentage > 100:
		return fmt.Errorf("%w: percentage out of range", domain.ErrInvalidInput)
	case result.SubjectID == 0 || result.YearID == 0 || result.CourseID == 0:
		return fmt.Errorf("%w: subjectId, yearId and courseId are required", domain.ErrInvalidInput)
	}
	return nil
}
