package app

import (
	"context"
	"time"

	"prepquiz-service/internal/domain"
)

// QuestionRepository serves the question set for one catalog triple,
// typically through a cache in front of the store of record.
type QuestionRepository interface {
	GetQuestionSet(ctx context.Context, subjectID, yearID, courseID int64) ([]domain.Question, error)
}

// SessionStore persists in-progress quiz sessions between requests so
// answers survive a client reload until a successful submit clears them.
type SessionStore interface {
	Save(ctx context.Context, session *domain.QuizSession) error
	Get(ctx context.Context, id string) (*domain.QuizSession, error)
	Delete(ctx context.Context, id string) error
}

// QuestionFilter narrows admin question listings; zero means "any".
type QuestionFilter struct {
	SubjectID int64
	YearID    int64
	CourseID  int64
}

// CatalogStore holds the shared reference data (admin-mutable only).
type CatalogStore interface {
	ListSubjects(ctx context.Context) ([]domain.Subject, error)
	CreateSubject(ctx context.Context, name string) (domain.Subject, error)
	ListYears(ctx context.Context) ([]domain.Year, error)
	CreateYear(ctx context.Context, name string) (domain.Year, error)
	ListCourses(ctx context.Context) ([]domain.Course, error)
	CreateCourse(ctx context.Context, name string) (domain.Course, error)
	ListQuestions(ctx context.Context, filter QuestionFilter) ([]domain.Question, error)
	CreateQuestion(ctx context.Context, q *domain.Question) error
	UpdateQuestion(ctx context.Context, q *domain.Question) error
}

// UserStore holds accounts and their persisted aggregates.
type UserStore interface {
	Upsert(ctx context.Context, identity domain.Identity) (domain.User, error)
	GetByID(ctx context.Context, id string) (domain.User, error)
	GetByProviderUID(ctx context.Context, uid string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	SetBanned(ctx context.Context, id string, banned bool) (domain.User, error)
	SetAccess(ctx context.Context, id string, hasAccess bool) (domain.User, error)
	SetRoles(ctx context.Context, id string, isAdmin, isBanned bool) (domain.User, error)

	// ApplyResult folds one quiz percentage into the user's aggregates as a
	// single atomic mutation and returns the new average score.
	ApplyResult(ctx context.Context, id string, percentage int) (float64, error)

	// BumpStreak increments streak_days and stamps last_streak_update.
	BumpStreak(ctx context.Context, id string, now time.Time) (int, error)
}

// ResultStore is the append-only record of completed attempts.
type ResultStore interface {
	Append(ctx context.Context, result *domain.QuizResult) error
	RecentByUser(ctx context.Context, userID string, limit int) ([]domain.QuizResult, error)
}

// StreakStore appends at most one credit row per calendar day.
type StreakStore interface {
	Credit(ctx context.Context, userID, date string) error
	// LastDate returns the most recent credited date or "" when none exists.
	LastDate(ctx context.Context, userID string) (string, error)
}

// LeaderboardStore is a derived read over user aggregates; recomputed
// fully on each call, no cache.
type LeaderboardStore interface {
	TopUsers(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
	Rank(ctx context.Context, userID string) (int, error)
}
