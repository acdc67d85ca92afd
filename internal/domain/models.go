package domain

import (
	"time"

	"github.com/uptrace/bun"
)

// Subject is an immutable catalog entry (e.g. "Mathematics").
type Subject struct {
	bun.BaseModel `bun:"table:subjects"`

	ID   int64  `bun:"id,pk,autoincrement" json:"id"`
	Name string `bun:"name,notnull,unique" json:"name"`
}

// Year is an exam year ("2024"). Stored as a name to match subjects/courses.
type Year struct {
	bun.BaseModel `bun:"table:years"`

	ID   int64  `bun:"id,pk,autoincrement" json:"id"`
	Name string `bun:"name,notnull,unique" json:"name"`
}

// Course is a catalog entry grouping questions within a subject/year.
type Course struct {
	bun.BaseModel `bun:"table:courses"`

	ID   int64  `bun:"id,pk,autoincrement" json:"id"`
	Name string `bun:"name,notnull,unique" json:"name"`
}

// Question is an MCQ belonging to exactly one (subject, year, course) triple.
// Answer must equal one of Options; this is checked on admin writes only.
type Question struct {
	bun.BaseModel `bun:"table:questions"`

	ID        int64    `bun:"id,pk,autoincrement" json:"id"`
	Text      string   `bun:"text,notnull" json:"text"`
	Options   []string `bun:"options,type:jsonb" json:"options"`
	Answer    string   `bun:"answer,notnull" json:"answer"`
	SubjectID int64    `bun:"subject_id,notnull" json:"subjectId"`
	YearID    int64    `bun:"year_id,notnull" json:"yearId"`
	CourseID  int64    `bun:"course_id,notnull" json:"courseId"`
}

// User is an account upserted on first sign-in, keyed by the identity
// provider's uid. TotalScore accumulates per-quiz percentages (0-100),
// not raw scores; AverageScore is the persisted running mean of those
// percentages rounded to two decimals.
type User struct {
	bun.BaseModel `bun:"table:users"`

	ID               string    `bun:"id,pk" json:"id"`
	ProviderUID      string    `bun:"provider_uid,notnull,unique" json:"providerUid"`
	Email            string    `bun:"email,notnull,unique" json:"email"`
	DisplayName      string    `bun:"display_name" json:"displayName"`
	PhotoURL         string    `bun:"photo_url" json:"photoURL"`
	IsAdmin          bool      `bun:"is_admin" json:"isAdmin"`
	IsBanned         bool      `bun:"is_banned" json:"isBanned"`
	HasAccess        bool      `bun:"has_access" json:"hasAccess"`
	StreakDays       int       `bun:"streak_days" json:"streakDays"`
	QuizzesTaken     int       `bun:"quizzes_taken" json:"quizzesTaken"`
	TotalScore       float64   `bun:"total_score" json:"totalScore"`
	AverageScore     float64   `bun:"average_score" json:"averageScore"`
	LastStreakUpdate time.Time `bun:"last_streak_update,notnull" json:"lastStreakUpdate"`
	CreatedAt        time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
}

// Identity is what the external provider asserts about a signed-in user.
type Identity struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoURL"`
}

// QuizResult is an immutable record of one completed attempt.
// Percentage = round(Score/Total*100).
type QuizResult struct {
	bun.BaseModel `bun:"table:quiz_results"`

	ID         int64     `bun:"id,pk,autoincrement" json:"id"`
	UserID     string    `bun:"user_id,notnull" json:"userId"`
	Score      int       `bun:"score,notnull" json:"score"`
	Total      int       `bun:"total,notnull" json:"total"`
	Percentage int       `bun:"percentage,notnull" json:"percentage"`
	SubjectID  int64     `bun:"subject_id,notnull" json:"subjectId"`
	YearID     int64     `bun:"year_id,notnull" json:"yearId"`
	CourseID   int64     `bun:"course_id,notnull" json:"courseId"`
	CreatedAt  time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
}

// Streak is an append-only credit of one engagement day (YYYY-MM-DD).
type Streak struct {
	bun.BaseModel `bun:"table:streaks"`

	ID     int64  `bun:"id,pk,autoincrement" json:"id"`
	UserID string `bun:"user_id,notnull" json:"userId"`
	Date   string `bun:"date,notnull" json:"date"`
}

// StreakStatus answers "can this user bank another streak day yet?".
type StreakStatus struct {
	StreakDays      int  `json:"streakDays"`
	CanUpdateStreak bool `json:"canUpdateStreak"`
}

// LeaderboardEntry is one row of the top-users view.
type LeaderboardEntry struct {
	ID           string  `json:"id"`
	DisplayName  string  `json:"displayName"`
	AverageScore float64 `json:"averageScore"`
}

// Leaderboard is a full snapshot pushed to live subscribers.
type Leaderboard struct {
	Entries   []LeaderboardEntry `json:"entries"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// UserStats is the profile-page aggregate view.
type UserStats struct {
	QuizzesTaken    int          `json:"quizzesTaken"`
	AverageScore    float64      `json:"averageScore"`
	StreakDays      int          `json:"streakDays"`
	LeaderboardRank int          `json:"leaderboardRank"`
	RecentResults   []QuizResult `json:"recentResults"`
}

// SessionState is the lifecycle of one quiz attempt.
type SessionState string

const (
	SessionInProgress    SessionState = "in_progress"
	SessionReviewPending SessionState = "review_pending"
	SessionSubmitted     SessionState = "submitted"
)

// QuizSession is one traversal of a fixed question list from load to
// submission. It is held server-side and persisted between requests so
// in-progress answers survive a client reload. An empty string in
// Answers marks an unanswered question.
type QuizSession struct {
	ID        string       `json:"id"`
	UserID    string       `json:"userId"`
	SubjectID int64        `json:"subjectId"`
	YearID    int64        `json:"yearId"`
	CourseID  int64        `json:"courseId"`
	Questions []Question   `json:"questions"`
	Answers   []string     `json:"answers"`
	Index     int          `json:"index"`
	State     SessionState `json:"state"`
	StartedAt time.Time    `json:"startedAt"`
	Deadline  time.Time    `json:"deadline"`
}

// Unanswered returns how many questions still carry the empty sentinel.
func (s *QuizSession) Unanswered() int {
	n := 0
	for _, a := range s.Answers {
		if a == "" {
			n++
		}
	}
	return n
}

// QuestionView is a question with the answer stripped, safe to send to
// a client mid-session.
type QuestionView struct {
	ID      int64    `json:"id"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

// SessionView is the client-facing snapshot of a session.
type SessionView struct {
	ID          string       `json:"id"`
	State       SessionState `json:"state"`
	Index       int          `json:"index"`
	Total       int          `json:"total"`
	Question    QuestionView `json:"question"`
	Answers     []string     `json:"answers"`
	Unanswered  int          `json:"unanswered"`
	TimeLeftSec int          `json:"timeLeftSec"`
}

// SessionResult carries the scored outcome plus everything the results
// page needs to render a per-question review.
type SessionResult struct {
	SessionID    string     `json:"sessionId"`
	Score        int        `json:"score"`
	Total        int        `json:"total"`
	Percentage   int        `json:"percentage"`
	AverageScore float64    `json:"averageScore"`
	Answers      []string   `json:"answers"`
	Questions    []Question `json:"questions"`
}
