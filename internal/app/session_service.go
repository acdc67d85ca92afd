package app

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"prepquiz-service/internal/domain"
)

// DefaultQuizDuration is the advisory countdown per attempt. The timer
// never auto-submits; it is reported to clients and nothing more.
const DefaultQuizDuration = 600 * time.Second

// SessionService runs the quiz attempt state machine:
// InProgress -> ReviewPending (when finishing with gaps) -> Submitted.
type SessionService struct {
	questions QuestionRepository
	sessions  SessionStore
	stats     *StatsService
	duration  time.Duration
	now       func() time.Time
}

func NewSessionService(questions QuestionRepository, sessions SessionStore, stats *StatsService, duration time.Duration) *SessionService {
	if duration <= 0 {
		duration = DefaultQuizDuration
	}
	return &SessionService{
		questions: questions,
		sessions:  sessions,
		stats:     stats,
		duration:  duration,
		now:       time.Now,
	}
}

// NewSessionServiceWithClock is test-only for deterministic timestamps.
func NewSessionServiceWithClock(questions QuestionRepository, sessions SessionStore, stats *StatsService, duration time.Duration, now func() time.Time) *SessionService {
	s := NewSessionService(questions, sessions, stats, duration)
	s.now = now
	return s
}

// Start loads the question set for the triple and opens a session.
// An empty set is terminal: no session is created and no retry is scheduled.
func (s *SessionService) Start(ctx context.Context, userID string, subjectID, yearID, courseID int64) (domain.SessionView, error) {
	if userID == "" {
		return domain.SessionView{}, fmt.Errorf("%w: missing userId", domain.ErrInvalidInput)
	}
	if subjectID == 0 || yearID == 0 || courseID == 0 {
		return domain.SessionView{}, fmt.Errorf("%w: subjectId, yearId and courseId are required", domain.ErrInvalidInput)
	}

	questions, err := s.questions.GetQuestionSet(ctx, subjectID, yearID, courseID)
	if err != nil {
		return domain.SessionView{}, err
	}
	if len(questions) == 0 {
		return domain.SessionView{}, domain.ErrNoQuestions
	}

	now := s.now()
	session := &domain.QuizSession{
		ID:        uuid.NewString(),
		UserID:    userID,
		SubjectID: subjectID,
		YearID:    yearID,
		CourseID:  courseID,
		Questions: questions,
		Answers:   make([]string, len(questions)),
		Index:     0,
		State:     domain.SessionInProgress,
		StartedAt: now,
		Deadline:  now.Add(s.duration),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return domain.SessionView{}, err
	}
	return s.view(session), nil
}

// Owner reports which user started the session.
func (s *SessionService) Owner(ctx context.Context, sessionID string) (string, error) {
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return "", err
	}
	return session.UserID, nil
}

// Get returns the current snapshot without mutating anything.
func (s *SessionService) Get(ctx context.Context, sessionID string) (domain.SessionView, error) {
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return domain.SessionView{}, err
	}
	return s.view(session), nil
}

// SelectAnswer overwrites the answer at the current index. The text is
// stored as sent; scoring compares it to the stored answer by exact
// string equality.
func (s *SessionService) SelectAnswer(ctx context.Context, sessionID, text string) (domain.SessionView, error) {
	return s.mutate(ctx, sessionID, func(session *domain.QuizSession) error {
		session.Answers[session.Index] = text
		session.State = domain.SessionInProgress
		return nil
	})
}

// Next advances the index, clamped to the last question.
func (s *SessionService) Next(ctx context.Context, sessionID string) (domain.SessionView, error) {
	return s.mutate(ctx, sessionID, func(session *domain.QuizSession) error {
		if session.Index < len(session.Questions)-1 {
			session.Index++
		}
		return nil
	})
}

// Previous moves the index back, clamped to zero.
func (s *SessionService) Previous(ctx context.Context, sessionID string) (domain.SessionView, error) {
	return s.mutate(ctx, sessionID, func(session *domain.QuizSession) error {
		if session.Index > 0 {
			session.Index--
		}
		return nil
	})
}

// JumpTo navigates directly to any in-range question, regardless of
// answer state.
func (s *SessionService) JumpTo(ctx context.Context, sessionID string, index int) (domain.SessionView, error) {
	return s.mutate(ctx, sessionID, func(session *domain.QuizSession) error {
		if index < 0 || index >= len(session.Questions) {
			return fmt.Errorf("%w: question index %d out of range", domain.ErrInvalidInput, index)
		}
		session.Index = index
		session.State = domain.SessionInProgress
		return nil
	})
}

// Finish scores the attempt. When unanswered questions remain and the
// caller has not confirmed, the session parks in ReviewPending and the
// returned result is nil. On a successful submit the stored session is
// deleted, which also clears the reload cache; on a failed submit it is
// kept so the client can retry.
func (s *SessionService) Finish(ctx context.Context, sessionID string, confirmed bool) (*domain.SessionResult, domain.SessionView, error) {
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, domain.SessionView{}, err
	}

	if session.Unanswered() > 0 && !confirmed {
		session.State = domain.SessionReviewPending
		if err := s.sessions.Save(ctx, session); err != nil {
			return nil, domain.SessionView{}, err
		}
		return nil, s.view(session), nil
	}

	score := 0
	for i, q := range session.Questions {
		if session.Answers[i] == q.Answer {
			score++
		}
	}
	total := len(session.Questions)
	percentage := Percentage(score, total)

	avg, err := s.stats.SubmitResult(ctx, &domain.QuizResult{
		UserID:     session.UserID,
		Score:      score,
		Total:      total,
		Percentage: percentage,
		SubjectID:  session.SubjectID,
		YearID:     session.YearID,
		CourseID:   session.CourseID,
	})
	if err != nil {
		return nil, s.view(session), err
	}

	session.State = domain.SessionSubmitted
	_ = s.sessions.Delete(ctx, session.ID)

	return &domain.SessionResult{
		SessionID:    session.ID,
		Score:        score,
		Total:        total,
		Percentage:   percentage,
		AverageScore: avg,
		Answers:      session.Answers,
		Questions:    session.Questions,
	}, s.view(session), nil
}

func (s *SessionService) mutate(ctx context.Context, sessionID string, fn func(*domain.QuizSession) error) (domain.SessionView, error) {
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return domain.SessionView{}, err
	}
	if err := fn(session); err != nil {
		return domain.SessionView{}, err
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return domain.SessionView{}, err
	}
	return s.view(session), nil
}

func (s *SessionService) load(ctx context.Context, sessionID string) (*domain.QuizSession, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: missing session id", domain.ErrInvalidInput)
	}
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.State == domain.SessionSubmitted {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

func (s *SessionService) view(session *domain.QuizSession) domain.SessionView {
	q := session.Questions[session.Index]
	left := int(session.Deadline.Sub(s.now()).Seconds())
	if left < 0 {
		left = 0
	}
	return domain.SessionView{
		ID:    session.ID,
		State: session.State,
		Index: session.Index,
		Total: len(session.Questions),
		Question: domain.QuestionView{
			ID:      q.ID,
			Text:    q.Text,
			Options: q.Options,
		},
		Answers:     session.Answers,
		Unanswered:  session.Unanswered(),
		TimeLeftSec: left,
	}
}

// Percentage computes round(score/total*100), round half up.
func Percentage(score, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(score) / float64(total) * 100))
}
