package app

import (
	"context"
	"fmt"
	"strings"

	"prepquiz-service/internal/domain"
)

// CatalogService manages the shared reference data. Reads are public;
// writes are admin-only, enforced at the transport layer.
type CatalogService struct {
	store CatalogStore
}

func NewCatalogService(store CatalogStore) *CatalogService {
	return &CatalogService{store: store}
}

func (s *CatalogService) ListSubjects(ctx context.Context) ([]domain.Subject, error) {
	return s.store.ListSubjects(ctx)
}

func (s *CatalogService) CreateSubject(ctx context.Context, name string) (domain.Subject, error) {
	if strings.TrimSpace(name) == "" {
		return domain.Subject{}, fmt.Errorf("%w: missing name", domain.ErrInvalidInput)
	}
	return s.store.CreateSubject(ctx, name)
}

func (s *CatalogService) ListYears(ctx context.Context) ([]domain.Year, error) {
	return s.store.ListYears(ctx)
}

func (s *CatalogService) CreateYear(ctx context.Context, name string) (domain.Year, error) {
	if strings.TrimSpace(name) == "" {
		return domain.Year{}, fmt.Errorf("%w: missing name", domain.ErrInvalidInput)
	}
	return s.store.CreateYear(ctx, name)
}

func (s *CatalogService) ListCourses(ctx context.Context) ([]domain.Course, error) {
	return s.store.ListCourses(ctx)
}

func (s *CatalogService) CreateCourse(ctx context.Context, name string) (domain.Course, error) {
	if strings.TrimSpace(name) == "" {
		return domain.Course{}, fmt.Errorf("%w: missing name", domain.ErrInvalidInput)
	}
	return s.store.CreateCourse(ctx, name)
}

func (s *CatalogService) ListQuestions(ctx context.Context, filter QuestionFilter) ([]domain.Question, error) {
	return s.store.ListQuestions(ctx, filter)
}

// CreateQuestion validates shape and the answer-in-options invariant
// before persisting.
func (s *CatalogService) CreateQuestion(ctx context.Context, q *domain.Question) (domain.Question, error) {
	if err := validateQuestion(q); err != nil {
		return domain.Question{}, err
	}
	if err := s.store.CreateQuestion(ctx, q); err != nil {
		return domain.Question{}, err
	}
	return *q, nil
}

func (s *CatalogService) UpdateQuestion(ctx context.Context, q *domain.Question) (domain.Question, error) {
	if q == nil || q.ID == 0 {
		return domain.Question{}, fmt.Errorf("%w: missing question id", domain.ErrInvalidInput)
	}
	if err := validateQuestion(q); err != nil {
		return domain.Question{}, err
	}
	if err := s.store.UpdateQuestion(ctx, q); err != nil {
		return domain.Question{}, err
	}
	return *q, nil
}

func validateQuestion(q *domain.Question) error {
	switch {
	case q == nil:
		return fmt.Errorf("%w: missing body", domain.ErrInvalidInput)
	case strings.TrimSpace(q.Text) == "":
		return fmt.Errorf("%w: missing text", domain.ErrInvalidInput)
	case len(q.Options) != 4:
		return fmt.Errorf("%w: exactly 4 options are required", domain.ErrInvalidInput)
	case q.SubjectID == 0 || q.YearID == 0 || q.CourseID == 0:
		return fmt.Errorf("%w: subjectId, yearId and courseId are required", domain.ErrInvalidInput)
	}
	for _, opt := range q.Options {
		if opt == q.Answer {
			return nil
		}
	}
	return fmt.Errorf("%w: answer must match one of the options", domain.ErrInvalidInput)
}
