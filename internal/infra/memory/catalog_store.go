package memory

import (
	"context"
	"sync"

	"prepquiz-service/internal/app"
	"prepquiz-service/internal/domain"
)

// CatalogStore is the in-memory implementation of app.CatalogStore.
// New questions are mirrored into the static loader so freshly created
// content is immediately quizzable without postgres.
type CatalogStore struct {
	mu        sync.RWMutex
	subjects  []domain.Subject
	years     []domain.Year
	courses   []domain.Course
	questions []domain.Question
	nextID    int64
	loader    *StaticQuestionLoader
}

func NewCatalogStore(loader *StaticQuestionLoader) *CatalogStore {
	return &CatalogStore{nextID: 1, loader: loader}
}

func (s *CatalogStore) ListSubjects(_ context.Context) ([]domain.Subject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Subject(nil), s.subjects...), nil
}

func (s *CatalogStore) CreateSubject(_ context.Context, name string) (domain.Subject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.subjects {
		if sub.Name == name {
			return domain.Subject{}, domain.ErrDuplicateName
		}
	}
	sub := domain.Subject{ID: s.allocID(), Name: name}
	s.subjects = append(s.subjects, sub)
	return sub, nil
}

func (s *CatalogStore) ListYears(_ context.Context) ([]domain.Year, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Year(nil), s.years...), nil
}

func (s *CatalogStore) CreateYear(_ context.Context, name string) (domain.Year, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, y := range s.years {
		if y.Name == name {
			return domain.Year{}, domain.ErrDuplicateName
		}
	}
	year := domain.Year{ID: s.allocID(), Name: name}
	s.years = append(s.years, year)
	return year, nil
}

func (s *CatalogStore) ListCourses(_ context.Context) ([]domain.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Course(nil), s.courses...), nil
}

func (s *CatalogStore) CreateCourse(_ context.Context, name string) (domain.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.courses {
		if c.Name == name {
			return domain.Course{}, domain.ErrDuplicateName
		}
	}
	course := domain.Course{ID: s.allocID(), Name: name}
	s.courses = append(s.courses, course)
	return course, nil
}

func (s *CatalogStore) ListQuestions(_ context.Context, filter app.QuestionFilter) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matched := make([]domain.Question, 0)
	for _, q := range s.questions {
		if filter.SubjectID != 0 && q.SubjectID != filter.SubjectID {
			continue
		}
		if filter.YearID != 0 && q.YearID != filter.YearID {
			continue
		}
		if filter.CourseID != 0 && q.CourseID != filter.CourseID {
			continue
		}
		matched = append(matched, q)
	}
	return matched, nil
}

func (s *CatalogStore) CreateQuestion(_ context.Context, q *domain.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	q.ID = s.allocID()
	s.questions = append(s.questions, *q)
	if s.loader != nil {
		s.loader.Add(*q)
	}
	return nil
}

func (s *CatalogStore) UpdateQuestion(_ context.Context, q *domain.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.questions {
		if s.questions[i].ID == q.ID {
			s.questions[i] = *q
			return nil
		}
	}
	return domain.ErrQuestionNotFound
}

func (s *CatalogStore) allocID() int64 {
	id := s.nextID
	s.nextID++
	return id
}
