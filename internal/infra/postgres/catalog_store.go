package postgres

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"

	"prepquiz-service/internal/app"
	"prepquiz-service/internal/domain"
)

// CatalogStore is the bun-backed implementation of app.CatalogStore.
type CatalogStore struct {
	db *bun.DB
}

func NewCatalogStore(db *bun.DB) *CatalogStore {
	return &CatalogStore{db: db}
}

func (s *CatalogStore) ListSubjects(ctx context.Context) ([]domain.Subject, error) {
	subjects := make([]domain.Subject, 0)
	if err := s.db.NewSelect().Model(&subjects).Order("id").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return subjects, nil
}

func (s *CatalogStore) CreateSubject(ctx context.Context, name string) (domain.Subject, error) {
	subject := domain.Subject{Name: name}
	if _, err := s.db.NewInsert().Model(&subject).Exec(ctx); err != nil {
		return domain.Subject{}, wrapInsertErr("create subject", err)
	}
	return subject, nil
}

func (s *CatalogStore) ListYears(ctx context.Context) ([]domain.Year, error) {
	years := make([]domain.Year, 0)
	if err := s.db.NewSelect().Model(&years).Order("id").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list years: %w", err)
	}
	return years, nil
}

func (s *CatalogStore) CreateYear(ctx context.Context, name string) (domain.Year, error) {
	year := domain.Year{Name: name}
	if _, err := s.db.NewInsert().Model(&year).Exec(ctx); err != nil {
		return domain.Year{}, wrapInsertErr("create year", err)
	}
	return year, nil
}

func (s *CatalogStore) ListCourses(ctx context.Context) ([]domain.Course, error) {
	courses := make([]domain.Course, 0)
	if err := s.db.NewSelect().Model(&courses).Order("id").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

func (s *CatalogStore) CreateCourse(ctx context.Context, name string) (domain.Course, error) {
	course := domain.Course{Name: name}
	if _, err := s.db.NewInsert().Model(&course).Exec(ctx); err != nil {
		return domain.Course{}, wrapInsertErr("create course", err)
	}
	return course, nil
}

func (s *CatalogStore) ListQuestions(ctx context.Context, filter app.QuestionFilter) ([]domain.Question, error) {
	questions := make([]domain.Question, 0)
	q := s.db.NewSelect().Model(&questions).Order("id")
	if filter.SubjectID != 0 {
		q = q.Where("subject_id = ?", filter.SubjectID)
	}
	if filter.YearID != 0 {
		q = q.Where("year_id = ?", filter.YearID)
	}
	if filter.CourseID != 0 {
		q = q.Where("course_id = ?", filter.CourseID)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	return questions, nil
}

func (s *CatalogStore) CreateQuestion(ctx context.Context, question *domain.Question) error {
	if _, err := s.db.NewInsert().Model(question).Exec(ctx); err != nil {
		return fmt.Errorf("create question: %w", err)
	}
	return nil
}

func (s *CatalogStore) UpdateQuestion(ctx context.Context, question *domain.Question) error {
	res, err := s.db.NewUpdate().Model(question).WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("update question: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrQuestionNotFound
	}
	return nil
}

// wrapInsertErr maps postgres unique violations onto the domain error.
func wrapInsertErr(op string, err error) error {
	if pgErr, ok := err.(pgdriver.Error); ok && pgErr.Field('C') == "23505" {
		return domain.ErrDuplicateName
	}
	return fmt.Errorf("%s: %w", op, err)
}
