package app_test

import (
	"context"
	"errors"
	"testing"

	"prepquiz-service/internal/app"
	"prepquiz-service/internal/domain"
	"prepquiz-service/internal/infra/memory"
)

func newCatalog(t *testing.T) (*app.CatalogService, *memory.CatalogStore) {
	t.Helper()
	store := memory.NewCatalogStore(memory.NewStaticQuestionLoader(nil))
	return app.NewCatalogService(store), store
}

func TestCreateSubjectRejectsBlankAndDuplicateNames(t *testing.T) {
	ctx := context.Background()
	catalog, _ := newCatalog(t)

	if _, err := catalog.CreateSubject(ctx, "   "); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("blank name: err = %v", err)
	}

	subject, err := catalog.CreateSubject(ctx, "Mathematics")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if subject.ID == 0 {
		t.Fatal("subject has no id")
	}

	if _, err := catalog.CreateSubject(ctx, "Mathematics"); !errors.Is(err, domain.ErrDuplicateName) {
		t.Fatalf("duplicate name: err = %v", err)
	}

	subjects, err := catalog.ListSubjects(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(subjects) != 1 {
		t.Fatalf("len = %d, want 1", len(subjects))
	}
}

func TestCreateQuestionEnforcesAnswerInOptions(t *testing.T) {
	ctx := context.Background()
	catalog, _ := newCatalog(t)

	base := domain.Question{
		Text:      "2 + 2 = ?",
		Options:   []string{"3", "4", "5", "6"},
		Answer:    "4",
		SubjectID: 1,
		YearID:    1,
		CourseID:  1,
	}

	created, err := catalog.CreateQuestion(ctx, &base)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("question has no id")
	}

	bad := base
	bad.ID = 0
	bad.Answer = "7"
	if _, err := catalog.CreateQuestion(ctx, &bad); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("answer outside options: err = %v", err)
	}

	short := base
	short.ID = 0
	short.Options = []string{"4", "5"}
	if _, err := catalog.CreateQuestion(ctx, &short); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("two options: err = %v", err)
	}
}

func TestUpdateQuestionRequiresExistingRow(t *testing.T) {
	ctx := context.Background()
	catalog, _ := newCatalog(t)

	q := domain.Question{
		ID:        99,
		Text:      "missing",
		Options:   []string{"a", "b", "c", "d"},
		Answer:    "a",
		SubjectID: 1,
		YearID:    1,
		CourseID:  1,
	}
	if _, err := catalog.UpdateQuestion(ctx, &q); !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("unknown id: err = %v", err)
	}

	q.ID = 0
	created, err := catalog.CreateQuestion(ctx, &q)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	created.Text = "updated"
	updated, err := catalog.UpdateQuestion(ctx, &created)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Text != "updated" {
		t.Fatalf("text = %q", updated.Text)
	}
}
