package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"prepquiz-service/internal/domain"
)

// QuestionLoader reads question sets straight through pgx; the hot quiz
// path skips the ORM.
type QuestionLoader struct {
	pool *pgxpool.Pool
}

func NewQuestionLoader(pool *pgxpool.Pool) *QuestionLoader {
	return &QuestionLoader{pool: pool}
}

func (l *QuestionLoader) LoadQuestionSet(ctx context.Context, subjectID, yearID, courseID int64) ([]domain.Question, error) {
	rows, err := l.pool.Query(ctx,
		`SELECT id, text, options, answer, subject_id, year_id, course_id
		 FROM questions
		 WHERE subject_id=$1 AND year_id=$2 AND course_id=$3
		 ORDER BY id`,
		subjectID, yearID, courseID)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	questions := make([]domain.Question, 0)
	for rows.Next() {
		var q domain.Question
		var rawOptions []byte
		if err := rows.Scan(&q.ID, &q.Text, &rawOptions, &q.Answer, &q.SubjectID, &q.YearID, &q.CourseID); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		if err := json.Unmarshal(rawOptions, &q.Options); err != nil {
			return nil, fmt.Errorf("unmarshal options: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}
