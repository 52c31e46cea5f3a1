package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"jobforge/internal/domain"
)

type EvaluationRepository struct {
	db *sqlx.DB
}

func NewEvaluationRepository(db *sqlx.DB) *EvaluationRepository {
	return &EvaluationRepository{db: db}
}

func (r *EvaluationRepository) Create(ctx context.Context, eval *domain.ATSEvaluation) error {
	eval.CreatedAt = time.Now().UTC()

	query := `
        INSERT INTO ats_evaluations (
            user_id, resume_version_id, cover_letter_version_id,
            job_description, score, result_json, created_at
        )
        VALUES (?, ?, ?, ?, ?, ?, ?)
        RETURNING id`

	err := r.db.QueryRowxContext(
		ctx,
		query,
		eval.UserID,
		eval.ResumeVersionID,
		eval.CoverLetterVersionID,
		eval.JobDescription,
		eval.Score,
		string(eval.Result),
		eval.CreatedAt,
	).Scan(&eval.ID)
	if err != nil {
		return fmt.Errorf("failed to create evaluation: %w", err)
	}

	return nil
}

func (r *EvaluationRepository) Get(ctx context.Context, userID, id int64) (*domain.ATSEvaluation, error) {
	var eval domain.ATSEvaluation
	query := `SELECT * FROM ats_evaluations WHERE id = ? AND user_id = ?`

	err := r.db.GetContext(ctx, &eval, query, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get evaluation: %w", err)
	}

	return &eval, nil
}

func (r *EvaluationRepository) List(ctx context.Context, userID int64) ([]domain.ATSEvaluation, error) {
	var evals []domain.ATSEvaluation
	query := `SELECT * FROM ats_evaluations WHERE user_id = ? ORDER BY created_at DESC, id DESC`

	if err := r.db.SelectContext(ctx, &evals, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list evaluations: %w", err)
	}

	return evals, nil
}

func (r *EvaluationRepository) Delete(ctx context.Context, userID, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM ats_evaluations WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete evaluation: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}
