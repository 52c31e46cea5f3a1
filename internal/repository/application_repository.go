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

type ApplicationRepository struct {
	db *sqlx.DB
}

func NewApplicationRepository(db *sqlx.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// versionColumn выбирает колонку-ссылку по типу документа.
// Имя колонки подставляется в запрос, поэтому только из этого списка.
func versionColumn(docType domain.DocumentType) (string, error) {
	switch docType {
	case domain.DocumentResume:
		return "resume_version_id", nil
	case domain.DocumentCoverLetter:
		return "cover_letter_version_id", nil
	}
	return "", fmt.Errorf("unknown document type: %s", docType)
}

func (r *ApplicationRepository) Create(ctx context.Context, app *domain.JobApplication) error {
	now := time.Now().UTC()
	app.CreatedAt = now
	app.UpdatedAt = now

	query := `
        INSERT INTO job_applications (
            id, user_id, company, position, status, application_date,
            salary, location, notes, resume_version_id, cover_letter_version_id,
            created_at, updated_at
        )
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(
		ctx,
		query,
		app.ID,
		app.UserID,
		app.Company,
		app.Position,
		app.Status,
		app.ApplicationDate,
		app.Salary,
		app.Location,
		app.Notes,
		app.ResumeVersionID,
		app.CoverLetterVersionID,
		app.CreatedAt,
		app.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create job application: %w", err)
	}

	return nil
}

func (r *ApplicationRepository) Get(ctx context.Context, userID int64, id string) (*domain.JobApplication, error) {
	var app domain.JobApplication
	query := `SELECT * FROM job_applications WHERE id = ? AND user_id = ?`

	err := r.db.GetContext(ctx, &app, query, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job application: %w", err)
	}

	return &app, nil
}

func (r *ApplicationRepository) List(ctx context.Context, userID int64) ([]domain.JobApplication, error) {
	var apps []domain.JobApplication
	query := `
        SELECT * FROM job_applications
        WHERE user_id = ?
        ORDER BY application_date DESC, created_at DESC`

	if err := r.db.SelectContext(ctx, &apps, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list job applications: %w", err)
	}

	return apps, nil
}

func (r *ApplicationRepository) Update(ctx context.Context, app *domain.JobApplication) error {
	app.UpdatedAt = time.Now().UTC()

	query := `
        UPDATE job_applications
        SET company = ?, position = ?, application_date = ?, salary = ?,
            location = ?, notes = ?, resume_version_id = ?,
            cover_letter_version_id = ?, updated_at = ?
        WHERE id = ? AND user_id = ?`

	res, err := r.db.ExecContext(
		ctx,
		query,
		app.Company,
		app.Position,
		app.ApplicationDate,
		app.Salary,
		app.Location,
		app.Notes,
		app.ResumeVersionID,
		app.CoverLetterVersionID,
		app.UpdatedAt,
		app.ID,
		app.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update job application: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// UpdateStatus меняет статус отклика и пишет строку в историю переходов
// в одной транзакции
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, userID int64, id string, to domain.Status, notes *string) (*domain.JobApplication, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var app domain.JobApplication
	err = tx.GetContext(ctx, &app, `SELECT * FROM job_applications WHERE id = ? AND user_id = ?`, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job application: %w", err)
	}

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx,
		`UPDATE job_applications SET status = ?, updated_at = ? WHERE id = ?`,
		to, now, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO status_history (job_id, from_status, to_status, notes, created_at)
         VALUES (?, ?, ?, ?, ?)`,
		id, app.Status, to, notes, now)
	if err != nil {
		return nil, fmt.Errorf("failed to record status history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit status update: %w", err)
	}

	app.Status = to
	app.UpdatedAt = now
	return &app, nil
}

func (r *ApplicationRepository) StatusHistory(ctx context.Context, userID int64, id string) ([]domain.StatusHistoryEntry, error) {
	// Сначала проверяем принадлежность отклика пользователю
	if _, err := r.Get(ctx, userID, id); err != nil {
		return nil, err
	}

	var entries []domain.StatusHistoryEntry
	query := `SELECT * FROM status_history WHERE job_id = ? ORDER BY created_at, id`

	if err := r.db.SelectContext(ctx, &entries, query, id); err != nil {
		return nil, fmt.Errorf("failed to list status history: %w", err)
	}

	return entries, nil
}

func (r *ApplicationRepository) Delete(ctx context.Context, userID int64, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM job_applications WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete job application: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

// CountByStatusForVersion — узкий интерфейс агрегатора статистики:
// количества откликов по статусам для одной версии документа
func (r *ApplicationRepository) CountByStatusForVersion(ctx context.Context, userID int64, docType domain.DocumentType, versionID int64) (domain.StatusCounts, error) {
	column, err := versionColumn(docType)
	if err != nil {
		return domain.StatusCounts{}, err
	}

	query := fmt.Sprintf(`
        SELECT
            COALESCE(SUM(CASE WHEN status = 'applied' THEN 1 ELSE 0 END), 0) AS applied,
            COALESCE(SUM(CASE WHEN status = 'interview' THEN 1 ELSE 0 END), 0) AS interview,
            COALESCE(SUM(CASE WHEN status = 'offer' THEN 1 ELSE 0 END), 0) AS offer,
            COALESCE(SUM(CASE WHEN status = 'rejected' THEN 1 ELSE 0 END), 0) AS rejected
        FROM job_applications
        WHERE user_id = ? AND %s = ?`, column)

	var counts domain.StatusCounts
	err = r.db.QueryRowxContext(ctx, query, userID, versionID).
		Scan(&counts.Applied, &counts.Interview, &counts.Offer, &counts.Rejected)
	if err != nil {
		return domain.StatusCounts{}, fmt.Errorf("failed to count applications by status: %w", err)
	}

	return counts, nil
}

// CountByStatusGrouped собирает количества сразу для всех версий пользователя
// одним запросом — построитель дерева вызывает его один раз на лес
func (r *ApplicationRepository) CountByStatusGrouped(ctx context.Context, userID int64, docType domain.DocumentType) (map[int64]domain.StatusCounts, error) {
	column, err := versionColumn(docType)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
        SELECT %s AS version_id, status, COUNT(*) AS cnt
        FROM job_applications
        WHERE user_id = ? AND %s IS NOT NULL
        GROUP BY %s, status`, column, column, column)

	rows, err := r.db.QueryxContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to group applications by status: %w", err)
	}
	defer rows.Close()

	result := make(map[int64]domain.StatusCounts)
	for rows.Next() {
		var (
			versionID int64
			status    domain.Status
			cnt       int
		)
		if err := rows.Scan(&versionID, &status, &cnt); err != nil {
			return nil, fmt.Errorf("failed to scan status counts: %w", err)
		}

		counts := result[versionID]
		switch status {
		case domain.StatusApplied:
			counts.Applied = cnt
		case domain.StatusInterview:
			counts.Interview = cnt
		case domain.StatusOffer:
			counts.Offer = cnt
		case domain.StatusRejected:
			counts.Rejected = cnt
		}
		result[versionID] = counts
	}

	return result, rows.Err()
}
