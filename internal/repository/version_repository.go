package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"jobforge/internal/domain"
)

// VersionRepository обслуживает одну из двух одинаковых по форме таблиц
// версий (resume_versions или cover_letter_versions)
type VersionRepository struct {
	db    *sqlx.DB
	table string
}

func NewResumeVersionRepository(db *sqlx.DB) *VersionRepository {
	return &VersionRepository{db: db, table: "resume_versions"}
}

func NewCoverLetterVersionRepository(db *sqlx.DB) *VersionRepository {
	return &VersionRepository{db: db, table: "cover_letter_versions"}
}

// Upsert вставляет версию или перезаписывает существующую строку с тем же
// ключом (user_id, branch_name, version_number). Конфликт разрешается самой
// базой, поэтому гонка двух одновременных сохранений даёт ровно одну строку.
func (r *VersionRepository) Upsert(ctx context.Context, v *domain.Version) error {
	now := time.Now().UTC()
	query := fmt.Sprintf(`
        INSERT INTO %s (
            user_id, version_name, description, data_json, tags, is_favorite,
            parent_version_id, version_number, branch_name, is_active,
            created_at, updated_at
        )
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)
        ON CONFLICT(user_id, branch_name, version_number) DO UPDATE SET
            version_name = excluded.version_name,
            description = excluded.description,
            data_json = excluded.data_json,
            tags = excluded.tags,
            is_favorite = excluded.is_favorite,
            parent_version_id = excluded.parent_version_id,
            updated_at = excluded.updated_at
        RETURNING id, created_at, updated_at`, r.table)

	err := r.db.QueryRowxContext(
		ctx,
		query,
		v.UserID,
		v.VersionName,
		v.Description,
		string(v.Data),
		v.Tags,
		v.IsFavorite,
		v.ParentVersionID,
		v.VersionNumber,
		v.BranchName,
		now,
		now,
	).Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert version: %w", err)
	}

	v.IsActive = true
	return nil
}

func (r *VersionRepository) Get(ctx context.Context, userID, versionID int64) (*domain.Version, error) {
	var v domain.Version
	query := fmt.Sprintf(`SELECT * FROM %s WHERE id = ? AND user_id = ?`, r.table)

	err := r.db.GetContext(ctx, &v, query, versionID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get version: %w", err)
	}

	return &v, nil
}

// ListAsc возвращает все версии пользователя в порядке создания.
// Rowid разрешает совпадающие метки времени, порядок остаётся стабильным.
func (r *VersionRepository) ListAsc(ctx context.Context, userID int64) ([]domain.Version, error) {
	var versions []domain.Version
	query := fmt.Sprintf(`SELECT * FROM %s WHERE user_id = ? ORDER BY created_at, id`, r.table)

	if err := r.db.SelectContext(ctx, &versions, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}

	return versions, nil
}

func (r *VersionRepository) ListDesc(ctx context.Context, userID int64) ([]domain.Version, error) {
	var versions []domain.Version
	query := fmt.Sprintf(`SELECT * FROM %s WHERE user_id = ? ORDER BY created_at DESC, id DESC`, r.table)

	if err := r.db.SelectContext(ctx, &versions, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}

	return versions, nil
}

// RootVersionNumbers возвращает номера всех корневых версий пользователя —
// из них сервис вычисляет следующий мажорный номер
func (r *VersionRepository) RootVersionNumbers(ctx context.Context, userID int64) ([]string, error) {
	var numbers []string
	query := fmt.Sprintf(
		`SELECT version_number FROM %s WHERE user_id = ? AND parent_version_id IS NULL`, r.table)

	if err := r.db.SelectContext(ctx, &numbers, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list root version numbers: %w", err)
	}

	return numbers, nil
}

// Update патчит только переданные поля метаданных
func (r *VersionRepository) Update(ctx context.Context, userID, versionID int64, upd domain.VersionUpdate) (*domain.Version, error) {
	if upd.Empty() {
		return r.Get(ctx, userID, versionID)
	}

	fields := make([]string, 0, 5)
	args := make([]interface{}, 0, 7)

	if upd.VersionName != nil {
		fields = append(fields, "version_name = ?")
		args = append(args, *upd.VersionName)
	}
	if upd.Description != nil {
		fields = append(fields, "description = ?")
		args = append(args, *upd.Description)
	}
	if upd.Tags != nil {
		fields = append(fields, "tags = ?")
		args = append(args, *upd.Tags)
	}
	if upd.IsFavorite != nil {
		fields = append(fields, "is_favorite = ?")
		args = append(args, *upd.IsFavorite)
	}

	fields = append(fields, "updated_at = ?")
	args = append(args, time.Now().UTC())
	args = append(args, versionID, userID)

	query := fmt.Sprintf(`UPDATE %s SET %s WHERE id = ? AND user_id = ?`,
		r.table, strings.Join(fields, ", "))

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update version: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, domain.ErrNotFound
	}

	return r.Get(ctx, userID, versionID)
}

// SetPDF записывает ключ сгенерированного документа в хранилище объектов
func (r *VersionRepository) SetPDF(ctx context.Context, userID, versionID int64, key string, size int64) error {
	query := fmt.Sprintf(`
        UPDATE %s SET pdf_key = ?, file_size = ?, updated_at = ?
        WHERE id = ? AND user_id = ?`, r.table)

	res, err := r.db.ExecContext(ctx, query, key, size, time.Now().UTC(), versionID, userID)
	if err != nil {
		return fmt.Errorf("failed to set pdf key: %w", err)
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

// Delete удаляет строку версии; false — строки не было или она чужая.
// Дочерние версии не трогаются: их повисший родительский указатель
// обрабатывает построитель дерева.
func (r *VersionRepository) Delete(ctx context.Context, userID, versionID int64) (bool, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ? AND user_id = ?`, r.table)

	res, err := r.db.ExecContext(ctx, query, versionID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete version: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}
