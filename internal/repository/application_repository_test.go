package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobforge/internal/domain"
)

func newApplication(userID int64, company string, status domain.Status) *domain.JobApplication {
	return &domain.JobApplication{
		ID:              uuid.New(),
		UserID:          userID,
		Company:         company,
		Position:        "Engineer",
		Status:          status,
		ApplicationDate: "2026-08-01",
	}
}

func TestApplicationCreateAndGet(t *testing.T) {
	db := newTestDB(t)
	userID := createTestUser(t, db, "s1")
	repo := NewApplicationRepository(db)
	ctx := context.Background()

	app := newApplication(userID, "Acme", domain.StatusApplied)
	salary := "100k"
	app.Salary = &salary
	require.NoError(t, repo.Create(ctx, app))

	got, err := repo.Get(ctx, userID, app.ID.String())
	require.NoError(t, err)
	assert.Equal(t, app.ID, got.ID)
	assert.Equal(t, "Acme", got.Company)
	assert.Equal(t, domain.StatusApplied, got.Status)
	require.NotNil(t, got.Salary)
	assert.Equal(t, salary, *got.Salary)

	stranger := createTestUser(t, db, "s2")
	_, err = repo.Get(ctx, stranger, app.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestApplicationUpdateStatusWritesHistory(t *testing.T) {
	db := newTestDB(t)
	userID := createTestUser(t, db, "s1")
	repo := NewApplicationRepository(db)
	ctx := context.Background()

	app := newApplication(userID, "Acme", domain.StatusApplied)
	require.NoError(t, repo.Create(ctx, app))

	note := "phone screen scheduled"
	updated, err := repo.UpdateStatus(ctx, userID, app.ID.String(), domain.StatusInterview, &note)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInterview, updated.Status)

	_, err = repo.UpdateStatus(ctx, userID, app.ID.String(), domain.StatusOffer, nil)
	require.NoError(t, err)

	history, err := repo.StatusHistory(ctx, userID, app.ID.String())
	require.NoError(t, err)
	require.Len(t, history, 2)

	assert.Equal(t, domain.StatusApplied, history[0].FromStatus)
	assert.Equal(t, domain.StatusInterview, history[0].ToStatus)
	require.NotNil(t, history[0].Notes)
	assert.Equal(t, note, *history[0].Notes)

	assert.Equal(t, domain.StatusInterview, history[1].FromStatus)
	assert.Equal(t, domain.StatusOffer, history[1].ToStatus)

	_, err = repo.UpdateStatus(ctx, userID, uuid.NewString(), domain.StatusOffer, nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestApplicationStatusHistoryScopedToOwner(t *testing.T) {
	db := newTestDB(t)
	userID := createTestUser(t, db, "s1")
	stranger := createTestUser(t, db, "s2")
	repo := NewApplicationRepository(db)
	ctx := context.Background()

	app := newApplication(userID, "Acme", domain.StatusApplied)
	require.NoError(t, repo.Create(ctx, app))

	_, err := repo.StatusHistory(ctx, stranger, app.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestApplicationDeleteCascadesHistory(t *testing.T) {
	db := newTestDB(t)
	userID := createTestUser(t, db, "s1")
	repo := NewApplicationRepository(db)
	ctx := context.Background()

	app := newApplication(userID, "Acme", domain.StatusApplied)
	require.NoError(t, repo.Create(ctx, app))
	_, err := repo.UpdateStatus(ctx, userID, app.ID.String(), domain.StatusRejected, nil)
	require.NoError(t, err)

	deleted, err := repo.Delete(ctx, userID, app.ID.String())
	require.NoError(t, err)
	assert.True(t, deleted)

	var count int
	require.NoError(t, db.Get(&count,
		`SELECT COUNT(*) FROM status_history WHERE job_id = ?`, app.ID.String()))
	assert.Zero(t, count)

	deleted, err = repo.Delete(ctx, userID, app.ID.String())
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestCountByStatusForVersion(t *testing.T) {
	db := newTestDB(t)
	userID := createTestUser(t, db, "s1")
	repo := NewApplicationRepository(db)
	ctx := context.Background()

	versionID := int64(42)
	otherVersion := int64(43)

	for _, status := range []domain.Status{
		domain.StatusApplied, domain.StatusApplied,
		domain.StatusInterview, domain.StatusOffer, domain.StatusRejected,
	} {
		app := newApplication(userID, "Acme", status)
		app.ResumeVersionID = &versionID
		require.NoError(t, repo.Create(ctx, app))
	}

	unrelated := newApplication(userID, "Other", domain.StatusOffer)
	unrelated.ResumeVersionID = &otherVersion
	require.NoError(t, repo.Create(ctx, unrelated))

	counts, err := repo.CountByStatusForVersion(ctx, userID, domain.DocumentResume, versionID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCounts{Applied: 2, Interview: 1, Offer: 1, Rejected: 1}, counts)
	assert.Equal(t, 5, counts.Total())

	empty, err := repo.CountByStatusForVersion(ctx, userID, domain.DocumentResume, 999)
	require.NoError(t, err)
	assert.Zero(t, empty.Total())

	_, err = repo.CountByStatusForVersion(ctx, userID, domain.DocumentType("bogus"), versionID)
	assert.Error(t, err)
}

func TestCountByStatusGrouped(t *testing.T) {
	db := newTestDB(t)
	userID := createTestUser(t, db, "s1")
	repo := NewApplicationRepository(db)
	ctx := context.Background()

	v1, v2 := int64(1), int64(2)

	a := newApplication(userID, "Acme", domain.StatusOffer)
	a.ResumeVersionID = &v1
	require.NoError(t, repo.Create(ctx, a))

	b := newApplication(userID, "Beta", domain.StatusApplied)
	b.ResumeVersionID = &v1
	require.NoError(t, repo.Create(ctx, b))

	c := newApplication(userID, "Gamma", domain.StatusRejected)
	c.ResumeVersionID = &v2
	require.NoError(t, repo.Create(ctx, c))

	// Отклик без ссылки на версию в группировку не попадает
	require.NoError(t, repo.Create(ctx, newApplication(userID, "Delta", domain.StatusApplied)))

	grouped, err := repo.CountByStatusGrouped(ctx, userID, domain.DocumentResume)
	require.NoError(t, err)

	require.Len(t, grouped, 2)
	assert.Equal(t, domain.StatusCounts{Applied: 1, Offer: 1}, grouped[v1])
	assert.Equal(t, domain.StatusCounts{Rejected: 1}, grouped[v2])

	// Ссылки на версии писем не смешиваются с резюме
	coverGrouped, err := repo.CountByStatusGrouped(ctx, userID, domain.DocumentCoverLetter)
	require.NoError(t, err)
	assert.Empty(t, coverGrouped)
}
