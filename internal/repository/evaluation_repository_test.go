package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobforge/internal/domain"
)

func TestEvaluationCreateAndGet(t *testing.T) {
	db := newTestDB(t)
	userID := createTestUser(t, db, "s1")
	repo := NewEvaluationRepository(db)
	ctx := context.Background()

	score := 87
	resumeVersion := int64(3)
	eval := &domain.ATSEvaluation{
		UserID:          userID,
		ResumeVersionID: &resumeVersion,
		JobDescription:  "Backend engineer, Go",
		Score:           &score,
		Result:          []byte(`{"score":87,"keywords":["go","sql"]}`),
	}
	require.NoError(t, repo.Create(ctx, eval))
	assert.NotZero(t, eval.ID)

	got, err := repo.Get(ctx, userID, eval.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Score)
	assert.Equal(t, 87, *got.Score)
	assert.JSONEq(t, `{"score":87,"keywords":["go","sql"]}`, string(got.Result))

	stranger := createTestUser(t, db, "s2")
	_, err = repo.Get(ctx, stranger, eval.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEvaluationListAndDelete(t *testing.T) {
	db := newTestDB(t)
	userID := createTestUser(t, db, "s1")
	repo := NewEvaluationRepository(db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, &domain.ATSEvaluation{
			UserID:         userID,
			JobDescription: "jd",
			Result:         []byte(`{}`),
		}))
	}

	evals, err := repo.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, evals, 3)
	// Свежие записи сверху
	assert.Greater(t, evals[0].ID, evals[2].ID)

	deleted, err := repo.Delete(ctx, userID, evals[0].ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete(ctx, userID, evals[0].ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	remaining, err := repo.List(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, remaining, 2)
}
