package service

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobforge/internal/domain"
	"jobforge/internal/repository"
	"jobforge/internal/service/s3"
)

// fakeStorage — хранилище объектов в памяти для тестов сервисов
type fakeStorage struct {
	objects map[string][]byte
	deleted []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (f *fakeStorage) UploadBytes(key string, data []byte) error {
	f.objects[key] = data
	return nil
}

func (f *fakeStorage) GetObject(_ context.Context, key string) (s3.S3Object, error) {
	data, ok := f.objects[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return fakeObject{ReadCloser: io.NopCloser(bytes.NewReader(data)), size: int64(len(data))}, nil
}

func (f *fakeStorage) DeleteObject(key string) error {
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

type fakeObject struct {
	io.ReadCloser
	size int64
}

func (o fakeObject) ContentLength() int64 { return o.size }
func (o fakeObject) ContentType() string  { return "application/octet-stream" }

func newVersionServiceForTest(t *testing.T) (*VersionService, *fakeStorage, int64) {
	t.Helper()

	db := newTestDB(t)
	userID := createTestUser(t, db, "session-versions")
	storage := newFakeStorage()

	repo := repository.NewResumeVersionRepository(db)
	svc := NewVersionService(repo, storage, domain.DocumentResume)

	return svc, storage, userID
}

func TestVersionServiceNumbering(t *testing.T) {
	svc, _, userID := newVersionServiceForTest(t)
	ctx := context.Background()

	data := []byte(`{"personalInfo":{"fullName":"Test"}}`)

	root, err := svc.Save(ctx, userID, domain.SaveVersionInput{
		VersionName: "Base Resume",
		Data:        data,
	})
	require.NoError(t, err)
	assert.Equal(t, "v1.0", root.VersionNumber)
	assert.Equal(t, "main", root.BranchName)
	assert.Nil(t, root.ParentVersionID)

	branch, err := svc.Save(ctx, userID, domain.SaveVersionInput{
		VersionName:     "Tech Focus",
		Data:            data,
		ParentVersionID: &root.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "v1.1", branch.VersionNumber)
	assert.Equal(t, "tech-focus", branch.BranchName)

	sibling, err := svc.Save(ctx, userID, domain.SaveVersionInput{
		VersionName:     "Management Focus",
		Data:            data,
		ParentVersionID: &branch.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "v1.2", sibling.VersionNumber)

	secondRoot, err := svc.Save(ctx, userID, domain.SaveVersionInput{
		VersionName: "Rewrite",
		Data:        data,
	})
	require.NoError(t, err)
	assert.Equal(t, "v2.0", secondRoot.VersionNumber)
	assert.Equal(t, "main", secondRoot.BranchName)
}

func TestVersionServiceExplicitBranchName(t *testing.T) {
	svc, _, userID := newVersionServiceForTest(t)
	ctx := context.Background()

	root, err := svc.Save(ctx, userID, domain.SaveVersionInput{
		VersionName: "Base",
		Data:        []byte(`{}`),
	})
	require.NoError(t, err)

	branch, err := svc.Save(ctx, userID, domain.SaveVersionInput{
		VersionName:     "Anything",
		Data:            []byte(`{}`),
		ParentVersionID: &root.ID,
		BranchName:      "custom-branch",
	})
	require.NoError(t, err)
	assert.Equal(t, "custom-branch", branch.BranchName)
}

func TestVersionServiceSaveValidation(t *testing.T) {
	svc, _, userID := newVersionServiceForTest(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, userID, domain.SaveVersionInput{Data: []byte(`{}`)})
	assert.Error(t, err)

	_, err = svc.Save(ctx, userID, domain.SaveVersionInput{VersionName: "x", Data: []byte(`{broken`)})
	assert.Error(t, err)

	missingParent := int64(9999)
	_, err = svc.Save(ctx, userID, domain.SaveVersionInput{
		VersionName:     "x",
		Data:            []byte(`{}`),
		ParentVersionID: &missingParent,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestVersionServiceSaveOverwritesSameSlot(t *testing.T) {
	svc, _, userID := newVersionServiceForTest(t)
	ctx := context.Background()

	root, err := svc.Save(ctx, userID, domain.SaveVersionInput{
		VersionName: "Base",
		Data:        []byte(`{"v":1}`),
	})
	require.NoError(t, err)

	// Два сохранения от одного родителя с одним именем попадают в один слот
	// (user, branch, version_number) и перезаписывают его, а не плодят строки
	first, err := svc.Save(ctx, userID, domain.SaveVersionInput{
		VersionName:     "Tech Focus",
		Data:            []byte(`{"v":2}`),
		ParentVersionID: &root.ID,
	})
	require.NoError(t, err)

	second, err := svc.Save(ctx, userID, domain.SaveVersionInput{
		VersionName:     "Tech Focus",
		Data:            []byte(`{"v":3}`),
		ParentVersionID: &root.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "v1.1", second.VersionNumber)

	stored, err := svc.Get(ctx, userID, first.ID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":3}`, string(stored.Data))

	all, err := svc.List(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestVersionServiceDeleteRemovesStoredPDF(t *testing.T) {
	svc, storage, userID := newVersionServiceForTest(t)
	ctx := context.Background()

	version, err := svc.Save(ctx, userID, domain.SaveVersionInput{
		VersionName: "With PDF",
		Data:        []byte(`{}`),
	})
	require.NoError(t, err)

	key := "documents/resume/test.pdf"
	require.NoError(t, storage.UploadBytes(key, []byte("%PDF-1.4")))

	require.NoError(t, svc.repo.SetPDF(ctx, userID, version.ID, key, 8))

	deleted, err := svc.Delete(ctx, userID, version.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Contains(t, storage.deleted, key)

	_, err = svc.Get(ctx, userID, version.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestVersionServiceDeleteMissing(t *testing.T) {
	svc, _, userID := newVersionServiceForTest(t)

	deleted, err := svc.Delete(context.Background(), userID, 12345)
	require.NoError(t, err)
	assert.False(t, deleted)
}
