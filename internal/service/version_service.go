package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"jobforge/internal/domain"
	"jobforge/internal/repository"
	"jobforge/internal/service/s3"
)

// VersionService реализует сохранение и жизненный цикл версий одного типа
// документов. Для резюме и сопроводительных писем создаются два экземпляра
// с разными репозиториями.
type VersionService struct {
	repo    *repository.VersionRepository
	storage s3.Storage
	docType domain.DocumentType
}

func NewVersionService(repo *repository.VersionRepository, storage s3.Storage, docType domain.DocumentType) *VersionService {
	return &VersionService{
		repo:    repo,
		storage: storage,
		docType: docType,
	}
}

func (s *VersionService) DocumentType() domain.DocumentType {
	return s.docType
}

// Save создаёт новую версию или перезаписывает существующий слот
// (user, branch, version_number). Номер версии всегда вычисляется здесь,
// снаружи он не принимается.
func (s *VersionService) Save(ctx context.Context, userID int64, input domain.SaveVersionInput) (*domain.Version, error) {
	if input.VersionName == "" {
		return nil, fmt.Errorf("version name is required")
	}
	if len(input.Data) == 0 || !json.Valid(input.Data) {
		return nil, fmt.Errorf("document data must be valid JSON")
	}

	branchName := input.BranchName
	versionNumber := ""

	if input.ParentVersionID != nil {
		parent, err := s.repo.Get(ctx, userID, *input.ParentVersionID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve parent version: %w", err)
		}

		versionNumber = nextVersionNumber(parent.VersionNumber)
		if branchName == "" {
			branchName = slugify(input.VersionName)
		}
	} else {
		roots, err := s.repo.RootVersionNumbers(ctx, userID)
		if err != nil {
			return nil, err
		}

		versionNumber = nextRootVersionNumber(roots)
		if branchName == "" {
			branchName = "main"
		}
	}

	version := &domain.Version{
		UserID:          userID,
		VersionName:     input.VersionName,
		Description:     input.Description,
		Data:            input.Data,
		Tags:            input.Tags,
		IsFavorite:      input.IsFavorite,
		ParentVersionID: input.ParentVersionID,
		VersionNumber:   versionNumber,
		BranchName:      branchName,
	}

	if err := s.repo.Upsert(ctx, version); err != nil {
		return nil, err
	}

	log.Printf("Saved %s version %s on branch %q (id=%d)", s.docType, versionNumber, branchName, version.ID)
	return version, nil
}

func (s *VersionService) Get(ctx context.Context, userID, versionID int64) (*domain.Version, error) {
	return s.repo.Get(ctx, userID, versionID)
}

func (s *VersionService) List(ctx context.Context, userID int64) ([]domain.Version, error) {
	return s.repo.ListDesc(ctx, userID)
}

func (s *VersionService) Update(ctx context.Context, userID, versionID int64, upd domain.VersionUpdate) (*domain.Version, error) {
	return s.repo.Update(ctx, userID, versionID, upd)
}

// Delete удаляет версию вместе со сгенерированным PDF в хранилище объектов.
// Дочерние версии остаются: дерево поднимет их на уровень корней.
func (s *VersionService) Delete(ctx context.Context, userID, versionID int64) (bool, error) {
	version, err := s.repo.Get(ctx, userID, versionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	if version.PDFKey != nil {
		if err := s.storage.DeleteObject(*version.PDFKey); err != nil {
			// Осиротевший объект в хранилище не блокирует удаление строки
			log.Printf("Failed to delete stored PDF %s: %v", *version.PDFKey, err)
		}
	}

	return s.repo.Delete(ctx, userID, versionID)
}
