package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"jobforge/internal/domain"
	"jobforge/internal/repository"
	"jobforge/internal/service/s3"
)

const (
	compileTimeout = 30 * time.Second
	maxCompileLog  = 8 * 1024 // хвост лога pdflatex для диагностики
	documentPrefix = "documents/"
)

// GenerationService превращает данные версии в PDF: рендер LaTeX, компиляция
// pdflatex во временной директории, выгрузка результата в хранилище объектов.
// Готовый PDF привязывается к версии и при следующем запросе отдаётся из
// хранилища без перекомпиляции.
type GenerationService struct {
	storage    s3.Storage
	resumeRepo *repository.VersionRepository
	coverRepo  *repository.VersionRepository
}

func NewGenerationService(storage s3.Storage, resumeRepo, coverRepo *repository.VersionRepository) (*GenerationService, error) {
	// Проверяем наличие pdflatex
	if _, err := exec.LookPath("pdflatex"); err != nil {
		return nil, fmt.Errorf("pdflatex not found: %w", err)
	}

	return &GenerationService{
		storage:    storage,
		resumeRepo: resumeRepo,
		coverRepo:  coverRepo,
	}, nil
}

func (s *GenerationService) repoFor(docType domain.DocumentType) (*repository.VersionRepository, error) {
	switch docType {
	case domain.DocumentResume:
		return s.resumeRepo, nil
	case domain.DocumentCoverLetter:
		return s.coverRepo, nil
	}
	return nil, fmt.Errorf("unknown document type: %s", docType)
}

// DocumentPDF возвращает PDF версии: из хранилища, если он уже был
// сгенерирован, иначе компилирует и сохраняет
func (s *GenerationService) DocumentPDF(ctx context.Context, userID int64, docType domain.DocumentType, versionID int64) ([]byte, string, error) {
	repo, err := s.repoFor(docType)
	if err != nil {
		return nil, "", err
	}

	version, err := repo.Get(ctx, userID, versionID)
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("%s_%s_%s.pdf", docType, slugify(version.VersionName), version.VersionNumber)

	if version.PDFKey != nil {
		obj, err := s.storage.GetObject(ctx, *version.PDFKey)
		if err == nil {
			defer obj.Close()
			data, err := io.ReadAll(obj)
			if err == nil {
				return data, filename, nil
			}
			log.Printf("Failed to read cached PDF %s: %v", *version.PDFKey, err)
		} else {
			log.Printf("Cached PDF %s unavailable, recompiling: %v", *version.PDFKey, err)
		}
	}

	var tex string
	switch docType {
	case domain.DocumentResume:
		tex, err = renderResumeTex(version.Data)
	case domain.DocumentCoverLetter:
		tex, err = renderCoverLetterTex(version.Data)
	}
	if err != nil {
		return nil, "", err
	}

	pdf, err := s.compile(ctx, tex)
	if err != nil {
		return nil, "", err
	}

	// Фиксируем объект только после успешной компиляции
	key := fmt.Sprintf("%s%s/%d_%s.pdf", documentPrefix, docType, versionID, uuid.NewString())
	if err := s.storage.UploadBytes(key, pdf); err != nil {
		return nil, "", fmt.Errorf("failed to store generated PDF: %w", err)
	}

	if err := repo.SetPDF(ctx, userID, versionID, key, int64(len(pdf))); err != nil {
		log.Printf("Failed to record PDF key for version %d: %v", versionID, err)
	}

	return pdf, filename, nil
}

// compile запускает pdflatex с жёстким дедлайном; по таймауту процесс
// убивается контекстом и запрос завершается ошибкой без частичного результата
func (s *GenerationService) compile(ctx context.Context, tex string) ([]byte, error) {
	dir, err := os.MkdirTemp("", "jobforge-tex-")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	texPath := filepath.Join(dir, "main.tex")
	if err := os.WriteFile(texPath, []byte(tex), 0644); err != nil {
		return nil, fmt.Errorf("failed to write tex file: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, compileTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "pdflatex",
		"-interaction=nonstopmode",
		"-halt-on-error",
		"-output-directory", dir,
		texPath,
	)

	output, err := cmd.CombinedOutput()
	if ctx.Err() == context.DeadlineExceeded {
		return nil, fmt.Errorf("pdf compilation timed out after %s", compileTimeout)
	}
	if err != nil {
		if len(output) > maxCompileLog {
			output = output[len(output)-maxCompileLog:]
		}
		log.Printf("pdflatex failed: %v\n%s", err, output)
		return nil, fmt.Errorf("pdf compilation failed: %w", err)
	}

	pdf, err := os.ReadFile(filepath.Join(dir, "main.pdf"))
	if err != nil {
		return nil, fmt.Errorf("failed to read compiled PDF: %w", err)
	}

	return pdf, nil
}
