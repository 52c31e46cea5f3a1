package preview

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/h2non/bimg"
	"github.com/jmoiron/sqlx"

	"jobforge/internal/domain"
	"jobforge/internal/service"
	"jobforge/internal/service/s3"
)

const (
	maxImageSize  = 1024        // максимальный размер превью в пикселях
	jpegQuality   = 85          // качество JPEG
	previewPrefix = "previews/" // префикс для превью в S3
	previewMaxAge = 7 * 24 * time.Hour
)

// Service генерирует и кэширует превью первой страницы сгенерированного PDF
type Service struct {
	s3Client   s3.Storage
	db         *sqlx.DB
	generation *service.GenerationService
}

func NewService(s3Client s3.Storage, db *sqlx.DB, generation *service.GenerationService) *Service {
	return &Service{
		s3Client:   s3Client,
		db:         db,
		generation: generation,
	}
}

// StartCleanupTask запускает периодическую очистку старых превью
func (s *Service) StartCleanupTask() {
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		for range ticker.C {
			s.cleanupOldPreviews(context.Background())
		}
	}()
}

// cleanupOldPreviews удаляет устаревшие превью из S3 и базы данных
func (s *Service) cleanupOldPreviews(ctx context.Context) {
	log.Printf("Starting preview cleanup task")

	cutoff := time.Now().UTC().Add(-previewMaxAge)

	var keys []string
	err := s.db.SelectContext(ctx, &keys,
		`SELECT object_key FROM document_previews WHERE created_at < ?`, cutoff)
	if err != nil {
		log.Printf("Error listing old previews: %v", err)
		return
	}

	for _, key := range keys {
		if err := s.s3Client.DeleteObject(key); err != nil {
			log.Printf("Error deleting preview from S3: %v", err)
		}
	}

	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM document_previews WHERE created_at < ?`, cutoff); err != nil {
		log.Printf("Error cleaning up old previews from database: %v", err)
		return
	}

	log.Printf("Completed preview cleanup task. Removed %d old previews", len(keys))
}

// GetOrGeneratePreview возвращает JPEG первой страницы PDF версии документа
func (s *Service) GetOrGeneratePreview(ctx context.Context, userID int64, docType domain.DocumentType, versionID int64) ([]byte, error) {
	var key string
	err := s.db.GetContext(ctx, &key,
		`SELECT object_key FROM document_previews WHERE doc_type = ? AND version_id = ?`,
		docType, versionID)
	if err == nil {
		obj, err := s.s3Client.GetObject(ctx, key)
		if err == nil {
			defer obj.Close()
			data, err := io.ReadAll(obj)
			if err == nil {
				return data, nil
			}
		}
		log.Printf("Cached preview %s unavailable, regenerating: %v", key, err)
	}

	pdf, _, err := s.generation.DocumentPDF(ctx, userID, docType, versionID)
	if err != nil {
		return nil, err
	}

	previewData, err := s.generatePDFPreview(pdf)
	if err != nil {
		return nil, fmt.Errorf("failed to generate preview: %w", err)
	}

	previewKey := fmt.Sprintf("%s%s/%d.jpg", previewPrefix, docType, versionID)
	if err := s.s3Client.UploadBytes(previewKey, previewData); err != nil {
		log.Printf("Warning: failed to save preview to S3: %v", err)
		return previewData, nil
	}

	_, err = s.db.ExecContext(ctx, `
        INSERT INTO document_previews (doc_type, version_id, object_key, created_at)
        VALUES (?, ?, ?, ?)
        ON CONFLICT(doc_type, version_id) DO UPDATE SET
            object_key = excluded.object_key,
            created_at = excluded.created_at`,
		docType, versionID, previewKey, time.Now().UTC())
	if err != nil {
		log.Printf("Warning: failed to record preview: %v", err)
	}

	return previewData, nil
}

// generatePDFPreview конвертирует первую страницу PDF в изображение
func (s *Service) generatePDFPreview(data []byte) ([]byte, error) {
	tmpPath, err := os.MkdirTemp("", "jobforge-preview-")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpPath)

	pdfPath := filepath.Join(tmpPath, "input.pdf")
	if err := os.WriteFile(pdfPath, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write PDF file: %w", err)
	}

	// Используем pdftoppm для конвертации первой страницы в изображение
	outputPath := filepath.Join(tmpPath, "output")
	cmd := exec.Command("pdftoppm",
		"-jpeg",
		"-f", "1",
		"-l", "1",
		"-scale-to", fmt.Sprintf("%d", maxImageSize),
		"-singlefile",
		pdfPath,
		outputPath,
	)

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("failed to convert PDF: %w", err)
	}

	imgData, err := os.ReadFile(outputPath + ".jpg")
	if err != nil {
		return nil, fmt.Errorf("failed to read converted image: %w", err)
	}

	return s.optimizeImage(imgData)
}

func (s *Service) optimizeImage(data []byte) ([]byte, error) {
	// Используем bimg для оптимизации
	image := bimg.NewImage(data)

	size, err := image.Size()
	if err != nil {
		return nil, fmt.Errorf("failed to get image size: %w", err)
	}

	newWidth, newHeight := calculateNewDimensions(size.Width, size.Height, maxImageSize)

	processed, err := image.Process(bimg.Options{
		Width:   newWidth,
		Height:  newHeight,
		Quality: jpegQuality,
		Type:    bimg.JPEG,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to process image: %w", err)
	}

	return processed, nil
}

func calculateNewDimensions(width, height, maxSize int) (newWidth, newHeight int) {
	if width <= maxSize && height <= maxSize {
		return width, height
	}

	if width > height {
		return maxSize, height * maxSize / width
	}
	return width * maxSize / height, maxSize
}
