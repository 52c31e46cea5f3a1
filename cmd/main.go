package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"jobforge/internal/config"
	"jobforge/internal/domain"
	"jobforge/internal/handler"
	"jobforge/internal/preview"
	"jobforge/internal/repository"
	"jobforge/internal/service"
	"jobforge/internal/service/s3"
	"jobforge/internal/session"
)

func runMigrations(cfg *config.Config) error {
	databaseURL := fmt.Sprintf("sqlite3://%s", cfg.Database.Path)

	m, err := migrate.New("file://migrations", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if dirty {
		log.Printf("Found dirty database state at version %d, attempting to force version", version)
		if err := m.Force(int(version)); err != nil {
			return fmt.Errorf("failed to force version: %w", err)
		}
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

func main() {
	// Загружаем конфигурации
	appConfig, err := config.NewConfig(".app.env")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Каталог базы должен существовать до подключения
	if err := os.MkdirAll(filepath.Dir(appConfig.Database.Path), 0755); err != nil {
		log.Fatalf("Failed to create database directory: %v", err)
	}

	db, err := sqlx.Connect("sqlite3", appConfig.Database.GetDSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// SQLite не терпит конкурентной записи из нескольких соединений
	db.SetMaxOpenConns(1)

	if err := runMigrations(appConfig); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Инициализация S3 клиента
	s3Config, err := s3.NewConfig(".s3.env")
	if err != nil {
		log.Fatalf("Failed to load S3 config: %v", err)
	}

	s3Client, err := s3.NewClient(s3Config)
	if err != nil {
		log.Fatalf("Failed to create S3 client: %v", err)
	}

	// Инициализация репозиториев
	userRepo := repository.NewUserRepository(db)
	resumeRepo := repository.NewResumeVersionRepository(db)
	coverRepo := repository.NewCoverLetterVersionRepository(db)
	applicationRepo := repository.NewApplicationRepository(db)
	evaluationRepo := repository.NewEvaluationRepository(db)

	// Инициализация сервисов
	statsService := service.NewStatsService(applicationRepo)
	resumeVersions := service.NewVersionService(resumeRepo, s3Client, domain.DocumentResume)
	coverVersions := service.NewVersionService(coverRepo, s3Client, domain.DocumentCoverLetter)
	resumeLineage := service.NewLineageService(resumeRepo, statsService, domain.DocumentResume)
	coverLineage := service.NewLineageService(coverRepo, statsService, domain.DocumentCoverLetter)
	applicationService := service.NewApplicationService(applicationRepo)
	evaluationService := service.NewEvaluationService(evaluationRepo, appConfig.Webhook)

	generationService, err := service.NewGenerationService(s3Client, resumeRepo, coverRepo)
	if err != nil {
		log.Fatalf("Failed to create generation service: %v", err)
	}

	pdfLimiter := service.NewRateLimiter(appConfig.RateLimit.PDFPerMinute, time.Minute)

	previewService := preview.NewService(s3Client, db, generationService)
	previewService.StartCleanupTask()

	sessions := session.NewManager(userRepo)

	// Инициализация хендлеров
	resumeHandler := handler.NewVersionHandler(resumeVersions, resumeLineage, generationService, pdfLimiter)
	coverHandler := handler.NewVersionHandler(coverVersions, coverLineage, generationService, pdfLimiter)
	applicationHandler := handler.NewApplicationHandler(applicationService)
	evaluationHandler := handler.NewEvaluationHandler(evaluationService)
	resumePreviewHandler := preview.NewHandler(previewService, domain.DocumentResume)
	coverPreviewHandler := preview.NewHandler(previewService, domain.DocumentCoverLetter)

	// Настройка HTTP роутера
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Minute))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "Content-Disposition", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// HTTP маршруты
	r.Route("/v1", func(r chi.Router) {
		r.Use(sessions.Middleware)

		versionRoutes := func(h *handler.VersionHandler, p *preview.Handler) func(chi.Router) {
			return func(r chi.Router) {
				r.Post("/", h.Save)
				r.Get("/", h.List)
				r.Get("/lineage", h.Lineage)
				r.Get("/branches", h.Branches)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.Get)
					r.Patch("/", h.Update)
					r.Delete("/", h.Delete)
					r.Get("/download", h.Download)
					r.Get("/preview", p.GetPreview)
				})
			}
		}

		r.Route("/resumes", versionRoutes(resumeHandler, resumePreviewHandler))
		r.Route("/cover-letters", versionRoutes(coverHandler, coverPreviewHandler))

		r.Route("/jobs", func(r chi.Router) {
			r.Post("/", applicationHandler.Create)
			r.Get("/", applicationHandler.List)
			r.Get("/board", applicationHandler.Board)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", applicationHandler.Get)
				r.Put("/", applicationHandler.Update)
				r.Delete("/", applicationHandler.Delete)
				r.Patch("/status", applicationHandler.ChangeStatus)
				r.Get("/history", applicationHandler.StatusHistory)
			})
		})

		r.Route("/evaluations", func(r chi.Router) {
			r.Post("/", evaluationHandler.Evaluate)
			r.Get("/", evaluationHandler.List)
			r.Post("/process-resume", evaluationHandler.ProcessResume)
			r.Post("/process-job-description", evaluationHandler.ProcessJobDescription)
			r.Get("/{id}", evaluationHandler.Get)
			r.Delete("/{id}", evaluationHandler.Delete)
		})
	})

	// Создаем HTTP сервер
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", appConfig.Server.Port),
		Handler: r,
	}

	// Канал для сигналов завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Запускаем HTTP сервер
	go func() {
		log.Printf("Starting HTTP server on port %s", appConfig.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	// Периодически чистим окна лимитера генерации PDF
	cleanupTicker := time.NewTicker(5 * time.Minute)
	go func() {
		for range cleanupTicker.C {
			pdfLimiter.Cleanup()
		}
	}()

	<-quit
	log.Println("Shutting down servers...")

	cleanupTicker.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	log.Println("Servers stopped")
}
