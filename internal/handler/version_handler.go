package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"jobforge/internal/domain"
	"jobforge/internal/service"
	"jobforge/internal/session"
)

// VersionHandler обслуживает версии одного типа документов; для резюме и
// сопроводительных писем регистрируются два экземпляра с общими маршрутами
type VersionHandler struct {
	versions   *service.VersionService
	lineage    *service.LineageService
	generation *service.GenerationService
	limiter    *service.RateLimiter
}

func NewVersionHandler(versions *service.VersionService, lineage *service.LineageService, generation *service.GenerationService, limiter *service.RateLimiter) *VersionHandler {
	return &VersionHandler{
		versions:   versions,
		lineage:    lineage,
		generation: generation,
		limiter:    limiter,
	}
}

// Save обрабатывает сохранение версии: новый корень или ветка от родителя
func (h *VersionHandler) Save(w http.ResponseWriter, r *http.Request) {
	userID := session.UserID(r.Context())

	var input domain.SaveVersionInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		log.Printf("Failed to decode save request: %v", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if input.VersionName == "" || len(input.Data) == 0 {
		http.Error(w, "version_name and data are required", http.StatusBadRequest)
		return
	}

	version, err := h.versions.Save(r.Context(), userID, input)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "Parent version not found", http.StatusNotFound)
			return
		}
		log.Printf("Failed to save version: %v", err)
		http.Error(w, "Failed to save version", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(version)
}

// List возвращает все версии пользователя, новые сверху
func (h *VersionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := session.UserID(r.Context())

	versions, err := h.versions.List(r.Context(), userID)
	if err != nil {
		log.Printf("Failed to list versions: %v", err)
		http.Error(w, "Failed to list versions", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(versions)
}

func (h *VersionHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := session.UserID(r.Context())

	versionID, ok := parseID(w, r)
	if !ok {
		return
	}

	version, err := h.versions.Get(r.Context(), userID, versionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "Version not found", http.StatusNotFound)
			return
		}
		log.Printf("Failed to get version: %v", err)
		http.Error(w, "Failed to get version", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(version)
}

// Update патчит метаданные версии; данные и номер версии неизменяемы
func (h *VersionHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := session.UserID(r.Context())

	versionID, ok := parseID(w, r)
	if !ok {
		return
	}

	var upd domain.VersionUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		log.Printf("Failed to decode update request: %v", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	version, err := h.versions.Update(r.Context(), userID, versionID, upd)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "Version not found", http.StatusNotFound)
			return
		}
		log.Printf("Failed to update version: %v", err)
		http.Error(w, "Failed to update version", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(version)
}

func (h *VersionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := session.UserID(r.Context())

	versionID, ok := parseID(w, r)
	if !ok {
		return
	}

	deleted, err := h.versions.Delete(r.Context(), userID, versionID)
	if err != nil {
		log.Printf("Failed to delete version: %v", err)
		http.Error(w, "Failed to delete version", http.StatusInternalServerError)
		return
	}
	if !deleted {
		http.Error(w, "Version not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Lineage отдаёт лес версий; параметры запроса включают фильтры.
// Без фильтров и без all=true показываются только корни ветки main.
func (h *VersionHandler) Lineage(w http.ResponseWriter, r *http.Request) {
	userID := session.UserID(r.Context())

	roots, err := h.lineage.BuildForest(r.Context(), userID)
	if err != nil {
		log.Printf("Failed to build lineage: %v", err)
		http.Error(w, "Failed to build lineage", http.StatusInternalServerError)
		return
	}

	filter := service.LineageFilter{
		Search:          r.URL.Query().Get("search"),
		Branch:          r.URL.Query().Get("branch"),
		HasApplications: r.URL.Query().Get("has_applications") == "true",
		FavoritesOnly:   r.URL.Query().Get("favorites") == "true",
	}
	if raw := r.URL.Query().Get("min_success_rate"); raw != "" {
		rate, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "Invalid min_success_rate", http.StatusBadRequest)
			return
		}
		filter.MinSuccessRate = &rate
	}

	switch {
	case filter.Active():
		roots = h.lineage.Filter(roots, filter)
	case r.URL.Query().Get("all") != "true":
		roots = h.lineage.MainRoots(roots)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(roots)
}

// Branches отдаёт сводку по веткам пользователя
func (h *VersionHandler) Branches(w http.ResponseWriter, r *http.Request) {
	userID := session.UserID(r.Context())

	branches, err := h.lineage.Branches(r.Context(), userID)
	if err != nil {
		log.Printf("Failed to list branches: %v", err)
		http.Error(w, "Failed to list branches", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(branches)
}

// Download отдаёт PDF версии; генерация ограничена по частоте на сессию
func (h *VersionHandler) Download(w http.ResponseWriter, r *http.Request) {
	userID := session.UserID(r.Context())

	versionID, ok := parseID(w, r)
	if !ok {
		return
	}

	allowed, retryAfter := h.limiter.Allow(userID)
	if !allowed {
		seconds := int(retryAfter.Seconds()) + 1
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
		http.Error(w, fmt.Sprintf("Too many requests. Please try again in %d seconds.", seconds),
			http.StatusTooManyRequests)
		return
	}

	pdf, filename, err := h.generation.DocumentPDF(r.Context(), userID, h.versions.DocumentType(), versionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "Version not found", http.StatusNotFound)
			return
		}
		log.Printf("Failed to generate PDF: %v", err)
		http.Error(w, "Failed to generate PDF", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.Write(pdf)
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid version ID", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
