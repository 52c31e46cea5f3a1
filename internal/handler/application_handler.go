package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"jobforge/internal/domain"
	"jobforge/internal/service"
	"jobforge/internal/session"
)

type ApplicationHandler struct {
	applications *service.ApplicationService
}

func NewApplicationHandler(applications *service.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{applications: applications}
}

func (h *ApplicationHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := session.UserID(r.Context())

	var input service.CreateApplicationInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		log.Printf("Failed to decode application request: %v", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	app, err := h.applications.Create(r.Context(), userID, input)
	if err != nil {
		log.Printf("Failed to create application: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(app)
}

func (h *ApplicationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := session.UserID(r.Context())

	apps, err := h.applications.List(r.Context(), userID)
	if err != nil {
		log.Printf("Failed to list applications: %v", err)
		http.Error(w, "Failed to list applications", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(apps)
}

// Board отдаёт отклики, сгруппированные по статусам
func (h *ApplicationHandler) Board(w http.ResponseWriter, r *http.Request) {
	userID := session.UserID(r.Context())

	board, err := h.applications.Board(r.Context(), userID)
	if err != nil {
		log.Printf("Failed to build board: %v", err)
		http.Error(w, "Failed to build board", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(board)
}

func (h *ApplicationHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := session.UserID(r.Context())
	id := chi.URLParam(r, "id")

	app, err := h.applications.Get(r.Context(), userID, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "Application not found", http.StatusNotFound)
			return
		}
		log.Printf("Failed to get application: %v", err)
		http.Error(w, "Failed to get application", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(app)
}

func (h *ApplicationHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := session.UserID(r.Context())
	id := chi.URLParam(r, "id")

	var input service.CreateApplicationInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		log.Printf("Failed to decode application update: %v", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	app, err := h.applications.Update(r.Context(), userID, id, input)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "Application not found", http.StatusNotFound)
			return
		}
		log.Printf("Failed to update application: %v", err)
		http.Error(w, "Failed to update application", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(app)
}

// ChangeStatus переводит отклик в новый статус; переход пишется в историю
func (h *ApplicationHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	userID := session.UserID(r.Context())
	id := chi.URLParam(r, "id")

	var req struct {
		Status domain.Status `json:"status"`
		Notes  *string       `json:"notes,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("Failed to decode status change: %v", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	app, err := h.applications.ChangeStatus(r.Context(), userID, id, req.Status, req.Notes)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "Application not found", http.StatusNotFound)
			return
		}
		if !domain.ValidStatus(req.Status) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Printf("Failed to change status: %v", err)
		http.Error(w, "Failed to change status", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(app)
}

func (h *ApplicationHandler) StatusHistory(w http.ResponseWriter, r *http.Request) {
	userID := session.UserID(r.Context())
	id := chi.URLParam(r, "id")

	history, err := h.applications.StatusHistory(r.Context(), userID, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "Application not found", http.StatusNotFound)
			return
		}
		log.Printf("Failed to get status history: %v", err)
		http.Error(w, "Failed to get status history", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(history)
}

func (h *ApplicationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := session.UserID(r.Context())
	id := chi.URLParam(r, "id")

	deleted, err := h.applications.Delete(r.Context(), userID, id)
	if err != nil {
		log.Printf("Failed to delete application: %v", err)
		http.Error(w, "Failed to delete application", http.StatusInternalServerError)
		return
	}
	if !deleted {
		http.Error(w, "Application not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
