package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"jobforge/internal/domain"
	"jobforge/internal/service"
	"jobforge/internal/session"
)

type EvaluationHandler struct {
	evaluations *service.EvaluationService
}

func NewEvaluationHandler(evaluations *service.EvaluationService) *EvaluationHandler {
	return &EvaluationHandler{evaluations: evaluations}
}

// Evaluate прогоняет резюме и вакансию через вебхук ATS-оценки
func (h *EvaluationHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	userID := session.UserID(r.Context())

	var input service.EvaluateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		log.Printf("Failed to decode evaluate request: %v", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	eval, err := h.evaluations.Evaluate(r.Context(), userID, input)
	if err != nil {
		if errors.Is(err, service.ErrWebhookNotConfigured) {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		if input.ResumeText == "" || input.JobDescription == "" {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Printf("Failed to evaluate: %v", err)
		http.Error(w, "Evaluation failed", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(eval)
}

// ProcessResume превращает структурированные данные резюме в текст для оценки
func (h *EvaluationHandler) ProcessResume(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Resume json.RawMessage `json:"resume"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Resume) == 0 {
		http.Error(w, "resume is required", http.StatusBadRequest)
		return
	}

	result, err := h.evaluations.ProcessResume(r.Context(), req.Resume)
	if err != nil {
		if errors.Is(err, service.ErrWebhookNotConfigured) {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		log.Printf("Failed to process resume: %v", err)
		http.Error(w, "Processing failed", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(result)
}

// ProcessJobDescription нормализует текст вакансии через вебхук
func (h *EvaluationHandler) ProcessJobDescription(w http.ResponseWriter, r *http.Request) {
	var req struct {
		JobDescription string `json:"job_description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.JobDescription == "" {
		http.Error(w, "job_description is required", http.StatusBadRequest)
		return
	}

	result, err := h.evaluations.ProcessJobDescription(r.Context(), req.JobDescription)
	if err != nil {
		if errors.Is(err, service.ErrWebhookNotConfigured) {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		log.Printf("Failed to process job description: %v", err)
		http.Error(w, "Processing failed", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(result)
}

func (h *EvaluationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := session.UserID(r.Context())

	evals, err := h.evaluations.List(r.Context(), userID)
	if err != nil {
		log.Printf("Failed to list evaluations: %v", err)
		http.Error(w, "Failed to list evaluations", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(evals)
}

func (h *EvaluationHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := session.UserID(r.Context())

	id, ok := parseID(w, r)
	if !ok {
		return
	}

	eval, err := h.evaluations.Get(r.Context(), userID, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "Evaluation not found", http.StatusNotFound)
			return
		}
		log.Printf("Failed to get evaluation: %v", err)
		http.Error(w, "Failed to get evaluation", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(eval)
}

func (h *EvaluationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := session.UserID(r.Context())

	id, ok := parseID(w, r)
	if !ok {
		return
	}

	deleted, err := h.evaluations.Delete(r.Context(), userID, id)
	if err != nil {
		log.Printf("Failed to delete evaluation: %v", err)
		http.Error(w, "Failed to delete evaluation", http.StatusInternalServerError)
		return
	}
	if !deleted {
		http.Error(w, "Evaluation not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
