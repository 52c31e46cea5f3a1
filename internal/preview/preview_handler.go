package preview

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"jobforge/internal/domain"
	"jobforge/internal/session"
)

type Handler struct {
	service *Service
	docType domain.DocumentType
}

func NewHandler(service *Service, docType domain.DocumentType) *Handler {
	return &Handler{service: service, docType: docType}
}

// GetPreview отдаёт JPEG-превью первой страницы документа
func (h *Handler) GetPreview(w http.ResponseWriter, r *http.Request) {
	userID := session.UserID(r.Context())

	versionID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid version ID", http.StatusBadRequest)
		return
	}

	data, err := h.service.GetOrGeneratePreview(r.Context(), userID, h.docType, versionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "Version not found", http.StatusNotFound)
			return
		}
		log.Printf("Failed to generate preview: %v", err)
		http.Error(w, "Failed to generate preview", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Write(data)
}
