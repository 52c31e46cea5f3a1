package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"time"

	"jobforge/internal/config"
	"jobforge/internal/domain"
	"jobforge/internal/repository"
)

const webhookTimeout = 60 * time.Second

var ErrWebhookNotConfigured = errors.New("n8n webhook URL not configured")

// EvaluationService гоняет данные через вебхуки автоматизаций n8n:
// подготовка текста резюме и вакансии, затем сама ATS-оценка. Результат
// сохраняется в истории оценок.
type EvaluationService struct {
	repo    *repository.EvaluationRepository
	webhook config.WebhookConfig
	client  *http.Client
}

func NewEvaluationService(repo *repository.EvaluationRepository, webhook config.WebhookConfig) *EvaluationService {
	return &EvaluationService{
		repo:    repo,
		webhook: webhook,
		client:  &http.Client{Timeout: webhookTimeout},
	}
}

// EvaluateInput — материал для оценки; тексты уже извлечены из версий
type EvaluateInput struct {
	ResumeText           string `json:"resume_text"`
	CoverLetterText      string `json:"cover_letter_text"`
	JobDescription       string `json:"job_description"`
	ResumeVersionID      *int64 `json:"resume_version_id,omitempty"`
	CoverLetterVersionID *int64 `json:"cover_letter_version_id,omitempty"`
}

// Evaluate вызывает вебхук оценки и сохраняет агрегированный вердикт
func (s *EvaluationService) Evaluate(ctx context.Context, userID int64, input EvaluateInput) (*domain.ATSEvaluation, error) {
	if input.ResumeText == "" || input.JobDescription == "" {
		return nil, fmt.Errorf("resume text and job description are required")
	}
	if s.webhook.EvaluateURL == "" {
		return nil, ErrWebhookNotConfigured
	}

	result, err := s.postJSON(ctx, s.webhook.EvaluateURL, map[string]string{
		"resume_text":       input.ResumeText,
		"cover_letter_text": input.CoverLetterText,
		"job_description":   input.JobDescription,
	})
	if err != nil {
		return nil, err
	}

	eval := &domain.ATSEvaluation{
		UserID:               userID,
		ResumeVersionID:      input.ResumeVersionID,
		CoverLetterVersionID: input.CoverLetterVersionID,
		JobDescription:       input.JobDescription,
		Score:                extractScore(result),
		Result:               result,
	}

	if err := s.repo.Create(ctx, eval); err != nil {
		return nil, err
	}

	return eval, nil
}

// ProcessResume прогоняет сырые данные резюме через вебхук подготовки текста
func (s *EvaluationService) ProcessResume(ctx context.Context, data json.RawMessage) (json.RawMessage, error) {
	if s.webhook.ProcessResumeURL == "" {
		return nil, ErrWebhookNotConfigured
	}
	return s.postJSON(ctx, s.webhook.ProcessResumeURL, map[string]json.RawMessage{"resume": data})
}

// ProcessJobDescription нормализует текст вакансии
func (s *EvaluationService) ProcessJobDescription(ctx context.Context, text string) (json.RawMessage, error) {
	if s.webhook.ProcessJDURL == "" {
		return nil, ErrWebhookNotConfigured
	}
	return s.postJSON(ctx, s.webhook.ProcessJDURL, map[string]string{"job_description": text})
}

func (s *EvaluationService) Get(ctx context.Context, userID, id int64) (*domain.ATSEvaluation, error) {
	return s.repo.Get(ctx, userID, id)
}

func (s *EvaluationService) List(ctx context.Context, userID int64) ([]domain.ATSEvaluation, error) {
	return s.repo.List(ctx, userID)
}

func (s *EvaluationService) Delete(ctx context.Context, userID, id int64) (bool, error) {
	return s.repo.Delete(ctx, userID, id)
}

func (s *EvaluationService) postJSON(ctx context.Context, url string, payload interface{}) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("webhook call failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read webhook response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Printf("Webhook %s returned %d: %s", url, resp.StatusCode, data)
		return nil, fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	if !json.Valid(data) {
		return nil, fmt.Errorf("webhook returned invalid JSON")
	}

	return data, nil
}

// extractScore достаёт числовой балл из вердикта, если автоматизация его
// вернула; формат ответа не фиксирован, поэтому пробуем известные ключи
func extractScore(result json.RawMessage) *int {
	var parsed map[string]interface{}
	if err := json.Unmarshal(result, &parsed); err != nil {
		return nil
	}

	for _, key := range []string{"score", "overall_score", "ats_score"} {
		if raw, ok := parsed[key]; ok {
			if f, ok := raw.(float64); ok {
				score := int(math.Round(f))
				return &score
			}
		}
	}

	return nil
}
