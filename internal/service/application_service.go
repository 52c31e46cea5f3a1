package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"jobforge/internal/domain"
	"jobforge/internal/repository"
)

// ApplicationService — трекер откликов; версии документов ссылаются отсюда
type ApplicationService struct {
	repo *repository.ApplicationRepository
}

func NewApplicationService(repo *repository.ApplicationRepository) *ApplicationService {
	return &ApplicationService{repo: repo}
}

// CreateApplicationInput — входные данные нового отклика
type CreateApplicationInput struct {
	Company              string        `json:"company"`
	Position             string        `json:"position"`
	Status               domain.Status `json:"status,omitempty"`
	ApplicationDate      string        `json:"application_date"`
	Salary               *string       `json:"salary,omitempty"`
	Location             *string       `json:"location,omitempty"`
	Notes                *string       `json:"notes,omitempty"`
	ResumeVersionID      *int64        `json:"resume_version_id,omitempty"`
	CoverLetterVersionID *int64        `json:"cover_letter_version_id,omitempty"`
}

func (s *ApplicationService) Create(ctx context.Context, userID int64, input CreateApplicationInput) (*domain.JobApplication, error) {
	if input.Company == "" || input.Position == "" {
		return nil, fmt.Errorf("company and position are required")
	}
	if input.Status == "" {
		input.Status = domain.StatusApplied
	}
	if !domain.ValidStatus(input.Status) {
		return nil, fmt.Errorf("invalid status: %s", input.Status)
	}

	app := &domain.JobApplication{
		ID:                   uuid.New(),
		UserID:               userID,
		Company:              input.Company,
		Position:             input.Position,
		Status:               input.Status,
		ApplicationDate:      input.ApplicationDate,
		Salary:               input.Salary,
		Location:             input.Location,
		Notes:                input.Notes,
		ResumeVersionID:      input.ResumeVersionID,
		CoverLetterVersionID: input.CoverLetterVersionID,
	}

	if err := s.repo.Create(ctx, app); err != nil {
		return nil, err
	}

	return app, nil
}

func (s *ApplicationService) Get(ctx context.Context, userID int64, id string) (*domain.JobApplication, error) {
	return s.repo.Get(ctx, userID, id)
}

func (s *ApplicationService) List(ctx context.Context, userID int64) ([]domain.JobApplication, error) {
	return s.repo.List(ctx, userID)
}

// Board группирует отклики по статусам для канбан-доски
func (s *ApplicationService) Board(ctx context.Context, userID int64) (map[domain.Status][]domain.JobApplication, error) {
	apps, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	board := map[domain.Status][]domain.JobApplication{
		domain.StatusApplied:   {},
		domain.StatusInterview: {},
		domain.StatusOffer:     {},
		domain.StatusRejected:  {},
	}
	for _, app := range apps {
		board[app.Status] = append(board[app.Status], app)
	}

	return board, nil
}

func (s *ApplicationService) Update(ctx context.Context, userID int64, id string, input CreateApplicationInput) (*domain.JobApplication, error) {
	app, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if input.Company != "" {
		app.Company = input.Company
	}
	if input.Position != "" {
		app.Position = input.Position
	}
	if input.ApplicationDate != "" {
		app.ApplicationDate = input.ApplicationDate
	}
	app.Salary = input.Salary
	app.Location = input.Location
	app.Notes = input.Notes
	app.ResumeVersionID = input.ResumeVersionID
	app.CoverLetterVersionID = input.CoverLetterVersionID

	if err := s.repo.Update(ctx, app); err != nil {
		return nil, err
	}

	return app, nil
}

// ChangeStatus переводит отклик в новый статус и фиксирует переход в истории
func (s *ApplicationService) ChangeStatus(ctx context.Context, userID int64, id string, to domain.Status, notes *string) (*domain.JobApplication, error) {
	if !domain.ValidStatus(to) {
		return nil, fmt.Errorf("invalid status: %s", to)
	}

	return s.repo.UpdateStatus(ctx, userID, id, to, notes)
}

func (s *ApplicationService) StatusHistory(ctx context.Context, userID int64, id string) ([]domain.StatusHistoryEntry, error) {
	return s.repo.StatusHistory(ctx, userID, id)
}

func (s *ApplicationService) Delete(ctx context.Context, userID int64, id string) (bool, error) {
	return s.repo.Delete(ctx, userID, id)
}
