package domain

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusApplied   Status = "applied"
	StatusInterview Status = "interview"
	StatusOffer     Status = "offer"
	StatusRejected  Status = "rejected"
)

// ValidStatus проверяет, что статус входит в канонический набор
func ValidStatus(s Status) bool {
	switch s {
	case StatusApplied, StatusInterview, StatusOffer, StatusRejected:
		return true
	}
	return false
}

type JobApplication struct {
	ID                   uuid.UUID `json:"id" db:"id"`
	UserID               int64     `json:"user_id" db:"user_id"`
	Company              string    `json:"company" db:"company"`
	Position             string    `json:"position" db:"position"`
	Status               Status    `json:"status" db:"status"`
	ApplicationDate      string    `json:"application_date" db:"application_date"`
	Salary               *string   `json:"salary,omitempty" db:"salary"`
	Location             *string   `json:"location,omitempty" db:"location"`
	Notes                *string   `json:"notes,omitempty" db:"notes"`
	ResumeVersionID      *int64    `json:"resume_version_id" db:"resume_version_id"`
	CoverLetterVersionID *int64    `json:"cover_letter_version_id" db:"cover_letter_version_id"`
	CreatedAt            time.Time `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time `json:"updated_at" db:"updated_at"`
}

type StatusHistoryEntry struct {
	ID         int64     `json:"id" db:"id"`
	JobID      uuid.UUID `json:"job_id" db:"job_id"`
	FromStatus Status    `json:"from_status" db:"from_status"`
	ToStatus   Status    `json:"to_status" db:"to_status"`
	Notes      *string   `json:"notes,omitempty" db:"notes"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// StatusCounts — сырые количества откликов по статусам для одной версии
type StatusCounts struct {
	Applied   int
	Interview int
	Offer     int
	Rejected  int
}

func (c StatusCounts) Total() int {
	return c.Applied + c.Interview + c.Offer + c.Rejected
}
