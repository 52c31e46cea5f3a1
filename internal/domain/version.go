package domain

import (
	"encoding/json"
	"time"
)

// DocumentType различает два параллельных набора версий
type DocumentType string

const (
	DocumentResume      DocumentType = "resume"
	DocumentCoverLetter DocumentType = "cover_letter"
)

type Version struct {
	ID              int64           `json:"id" db:"id"`
	UserID          int64           `json:"user_id" db:"user_id"`
	VersionName     string          `json:"version_name" db:"version_name"`
	Description     *string         `json:"description,omitempty" db:"description"`
	Data            json.RawMessage `json:"data" db:"data_json"`
	PDFKey          *string         `json:"pdf_key,omitempty" db:"pdf_key"`
	FileSize        *int64          `json:"file_size,omitempty" db:"file_size"`
	IsFavorite      bool            `json:"is_favorite" db:"is_favorite"`
	Tags            *string         `json:"tags,omitempty" db:"tags"`
	ParentVersionID *int64          `json:"parent_version_id" db:"parent_version_id"`
	VersionNumber   string          `json:"version_number" db:"version_number"`
	BranchName      string          `json:"branch_name" db:"branch_name"`
	IsActive        bool            `json:"is_active" db:"is_active"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// SaveVersionInput описывает запрос на сохранение версии документа.
// VersionNumber не принимается снаружи — его вычисляет сервис.
type SaveVersionInput struct {
	VersionName     string          `json:"version_name"`
	Data            json.RawMessage `json:"data"`
	Description     *string         `json:"description,omitempty"`
	Tags            *string         `json:"tags,omitempty"`
	IsFavorite      bool            `json:"is_favorite,omitempty"`
	ParentVersionID *int64          `json:"parent_version_id,omitempty"`
	BranchName      string          `json:"branch_name,omitempty"`
}

// VersionUpdate — частичное обновление метаданных; nil-поля не трогаются
type VersionUpdate struct {
	VersionName *string `json:"version_name,omitempty"`
	Description *string `json:"description,omitempty"`
	Tags        *string `json:"tags,omitempty"`
	IsFavorite  *bool   `json:"is_favorite,omitempty"`
}

func (u VersionUpdate) Empty() bool {
	return u.VersionName == nil && u.Description == nil && u.Tags == nil && u.IsFavorite == nil
}

type VersionStats struct {
	TotalApplications   int `json:"totalApplications"`
	AppliedCount        int `json:"appliedCount"`
	InterviewCount      int `json:"interviewCount"`
	OfferCount          int `json:"offerCount"`
	RejectedCount       int `json:"rejectedCount"`
	AppliedPercentage   int `json:"appliedPercentage"`
	InterviewPercentage int `json:"interviewPercentage"`
	OfferPercentage     int `json:"offerPercentage"`
	RejectedPercentage  int `json:"rejectedPercentage"`
	SuccessRate         int `json:"successRate"`
}

// LineageNode — узел дерева версий для отображения
type LineageNode struct {
	ID              int64          `json:"id"`
	VersionName     string         `json:"version_name"`
	VersionNumber   string         `json:"version_number"`
	BranchName      string         `json:"branch_name"`
	ParentVersionID *int64         `json:"parent_version_id"`
	CreatedAt       time.Time      `json:"created_at"`
	IsActive        bool           `json:"is_active"`
	IsFavorite      bool           `json:"is_favorite"`
	Children        []*LineageNode `json:"children"`
	Stats           *VersionStats  `json:"stats"`
}

// BranchSummary — сводка по ветке: последняя версия и её статистика
type BranchSummary struct {
	BranchName      string        `json:"branch_name"`
	LatestVersionID int64         `json:"latest_version_id"`
	VersionCount    int           `json:"version_count"`
	Stats           *VersionStats `json:"stats"`
}
