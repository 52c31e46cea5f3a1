package domain

import (
	"encoding/json"
	"time"
)

// ATSEvaluation — сохранённый результат оценки совместимости с ATS
type ATSEvaluation struct {
	ID                   int64           `json:"id" db:"id"`
	UserID               int64           `json:"user_id" db:"user_id"`
	ResumeVersionID      *int64          `json:"resume_version_id" db:"resume_version_id"`
	CoverLetterVersionID *int64          `json:"cover_letter_version_id" db:"cover_letter_version_id"`
	JobDescription       string          `json:"job_description" db:"job_description"`
	Score                *int            `json:"score" db:"score"`
	Result               json.RawMessage `json:"result" db:"result_json"`
	CreatedAt            time.Time       `json:"created_at" db:"created_at"`
}
