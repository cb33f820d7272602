package dto

import (
	"time"

	"github.com/yigit/prelimplanner/internal/app/models"
)

// --- Request DTOs ---

// TableQuery selects an exam table. Year is optional; without it the most
// recently populated table for the semester and exam type is used.
type TableQuery struct {
	Semester string `json:"semester" form:"semester" binding:"required,semester"`
	ExamType string `json:"exam_type" form:"exam_type" binding:"required"`
	Year     string `json:"year,omitempty" form:"year"`
}

// PopulateRequest triggers a scrape and load of one semester's schedule
type PopulateRequest struct {
	Semester string `json:"semester" binding:"required,semester"`
	ExamType string `json:"exam_type" binding:"required"`
	// Replace empties the table before loading instead of appending
	Replace bool `json:"replace"`
}

// BatchFetchRequest looks up several course codes in one table
type BatchFetchRequest struct {
	TableQuery
	CourseCodes []string `json:"course_codes" binding:"required,dive,required"`
}

// UpdateExamRequest changes columns of every row of one course
type UpdateExamRequest struct {
	TableQuery
	NewExamData map[string]string `json:"new_exam_data" binding:"required,min=1"`
}

// --- Response DTOs ---

// PopulateResponse reports the outcome of a populate call
type PopulateResponse struct {
	TableName    string          `json:"table_name" example:"fa_2024_2024_prelim_exams"`
	Semester     string          `json:"semester" example:"FA 2024"`
	Year         string          `json:"year" example:"2024"`
	ExamType     models.ExamType `json:"exam_type" example:"prelim"`
	Inserted     int             `json:"inserted" example:"412"`
	Total        int             `json:"total" example:"412"`
	ArtifactPath string          `json:"artifact_path" example:"data/fa-2024-prelim-exams.txt"`
}

// DeleteResponse reports how many rows a delete removed
type DeleteResponse struct {
	Table   string `json:"table"`
	Deleted int64  `json:"deleted"`
}

// TableResponse describes a provisioned exam table
type TableResponse struct {
	TableName    string          `json:"table_name"`
	Semester     string          `json:"semester"`
	Year         string          `json:"year"`
	ExamType     models.ExamType `json:"exam_type"`
	ArtifactPath string          `json:"artifact_path"`
	RecordCount  int             `json:"record_count"`
	PopulatedAt  time.Time       `json:"populated_at"`
}

// NewTableResponse converts a catalog row
func NewTableResponse(info models.TableInfo) TableResponse {
	return TableResponse{
		TableName:    info.TableName,
		Semester:     info.Semester,
		Year:         info.Year,
		ExamType:     info.ExamType,
		ArtifactPath: info.ArtifactPath,
		RecordCount:  info.RecordCount,
		PopulatedAt:  info.PopulatedAt,
	}
}
