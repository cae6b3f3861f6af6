package dto

import (
	"time"

	"jobboard_backend/internal/models"
)

type CreateJobRequest struct {
	Title        string `json:"title" binding:"required" validate:"required,min=3"`
	Company      string `json:"company" binding:"required" validate:"required"`
	Description  string `json:"description" binding:"required" validate:"required,min=10"`
	Location     string `json:"location"`
	Salary       string `json:"salary"`
	ContractType string `json:"contract_type" validate:"omitempty,is-contract-type"`
	WorkType     string `json:"work_type" validate:"omitempty,is-work-type"`
}

type UpdateJobRequest struct {
	Title        *string `json:"title" validate:"omitempty,min=3"`
	Company      *string `json:"company"`
	Description  *string `json:"description" validate:"omitempty,min=10"`
	Location     *string `json:"location"`
	Salary       *string `json:"salary"`
	ContractType *string `json:"contract_type" validate:"omitempty,is-contract-type"`
	WorkType     *string `json:"work_type" validate:"omitempty,is-work-type"`
}

type ListJobsRequest struct {
	Search       string `form:"search"`
	ContractType string `form:"contract_type" validate:"omitempty,is-contract-type"`
	WorkType     string `form:"work_type" validate:"omitempty,is-work-type"`
	Source       string `form:"source"`
	Mine         bool   `form:"mine"`
	Page         int    `form:"page"`
	Limit        int    `form:"limit" validate:"omitempty,max=100"`
}

// JobResponse is the normalized job view-model shared by local and
// external listings (external results are adapted into it per source).
type JobResponse struct {
	ID           string    `json:"id,omitempty"`
	Title        string    `json:"title"`
	Company      string    `json:"company"`
	Description  string    `json:"description"`
	Location     string    `json:"location"`
	Salary       string    `json:"salary,omitempty"`
	ContractType string    `json:"contract_type,omitempty"`
	WorkType     string    `json:"work_type,omitempty"`
	Source       string    `json:"source,omitempty"`
	ExternalID   string    `json:"external_id,omitempty"`
	ExternalURL  string    `json:"external_url,omitempty"`
	PostedBy     string    `json:"posted_by,omitempty"`
	ApplyCount   int       `json:"apply_count"`
	SaveCount    int       `json:"save_count"`
	Deleted      bool      `json:"deleted,omitempty"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
}

func NewJobResponse(job *models.Job) JobResponse {
	resp := JobResponse{
		ID:           job.ID,
		Title:        job.Title,
		Company:      job.Company,
		Description:  job.Description,
		Location:     job.Location,
		Salary:       job.Salary,
		ContractType: string(job.ContractType),
		WorkType:     string(job.WorkType),
		Source:       job.Source,
		ApplyCount:   job.ApplyCount,
		SaveCount:    job.SaveCount,
		Deleted:      job.DeletedAt.Valid,
		CreatedAt:    job.CreatedAt,
	}
	if job.ExternalID != nil {
		resp.ExternalID = *job.ExternalID
	}
	if job.PostedBy != nil {
		resp.PostedBy = *job.PostedBy
	}
	return resp
}

func NewJobResponseList(jobs []models.Job) []JobResponse {
	out := make([]JobResponse, 0, len(jobs))
	for i := range jobs {
		out = append(out, NewJobResponse(&jobs[i]))
	}
	return out
}

type JobListResponse struct {
	Jobs       []JobResponse `json:"jobs"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	TotalPages int           `json:"total_pages"`
}

type ExternalSearchRequest struct {
	Query        string `form:"query"`
	Location     string `form:"location"`
	ContractType string `form:"contract_type" validate:"omitempty,is-contract-type"`
	Page         int    `form:"page"`
}
