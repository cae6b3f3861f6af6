package models

import (
	"gorm.io/datatypes"
)

type ContractType string

const (
	ContractFullTime   ContractType = "full_time"
	ContractPartTime   ContractType = "part_time"
	ContractContract   ContractType = "contract"
	ContractInternship ContractType = "internship"
	ContractTemporary  ContractType = "temporary"
)

type WorkType string

const (
	WorkOnsite WorkType = "onsite"
	WorkHybrid WorkType = "hybrid"
	WorkRemote WorkType = "remote"
)

// Job is a posting, either created by a local user (PostedBy set) or
// synced from an external source (ExternalID set). Deleting a job is a
// soft delete so applied/saved history keeps resolving.
type Job struct {
	BaseModelWithDeleted
	Title        string       `gorm:"not null" json:"title"`
	Company      string       `gorm:"not null" json:"company"`
	Description  string       `gorm:"type:text;not null" json:"description"`
	Location     string       `json:"location"`
	Salary       string       `json:"salary,omitempty"`
	ContractType ContractType `gorm:"type:varchar(20)" json:"contract_type"`
	WorkType     WorkType     `gorm:"type:varchar(20)" json:"work_type"`

	// External source fields. A job with an ExternalID needs no poster;
	// a job without one must have PostedBy.
	ExternalID *string        `gorm:"uniqueIndex" json:"external_id,omitempty"`
	Source     string         `json:"source,omitempty"`
	SourceMeta datatypes.JSON `json:"-"`

	PostedBy *string `gorm:"index" json:"posted_by,omitempty"`

	ApplyCount int `gorm:"not null;default:0" json:"apply_count"`
	SaveCount  int `gorm:"not null;default:0" json:"save_count"`

	Applications []JobApplication `gorm:"foreignKey:JobID" json:"-"`
	Saves        []SavedJob       `gorm:"foreignKey:JobID" json:"-"`
}

// JobApplication records one user applying to one job. The composite
// unique index is the authority for duplicate detection.
type JobApplication struct {
	BaseModel
	JobID  string `gorm:"not null;uniqueIndex:idx_job_applicant" json:"job_id"`
	UserID string `gorm:"not null;uniqueIndex:idx_job_applicant;index" json:"user_id"`
}

type SavedJob struct {
	BaseModel
	JobID  string `gorm:"not null;uniqueIndex:idx_job_saver" json:"job_id"`
	UserID string `gorm:"not null;uniqueIndex:idx_job_saver;index" json:"user_id"`
}

// ValidContractType reports whether s is a known contract type.
func ValidContractType(s string) bool {
	switch ContractType(s) {
	case ContractFullTime, ContractPartTime, ContractContract, ContractInternship, ContractTemporary:
		return true
	}
	return false
}

// ValidWorkType reports whether s is a known work type.
func ValidWorkType(s string) bool {
	switch WorkType(s) {
	case WorkOnsite, WorkHybrid, WorkRemote:
		return true
	}
	return false
}
