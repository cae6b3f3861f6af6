package services

import (
	"gorm.io/gorm"

	"jobboard_backend/internal/models"
	"jobboard_backend/internal/repositories"
	"jobboard_backend/internal/services/dto"
	"jobboard_backend/pkg/apperrors"
)

type JobService interface {
	List(db *gorm.DB, userID string, req *dto.ListJobsRequest) (*dto.JobListResponse, error)
	Get(db *gorm.DB, jobID string) (*dto.JobResponse, error)
	Create(db *gorm.DB, userID string, req *dto.CreateJobRequest) (*dto.JobResponse, error)
	Update(db *gorm.DB, userID, jobID string, req *dto.UpdateJobRequest) (*dto.JobResponse, error)
	Delete(db *gorm.DB, userID, jobID string) error

	Apply(db *gorm.DB, userID, jobID string) error
	Unapply(db *gorm.DB, userID, jobID string) error
	Save(db *gorm.DB, userID, jobID string) error
	Unsave(db *gorm.DB, userID, jobID string) error
}

type jobService struct {
	jobRepo repositories.JobRepository
}

func NewJobService(jobRepo repositories.JobRepository) JobService {
	return &jobService{jobRepo: jobRepo}
}

func (s *jobService) List(db *gorm.DB, userID string, req *dto.ListJobsRequest) (*dto.JobListResponse, error) {
	filter := repositories.JobFilter{
		Search:       req.Search,
		ContractType: req.ContractType,
		WorkType:     req.WorkType,
		Source:       req.Source,
		Page:         req.Page,
		PageSize:     req.Limit,
	}
	if req.Mine {
		filter.PostedBy = userID
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	jobs, total, err := s.jobRepo.List(db, filter)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	totalPages := int((total + int64(filter.PageSize) - 1) / int64(filter.PageSize))

	return &dto.JobListResponse{
		Jobs:       dto.NewJobResponseList(jobs),
		Total:      total,
		Page:       filter.Page,
		TotalPages: totalPages,
	}, nil
}

func (s *jobService) Get(db *gorm.DB, jobID string) (*dto.JobResponse, error) {
	job, err := s.jobRepo.FindByID(db, jobID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrJobNotFound) {
			return nil, apperrors.ErrJobNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	resp := dto.NewJobResponse(job)
	return &resp, nil
}

func (s *jobService) Create(db *gorm.DB, userID string, req *dto.CreateJobRequest) (*dto.JobResponse, error) {
	job := &models.Job{
		Title:        req.Title,
		Company:      req.Company,
		Description:  req.Description,
		Location:     req.Location,
		Salary:       req.Salary,
		ContractType: models.ContractType(req.ContractType),
		WorkType:     models.WorkType(req.WorkType),
		Source:       "local",
		PostedBy:     &userID,
	}

	if err := s.jobRepo.Create(db, job); err != nil {
		return nil, apperrors.InternalError(err)
	}

	resp := dto.NewJobResponse(job)
	return &resp, nil
}

func (s *jobService) Update(db *gorm.DB, userID, jobID string, req *dto.UpdateJobRequest) (*dto.JobResponse, error) {
	job, err := s.ownedJob(db, userID, jobID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		job.Title = *req.Title
	}
	if req.Company != nil {
		job.Company = *req.Company
	}
	if req.Description != nil {
		job.Description = *req.Description
	}
	if req.Location != nil {
		job.Location = *req.Location
	}
	if req.Salary != nil {
		job.Salary = *req.Salary
	}
	if req.ContractType != nil {
		job.ContractType = models.ContractType(*req.ContractType)
	}
	if req.WorkType != nil {
		job.WorkType = models.WorkType(*req.WorkType)
	}

	if err := s.jobRepo.Update(db, job); err != nil {
		return nil, apperrors.InternalError(err)
	}

	resp := dto.NewJobResponse(job)
	return &resp, nil
}

// Delete is a soft delete so applied/saved references keep resolving.
func (s *jobService) Delete(db *gorm.DB, userID, jobID string) error {
	if _, err := s.ownedJob(db, userID, jobID); err != nil {
		return err
	}
	if err := s.jobRepo.SoftDelete(db, jobID); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *jobService) Apply(db *gorm.DB, userID, jobID string) error {
	if _, err := s.jobRepo.FindByID(db, jobID); err != nil {
		return apperrors.ErrJobNotFound
	}

	err := s.jobRepo.Apply(db, jobID, userID)
	if apperrors.Is(err, repositories.ErrAlreadyApplied) {
		return apperrors.ErrAlreadyApplied
	}
	if err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *jobService) Unapply(db *gorm.DB, userID, jobID string) error {
	// Soft-deleted jobs still accept withdrawals: the application
	// belongs to the user, not to the posting.
	if _, err := s.jobRepo.FindByIDIncludingDeleted(db, jobID); err != nil {
		return apperrors.ErrJobNotFound
	}

	err := s.jobRepo.Unapply(db, jobID, userID)
	if apperrors.Is(err, repositories.ErrNotApplied) {
		return apperrors.ErrNotApplied
	}
	if err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *jobService) Save(db *gorm.DB, userID, jobID string) error {
	if _, err := s.jobRepo.FindByID(db, jobID); err != nil {
		return apperrors.ErrJobNotFound
	}

	err := s.jobRepo.Save(db, jobID, userID)
	if apperrors.Is(err, repositories.ErrAlreadySaved) {
		return apperrors.ErrAlreadySaved
	}
	if err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *jobService) Unsave(db *gorm.DB, userID, jobID string) error {
	if _, err := s.jobRepo.FindByIDIncludingDeleted(db, jobID); err != nil {
		return apperrors.ErrJobNotFound
	}

	err := s.jobRepo.Unsave(db, jobID, userID)
	if apperrors.Is(err, repositories.ErrNotSaved) {
		return apperrors.ErrNotSaved
	}
	if err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

// ownedJob loads a job and checks the caller posted it. A job someone
// else posted gets the same 404 as an absent one.
func (s *jobService) ownedJob(db *gorm.DB, userID, jobID string) (*models.Job, error) {
	job, err := s.jobRepo.FindByID(db, jobID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrJobNotFound) {
			return nil, apperrors.ErrJobNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	if job.PostedBy == nil || *job.PostedBy != userID {
		return nil, apperrors.ErrNotJobOwner
	}
	return job, nil
}
