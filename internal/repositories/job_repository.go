package repositories

import (
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"jobboard_backend/internal/models"
)

var (
	ErrJobNotFound    = errors.New("job not found")
	ErrAlreadyApplied = errors.New("already applied")
	ErrAlreadySaved   = errors.New("already saved")
	ErrNotApplied     = errors.New("not applied")
	ErrNotSaved       = errors.New("not saved")
)

// JobFilter narrows List results. Zero values are no-ops.
type JobFilter struct {
	Search       string
	ContractType string
	WorkType     string
	Source       string
	PostedBy     string
	Page         int
	PageSize     int
}

type JobRepository interface {
	FindByID(db *gorm.DB, id string) (*models.Job, error)
	FindByIDIncludingDeleted(db *gorm.DB, id string) (*models.Job, error)
	Create(db *gorm.DB, job *models.Job) error
	Update(db *gorm.DB, job *models.Job) error
	SoftDelete(db *gorm.DB, id string) error
	List(db *gorm.DB, filter JobFilter) ([]models.Job, int64, error)

	Apply(db *gorm.DB, jobID, userID string) error
	Unapply(db *gorm.DB, jobID, userID string) error
	Save(db *gorm.DB, jobID, userID string) error
	Unsave(db *gorm.DB, jobID, userID string) error
	AppliedJobs(db *gorm.DB, userID string) ([]models.Job, error)
	SavedJobs(db *gorm.DB, userID string) ([]models.Job, error)

	UpsertExternal(db *gorm.DB, job *models.Job) error
}

type jobRepository struct{}

func NewJobRepository() JobRepository {
	return &jobRepository{}
}

func (r *jobRepository) FindByID(db *gorm.DB, id string) (*models.Job, error) {
	var job models.Job
	err := db.First(&job, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	return &job, nil
}

// FindByIDIncludingDeleted resolves soft-deleted jobs too, for
// applied/saved history views.
func (r *jobRepository) FindByIDIncludingDeleted(db *gorm.DB, id string) (*models.Job, error) {
	var job models.Job
	err := db.Unscoped().First(&job, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	return &job, nil
}

func (r *jobRepository) Create(db *gorm.DB, job *models.Job) error {
	return db.Create(job).Error
}

func (r *jobRepository) Update(db *gorm.DB, job *models.Job) error {
	result := db.Model(job).Updates(map[string]interface{}{
		"title":         job.Title,
		"company":       job.Company,
		"description":   job.Description,
		"location":      job.Location,
		"salary":        job.Salary,
		"contract_type": job.ContractType,
		"work_type":     job.WorkType,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrJobNotFound
	}
	return nil
}

func (r *jobRepository) SoftDelete(db *gorm.DB, id string) error {
	result := db.Delete(&models.Job{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrJobNotFound
	}
	return nil
}

func (r *jobRepository) List(db *gorm.DB, filter JobFilter) ([]models.Job, int64, error) {
	query := db.Model(&models.Job{})

	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where(
			"lower(title) LIKE ? OR lower(company) LIKE ? OR lower(location) LIKE ?",
			pattern, pattern, pattern,
		)
	}
	if filter.ContractType != "" {
		query = query.Where("contract_type = ?", filter.ContractType)
	}
	if filter.WorkType != "" {
		query = query.Where("work_type = ?", filter.WorkType)
	}
	if filter.Source != "" {
		query = query.Where("source = ?", filter.Source)
	}
	if filter.PostedBy != "" {
		query = query.Where("posted_by = ?", filter.PostedBy)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	var jobs []models.Job
	err := query.
		Order("created_at DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&jobs).Error
	if err != nil {
		return nil, 0, err
	}

	return jobs, total, nil
}

// Apply inserts the application row and bumps the counter in one
// transaction, so concurrent applicants cannot lose updates. The
// composite unique index backs up the duplicate pre-check under races.
func (r *jobRepository) Apply(db *gorm.DB, jobID, userID string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.JobApplication{}).
			Where("job_id = ? AND user_id = ?", jobID, userID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadyApplied
		}

		if err := tx.Create(&models.JobApplication{JobID: jobID, UserID: userID}).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyApplied
			}
			return err
		}

		return r.bumpCounter(tx, jobID, "apply_count", +1)
	})
}

func (r *jobRepository) Unapply(db *gorm.DB, jobID, userID string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("job_id = ? AND user_id = ?", jobID, userID).
			Delete(&models.JobApplication{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotApplied
		}
		return r.bumpCounter(tx, jobID, "apply_count", -1)
	})
}

func (r *jobRepository) Save(db *gorm.DB, jobID, userID string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.SavedJob{}).
			Where("job_id = ? AND user_id = ?", jobID, userID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadySaved
		}

		if err := tx.Create(&models.SavedJob{JobID: jobID, UserID: userID}).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadySaved
			}
			return err
		}

		return r.bumpCounter(tx, jobID, "save_count", +1)
	})
}

func (r *jobRepository) Unsave(db *gorm.DB, jobID, userID string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("job_id = ? AND user_id = ?", jobID, userID).
			Delete(&models.SavedJob{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotSaved
		}
		return r.bumpCounter(tx, jobID, "save_count", -1)
	})
}

// bumpCounter increments atomically at the store level. Soft-deleted
// jobs still accept counter updates (unapply after delete).
func (r *jobRepository) bumpCounter(tx *gorm.DB, jobID, column string, delta int) error {
	return tx.Unscoped().Model(&models.Job{}).
		Where("id = ?", jobID).
		UpdateColumn(column, gorm.Expr(column+" + ?", delta)).Error
}

// AppliedJobs returns jobs the user applied to, including soft-deleted
// ones so history stays intact.
func (r *jobRepository) AppliedJobs(db *gorm.DB, userID string) ([]models.Job, error) {
	var jobs []models.Job
	err := db.Unscoped().
		Joins("JOIN job_applications ON job_applications.job_id = jobs.id").
		Where("job_applications.user_id = ?", userID).
		Order("job_applications.created_at DESC").
		Find(&jobs).Error
	return jobs, err
}

func (r *jobRepository) SavedJobs(db *gorm.DB, userID string) ([]models.Job, error) {
	var jobs []models.Job
	err := db.Unscoped().
		Joins("JOIN saved_jobs ON saved_jobs.job_id = jobs.id").
		Where("saved_jobs.user_id = ?", userID).
		Order("saved_jobs.created_at DESC").
		Find(&jobs).Error
	return jobs, err
}

// UpsertExternal inserts or refreshes a synced job keyed by external_id.
// Apply/save counters belong to this store and are never overwritten.
func (r *jobRepository) UpsertExternal(db *gorm.DB, job *models.Job) error {
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "external_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title", "company", "description", "location", "salary",
			"contract_type", "work_type", "source_meta", "updated_at",
		}),
	}).Create(job).Error
}
