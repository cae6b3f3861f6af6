package services

import (
	"gorm.io/gorm"

	"jobboard_backend/internal/logger"
	"jobboard_backend/internal/models"
	"jobboard_backend/internal/repositories"
	"jobboard_backend/internal/services/dto"
	"jobboard_backend/internal/storage"
	"jobboard_backend/pkg/apperrors"
)

type UserService interface {
	Dashboard(db *gorm.DB, userID string) (*dto.DashboardResponse, error)
	UpdateProfile(db *gorm.DB, userID string, req *dto.UpdateProfileRequest, avatarURL string) (*dto.UserResponse, error)
	AdminStats(db *gorm.DB) (*dto.AdminStatsResponse, error)
}

type userService struct {
	userRepo repositories.UserRepository
	jobRepo  repositories.JobRepository
	storage  storage.Storage
}

func NewUserService(userRepo repositories.UserRepository, jobRepo repositories.JobRepository, store storage.Storage) UserService {
	return &userService{
		userRepo: userRepo,
		jobRepo:  jobRepo,
		storage:  store,
	}
}

// Dashboard aggregates the user with their applied and saved jobs.
// Soft-deleted jobs stay visible here: the history outlives the posting.
func (s *userService) Dashboard(db *gorm.DB, userID string) (*dto.DashboardResponse, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}

	applied, err := s.jobRepo.AppliedJobs(db, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	saved, err := s.jobRepo.SavedJobs(db, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.DashboardResponse{
		User:        dto.NewUserResponse(user),
		AppliedJobs: dto.NewJobResponseList(applied),
		SavedJobs:   dto.NewJobResponseList(saved),
	}, nil
}

func (s *userService) UpdateProfile(db *gorm.DB, userID string, req *dto.UpdateProfileRequest, avatarURL string) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Email != "" && req.Email != user.Email {
		if _, err := s.userRepo.FindByEmail(db, req.Email); err == nil {
			return nil, apperrors.ErrEmailAlreadyExists
		}
		user.Email = req.Email
	}
	oldAvatar := user.AvatarURL
	if avatarURL != "" {
		user.AvatarURL = avatarURL
	}

	if err := s.userRepo.Update(db, user); err != nil {
		return nil, apperrors.InternalError(err)
	}

	// Best effort: the replaced avatar file is orphaned either way.
	if avatarURL != "" && oldAvatar != "" && oldAvatar != avatarURL && s.storage != nil {
		if err := s.storage.Delete(oldAvatar); err != nil {
			logger.Warn("Failed to remove replaced avatar", "url", oldAvatar, "error", err)
		}
	}

	return dto.NewUserResponse(user), nil
}

// AdminStats aggregates user counts for the admin dashboard.
func (s *userService) AdminStats(db *gorm.DB) (*dto.AdminStatsResponse, error) {
	users, err := s.userRepo.CountByRole(db, models.UserRoleUser)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	admins, err := s.userRepo.CountByRole(db, models.UserRoleAdmin)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return &dto.AdminStatsResponse{Users: users, Admins: admins}, nil
}
