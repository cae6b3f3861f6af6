package dto

import (
	"time"

	"jobboard_backend/internal/models"
)

// UserResponse is the public user view; it never carries the hash.
type UserResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Role      models.UserRole `json:"role"`
	AvatarURL string          `json:"avatar_url,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

func NewUserResponse(user *models.User) *UserResponse {
	return &UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		AvatarURL: user.AvatarURL,
		CreatedAt: user.CreatedAt,
	}
}

// UpdateProfileRequest is bound from the multipart form; the avatar
// file is handled separately by the handler.
type UpdateProfileRequest struct {
	Name  string `form:"name" json:"name"`
	Email string `form:"email" json:"email" validate:"omitempty,email"`
}

type DashboardResponse struct {
	User        *UserResponse `json:"user"`
	AppliedJobs []JobResponse `json:"applied_jobs"`
	SavedJobs   []JobResponse `json:"saved_jobs"`
}

// AdminStatsResponse backs the admin-only stats endpoint.
type AdminStatsResponse struct {
	Users  int64 `json:"users"`
	Admins int64 `json:"admins"`
}
