package models

import "time"

type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

type User struct {
	BaseModel
	Name         string   `gorm:"not null" json:"name"`
	Email        string   `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string   `gorm:"not null" json:"-"`
	Role         UserRole `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
	AvatarURL    string   `json:"avatar_url,omitempty"`

	// Relations
	RefreshTokens []RefreshToken   `gorm:"foreignKey:UserID" json:"-"`
	Applications  []JobApplication `gorm:"foreignKey:UserID" json:"-"`
	SavedJobs     []SavedJob       `gorm:"foreignKey:UserID" json:"-"`
}

// RefreshToken is the server-side half of a session: deleting the row
// invalidates the refresh path even though access tokens stay stateless.
type RefreshToken struct {
	BaseModel
	UserID    string    `gorm:"not null;index"`
	Token     string    `gorm:"not null;uniqueIndex"`
	ExpiresAt time.Time `gorm:"not null"`
}
