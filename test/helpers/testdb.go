package helpers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"jobboard_backend/internal/models"
)

// CreateUser inserts a user, hashing the password when a raw one was
// passed in the PasswordHash field.
func CreateUser(t *testing.T, db *gorm.DB, user *models.User) error {
	if user.PasswordHash != "" && !strings.HasPrefix(user.PasswordHash, "$2a$") {
		hashed, err := bcrypt.GenerateFromPassword([]byte(user.PasswordHash), bcrypt.DefaultCost)
		if err != nil {
			t.Fatalf("failed to hash password: %v", err)
		}
		user.PasswordHash = string(hashed)
	}
	if user.Role == "" {
		user.Role = models.UserRoleUser
	}
	user.Email = strings.ToLower(user.Email)

	return db.Create(user).Error
}

// AuthTokens is the token pair a login returns.
type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// CreateAndLoginUser creates a user directly and logs in via the API.
func CreateAndLoginUser(t *testing.T, ts *TestServer, name, email, password string) (AuthTokens, *models.User) {
	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: password,
	}
	require.NoError(t, CreateUser(t, ts.DB, user))

	loginBody := map[string]interface{}{
		"email":    email,
		"password": password,
	}
	res, bodyStr := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/login", "", loginBody)
	require.Equal(t, http.StatusOK, res.StatusCode, "login should succeed, got: "+bodyStr)

	var tokens AuthTokens
	require.NoError(t, json.Unmarshal([]byte(bodyStr), &tokens))
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)

	user.PasswordHash = password
	return tokens, user
}

// NewLoggedInUser is CreateAndLoginUser with a generated unique email.
func NewLoggedInUser(t *testing.T, ts *TestServer) (AuthTokens, *models.User) {
	email := fmt.Sprintf("user_%d@test.com", time.Now().UnixNano())
	return CreateAndLoginUser(t, ts, "Test User", email, "password123")
}

// CreateTestJob inserts a job posted by the given user.
func CreateTestJob(t *testing.T, db *gorm.DB, postedBy, title string) *models.Job {
	job := &models.Job{
		Title:        title,
		Company:      "Test Company",
		Description:  "A job used only in tests, long enough to validate.",
		Location:     "Remote",
		ContractType: models.ContractFullTime,
		WorkType:     models.WorkRemote,
		Source:       "local",
		PostedBy:     &postedBy,
	}
	require.NoError(t, db.Create(job).Error)
	return job
}
