package integration_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobboard_backend/internal/auth"
	"jobboard_backend/internal/config"
	"jobboard_backend/internal/services"
	"jobboard_backend/test/helpers"
)

func TestRegisterAndLogin(t *testing.T) {
	t.Parallel()
	ts := GetTestServer(t)

	email := fmt.Sprintf("register_%d@test.com", time.Now().UnixNano())
	registerBody := map[string]interface{}{
		"name":     "New User",
		"email":    email,
		"password": "super_password123",
	}

	regRes, regBodyStr := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/register", "", registerBody)
	assert.Equal(t, http.StatusCreated, regRes.StatusCode, regBodyStr)
	assert.Contains(t, regBodyStr, "access_token")
	assert.Contains(t, regBodyStr, "refresh_token")
	assert.NotContains(t, regBodyStr, "password")

	// Second registration with the same email must conflict.
	dupRes, dupBodyStr := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/register", "", registerBody)
	assert.Equal(t, http.StatusConflict, dupRes.StatusCode, dupBodyStr)

	logRes, logBodyStr := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"email":    email,
		"password": "super_password123",
	})
	assert.Equal(t, http.StatusOK, logRes.StatusCode, logBodyStr)
	assert.Contains(t, logBodyStr, email)
}

func TestRegisterWeakPassword(t *testing.T) {
	t.Parallel()
	ts := GetTestServer(t)

	res, bodyStr := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/register", "", map[string]interface{}{
		"name":     "Weak",
		"email":    fmt.Sprintf("weak_%d@test.com", time.Now().UnixNano()),
		"password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode, bodyStr)
}

// Wrong password and unknown email must be indistinguishable.
func TestLoginInvalidCredentials(t *testing.T) {
	t.Parallel()
	ts := GetTestServer(t)

	_, user := helpers.NewLoggedInUser(t, ts)

	wrongPassRes, wrongPassBody := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"email":    user.Email,
		"password": "not_the_password",
	})
	unknownRes, unknownBody := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"email":    fmt.Sprintf("nobody_%d@test.com", time.Now().UnixNano()),
		"password": "whatever123",
	})

	assert.Equal(t, http.StatusUnauthorized, wrongPassRes.StatusCode)
	assert.Equal(t, http.StatusUnauthorized, unknownRes.StatusCode)

	var wrongPayload, unknownPayload map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(wrongPassBody), &wrongPayload))
	require.NoError(t, json.Unmarshal([]byte(unknownBody), &unknownPayload))
	assert.Equal(t, wrongPayload["error"], unknownPayload["error"])
}

func TestRefreshRotation(t *testing.T) {
	t.Parallel()
	ts := GetTestServer(t)

	tokens, _ := helpers.NewLoggedInUser(t, ts)

	refRes, refBodyStr := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/refresh", "", map[string]interface{}{
		"refresh_token": tokens.RefreshToken,
	})
	require.Equal(t, http.StatusOK, refRes.StatusCode, refBodyStr)

	var fresh helpers.AuthTokens
	require.NoError(t, json.Unmarshal([]byte(refBodyStr), &fresh))
	assert.NotEmpty(t, fresh.AccessToken)
	assert.NotEqual(t, tokens.RefreshToken, fresh.RefreshToken, "refresh must rotate the token")

	// The freshly minted access token is immediately usable.
	verRes, verBodyStr := ts.SendRequest(t, http.MethodGet, "/api/v1/auth/verify-token", fresh.AccessToken, nil)
	assert.Equal(t, http.StatusOK, verRes.StatusCode, verBodyStr)
	assert.Contains(t, verBodyStr, `"valid":true`)

	// The old refresh token was consumed by the rotation.
	oldRes, _ := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/refresh", "", map[string]interface{}{
		"refresh_token": tokens.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, oldRes.StatusCode)
}

func TestLogoutInvalidatesRefreshToken(t *testing.T) {
	t.Parallel()
	ts := GetTestServer(t)

	tokens, _ := helpers.NewLoggedInUser(t, ts)

	outRes, outBodyStr := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/logout", tokens.AccessToken, map[string]interface{}{
		"refresh_token": tokens.RefreshToken,
	})
	assert.Equal(t, http.StatusOK, outRes.StatusCode, outBodyStr)

	refRes, _ := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/refresh", "", map[string]interface{}{
		"refresh_token": tokens.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, refRes.StatusCode, "refresh after logout must fail")
}

func TestLogoutAllRevokesEverySession(t *testing.T) {
	t.Parallel()
	ts := GetTestServer(t)

	first, user := helpers.NewLoggedInUser(t, ts)

	// A second login from another device.
	secondRes, secondBodyStr := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"email":    user.Email,
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, secondRes.StatusCode, secondBodyStr)
	var second helpers.AuthTokens
	require.NoError(t, json.Unmarshal([]byte(secondBodyStr), &second))

	outRes, outBodyStr := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/logout-all", first.AccessToken, nil)
	require.Equal(t, http.StatusOK, outRes.StatusCode, outBodyStr)

	for _, refreshToken := range []string{first.RefreshToken, second.RefreshToken} {
		res, _ := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/refresh", "", map[string]interface{}{
			"refresh_token": refreshToken,
		})
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode, "every session's refresh token must be revoked")
	}
}

// The auth cookies must live exactly as long as the tokens they carry.
func TestAuthCookiesMatchTokenLifetimes(t *testing.T) {
	t.Parallel()
	ts := GetTestServer(t)

	_, user := helpers.NewLoggedInUser(t, ts)

	res, bodyStr := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"email":    user.Email,
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, res.StatusCode, bodyStr)

	cookies := map[string]*http.Cookie{}
	for _, c := range res.Cookies() {
		cookies[c.Name] = c
	}

	access := cookies["auth_token"]
	require.NotNil(t, access, "login must set the access token cookie")
	assert.Equal(t, config.AppConfig.JWT.TTLMinutes*60, access.MaxAge)

	refresh := cookies["refresh_token"]
	require.NotNil(t, refresh, "login must set the refresh token cookie")
	assert.Equal(t, int(services.RefreshTokenTTL.Seconds()), refresh.MaxAge)
}

func TestVerifyToken(t *testing.T) {
	t.Parallel()
	ts := GetTestServer(t)

	tokens, user := helpers.NewLoggedInUser(t, ts)

	okRes, okBodyStr := ts.SendRequest(t, http.MethodGet, "/api/v1/auth/verify-token", tokens.AccessToken, nil)
	assert.Equal(t, http.StatusOK, okRes.StatusCode, okBodyStr)
	assert.Contains(t, okBodyStr, user.Email)

	badRes, _ := ts.SendRequest(t, http.MethodGet, "/api/v1/auth/verify-token", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, badRes.StatusCode)
}

func TestExpiredAccessToken(t *testing.T) {
	t.Parallel()
	ts := GetTestServer(t)

	_, user := helpers.NewLoggedInUser(t, ts)

	expired, err := auth.GenerateTokenWithTTL(user.ID, user.Email, "user", -time.Minute)
	require.NoError(t, err)

	res, bodyStr := ts.SendRequest(t, http.MethodGet, "/api/v1/auth/dashboard", expired, nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode, bodyStr)
	assert.Contains(t, bodyStr, "expired")
}
