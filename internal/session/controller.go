// Package session is the client-side companion to the auth API: it
// holds the token pair, attaches the access token to outgoing requests,
// and transparently refreshes once when the server answers 401.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// ErrSessionExpired is returned when a refresh attempt fails; the
// caller must re-authenticate.
var ErrSessionExpired = errors.New("session expired, please log in again")

// ErrNotAuthenticated is returned when a request is made before Login
// or SetTokens.
var ErrNotAuthenticated = errors.New("not authenticated")

// TokenPair is what the auth endpoints hand back.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Controller manages one user's session against the API. It is safe
// for concurrent use: parallel 401s trigger exactly one refresh call
// and every waiter reuses its result.
type Controller struct {
	baseURL string
	client  *http.Client

	mu      sync.RWMutex
	tokens  TokenPair
	refresh singleflight.Group
}

func NewController(baseURL string, client *http.Client) *Controller {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Controller{baseURL: baseURL, client: client}
}

// SetTokens installs a token pair obtained out of band.
func (c *Controller) SetTokens(pair TokenPair) {
	c.mu.Lock()
	c.tokens = pair
	c.mu.Unlock()
}

// Tokens returns a copy of the current token pair.
func (c *Controller) Tokens() TokenPair {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tokens
}

// Login authenticates against the API and stores the resulting pair.
func (c *Controller) Login(ctx context.Context, email, password string) error {
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/v1/auth/login", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("login failed: %d %s", resp.StatusCode, string(data))
	}

	var pair TokenPair
	if err := json.NewDecoder(resp.Body).Decode(&pair); err != nil {
		return err
	}
	c.SetTokens(pair)
	return nil
}

// Do sends an authenticated request. On a 401 it refreshes the token
// pair and retries the request exactly once. The request body, if any,
// must have GetBody set (true for bytes.Reader and friends) so the
// retry can replay it.
func (c *Controller) Do(req *http.Request) (*http.Response, error) {
	access := c.Tokens().AccessToken
	if access == "" {
		return nil, ErrNotAuthenticated
	}

	resp, err := c.send(req, access)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	// Drain so the connection can be reused before retrying.
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	access, err = c.refreshTokens(req.Context(), access)
	if err != nil {
		return nil, err
	}

	if req.Body != nil {
		if req.GetBody == nil {
			return nil, errors.New("cannot retry request without GetBody")
		}
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		req.Body = body
	}
	return c.send(req, access)
}

func (c *Controller) send(req *http.Request, access string) (*http.Response, error) {
	req.Header.Set("Authorization", "Bearer "+access)
	return c.client.Do(req)
}

// refreshTokens exchanges the refresh token for a new pair. Concurrent
// callers are collapsed into a single upstream call; stale is the
// access token the caller saw fail, so a refresh that already happened
// is not repeated.
func (c *Controller) refreshTokens(ctx context.Context, stale string) (string, error) {
	v, err, _ := c.refresh.Do("refresh", func() (interface{}, error) {
		current := c.Tokens()
		if current.AccessToken != stale && current.AccessToken != "" {
			return current.AccessToken, nil
		}
		if current.RefreshToken == "" {
			return "", ErrSessionExpired
		}

		body, _ := json.Marshal(map[string]string{"refresh_token": current.RefreshToken})
		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			c.baseURL+"/api/v1/auth/refresh", bytes.NewReader(body))
		if err != nil {
			return "", err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return "", err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			io.Copy(io.Discard, resp.Body)
			c.SetTokens(TokenPair{})
			return "", ErrSessionExpired
		}

		var pair TokenPair
		if err := json.NewDecoder(resp.Body).Decode(&pair); err != nil {
			return "", err
		}
		c.SetTokens(pair)
		return pair.AccessToken, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Logout revokes the refresh token server-side and clears local state.
func (c *Controller) Logout(ctx context.Context) error {
	tokens := c.Tokens()
	c.SetTokens(TokenPair{})
	if tokens.RefreshToken == "" {
		return nil
	}

	body, _ := json.Marshal(map[string]string{"refresh_token": tokens.RefreshToken})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/v1/auth/logout", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return nil
}
