package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/trektales/trektalesbackend/models"
)

type Client struct {
	BaseURL string
	HTTP    *http.Client
	Session *Session

	// OnAuthExpired is the redirect-to-login hook; fired when a stale
	// session is detected and cleared.
	OnAuthExpired func()
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTP:    http.DefaultClient,
		Session: &Session{},
	}
}

type authResponse struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

type apiError struct {
	Status  int
	Message string `json:"message"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// do attaches the bearer credential only when one is held; an
// unauthenticated call goes out with no Authorization header at all.
func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Session.AccessToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := &apiError{Status: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		return apiErr
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*models.User, error) {
	var res authResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &res)
	if err != nil {
		return nil, err
	}
	c.Session.Set(res.User, res.AccessToken, res.RefreshToken)
	return res.User, nil
}

func (c *Client) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	var res authResponse
	err := c.do(ctx, http.MethodPost, "/auth/register", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	}, &res)
	if err != nil {
		return nil, err
	}
	c.Session.Set(res.User, res.AccessToken, res.RefreshToken)
	return res.User, nil
}

// Bootstrap resolves the current user at startup. A 401 means the held
// token is stale: all session material is cleared, the auth-expired
// hook fires, and ErrSessionExpired comes back instead of a panic or a
// raw API error.
func (c *Client) Bootstrap(ctx context.Context) (*models.User, error) {
	var res struct {
		User *models.User `json:"user"`
	}
	err := c.do(ctx, http.MethodGet, "/auth/me", nil, &res)
	if err != nil {
		var apiErr *apiError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			c.Session.Clear()
			if c.OnAuthExpired != nil {
				c.OnAuthExpired()
			}
			return nil, ErrSessionExpired
		}
		return nil, err
	}
	return res.User, nil
}

// Refresh trades the held refresh token for a new pair.
func (c *Client) Refresh(ctx context.Context) error {
	token := c.Session.RefreshToken()
	if token == "" {
		return ErrSessionExpired
	}
	var res authResponse
	err := c.do(ctx, http.MethodPost, "/auth/refresh", map[string]string{
		"refreshToken": token,
	}, &res)
	if err != nil {
		var apiErr *apiError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			c.Session.Clear()
			if c.OnAuthExpired != nil {
				c.OnAuthExpired()
			}
			return ErrSessionExpired
		}
		return err
	}
	user := c.Session.User()
	c.Session.Set(user, res.AccessToken, res.RefreshToken)
	return nil
}

// Logout notifies the server best-effort and always clears local
// state: a network partition must not trap the user in a logged-in UI.
func (c *Client) Logout(ctx context.Context) {
	_ = c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
	c.Session.Clear()
}

// PostView is the slice of post state the like widget renders.
type PostView struct {
	ID         string
	Liked      bool
	LikesCount int
}

type likeResponse struct {
	Liked      bool `json:"liked"`
	LikesCount int  `json:"likesCount"`
}

// ToggleLike applies the optimistic-update contract: flip the local
// state immediately, then either adopt the server's authoritative
// answer or roll the flip back on failure. The view is never left in
// the tentative state after an error.
func (c *Client) ToggleLike(ctx context.Context, view *PostView) error {
	prevLiked, prevCount := view.Liked, view.LikesCount

	// tentative local mutation
	if view.Liked {
		view.Liked = false
		view.LikesCount--
	} else {
		view.Liked = true
		view.LikesCount++
	}

	var res likeResponse
	err := c.do(ctx, http.MethodPost, "/blogs/"+view.ID+"/like", nil, &res)
	if err != nil {
		// roll back
		view.Liked = prevLiked
		view.LikesCount = prevCount
		return err
	}

	// server-confirmed state replaces the tentative one
	view.Liked = res.Liked
	view.LikesCount = res.LikesCount
	return nil
}
