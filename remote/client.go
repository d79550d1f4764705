// Package remote is the client for the external post/user/comment API.
// Every call is a single request/response attempt: no retries, no local
// timeouts. Callers pass a context and decide how long they will wait.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"orbit-social-client/models"
)

// APIError carries the status and message of a rejected remote call.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("remote API error (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("remote API error (%d)", e.StatusCode)
}

// HTTPClient talks to a dummyjson-style REST API. It holds no state of
// its own beyond the base URL and the underlying http.Client.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  http.DefaultClient,
	}
}

// apiUser is the wire shape of a user; the client collapses it to the
// User summary the caches embed.
type apiUser struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Username  string `json:"username"`
	Image     string `json:"image"`
}

func (u apiUser) summary() models.User {
	return models.User{
		ID:       u.ID,
		Name:     strings.TrimSpace(u.FirstName + " " + u.LastName),
		Username: u.Username,
		Image:    u.Image,
	}
}

type postsEnvelope struct {
	Posts []models.Post `json:"posts"`
}

type usersEnvelope struct {
	Users []apiUser `json:"users"`
}

type commentsEnvelope struct {
	Comments []models.Comment `json:"comments"`
}

// FetchPosts returns a bounded page of posts. Authors are not embedded;
// the feed cache joins them against FetchUsers.
func (c *HTTPClient) FetchPosts(ctx context.Context, limit int) ([]models.Post, error) {
	var env postsEnvelope
	if err := c.getJSON(ctx, fmt.Sprintf("/posts?limit=%d", limit), &env); err != nil {
		return nil, err
	}
	return env.Posts, nil
}

// FetchUsers returns a bounded page of user summaries.
func (c *HTTPClient) FetchUsers(ctx context.Context, limit int) ([]models.User, error) {
	var env usersEnvelope
	if err := c.getJSON(ctx, fmt.Sprintf("/users?limit=%d", limit), &env); err != nil {
		return nil, err
	}
	users := make([]models.User, 0, len(env.Users))
	for _, u := range env.Users {
		users = append(users, u.summary())
	}
	return users, nil
}

// FetchUser returns a single user summary by id.
func (c *HTTPClient) FetchUser(ctx context.Context, id int64) (models.User, error) {
	var u apiUser
	if err := c.getJSON(ctx, fmt.Sprintf("/users/%d", id), &u); err != nil {
		return models.User{}, err
	}
	return u.summary(), nil
}

// SearchPosts returns posts whose title partially matches q.
func (c *HTTPClient) SearchPosts(ctx context.Context, q string) ([]models.Post, error) {
	var env postsEnvelope
	if err := c.getJSON(ctx, "/posts/search?q="+url.QueryEscape(q), &env); err != nil {
		return nil, err
	}
	return env.Posts, nil
}

// SearchUsers returns users partially matching q.
func (c *HTTPClient) SearchUsers(ctx context.Context, q string) ([]models.User, error) {
	var env usersEnvelope
	if err := c.getJSON(ctx, "/users/search?q="+url.QueryEscape(q), &env); err != nil {
		return nil, err
	}
	users := make([]models.User, 0, len(env.Users))
	for _, u := range env.Users {
		users = append(users, u.summary())
	}
	return users, nil
}

// FetchComments returns the remote comments for one post.
func (c *HTTPClient) FetchComments(ctx context.Context, postID int64) ([]models.Comment, error) {
	var env commentsEnvelope
	if err := c.getJSON(ctx, fmt.Sprintf("/comments/post/%d", postID), &env); err != nil {
		return nil, err
	}
	return env.Comments, nil
}

// AddPost creates a post remotely and returns the record with its
// server-assigned identifier.
func (c *HTTPClient) AddPost(ctx context.Context, title, body string, userID int64) (models.Post, error) {
	payload := struct {
		Title  string `json:"title"`
		Body   string `json:"body"`
		UserID int64  `json:"userId"`
	}{title, body, userID}

	var created models.Post
	if err := c.postJSON(ctx, "/posts/add", payload, &created); err != nil {
		return models.Post{}, err
	}
	return created, nil
}

// Login exchanges credentials for an identity plus opaque token.
func (c *HTTPClient) Login(ctx context.Context, username, password string) (models.Identity, error) {
	var identity models.Identity
	err := c.postJSON(ctx, "/auth/login", models.LoginRequest{Username: username, Password: password}, &identity)
	if err != nil {
		return models.Identity{}, err
	}
	return identity, nil
}

func (c *HTTPClient) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", path, err)
	}
	return c.do(req, out)
}

func (c *HTTPClient) postJSON(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request body for %s: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *HTTPClient) do(req *http.Request, out interface{}) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("remote call to %s failed: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var body struct {
			Message string `json:"message"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&body); decodeErr == nil {
			apiErr.Message = body.Message
		}
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", req.URL.Path, err)
	}
	return nil
}
