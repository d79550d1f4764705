package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"orbit-social-client/auth"
	"orbit-social-client/comments"
	"orbit-social-client/models"
	"orbit-social-client/posts"
	"orbit-social-client/remote"
	"orbit-social-client/search"
	"orbit-social-client/store"
)

// stubRemote backs every cache component in the façade tests.
type stubRemote struct {
	posts    []models.Post
	users    []models.User
	comments map[int64][]models.Comment
	identity models.Identity
	loginErr error
}

func (s *stubRemote) FetchPosts(ctx context.Context, limit int) ([]models.Post, error) {
	return s.posts, nil
}

func (s *stubRemote) FetchUsers(ctx context.Context, limit int) ([]models.User, error) {
	return s.users, nil
}

func (s *stubRemote) AddPost(ctx context.Context, title, body string, userID int64) (models.Post, error) {
	return models.Post{ID: 151, Title: title, Body: body, UserID: userID}, nil
}

func (s *stubRemote) SearchUsers(ctx context.Context, q string) ([]models.User, error) {
	return nil, nil
}

func (s *stubRemote) SearchPosts(ctx context.Context, q string) ([]models.Post, error) {
	return s.posts, nil
}

func (s *stubRemote) FetchComments(ctx context.Context, postID int64) ([]models.Comment, error) {
	return s.comments[postID], nil
}

func (s *stubRemote) Login(ctx context.Context, username, password string) (models.Identity, error) {
	return s.identity, s.loginErr
}

func (s *stubRemote) FetchUser(ctx context.Context, id int64) (models.User, error) {
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return models.User{}, &remote.APIError{StatusCode: http.StatusNotFound, Message: "User not found"}
}

func newTestServer(r *stubRemote) (*Server, *store.MemoryStore) {
	st := store.NewMemoryStore()
	session := auth.NewSession(st, r, nil)
	session.SetCredentials(models.Identity{ID: 5, Username: "emilys", FirstName: "Emily", LastName: "Johnson", Token: "tok"})
	return &Server{
		Posts:    posts.NewCache(r, st, session, 50, 100),
		Comments: comments.NewCache(r, st, session),
		Search:   search.NewAggregator(r, 150, 100),
		Session:  session,
		Users:    r,
		Hub:      NewHub(),
	}, st
}

func TestRefreshThenToggleLike(t *testing.T) {
	r := &stubRemote{
		posts: []models.Post{{ID: 1, UserID: 5, Reactions: models.Reactions{Count: 3}}},
		users: []models.User{{ID: 5, Name: "Emily Johnson"}},
	}
	server, _ := newTestServer(r)
	ts := httptest.NewServer(server.Routes())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/feed/refresh", "application/json", nil)
	if err != nil {
		t.Fatalf("refresh error: %v", err)
	}
	var feed feedResponse
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	resp.Body.Close()
	if feed.Status != models.StatusSucceeded || len(feed.Posts) != 1 {
		t.Fatalf("unexpected feed: %+v", feed)
	}

	resp, err = http.Post(ts.URL+"/posts/1/like", "application/json", nil)
	if err != nil {
		t.Fatalf("like error: %v", err)
	}
	var like models.LikeResponse
	if err := json.NewDecoder(resp.Body).Decode(&like); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	resp.Body.Close()
	if !like.Liked || like.LikeCount != 4 {
		t.Fatalf("unexpected like response: %+v", like)
	}

	resp, err = http.Post(ts.URL+"/posts/999/like", "application/json", nil)
	if err != nil {
		t.Fatalf("like error: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for absent post, got %d", resp.StatusCode)
	}
}

func TestCommentEndpoints(t *testing.T) {
	r := &stubRemote{
		comments: map[int64][]models.Comment{6: {{ID: 1, PostID: 6, Body: "remote"}}},
	}
	server, _ := newTestServer(r)
	ts := httptest.NewServer(server.Routes())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/posts/6/comments", "application/json", strings.NewReader(`{"body":"local"}`))
	if err != nil {
		t.Fatalf("create error: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/posts/6/comments")
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	var body commentsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	resp.Body.Close()
	if !body.Loaded || len(body.Comments) != 2 {
		t.Fatalf("expected merged local+remote list, got %+v", body)
	}
	if body.Comments[0].Body != "local" {
		t.Fatalf("local comment not at head: %+v", body.Comments)
	}

	resp, err = http.Post(ts.URL+"/posts/6/comments", "application/json", strings.NewReader(`{"body":"  "}`))
	if err != nil {
		t.Fatalf("create error: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank comment, got %d", resp.StatusCode)
	}
}

func TestSearchRejectsBlankQuery(t *testing.T) {
	server, _ := newTestServer(&stubRemote{})
	ts := httptest.NewServer(server.Routes())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/search?q=%20%20")
	if err != nil {
		t.Fatalf("search error: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank query, got %d", resp.StatusCode)
	}
}

func TestGetUserPassesThroughRemoteLookup(t *testing.T) {
	r := &stubRemote{users: []models.User{{ID: 5, Name: "Emily Johnson"}}}
	server, _ := newTestServer(r)
	ts := httptest.NewServer(server.Routes())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/users/5")
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	var user models.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	resp.Body.Close()
	if user.Name != "Emily Johnson" {
		t.Fatalf("unexpected user: %+v", user)
	}

	resp, err = http.Get(ts.URL + "/users/999")
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown user, got %d", resp.StatusCode)
	}
}

func TestLoginFailurePropagatesRemoteStatus(t *testing.T) {
	r := &stubRemote{loginErr: &remote.APIError{StatusCode: http.StatusBadRequest, Message: "Invalid credentials"}}
	st := store.NewMemoryStore()
	session := auth.NewSession(st, r, nil)
	server := &Server{
		Posts:    posts.NewCache(r, st, session, 50, 100),
		Comments: comments.NewCache(r, st, session),
		Search:   search.NewAggregator(r, 150, 100),
		Session:  session,
		Users:    r,
		Hub:      NewHub(),
	}
	ts := httptest.NewServer(server.Routes())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/login", "application/json", strings.NewReader(`{"username":"u","password":"bad"}`))
	if err != nil {
		t.Fatalf("login error: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/whoami")
	if err != nil {
		t.Fatalf("whoami error: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected anonymous 204, got %d", resp.StatusCode)
	}
}
