// Package api is the thin view adapter over the cache layer: every
// handler reads a cache snapshot or dispatches one mutation operation,
// then pushes a change event to websocket subscribers. No cache state is
// owned here.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"orbit-social-client/auth"
	"orbit-social-client/comments"
	"orbit-social-client/models"
	"orbit-social-client/posts"
	"orbit-social-client/remote"
	"orbit-social-client/search"
)

type Server struct {
	Posts    *posts.Cache
	Comments *comments.Cache
	Search   *search.Aggregator
	Session  *auth.Session
	Users    UserFetcher
	Hub      *Hub
}

// UserFetcher resolves a single user profile straight from the remote
// source; profiles are not cached.
type UserFetcher interface {
	FetchUser(ctx context.Context, id int64) (models.User, error)
}

// Routes builds the façade mux. Method-prefixed patterns, one route per
// cache operation plus snapshot reads.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /login", s.LoginHandler)
	mux.HandleFunc("POST /logout", s.LogoutHandler)
	mux.HandleFunc("GET /whoami", s.WhoAmIHandler)

	mux.HandleFunc("GET /feed", s.GetFeedHandler)
	mux.HandleFunc("POST /feed/refresh", s.RefreshFeedHandler)
	mux.HandleFunc("POST /posts", s.CreatePostHandler)
	mux.HandleFunc("POST /posts/{postID}/like", s.ToggleLikePostHandler)

	mux.HandleFunc("GET /posts/{postID}/comments", s.GetCommentsForPostHandler)
	mux.HandleFunc("POST /posts/{postID}/comments", s.CreateCommentHandler)

	mux.HandleFunc("GET /search", s.SearchHandler)
	mux.HandleFunc("GET /users/{userID}", s.GetUserHandler)

	mux.HandleFunc("GET /ws", s.Hub.Handler)

	return mux
}

type feedResponse struct {
	Posts  []models.Post `json:"posts"`
	Status models.Status `json:"status"`
	Error  string        `json:"error,omitempty"`
}

// GetFeedHandler returns the current feed snapshot without touching the
// remote source.
func (s *Server) GetFeedHandler(w http.ResponseWriter, r *http.Request) {
	feed, status, errMsg := s.Posts.Snapshot()
	writeJSON(w, http.StatusOK, feedResponse{Posts: feed, Status: status, Error: errMsg})
}

// RefreshFeedHandler triggers a feed load and returns the resulting
// snapshot. Retrying after a failure is just calling this again.
func (s *Server) RefreshFeedHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.Posts.LoadFeed(r.Context()); err != nil {
		log.Printf("Feed refresh failed: %v", err)
	}
	feed, status, errMsg := s.Posts.Snapshot()
	writeJSON(w, http.StatusOK, feedResponse{Posts: feed, Status: status, Error: errMsg})

	go s.Hub.Broadcast("feed_updated", map[string]interface{}{"count": len(feed), "status": status})
}

// CreatePostHandler dispatches a remote-confirmed post creation.
func (s *Server) CreatePostHandler(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Error reading request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		http.Error(w, "Post title cannot be empty", http.StatusBadRequest)
		return
	}

	created, err := s.Posts.CreatePost(r.Context(), req.Title, req.Body)
	if err != nil {
		writeRemoteError(w, err, "Failed to create post")
		return
	}
	writeJSON(w, http.StatusCreated, created)

	go s.Hub.Broadcast("post_created", created)
}

// ToggleLikePostHandler flips the liked flag on a cached post. Pure
// local operation; absent posts are a 404, not a cache mutation.
func (s *Server) ToggleLikePostHandler(w http.ResponseWriter, r *http.Request) {
	postID, err := parsePostID(r)
	if err != nil {
		http.Error(w, "Invalid post ID in URL path", http.StatusBadRequest)
		return
	}

	post, ok := s.Posts.ToggleLike(postID)
	if !ok {
		http.Error(w, "Post not found", http.StatusNotFound)
		return
	}

	resp := models.LikeResponse{PostID: post.ID, Liked: post.Liked, LikeCount: post.Reactions.Likes()}
	writeJSON(w, http.StatusOK, resp)

	go s.Hub.Broadcast("like_updated", resp)
}

type commentsResponse struct {
	PostID   int64            `json:"post_id"`
	Comments []models.Comment `json:"comments"`
	Loaded   bool             `json:"loaded"`
	Status   models.Status    `json:"status"`
	Error    string           `json:"error,omitempty"`
}

// GetCommentsForPostHandler loads a post's comments on first access and
// returns the merged list. Loaded stays false only when the fetch failed
// before any list existed, so the view can tell "loading" from
// "confirmed empty".
func (s *Server) GetCommentsForPostHandler(w http.ResponseWriter, r *http.Request) {
	postID, err := parsePostID(r)
	if err != nil {
		http.Error(w, "Invalid post ID in URL path", http.StatusBadRequest)
		return
	}

	if err := s.Comments.LoadComments(r.Context(), postID); err != nil {
		log.Printf("Comment load for post %d failed: %v", postID, err)
	}

	list, loaded := s.Comments.Get(postID)
	status, errMsg := s.Comments.Status()
	writeJSON(w, http.StatusOK, commentsResponse{
		PostID:   postID,
		Comments: list,
		Loaded:   loaded,
		Status:   status,
		Error:    errMsg,
	})
}

// CreateCommentHandler authors a client-local comment.
func (s *Server) CreateCommentHandler(w http.ResponseWriter, r *http.Request) {
	postID, err := parsePostID(r)
	if err != nil {
		http.Error(w, "Invalid post ID in URL path", http.StatusBadRequest)
		return
	}

	var req models.CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Error reading request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	comment, err := s.Comments.AddLocalComment(postID, req.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusCreated, comment)

	go s.Hub.Broadcast("comment_added", comment)
}

type searchResponse struct {
	models.SearchResult
	Status models.Status `json:"status"`
	Error  string        `json:"error,omitempty"`
}

// SearchHandler runs a search and returns the committed result. The
// blank-query guard lives here: the aggregator is never invoked for an
// empty trimmed query. Debouncing is the consumer's job.
func (s *Server) SearchHandler(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		http.Error(w, "Search query cannot be empty", http.StatusBadRequest)
		return
	}

	err := s.Search.Search(r.Context(), query)
	if err != nil {
		log.Printf("Search for %q failed: %v", query, err)
	} else {
		// Best-effort author enrichment; never blocks the primary result.
		go s.Search.EnrichAuthors(context.Background())
	}

	result, status, errMsg := s.Search.Result()
	writeJSON(w, http.StatusOK, searchResponse{SearchResult: result, Status: status, Error: errMsg})

	go s.Hub.Broadcast("search_updated", map[string]interface{}{"query": result.Query})
}

// GetUserHandler passes a profile lookup through to the remote source.
func (s *Server) GetUserHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.PathValue("userID"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid user ID in URL path", http.StatusBadRequest)
		return
	}

	user, err := s.Users.FetchUser(r.Context(), userID)
	if err != nil {
		writeRemoteError(w, err, "Failed to fetch user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// LoginHandler forwards credentials to the remote authentication
// endpoint through the session.
func (s *Server) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Error reading request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Username == "" || req.Password == "" {
		http.Error(w, "Username and password are required", http.StatusBadRequest)
		return
	}

	if err := s.Session.Login(r.Context(), req.Username, req.Password); err != nil {
		_, errMsg := s.Session.Status()
		writeRemoteError(w, err, errMsg)
		return
	}

	identity, _ := s.Session.Identity()
	writeJSON(w, http.StatusOK, identity)

	go s.Hub.Broadcast("session_changed", map[string]interface{}{"user_id": identity.ID})
}

func (s *Server) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	s.Session.Logout()
	w.WriteHeader(http.StatusNoContent)

	go s.Hub.Broadcast("session_changed", map[string]interface{}{"user_id": int64(0)})
}

// WhoAmIHandler returns the live identity, or 204 when anonymous.
func (s *Server) WhoAmIHandler(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.Session.Identity()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, identity)
}

func parsePostID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("postID"), 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// writeRemoteError maps a remote API rejection onto the façade response,
// falling back to a bad-gateway for unreachable remotes.
func writeRemoteError(w http.ResponseWriter, err error, fallbackMsg string) {
	var apiErr *remote.APIError
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = fallbackMsg
		}
		http.Error(w, msg, apiErr.StatusCode)
		return
	}
	http.Error(w, fallbackMsg+": "+err.Error(), http.StatusBadGateway)
}
