// Package comments is the entity cache mapping post id to an ordered,
// append-only comment list merged from remote and local sources.
package comments

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"orbit-social-client/auth"
	"orbit-social-client/models"
	"orbit-social-client/store"
)

// ErrEmptyComment rejects blank comment text before any state mutation.
var ErrEmptyComment = errors.New("comment text cannot be empty")

// Remote is the slice of the remote client the comment cache needs.
type Remote interface {
	FetchComments(ctx context.Context, postID int64) ([]models.Comment, error)
}

type Cache struct {
	mu      sync.RWMutex
	remote  Remote
	store   store.Store
	session *auth.Session

	byPost  map[int64][]models.Comment
	fetched map[int64]bool
	status  models.Status
	errMsg  string
	lastID  int64
}

func NewCache(r Remote, st store.Store, session *auth.Session) *Cache {
	c := &Cache{
		remote:  r,
		store:   st,
		session: session,
		byPost:  make(map[int64][]models.Comment),
		fetched: make(map[int64]bool),
		status:  models.StatusIdle,
	}
	c.rehydrate()
	return c
}

func (c *Cache) rehydrate() {
	raw, ok, err := c.store.Get(store.KeyCommentsByPost)
	if err != nil {
		log.Printf("Failed to read saved comments: %v", err)
		return
	}
	if !ok {
		return
	}
	var byPost map[int64][]models.Comment
	if err := json.Unmarshal([]byte(raw), &byPost); err != nil {
		log.Printf("Discarding unreadable saved comments: %v", err)
		return
	}
	c.byPost = byPost
}

// LoadComments fetches a post's remote comments the first time it is
// asked for that post, merging them into any locally authored comments.
// Existing entries keep priority on identifier collision; an empty
// remote result leaves the existing list unchanged. Subsequent calls
// for the same post are pure lookups.
func (c *Cache) LoadComments(ctx context.Context, postID int64) error {
	c.mu.RLock()
	alreadyFetched := c.fetched[postID]
	c.mu.RUnlock()
	if alreadyFetched {
		return nil
	}

	c.mu.Lock()
	c.status = models.StatusLoading
	c.errMsg = ""
	c.mu.Unlock()

	remoteComments, err := c.remote.FetchComments(ctx, postID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.status = models.StatusFailed
		c.errMsg = err.Error()
		return err
	}

	existing := c.byPost[postID]
	merged := existing
	if len(remoteComments) > 0 {
		seen := make(map[int64]bool, len(existing))
		for _, e := range existing {
			seen[e.ID] = true
		}
		merged = append([]models.Comment{}, existing...)
		for _, rc := range remoteComments {
			if seen[rc.ID] {
				continue
			}
			merged = append(merged, rc)
		}
	}
	if merged == nil {
		// Confirmed empty, distinct from never loaded.
		merged = []models.Comment{}
	}

	c.byPost[postID] = merged
	c.fetched[postID] = true
	c.status = models.StatusSucceeded
	c.persistLocked()
	return nil
}

// AddLocalComment authors a comment visible in this client only: the
// remote API is never called. The identifier is synthesized
// monotonically from the current time and the comment goes to the head
// of the post's list.
func (c *Cache) AddLocalComment(postID int64, body string) (models.Comment, error) {
	if strings.TrimSpace(body) == "" {
		return models.Comment{}, ErrEmptyComment
	}

	author := models.CommentAuthor{ID: 0, Username: "you", FullName: "You"}
	if u, ok := c.session.CurrentUser(); ok {
		author = models.CommentAuthor{ID: u.ID, Username: u.Username, FullName: u.Name}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	id := time.Now().UnixMilli()
	if id <= c.lastID {
		id = c.lastID + 1
	}
	c.lastID = id

	comment := models.Comment{
		ID:     id,
		PostID: postID,
		Body:   body,
		User:   author,
	}
	c.byPost[postID] = append([]models.Comment{comment}, c.byPost[postID]...)
	c.persistLocked()
	return comment, nil
}

// Get is a pure lookup. ok is false when the post's comments were never
// loaded, which is distinct from a confirmed-empty list.
func (c *Cache) Get(postID int64) ([]models.Comment, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	list, ok := c.byPost[postID]
	if !ok {
		return nil, false
	}
	out := make([]models.Comment, len(list))
	copy(out, list)
	return out, true
}

// Status reports the last fetch's state and error message.
func (c *Cache) Status() (models.Status, string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status, c.errMsg
}

func (c *Cache) persistLocked() {
	raw, err := json.Marshal(c.byPost)
	if err != nil {
		log.Printf("Failed to encode comments for persistence: %v", err)
		return
	}
	if err := c.store.Set(store.KeyCommentsByPost, string(raw)); err != nil {
		log.Printf("Failed to persist comments: %v", err)
	}
}
