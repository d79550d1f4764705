// Package posts is the entity cache for the feed: the authoritative
// in-memory post collection, enriched with author summaries and a
// per-session liked flag, with the like-record set mirrored durably.
package posts

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"orbit-social-client/auth"
	"orbit-social-client/models"
	"orbit-social-client/store"
)

// placeholderAuthor is attributed to posts created with no active
// session. Anonymous creates are allowed; possibly a product bug.
var placeholderAuthor = models.User{
	ID:       0,
	Name:     "You",
	Username: "you",
	Image:    "https://cdn-icons-png.flaticon.com/512/149/149071.png",
}

// Remote is the slice of the remote client the feed cache needs.
type Remote interface {
	FetchPosts(ctx context.Context, limit int) ([]models.Post, error)
	FetchUsers(ctx context.Context, limit int) ([]models.User, error)
	AddPost(ctx context.Context, title, body string, userID int64) (models.Post, error)
}

// Cache holds the feed. All mutation goes through its methods; the view
// layer only reads snapshots.
type Cache struct {
	mu        sync.RWMutex
	remote    Remote
	store     store.Store
	session   *auth.Session
	postLimit int
	userLimit int

	posts  []models.Post
	liked  []models.LikeRecord
	status models.Status
	errMsg string
	gen    uint64
}

func NewCache(r Remote, st store.Store, session *auth.Session, postLimit, userLimit int) *Cache {
	c := &Cache{
		remote:    r,
		store:     st,
		session:   session,
		postLimit: postLimit,
		userLimit: userLimit,
		status:    models.StatusIdle,
	}
	c.rehydrateLikes()
	return c
}

func (c *Cache) rehydrateLikes() {
	raw, ok, err := c.store.Get(store.KeyLikedPosts)
	if err != nil {
		log.Printf("Failed to read saved like records: %v", err)
		return
	}
	if !ok {
		return
	}
	var records []models.LikeRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		log.Printf("Discarding unreadable like records: %v", err)
		return
	}
	c.liked = records
}

// LoadFeed fetches a page of posts and a page of users concurrently,
// joins each post to its author, and replaces the whole collection.
// Posts whose author cannot be resolved are dropped silently. A reload
// issued while another is in flight supersedes it: only the latest
// issued call commits its result.
func (c *Cache) LoadFeed(ctx context.Context) error {
	c.mu.Lock()
	c.status = models.StatusLoading
	c.errMsg = ""
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	var (
		fetchedPosts []models.Post
		fetchedUsers []models.User
		postsErr     error
		usersErr     error
		wg           sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		fetchedPosts, postsErr = c.remote.FetchPosts(ctx, c.postLimit)
	}()
	go func() {
		defer wg.Done()
		fetchedUsers, usersErr = c.remote.FetchUsers(ctx, c.userLimit)
	}()
	wg.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		// A newer LoadFeed was issued while this one was in flight.
		return nil
	}

	if postsErr != nil {
		c.status = models.StatusFailed
		c.errMsg = postsErr.Error()
		return postsErr
	}
	if usersErr != nil {
		c.status = models.StatusFailed
		c.errMsg = usersErr.Error()
		return usersErr
	}

	byID := make(map[int64]models.User, len(fetchedUsers))
	for _, u := range fetchedUsers {
		byID[u.ID] = u
	}

	userID := c.session.CurrentUserID()
	joined := make([]models.Post, 0, len(fetchedPosts))
	for _, p := range fetchedPosts {
		author, ok := byID[p.UserID]
		if !ok {
			continue
		}
		u := author
		p.User = &u
		p.Liked = c.likedLocked(p.ID, userID)
		joined = append(joined, p)
	}

	c.posts = joined
	c.status = models.StatusSucceeded
	return nil
}

// CreatePost issues the remote create call and, on success, prepends the
// returned record to the feed with the session user (or the placeholder
// author when anonymous). A failed create leaves the feed untouched.
func (c *Cache) CreatePost(ctx context.Context, title, body string) (models.Post, error) {
	author := placeholderAuthor
	if u, ok := c.session.CurrentUser(); ok {
		author = u
	}

	created, err := c.remote.AddPost(ctx, title, body, author.ID)
	if err != nil {
		c.mu.Lock()
		c.status = models.StatusFailed
		c.errMsg = err.Error()
		c.mu.Unlock()
		return models.Post{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	created.User = &author
	created.UserID = author.ID
	created.Reactions = models.Reactions{}
	created.Liked = false
	c.posts = append([]models.Post{created}, c.posts...)
	c.status = models.StatusSucceeded
	c.persistPostsLocked()
	return created, nil
}

// ToggleLike flips the liked flag on the matching post, adjusts its
// reaction count in whichever shape that post uses, and rewrites the
// durable like-record set keeping at most one record per (post, user)
// pair. Pure local operation: the remote API has no durable like
// endpoint. Returns the updated post and whether it was found.
func (c *Cache) ToggleLike(postID int64) (models.Post, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := -1
	for i := range c.posts {
		if c.posts[i].ID == postID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return models.Post{}, false
	}

	post := &c.posts[idx]
	post.Liked = !post.Liked
	if post.Liked {
		post.Reactions.Adjust(1)
	} else {
		post.Reactions.Adjust(-1)
	}

	userID := c.session.CurrentUserID()
	filtered := c.liked[:0:0]
	for _, rec := range c.liked {
		if rec.PostID == postID && rec.UserID == userID {
			continue
		}
		filtered = append(filtered, rec)
	}
	if post.Liked {
		filtered = append(filtered, models.LikeRecord{PostID: postID, UserID: userID, Liked: true})
	}
	c.liked = filtered
	c.persistLikesLocked()

	return *post, true
}

// Snapshot returns a copy of the feed and the slice status for the view.
func (c *Cache) Snapshot() ([]models.Post, models.Status, string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Post, len(c.posts))
	copy(out, c.posts)
	return out, c.status, c.errMsg
}

// LikeRecords returns a copy of the durable like-record set.
func (c *Cache) LikeRecords() []models.LikeRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.LikeRecord, len(c.liked))
	copy(out, c.liked)
	return out
}

func (c *Cache) likedLocked(postID, userID int64) bool {
	for _, rec := range c.liked {
		if rec.PostID == postID && rec.UserID == userID && rec.Liked {
			return true
		}
	}
	return false
}

func (c *Cache) persistLikesLocked() {
	raw, err := json.Marshal(c.liked)
	if err != nil {
		log.Printf("Failed to encode like records: %v", err)
		return
	}
	if err := c.store.Set(store.KeyLikedPosts, string(raw)); err != nil {
		log.Printf("Failed to persist like records: %v", err)
	}
}

// persistPostsLocked mirrors the feed after a local create. The mirror
// is not read back on startup; the feed is rebuilt from the remote.
func (c *Cache) persistPostsLocked() {
	raw, err := json.Marshal(c.posts)
	if err != nil {
		log.Printf("Failed to encode feed mirror: %v", err)
		return
	}
	if err := c.store.Set(store.KeyLocalPosts, string(raw)); err != nil {
		log.Printf("Failed to persist feed mirror: %v", err)
	}
}
