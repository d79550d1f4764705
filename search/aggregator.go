// Package search combines user-search and post-search results, plus
// posts authored by matched users, into one deduplicated result set.
// The aggregator holds the last query's result only.
package search

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"orbit-social-client/models"
)

// ErrEmptyQuery rejects blank queries at the call site; an empty trimmed
// query means "no search".
var ErrEmptyQuery = errors.New("search query cannot be empty")

// Remote is the slice of the remote client the aggregator needs.
type Remote interface {
	SearchUsers(ctx context.Context, q string) ([]models.User, error)
	SearchPosts(ctx context.Context, q string) ([]models.Post, error)
	FetchPosts(ctx context.Context, limit int) ([]models.Post, error)
	FetchUsers(ctx context.Context, limit int) ([]models.User, error)
}

type Aggregator struct {
	mu            sync.RWMutex
	remote        Remote
	allPostsLimit int
	userLimit     int

	result models.SearchResult
	status models.Status
	errMsg string
	gen    uint64
}

func NewAggregator(r Remote, allPostsLimit, userLimit int) *Aggregator {
	return &Aggregator{remote: r, allPostsLimit: allPostsLimit, userLimit: userLimit, status: models.StatusIdle}
}

// Search runs the user and post searches concurrently. When at least one
// user matches, a large page of posts is fetched afterwards (genuine data
// dependency on the user result) and filtered to those authored by a
// matched user; the union is deduplicated by post id, first occurrence
// wins. With zero user matches the direct post-search result stands
// alone and no extra fetch is made. The committed result is
// last-issued-wins: a Search superseded by a newer one discards its
// outcome.
func (a *Aggregator) Search(ctx context.Context, query string) error {
	if strings.TrimSpace(query) == "" {
		return ErrEmptyQuery
	}

	a.mu.Lock()
	a.status = models.StatusLoading
	a.errMsg = ""
	a.gen++
	gen := a.gen
	a.mu.Unlock()

	var (
		users    []models.User
		posts    []models.Post
		usersErr error
		postsErr error
		wg       sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		users, usersErr = a.remote.SearchUsers(ctx, query)
	}()
	go func() {
		defer wg.Done()
		posts, postsErr = a.remote.SearchPosts(ctx, query)
	}()
	wg.Wait()

	if err := firstError(usersErr, postsErr); err != nil {
		return a.commitFailure(gen, err)
	}

	if len(users) > 0 {
		allPosts, err := a.remote.FetchPosts(ctx, a.allPostsLimit)
		if err != nil {
			return a.commitFailure(gen, err)
		}

		matched := make(map[int64]bool, len(users))
		for _, u := range users {
			matched[u.ID] = true
		}

		combined := append([]models.Post{}, posts...)
		for _, p := range allPosts {
			if matched[p.UserID] {
				combined = append(combined, p)
			}
		}

		seen := make(map[int64]bool, len(combined))
		deduped := combined[:0:0]
		for _, p := range combined {
			if seen[p.ID] {
				continue
			}
			seen[p.ID] = true
			deduped = append(deduped, p)
		}
		posts = deduped
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if gen != a.gen {
		return nil
	}
	a.result = models.SearchResult{Query: query, Users: users, Posts: posts}
	a.status = models.StatusSucceeded
	return nil
}

// EnrichAuthors fetches a large user listing and re-joins author
// summaries onto the current result's posts. Best effort: a fetch error
// is logged and the primary result stands as committed.
func (a *Aggregator) EnrichAuthors(ctx context.Context) {
	users, err := a.remote.FetchUsers(ctx, a.userLimit)
	if err != nil {
		log.Printf("Search author enrichment skipped: %v", err)
		return
	}
	a.AttachUserData(users)
}

// AttachUserData re-joins author summaries onto the current result's
// posts for display. Best effort: posts without a matching user get a
// nil author, and the primary result is never blocked or failed by it.
func (a *Aggregator) AttachUserData(users []models.User) {
	byID := make(map[int64]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	for i := range a.result.Posts {
		if u, ok := byID[a.result.Posts[i].UserID]; ok {
			author := u
			a.result.Posts[i].User = &author
		} else {
			a.result.Posts[i].User = nil
		}
	}
}

// Result returns a copy of the last committed result and slice status.
func (a *Aggregator) Result() (models.SearchResult, models.Status, string) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	result := models.SearchResult{
		Query: a.result.Query,
		Users: append([]models.User{}, a.result.Users...),
		Posts: append([]models.Post{}, a.result.Posts...),
	}
	return result, a.status, a.errMsg
}

func (a *Aggregator) commitFailure(gen uint64, err error) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if gen != a.gen {
		return nil
	}
	a.status = models.StatusFailed
	a.errMsg = err.Error()
	return err
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
