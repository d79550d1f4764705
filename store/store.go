// Package store is the durable local store: string-keyed persistence that
// survives process restarts. Cache components receive a Store as an
// injected port rather than touching storage directly, so tests can
// substitute the in-memory implementation.
package store

// Keys for the slices the caches snapshot.
const (
	KeyUser           = "user"
	KeyToken          = "token"
	KeyLikedPosts     = "likedPosts"
	KeyLocalPosts     = "localPosts"
	KeyCommentsByPost = "commentsByPost"
)

// Store is a synchronous string-keyed get/set port. Values are JSON
// documents serialized by the owning cache component.
type Store interface {
	// Get returns the stored value and whether the key was present.
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}
