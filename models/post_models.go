package models

import (
	"bytes"
	"encoding/json"
)

// ReactionShape tags which wire representation a post's reaction count uses.
// The remote API returns a bare integer for some posts and a
// {likes, dislikes} object for others; both must round-trip unchanged.
type ReactionShape int

const (
	ReactionShapeBare ReactionShape = iota
	ReactionShapeStructured
)

// Reactions is the tagged union over the two reaction-count shapes.
// The zero value is a bare count of zero, which is what newly
// created posts start with.
type Reactions struct {
	Shape        ReactionShape
	Count        int // bare shape
	LikeCount    int // structured shape
	DislikeCount int // structured shape
}

func (r *Reactions) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var obj struct {
			Likes    int `json:"likes"`
			Dislikes int `json:"dislikes"`
		}
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return err
		}
		*r = Reactions{Shape: ReactionShapeStructured, LikeCount: obj.Likes, DislikeCount: obj.Dislikes}
		return nil
	}

	var n int
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return err
	}
	*r = Reactions{Shape: ReactionShapeBare, Count: n}
	return nil
}

func (r Reactions) MarshalJSON() ([]byte, error) {
	if r.Shape == ReactionShapeStructured {
		return json.Marshal(struct {
			Likes    int `json:"likes"`
			Dislikes int `json:"dislikes"`
		}{r.LikeCount, r.DislikeCount})
	}
	return json.Marshal(r.Count)
}

// Likes returns the like count regardless of shape.
func (r Reactions) Likes() int {
	if r.Shape == ReactionShapeStructured {
		return r.LikeCount
	}
	return r.Count
}

// Adjust moves the like count by delta in whichever shape the post uses.
func (r *Reactions) Adjust(delta int) {
	if r.Shape == ReactionShapeStructured {
		r.LikeCount += delta
		return
	}
	r.Count += delta
}

// Post is a cached feed entry. User is resolved by joining the post list
// against the user list; posts whose author cannot be resolved are dropped.
// Liked is computed against the current session identity, never sent by the
// remote API.
type Post struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	UserID    int64     `json:"userId"`
	User      *User     `json:"user,omitempty"`
	Reactions Reactions `json:"reactions"`
	Liked     bool      `json:"liked"`
}

// CreatePostRequest is the body accepted for creating a new post.
type CreatePostRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}
