package models

// LikeRecord is the durable representation of "this identity likes this
// post". At most one record exists per (PostID, UserID) pair; every write
// filters out any existing record for the pair before appending.
type LikeRecord struct {
	PostID int64 `json:"postId"`
	UserID int64 `json:"userId"`
	Liked  bool  `json:"liked"`
}

// LikeResponse is returned after a like toggle.
type LikeResponse struct {
	PostID    int64 `json:"post_id"`
	Liked     bool  `json:"liked"`
	LikeCount int   `json:"like_count"`
}
