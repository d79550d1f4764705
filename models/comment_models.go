package models

// CommentAuthor is the denormalized author summary the remote API attaches
// to each comment.
type CommentAuthor struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
}

// Comment belongs to exactly one post. Comments are never mutated or
// deleted once created.
type Comment struct {
	ID     int64         `json:"id"`
	PostID int64         `json:"postId"`
	Body   string        `json:"body"`
	User   CommentAuthor `json:"user"`
}

// CreateCommentRequest is the body accepted for authoring a local comment.
type CreateCommentRequest struct {
	Body string `json:"body"`
}
