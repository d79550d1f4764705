package models

// User is the author summary embedded in posts and search results.
// It is never cached on its own, only denormalized onto other entities.
type User struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Image    string `json:"image"`
}
