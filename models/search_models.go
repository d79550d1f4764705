package models

// SearchResult is the full current result of the last search query.
// It is replaced wholesale on every new query; there is no per-query cache.
type SearchResult struct {
	Query string `json:"query"`
	Users []User `json:"users"`
	Posts []Post `json:"posts"`
}
