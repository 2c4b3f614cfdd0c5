package domain

import "time"

// SearchResult is one ranked hit returned by the retrieval engine.
// Each result represents a distinct record; the offsets identify the
// best-matching chunk and Snippet is the content slice they delimit.
type SearchResult struct {
	RecordID  int64     `json:"record_id"`
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	Start     int       `json:"start"`
	End       int       `json:"end"`
	Snippet   string    `json:"snippet"`
	Distance  float64   `json:"distance"`
}
