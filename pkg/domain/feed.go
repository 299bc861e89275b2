package domain

import "time"

// FeedMeta describes the feed document itself rather than its entries
type FeedMeta struct {
	Title   string    `json:"title"`
	Type    string    `json:"type"`
	Updated time.Time `json:"updated"`
	Entries int       `json:"entries"`
}
