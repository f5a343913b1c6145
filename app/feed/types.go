package feed

import (
	"time"

	"podfeed/app/enclosure"
	"podfeed/app/site"
)

// Document is one assembled feed: resolved channel configuration plus
// entries in selector order.
type Document struct {
	Channel site.Channel
	FeedURL string
	Entries []Entry
}

type Entry struct {
	Title       string
	Content     string
	Summary     string
	Link        string
	Published   time.Time
	AuthorName  string
	AuthorEmail string
	Enclosure   *enclosure.Metadata // nil when the episode has no enclosure
}
