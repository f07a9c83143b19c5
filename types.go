package blogpodcast

import "time"

// Document is a content document as produced by the host document cache.
// The plugin only reads documents and reorders them, it never mutates one.
type Document struct {
	VPath      string      `json:"vpath"`
	RenderPath string      `json:"renderPath"`
	Metadata   DocMetadata `json:"metadata"`
	ModTime    time.Time   `json:"mtime"`
}

// DocMetadata is the subset of a document's frontmatter the plugin reads.
type DocMetadata struct {
	Title           string         `json:"title,omitempty"`
	Teaser          string         `json:"teaser,omitempty"`
	PublicationDate string         `json:"publicationDate,omitempty"`
	Layout          string         `json:"layout,omitempty"`
	BlogTag         string         `json:"blogtag,omitempty"`
	Extra           map[string]any `json:"extra,omitempty"`
}

// NextPrev holds the circular neighbours of a document within its blog.
type NextPrev struct {
	Previous Document
	Next     Document
}

// FeedItem is one entry handed to a FeedGenerator.
type FeedItem struct {
	Title       string
	Description string
	URL         string
	Date        time.Time
}

// Feed is everything a FeedGenerator needs to write one blog's feed.
type Feed struct {
	BlogTag string
	Meta    RSSConfig
	FeedURL string
	PubDate time.Time
	Items   []FeedItem
	// RenderTo is the site-relative output path, normally the blog's RSSURL.
	RenderTo string
}

// FeedResult reports the outcome of generating one blog's feed.
type FeedResult struct {
	BlogTag  string
	FeedURL  string
	Items    int
	Duration time.Duration
	Err      error
}
