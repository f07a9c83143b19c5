package blogpodcast

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title          string    `xml:"title"`
	Link           string    `xml:"link"`
	Description    string    `xml:"description"`
	Language       string    `xml:"language,omitempty"`
	Copyright      string    `xml:"copyright,omitempty"`
	ManagingEditor string    `xml:"managingEditor,omitempty"`
	WebMaster      string    `xml:"webMaster,omitempty"`
	PubDate        string    `xml:"pubDate,omitempty"`
	Categories     []string  `xml:"category"`
	Image          *rssImage `xml:"image,omitempty"`
	Items          []rssItem `xml:"item"`
}

type rssImage struct {
	URL   string `xml:"url"`
	Title string `xml:"title"`
	Link  string `xml:"link"`
}

type rssItem struct {
	Title       string  `xml:"title"`
	Link        string  `xml:"link"`
	Description string  `xml:"description"`
	PubDate     string  `xml:"pubDate"`
	GUID        rssGUID `xml:"guid"`
}

type rssGUID struct {
	IsPermaLink string `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

// descriptionPolicy strips scripts and unsafe attributes from teasers.
var descriptionPolicy = bluemonday.UGCPolicy()

// ItemGUID derives a stable GUID from an item URL.
func ItemGUID(itemURL string) string {
	return "urn:uuid:" + uuid.NewSHA1(uuid.NameSpaceURL, []byte(itemURL)).String()
}

// WriteRSS encodes feed as an RSS 2.0 document.
func WriteRSS(w io.Writer, feed Feed) error {
	link := feed.Meta.SiteURL
	if link == "" {
		link = feed.FeedURL
	}
	items := make([]rssItem, 0, len(feed.Items))
	for _, it := range feed.Items {
		items = append(items, rssItem{
			Title:       it.Title,
			Link:        it.URL,
			Description: descriptionPolicy.Sanitize(it.Description),
			PubDate:     it.Date.Format(time.RFC1123Z),
			GUID:        rssGUID{IsPermaLink: "false", Value: ItemGUID(it.URL)},
		})
	}
	ch := rssChannel{
		Title:          feed.Meta.Title,
		Link:           link,
		Description:    feed.Meta.Description,
		Language:       feed.Meta.Language,
		Copyright:      feed.Meta.Copyright,
		ManagingEditor: feed.Meta.ManagingEditor,
		WebMaster:      feed.Meta.WebMaster,
		Categories:     feed.Meta.Categories,
		Items:          items,
	}
	if !feed.PubDate.IsZero() {
		ch.PubDate = feed.PubDate.Format(time.RFC1123Z)
	}
	if feed.Meta.ImageURL != "" {
		ch.Image = &rssImage{URL: feed.Meta.ImageURL, Title: feed.Meta.Title, Link: link}
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	return enc.Encode(rssXML{Version: "2.0", Channel: ch})
}

// RSSWriter is the default FeedGenerator. It writes each feed to
// Dir joined with the feed's RenderTo path.
type RSSWriter struct {
	Dir string
}

// NewRSSWriter returns an RSSWriter rooted at dir.
func NewRSSWriter(dir string) *RSSWriter {
	return &RSSWriter{Dir: dir}
}

// GenerateFeed writes feed below w.Dir. RenderTo cannot escape the directory.
func (w *RSSWriter) GenerateFeed(ctx context.Context, feed Feed) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if feed.RenderTo == "" {
		return &ConfigurationError{Tag: feed.BlogTag, Reason: "feed has no output path"}
	}
	target := filepath.Join(w.Dir, filepath.FromSlash(path.Clean("/"+feed.RenderTo)))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	f, err := os.Create(target)
	if err != nil {
		return err
	}
	if err := WriteRSS(f, feed); err != nil {
		f.Close()
		return fmt.Errorf("encode rss: %w", err)
	}
	return f.Close()
}
