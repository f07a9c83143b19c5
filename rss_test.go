package blogpodcast

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
)

func sampleFeed() Feed {
	return Feed{
		BlogTag: "news",
		Meta: RSSConfig{
			Title:       "News",
			Description: "Site news",
			SiteURL:     "https://example.com/",
			ImageURL:    "https://example.com/logo.png",
			Language:    "en",
			Categories:  []string{"announcements"},
		},
		FeedURL: "https://example.com/news/rss.xml",
		PubDate: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		Items: []FeedItem{
			{
				Title:       "Second",
				Description: `<p>Hello <script>alert(1)</script><b>world</b></p>`,
				URL:         "https://example.com/news/second.html",
				Date:        time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
			},
			{
				Title: "First",
				URL:   "https://example.com/news/first.html",
				Date:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			},
		},
		RenderTo: "/news/rss.xml",
	}
}

func TestWriteRSSParses(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteRSS(&buf, sampleFeed()); err != nil {
		t.Fatalf("WriteRSS failed: %v", err)
	}

	parsed, err := gofeed.NewParser().ParseString(buf.String())
	if err != nil {
		t.Fatalf("output is not a valid feed: %v\n%s", err, buf.String())
	}
	if parsed.FeedType != "rss" {
		t.Errorf("FeedType = %q, want rss", parsed.FeedType)
	}
	if parsed.Title != "News" || parsed.Description != "Site news" {
		t.Errorf("channel = %q / %q", parsed.Title, parsed.Description)
	}
	if parsed.Link != "https://example.com/" {
		t.Errorf("Link = %q, want the site URL", parsed.Link)
	}
	if parsed.Language != "en" {
		t.Errorf("Language = %q, want en", parsed.Language)
	}
	if parsed.Image == nil || parsed.Image.URL != "https://example.com/logo.png" {
		t.Errorf("Image = %+v", parsed.Image)
	}
	if len(parsed.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(parsed.Items))
	}

	first := parsed.Items[0]
	if first.Title != "Second" || first.Link != "https://example.com/news/second.html" {
		t.Errorf("item[0] = %q %q", first.Title, first.Link)
	}
	if first.PublishedParsed == nil || !first.PublishedParsed.Equal(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("item[0] published = %v", first.PublishedParsed)
	}
	if first.GUID != ItemGUID(first.Link) {
		t.Errorf("item[0] GUID = %q, want %q", first.GUID, ItemGUID(first.Link))
	}
	if strings.Contains(first.Description, "script") {
		t.Errorf("description was not sanitized: %q", first.Description)
	}
	if !strings.Contains(first.Description, "<b>world</b>") {
		t.Errorf("description lost safe markup: %q", first.Description)
	}
}

func TestWriteRSSFallsBackToFeedURL(t *testing.T) {
	feed := sampleFeed()
	feed.Meta.SiteURL = ""
	var buf bytes.Buffer
	if err := WriteRSS(&buf, feed); err != nil {
		t.Fatalf("WriteRSS failed: %v", err)
	}
	parsed, err := gofeed.NewParser().ParseString(buf.String())
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if parsed.Link != feed.FeedURL {
		t.Errorf("Link = %q, want %q", parsed.Link, feed.FeedURL)
	}
}

func TestItemGUIDIsStable(t *testing.T) {
	a := ItemGUID("https://example.com/news/a.html")
	if a != ItemGUID("https://example.com/news/a.html") {
		t.Errorf("GUID changed between calls")
	}
	if a == ItemGUID("https://example.com/news/b.html") {
		t.Errorf("different URLs share a GUID")
	}
	if !strings.HasPrefix(a, "urn:uuid:") {
		t.Errorf("GUID = %q, want urn:uuid: prefix", a)
	}
}

func TestRSSWriterStaysInsideDir(t *testing.T) {
	dir := t.TempDir()
	w := NewRSSWriter(dir)
	feed := sampleFeed()
	feed.RenderTo = "../../escape/rss.xml"
	if err := w.GenerateFeed(context.Background(), feed); err != nil {
		t.Fatalf("GenerateFeed failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "escape", "rss.xml")); err != nil {
		t.Errorf("feed not written inside %s: %v", dir, err)
	}
}

func TestRSSWriterRequiresOutputPath(t *testing.T) {
	feed := sampleFeed()
	feed.RenderTo = ""
	err := NewRSSWriter(t.TempDir()).GenerateFeed(context.Background(), feed)
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestRSSWriterHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := NewRSSWriter(t.TempDir()).GenerateFeed(ctx, sampleFeed()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
