package blogpodcast

import (
	"context"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// Built-in partial names, used when an element has no template attribute.
const (
	TemplateNewsRiver   = "blog-news-river.html"
	TemplateNewsIndexes = "blog-news-indexes.html"
	TemplateRSSIcon     = "blog-rss-icon.html"
	TemplateRSSLink     = "blog-rss-link.html"
	TemplateFeedsAll    = "blog-feeds-all.html"
	TemplateNextPrev    = "blog-next-prev.html"
)

// NewsRiverData is passed to the news river partial.
type NewsRiverData struct {
	BlogTag   string
	Documents []Document
	FeedURL   string
}

// NewsIndexData is passed to the news index partial.
type NewsIndexData struct {
	BlogTag        string
	IndexDocuments []Document
}

// RSSIconData is passed to the RSS icon partial.
type RSSIconData struct {
	FeedURL string
	Title   string
}

// RSSLinkData is passed to the RSS link partial.
type RSSLinkData struct {
	FeedURL string
}

// BlogSummary describes one blog in the all-feeds listing.
type BlogSummary struct {
	Tag         string
	Title       string
	Description string
	FeedURL     string
}

// FeedsAllData is passed to the all-feeds partial.
type FeedsAllData struct {
	ID                string
	AdditionalClasses string
	Blogs             []BlogSummary
}

// NextPrevData is passed to the next/prev partial.
type NextPrevData struct {
	Previous Document
	Next     Document
}

func partialDataError(name string, data any) error {
	return fmt.Errorf("blogpodcast: partial %s cannot render %T", name, data)
}

// docHref is the site-absolute link to a rendered document.
func docHref(d Document) string {
	return "/" + strings.TrimPrefix(strings.ReplaceAll(d.RenderPath, "\\", "/"), "/")
}

func docDate(d Document) string {
	t, err := ResolveTimestamp(d)
	if err != nil {
		return d.Metadata.PublicationDate
	}
	return t.Format("2006-01-02")
}

func docTitle(d Document) string {
	if d.Metadata.Title != "" {
		return d.Metadata.Title
	}
	return d.VPath
}

func writeDocLink(w *strings.Builder, d Document) {
	fmt.Fprintf(w, `<a href="%s">%s</a>`, html.EscapeString(docHref(d)), html.EscapeString(docTitle(d)))
}

func htmlComponent(fn func(b *strings.Builder)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		fn(&b)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func newsRiverPartial(data any) (templ.Component, error) {
	d, ok := data.(NewsRiverData)
	if !ok {
		return nil, partialDataError(TemplateNewsRiver, data)
	}
	return htmlComponent(func(b *strings.Builder) {
		b.WriteString(`<div class="blog-news-river">`)
		if d.FeedURL != "" {
			fmt.Fprintf(b, `<a class="blog-feed" href="%s">RSS</a>`, html.EscapeString(d.FeedURL))
		}
		b.WriteString(`<ul>`)
		for _, doc := range d.Documents {
			b.WriteString(`<li>`)
			writeDocLink(b, doc)
			fmt.Fprintf(b, ` <time>%s</time>`, html.EscapeString(docDate(doc)))
			if doc.Metadata.Teaser != "" {
				fmt.Fprintf(b, `<div class="teaser">%s</div>`, descriptionPolicy.Sanitize(doc.Metadata.Teaser))
			}
			b.WriteString(`</li>`)
		}
		b.WriteString(`</ul></div>`)
	}), nil
}

func newsIndexesPartial(data any) (templ.Component, error) {
	d, ok := data.(NewsIndexData)
	if !ok {
		return nil, partialDataError(TemplateNewsIndexes, data)
	}
	return htmlComponent(func(b *strings.Builder) {
		b.WriteString(`<ul class="blog-news-indexes">`)
		for _, doc := range d.IndexDocuments {
			b.WriteString(`<li>`)
			writeDocLink(b, doc)
			b.WriteString(`</li>`)
		}
		b.WriteString(`</ul>`)
	}), nil
}

func rssIconPartial(data any) (templ.Component, error) {
	d, ok := data.(RSSIconData)
	if !ok {
		return nil, partialDataError(TemplateRSSIcon, data)
	}
	title := d.Title
	if title == "" {
		title = "RSS feed"
	}
	return htmlComponent(func(b *strings.Builder) {
		fmt.Fprintf(b, `<a class="blog-rss-icon" href="%s" title="%s"><img src="/img/rss_button.png" alt="%s"></a>`,
			html.EscapeString(d.FeedURL), html.EscapeString(title), html.EscapeString(title))
	}), nil
}

func rssLinkPartial(data any) (templ.Component, error) {
	d, ok := data.(RSSLinkData)
	if !ok {
		return nil, partialDataError(TemplateRSSLink, data)
	}
	return htmlComponent(func(b *strings.Builder) {
		fmt.Fprintf(b, `<link rel="alternate" type="application/rss+xml" href="%s">`, html.EscapeString(d.FeedURL))
	}), nil
}

func feedsAllPartial(data any) (templ.Component, error) {
	d, ok := data.(FeedsAllData)
	if !ok {
		return nil, partialDataError(TemplateFeedsAll, data)
	}
	return htmlComponent(func(b *strings.Builder) {
		b.WriteString(`<ul`)
		if d.ID != "" {
			fmt.Fprintf(b, ` id="%s"`, html.EscapeString(d.ID))
		}
		class := strings.TrimSpace("blog-feeds-all " + d.AdditionalClasses)
		fmt.Fprintf(b, ` class="%s">`, html.EscapeString(class))
		for _, bs := range d.Blogs {
			title := bs.Title
			if title == "" {
				title = bs.Tag
			}
			fmt.Fprintf(b, `<li><a href="%s">%s</a>`, html.EscapeString(bs.FeedURL), html.EscapeString(title))
			if bs.Description != "" {
				fmt.Fprintf(b, ` <span>%s</span>`, html.EscapeString(bs.Description))
			}
			b.WriteString(`</li>`)
		}
		b.WriteString(`</ul>`)
	}), nil
}

func nextPrevPartial(data any) (templ.Component, error) {
	d, ok := data.(NextPrevData)
	if !ok {
		return nil, partialDataError(TemplateNextPrev, data)
	}
	return htmlComponent(func(b *strings.Builder) {
		b.WriteString(`<nav class="blog-next-prev"><span class="prev">`)
		writeDocLink(b, d.Previous)
		b.WriteString(`</span><span class="next">`)
		writeDocLink(b, d.Next)
		b.WriteString(`</span></nav>`)
	}), nil
}
