package blogpodcast

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strconv"
	"strings"
)

// Element is a custom element found in a page, with its attributes.
type Element struct {
	Name  string
	Attrs map[string]string
}

// Attr returns the trimmed value of an attribute, or "".
func (e Element) Attr(name string) string {
	return strings.TrimSpace(e.Attrs[name])
}

// PageMetadata describes the page an element is rendered into.
type PageMetadata struct {
	BlogTag      string
	DocumentPath string
}

// ElementHandler renders one kind of custom element.
type ElementHandler interface {
	ElementName() string
	Process(ctx context.Context, el Element, meta PageMetadata) (string, error)
}

// Elements returns the handlers for every element the plugin provides.
func (p *Plugin) Elements() []ElementHandler {
	return []ElementHandler{
		&newsRiverElement{p},
		&newsIndexElement{p},
		&rssIconElement{p},
		&rssLinkElement{p},
		&feedsAllElement{p},
		&nextPrevElement{p},
	}
}

// ProcessElement renders el. A failure only concerns this element; the
// caller decides what to do with the rest of the page.
func (p *Plugin) ProcessElement(ctx context.Context, el Element, meta PageMetadata) (string, error) {
	for _, h := range p.Elements() {
		if h.ElementName() != el.Name {
			continue
		}
		out, err := h.Process(ctx, el, meta)
		if err != nil {
			p.logger.Error("element failed",
				slog.String("element", el.Name),
				slog.String("document", meta.DocumentPath),
				slog.String("error", err.Error()),
			)
			return "", err
		}
		return out, nil
	}
	return "", fmt.Errorf("blogpodcast: unknown element %q", el.Name)
}

func elementBlogTag(el Element, meta PageMetadata) (string, error) {
	tag := el.Attr("blogtag")
	if tag == "" {
		tag = meta.BlogTag
	}
	if tag == "" {
		return "", &ConfigurationError{Reason: fmt.Sprintf("no blog tag in %s on %s", el.Name, meta.DocumentPath)}
	}
	return tag, nil
}

func elementMaxEntries(el Element) (*int, error) {
	v := el.Attr("maxentries")
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("%s: bad maxentries %q", el.Name, v)}
	}
	return &n, nil
}

func elementTemplate(el Element, fallback string) string {
	if t := el.Attr("template"); t != "" {
		return t
	}
	return fallback
}

type newsRiverElement struct{ p *Plugin }

func (e *newsRiverElement) ElementName() string { return "blog-news-river" }

func (e *newsRiverElement) Process(ctx context.Context, el Element, meta PageMetadata) (string, error) {
	tag, err := elementBlogTag(el, meta)
	if err != nil {
		return "", err
	}
	cfg, err := e.p.BlogConfig(tag)
	if err != nil {
		return "", err
	}
	var ov Overrides
	if ov.MaxEntries, err = elementMaxEntries(el); err != nil {
		return "", err
	}
	if rp := el.Attr("root-path"); rp != "" {
		ov.RootPath = rp
	}
	if drp := el.Attr("doc-root-path"); drp != "" {
		ov.RootPath = path.Dir(drp)
	}
	docs, err := e.p.FindBlogDocs(ctx, tag, ov)
	if err != nil {
		return "", err
	}
	return e.p.renderer.Partial(ctx, elementTemplate(el, TemplateNewsRiver), NewsRiverData{
		BlogTag:   tag,
		Documents: docs,
		FeedURL:   cfg.RSSURL,
	})
}

type newsIndexElement struct{ p *Plugin }

func (e *newsIndexElement) ElementName() string { return "blog-news-index" }

func (e *newsIndexElement) Process(ctx context.Context, el Element, meta PageMetadata) (string, error) {
	tag, err := elementBlogTag(el, meta)
	if err != nil {
		return "", err
	}
	var ov Overrides
	if ov.MaxEntries, err = elementMaxEntries(el); err != nil {
		return "", err
	}
	docs, err := e.p.FindBlogIndexes(ctx, tag, ov)
	if err != nil {
		return "", err
	}
	return e.p.renderer.Partial(ctx, elementTemplate(el, TemplateNewsIndexes), NewsIndexData{
		BlogTag:        tag,
		IndexDocuments: docs,
	})
}

type rssIconElement struct{ p *Plugin }

func (e *rssIconElement) ElementName() string { return "blog-rss-icon" }

func (e *rssIconElement) Process(ctx context.Context, el Element, meta PageMetadata) (string, error) {
	tag, err := elementBlogTag(el, meta)
	if err != nil {
		return "", err
	}
	cfg, err := e.p.BlogConfig(tag)
	if err != nil {
		return "", err
	}
	return e.p.renderer.Partial(ctx, elementTemplate(el, TemplateRSSIcon), RSSIconData{
		FeedURL: cfg.RSSURL,
		Title:   el.Attr("title"),
	})
}

type rssLinkElement struct{ p *Plugin }

func (e *rssLinkElement) ElementName() string { return "blog-rss-link" }

func (e *rssLinkElement) Process(ctx context.Context, el Element, meta PageMetadata) (string, error) {
	tag, err := elementBlogTag(el, meta)
	if err != nil {
		return "", err
	}
	cfg, err := e.p.BlogConfig(tag)
	if err != nil {
		return "", err
	}
	return e.p.renderer.Partial(ctx, elementTemplate(el, TemplateRSSLink), RSSLinkData{FeedURL: cfg.RSSURL})
}

type feedsAllElement struct{ p *Plugin }

func (e *feedsAllElement) ElementName() string { return "blog-feeds-all" }

func (e *feedsAllElement) Process(ctx context.Context, el Element, meta PageMetadata) (string, error) {
	return e.p.renderer.Partial(ctx, elementTemplate(el, TemplateFeedsAll), FeedsAllData{
		ID:                el.Attr("id"),
		AdditionalClasses: el.Attr("additional-classes"),
		Blogs:             e.p.Summaries(),
	})
}

type nextPrevElement struct{ p *Plugin }

func (e *nextPrevElement) ElementName() string { return "blog-next-prev" }

// Process renders nothing for pages outside any blog.
func (e *nextPrevElement) Process(ctx context.Context, el Element, meta PageMetadata) (string, error) {
	if meta.BlogTag == "" {
		return "", nil
	}
	docs, err := e.p.FindBlogDocs(ctx, meta.BlogTag, Overrides{})
	if err != nil {
		return "", err
	}
	np, err := FindNextPrev(docs, meta.DocumentPath)
	if err != nil {
		var nf *DocumentNotFoundError
		if errors.As(err, &nf) {
			nf.Tag = meta.BlogTag
		}
		return "", err
	}
	return e.p.renderer.Partial(ctx, elementTemplate(el, TemplateNextPrev), NextPrevData{
		Previous: np.Previous,
		Next:     np.Next,
	})
}

// Summaries describes every registered blog, in tag order.
func (p *Plugin) Summaries() []BlogSummary {
	tags := p.Tags()
	out := make([]BlogSummary, 0, len(tags))
	for _, tag := range tags {
		cfg, err := p.BlogConfig(tag)
		if err != nil {
			continue
		}
		out = append(out, BlogSummary{
			Tag:         tag,
			Title:       cfg.RSS.Title,
			Description: cfg.RSS.Description,
			FeedURL:     cfg.RSSURL,
		})
	}
	return out
}
