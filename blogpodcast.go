// Package blogpodcast aggregates the documents of a static site into blogs:
// tag-scoped collections ordered newest first, exposed through template
// elements (news river, next/prev, RSS icon and link, feed listings) and
// per-blog RSS feeds.
//
// Document storage, querying and template rendering belong to the host and
// are reached through the DocumentStore, Renderer and FeedGenerator
// interfaces. MemoryStore, SQLiteStore, TemplRenderer and RSSWriter are
// ready-made implementations.
package blogpodcast

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"
)

type blog struct {
	tag      string
	cfg      BlogConfig
	matchers matcherSet
	index    *matcherSet
}

// Plugin holds the registered blogs and the host collaborators.
type Plugin struct {
	Config SiteConfig

	mu    sync.RWMutex
	blogs map[string]*blog

	store    DocumentStore
	renderer Renderer
	feeds    FeedGenerator
	metrics  MetricsCollector
	logger   *slog.Logger
	now      func() time.Time
}

// New creates a Plugin querying store. A nil store is replaced by an empty
// MemoryStore.
func New(cfg SiteConfig, store DocumentStore, opts ...Option) *Plugin {
	cfg.setDefaults()
	if store == nil {
		store = NewMemoryStore()
	}

	p := &Plugin{
		Config:  cfg,
		blogs:   make(map[string]*blog),
		store:   store,
		metrics: nopMetrics{},
		logger:  slog.Default(),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.renderer == nil {
		p.renderer = NewTemplRenderer()
	}
	if p.feeds == nil {
		p.feeds = NewRSSWriter(cfg.RenderDestination)
	}
	return p
}

// NewFromSiteFile creates a Plugin and registers every blog of sf.
func NewFromSiteFile(sf SiteFile, store DocumentStore, opts ...Option) (*Plugin, error) {
	p := New(sf.Site, store, opts...)
	if err := p.AddBlogs(sf.Blogs); err != nil {
		return nil, err
	}
	return p, nil
}

// AddBlog registers (or replaces) the blog for tag. Matchers are resolved
// here, once, so queries never re-interpret them.
func (p *Plugin) AddBlog(tag string, cfg BlogConfig) error {
	if tag == "" {
		return &ConfigurationError{Reason: "empty blog tag"}
	}
	ms, err := compileMatchers(tag, cfg.Matchers)
	if err != nil {
		return err
	}
	b := &blog{tag: tag, cfg: cfg.clone(), matchers: ms}
	if cfg.IndexMatchers != nil {
		idx, err := compileMatchers(tag, cfg.IndexMatchers)
		if err != nil {
			return err
		}
		b.index = &idx
	}

	p.mu.Lock()
	p.blogs[tag] = b
	p.mu.Unlock()

	p.logger.Debug("registered blog", slog.String("blogtag", tag), slog.String("rssurl", cfg.RSSURL))
	return nil
}

// AddBlogs registers blogs in tag order, stopping at the first error.
func (p *Plugin) AddBlogs(blogs map[string]BlogConfig) error {
	tags := make([]string, 0, len(blogs))
	for tag := range blogs {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	for _, tag := range tags {
		if err := p.AddBlog(tag, blogs[tag]); err != nil {
			return err
		}
	}
	return nil
}

func (p *Plugin) lookup(tag string) (*blog, error) {
	p.mu.RLock()
	b, ok := p.blogs[tag]
	p.mu.RUnlock()
	if !ok {
		return nil, &UnknownBlogTagError{Tag: tag}
	}
	return b, nil
}

// IsKnownTag reports whether tag names a registered blog.
func (p *Plugin) IsKnownTag(tag string) bool {
	_, err := p.lookup(tag)
	return err == nil
}

// BlogConfig returns a copy of the configuration registered for tag.
func (p *Plugin) BlogConfig(tag string) (BlogConfig, error) {
	b, err := p.lookup(tag)
	if err != nil {
		return BlogConfig{}, err
	}
	return b.cfg.clone(), nil
}

// Tags returns the registered blog tags in sorted order.
func (p *Plugin) Tags() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	tags := make([]string, 0, len(p.blogs))
	for tag := range p.blogs {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// IsFeedURL reports whether href is the rssurl of some blog.
func (p *Plugin) IsFeedURL(href string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, b := range p.blogs {
		if b.cfg.RSSURL != "" && b.cfg.RSSURL == href {
			return true
		}
	}
	return false
}

// FindBlogForDocument returns the first blog, in tag order, whose matchers
// accept d. The blogtag filter is not consulted, d must render to HTML and
// only the blog-level rootPath applies.
func (p *Plugin) FindBlogForDocument(d Document) (string, bool) {
	for _, tag := range p.Tags() {
		b, err := p.lookup(tag)
		if err != nil {
			continue
		}
		sel := blogSelector("", b.cfg, b.matchers)
		sel.Tag, sel.Tags = "", nil
		sel.RendersToHTML = true
		sel.RootPath = strings.TrimPrefix(b.cfg.RootPath, "/")
		if sel.Match(d) {
			return tag, true
		}
	}
	return "", false
}

// Selector builds the query for a registered blog with ov applied. The
// registered configuration is not modified; the merged copy is returned.
func (p *Plugin) Selector(tag string, ov Overrides) (Selector, BlogConfig, error) {
	b, err := p.lookup(tag)
	if err != nil {
		return Selector{}, BlogConfig{}, err
	}
	merged := b.cfg.merge(ov)
	ms := b.matchers
	if merged.Matchers != nil {
		ms.rootPath = merged.Matchers.RootPath
	}
	return blogSelector(tag, merged, ms), merged, nil
}

// FindBlogDocs returns the documents of a blog, newest first, with
// StartAt and MaxEntries applied.
func (p *Plugin) FindBlogDocs(ctx context.Context, tag string, ov Overrides) ([]Document, error) {
	sel, _, err := p.Selector(tag, ov)
	if err != nil {
		return nil, err
	}
	return p.query(ctx, tag, sel)
}

// FindBlogIndexes returns the index pages of a blog, found through its
// IndexMatchers. A blog without IndexMatchers has none.
func (p *Plugin) FindBlogIndexes(ctx context.Context, tag string, ov Overrides) ([]Document, error) {
	b, err := p.lookup(tag)
	if err != nil {
		return nil, err
	}
	if b.index == nil {
		return nil, nil
	}
	sel := indexSelector(b.cfg.merge(ov), *b.index)
	return p.query(ctx, tag, sel)
}

func (p *Plugin) query(ctx context.Context, tag string, sel Selector) ([]Document, error) {
	found, err := p.store.Search(ctx, sel.Unbounded())
	if err != nil {
		return nil, fmt.Errorf("blogpodcast: search blog %q: %w", tag, err)
	}
	docs, err := Assemble(found, sel.Offset, sel.Limit)
	if err != nil {
		var dre *DateResolutionError
		if errors.As(err, &dre) {
			p.metrics.RecordDateErrors(tag, len(dre.Problems))
		}
		return nil, err
	}
	p.metrics.RecordQuery(tag, len(docs))
	return docs, nil
}
