package blogpodcast

import (
	"path"
	"slices"
	"strings"
)

// SortByPublicationTime is the only sort key the plugin asks stores for.
const SortByPublicationTime = "publicationTime"

// Selector is the engine-agnostic query built from a BlogConfig for one
// lookup. Stores translate it into their own dialect.
type Selector struct {
	// Tag and Tags filter on the document's blogtag: a document matches
	// when its tag equals Tag or appears in Tags. Both empty disables the
	// filter.
	Tag  string
	Tags []string

	Path       PathMatcher // matched against the virtual path
	RenderPath PathMatcher // matched against the render path
	Glob       string      // path.Match pattern on the virtual path
	Layouts    []string
	RootPath   string // render path prefix, AND-ed with RenderPath

	RendersToHTML bool

	SortBy     string
	Descending bool
	Limit      int // zero means unlimited
	Offset     int
}

// Unbounded returns a copy without Limit and Offset. Stores are always
// queried for the full matching set; ordering and truncation happen in
// Assemble.
func (s Selector) Unbounded() Selector {
	s.Limit = 0
	s.Offset = 0
	return s
}

// HasTagFilter reports whether the selector restricts documents by blogtag.
func (s Selector) HasTagFilter() bool {
	return s.Tag != "" || len(s.Tags) > 0
}

// TagSet returns Tag together with Tags, without duplicates.
func (s Selector) TagSet() []string {
	var out []string
	if s.Tag != "" {
		out = append(out, s.Tag)
	}
	for _, t := range s.Tags {
		if !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out
}

// Match reports whether d satisfies every constraint of the selector.
func (s Selector) Match(d Document) bool {
	renderPath := strings.TrimPrefix(d.RenderPath, "/")
	if s.RendersToHTML && !strings.HasSuffix(renderPath, ".html") {
		return false
	}
	if s.HasTagFilter() && !slices.Contains(s.TagSet(), d.Metadata.BlogTag) {
		return false
	}
	if len(s.Layouts) > 0 && !slices.Contains(s.Layouts, d.Metadata.Layout) {
		return false
	}
	if !s.Path.Match(d.VPath) {
		return false
	}
	if !s.RenderPath.Match(renderPath) {
		return false
	}
	if s.Glob != "" {
		if ok, _ := path.Match(s.Glob, d.VPath); !ok {
			return false
		}
	}
	if s.RootPath != "" && !strings.HasPrefix(renderPath, s.RootPath) {
		return false
	}
	return true
}

// matcherSet is a Matchers value resolved once at registration.
type matcherSet struct {
	path          PathMatcher
	renderPath    PathMatcher
	glob          string
	layouts       []string
	rendersToHTML bool
	blogTags      []string
	rootPath      string
}

func compileMatchers(tag string, m *Matchers) (matcherSet, error) {
	if m == nil {
		return matcherSet{}, &ConfigurationError{Tag: tag, Reason: "no matchers configured"}
	}
	var ms matcherSet
	var err error
	if ms.path, err = compileMatcher(tag, "path", m.Path); err != nil {
		return matcherSet{}, err
	}
	if ms.renderPath, err = compileMatcher(tag, "renderpath", m.RenderPath); err != nil {
		return matcherSet{}, err
	}
	if ms.layouts, err = normalizeLayouts(tag, m.Layouts); err != nil {
		return matcherSet{}, err
	}
	if m.Glob != "" {
		if _, err := path.Match(m.Glob, ""); err != nil {
			return matcherSet{}, &InvalidMatcherError{Tag: tag, Field: "glob", Value: m.Glob, Err: err}
		}
		ms.glob = m.Glob
	}
	ms.rendersToHTML = m.RendersToHTML == nil || *m.RendersToHTML
	ms.blogTags = append([]string(nil), m.BlogTags...)
	ms.rootPath = m.RootPath
	return ms, nil
}

// NewSelector builds the Selector for a blog from a raw configuration. It
// never mutates cfg; the merged configuration is returned alongside the
// selector. An empty tag builds a selector without a blogtag filter.
func NewSelector(cfg BlogConfig, tag string, ov Overrides) (Selector, BlogConfig, error) {
	merged := cfg.merge(ov)
	ms, err := compileMatchers(tag, merged.Matchers)
	if err != nil {
		return Selector{}, BlogConfig{}, err
	}
	return blogSelector(tag, merged, ms), merged, nil
}

func blogSelector(tag string, cfg BlogConfig, ms matcherSet) Selector {
	root := cfg.RootPath
	if ms.rootPath != "" {
		root = ms.rootPath
	}
	sel := Selector{
		Tag:           tag,
		Tags:          ms.blogTags,
		Path:          ms.path,
		RenderPath:    ms.renderPath,
		Glob:          ms.glob,
		Layouts:       ms.layouts,
		RootPath:      strings.TrimPrefix(root, "/"),
		RendersToHTML: ms.rendersToHTML,
		SortBy:        SortByPublicationTime,
		Descending:    true,
	}
	if cfg.MaxEntries > 0 {
		sel.Limit = cfg.MaxEntries
	}
	if cfg.StartAt > 0 {
		sel.Offset = cfg.StartAt
	}
	return sel
}

// indexSelector finds a blog's index pages. Only the path and layouts of
// the index matchers apply, and there is no blogtag filter.
func indexSelector(cfg BlogConfig, idx matcherSet) Selector {
	sel := Selector{
		Path:          idx.path,
		Layouts:       idx.layouts,
		RootPath:      strings.TrimPrefix(cfg.RootPath, "/"),
		RendersToHTML: true,
		SortBy:        SortByPublicationTime,
		Descending:    true,
	}
	if cfg.MaxEntries > 0 {
		sel.Limit = cfg.MaxEntries
	}
	return sel
}
