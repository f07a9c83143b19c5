package blogpodcast

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// RegisterRoutes mounts the preview endpoints on e: each blog's feed at
// its rssurl, plus read-only inspection routes under /_blogs.
func (p *Plugin) RegisterRoutes(e *echo.Echo) {
	for _, s := range p.Summaries() {
		if s.FeedURL == "" {
			continue
		}
		tag := s.Tag
		e.GET("/"+strings.TrimPrefix(s.FeedURL, "/"), func(c echo.Context) error {
			return p.handleFeed(c, tag)
		})
	}

	g := e.Group("/_blogs")
	g.GET("/", p.handleBlogList)
	g.GET("/:tag/config", p.handleBlogConfig)
	g.GET("/:tag/items", p.handleBlogItems)
	g.GET("/:tag/indexes", p.handleBlogIndexes)
	g.GET("/:tag/river", p.handleNewsRiver)
}

func (p *Plugin) handleFeed(c echo.Context, tag string) error {
	feed, err := p.BuildFeed(c.Request().Context(), tag)
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	return WriteRSS(c.Response(), feed)
}

func (p *Plugin) handleBlogList(c echo.Context) error {
	return c.JSON(http.StatusOK, p.Summaries())
}

// blogConfigView is the JSON shape of a BlogConfig; matchers are shown in
// their resolved form.
type blogConfigView struct {
	Tag        string    `json:"tag"`
	RSS        RSSConfig `json:"rss"`
	RSSURL     string    `json:"rssurl"`
	MaxEntries int       `json:"maxEntries"`
	MaxItems   int       `json:"maxItems"`
	StartAt    int       `json:"startAt"`
	Path       string    `json:"path"`
	RenderPath string    `json:"renderpath"`
	Glob       string    `json:"glob,omitempty"`
	Layouts    []string  `json:"layouts,omitempty"`
	BlogTags   []string  `json:"blogtags,omitempty"`
	RootPath   string    `json:"rootPath,omitempty"`
}

func (p *Plugin) handleBlogConfig(c echo.Context) error {
	tag := c.Param("tag")
	sel, cfg, err := p.Selector(tag, Overrides{})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, blogConfigView{
		Tag:        tag,
		RSS:        cfg.RSS,
		RSSURL:     cfg.RSSURL,
		MaxEntries: cfg.MaxEntries,
		MaxItems:   feedItemLimit(cfg.MaxItems),
		StartAt:    cfg.StartAt,
		Path:       sel.Path.String(),
		RenderPath: sel.RenderPath.String(),
		Glob:       sel.Glob,
		Layouts:    sel.Layouts,
		BlogTags:   sel.Tags,
		RootPath:   sel.RootPath,
	})
}

func (p *Plugin) handleBlogItems(c echo.Context) error {
	docs, err := p.FindBlogDocs(c.Request().Context(), c.Param("tag"), Overrides{})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, docs)
}

func (p *Plugin) handleBlogIndexes(c echo.Context) error {
	docs, err := p.FindBlogIndexes(c.Request().Context(), c.Param("tag"), Overrides{})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, docs)
}

func (p *Plugin) handleNewsRiver(c echo.Context) error {
	tag := c.Param("tag")
	cfg, err := p.BlogConfig(tag)
	if err != nil {
		return err
	}
	docs, err := p.FindBlogDocs(c.Request().Context(), tag, Overrides{})
	if err != nil {
		return err
	}
	data := NewsRiverData{BlogTag: tag, Documents: docs, FeedURL: cfg.RSSURL}
	if tr, ok := p.renderer.(*TemplRenderer); ok {
		cmp, err := tr.Component(TemplateNewsRiver, data)
		if err != nil {
			return err
		}
		return Render(c, cmp)
	}
	out, err := p.renderer.Partial(c.Request().Context(), TemplateNewsRiver, data)
	if err != nil {
		return err
	}
	return c.HTML(http.StatusOK, out)
}
