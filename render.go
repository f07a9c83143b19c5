package blogpodcast

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// Renderer renders a named partial template with data.
type Renderer interface {
	Partial(ctx context.Context, name string, data any) (string, error)
}

// PartialFunc builds the component for one partial from its data.
type PartialFunc func(data any) (templ.Component, error)

// TemplRenderer is a Renderer over templ components. The built-in partials
// are registered by NewTemplRenderer and may be replaced with Register.
type TemplRenderer struct {
	mu       sync.RWMutex
	partials map[string]PartialFunc
}

// NewTemplRenderer returns a renderer with the built-in blog partials.
func NewTemplRenderer() *TemplRenderer {
	r := &TemplRenderer{partials: make(map[string]PartialFunc)}
	r.Register(TemplateNewsRiver, newsRiverPartial)
	r.Register(TemplateNewsIndexes, newsIndexesPartial)
	r.Register(TemplateRSSIcon, rssIconPartial)
	r.Register(TemplateRSSLink, rssLinkPartial)
	r.Register(TemplateFeedsAll, feedsAllPartial)
	r.Register(TemplateNextPrev, nextPrevPartial)
	return r
}

// Register adds or replaces a partial.
func (r *TemplRenderer) Register(name string, fn PartialFunc) {
	r.mu.Lock()
	r.partials[name] = fn
	r.mu.Unlock()
}

// Names lists the registered partials.
func (r *TemplRenderer) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.partials))
	for n := range r.partials {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Component returns the component for a partial without rendering it.
func (r *TemplRenderer) Component(name string, data any) (templ.Component, error) {
	r.mu.RLock()
	fn, ok := r.partials[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("blogpodcast: no partial named %q", name)
	}
	return fn(data)
}

// Partial renders a partial to a string.
func (r *TemplRenderer) Partial(ctx context.Context, name string, data any) (string, error) {
	cmp, err := r.Component(name, data)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if err := cmp.Render(ctx, &b); err != nil {
		return "", fmt.Errorf("blogpodcast: render %s: %w", name, err)
	}
	return b.String(), nil
}

// Render writes a templ component as an HTTP 200 HTML response.
func Render(c echo.Context, cmp templ.Component) error {
	return RenderStatus(c, http.StatusOK, cmp)
}

// RenderStatus writes a templ component with a specific HTTP status code.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	return cmp.Render(c.Request().Context(), c.Response().Writer)
}
