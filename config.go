package blogpodcast

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// SiteConfig holds the site-wide settings the plugin needs from the host.
type SiteConfig struct {
	RootURL           string `yaml:"root_url"`           // Site root URL (default "http://localhost:8080")
	RenderDestination string `yaml:"render_destination"` // Output directory for feeds (default "out")
	FeedConcurrency   int    `yaml:"feed_concurrency"`   // Parallel feed tasks (default 4)
}

func (c *SiteConfig) setDefaults() {
	if c.RootURL == "" {
		c.RootURL = "http://localhost:8080"
	}
	if c.RenderDestination == "" {
		c.RenderDestination = "out"
	}
	if c.FeedConcurrency <= 0 {
		c.FeedConcurrency = 4
	}
}

// BlogConfig is the matcher, pagination and feed configuration of one blog.
type BlogConfig struct {
	RSS      RSSConfig `yaml:"rss"`
	RSSURL   string    `yaml:"rssurl"`
	RootPath string    `yaml:"rootPath"`

	// MaxEntries caps the document listing; zero or negative means unlimited.
	MaxEntries int `yaml:"maxEntries"`
	// MaxItems caps feed items only. Nil selects the default of 60, zero or
	// negative disables the cap.
	MaxItems *int `yaml:"maxItems"`
	StartAt  int  `yaml:"startAt"`

	Matchers      *Matchers `yaml:"matchers"`
	IndexMatchers *Matchers `yaml:"indexmatchers"`
}

// Matchers select which documents belong to a blog. Path and RenderPath
// take a string (compiled as a regular expression), a *regexp.Regexp or a
// PathMatcher. Layouts takes one layout name or a list.
type Matchers struct {
	Path          any      `yaml:"path"`
	RenderPath    any      `yaml:"renderpath"`
	Layouts       any      `yaml:"layouts"`
	Glob          string   `yaml:"glob"`
	RendersToHTML *bool    `yaml:"rendersToHTML"`
	BlogTags      []string `yaml:"blogtags"`
	RootPath      string   `yaml:"rootPath"`
}

// RSSConfig is feed channel metadata, passed through to the FeedGenerator.
type RSSConfig struct {
	Title          string   `yaml:"title"`
	Description    string   `yaml:"description"`
	SiteURL        string   `yaml:"site_url"`
	ImageURL       string   `yaml:"image_url"`
	ManagingEditor string   `yaml:"managingEditor"`
	WebMaster      string   `yaml:"webMaster"`
	Copyright      string   `yaml:"copyright"`
	Language       string   `yaml:"language"`
	Categories     []string `yaml:"categories"`
}

// Overrides are per-invocation settings, typically element attributes,
// merged onto a copy of the registered BlogConfig.
type Overrides struct {
	MaxEntries *int
	RootPath   string
}

// clone copies cfg deeply enough that callers cannot reach the receiver's
// slices or matcher structs.
func (cfg BlogConfig) clone() BlogConfig {
	out := cfg
	out.RSS.Categories = append([]string(nil), cfg.RSS.Categories...)
	if cfg.MaxItems != nil {
		n := *cfg.MaxItems
		out.MaxItems = &n
	}
	if cfg.Matchers != nil {
		m := *cfg.Matchers
		m.BlogTags = append([]string(nil), cfg.Matchers.BlogTags...)
		out.Matchers = &m
	}
	if cfg.IndexMatchers != nil {
		m := *cfg.IndexMatchers
		m.BlogTags = append([]string(nil), cfg.IndexMatchers.BlogTags...)
		out.IndexMatchers = &m
	}
	return out
}

func (cfg BlogConfig) merge(ov Overrides) BlogConfig {
	out := cfg.clone()
	if ov.MaxEntries != nil {
		out.MaxEntries = *ov.MaxEntries
	}
	if ov.RootPath != "" {
		if out.Matchers == nil {
			out.Matchers = &Matchers{}
		}
		out.Matchers.RootPath = ov.RootPath
	}
	return out
}

// SiteFile is the YAML document describing a site and its blogs.
type SiteFile struct {
	Site  SiteConfig            `yaml:"site"`
	Blogs map[string]BlogConfig `yaml:"blogs"`
}

// LoadSiteFile reads and parses a YAML site file.
func LoadSiteFile(path string) (SiteFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SiteFile{}, fmt.Errorf("blogpodcast: read site file: %w", err)
	}
	return ParseSiteFile(data)
}

// ParseSiteFile parses a YAML site file.
func ParseSiteFile(data []byte) (SiteFile, error) {
	var sf SiteFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return SiteFile{}, fmt.Errorf("blogpodcast: parse site file: %w", err)
	}
	return sf, nil
}

// Option configures additional Plugin behavior.
type Option func(*Plugin)

// WithLogger sets the structured logger (default slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(p *Plugin) {
		p.logger = l
	}
}

// WithRenderer sets the partial renderer used by template elements.
func WithRenderer(r Renderer) Option {
	return func(p *Plugin) {
		p.renderer = r
	}
}

// WithFeedGenerator sets the feed writer (default RSSWriter into
// SiteConfig.RenderDestination).
func WithFeedGenerator(g FeedGenerator) Option {
	return func(p *Plugin) {
		p.feeds = g
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m MetricsCollector) Option {
	return func(p *Plugin) {
		p.metrics = m
	}
}

// WithClock overrides time.Now, used for feed publication dates.
func WithClock(now func() time.Time) Option {
	return func(p *Plugin) {
		p.now = now
	}
}
