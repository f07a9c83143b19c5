package blogpodcast

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// DefaultMaxItems caps a feed when BlogConfig.MaxItems is unset.
const DefaultMaxItems = 60

// FeedGenerator writes one blog's feed artifact.
type FeedGenerator interface {
	GenerateFeed(ctx context.Context, feed Feed) error
}

// feedItemLimit returns the feed cap, zero meaning none.
func feedItemLimit(maxItems *int) int {
	if maxItems == nil {
		return DefaultMaxItems
	}
	if *maxItems <= 0 {
		return 0
	}
	return *maxItems
}

// ProjectFeedItems maps an ordered document listing to feed items and
// truncates the result to maxItems.
func ProjectFeedItems(docs []Document, rootURL string, maxItems *int) ([]FeedItem, error) {
	base, err := parseRootURL(rootURL)
	if err != nil {
		return nil, err
	}
	items := make([]FeedItem, 0, len(docs))
	var problems []DateProblem
	for _, d := range docs {
		at, err := ResolveTimestamp(d)
		if err != nil {
			problems = append(problems, DateProblem{VPath: d.VPath, Value: d.Metadata.PublicationDate, Err: err})
			continue
		}
		items = append(items, FeedItem{
			Title:       d.Metadata.Title,
			Description: d.Metadata.Teaser,
			URL:         joinURL(base, d.RenderPath),
			Date:        at,
		})
	}
	if len(problems) > 0 {
		return nil, &DateResolutionError{Problems: problems}
	}
	if limit := feedItemLimit(maxItems); limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// BuildFeed assembles the feed for one blog without writing it.
func (p *Plugin) BuildFeed(ctx context.Context, tag string) (Feed, error) {
	cfg, err := p.BlogConfig(tag)
	if err != nil {
		return Feed{}, err
	}
	if cfg.RSSURL == "" {
		return Feed{}, &ConfigurationError{Tag: tag, Reason: "no rssurl configured"}
	}
	feedURL, err := FeedURL(p.Config.RootURL, cfg.RSSURL)
	if err != nil {
		return Feed{}, err
	}
	docs, err := p.FindBlogDocs(ctx, tag, Overrides{})
	if err != nil {
		return Feed{}, err
	}
	items, err := ProjectFeedItems(docs, p.Config.RootURL, cfg.MaxItems)
	if err != nil {
		return Feed{}, err
	}
	return Feed{
		BlogTag:  tag,
		Meta:     cfg.RSS,
		FeedURL:  feedURL,
		PubDate:  p.now(),
		Items:    items,
		RenderTo: cfg.RSSURL,
	}, nil
}

// GenerateFeed builds and writes the feed of one blog.
func (p *Plugin) GenerateFeed(ctx context.Context, tag string) FeedResult {
	start := time.Now()
	res := FeedResult{BlogTag: tag}
	feed, err := p.BuildFeed(ctx, tag)
	if err == nil {
		res.FeedURL = feed.FeedURL
		res.Items = len(feed.Items)
		if genErr := p.feeds.GenerateFeed(ctx, feed); genErr != nil {
			err = fmt.Errorf("blogpodcast: write feed for %q: %w", tag, genErr)
		}
	}
	res.Duration = time.Since(start)
	res.Err = err
	if err != nil {
		p.metrics.RecordFeedFailure(tag)
		return res
	}
	p.metrics.RecordFeedGenerated(tag, res.Items, res.Duration)
	return res
}

// GenerateAllFeeds writes every blog's feed concurrently. A failing blog is
// logged and reported in its FeedResult; it never stops the others.
// Results follow the sorted tag order.
func (p *Plugin) GenerateAllFeeds(ctx context.Context) []FeedResult {
	tags := p.Tags()
	results := make([]FeedResult, len(tags))

	workers := p.Config.FeedConcurrency
	if workers <= 0 {
		workers = 1
	}
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, tag := range tags {
		wg.Add(1)
		sem <- struct{}{}

		go func(i int, tag string) {
			defer wg.Done()
			defer func() { <-sem }()
			defer func() {
				if r := recover(); r != nil {
					results[i] = FeedResult{BlogTag: tag, Err: fmt.Errorf("blogpodcast: feed task panicked: %v", r)}
					p.metrics.RecordFeedFailure(tag)
					p.logger.Error("feed generation panicked", slog.String("blogtag", tag), slog.Any("panic", r))
				}
			}()

			res := p.GenerateFeed(ctx, tag)
			results[i] = res
			if res.Err != nil {
				attrs := []any{slog.String("blogtag", tag), slog.String("error", res.Err.Error())}
				var dre *DateResolutionError
				if errors.As(res.Err, &dre) {
					attrs = append(attrs, slog.Any("documents", dre.VPaths()))
				}
				p.logger.Error("feed generation failed", attrs...)
				return
			}
			p.logger.Info("generated feed",
				slog.String("blogtag", tag),
				slog.String("feed_url", res.FeedURL),
				slog.Int("items", res.Items),
				slog.Float64("duration_ms", float64(res.Duration.Milliseconds())),
			)
		}(i, tag)
	}

	wg.Wait()

	return results
}
