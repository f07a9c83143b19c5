package blogpodcast

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector receives query and feed generation events.
type MetricsCollector interface {
	RecordQuery(tag string, documents int)
	RecordDateErrors(tag string, count int)
	RecordFeedGenerated(tag string, items int, duration time.Duration)
	RecordFeedFailure(tag string)
}

type nopMetrics struct{}

func (nopMetrics) RecordQuery(string, int) {}
func (nopMetrics) RecordDateErrors(string, int) {}
func (nopMetrics) RecordFeedGenerated(string, int, time.Duration) {}
func (nopMetrics) RecordFeedFailure(string) {}

// Collector is the Prometheus MetricsCollector.
type Collector struct {
	queryDocs     *prometheus.HistogramVec
	dateErrors    *prometheus.CounterVec
	feedsOK       *prometheus.CounterVec
	feedFailures  *prometheus.CounterVec
	feedItems     *prometheus.GaugeVec
	feedDurations prometheus.Histogram
}

// NewCollector creates a Collector and registers it with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		queryDocs: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "blogpodcast_query_documents",
			Help:    "Documents returned per blog query.",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 1000},
		}, []string{"blogtag"}),
		dateErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blogpodcast_date_errors_total",
			Help: "Documents whose timestamp could not be resolved.",
		}, []string{"blogtag"}),
		feedsOK: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blogpodcast_feeds_generated_total",
			Help: "Feeds written successfully.",
		}, []string{"blogtag"}),
		feedFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blogpodcast_feed_failures_total",
			Help: "Feed generation failures.",
		}, []string{"blogtag"}),
		feedItems: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "blogpodcast_feed_items",
			Help: "Items in the most recently generated feed.",
		}, []string{"blogtag"}),
		feedDurations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "blogpodcast_feed_duration_seconds",
			Help:    "Time spent generating one feed.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.queryDocs,
		c.dateErrors,
		c.feedsOK,
		c.feedFailures,
		c.feedItems,
		c.feedDurations,
	)

	return c
}

// RecordQuery observes the size of one blog listing.
func (c *Collector) RecordQuery(tag string, documents int) {
	c.queryDocs.WithLabelValues(tag).Observe(float64(documents))
}

// RecordDateErrors counts documents whose timestamp did not resolve.
func (c *Collector) RecordDateErrors(tag string, count int) {
	c.dateErrors.WithLabelValues(tag).Add(float64(count))
}

// RecordFeedGenerated records a written feed, its size and duration.
func (c *Collector) RecordFeedGenerated(tag string, items int, duration time.Duration) {
	c.feedsOK.WithLabelValues(tag).Inc()
	c.feedItems.WithLabelValues(tag).Set(float64(items))
	c.feedDurations.Observe(duration.Seconds())
}

// RecordFeedFailure counts a feed that could not be built or written.
func (c *Collector) RecordFeedFailure(tag string) {
	c.feedFailures.WithLabelValues(tag).Inc()
}

// MetricsHandler returns the Prometheus scrape handler for gatherer.
func MetricsHandler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
