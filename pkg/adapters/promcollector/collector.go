// Package promcollector exports player decode counters to Prometheus.
package promcollector

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/user/happlay/pkg/framecache"
)

const namespace = "happlay_"

// Source is the part of a player the collector reads.
type Source interface {
	Session() string
	ResolvedFilePath() string
	Stats() framecache.Stats
	CurrentFrame() int
	DecodeFailed() bool
}

type snapshot struct {
	path    string
	stats   framecache.Stats
	current int
	failed  bool
}

// Collector implements prometheus.Collector over player snapshots.
// Players are not safe for concurrent use, so the owner of each player
// calls Observe from its update loop and scrapes read the last snapshot.
type Collector struct {
	mu        sync.Mutex
	snapshots map[string]snapshot

	requests  *prometheus.Desc
	cacheHits *prometheus.Desc
	decodes   *prometheus.Desc
	failures  *prometheus.Desc
	discarded *prometheus.Desc
	current   *prometheus.Desc
	failed    *prometheus.Desc

	latency prometheus.Histogram
}

// New creates an empty collector.
func New() *Collector {
	labels := []string{"session", "path"}
	return &Collector{
		snapshots: make(map[string]snapshot),
		requests: prometheus.NewDesc(
			namespace+"frame_requests_total",
			"Number of frame requests made by the update loop",
			labels, nil,
		),
		cacheHits: prometheus.NewDesc(
			namespace+"frame_cache_hits_total",
			"Number of requests satisfied by the published frame",
			labels, nil,
		),
		decodes: prometheus.NewDesc(
			namespace+"frame_decodes_total",
			"Number of frames decoded and published",
			labels, nil,
		),
		failures: prometheus.NewDesc(
			namespace+"frame_decode_failures_total",
			"Number of failed decodes of the requested frame",
			labels, nil,
		),
		discarded: prometheus.NewDesc(
			namespace+"frame_decodes_discarded_total",
			"Number of decodes dropped because a newer frame was requested",
			labels, nil,
		),
		current: prometheus.NewDesc(
			namespace+"current_frame",
			"Index of the published frame, -1 before the first decode",
			labels, nil,
		),
		failed: prometheus.NewDesc(
			namespace+"decode_failed",
			"Whether the latest requested frame failed to decode (1=yes, 0=no)",
			labels, nil,
		),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    namespace + "frame_wait_seconds",
			Help:    "Time spent waiting for a requested frame to be published",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
	}
}

// Observe records the current counters of src.
func (c *Collector) Observe(src Source) {
	s := snapshot{
		path:    src.ResolvedFilePath(),
		stats:   src.Stats(),
		current: src.CurrentFrame(),
		failed:  src.DecodeFailed(),
	}
	c.mu.Lock()
	c.snapshots[src.Session()] = s
	c.mu.Unlock()
}

// Forget drops the series of a closed player.
func (c *Collector) Forget(session string) {
	c.mu.Lock()
	delete(c.snapshots, session)
	c.mu.Unlock()
}

// ObserveWait records how long one blocking frame request took.
func (c *Collector) ObserveWait(d time.Duration) {
	c.latency.Observe(d.Seconds())
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.requests
	ch <- c.cacheHits
	ch <- c.decodes
	ch <- c.failures
	ch <- c.discarded
	ch <- c.current
	ch <- c.failed
	c.latency.Describe(ch)
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for session, s := range c.snapshots {
		labels := []string{session, s.path}
		ch <- prometheus.MustNewConstMetric(c.requests, prometheus.CounterValue, float64(s.stats.Requests), labels...)
		ch <- prometheus.MustNewConstMetric(c.cacheHits, prometheus.CounterValue, float64(s.stats.CacheHits), labels...)
		ch <- prometheus.MustNewConstMetric(c.decodes, prometheus.CounterValue, float64(s.stats.Decodes), labels...)
		ch <- prometheus.MustNewConstMetric(c.failures, prometheus.CounterValue, float64(s.stats.Failures), labels...)
		ch <- prometheus.MustNewConstMetric(c.discarded, prometheus.CounterValue, float64(s.stats.Discarded), labels...)
		ch <- prometheus.MustNewConstMetric(c.current, prometheus.GaugeValue, float64(s.current), labels...)
		ch <- prometheus.MustNewConstMetric(c.failed, prometheus.GaugeValue, boolValue(s.failed), labels...)
	}
	c.latency.Collect(ch)
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

var _ prometheus.Collector = (*Collector)(nil)
