// Package metrics exposes Prometheus counters for the HTTP surface and the
// comment flow.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	requests      *prometheus.CounterVec
	latency       *prometheus.HistogramVec
	comments      prometheus.Counter
	notifications *prometheus.CounterVec
	rateLimited   prometheus.Counter
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blog_http_requests_total",
			Help: "HTTP requests by route and status code.",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "blog_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		comments: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blog_comments_created_total",
			Help: "Comments stored.",
		}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blog_notifications_total",
			Help: "Comment notifications by outcome.",
		}, []string{"outcome"}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blog_rate_limited_total",
			Help: "Requests refused by the rate limiter.",
		}),
	}

	reg.MustRegister(c.requests, c.latency, c.comments, c.notifications, c.rateLimited)
	return c
}

func (c *Collector) RecordRequest(method, route string, status int, d time.Duration) {
	c.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.latency.WithLabelValues(method, route).Observe(d.Seconds())
}

func (c *Collector) RecordCommentCreated() {
	c.comments.Inc()
}

func (c *Collector) RecordNotification(ok bool) {
	outcome := "delivered"
	if !ok {
		outcome = "failed"
	}
	c.notifications.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordRateLimited() {
	c.rateLimited.Inc()
}

// Handler serves the Prometheus scrape endpoint.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
