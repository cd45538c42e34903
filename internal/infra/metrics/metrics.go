// Package metrics exposes Prometheus instrumentation for the classifier.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aalvaropc/diagroute/internal/domain"
	"github.com/aalvaropc/diagroute/internal/ports"
)

// Metrics holds the classifier collectors and the registry they live in.
type Metrics struct {
	registry *prometheus.Registry

	Classifications *prometheus.CounterVec
	RuleHits        *prometheus.CounterVec
	Errors          *prometheus.CounterVec
	Latency         *prometheus.HistogramVec
}

// New registers the collectors on a fresh registry, so several instances
// (one per test, for example) never collide.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Classifications: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "diagroute_classifications_total",
				Help: "Classified requests by tool and confidence",
			},
			[]string{"tool", "confidence"},
		),
		RuleHits: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "diagroute_rule_hits_total",
				Help: "Deciding rule per classified request",
			},
			[]string{"rule"},
		),
		Errors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "diagroute_classification_errors_total",
				Help: "Failed classifications by error kind",
			},
			[]string{"op", "kind"},
		),
		Latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "diagroute_classification_duration_seconds",
				Help:    "Time spent classifying one request",
				Buckets: prometheus.ExponentialBuckets(0.00005, 2, 12), // 50µs to ~100ms
			},
			[]string{"op"},
		),
	}
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Classifier records metrics around another classifier.
type Classifier struct {
	next ports.Classifier
	m    *Metrics
}

var _ ports.Classifier = (*Classifier)(nil)

func Instrument(next ports.Classifier, m *Metrics) *Classifier {
	return &Classifier{next: next, m: m}
}

func (c *Classifier) Classify(ctx context.Context, request string) (domain.Classification, error) {
	start := time.Now()
	out, err := c.next.Classify(ctx, request)
	c.observe("classify", start, out, err)
	return out, err
}

func (c *Classifier) Explain(ctx context.Context, request string) (domain.Explanation, error) {
	start := time.Now()
	out, err := c.next.Explain(ctx, request)
	c.observe("explain", start, out.Classification, err)
	return out, err
}

func (c *Classifier) observe(op string, start time.Time, out domain.Classification, err error) {
	c.m.Latency.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		c.m.Errors.WithLabelValues(op, errorKind(err)).Inc()
		return
	}
	c.m.Classifications.WithLabelValues(string(out.Tool), string(out.Confidence)).Inc()
	c.m.RuleHits.WithLabelValues(ruleLabel(out.Rule)).Inc()
}

func errorKind(err error) string {
	var oe *domain.OpError
	switch {
	case errors.As(err, &oe) && oe.Kind != "":
		return string(oe.Kind)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "unknown"
	}
}

func ruleLabel(n int) string {
	if n < 1 {
		return "none"
	}
	return strconv.Itoa(n)
}
