// Package metrics exposes prometheus counters for inspection sessions.
package metrics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// SessionMetrics tracks wrapper construction and guarded reads. A nil
// *SessionMetrics is valid and records nothing.
type SessionMetrics struct {
	wrappers     prometheus.Counter
	cacheHits    prometheus.Counter
	attrChecks   *prometheus.CounterVec
	refused      *prometheus.CounterVec
	previewItems prometheus.Histogram
	registry     prometheus.Gatherer
}

// NewSessionMetrics creates the collectors and registers them on reg.
func NewSessionMetrics(reg *prometheus.Registry) (*SessionMetrics, error) {
	m := &SessionMetrics{
		wrappers: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "objscope_access_wrappers_total",
			Help: "Total wrappers constructed by identity caches",
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "objscope_access_cache_hits_total",
			Help: "Total identity cache hits",
		}),
		attrChecks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "objscope_attribute_checks_total",
				Help: "Attribute safety checks by verdict",
			},
			[]string{"verdict"}, // "safe", "unsafe", "missing"
		),
		refused: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "objscope_guarded_reads_refused_total",
				Help: "Index, iteration and literal reads refused by type whitelists",
			},
			[]string{"op"},
		),
		previewItems: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "objscope_iter_preview_items",
			Help:    "Number of items returned by iteration previews",
			Buckets: prometheus.LinearBuckets(0, 3, 8),
		}),
		registry: reg,
	}

	for _, c := range []prometheus.Collector{m.wrappers, m.cacheHits, m.attrChecks, m.refused, m.previewItems} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register session metrics: %w", err)
		}
	}
	return m, nil
}

// WrapperCreated counts a new wrapper.
func (m *SessionMetrics) WrapperCreated() {
	if m == nil {
		return
	}
	m.wrappers.Inc()
}

// CacheHit counts an identity cache hit.
func (m *SessionMetrics) CacheHit() {
	if m == nil {
		return
	}
	m.cacheHits.Inc()
}

// AttributeChecked counts a safety verdict.
func (m *SessionMetrics) AttributeChecked(verdict string) {
	if m == nil {
		return
	}
	m.attrChecks.WithLabelValues(verdict).Inc()
}

// ReadRefused counts a read that a type whitelist refused.
func (m *SessionMetrics) ReadRefused(op string) {
	if m == nil {
		return
	}
	m.refused.WithLabelValues(op).Inc()
}

// PreviewReturned records the size of an iteration preview.
func (m *SessionMetrics) PreviewReturned(n int) {
	if m == nil {
		return
	}
	m.previewItems.Observe(float64(n))
}

// Summary renders every counter as "name{labels} value" lines, sorted.
// Histograms report their sample count.
func (m *SessionMetrics) Summary() ([]string, error) {
	if m == nil {
		return nil, nil
	}
	families, err := m.registry.Gather()
	if err != nil {
		return nil, err
	}
	var lines []string
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), "objscope_") {
			continue
		}
		for _, metric := range mf.GetMetric() {
			var labels []string
			for _, lp := range metric.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue()))
			}
			name := mf.GetName()
			if len(labels) > 0 {
				name += "{" + strings.Join(labels, ",") + "}"
			}
			var value float64
			switch {
			case metric.GetCounter() != nil:
				value = metric.GetCounter().GetValue()
			case metric.GetHistogram() != nil:
				value = float64(metric.GetHistogram().GetSampleCount())
			}
			lines = append(lines, fmt.Sprintf("%s %g", name, value))
		}
	}
	sort.Strings(lines)
	return lines, nil
}
