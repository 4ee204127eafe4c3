// Package metrics provides Prometheus instrumentation for the dispatch
// and exec packages: task, band, wait, and graph-merge collectors.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collectors exposes the counters and gauges Executor and WaitRegistry
// update during execution. All metrics are namespaced "chatroute_".
//
//  1. inflight_tasks (gauge): tasks currently Running.
//  2. wait_candidates_queued (gauge): tasks currently Paused in the
//     WaitRegistry.
//  3. band_latency_ms (histogram, label band): time to drain one
//     priority band.
//  4. timeouts_total (counter): wait_until deadlines that fired.
//  5. handler_exceptions_total (counter, label band): handler errors.
//  6. merges_total (counter): RoutingGraph node merges detected.
type Collectors struct {
	inflightTasks  prometheus.Gauge
	waitQueued     prometheus.Gauge
	bandLatency    *prometheus.HistogramVec
	timeouts       prometheus.Counter
	handlerErrors  *prometheus.CounterVec
	merges         prometheus.Counter

	mu      sync.RWMutex
	enabled bool
}

// New creates and registers every collector against registry. A nil
// registry defaults to prometheus.DefaultRegisterer.
func New(registry prometheus.Registerer) *Collectors {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &Collectors{
		inflightTasks: factory.NewGauge(prometheus.GaugeOpts{
			Name: "chatroute_inflight_tasks",
			Help: "Number of tasks currently running.",
		}),
		waitQueued: factory.NewGauge(prometheus.GaugeOpts{
			Name: "chatroute_wait_candidates_queued",
			Help: "Number of tasks currently paused awaiting a wakeup.",
		}),
		bandLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "chatroute_band_latency_ms",
			Help:    "Time in milliseconds to drain one priority band.",
			Buckets: []float64{1, 5, 10, 50, 100, 500, 1000, 5000},
		}, []string{"band"}),
		timeouts: factory.NewCounter(prometheus.CounterOpts{
			Name: "chatroute_timeouts_total",
			Help: "Number of wait_until deadlines that fired.",
		}),
		handlerErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chatroute_handler_exceptions_total",
			Help: "Number of handler errors, by priority band.",
		}, []string{"band"}),
		merges: factory.NewCounter(prometheus.CounterOpts{
			Name: "chatroute_merges_total",
			Help: "Number of RoutingGraph node merges detected.",
		}),
		enabled: true,
	}
}

func (c *Collectors) SetInflightTasks(n int) {
	if !c.isEnabled() {
		return
	}
	c.inflightTasks.Set(float64(n))
}

func (c *Collectors) SetWaitQueued(n int) {
	if !c.isEnabled() {
		return
	}
	c.waitQueued.Set(float64(n))
}

func (c *Collectors) ObserveBandLatencyMS(band string, ms float64) {
	if !c.isEnabled() {
		return
	}
	c.bandLatency.WithLabelValues(band).Observe(ms)
}

func (c *Collectors) IncTimeouts() {
	if !c.isEnabled() {
		return
	}
	c.timeouts.Inc()
}

func (c *Collectors) IncHandlerErrors(band string) {
	if !c.isEnabled() {
		return
	}
	c.handlerErrors.WithLabelValues(band).Inc()
}

func (c *Collectors) IncMerges() {
	if !c.isEnabled() {
		return
	}
	c.merges.Inc()
}

// Disable turns off recording without unregistering the collectors.
func (c *Collectors) Disable() {
	c.mu.Lock()
	c.enabled = false
	c.mu.Unlock()
}

func (c *Collectors) isEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.enabled
}
