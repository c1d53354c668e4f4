// Package metrics exposes the matching core's Prometheus surface:
// orders placed/filled, trades executed, ladder depth per side per
// pair, and match latency. It carries none of the margin/PnL/
// liquidation/funding gauges a perpetual exchange would need, since
// this core has no positions to track.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	collector     *Collector
	collectorOnce sync.Once
)

// Collector holds every metric this core emits.
type Collector struct {
	OrdersTotal   *prometheus.CounterVec
	OrdersActive  *prometheus.GaugeVec
	OrderLatency  *prometheus.HistogramVec

	MatchingLatency *prometheus.HistogramVec

	LadderDepth *prometheus.GaugeVec

	TradesTotal  *prometheus.CounterVec
	TradeVolume  *prometheus.CounterVec

	WSConnectionsActive prometheus.Gauge
}

// GetCollector returns the singleton metrics collector, registering
// it with the default Prometheus registry on first call.
func GetCollector() *Collector {
	collectorOnce.Do(func() {
		collector = newCollector()
	})
	return collector
}

func newCollector() *Collector {
	c := &Collector{}

	c.OrdersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "spotdex",
			Subsystem: "orders",
			Name:      "total",
			Help:      "Total number of limit orders created",
		},
		[]string{"pair", "side", "status"},
	)

	c.OrdersActive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "spotdex",
			Subsystem: "orders",
			Name:      "active",
			Help:      "Number of orders still Created or PartialFilled",
		},
		[]string{"pair", "side"},
	)

	c.OrderLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "spotdex",
			Subsystem: "orders",
			Name:      "latency_ms",
			Help:      "CreateLimitOrder end-to-end latency in milliseconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100},
		},
		[]string{"pair"},
	)

	c.MatchingLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "spotdex",
			Subsystem: "matching",
			Name:      "latency_ms",
			Help:      "Matcher.Match latency in milliseconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 25},
		},
		[]string{"pair"},
	)

	c.LadderDepth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "spotdex",
			Subsystem: "ladder",
			Name:      "depth",
			Help:      "Number of non-sentinel price levels on one side of a pair's ladder",
		},
		[]string{"pair", "side"},
	)

	c.TradesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "spotdex",
			Subsystem: "trades",
			Name:      "total",
			Help:      "Total number of trades executed",
		},
		[]string{"pair"},
	)

	c.TradeVolume = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "spotdex",
			Subsystem: "trades",
			Name:      "base_volume",
			Help:      "Total base-asset volume traded",
		},
		[]string{"pair"},
	)

	c.WSConnectionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "spotdex",
			Subsystem: "feed",
			Name:      "connections_active",
			Help:      "Number of subscribed market-data feed clients",
		},
	)

	c.registerAll()
	return c
}

func (c *Collector) registerAll() {
	prometheus.MustRegister(
		c.OrdersTotal,
		c.OrdersActive,
		c.OrderLatency,
		c.MatchingLatency,
		c.LadderDepth,
		c.TradesTotal,
		c.TradeVolume,
		c.WSConnectionsActive,
	)
}

// RecordOrder records a CreateLimitOrder outcome.
func (c *Collector) RecordOrder(pair, side, status string) {
	c.OrdersTotal.WithLabelValues(pair, side, status).Inc()
}

// RecordOrderLatency records CreateLimitOrder's end-to-end latency.
func (c *Collector) RecordOrderLatency(pair string, latencyMs float64) {
	c.OrderLatency.WithLabelValues(pair).Observe(latencyMs)
}

// RecordMatchingLatency records Matcher.Match's latency.
func (c *Collector) RecordMatchingLatency(pair string, latencyMs float64) {
	c.MatchingLatency.WithLabelValues(pair).Observe(latencyMs)
}

// RecordTrade records a single executed trade.
func (c *Collector) RecordTrade(pair string, baseVolume float64) {
	c.TradesTotal.WithLabelValues(pair).Inc()
	c.TradeVolume.WithLabelValues(pair).Add(baseVolume)
}

// SetLadderDepth sets the current number of resting price levels on
// one side of a pair's ladder.
func (c *Collector) SetLadderDepth(pair, side string, depth int) {
	c.LadderDepth.WithLabelValues(pair, side).Set(float64(depth))
}

// RecordWSConnection adjusts the active feed-connection gauge by delta.
func (c *Collector) RecordWSConnection(delta int) {
	c.WSConnectionsActive.Add(float64(delta))
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer measures elapsed latency for a RecordOrderLatency/
// RecordMatchingLatency call.
type Timer struct {
	start time.Time
}

// NewTimer starts a new Timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ElapsedMs returns the elapsed time in milliseconds.
func (t *Timer) ElapsedMs() float64 {
	return float64(time.Since(t.start).Microseconds()) / 1000.0
}
