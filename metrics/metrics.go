package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns its registry so tests can build as many as they like.
// A nil *Metrics records nothing.
type Metrics struct {
	registry  *prometheus.Registry
	Requests  *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec
	Checkouts *prometheus.CounterVec
	Callbacks *prometheus.CounterVec
	Expired   prometheus.Counter
}

func New() *Metrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fashionshop",
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"route", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "fashionshop",
		Name:      "http_request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"route"})
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fashionshop",
		Subsystem: "checkout",
		Name:      "orders_total",
		Help:      "Checkout attempts by outcome.",
	}, []string{"result"})
	callbacks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fashionshop",
		Subsystem: "payment",
		Name:      "callbacks_total",
		Help:      "Gateway callbacks by outcome.",
	}, []string{"result"})
	expired := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "fashionshop",
		Subsystem: "payment",
		Name:      "expired_total",
		Help:      "Pending online payments marked failed after the gateway window closed.",
	})

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		requests, latency, checkouts, callbacks, expired,
	)
	return &Metrics{
		registry:  reg,
		Requests:  requests,
		LatencyMS: latency,
		Checkouts: checkouts,
		Callbacks: callbacks,
		Expired:   expired,
	}
}

func (m *Metrics) CheckoutResult(result string) {
	if m == nil {
		return
	}
	m.Checkouts.WithLabelValues(result).Inc()
}

func (m *Metrics) CallbackResult(result string) {
	if m == nil {
		return
	}
	m.Callbacks.WithLabelValues(result).Inc()
}

func (m *Metrics) PaymentsExpired(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.Expired.Add(float64(n))
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware counts requests by matched route so path ids do not explode the label set.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.Requests.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
		m.LatencyMS.WithLabelValues(route).Observe(float64(time.Since(start).Milliseconds()))
	}
}
