package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	Registry        *prometheus.Registry
	CheckinResults  *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	checkinResults := promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
		Name: "checkin_results_total",
		Help: "Total number of check-in and check-out attempts by outcome.",
	}, []string{"op", "code"})

	requestDuration := promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.3, 0.6, 1, 3, 6},
	}, []string{"method", "route", "status"})

	return &Metrics{
		Registry:        reg,
		CheckinResults:  checkinResults,
		RequestDuration: requestDuration,
	}
}

// ObserveCheckin counts one engine outcome. Safe on a nil receiver.
func (m *Metrics) ObserveCheckin(op, code string) {
	if m == nil {
		return
	}
	m.CheckinResults.WithLabelValues(op, code).Inc()
}

// Middleware records request latency labelled by the matched route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
	return gin.WrapH(h)
}
