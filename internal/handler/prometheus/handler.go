package prometheus

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handler struct {
	registry        *prometheus.Registry
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	errorTotal      *prometheus.CounterVec
}

func New() *Handler {
	registry := prometheus.NewRegistry()
	h := &Handler{
		registry: registry,
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "safefam",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "safefam",
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		errorTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "safefam",
				Name:      "http_errors_total",
				Help:      "Total number of HTTP responses with status >= 400",
			},
			[]string{"method", "path", "status"},
		),
	}

	registry.MustRegister(
		h.requestDuration,
		h.requestTotal,
		h.errorTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return h
}

// Registry lets other components register collectors next to the HTTP ones.
func (h *Handler) Registry() *prometheus.Registry {
	return h.registry
}

// Middleware labels by route template so ids do not explode cardinality.
// Unmatched routes share the "unmatched" label.
func (h *Handler) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		h.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
		h.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		if c.Writer.Status() >= 400 {
			h.errorTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		}
	}
}

func (h *Handler) Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(h.registry, promhttp.HandlerOpts{}))
}
