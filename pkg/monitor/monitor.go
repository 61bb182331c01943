package monitor

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics HTTP 层指标
type HTTPMetrics struct {
	// RequestsTotal 记录 HTTP 请求总量
	RequestsTotal *prometheus.CounterVec
	// RequestDuration 记录 HTTP 请求耗时 (Histogram)
	RequestDuration *prometheus.HistogramVec
}

// NewHTTPMetrics 创建并注册 HTTP 指标
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	m := &HTTPMetrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency distributions.",
				Buckets: []float64{0.1, 0.3, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0}, // 扫描请求可能很慢
			},
			[]string{"method", "path"},
		),
	}
	reg.MustRegister(m.RequestsTotal, m.RequestDuration)
	return m
}

// Middleware returns a gin middleware for monitoring
func (m *HTTPMetrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath() // 使用路由模板而不是具体路径

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		if path != "" { // 忽略 404 等未匹配路由
			m.RequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
			m.RequestDuration.WithLabelValues(c.Request.Method, path).Observe(duration)
		}
	}
}
