// Package observability: métricas Prometheus de la API y del gateway de datos.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics registro propio con las métricas de la aplicación.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	gatewayTotal    *prometheus.CounterVec
	gatewayDuration *prometheus.HistogramVec
}

// NewMetrics inicializa el registro y las métricas base.
func NewMetrics(namespace string) *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Peticiones HTTP por ruta, método y estado.",
	}, []string{"route", "method", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duración de las peticiones HTTP por ruta.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})
	gateway := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gateway_requests_total",
		Help:      "Llamadas al backend de datos por tabla, operación y resultado.",
	}, []string{"table", "operation", "outcome"})
	gatewayDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "gateway_request_duration_seconds",
		Help:      "Duración de las llamadas al backend de datos.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"table", "operation"})
	registry.MustRegister(requests, duration, gateway, gatewayDuration)
	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		gatewayTotal:    gateway,
		gatewayDuration: gatewayDuration,
	}
}

// Handler devuelve el http.Handler para /metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware registra conteo y duración de cada petición usando la ruta declarada.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if m == nil {
			return c.Next()
		}
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		route := c.Route().Path
		if route == "" || (route == "/" && c.Path() != "/") {
			route = "unknown"
		}
		m.requestsTotal.WithLabelValues(route, c.Method(), strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(route, c.Method()).Observe(time.Since(start).Seconds())
		return err
	}
}

// ObserveGateway registra una llamada al backend de datos.
func (m *Metrics) ObserveGateway(table, operation, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.gatewayTotal.WithLabelValues(table, operation, outcome).Inc()
	m.gatewayDuration.WithLabelValues(table, operation).Observe(elapsed.Seconds())
}
