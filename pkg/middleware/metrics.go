package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/storage-platform/storage-service/pkg/metrics"
)

// MetricsMiddleware creates middleware that records HTTP metrics
func MetricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Skip metrics endpoint to avoid recursion
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		m.IncrementHTTPRequestsInFlight()
		defer m.DecrementHTTPRequestsInFlight()

		start := time.Now()

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()
		method := c.Request.Method
		path := c.FullPath()

		// If no route matched, use the raw path
		if path == "" {
			path = c.Request.URL.Path
		}

		m.RecordHTTPRequest(method, path, status, duration)
	}
}

// MetricsEndpoint returns a handler for the /metrics endpoint
func MetricsEndpoint(m *metrics.Metrics) gin.HandlerFunc {
	handler := m.Handler()
	return func(c *gin.Context) {
		handler.ServeHTTP(c.Writer, c.Request)
	}
}

// BusinessMetrics provides helpers for recording storage business metrics
type BusinessMetrics struct {
	metrics *metrics.Metrics
}

// NewBusinessMetrics creates a new BusinessMetrics helper
func NewBusinessMetrics(m *metrics.Metrics) *BusinessMetrics {
	return &BusinessMetrics{metrics: m}
}

// RecordShipmentProvisioned records a shipment provisioning
func (b *BusinessMetrics) RecordShipmentProvisioned(shipmentType string) {
	b.metrics.RecordShipmentProvisioned(shipmentType)
}

// RecordBoxesAssigned records boxes placed on a rack
func (b *BusinessMetrics) RecordBoxesAssigned(rackType string, count int) {
	b.metrics.RecordBoxesAssigned(rackType, count)
}

// RecordBoxesReleased records boxes leaving storage
func (b *BusinessMetrics) RecordBoxesReleased(outcome string, count int) {
	b.metrics.RecordBoxesReleased(outcome, count)
}

// RecordRackUtilization records a rack's utilization ratio
func (b *BusinessMetrics) RecordRackUtilization(rackID string, ratio float64) {
	b.metrics.SetRackUtilization(rackID, ratio)
}

// RecordCircuitBreakerState records circuit breaker state
func (b *BusinessMetrics) RecordCircuitBreakerState(name string, state int) {
	b.metrics.SetCircuitBreakerState(name, state)
}

// RecordCircuitBreakerTrip records a circuit breaker trip
func (b *BusinessMetrics) RecordCircuitBreakerTrip(name string) {
	b.metrics.RecordCircuitBreakerTrip(name)
}
