package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/eteeap/admissions-api/internal/service"
)

// MetricsHandler exposes the Prometheus scrape endpoint.
type MetricsHandler struct {
	metrics *service.MetricsService
}

// NewMetricsHandler creates a new handler.
func NewMetricsHandler(metrics *service.MetricsService) *MetricsHandler {
	return &MetricsHandler{metrics: metrics}
}

// Metrics serves the registry in Prometheus exposition format.
func (h *MetricsHandler) Metrics(c *gin.Context) {
	gin.WrapH(h.metrics.Handler())(c)
}
