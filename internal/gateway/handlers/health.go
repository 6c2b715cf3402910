package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"resto-system/internal/health"
)

type HealthHTTPHandler struct {
	checker *health.Checker
}

func NewHealthHTTPHandler(checker *health.Checker) *HealthHTTPHandler {
	return &HealthHTTPHandler{checker: checker}
}

func (h *HealthHTTPHandler) Health(c *gin.Context) {
	healthy, _ := h.checker.Check(c.Request.Context())

	status := "healthy"
	httpStatus := http.StatusOK
	if !healthy {
		status = "unavailable"
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, gin.H{
		"status":    status,
		"message":   "Server is running",
		"timestamp": time.Now(),
	})
}

func (h *HealthHTTPHandler) DetailedHealth(c *gin.Context) {
	healthy, components := h.checker.Check(c.Request.Context())

	overallStatus := "healthy"
	for _, component := range components {
		if component.Status == "unavailable" {
			overallStatus = "degraded"
		}
	}
	httpStatus := http.StatusOK
	if !healthy {
		overallStatus = "unavailable"
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, gin.H{
		"overall_status": overallStatus,
		"services":       components,
		"timestamp":      time.Now(),
	})
}
