package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yshiba/webqa/internal/health"
	"github.com/yshiba/webqa/internal/models"
)

type HealthHandler struct {
	checker *health.HealthChecker
	logger  *logrus.Logger
}

func NewHealthHandler(checker *health.HealthChecker, logger *logrus.Logger) *HealthHandler {
	return &HealthHandler{
		checker: checker,
		logger:  logger,
	}
}

// HandleHealth serves the cached periodic status when Redis has one,
// falling back to a live check
func (h *HealthHandler) HandleHealth(c *gin.Context) {
	overall, err := h.checker.CheckCached(c.Request.Context())
	if err != nil {
		live := h.checker.CheckAll()
		overall = &live
	}

	services := make(map[string]string, len(overall.Services))
	for _, service := range overall.Services {
		services[service.Name] = service.Status
	}

	code := http.StatusOK
	if overall.Status == "unhealthy" {
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, models.HealthResponse{
		Status:    overall.Status,
		Service:   "webqa",
		Timestamp: time.Now().Format(time.RFC3339),
		Services:  services,
	})
}
