package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yshiba/webqa/internal/database"
)

const statusCacheKey = "health:status"

// HealthChecker manages health checks for all services
type HealthChecker struct {
	dbManager *database.Manager
	logger    *logrus.Logger
	searchURL string
}

func NewHealthChecker(dbManager *database.Manager, logger *logrus.Logger, searchURL string) *HealthChecker {
	return &HealthChecker{
		dbManager: dbManager,
		logger:    logger,
		searchURL: searchURL,
	}
}

// ServiceHealth represents the health status of a service
type ServiceHealth struct {
	Name         string `json:"name"`
	Status       string `json:"status"`
	ResponseTime int    `json:"response_time_ms"`
	Error        string `json:"error,omitempty"`
	LastChecked  string `json:"last_checked"`
}

// OverallHealth represents the overall system health
type OverallHealth struct {
	Status   string          `json:"status"`
	Services []ServiceHealth `json:"services"`
	Uptime   string          `json:"uptime"`
}

// CheckDatabase checks the backing store
func (h *HealthChecker) CheckDatabase() ServiceHealth {
	start := time.Now()
	err := h.dbManager.PingDatabase()
	responseTime := int(time.Since(start).Milliseconds())

	status := "healthy"
	errorMsg := ""
	if err != nil {
		status = "unhealthy"
		errorMsg = err.Error()
		h.logger.WithError(err).Error("Database health check failed")
	}

	return ServiceHealth{
		Name:         "database",
		Status:       status,
		ResponseTime: responseTime,
		Error:        errorMsg,
		LastChecked:  time.Now().Format(time.RFC3339),
	}
}

// CheckRedis checks the Redis side cache
func (h *HealthChecker) CheckRedis() ServiceHealth {
	start := time.Now()
	err := h.dbManager.PingRedis()
	responseTime := int(time.Since(start).Milliseconds())

	status := "healthy"
	errorMsg := ""
	if err != nil {
		status = "unhealthy"
		errorMsg = err.Error()
		h.logger.WithError(err).Error("Redis health check failed")
	}

	return ServiceHealth{
		Name:         "redis",
		Status:       status,
		ResponseTime: responseTime,
		Error:        errorMsg,
		LastChecked:  time.Now().Format(time.RFC3339),
	}
}

// CheckSearchProvider checks that the search API endpoint is reachable.
// Any HTTP answer counts: an unauthenticated probe gets a 4xx from Brave,
// which still proves the service is up.
func (h *HealthChecker) CheckSearchProvider() ServiceHealth {
	start := time.Now()

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(h.searchURL)

	responseTime := int(time.Since(start).Milliseconds())
	status := "healthy"
	errorMsg := ""

	if err != nil {
		status = "unhealthy"
		errorMsg = err.Error()
		h.logger.WithError(err).Error("Search provider health check failed")
	} else {
		defer resp.Body.Close()
		if resp.StatusCode >= 500 {
			status = "degraded"
			errorMsg = fmt.Sprintf("HTTP %d", resp.StatusCode)
		}
	}

	return ServiceHealth{
		Name:         "search_provider",
		Status:       status,
		ResponseTime: responseTime,
		Error:        errorMsg,
		LastChecked:  time.Now().Format(time.RFC3339),
	}
}

// CheckAll performs health checks on all services
func (h *HealthChecker) CheckAll() OverallHealth {
	services := []ServiceHealth{
		h.CheckDatabase(),
		h.CheckSearchProvider(),
	}
	if h.dbManager.Redis != nil {
		services = append(services, h.CheckRedis())
	}

	overallStatus := "healthy"
	for _, service := range services {
		if service.Status == "unhealthy" {
			overallStatus = "unhealthy"
			break
		}
		if service.Status == "degraded" && overallStatus == "healthy" {
			overallStatus = "degraded"
		}
	}

	return OverallHealth{
		Status:   overallStatus,
		Services: services,
		Uptime:   h.getUptime(),
	}
}

// CheckCached returns the last periodic check from Redis if present
func (h *HealthChecker) CheckCached(ctx context.Context) (*OverallHealth, error) {
	if h.dbManager.Redis == nil {
		return nil, fmt.Errorf("redis is not configured")
	}

	data, err := h.dbManager.Redis.Get(ctx, statusCacheKey).Result()
	if err != nil {
		return nil, err
	}

	var health OverallHealth
	if err := json.Unmarshal([]byte(data), &health); err != nil {
		return nil, err
	}

	health.Uptime = h.getUptime()
	return &health, nil
}

var startTime = time.Now()

func (h *HealthChecker) getUptime() string {
	uptime := time.Since(startTime)
	return uptime.String()
}

// PeriodicHealthCheck runs health checks periodically and caches the
// result in Redis when available
func (h *HealthChecker) PeriodicHealthCheck(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			health := h.CheckAll()

			if h.dbManager.Redis != nil {
				cacheCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				data, err := json.Marshal(health)
				if err == nil {
					err = h.dbManager.Redis.Set(cacheCtx, statusCacheKey, data, 2*interval).Err()
				}
				if err != nil {
					h.logger.WithError(err).Error("Failed to cache health status")
				}
				cancel()
			}

			h.logger.WithField("status", health.Status).Debug("Periodic health check completed")
		}
	}
}
