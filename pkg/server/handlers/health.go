package handlers

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/soundprediction/investorlens/pkg/server/dto"
)

// Build information - can be set at build time using ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

const serviceName = "investorlens"

// HealthHandler handles health check requests
type HealthHandler struct {
	service HealthService
	started time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(s HealthService) *HealthHandler {
	return &HealthHandler{
		service: s,
		started: time.Now(),
	}
}

// HealthCheck handles GET /health. It always answers 200 and reports whether the
// graph store is reachable along with the number of company nodes.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp := dto.HealthResponse{
		Status:    "ok",
		Store:     "error",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   Version,
	}
	if h.service != nil {
		if count, err := h.service.CountCompanies(ctx); err == nil {
			resp.Store = "connected"
			resp.CompanyCount = count
		}
	}
	c.JSON(http.StatusOK, resp)
}

// ReadinessCheck handles GET /ready
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	checks := gin.H{}
	response := gin.H{
		"status":    "ready",
		"service":   serviceName,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    checks,
	}

	allHealthy := true
	if h.service != nil {
		start := time.Now()
		err := h.service.Ping(ctx)
		duration := time.Since(start)
		if err != nil {
			checks["graph_store"] = gin.H{
				"status":   "unhealthy",
				"error":    err.Error(),
				"duration": duration.String(),
			}
			allHealthy = false
		} else {
			checks["graph_store"] = gin.H{
				"status":   "healthy",
				"duration": duration.String(),
			}
		}
	} else {
		checks["graph_store"] = gin.H{
			"status": "unhealthy",
			"error":  "search client not initialized",
		}
		allHealthy = false
	}

	checks["system"] = gin.H{
		"status": "healthy",
		"uptime": time.Since(h.started).Round(time.Second).String(),
	}

	if !allHealthy {
		response["status"] = "not_ready"
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}
	c.JSON(http.StatusOK, response)
}

// LivenessCheck handles GET /live - Kubernetes liveness probe endpoint
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "alive",
		"service":   serviceName,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// DetailedHealthCheck handles GET /health/detailed - comprehensive health information
func (h *HealthHandler) DetailedHealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	startTime := time.Now()
	checks := gin.H{}
	response := gin.H{
		"status":  "healthy",
		"service": serviceName,
		"version": Version,
		"build_info": gin.H{
			"git_commit": GitCommit,
			"build_time": BuildTime,
		},
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"environment": gin.H{
			"go_version": GoVersion,
		},
		"checks": checks,
	}

	allHealthy := true
	if h.service != nil {
		pingStart := time.Now()
		err := h.service.Ping(ctx)
		pingStatus := gin.H{
			"status":      "healthy",
			"duration_ms": time.Since(pingStart).Milliseconds(),
			"operation":   "Ping",
		}
		if err != nil {
			pingStatus["status"] = "unhealthy"
			pingStatus["error"] = err.Error()
			allHealthy = false
		}
		checks["graph_connectivity"] = pingStatus

		countStart := time.Now()
		count, err := h.service.CountCompanies(ctx)
		countStatus := gin.H{
			"status":      "healthy",
			"duration_ms": time.Since(countStart).Milliseconds(),
			"operation":   "CountCompanies",
			"companies":   count,
		}
		if err != nil {
			countStatus["status"] = "unhealthy"
			countStatus["error"] = err.Error()
			allHealthy = false
		} else if count == 0 {
			countStatus["note"] = "graph holds no companies"
		}
		checks["graph_contents"] = countStatus
	} else {
		checks["search_client"] = gin.H{
			"status": "unhealthy",
			"error":  "client not initialized",
		}
		allHealthy = false
	}

	systemMetrics := getSystemMetrics()
	checks["system"] = gin.H{
		"status":       "healthy",
		"memory_usage": systemMetrics.MemoryUsage,
		"goroutines":   systemMetrics.Goroutines,
		"gc_cycles":    systemMetrics.GCCycles,
		"heap_objects": systemMetrics.HeapObjects,
		"stack_usage":  systemMetrics.StackUsage,
	}

	response["metrics"] = gin.H{"response_time_ms": time.Since(startTime).Milliseconds()}

	if !allHealthy {
		response["status"] = "unhealthy"
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}
	c.JSON(http.StatusOK, response)
}

// SystemMetrics holds system runtime metrics
type SystemMetrics struct {
	MemoryUsage string `json:"memory_usage"`
	Goroutines  int    `json:"goroutines"`
	GCCycles    uint32 `json:"gc_cycles"`
	HeapObjects uint64 `json:"heap_objects"`
	StackUsage  string `json:"stack_usage"`
}

func getSystemMetrics() SystemMetrics {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return SystemMetrics{
		MemoryUsage: fmt.Sprintf("%.2f MB", float64(m.Alloc)/(1024*1024)),
		Goroutines:  runtime.NumGoroutine(),
		GCCycles:    m.NumGC,
		HeapObjects: m.HeapObjects,
		StackUsage:  fmt.Sprintf("%.2f MB", float64(m.StackSys)/(1024*1024)),
	}
}
