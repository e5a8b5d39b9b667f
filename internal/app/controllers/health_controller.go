package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yigit/studentdir/internal/app/models/dto"
)

// Pinger is satisfied by *pgxpool.Pool
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc adapts a function to Pinger
type PingerFunc func(ctx context.Context) error

// Ping calls f
func (f PingerFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

// HealthController reports liveness of the service and its backing stores
type HealthController struct {
	checks  map[string]Pinger
	timeout time.Duration
}

// NewHealthController creates a HealthController over the named checks
func NewHealthController(checks map[string]Pinger) *HealthController {
	return &HealthController{
		checks:  checks,
		timeout: 2 * time.Second,
	}
}

// Hello answers the root greeting as plain text
func (h *HealthController) Hello(ctx *gin.Context) {
	ctx.String(http.StatusOK, "hello World")
}

// Health pings every dependency. Any failure answers 503.
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} dto.APIResponse
// @Failure 503 {object} dto.APIResponse
// @Router /health [get]
func (h *HealthController) Health(ctx *gin.Context) {
	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), h.timeout)
	defer cancel()

	status := make(map[string]string, len(h.checks))
	healthy := true
	for name, check := range h.checks {
		if err := check.Ping(pingCtx); err != nil {
			status[name] = "down"
			healthy = false
			continue
		}
		status[name] = "up"
	}

	if !healthy {
		ctx.JSON(http.StatusServiceUnavailable, dto.APIResponse{
			Success:   false,
			Data:      status,
			Error:     dto.NewErrorDetail(dto.ErrorCodeDatabaseError, "Service unavailable"),
			Timestamp: time.Now(),
		})
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(status))
}
