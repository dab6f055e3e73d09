package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type HealthStatus struct {
	Status      string    `json:"status"`
	Storage     string    `json:"storage"`
	LastChecked time.Time `json:"last_checked"`
	Uptime      string    `json:"uptime"`
	Version     string    `json:"version"`
}

// HealthChecker pings the storage backend, e.g. (*sql.DB).PingContext.
type HealthChecker func(ctx context.Context) error

type Health struct {
	mu            sync.Mutex
	check         HealthChecker
	version       string
	startTime     time.Time
	last          HealthStatus
	lastCode      int
	cacheDuration time.Duration
}

func NewHealth(check HealthChecker, version string) *Health {
	return &Health{
		check:         check,
		version:       version,
		startTime:     time.Now(),
		cacheDuration: 5 * time.Second,
	}
}

// Handler answers from a short-lived cache so frequent health checks do not
// hammer the database.
func (h *Health) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		h.mu.Lock()
		defer h.mu.Unlock()

		if !h.last.LastChecked.IsZero() && time.Since(h.last.LastChecked) < h.cacheDuration {
			c.JSON(h.lastCode, h.last)
			return
		}

		status := HealthStatus{
			Status:      "ok",
			Storage:     "ok",
			LastChecked: time.Now(),
			Uptime:      time.Since(h.startTime).Round(time.Second).String(),
			Version:     h.version,
		}
		code := http.StatusOK
		if h.check != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := h.check(ctx); err != nil {
				status.Status = "degraded"
				status.Storage = err.Error()
				code = http.StatusServiceUnavailable
			}
		}

		h.last = status
		h.lastCode = code
		c.JSON(code, status)
	}
}
