package routes

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xyz-asif/promptshare/internal/config"
	"github.com/xyz-asif/promptshare/internal/features/auth"
	"github.com/xyz-asif/promptshare/internal/pkg/metrics"
	"github.com/xyz-asif/promptshare/internal/pkg/response"
	"go.mongodb.org/mongo-driver/mongo"
)

const healthTimeout = 2 * time.Second

// Pinger reports database reachability for the health check
type Pinger interface {
	Ping(ctx context.Context) error
}

// SetupRoutes registers the operational endpoints and the versioned API.
// ctx bounds background work started by the features.
func SetupRoutes(ctx context.Context, router *gin.Engine, db *mongo.Database, pinger Pinger, cfg *config.Config, m *metrics.Metrics) error {
	router.GET("/health", Health(pinger))
	router.GET("/metrics", m.Handler())

	api := router.Group("/api/v1")
	return auth.RegisterRoutes(ctx, api, db, cfg, m)
}

// Health reports ok only when the database answers a ping
func Health(pinger Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()

		if err := pinger.Ping(ctx); err != nil {
			response.ServiceUnavailable(c, "Database unreachable", "DATABASE_DOWN")
			return
		}
		response.Success(c, map[string]interface{}{
			"status": "ok",
			"time":   time.Now().Unix(),
		})
	}
}
