package auth

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/xyz-asif/promptshare/internal/config"
	"github.com/xyz-asif/promptshare/internal/pkg/cloudinary"
	"github.com/xyz-asif/promptshare/internal/pkg/jwt"
	"github.com/xyz-asif/promptshare/internal/pkg/logger"
	"github.com/xyz-asif/promptshare/internal/pkg/metrics"
	"github.com/xyz-asif/promptshare/internal/pkg/ratelimit"
	"github.com/xyz-asif/promptshare/internal/pkg/username"
	"go.mongodb.org/mongo-driver/mongo"
)

// RegisterRoutes wires the auth feature against Mongo and the configured
// identity provider, then mounts its routes
func RegisterRoutes(ctx context.Context, router *gin.RouterGroup, db *mongo.Database, cfg *config.Config, m *metrics.Metrics) error {
	verifier, err := NewVerifier(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init token verifier: %w", err)
	}

	repo := NewRepository(db)
	if err := repo.EnsureIndexes(ctx); err != nil {
		return err
	}

	opts := []ServiceOption{WithProvisionAttempts(cfg.UsernameProvisionAttempts)}
	if cfg.CloudinaryEnabled() {
		cld, err := cloudinary.NewService(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryUploadFolder)
		if err != nil {
			logger.Warn("Avatar mirroring disabled: %v", err)
		} else {
			opts = append(opts, WithAvatarMirror(cld))
		}
	}

	generator := username.NewGenerator(username.WithMaxAttempts(cfg.UsernameMaxAttempts))
	service := NewService(repo, generator, m, opts...)
	jwtCfg := jwt.DefaultConfig(cfg.JWTSecret, cfg.JWTExpireHours)

	limiter := ratelimit.New(cfg.SignInRateLimit, cfg.SignInRateWindow)
	limiter.StartCleanup(ctx, cfg.SignInRateWindow)

	Mount(router, NewHandler(service, verifier, jwtCfg), NewAuthMiddleware(service, jwtCfg), ratelimit.Middleware(limiter))
	return nil
}

// Mount registers the auth and user routes on router
func Mount(router *gin.RouterGroup, handler *Handler, authMiddleware, signInLimit gin.HandlerFunc) {
	auth := router.Group("/auth")
	{
		auth.POST("/google", signInLimit, handler.GoogleSignIn)
		auth.GET("/session", authMiddleware, handler.GetSession)
	}

	users := router.Group("/users")
	{
		users.GET("/:username", handler.GetUserByUsername)
	}
}
