// Package https_server builds the gin engine: middleware chain, CORS,
// the metrics endpoint and every business route.
package https_server

import (
	"sms_campaign_server/internal/config"
	"sms_campaign_server/internal/handler"
	"sms_campaign_server/internal/infrastructure/logger"
	"sms_campaign_server/internal/infrastructure/middleware"
	"sms_campaign_server/internal/router"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Init returns the configured engine.
// Order:
//  1. blank engine (no gin.Default middleware)
//  2. zap logging and panic recovery
//  3. request metrics
//  4. CORS, optional TLS redirect
//  5. /metrics and business routes
func Init(handlers *handler.Handlers, cfg *config.Config) *gin.Engine {
	if cfg.MainConfig.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()

	engine.Use(logger.GinLogger())
	engine.Use(logger.GinRecovery(true))
	engine.Use(middleware.Metrics())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	engine.Use(cors.New(corsConfig))

	// behind a TLS-terminating proxy leave forceTLS off
	if cfg.MainConfig.ForceTLS {
		engine.Use(middleware.TlsHandler(cfg.MainConfig.Host, cfg.MainConfig.Port))
	}

	if cfg.UploadConfig.MaxSizeMB > 0 {
		engine.MaxMultipartMemory = int64(cfg.UploadConfig.MaxSizeMB) << 20
	}

	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	rt := router.NewRouter(handlers, cfg.JWTConfig.Enabled)
	rt.RegisterRoutes(engine)

	return engine
}
