package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"sms_campaign_server/internal/config"
	"sms_campaign_server/internal/dao/database"
	myredis "sms_campaign_server/internal/dao/redis"
	"sms_campaign_server/internal/events"
	"sms_campaign_server/internal/gateway/websocket"
	"sms_campaign_server/internal/handler"
	"sms_campaign_server/internal/https_server"
	"sms_campaign_server/internal/infrastructure/logger"
	"sms_campaign_server/internal/infrastructure/mq"
	"sms_campaign_server/internal/infrastructure/sms"
	"sms_campaign_server/internal/service"
	"sms_campaign_server/pkg/util/jwt"
	"sms_campaign_server/pkg/util/snowflake"

	"go.uber.org/zap"
)

func main() {
	// 1. config
	conf := config.GetConfig()

	// 2. logger
	if err := logger.Init(&conf.LogConfig, conf.MainConfig.Mode); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	defer func() { _ = zap.L().Sync() }()
	zap.L().Info("logger ready", zap.String("app", conf.MainConfig.AppName))

	// 3. ids and tokens
	snowflake.Init(conf.SnowflakeConfig.MachineID)
	jwt.Init(conf.JWTConfig.Secret, conf.JWTConfig.AccessTokenExpiry)
	if conf.JWTConfig.Enabled && conf.JWTConfig.Secret == "" {
		zap.L().Fatal("jwt enabled without a secret, set JWT_SECRET")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 4. database
	repos, err := database.Init(&conf.DatabaseConfig, conf.MainConfig.Mode)
	if err != nil {
		zap.L().Fatal("database init failed", zap.Error(err))
	}

	// 5. cache, in-process when redis is off or unreachable
	var cache myredis.AsyncCacheService
	if conf.RedisConfig.Enabled {
		rc, err := myredis.Init(ctx, &conf.RedisConfig)
		if err != nil {
			zap.L().Warn("redis unavailable, using in-memory cache", zap.Error(err))
			cache = myredis.NewMemoryCache()
		} else {
			defer func() { _ = rc.Close() }()
			cache = rc
			zap.L().Info("redis ready")
		}
	} else {
		cache = myredis.NewMemoryCache()
	}

	// 6. delivery gateway
	gateway, err := sms.New(&conf.SmsConfig)
	if err != nil {
		zap.L().Fatal("sms gateway init failed", zap.Error(err))
	}
	zap.L().Info("sms gateway ready", zap.String("provider", gateway.Name()))

	// 7. live updates
	hub := websocket.NewHub()
	go hub.Start()
	defer hub.Close()

	var publisher events.Publisher = hub
	if conf.KafkaConfig.MessageMode == "kafka" {
		relay := mq.NewKafkaRelay(&conf.KafkaConfig, hub)
		go relay.Start(ctx)
		defer relay.Close()
		publisher = relay
	}

	// 8. services and handlers
	svc := service.NewServices(service.Deps{
		Repos:     repos,
		Cache:     cache,
		Gateway:   gateway,
		Publisher: publisher,
		Config:    conf,
	})
	if err := handler.InitTrans("en"); err != nil {
		zap.L().Fatal("init validator translator failed", zap.Error(err))
	}
	handlers := handler.NewHandlers(svc, hub, repos, conf.SmsConfig.FromNumber)

	// 9. http
	srv := &http.Server{
		Addr:              conf.MainConfig.Addr(),
		Handler:           https_server.Init(handlers, conf),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		zap.L().Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Error("http server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	zap.L().Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("http shutdown", zap.Error(err))
	}
	zap.L().Info("server stopped")
}
