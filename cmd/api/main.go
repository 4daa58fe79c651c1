package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-printer-maintenance/internal/api"
	"github.com/sanosuguru/go-printer-maintenance/internal/api/handler"
	custommiddleware "github.com/sanosuguru/go-printer-maintenance/internal/api/middleware"
	"github.com/sanosuguru/go-printer-maintenance/internal/application"
	"github.com/sanosuguru/go-printer-maintenance/internal/config"
	"github.com/sanosuguru/go-printer-maintenance/internal/infrastructure/calendar"
	"github.com/sanosuguru/go-printer-maintenance/internal/infrastructure/googlecal"
	redisinfra "github.com/sanosuguru/go-printer-maintenance/internal/infrastructure/redis"
	"github.com/sanosuguru/go-printer-maintenance/internal/infrastructure/sqlite"
	"github.com/sanosuguru/go-printer-maintenance/internal/pkg/logger"
	"github.com/sanosuguru/go-printer-maintenance/internal/pkg/metrics"
	"github.com/sanosuguru/go-printer-maintenance/internal/worker"
)

func main() {
	cfg := config.Load()

	logger.Set(logger.NewLogger(os.Getenv("APP_ENV")))
	defer logger.Sync()

	m := metrics.Init()

	// 永続ストア
	db, err := sqlite.NewConnection(&cfg.Storage)
	if err != nil {
		logger.Fatal("データベース接続エラー", zap.Error(err))
	}
	defer db.Close()

	if err := sqlite.RunMigrations(db); err != nil {
		logger.Fatal("マイグレーションエラー", zap.Error(err))
	}

	// トークンキャッシュ（Redisはホストが設定されている場合のみ）
	var tokenCache googlecal.TokenCache
	if cfg.Redis.Enabled() {
		redisClient := redisinfra.NewClient(&cfg.Redis)
		defer redisClient.Close()
		if err := redisinfra.Ping(context.Background(), redisClient); err != nil {
			logger.Warn("Redis接続に失敗したためトークンキャッシュなしで続行", zap.Error(err))
		} else {
			tokenCache = redisinfra.NewTokenCache(redisClient)
		}
	}

	// カレンダーバックエンド
	authenticator := googlecal.NewAuthenticator(&cfg.Google, tokenCache)
	googleBackend := googlecal.NewBackend(cfg, authenticator)
	// サーバービルドには端末カレンダープラグインがないため、
	// nativeを選んでもリモートへフォールバックする
	backend := calendar.Select(&cfg.Calendar, googleBackend, nil)

	// サービス層
	printerRepo := sqlite.NewPrinterRepository(db)
	eventStore := sqlite.NewEventStore(db)

	maintenanceService := application.NewMaintenanceService(eventStore, backend, printerRepo)
	if err := maintenanceService.Load(context.Background()); err != nil {
		logger.Fatal("保守予定の復元エラー", zap.Error(err))
	}
	printerService := application.NewPrinterService(printerRepo)

	// リマインダーワーカー
	reminder := worker.NewMaintenanceReminder(maintenanceService, time.Hour, 24*time.Hour)
	go reminder.Start(context.Background())

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler

	custommiddleware.SetupMiddleware(e)
	e.Use(custommiddleware.PrometheusMiddleware(m))

	// ルーティング
	healthHandler := handler.NewHealthHandler(db)
	printerHandler := handler.NewPrinterHandler(printerService)
	maintenanceHandler := handler.NewMaintenanceHandler(maintenanceService)
	authHandler := handler.NewAuthHandler(authenticator)

	v1 := e.Group("/api/v1")
	v1.GET("/health", healthHandler.Check)

	v1.POST("/printers", printerHandler.Create)
	v1.GET("/printers", printerHandler.List)
	v1.GET("/printers/:id", printerHandler.GetByID)
	v1.DELETE("/printers/:id", printerHandler.Delete)

	v1.POST("/maintenance-events", maintenanceHandler.Schedule)
	v1.GET("/maintenance-events", maintenanceHandler.List)
	v1.GET("/maintenance-events/stream", maintenanceHandler.Stream)
	v1.DELETE("/maintenance-events/:id", maintenanceHandler.Delete)

	v1.POST("/auth/sign-out", authHandler.SignOut)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), custommiddleware.MetricsBasicAuth())

	// サーバー起動
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("サーバー起動エラー", zap.Error(err))
		}
	}()

	// シグナル待機
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("サーバーをシャットダウンしています...")

	reminder.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal("サーバーシャットダウンエラー", zap.Error(err))
	}

	logger.Info("サーバーが正常にシャットダウンしました")
}
