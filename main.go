package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"city.newnan/rcon-console/internal/config"
	"city.newnan/rcon-console/internal/db"
	"city.newnan/rcon-console/internal/middleware"
	"city.newnan/rcon-console/internal/model"
	"city.newnan/rcon-console/internal/router"
	"city.newnan/rcon-console/internal/secret"
	"city.newnan/rcon-console/internal/service"
	"city.newnan/rcon-console/internal/sse"
	"city.newnan/rcon-console/internal/websocket"
)

// @title           RCON Console API
// @version         1.0
// @description     Minecraft RCON 网页控制台 API
// @termsOfService  http://swagger.io/terms/

// @contact.name   API 支持
// @contact.url    http://www.newnan.city/support
// @contact.email  support@newnan.city

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey  ApiKeyAuth
// @in                          header
// @name                        Authorization
// @description                 Bearer 认证, 例如: "Bearer {token}"

func main() {
	cfg := config.LoadConfig()

	if err := db.InitDB(cfg); err != nil {
		log.Fatalf("初始化数据库失败: %v", err)
	}
	defer db.CloseDB()

	if err := db.AutoMigrate(&model.ServerProfile{}, &model.ConsoleEntry{}); err != nil {
		log.Fatalf("数据库迁移失败: %v", err)
	}

	if err := middleware.InitCasbin(db.DB); err != nil {
		log.Fatalf("初始化Casbin失败: %v", err)
	}
	if err := middleware.SetupPolicies(); err != nil {
		log.Printf("设置初始权限失败: %v", err)
	}

	cipher, err := secret.NewCipher(cfg.SecretKey)
	if err != nil {
		log.Fatalf("初始化密码加密失败: %v", err)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	websocket.GlobalManager.Start()
	sse.GlobalBroker.Start()

	// RCON数据包日志仅在调试模式下输出
	level := slog.LevelInfo
	if cfg.Mode == "debug" {
		level = slog.LevelDebug
	}
	rconLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	locks := service.NewProfileLocks(30 * time.Minute)
	locks.StartCleanup(ctx, 5*time.Minute)

	profiles := service.NewProfileService(db.DB, cipher, cfg)
	console := service.NewConsoleService(db.DB, profiles, locks, rconLogger, sse.GlobalBroker, websocket.GlobalManager)

	r := router.SetupRouter(cfg, router.Dependencies{
		Profiles: profiles,
		Console:  console,
		Broker:   sse.GlobalBroker,
		Manager:  websocket.GlobalManager,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
		Handler: r,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("监听失败: %v", err)
		}
	}()

	log.Printf("服务器开始运行，监听: %s:%d", cfg.ServerHost, cfg.ServerPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("正在关闭服务器...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("服务器被强制关闭:", err)
	}

	log.Println("服务器优雅退出")
}
