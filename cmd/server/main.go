package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/TeleSyriana/ccms-status-backend/api"
	"github.com/TeleSyriana/ccms-status-backend/internal/platform/backup"
	"github.com/TeleSyriana/ccms-status-backend/internal/platform/config"
	"github.com/TeleSyriana/ccms-status-backend/internal/platform/database"
	"github.com/TeleSyriana/ccms-status-backend/internal/platform/health"
	"github.com/TeleSyriana/ccms-status-backend/internal/platform/shutdown"
	"github.com/TeleSyriana/ccms-status-backend/internal/platform/startup"
	"github.com/TeleSyriana/ccms-status-backend/internal/session"
	"github.com/TeleSyriana/ccms-status-backend/pkg/lifecycle"
	"github.com/TeleSyriana/ccms-status-backend/pkg/token"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// .env是可选的，用于本地开发覆盖配置
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("加载配置失败: %v", err))
	}

	token.GenerateSecretKey()
	database.InitDB(cfg.Database.Sqlite)
	database.InitRedis(cfg.Database.Redis)

	// 阻塞式获取初始Run ID
	health.InitializeRunID()

	// 执行应用首次启动初始化流程
	if err := startup.InitializeApplication(); err != nil {
		panic(fmt.Sprintf("应用初始化失败，无法启动: %v", err))
	}

	// 阻塞式执行一次启动后健康检查
	fmt.Println("正在执行启动后健康检查...")
	health.PerformCheck()

	// 生命周期管理器：会话tick和归档器挂在优雅管理器下
	gracefulMgr := lifecycle.NewManager()
	forcefulMgr := lifecycle.NewManager()

	session.Setup(gracefulMgr, cfg.Tracking.BreakLimitMin, cfg.Tracking.WorkTargetMin, cfg.Tracking.TickInterval)

	archiveHandle, err := gracefulMgr.NewServiceHandle("snapshot-archiver")
	if err != nil {
		panic("无法注册归档调度器: " + err.Error())
	}
	go backup.StartArchiveScheduler(archiveHandle, cfg.Archive.Interval, cfg.Archive.RetentionDays)

	// 异步启动后台的持续健康检查器
	go health.StartRedisHealthCheck()

	gin.SetMode(cfg.Server.Mode)
	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.Cors.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api.SetupRoutes(r)

	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}

	go func() {
		fmt.Printf("服务器已准备就绪，开始监听 %s\n", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			panic("Failed to start server: " + err.Error())
		}
	}()

	coordinator := shutdown.NewCoordinator(gracefulMgr, forcefulMgr, cfg.Archive.RetentionDays)
	coordinator.ListenForSignalsAndShutdown(server)
}
