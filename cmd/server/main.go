package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bankoffice/internal/auth"
	"bankoffice/internal/config"
	"bankoffice/internal/handler"
	"bankoffice/internal/infrastructure/cache"
	"bankoffice/internal/infrastructure/database"
	"bankoffice/internal/infrastructure/mq"
	"bankoffice/internal/job"
	"bankoffice/internal/service"
	"bankoffice/pkg/idgen"

	"github.com/spf13/pflag"
)

func main() {
	configPath := pflag.String("config", "config/config.yaml", "配置文件路径")
	workerID := pflag.Int64("worker-id", 1, "雪花算法机器 ID，多实例部署时必须不同")
	pflag.Parse()

	// 加载配置
	cfg := config.LoadConfig(*configPath)

	// 初始化 ID 生成器
	idgen.Init(*workerID)

	// 初始化数据库
	db := database.InitDatabase(&cfg.Database)

	// 初始管理员
	users := service.NewUserService(db, auth.NewPasswordManager(cfg.Auth.BcryptCost))
	if _, err := users.EnsureBootstrapAdmin(context.Background(), cfg.Auth.BootstrapAdmin); err != nil {
		log.Fatalf("[Server] 创建初始管理员失败: %v", err)
	}

	// 初始化 Redis（可选，用于 request_id 防重）
	redisClient := cache.InitRedis(&cfg.Redis)

	// 创建上下文（用于优雅关闭）
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 启动后台任务
	if cfg.Kafka.Enabled {
		publisher, err := mq.InitKafka(&cfg.Kafka)
		if err != nil {
			log.Fatalf("[Server] %v", err)
		}
		defer publisher.Close()

		outboxSender := job.NewOutboxSender(db, publisher, cfg)
		go outboxSender.Start(ctx)
	} else {
		log.Println("[Server] Kafka 未启用，movement 事件只保存在 outbox 表")
	}

	outboxMonitor := job.NewOutboxMonitor(db)
	go outboxMonitor.Start(ctx)

	// 设置路由
	router := handler.SetupRouter(db, redisClient, cfg)

	// 启动 HTTP 服务
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("服务启动，监听端口: %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("正在关闭服务...")

	// 取消上下文，停止后台任务
	cancel()

	// 关闭 HTTP 服务（等待最多5秒）
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("服务关闭异常: %v", err)
	}

	log.Println("服务已关闭")
}
