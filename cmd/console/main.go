package main

import (
	"context"
	"io"
	"log"
	"os"

	"bankoffice/internal/auth"
	"bankoffice/internal/config"
	"bankoffice/internal/console"
	"bankoffice/internal/infrastructure/database"
	"bankoffice/internal/service"
	"bankoffice/pkg/idgen"

	"github.com/spf13/pflag"
)

func main() {
	configPath := pflag.String("config", "config/config.yaml", "配置文件路径")
	workerID := pflag.Int64("worker-id", 2, "雪花算法机器 ID，不能与服务端重复")
	pflag.Parse()

	cfg := config.LoadConfig(*configPath)
	idgen.Init(*workerID)

	// 控制台只输出菜单，运行日志写到 stderr
	log.SetOutput(os.Stderr)

	db := database.InitDatabase(&cfg.Database)

	users := service.NewUserService(db, auth.NewPasswordManager(cfg.Auth.BcryptCost))
	if _, err := users.EnsureBootstrapAdmin(context.Background(), cfg.Auth.BootstrapAdmin); err != nil {
		log.Fatalf("[Console] 创建初始管理员失败: %v", err)
	}

	menu := console.NewMenu(db, cfg, os.Stdin, os.Stdout)
	if err := menu.Run(context.Background()); err != nil && err != io.EOF {
		log.Fatalf("[Console] %v", err)
	}
}
