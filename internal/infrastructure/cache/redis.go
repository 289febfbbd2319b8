package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"bankoffice/internal/config"

	"github.com/go-redis/redis/v8"
)

const pingTimeout = 5 * time.Second

// Connect 建立连接并 PING 一次；未启用时返回 (nil, nil)
func Connect(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis %s 不可用: %w", client.Options().Addr, err)
	}
	return client, nil
}

// InitRedis 启动阶段使用，连接失败直接退出。
// 返回 nil 表示未启用，movement 接口的 request_id 防重随之关闭。
func InitRedis(cfg *config.RedisConfig) *redis.Client {
	client, err := Connect(context.Background(), cfg)
	if err != nil {
		log.Fatalf("[Redis] %v", err)
	}
	if client == nil {
		log.Println("[Redis] 未启用，跳过请求防重")
		return nil
	}

	log.Printf("[Redis] 连接成功 %s db=%d", client.Options().Addr, cfg.DB)
	return client
}
