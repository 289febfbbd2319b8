package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// ============================================================================
// Redis 分布式锁
// ============================================================================
//
// 账户余额的并发安全由数据库行锁保证，这里的锁只负责接口层的防重：
// 客户端网络抖动重复提交同一个 request_id 时，窗口期内只有第一次会进入资金引擎。
//
// 加锁：SET key value NX EX timeout
// 释放：Lua 脚本先比对 value 再删除，避免误删别人的锁
//
// ============================================================================

const unlockScript = `
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	else
		return 0
	end
`

// DistributedLock 分布式锁
type DistributedLock struct {
	client     *redis.Client
	key        string
	value      string // 锁持有者标识
	expiration time.Duration
}

// NewDistributedLock 创建分布式锁
func NewDistributedLock(client *redis.Client, key, value string, expiration time.Duration) *DistributedLock {
	return &DistributedLock{
		client:     client,
		key:        key,
		value:      value,
		expiration: expiration,
	}
}

// TryLock 尝试获取锁（非阻塞）
func (l *DistributedLock) TryLock(ctx context.Context) (bool, error) {
	return l.client.SetNX(ctx, l.key, l.value, l.expiration).Result()
}

// Unlock 释放锁，只删除自己持有的锁
func (l *DistributedLock) Unlock(ctx context.Context) error {
	_, err := l.client.Eval(ctx, unlockScript, []string{l.key}, l.value).Result()
	return err
}

// NewRequestLock 资金操作防重锁（按 request_id 维度）
//
// 成功执行后不主动释放，让它在 window 到期后自然过期，
// 这样窗口期内的重复提交都会被拒绝；执行失败时调用方应当 Unlock，允许客户端重试。
func NewRequestLock(client *redis.Client, requestID string, window time.Duration) *DistributedLock {
	key := fmt.Sprintf("movement:lock:request:%s", requestID)
	return NewDistributedLock(client, key, requestID, window)
}
