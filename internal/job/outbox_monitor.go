package job

import (
	"context"
	"log"
	"time"

	"bankoffice/internal/infrastructure/metrics"
	"bankoffice/internal/model"
	"bankoffice/internal/repository"

	"gorm.io/gorm"
)

// OutboxMonitor 定期统计 outbox 积压，写入监控指标
//
// 出现 FAILED 消息说明 Kafka 长时间不可用或消息本身有问题，
// 由管理员通过 POST /api/v1/outbox/:id/requeue 补发
type OutboxMonitor struct {
	outboxRepo *repository.OutboxRepository
	stopCh     chan struct{}
	interval   time.Duration
}

func NewOutboxMonitor(db *gorm.DB) *OutboxMonitor {
	return &OutboxMonitor{
		outboxRepo: repository.NewOutboxRepository(db),
		stopCh:     make(chan struct{}),
		interval:   30 * time.Second,
	}
}

func (j *OutboxMonitor) Start(ctx context.Context) {
	log.Println("[OutboxMonitor] 积压监控任务启动")

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[OutboxMonitor] 收到停止信号，任务退出")
			return
		case <-j.stopCh:
			log.Println("[OutboxMonitor] 任务停止")
			return
		case <-ticker.C:
			j.Collect(ctx)
		}
	}
}

func (j *OutboxMonitor) Stop() {
	close(j.stopCh)
}

// Collect 刷新一次指标，返回 PENDING、FAILED 数量
func (j *OutboxMonitor) Collect(ctx context.Context) (pending, failed int64) {
	pending, err := j.outboxRepo.CountByStatus(ctx, model.OutboxStatusPending)
	if err != nil {
		log.Printf("[OutboxMonitor] 统计待发送消息失败: %v", err)
		return 0, 0
	}
	failed, err = j.outboxRepo.CountByStatus(ctx, model.OutboxStatusFailed)
	if err != nil {
		log.Printf("[OutboxMonitor] 统计失败消息失败: %v", err)
		return pending, 0
	}

	metrics.OutboxBacklog.WithLabelValues(model.OutboxStatusPending).Set(float64(pending))
	metrics.OutboxBacklog.WithLabelValues(model.OutboxStatusFailed).Set(float64(failed))

	if failed > 0 {
		log.Printf("[OutboxMonitor] 有 %d 条消息投递失败，等待人工处理", failed)
	}
	return pending, failed
}
