package service

import (
	"context"
	"log"

	"bankoffice/internal/model"
	"bankoffice/internal/repository"

	"gorm.io/gorm"
)

// OutboxService 投递失败事件的人工处理
//
// OutboxSender 重试达到上限后消息停在 FAILED，排查 Kafka 后由管理员补发
type OutboxService struct {
	outboxRepo *repository.OutboxRepository
}

func NewOutboxService(db *gorm.DB) *OutboxService {
	return &OutboxService{outboxRepo: repository.NewOutboxRepository(db)}
}

// ListMessages 按状态列出消息，status 为空时查 FAILED
func (s *OutboxService) ListMessages(ctx context.Context, status string, page, pageSize int) ([]*model.OutboxMessage, int64, error) {
	if status == "" {
		status = model.OutboxStatusFailed
	}
	switch status {
	case model.OutboxStatusPending, model.OutboxStatusSent, model.OutboxStatusFailed:
	default:
		return nil, 0, invalid("不支持的消息状态 %s", status)
	}
	page, pageSize = NormalizePage(page, pageSize, 20)
	return s.outboxRepo.ListByStatus(ctx, status, page, pageSize)
}

// Requeue 把 FAILED 消息放回待发送队列，重试次数清零
func (s *OutboxService) Requeue(ctx context.Context, id int64, operatorID int64) error {
	if err := s.outboxRepo.Requeue(ctx, id); err != nil {
		return err
	}
	log.Printf("[Outbox] 消息已重新入队: id=%d, operator=%d", id, operatorID)
	return nil
}
