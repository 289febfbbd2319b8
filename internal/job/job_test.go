package job

import (
	"context"
	"errors"
	"testing"

	"bankoffice/internal/config"
	"bankoffice/internal/infrastructure/mq"
	"bankoffice/internal/model"
	"bankoffice/internal/repository"
	"bankoffice/internal/testutil"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"gorm.io/gorm"
)

func seedOutbox(t *testing.T, db *gorm.DB, key string) {
	t.Helper()
	err := repository.NewOutboxRepository(db).Create(context.Background(), nil, &model.OutboxMessage{
		MessageKey: key,
		EventType:  model.EventDepositCompleted,
		Topic:      "bank.movement",
		Payload:    `{"account_number":"` + key + `"}`,
		Status:     model.OutboxStatusPending,
	})
	if err != nil {
		t.Fatalf("seed outbox: %v", err)
	}
}

func testConfig(maxRetry int) *config.Config {
	cfg := &config.Config{}
	cfg.Business.MaxRetryCount = maxRetry
	return cfg
}

func TestOutboxSenderPublishesThroughKafka(t *testing.T) {
	db := testutil.NewDB(t)
	seedOutbox(t, db, "CTE100001")
	seedOutbox(t, db, "CTE100002")

	producer := mocks.NewSyncProducer(t, mq.ProducerConfig())
	producer.ExpectSendMessageAndSucceed()
	producer.ExpectSendMessageAndSucceed()
	publisher := mq.NewKafkaPublisher(producer)
	defer publisher.Close()

	sender := NewOutboxSender(db, publisher, testConfig(3))
	if sent := sender.ProcessPending(context.Background()); sent != 2 {
		t.Fatalf("sent=%d want 2", sent)
	}

	repo := repository.NewOutboxRepository(db)
	if n, _ := repo.CountByStatus(context.Background(), model.OutboxStatusSent); n != 2 {
		t.Fatalf("sent rows=%d want 2", n)
	}
	if sent := sender.ProcessPending(context.Background()); sent != 0 {
		t.Fatalf("second pass sent=%d want 0", sent)
	}
}

func TestOutboxSenderGivesUpAfterMaxRetry(t *testing.T) {
	db := testutil.NewDB(t)
	seedOutbox(t, db, "CTE100001")

	producer := mocks.NewSyncProducer(t, mq.ProducerConfig())
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)
	publisher := mq.NewKafkaPublisher(producer)
	defer publisher.Close()

	sender := NewOutboxSender(db, publisher, testConfig(2))
	ctx := context.Background()
	sender.ProcessPending(ctx)
	sender.ProcessPending(ctx)

	monitor := NewOutboxMonitor(db)
	pending, failed := monitor.Collect(ctx)
	if pending != 0 || failed != 1 {
		t.Fatalf("pending=%d failed=%d want 0/1", pending, failed)
	}
}

type flakyPublisher struct {
	failures int
	sent     []string
}

func (p *flakyPublisher) Publish(topic, key, value string) error {
	if p.failures > 0 {
		p.failures--
		return errors.New("broker unavailable")
	}
	p.sent = append(p.sent, key)
	return nil
}

func (p *flakyPublisher) Close() error { return nil }

func TestOutboxSenderRetriesUntilDelivered(t *testing.T) {
	db := testutil.NewDB(t)
	seedOutbox(t, db, "CTE100001")

	publisher := &flakyPublisher{failures: 2}
	sender := NewOutboxSender(db, publisher, testConfig(5))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		sender.ProcessPending(ctx)
	}
	if len(publisher.sent) != 1 || publisher.sent[0] != "CTE100001" {
		t.Fatalf("sent=%v", publisher.sent)
	}

	pending, failed := NewOutboxMonitor(db).Collect(ctx)
	if pending != 0 || failed != 0 {
		t.Fatalf("pending=%d failed=%d", pending, failed)
	}
}
