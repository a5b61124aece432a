package relay

import (
	"context"
	"time"

	"github.com/RoyceAzure/lab/shopcore/internal/domain/model"
	"github.com/RoyceAzure/lab/shopcore/internal/infra/producer"
	"github.com/RoyceAzure/lab/shopcore/internal/infra/repository/db"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

const (
	DefaultInterval  = time.Second
	DefaultBatchSize = 100
)

// OutboxRelay 將尚未送出的 outbox 紀錄送往 kafka
// 先送出再標記, 至少送達一次, 消費端需以 event_id 去重
type OutboxRelay struct {
	outbox    db.IOutboxRepository
	producer  producer.Producer
	interval  time.Duration
	batchSize int
	logger    zerolog.Logger
}

func NewOutboxRelay(outbox db.IOutboxRepository, p producer.Producer, interval time.Duration, batchSize int, logger zerolog.Logger) *OutboxRelay {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &OutboxRelay{
		outbox:    outbox,
		producer:  p,
		interval:  interval,
		batchSize: batchSize,
		logger:    logger,
	}
}

// RelayOnce 送出一批, 回傳送出筆數
func (r *OutboxRelay) RelayOnce(ctx context.Context) (int, error) {
	records, err := r.outbox.FetchPendingOutbox(ctx, r.batchSize)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, nil
	}

	if err := r.producer.Produce(ctx, toMessages(records)); err != nil {
		return 0, err
	}

	ids := make([]int64, 0, len(records))
	for _, record := range records {
		ids = append(ids, record.ID)
	}
	if err := r.outbox.MarkOutboxSent(ctx, ids); err != nil {
		// 已送出但未標記, 下一輪會重送
		return 0, err
	}
	return len(records), nil
}

// Run 直到 ctx 取消, 滿批時不等待直接送下一批
func (r *OutboxRelay) Run(ctx context.Context) error {
	r.logger.Info().Dur("interval", r.interval).Int("batch_size", r.batchSize).Msg("outbox relay started")
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		n, err := r.RelayOnce(ctx)
		if err != nil && ctx.Err() == nil {
			r.logger.Error().Err(err).Msg("relay outbox failed")
		}
		if n > 0 {
			r.logger.Debug().Int("count", n).Msg("outbox relayed")
		}
		if err == nil && n == r.batchSize {
			continue
		}

		select {
		case <-ctx.Done():
			r.logger.Info().Msg("outbox relay stopped")
			return nil
		case <-ticker.C:
		}
	}
}

func toMessages(records []model.OutboxRecord) []kafka.Message {
	msgs := make([]kafka.Message, 0, len(records))
	for _, record := range records {
		msgs = append(msgs, kafka.Message{
			Topic: record.Topic,
			Key:   []byte(record.Key),
			Value: []byte(record.Payload),
			Headers: []kafka.Header{
				{Key: "event_id", Value: []byte(record.EventID)},
				{Key: "event_type", Value: []byte(record.EventType)},
			},
			Time: record.CreatedAt,
		})
	}
	return msgs
}
