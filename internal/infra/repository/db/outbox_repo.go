package db

import (
	"context"
	"time"

	"github.com/RoyceAzure/lab/shopcore/internal/domain/model"
)

type OutboxRepo struct {
	db *DbDao
}

func NewOutboxRepo(db *DbDao) *OutboxRepo {
	return &OutboxRepo{db: db}
}

// InsertOutbox 需與業務資料同一交易
func (s *OutboxRepo) InsertOutbox(ctx context.Context, record *model.OutboxRecord) error {
	return s.db.WithContext(ctx).Create(record).Error
}

func (s *OutboxRepo) FetchPendingOutbox(ctx context.Context, limit int) ([]model.OutboxRecord, error) {
	records := make([]model.OutboxRecord, 0)
	err := s.db.WithContext(ctx).
		Where("sent_at IS NULL").
		Order("id").
		Limit(limit).
		Find(&records).Error
	return records, err
}

func (s *OutboxRepo) MarkOutboxSent(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Model(&model.OutboxRecord{}).
		Where("id IN ?", ids).
		Update("sent_at", time.Now().UTC()).Error
}
