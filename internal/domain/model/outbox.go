package model

import "time"

// OutboxRecord 與業務資料同一交易寫入, 由 relay 非同步送往 kafka
type OutboxRecord struct {
	ID        int64      `gorm:"primaryKey" json:"id"`
	EventID   string     `gorm:"uniqueIndex;not null;type:varchar(64)" json:"eventId"`
	EventType string     `gorm:"type:varchar(64)" json:"eventType"`
	Topic     string     `gorm:"not null;type:varchar(255)" json:"topic"`
	Key       string     `gorm:"not null;type:varchar(255)" json:"key"`
	Payload   string     `gorm:"not null;type:text" json:"payload"`
	CreatedAt time.Time  `json:"createdAt"`
	SentAt    *time.Time `gorm:"index" json:"sentAt"`
}

func (OutboxRecord) TableName() string {
	return "outbox"
}
