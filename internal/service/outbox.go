package service

import (
	"encoding/json"

	"github.com/RoyceAzure/lab/shopcore/internal/domain/model"
	"github.com/RoyceAzure/lab/shopcore/internal/domain/model/event"
)

func newOutboxRecord(evt event.Event, topic, key string) (*model.OutboxRecord, error) {
	payload, err := json.Marshal(evt)
	if err != nil {
		return nil, err
	}
	return &model.OutboxRecord{
		EventID:   evt.GetID(),
		EventType: string(evt.Type()),
		Topic:     topic,
		Key:       key,
		Payload:   string(payload),
	}, nil
}
