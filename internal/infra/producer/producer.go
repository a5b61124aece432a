package producer

import (
	"context"
	"net"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// Producer 同步送出訊息, 回傳前所有訊息都已被 broker 確認
type Producer interface {
	Produce(ctx context.Context, msgs []kafka.Message) error
	Close() error
}

type Config struct {
	Brokers       []string
	BatchSize     int
	BatchTimeout  time.Duration
	WriteTimeout  time.Duration
	RetryAttempts int
}

func (c *Config) withDefaults() {
	if c.BatchSize <= 0 {
		c.BatchSize = 100
	}
	if c.BatchTimeout <= 0 {
		c.BatchTimeout = 10 * time.Millisecond
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 5 * time.Second
	}
	if c.RetryAttempts <= 0 {
		c.RetryAttempts = 3
	}
}

type kafkaProducer struct {
	writer *kafka.Writer
	cfg    Config
	logger zerolog.Logger
	closed atomic.Bool
}

// New 每則訊息自帶 Topic, writer 本身不綁定 topic
func New(cfg Config, logger zerolog.Logger) (Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, NewKafkaError("New", "", ErrInvalidateParameter)
	}
	cfg.withDefaults()

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
		WriteTimeout: cfg.WriteTimeout,
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		MaxAttempts:  cfg.RetryAttempts,

		Transport: &kafka.Transport{
			Dial: func(ctx context.Context, network string, address string) (net.Conn, error) {
				dialer := &kafka.Dialer{
					Timeout:   10 * time.Second,
					DualStack: true,
					KeepAlive: 30 * time.Second,
				}
				return dialer.DialContext(ctx, network, address)
			},
		},

		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			logger.Error().Msgf("kafka producer error: "+msg, args...)
		}),
		AllowAutoTopicCreation: true,
	}

	return &kafkaProducer{
		writer: writer,
		cfg:    cfg,
		logger: logger,
	}, nil
}

// Produce 同一個 key 送往同一個 partition, 保持同買家事件順序
func (p *kafkaProducer) Produce(ctx context.Context, msgs []kafka.Message) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}
	if len(msgs) == 0 {
		return nil
	}
	topic := msgs[0].Topic

	var err error
	for attempt := 0; attempt <= p.cfg.RetryAttempts; attempt++ {
		if ctx.Err() != nil {
			return NewKafkaError("Produce", topic, ctx.Err())
		}
		err = p.writer.WriteMessages(ctx, msgs...)
		if err == nil {
			return nil
		}
		if !IsTemporary(err) {
			break
		}
		p.logger.Warn().Err(err).Int("attempt", attempt+1).Str("topic", topic).Msg("retry produce")
	}
	return NewKafkaError("Produce", topic, err)
}

func (p *kafkaProducer) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	return p.writer.Close()
}
