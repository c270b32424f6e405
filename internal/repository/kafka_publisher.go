package repository

import (
	"context"

	"WaveScope/internal/domain/models"
	"WaveScope/internal/domain/repository"
	pkgkafka "WaveScope/pkg/kafka"
)

// KafkaPublisher implements Publisher for Kafka. Candles and detected
// patterns go to separate topics.
type KafkaPublisher struct {
	producer      *pkgkafka.Producer
	candlesTopic  string
	patternsTopic string
}

// NewKafkaPublisher creates Kafka publisher.
func NewKafkaPublisher(producer *pkgkafka.Producer, candlesTopic, patternsTopic string) repository.Publisher {
	return &KafkaPublisher{producer: producer, candlesTopic: candlesTopic, patternsTopic: patternsTopic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, c *models.Candle) error {
	return p.producer.Publish(ctx, p.candlesTopic, []byte(c.Symbol), c)
}

func (p *KafkaPublisher) PublishBatch(ctx context.Context, candles []*models.Candle) error {
	if len(candles) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(candles))
	for i, c := range candles {
		msgs[i] = pkgkafka.Message{
			Key:   []byte(c.Symbol),
			Value: c,
		}
	}
	return p.producer.PublishBatch(ctx, p.candlesTopic, msgs)
}

func (p *KafkaPublisher) PublishPattern(ctx context.Context, ev *models.PatternEvent) error {
	return p.producer.Publish(ctx, p.patternsTopic, []byte(ev.Symbol), ev)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
