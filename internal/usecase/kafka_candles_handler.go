package usecase

import (
	"context"
	"encoding/json"
	"time"

	"WaveScope/internal/domain/models"
	domrepo "WaveScope/internal/domain/repository"
	pkgkafka "WaveScope/pkg/kafka"
)

// KafkaCandlesHandler consumes candle messages and writes them to storage.
type KafkaCandlesHandler struct {
	topic   string
	store   domrepo.CandleStore
	tf      domrepo.Timeframe
	metrics domrepo.Metrics
}

func NewKafkaCandlesHandler(topic string, store domrepo.CandleStore, tf domrepo.Timeframe, metrics domrepo.Metrics) *KafkaCandlesHandler {
	return &KafkaCandlesHandler{topic: topic, store: store, tf: tf, metrics: metrics}
}

func (h *KafkaCandlesHandler) Topic() string { return h.topic }

func (h *KafkaCandlesHandler) Handle(ctx context.Context, b []byte) error {
	var c models.Candle
	if err := json.Unmarshal(b, &c); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}

	// E2E latency from candle close to now (approx)
	h.metrics.RecordLatency("ingest_e2e_seconds", time.Since(c.Bucket).Seconds())

	start := time.Now()
	err := h.store.StoreBatch(ctx, []*models.Candle{&c}, h.tf)
	h.metrics.RecordLatency("ch_insert_seconds", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordMessageSent("clickhouse", c.Symbol)
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaCandlesHandler)(nil)
