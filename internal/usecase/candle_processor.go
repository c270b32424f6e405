package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"WaveScope/internal/domain/models"
	drepo "WaveScope/internal/domain/repository"
)

// CandleProcessor batches incoming candles and routes them to the configured
// backend: straight to ClickHouse or through Kafka.
type CandleProcessor struct {
	pub     drepo.Publisher
	store   drepo.CandleStore
	metrics drepo.Metrics
	backend string
	tf      drepo.Timeframe
	batchSz int
	batchTO time.Duration

	mu    sync.Mutex
	batch []*models.Candle
	timer *time.Timer
}

// NewCandleProcessor creates a new CandleProcessor instance.
func NewCandleProcessor(
	pub drepo.Publisher,
	store drepo.CandleStore,
	metrics drepo.Metrics,
	backend string,
	tf drepo.Timeframe,
	batchSz int,
	batchTO time.Duration,
) *CandleProcessor {
	if batchSz <= 0 {
		batchSz = 100
	}
	if batchTO <= 0 {
		batchTO = 5 * time.Second
	}
	return &CandleProcessor{
		pub:     pub,
		store:   store,
		metrics: metrics,
		backend: backend,
		tf:      tf,
		batchSz: batchSz,
		batchTO: batchTO,
	}
}

// Process buffers a candle, flushing when the batch fills or the timeout
// elapses.
func (p *CandleProcessor) Process(ctx context.Context, c *models.Candle) error {
	if c == nil {
		return fmt.Errorf("candle is nil")
	}

	p.mu.Lock()
	p.batch = append(p.batch, c)
	full := len(p.batch) >= p.batchSz
	if p.timer == nil {
		p.timer = time.AfterFunc(p.batchTO, func() {
			_ = p.Flush(context.Background())
		})
	}
	p.mu.Unlock()

	if full {
		return p.Flush(ctx)
	}
	return nil
}

// Flush routes the buffered candles to the backend in one batch.
func (p *CandleProcessor) Flush(ctx context.Context) error {
	p.mu.Lock()
	batch := p.batch
	p.batch = nil
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	start := time.Now()
	var err error
	switch p.backend {
	case "kafka":
		err = p.pub.PublishBatch(ctx, batch)
	case "clickhouse":
		err = p.store.StoreBatch(ctx, batch, p.tf)
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}

	if err != nil {
		p.metrics.RecordError("process_batch")
		return fmt.Errorf("process batch: %w", err)
	}

	for _, c := range batch {
		p.metrics.RecordMessageSent(p.backend, c.Symbol)
	}
	p.metrics.RecordLatency("process_batch", time.Since(start).Seconds())
	return nil
}

// Close flushes the remaining batch and closes underlying resources.
func (p *CandleProcessor) Close() {
	_ = p.Flush(context.Background())
	if p.pub != nil {
		_ = p.pub.Close()
	}
	if p.store != nil {
		_ = p.store.Close()
	}
}
