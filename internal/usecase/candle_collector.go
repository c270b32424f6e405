package usecase

import (
	"context"

	"WaveScope/internal/domain/models"
	drepo "WaveScope/internal/domain/repository"
)

// CandleCollector collects closed candles from the market stream and hands
// them to the processor. An optional history loader seeds recent candles
// before live consumption starts.
type CandleCollector struct {
	stream   drepo.MarketStream
	proc     *CandleProcessor
	metrics  drepo.Metrics
	backfill drepo.HistoryLoader
}

// NewCandleCollector creates a new CandleCollector instance.
func NewCandleCollector(stream drepo.MarketStream, proc *CandleProcessor, metrics drepo.Metrics, backfill drepo.HistoryLoader) *CandleCollector {
	return &CandleCollector{stream: stream, proc: proc, metrics: metrics, backfill: backfill}
}

// IsConnected returns true if the market stream is connected.
func (c *CandleCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

func (c *CandleCollector) Start(ctx context.Context) error {
	if c.backfill != nil {
		if _, err := c.backfill.Backfill(ctx); err != nil {
			// live stream still works without history
			c.metrics.RecordError("backfill")
		}
	}
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	cCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, cCh, errCh)
	return nil
}

func (c *CandleCollector) consume(ctx context.Context, cCh <-chan *models.Candle, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-errCh:
			if err != nil {
				c.metrics.RecordError("stream")
				_ = c.stream.Reconnect(ctx)
			}
		case cd := <-cCh:
			if cd == nil {
				continue
			}
			_ = c.proc.Process(ctx, cd)
			c.metrics.RecordLastPrice(cd.Symbol, cd.Close)
		}
	}
}

func (c *CandleCollector) Stop() error { return c.stream.Close() }

// Processor returns the underlying CandleProcessor for lifecycle management.
func (c *CandleCollector) Processor() *CandleProcessor { return c.proc }

// Shutdown closes the stream.
func (c *CandleCollector) Shutdown(ctx context.Context) error {
	return c.stream.Close()
}
