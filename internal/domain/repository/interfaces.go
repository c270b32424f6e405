package repository

import (
	"context"
	"time"

	"WaveScope/internal/domain/models"
)

// MarketStream is a live candle feed (websocket under the hood).
type MarketStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.Candle, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// Publisher pushes ingested candles and detected patterns downstream.
type Publisher interface {
	Publish(ctx context.Context, c *models.Candle) error
	PublishBatch(ctx context.Context, candles []*models.Candle) error
	PublishPattern(ctx context.Context, ev *models.PatternEvent) error
	Close() error
}

// HistoryLoader seeds the candle store with recent history, typically from
// an exchange REST endpoint, so analysis has data before the live stream
// catches up. Returns the number of candles loaded.
type HistoryLoader interface {
	Backfill(ctx context.Context) (int, error)
}

// CandleStore is the durable candle storage, write and read side.
type CandleStore interface {
	Init(ctx context.Context) error // ensure tables, health checks
	StoreBatch(ctx context.Context, candles []*models.Candle, tf Timeframe) error
	GetCandles(ctx context.Context, symbol string, from, to time.Time, tf Timeframe) ([]models.Candle, error)
	GetLatestNCandles(ctx context.Context, symbol string, n int, tf Timeframe) ([]models.Candle, error)
	Health(ctx context.Context) error // ping
	Close() error
}

type Metrics interface {
	RecordMessageSent(backend, symbol string)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
}
