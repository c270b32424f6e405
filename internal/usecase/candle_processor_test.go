package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"WaveScope/internal/domain/models"
	drepo "WaveScope/internal/domain/repository"
)

type fakePublisher struct {
	mu        sync.Mutex
	published [][]*models.Candle
	closed    bool
}

func (f *fakePublisher) Publish(ctx context.Context, c *models.Candle) error {
	return f.PublishBatch(ctx, []*models.Candle{c})
}

func (f *fakePublisher) PublishBatch(ctx context.Context, candles []*models.Candle) error {
	f.mu.Lock()
	f.published = append(f.published, candles)
	f.mu.Unlock()
	return nil
}

func (f *fakePublisher) batches() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.published)
}

func (f *fakePublisher) PublishPattern(ctx context.Context, ev *models.PatternEvent) error {
	return nil
}

func (f *fakePublisher) Close() error {
	f.closed = true
	return nil
}

type fakeStore struct {
	stored [][]*models.Candle
	tfs    []drepo.Timeframe
	latest []models.Candle
}

func (f *fakeStore) Init(ctx context.Context) error { return nil }

func (f *fakeStore) StoreBatch(ctx context.Context, candles []*models.Candle, tf drepo.Timeframe) error {
	f.stored = append(f.stored, candles)
	f.tfs = append(f.tfs, tf)
	return nil
}

func (f *fakeStore) GetCandles(ctx context.Context, symbol string, from, to time.Time, tf drepo.Timeframe) ([]models.Candle, error) {
	return nil, nil
}

func (f *fakeStore) GetLatestNCandles(ctx context.Context, symbol string, n int, tf drepo.Timeframe) ([]models.Candle, error) {
	return f.latest, nil
}

func (f *fakeStore) Health(ctx context.Context) error { return nil }
func (f *fakeStore) Close() error                     { return nil }

type fakeMetrics struct {
	sent   int
	errors []string
}

func (f *fakeMetrics) RecordMessageSent(backend, symbol string)  { f.sent++ }
func (f *fakeMetrics) RecordError(kind string)                   { f.errors = append(f.errors, kind) }
func (f *fakeMetrics) RecordLastPrice(symbol string, p float64)  {}
func (f *fakeMetrics) RecordLatency(op string, seconds float64)  {}

func candle(sym string, close float64) *models.Candle {
	return &models.Candle{Bucket: time.Now().UTC(), Symbol: sym, Close: close}
}

func TestProcessorFlushesFullBatchToKafka(t *testing.T) {
	pub := &fakePublisher{}
	m := &fakeMetrics{}
	p := NewCandleProcessor(pub, &fakeStore{}, m, "kafka", drepo.TF1m, 3, time.Hour)

	for i := 0; i < 3; i++ {
		if err := p.Process(context.Background(), candle("BTCUSDT", float64(i))); err != nil {
			t.Fatalf("Process: %v", err)
		}
	}

	if len(pub.published) != 1 {
		t.Fatalf("published batches = %d, want 1", len(pub.published))
	}
	if len(pub.published[0]) != 3 {
		t.Errorf("batch size = %d, want 3", len(pub.published[0]))
	}
	if m.sent != 3 {
		t.Errorf("messages recorded = %d, want 3", m.sent)
	}
}

func TestProcessorRoutesClickHouseBackend(t *testing.T) {
	store := &fakeStore{}
	p := NewCandleProcessor(&fakePublisher{}, store, &fakeMetrics{}, "clickhouse", drepo.TF1h, 2, time.Hour)

	_ = p.Process(context.Background(), candle("ETHUSDT", 1))
	_ = p.Process(context.Background(), candle("ETHUSDT", 2))

	if len(store.stored) != 1 {
		t.Fatalf("stored batches = %d, want 1", len(store.stored))
	}
	if store.tfs[0] != drepo.TF1h {
		t.Errorf("timeframe = %v, want 1h", store.tfs[0])
	}
}

func TestProcessorCloseFlushesPartialBatch(t *testing.T) {
	pub := &fakePublisher{}
	p := NewCandleProcessor(pub, &fakeStore{}, &fakeMetrics{}, "kafka", drepo.TF1m, 100, time.Hour)

	_ = p.Process(context.Background(), candle("BTCUSDT", 1))
	p.Close()

	if len(pub.published) != 1 || len(pub.published[0]) != 1 {
		t.Fatalf("published = %v, want one batch of one", pub.published)
	}
	if !pub.closed {
		t.Error("publisher not closed")
	}
}

func TestProcessorUnknownBackend(t *testing.T) {
	m := &fakeMetrics{}
	p := NewCandleProcessor(&fakePublisher{}, &fakeStore{}, m, "postgres", drepo.TF1m, 1, time.Hour)

	if err := p.Process(context.Background(), candle("BTCUSDT", 1)); err == nil {
		t.Fatal("expected error for unknown backend")
	}
	if len(m.errors) == 0 {
		t.Error("error not recorded")
	}
}

func TestProcessorRejectsNilCandle(t *testing.T) {
	p := NewCandleProcessor(&fakePublisher{}, &fakeStore{}, &fakeMetrics{}, "kafka", drepo.TF1m, 10, time.Hour)
	if err := p.Process(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil candle")
	}
}

func TestProcessorTimeoutFlush(t *testing.T) {
	pub := &fakePublisher{}
	p := NewCandleProcessor(pub, &fakeStore{}, &fakeMetrics{}, "kafka", drepo.TF1m, 100, 20*time.Millisecond)

	_ = p.Process(context.Background(), candle("BTCUSDT", 1))

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if pub.batches() == 1 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("batch not flushed after timeout")
}
