package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"WaveScope/internal/domain/models"
	drepo "WaveScope/internal/domain/repository"
	applogger "WaveScope/pkg/logger"
)

type stubStore struct {
	batches [][]*models.Candle
	tfs     []drepo.Timeframe
}

func (s *stubStore) Init(ctx context.Context) error { return nil }

func (s *stubStore) StoreBatch(ctx context.Context, candles []*models.Candle, tf drepo.Timeframe) error {
	s.batches = append(s.batches, candles)
	s.tfs = append(s.tfs, tf)
	return nil
}

func (s *stubStore) GetCandles(ctx context.Context, symbol string, from, to time.Time, tf drepo.Timeframe) ([]models.Candle, error) {
	return nil, nil
}

func (s *stubStore) GetLatestNCandles(ctx context.Context, symbol string, n int, tf drepo.Timeframe) ([]models.Candle, error) {
	return nil, nil
}

func (s *stubStore) Health(ctx context.Context) error { return nil }
func (s *stubStore) Close() error                     { return nil }

func newTestLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "console", Output: "stdout"})
	if err != nil {
		t.Fatal(err)
	}
	return l
}

func TestParseKlineRow(t *testing.T) {
	row := json.RawMessage(`[1735689600000,"95000.1","95500.5","94800.0","95250.25","123.45",1735693199999,"x",10,"y","z","0"]`)

	c, err := parseKlineRow(row, "BTCUSDT")
	if err != nil {
		t.Fatalf("parseKlineRow: %v", err)
	}
	if !c.Bucket.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("bucket = %v", c.Bucket)
	}
	if c.Open != 95000.1 || c.Close != 95250.25 || c.Volume != 123.45 {
		t.Errorf("candle = %+v", c)
	}
}

func TestParseKlineRowShort(t *testing.T) {
	if _, err := parseKlineRow(json.RawMessage(`[1735689600000,"1"]`), "BTCUSDT"); err == nil {
		t.Fatal("expected error for short row")
	}
}

func TestBackfill(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/klines" {
			http.NotFound(w, r)
			return
		}
		if got := r.URL.Query().Get("interval"); got != "1h" {
			t.Errorf("interval = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			[1735689600000,"100","101","99","100.5","10",1735693199999,"0",1,"0","0","0"],
			[1735693200000,"100.5","102","100","101.5","12",1735696799999,"0",1,"0","0","0"]
		]`))
	}))
	defer srv.Close()

	store := &stubStore{}
	b := NewBackfiller(srv.URL, []string{"BTCUSDT", "ETHUSDT"}, "1h", 500, store, newTestLogger(t))

	n, err := b.Backfill(context.Background())
	if err != nil {
		t.Fatalf("Backfill: %v", err)
	}
	if n != 4 {
		t.Errorf("candles loaded = %d, want 4", n)
	}
	if len(store.batches) != 2 {
		t.Fatalf("store batches = %d, want 2", len(store.batches))
	}
	if store.tfs[0] != drepo.TF1h {
		t.Errorf("timeframe = %v", store.tfs[0])
	}
}

func TestBackfillDisabled(t *testing.T) {
	store := &stubStore{}
	b := NewBackfiller("http://unused", []string{"BTCUSDT"}, "1h", 0, store, newTestLogger(t))

	n, err := b.Backfill(context.Background())
	if err != nil || n != 0 {
		t.Fatalf("Backfill = %d, %v; want 0, nil", n, err)
	}
	if len(store.batches) != 0 {
		t.Error("store should not be touched when disabled")
	}
}
