package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"WaveScope/internal/domain/models"
	drepo "WaveScope/internal/domain/repository"
	xhttp "WaveScope/pkg/http"
	applogger "WaveScope/pkg/logger"
)

// Backfiller loads recent kline history over the Binance REST API into the
// candle store so analysis endpoints have data right after startup.
type Backfiller struct {
	client   *xhttp.Client
	restURL  string
	symbols  []string
	interval string
	limit    int
	store    drepo.CandleStore
	log      *applogger.Logger
}

// NewBackfiller creates a history loader for the configured symbols. A
// non-positive limit disables backfilling.
func NewBackfiller(restURL string, symbols []string, interval string, limit int, store drepo.CandleStore, log *applogger.Logger) *Backfiller {
	return &Backfiller{
		client:   xhttp.NewClient(xhttp.WithTimeout(15 * time.Second)),
		restURL:  restURL,
		symbols:  symbols,
		interval: interval,
		limit:    limit,
		store:    store,
		log:      log,
	}
}

// Backfill fetches and stores history for every symbol. Per-symbol failures
// are logged and skipped; the returned count covers what was stored.
func (b *Backfiller) Backfill(ctx context.Context) (int, error) {
	if b.limit <= 0 || b.restURL == "" {
		return 0, nil
	}

	tf := drepo.NormalizeTimeframe(b.interval)
	total := 0
	for _, sym := range b.symbols {
		candles, err := b.fetch(ctx, sym)
		if err != nil {
			b.log.Warn("kline backfill fetch failed",
				applogger.String("symbol", sym),
				applogger.Error(err),
			)
			continue
		}
		if err := b.store.StoreBatch(ctx, candles, tf); err != nil {
			b.log.Warn("kline backfill store failed",
				applogger.String("symbol", sym),
				applogger.Error(err),
			)
			continue
		}
		total += len(candles)
	}

	b.log.Info("kline backfill complete",
		applogger.Int("candles", total),
		applogger.String("interval", b.interval),
	)
	return total, nil
}

func (b *Backfiller) fetch(ctx context.Context, symbol string) ([]*models.Candle, error) {
	var raw []json.RawMessage
	err := b.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    b.restURL + "/api/v3/klines",
		QueryParams: map[string][]string{
			"symbol":   {symbol},
			"interval": {b.interval},
			"limit":    {strconv.Itoa(b.limit)},
		},
	}, &raw)
	if err != nil {
		return nil, err
	}

	candles := make([]*models.Candle, 0, len(raw))
	for _, row := range raw {
		c, err := parseKlineRow(row, symbol)
		if err != nil {
			return nil, err
		}
		candles = append(candles, c)
	}
	return candles, nil
}

// parseKlineRow decodes one REST kline row:
// [openTime, open, high, low, close, volume, closeTime, ...]
func parseKlineRow(row json.RawMessage, symbol string) (*models.Candle, error) {
	var fields []json.RawMessage
	if err := json.Unmarshal(row, &fields); err != nil {
		return nil, fmt.Errorf("kline row: %w", err)
	}
	if len(fields) < 6 {
		return nil, fmt.Errorf("kline row has %d fields", len(fields))
	}

	var openMs int64
	if err := json.Unmarshal(fields[0], &openMs); err != nil {
		return nil, fmt.Errorf("kline open time: %w", err)
	}

	nums := make([]float64, 5)
	for i := 1; i <= 5; i++ {
		var s string
		if err := json.Unmarshal(fields[i], &s); err != nil {
			return nil, fmt.Errorf("kline field %d: %w", i, err)
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("kline field %d %q: %w", i, s, err)
		}
		nums[i-1] = f
	}

	return &models.Candle{
		Bucket: time.UnixMilli(openMs).UTC(),
		Symbol: symbol,
		Open:   nums[0],
		High:   nums[1],
		Low:    nums[2],
		Close:  nums[3],
		Volume: nums[4],
	}, nil
}
