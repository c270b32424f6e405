package usecase

import (
	"context"
	"fmt"
	"time"

	"WaveScope/internal/domain/models"
	domrepo "WaveScope/internal/domain/repository"
)

// CandlesUseCase provides business logic for retrieving candles.
type CandlesUseCase struct {
	store domrepo.CandleStore
}

func NewCandlesUseCase(store domrepo.CandleStore) *CandlesUseCase {
	return &CandlesUseCase{store: store}
}

type GetCandlesParams struct {
	Symbol    string
	From      time.Time
	To        time.Time
	Timeframe domrepo.Timeframe
	Limit     int
}

type GetCandlesResult struct {
	Symbol    string          `json:"symbol"`
	Timeframe string          `json:"timeframe"`
	From      time.Time       `json:"from,omitempty"`
	To        time.Time       `json:"to,omitempty"`
	Count     int             `json:"count"`
	Candles   []models.Candle `json:"candles"`
}

// GetCandles returns candles in [From, To]; a zero range falls back to the
// latest Limit candles.
func (uc *CandlesUseCase) GetCandles(ctx context.Context, p GetCandlesParams) (*GetCandlesResult, error) {
	if p.Symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}
	if p.Limit <= 0 {
		p.Limit = 10000
	}
	if p.Limit > 50000 {
		p.Limit = 50000
	}

	var candles []models.Candle
	var err error
	if p.From.IsZero() && p.To.IsZero() {
		candles, err = uc.store.GetLatestNCandles(ctx, p.Symbol, p.Limit, p.Timeframe)
	} else {
		if p.From.After(p.To) {
			return nil, fmt.Errorf("from must be <= to")
		}
		candles, err = uc.store.GetCandles(ctx, p.Symbol, p.From, p.To, p.Timeframe)
	}
	if err != nil {
		return nil, fmt.Errorf("get candles: %w", err)
	}
	if len(candles) > p.Limit {
		candles = candles[:p.Limit]
	}

	return &GetCandlesResult{
		Symbol:    p.Symbol,
		Timeframe: string(p.Timeframe),
		From:      p.From,
		To:        p.To,
		Count:     len(candles),
		Candles:   candles,
	}, nil
}
