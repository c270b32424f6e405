package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"WaveScope/internal/domain/models"
	domrepo "WaveScope/internal/domain/repository"
	svccache "WaveScope/internal/service/cache"
	wavemetrics "WaveScope/internal/service/metrics"
	"WaveScope/internal/services/waves"
	pkgcache "WaveScope/pkg/cache"
	"WaveScope/pkg/logger"
)

// WaveAnalysisConfig carries the engine knobs the analysis endpoints use.
// The scan fields double as server-side defaults for request fields the
// client leaves unset.
type WaveAnalysisConfig struct {
	NImpulse            int
	NCorrection         int
	MinProbability      float64
	ScanStep            int
	MaxPatternsPerStart int
	Overlap             string
	CacheTTL            time.Duration
}

// minProbabilityOr resolves the effective probability floor: explicit
// request value first, then the configured default, then the endpoint's
// own fallback.
func (c WaveAnalysisConfig) minProbabilityOr(req, fallback float64) float64 {
	if req > 0 {
		return req
	}
	if c.MinProbability > 0 {
		return c.MinProbability
	}
	return fallback
}

func (c WaveAnalysisConfig) scanStepOr(req int) int {
	if req > 0 {
		return req
	}
	if c.ScanStep > 0 {
		return c.ScanStep
	}
	return 5
}

func (c WaveAnalysisConfig) maxPatternsOr(req int) int {
	if req > 0 {
		return req
	}
	if c.MaxPatternsPerStart > 0 {
		return c.MaxPatternsPerStart
	}
	return 3
}

func (c WaveAnalysisConfig) overlapOr(req string) string {
	if req != "" {
		return req
	}
	if c.Overlap != "" {
		return c.Overlap
	}
	return string(waves.OverlapHighestProbability)
}

// WaveAnalysisUseCase runs pattern searches over stored candles: best
// pattern with targets, in-progress wave targets, and the probability
// distribution across skip tuples.
type WaveAnalysisUseCase struct {
	store domrepo.CandleStore
	cache svccache.BytesCache
	pub   domrepo.Publisher
	log   *logger.Logger
	cfg   WaveAnalysisConfig
}

func NewWaveAnalysisUseCase(
	store domrepo.CandleStore,
	cache svccache.BytesCache,
	pub domrepo.Publisher,
	log *logger.Logger,
	cfg WaveAnalysisConfig,
) *WaveAnalysisUseCase {
	if cfg.NImpulse <= 0 {
		cfg.NImpulse = 12
	}
	if cfg.NCorrection <= 0 {
		cfg.NCorrection = 12
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 60 * time.Second
	}
	return &WaveAnalysisUseCase{store: store, cache: cache, pub: pub, log: log, cfg: cfg}
}

func (uc *WaveAnalysisUseCase) newSearcher(minProbability float64) *waves.Searcher {
	return waves.NewSearcher(
		waves.WithSkipBounds(uc.cfg.NImpulse, uc.cfg.NCorrection),
		waves.WithMinProbability(minProbability),
	)
}

// loadSeries fetches the latest N candles and wraps them in a Series.
func (uc *WaveAnalysisUseCase) loadSeries(ctx context.Context, symbol string, n int, tf domrepo.Timeframe) ([]models.Candle, *waves.Series, error) {
	candles, err := uc.store.GetLatestNCandles(ctx, symbol, n, tf)
	if err != nil {
		return nil, nil, fmt.Errorf("load candles: %w", err)
	}
	return candles, waves.NewSeries(candles), nil
}

type WaveSearchResponse struct {
	Symbol       string            `json:"symbol"`
	Timeframe    string            `json:"timeframe"`
	PatternType  string            `json:"pattern_type"`
	Found        bool              `json:"found"`
	Message      string            `json:"message,omitempty"`
	Probability  float64           `json:"probability,omitempty"`
	Category     string            `json:"category,omitempty"`
	Skips        []int             `json:"skips,omitempty"`
	CurrentPrice float64           `json:"current_price,omitempty"`
	Waves        []models.WaveInfo `json:"waves,omitempty"`
	Breakdown    *BreakdownView    `json:"breakdown,omitempty"`
	Targets      *TargetSetView    `json:"targets,omitempty"`
	Levels       *LevelsView       `json:"levels,omitempty"`
	Report       string            `json:"report,omitempty"`
}

// Search finds the best pattern in the latest candles and projects the
// forward targets from it. Found results are published as pattern events.
func (uc *WaveAnalysisUseCase) Search(ctx context.Context, req models.WaveSearchRequest) (*WaveSearchResponse, error) {
	start := time.Now()
	defer func() {
		wavemetrics.WaveSearchLatency.WithLabelValues("search").Observe(time.Since(start).Seconds())
	}()

	req.MinProbability = uc.cfg.minProbabilityOr(req.MinProbability, 50)
	key := pkgcache.GenerateKeyWithParams("waves:search",
		req.Symbol, req.TF, req.Type, req.N, req.StartIdx, req.MinProbability, req.CurrentPrice, req.Report)
	if resp, ok := cacheGet[WaveSearchResponse](uc.cache, key); ok {
		wavemetrics.WaveCacheHits.WithLabelValues("search").Inc()
		return resp, nil
	}

	tf := domrepo.NormalizeTimeframe(req.TF)
	candles, series, err := uc.loadSeries(ctx, req.Symbol, req.N, tf)
	if err != nil {
		wavemetrics.WaveErrors.WithLabelValues("search").Inc()
		return nil, err
	}

	resp := &WaveSearchResponse{
		Symbol:      req.Symbol,
		Timeframe:   string(tf),
		PatternType: req.Type,
	}
	if series.Len() < 8 {
		resp.Message = fmt.Sprintf("insufficient data: %d candles", series.Len())
		return resp, nil
	}

	typ := waves.PatternType(req.Type)
	se := uc.newSearcher(req.MinProbability)
	res := se.FindWithTargets(series, req.StartIdx, typ, req.CurrentPrice)

	resp.Found = res.Found
	resp.Message = res.Message
	if res.Found {
		c := res.Candidate
		wavemetrics.WaveCandidatesFound.WithLabelValues("search", req.Type).Inc()

		resp.Probability = c.Probability()
		resp.Category = c.Score.Category
		resp.Skips = c.Skips
		resp.CurrentPrice = res.CurrentPrice
		resp.Waves = waveInfos(c.Pattern.Waves, candles)
		resp.Breakdown = breakdownView(c.Score)
		resp.Targets = targetSetView(res.Targets)
		resp.Levels = levelsView(res.Levels)
		if req.Report {
			resp.Report = waves.RenderReport(typ, res)
		}

		uc.publishPattern(ctx, req.Symbol, string(tf), resp)
	}

	cacheSet(uc.cache, key, resp, uc.cfg.CacheTTL)
	return resp, nil
}

func (uc *WaveAnalysisUseCase) publishPattern(ctx context.Context, symbol, tf string, resp *WaveSearchResponse) {
	if uc.pub == nil {
		return
	}
	ev := &models.PatternEvent{
		Symbol:      symbol,
		Timeframe:   tf,
		PatternType: resp.PatternType,
		Probability: resp.Probability,
		Category:    resp.Category,
		Waves:       resp.Waves,
		DetectedAt:  time.Now().UTC(),
	}
	if len(resp.Waves) > 0 {
		ev.StartPrice = resp.Waves[0].StartPrice
		ev.EndPrice = resp.Waves[len(resp.Waves)-1].EndPrice
	}
	if err := uc.pub.PublishPattern(ctx, ev); err != nil {
		uc.log.Warn("pattern event publish failed",
			logger.String("symbol", symbol),
			logger.Error(err),
		)
	}
}

type WaveTargetsResponse struct {
	Symbol      string         `json:"symbol"`
	Timeframe   string         `json:"timeframe"`
	Wave        string         `json:"wave"`
	Found       bool           `json:"found"`
	Message     string         `json:"message,omitempty"`
	Probability float64        `json:"probability,omitempty"`
	Targets     *TargetSetView `json:"targets,omitempty"`
}

// Targets projects price targets for an in-progress wave: 3, 4 or 5 off the
// best impulse, C off the best correction.
func (uc *WaveAnalysisUseCase) Targets(ctx context.Context, req models.WaveTargetsRequest) (*WaveTargetsResponse, error) {
	start := time.Now()
	defer func() {
		wavemetrics.WaveSearchLatency.WithLabelValues("targets").Observe(time.Since(start).Seconds())
	}()

	key := pkgcache.GenerateKeyWithParams("waves:targets",
		req.Symbol, req.TF, req.Wave, req.N, req.StartIdx, req.CurrentPrice)
	if resp, ok := cacheGet[WaveTargetsResponse](uc.cache, key); ok {
		wavemetrics.WaveCacheHits.WithLabelValues("targets").Inc()
		return resp, nil
	}

	tf := domrepo.NormalizeTimeframe(req.TF)
	_, series, err := uc.loadSeries(ctx, req.Symbol, req.N, tf)
	if err != nil {
		wavemetrics.WaveErrors.WithLabelValues("targets").Inc()
		return nil, err
	}

	resp := &WaveTargetsResponse{
		Symbol:    req.Symbol,
		Timeframe: string(tf),
		Wave:      "Wave " + req.Wave,
	}

	typ := waves.PatternImpulse
	if req.Wave == "C" {
		typ = waves.PatternCorrection
	}

	se := uc.newSearcher(50)
	var cs []waves.Candidate
	if typ == waves.PatternImpulse {
		cs = se.ImpulseCandidates(series, req.StartIdx, 1)
	} else {
		cs = se.CorrectionCandidates(series, req.StartIdx, 1)
	}
	if len(cs) == 0 {
		resp.Message = fmt.Sprintf("no valid %s pattern found to project wave %s from", typ, req.Wave)
		cacheSet(uc.cache, key, resp, uc.cfg.CacheTTL)
		return resp, nil
	}

	best := cs[0]
	currentPrice := req.CurrentPrice
	if currentPrice < 0 {
		end := best.Pattern.EndIdx()
		if end < series.Len() {
			currentPrice = series.Close(end)
		}
	}

	var ts waves.TargetSet
	ws := best.Pattern.Waves
	if typ == waves.PatternCorrection {
		ts = waves.NewTargetCalculator(waves.DefaultTunables()).WaveCTargets(ws[0], ws[1], currentPrice)
	} else {
		calc := waves.NewTargetCalculator(waves.DefaultTunables())
		ts, err = calc.ImpulseTargets(ws, req.Wave, currentPrice)
		if err != nil {
			return nil, err
		}
	}

	wavemetrics.WaveCandidatesFound.WithLabelValues("targets", string(typ)).Inc()
	resp.Found = true
	resp.Probability = best.Probability()
	resp.Targets = targetSetView(&ts)

	cacheSet(uc.cache, key, resp, uc.cfg.CacheTTL)
	return resp, nil
}

type WaveDistributionResponse struct {
	Symbol          string               `json:"symbol"`
	Timeframe       string               `json:"timeframe"`
	PatternType     string               `json:"pattern_type"`
	Found           bool                 `json:"found"`
	Message         string               `json:"message,omitempty"`
	Total           int                  `json:"total"`
	BestProbability float64              `json:"best_probability,omitempty"`
	BestSkips       []int                `json:"best_skips,omitempty"`
	Bands           map[string]*BandView `json:"bands,omitempty"`
}

// Distribution groups every candidate at a start index into probability
// bands, showing how skip-tuple choice moves the score.
func (uc *WaveAnalysisUseCase) Distribution(ctx context.Context, req models.WaveDistributionRequest) (*WaveDistributionResponse, error) {
	start := time.Now()
	defer func() {
		wavemetrics.WaveSearchLatency.WithLabelValues("distribution").Observe(time.Since(start).Seconds())
	}()

	req.MinProbability = uc.cfg.minProbabilityOr(req.MinProbability, 50)
	key := pkgcache.GenerateKeyWithParams("waves:distribution",
		req.Symbol, req.TF, req.Type, req.N, req.StartIdx, req.MinProbability)
	if resp, ok := cacheGet[WaveDistributionResponse](uc.cache, key); ok {
		wavemetrics.WaveCacheHits.WithLabelValues("distribution").Inc()
		return resp, nil
	}

	tf := domrepo.NormalizeTimeframe(req.TF)
	_, series, err := uc.loadSeries(ctx, req.Symbol, req.N, tf)
	if err != nil {
		wavemetrics.WaveErrors.WithLabelValues("distribution").Inc()
		return nil, err
	}

	se := uc.newSearcher(req.MinProbability)
	d := se.Distribution(series, req.StartIdx, waves.PatternType(req.Type), req.MinProbability)

	resp := &WaveDistributionResponse{
		Symbol:      req.Symbol,
		Timeframe:   string(tf),
		PatternType: req.Type,
		Found:       d.Found,
		Message:     d.Message,
		Total:       d.Total,
	}
	if d.Found {
		resp.BestProbability = d.Best.Probability()
		resp.BestSkips = d.Best.Skips
		resp.Bands = make(map[string]*BandView, len(d.Bands))
		for name, b := range d.Bands {
			resp.Bands[name] = &BandView{
				Count:          b.Count,
				SkipTuples:     b.SkipTuples,
				AvgProbability: b.AvgProbability,
			}
		}
	}

	cacheSet(uc.cache, key, resp, uc.cfg.CacheTTL)
	return resp, nil
}

// cacheGet returns a cached response when present and well-formed. Cache
// failures are treated as misses.
func cacheGet[T any](c svccache.BytesCache, key string) (*T, bool) {
	if c == nil {
		return nil, false
	}
	b, ok, err := c.GetBytes(key)
	if err != nil || !ok {
		return nil, false
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, false
	}
	return &v, true
}

func cacheSet(c svccache.BytesCache, key string, v interface{}, ttl time.Duration) {
	if c == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = c.SetBytes(key, b, ttl)
}
