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
	"WaveScope/pkg/logger"
	"WaveScope/pkg/queue"
)

// LabelJobType is the queue message type for full-series labeling runs.
const LabelJobType = "wave_label"

// labelResultTTL keeps finished labeling reports around long enough for the
// client to poll them.
const labelResultTTL = 30 * time.Minute

// LabelJobPayload is what travels through the Redis queue.
type LabelJobPayload struct {
	ID      string                  `json:"id"`
	Request models.WaveLabelRequest `json:"request"`
}

// LabelStatus is the cached state of one labeling run.
type LabelStatus struct {
	ID         string    `json:"id"`
	Status     string    `json:"status"` // queued | running | done | failed
	Error      string    `json:"error,omitempty"`
	EnqueuedAt time.Time `json:"enqueued_at"`

	Result *WaveLabelResponse `json:"result,omitempty"`
}

// WaveLabelResponse is the finished labeling report.
type WaveLabelResponse struct {
	Symbol        string              `json:"symbol"`
	Timeframe     string              `json:"timeframe"`
	Bars          int                 `json:"bars"`
	PatternsFound int                 `json:"patterns_found"`
	PatternsKept  int                 `json:"patterns_kept"`
	Waves         []WaveLabelView     `json:"waves"`
	Annotations   []BarAnnotationView `json:"annotations,omitempty"`
	Stats         LabelStatsView      `json:"stats"`
}

// LabelingUseCase runs full-series wave labeling as background jobs: the
// HTTP layer enqueues, a queue worker executes, results land in the cache.
type LabelingUseCase struct {
	store domrepo.CandleStore
	cache svccache.BytesCache
	queue queue.QueueService
	log   *logger.Logger
	cfg   WaveAnalysisConfig
}

func NewLabelingUseCase(
	store domrepo.CandleStore,
	cache svccache.BytesCache,
	q queue.QueueService,
	log *logger.Logger,
	cfg WaveAnalysisConfig,
) *LabelingUseCase {
	if cfg.NImpulse <= 0 {
		cfg.NImpulse = 12
	}
	if cfg.NCorrection <= 0 {
		cfg.NCorrection = 12
	}
	return &LabelingUseCase{store: store, cache: cache, queue: q, log: log, cfg: cfg}
}

// applyDefaults fills request fields the client left unset from the
// configured analysis defaults, so the queued payload carries the values
// the run will actually use.
func (uc *LabelingUseCase) applyDefaults(req models.WaveLabelRequest) models.WaveLabelRequest {
	req.MinProbability = uc.cfg.minProbabilityOr(req.MinProbability, 60)
	req.Step = uc.cfg.scanStepOr(req.Step)
	req.MaxPatternsPerStart = uc.cfg.maxPatternsOr(req.MaxPatternsPerStart)
	req.Overlap = uc.cfg.overlapOr(req.Overlap)
	return req
}

// Enqueue schedules a labeling run and returns its job ID.
func (uc *LabelingUseCase) Enqueue(ctx context.Context, req models.WaveLabelRequest) (string, error) {
	req = uc.applyDefaults(req)
	if _, err := waves.ParseOverlapStrategy(req.Overlap); err != nil {
		return "", err
	}

	id := fmt.Sprintf("%s-%s-%d", req.Symbol, req.TF, time.Now().UnixNano())
	uc.setStatus(id, &LabelStatus{ID: id, Status: "queued", EnqueuedAt: time.Now().UTC()})

	if err := uc.queue.PublishMessage(ctx, LabelJobType, LabelJobPayload{ID: id, Request: req}); err != nil {
		return "", fmt.Errorf("enqueue label job: %w", err)
	}

	uc.log.Info("label job enqueued",
		logger.String("job_id", id),
		logger.String("symbol", req.Symbol),
		logger.String("tf", req.TF),
		logger.Int("n", req.N),
	)
	return id, nil
}

// Status returns the cached state of a labeling run.
func (uc *LabelingUseCase) Status(ctx context.Context, id string) (*LabelStatus, bool, error) {
	b, ok, err := uc.cache.GetBytes(labelKey(id))
	if err != nil {
		return nil, false, fmt.Errorf("label status: %w", err)
	}
	if !ok {
		return nil, false, nil
	}
	var st LabelStatus
	if err := json.Unmarshal(b, &st); err != nil {
		return nil, false, fmt.Errorf("label status decode: %w", err)
	}
	return &st, true, nil
}

// Run executes a labeling job. Called by the queue worker.
func (uc *LabelingUseCase) Run(ctx context.Context, p *LabelJobPayload) error {
	start := time.Now()
	defer func() {
		wavemetrics.WaveSearchLatency.WithLabelValues("label").Observe(time.Since(start).Seconds())
	}()

	uc.setStatus(p.ID, &LabelStatus{ID: p.ID, Status: "running", EnqueuedAt: time.Now().UTC()})

	resp, err := uc.runLabeling(ctx, p.Request)
	if err != nil {
		wavemetrics.WaveErrors.WithLabelValues("label").Inc()
		uc.setStatus(p.ID, &LabelStatus{ID: p.ID, Status: "failed", Error: err.Error()})
		return err
	}

	uc.setStatus(p.ID, &LabelStatus{ID: p.ID, Status: "done", Result: resp})
	uc.log.Info("label job complete",
		logger.String("job_id", p.ID),
		logger.Int("patterns_kept", resp.PatternsKept),
		logger.Int("wave_segments", len(resp.Waves)),
	)
	return nil
}

func (uc *LabelingUseCase) runLabeling(ctx context.Context, req models.WaveLabelRequest) (*WaveLabelResponse, error) {
	req = uc.applyDefaults(req)
	tf := domrepo.NormalizeTimeframe(req.TF)
	candles, err := uc.store.GetLatestNCandles(ctx, req.Symbol, req.N, tf)
	if err != nil {
		return nil, fmt.Errorf("load candles: %w", err)
	}
	series := waves.NewSeries(candles)

	overlap, err := waves.ParseOverlapStrategy(req.Overlap)
	if err != nil {
		return nil, err
	}

	se := waves.NewSearcher(
		waves.WithSkipBounds(uc.cfg.NImpulse, uc.cfg.NCorrection),
		waves.WithMinProbability(req.MinProbability),
	)
	cfg := waves.DefaultLabelerConfig()
	cfg.ScanStep = req.Step
	cfg.MaxPatternsPerStart = req.MaxPatternsPerStart
	cfg.MinProbability = req.MinProbability
	cfg.Overlap = overlap

	res, err := waves.NewLabeler(se, cfg, uc.log).LabelAll(ctx, series)
	if err != nil {
		return nil, err
	}

	resp := &WaveLabelResponse{
		Symbol:        req.Symbol,
		Timeframe:     string(tf),
		Bars:          series.Len(),
		PatternsFound: len(res.Patterns),
		PatternsKept:  res.KeptCount,
		Stats:         statsView(res.Stats),
	}
	for _, wl := range res.WaveSummary() {
		resp.Waves = append(resp.Waves, labelView(wl))
	}
	for i, a := range res.Annotations {
		if !a.WaveStart && !a.WaveEnd {
			continue
		}
		resp.Annotations = append(resp.Annotations, BarAnnotationView{
			Index:       i,
			WaveStart:   a.WaveStart,
			WaveEnd:     a.WaveEnd,
			Labels:      a.Labels,
			PatternType: string(a.Type),
			Probability: a.Probability,
		})
	}
	return resp, nil
}

func (uc *LabelingUseCase) setStatus(id string, st *LabelStatus) {
	cacheSet(uc.cache, labelKey(id), st, labelResultTTL)
}

func labelKey(id string) string { return "waves:label:" + id }

// LabelJob adapts the use case to the queue's Job interface.
type LabelJob struct {
	uc *LabelingUseCase
}

func NewLabelJob(uc *LabelingUseCase) *LabelJob { return &LabelJob{uc: uc} }

func (j *LabelJob) Name() string { return "wave-labeler" }
func (j *LabelJob) Type() string { return LabelJobType }

func (j *LabelJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[LabelJobPayload](payload)
	if err != nil {
		return fmt.Errorf("label job payload: %w", err)
	}
	return j.uc.Run(ctx, p)
}

var _ queue.Job = (*LabelJob)(nil)
