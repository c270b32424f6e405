package usecase

import (
	"context"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"WaveScope/internal/domain/models"
	"WaveScope/pkg/logger"
)

// memCache is an in-memory BytesCache for tests. TTLs are ignored.
type memCache struct {
	mu sync.Mutex
	m  map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{m: make(map[string][]byte)}
}

func (c *memCache) GetBytes(key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.m[key]
	return b, ok, nil
}

func (c *memCache) SetBytes(key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key] = value
	return nil
}

type fakeQueue struct {
	types    []string
	payloads []interface{}
	err      error
}

func (f *fakeQueue) PublishMessage(ctx context.Context, msgType string, payload interface{}) error {
	if f.err != nil {
		return f.err
	}
	f.types = append(f.types, msgType)
	f.payloads = append(f.payloads, payload)
	return nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	l, err := logger.New(&logger.Config{Level: "error", Format: "console", Output: "stdout"})
	if err != nil {
		t.Fatal(err)
	}
	return l
}

func labelRequest() models.WaveLabelRequest {
	return models.WaveLabelRequest{
		Symbol:              "BTCUSDT",
		N:                   200,
		TF:                  "1h",
		Step:                5,
		MaxPatternsPerStart: 3,
		MinProbability:      60,
		Overlap:             "highest_probability",
	}
}

func TestEnqueueSetsQueuedStatus(t *testing.T) {
	q := &fakeQueue{}
	c := newMemCache()
	uc := NewLabelingUseCase(&fakeStore{}, c, q, testLogger(t), WaveAnalysisConfig{})

	id, err := uc.Enqueue(context.Background(), labelRequest())
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if !strings.HasPrefix(id, "BTCUSDT-1h-") {
		t.Errorf("job id = %q", id)
	}
	if len(q.types) != 1 || q.types[0] != LabelJobType {
		t.Errorf("published types = %v", q.types)
	}

	st, ok, err := uc.Status(context.Background(), id)
	if err != nil || !ok {
		t.Fatalf("Status: ok=%v err=%v", ok, err)
	}
	if st.Status != "queued" {
		t.Errorf("status = %q, want queued", st.Status)
	}
}

func TestEnqueueRejectsBadOverlap(t *testing.T) {
	uc := NewLabelingUseCase(&fakeStore{}, newMemCache(), &fakeQueue{}, testLogger(t), WaveAnalysisConfig{})

	req := labelRequest()
	req.Overlap = "first_wins"
	if _, err := uc.Enqueue(context.Background(), req); err == nil {
		t.Fatal("expected error for unknown overlap strategy")
	}
}

func TestEnqueueAppliesConfigDefaults(t *testing.T) {
	q := &fakeQueue{}
	cfg := WaveAnalysisConfig{
		MinProbability:      42,
		ScanStep:            7,
		MaxPatternsPerStart: 2,
		Overlap:             "all",
	}
	uc := NewLabelingUseCase(&fakeStore{}, newMemCache(), q, testLogger(t), cfg)

	// only the required fields set, scan knobs left to the config
	req := models.WaveLabelRequest{Symbol: "BTCUSDT", N: 200, TF: "1h"}
	if _, err := uc.Enqueue(context.Background(), req); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	p, ok := q.payloads[0].(LabelJobPayload)
	if !ok {
		t.Fatalf("payload type %T", q.payloads[0])
	}
	got := p.Request
	if got.MinProbability != 42 || got.Step != 7 || got.MaxPatternsPerStart != 2 || got.Overlap != "all" {
		t.Errorf("queued request = %+v, want config defaults applied", got)
	}
}

func TestEnqueueRequestValuesBeatConfig(t *testing.T) {
	q := &fakeQueue{}
	cfg := WaveAnalysisConfig{MinProbability: 42, ScanStep: 7, Overlap: "all"}
	uc := NewLabelingUseCase(&fakeStore{}, newMemCache(), q, testLogger(t), cfg)

	if _, err := uc.Enqueue(context.Background(), labelRequest()); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	got := q.payloads[0].(LabelJobPayload).Request
	if got.MinProbability != 60 || got.Step != 5 || got.Overlap != "highest_probability" {
		t.Errorf("queued request = %+v, want explicit values kept", got)
	}
}

func TestStatusUnknownJob(t *testing.T) {
	uc := NewLabelingUseCase(&fakeStore{}, newMemCache(), &fakeQueue{}, testLogger(t), WaveAnalysisConfig{})

	_, ok, err := uc.Status(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if ok {
		t.Error("expected miss for unknown job id")
	}
}

func TestRunCompletesJob(t *testing.T) {
	store := &fakeStore{latest: syntheticCandles(200)}
	c := newMemCache()
	// small skip bounds keep the option enumeration cheap
	uc := NewLabelingUseCase(store, c, &fakeQueue{}, testLogger(t), WaveAnalysisConfig{NImpulse: 2, NCorrection: 2})

	p := &LabelJobPayload{ID: "job-1", Request: labelRequest()}
	if err := uc.Run(context.Background(), p); err != nil {
		t.Fatalf("Run: %v", err)
	}

	st, ok, err := uc.Status(context.Background(), "job-1")
	if err != nil || !ok {
		t.Fatalf("Status: ok=%v err=%v", ok, err)
	}
	if st.Status != "done" {
		t.Fatalf("status = %q, want done", st.Status)
	}
	if st.Result == nil || st.Result.Bars != 200 {
		t.Errorf("result = %+v", st.Result)
	}
}

func TestLabelJobHandleBadPayload(t *testing.T) {
	uc := NewLabelingUseCase(&fakeStore{}, newMemCache(), &fakeQueue{}, testLogger(t), WaveAnalysisConfig{})
	job := NewLabelJob(uc)

	if job.Type() != LabelJobType {
		t.Errorf("job type = %q", job.Type())
	}
	if err := job.Handle(context.Background(), func() {}); err == nil {
		t.Fatal("expected error for unparseable payload")
	}
}

func syntheticCandles(n int) []models.Candle {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.Candle, n)
	for i := range out {
		p := 100 + 10*math.Sin(float64(i)/9) + float64(i)/4
		out[i] = models.Candle{
			Bucket: base.Add(time.Duration(i) * time.Hour),
			Symbol: "BTCUSDT",
			Open:   p - 0.5,
			High:   p + 1,
			Low:    p - 1,
			Close:  p + 0.5,
			Volume: 1000,
		}
	}
	return out
}
