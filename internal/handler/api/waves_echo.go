package api

import (
	"net/http"

	models "WaveScope/internal/domain/models"
	domrepo "WaveScope/internal/domain/repository"
	"WaveScope/internal/service/metrics"
	"WaveScope/internal/service/ratelimit"
	"WaveScope/internal/usecase"
	xhttp "WaveScope/pkg/http"
	xlogger "WaveScope/pkg/logger"
	"WaveScope/pkg/util"

	"github.com/labstack/echo/v4"
)

// WavesEchoHandler implements Echo-based HTTP handlers following Clean Architecture.
type WavesEchoHandler struct {
	logger   *xlogger.Logger
	analysis *usecase.WaveAnalysisUseCase
	labeling *usecase.LabelingUseCase
	candles  *usecase.CandlesUseCase
	rl       *ratelimit.Limiter
}

func NewWavesEchoHandler(
	logger *xlogger.Logger,
	analysis *usecase.WaveAnalysisUseCase,
	labeling *usecase.LabelingUseCase,
	candles *usecase.CandlesUseCase,
) *WavesEchoHandler {
	metrics.Register()
	return &WavesEchoHandler{
		logger:   logger,
		analysis: analysis,
		labeling: labeling,
		candles:  candles,
		rl:       ratelimit.New(),
	}
}

func (h *WavesEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/waves/search", h.Search)
	g.GET("/waves/targets", h.Targets)
	g.GET("/waves/distribution", h.Distribution)
	g.POST("/waves/label", h.EnqueueLabel)
	g.GET("/waves/label/:id", h.LabelStatus)
	g.GET("/candles", h.Candles)
}

// allow applies a per-client token bucket to the pattern-search endpoints;
// the enumeration behind them is CPU-heavy.
func (h *WavesEchoHandler) allow(c echo.Context, op string) bool {
	return h.rl.Allow(c.RealIP()+":"+op, 5, 2)
}

func (h *WavesEchoHandler) Search(c echo.Context) error {
	req := &models.WaveSearchRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.allow(c, "search") {
		return xhttp.DataResponse(c, http.StatusTooManyRequests, "rate limited")
	}

	res, err := h.analysis.Search(c.Request().Context(), *req)
	if err != nil {
		h.logger.Error("wave search usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=15")
	return xhttp.SuccessResponse(c, res)
}

func (h *WavesEchoHandler) Targets(c echo.Context) error {
	req := &models.WaveTargetsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.allow(c, "targets") {
		return xhttp.DataResponse(c, http.StatusTooManyRequests, "rate limited")
	}

	res, err := h.analysis.Targets(c.Request().Context(), *req)
	if err != nil {
		h.logger.Error("wave targets usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *WavesEchoHandler) Distribution(c echo.Context) error {
	req := &models.WaveDistributionRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.allow(c, "distribution") {
		return xhttp.DataResponse(c, http.StatusTooManyRequests, "rate limited")
	}

	res, err := h.analysis.Distribution(c.Request().Context(), *req)
	if err != nil {
		h.logger.Error("wave distribution usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *WavesEchoHandler) EnqueueLabel(c echo.Context) error {
	req := &models.WaveLabelRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.allow(c, "label") {
		return xhttp.DataResponse(c, http.StatusTooManyRequests, "rate limited")
	}

	id, err := h.labeling.Enqueue(c.Request().Context(), *req)
	if err != nil {
		h.logger.Error("label enqueue error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.CreatedResponse(c, map[string]string{"job_id": id, "status": "queued"})
}

func (h *WavesEchoHandler) LabelStatus(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return xhttp.BadRequestResponse(c, "job id required")
	}

	st, ok, err := h.labeling.Status(c.Request().Context(), id)
	if err != nil {
		h.logger.Error("label status error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	if !ok {
		return xhttp.NotFoundResponse(c, "unknown or expired job id")
	}
	return xhttp.SuccessResponse(c, st)
}

func (h *WavesEchoHandler) Candles(c echo.Context) error {
	req := &models.CandlesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	tf := domrepo.NormalizeTimeframe(req.TF)

	p := usecase.GetCandlesParams{
		Symbol:    req.Symbol,
		Timeframe: tf,
		Limit:     req.N,
	}
	if from, ok := util.ParseTime(req.From); ok {
		p.From = from
	}
	if to, ok := util.ParseTime(req.To); ok {
		p.To = to
	}
	if !p.From.IsZero() || !p.To.IsZero() {
		p.From, p.To = util.AlignFromTo(p.From, p.To, string(tf))
	}

	res, err := h.candles.GetCandles(c.Request().Context(), p)
	if err != nil {
		h.logger.Error("candles usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=15")
	return xhttp.SuccessResponse(c, res)
}
