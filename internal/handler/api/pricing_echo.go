package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	models "FareFlex/internal/domain/models"
	drepo "FareFlex/internal/domain/repository"
	"FareFlex/internal/domain/service"
	"FareFlex/internal/service/ratelimit"
	"FareFlex/internal/services/features"
	"FareFlex/internal/usecase"
	xhttp "FareFlex/pkg/http"
	xlogger "FareFlex/pkg/logger"
	"FareFlex/pkg/util"

	"github.com/labstack/echo/v4"
)

// Per-client budget for the quote endpoints. Batch requests draw one token
// regardless of size; the batch parallelism bound caps their cost.
const (
	quoteRateCapacity = 20
	quoteRateRefill   = 10 // tokens per second
)

// PricingEchoHandler exposes the quote path over HTTP.
type PricingEchoHandler struct {
	logger   *xlogger.Logger
	quotes   *usecase.QuoteService
	encoders service.Encoders
	store    drepo.QuoteStore
	rl       *ratelimit.Limiter
}

// NewPricingEchoHandler wires the handler. store backs the history endpoint
// and the health probe; nil when audit storage is disabled.
func NewPricingEchoHandler(
	logger *xlogger.Logger,
	quotes *usecase.QuoteService,
	encoders service.Encoders,
	store drepo.QuoteStore,
) *PricingEchoHandler {
	return &PricingEchoHandler{
		logger:   logger,
		quotes:   quotes,
		encoders: encoders,
		store:    store,
		rl:       ratelimit.New(),
	}
}

func (h *PricingEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/price", h.Price)
	g.POST("/price/batch", h.PriceBatch)
	g.GET("/quotes", h.Quotes)
	g.GET("/encoders", h.Encoders)
	e.GET("/healthz", h.Healthz)
}

func (h *PricingEchoHandler) Price(c echo.Context) error {
	if !h.rl.Allow(c.RealIP(), quoteRateCapacity, quoteRateRefill) {
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("quote rate limit exceeded"))
	}
	req := &models.QuoteHTTPRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.quotes.Quote(c.Request().Context(), req.ToBooking(), req.ToMarket())
	if err != nil {
		h.logger.Error("quote usecase error", xlogger.Error(err))
		if errors.Is(err, features.ErrMalformedDate) {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()))
		}
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, quoteResponse(res, req.FlightDate))
}

func (h *PricingEchoHandler) PriceBatch(c echo.Context) error {
	if !h.rl.Allow(c.RealIP(), quoteRateCapacity, quoteRateRefill) {
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("quote rate limit exceeded"))
	}
	req := &models.BatchQuoteHTTPRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	inputs := make([]usecase.QuoteInput, len(req.Requests))
	for i := range req.Requests {
		inputs[i] = usecase.QuoteInput{
			Booking: req.Requests[i].ToBooking(),
			Market:  req.Requests[i].ToMarket(),
		}
	}

	outcomes := h.quotes.QuoteBatch(c.Request().Context(), inputs)

	resp := models.BatchQuoteHTTPResponse{
		Total:   len(outcomes),
		Results: make([]models.QuoteHTTPResponse, len(outcomes)),
	}
	for i, out := range outcomes {
		if out.Err != nil {
			resp.Results[i] = models.QuoteHTTPResponse{Error: out.Err.Error()}
			continue
		}
		resp.Results[i] = quoteResponse(out.Result, req.Requests[i].FlightDate)
		resp.Successful++
	}
	return xhttp.SuccessResponse(c, resp)
}

// Quotes returns recent priced quotes for a route from the audit store.
func (h *PricingEchoHandler) Quotes(c echo.Context) error {
	if h.store == nil {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("quote history is disabled"))
	}
	route := c.QueryParam("route")
	if route == "" {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("route is required"))
	}

	now := time.Now().UTC()
	from := util.ParseTimeDefault(c.QueryParam("from"), now.Add(-24*time.Hour))
	to := util.ParseTimeDefault(c.QueryParam("to"), now)
	from, to = util.AlignRange(from, to, time.Minute)
	limit := util.ParseIntDefault(c.QueryParam("limit"), 100)
	if limit <= 0 || limit > 1000 {
		limit = 100
	}

	rows, err := h.store.Query(c.Request().Context(), route, from, to, limit)
	if err != nil {
		h.logger.Error("quote history query error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

// Encoders reports the categorical vocabulary the model was trained with, so
// callers can discover valid carriers and airports.
func (h *PricingEchoHandler) Encoders(c echo.Context) error {
	out := make(map[string][]string)
	for _, col := range h.encoders.Columns() {
		out[col] = h.encoders.Categories(col)
	}
	return xhttp.SuccessResponse(c, out)
}

// Healthz reports readiness. Model artifacts load at startup or the process
// does not come up, so reaching this handler already implies a live model;
// only the audit store is probed.
func (h *PricingEchoHandler) Healthz(c echo.Context) error {
	status := map[string]string{"status": "ok", "model": "loaded"}
	if h.store != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := h.store.Health(ctx); err != nil {
			status["storage"] = "degraded"
			return xhttp.DataResponse(c, http.StatusServiceUnavailable, status)
		}
		status["storage"] = "ok"
	}
	return xhttp.SuccessResponse(c, status)
}

func quoteResponse(res *models.PricingResult, flightDate string) models.QuoteHTTPResponse {
	f := res.Features
	return models.QuoteHTTPResponse{
		Success:            true,
		BasePrice:          res.BasePrice,
		FinalPrice:         res.FinalPrice,
		TotalAdjustmentPct: res.TotalAdjustmentPct,
		Confidence:         res.Confidence,
		Factors:            res.FactorsApplied,
		Breakdown:          res.Breakdown,
		Route:              f.Route(),
		FlightDate:         flightDate,
		FeaturesSummary: map[string]any{
			"days_until_flight": f.DaysUntilFlight,
			"seats_remaining":   f.SeatsRemaining,
			"cabin_category":    f.Fare.CabinCategory,
			"passenger_type":    f.Fare.PassengerType,
			"fare_rule":         f.Fare.FareRuleNumber,
			"is_weekend":        f.IsWeekend,
			"is_night_fare":     f.Fare.IsNightFare,
		},
	}
}
