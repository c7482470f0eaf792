package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"FareFlex/internal/domain/models"
	drepo "FareFlex/internal/domain/repository"
	"FareFlex/internal/services/pricing"
	"FareFlex/internal/usecase"
	xlogger "FareFlex/pkg/logger"

	"github.com/labstack/echo/v4"
)

type fixedEstimator struct{ price float64 }

func (f fixedEstimator) Infer(_ context.Context, _ [models.FeatureCount]float64) (float64, error) {
	return f.price, nil
}

type fixedEncoders struct{}

func (fixedEncoders) Encode(_, _ string) int { return 0 }

func (fixedEncoders) Categories(column string) []string {
	if column == models.ColCarrier {
		return []string{"DL", "AA", "UA"}
	}
	return []string{"JFK", "LAX"}
}

func (fixedEncoders) Columns() []string {
	return []string{models.ColCarrier, models.ColOrigin, models.ColDestination}
}

type nopMetrics struct{}

func (nopMetrics) RecordQuote(_, _ string)              {}
func (nopMetrics) RecordError(_ string)                 {}
func (nopMetrics) RecordFinalPrice(_ string, _ float64) {}
func (nopMetrics) RecordFactor(_ string, _ float64)     {}
func (nopMetrics) RecordClip(_ string)                  {}
func (nopMetrics) RecordLatency(_ string, _ float64)    {}

// fakeQuoteStore serves canned history rows and a switchable health state.
type fakeQuoteStore struct {
	rows      []*models.QuoteRecord
	unhealthy bool
}

func (f *fakeQuoteStore) Init(context.Context) error { return nil }

func (f *fakeQuoteStore) Store(context.Context, *models.QuoteRecord) error { return nil }

func (f *fakeQuoteStore) StoreBatch(context.Context, []*models.QuoteRecord) error { return nil }

func (f *fakeQuoteStore) Query(_ context.Context, route string, _, _ time.Time, limit int) ([]*models.QuoteRecord, error) {
	var out []*models.QuoteRecord
	for _, r := range f.rows {
		if r.Route == route && len(out) < limit {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeQuoteStore) Health(context.Context) error {
	if f.unhealthy {
		return errors.New("ch down")
	}
	return nil
}

func (f *fakeQuoteStore) Close() error { return nil }

func newTestHandler(t *testing.T, store drepo.QuoteStore) (*echo.Echo, *PricingEchoHandler) {
	t.Helper()
	log, err := xlogger.New(&xlogger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	quotes := usecase.NewQuoteService(
		fixedEstimator{price: 400}, fixedEncoders{}, pricing.NewEngine(),
		nil, nil, nil, nopMetrics{}, log,
	)
	h := NewPricingEchoHandler(log, quotes, fixedEncoders{}, store)
	e := echo.New()
	h.RegisterRoutes(e)
	return e, h
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, rec.Body.String())
	}
	return env
}

const validQuoteBody = `{
	"searchDate": "2026-02-16",
	"flightDate": "2026-03-18",
	"startingAirport": "JFK",
	"destinationAirport": "LAX",
	"seatsRemaining": 50
}`

func TestPriceEndpoint(t *testing.T) {
	e, _ := newTestHandler(t, nil)

	rec := doJSON(e, http.MethodPost, "/api/price", validQuoteBody)
	env := decodeEnvelope(t, rec)
	if env.Status != http.StatusOK {
		t.Fatalf("status = %d, body %s", env.Status, rec.Body.String())
	}

	var res models.QuoteHTTPResponse
	if err := json.Unmarshal(env.Data, &res); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if !res.Success || res.FinalPrice != 400 || res.Route != "JFK-LAX" {
		t.Errorf("unexpected response: %+v", res)
	}
	if res.Confidence != models.ConfidenceHigh {
		t.Errorf("confidence = %s, want High", res.Confidence)
	}
	if res.Factors["demand"] != "+0.0%" {
		t.Errorf("factors = %v", res.Factors)
	}
}

func TestPriceEndpointValidation(t *testing.T) {
	e, _ := newTestHandler(t, nil)

	cases := []struct {
		name string
		body string
	}{
		{"missing flight date", `{"searchDate":"2026-02-16","startingAirport":"JFK","destinationAirport":"LAX"}`},
		{"bad airport", `{"searchDate":"2026-02-16","flightDate":"2026-03-18","startingAirport":"J1","destinationAirport":"LAX"}`},
		{"bad season", validQuoteBody[:len(validQuoteBody)-2] + `,"season":"rainy"}`},
	}
	for _, c := range cases {
		env := decodeEnvelope(t, doJSON(e, http.MethodPost, "/api/price", c.body))
		if env.Status != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", c.name, env.Status)
		}
	}
}

func TestPriceBatchEndpoint(t *testing.T) {
	e, _ := newTestHandler(t, nil)

	body := `{"requests": [` + validQuoteBody + `,` +
		strings.Replace(validQuoteBody, "2026-03-18", "2026-02-01", 1) + `]}`
	env := decodeEnvelope(t, doJSON(e, http.MethodPost, "/api/price/batch", body))
	if env.Status != http.StatusOK {
		t.Fatalf("status = %d", env.Status)
	}

	var res models.BatchQuoteHTTPResponse
	if err := json.Unmarshal(env.Data, &res); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if res.Total != 2 || res.Successful != 2 || len(res.Results) != 2 {
		t.Fatalf("batch summary: %+v", res)
	}
	// Second itinerary departs before the search date: zero lead, surge pricing.
	if res.Results[1].FinalPrice <= res.Results[0].FinalPrice {
		t.Errorf("zero-lead quote %v should exceed 30-day quote %v",
			res.Results[1].FinalPrice, res.Results[0].FinalPrice)
	}
}

func TestPriceEndpointRateLimited(t *testing.T) {
	e, _ := newTestHandler(t, nil)

	var limited int
	for i := 0; i < 2*quoteRateCapacity; i++ {
		env := decodeEnvelope(t, doJSON(e, http.MethodPost, "/api/price", validQuoteBody))
		if env.Status == http.StatusTooManyRequests {
			limited++
		}
	}
	if limited == 0 {
		t.Error("burst twice the bucket capacity was never limited")
	}
}

func TestPriceBatchRejectsEmpty(t *testing.T) {
	e, _ := newTestHandler(t, nil)
	env := decodeEnvelope(t, doJSON(e, http.MethodPost, "/api/price/batch", `{"requests": []}`))
	if env.Status != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", env.Status)
	}
}

func TestEncodersEndpoint(t *testing.T) {
	e, _ := newTestHandler(t, nil)

	env := decodeEnvelope(t, doJSON(e, http.MethodGet, "/api/encoders", ""))
	if env.Status != http.StatusOK {
		t.Fatalf("status = %d", env.Status)
	}
	var out map[string][]string
	if err := json.Unmarshal(env.Data, &out); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if len(out[models.ColCarrier]) != 3 {
		t.Errorf("carrier vocabulary = %v", out[models.ColCarrier])
	}
}

func TestQuotesEndpoint(t *testing.T) {
	store := &fakeQuoteStore{rows: []*models.QuoteRecord{
		{Route: "JFK-LAX", FinalPrice: 420, Confidence: models.ConfidenceHigh},
		{Route: "JFK-LAX", FinalPrice: 395, Confidence: models.ConfidenceMedium},
		{Route: "ORD-SFO", FinalPrice: 250, Confidence: models.ConfidenceLow},
	}}
	e, _ := newTestHandler(t, store)

	env := decodeEnvelope(t, doJSON(e, http.MethodGet, "/api/quotes?route=JFK-LAX", ""))
	if env.Status != http.StatusOK {
		t.Fatalf("status = %d", env.Status)
	}
	var list struct {
		Rows  []models.QuoteRecord `json:"rows"`
		Total int64                `json:"total"`
	}
	if err := json.Unmarshal(env.Data, &list); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if list.Total != 2 || len(list.Rows) != 2 {
		t.Fatalf("history = %+v", list)
	}

	env = decodeEnvelope(t, doJSON(e, http.MethodGet, "/api/quotes", ""))
	if env.Status != http.StatusBadRequest {
		t.Errorf("missing route status = %d, want 400", env.Status)
	}
}

func TestQuotesEndpointDisabled(t *testing.T) {
	e, _ := newTestHandler(t, nil)
	env := decodeEnvelope(t, doJSON(e, http.MethodGet, "/api/quotes?route=JFK-LAX", ""))
	if env.Status != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", env.Status)
	}
}

func TestHealthz(t *testing.T) {
	e, _ := newTestHandler(t, &fakeQuoteStore{})
	env := decodeEnvelope(t, doJSON(e, http.MethodGet, "/healthz", ""))
	if env.Status != http.StatusOK {
		t.Fatalf("status = %d", env.Status)
	}

	e, _ = newTestHandler(t, &fakeQuoteStore{unhealthy: true})
	env = decodeEnvelope(t, doJSON(e, http.MethodGet, "/healthz", ""))
	if env.Status != http.StatusServiceUnavailable {
		t.Fatalf("degraded status = %d, want 503", env.Status)
	}
}
