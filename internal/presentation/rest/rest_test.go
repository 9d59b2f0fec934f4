package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adhikag24/unified-pricing-layer-mvp/internal/application/ingest"
	"github.com/adhikag24/unified-pricing-layer-mvp/internal/application/projection"
	"github.com/adhikag24/unified-pricing-layer-mvp/internal/application/replay"
	"github.com/adhikag24/unified-pricing-layer-mvp/internal/infrastructure/memory"
)

// capturePublisher records replayed events instead of hitting a bus.
type capturePublisher struct {
	values [][]byte
}

func (c *capturePublisher) Publish(_ context.Context, _, value []byte) error {
	c.values = append(c.values, value)
	return nil
}

type testAPI struct {
	mux       *http.ServeMux
	store     *memory.Store
	publisher *capturePublisher
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	store := memory.NewStore()
	logger := slog.New(slog.DiscardHandler)
	pipeline := ingest.NewPipeline(store, logger, nil, ingest.Config{})
	projector := projection.NewProjector(store, logger)
	publisher := &capturePublisher{}
	replaySvc := replay.NewService(store, publisher, logger)

	mux := http.NewServeMux()
	NewHealthHandler("uprl", nil, logger).RegisterRoutes(mux)
	NewOrderHandler(projector, logger).RegisterRoutes(mux)
	NewDLQHandler(replaySvc, logger).RegisterRoutes(mux)
	NewEventHandler(pipeline, logger).RegisterRoutes(mux)

	return &testAPI{mux: mux, store: store, publisher: publisher}
}

func (a *testAPI) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	a.mux.ServeHTTP(rec, req)
	return rec
}

const pricingEvent = `{
	"event_id": "evt-1",
	"event_type": "PricingUpdated",
	"schema_version": "pricing.commerce.v1",
	"order_id": "ord-1",
	"emitted_at": "2026-03-01T10:00:00Z",
	"components": [
		{"component_type": "RoomRate", "amount": 500000, "currency": "IDR",
		 "dimensions": {"order_detail_id": "od-1"}}
	]
}`

func TestHealthEndpoints(t *testing.T) {
	api := newTestAPI(t)
	assert.Equal(t, http.StatusOK, api.do(t, http.MethodGet, "/healthz", "").Code)
	assert.Equal(t, http.StatusOK, api.do(t, http.MethodGet, "/readyz", "").Code)
}

func TestReadyzReportsDependencyFailure(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	mux := http.NewServeMux()
	NewHealthHandler("uprl", func(context.Context) error {
		return assert.AnError
	}, logger).RegisterRoutes(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestIngestEndpoint(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/v1/events", pricingEvent)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res ingest.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, ingest.DispositionCommitted, res.Disposition)
	assert.Equal(t, 1, res.Version)
}

func TestIngestEndpointDeadLetters(t *testing.T) {
	api := newTestAPI(t)

	bad := `{"event_type": "PricingUpdated", "schema_version": "pricing.commerce.v1",
		"order_id": "ord-1", "components": []}`
	rec := api.do(t, http.MethodPost, "/api/v1/events", bad)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var res ingest.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, ingest.DispositionDeadLettered, res.Disposition)
	assert.NotEmpty(t, res.DLQID)
}

func TestIngestEndpointEmptyBody(t *testing.T) {
	api := newTestAPI(t)
	assert.Equal(t, http.StatusBadRequest, api.do(t, http.MethodPost, "/api/v1/events", "").Code)
}

func TestGetOrder(t *testing.T) {
	api := newTestAPI(t)
	require.Equal(t, http.StatusOK, api.do(t, http.MethodPost, "/api/v1/events", pricingEvent).Code)

	rec := api.do(t, http.MethodGet, "/api/v1/orders/ord-1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var view struct {
		OrderID       string `json:"order_id"`
		PricingLatest []struct {
			Amount int64 `json:"amount"`
		} `json:"pricing_latest"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, "ord-1", view.OrderID)
	require.Len(t, view.PricingLatest, 1)
	assert.Equal(t, int64(500000), view.PricingLatest[0].Amount)
}

func TestGetOrderNotFound(t *testing.T) {
	api := newTestAPI(t)
	assert.Equal(t, http.StatusNotFound, api.do(t, http.MethodGet, "/api/v1/orders/ord-unknown", "").Code)
}

func TestListOrders(t *testing.T) {
	api := newTestAPI(t)
	require.Equal(t, http.StatusOK, api.do(t, http.MethodPost, "/api/v1/events", pricingEvent).Code)

	rec := api.do(t, http.MethodGet, "/api/v1/orders", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Orders []struct {
			OrderID  string   `json:"order_id"`
			Families []string `json:"families"`
		} `json:"orders"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Orders, 1)
	assert.Equal(t, "ord-1", body.Orders[0].OrderID)
	assert.Contains(t, body.Orders[0].Families, "pricing")
}

func TestTimelineFamilies(t *testing.T) {
	api := newTestAPI(t)

	payment := `{
		"event_id": "evt-p1",
		"event_type": "payment.captured",
		"schema_version": "payment.timeline.v1",
		"order_id": "ord-1",
		"status": "Captured",
		"payment_method": {"channel": "VA"},
		"currency": "IDR",
		"amount": 500000
	}`
	require.Equal(t, http.StatusOK, api.do(t, http.MethodPost, "/api/v1/events", payment).Code)

	rec := api.do(t, http.MethodGet, "/api/v1/orders/ord-1/timeline/payment", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Events []json.RawMessage `json:"events"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Events, 1)

	assert.Equal(t, http.StatusBadRequest, api.do(t, http.MethodGet, "/api/v1/orders/ord-1/timeline/weather", "").Code)
}

func TestDLQListAndReplay(t *testing.T) {
	api := newTestAPI(t)

	bad := `{"event_type": "PricingUpdated", "schema_version": "pricing.commerce.v1",
		"order_id": "ord-1", "components": []}`
	rec := api.do(t, http.MethodPost, "/api/v1/events", bad)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var parked ingest.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &parked))

	rec = api.do(t, http.MethodGet, "/api/v1/dlq?error_kind=ValidationError", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Count   int `json:"count"`
		Entries []struct {
			DLQID string `json:"dlq_id"`
		} `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Equal(t, 1, list.Count)
	assert.Equal(t, parked.DLQID, list.Entries[0].DLQID)

	// A filter that matches nothing returns an empty list, not an error.
	rec = api.do(t, http.MethodGet, "/api/v1/dlq?order_id=ord-other", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/v1/dlq/"+parked.DLQID+"/replay", "")
	require.Equal(t, http.StatusAccepted, rec.Code)
	var replayed struct {
		RetryCount int `json:"retry_count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &replayed))
	assert.Equal(t, 1, replayed.RetryCount)
	require.Len(t, api.publisher.values, 1)
	assert.JSONEq(t, bad, string(api.publisher.values[0]))

	assert.Equal(t, http.StatusNotFound, api.do(t, http.MethodPost, "/api/v1/dlq/nope/replay", "").Code)
}
