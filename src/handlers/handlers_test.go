package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/patrickmn/go-cache"

	"github.com/username/markfolio/backend/src/config"
	"github.com/username/markfolio/backend/src/logger"
	"github.com/username/markfolio/backend/src/models"
	"github.com/username/markfolio/backend/src/services"
	"github.com/username/markfolio/backend/src/store"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	config.Cfg = &config.AppConfig{
		Port:               "0",
		LogLevel:           "error",
		CORSAllowedOrigin:  "http://localhost:3000",
		MaxUploadSizeBytes: 10 * 1024 * 1024,
	}
	os.Exit(m.Run())
}

func newTestRouter() *chi.Mux {
	repo := store.NewRepository(store.NewMemoryStore())
	svc := services.NewDashboardService(repo, cache.New(time.Minute, time.Minute))

	tradeHandler := NewTradeHandler(svc)
	marketHandler := NewMarketDataHandler(svc)
	dashboardHandler := NewDashboardHandler(svc)

	r := chi.NewRouter()
	r.Route("/api", func(api chi.Router) {
		api.Post("/trades/upload", tradeHandler.HandleUploadTrades)
		api.Post("/trades", tradeHandler.HandleCreateTrade)
		api.Get("/trades", tradeHandler.HandleListTrades)
		api.Delete("/trades", tradeHandler.HandleClearTrades)
		api.Post("/prices/upload", marketHandler.HandleUploadPrices)
		api.Get("/prices", marketHandler.HandleListPrices)
		api.Delete("/prices", marketHandler.HandleClearPrices)
		api.Get("/pnl", dashboardHandler.HandleGetPnL)
		api.Get("/stats", dashboardHandler.HandleGetStats)
		api.Get("/instruments", dashboardHandler.HandleGetInstruments)
		api.Get("/traders", dashboardHandler.HandleGetTraders)
		api.Delete("/data", dashboardHandler.HandleClearAll)
	})
	return r
}

const tradesCSV = "trade_id,trade_date,trader,instrument,side,quantity,trade_price,currency\n" +
	"T1,2024-01-02,alice,WTI-CRUDE,buy,1000,75.50,USD\n" +
	"T2,,alice,WTI-CRUDE,buy,1000,75.50,USD"

func doRequest(t *testing.T, router http.Handler, method, target, body, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestUploadTradesRawBody(t *testing.T) {
	router := newTestRouter()
	rec := doRequest(t, router, http.MethodPost, "/api/trades/upload", tradesCSV, "text/csv")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result models.UploadResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.ValidCount != 1 || result.InvalidCount != 1 {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestUploadTradesMultipart(t *testing.T) {
	router := newTestRouter()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "trades.csv")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	fw.Write([]byte(tradesCSV))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/trades/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestUploadTradesMissingInput(t *testing.T) {
	router := newTestRouter()
	rec := doRequest(t, router, http.MethodPost, "/api/trades/upload", "", "text/csv")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty body must 400, got %d", rec.Code)
	}
}

func TestUploadTradesHeaderOnly(t *testing.T) {
	router := newTestRouter()
	rec := doRequest(t, router, http.MethodPost, "/api/trades/upload", "trade_id,trade_date", "text/csv")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("header-only CSV must 400, got %d", rec.Code)
	}
}

func TestCreateTrade(t *testing.T) {
	router := newTestRouter()

	rec := doRequest(t, router, http.MethodPost, "/api/trades",
		`{"trade_id":"T9","trade_date":"2024-01-02","instrument":"WTI-CRUDE","side":"buy","quantity":1000,"trade_price":75.5}`,
		"application/json")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var trade models.Trade
	if err := json.Unmarshal(rec.Body.Bytes(), &trade); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if trade.Side != "BUY" || trade.Currency != "USD" || trade.Quantity != 1000 {
		t.Errorf("trade not normalized: %+v", trade)
	}

	rec = doRequest(t, router, http.MethodPost, "/api/trades", `{"trade_id":"T9"}`, "application/json")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid record must 400, got %d", rec.Code)
	}
	var body map[string][]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body["errors"]) == 0 {
		t.Errorf("expected error list, got %s", rec.Body.String())
	}
}

func TestListTradesPagination(t *testing.T) {
	router := newTestRouter()
	doRequest(t, router, http.MethodPost, "/api/trades/upload", tradesCSV, "text/csv")

	rec := doRequest(t, router, http.MethodGet, "/api/trades?page=1&limit=10", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var result models.TradeListResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Pagination.Total != 1 || len(result.Trades) != 1 {
		t.Errorf("unexpected listing: %+v", result)
	}
}

func TestPnLEndpoint(t *testing.T) {
	router := newTestRouter()
	doRequest(t, router, http.MethodPost, "/api/trades/upload", tradesCSV, "text/csv")
	doRequest(t, router, http.MethodPost, "/api/prices/upload",
		"instrument,price_date,close_price\nWTI-CRUDE,2024-01-05,76.00", "text/csv")

	rec := doRequest(t, router, http.MethodGet, "/api/pnl", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var result models.PnLResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.TotalPnL != 500.00 || result.ValuedTradeCount != 1 {
		t.Errorf("unexpected PnL: %+v", result)
	}
}

func TestStatsETag(t *testing.T) {
	router := newTestRouter()
	doRequest(t, router, http.MethodPost, "/api/trades/upload", tradesCSV, "text/csv")

	rec := doRequest(t, router, http.MethodGet, "/api/stats", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	etag := rec.Header().Get("ETag")
	if etag == "" {
		t.Fatal("expected an ETag header")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	req.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotModified {
		t.Errorf("matching If-None-Match must 304, got %d", rec.Code)
	}
}

func TestClearAllEndpoint(t *testing.T) {
	router := newTestRouter()
	doRequest(t, router, http.MethodPost, "/api/trades/upload", tradesCSV, "text/csv")
	doRequest(t, router, http.MethodPost, "/api/prices/upload",
		"instrument,price_date,close_price\nWTI-CRUDE,2024-01-05,76.00", "text/csv")

	rec := doRequest(t, router, http.MethodDelete, "/api/data", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = doRequest(t, router, http.MethodGet, "/api/stats", "", "")
	var stats models.Stats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats != (models.Stats{}) {
		t.Errorf("expected all-zero stats after clear, got %+v", stats)
	}
}
