package server

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ratesdash/internal/marketdata"
	"ratesdash/internal/storage"
)

func newTestHandlers(t *testing.T) (*Handlers, *storage.Store) {
	t.Helper()
	db, err := storage.OpenSQLite(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	if err := storage.InitSchema(db); err != nil {
		t.Fatal(err)
	}
	store := storage.NewStore(db)
	svc := marketdata.NewService("", store, time.Minute)
	return NewHandlers(svc, store, nil), store
}

func postPNL(t *testing.T, h *Handlers, body string) (*httptest.ResponseRecorder, pnlResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/pnl", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.PNL(rec, req)
	var resp pnlResponse
	if rec.Code == http.StatusOK {
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatal(err)
		}
	}
	return rec, resp
}

func TestPNLReferenceScenario(t *testing.T) {
	h, _ := newTestHandlers(t)
	rec, resp := postPNL(t, h, `{"original_yield":4.05,"new_yield":4.15,"maturity":"10Y","notional":10000000}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if math.Abs(resp.PNL-(-76849.20)) > 0.01 {
		t.Fatalf("pnl = %.4f, want -76849.20", resp.PNL)
	}
	if math.Abs(resp.YieldChangeBps-10) > 1e-9 {
		t.Fatalf("yield_change_bps = %.4f", resp.YieldChangeBps)
	}
	if math.Abs(resp.DV01Start-7688.61) > 0.01 || math.Abs(resp.DV01End-7681.23) > 0.01 {
		t.Fatalf("dv01 = %.2f / %.2f", resp.DV01Start, resp.DV01End)
	}
}

func TestPNLMissingMaturityIsNeutral(t *testing.T) {
	h, _ := newTestHandlers(t)
	rec, resp := postPNL(t, h, `{"original_yield":4.05,"new_yield":4.15,"maturity":"50Y","notional":10000000}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 for unknown maturity", rec.Code)
	}
	if resp.PNL != 0 {
		t.Fatalf("pnl = %.4f, want 0", resp.PNL)
	}
}

func TestPNLRejectsDegenerateYield(t *testing.T) {
	h, _ := newTestHandlers(t)
	rec, _ := postPNL(t, h, `{"original_yield":-150,"new_yield":4.15,"maturity":"10Y","notional":10000000}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestPNLRejectsBadJSON(t *testing.T) {
	h, _ := newTestHandlers(t)
	rec, _ := postPNL(t, h, `{"original_yield":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestPNLMethodNotAllowed(t *testing.T) {
	h, _ := newTestHandlers(t)
	req := httptest.NewRequest(http.MethodGet, "/api/pnl", nil)
	rec := httptest.NewRecorder()
	h.PNL(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}

func TestPNLMultiLeg(t *testing.T) {
	h, _ := newTestHandlers(t)
	// Duration-neutral pair, parallel +10bp: the legs offset.
	body := `{"legs":[
		{"maturity":"10Y","notional":10000000,"original_yield":4.00,"new_yield":4.10},
		{"maturity":"2Y","notional":-42105263,"original_yield":4.00,"new_yield":4.10}
	]}`
	rec, resp := postPNL(t, h, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if len(resp.LegPNL) != 2 {
		t.Fatalf("leg_pnl has %d entries", len(resp.LegPNL))
	}
	var sum float64
	for _, l := range resp.LegPNL {
		sum += l.PNL
	}
	if math.Abs(resp.PNL-sum) > 1e-6 {
		t.Fatalf("total %.4f != leg sum %.4f", resp.PNL, sum)
	}
	if legSize := math.Abs(resp.LegPNL[0].PNL); math.Abs(resp.PNL) > legSize*0.01 {
		t.Fatalf("parallel shift not neutral: total %.2f vs leg %.2f", resp.PNL, legSize)
	}
}

func TestDataUpdatedClearsFlags(t *testing.T) {
	h, store := newTestHandlers(t)
	if _, err := store.Save("rates", []byte(`{"10Y":4.05}`)); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	h.DataUpdated(rec, httptest.NewRequest(http.MethodGet, "/api/data-updated", nil))
	var resp struct {
		Updated     bool              `json:"updated"`
		UpdatedData map[string]string `json:"updated_data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Updated || resp.UpdatedData["rates"] == "" {
		t.Fatalf("first poll = %+v, want rates flagged", resp)
	}

	rec = httptest.NewRecorder()
	h.DataUpdated(rec, httptest.NewRequest(http.MethodGet, "/api/data-updated", nil))
	resp.Updated = true
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Updated {
		t.Fatal("flags not cleared after first poll")
	}
}

func TestSummaryDisabledWithoutKey(t *testing.T) {
	h, _ := newTestHandlers(t)
	rec := httptest.NewRecorder()
	h.Summary(rec, httptest.NewRequest(http.MethodGet, "/api/summary", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestCORSHeaders(t *testing.T) {
	h, _ := newTestHandlers(t)
	mux := NewHTTPMux(h, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/pnl", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("preflight status = %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatal("missing CORS header")
	}
}

func TestHealthz(t *testing.T) {
	h, _ := newTestHandlers(t)
	mux := NewHTTPMux(h, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz = %d", rec.Code)
	}
}
