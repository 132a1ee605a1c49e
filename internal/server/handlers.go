package server

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"ratesdash/internal/marketdata"
	"ratesdash/internal/openai"
	"ratesdash/internal/risk"
	"ratesdash/internal/storage"
)

// Handlers carries the dashboard's dependencies. note and store may be
// nil; the matching endpoints degrade.
type Handlers struct {
	svc   *marketdata.Service
	store *storage.Store
	note  *openai.DeskNote
}

func NewHandlers(svc *marketdata.Service, store *storage.Store, note *openai.DeskNote) *Handlers {
	return &Handlers{svc: svc, store: store, note: note}
}

func (h *Handlers) Rates(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.Rates(r.Context())
	if err != nil {
		log.Printf("http: rates: %v", err)
		writeJSON(w, http.StatusOK, &marketdata.RatesData{
			Yields:     map[string]float64{},
			YieldCurve: risk.Curve{},
			Analysis: marketdata.CurveAnalysis{
				CurveShape:      "Unknown",
				TradePitch:      "Data unavailable",
				DV0110MPosition: "$0.00",
			},
			Error: err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, data)
}

func (h *Handlers) Macro(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.Macro(r.Context())
	if err != nil {
		log.Printf("http: macro: %v", err)
		writeDataError(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, data)
}

func (h *Handlers) FedWatch(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.FedWatch(r.Context())
	if err != nil {
		log.Printf("http: fedwatch: %v", err)
		writeDataError(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, data)
}

// DataUpdated is the change-poll endpoint: it reports which data types
// changed since the last poll and clears the flags on read.
func (h *Handlers) DataUpdated(w http.ResponseWriter, r *http.Request) {
	resp := struct {
		Updated     bool              `json:"updated"`
		UpdatedData map[string]string `json:"updated_data"`
		Timestamp   string            `json:"timestamp"`
	}{
		UpdatedData: map[string]string{},
		Timestamp:   time.Now().Format(time.RFC3339),
	}
	if h.store == nil {
		writeJSON(w, http.StatusOK, resp)
		return
	}
	flags, err := h.store.ChangedFlags()
	if err != nil {
		log.Printf("http: data-updated: %v", err)
		writeDataError(w, err.Error())
		return
	}
	for dataType, at := range flags {
		resp.UpdatedData[dataType] = at.Format(time.RFC3339)
	}
	resp.Updated = len(flags) > 0
	if resp.Updated {
		if err := h.store.ClearChanged(); err != nil {
			log.Printf("http: data-updated clear: %v", err)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

type pnlRequest struct {
	OriginalYield float64    `json:"original_yield"`
	NewYield      float64    `json:"new_yield"`
	Maturity      string     `json:"maturity"`
	Notional      float64    `json:"notional"`
	Legs          []risk.Leg `json:"legs,omitempty"`
}

type pnlResponse struct {
	PNL            float64      `json:"pnl"`
	YieldChangeBps float64      `json:"yield_change_bps"`
	DV01Start      float64      `json:"dv01_start"`
	DV01End        float64      `json:"dv01_end"`
	LegPNL         []legPNLItem `json:"leg_pnl,omitempty"`
}

type legPNLItem struct {
	Maturity string  `json:"maturity"`
	PNL      float64 `json:"pnl"`
}

// PNL runs the what-if estimator server-side. Numeric validation lives
// here at the boundary; the risk package assumes clean inputs. An
// unknown maturity is not an error: it prices to zero.
func (h *Handlers) PNL(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "POST required"})
		return
	}
	var req pnlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json: " + err.Error()})
		return
	}

	if len(req.Legs) > 0 {
		for _, l := range req.Legs {
			if !risk.ValidYield(l.OriginalYield) || !risk.ValidYield(l.NewYield) {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "yield out of range (must be > -100 and finite)"})
				return
			}
			if !risk.ValidNotional(l.Notional) {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid notional"})
				return
			}
		}
		resp := pnlResponse{}
		for _, l := range req.Legs {
			pnl := l.PNL()
			resp.PNL += pnl
			resp.LegPNL = append(resp.LegPNL, legPNLItem{Maturity: l.Maturity, PNL: pnl})
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}

	if !risk.ValidYield(req.OriginalYield) || !risk.ValidYield(req.NewYield) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "yield out of range (must be > -100 and finite)"})
		return
	}
	if !risk.ValidNotional(req.Notional) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid notional"})
		return
	}
	d, ok := risk.Duration(req.Maturity)
	if !ok {
		// Missing maturity is a neutral result, not an error.
		writeJSON(w, http.StatusOK, pnlResponse{})
		return
	}
	writeJSON(w, http.StatusOK, pnlResponse{
		PNL:            risk.EstimatePNL(req.OriginalYield, req.NewYield, d, req.Notional),
		YieldChangeBps: (req.NewYield - req.OriginalYield) * 100,
		DV01Start:      risk.DV01(req.Notional, d, req.OriginalYield),
		DV01End:        risk.DV01(req.Notional, d, req.NewYield),
	})
}

// Summary produces an AI desk note over the current snapshots.
func (h *Handlers) Summary(w http.ResponseWriter, r *http.Request) {
	if h.note == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "summary disabled: no OpenAI key configured"})
		return
	}
	rates, err := h.svc.Rates(r.Context())
	if err != nil {
		writeDataError(w, err.Error())
		return
	}
	macro, _ := h.svc.Macro(r.Context())
	fedwatch, _ := h.svc.FedWatch(r.Context())

	text, err := h.note.Commentary(r.Context(), rates, macro, fedwatch)
	if err != nil {
		log.Printf("http: summary: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"summary":      text,
		"generated_at": time.Now().Format(time.RFC3339),
	})
}

func (h *Handlers) CurveChart(w http.ResponseWriter, r *http.Request) {
	img, err := h.svc.CurveChartPNG(r.Context())
	if err != nil {
		log.Printf("http: curve chart: %v", err)
		writeDataError(w, err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(img)
}

func (h *Handlers) MacroChart(w http.ResponseWriter, r *http.Request) {
	indicator := r.URL.Query().Get("indicator")
	if indicator == "" {
		indicator = "CPI"
	}
	img, err := h.svc.MacroChartPNG(r.Context(), indicator)
	if err != nil {
		log.Printf("http: macro chart: %v", err)
		writeDataError(w, err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(img)
}
