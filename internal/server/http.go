package server

import (
	"encoding/json"
	"net/http"
)

// NewHTTPMux wires the dashboard API. webhook is the Telegram webhook
// handler; pass nil when the bot is not configured.
func NewHTTPMux(h *Handlers, webhook http.HandlerFunc) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/rates", withCORS(h.Rates))
	mux.HandleFunc("/api/macro", withCORS(h.Macro))
	mux.HandleFunc("/api/fedwatch", withCORS(h.FedWatch))
	mux.HandleFunc("/api/data-updated", withCORS(h.DataUpdated))
	mux.HandleFunc("/api/pnl", withCORS(h.PNL))
	mux.HandleFunc("/api/summary", withCORS(h.Summary))
	mux.HandleFunc("/api/charts/curve.png", withCORS(h.CurveChart))
	mux.HandleFunc("/api/charts/macro.png", withCORS(h.MacroChart))
	if webhook != nil {
		mux.HandleFunc("/telegram/webhook", webhook)
	}
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(200) })
	return mux
}

func ListenAndServe(addr string, mux *http.ServeMux) error {
	return http.ListenAndServe(addr, mux)
}

// withCORS lets the browser dashboard call the API from any origin,
// matching the permissive policy of the deployed frontend.
func withCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeDataError reports a data-shaped failure with HTTP 200; the
// frontend inspects the error field instead of the status code.
func writeDataError(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusOK, map[string]string{"error": msg})
}
