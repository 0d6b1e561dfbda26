package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"CoinSentinel/internal/calculator"
	"CoinSentinel/internal/model"
	"CoinSentinel/internal/recorder"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ChartWindow is the number of recent prices returned for a chart.
const ChartWindow = 30

// ErrUnknownAsset is matched against Source.History errors to answer 404.
var ErrUnknownAsset = errors.New("unknown asset")

// Source is the read side of the monitor.
type Source interface {
	Snapshot(sortMode, filterMode string) *model.Snapshot
	Summary() model.Summary
	History(id string, n int) ([]float64, error)
	Status() (string, error)
}

// Server exposes the dashboard REST API, websocket feed, metrics and health.
type Server struct {
	source   Source
	recorder recorder.Recorder
	hub      *Hub
	gatherer prometheus.Gatherer
	started  time.Time
	srv      *http.Server
}

// NewServer creates a dashboard server. A nil gatherer serves the default registry.
func NewServer(addr string, src Source, rec recorder.Recorder, hub *Hub, gatherer prometheus.Gatherer) *Server {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	s := &Server{source: src, recorder: rec, hub: hub, gatherer: gatherer, started: time.Now()}
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the route mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/coins", s.handleCoins)
	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("GET /api/history/{id}", s.handleHistory)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /ws", s.hub.ServeWS)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	return mux
}

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		log.Printf("[INFO] dashboard listening on %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[ERROR] dashboard server: %v", err)
		}
	}()
}

// Stop gracefully shuts down the server and disconnects websocket clients.
func (s *Server) Stop(ctx context.Context) error {
	s.hub.Close()
	return s.srv.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[WARN] encode response: %v", err)
	}
}

func (s *Server) handleCoins(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sortMode := q.Get("sort")
	if sortMode == "" {
		sortMode = SortName
	}
	filterMode := q.Get("mode")
	if filterMode == "" {
		filterMode = FilterAll
	}
	writeJSON(w, http.StatusOK, s.source.Snapshot(sortMode, filterMode))
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.source.Summary())
}

type historyResponse struct {
	ID       string                  `json:"id"`
	Prices   []float64               `json:"prices"`
	High     float64                 `json:"high,omitempty"`
	Low      float64                 `json:"low,omitempty"`
	Position float64                 `json:"position,omitempty"`
	Signals  []recorder.SignalRecord `json:"signals,omitempty"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	prices, err := s.source.History(id, ChartWindow)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, ErrUnknownAsset) {
			code = http.StatusNotFound
		}
		writeJSON(w, code, map[string]string{"error": err.Error()})
		return
	}

	resp := historyResponse{ID: id, Prices: prices}
	if resp.Prices == nil {
		resp.Prices = []float64{}
	}
	if high, low, err := calculator.Range(prices, ChartWindow); err == nil {
		resp.High, resp.Low = high, low
		resp.Position, _ = calculator.Position(prices[len(prices)-1], high, low)
	}
	if recent, err := s.recorder.RecentSignals(id, ChartWindow); err != nil {
		log.Printf("[WARN] recent signals for %s: %v", id, err)
	} else {
		resp.Signals = recent
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, lastErr := s.source.Status()
	resp := map[string]interface{}{
		"status":     status,
		"uptime":     time.Since(s.started).Round(time.Second).String(),
		"ws_clients": s.hub.Clients(),
	}
	if lastErr != nil {
		resp["last_error"] = lastErr.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}
