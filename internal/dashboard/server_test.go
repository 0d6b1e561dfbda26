package dashboard

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"CoinSentinel/internal/metrics"
	"CoinSentinel/internal/model"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
)

type fakeSource struct {
	rows    []model.CoinView
	history map[string][]float64
	status  string
	err     error
}

func (f *fakeSource) Snapshot(sortMode, filterMode string) *model.Snapshot {
	rows := Filter(append([]model.CoinView(nil), f.rows...), filterMode)
	Sort(rows, sortMode)
	return &model.Snapshot{Coins: rows, Status: f.status}
}

func (f *fakeSource) Summary() model.Summary { return Summarize(f.rows) }

func (f *fakeSource) History(id string, n int) ([]float64, error) {
	h, ok := f.history[id]
	if !ok {
		return nil, ErrUnknownAsset
	}
	if len(h) > n {
		h = h[len(h)-n:]
	}
	return h, nil
}

func (f *fakeSource) Status() (string, error) { return f.status, f.err }

func newTestServer(t *testing.T) (*Server, *httptest.Server, *fakeSource) {
	t.Helper()
	prices := make([]float64, 40)
	for i := range prices {
		prices[i] = float64(100 + i)
	}
	src := &fakeSource{
		rows:    fixture(),
		history: map[string][]float64{"btc": prices, "eth": nil},
		status:  "ok",
	}
	reg := prometheus.NewRegistry()
	hub := NewHub(metrics.NewMetrics(reg))
	s := NewServer(":0", src, nil, hub, reg)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts, src
}

func getJSON(t *testing.T, url string, v interface{}) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func TestServer_Coins(t *testing.T) {
	_, ts, _ := newTestServer(t)
	var snap model.Snapshot
	if code := getJSON(t, ts.URL+"/api/coins?sort=volume&mode=buy", &snap); code != http.StatusOK {
		t.Fatalf("status %d", code)
	}
	if got := ids(snap.Coins); got != "btc,dot" {
		t.Errorf("coins = %s, want btc,dot", got)
	}
}

func TestServer_Summary(t *testing.T) {
	_, ts, _ := newTestServer(t)
	var sum model.Summary
	getJSON(t, ts.URL+"/api/summary", &sum)
	if sum.Buy != 2 || sum.TopMover == nil || sum.TopMover.Asset.ID != "xrp" {
		t.Errorf("unexpected summary: %+v", sum)
	}
}

func TestServer_History(t *testing.T) {
	_, ts, _ := newTestServer(t)

	var h historyResponse
	getJSON(t, ts.URL+"/api/history/btc", &h)
	if len(h.Prices) != ChartWindow || h.Prices[0] != 110 {
		t.Errorf("expected last %d prices starting at 110, got %d starting %v", ChartWindow, len(h.Prices), h.Prices[0])
	}
	if h.High != 139 || h.Low != 110 || h.Position != 1 {
		t.Errorf("unexpected range: high=%v low=%v pos=%v", h.High, h.Low, h.Position)
	}

	var empty historyResponse
	getJSON(t, ts.URL+"/api/history/eth", &empty)
	if empty.Prices == nil || len(empty.Prices) != 0 {
		t.Errorf("expected empty price list, got %v", empty.Prices)
	}

	if code := getJSON(t, ts.URL+"/api/history/dogecoin", nil); code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", code)
	}
}

func TestServer_StatusAndHealth(t *testing.T) {
	_, ts, src := newTestServer(t)
	src.status = "failed"
	src.err = errors.New("price fetch failed after 3 attempts")

	var st map[string]interface{}
	getJSON(t, ts.URL+"/api/status", &st)
	if st["status"] != "failed" || !strings.Contains(st["last_error"].(string), "3 attempts") {
		t.Errorf("unexpected status: %v", st)
	}
	if code := getJSON(t, ts.URL+"/healthz", nil); code != http.StatusOK {
		t.Errorf("healthz status %d", code)
	}

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("metrics status %d", resp.StatusCode)
	}
}

func TestHub_BroadcastToClients(t *testing.T) {
	s, ts, _ := newTestServer(t)

	if err := s.hub.Broadcast(TypeSnapshot, &model.Snapshot{Status: "ok", Received: 2}); err != nil {
		t.Fatal(err)
	}

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var env Envelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read initial: %v", err)
	}
	if env.Type != TypeSnapshot {
		t.Errorf("expected replayed snapshot, got %s", env.Type)
	}

	deadline := time.Now().Add(5 * time.Second)
	for s.hub.Clients() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	update := model.PriceUpdate{Source: "background", Quotes: map[string]model.Quote{"bitcoin": {Price: 1}}}
	if err := s.hub.Broadcast(TypeBackground, update); err != nil {
		t.Fatal(err)
	}
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read background: %v", err)
	}
	var got model.PriceUpdate
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatal(err)
	}
	if env.Type != TypeBackground || got.Quotes["bitcoin"].Price != 1 {
		t.Errorf("unexpected message: %s %+v", env.Type, got)
	}
}
