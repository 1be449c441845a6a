package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zappabad/optionsim/internal/game"
	"github.com/zappabad/optionsim/internal/market"
	marketservice "github.com/zappabad/optionsim/internal/market/service"
	"github.com/zappabad/optionsim/internal/news"
	"github.com/zappabad/optionsim/internal/portfolio"
	"github.com/zappabad/optionsim/internal/schedule"
)

type stepRand struct{ f float64 }

func (r *stepRand) Float64() float64 { return r.f }
func (r *stepRand) Intn(int) int     { return 0 }

type testEnv struct {
	game  *game.Game
	sched *schedule.ManualScheduler
	rng   *stepRand
	srv   *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := game.DefaultConfig()
	cfg.Seed = 1
	cfg.Catalog = []market.Asset{
		{Name: "Butcher Co", Price: 50_000, Volatility: 0.4, Events: []market.Category{market.CategoryEconomy}},
	}
	cfg.Templates = []news.Template{
		{Category: market.CategoryEconomy, Message: "GDP jumps", PriceImpact: news.FixedImpact(0.2)},
	}
	cfg.MarketConfig = marketservice.Config{PriceSwing: 1e-9, DropMarketEvents: true}

	sched := schedule.NewManualScheduler(time.Unix(1_700_000_000, 0))
	g := game.NewGame(cfg, sched, logger)
	rng := &stepRand{f: 0.5}
	g.SetRand(rng)

	s := NewServer(g, Config{StatePushInterval: time.Hour}, logger)
	srv := httptest.NewServer(s.Routes())
	t.Cleanup(func() {
		srv.Close()
		s.Close()
		g.Close()
	})
	return &testEnv{game: g, sched: sched, rng: rng, srv: srv}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, out any) int {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func (e *testEnv) startActive(t *testing.T) {
	t.Helper()
	if code := e.do(t, http.MethodPost, "/api/v1/start", startRequest{Difficulty: "medium"}, nil); code != http.StatusOK {
		t.Fatalf("expected 200 from start, got %d", code)
	}
	e.sched.Advance(3 * time.Second)
}

func TestHealthAndMetrics(t *testing.T) {
	env := newTestEnv(t)

	var health map[string]string
	if code := env.do(t, http.MethodGet, "/health", nil, &health); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if health["status"] != "ok" {
		t.Errorf("expected ok, got %v", health)
	}

	resp, err := http.Get(env.srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "optionsim_") {
		t.Error("expected optionsim metrics in exposition")
	}
}

func TestStateAndQuote(t *testing.T) {
	env := newTestEnv(t)

	var st stateDTO
	if code := env.do(t, http.MethodGet, "/api/v1/state", nil, &st); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if st.Phase != "start" || st.Capital != portfolio.DefaultCapital || len(st.Assets) != 1 {
		t.Fatalf("unexpected state %+v", st)
	}

	var q quoteDTO
	if code := env.do(t, http.MethodGet, "/api/v1/assets/Butcher%20Co/quote?qty=2", nil, &q); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if q.Strike != 55_000 || q.Total != 2*q.Premium || !q.Affordable {
		t.Errorf("unexpected quote %+v", q)
	}

	if code := env.do(t, http.MethodGet, "/api/v1/assets/Nope/quote", nil, nil); code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown asset, got %d", code)
	}
	if code := env.do(t, http.MethodGet, "/api/v1/assets/Butcher%20Co/quote?qty=x", nil, nil); code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad qty, got %d", code)
	}
}

func TestCommandErrorsMapToStatus(t *testing.T) {
	env := newTestEnv(t)

	if code := env.do(t, http.MethodPost, "/api/v1/buy", buyRequest{Asset: "Butcher Co", Quantity: 1}, nil); code != http.StatusConflict {
		t.Errorf("expected 409 before start, got %d", code)
	}
	if code := env.do(t, http.MethodPost, "/api/v1/start", startRequest{Difficulty: "extreme"}, nil); code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad difficulty, got %d", code)
	}

	env.startActive(t)

	tests := []struct {
		name string
		body buyRequest
		want int
	}{
		{"unknown asset", buyRequest{Asset: "Nope", Quantity: 1}, http.StatusNotFound},
		{"zero quantity", buyRequest{Asset: "Butcher Co", Quantity: 0}, http.StatusBadRequest},
		{"too expensive", buyRequest{Asset: "Butcher Co", Quantity: 1_000_000}, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		if code := env.do(t, http.MethodPost, "/api/v1/buy", tt.body, nil); code != tt.want {
			t.Errorf("%s: expected %d, got %d", tt.name, tt.want, code)
		}
	}

	if code := env.do(t, http.MethodPost, "/api/v1/holdings/3/exercise", nil, nil); code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown holding, got %d", code)
	}
	if code := env.do(t, http.MethodPost, "/api/v1/exercises/not-a-uuid", decideRequest{}, nil); code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad request id, got %d", code)
	}

	req, _ := http.NewRequest(http.MethodPost, env.srv.URL+"/api/v1/buy", strings.NewReader("{"))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed body, got %d", resp.StatusCode)
	}
}

func TestBuyProposeDecide(t *testing.T) {
	env := newTestEnv(t)
	env.startActive(t)

	var h holdingDTO
	if code := env.do(t, http.MethodPost, "/api/v1/buy", buyRequest{Asset: "Butcher Co", Quantity: 2}, &h); code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", code)
	}
	if h.Index != 0 || h.Strike != 55_000 || h.Executed {
		t.Fatalf("unexpected holding %+v", h)
	}
	afterBuy := portfolio.DefaultCapital - h.TotalCost

	// The first news tick lifts the price 20% to 60,000.
	env.sched.Advance(5 * time.Second)
	env.rng.f = 0.9

	var req exerciseRequestDTO
	if code := env.do(t, http.MethodPost, "/api/v1/holdings/0/exercise", nil, &req); code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", code)
	}
	if req.Quote.Gross != 10_000 || req.Processed {
		t.Fatalf("unexpected request %+v", req)
	}

	var pending []exerciseRequestDTO
	env.do(t, http.MethodGet, "/api/v1/exercises", nil, &pending)
	if len(pending) != 1 || pending[0].RequestID != req.RequestID {
		t.Fatalf("expected the request pending, got %+v", pending)
	}

	path := "/api/v1/exercises/" + req.RequestID.String()
	var st settlementDTO
	if code := env.do(t, http.MethodPost, path, decideRequest{Accepted: true}, &st); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if !st.Accepted || st.Capital != afterBuy+10_000 {
		t.Errorf("unexpected settlement %+v", st)
	}
	if code := env.do(t, http.MethodPost, path, decideRequest{Accepted: true}, nil); code != http.StatusConflict {
		t.Errorf("expected 409 deciding twice, got %d", code)
	}

	// A fresh proposal on an executed holding is stale.
	if code := env.do(t, http.MethodPost, "/api/v1/holdings/0/exercise", nil, nil); code != http.StatusConflict {
		t.Errorf("expected 409 for executed holding, got %d", code)
	}
}

func TestBuyIndexAndStaleDecision(t *testing.T) {
	env := newTestEnv(t)
	env.startActive(t)

	for want := 0; want < 2; want++ {
		var h holdingDTO
		if code := env.do(t, http.MethodPost, "/api/v1/buy", buyRequest{Asset: "Butcher Co", Quantity: 1}, &h); code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", code)
		}
		if h.Index != want {
			t.Errorf("expected index %d, got %d", want, h.Index)
		}
	}
	before := env.game.Ledger.Capital()

	var req exerciseRequestDTO
	env.do(t, http.MethodPost, "/api/v1/holdings/0/exercise", nil, &req)
	env.game.Market.ApplyShock(market.CategoryEconomy, -0.5, 0)

	path := "/api/v1/exercises/" + req.RequestID.String()
	if code := env.do(t, http.MethodPost, path, decideRequest{Accepted: true}, nil); code != http.StatusConflict {
		t.Fatalf("expected 409 for a moved spot, got %d", code)
	}
	if env.game.Ledger.Capital() != before || env.game.Ledger.Holdings()[0].Executed {
		t.Error("stale decision changed the ledger")
	}
}

func TestDeclineLeavesHoldingOpen(t *testing.T) {
	env := newTestEnv(t)
	env.startActive(t)
	env.do(t, http.MethodPost, "/api/v1/buy", buyRequest{Asset: "Butcher Co", Quantity: 1}, nil)
	before := env.game.Ledger.Capital()

	var req exerciseRequestDTO
	env.do(t, http.MethodPost, "/api/v1/holdings/0/exercise", nil, &req)
	var st settlementDTO
	if code := env.do(t, http.MethodPost, "/api/v1/exercises/"+req.RequestID.String(), decideRequest{Accepted: false}, &st); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if st.Accepted || st.Capital != before {
		t.Errorf("decline changed the ledger: %+v", st)
	}
	if hs := env.game.Ledger.Holdings(); hs[0].Executed {
		t.Error("declined holding marked executed")
	}

	var activity []activityDTO
	if code := env.do(t, http.MethodGet, "/api/v1/activity", nil, &activity); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if len(activity) != 2 || activity[0].Kind != "buy" || activity[1].Kind != "decline" {
		t.Fatalf("unexpected activity %+v", activity)
	}
	if activity[1].Amount != 0 || activity[1].Capital != before {
		t.Errorf("unexpected decline entry %+v", activity[1])
	}
	if code := env.do(t, http.MethodGet, "/api/v1/activity?limit=0", nil, nil); code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad limit, got %d", code)
	}
}

func TestResultAndReset(t *testing.T) {
	env := newTestEnv(t)
	if code := env.do(t, http.MethodGet, "/api/v1/result", nil, nil); code != http.StatusNotFound {
		t.Errorf("expected 404 before the game ends, got %d", code)
	}

	env.startActive(t)
	env.do(t, http.MethodPost, "/api/v1/buy", buyRequest{Asset: "Butcher Co", Quantity: 1}, nil)
	env.rng.f = 0.9
	env.sched.Advance(180 * time.Second)

	var res resultDTO
	if code := env.do(t, http.MethodGet, "/api/v1/result", nil, &res); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if res.Summary.Invested == 0 || res.Summary.Unexecuted != 1 || res.Verdict == "" {
		t.Errorf("unexpected result %+v", res)
	}

	var st stateDTO
	if code := env.do(t, http.MethodPost, "/api/v1/reset", nil, &st); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if st.Phase != "start" || len(st.Holdings) != 0 || st.Result != nil {
		t.Errorf("unexpected state after reset %+v", st)
	}
}

func TestWebSocketStreamsHelloAndNews(t *testing.T) {
	env := newTestEnv(t)

	url := "ws" + strings.TrimPrefix(env.srv.URL, "http") + "/api/v1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var hello wsMessage
	if err := conn.ReadJSON(&hello); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hello.Type != "state" || hello.State == nil || hello.State.Phase != "start" {
		t.Fatalf("expected state hello, got %+v", hello)
	}

	env.startActive(t)
	env.sched.Advance(5 * time.Second)

	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("expected a news frame, got error: %v", err)
		}
		if msg.Type != "news" {
			continue
		}
		if msg.News == nil || msg.News.Message != "GDP jumps" || len(msg.News.Affected) != 1 {
			t.Errorf("unexpected news frame %+v", msg.News)
		}
		return
	}
}
