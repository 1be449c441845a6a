// Package api exposes a game over HTTP and streams its events over websockets.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/sourcegraph/conc"

	brokerservice "github.com/zappabad/optionsim/internal/broker/service"
	"github.com/zappabad/optionsim/internal/game"
	marketview "github.com/zappabad/optionsim/internal/market/view"
	"github.com/zappabad/optionsim/internal/metrics"
	"github.com/zappabad/optionsim/internal/portfolio"
)

// Server adapts a Game to HTTP. Exercises are two calls: the first files the
// quote with the desk and returns a request ID, the second decides it.
type Server struct {
	cfg    Config
	game   *game.Game
	desk   *brokerservice.BrokerService
	hub    *WSHub
	logger *slog.Logger

	closed chan struct{}
	wg     conc.WaitGroup
}

// NewServer creates a Server and starts forwarding the game's events to
// websocket clients. It becomes the only reader of the game's event channels.
func NewServer(g *game.Game, cfg Config, logger *slog.Logger) *Server {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "api")

	s := &Server{
		cfg:    cfg,
		game:   g,
		desk:   brokerservice.NewBrokerService(brokerservice.Config{RequestCapacity: cfg.RequestCapacity}),
		hub:    NewWSHub(cfg.ClientBuffer, logger),
		logger: logger,
		closed: make(chan struct{}),
	}
	s.wg.Go(s.forward)
	return s
}

func (s *Server) forward() {
	ticker := time.NewTicker(s.cfg.StatePushInterval)
	defer ticker.Stop()

	marketEvents := s.game.Market.Events()
	newsEvents := s.game.News.Events()
	for {
		select {
		case <-s.closed:
			return
		case ev, ok := <-marketEvents:
			if !ok {
				marketEvents = nil
				continue
			}
			kind := "tick"
			if ev.Kind == marketview.EventKindShock {
				kind = "shock"
			}
			s.hub.Broadcast(wsMessage{Type: kind, Moves: toMovesDTO(ev.Moves)})
		case ev, ok := <-newsEvents:
			if !ok {
				newsEvents = nil
				continue
			}
			item := toNewsDTO(ev.Item)
			s.hub.Broadcast(wsMessage{Type: "news", News: &item})
		case <-ticker.C:
			if s.hub.Clients() > 0 {
				s.hub.Broadcast(wsMessage{Type: "state", State: toStateDTO(s.game.State())})
			}
		}
	}
}

// Routes returns the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "optionsim"})
	})
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/ws", s.handleWS)

		r.Get("/state", s.handleState)
		r.Get("/result", s.handleResult)
		r.Post("/start", s.handleStart)
		r.Post("/reset", s.handleReset)

		r.Get("/assets/{name}/quote", s.handleQuote)
		r.Post("/buy", s.handleBuy)

		r.Post("/holdings/{index}/exercise", s.handlePropose)
		r.Get("/exercises", s.handleListExercises)
		r.Get("/activity", s.handleActivity)
		r.Post("/exercises/{requestID}", s.handleDecide)
	})
	return r
}

// HTTPServer returns an http.Server for addr serving Routes.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      s.Routes(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}
}

// Close stops event forwarding and disconnects websocket clients.
func (s *Server) Close() {
	select {
	case <-s.closed:
		return
	default:
		close(s.closed)
	}
	s.wg.Wait()
	s.hub.Close()
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	s.hub.Serve(w, r, wsMessage{Type: "state", State: toStateDTO(s.game.State())})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toStateDTO(s.game.State()))
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	st := s.game.State()
	if st.Result == nil {
		writeError(w, "no result yet", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, toResultDTO(st.Result, st.Holdings))
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if !decode(w, r, &req) {
		return
	}
	d, err := game.ParseDifficulty(req.Difficulty)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.game.Start(d); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStateDTO(s.game.State()))
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.game.Reset(); err != nil {
		s.fail(w, err)
		return
	}
	s.desk.Reset()
	writeJSON(w, http.StatusOK, toStateDTO(s.game.State()))
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	qty := int64(1)
	if raw := r.URL.Query().Get("qty"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, "qty must be an integer", http.StatusBadRequest)
			return
		}
		qty = v
	}
	q, err := s.game.QuoteOption(chi.URLParam(r, "name"), qty)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quoteDTO{
		Asset:      q.Asset,
		Quantity:   q.Quantity,
		Spot:       q.Spot,
		Strike:     q.Strike,
		Premium:    q.Premium,
		Total:      q.Total,
		Affordable: q.Affordable,
	})
}

func (s *Server) handleBuy(w http.ResponseWriter, r *http.Request) {
	var req buyRequest
	if !decode(w, r, &req) {
		return
	}
	h, err := s.game.BuyOption(req.Asset, req.Quantity)
	if err != nil {
		s.fail(w, err)
		return
	}
	index, _ := s.game.Ledger.IndexOf(h.ID)
	spot, _ := s.game.Market.Price(h.Asset)
	writeJSON(w, http.StatusCreated, toHoldingDTO(h, index, spot))
}

func (s *Server) handlePropose(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, "index must be an integer", http.StatusBadRequest)
		return
	}
	q, err := s.game.ProposeExercise(index)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRequestDTO(s.desk.Submit(q)))
}

func (s *Server) handleListExercises(w http.ResponseWriter, r *http.Request) {
	reqs := s.desk.PendingRequests()
	out := make([]exerciseRequestDTO, len(reqs))
	for i, req := range reqs {
		out[i] = toRequestDTO(req)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	limit := portfolio.DefaultTapeSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			writeError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = v
	}
	writeJSON(w, http.StatusOK, toActivityDTO(s.game.Ledger.Activity(limit)))
}

func (s *Server) handleDecide(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "requestID"))
	if err != nil {
		writeError(w, "invalid request id", http.StatusBadRequest)
		return
	}
	var body decideRequest
	if !decode(w, r, &body) {
		return
	}

	req, err := s.desk.Decide(id, body.Accepted)
	if err != nil {
		s.fail(w, err)
		return
	}
	st, err := s.game.CommitExercise(req.Quote, body.Accepted)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settlementDTO{
		RequestID: req.ID,
		Accepted:  st.Accepted,
		Capital:   st.Capital,
		Net:       req.Quote.Net,
	})
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	writeError(w, err.Error(), status)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, portfolio.ErrInvalidQuantity):
		return http.StatusBadRequest
	case errors.Is(err, game.ErrUnknownAsset),
		errors.Is(err, portfolio.ErrUnknownHolding),
		errors.Is(err, brokerservice.ErrUnknownRequest):
		return http.StatusNotFound
	case errors.Is(err, game.ErrWrongPhase),
		errors.Is(err, portfolio.ErrStaleHolding),
		errors.Is(err, portfolio.ErrQuoteMismatch),
		errors.Is(err, portfolio.ErrStaleQuote),
		errors.Is(err, brokerservice.ErrRequestProcessed):
		return http.StatusConflict
	case errors.Is(err, portfolio.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity
	case errors.Is(err, game.ErrClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}
