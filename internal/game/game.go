// Package game sequences a simulation through its phases and dispatches every
// player command against the market and the ledger.
package game

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/zappabad/optionsim/internal/market"
	marketservice "github.com/zappabad/optionsim/internal/market/service"
	"github.com/zappabad/optionsim/internal/metrics"
	"github.com/zappabad/optionsim/internal/news"
	newsservice "github.com/zappabad/optionsim/internal/news/service"
	"github.com/zappabad/optionsim/internal/portfolio"
	"github.com/zappabad/optionsim/internal/pricing"
	"github.com/zappabad/optionsim/internal/schedule"
	"github.com/zappabad/optionsim/internal/trader/strategy"
)

var (
	ErrWrongPhase   = errors.New("command not allowed in current phase")
	ErrUnknownAsset = marketservice.ErrUnknownAsset
	ErrClosed       = errors.New("game closed")
)

// Rand is the randomness the market and news processes consume.
// *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// Game owns all the game subsystems and the phase machine driving them.
//
// Every command and every scheduled callback runs under mu. Each phase
// transition bumps epoch and cancels the previous phase's tasks; a callback
// that wakes up with an old epoch returns without touching anything.
type Game struct {
	Market *marketservice.MarketService
	News   *newsservice.NewsService
	Ledger *portfolio.Ledger

	cfg    Config
	sched  schedule.Scheduler
	logger *slog.Logger

	mu         sync.Mutex
	rng        Rand
	phase      Phase
	difficulty Difficulty
	countdown  int
	remaining  int
	epoch      uint64
	tasks      schedule.Group
	result     *Result
	closed     bool
}

// NewGame creates a Game in PhaseStart. Timers run on sched.
func NewGame(cfg Config, sched schedule.Scheduler, logger *slog.Logger) *Game {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.NewsConfig.Now == nil {
		cfg.NewsConfig.Now = sched.Now
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	g := &Game{
		Market: marketservice.NewMarketService(cfg.Catalog, cfg.MarketConfig),
		News:   newsservice.NewNewsService(cfg.Templates, cfg.NewsConfig, logger),
		Ledger: portfolio.NewLedger(cfg.StartingCapital),
		cfg:    cfg,
		sched:  sched,
		logger: logger.With("component", "game"),
		rng:    rand.New(rand.NewSource(seed)),
	}
	g.resetLocked()
	return g
}

// SetRand replaces the random source. Intended for tests and replays.
func (g *Game) SetRand(r Rand) {
	g.mu.Lock()
	g.rng = r
	g.mu.Unlock()
}

// Start leaves PhaseStart and begins the countdown at difficulty d.
func (g *Game) Start(d Difficulty) error {
	if !d.Valid() {
		return fmt.Errorf("start: invalid difficulty %d", d)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.requireLocked("start", PhaseStart); err != nil {
		return err
	}
	g.difficulty = d
	g.countdown = g.cfg.Countdown
	e := g.transitionLocked(PhaseCountdown)
	g.tasks.Add(g.sched.Every(time.Second, g.guard(e, g.countdownTickLocked)))
	return nil
}

// Reset cancels every task and restores the start-of-game state. It is
// allowed from any phase.
func (g *Game) Reset() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return ErrClosed
	}
	from := g.phase
	g.resetLocked()
	g.logger.Info("game reset", "from", from)
	return nil
}

func (g *Game) resetLocked() {
	g.epoch++
	g.tasks.CancelAll()

	g.Market.Reset()
	g.News.Reset()
	g.Ledger.Reset()

	g.phase = PhaseStart
	g.difficulty = g.cfg.Difficulty
	g.countdown = g.cfg.Countdown
	g.remaining = g.cfg.Duration
	g.result = nil

	metrics.SetPhase(g.phase.String(), phaseNames())
	metrics.Capital.Set(float64(g.Ledger.Capital()))
}

// QuoteOption prices qty units of a call on asset at the current spot.
// It is read-only and allowed in any phase.
func (g *Game) QuoteOption(asset string, qty int64) (OptionQuote, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	a, err := g.Market.Asset(asset)
	if err != nil {
		return OptionQuote{}, err
	}
	q := pricing.QuoteCall(a.Price, a.Volatility)
	total := portfolio.Cost(q, qty)
	return OptionQuote{
		Asset:      asset,
		Quantity:   qty,
		Quote:      q,
		Total:      total,
		Affordable: qty > 0 && total <= g.Ledger.Capital(),
	}, nil
}

// BuyOption buys qty calls on asset at the current spot.
func (g *Game) BuyOption(asset string, qty int64) (portfolio.Holding, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.requireLocked("buy", PhaseActive); err != nil {
		return portfolio.Holding{}, err
	}
	a, err := g.Market.Asset(asset)
	if err != nil {
		g.reject("buy", err)
		return portfolio.Holding{}, err
	}

	q := pricing.QuoteCall(a.Price, a.Volatility)
	h, err := g.Ledger.Buy(asset, q, qty)
	if err != nil {
		g.reject("buy", err)
		return portfolio.Holding{}, err
	}

	metrics.OptionsBought.WithLabelValues(asset).Add(float64(qty))
	metrics.PremiumPaid.Add(float64(h.TotalCost))
	metrics.Capital.Set(float64(g.Ledger.Capital()))
	g.logger.Info("option bought",
		"holding", h.ID, "asset", asset, "qty", qty,
		"premium", q.Premium, "strike", q.Strike, "spot", q.Spot)
	return h, nil
}

// ProposeExercise previews exercising the holding at index at the current
// spot. Nothing changes until CommitExercise.
func (g *Game) ProposeExercise(index int) (portfolio.ExerciseQuote, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.requireLocked("exercise", PhaseActive); err != nil {
		return portfolio.ExerciseQuote{}, err
	}
	h, err := g.Ledger.Holding(index)
	if err != nil {
		g.reject("exercise", err)
		return portfolio.ExerciseQuote{}, err
	}
	spot, err := g.Market.Price(h.Asset)
	if err != nil {
		return portfolio.ExerciseQuote{}, err
	}
	q, err := g.Ledger.ProposeExercise(index, spot)
	if err != nil {
		g.reject("exercise", err)
		return portfolio.ExerciseQuote{}, err
	}
	return q, nil
}

// CommitExercise settles or declines a quote from ProposeExercise. An
// accepted quote settles only while the asset still trades at the quoted
// spot; otherwise it fails with portfolio.ErrStaleQuote and the caller
// proposes again.
func (g *Game) CommitExercise(q portfolio.ExerciseQuote, accepted bool) (portfolio.Settlement, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.requireLocked("exercise", PhaseActive); err != nil {
		return portfolio.Settlement{}, err
	}
	if accepted {
		spot, err := g.Market.Price(q.Asset)
		if err != nil {
			g.reject("exercise", err)
			return portfolio.Settlement{}, err
		}
		if spot != q.Spot {
			err := fmt.Errorf("quoted at %d, now %d: %w", q.Spot, spot, portfolio.ErrStaleQuote)
			g.reject("exercise", err)
			return portfolio.Settlement{}, err
		}
	}
	st, err := g.Ledger.CommitExercise(q, accepted)
	if err != nil {
		g.reject("exercise", err)
		return portfolio.Settlement{}, err
	}

	outcome := "declined"
	if accepted {
		outcome = "accepted"
		if !q.Recommend {
			outcome = "accepted_against_advice"
		}
		metrics.Capital.Set(float64(st.Capital))
	}
	metrics.Exercises.WithLabelValues(outcome).Inc()
	g.logger.Info("exercise committed",
		"holding", q.HoldingID, "asset", q.Asset, "outcome", outcome,
		"spot", q.Spot, "strike", q.Strike, "net", q.Net)
	return st, nil
}

// State returns a snapshot for presentation.
func (g *Game) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()

	snap := g.Market.Snapshot()
	spots := make(map[string]int64, len(snap.Assets))
	assets := make([]AssetView, len(snap.Assets))
	for i, a := range snap.Assets {
		spots[a.Name] = a.Price
		assets[i] = AssetView{
			Asset:     a,
			Direction: snap.Changes[a.Name],
			Quote:     pricing.QuoteCall(a.Price, a.Volatility),
		}
	}

	holdings := g.Ledger.Holdings()
	views := make([]HoldingView, len(holdings))
	for i, h := range holdings {
		spot := spots[h.Asset]
		views[i] = HoldingView{Holding: h, Index: i, Spot: spot, Moneyness: MoneynessOf(spot, h.Strike)}
	}

	st := State{
		Phase:      g.phase,
		Difficulty: g.difficulty,
		Countdown:  g.countdown,
		Remaining:  g.remaining,
		Capital:    g.Ledger.Capital(),
		Assets:     assets,
		Holdings:   views,
		Log:        g.News.Log(),
		Flash:      g.News.Flashing(),
		Result:     g.result,
	}
	if g.phase == PhaseActive {
		st.Now = g.sched.Now()
	}
	return st
}

// Phase returns the current phase.
func (g *Game) Phase() Phase {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.phase
}

// Result returns the evaluation made on entering PhaseResult, or nil.
func (g *Game) Result() *Result {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.result
}

// Close stops every task and shuts the subsystems down. It must not be called
// from a scheduled callback.
func (g *Game) Close() {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	g.closed = true
	g.epoch++
	g.tasks.CancelAll()
	g.mu.Unlock()

	g.sched.Close()
	g.News.Close()
	g.Market.Close()
}

func (g *Game) requireLocked(op string, want Phase) error {
	if g.closed {
		return ErrClosed
	}
	if g.phase != want {
		g.reject(op, ErrWrongPhase)
		return fmt.Errorf("%s in %s: %w", op, g.phase, ErrWrongPhase)
	}
	return nil
}

func (g *Game) reject(op string, err error) {
	reason := "other"
	switch {
	case errors.Is(err, ErrWrongPhase):
		reason = "wrong_phase"
	case errors.Is(err, portfolio.ErrInsufficientFunds):
		reason = "insufficient_funds"
	case errors.Is(err, portfolio.ErrInvalidQuantity):
		reason = "invalid_quantity"
	case errors.Is(err, portfolio.ErrStaleHolding):
		reason = "stale_holding"
	case errors.Is(err, portfolio.ErrUnknownHolding), errors.Is(err, ErrUnknownAsset):
		reason = "unknown"
	case errors.Is(err, portfolio.ErrQuoteMismatch):
		reason = "quote_mismatch"
	case errors.Is(err, portfolio.ErrStaleQuote):
		reason = "stale_quote"
	}
	metrics.Rejections.WithLabelValues(reason).Inc()
	g.logger.Info("command rejected", "op", op, "reason", reason, "err", err)
}

// transitionLocked moves to phase p, cancelling the old phase's tasks.
// It returns the new epoch for the tasks p registers.
func (g *Game) transitionLocked(p Phase) uint64 {
	from := g.phase
	g.epoch++
	g.tasks.CancelAll()
	g.phase = p

	metrics.SetPhase(p.String(), phaseNames())
	g.logger.Info("phase changed", "from", from, "to", p, "difficulty", g.difficulty)
	return g.epoch
}

// guard wraps fn so it runs under mu only while epoch e is current.
func (g *Game) guard(e uint64, fn func()) schedule.Task {
	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if g.closed || g.epoch != e {
			return
		}
		fn()
	}
}

func (g *Game) countdownTickLocked() {
	g.countdown--
	if g.countdown > 0 {
		return
	}
	g.countdown = 0
	g.remaining = g.cfg.Duration

	e := g.transitionLocked(PhaseActive)
	g.tasks.Add(g.sched.Every(time.Second, g.guard(e, g.clockTickLocked)))
	g.tasks.Add(g.sched.Every(g.difficulty.PriceInterval(), g.guard(e, g.priceTickLocked)))
	g.tasks.Add(g.sched.Every(g.difficulty.EventInterval(), g.guard(e, g.eventTickLocked)))
}

func (g *Game) clockTickLocked() {
	g.remaining--
	if g.remaining > 0 {
		return
	}
	g.remaining = 0
	g.transitionLocked(PhaseResult)
	g.evaluateLocked()
}

func (g *Game) priceTickLocked() {
	g.Market.Evolve(g.rng)
	metrics.PriceTicks.Inc()
}

func (g *Game) eventTickLocked() {
	sel, ok := g.News.Select(g.rng)
	if !ok {
		metrics.EmptyEventTicks.Inc()
		g.logger.Debug("no news matched polarity")
		return
	}

	tpl := sel.Template
	moves := g.Market.ApplyShock(tpl.Category, sel.Impact, tpl.VolatilityImpact)
	affected := make([]string, len(moves))
	for i, mv := range moves {
		affected[i] = mv.Name
	}

	item := g.News.Publish(news.Item{
		Category:         tpl.Category,
		Message:          tpl.Message,
		Impact:           sel.Impact,
		VolatilityImpact: tpl.VolatilityImpact,
		Affected:         affected,
	})

	metrics.NewsShocks.WithLabelValues(string(tpl.Category), sel.Polarity.String()).Inc()
	g.logger.Info("news shock applied",
		"item", item.ID, "category", tpl.Category, "impact", sel.Impact,
		"vol_impact", tpl.VolatilityImpact, "affected", len(affected))
}

func (g *Game) evaluateLocked() {
	summary := g.Ledger.Summary()
	prices := g.Market.Prices()
	report := strategy.Evaluate(strategy.Moneyness{}, g.Ledger.Holdings(), prices, summary.Realized)

	g.result = &Result{Summary: summary, Report: report, FinalPrices: prices}
	g.logger.Info("result evaluated",
		"invested", summary.Invested, "player_profit", summary.Realized,
		"ai_profit", report.AIProfit, "player_roi", report.PlayerROI.StringFixed(2),
		"ai_roi", report.AIROI.StringFixed(2), "verdict", report.Verdict)
}

// Assets lists the current assets. It lets a Game serve as a strategy.MarketReader.
func (g *Game) Assets() []market.Asset {
	return g.Market.Assets()
}
