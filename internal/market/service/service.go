package service

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zappabad/optionsim/internal/market"
	marketview "github.com/zappabad/optionsim/internal/market/view"
)

var ErrUnknownAsset = errors.New("unknown asset")

// Rand is the randomness the price process consumes. *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
}

// MarketService owns the asset collection. Every read and write goes through
// its mutex, so routine ticks, shocks and valuation reads never interleave.
type MarketService struct {
	cfg     Config
	catalog []market.Asset

	mu     sync.RWMutex
	assets []market.Asset
	index  map[string]int
	mview  *marketview.MarketView

	externalEvents chan marketview.MarketEvent
	droppedEvents  atomic.Int64
	emitMu         sync.RWMutex

	closed    chan struct{}
	closeOnce sync.Once
}

// NewMarketService creates a MarketService seeded from catalog. The catalog is
// copied and reused by Reset.
func NewMarketService(catalog []market.Asset, cfg Config) *MarketService {
	if cfg.PriceSwing <= 0 {
		cfg.PriceSwing = DefaultConfig().PriceSwing
	}
	if cfg.MarketEventBuffer <= 0 {
		cfg.MarketEventBuffer = DefaultConfig().MarketEventBuffer
	}

	s := &MarketService{
		cfg:            cfg,
		catalog:        cloneAssets(catalog),
		externalEvents: make(chan marketview.MarketEvent, cfg.MarketEventBuffer),
		closed:         make(chan struct{}),
	}
	s.mview = marketview.NewMarketView(s.catalog)
	s.resetLocked()
	return s
}

func (s *MarketService) resetLocked() {
	s.assets = cloneAssets(s.catalog)
	s.index = make(map[string]int, len(s.assets))
	for i, a := range s.assets {
		s.index[a.Name] = i
	}
	s.mview.Reset(s.assets)
}

// Evolve runs one routine price tick: each asset's price is multiplied by an
// independent uniform draw from [1-swing/2, 1+swing/2], rounded, and floored at 1.
func (s *MarketService) Evolve(rng Rand) []market.PriceMove {
	s.mu.Lock()
	moves := make([]market.PriceMove, len(s.assets))
	for i := range s.assets {
		a := &s.assets[i]
		m := 1 + (rng.Float64()-0.5)*s.cfg.PriceSwing
		from := a.Price
		a.Price = market.ClampPrice(float64(a.Price) * m)
		moves[i] = market.PriceMove{Name: a.Name, From: from, To: a.Price}
	}
	moves = s.mview.Apply(moves)
	s.mu.Unlock()

	s.emit(marketview.MarketEvent{Kind: marketview.EventKindTick, Time: time.Now().UnixNano(), Moves: moves})
	return moves
}

// ApplyShock moves every asset tagged with category: price by the fractional
// impact and volatility by the additive volImpact, clamped to [0, 1].
// It returns the moves for the affected assets only.
func (s *MarketService) ApplyShock(category market.Category, impact, volImpact float64) []market.PriceMove {
	s.mu.Lock()
	var moves []market.PriceMove
	for i := range s.assets {
		a := &s.assets[i]
		if !a.Reacts(category) {
			continue
		}
		from := a.Price
		a.Price = market.ClampPrice(float64(a.Price) * (1 + impact))
		a.Volatility = market.ClampVolatility(a.Volatility + volImpact)
		moves = append(moves, market.PriceMove{
			Name:      a.Name,
			From:      from,
			To:        a.Price,
			Direction: market.DirectionOf(from, a.Price),
		})
	}
	s.mu.Unlock()

	if len(moves) > 0 {
		s.emit(marketview.MarketEvent{Kind: marketview.EventKindShock, Time: time.Now().UnixNano(), Moves: moves})
	}
	return moves
}

// Asset returns a copy of the named asset.
func (s *MarketService) Asset(name string) (market.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[name]
	if !ok {
		return market.Asset{}, ErrUnknownAsset
	}
	return s.assets[i].Clone(), nil
}

// Price returns the named asset's current spot price.
func (s *MarketService) Price(name string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[name]
	if !ok {
		return 0, ErrUnknownAsset
	}
	return s.assets[i].Price, nil
}

// Prices returns the current spot price of every asset keyed by name.
func (s *MarketService) Prices() map[string]int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]int64, len(s.assets))
	for _, a := range s.assets {
		out[a.Name] = a.Price
	}
	return out
}

// Assets returns a copy of the asset collection in catalog order.
func (s *MarketService) Assets() []market.Asset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAssets(s.assets)
}

// Snapshot returns the assets together with their last-tick direction tags.
func (s *MarketService) Snapshot() market.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return market.Snapshot{
		Assets:  cloneAssets(s.assets),
		Changes: s.mview.Changes(),
	}
}

// Reset replaces the asset collection with a fresh copy of the catalog.
func (s *MarketService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *MarketService) emit(ev marketview.MarketEvent) {
	s.emitMu.RLock()
	defer s.emitMu.RUnlock()

	select {
	case <-s.closed:
		return
	default:
	}

	if s.cfg.DropMarketEvents {
		select {
		case s.externalEvents <- ev:
		default:
			s.droppedEvents.Add(1)
		}
		return
	}
	select {
	case s.externalEvents <- ev:
	case <-s.closed:
	}
}

// Events returns the market events channel. It is closed by Close.
func (s *MarketService) Events() <-chan marketview.MarketEvent {
	return s.externalEvents
}

// DroppedEvents returns the count of dropped market events.
func (s *MarketService) DroppedEvents() int64 {
	return s.droppedEvents.Load()
}

// Close stops event delivery and closes the events channel. Reads and
// mutations keep working afterwards.
func (s *MarketService) Close() {
	s.closeOnce.Do(func() {
		close(s.closed)

		s.emitMu.Lock()
		close(s.externalEvents)
		s.emitMu.Unlock()
	})
}

func cloneAssets(in []market.Asset) []market.Asset {
	out := make([]market.Asset, len(in))
	for i, a := range in {
		out[i] = a.Clone()
	}
	return out
}
