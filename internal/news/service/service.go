package service

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zappabad/optionsim/internal/news"
	newsview "github.com/zappabad/optionsim/internal/news/view"
)

// Rand is the randomness selection consumes. *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// Cue is a side effect triggered for each published item, such as a sound.
// Its failures are logged and never reach the caller of Publish.
type Cue interface {
	Play(item news.Item) error
}

// CueFunc adapts a function to Cue.
type CueFunc func(item news.Item) error

func (f CueFunc) Play(item news.Item) error { return f(item) }

// Selection is a template chosen for one event tick with its impact resolved.
type Selection struct {
	Template news.Template
	Impact   float64
	Polarity news.Polarity
}

// NewsService selects and publishes market-moving news.
type NewsService struct {
	cfg       Config
	templates []news.Template
	view      *newsview.NewsView
	logger    *slog.Logger

	cueMu sync.RWMutex
	cue   Cue

	idGen      atomic.Int64
	flashUntil atomic.Int64

	externalEvents chan newsview.NewsEvent
	droppedEvents  atomic.Int64
	emitMu         sync.RWMutex

	closed    chan struct{}
	closeOnce sync.Once
}

// NewNewsService creates a NewsService drawing from templates.
func NewNewsService(templates []news.Template, cfg Config, logger *slog.Logger) *NewsService {
	def := DefaultConfig()
	if cfg.LogSize <= 0 {
		cfg.LogSize = def.LogSize
	}
	if cfg.PositiveOdds <= 0 || cfg.PositiveOdds > 1 {
		cfg.PositiveOdds = def.PositiveOdds
	}
	if cfg.FlashDuration <= 0 {
		cfg.FlashDuration = def.FlashDuration
	}
	if cfg.ExternalEventBuffer <= 0 {
		cfg.ExternalEventBuffer = def.ExternalEventBuffer
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &NewsService{
		cfg:            cfg,
		templates:      append([]news.Template(nil), templates...),
		view:           newsview.NewNewsView(cfg.LogSize),
		logger:         logger.With("component", "news"),
		externalEvents: make(chan newsview.NewsEvent, cfg.ExternalEventBuffer),
		closed:         make(chan struct{}),
	}
}

// SetCue installs the side effect run on every publish. Nil disables it.
func (s *NewsService) SetCue(c Cue) {
	s.cueMu.Lock()
	s.cue = c
	s.cueMu.Unlock()
}

// Select draws a polarity (positive with PositiveOdds), resolves every
// template's impact once, and picks uniformly among the templates whose
// resolved impact has that polarity. ok is false when none match.
func (s *NewsService) Select(rng Rand) (sel Selection, ok bool) {
	polarity := news.PolarityNegative
	if rng.Float64() < s.cfg.PositiveOdds {
		polarity = news.PolarityPositive
	}

	var candidates []Selection
	for _, tpl := range s.templates {
		impact := tpl.PriceImpact.Resolve(rng)
		if news.PolarityOf(impact) != polarity {
			continue
		}
		candidates = append(candidates, Selection{Template: tpl, Impact: impact, Polarity: polarity})
	}
	if len(candidates) == 0 {
		return Selection{}, false
	}
	return candidates[rng.Intn(len(candidates))], true
}

// Publish records item in the event log, raises the flash and plays the cue.
// ID and Time are assigned when missing. It returns the stored item.
func (s *NewsService) Publish(item news.Item) news.Item {
	now := s.cfg.Now()
	if item.ID == 0 {
		item.ID = news.ItemID(s.idGen.Add(1))
	}
	if item.Time == 0 {
		item.Time = now.UnixNano()
	}
	item.Affected = append([]string(nil), item.Affected...)

	ev := newsview.NewsEvent{Item: item}
	s.view.Apply(ev)
	s.flashUntil.Store(now.Add(s.cfg.FlashDuration).UnixNano())

	if err := s.playCue(item); err != nil {
		s.logger.Warn("news cue failed", "item", item.ID, "err", err)
	}
	s.emit(ev)
	return item
}

func (s *NewsService) playCue(item news.Item) (err error) {
	s.cueMu.RLock()
	c := s.cue
	s.cueMu.RUnlock()
	if c == nil {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cue panicked: %v", r)
		}
	}()
	return c.Play(item)
}

func (s *NewsService) emit(ev newsview.NewsEvent) {
	s.emitMu.RLock()
	defer s.emitMu.RUnlock()

	select {
	case <-s.closed:
		return
	default:
	}

	if s.cfg.DropExternalEvents {
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

// Flashing reports whether the last publish happened within FlashDuration.
func (s *NewsService) Flashing() bool {
	return s.cfg.Now().UnixNano() < s.flashUntil.Load()
}

// Latest returns the last n news items, oldest first.
func (s *NewsService) Latest(n int) []news.Item {
	return s.view.Latest(n)
}

// Log returns the retained event log, newest first.
func (s *NewsService) Log() []news.Item {
	return s.view.Recent()
}

// Reset clears the event log and the flash.
func (s *NewsService) Reset() {
	s.view.Reset()
	s.flashUntil.Store(0)
}

// Events returns the external events channel for subscribers. It is closed by Close.
func (s *NewsService) Events() <-chan newsview.NewsEvent {
	return s.externalEvents
}

// DroppedEvents returns the count of dropped external events.
func (s *NewsService) DroppedEvents() int64 {
	return s.droppedEvents.Load()
}

// Close stops event delivery and closes the events channel.
func (s *NewsService) Close() {
	s.closeOnce.Do(func() {
		close(s.closed)

		s.emitMu.Lock()
		close(s.externalEvents)
		s.emitMu.Unlock()
	})
}
