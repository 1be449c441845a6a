package runner

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/zappabad/optionsim/internal/portfolio"
	"github.com/zappabad/optionsim/internal/schedule"
	"github.com/zappabad/optionsim/internal/trader"
	"github.com/zappabad/optionsim/internal/trader/strategy"
)

// Executor carries out a strategy's intents. *game.Game satisfies it.
type Executor interface {
	BuyOption(asset string, qty int64) (portfolio.Holding, error)
	ProposeExercise(index int) (portfolio.ExerciseQuote, error)
	CommitExercise(q portfolio.ExerciseQuote, accepted bool) (portfolio.Settlement, error)
}

// Runner executes a trading strategy on a scheduler. Exercise intents are
// committed only when the quote recommends them.
type Runner struct {
	cfg      Config
	strategy strategy.Strategy
	mr       strategy.MarketReader
	pr       strategy.PortfolioReader
	exec     Executor
	sched    schedule.Scheduler
	handle   schedule.Handle

	events        chan trader.TraderEvent
	droppedEvents atomic.Int64

	emitMu    sync.RWMutex
	closed    chan struct{}
	closeOnce sync.Once
}

// NewRunner creates a Runner and registers its tick on sched.
func NewRunner(
	cfg Config,
	strat strategy.Strategy,
	mr strategy.MarketReader,
	pr strategy.PortfolioReader,
	exec Executor,
	sched schedule.Scheduler,
) *Runner {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultConfig().TickInterval
	}
	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = DefaultConfig().EventBuffer
	}

	r := &Runner{
		cfg:      cfg,
		strategy: strat,
		mr:       mr,
		pr:       pr,
		exec:     exec,
		sched:    sched,
		events:   make(chan trader.TraderEvent, cfg.EventBuffer),
		closed:   make(chan struct{}),
	}
	r.handle = sched.Every(cfg.TickInterval, r.tick)
	return r
}

func (r *Runner) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), r.cfg.TickInterval)
	defer cancel()

	now := r.sched.Now().UnixNano()
	for _, intent := range r.strategy.Step(ctx, now, r.mr, r.pr) {
		if ctx.Err() != nil {
			return
		}
		r.execute(now, intent)
	}
}

func (r *Runner) execute(now int64, intent trader.Intent) {
	ev := trader.TraderEvent{Time: now, Intent: intent}

	switch intent.Kind {
	case trader.IntentBuy:
		if _, err := r.exec.BuyOption(intent.Asset, intent.Quantity); err != nil {
			ev.Type, ev.Message = trader.TraderEventError, err.Error()
		} else {
			ev.Type = trader.TraderEventBought
		}
	case trader.IntentExercise:
		q, err := r.exec.ProposeExercise(intent.Index)
		if err == nil {
			_, err = r.exec.CommitExercise(q, q.Recommend)
		}
		switch {
		case err != nil:
			ev.Type, ev.Message = trader.TraderEventError, err.Error()
		case q.Recommend:
			ev.Type = trader.TraderEventExercised
		default:
			// Declines are the common case; keep them off the channel.
			return
		}
	}
	r.emitEvent(ev)
}

func (r *Runner) emitEvent(ev trader.TraderEvent) {
	r.emitMu.RLock()
	defer r.emitMu.RUnlock()

	select {
	case <-r.closed:
		return
	default:
	}

	if r.cfg.DropEvents {
		select {
		case r.events <- ev:
		default:
			r.droppedEvents.Add(1)
		}
		return
	}
	select {
	case r.events <- ev:
	case <-r.closed:
	}
}

// Events returns the trader events channel. It is closed by Close.
func (r *Runner) Events() <-chan trader.TraderEvent {
	return r.events
}

// DroppedEvents returns the count of dropped events.
func (r *Runner) DroppedEvents() int64 {
	return r.droppedEvents.Load()
}

// Close cancels the tick and closes the events channel.
func (r *Runner) Close() {
	r.closeOnce.Do(func() {
		r.handle.Cancel()
		close(r.closed)

		r.emitMu.Lock()
		close(r.events)
		r.emitMu.Unlock()
	})
}
