package tui

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zappabad/optionsim/internal/game"
	"github.com/zappabad/optionsim/internal/news"
	"github.com/zappabad/optionsim/internal/portfolio"
	"github.com/zappabad/optionsim/internal/schedule"
	"github.com/zappabad/optionsim/tui/panels"
)

func newTestModel(t *testing.T) (*Model, *game.Game, *schedule.ManualScheduler) {
	t.Helper()
	cfg := game.DefaultConfig()
	cfg.Seed = 3
	sched := schedule.NewManualScheduler(time.Unix(1_700_000_000, 0))
	g := game.NewGame(cfg, sched, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(g.Close)

	m := NewModel(g)
	m.Update(tea.WindowSizeMsg{Width: 160, Height: 48})
	return m, g, sched
}

func press(m *Model, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		_, cmd = m.Update(msg)
	}
	return cmd
}

func TestStartScreenPicksDifficulty(t *testing.T) {
	m, g, sched := newTestModel(t)

	if !strings.Contains(m.View(), "Option Trading Simulator") {
		t.Fatal("expected start screen")
	}
	press(m, "l", "l", "l", "h")
	if m.difficulty != game.DifficultyMedium {
		t.Fatalf("expected medium, got %s", m.difficulty)
	}
	press(m, "1")
	if m.difficulty != game.DifficultyHigh {
		t.Fatalf("expected high, got %s", m.difficulty)
	}

	press(m, "enter")
	if g.Phase() != game.PhaseCountdown {
		t.Fatalf("expected countdown, got %s", g.Phase())
	}
	if !strings.Contains(m.View(), "Trading opens in 3") {
		t.Error("expected countdown banner")
	}

	sched.Advance(3 * time.Second)
	m.Update(tickMsg{})
	if m.state.Phase != game.PhaseActive || m.state.Difficulty != game.DifficultyHigh {
		t.Fatalf("expected active high game, got %s %s", m.state.Phase, m.state.Difficulty)
	}
	view := m.View()
	for _, want := range []string{"Market", "Holdings", "Buy Option", "News", "03:00"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q on the board", want)
		}
	}
}

func TestBuyAndExerciseFlow(t *testing.T) {
	m, g, sched := newTestModel(t)
	press(m, "enter")
	sched.Advance(3 * time.Second)
	m.Update(tickMsg{})

	// Market panel: pick the first asset and jump to the order form.
	press(m, "b")
	if m.focusedPanel != FocusOrderInput {
		t.Fatalf("expected order input focus, got %d", m.focusedPanel)
	}
	press(m, "enter", "2")
	m.Update(tickMsg{})
	asset, qty, ok := m.orderInputPanel.Pending()
	if !ok || qty != 2 || asset != g.State().Assets[0].Name {
		t.Fatalf("unexpected pending order %q %d %v", asset, qty, ok)
	}

	cmd := press(m, "enter", "enter")
	if cmd == nil {
		t.Fatal("expected submit command")
	}
	// Batch wraps the panel command; deliver the buy directly.
	m.Update(panels.BuySubmitMsg{Asset: asset, Quantity: qty})
	if len(g.Ledger.Holdings()) != 1 {
		t.Fatalf("expected one holding, got %d", len(g.Ledger.Holdings()))
	}
	if !strings.Contains(m.statusMsg, "Bought 2") {
		t.Errorf("unexpected status %q", m.statusMsg)
	}

	m.Update(panels.ExerciseRequestMsg{Index: 0})
	if !m.dialog.Active() {
		t.Fatal("expected exercise dialog")
	}
	if !strings.Contains(m.View(), "Exercise #1") {
		t.Error("expected dialog on screen")
	}

	before := g.Ledger.Capital()
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	if cmd == nil {
		t.Fatal("expected decision command")
	}
	m.Update(cmd())
	if m.dialog.Active() {
		t.Error("expected dialog closed")
	}
	if g.Ledger.Capital() != before || g.Ledger.Holdings()[0].Executed {
		t.Error("declining changed the ledger")
	}
}

func TestExerciseRequotesWhenPriceMoves(t *testing.T) {
	m, g, sched := newTestModel(t)
	press(m, "enter")
	sched.Advance(3 * time.Second)
	m.Update(tickMsg{})

	name := g.State().Assets[0].Name
	m.Update(panels.BuySubmitMsg{Asset: name, Quantity: 1})
	m.Update(panels.ExerciseRequestMsg{Index: 0})
	if !m.dialog.Active() {
		t.Fatal("expected exercise dialog")
	}

	a, err := g.Market.Asset(name)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	g.Market.ApplyShock(a.Events[0], 0.5, 0)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	if cmd == nil {
		t.Fatal("expected decision command")
	}
	m.Update(cmd())
	if !m.dialog.Active() {
		t.Fatal("expected the dialog reopened with a fresh quote")
	}
	if !strings.Contains(m.statusMsg, "Price moved") {
		t.Errorf("unexpected status %q", m.statusMsg)
	}
	if g.Ledger.Holdings()[0].Executed {
		t.Error("stale quote settled the holding")
	}
}

func TestRejectedBuyReportsReason(t *testing.T) {
	m, _, sched := newTestModel(t)
	m.Update(panels.BuySubmitMsg{Asset: "Bitcoin", Quantity: 1})
	if !strings.Contains(m.statusMsg, "market is closed") {
		t.Errorf("expected wrong-phase message, got %q", m.statusMsg)
	}

	press(m, "enter")
	sched.Advance(3 * time.Second)
	m.Update(tickMsg{})
	m.Update(panels.BuySubmitMsg{Asset: "Bitcoin", Quantity: 1_000_000})
	if !strings.Contains(m.statusMsg, "not enough capital") {
		t.Errorf("expected funds message, got %q", m.statusMsg)
	}
}

func TestResultScreenAndReset(t *testing.T) {
	m, g, sched := newTestModel(t)
	press(m, "enter")
	sched.Advance(183 * time.Second)
	m.Update(tickMsg{})

	if m.state.Phase != game.PhaseResult {
		t.Fatalf("expected result, got %s", m.state.Phase)
	}
	if !strings.Contains(m.View(), "Game Over") {
		t.Error("expected result screen")
	}

	press(m, "r")
	if g.Phase() != game.PhaseStart || m.state.Capital != portfolio.DefaultCapital {
		t.Errorf("expected fresh game, got %s with %d", g.Phase(), m.state.Capital)
	}
}

func TestBellCue(t *testing.T) {
	var buf bytes.Buffer
	if err := BellCue(&buf).Play(news.Item{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.String() != "\a" {
		t.Errorf("expected bell, got %q", buf.String())
	}

	cue := BellCue(failWriter{})
	if err := cue.Play(news.Item{}); err == nil {
		t.Error("expected write error")
	}
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }
