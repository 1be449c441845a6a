package tui

import (
	"errors"
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zappabad/optionsim/internal/game"
	marketview "github.com/zappabad/optionsim/internal/market/view"
	"github.com/zappabad/optionsim/internal/news"
	newsservice "github.com/zappabad/optionsim/internal/news/service"
	newsview "github.com/zappabad/optionsim/internal/news/view"
	"github.com/zappabad/optionsim/internal/portfolio"
	"github.com/zappabad/optionsim/tui/panels"
	"github.com/zappabad/optionsim/tui/styles"
)

// PanelFocus represents which panel is currently focused.
type PanelFocus int

const (
	FocusMarket PanelFocus = iota
	FocusHoldings
	FocusOrderInput
	focusCount
)

// Model is the main TUI application model. It polls the game for state and
// listens on the market and news event channels for chart and status updates.
type Model struct {
	game  *game.Game
	state game.State

	marketPanel     *panels.MarketPanel
	holdingsPanel   *panels.HoldingsPanel
	newsPanel       *panels.NewsPanel
	orderInputPanel *panels.OrderInputPanel
	chartPanel      *panels.CandlestickPanel
	dialog          *panels.ExerciseDialog

	focusedPanel PanelFocus
	difficulty   game.Difficulty

	width  int
	height int

	statusMsg string
	ready     bool
}

// NewModel creates a new TUI model over g.
func NewModel(g *game.Game) *Model {
	st := g.State()
	names := make([]string, len(st.Assets))
	for i, a := range st.Assets {
		names[i] = a.Name
	}

	m := &Model{
		game:            g,
		state:           st,
		marketPanel:     panels.NewMarketPanel(),
		holdingsPanel:   panels.NewHoldingsPanel(),
		newsPanel:       panels.NewNewsPanel(),
		orderInputPanel: panels.NewOrderInputPanel(names),
		chartPanel:      panels.NewCandlestickPanel(st.Difficulty.EventInterval()),
		dialog:          panels.NewExerciseDialog(),
		difficulty:      st.Difficulty,
	}
	m.setFocus(FocusMarket)
	m.refresh()
	return m
}

// BellCue rings the terminal bell on w whenever news is published.
func BellCue(w io.Writer) newsservice.Cue {
	return newsservice.CueFunc(func(news.Item) error {
		_, err := w.Write([]byte("\a"))
		return err
	})
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.orderInputPanel.Init(),
		m.listenMarketEvents(),
		m.listenNewsEvents(),
		m.tickRefresh(),
	)
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if cmd, handled := m.handleKey(msg); handled {
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

	case marketEventMsg:
		for _, mv := range msg.Moves {
			m.chartPanel.AddMove(mv, msg.Time)
		}
		cmds = append(cmds, m.listenMarketEvents())

	case newsEventMsg:
		m.statusMsg = "NEWS: " + msg.Item.Message
		cmds = append(cmds, m.listenNewsEvents())

	case panels.BuySubmitMsg:
		m.buy(msg)

	case panels.ExerciseRequestMsg:
		q, err := m.game.ProposeExercise(msg.Index)
		if err != nil {
			m.statusMsg = "Exercise failed: " + describe(err)
			break
		}
		m.dialog.Open(q)

	case panels.ExerciseDecisionMsg:
		m.commit(msg)

	case tickMsg:
		m.refresh()
		cmds = append(cmds, m.tickRefresh())
	}

	m.updateFocusedPanel(msg, &cmds)
	return m, tea.Batch(cmds...)
}

// handleKey deals with keys that act on the whole screen. It reports whether
// the key was consumed.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	k := msg.String()
	if k == "ctrl+c" {
		return tea.Quit, true
	}
	if k == "ctrl+r" {
		m.reset()
		return nil, true
	}
	if m.dialog.Active() {
		var cmd tea.Cmd
		m.dialog, cmd = m.dialog.Update(msg)
		return cmd, true
	}

	switch m.state.Phase {
	case game.PhaseStart:
		switch k {
		case "q":
			return tea.Quit, true
		case "left", "h":
			m.difficulty = game.Difficulty(max(int(m.difficulty)-1, int(game.DifficultyHigh)))
		case "right", "l":
			m.difficulty = game.Difficulty(min(int(m.difficulty)+1, int(game.DifficultyLow)))
		case "1", "2", "3":
			m.difficulty = game.Difficulty(k[0] - '1' + byte(game.DifficultyHigh))
		case "enter", " ":
			if err := m.game.Start(m.difficulty); err != nil {
				m.statusMsg = "Start failed: " + describe(err)
			}
			m.refresh()
		}
		return nil, true

	case game.PhaseCountdown:
		if k == "q" {
			return tea.Quit, true
		}
		return nil, true

	case game.PhaseResult:
		switch k {
		case "q":
			return tea.Quit, true
		case "r":
			m.reset()
		}
		return nil, true
	}

	// Active phase.
	switch k {
	case "tab":
		m.setFocus((m.focusedPanel + 1) % focusCount)
		return nil, true
	case "shift+tab":
		m.setFocus((m.focusedPanel + focusCount - 1) % focusCount)
		return nil, true
	case "q":
		if m.focusedPanel != FocusOrderInput {
			return tea.Quit, true
		}
	case "enter", "b":
		if m.focusedPanel == FocusMarket {
			if a, ok := m.marketPanel.Selected(); ok {
				m.orderInputPanel.SetAsset(a.Name)
				m.setFocus(FocusOrderInput)
			}
			return nil, true
		}
	}
	return nil, false
}

func (m *Model) updateFocusedPanel(msg tea.Msg, cmds *[]tea.Cmd) {
	if _, ok := msg.(tea.KeyMsg); ok && m.state.Phase != game.PhaseActive {
		return
	}

	var cmd tea.Cmd
	switch m.focusedPanel {
	case FocusMarket:
		m.marketPanel, cmd = m.marketPanel.Update(msg)
		if a, ok := m.marketPanel.Selected(); ok {
			m.chartPanel.SetAsset(a.Name)
		}
	case FocusHoldings:
		m.holdingsPanel, cmd = m.holdingsPanel.Update(msg)
	case FocusOrderInput:
		m.orderInputPanel, cmd = m.orderInputPanel.Update(msg)
	}
	if cmd != nil {
		*cmds = append(*cmds, cmd)
	}
}

func (m *Model) setFocus(f PanelFocus) {
	m.focusedPanel = f
	m.marketPanel.SetFocus(f == FocusMarket)
	m.holdingsPanel.SetFocus(f == FocusHoldings)
	m.orderInputPanel.SetFocus(f == FocusOrderInput)
}

func (m *Model) buy(msg panels.BuySubmitMsg) {
	h, err := m.game.BuyOption(msg.Asset, msg.Quantity)
	if err != nil {
		m.statusMsg = "Buy failed: " + describe(err)
		return
	}
	m.statusMsg = fmt.Sprintf("Bought %d %s calls struck at %s for %s",
		h.Quantity, h.Asset, styles.FormatMoney(h.Strike), styles.FormatMoney(h.TotalCost))
	m.refresh()
}

func (m *Model) commit(msg panels.ExerciseDecisionMsg) {
	st, err := m.game.CommitExercise(msg.Quote, msg.Accepted)
	switch {
	case errors.Is(err, portfolio.ErrStaleQuote):
		q, perr := m.game.ProposeExercise(msg.Quote.Index)
		if perr != nil {
			m.statusMsg = "Exercise failed: " + describe(perr)
			break
		}
		m.dialog.Open(q)
		m.statusMsg = "Price moved, review the new quote"
	case err != nil:
		m.statusMsg = "Exercise failed: " + describe(err)
	case !st.Accepted:
		m.statusMsg = fmt.Sprintf("Kept holding #%d", msg.Quote.Index+1)
	default:
		m.statusMsg = fmt.Sprintf("Exercised #%d for %s", msg.Quote.Index+1, styles.FormatMoney(msg.Quote.Net))
	}
	m.refresh()
}

func (m *Model) reset() {
	if err := m.game.Reset(); err != nil {
		m.statusMsg = "Reset failed: " + describe(err)
		return
	}
	m.dialog.Close()
	m.chartPanel.Reset()
	m.orderInputPanel.Reset()
	m.setFocus(FocusMarket)
	m.statusMsg = ""
	m.refresh()
}

// refresh pulls a fresh state snapshot into every panel.
func (m *Model) refresh() {
	m.state = m.game.State()
	st := m.state

	m.marketPanel.SetAssets(st.Assets)
	m.holdingsPanel.SetHoldings(st.Holdings, st.Capital)
	m.newsPanel.SetNews(st.Log, st.Flash)
	if a, ok := m.marketPanel.Selected(); ok {
		m.chartPanel.SetAsset(a.Name)
	}
	if st.Phase != game.PhaseActive {
		m.dialog.Close()
	}

	asset, qty, ok := m.orderInputPanel.Pending()
	if asset == "" {
		m.orderInputPanel.SetQuote(nil, nil)
		return
	}
	if !ok {
		qty = 1
	}
	q, err := m.game.QuoteOption(asset, qty)
	if err != nil {
		m.orderInputPanel.SetQuote(nil, err)
		return
	}
	m.orderInputPanel.SetQuote(&q, nil)
}

// View renders the UI.
func (m *Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var body string
	switch m.state.Phase {
	case game.PhaseStart:
		body = m.renderStart()
	case game.PhaseCountdown:
		body = styles.BannerStyle.Render(fmt.Sprintf("Trading opens in %d", m.state.Countdown))
	case game.PhaseResult:
		body = panels.RenderResult(m.state.Result, m.state.Holdings)
	default:
		if m.dialog.Active() {
			body = m.dialog.View()
			break
		}
		return lipgloss.JoinVertical(lipgloss.Left, m.renderBoard(), m.renderStatusBar())
	}

	screen := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, body)
	return lipgloss.JoinVertical(lipgloss.Left, screen, m.renderStatusBar())
}

func (m *Model) renderStart() string {
	var choices []string
	for _, d := range game.Difficulties() {
		label := fmt.Sprintf(" %s ", d)
		if d == m.difficulty {
			choices = append(choices, styles.SelectedRowStyle.Bold(true).Render("["+label+"]"))
		} else {
			choices = append(choices, styles.MutedRowStyle.Render(" "+label+" "))
		}
	}
	info := fmt.Sprintf("Prices move every %s, news every %s",
		m.difficulty.PriceInterval(), m.difficulty.EventInterval())

	return lipgloss.JoinVertical(lipgloss.Center,
		styles.BannerStyle.Render("Option Trading Simulator"),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center, choices...),
		styles.LabelStyle.Render(info),
		"",
		styles.StatusBarKeyStyle.Render("←/→")+styles.StatusBarDescStyle.Render(" difficulty  ")+
			styles.StatusBarKeyStyle.Render("enter")+styles.StatusBarDescStyle.Render(" start  ")+
			styles.StatusBarKeyStyle.Render("q")+styles.StatusBarDescStyle.Render(" quit"),
	)
}

func (m *Model) renderBoard() string {
	// Layout:
	// ┌──────────────────┬──────────────┐
	// │  Market          │  Chart       │
	// ├────────────┬─────┴──────┬───────┤
	// │  Holdings  │  Buy       │ News  │
	// └────────────┴────────────┴───────┘
	leftWidth := m.width / 2
	rightWidth := m.width - leftWidth
	topHeight := (m.height - 1) / 2
	bottomHeight := m.height - 1 - topHeight

	m.marketPanel.SetSize(leftWidth, topHeight)
	m.chartPanel.SetSize(rightWidth, topHeight)
	top := lipgloss.JoinHorizontal(lipgloss.Top, m.marketPanel.View(), m.chartPanel.View())

	holdingsWidth := m.width * 2 / 5
	inputWidth := m.width / 4
	newsWidth := m.width - holdingsWidth - inputWidth
	m.holdingsPanel.SetSize(holdingsWidth, bottomHeight)
	m.orderInputPanel.SetSize(inputWidth, bottomHeight)
	m.newsPanel.SetSize(newsWidth, bottomHeight)
	bottom := lipgloss.JoinHorizontal(lipgloss.Top,
		m.holdingsPanel.View(), m.orderInputPanel.View(), m.newsPanel.View())

	return lipgloss.JoinVertical(lipgloss.Left, top, bottom)
}

func (m *Model) renderStatusBar() string {
	st := m.state
	clock := fmt.Sprintf("%02d:%02d", st.Remaining/60, st.Remaining%60)
	parts := []string{
		styles.StatusBarKeyStyle.Render(clock),
		styles.StatusBarDescStyle.Render(st.Difficulty.String()),
		styles.StatusBarDescStyle.Render("capital " + styles.FormatMoney(st.Capital)),
	}
	if st.Phase == game.PhaseActive {
		parts = append(parts,
			styles.StatusBarKeyStyle.Render("Tab")+styles.StatusBarDescStyle.Render(" panels"),
			styles.StatusBarKeyStyle.Render("b")+styles.StatusBarDescStyle.Render(" buy"),
			styles.StatusBarKeyStyle.Render("e")+styles.StatusBarDescStyle.Render(" exercise"),
			styles.StatusBarKeyStyle.Render("^R")+styles.StatusBarDescStyle.Render(" reset"),
		)
	}
	if m.statusMsg != "" {
		parts = append(parts, m.statusMsg)
	}

	line := parts[0]
	for _, p := range parts[1:] {
		line += " │ " + p
	}
	return styles.StatusBarStyle.Width(m.width).Render(line)
}

func describe(err error) string {
	switch {
	case errors.Is(err, portfolio.ErrInsufficientFunds):
		return "not enough capital"
	case errors.Is(err, portfolio.ErrInvalidQuantity):
		return "quantity must be positive"
	case errors.Is(err, portfolio.ErrStaleHolding):
		return "already exercised"
	case errors.Is(err, game.ErrWrongPhase):
		return "the market is closed"
	default:
		return err.Error()
	}
}

func (m *Model) listenMarketEvents() tea.Cmd {
	events := m.game.Market.Events()
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return marketEventMsg(ev)
	}
}

func (m *Model) listenNewsEvents() tea.Cmd {
	events := m.game.News.Events()
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return newsEventMsg(ev)
	}
}

// tickMsg is sent periodically to refresh data.
type tickMsg struct{}

func (m *Model) tickRefresh() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

type marketEventMsg marketview.MarketEvent

type newsEventMsg newsview.NewsEvent
