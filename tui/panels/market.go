package panels

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zappabad/optionsim/internal/game"
	"github.com/zappabad/optionsim/internal/market"
	"github.com/zappabad/optionsim/tui/styles"
)

// MarketPanel lists every asset with its price tag and the call on offer.
type MarketPanel struct {
	assets        []game.AssetView
	selectedIndex int
	focused       bool
	width         int
	height        int
}

// NewMarketPanel creates a new market panel.
func NewMarketPanel() *MarketPanel {
	return &MarketPanel{}
}

// Update handles messages for the panel.
func (p *MarketPanel) Update(msg tea.Msg) (*MarketPanel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if !p.focused {
			return p, nil
		}
		switch {
		case key.Matches(msg, key.NewBinding(key.WithKeys("up", "k"))):
			if p.selectedIndex > 0 {
				p.selectedIndex--
			}
		case key.Matches(msg, key.NewBinding(key.WithKeys("down", "j"))):
			if p.selectedIndex < len(p.assets)-1 {
				p.selectedIndex++
			}
		}
	}
	return p, nil
}

// View renders the panel.
func (p *MarketPanel) View() string {
	var content strings.Builder

	header := fmt.Sprintf("%-14s %12s %2s %5s %10s %12s",
		"Asset", "Price", "", "Vol", "Premium", "Strike")
	content.WriteString(styles.HeaderStyle.Render(header))

	for i, a := range p.assets {
		content.WriteString("\n")

		arrow, priceStyle := directionMark(a.Direction)
		price := priceStyle.Render(fmt.Sprintf("%12s %2s", styles.FormatMoney(a.Price), arrow))
		rest := fmt.Sprintf(" %5.2f %10s %12s",
			a.Volatility, styles.FormatMoney(a.Quote.Premium), styles.FormatMoney(a.Quote.Strike))

		style := styles.RowStyle
		if i == p.selectedIndex {
			style = styles.SelectedRowStyle
		}
		content.WriteString(style.Render(fmt.Sprintf("%-14s ", a.Name)) + price + style.Render(rest))
	}

	panelStyle := styles.PanelStyle
	if p.focused {
		panelStyle = styles.FocusedPanelStyle
	}
	title := styles.RenderTitle("Market", p.focused)
	panel := lipgloss.JoinVertical(lipgloss.Left, title, content.String())

	return panelStyle.Width(p.width - 2).Height(p.height - 2).Render(panel)
}

func directionMark(d market.Direction) (string, lipgloss.Style) {
	switch d {
	case market.DirectionUp:
		return "▲", styles.PriceUpStyle
	case market.DirectionDown:
		return "▼", styles.PriceDownStyle
	default:
		return "-", styles.PriceSameStyle
	}
}

// SetFocus sets the focus state of the panel.
func (p *MarketPanel) SetFocus(focused bool) {
	p.focused = focused
}

// SetSize sets the panel dimensions.
func (p *MarketPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetAssets replaces the rows. The selection is kept by position.
func (p *MarketPanel) SetAssets(assets []game.AssetView) {
	p.assets = assets
	if p.selectedIndex >= len(assets) {
		p.selectedIndex = max(len(assets)-1, 0)
	}
}

// Selected returns the highlighted asset.
func (p *MarketPanel) Selected() (game.AssetView, bool) {
	if p.selectedIndex >= 0 && p.selectedIndex < len(p.assets) {
		return p.assets[p.selectedIndex], true
	}
	return game.AssetView{}, false
}
