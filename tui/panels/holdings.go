package panels

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zappabad/optionsim/internal/game"
	"github.com/zappabad/optionsim/tui/styles"
)

// ExerciseRequestMsg asks for a preview of exercising the holding at Index.
type ExerciseRequestMsg struct {
	Index int
}

// HoldingsPanel lists every option bought this game.
type HoldingsPanel struct {
	holdings      []game.HoldingView
	capital       int64
	selectedIndex int
	scrollOffset  int
	focused       bool
	width         int
	height        int
}

// NewHoldingsPanel creates a new holdings panel.
func NewHoldingsPanel() *HoldingsPanel {
	return &HoldingsPanel{}
}

// Update handles messages for the panel.
func (p *HoldingsPanel) Update(msg tea.Msg) (*HoldingsPanel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if !p.focused {
			return p, nil
		}
		switch {
		case key.Matches(msg, key.NewBinding(key.WithKeys("up", "k"))):
			if p.selectedIndex > 0 {
				p.selectedIndex--
				if p.selectedIndex < p.scrollOffset {
					p.scrollOffset = p.selectedIndex
				}
			}
		case key.Matches(msg, key.NewBinding(key.WithKeys("down", "j"))):
			if p.selectedIndex < len(p.holdings)-1 {
				p.selectedIndex++
				if visible := p.visibleRows(); p.selectedIndex >= p.scrollOffset+visible {
					p.scrollOffset = p.selectedIndex - visible + 1
				}
			}
		case key.Matches(msg, key.NewBinding(key.WithKeys("e", "enter"))):
			if p.selectedIndex < len(p.holdings) && !p.holdings[p.selectedIndex].Executed {
				idx := p.selectedIndex
				return p, func() tea.Msg { return ExerciseRequestMsg{Index: idx} }
			}
		}
	}
	return p, nil
}

func (p *HoldingsPanel) visibleRows() int {
	return max(p.height-6, 1)
}

// View renders the panel.
func (p *HoldingsPanel) View() string {
	var content strings.Builder

	content.WriteString(styles.LabelStyle.Render("Capital ") + styles.RowStyle.Bold(true).Render(styles.FormatMoney(p.capital)))
	content.WriteString("\n")
	header := fmt.Sprintf("%3s %-14s %5s %12s %12s %10s  %s",
		"#", "Asset", "Qty", "Strike", "Spot", "Cost", "Status")
	content.WriteString(styles.HeaderStyle.Render(header))

	if len(p.holdings) == 0 {
		content.WriteString("\n")
		content.WriteString(styles.MutedRowStyle.Render("No options bought yet"))
	}

	end := min(p.scrollOffset+p.visibleRows(), len(p.holdings))
	for i := p.scrollOffset; i < end; i++ {
		h := p.holdings[i]
		content.WriteString("\n")

		row := fmt.Sprintf("%3d %-14s %5d %12s %12s %10s  ",
			h.Index+1, h.Asset, h.Quantity, styles.FormatMoney(h.Strike),
			styles.FormatMoney(h.Spot), styles.FormatMoney(h.TotalCost))

		style := styles.RowStyle
		if h.Executed {
			style = styles.MutedRowStyle
		}
		if i == p.selectedIndex && p.focused {
			style = styles.SelectedRowStyle
		}
		content.WriteString(style.Render(row) + holdingStatus(h))
	}

	panelStyle := styles.PanelStyle
	if p.focused {
		panelStyle = styles.FocusedPanelStyle
	}
	title := styles.RenderTitle("Holdings", p.focused)
	panel := lipgloss.JoinVertical(lipgloss.Left, title, content.String())

	return panelStyle.Width(p.width - 2).Height(p.height - 2).Render(panel)
}

func holdingStatus(h game.HoldingView) string {
	if h.Executed {
		return styles.SignedStyle(h.Profit).Render("done " + styles.FormatMoney(h.Profit))
	}
	switch h.Moneyness {
	case game.InTheMoney:
		return styles.ProfitStyle.Render("ITM")
	case game.OutOfTheMoney:
		return styles.LossStyle.Render("OTM")
	default:
		return styles.WarnStyle.Render("ATM")
	}
}

// SetFocus sets the focus state of the panel.
func (p *HoldingsPanel) SetFocus(focused bool) {
	p.focused = focused
}

// SetSize sets the panel dimensions.
func (p *HoldingsPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetHoldings replaces the rows and the capital line.
func (p *HoldingsPanel) SetHoldings(holdings []game.HoldingView, capital int64) {
	p.holdings = holdings
	p.capital = capital
	if p.selectedIndex >= len(holdings) {
		p.selectedIndex = max(len(holdings)-1, 0)
	}
	if p.scrollOffset > p.selectedIndex {
		p.scrollOffset = p.selectedIndex
	}
}

// Selected returns the index of the highlighted holding.
func (p *HoldingsPanel) Selected() int {
	return p.selectedIndex
}
