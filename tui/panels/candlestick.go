package panels

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/zappabad/optionsim/internal/market"
	"github.com/zappabad/optionsim/tui/styles"
)

// Candle aggregates the price moves of one asset over a fixed window.
type Candle struct {
	Open  int64
	High  int64
	Low   int64
	Close int64
	Time  int64 // window start, unix nanos
}

// CandlestickPanel charts the selected asset from the price moves it has seen.
// It keeps a history for every asset so switching selection loses nothing.
type CandlestickPanel struct {
	asset   string
	candles map[string][]Candle

	candlePeriod int64
	maxCandles   int

	width  int
	height int
}

// NewCandlestickPanel creates a chart that groups moves into period-long candles.
func NewCandlestickPanel(period time.Duration) *CandlestickPanel {
	if period <= 0 {
		period = 15 * time.Second
	}
	return &CandlestickPanel{
		candles:      make(map[string][]Candle),
		candlePeriod: int64(period),
		maxCandles:   60,
	}
}

// AddMove folds one price move into the asset's current candle.
func (p *CandlestickPanel) AddMove(mv market.PriceMove, at int64) {
	start := (at / p.candlePeriod) * p.candlePeriod
	cs := p.candles[mv.Name]

	if n := len(cs); n > 0 && cs[n-1].Time == start {
		c := &cs[n-1]
		c.High = max(c.High, mv.To)
		c.Low = min(c.Low, mv.To)
		c.Close = mv.To
		return
	}

	cs = append(cs, Candle{
		Open:  mv.From,
		High:  max(mv.From, mv.To),
		Low:   min(mv.From, mv.To),
		Close: mv.To,
		Time:  start,
	})
	if len(cs) > p.maxCandles {
		cs = cs[len(cs)-p.maxCandles:]
	}
	p.candles[mv.Name] = cs
}

// Candles returns the history for asset, oldest first.
func (p *CandlestickPanel) Candles(asset string) []Candle {
	return p.candles[asset]
}

// View renders the panel.
func (p *CandlestickPanel) View() string {
	name := p.asset
	if name == "" {
		name = "No asset"
	}

	var content string
	candles := p.candles[p.asset]
	if len(candles) == 0 {
		content = styles.MutedRowStyle.Render("No price moves yet...")
	} else {
		content = p.renderChart(p.width-4, max(p.height-5, 5), candles)
	}

	title := styles.RenderTitle(fmt.Sprintf("Chart - %s", name), false)
	panel := lipgloss.JoinVertical(lipgloss.Left, title, content)
	return styles.PanelStyle.Width(p.width - 2).Height(p.height - 2).Render(panel)
}

func (p *CandlestickPanel) renderChart(width, height int, candles []Candle) string {
	// 13 columns for the price axis, 2 per candle.
	show := max((width-13)/2, 1)
	if len(candles) > show {
		candles = candles[len(candles)-show:]
	}

	lo, hi := candles[0].Low, candles[0].High
	for _, c := range candles {
		lo = min(lo, c.Low)
		hi = max(hi, c.High)
	}
	pad := max((hi-lo)/10, 1)
	lo -= pad
	hi += pad

	var out strings.Builder
	for row := 0; row < height; row++ {
		level := yToPrice(row, lo, hi, height)
		out.WriteString(styles.TimeStyle.Render(fmt.Sprintf("%11s │", styles.FormatMoney(level))))
		for _, c := range candles {
			style := styles.PriceUpStyle
			if c.Close < c.Open {
				style = styles.PriceDownStyle
			}
			out.WriteString(style.Render(string(candleChar(c, row, lo, hi, height))))
			out.WriteString(" ")
		}
		if row < height-1 {
			out.WriteString("\n")
		}
	}
	return out.String()
}

// candleChar returns the glyph for candle c at chart row.
func candleChar(c Candle, row int, lo, hi int64, height int) rune {
	level := yToPrice(row, lo, hi, height)
	tol := max((hi-lo)/int64(height*2), 1)

	top, bottom := max(c.Open, c.Close), min(c.Open, c.Close)
	switch {
	case level <= top+tol && level >= bottom-tol:
		return '┃'
	case level <= c.High+tol && level > top:
		return '│'
	case level >= c.Low-tol && level < bottom:
		return '│'
	default:
		return ' '
	}
}

func yToPrice(y int, lo, hi int64, height int) int64 {
	if height <= 1 {
		return lo
	}
	ratio := float64(y) / float64(height-1)
	return hi - int64(ratio*float64(hi-lo))
}

// SetSize sets the panel dimensions.
func (p *CandlestickPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetAsset selects the asset to chart.
func (p *CandlestickPanel) SetAsset(name string) {
	p.asset = name
}

// Reset forgets every history.
func (p *CandlestickPanel) Reset() {
	p.candles = make(map[string][]Candle)
}
