package styles

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	// Primary colors
	PrimaryColor   = lipgloss.Color("#7C3AED") // Purple
	SecondaryColor = lipgloss.Color("#10B981") // Green
	AccentColor    = lipgloss.Color("#F59E0B") // Amber

	// Status colors
	UpColor      = lipgloss.Color("#EF4444") // Red, rising prices
	DownColor    = lipgloss.Color("#3B82F6") // Blue, falling prices
	NeutralColor = lipgloss.Color("#6B7280") // Gray

	// Background colors
	BackgroundColor  = lipgloss.Color("#1F2937")
	BorderColor      = lipgloss.Color("#374151")
	FocusBorderColor = lipgloss.Color("#7C3AED")
	FlashColor       = lipgloss.Color("#DC2626")

	// Text colors
	TextColor          = lipgloss.Color("#F9FAFB")
	TextSecondaryColor = lipgloss.Color("#9CA3AF")
	TextMutedColor     = lipgloss.Color("#6B7280")
)

// Panel styles
var (
	// Base panel style
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(0, 1)

	// Focused panel style
	FocusedPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(FocusBorderColor).
				Padding(0, 1)

	// FlashPanelStyle frames the news panel right after a shock.
	FlashPanelStyle = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(FlashColor).
			Padding(0, 1)

	// Panel title style
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor).
			Padding(0, 1)

	// Header row style
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(TextSecondaryColor)

	// Row styles
	RowStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	SelectedRowStyle = lipgloss.NewStyle().
				Foreground(TextColor).
				Background(lipgloss.Color("#374151"))

	MutedRowStyle = lipgloss.NewStyle().
			Foreground(TextMutedColor)
)

// Text styles
var (
	// Price styles
	PriceUpStyle = lipgloss.NewStyle().
			Foreground(UpColor)

	PriceDownStyle = lipgloss.NewStyle().
			Foreground(DownColor)

	PriceSameStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	// Profit/Loss text
	ProfitStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(SecondaryColor)

	LossStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(UpColor)

	TimeStyle = lipgloss.NewStyle().
			Foreground(TextMutedColor)

	// News styles
	NewsNormalStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	NewsFlashStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(AccentColor)

	// Countdown and result banner
	BannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor).
			Padding(1, 4).
			Border(lipgloss.DoubleBorder()).
			BorderForeground(PrimaryColor)

	WarnStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(AccentColor)
)

// Input styles
var (
	// Text input style
	InputStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(BorderColor).
			Padding(0, 1)

	FocusedInputStyle = lipgloss.NewStyle().
				Border(lipgloss.NormalBorder()).
				BorderForeground(FocusBorderColor).
				Padding(0, 1)

	LabelStyle = lipgloss.NewStyle().
			Foreground(TextSecondaryColor)

	// Confirmation dialog
	DialogStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(AccentColor).
			Padding(1, 2)
)

// Status bar styles
var (
	StatusBarStyle = lipgloss.NewStyle().
			Background(BackgroundColor).
			Foreground(TextSecondaryColor).
			Padding(0, 1)

	StatusBarKeyStyle = lipgloss.NewStyle().
				Foreground(PrimaryColor).
				Bold(true)

	StatusBarDescStyle = lipgloss.NewStyle().
				Foreground(TextSecondaryColor)
)

// RenderTitle renders a panel title, highlighted when focused.
func RenderTitle(title string, focused bool) string {
	style := TitleStyle
	if focused {
		style = style.Foreground(FocusBorderColor)
	}
	return style.Render(title)
}

// FormatMoney renders an amount with thousands separators.
func FormatMoney(v int64) string {
	s := strconv.FormatInt(v, 10)
	neg := v < 0
	if neg {
		s = s[1:]
	}
	out := make([]byte, 0, len(s)+len(s)/3+1)
	if neg {
		out = append(out, '-')
	}
	for i := 0; i < len(s); i++ {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	return string(out)
}

// SignedStyle picks the profit or loss style for v.
func SignedStyle(v int64) lipgloss.Style {
	if v > 0 {
		return ProfitStyle
	}
	return LossStyle
}
