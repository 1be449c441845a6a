package panels

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/zappabad/optionsim/internal/news"
	"github.com/zappabad/optionsim/tui/styles"
)

// NewsPanel shows the recent news log, newest first. While flashing, the
// panel border and the newest headline are highlighted.
type NewsPanel struct {
	items  []news.Item
	flash  bool
	width  int
	height int
}

// NewNewsPanel creates a new news panel.
func NewNewsPanel() *NewsPanel {
	return &NewsPanel{}
}

// View renders the panel.
func (p *NewsPanel) View() string {
	var content strings.Builder

	if len(p.items) == 0 {
		content.WriteString(styles.MutedRowStyle.Render("No news yet"))
	}
	for i, item := range p.items {
		if i > 0 {
			content.WriteString("\n")
		}

		ts := styles.TimeStyle.Render(time.Unix(0, item.Time).Format("15:04:05"))
		impact := fmt.Sprintf("%+.0f%%", item.Impact*100)
		if item.Impact > 0 {
			impact = styles.ProfitStyle.Render(impact)
		} else {
			impact = styles.LossStyle.Render(impact)
		}

		msg := item.Message
		if limit := p.width - 24; limit > 3 && len(msg) > limit {
			msg = msg[:limit-3] + "..."
		}
		style := styles.NewsNormalStyle
		if i == 0 && p.flash {
			style = styles.NewsFlashStyle
		}
		content.WriteString(fmt.Sprintf("%s %s %s", ts, style.Render(msg), impact))
		if len(item.Affected) > 0 {
			content.WriteString("\n  ")
			content.WriteString(styles.MutedRowStyle.Render(strings.Join(item.Affected, ", ")))
		}
	}

	panelStyle := styles.PanelStyle
	if p.flash {
		panelStyle = styles.FlashPanelStyle
	}
	title := styles.RenderTitle("News", p.flash)
	panel := lipgloss.JoinVertical(lipgloss.Left, title, content.String())

	return panelStyle.Width(p.width - 2).Height(p.height - 2).Render(panel)
}

// SetSize sets the panel dimensions.
func (p *NewsPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetNews replaces the log. items is newest first.
func (p *NewsPanel) SetNews(items []news.Item, flash bool) {
	p.items = items
	p.flash = flash
}
