package panels

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zappabad/optionsim/internal/portfolio"
	"github.com/zappabad/optionsim/tui/styles"
)

// ExerciseDecisionMsg carries the player's answer to an exercise preview.
type ExerciseDecisionMsg struct {
	Quote    portfolio.ExerciseQuote
	Accepted bool
}

// ExerciseDialog shows an exercise preview and waits for y or n.
type ExerciseDialog struct {
	quote *portfolio.ExerciseQuote
}

// NewExerciseDialog creates a closed dialog.
func NewExerciseDialog() *ExerciseDialog {
	return &ExerciseDialog{}
}

// Open shows q.
func (d *ExerciseDialog) Open(q portfolio.ExerciseQuote) {
	d.quote = &q
}

// Close hides the dialog without answering.
func (d *ExerciseDialog) Close() {
	d.quote = nil
}

// Active reports whether the dialog is waiting for an answer.
func (d *ExerciseDialog) Active() bool {
	return d.quote != nil
}

// Update handles messages for the dialog.
func (d *ExerciseDialog) Update(msg tea.Msg) (*ExerciseDialog, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok || d.quote == nil {
		return d, nil
	}

	var accepted bool
	switch {
	case key.Matches(km, key.NewBinding(key.WithKeys("y", "enter"))):
		accepted = true
	case key.Matches(km, key.NewBinding(key.WithKeys("n", "esc"))):
	default:
		return d, nil
	}

	q := *d.quote
	d.quote = nil
	return d, func() tea.Msg {
		return ExerciseDecisionMsg{Quote: q, Accepted: accepted}
	}
}

// View renders the dialog.
func (d *ExerciseDialog) View() string {
	if d.quote == nil {
		return ""
	}
	q := d.quote

	advice := styles.ProfitStyle.Render("Exercising now makes a profit.")
	if !q.Recommend {
		advice = styles.WarnStyle.Render("Exercising now loses money. Hold or decline.")
	}

	lines := []string{
		styles.TitleStyle.Render(fmt.Sprintf("Exercise #%d %s x%d", q.Index+1, q.Asset, q.Quantity)),
		"",
		row("Spot", styles.FormatMoney(q.Spot)),
		row("Strike", styles.FormatMoney(q.Strike)),
		row("Payoff", styles.FormatMoney(q.Gross)),
		row("Paid", styles.FormatMoney(q.TotalCost)),
		row("Net", styles.SignedStyle(q.Net).Render(styles.FormatMoney(q.Net))),
		"",
		advice,
		"",
		styles.StatusBarKeyStyle.Render("y") + styles.StatusBarDescStyle.Render(" exercise  ") +
			styles.StatusBarKeyStyle.Render("n") + styles.StatusBarDescStyle.Render(" keep holding"),
	}
	return styles.DialogStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func row(label, value string) string {
	return styles.LabelStyle.Render(fmt.Sprintf("%-8s", label)) + strings.TrimSpace(value)
}
