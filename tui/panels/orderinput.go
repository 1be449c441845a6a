package panels

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zappabad/optionsim/internal/game"
	"github.com/zappabad/optionsim/tui/styles"
)

// OrderInputField is the currently focused input field.
type OrderInputField int

const (
	FieldAsset OrderInputField = iota
	FieldQuantity
	FieldSubmit
)

// BuySubmitMsg is sent when the player confirms a purchase.
type BuySubmitMsg struct {
	Asset    string
	Quantity int64
}

// OrderInputPanel takes an asset and a quantity and previews the call's cost.
// The asset field autocompletes against the catalog.
type OrderInputPanel struct {
	assetNames    []string
	assetInput    textinput.Model
	quantityInput textinput.Model

	showDropdown     bool
	dropdownFiltered []string
	dropdownIndex    int

	currentField OrderInputField
	selected     string
	quote        *game.OptionQuote
	quoteErr     error

	focused bool
	width   int
	height  int
}

// NewOrderInputPanel creates a new order input panel over the given asset names.
func NewOrderInputPanel(assetNames []string) *OrderInputPanel {
	assetInput := textinput.New()
	assetInput.Placeholder = "Search asset..."
	assetInput.Width = 16
	assetInput.CharLimit = 24

	quantityInput := textinput.New()
	quantityInput.Placeholder = "Quantity"
	quantityInput.Width = 10
	quantityInput.CharLimit = 9
	quantityInput.Validate = func(s string) error {
		if s == "" {
			return nil
		}
		_, err := strconv.ParseInt(s, 10, 64)
		return err
	}

	return &OrderInputPanel{
		assetNames:       assetNames,
		assetInput:       assetInput,
		quantityInput:    quantityInput,
		dropdownFiltered: assetNames,
	}
}

// Init initializes the panel.
func (p *OrderInputPanel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the panel.
func (p *OrderInputPanel) Update(msg tea.Msg) (*OrderInputPanel, tea.Cmd) {
	if !p.focused {
		return p, nil
	}

	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, key.NewBinding(key.WithKeys("down"))):
			if p.showDropdown {
				if p.dropdownIndex < len(p.dropdownFiltered)-1 {
					p.dropdownIndex++
				}
				return p, nil
			}
			p.nextField()
			return p, nil

		case key.Matches(msg, key.NewBinding(key.WithKeys("up"))):
			if p.showDropdown {
				if p.dropdownIndex > 0 {
					p.dropdownIndex--
				}
				return p, nil
			}
			p.prevField()
			return p, nil

		case key.Matches(msg, key.NewBinding(key.WithKeys("enter"))):
			if p.currentField == FieldSubmit {
				return p, p.submit()
			}
			p.nextField()
			return p, nil

		case key.Matches(msg, key.NewBinding(key.WithKeys("esc"))):
			p.showDropdown = false
			return p, nil
		}
	}

	switch p.currentField {
	case FieldAsset:
		p.assetInput, cmd = p.assetInput.Update(msg)
		p.filterDropdown(p.assetInput.Value())
		p.showDropdown = p.assetInput.Value() != "" && p.assetInput.Value() != p.selected
	case FieldQuantity:
		p.quantityInput, cmd = p.quantityInput.Update(msg)
	}

	return p, cmd
}

// View renders the panel.
func (p *OrderInputPanel) View() string {
	var content strings.Builder

	content.WriteString(p.renderField("Asset", FieldAsset, p.renderAssetField()))
	content.WriteString("\n")
	content.WriteString(p.renderField("Qty", FieldQuantity, p.renderInput(FieldQuantity, &p.quantityInput)))
	content.WriteString("\n\n")

	submitStyle := styles.InputStyle
	if p.currentField == FieldSubmit && p.focused {
		submitStyle = styles.FocusedInputStyle.Bold(true).Foreground(styles.PrimaryColor)
	}
	content.WriteString(submitStyle.Render("  [Buy Call]  "))
	content.WriteString("\n\n")
	content.WriteString(p.renderQuote())

	panelStyle := styles.PanelStyle
	if p.focused {
		panelStyle = styles.FocusedPanelStyle
	}
	title := styles.RenderTitle("Buy Option", p.focused)
	panel := lipgloss.JoinVertical(lipgloss.Left, title, content.String())

	return panelStyle.Width(p.width - 2).Height(p.height - 2).Render(panel)
}

func (p *OrderInputPanel) renderField(label string, field OrderInputField, inputView string) string {
	labelStyle := styles.LabelStyle
	if p.currentField == field && p.focused {
		labelStyle = labelStyle.Foreground(styles.PrimaryColor)
	}
	return labelStyle.Render(fmt.Sprintf("%-7s", label)) + inputView
}

func (p *OrderInputPanel) renderInput(field OrderInputField, in *textinput.Model) string {
	style := styles.InputStyle
	if p.currentField == field && p.focused {
		style = styles.FocusedInputStyle
	}
	return style.Render(in.View())
}

func (p *OrderInputPanel) renderAssetField() string {
	var out strings.Builder
	out.WriteString(p.renderInput(FieldAsset, &p.assetInput))

	if p.showDropdown && len(p.dropdownFiltered) > 0 {
		n := min(len(p.dropdownFiltered), 5)
		for i := 0; i < n; i++ {
			style := styles.RowStyle
			if i == p.dropdownIndex {
				style = styles.SelectedRowStyle
			}
			out.WriteString("\n       ")
			out.WriteString(style.Render(p.dropdownFiltered[i]))
		}
	}
	return out.String()
}

func (p *OrderInputPanel) renderQuote() string {
	if p.quoteErr != nil {
		return styles.LossStyle.Render(p.quoteErr.Error())
	}
	if p.quote == nil {
		return styles.MutedRowStyle.Render("Pick an asset and a quantity")
	}
	q := p.quote
	lines := []string{
		styles.LabelStyle.Render("Spot     ") + styles.FormatMoney(q.Spot),
		styles.LabelStyle.Render("Strike   ") + styles.FormatMoney(q.Strike),
		styles.LabelStyle.Render("Premium  ") + styles.FormatMoney(q.Premium),
		styles.LabelStyle.Render("Total    ") + styles.FormatMoney(q.Total),
	}
	if !q.Affordable {
		lines = append(lines, styles.WarnStyle.Render("Not enough capital"))
	}
	return strings.Join(lines, "\n")
}

func (p *OrderInputPanel) filterDropdown(query string) {
	query = strings.ToLower(query)
	p.dropdownFiltered = p.dropdownFiltered[:0:0]
	p.dropdownIndex = 0
	for _, name := range p.assetNames {
		if strings.Contains(strings.ToLower(name), query) {
			p.dropdownFiltered = append(p.dropdownFiltered, name)
		}
	}
}

func (p *OrderInputPanel) selectDropdownItem() {
	if p.dropdownIndex < len(p.dropdownFiltered) {
		p.SetAsset(p.dropdownFiltered[p.dropdownIndex])
	}
}

func (p *OrderInputPanel) nextField() {
	switch p.currentField {
	case FieldAsset:
		if p.showDropdown {
			p.selectDropdownItem()
		}
		p.currentField = FieldQuantity
	case FieldQuantity:
		p.currentField = FieldSubmit
	case FieldSubmit:
		p.currentField = FieldAsset
	}
	p.showDropdown = false
	p.syncFocus()
}

func (p *OrderInputPanel) prevField() {
	switch p.currentField {
	case FieldAsset:
		p.currentField = FieldSubmit
	case FieldQuantity:
		p.currentField = FieldAsset
	case FieldSubmit:
		p.currentField = FieldQuantity
	}
	p.showDropdown = false
	p.syncFocus()
}

// syncFocus gives keyboard focus to the input under the cursor, if any.
func (p *OrderInputPanel) syncFocus() {
	p.assetInput.Blur()
	p.quantityInput.Blur()
	if !p.focused {
		return
	}
	switch p.currentField {
	case FieldAsset:
		p.assetInput.Focus()
	case FieldQuantity:
		p.quantityInput.Focus()
	}
}

func (p *OrderInputPanel) submit() tea.Cmd {
	asset, qty, ok := p.Pending()
	if !ok {
		return nil
	}
	return func() tea.Msg {
		return BuySubmitMsg{Asset: asset, Quantity: qty}
	}
}

// Pending returns the asset and quantity currently entered.
func (p *OrderInputPanel) Pending() (string, int64, bool) {
	if p.selected == "" {
		return "", 0, false
	}
	qty, err := strconv.ParseInt(p.quantityInput.Value(), 10, 64)
	if err != nil || qty <= 0 {
		return p.selected, 0, false
	}
	return p.selected, qty, true
}

// SetQuote sets the cost preview shown under the form.
func (p *OrderInputPanel) SetQuote(q *game.OptionQuote, err error) {
	p.quote = q
	p.quoteErr = err
}

// SetAsset selects an asset, as when the player picks it from the market panel.
func (p *OrderInputPanel) SetAsset(name string) {
	p.selected = name
	p.assetInput.SetValue(name)
	p.showDropdown = false
}

// SetFocus sets the focus state of the panel.
func (p *OrderInputPanel) SetFocus(focused bool) {
	p.focused = focused
	p.syncFocus()
}

// SetSize sets the panel dimensions.
func (p *OrderInputPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// Reset clears the form.
func (p *OrderInputPanel) Reset() {
	p.assetInput.SetValue("")
	p.quantityInput.SetValue("")
	p.selected = ""
	p.quote = nil
	p.quoteErr = nil
	p.currentField = FieldAsset
	p.showDropdown = false
	p.syncFocus()
}
