// Package components provides reusable TUI components.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/fd1az/synthetic-orderbook/business/synthetics/domain"
)

// BookComponent renders the synthetic ladder: asks above the spread, best
// ask closest to it, bids below.
type BookComponent struct {
	pair  string
	asks  []domain.SyntheticLevel
	bids  []domain.SyntheticLevel
	depth int
}

// NewBookComponent creates a book showing at most depth levels per side.
func NewBookComponent(depth int) *BookComponent {
	if depth <= 0 {
		depth = 10
	}
	return &BookComponent{depth: depth}
}

// Update replaces the displayed levels.
func (b *BookComponent) Update(pair string, asks, bids []domain.SyntheticLevel) {
	b.pair = pair
	b.asks = headLevels(asks, b.depth)
	b.bids = headLevels(bids, b.depth)
}

func headLevels(levels []domain.SyntheticLevel, n int) []domain.SyntheticLevel {
	if len(levels) > n {
		return levels[:n]
	}
	return levels
}

// FormatPrice prints prices under 1 with 8 decimals and the rest with 2.
func FormatPrice(p float64) string {
	d := decimal.NewFromFloat(p)
	if d.Abs().LessThan(decimal.NewFromInt(1)) {
		return d.StringFixed(8)
	}
	return d.StringFixed(2)
}

// FormatAmount prints an amount with 8 decimals.
func FormatAmount(a float64) string {
	return decimal.NewFromFloat(a).StringFixed(8)
}

// Spread returns best ask minus best bid and the spread in bps of the mid.
func Spread(asks, bids []domain.SyntheticLevel) (decimal.Decimal, decimal.Decimal, bool) {
	if len(asks) == 0 || len(bids) == 0 {
		return decimal.Zero, decimal.Zero, false
	}
	ask := decimal.NewFromFloat(asks[0].Price)
	bid := decimal.NewFromFloat(bids[0].Price)
	abs := ask.Sub(bid)
	mid := ask.Add(bid).Div(decimal.NewFromInt(2))
	if mid.IsZero() {
		return abs, decimal.Zero, true
	}
	return abs, abs.Div(mid).Mul(decimal.NewFromInt(10000)), true
}

// View renders the book component.
func (b *BookComponent) View() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	askStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	bidStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	var sb strings.Builder
	sb.WriteString(headerStyle.Render(fmt.Sprintf("SYNTHETIC BOOK (%s)", b.pair)))
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("  %-5s  %18s  %18s\n", "Side", "Price", "Amount"))
	sb.WriteString(dimStyle.Render("  "+strings.Repeat("─", 45)) + "\n")

	if len(b.asks) == 0 {
		sb.WriteString(dimStyle.Render("  no asks") + "\n")
	}
	for i := len(b.asks) - 1; i >= 0; i-- {
		l := b.asks[i]
		sb.WriteString(askStyle.Render(fmt.Sprintf("  %-5s  %18s  %18s", "ask", FormatPrice(l.Price), FormatAmount(l.Amount))))
		sb.WriteString("\n")
	}

	if abs, bps, ok := Spread(b.asks, b.bids); ok {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("  spread %s (%s bps)", abs.StringFixed(2), bps.StringFixed(1))))
	} else {
		sb.WriteString(dimStyle.Render("  spread n/a"))
	}
	sb.WriteString("\n")

	for _, l := range b.bids {
		sb.WriteString(bidStyle.Render(fmt.Sprintf("  %-5s  %18s  %18s", "bid", FormatPrice(l.Price), FormatAmount(l.Amount))))
		sb.WriteString("\n")
	}
	if len(b.bids) == 0 {
		sb.WriteString(dimStyle.Render("  no bids") + "\n")
	}

	return sb.String()
}
