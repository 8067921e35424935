package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fd1az/synthetic-orderbook/business/synthetics/domain"
)

// LegsComponent renders per-leg availability and commission.
type LegsComponent struct {
	legs []domain.LegStatus
}

func NewLegsComponent() *LegsComponent {
	return &LegsComponent{}
}

// Update replaces the displayed legs.
func (l *LegsComponent) Update(legs []domain.LegStatus) {
	l.legs = legs
}

// View renders the legs component.
func (l *LegsComponent) View() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	okStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	downStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	var sb strings.Builder
	sb.WriteString(headerStyle.Render("LEGS"))
	sb.WriteString("\n\n")

	if len(l.legs) == 0 {
		sb.WriteString(dimStyle.Render("  Waiting for first build..."))
		return sb.String()
	}

	for i, leg := range l.legs {
		status := okStyle.Render("● available")
		if !leg.Available {
			status = downStyle.Render("○ unavailable")
		}
		fee := fmt.Sprintf("%.1f bps", leg.CommissionBps)
		if leg.DefaultCommission {
			fee += " (default)"
		}
		sb.WriteString(fmt.Sprintf("  %d. %-9s %-10s %s  %s\n",
			i+1, leg.Exchange, leg.Symbol, status, dimStyle.Render(fee)))
		if !leg.Available && leg.Err != nil {
			sb.WriteString(dimStyle.Render("     "+leg.Err.Error()) + "\n")
		}
	}

	return sb.String()
}
