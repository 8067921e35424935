package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Stats holds build statistics for display.
type Stats struct {
	Builds        int64
	Failures      int64
	LastDuration  time.Duration
	TotalDuration time.Duration
}

// AvgDuration returns the mean build time.
func (s Stats) AvgDuration() time.Duration {
	if s.Builds == 0 {
		return 0
	}
	return s.TotalDuration / time.Duration(s.Builds)
}

// StatsComponent renders statistics.
type StatsComponent struct {
	stats Stats
}

// NewStatsComponent creates a new stats component.
func NewStatsComponent() *StatsComponent {
	return &StatsComponent{}
}

// Record adds one build outcome.
func (s *StatsComponent) Record(d time.Duration, failed bool) {
	s.stats.Builds++
	s.stats.LastDuration = d
	s.stats.TotalDuration += d
	if failed {
		s.stats.Failures++
	}
}

// Stats returns the current counters.
func (s *StatsComponent) Stats() Stats {
	return s.stats
}

// View renders the stats component.
func (s *StatsComponent) View() string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	failStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))

	line := fmt.Sprintf("Builds: %d  Last: %s  Avg: %s",
		s.stats.Builds,
		s.stats.LastDuration.Round(time.Millisecond),
		s.stats.AvgDuration().Round(time.Millisecond),
	)
	out := dimStyle.Render(line)
	if s.stats.Failures > 0 {
		out += "  " + failStyle.Render(fmt.Sprintf("Failures: %d", s.stats.Failures))
	}
	return out
}
