package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fd1az/synthetic-orderbook/business/synthetics/domain"
	"github.com/fd1az/synthetic-orderbook/pkg/ui/components"
)

// BuildFunc produces one synthetic book.
type BuildFunc func(ctx context.Context) (*domain.Result, error)

// DefaultInterval is used when no rebuild interval is configured.
const DefaultInterval = 5 * time.Second

// Model is the main Bubble Tea model for the live view.
type Model struct {
	ctx      context.Context
	build    BuildFunc
	interval time.Duration

	book  *components.BookComponent
	legs  *components.LegsComponent
	stats *components.StatsComponent

	keys KeyMap
	help help.Model

	width      int
	quitting   bool
	paused     bool
	building   bool
	result     *domain.Result
	lastErr    error
	lastUpdate time.Time
}

// New creates a live view rebuilding the book every interval.
func New(ctx context.Context, build BuildFunc, interval time.Duration, depth int) Model {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return Model{
		ctx:      ctx,
		build:    build,
		interval: interval,
		book:     components.NewBookComponent(depth),
		legs:     components.NewLegsComponent(),
		stats:    components.NewStatsComponent(),
		keys:     DefaultKeyMap(),
		help:     help.New(),
	}
}

// Init builds the first book and starts the ticker.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.buildCmd(), m.tickCmd())
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.interval, func(time.Time) tea.Msg {
		return TickMsg{}
	})
}

func (m Model) buildCmd() tea.Cmd {
	ctx, build := m.ctx, m.build
	return func() tea.Msg {
		start := time.Now()
		res, err := build(ctx)
		return BookMsg{Result: res, Err: err, Duration: time.Since(start), At: time.Now()}
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Pause):
			m.paused = !m.paused
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			if m.building {
				return m, nil
			}
			m.building = true
			return m, m.buildCmd()
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width

	case TickMsg:
		if m.paused || m.building {
			return m, m.tickCmd()
		}
		m.building = true
		return m, tea.Batch(m.buildCmd(), m.tickCmd())

	case BookMsg:
		m.building = false
		m.stats.Record(msg.Duration, msg.Err != nil)
		m.lastUpdate = msg.At
		m.lastErr = msg.Err
		if msg.Result != nil {
			m.result = msg.Result
			if msg.Result.Success {
				m.book.Update(msg.Result.SyntheticPair, msg.Result.Asks, msg.Result.Bids)
			}
			m.legs.Update(msg.Result.Legs)
			if !msg.Result.Success && m.lastErr == nil {
				m.lastErr = fmt.Errorf("%s", msg.Result.Error)
			}
		}
	}

	return m, nil
}

// Paused reports whether periodic rebuilds are suspended.
func (m Model) Paused() bool { return m.paused }

// Result returns the latest build result.
func (m Model) Result() *domain.Result { return m.result }

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return "\n  Goodbye!\n\n"
	}

	var b strings.Builder

	b.WriteString(TitleStyle.Render(" Synthetic Orderbook "))
	if m.result != nil && m.result.Success {
		b.WriteString("  ")
		b.WriteString(PairStyle.Render(fmt.Sprintf("%s  (%s/%s)", m.result.SyntheticPair, m.result.Base, m.result.Quote)))
	}
	b.WriteString("\n\n")

	b.WriteString(m.renderStatusBar())
	b.WriteString("\n\n")

	left := m.book.View()
	right := m.legs.View()
	if m.width > 100 {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			BoxStyle.Width(m.width/2-2).Render(left),
			BoxStyle.Width(m.width/2-2).Render(right),
		))
	} else {
		b.WriteString(BoxStyle.Render(left))
		b.WriteString("\n")
		b.WriteString(BoxStyle.Render(right))
	}
	b.WriteString("\n\n")

	if m.lastErr != nil {
		b.WriteString(ErrorStyle.Render("ERROR: " + m.lastErr.Error()))
		b.WriteString("\n\n")
	}

	if m.result != nil && m.result.Note != "" {
		b.WriteString(MutedValue.Render(m.result.Note))
		b.WriteString("\n")
	}

	if m.paused {
		b.WriteString(PausedStyle.Render("⏸ PAUSED"))
		b.WriteString(" • ")
	}
	b.WriteString(m.help.View(m.keys))

	return b.String()
}

func (m Model) renderStatusBar() string {
	parts := []string{m.stats.View()}

	if m.building {
		parts = append(parts, PausedStyle.Render("⟳ building"))
	}
	parts = append(parts, MutedValue.Render(fmt.Sprintf("Every %s", m.interval)))

	if !m.lastUpdate.IsZero() {
		parts = append(parts, MutedValue.Render("Updated "+m.lastUpdate.Format("15:04:05")))
	}

	return strings.Join(parts, "  │  ")
}

// Run starts the live view and blocks until the user quits or ctx ends.
func Run(ctx context.Context, build BuildFunc, interval time.Duration, depth int) error {
	p := tea.NewProgram(New(ctx, build, interval, depth), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
