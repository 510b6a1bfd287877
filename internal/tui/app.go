// Package tui is the interactive demo: the commuting simulation rendered
// live in the terminal, with pause, single-step, and running change
// counters fed by the world's update history.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/ecsim/internal/config"
	"github.com/san-kum/ecsim/internal/ecs"
	"github.com/san-kum/ecsim/internal/game"
)

type tickMsg time.Time

// Model drives the demo world one tick per timer message and renders the
// latest frame captured from the render sink.
type Model struct {
	world    *ecs.World
	cfg      *config.Config
	seed     int64
	frame    *string
	interval time.Duration

	tick        int
	lastChanges int
	total       int
	paused      bool
	err         error
}

// New builds the demo world and the model around it. The render system's
// sink writes into the model's frame buffer instead of the terminal.
func New(cfg *config.Config, seed int64) (Model, error) {
	frame := new(string)
	w, err := game.NewDemoWorld(game.Options{
		GridSize:   cfg.GridSize,
		Actors:     cfg.Actors,
		RenderSink: func(f string) { *frame = f },
	}, seed)
	if err != nil {
		return Model{}, err
	}
	return Model{
		world:    w,
		cfg:      cfg,
		seed:     seed,
		frame:    frame,
		interval: time.Duration(cfg.TickMS) * time.Millisecond,
	}, nil
}

// Run starts the bubbletea program and blocks until quit.
func Run(cfg *config.Config, seed int64) error {
	m, err := New(cfg, seed)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd { return m.tickCmd() }

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.paused = !m.paused
			if !m.paused {
				return m, m.tickCmd()
			}
			return m, nil
		case "s", "n":
			if m.paused {
				m = m.step()
			}
			return m, nil
		}
	case tickMsg:
		if m.paused || m.err != nil {
			return m, nil
		}
		m = m.step()
		if m.err != nil {
			return m, tea.Quit
		}
		return m, m.tickCmd()
	}
	return m, nil
}

func (m Model) step() Model {
	if err := m.world.Update(); err != nil {
		m.err = err
		return m
	}
	m.tick++
	ticks := m.world.History().AllTicks()
	last := ticks[len(ticks)-1]
	changes := 0
	for _, rec := range last.Records() {
		for _, ev := range rec.Events {
			if ev.IsComponentChange() {
				changes++
			}
		}
	}
	m.lastChanges = changes
	m.total += changes
	return m
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("ecsim — actors commuting between home and work"))
	b.WriteString("\n\n")

	frame := *m.frame
	if frame == "" {
		frame = game.RenderGrid(m.cfg.GridSize, ecs.Query[game.Position](m.world))
	}
	b.WriteString(gridStyle.Render(strings.TrimRight(frame, "\n")))
	b.WriteString("\n\n")

	status := statusRunning.Render("RUNNING")
	if m.paused {
		status = statusPaused.Render("PAUSED")
	}
	b.WriteString(fmt.Sprintf("%s  %s %s  %s %s  %s %s\n",
		status,
		metricLabel.Render("tick"), metricValue.Render(fmt.Sprintf("%d", m.tick)),
		metricLabel.Render("changes"), metricValue.Render(fmt.Sprintf("%d", m.lastChanges)),
		metricLabel.Render("total"), metricValue.Render(fmt.Sprintf("%d", m.total))))

	if m.err != nil {
		b.WriteString(fmt.Sprintf("error: %v\n", m.err))
	}
	b.WriteString(keyHint.Render("space pause · s step · q quit"))
	b.WriteString("\n")
	return b.String()
}
