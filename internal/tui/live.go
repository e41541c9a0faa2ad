package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/mfalk/ellipsim/internal/engine"
)

var (
	cyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	green  = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	red    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

const historyLen = 120

// Model is the live run view: steps the engine on a timer and renders an
// energy trace.
type Model struct {
	eng    *engine.Engine
	dt     float64
	groups int
	steps  int
	fps    int

	step    int
	time    float64
	energy  float64
	history []float64
	paused  bool
	err     error
	done    bool

	width int
}

func NewModel(eng *engine.Engine, dt float64, groups, steps, fps int) *Model {
	if fps <= 0 {
		fps = 30
	}
	return &Model{
		eng:     eng,
		dt:      dt,
		groups:  groups,
		steps:   steps,
		fps:     fps,
		history: make([]float64, 0, historyLen),
		width:   80,
	}
}

type tickMsg time.Time

func (m *Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *Model) Init() tea.Cmd { return m.tick() }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.paused = !m.paused
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tickMsg:
		if m.done || m.err != nil {
			return m, nil
		}
		if !m.paused {
			energy, err := m.eng.Step(m.dt, m.groups)
			if err != nil {
				m.err = err
				return m, nil
			}
			m.step++
			m.time += m.dt
			m.energy = energy
			m.history = append(m.history, energy)
			if len(m.history) > historyLen {
				m.history = m.history[1:]
			}
			if m.steps > 0 && m.step >= m.steps {
				m.done = true
			}
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(cyan.Render("ellipsim live") + "\n\n")
	b.WriteString(fmt.Sprintf("%s %s   %s %s\n",
		dim.Render("step"), white.Render(fmt.Sprintf("%d", m.step)),
		dim.Render("t"), white.Render(fmt.Sprintf("%.4f", m.time))))

	ke := m.eng.KineticEnergy()
	b.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n\n",
		dim.Render("potential"), yellow.Render(fmt.Sprintf("%+.6f", m.energy)),
		dim.Render("kinetic"), yellow.Render(fmt.Sprintf("%.6f", ke)),
		dim.Render("total"), green.Render(fmt.Sprintf("%+.6f", m.energy+ke))))

	if len(m.history) > 1 {
		width := m.width - 12
		if width > 100 {
			width = 100
		}
		if width > 10 {
			b.WriteString(asciigraph.Plot(m.history,
				asciigraph.Height(8),
				asciigraph.Width(width),
				asciigraph.Caption("potential energy")))
			b.WriteString("\n")
		}
	}

	switch {
	case m.err != nil:
		b.WriteString("\n" + red.Render("error: "+m.err.Error()) + "\n")
	case m.done:
		b.WriteString("\n" + green.Render("run complete") + dim.Render("  q to quit") + "\n")
	case m.paused:
		b.WriteString("\n" + yellow.Render("paused") + dim.Render("  space to resume, q to quit") + "\n")
	default:
		b.WriteString("\n" + dim.Render("space to pause, q to quit") + "\n")
	}
	return b.String()
}
