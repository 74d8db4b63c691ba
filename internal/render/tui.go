package render

import (
	"context"
	"errors"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

const (
	tuiCanvasWidth  = 48
	tuiCanvasHeight = 18
	historyLen      = 120
	tuiTrail        = 80
)

type frameMsg Frame

// tuiModel is the bubbletea model behind TUI. It only ever sees frames by
// message.
type tuiModel struct {
	frame   Frame
	seen    bool
	canvas  *Canvas
	view    viewport
	trail   [][2]int
	history []float64
}

func newTUIModel() tuiModel {
	return tuiModel{
		canvas:  NewCanvas(tuiCanvasWidth, tuiCanvasHeight),
		view:    newViewport(tuiCanvasWidth*2, tuiCanvasHeight*4, 1),
		history: make([]float64, 0, historyLen),
	}
}

func (m tuiModel) Init() tea.Cmd { return nil }

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case frameMsg:
		f := Frame(msg)
		if m.seen && f.Episode != m.frame.Episode {
			m.trail = m.trail[:0]
		}
		m.frame, m.seen = f, true
		m.history = append(m.history, degrees(f.Alpha))
		if len(m.history) > historyLen {
			m.history = m.history[len(m.history)-historyLen:]
		}
		m.draw()
	}
	return m, nil
}

func (m *tuiModel) draw() {
	m.canvas.Clear()
	pivot, arm, bob := rigPixels(m.frame, m.view)

	m.trail = append(m.trail, bob)
	if len(m.trail) > tuiTrail {
		m.trail = m.trail[len(m.trail)-tuiTrail:]
	}
	for _, p := range m.trail {
		m.canvas.Set(p[0], p[1])
	}

	m.canvas.Disc(pivot[0], pivot[1], 1)
	m.canvas.Line(pivot[0], pivot[1], arm[0], arm[1])
	m.canvas.Line(arm[0], arm[1], bob[0], bob[1])
	m.canvas.Disc(bob[0], bob[1], 2)
}

func (m tuiModel) View() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render("QUBE-SERVO") + "\n")
	if !m.seen {
		s.WriteString("waiting for first frame\n")
	} else {
		s.WriteString(phaseBadge(m.frame.Alpha) + "\n\n")
		s.WriteString(statsLines(m.frame))
	}
	if len(m.history) > 1 {
		chart := asciigraph.Plot(m.history,
			asciigraph.Height(5),
			asciigraph.Width(30),
			asciigraph.LowerBound(-180),
			asciigraph.UpperBound(180),
			asciigraph.Precision(0),
			asciigraph.Caption("alpha (deg)"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}
	s.WriteString(helpStyle.Render("Q: quit"))

	canvasView := canvasStyle.Render(m.canvas.String())
	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
}

// TUI runs a bubbletea program on its own goroutine and feeds it frames.
type TUI struct {
	prog *tea.Program
	gate gate
	done chan struct{}
	err  error
	once sync.Once
}

// NewTUI starts the program. Cancelling ctx stops it.
func NewTUI(ctx context.Context, fps int, opts ...tea.ProgramOption) *TUI {
	opts = append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}, opts...)
	t := &TUI{
		prog: tea.NewProgram(newTUIModel(), opts...),
		gate: newGate(fps),
		done: make(chan struct{}),
	}
	go func() {
		_, err := t.prog.Run()
		t.err = err
		close(t.done)
	}()
	return t
}

func (t *TUI) Draw(f Frame) error {
	select {
	case <-t.done:
		return nil
	default:
	}
	if !t.gate.allow() {
		return nil
	}
	t.prog.Send(frameMsg(f))
	return nil
}

func (t *TUI) Done() <-chan struct{} { return t.done }

// Close quits the program and waits for the terminal to be restored.
func (t *TUI) Close() error {
	t.once.Do(t.prog.Quit)
	<-t.done
	if errors.Is(t.err, tea.ErrProgramKilled) {
		return nil
	}
	return t.err
}
