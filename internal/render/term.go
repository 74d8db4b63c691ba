package render

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

const (
	termWidth   = 70
	termHeight  = 20
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
	trailLength = 40
)

// Term draws frames as ASCII art on a plain terminal.
type Term struct {
	out    io.Writer
	gate   gate
	view   viewport
	canvas [][]rune
	trail  [][2]int
	done   chan struct{}
	once   sync.Once
}

// NewTerm writes to out, or stdout when out is nil.
func NewTerm(out io.Writer, fps int) *Term {
	if out == nil {
		out = os.Stdout
	}
	canvas := make([][]rune, termHeight)
	for i := range canvas {
		canvas[i] = make([]rune, termWidth)
	}
	t := &Term{
		out:    out,
		gate:   newGate(fps),
		view:   newViewport(termWidth, termHeight, 2),
		canvas: canvas,
		trail:  make([][2]int, 0, trailLength),
		done:   make(chan struct{}),
	}
	fmt.Fprint(out, hideCursor)
	return t
}

func (t *Term) Draw(f Frame) error {
	if !t.gate.allow() {
		return nil
	}
	t.clear()

	pivot, arm, bob := rigPixels(f, t.view)
	t.trail = append(t.trail, bob)
	if len(t.trail) > trailLength {
		t.trail = t.trail[1:]
	}
	for i, p := range t.trail {
		if i < len(t.trail)/2 {
			t.set(p[0], p[1], '.')
		} else {
			t.set(p[0], p[1], 'o')
		}
	}

	t.line(pivot, arm, '=')
	t.line(arm, bob, '|')
	t.set(pivot[0], pivot[1], '+')
	t.set(bob[0], bob[1], 'O')

	_, err := io.WriteString(t.out, t.render(f))
	return err
}

func (t *Term) clear() {
	for y := range t.canvas {
		for x := range t.canvas[y] {
			t.canvas[y][x] = ' '
		}
	}
}

func (t *Term) set(x, y int, c rune) {
	if x >= 0 && x < termWidth && y >= 0 && y < termHeight {
		t.canvas[y][x] = c
	}
}

func (t *Term) line(a, b [2]int, c rune) {
	bresenham(a[0], a[1], b[0], b[1], func(x, y int) { t.set(x, y, c) })
}

func (t *Term) render(f Frame) string {
	var b strings.Builder
	b.WriteString(clearScreen)
	fmt.Fprintf(&b, "  qube [%s] ep=%d t=%.2fs  %s\n", f.Backend, f.Episode, f.Time, Phase(f.Alpha))
	b.WriteString("  " + strings.Repeat("-", termWidth) + "\n")
	for _, row := range t.canvas {
		b.WriteString("  ")
		b.WriteString(string(row))
		b.WriteString("\n")
	}
	b.WriteString("  " + strings.Repeat("-", termWidth) + "\n")
	fmt.Fprintf(&b, "  theta=%+.2f alpha=%+.2f V=%+.2f r=%.3f\n", f.Theta, f.Alpha, f.Voltage, f.Reward)
	return b.String()
}

// Done never fires before Close; a plain terminal has no quit key.
func (t *Term) Done() <-chan struct{} { return t.done }

func (t *Term) Close() error {
	t.once.Do(func() {
		close(t.done)
		fmt.Fprint(t.out, showCursor)
	})
	return nil
}
