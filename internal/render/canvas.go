package render

import (
	"math"
	"strings"
)

// Braille cells hold 2x4 dots:
//
//	1 4
//	2 5
//	3 6
//	7 8
const brailleBlank = 0x2800

var dotBits = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a braille dot matrix. Coordinates are in dots, so the drawable
// area is (Width*2) x (Height*4).
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{Width: w, Height: h, Grid: make([][]rune, h)}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= dotBits[y%4][x%2]
}

// IsSet reports whether the dot at (x, y) is on.
func (c *Canvas) IsSet(x, y int) bool {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return false
	}
	return c.Grid[y/4][x/2]&dotBits[y%4][x%2] != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
		}
	}
}

// Line draws a Bresenham line between two dots.
func (c *Canvas) Line(x0, y0, x1, y1 int) {
	bresenham(x0, y0, x1, y1, c.Set)
}

// Disc fills a small square blob centred on (x, y).
func (c *Canvas) Disc(x, y, r int) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			c.Set(x+dx, y+dy)
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for i, row := range c.Grid {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(string(row))
	}
	return b.String()
}

func bresenham(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx, dy := absInt(x1-x0), absInt(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx - dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// viewport maps projected scene points onto a pixel grid with y pointing
// down and the arm pivot at the centre.
type viewport struct {
	w, h   int
	sx, sy float64
}

// sceneExtent is the half-size in metres that a viewport always shows.
const sceneExtent = 0.26

// newViewport fits the scene into w x h pixels whose height is aspect times
// their width.
func newViewport(w, h int, aspect float64) viewport {
	s := math.Min(float64(w), float64(h)*aspect) / 2 / sceneExtent
	return viewport{w: w, h: h, sx: s, sy: s / aspect}
}

func (v viewport) pixel(p Point) (int, int) {
	x := float64(v.w)/2 + p.X*v.sx
	y := float64(v.h)/2 - p.Y*v.sy
	return int(math.Round(x)), int(math.Round(y))
}

// rigPixels returns the pivot, arm tip and bob of f on v.
func rigPixels(f Frame, v viewport) (pivot, arm, bob [2]int) {
	a, b := f.Rig()
	pivot[0], pivot[1] = v.pixel(Project(Vec3{}))
	arm[0], arm[1] = v.pixel(Project(a))
	bob[0], bob[1] = v.pixel(Project(b))
	return pivot, arm, bob
}
