package storage

import (
	"bufio"
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/san-kum/qubesim/internal/dynamo"
	"github.com/san-kum/qubesim/internal/physics"
)

// Series names accepted by ExportPNG and Column.
var Series = []string{"theta", "alpha", "theta_dot", "alpha_dot", "voltage", "reward"}

// Column extracts one named series from res.
func Column(res *dynamo.Result, name string) ([]float64, error) {
	out := make([]float64, len(res.States))
	for i, x := range res.States {
		switch name {
		case "theta":
			out[i] = x[physics.Theta]
		case "alpha":
			out[i] = x[physics.Alpha]
		case "theta_dot":
			out[i] = x[physics.ThetaDot]
		case "alpha_dot":
			out[i] = x[physics.AlphaDot]
		case "voltage":
			if i < len(res.Controls) && len(res.Controls[i]) > 0 {
				out[i] = res.Controls[i][0]
			}
		case "reward":
			if i < len(res.Rewards) {
				out[i] = res.Rewards[i]
			}
		default:
			return nil, fmt.Errorf("unknown series: %s", name)
		}
	}
	return out, nil
}

var seriesColors = []color.RGBA{
	{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
	{R: 0xd6, G: 0x27, B: 0x28, A: 0xff},
	{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
	{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff},
}

// ExportPNG plots the named series of a stored run against time.
func (s *Store) ExportPNG(runID, path string, series ...string) error {
	res, err := s.LoadTrace(runID)
	if err != nil {
		return err
	}
	if len(series) == 0 {
		series = []string{"theta", "alpha"}
	}

	p := plot.New()
	p.Title.Text = "Rotary pendulum " + runID
	p.X.Label.Text = "time (s)"
	p.Legend.Top = true

	for i, name := range series {
		ys, err := Column(res, name)
		if err != nil {
			return err
		}
		pts := make(plotter.XYs, len(ys))
		for j := range ys {
			pts[j].X = res.Times[j]
			pts[j].Y = ys[j]
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("cannot create line plot: %w", err)
		}
		line.LineStyle.Width = vg.Points(1.5)
		line.LineStyle.Color = seriesColors[i%len(seriesColors)]
		p.Add(line)
		p.Legend.Add(name, line)
	}

	// Resets as dashed verticals spanning the autoscaled y range.
	lo, hi := p.Y.Min, p.Y.Max
	for _, r := range res.Resets {
		if r >= len(res.Times) {
			continue
		}
		t := res.Times[r]
		marker, err := plotter.NewLine(plotter.XYs{{X: t, Y: lo}, {X: t, Y: hi}})
		if err != nil {
			return err
		}
		marker.LineStyle.Color = color.Gray{Y: 0x99}
		marker.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
		p.Add(marker)
	}
	return savePNG(p, 10, 4, path)
}

func savePNG(p *plot.Plot, widthIn, heightIn float64, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create directory: %w", err)
	}

	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(widthIn)*vg.Inch, vg.Length(heightIn)*vg.Inch),
		vgimg.UseDPI(150),
	)
	p.Draw(draw.New(c))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create png: %w", err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	png := vgimg.PngCanvas{Canvas: c}
	if _, err := png.WriteTo(bw); err != nil {
		return fmt.Errorf("cannot write png: %w", err)
	}
	return bw.Flush()
}
