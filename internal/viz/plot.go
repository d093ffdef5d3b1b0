// Package viz renders convergence plots for optimization runs.
package viz

import (
	"fmt"
	"image/color"
	"io"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Series is a named line on a convergence plot, one value per generation.
type Series struct {
	Name   string
	Values []float64
}

var palette = []color.RGBA{
	{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}, // blue
	{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff}, // orange
	{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff}, // green
	{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}, // red
}

// ConvergencePlot builds a cost-over-generation line plot.
// The X axis is the generation index, the Y axis the objective value.
func ConvergencePlot(title string, series ...Series) (*plot.Plot, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("no series to plot")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Generation"
	p.Y.Label.Text = "Cost"
	p.Add(plotter.NewGrid())

	for i, s := range series {
		if len(s.Values) == 0 {
			return nil, fmt.Errorf("series %q is empty", s.Name)
		}
		pts := make(plotter.XYs, len(s.Values))
		for j, v := range s.Values {
			pts[j].X = float64(j)
			pts[j].Y = v
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("failed to build line for %q: %w", s.Name, err)
		}
		line.Color = palette[i%len(palette)]
		p.Add(line)
		p.Legend.Add(s.Name, line)
	}
	p.Legend.Top = true

	return p, nil
}

// WritePNG renders a convergence plot to w as a fixed-size PNG.
func WritePNG(w io.Writer, title string, series ...Series) error {
	p, err := ConvergencePlot(title, series...)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(6*vg.Inch, 4*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("failed to create PNG writer: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("failed to render PNG: %w", err)
	}
	return nil
}

// SavePNG writes the convergence plot to a file.
func SavePNG(path, title string, series ...Series) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create plot file: %w", err)
	}
	if err := WritePNG(f, title, series...); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
