// Package plot renders temperature profiles as PNG images.
package plot

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"

	"github.com/chrissnell/hydrosphere/pkg/hydrosphere"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Default image size.
const (
	Width  = 6 * vg.Inch
	Height = 8 * vg.Inch
)

var iceColor = color.RGBA{G: 128, A: 255}

// ProfilePlot draws the final profile of r against depth with the surface at
// the top, plus a dashed line and label at the highest ice extent.
func ProfilePlot(r *hydrosphere.Result) (*plot.Plot, error) {
	if len(r.Temperature) == 0 || len(r.Temperature) != len(r.Depths) {
		return nil, fmt.Errorf("profile has %d temperatures for %d depths", len(r.Temperature), len(r.Depths))
	}

	p := newDepthPlot("Water Column at Finish")

	line, err := profileLine(r.Temperature, r.Depths)
	if err != nil {
		return nil, err
	}
	p.Add(line)
	p.Legend.Add("Water Temperature", line)

	lo, hi := floats.Min(r.Temperature), floats.Max(r.Temperature)
	if lo == hi {
		lo, hi = lo-1, hi+1
	}

	ice, err := plotter.NewLine(plotter.XYs{{X: lo, Y: r.HighestIceExtent}, {X: hi, Y: r.HighestIceExtent}})
	if err != nil {
		return nil, err
	}
	ice.Color = iceColor
	ice.Dashes = []vg.Length{vg.Points(6), vg.Points(3)}
	p.Add(ice)
	p.Legend.Add("Ice Depth", ice)

	label, err := plotter.NewLabels(plotter.XYLabels{
		XYs:    plotter.XYs{{X: r.Temperature[0], Y: r.HighestIceExtent}},
		Labels: []string{fmt.Sprintf("Ice Depth: %.0f m", r.HighestIceExtent)},
	})
	if err != nil {
		return nil, err
	}
	p.Add(label)

	return p, nil
}

// SavePNG renders r to a PNG file at path.
func SavePNG(r *hydrosphere.Result, path string) error {
	p, err := ProfilePlot(r)
	if err != nil {
		return err
	}
	return p.Save(Width, Height, path)
}

// WriteTo renders r as PNG to w.
func WriteTo(w io.Writer, r *hydrosphere.Result) error {
	p, err := ProfilePlot(r)
	if err != nil {
		return err
	}

	wt, err := p.WriterTo(Width, Height, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

// SaveFrames writes one PNG per frame into dir, named frame_00000.png and
// up. All frames share the temperature axis of the whole sequence so they
// can be stitched into an animation.
func SaveFrames(dir string, depths []float64, frames []hydrosphere.Profile) ([]string, error) {
	if len(frames) == 0 {
		return nil, errors.New("no frames to save")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create frames directory: %w", err)
	}

	lo, hi := floats.Min(frames[0]), floats.Max(frames[0])
	for _, f := range frames[1:] {
		lo = min(lo, floats.Min(f))
		hi = max(hi, floats.Max(f))
	}

	paths := make([]string, 0, len(frames))
	for i, f := range frames {
		if len(f) != len(depths) {
			return paths, fmt.Errorf("frame %d has %d temperatures for %d depths", i, len(f), len(depths))
		}

		p := newDepthPlot(fmt.Sprintf("Water Column, frame %d", i))
		p.X.Min, p.X.Max = lo, hi

		line, err := profileLine(f, depths)
		if err != nil {
			return paths, err
		}
		p.Add(line)

		path := filepath.Join(dir, fmt.Sprintf("frame_%05d.png", i))
		if err := p.Save(Width, Height, path); err != nil {
			return paths, fmt.Errorf("failed to save frame %d: %w", i, err)
		}
		paths = append(paths, path)
	}

	return paths, nil
}

func newDepthPlot(title string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Temperature (°C)"
	p.Y.Label.Text = "Depth (m)"
	p.Y.Scale = plot.InvertedScale{Normalizer: plot.LinearScale{}}
	p.Legend.Top = true
	p.Add(plotter.NewGrid())
	return p
}

func profileLine(t hydrosphere.Profile, depths []float64) (*plotter.Line, error) {
	xys := make(plotter.XYs, len(t))
	for i := range t {
		xys[i].X = t[i]
		xys[i].Y = depths[i]
	}

	line, err := plotter.NewLine(xys)
	if err != nil {
		return nil, err
	}
	line.LineStyle.Width = vg.Points(1.5)
	line.LineStyle.Color = plotutil.Color(0)
	return line, nil
}
