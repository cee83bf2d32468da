// Package export writes session snapshots as JSON and renders frontiers as
// PNG charts.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/alexshd/dseframe"
)

// ErrNothingToPlot means the snapshot has no points to draw.
var ErrNothingToPlot = errors.New("nothing to plot")

// WriteJSON encodes snap as indented JSON.
func WriteJSON(w io.Writer, snap dseframe.Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

// WriteSnapshot writes snap as JSON to path through a temporary file in the
// same directory and a rename, so readers never see a partial file.
func WriteSnapshot(path string, snap dseframe.Snapshot) error {
	return writeAtomic(path, func(w io.Writer) error {
		return WriteJSON(w, snap)
	})
}

// WritePNG renders snap to a PNG file at path.
func WritePNG(path string, snap dseframe.Snapshot, opts PlotOptions) error {
	return writeAtomic(path, func(w io.Writer) error {
		return RenderPNG(w, snap, opts)
	})
}

func writeAtomic(path string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// PlotOptions controls RenderPNG.
type PlotOptions struct {
	Width  int // Default: 1024
	Height int // Default: 768
	Title  string

	// ShowAll adds every ingested point of the enabled groups as dots.
	// Otherwise only frontiers are drawn.
	ShowAll bool
}

// DefaultPlotOptions returns a 1024x768 frontier-only chart.
func DefaultPlotOptions() PlotOptions {
	return PlotOptions{Width: 1024, Height: 768}
}

var palette = []drawing.Color{
	chart.ColorBlue,
	chart.ColorGreen,
	chart.ColorRed,
	chart.ColorOrange,
	chart.ColorCyan,
	chart.ColorYellow,
	chart.ColorAlternateGray,
}

// RenderPNG draws the global frontier and the frontier of every enabled
// group. Axes start at zero and end just past the largest ingested values.
func RenderPNG(w io.Writer, snap dseframe.Snapshot, opts PlotOptions) error {
	if opts.Width <= 0 {
		opts.Width = DefaultPlotOptions().Width
	}
	if opts.Height <= 0 {
		opts.Height = DefaultPlotOptions().Height
	}

	var series []chart.Series
	for i, g := range snap.Groups {
		if !g.Enabled {
			continue
		}
		col := palette[i%len(palette)]

		if opts.ShowAll && len(g.Points) > 0 {
			xs, ys := split(g.Points)
			series = append(series, chart.ContinuousSeries{
				Name:    g.Key.String() + " (all)",
				XValues: xs,
				YValues: ys,
				Style:   dotStyle(col.WithAlpha(96)),
			})
		}
		if len(g.Frontier) > 0 {
			xs, ys := split(g.Frontier)
			series = append(series, chart.ContinuousSeries{
				Name:    g.Key.String(),
				XValues: xs,
				YValues: ys,
				Style:   lineStyle(col, 1.5),
			})
		}
	}

	if len(snap.GlobalFrontier) > 0 {
		xs, ys := split(snap.GlobalFrontier)
		series = append(series, chart.ContinuousSeries{
			Name:    "global",
			XValues: xs,
			YValues: ys,
			Style:   lineStyle(chart.ColorBlack, 3),
		})
	}

	if len(series) == 0 {
		return ErrNothingToPlot
	}

	ch := chart.Chart{
		Title:      opts.Title,
		Width:      opts.Width,
		Height:     opts.Height,
		Background: chart.Style{Padding: chart.Box{Top: 20, Left: 20, Right: 20, Bottom: 20}},
		XAxis: chart.XAxis{
			Name:  snap.Config.XVar,
			Range: axisRange(snap.Bounds.XMin, snap.Bounds.XMax),
		},
		YAxis: chart.YAxis{
			Name:  snap.Config.YVar,
			Range: axisRange(snap.Bounds.YMin, snap.Bounds.YMax),
		},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	if err := ch.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

// axisRange pads the nonzero ends of [lo, hi] by 5% of the span. Bounds
// always hold the origin; an empty span still gets a unit range.
func axisRange(lo, hi float64) *chart.ContinuousRange {
	pad := 0.05 * (hi - lo)
	if pad <= 0 {
		return &chart.ContinuousRange{Min: lo, Max: lo + 1}
	}
	if lo < 0 {
		lo -= pad
	}
	if hi > 0 {
		hi += pad
	}
	return &chart.ContinuousRange{Min: lo, Max: hi}
}

func split(points []dseframe.Point) (xs, ys []float64) {
	xs = make([]float64, len(points))
	ys = make([]float64, len(points))
	for i, p := range points {
		xs[i], ys[i] = p.X, p.Y
	}
	return xs, ys
}

func lineStyle(col drawing.Color, width float64) chart.Style {
	return chart.Style{
		StrokeWidth: width,
		StrokeColor: col,
		DotWidth:    3,
		DotColor:    col,
	}
}

// dotStyle renders points only, no connecting line.
func dotStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    2,
		DotColor:    col,
	}
}
