package recordlog

import (
	"errors"
	"fmt"
	"image/color"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

var (
	xColor       = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	yColor       = color.RGBA{R: 255, G: 127, B: 14, A: 255}
	headingColor = color.RGBA{R: 44, G: 160, B: 44, A: 255}
)

// WritePlot saves a PNG with the tracked position over time on top and the
// heading over time below. The time axis is seconds since the first record.
func WritePlot(records []Record, path string) error {
	if len(records) == 0 {
		return errors.New("recordlog: no records to plot")
	}
	start := records[0].Timestamp

	var xs, ys, hs plotter.XYs
	for _, r := range records {
		t := r.Timestamp.Sub(start).Seconds()
		if r.Position != nil {
			xs = append(xs, plotter.XY{X: t, Y: float64(r.Position.X)})
			ys = append(ys, plotter.XY{X: t, Y: float64(r.Position.Y)})
		}
		if r.Orientation != nil {
			hs = append(hs, plotter.XY{X: t, Y: r.Orientation.Heading})
		}
	}

	pPos := plot.New()
	pPos.Title.Text = "Tracked position"
	pPos.X.Label.Text = "Time (s)"
	pPos.Y.Label.Text = "Pixel"
	if err := addScatter(pPos, xs, "x", xColor); err != nil {
		return err
	}
	if err := addScatter(pPos, ys, "y", yColor); err != nil {
		return err
	}

	pHead := plot.New()
	pHead.Title.Text = "Heading"
	pHead.X.Label.Text = "Time (s)"
	pHead.Y.Label.Text = "Degrees"
	pHead.Y.Min, pHead.Y.Max = 0, 360
	if err := addScatter(pHead, hs, "heading", headingColor); err != nil {
		return err
	}

	const width, height = 12 * vg.Inch, 8 * vg.Inch
	img := vgimg.New(width, height)
	dc := draw.New(img)
	tiles := draw.Tiles{Rows: 2, Cols: 1, PadX: vg.Millimeter, PadY: vg.Millimeter * 4}
	plots := [][]*plot.Plot{{pPos}, {pHead}}
	canvases := plot.Align(plots, tiles, dc)
	for i := range plots {
		plots[i][0].Draw(canvases[i][0])
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create plot %s: %w", path, err)
	}
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("write plot %s: %w", path, err)
	}
	return f.Close()
}

func addScatter(p *plot.Plot, pts plotter.XYs, name string, c color.Color) error {
	if len(pts) == 0 {
		return nil
	}
	sc, err := plotter.NewScatter(pts)
	if err != nil {
		return err
	}
	sc.GlyphStyle.Color = c
	sc.GlyphStyle.Radius = vg.Points(1.5)
	p.Add(sc)
	p.Legend.Add(name, sc)
	return nil
}
