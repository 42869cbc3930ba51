// Package plotting renders trajectories and run comparisons as png images.
package plotting

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// ErrNoData is returned when there is nothing to draw.
var ErrNoData = errors.New("no data to plot")

// Palette used for series and bar groups without an explicit color, in order.
var Palette = []color.Color{
	color.RGBA{R: 31, G: 119, B: 180, A: 255},
	color.RGBA{R: 214, G: 39, B: 40, A: 255},
	color.RGBA{R: 44, G: 160, B: 44, A: 255},
	color.RGBA{R: 255, G: 127, B: 14, A: 255},
}

// Series is one named polyline.
type Series struct {
	Name   string
	Points []r3.Vector
	Color  color.Color
}

// projection selects two coordinates of a position for a 2D view.
type projection struct {
	suffix string
	title  string
	xLabel string
	yLabel string
	xy     func(r3.Vector) (float64, float64)
}

var projections = []projection{
	{"xy", "Top-Down View (XY Plane)", "X (m)", "Y (m)", func(p r3.Vector) (float64, float64) { return p.X, p.Y }},
	{"xz", "Side View (XZ Plane)", "X (m)", "Z (m)", func(p r3.Vector) (float64, float64) { return p.X, p.Z }},
	{"yz", "Front View (YZ Plane)", "Y (m)", "Z (m)", func(p r3.Vector) (float64, float64) { return p.Y, p.Z }},
}

// SaveTrajectoryPlots writes one png per plane projection (XY, XZ, YZ) into dir, named
// <prefix>_<plane>.png, and returns the written paths. Empty series are left out.
func SaveTrajectoryPlots(dir, prefix string, series ...Series) ([]string, error) {
	drawn := make([]Series, 0, len(series))
	for i, s := range series {
		if len(s.Points) == 0 {
			continue
		}
		if s.Color == nil {
			s.Color = Palette[i%len(Palette)]
		}
		drawn = append(drawn, s)
	}
	if len(drawn) == 0 {
		return nil, ErrNoData
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, errors.Wrap(err, "failed to create output dir")
	}

	paths := make([]string, 0, len(projections))
	for _, proj := range projections {
		p := plot.New()
		p.Title.Text = proj.title
		p.X.Label.Text = proj.xLabel
		p.Y.Label.Text = proj.yLabel
		p.Add(plotter.NewGrid())

		for _, s := range drawn {
			pts := make(plotter.XYs, len(s.Points))
			for i, pos := range s.Points {
				pts[i].X, pts[i].Y = proj.xy(pos)
			}
			line, err := plotter.NewLine(pts)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to create line for %v", s.Name)
			}
			line.Color = s.Color
			line.Width = vg.Points(1.5)

			start, err := plotter.NewScatter(pts[:1])
			if err != nil {
				return nil, errors.Wrapf(err, "failed to mark start of %v", s.Name)
			}
			start.GlyphStyle.Color = s.Color
			start.GlyphStyle.Radius = vg.Points(4)
			start.GlyphStyle.Shape = draw.CircleGlyph{}

			p.Add(line, start)
			p.Legend.Add(fmt.Sprintf("%s (%d)", s.Name, len(s.Points)), line)
		}

		path := filepath.Join(dir, fmt.Sprintf("%s_%s.png", prefix, proj.suffix))
		if err := p.Save(10*vg.Inch, 8*vg.Inch, path); err != nil {
			return nil, errors.Wrapf(err, "failed to save %v", path)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// BarGroup is one run's values in a grouped bar chart, one value per category.
type BarGroup struct {
	Name   string
	Values []float64
	Color  color.Color
}

// SaveBarChart writes a grouped bar chart with one bar per group in every category.
func SaveBarChart(path, title string, categories []string, groups ...BarGroup) error {
	if len(groups) == 0 || len(categories) == 0 {
		return ErrNoData
	}
	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = "Value"
	p.Legend.Top = true

	width := vg.Points(20)
	for i, g := range groups {
		if len(g.Values) != len(categories) {
			return errors.Errorf("group %v has %d values for %d categories", g.Name, len(g.Values), len(categories))
		}
		bars, err := plotter.NewBarChart(plotter.Values(g.Values), width)
		if err != nil {
			return errors.Wrapf(err, "failed to create bars for %v", g.Name)
		}
		c := g.Color
		if c == nil {
			c = Palette[i%len(Palette)]
		}
		bars.Color = c
		bars.LineStyle.Width = vg.Length(0)
		bars.Offset = width * vg.Length(float64(i)-float64(len(groups)-1)/2)
		p.Add(bars)
		p.Legend.Add(g.Name, bars)
	}
	p.NominalX(categories...)

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return errors.Wrap(err, "failed to create output dir")
	}
	return errors.Wrapf(p.Save(8*vg.Inch, 6*vg.Inch, path), "failed to save %v", path)
}
