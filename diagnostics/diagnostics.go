// Package diagnostics plots the residual-vs-AOT curve the aerosol
// retriever sweeps over for one pixel, for debugging convergence. It is
// optional tooling that never runs as part of a retrieval itself (the
// retriever never logs or plots); callers
// invoke PlotResidualCurve separately, after the fact, against the same
// inputs a Retrieve call used.
package diagnostics

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/developmentseed/espa-surface-reflectance/aerosol"
	"github.com/developmentseed/espa-surface-reflectance/lut"
	"github.com/developmentseed/espa-surface-reflectance/satellite"
)

// PlotResidualCurve evaluates the residual at every point of lut.AotGrid
// for the given pixel and writes a PNG line plot to path, marking every
// AOT-grid point where testth fires (if any) with a separate scatter
// series. It is read-only with respect to the retrieval core: it calls
// aerosol.ResidualAt instead of aerosol.Retrieve, so it never perturbs the
// warm-start state a real retrieval would use.
func PlotResidualCurve(path string, in aerosol.PixelInputs, cfg satellite.Config, store *lut.Store, useSemiEmpirical bool) error {
	pts := make(plotter.XYs, 0, len(lut.AotGrid))
	var testthPts plotter.XYs

	for _, aot := range lut.AotGrid {
		residual, testth, err := aerosol.ResidualAt(in, cfg, store, useSemiEmpirical, aot)
		if err != nil {
			return fmt.Errorf("diagnostics: residual at aot=%v: %w", aot, err)
		}
		pts = append(pts, plotter.XY{X: aot, Y: residual})
		if testth {
			testthPts = append(testthPts, plotter.XY{X: aot, Y: residual})
		}
	}

	p, err := plot.New()
	if err != nil {
		return fmt.Errorf("diagnostics: creating plot: %w", err)
	}
	p.Title.Text = "Aerosol retrieval residual vs. AOT-550nm"
	p.X.Label.Text = "AOT-550nm"
	p.Y.Label.Text = "residual"

	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("diagnostics: building residual line: %w", err)
	}
	line.Color = color.NRGBA{R: 0, G: 0, B: 0, A: 255}
	p.Add(line)
	p.Legend.Add("residual", line)

	if len(testthPts) > 0 {
		scatter, err := plotter.NewScatter(testthPts)
		if err != nil {
			return fmt.Errorf("diagnostics: building testth markers: %w", err)
		}
		scatter.Color = color.NRGBA{R: 200, G: 0, B: 0, A: 255}
		scatter.Radius = vg.Points(2.5)
		p.Add(scatter)
		p.Legend.Add("testth fired", scatter)
	}

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("diagnostics: saving %s: %w", path, err)
	}
	return nil
}
