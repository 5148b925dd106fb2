// Package report renders training results for human inspection.
package report

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/andresilva/loadcast/internal/dataset"
)

// WriteForecastPNG plots the observed test series against the model's
// one-step-ahead predictions. Predictions start lookback steps into the
// series, since the first window has no earlier history.
func WriteForecastPNG(path string, test *dataset.Series, preds []float64, lookback int) error {
	if lookback+len(preds) > test.Len() {
		return fmt.Errorf("report: %d predictions at offset %d exceed series length %d",
			len(preds), lookback, test.Len())
	}

	p := plot.New()
	p.Title.Text = "Electricity load: observed vs predicted"
	p.X.Label.Text = "time"
	p.Y.Label.Text = "load (kW)"
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}

	observed := make(plotter.XYs, test.Len())
	for i := range observed {
		observed[i] = plotter.XY{X: float64(test.Timestamps[i].Unix()), Y: test.Values[i]}
	}
	obsLine, err := plotter.NewLine(observed)
	if err != nil {
		return err
	}
	obsLine.Color = color.RGBA{R: 120, G: 120, B: 120, A: 255}
	p.Add(obsLine)
	p.Legend.Add("observed", obsLine)

	predXY := make(plotter.XYs, len(preds))
	for i, v := range preds {
		predXY[i] = plotter.XY{X: float64(test.Timestamps[lookback+i].Unix()), Y: v}
	}
	predLine, err := plotter.NewLine(predXY)
	if err != nil {
		return err
	}
	predLine.Color = color.RGBA{R: 200, G: 30, B: 30, A: 255}
	predLine.Width = vg.Points(1.2)
	p.Add(predLine)
	p.Legend.Add("predicted", predLine)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return p.Save(10*vg.Inch, 4*vg.Inch, path)
}

// WriteBasisPNG plots every repeating basis function sampled across
// [min, max], one curve per basis, showing how the seasonal encoding
// covers the cycle.
func WriteBasisPNG(path string, rb *dataset.RepeatingBasis, min, max float64) error {
	if max <= min {
		return fmt.Errorf("report: invalid basis plot range [%g, %g]", min, max)
	}

	const samples = 365
	xs := make([]float64, samples)
	for i := range xs {
		xs[i] = min + (max-min)*float64(i)/float64(samples-1)
	}
	rows := rb.TransformAll(xs)

	p := plot.New()
	p.Title.Text = "Seasonal basis functions"
	p.X.Label.Text = "day of year"
	p.Y.Label.Text = "activation"

	for j := 0; j < rb.Periods(); j++ {
		xys := make(plotter.XYs, samples)
		for i := range xs {
			xys[i] = plotter.XY{X: xs[i], Y: rows[i][j]}
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return err
		}
		// cycle hues across the bases
		line.Color = color.RGBA{
			R: uint8(40 + (j*67)%200),
			G: uint8(40 + (j*131)%200),
			B: uint8(40 + (j*191)%200),
			A: 255,
		}
		p.Add(line)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return p.Save(8*vg.Inch, 4*vg.Inch, path)
}

// WriteHistoryPNG plots validation MAE over epochs.
func WriteHistoryPNG(path string, epochs []int, maes []float64) error {
	if len(epochs) != len(maes) {
		return fmt.Errorf("report: %d epochs for %d MAE values", len(epochs), len(maes))
	}

	p := plot.New()
	p.Title.Text = "Validation MAE"
	p.X.Label.Text = "epoch"
	p.Y.Label.Text = "MAE"

	xys := make(plotter.XYs, len(epochs))
	for i := range epochs {
		xys[i] = plotter.XY{X: float64(epochs[i]), Y: maes[i]}
	}
	line, err := plotter.NewLine(xys)
	if err != nil {
		return err
	}
	line.Color = color.RGBA{R: 20, G: 80, B: 200, A: 255}
	p.Add(line)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}
