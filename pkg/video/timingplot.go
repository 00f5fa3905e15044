package video

import (
	"errors"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

//WriteTimingPlot saves a chart of per frame processing time and its smoothed average (ms). The format follows path's extension
func WriteTimingPlot(path string, samples []TimingSample) error {
	if len(samples) == 0 {
		return errors.New("WriteTimingPlot: No samples to plot")
	}

	p := plot.New()
	p.Title.Text = "Frame Processing Time"
	p.X.Label.Text = "Frame"
	p.Y.Label.Text = "Time (ms)"

	rawPts := make(plotter.XYs, 0, len(samples))
	smoothPts := make(plotter.XYs, 0, len(samples))
	for _, s := range samples {
		rawPts = append(rawPts, plotter.XY{X: float64(s.Frame), Y: float64(s.Elapsed.Microseconds()) / 1000})
		smoothPts = append(smoothPts, plotter.XY{X: float64(s.Frame), Y: s.Smoothed * 1000})
	}

	rawLine, err := plotter.NewLine(rawPts)
	if err != nil {
		return fmt.Errorf("WriteTimingPlot: Could not build line, got '%w'", err)
	}
	rawLine.Color = color.RGBA{R: 160, G: 160, B: 160, A: 255}
	rawLine.Width = vg.Points(1)

	smoothLine, err := plotter.NewLine(smoothPts)
	if err != nil {
		return fmt.Errorf("WriteTimingPlot: Could not build line, got '%w'", err)
	}
	smoothLine.Color = color.RGBA{R: 220, A: 255}
	smoothLine.Width = vg.Points(2)

	p.Add(rawLine, smoothLine)
	p.Legend.Add("per frame", rawLine)
	p.Legend.Add("smoothed", smoothLine)
	p.Legend.Top = true

	if err := p.Save(10*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("WriteTimingPlot: Could not save '%s', got '%w'", path, err)
	}

	return nil
}
