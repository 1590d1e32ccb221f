package report

import (
	"bytes"
	"errors"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/franfh599/dashboard-autos/pkg/contracts/domain"
)

// ErrNoChartData is returned when there are no points to draw.
var ErrNoChartData = errors.New("no monthly points to chart")

// TrendChart draws monthly volume as a PNG of the given size in millimetres.
func TrendChart(points []domain.MonthlyPoint, widthMM, heightMM float64) ([]byte, error) {
	if len(points) == 0 {
		return nil, ErrNoChartData
	}

	p := plot.New()
	p.Title.Text = "Tendencia mensual de unidades"
	p.Title.TextStyle.Font.Size = vg.Points(12)
	p.X.Label.Text = "Mes"
	p.Y.Label.Text = "Unidades"
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01"}

	xys := make(plotter.XYs, len(points))
	for i, pt := range points {
		xys[i].X = float64(pt.Date.Unix())
		xys[i].Y = pt.Volume
	}

	line, err := plotter.NewLine(xys)
	if err != nil {
		return nil, err
	}
	line.Color = color.RGBA{R: 30, G: 55, B: 153, A: 255}
	line.Width = vg.Points(2)

	p.Add(line, plotter.NewGrid())

	wt, err := p.WriterTo(vg.Length(widthMM)*vg.Millimeter, vg.Length(heightMM)*vg.Millimeter, "png")
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
