package dataprocessing

import (
	"gonum.org/v1/gonum/stat"

	"github.com/franfh599/dashboard-autos/pkg/contracts/domain"
)

// LinearForecast fits volume = Slope*x + Intercept over x = 1..len(points)
// and projects horizon further months after the last point. With fewer than
// two points, or a flat series, the slope is 0 and the intercept is the mean
// volume (0 when there are no points).
func LinearForecast(points []domain.MonthlyPoint, horizon int) domain.Forecast {
	if horizon < 0 {
		horizon = 0
	}

	x := make([]float64, len(points))
	y := make([]float64, len(points))
	for i, p := range points {
		x[i] = float64(i + 1)
		y[i] = p.Volume
	}

	var slope, intercept float64
	switch {
	case len(points) == 0:
	case len(points) == 1 || isFlat(y):
		intercept = stat.Mean(y, nil)
	default:
		alpha, beta := stat.LinearRegression(x, y, nil, false)
		intercept, slope = finiteOrZero(alpha), finiteOrZero(beta)
	}

	forecast := domain.Forecast{Slope: slope, Intercept: intercept}
	if len(points) == 0 || horizon == 0 {
		return forecast
	}

	last := points[len(points)-1].Date
	forecast.Points = make([]domain.ForecastPoint, horizon)
	for h := 1; h <= horizon; h++ {
		idx := len(points) + h
		volume := slope*float64(idx) + intercept
		if volume < 0 {
			volume = 0
		}
		forecast.Points[h-1] = domain.ForecastPoint{
			Index:  idx,
			Date:   last.AddDate(0, h, 0),
			Volume: volume,
		}
	}
	return forecast
}

func isFlat(y []float64) bool {
	for _, v := range y[1:] {
		if v != y[0] {
			return false
		}
	}
	return true
}
