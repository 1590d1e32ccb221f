package services

import (
	"context"
	"sort"
	"strings"

	"github.com/franfh599/dashboard-autos/internal/dataprocessing"
	apperrors "github.com/franfh599/dashboard-autos/internal/errors"
	"github.com/franfh599/dashboard-autos/pkg/contracts/domain"
)

// competitorCount sizes the concentration measures.
const competitorCount = 5

// resolveParams fills the defaults of a selection: the configured view mode
// and top N, the BRAND dimension and, when no year is selected, every year
// of the dataset. Brands are matched in canonical form.
func (s *MarketService) resolveParams(ds *Dataset, p domain.ViewParams) domain.ViewParams {
	if p.Mode == "" {
		p.Mode = s.config.DefaultMode
	}
	if p.Dimension == "" {
		p.Dimension = domain.DimensionBrand
	}
	if p.TopN <= 0 {
		p.TopN = s.config.DefaultTopN
	}
	p.Brand = dataprocessing.CanonicalBrand(strings.ToUpper(strings.TrimSpace(p.Brand)))

	if len(p.Years) == 0 {
		p.Years = ds.Table.Years()
	} else {
		p.Years = uniqueSorted(p.Years)
	}
	return p
}

func uniqueSorted(years []int) []int {
	seen := make(map[int]bool, len(years))
	out := make([]int, 0, len(years))
	for _, y := range years {
		if !seen[y] {
			seen[y] = true
			out = append(out, y)
		}
	}
	sort.Ints(out)
	return out
}

// scope narrows the dataset for a selection. full is the brand slice (or
// the whole table), windowed applies the view mode to it and selected keeps
// the selected years of windowed.
func scope(ds *Dataset, p domain.ViewParams) (full, windowed, selected *dataprocessing.Table) {
	full = ds.Table
	if p.Brand != "" {
		full = full.FilterCategory(domain.DimensionBrand, p.Brand)
	}
	windowed = dataprocessing.ApplyView(full, ds.MaxDate, p.Mode)
	selected = windowed.FilterYears(p.Years)
	return full, windowed, selected
}

// yoyResult tells a selection of fewer than two years apart from selected
// years that hold no rows on either side.
func yoyResult(full, windowed *dataprocessing.Table, d domain.Dimension, years []int) YoYResult {
	if len(years) < 2 {
		return YoYResult{Status: YoYStatusInsufficientSelection}
	}
	table := dataprocessing.YoY(full, windowed, d, years)
	if table == nil {
		return YoYResult{Status: YoYStatusNoData}
	}
	return YoYResult{Status: YoYStatusOK, Table: table}
}

// Macro computes the country-level view.
func (s *MarketService) Macro(ctx context.Context, params domain.ViewParams) (*MacroView, error) {
	ds, err := s.dataset(ctx)
	if err != nil {
		return nil, err
	}
	p := s.resolveParams(ds, params)

	return memo(ctx, s, ds, "macro", p, func() *MacroView {
		full, windowed, selected := scope(ds, p)
		summary := dataprocessing.Summarize(selected, s.config.Summary)
		monthly := dataprocessing.Monthly(selected)

		view := &MacroView{
			Params:           p,
			Rows:             selected.Len(),
			TotalVolume:      summary.TotalVolume,
			TotalValue:       summary.TotalValue,
			AverageUnitValue: summary.AverageUnitValue,
			Monthly:          monthly,
			TopShare:         dataprocessing.TopShare(selected, p.Dimension, p.TopN),
			YoY:              yoyResult(full, windowed, p.Dimension, p.Years),
			Forecast:         dataprocessing.LinearForecast(monthly, s.config.ForecastHorizon),
		}
		if selected.HasColumn(dataprocessing.ColBrand) {
			view.Brands = len(selected.Distinct(domain.DimensionBrand))
		}
		return view
	}), nil
}

// Benchmark computes the competitive benchmark on the selected dimension.
func (s *MarketService) Benchmark(ctx context.Context, params domain.ViewParams) (*BenchmarkView, error) {
	ds, err := s.dataset(ctx)
	if err != nil {
		return nil, err
	}
	p := s.resolveParams(ds, params)

	return memo(ctx, s, ds, "benchmark", p, func() *BenchmarkView {
		_, _, selected := scope(ds, p)
		return &BenchmarkView{
			Params:        p,
			Rows:          selected.Len(),
			Prices:        dataprocessing.UnitValueStats(selected),
			Categories:    dataprocessing.CategoryStats(selected, p.Dimension, p.TopN),
			Share:         dataprocessing.TopShare(selected, p.Dimension, p.TopN),
			Concentration: dataprocessing.Concentration(selected, p.Dimension, competitorCount),
		}
	}), nil
}

// DeepDive details one brand by model. The brand must be present in the
// dataset.
func (s *MarketService) DeepDive(ctx context.Context, params domain.ViewParams) (*DeepDiveView, error) {
	ds, err := s.dataset(ctx)
	if err != nil {
		return nil, err
	}
	p := s.resolveParams(ds, params)
	if p.Brand == "" {
		return nil, apperrors.NewAppValidationError(ErrBrandRequired.Error())
	}
	p.Dimension = domain.DimensionModel

	if brandRows, _, _ := scope(ds, p); brandRows.Len() == 0 {
		return nil, apperrors.NewNotFoundError("brand "+p.Brand, nil).WithContext("brand", p.Brand)
	}

	return memo(ctx, s, ds, "deep_dive", p, func() *DeepDiveView {
		full, windowed, selected := scope(ds, p)
		return &DeepDiveView{
			Params:        p,
			Rows:          selected.Len(),
			Summary:       dataprocessing.Summarize(selected, s.config.Summary),
			Prices:        dataprocessing.UnitValueStats(selected),
			Monthly:       dataprocessing.Monthly(selected),
			Models:        dataprocessing.TopShare(selected, domain.DimensionModel, p.TopN),
			ModelStats:    dataprocessing.CategoryStats(selected, domain.DimensionModel, p.TopN),
			Concentration: dataprocessing.Concentration(selected, domain.DimensionModel, competitorCount),
			YoY:           yoyResult(full, windowed, domain.DimensionModel, p.Years),
		}
	}), nil
}

// YoY compares the latest selected year with the one before it. Fewer than
// two selected years is not an error: the result carries the
// insufficient_selection status. Selected years without rows on either side
// carry no_data.
func (s *MarketService) YoY(ctx context.Context, params domain.ViewParams) (YoYResult, error) {
	ds, err := s.dataset(ctx)
	if err != nil {
		return YoYResult{}, err
	}
	p := s.resolveParams(ds, params)

	return memo(ctx, s, ds, "yoy", p, func() YoYResult {
		full, windowed, _ := scope(ds, p)
		return yoyResult(full, windowed, p.Dimension, p.Years)
	}), nil
}

// Summary computes the executive summary of the selection.
func (s *MarketService) Summary(ctx context.Context, params domain.ViewParams) (domain.ReportSummary, error) {
	ds, err := s.dataset(ctx)
	if err != nil {
		return domain.ReportSummary{}, err
	}
	p := s.resolveParams(ds, params)

	return memo(ctx, s, ds, "summary", p, func() domain.ReportSummary {
		_, _, selected := scope(ds, p)
		return dataprocessing.Summarize(selected, s.config.Summary)
	}), nil
}
