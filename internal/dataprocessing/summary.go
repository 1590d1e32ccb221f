package dataprocessing

import "github.com/franfh599/dashboard-autos/pkg/contracts/domain"

// SummaryConfig sizes the rankings of a summary.
type SummaryConfig struct {
	RankingSize  int // default 15
	ImporterSize int // default 5
}

// Summarize computes the numbers an executive report is built from.
//
// The ranking dimension is MODEL when that column is present with more than
// one distinct value, else BRAND when present, else YEAR. Report consumers
// rely on this order.
func Summarize(t *Table, cfg SummaryConfig) domain.ReportSummary {
	if cfg.RankingSize <= 0 {
		cfg.RankingSize = 15
	}
	if cfg.ImporterSize <= 0 {
		cfg.ImporterSize = 5
	}

	var volume, value float64
	for _, r := range t.recordsView() {
		volume += r.Quantity
		value += r.CustomsValue
	}

	dim := RankingDimension(t)
	summary := domain.ReportSummary{
		TotalVolume:      volume,
		TotalValue:       value,
		AverageUnitValue: unitValue(value, volume),
		RankingDimension: dim,
		Ranking:          ranking(t, dim, cfg.RankingSize),
	}
	if t.HasColumn(ColImporter) {
		summary.TopImporters = ranking(t, domain.DimensionImporter, cfg.ImporterSize)
	}
	return summary
}

// RankingDimension picks the dimension a summary ranks by.
func RankingDimension(t *Table) domain.Dimension {
	if t.HasColumn(ColModel) && len(t.Distinct(domain.DimensionModel)) > 1 {
		return domain.DimensionModel
	}
	if t.HasColumn(ColBrand) {
		return domain.DimensionBrand
	}
	return domain.DimensionYear
}

func ranking(t *Table, d domain.Dimension, n int) []domain.RankingRow {
	groups := groupByDimension(t.recordsView(), d)
	if n > 0 && n < len(groups) {
		groups = groups[:n]
	}
	rows := make([]domain.RankingRow, len(groups))
	for i, g := range groups {
		rows[i] = domain.RankingRow{Category: g.category, Volume: g.volume}
	}
	return rows
}
