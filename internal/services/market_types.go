package services

import (
	"errors"
	"time"

	"github.com/franfh599/dashboard-autos/internal/dataprocessing"
	"github.com/franfh599/dashboard-autos/internal/loader"
	"github.com/franfh599/dashboard-autos/pkg/contracts/domain"
)

// LoadStatus tags the outcome of a dataset load.
type LoadStatus string

const (
	StatusOK             LoadStatus = "ok"
	StatusNoData         LoadStatus = "no_data"
	StatusNotFound       LoadStatus = "not_found"
	StatusMalformed      LoadStatus = "malformed"
	StatusMissingColumns LoadStatus = "missing_columns"
)

// Dataset is a cleaned table together with where it came from.
type Dataset struct {
	Key      string
	Origin   loader.Origin
	Name     string
	Format   loader.Format
	Table    *dataprocessing.Table
	MaxDate  *time.Time
	LoadedAt time.Time
}

// LoadResult is the tagged result of loading the dataset. Dataset is set for
// StatusOK and StatusMissingColumns; Err is set for the failure statuses.
type LoadResult struct {
	Status  LoadStatus
	Dataset *Dataset
	Missing []string
	Err     error
}

// Usable reports whether views can be computed from the result.
func (r LoadResult) Usable() bool {
	return r.Dataset != nil
}

// classifyLoadError maps a loader error onto a failure status.
func classifyLoadError(err error) LoadStatus {
	switch {
	case errors.Is(err, loader.ErrNoSource):
		return StatusNoData
	case errors.Is(err, loader.ErrSourceNotFound):
		return StatusNotFound
	default:
		return StatusMalformed
	}
}

// DatasetInfo describes the current dataset for clients.
type DatasetInfo struct {
	Status   LoadStatus                `json:"status"`
	Origin   loader.Origin             `json:"origin,omitempty"`
	Name     string                    `json:"name,omitempty"`
	Format   loader.Format             `json:"format,omitempty"`
	Rows     int                       `json:"rows"`
	Columns  []string                  `json:"columns,omitempty"`
	Missing  []string                  `json:"missing,omitempty"`
	MaxDate  *time.Time                `json:"max_date,omitempty"`
	Years    []int                     `json:"years,omitempty"`
	Brands   []string                  `json:"brands,omitempty"`
	Stats    dataprocessing.CleanStats `json:"stats"`
	LoadedAt *time.Time                `json:"loaded_at,omitempty"`
	Error    string                    `json:"error,omitempty"`
}

// YoYResult wraps a comparison with its selection state.
type YoYResult struct {
	Status string           `json:"status"`
	Table  *domain.YoYTable `json:"table,omitempty"`
}

// YoY selection states.
const (
	YoYStatusOK                    = "ok"
	YoYStatusInsufficientSelection = "insufficient_selection"
	YoYStatusNoData                = "no_data"
)

// MacroView is the country-level view.
type MacroView struct {
	Params           domain.ViewParams     `json:"params"`
	Rows             int                   `json:"rows"`
	TotalVolume      float64               `json:"total_volume"`
	TotalValue       float64               `json:"total_value"`
	AverageUnitValue float64               `json:"average_unit_value"`
	Brands           int                   `json:"brands"`
	Monthly          []domain.MonthlyPoint `json:"monthly"`
	TopShare         []domain.ShareRow     `json:"top_share"`
	YoY              YoYResult             `json:"yoy"`
	Forecast         domain.Forecast       `json:"forecast"`
}

// BenchmarkView compares competitors on price and volume.
type BenchmarkView struct {
	Params        domain.ViewParams      `json:"params"`
	Rows          int                    `json:"rows"`
	Prices        domain.PriceStats      `json:"prices"`
	Categories    []domain.CategoryStats `json:"categories"`
	Share         []domain.ShareRow      `json:"share"`
	Concentration domain.Concentration   `json:"concentration"`
}

// DeepDiveView details a single brand.
type DeepDiveView struct {
	Params        domain.ViewParams      `json:"params"`
	Rows          int                    `json:"rows"`
	Summary       domain.ReportSummary   `json:"summary"`
	Prices        domain.PriceStats      `json:"prices"`
	Monthly       []domain.MonthlyPoint  `json:"monthly"`
	Models        []domain.ShareRow      `json:"models"`
	ModelStats    []domain.CategoryStats `json:"model_stats"`
	Concentration domain.Concentration   `json:"concentration"`
	YoY           YoYResult              `json:"yoy"`
}

// ExportFormat names a downloadable rendition of a view.
type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportXLSX ExportFormat = "xlsx"
	ExportPDF  ExportFormat = "pdf"
)

// ParseExportFormat validates a format name.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch f := ExportFormat(s); f {
	case ExportCSV, ExportXLSX, ExportPDF:
		return f, nil
	}
	return "", ErrUnknownExportFormat
}

// ContentType returns the MIME type of the format.
func (f ExportFormat) ContentType() string {
	switch f {
	case ExportCSV:
		return "text/csv; charset=utf-8"
	case ExportXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ExportPDF:
		return "application/pdf"
	}
	return "application/octet-stream"
}

// FileName returns the download name for the format.
func (f ExportFormat) FileName(now time.Time) string {
	return "mercado_automotriz_" + now.Format("20060102") + "." + string(f)
}
