package domain

import (
	"fmt"
	"strings"
	"time"
)

// ImportRecord is one canonical vehicle import row after cleaning.
type ImportRecord struct {
	Date             time.Time `json:"date"`
	Year             int       `json:"year"`
	MonthNumber      int       `json:"month_number"`
	MonthName        string    `json:"month_name"`
	Brand            string    `json:"brand"`
	Model            string    `json:"model"`
	Importer         string    `json:"importer"`
	FuelType         string    `json:"fuel_type"`
	BodyStyle        string    `json:"body_style"`
	Quantity         float64   `json:"quantity"`
	CustomsValue     float64   `json:"customs_value"`
	FreightValue     float64   `json:"freight_value"`
	UnitCustomsValue float64   `json:"unit_customs_value"`
	UnitFreightValue float64   `json:"unit_freight_value"`
}

// Category returns the record's value for a grouping dimension.
func (r ImportRecord) Category(d Dimension) string {
	switch d {
	case DimensionBrand:
		return r.Brand
	case DimensionModel:
		return r.Model
	case DimensionImporter:
		return r.Importer
	case DimensionFuelType:
		return r.FuelType
	case DimensionBodyStyle:
		return r.BodyStyle
	case DimensionYear:
		return fmt.Sprintf("%d", r.Year)
	default:
		return ""
	}
}

// Dimension names a categorical column used for grouping
type Dimension string

const (
	DimensionBrand     Dimension = "BRAND"
	DimensionModel     Dimension = "MODEL"
	DimensionImporter  Dimension = "IMPORTER"
	DimensionFuelType  Dimension = "FUEL_TYPE"
	DimensionBodyStyle Dimension = "BODY_STYLE"
	DimensionYear      Dimension = "YEAR"
)

// ComparableDimensions are the dimensions offered for YoY and ranking selection.
var ComparableDimensions = []Dimension{
	DimensionBrand,
	DimensionModel,
	DimensionFuelType,
	DimensionBodyStyle,
}

// ParseDimension accepts canonical names and the lower-case/hyphenated forms used in URLs.
func ParseDimension(s string) (Dimension, error) {
	key := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_"))
	switch Dimension(key) {
	case DimensionBrand, DimensionModel, DimensionImporter, DimensionFuelType, DimensionBodyStyle, DimensionYear:
		return Dimension(key), nil
	}
	return "", fmt.Errorf("unknown dimension %q", s)
}

// ViewMode selects between full-year and year-to-date windows
type ViewMode string

const (
	ViewFull ViewMode = "FULL"
	ViewYTD  ViewMode = "YTD"
)

// ParseViewMode parses a view mode; an empty string means FULL.
func ParseViewMode(s string) (ViewMode, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "FULL", "FULL YEAR", "FULL_YEAR":
		return ViewFull, nil
	case "YTD":
		return ViewYTD, nil
	}
	return "", fmt.Errorf("unknown view mode %q", s)
}

// Label returns the display label used in reports.
func (m ViewMode) Label() string {
	if m == ViewYTD {
		return "YTD"
	}
	return "Full Year"
}

// ViewParams carries every user selection into a computation.
type ViewParams struct {
	Mode      ViewMode  `json:"mode"`
	Years     []int     `json:"years,omitempty"`
	Dimension Dimension `json:"dimension,omitempty"`
	TopN      int       `json:"top_n,omitempty"`
	Brand     string    `json:"brand,omitempty"`
}

// MonthlyPoint is one (year, month) volume bucket.
type MonthlyPoint struct {
	Year        int       `json:"year"`
	MonthNumber int       `json:"month_number"`
	Volume      float64   `json:"volume"`
	Date        time.Time `json:"date"`
}

// ShareRow is one category in a top-N share table.
type ShareRow struct {
	Category string  `json:"category"`
	Volume   float64 `json:"volume"`
	SharePct float64 `json:"share_pct"`
}

// YoYStatus flags whether a category gained or lost share
type YoYStatus string

const (
	YoYGained YoYStatus = "gained"
	YoYLost   YoYStatus = "lost"
)

// YoYRow compares one category across the current and previous year.
type YoYRow struct {
	Category       string    `json:"category"`
	CurrentVolume  float64   `json:"current_volume"`
	CurrentValue   float64   `json:"current_value"`
	PreviousVolume float64   `json:"previous_volume"`
	PreviousValue  float64   `json:"previous_value"`
	CurrentShare   float64   `json:"current_share"`
	PreviousShare  float64   `json:"previous_share"`
	ShareDeltaPP   float64   `json:"share_delta_pp"`
	ValueDelta     float64   `json:"value_delta"`
	Status         YoYStatus `json:"status"`
}

// YoYTable is the outer join of two year slices on a dimension.
type YoYTable struct {
	Dimension    Dimension `json:"dimension"`
	CurrentYear  int       `json:"current_year"`
	PreviousYear int       `json:"previous_year"`
	Rows         []YoYRow  `json:"rows"`
}

// RankingRow is a category and its summed volume.
type RankingRow struct {
	Category string  `json:"category"`
	Volume   float64 `json:"volume"`
}

// ReportSummary holds the numbers an executive report is built from.
type ReportSummary struct {
	TotalVolume      float64      `json:"total_volume"`
	TotalValue       float64      `json:"total_value"`
	AverageUnitValue float64      `json:"average_unit_value"`
	RankingDimension Dimension    `json:"ranking_dimension"`
	Ranking          []RankingRow `json:"ranking"`
	TopImporters     []RankingRow `json:"top_importers,omitempty"`
}

// PriceStats describes the distribution of unit customs values.
type PriceStats struct {
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Median float64 `json:"median"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
}

// CategoryStats is a per-category benchmark line.
type CategoryStats struct {
	Category          string  `json:"category"`
	Rows              int     `json:"rows"`
	Volume            float64 `json:"volume"`
	Value             float64 `json:"value"`
	WeightedUnitValue float64 `json:"weighted_unit_value"`
	MeanUnitValue     float64 `json:"mean_unit_value"`
	StdUnitValue      float64 `json:"std_unit_value"`
}

// Concentration measures how much volume the leading categories hold.
type Concentration struct {
	Dimension            Dimension `json:"dimension"`
	TopN                 int       `json:"top_n"`
	TopSharePct          float64   `json:"top_share_pct"`
	Categories           int       `json:"categories"`
	AvgVolumePerCategory float64   `json:"avg_volume_per_category"`
}

// ForecastPoint is a projected monthly volume.
type ForecastPoint struct {
	Index  int       `json:"index"`
	Date   time.Time `json:"date"`
	Volume float64   `json:"volume"`
}

// Forecast is a fitted line y = Slope*x + Intercept and its projections.
type Forecast struct {
	Slope     float64         `json:"slope"`
	Intercept float64         `json:"intercept"`
	Points    []ForecastPoint `json:"points"`
}
