package report

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"codeberg.org/go-pdf/fpdf"

	"github.com/franfh599/dashboard-autos/internal/exporter"
	"github.com/franfh599/dashboard-autos/pkg/contracts/domain"
)

// Header is printed at the top of every page.
const Header = "Reporte de Inteligencia de Mercado - Automotriz"

const noRankingText = "No hay columnas suficientes para construir un ranking."

const chartHeightMM = 70

// Options configures the report layout.
type Options struct {
	RankingSize  int
	ImporterSize int
	Chart        bool
	ChartWidthMM float64
	Compress     bool
}

// DefaultOptions returns the standard executive layout.
func DefaultOptions() Options {
	return Options{
		RankingSize:  15,
		ImporterSize: 5,
		Chart:        true,
		ChartWidthMM: 190,
		Compress:     true,
	}
}

// Input is everything printed in one report.
type Input struct {
	Title    string
	Subtitle string
	Mode     domain.ViewMode
	Summary  domain.ReportSummary
	Monthly  []domain.MonthlyPoint
}

// Builder renders executive reports.
type Builder struct {
	logger  *slog.Logger
	options Options
	now     func() time.Time
}

// NewBuilder creates a report builder. Non-positive sizes fall back to the
// defaults.
func NewBuilder(logger *slog.Logger, options Options) *Builder {
	if logger == nil {
		logger = slog.Default()
	}

	defaults := DefaultOptions()
	if options.RankingSize <= 0 {
		options.RankingSize = defaults.RankingSize
	}
	if options.ImporterSize <= 0 {
		options.ImporterSize = defaults.ImporterSize
	}
	if options.ChartWidthMM <= 0 {
		options.ChartWidthMM = defaults.ChartWidthMM
	}

	return &Builder{
		logger:  logger.With(slog.String("component", "report_builder")),
		options: options,
		now:     time.Now,
	}
}

// Build writes the PDF for in to w.
func (b *Builder) Build(ctx context.Context, w io.Writer, in Input) error {
	start := b.now()
	generated := start.Format("2006-01-02 15:04")

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(b.options.Compress)
	pdf.SetTitle(encodeText(in.Title), false)

	pdf.SetHeaderFunc(func() {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.SetTextColor(30, 55, 153)
		pdf.CellFormat(0, 8, Header, "", 1, "C", false, 0, "")
		pdf.Ln(2)
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-14)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(120, 120, 120)
		footer := fmt.Sprintf("Pag %d | Generado %s | Confidencial", pdf.PageNo(), generated)
		pdf.CellFormat(0, 10, footer, "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	b.writeTitle(pdf, in)
	b.writeKPIs(pdf, in.Summary)
	b.writeRanking(pdf, in.Summary)
	b.writeImporters(pdf, in.Summary)
	if b.options.Chart {
		b.writeChart(ctx, pdf, in.Monthly)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	b.logger.InfoContext(ctx, "report built",
		slog.String("mode", string(in.Mode)),
		slog.Int("pages", pdf.PageCount()),
		slog.Int("ranking_rows", min(len(in.Summary.Ranking), b.options.RankingSize)),
		slog.Duration("duration", b.now().Sub(start)))

	return nil
}

func (b *Builder) writeTitle(pdf *fpdf.Fpdf, in Input) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 10, encodeText(in.Title), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "I", 10)
	pdf.SetTextColor(90, 90, 90)
	line := fmt.Sprintf("Vista Temporal: %s | %s", in.Mode.Label(), in.Subtitle)
	pdf.CellFormat(0, 7, encodeText(line), "", 1, "L", false, 0, "")
	pdf.Ln(3)
}

func (b *Builder) writeKPIs(pdf *fpdf.Fpdf, s domain.ReportSummary) {
	pdf.SetFillColor(245, 245, 245)
	pdf.SetDrawColor(220, 220, 220)
	pdf.Rect(10, 40, 190, 20, "FD")
	pdf.SetY(45)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(63, 8, encodeText("Volumen: "+exporter.FormatUnits(s.TotalVolume)), "", 0, "C", false, 0, "")
	pdf.CellFormat(63, 8, encodeText("Inversión: "+exporter.HumanMoney(s.TotalValue)), "", 0, "C", false, 0, "")
	pdf.CellFormat(63, 8, encodeText("Ticket: "+exporter.HumanMoney(s.AverageUnitValue)), "", 1, "C", false, 0, "")
	pdf.Ln(10)
}

func (b *Builder) writeRanking(pdf *fpdf.Fpdf, s domain.ReportSummary) {
	if len(s.Ranking) == 0 {
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(0, 0, 0)
		pdf.MultiCell(0, 6, noRankingText, "", "L", false)
		return
	}

	label := encodeText(dimensionLabel(s.RankingDimension))

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetTextColor(30, 55, 153)
	pdf.CellFormat(0, 8, fmt.Sprintf("Top %d por %s", b.options.RankingSize, label), "", 1, "L", false, 0, "")
	pdf.Ln(1)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFillColor(44, 62, 80)
	pdf.CellFormat(140, 7, label, "1", 0, "L", true, 0, "")
	pdf.CellFormat(50, 7, "Unidades", "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(0, 0, 0)
	alt := false
	for i, row := range s.Ranking {
		if i >= b.options.RankingSize {
			break
		}
		if alt {
			pdf.SetFillColor(240, 240, 240)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		pdf.CellFormat(140, 7, truncate(encodeText(row.Category), 65), "1", 0, "L", alt, 0, "")
		pdf.CellFormat(50, 7, exporter.FormatUnits(row.Volume), "1", 1, "R", alt, 0, "")
		alt = !alt
	}
}

func (b *Builder) writeImporters(pdf *fpdf.Fpdf, s domain.ReportSummary) {
	if len(s.TopImporters) == 0 {
		return
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetTextColor(30, 55, 153)
	pdf.CellFormat(0, 8, fmt.Sprintf("Top %d Importadores", b.options.ImporterSize), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(0, 0, 0)
	for i, row := range s.TopImporters {
		if i >= b.options.ImporterSize {
			break
		}
		pdf.CellFormat(140, 6, truncate(encodeText("- "+row.Category), 80), "", 0, "L", false, 0, "")
		pdf.CellFormat(50, 6, exporter.FormatUnits(row.Volume), "", 1, "R", false, 0, "")
	}
}

func (b *Builder) writeChart(ctx context.Context, pdf *fpdf.Fpdf, monthly []domain.MonthlyPoint) {
	if len(monthly) == 0 {
		return
	}

	png, err := TrendChart(monthly, b.options.ChartWidthMM, chartHeightMM)
	if err != nil {
		b.logger.WarnContext(ctx, "trend chart skipped", slog.String("error", err.Error()))
		return
	}

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("trend", opts, bytes.NewReader(png))

	pdf.Ln(6)
	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	if pdf.GetY()+chartHeightMM > pageHeight-bottom {
		pdf.AddPage()
	}
	y := pdf.GetY()
	pdf.ImageOptions("trend", 10, y, b.options.ChartWidthMM, chartHeightMM, false, opts, 0, "")
	pdf.SetY(y + chartHeightMM)
}

// dimensionLabel returns the Spanish column heading for a dimension.
func dimensionLabel(d domain.Dimension) string {
	switch d {
	case domain.DimensionBrand:
		return "MARCA"
	case domain.DimensionModel:
		return "MODELO"
	case domain.DimensionImporter:
		return "EMPRESA"
	case domain.DimensionFuelType:
		return "COMBUSTIBLE"
	case domain.DimensionBodyStyle:
		return "CARROCERIA"
	case domain.DimensionYear:
		return "AÑO"
	}
	return string(d)
}
