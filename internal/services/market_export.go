package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/franfh599/dashboard-autos/internal/dataprocessing"
	apperrors "github.com/franfh599/dashboard-autos/internal/errors"
	"github.com/franfh599/dashboard-autos/internal/exporter"
	"github.com/franfh599/dashboard-autos/internal/report"
	"github.com/franfh599/dashboard-autos/pkg/contracts/domain"
)

// Export writes the selection in the given format to w.
func (s *MarketService) Export(ctx context.Context, w io.Writer, format ExportFormat, params domain.ViewParams) error {
	if _, err := ParseExportFormat(string(format)); err != nil {
		return apperrors.NewAppValidationError(fmt.Sprintf("%s: %q", err, format))
	}

	ds, err := s.dataset(ctx)
	if err != nil {
		return err
	}
	p := s.resolveParams(ds, params)

	full, windowed, selected := scope(ds, p)
	if p.Brand != "" && full.Len() == 0 {
		return apperrors.NewNotFoundError("brand "+p.Brand, nil).WithContext("brand", p.Brand)
	}

	switch format {
	case ExportCSV:
		err = exporter.NewCSVWriter(s.logger).WriteTable(w, selected)
	case ExportXLSX:
		err = exporter.NewXLSXWriter(s.logger).Write(w, exporter.Workbook{
			Table:    selected,
			Monthly:  dataprocessing.Monthly(selected),
			TopShare: dataprocessing.TopShare(selected, p.Dimension, p.TopN),
			YoY:      dataprocessing.YoY(full, windowed, p.Dimension, p.Years),
		})
	case ExportPDF:
		err = s.buildReport(ctx, w, p, selected)
	}

	s.metrics.RecordExport(ctx, string(format), err == nil)
	if err != nil {
		s.logger.ErrorContext(ctx, "export failed",
			slog.String("format", string(format)),
			slog.String("error", err.Error()))
		return apperrors.NewExportError(string(format), err)
	}

	s.logger.InfoContext(ctx, "export generated",
		slog.String("format", string(format)),
		slog.Int("rows", selected.Len()))
	return nil
}

func (s *MarketService) buildReport(ctx context.Context, w io.Writer, p domain.ViewParams, selected *dataprocessing.Table) error {
	builder := report.NewBuilder(s.logger, s.config.Report)
	return builder.Build(ctx, w, report.Input{
		Title:    s.config.ReportTitle,
		Subtitle: subtitle(p),
		Mode:     p.Mode,
		Summary:  dataprocessing.Summarize(selected, s.config.Summary),
		Monthly:  dataprocessing.Monthly(selected),
	})
}

// subtitle describes a selection in the report title block.
func subtitle(p domain.ViewParams) string {
	var parts []string
	if p.Brand != "" {
		parts = append(parts, "Marca "+p.Brand)
	}
	if len(p.Years) == 0 {
		parts = append(parts, "Todos los años")
	} else {
		years := make([]string, len(p.Years))
		for i, y := range p.Years {
			years[i] = strconv.Itoa(y)
		}
		parts = append(parts, "Años "+strings.Join(years, ", "))
	}
	return strings.Join(parts, " | ")
}
