package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/franfh599/dashboard-autos/internal/app"
	"github.com/franfh599/dashboard-autos/internal/exporter"
	"github.com/franfh599/dashboard-autos/internal/services"
	"github.com/franfh599/dashboard-autos/internal/validation"
	"github.com/franfh599/dashboard-autos/pkg/contracts/domain"
)

func newServeCmd(o *options) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				o.cfg.Server.Port = port
			}
			application, err := app.NewApplication(o.cfg)
			if err != nil {
				return err
			}
			return application.Run()
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "listen port (overrides server.port)")
	return cmd
}

// withService runs fn against a market service built from the resolved
// configuration.
func (o *options) withService(ctx context.Context, fn func(*services.MarketService) error) error {
	svc := app.NewMarketService(o.cfg, o.logger, nil)
	defer svc.Close()

	result := svc.Load(ctx)
	if !result.Usable() {
		return result.Err
	}
	if result.Status == services.StatusMissingColumns {
		o.logger.WarnContext(ctx, "dataset is missing columns",
			slog.Any("missing", result.Missing))
	}
	return fn(svc)
}

func newSummaryCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print the executive summary of the selection",
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withService(cmd.Context(), func(svc *services.MarketService) error {
				summary, err := svc.Summary(cmd.Context(), o.params())
				if err != nil {
					return err
				}
				printSummary(cmd.OutOrStdout(), o.cfg.Data.DefaultMode, summary)
				return nil
			})
		},
	}
}

func newYoYCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "yoy",
		Short: "Compare the two most recent selected years",
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withService(cmd.Context(), func(svc *services.MarketService) error {
				result, err := svc.YoY(cmd.Context(), o.params())
				if err != nil {
					return err
				}
				switch result.Status {
				case services.YoYStatusInsufficientSelection:
					fmt.Fprintln(cmd.OutOrStdout(), "Select at least two years to compare.")
					return nil
				case services.YoYStatusNoData:
					fmt.Fprintln(cmd.OutOrStdout(), "No imports recorded for the selected years.")
					return nil
				}
				printYoY(cmd.OutOrStdout(), result.Table)
				return nil
			})
		},
	}
}

func newReportCmd(o *options) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write the executive PDF report",
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.export(cmd, services.ExportPDF, out)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default mercado_automotriz_<date>.pdf)")
	return cmd
}

func newExportCmd(o *options) *cobra.Command {
	var (
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the selection as csv, xlsx or pdf",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := services.ParseExportFormat(format)
			if err != nil {
				return fmt.Errorf("%w: %q", err, format)
			}
			return o.export(cmd, f, out)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "csv", "export format: csv, xlsx or pdf")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default mercado_automotriz_<date>.<format>)")
	return cmd
}

// export writes the selection to out. A failed export leaves no file behind.
func (o *options) export(cmd *cobra.Command, format services.ExportFormat, out string) error {
	if out == "" {
		out = format.FileName(time.Now())
	}
	if err := validation.NewFileValidator(o.logger).ValidateOutputFile(out, "."+string(format)); err != nil {
		return err
	}

	return o.withService(cmd.Context(), func(svc *services.MarketService) error {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("create %s: %w", out, err)
		}

		err = svc.Export(cmd.Context(), f, format, o.params())
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			_ = os.Remove(out)
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", out)
		return nil
	})
}

func printSummary(w io.Writer, mode string, s domain.ReportSummary) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Vista temporal:\t%s\n", domain.ViewMode(mode).Label())
	fmt.Fprintf(tw, "Volumen:\t%s unidades\n", exporter.FormatUnits(s.TotalVolume))
	fmt.Fprintf(tw, "Inversión CIF:\t%s\n", exporter.HumanMoney(s.TotalValue))
	fmt.Fprintf(tw, "Ticket promedio:\t%s\n", exporter.HumanMoney(s.AverageUnitValue))
	tw.Flush()

	if len(s.Ranking) > 0 {
		fmt.Fprintf(w, "\nRanking por %s\n", s.RankingDimension)
		printRanking(w, s.Ranking)
	}
	if len(s.TopImporters) > 0 {
		fmt.Fprintln(w, "\nPrincipales importadores")
		printRanking(w, s.TopImporters)
	}
}

func printRanking(w io.Writer, rows []domain.RankingRow) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	for i, row := range rows {
		fmt.Fprintf(tw, "%d.\t%s\t%s\t\n", i+1, row.Category, exporter.FormatUnits(row.Volume))
	}
	tw.Flush()
}

func printYoY(w io.Writer, t *domain.YoYTable) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%d\t%d\tShare %d\tShare %d\tΔ pp\t\n",
		t.Dimension, t.PreviousYear, t.CurrentYear, t.PreviousYear, t.CurrentYear)
	for _, row := range t.Rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f%%\t%.2f%%\t%+.2f\t%s\n",
			row.Category,
			exporter.FormatUnits(row.PreviousVolume),
			exporter.FormatUnits(row.CurrentVolume),
			row.PreviousShare,
			row.CurrentShare,
			row.ShareDeltaPP,
			row.Status)
	}
	tw.Flush()
}
