// Command marketsuite serves and reports on the vehicle import dataset.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/franfh599/dashboard-autos/internal/app"
	"github.com/franfh599/dashboard-autos/internal/config"
	apperrors "github.com/franfh599/dashboard-autos/internal/errors"
	"github.com/franfh599/dashboard-autos/internal/infrastructure"
	"github.com/franfh599/dashboard-autos/pkg/contracts/domain"
)

// options holds the persistent flags shared by every subcommand.
type options struct {
	dataPath  string
	dataURL   string
	mode      string
	years     []int
	dimension string
	brand     string
	top       int
	verbose   bool

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	o := &options{}

	root := &cobra.Command{
		Use:   "marketsuite",
		Short: "Vehicle import market intelligence",
		Long: `marketsuite loads a vehicle import dataset (parquet, xlsx or CSV), cleans
it and serves the macro, benchmark, deep-dive and year-over-year views over
HTTP or prints them on the command line.`,
		Version:           app.VERSION,
		SilenceUsage:      true,
		PersistentPreRunE: o.load,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&o.dataPath, "data", "", "local dataset path (overrides data.local_path)")
	flags.StringVar(&o.dataURL, "url", "", "dataset URL used when the local file is missing")
	flags.StringVar(&o.mode, "mode", "", "view mode: FULL or YTD")
	flags.IntSliceVar(&o.years, "years", nil, "selected years, e.g. --years 2023,2024 (default all)")
	flags.StringVar(&o.dimension, "dimension", "", "grouping dimension: BRAND, MODEL, IMPORTER, FUEL_TYPE, BODY_STYLE, YEAR")
	flags.StringVar(&o.brand, "brand", "", "restrict the selection to one brand")
	flags.IntVar(&o.top, "top", 0, "number of categories in rankings")
	flags.BoolVarP(&o.verbose, "verbose", "v", false, "log progress to stderr")

	root.AddCommand(
		newServeCmd(o),
		newSummaryCmd(o),
		newYoYCmd(o),
		newReportCmd(o),
		newExportCmd(o),
	)
	return root
}

// load resolves the configuration and applies the flag overrides.
func (o *options) load(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return apperrors.NewConfigError("load configuration", err)
	}

	if o.dataPath != "" {
		cfg.Data.LocalPath = o.dataPath
	}
	if cmd.Flags().Changed("url") {
		cfg.Data.URL = o.dataURL
	}
	if o.mode != "" {
		mode, err := domain.ParseViewMode(o.mode)
		if err != nil {
			return err
		}
		cfg.Data.DefaultMode = string(mode)
	}
	if o.dimension != "" {
		if _, err := domain.ParseDimension(o.dimension); err != nil {
			return err
		}
	}
	if o.top < 0 {
		return fmt.Errorf("--top must not be negative")
	}

	logCfg := cfg.Logging
	logCfg.Format = "text"
	if !o.verbose {
		logCfg.Level = "warn"
	}
	o.logger = infrastructure.NewLoggerWithWriter(cmd.ErrOrStderr(), logCfg)
	o.cfg = cfg
	return nil
}

// params builds the selection from the flags. The mode is left to the
// configured default, which load already overrode.
func (o *options) params() domain.ViewParams {
	p := domain.ViewParams{
		Years: o.years,
		TopN:  o.top,
		Brand: strings.TrimSpace(o.brand),
	}
	if o.dimension != "" {
		p.Dimension, _ = domain.ParseDimension(o.dimension)
	}
	return p
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
