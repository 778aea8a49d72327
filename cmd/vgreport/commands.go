package main

import (
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"vgpulse/internal/exporter"
	"vgpulse/internal/validation"
	"vgpulse/pkg/contracts/domain"
)

func marketShareCommand(rt *runtime, opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "market-share",
		Short: "Manufacturer share of global sales per year",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := rt.service.MarketShare(cmd.Context())
			if err != nil {
				return err
			}
			rt.warnEmpty(result.Err())
			return rt.emit(opts, result, exporter.MarketShareTable(result.Rows))
		},
	}
}

func distributionCommand(rt *runtime, opts *options) *cobra.Command {
	var dimension, mode, category string

	cmd := &cobra.Command{
		Use:   "distribution",
		Short: "Density curves of sales per top category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := distributionRequest(dimension, mode, category)
			if err != nil {
				return err
			}

			result, err := rt.service.Distribution(cmd.Context(), req)
			if err != nil {
				return err
			}
			rt.warnEmpty(result.Err())
			return rt.emit(opts, result, exporter.DistributionTable(result.Points))
		},
	}

	cmd.Flags().StringVar(&dimension, "dimension", string(domain.DimensionPlatform), "Category dimension: Platform, Genre or Rating")
	cmd.Flags().StringVar(&mode, "mode", "all", "Display mode: all or single")
	cmd.Flags().StringVar(&category, "category", "", "Category shown in single mode")
	return cmd
}

func categoriesCommand(rt *runtime, opts *options) *cobra.Command {
	var dimension string

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Top categories of a dimension by total sales",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dim, err := domain.ParseCategoryDimension(dimension)
			if err != nil {
				return err
			}

			top, err := rt.service.Categories(cmd.Context(), dim)
			if err != nil {
				return err
			}
			return rt.emit(opts, top, exporter.CategoriesTable(top))
		},
	}

	cmd.Flags().StringVar(&dimension, "dimension", string(domain.DimensionPlatform), "Category dimension: Platform, Genre or Rating")
	return cmd
}

func forecastCommand(rt *runtime, opts *options) *cobra.Command {
	var fits bool

	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Actual and projected manufacturer shares",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := rt.service.Forecast(cmd.Context())
			if err != nil {
				return err
			}
			for _, name := range result.Skipped {
				rt.logger.Warn("manufacturer has no projection", slog.String("manufacturer", name))
			}

			table := exporter.ForecastTable(result.Points)
			if fits {
				table = exporter.TrendFitsTable(result.Fits)
			}
			return rt.emit(opts, result, table)
		},
	}

	cmd.Flags().BoolVar(&fits, "fits", false, "Write the fitted trend lines instead of the points")
	return cmd
}

func exportCommand(rt *runtime, opts *options) *cobra.Command {
	var dimension, mode, category, dir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every dashboard table",
		Long: "Export every dashboard table. XLSX writes one workbook with a sheet per table, " +
			"CSV writes one file per table into --dir, JSON writes the whole snapshot.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := distributionRequest(dimension, mode, category)
			if err != nil {
				return err
			}

			snap, err := rt.service.Snapshot(cmd.Context(), req)
			if err != nil {
				return err
			}

			report := exporter.Report{
				MarketShare:  snap.MarketShare.Rows,
				Categories:   snap.Distribution.Categories,
				Distribution: snap.Distribution.Points,
				Forecast:     snap.Forecast.Points,
				Fits:         snap.Forecast.Fits,
			}

			switch opts.format {
			case formatJSON:
				return rt.emit(opts, snap)
			case formatCSV:
				if dir == "" {
					dir = rt.cfg.Paths.ExportDir
				}
				if err := validation.NewFileValidator(rt.logger).ValidateOutputDirectory(dir); err != nil {
					return err
				}
				writer := exporter.NewCSVWriter(dir, rt.logger)
				for _, t := range report.Tables() {
					path, err := writer.WriteTableFile(t.Name, t)
					if err != nil {
						return fmt.Errorf("export %s: %w", t.Name, err)
					}
					fmt.Fprintln(rt.stdout, path)
				}
				return nil
			default:
				if opts.output == "" {
					path, err := exporter.NewWorkbookWriter(rt.cfg.Paths.ExportDir, rt.logger).WriteFile("vgpulse_report", report.Tables())
					if err != nil {
						return err
					}
					fmt.Fprintln(rt.stdout, path)
					return nil
				}
				return rt.emit(opts, snap, report.Tables()...)
			}
		},
	}

	cmd.Flags().StringVar(&dimension, "dimension", string(domain.DimensionPlatform), "Category dimension of the distribution sheet")
	cmd.Flags().StringVar(&mode, "mode", "all", "Display mode of the distribution sheet: all or single")
	cmd.Flags().StringVar(&category, "category", "", "Category shown in single mode")
	cmd.Flags().StringVar(&dir, "dir", "", "Directory for CSV files, defaults to paths.export_dir")
	return cmd
}

var requestValidator = validator.New()

// distributionRequest parses and validates the distribution flags
func distributionRequest(dimension, mode, category string) (domain.DistributionRequest, error) {
	dim, err := domain.ParseCategoryDimension(dimension)
	if err != nil {
		return domain.DistributionRequest{}, err
	}
	displayMode, err := domain.ParseDisplayMode(mode)
	if err != nil {
		return domain.DistributionRequest{}, err
	}

	req := domain.DistributionRequest{Dimension: dim, Mode: displayMode, Category: category}
	if displayMode == domain.ModeAllCategories {
		req.Category = ""
	}
	if err := requestValidator.Struct(req); err != nil {
		return domain.DistributionRequest{}, fmt.Errorf("--category is required in single mode: %w", err)
	}
	return req, nil
}
