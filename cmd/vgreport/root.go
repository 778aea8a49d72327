package main

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"vgpulse/internal/config"
	"vgpulse/internal/dataprocessing"
	"vgpulse/internal/infrastructure"
	"vgpulse/internal/services"
	"vgpulse/pkg/contracts"
)

// Output formats
const (
	formatCSV  = "csv"
	formatXLSX = "xlsx"
	formatJSON = "json"
)

// options holds the persistent flags shared by every subcommand
type options struct {
	configFile string
	dataset    string
	format     string
	output     string
	logLevel   string
}

// runtime is built once the flags are parsed
type runtime struct {
	cfg     *config.Config
	logger  *slog.Logger
	service *services.DashboardService
	stdout  io.Writer
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}
	rt := &runtime{stdout: stdout}

	rootCmd := &cobra.Command{
		Use:           "vgreport",
		Short:         "Video game sales dashboard tables",
		Version:       contracts.GetVersionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "Path to a YAML config file")
	flags.StringVar(&opts.dataset, "dataset", "", "Dataset file (CSV or XLSX), overrides pipeline.dataset_file")
	flags.StringVarP(&opts.format, "format", "f", formatCSV, "Output format: csv, xlsx or json")
	flags.StringVarP(&opts.output, "output", "o", "", "Output file, stdout when empty")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "Log level written to stderr")

	versionCmd := versionCommand(stdout)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == versionCmd.Name() {
			return nil
		}
		switch opts.format {
		case formatCSV, formatXLSX, formatJSON:
		default:
			return fmt.Errorf("unsupported format %q: want csv, xlsx or json", opts.format)
		}
		cmd.SetContext(infrastructure.EnsureTraceID(cmd.Context()))
		return rt.initialize(opts, stderr)
	}

	rootCmd.AddCommand(
		marketShareCommand(rt, opts),
		distributionCommand(rt, opts),
		categoriesCommand(rt, opts),
		forecastCommand(rt, opts),
		exportCommand(rt, opts),
		versionCmd,
	)

	return rootCmd
}

func versionCommand(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(stdout, contracts.GetFullVersionString())
		},
	}
}

// initialize loads the configuration and builds the dashboard service
func (rt *runtime) initialize(opts *options, stderr io.Writer) error {
	var (
		cfg *config.Config
		err error
	)
	if opts.configFile != "" {
		cfg, err = config.LoadFrom(opts.configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if opts.dataset != "" {
		path, err := filepath.Abs(opts.dataset)
		if err != nil {
			return fmt.Errorf("resolve dataset path: %w", err)
		}
		cfg.Pipeline.DatasetFile = path
	}

	logger := infrastructure.NewLogger(stderr, opts.logLevel)
	loader := dataprocessing.NewLoader(cfg.Pipeline.CutoffYear, logger, nil)
	cache := dataprocessing.NewDatasetCache(loader, cfg.Cache.TTL, logger, nil)

	service, err := services.NewDashboardService(cfg, cache, logger, nil)
	if err != nil {
		return err
	}

	rt.cfg = cfg
	rt.logger = logger
	rt.service = service
	return nil
}
