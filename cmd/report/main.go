// Command report renders the dashboard for a date range without starting a
// server and writes it as CSV tables, an xlsx workbook and/or JSON.
//
//	report -data day.csv -start 2011-01-01 -end 2011-12-31 -out ./out -format csv,xlsx,json
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"bikepulse/internal/config"
	"bikepulse/internal/dataprocessing"
	"bikepulse/internal/exporter"
	"bikepulse/internal/infrastructure"
	"bikepulse/internal/services"
	"bikepulse/internal/validation"
)

type options struct {
	dataFile string
	start    string
	end      string
	outDir   string
	formats  string
	logLevel string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options

	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.dataFile, "data", config.DefaultDataFile, "path to the daily rental dataset (csv or xlsx)")
	fs.StringVar(&opts.start, "start", "", "first day of the range (YYYY-MM-DD, defaults to the dataset start)")
	fs.StringVar(&opts.end, "end", "", "last day of the range (YYYY-MM-DD, defaults to the dataset end)")
	fs.StringVar(&opts.outDir, "out", config.DefaultReportDir, "output directory")
	fs.StringVar(&opts.formats, "format", "csv,xlsx,json", "comma separated output formats: csv, xlsx, json")
	fs.StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn, error")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() > 0 {
		return opts, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return opts, nil
}

func run(ctx context.Context, opts options, logger *slog.Logger) ([]string, error) {
	formats, err := exporter.ParseFormats(opts.formats)
	if err != nil {
		return nil, err
	}

	dataFile := config.ResolvePath(opts.dataFile)
	validator := validation.NewFileValidator(logger)
	if err := validator.ValidateDatasetFile(dataFile); err != nil {
		return nil, err
	}
	if err := validator.ValidateOutputDirectory(opts.outDir); err != nil {
		return nil, err
	}

	svc, err := services.LoadDashboardService(ctx, dataprocessing.NewLoader(logger), dataFile, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}

	vm, err := svc.Render(ctx, services.RangeRequest{Start: opts.start, End: opts.end})
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "Rendered dashboard",
		slog.Time("start", vm.Range.Start),
		slog.Time("end", vm.Range.End),
		slog.Int("records", vm.Range.RecordCount))

	return exporter.NewReportWriter(logger).Write(ctx, opts.outDir, vm, formats)
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger := infrastructure.WithComponent(infrastructure.NewLogger(os.Stderr, config.LoggingConfig{
		Level:  opts.logLevel,
		Format: "text",
	}), "report")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = infrastructure.EnsureTraceID(ctx)

	files, err := run(ctx, opts, logger)
	if err != nil {
		logger.ErrorContext(ctx, "Report failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	for _, f := range files {
		fmt.Println(f)
	}
}
