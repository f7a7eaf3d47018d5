// Package main provides a command line extractor. It reads a biomarker
// file, runs validation and classification, and writes a report as JSON
// or normalized CSV.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/biomarker-insight-server/internal/ingest"
	"github.com/biomarker-insight-server/internal/service"
)

func main() {
	var (
		output   = flag.String("o", "", "output file (default: stdout)")
		format   = flag.String("format", "json", "output format: json or csv")
		logLevel = flag.String("log-level", "warn", "log level")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <input-file>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Reads a biomarker file (.json, .csv or .pdf) and writes a report.\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	inputPath := flag.Arg(0)

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if level, err := logrus.ParseLevel(strings.ToLower(*logLevel)); err == nil {
		logger.SetLevel(level)
	}

	if err := run(inputPath, *output, *format, logger); err != nil {
		logger.Fatalf("Extraction failed: %v", err)
	}
}

func run(inputPath, outputPath, format string, logger *logrus.Logger) error {
	adapter, err := ingest.ForFile(inputPath)
	if err != nil {
		return err
	}

	f, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("opening input file: %w", err)
	}
	defer f.Close()

	result, err := adapter.Ingest(context.Background(), f)
	if err != nil {
		return err
	}
	if result.SkippedRows > 0 {
		logger.WithField("skipped_rows", result.SkippedRows).Warn("Some rows were skipped during ingestion")
	}
	if result.Simulated {
		logger.Warn("Input produced simulated data, values are not real measurements")
	}

	datasets := service.NewDatasetService(logger)
	state := datasets.Replace(result)

	out, err := render(state, format, logger)
	if err != nil {
		return err
	}

	if outputPath == "" {
		_, err = os.Stdout.Write(out)
		return err
	}
	if err := os.WriteFile(outputPath, out, 0644); err != nil {
		return fmt.Errorf("writing output file: %w", err)
	}
	logger.WithField("path", outputPath).Info("Report written")
	return nil
}

func render(state service.DatasetState, format string, logger *logrus.Logger) ([]byte, error) {
	switch strings.ToLower(format) {
	case "csv":
		return service.NewExportService(logger).CSV(state.Dataset)
	case "json":
		classifier := service.NewClassifierService(logger)
		trends := service.NewTrendService(logger, classifier)
		validator := service.NewValidatorService(logger)
		reports := service.NewReportService(logger, classifier, trends, validator)

		report := reports.Generate(state)
		return json.MarshalIndent(report, "", "  ")
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}
