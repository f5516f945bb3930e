// Package main renders a stored run as markdown or CSV.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"dividend-projection-lab/internal/config"
	"dividend-projection-lab/internal/logger"
	"dividend-projection-lab/internal/metrics"
	"dividend-projection-lab/internal/reporting"
	"dividend-projection-lab/internal/storage/backend"
	"dividend-projection-lab/internal/verification"
)

func main() {
	// Parse flags
	runID := flag.String("run-id", "", "Run ID to render (required)")
	format := flag.String("format", "markdown", "Output format: markdown, csv, trace-csv")
	output := flag.String("output", "", "Output file (default stdout)")
	verify := flag.Bool("verify", false, "Replay the run and print the verification result to stderr")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("DPL_STORAGE_POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("DPL_STORAGE_CLICKHOUSE_DSN"), "ClickHouse connection string")
	flag.Parse()

	log, err := logger.New(config.LogConfig{Level: "info", Encoding: "console", DisableStacktrace: true})
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if *runID == "" {
		log.Fatal("--run-id is required")
	}
	if *format != "markdown" && *format != "csv" && *format != "trace-csv" {
		log.Fatal("invalid format", zap.String("format", *format))
	}

	ctx := context.Background()

	stores, err := backend.Open(ctx, config.StorageConfig{
		Backend:       config.BackendPostgres,
		PostgresDSN:   *postgresDSN,
		ClickHouseDSN: *clickhouseDSN,
	})
	if err != nil {
		log.Fatal("open storage failed", zap.Error(err))
	}
	defer stores.Close()

	aggregator := metrics.NewAggregator(stores.Scenarios, stores.Runs, stores.Records, metrics.Options{})
	generator := reporting.NewGenerator(stores.Scenarios, stores.Runs, aggregator)

	report, err := generator.Generate(ctx, *runID)
	if err != nil {
		log.Fatal("generate report failed", zap.String("run_id", *runID), zap.Error(err))
	}

	var body string
	switch *format {
	case "markdown":
		body = reporting.RenderMarkdown(report)
	case "csv":
		body = reporting.RenderYearlyCSV(report.Yearly)
	case "trace-csv":
		body = reporting.RenderTraceCSV(report.Trace)
	}

	if *output == "" {
		fmt.Print(body)
	} else {
		if err := os.MkdirAll(filepath.Dir(*output), 0755); err != nil {
			log.Fatal("create output dir failed", zap.Error(err))
		}
		if err := os.WriteFile(*output, []byte(body), 0644); err != nil {
			log.Fatal("write output failed", zap.Error(err))
		}
		log.Info("report written", zap.String("path", *output), zap.String("format", *format))
	}

	if *verify {
		v := verification.NewReplayVerifier(verification.ReplayVerifierOptions{
			ScenarioStore: stores.Scenarios,
			RunStore:      stores.Runs,
			RecordStore:   stores.Records,
		})
		result, err := v.VerifyRun(ctx, *runID)
		if err != nil {
			log.Fatal("verify failed", zap.Error(err))
		}
		enc := json.NewEncoder(os.Stderr)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
		if !result.Match {
			os.Exit(2)
		}
	}
}
