package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"ecommetl/internal/app"
	"ecommetl/internal/config"
	_ "ecommetl/internal/storage/all"
)

func main() {
	var (
		cfgPath        string
		validate       bool
		metricsBackend string
	)
	flag.StringVar(&cfgPath, "config", "config/pipeline_config.yaml", "Path to pipeline config (YAML)")
	flag.BoolVar(&validate, "validate", false, "Validate the configuration and exit")
	flag.StringVar(&metricsBackend, "metrics-backend", "", "Override metrics.backend: none, prometheus or datadog")
	verbose := flag.Bool("v", false, "Verbose logging")
	flag.Parse()

	p, err := config.Load(cfgPath)
	if errors.Is(err, os.ErrNotExist) {
		log.Printf("config: %s not found, using defaults and environment", cfgPath)
		p, err = config.Load("")
	}
	if err != nil {
		log.Fatalf("%v", err)
	}
	if metricsBackend != "" {
		p.Metrics.Backend = metricsBackend
	}

	hasError := false
	for _, iss := range config.ValidatePipeline(p) {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
		if iss.Severity == config.SeverityError {
			hasError = true
		}
	}
	if hasError {
		log.Printf("Configuration is invalid: %v", cfgPath)
		os.Exit(1)
	}
	if validate {
		log.Printf("Configuration is valid: %v", cfgPath)
		os.Exit(0)
	}

	out, closeLog, err := app.OpenLog(p.Log.File)
	if err != nil {
		log.Fatalf("%v", err)
	}
	log.SetOutput(out)

	flush, err := app.SetupMetrics(p)
	if err != nil {
		log.Fatalf("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	if *verbose {
		log.Printf("pipeline: api=%s sales=%s inventory=%s storage=%q metrics=%s",
			p.API.URL, p.DataSources.SalesFile, p.DataSources.InventoryFile, p.Storage.Kind, p.Metrics.Backend)
	}

	sum, err := app.New(p).Run(ctx)
	stop()
	flush()
	if err != nil {
		log.Printf("pipeline: run failed: %v", err)
		_ = closeLog()
		os.Exit(1)
	}
	app.LogSummary(sum)
	_ = closeLog()
}
