// Package config defines the pipeline configuration model and loads it from a
// YAML file with environment overrides.
//
// Every key can be overridden from the environment with the PIPELINE_ prefix
// and dots replaced by underscores, e.g. PIPELINE_API_URL or
// PIPELINE_STORAGE_DSN.
//
// Example:
//
//	job: ecommerce_pipeline
//	api:
//	  url: https://fakestoreapi.com/products
//	  timeout: 30s
//	data_sources:
//	  sales_file: data/sales.csv
//	  inventory_file: data/inventory.csv
//	processing:
//	  output_path: data/processed
//	output:
//	  reports_path: reports
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to environment override variables.
const EnvPrefix = "PIPELINE"

// Pipeline is the full run configuration.
type Pipeline struct {
	// Job labels metrics and log lines.
	Job string `mapstructure:"job" validate:"required"`

	API         API         `mapstructure:"api"`
	DataSources DataSources `mapstructure:"data_sources"`
	Processing  Processing  `mapstructure:"processing"`
	Output      Output      `mapstructure:"output"`
	Storage     Storage     `mapstructure:"storage"`
	Metrics     Metrics     `mapstructure:"metrics"`
	Log         Log         `mapstructure:"log"`
}

// API configures the remote product catalog feed.
type API struct {
	URL string `mapstructure:"url" validate:"required,url"`

	// Timeout is a duration string such as "30s".
	Timeout    time.Duration `mapstructure:"timeout" validate:"gte=1ms"`
	MaxRetries int           `mapstructure:"max_retries" validate:"gte=0,lte=10"`
}

// DataSources names the local sales and inventory CSV files.
type DataSources struct {
	SalesFile     string `mapstructure:"sales_file" validate:"required"`
	InventoryFile string `mapstructure:"inventory_file" validate:"required"`
}

// Processing controls raw snapshots and the engine defaults.
type Processing struct {
	// OutputPath receives the Parquet snapshots of the raw inputs.
	OutputPath string `mapstructure:"output_path" validate:"required"`

	DefaultMinStock float64 `mapstructure:"default_min_stock" validate:"gte=0"`
	DefaultCost     float64 `mapstructure:"default_cost" validate:"gte=0"`
}

// Output controls the report files.
type Output struct {
	ReportsPath string `mapstructure:"reports_path" validate:"required"`

	// Excel additionally writes an .xlsx workbook with one sheet per table.
	Excel bool `mapstructure:"excel"`
}

// Storage optionally persists the result tables. An empty Kind disables it.
type Storage struct {
	Kind            string `mapstructure:"kind" validate:"omitempty,oneof=sqlite postgres mssql mysql"`
	DSN             string `mapstructure:"dsn" validate:"required_with=Kind"`
	TablePrefix     string `mapstructure:"table_prefix"`
	AutoCreateTable bool   `mapstructure:"auto_create_table"`
	BatchSize       int    `mapstructure:"batch_size" validate:"gt=0"`
}

// Metrics selects the metrics backend: none, prometheus or datadog.
type Metrics struct {
	Backend        string `mapstructure:"backend" validate:"omitempty,oneof=none prometheus datadog"`
	PushgatewayURL string `mapstructure:"pushgateway_url" validate:"required_if=Backend prometheus"`
	DatadogAddr    string `mapstructure:"datadog_addr"`
}

// Log configures the execution log file. Output always also goes to stderr.
type Log struct {
	File string `mapstructure:"file"`
}

// defaults holds the value of every optional key. Registering every key also
// makes AutomaticEnv overrides visible to Unmarshal.
var defaults = map[string]any{
	"job":                          "ecommerce_pipeline",
	"api.url":                      "",
	"api.timeout":                  "30s",
	"api.max_retries":              3,
	"data_sources.sales_file":      "data/sales.csv",
	"data_sources.inventory_file":  "data/inventory.csv",
	"processing.output_path":       "data/processed",
	"processing.default_min_stock": 5.0,
	"processing.default_cost":      0.0,
	"output.reports_path":          "reports",
	"output.excel":                 false,
	"storage.kind":                 "",
	"storage.dsn":                  "",
	"storage.table_prefix":         "",
	"storage.auto_create_table":    true,
	"storage.batch_size":           1000,
	"metrics.backend":              "none",
	"metrics.pushgateway_url":      "",
	"metrics.datadog_addr":         "127.0.0.1:8125",
	"log.file":                     "pipeline_execution.log",
}

// Load reads the YAML file at path, applies environment overrides and
// defaults, and decodes the result. An empty path loads defaults and
// environment only. A missing file is an error satisfying
// errors.Is(err, os.ErrNotExist).
func Load(path string) (Pipeline, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Pipeline{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var p Pipeline
	if err := v.Unmarshal(&p); err != nil {
		return Pipeline{}, fmt.Errorf("config: decode: %w", err)
	}
	return p, nil
}
