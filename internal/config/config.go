// Package config defines the JSON run configuration of an export, the
// environment overlay on top of it and static validation.
//
// Example (trimmed):
//
//	{
//	  "job":       "nacht",
//	  "source":    { "kind": "spatialite", "dsn": "projekt.sqlite" },
//	  "target":    { "kind": "sqlite", "dsn": "modell.idbf", "template": "s3://vorlagen/he8.idbf" },
//	  "selection": ["Nord", "Sued"],
//	  "catchment_difference": true
//	}
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// Run is the top-level object decoded from a run file.
type Run struct {
	// Job names the run in logs and as the metrics job label.
	Job string `json:"job" env:"JOB"`

	Source Source `json:"source" envPrefix:"SOURCE_"`
	Target Target `json:"target" envPrefix:"TARGET_"`

	// Selection restricts the export to these sub-catchment regions.
	// Empty exports everything.
	Selection []string `json:"selection" env:"SELECTION" envSeparator:","`

	// ClearTables empties each target table before its family is written.
	ClearTables bool `json:"clear_tables" env:"CLEAR_TABLES"`

	// CatchmentDifference adds one surface per pipe for the catchment area
	// not covered by impervious surfaces.
	CatchmentDifference bool `json:"catchment_difference" env:"CATCHMENT_DIFFERENCE"`

	// Transaction is "per-family" or "whole-run".
	Transaction string `json:"transaction" env:"TRANSACTION"`

	// DifferencePolicy is "keep" or "skip" and decides what happens to
	// derived difference surfaces whose area is not positive.
	DifferencePolicy string `json:"difference_policy" env:"DIFFERENCE_POLICY"`

	Metrics Metrics `json:"metrics" envPrefix:"METRICS_"`
	Log     Log     `json:"log" envPrefix:"LOG_"`
}

// Source is the QKan project database.
type Source struct {
	// Kind is "postgis" or "spatialite".
	Kind    string        `json:"kind" env:"KIND"`
	DSN     string        `json:"dsn" env:"DSN"`
	Options SourceOptions `json:"options" envPrefix:"OPTIONS_"`
}

type SourceOptions struct {
	// Extension is the SpatiaLite module loaded into the connection.
	Extension string `json:"extension" env:"EXTENSION"`
}

// Target is the HYSTEM-EXTRAN model database.
type Target struct {
	// Kind is "sqlite" or "mssql".
	Kind string `json:"kind" env:"KIND"`
	DSN  string `json:"dsn" env:"DSN"`

	// Template is copied over the target file before the run: a local path
	// or an s3://bucket/key URL. Only file based targets use it.
	Template string `json:"template" env:"TEMPLATE"`

	// S3 configures access to s3:// templates.
	S3 TemplateS3 `json:"s3" envPrefix:"S3_"`
}

// TemplateS3 holds S3 settings. Without keys the default AWS credential
// chain is used.
type TemplateS3 struct {
	Region          string `json:"region" env:"REGION"`
	Endpoint        string `json:"endpoint" env:"ENDPOINT"`
	PathStyle       bool   `json:"path_style" env:"PATH_STYLE"`
	AccessKeyID     string `json:"access_key_id" env:"ACCESS_KEY_ID"`
	SecretAccessKey string `json:"secret_access_key" env:"SECRET_ACCESS_KEY"`
}

type Metrics struct {
	// Backend is "none", "pushgateway" or "datadog".
	Backend        string `json:"backend" env:"BACKEND"`
	PushgatewayURL string `json:"pushgateway_url" env:"PUSHGATEWAY_URL"`
	DatadogAddr    string `json:"datadog_addr" env:"DATADOG_ADDR"`
}

type Log struct {
	Level  string `json:"level" env:"LEVEL"`
	Format string `json:"format" env:"FORMAT"`
	File   string `json:"file" env:"FILE"`
}

// Known values.
const (
	TransactionPerFamily = "per-family"
	TransactionWholeRun  = "whole-run"

	DifferenceKeep = "keep"
	DifferenceSkip = "skip"

	MetricsNone        = "none"
	MetricsPushgateway = "pushgateway"
	MetricsDatadog     = "datadog"
)

// Default returns a Run with every optional field at its default.
func Default() Run {
	var r Run
	r.applyDefaults()
	return r
}

func (r *Run) applyDefaults() {
	if strings.TrimSpace(r.Job) == "" {
		r.Job = "qkhe"
	}
	if r.Transaction == "" {
		r.Transaction = TransactionPerFamily
	}
	if r.DifferencePolicy == "" {
		r.DifferencePolicy = DifferenceKeep
	}
	if r.Metrics.Backend == "" {
		r.Metrics.Backend = MetricsNone
	}
	if r.Log.Level == "" {
		r.Log.Level = "info"
	}
	if r.Log.Format == "" {
		r.Log.Format = "console"
	}
	r.Source.Kind = strings.ToLower(strings.TrimSpace(r.Source.Kind))
	r.Target.Kind = strings.ToLower(strings.TrimSpace(r.Target.Kind))
	r.Selection = cleanSelection(r.Selection)
}

// Decode reads a run from JSON and applies defaults. Unknown fields are
// rejected so that typos do not silently fall back to defaults.
func Decode(rd io.Reader) (Run, error) {
	var r Run
	dec := json.NewDecoder(rd)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&r); err != nil {
		return Run{}, fmt.Errorf("config: decode run: %w", err)
	}
	r.applyDefaults()
	return r, nil
}

// Load reads the run file at path.
func Load(path string) (Run, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Run{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Decode(bytes.NewReader(b))
}

// ParseSelection splits a comma separated list of region names. Blank
// entries are dropped; an empty string yields an empty selection.
func ParseSelection(s string) []string {
	return cleanSelection(strings.Split(s, ","))
}

func cleanSelection(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
