package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestDecodeRun(t *testing.T) {
	t.Parallel()

	const js = `{
	  "job": "nacht",
	  "source": { "kind": "SpatiaLite", "dsn": "projekt.sqlite", "options": { "extension": "mod_spatialite" } },
	  "target": { "kind": "sqlite", "dsn": "modell.idbf", "template": "s3://vorlagen/he8.idbf" },
	  "selection": ["Nord", " ", "Sued "],
	  "clear_tables": true,
	  "catchment_difference": true,
	  "transaction": "whole-run",
	  "difference_policy": "skip",
	  "metrics": { "backend": "pushgateway", "pushgateway_url": "http://pgw:9091" },
	  "log": { "level": "debug", "format": "json", "file": "logs/qkhe.log" }
	}`

	r, err := Decode(strings.NewReader(js))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if r.Job != "nacht" || r.Source.Kind != "spatialite" || r.Source.Options.Extension != "mod_spatialite" {
		t.Fatalf("source decoded = %+v (job %q)", r.Source, r.Job)
	}
	if r.Target.Template != "s3://vorlagen/he8.idbf" || r.Target.DSN != "modell.idbf" {
		t.Fatalf("target decoded = %+v", r.Target)
	}
	if want := []string{"Nord", "Sued"}; !reflect.DeepEqual(r.Selection, want) {
		t.Fatalf("selection = %q, want %q", r.Selection, want)
	}
	if !r.ClearTables || !r.CatchmentDifference || r.Transaction != TransactionWholeRun || r.DifferencePolicy != DifferenceSkip {
		t.Fatalf("options decoded = %+v", r)
	}
	if r.Metrics.Backend != MetricsPushgateway || r.Log.Format != "json" || r.Log.File != "logs/qkhe.log" {
		t.Fatalf("metrics/log decoded = %+v / %+v", r.Metrics, r.Log)
	}
}

func TestDecodeAppliesDefaults(t *testing.T) {
	t.Parallel()

	r, err := Decode(strings.NewReader(`{"source":{"kind":"postgis","dsn":"x"},"target":{"kind":"sqlite","dsn":"y"}}`))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	want := Default()
	if r.Job != want.Job || r.Transaction != want.Transaction || r.DifferencePolicy != want.DifferencePolicy ||
		r.Metrics.Backend != want.Metrics.Backend || r.Log.Level != want.Log.Level || r.Log.Format != want.Log.Format {
		t.Fatalf("defaults = %+v, want those of %+v", r, want)
	}
	if r.Job != "qkhe" || r.Transaction != TransactionPerFamily || r.DifferencePolicy != DifferenceKeep {
		t.Fatalf("unexpected defaults %+v", r)
	}
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	t.Parallel()

	_, err := Decode(strings.NewReader(`{"jbo": "typo"}`))
	if err == nil || !strings.HasPrefix(err.Error(), "config: decode run:") {
		t.Fatalf("Decode() error = %v, want decode error", err)
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "run.json")
	if err := os.WriteFile(path, []byte(`{"job":"datei"}`), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	r, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if r.Job != "datei" {
		t.Fatalf("job = %q, want datei", r.Job)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("Load(missing) error = nil, want error")
	}
}

func TestParseSelection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want []string
	}{
		{in: "", want: nil},
		{in: "  ", want: nil},
		{in: "Nord", want: []string{"Nord"}},
		{in: "a, b,c", want: []string{"a", "b", "c"}},
		{in: ",a,,b,", want: []string{"a", "b"}},
	}
	for _, tt := range tests {
		if got := ParseSelection(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Fatalf("ParseSelection(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestOverlay(t *testing.T) {
	t.Parallel()

	r := Default()
	r.Source = Source{Kind: "postgis", DSN: "postgres://file"}
	r.Target.DSN = "from-file.idbf"

	err := Overlay(&r, map[string]string{
		"QKHE_TARGET_KIND":              "SQLite",
		"QKHE_TARGET_TEMPLATE":          "vorlage.idbf",
		"QKHE_SELECTION":                "Nord, Sued",
		"QKHE_CATCHMENT_DIFFERENCE":     "true",
		"QKHE_METRICS_BACKEND":          "datadog",
		"QKHE_METRICS_DATADOG_ADDR":     "127.0.0.1:8125",
		"QKHE_SOURCE_OPTIONS_EXTENSION": "mod_spatialite.so",
		"UNRELATED":                     "ignored",
	})
	if err != nil {
		t.Fatalf("Overlay() error = %v", err)
	}

	if r.Source.DSN != "postgres://file" || r.Target.DSN != "from-file.idbf" {
		t.Fatalf("unset variables changed values: %+v %+v", r.Source, r.Target)
	}
	if r.Target.Kind != "sqlite" || r.Target.Template != "vorlage.idbf" {
		t.Fatalf("target = %+v", r.Target)
	}
	if want := []string{"Nord", "Sued"}; !reflect.DeepEqual(r.Selection, want) {
		t.Fatalf("selection = %q, want %q", r.Selection, want)
	}
	if !r.CatchmentDifference || r.Metrics.Backend != MetricsDatadog || r.Metrics.DatadogAddr != "127.0.0.1:8125" {
		t.Fatalf("overlay = %+v", r)
	}
	if r.Source.Options.Extension != "mod_spatialite.so" {
		t.Fatalf("extension = %q", r.Source.Options.Extension)
	}
}

func TestOverlayInvalidBool(t *testing.T) {
	t.Parallel()

	r := Default()
	if err := Overlay(&r, map[string]string{"QKHE_CLEAR_TABLES": "vielleicht"}); err == nil {
		t.Fatalf("Overlay() error = nil, want parse error")
	}
}

// TestLoadEnvFiles mutates the process environment and therefore does not
// run in parallel.
func TestLoadEnvFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("QKHE_TEST_ONLY_JOB=aus-datei\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("QKHE_TEST_ONLY_JOB") })

	n, err := LoadEnvFiles(filepath.Join(dir, "missing.env"), path)
	if err != nil {
		t.Fatalf("LoadEnvFiles() error = %v", err)
	}
	if n != 1 {
		t.Fatalf("LoadEnvFiles() = %d, want 1", n)
	}
	if got := os.Getenv("QKHE_TEST_ONLY_JOB"); got != "aus-datei" {
		t.Fatalf("env = %q, want aus-datei", got)
	}

	if n, err := LoadEnvFiles(filepath.Join(dir, "nope")); err != nil || n != 0 {
		t.Fatalf("LoadEnvFiles(none) = %d, %v; want 0, nil", n, err)
	}
}
