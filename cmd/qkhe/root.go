package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"qkhe/internal/config"
)

// globalOptions are shared by every command that reads a run.
type globalOptions struct {
	configPath string
	envFiles   []string
}

func newRootCmd() *cobra.Command {
	var g globalOptions

	cmd := &cobra.Command{
		Use:           "qkhe",
		Short:         "Export QKan projects to HYSTEM-EXTRAN",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "run file (JSON)")
	cmd.PersistentFlags().StringSliceVar(&g.envFiles, "env-file", []string{".env"}, ".env files to load before reading QKHE_* variables")

	cmd.AddCommand(newExportCmd(&g))
	cmd.AddCommand(newValidateCmd(&g))
	cmd.AddCommand(newInitTemplateCmd())
	return cmd
}

// runFlags are the run settings that can be overridden on the command line.
type runFlags struct {
	sourceKind, source, extension string
	targetKind, target, template  string
	selection                     string
	clearTables, difference       bool
	transaction, differencePolicy string
	metricsBackend                string
	pushgatewayURL, datadogAddr   string
	logLevel, logFormat, logFile  string
}

func (f *runFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.sourceKind, "source-kind", "", "QKan database kind: postgis or spatialite")
	fs.StringVar(&f.source, "source", "", "QKan database DSN or file")
	fs.StringVar(&f.extension, "spatialite-extension", "", "SpatiaLite module to load")
	fs.StringVar(&f.targetKind, "target-kind", "", "model database kind: sqlite or mssql")
	fs.StringVar(&f.target, "target", "", "model database DSN or file")
	fs.StringVar(&f.template, "template", "", "template copied over the target file (path or s3://bucket/key)")
	fs.StringVar(&f.selection, "selection", "", "comma separated sub-catchment regions to export")
	fs.BoolVar(&f.clearTables, "clear-tables", false, "empty target tables before writing")
	fs.BoolVar(&f.difference, "catchment-difference", false, "add the unsealed remainder of each catchment")
	fs.StringVar(&f.transaction, "transaction", "", "per-family or whole-run")
	fs.StringVar(&f.differencePolicy, "difference-policy", "", "keep or skip non-positive remainders")
	fs.StringVar(&f.metricsBackend, "metrics-backend", "", "none, pushgateway or datadog")
	fs.StringVar(&f.pushgatewayURL, "pushgateway-url", "", "Pushgateway base URL")
	fs.StringVar(&f.datadogAddr, "datadog-addr", "", "DogStatsD address")
	fs.StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error")
	fs.StringVar(&f.logFormat, "log-format", "", "console or json")
	fs.StringVar(&f.logFile, "log-file", "", "append log lines to this file")
}

// apply copies every flag the user set onto r.
func (f *runFlags) apply(fs *pflag.FlagSet, r *config.Run) {
	set := func(name string, dst *string, v string) {
		if fs.Changed(name) {
			*dst = v
		}
	}
	set("source-kind", &r.Source.Kind, f.sourceKind)
	set("source", &r.Source.DSN, f.source)
	set("spatialite-extension", &r.Source.Options.Extension, f.extension)
	set("target-kind", &r.Target.Kind, f.targetKind)
	set("target", &r.Target.DSN, f.target)
	set("template", &r.Target.Template, f.template)
	set("transaction", &r.Transaction, f.transaction)
	set("difference-policy", &r.DifferencePolicy, f.differencePolicy)
	set("metrics-backend", &r.Metrics.Backend, f.metricsBackend)
	set("pushgateway-url", &r.Metrics.PushgatewayURL, f.pushgatewayURL)
	set("datadog-addr", &r.Metrics.DatadogAddr, f.datadogAddr)
	set("log-level", &r.Log.Level, f.logLevel)
	set("log-format", &r.Log.Format, f.logFormat)
	set("log-file", &r.Log.File, f.logFile)

	if fs.Changed("selection") {
		r.Selection = config.ParseSelection(f.selection)
	}
	if fs.Changed("clear-tables") {
		r.ClearTables = f.clearTables
	}
	if fs.Changed("catchment-difference") {
		r.CatchmentDifference = f.difference
	}
	r.Source.Kind = strings.ToLower(strings.TrimSpace(r.Source.Kind))
	r.Target.Kind = strings.ToLower(strings.TrimSpace(r.Target.Kind))
}

// loadRun builds the effective run: file, then environment, then flags.
func loadRun(g *globalOptions, f *runFlags, fs *pflag.FlagSet) (config.Run, error) {
	r := config.Default()
	if g.configPath != "" {
		var err error
		if r, err = loadConfig(g.configPath); err != nil {
			return config.Run{}, err
		}
	}
	if _, err := config.LoadEnvFiles(g.envFiles...); err != nil {
		return config.Run{}, err
	}
	if err := config.Overlay(&r, environ()); err != nil {
		return config.Run{}, err
	}
	f.apply(fs, &r)
	return r, nil
}

// printIssues writes validation findings and reports whether any blocks
// the run.
func printIssues(w io.Writer, issues []config.Issue) bool {
	for _, iss := range issues {
		fmt.Fprintf(w, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	return config.HasErrors(issues)
}
