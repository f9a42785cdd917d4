package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"qkhe/internal/config"
	"qkhe/internal/logging"
	"qkhe/internal/metrics"
	"qkhe/internal/metrics/datadog"
	"qkhe/internal/metrics/prompush"
	"qkhe/internal/pipeline"
	"qkhe/internal/report"
)

var errInvalidRun = errors.New("run configuration is invalid")

func newExportCmd(g *globalOptions) *cobra.Command {
	var (
		f     runFlags
		quiet bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a QKan project into a HYSTEM-EXTRAN model database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadRun(g, &f, cmd.Flags())
			if err != nil {
				return err
			}
			if printIssues(cmd.ErrOrStderr(), config.ValidateRun(cfg)) {
				return errInvalidRun
			}

			log, cleanup, err := logging.New(logging.Options{
				Level:  cfg.Log.Level,
				Format: cfg.Log.Format,
				File:   cfg.Log.File,
			})
			defer cleanup()
			if err != nil {
				return err
			}
			log = log.With(zap.String("run_id", uuid.NewString()), zap.String("job", cfg.Job))

			if err := setupMetrics(cfg, log); err != nil {
				return err
			}
			defer metrics.SetBackend(nil)

			reporters := []report.Reporter{report.NewLog(log)}
			if !quiet {
				console := report.NewConsole(cmd.ErrOrStderr())
				defer console.Close()
				reporters = append(reporters, console)
			}
			rep := report.Monotonic(report.Multi(reporters...))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			log.Info("export started",
				zap.String("source", cfg.Source.Kind),
				zap.String("target", cfg.Target.Kind),
				zap.Strings("selection", cfg.Selection),
			)
			return runExport(ctx, cfg, pipeline.DefaultDeps(cfg, log), rep, log)
		},
	}
	f.register(cmd.Flags())
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "no progress bar")
	return cmd
}

// setupMetrics installs the configured metrics backend.
func setupMetrics(cfg config.Run, log *zap.Logger) error {
	switch cfg.Metrics.Backend {
	case config.MetricsPushgateway:
		b, err := prompush.NewBackend(cfg.Job, cfg.Metrics.PushgatewayURL)
		if err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
		metrics.SetBackend(b)
	case config.MetricsDatadog:
		b, err := datadog.NewBackend(datadog.Config{
			Addr:       cfg.Metrics.DatadogAddr,
			GlobalTags: []string{"job:" + cfg.Job},
		})
		if err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
		metrics.SetBackend(b)
	default:
		return nil
	}
	log.Info("metrics enabled", zap.String("backend", cfg.Metrics.Backend))
	return nil
}

