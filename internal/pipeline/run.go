package pipeline

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"qkhe/internal/config"
	"qkhe/internal/hystem"
	"qkhe/internal/logging"
	"qkhe/internal/metrics"
	"qkhe/internal/provision"
	"qkhe/internal/qkan"
	"qkhe/internal/report"
	"qkhe/internal/storage"
)

// Deps are the collaborators Run opens. Tests replace them.
type Deps struct {
	Provision  func(ctx context.Context, template, dest string) error
	OpenTarget func(ctx context.Context, cfg storage.Config) (*storage.Target, error)
	OpenSource func(ctx context.Context, cfg qkan.Config, log *zap.Logger) (qkan.Source, error)
}

// DefaultDeps opens real databases and provisions templates with the S3
// settings of cfg.
func DefaultDeps(cfg config.Run, log *zap.Logger) Deps {
	p := provision.New(provision.S3Config{
		Region:          cfg.Target.S3.Region,
		Endpoint:        cfg.Target.S3.Endpoint,
		PathStyle:       cfg.Target.S3.PathStyle,
		AccessKeyID:     cfg.Target.S3.AccessKeyID,
		SecretAccessKey: cfg.Target.S3.SecretAccessKey,
	}, log)
	return Deps{
		Provision: func(ctx context.Context, template, dest string) error {
			_, err := p.Provision(ctx, template, dest)
			return err
		},
		OpenTarget: storage.Open,
		OpenSource: func(ctx context.Context, cfg qkan.Config, log *zap.Logger) (qkan.Source, error) {
			return qkan.Open(ctx, cfg, log)
		},
	}
}

// Run performs a complete export described by cfg: provision the target
// from its template, open both databases, export, close. Failures are
// reported once through rep and returned.
func Run(ctx context.Context, cfg config.Run, deps Deps, rep report.Reporter, log *zap.Logger) error {
	log = logging.OrNop(log)
	if rep == nil {
		rep = report.Nop{}
	}
	defer func() {
		if err := metrics.Flush(); err != nil {
			log.Warn("metrics flush failed", zap.Error(err))
		}
	}()

	policy, err := storage.ParsePolicy(cfg.Transaction)
	if err != nil {
		return setupFailed(rep, log, &SetupError{Step: "config", Err: err})
	}

	rep.Progress("Vorbereitung...", 0.01)
	target, src, err := setup(ctx, cfg, deps, log)
	if err != nil {
		return setupFailed(rep, log, err)
	}
	defer func() {
		if err := src.Close(); err != nil {
			log.Warn("close source", zap.Error(err))
		}
		if err := target.Close(); err != nil {
			log.Warn("close target", zap.Error(err))
		}
	}()

	e := New(src, storage.NewSession(target, policy), rep, log, Options{
		Job:                 cfg.Job,
		Selection:           qkan.Selection(cfg.Selection),
		ClearTables:         cfg.ClearTables,
		CatchmentDifference: cfg.CatchmentDifference,
		DifferencePolicy:    cfg.DifferencePolicy,
	})
	return e.Export(ctx)
}

func setup(ctx context.Context, cfg config.Run, deps Deps, log *zap.Logger) (*storage.Target, qkan.Source, error) {
	tcfg := storage.Config{Kind: cfg.Target.Kind, DSN: cfg.Target.DSN}
	if b, ok := storage.Lookup(tcfg.Kind); ok && b.FileBased && strings.TrimSpace(cfg.Target.Template) != "" {
		if err := deps.Provision(ctx, cfg.Target.Template, cfg.Target.DSN); err != nil {
			return nil, nil, &SetupError{Step: "provision", Err: err}
		}
	}

	target, err := deps.OpenTarget(ctx, tcfg)
	if err != nil {
		return nil, nil, &SetupError{Step: "target", Err: err}
	}
	if err := target.Bootstrap(ctx, hystem.Defs(), 1); err != nil {
		_ = target.Close()
		return nil, nil, &SetupError{Step: "bootstrap", Err: err}
	}

	src, err := deps.OpenSource(ctx, qkan.Config{
		Kind:      cfg.Source.Kind,
		DSN:       cfg.Source.DSN,
		Extension: cfg.Source.Options.Extension,
	}, log)
	if err != nil {
		_ = target.Close()
		return nil, nil, &SetupError{Step: "source", Err: err}
	}
	log.Info("databases opened",
		zap.String("source", cfg.Source.Kind),
		zap.String("target", target.Kind()),
	)
	return target, src, nil
}

func setupFailed(rep report.Reporter, log *zap.Logger, err error) error {
	title, detail := describe(err)
	rep.Error(title, detail, 0)
	log.Error("export setup failed", zap.Error(err))
	return err
}
