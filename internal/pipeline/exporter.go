// Package pipeline exports a QKan project into a HYSTEM-EXTRAN model
// database.
//
// An export runs the families in a fixed order (network, parameters,
// surfaces, regions, dischargers), each through the same skeleton, and
// finishes with the reference resolver. Every row takes its ID from one
// Allocator whose value is written back to the control record after each
// family.
package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"qkhe/internal/geo"
	"qkhe/internal/logging"
	"qkhe/internal/qkan"
	"qkhe/internal/report"
	"qkhe/internal/storage"
)

// Options tune one export.
type Options struct {
	Job                 string
	Selection           qkan.Selection
	ClearTables         bool
	CatchmentDifference bool
	DifferencePolicy    string
	// Now stamps rows without a creation date. Defaults to time.Now.
	Now func() time.Time
}

// Exporter runs one export from src into the target behind session.
type Exporter struct {
	src     qkan.Source
	session *storage.Session
	rep     report.Reporter
	log     *zap.Logger
	opts    Options

	ids *Allocator
	now time.Time

	catchmentPipes *geo.Index[string]
	cleared        map[string]bool
}

func New(src qkan.Source, session *storage.Session, rep report.Reporter, log *zap.Logger, opts Options) *Exporter {
	if rep == nil {
		rep = report.Nop{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Exporter{
		src:     src,
		session: session,
		rep:     rep,
		log:     logging.OrNop(log),
		opts:    opts,
	}
}

// Allocator returns the ID allocator of the last Export.
func (e *Exporter) Allocator() *Allocator { return e.ids }

type step func(context.Context) error

func run[S, R any](e *Exporter, f family[S, R]) step {
	return func(ctx context.Context) error {
		_, err := runFamily(ctx, e, f)
		return err
	}
}

func (e *Exporter) steps() []step {
	steps := []step{
		run(e, e.manholes()),
		run(e, e.storageStructures()),
		run(e, e.outlets()),
		run(e, e.pipes()),
		run(e, e.soilClasses()),
		run(e, e.runoffParameters()),
		run(e, e.rainGauges()),
		run(e, e.imperviousSurfaces()),
	}
	if e.opts.CatchmentDifference {
		steps = append(steps, run(e, e.differenceSurfaces()))
	}
	return append(steps,
		run(e, e.perviousSurfaces()),
		e.reconcileRegions,
		run(e, e.regions()),
		run(e, e.dischargers()),
		e.resolve,
	)
}

// Export writes all families. On failure the error is reported once
// through the Reporter, a pending whole-run transaction is rolled back and
// the error is returned.
func (e *Exporter) Export(ctx context.Context) (err error) {
	defer func() {
		if err != nil {
			e.fail(err)
		}
	}()

	e.now = e.opts.Now()
	e.catchmentPipes = nil
	e.cleared = map[string]bool{}
	if err := e.plan(ctx); err != nil {
		return err
	}
	if err := e.session.Do(ctx, func(tx *storage.Tx) error {
		seed, err := tx.NextID(ctx)
		if err != nil {
			return targetErr(err)
		}
		e.ids = NewAllocator(seed)
		return nil
	}); err != nil {
		return err
	}

	for _, s := range e.steps() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s(ctx); err != nil {
			return err
		}
	}
	if err := e.session.Close(); err != nil {
		return targetErr(err)
	}

	e.rep.Progress("Ende...", 1)
	e.rep.Notice("Export", "Datenexport abgeschlossen.")
	e.log.Info("export finished", zap.Int64("next_id", e.ids.Persisted()))
	return nil
}

// plan logs the size of the run.
func (e *Exporter) plan(ctx context.Context) error {
	e.rep.Progress("Planung...", 0.02)
	c, err := e.src.Counts(ctx)
	if err != nil {
		return sourceErr(err)
	}
	e.log.Info("export planned",
		zap.Int64("manholes", c.Manholes),
		zap.Int64("pipes", c.Pipes),
		zap.Int64("surfaces", c.SurfaceAreas),
		zap.Int64("steps", c.Manholes+c.Pipes+2*c.SurfaceAreas),
		zap.Stringer("selection", e.opts.Selection),
		zap.String("policy", string(e.session.Policy())),
	)
	return nil
}

func (e *Exporter) fail(err error) {
	e.session.Abort()
	title, detail := describe(err)
	e.rep.Error(title, detail, 0)
	e.log.Error("export failed", zap.String("title", title), zap.Error(err))
}
