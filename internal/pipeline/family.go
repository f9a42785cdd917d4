package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"qkhe/internal/hystem"
	"qkhe/internal/metrics"
	"qkhe/internal/storage"
)

// family is one source-to-table export. load reads the source rows (it may
// consult the target through tx); transform maps a row onto its target row
// given the ID it would receive, or reports false to skip it. Skipped rows
// consume no ID.
type family[S, R any] struct {
	name  string // metrics label
	table hystem.Table

	label       string  // progress label at start
	done        string  // progress label at the end, %s is the count
	start, stop float64 // progress fractions

	load      func(ctx context.Context, tx *storage.Tx) ([]S, error)
	transform func(s S, id int64) (R, bool)
}

// runFamily is the shared skeleton: optional delete-all, load, transform,
// insert, persist the ID counter, commit (per policy), report. A table is
// cleared at most once per export, so families sharing it keep each
// other's rows.
func runFamily[S, R any](ctx context.Context, e *Exporter, f family[S, R]) (int64, error) {
	began := time.Now()
	e.rep.Progress(f.label, f.start)

	var inserted, skipped int64
	err := e.session.Do(ctx, func(tx *storage.Tx) error {
		inserted, skipped = 0, 0
		if e.opts.ClearTables && !e.cleared[f.table.Name] {
			n, err := tx.DeleteAll(ctx, f.table.Name)
			if err != nil {
				return targetErr(err)
			}
			e.cleared[f.table.Name] = true
			metrics.RecordRows(e.opts.Job, f.table.Name, metrics.RowsDeleted, n)
		}

		src, err := f.load(ctx, tx)
		if err != nil {
			return err
		}
		rows := make([]R, 0, len(src))
		for _, s := range src {
			r, ok := f.transform(s, e.ids.Peek())
			if !ok {
				skipped++
				continue
			}
			e.ids.Next()
			rows = append(rows, r)
		}

		if inserted, err = storage.Insert(ctx, tx, f.table.Name, f.table.InsertColumns(), rows); err != nil {
			return targetErr(err)
		}
		return targetErr(e.ids.Persist(ctx, tx))
	})
	metrics.RecordFamily(e.opts.Job, f.name, err, time.Since(began))
	if err != nil {
		return 0, err
	}

	metrics.RecordRows(e.opts.Job, f.table.Name, metrics.RowsInserted, inserted)
	metrics.RecordRows(e.opts.Job, f.table.Name, metrics.RowsSkipped, skipped)
	e.log.Info("family exported",
		zap.String("family", f.name),
		zap.String("table", f.table.Name),
		zap.Int64("inserted", inserted),
		zap.Int64("skipped", skipped),
		zap.Int64("next_id", e.ids.Persisted()),
		zap.Duration("took", time.Since(began)),
	)
	e.rep.Progress(fmt.Sprintf(f.done, humanize.Comma(inserted)), f.stop)
	return inserted, nil
}
