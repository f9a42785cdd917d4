package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"qkhe/internal/hystem"
	"qkhe/internal/metrics"
	"qkhe/internal/storage"
)

// Backfills are the name-to-ID updates run after all families.
func Backfills() []storage.Backfill {
	return []storage.Backfill{
		{Table: hystem.TablePipe, Ref: "SCHACHTOBENREF", Column: "SCHACHTOBEN", Lookup: hystem.TableManhole},
		{Table: hystem.TablePipe, Ref: "SCHACHTUNTENREF", Column: "SCHACHTUNTEN", Lookup: hystem.TableManhole},
		{Table: hystem.TablePipe, Ref: "TEILEINZUGSGEBIETREF", Column: "TEILEINZUGSGEBIET", Lookup: hystem.TableRegion},
		{Table: hystem.TableRunoff, Ref: "BODENKLASSEREF", Column: "BODENKLASSE", Lookup: hystem.TableSoilClass},
	}
}

// resolve fills the reference columns. Names without exactly one match
// keep their NULL reference.
func (e *Exporter) resolve(ctx context.Context) error {
	began := time.Now()
	e.rep.Progress("Referenzen auflösen...", 0.98)

	counts := make([]int64, 0, len(Backfills()))
	err := e.session.Do(ctx, func(tx *storage.Tx) error {
		counts = counts[:0]
		for _, b := range Backfills() {
			n, err := tx.Backfill(ctx, b)
			if err != nil {
				return targetErr(err)
			}
			counts = append(counts, n)
		}
		return nil
	})
	metrics.RecordFamily(e.opts.Job, "resolver", err, time.Since(began))
	if err != nil {
		return err
	}

	for i, b := range Backfills() {
		metrics.RecordRows(e.opts.Job, b.Table, metrics.RowsResolved, counts[i])
		e.log.Debug("references resolved",
			zap.String("table", b.Table),
			zap.String("ref", b.Ref),
			zap.Int64("rows", counts[i]),
		)
	}
	return nil
}
