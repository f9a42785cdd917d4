package pipeline

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"qkhe/internal/hystem"
	"qkhe/internal/qkan"
	"qkhe/internal/qkan/qkantest"
	"qkhe/internal/report"
	"qkhe/internal/storage"
	"qkhe/internal/storage/sqlite"
)

var (
	str  = qkantest.Str
	num  = qkantest.Num
	rect = qkantest.Rect
)

var fixedNow = time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

func newTarget(tb testing.TB) *storage.Target {
	tb.Helper()
	db, err := sqlite.Open(context.Background(), ":memory:")
	require.NoError(tb, err)
	tgt := storage.New(db, sqlite.Kind, sqlite.Backend())
	tb.Cleanup(func() { _ = tgt.Close() })
	require.NoError(tb, tgt.Bootstrap(context.Background(), hystem.Defs(), 1))
	return tgt
}

// project is a small but complete QKan project: two nodes joined by one
// pipe, a storage structure, an outlet, one impervious and one pervious
// area feature, a catchment and its region.
func project() *qkantest.Memory {
	return &qkantest.Memory{
		ManholeRows: []qkan.Manhole{
			{Name: "S1", Kind: string(qkan.KindNode), Cover: num(101.23456), Invert: num(99), X: num(0), Y: num(0), Region: str("Nord")},
			{Name: "S2", Kind: string(qkan.KindNode), Cover: num(100), Invert: num(98), X: num(3), Y: num(4), Region: str("Nord")},
			{Name: "SP1", Kind: string(qkan.KindStorage), Cover: num(100), Comment: str("Becken"), Region: str("Nord")},
			{Name: "A1", Kind: string(qkan.KindOutlet), Cover: num(97), Region: str("Nord")},
		},
		PipeRows: []qkan.Pipe{
			{Name: "H1", Upper: "S1", Lower: "S2", ProfileCode: str("1"), Height: num(0.3), Region: str("Nord")},
		},
		RunoffSets: []qkan.RunoffParameterSet{
			{Name: "befestigt", InitialCoeff: num(0.254), FinalCoeff: num(0.9)},
			{Name: "unbefestigt", SoilClass: str("Sand")},
		},
		SurfaceRows: []qkan.SurfaceArea{
			{PK: 1, Name: "dach", Pipe: str("H1"), RunoffSet: str("befestigt"), RainGauge: str("RS1"), Region: str("Nord"), Geom: rect(0, 0, 10, 10)},
			{PK: 2, Name: "wiese", RunoffSet: str("unbefestigt"), Region: str("Nord"), Geom: rect(12, 0, 18, 5)},
		},
		CatchmentRows: []qkan.Catchment{
			{PK: 1, Name: "tezg1", Pipe: str("H1"), RunoffSet: str("unbefestigt"), Region: str("Nord"), Geom: rect(0, 0, 20, 10)},
		},
		RegionRows: []qkan.Region{
			{PK: 1, Name: "Nord", Density: num(50), HourlyMean: num(14), Surcharge: num(100), Geom: rect(-10, -10, 30, 30)},
		},
	}
}

func newExporter(src qkan.Source, tgt *storage.Target, policy storage.Policy, rep report.Reporter, opts Options) *Exporter {
	opts.Now = func() time.Time { return fixedNow }
	if opts.Job == "" {
		opts.Job = "test"
	}
	return New(src, storage.NewSession(tgt, policy), rep, nil, opts)
}

func count(tb testing.TB, db *sqlx.DB, table string) int {
	tb.Helper()
	var n int
	require.NoError(tb, db.Get(&n, `SELECT COUNT(*) FROM "`+table+`"`))
	return n
}

func nextID(tb testing.TB, db *sqlx.DB) int64 {
	tb.Helper()
	var n int64
	require.NoError(tb, db.Get(&n, `SELECT "NEXTID" FROM "ITWH$PROGINFO"`))
	return n
}

// allIDs returns the IDs of every data table in ascending order.
func allIDs(tb testing.TB, db *sqlx.DB) []int64 {
	tb.Helper()
	var out []int64
	for _, t := range hystem.All() {
		var ids []int64
		require.NoError(tb, db.Select(&ids, `SELECT "ID" FROM "`+t.Name+`"`))
		out = append(out, ids...)
	}
	slices.Sort(out)
	return out
}
