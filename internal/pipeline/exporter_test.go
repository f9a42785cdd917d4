package pipeline

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"qkhe/internal/config"
	"qkhe/internal/hystem"
	"qkhe/internal/qkan"
	"qkhe/internal/qkan/qkantest"
	"qkhe/internal/report"
	"qkhe/internal/storage"
)

func TestExportWritesEveryFamily(t *testing.T) {
	ctx := context.Background()
	tgt := newTarget(t)
	rec := &report.Recorder{}

	e := newExporter(project(), tgt, storage.PerFamily, rec, Options{CatchmentDifference: true})
	require.NoError(t, e.Export(ctx))

	db := tgt.DB()
	want := map[string]int{
		hystem.TableManhole:    2,
		hystem.TableStorage:    1,
		hystem.TableOutlet:     1,
		hystem.TablePipe:       1,
		hystem.TableSoilClass:  5,
		hystem.TableRunoff:     2,
		hystem.TableRainGauge:  2,
		hystem.TableSurface:    3,
		hystem.TableRegion:     1,
		hystem.TableDischarger: 1,
	}
	for table, n := range want {
		require.Equal(t, n, count(t, db, table), table)
	}

	events := rec.Filter(report.KindProgress)
	require.NotEmpty(t, events)
	for i := 1; i < len(events); i++ {
		require.GreaterOrEqual(t, events[i].Fraction, events[i-1].Fraction, events[i].Title)
	}
	last := events[len(events)-1]
	require.Equal(t, "Ende...", last.Title)
	require.Equal(t, 1.0, last.Fraction)

	notices := rec.Filter(report.KindNotice)
	require.Equal(t, "Datenexport abgeschlossen.", notices[len(notices)-1].Detail)
	require.Empty(t, rec.Filter(report.KindError))
	require.Empty(t, rec.Filter(report.KindWarning))
}

func TestExportIDsAreContiguous(t *testing.T) {
	ctx := context.Background()
	tgt := newTarget(t)

	e := newExporter(project(), tgt, storage.PerFamily, nil, Options{CatchmentDifference: true})
	require.NoError(t, e.Export(ctx))

	ids := allIDs(t, tgt.DB())
	require.Len(t, ids, 19)
	for i, id := range ids {
		require.Equal(t, int64(i+1), id)
	}
	require.Equal(t, ids[len(ids)-1]+1, nextID(t, tgt.DB()))
	require.Equal(t, nextID(t, tgt.DB()), e.Allocator().Persisted())
}

func TestExportContinuesFromControlRecord(t *testing.T) {
	ctx := context.Background()
	tgt := newTarget(t)
	_, err := tgt.DB().Exec(`UPDATE "ITWH$PROGINFO" SET "NEXTID" = 100`)
	require.NoError(t, err)

	e := newExporter(project(), tgt, storage.PerFamily, nil, Options{})
	require.NoError(t, e.Export(ctx))

	ids := allIDs(t, tgt.DB())
	require.Equal(t, int64(100), ids[0])
	require.Equal(t, int64(100+len(ids)), nextID(t, tgt.DB()))
}

func TestExportNetworkValues(t *testing.T) {
	ctx := context.Background()
	tgt := newTarget(t)
	require.NoError(t, newExporter(project(), tgt, storage.PerFamily, nil, Options{}).Export(ctx))
	db := tgt.DB()

	var m hystem.Manhole
	require.NoError(t, db.Get(&m, `SELECT * FROM "SCHACHT" WHERE "NAME" = 'S1'`))
	require.Equal(t, int64(1), m.ID)
	require.Equal(t, 101.235, m.CoverElevation.Float64)
	require.Equal(t, m.CoverElevation, m.GroundElevation)
	require.Equal(t, 1, m.Kind)
	require.Equal(t, 1000.0, m.Diameter)
	require.Equal(t, "01.03.2024 12:30:00", m.LastModified)

	var sp hystem.StorageStructure
	require.NoError(t, db.Get(&sp, `SELECT * FROM "SPEICHERSCHACHT"`))
	require.Equal(t, "Becken", sp.Comment.String)
	require.Equal(t, 100.0, sp.FullLevel.Float64)

	var out hystem.Outlet
	require.NoError(t, db.Get(&out, `SELECT * FROM "AUSLASS"`))
	require.Equal(t, 3, out.Kind)
	require.False(t, out.Comment.Valid)

	var p struct {
		hystem.Pipe
		UpperRef  sql.NullInt64 `db:"SCHACHTOBENREF"`
		LowerRef  sql.NullInt64 `db:"SCHACHTUNTENREF"`
		RegionRef sql.NullInt64 `db:"TEILEINZUGSGEBIETREF"`
	}
	require.NoError(t, db.Get(&p, `SELECT * FROM "ROHR"`))
	require.Equal(t, 5.0, p.Length.Float64)
	require.Equal(t, 99.0, p.UpperInvert.Float64)
	require.Equal(t, 98.0, p.LowerInvert.Float64)
	require.Equal(t, DefaultRoughness, p.Roughness)
	require.Equal(t, p.Roughness, p.RoughnessDisplay)
	require.False(t, p.CustomProfile.Valid)
	require.Equal(t, int64(1), p.UpperRef.Int64)
	require.Equal(t, int64(2), p.LowerRef.Int64)
	require.True(t, p.RegionRef.Valid)
}

func TestExportSkipsInvalidProfiles(t *testing.T) {
	ctx := context.Background()
	src := project()
	src.PipeRows = []qkan.Pipe{
		{Name: "ok", Upper: "S1", Lower: "S2", ProfileCode: str("1")},
		{Name: "zero", Upper: "S1", Lower: "S2", ProfileCode: str("0")},
		{Name: "negative", Upper: "S1", Lower: "S2", ProfileCode: str("-3")},
		{Name: "text", Upper: "S1", Lower: "S2", ProfileCode: str("Ei")},
		{Name: "null", Upper: "S1", Lower: "S2"},
		{Name: "custom", Upper: "S1", Lower: "S2", ProfileCode: str("68"), ProfileName: str("Maul 600")},
	}
	tgt := newTarget(t)
	e := newExporter(src, tgt, storage.PerFamily, nil, Options{})
	require.NoError(t, e.Export(ctx))

	var names []string
	require.NoError(t, tgt.DB().Select(&names, `SELECT "NAME" FROM "ROHR" ORDER BY "NAME"`))
	require.Equal(t, []string{"custom", "ok"}, names)

	var custom sql.NullString
	require.NoError(t, tgt.DB().Get(&custom, `SELECT "SONDERPROFILBEZEICHNUNG" FROM "ROHR" WHERE "NAME" = 'custom'`))
	require.Equal(t, "Maul 600", custom.String)

	// skipped pipes consume no IDs
	ids := allIDs(t, tgt.DB())
	require.Equal(t, int64(len(ids)+1), nextID(t, tgt.DB()))
}

func TestExportSurfaces(t *testing.T) {
	ctx := context.Background()
	tgt := newTarget(t)
	require.NoError(t, newExporter(project(), tgt, storage.PerFamily, nil, Options{}).Export(ctx))

	var rows []hystem.Surface
	require.NoError(t, tgt.DB().Select(&rows, `SELECT * FROM "FLAECHE" ORDER BY "ID"`))
	require.Len(t, rows, 2)

	dach := rows[0]
	require.Equal(t, "f_dach", dach.Name)
	require.Equal(t, 100.0, dach.Size)
	require.Equal(t, 20.0, dach.StorageConstant)
	require.Equal(t, 60.0, dach.ConcentrationTime)
	require.Equal(t, 0, dach.Type)
	require.Equal(t, "RS1", dach.RainGauge)
	require.Equal(t, hystem.DefaultComment, dach.Comment)
	require.Equal(t, 3, dach.Reservoirs)
	require.Equal(t, 2, dach.StorageMethod)

	wiese := rows[1]
	require.Equal(t, "f_wiese", wiese.Name)
	require.Equal(t, 1, wiese.Type)
	require.Equal(t, "H1", wiese.Pipe, "pipe taken from the containing catchment")
	require.Equal(t, DefaultRainGauge, wiese.RainGauge)
}

func TestSurfaceTypeFollowsSoilClass(t *testing.T) {
	ctx := context.Background()
	tgt := newTarget(t)
	require.NoError(t, newExporter(project(), tgt, storage.PerFamily, nil, Options{CatchmentDifference: true}).Export(ctx))

	var rows []struct {
		Type int            `db:"TYP"`
		Set  sql.NullString `db:"PARAMETERSATZ"`
	}
	require.NoError(t, tgt.DB().Select(&rows, `SELECT "TYP", "PARAMETERSATZ" FROM "FLAECHE"`))
	soil := map[string]bool{"befestigt": false, "unbefestigt": true}
	for _, r := range rows {
		require.Equal(t, soil[r.Set.String], r.Type == 1, r.Set.String)
	}
}

func TestDifferenceSurfaces(t *testing.T) {
	small := func() *qkantest.Memory {
		src := project()
		src.CatchmentRows = append(src.CatchmentRows, qkan.Catchment{
			PK: 2, Name: "klein", Pipe: str("H2"), Region: str("Nord"), Geom: rect(0, 0, 5, 5),
		})
		return src
	}

	tests := []struct {
		name   string
		policy string
		want   []string
	}{
		{name: "keep", policy: config.DifferenceKeep, want: []string{"f_klein", "f_tezg1"}},
		{name: "skip", policy: config.DifferenceSkip, want: []string{"f_tezg1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			tgt := newTarget(t)
			rec := &report.Recorder{}
			e := newExporter(small(), tgt, storage.PerFamily, rec, Options{CatchmentDifference: true, DifferencePolicy: tt.policy})
			require.NoError(t, e.Export(ctx))

			var names []string
			require.NoError(t, tgt.DB().Select(&names,
				`SELECT "NAME" FROM "FLAECHE" WHERE "NAME" NOT IN ('f_dach', 'f_wiese') ORDER BY "NAME"`))
			require.Equal(t, tt.want, names)

			warnings := rec.Filter(report.KindWarning)
			require.Len(t, warnings, 1)
			require.Equal(t, "1 Haltungsflächen haben eine Differenzfläche <= 0", warnings[0].Detail)
		})
	}

	ctx := context.Background()
	tgt := newTarget(t)
	require.NoError(t, newExporter(project(), tgt, storage.PerFamily, nil, Options{CatchmentDifference: true}).Export(ctx))
	var s hystem.Surface
	require.NoError(t, tgt.DB().Get(&s, `SELECT * FROM "FLAECHE" WHERE "NAME" = 'f_tezg1'`))
	require.Equal(t, 100.0, s.Size)
	require.Equal(t, "H1", s.Pipe)
	require.Equal(t, 1, s.Type)
}

func TestRainGauges(t *testing.T) {
	ctx := context.Background()

	t.Run("none referenced", func(t *testing.T) {
		src := project()
		src.SurfaceRows = nil
		tgt := newTarget(t)
		require.NoError(t, newExporter(src, tgt, storage.PerFamily, nil, Options{}).Export(ctx))

		var g []hystem.RainGauge
		require.NoError(t, tgt.DB().Select(&g, `SELECT * FROM "REGENSCHREIBER"`))
		require.Len(t, g, 1)
		require.Equal(t, DefaultRainGauge, g[0].Name)
		require.Equal(t, 1, g[0].Number)
		require.Equal(t, "10001", g[0].Station)
		require.Equal(t, RainGaugeComment, g[0].Comment)
	})

	t.Run("existing gauges are kept", func(t *testing.T) {
		tgt := newTarget(t)
		_, err := tgt.DB().Exec(`INSERT INTO "REGENSCHREIBER" ("ID", "NAME") VALUES (900, 'RS1')`)
		require.NoError(t, err)
		require.NoError(t, newExporter(project(), tgt, storage.PerFamily, nil, Options{}).Export(ctx))

		var g []hystem.RainGauge
		require.NoError(t, tgt.DB().Select(&g, `SELECT * FROM "REGENSCHREIBER" WHERE "ID" <> 900`))
		require.Len(t, g, 1)
		require.Equal(t, DefaultRainGauge, g[0].Name)
		require.Equal(t, "10001", g[0].Station)
	})
}

func TestDischargers(t *testing.T) {
	ctx := context.Background()
	tgt := newTarget(t)
	require.NoError(t, newExporter(project(), tgt, storage.PerFamily, nil, Options{}).Export(ctx))

	var d hystem.Discharger
	require.NoError(t, tgt.DB().Get(&d, `SELECT * FROM "EINZELEINLEITER"`))
	require.Equal(t, "tezg1_SW_TEZG", d.Name)
	require.Equal(t, 1.0, d.Population.Float64)
	require.Equal(t, 10.0, d.X.Float64)
	require.Equal(t, 5.0, d.Y.Float64)
	require.Equal(t, "H1", d.Pipe.String)
	require.Equal(t, 14.0, d.HourlyMean.Float64)
	require.Equal(t, 3, d.Origin)
	require.Equal(t, 1, d.Independent)
	require.Equal(t, "Nord", d.Region.String)
}

func TestSelectionRestrictsExport(t *testing.T) {
	ctx := context.Background()
	src := project()
	src.ManholeRows = append(src.ManholeRows, qkan.Manhole{Name: "S9", Kind: string(qkan.KindNode), Region: str("Sued")})
	tgt := newTarget(t)
	require.NoError(t, newExporter(src, tgt, storage.PerFamily, nil, Options{Selection: qkan.Selection{"Nord"}}).Export(ctx))

	require.Equal(t, 2, count(t, tgt.DB(), hystem.TableManhole))
	require.Equal(t, 1, count(t, tgt.DB(), hystem.TableRegion))
}

func TestClearTables(t *testing.T) {
	ctx := context.Background()
	for _, clear := range []bool{false, true} {
		tgt := newTarget(t)
		for _, table := range hystem.All() {
			_, err := tgt.DB().Exec(`INSERT INTO "` + table.Name + `" ("ID", "NAME") VALUES (500, 'alt')`)
			require.NoError(t, err)
		}
		opts := Options{ClearTables: clear, CatchmentDifference: true}
		require.NoError(t, newExporter(project(), tgt, storage.PerFamily, nil, opts).Export(ctx))

		for _, table := range hystem.All() {
			var n int
			require.NoError(t, tgt.DB().Get(&n, `SELECT COUNT(*) FROM "`+table.Name+`" WHERE "NAME" = 'alt'`))
			if clear {
				require.Zero(t, n, table.Name)
			} else {
				require.Equal(t, 1, n, table.Name)
			}
		}

		var surfaces []string
		require.NoError(t, tgt.DB().Select(&surfaces,
			`SELECT "NAME" FROM "FLAECHE" WHERE "NAME" <> 'alt' ORDER BY "ID"`))
		require.Equal(t, []string{"f_dach", "f_tezg1", "f_wiese"}, surfaces, "clear=%v", clear)

		if clear {
			ids := allIDs(t, tgt.DB())
			for i, id := range ids {
				require.Equal(t, int64(i+1), id)
			}
			require.Equal(t, int64(len(ids)+1), nextID(t, tgt.DB()))
		}
	}
}

func TestExportProgressIncreases(t *testing.T) {
	for _, difference := range []bool{false, true} {
		rec := &report.Recorder{}
		e := newExporter(project(), newTarget(t), storage.PerFamily, rec, Options{CatchmentDifference: difference})
		require.NoError(t, e.Export(context.Background()))

		progress := rec.Filter(report.KindProgress)
		require.NotEmpty(t, progress)
		for i := 1; i < len(progress); i++ {
			require.Greater(t, progress[i].Fraction, progress[i-1].Fraction,
				"%q after %q", progress[i].Title, progress[i-1].Title)
		}
		require.Equal(t, 1.0, progress[len(progress)-1].Fraction)
	}
}

func TestResolverIsIdempotent(t *testing.T) {
	ctx := context.Background()
	tgt := newTarget(t)
	e := newExporter(project(), tgt, storage.PerFamily, nil, Options{})
	require.NoError(t, e.Export(ctx))

	type refs struct {
		Upper  sql.NullInt64 `db:"SCHACHTOBENREF"`
		Lower  sql.NullInt64 `db:"SCHACHTUNTENREF"`
		Region sql.NullInt64 `db:"TEILEINZUGSGEBIETREF"`
	}
	read := func() ([]refs, []sql.NullInt64) {
		var pipes []refs
		require.NoError(t, tgt.DB().Select(&pipes,
			`SELECT "SCHACHTOBENREF", "SCHACHTUNTENREF", "TEILEINZUGSGEBIETREF" FROM "ROHR" ORDER BY "ID"`))
		var soil []sql.NullInt64
		require.NoError(t, tgt.DB().Select(&soil, `SELECT "BODENKLASSEREF" FROM "ABFLUSSPARAMETER" ORDER BY "ID"`))
		return pipes, soil
	}

	pipes1, soil1 := read()
	require.NoError(t, e.resolve(ctx))
	pipes2, soil2 := read()
	require.Equal(t, pipes1, pipes2)
	require.Equal(t, soil1, soil2)

	// befestigt has no soil class, unbefestigt points at Sand
	require.False(t, soil1[0].Valid)
	var sand int64
	require.NoError(t, tgt.DB().Get(&sand, `SELECT "ID" FROM "BODENKLASSE" WHERE "NAME" = 'Sand'`))
	require.Equal(t, sand, soil1[1].Int64)
}

func TestExportSourceFailure(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")

	tests := []struct {
		name         string
		policy       storage.Policy
		wantManholes int
	}{
		{name: "per-family keeps committed families", policy: storage.PerFamily, wantManholes: 2},
		{name: "whole-run rolls everything back", policy: storage.WholeRun, wantManholes: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := project()
			src.Fail = map[string]error{"Regions": boom}
			tgt := newTarget(t)
			rec := &report.Recorder{}

			err := newExporter(src, tgt, tt.policy, rec, Options{}).Export(ctx)
			require.ErrorIs(t, err, boom)

			var qe *QueryError
			require.ErrorAs(t, err, &qe)
			require.Equal(t, SideSource, qe.Side)

			errs := rec.Filter(report.KindError)
			require.Len(t, errs, 1)
			require.Equal(t, titleSource, errs[0].Title)
			require.Contains(t, errs[0].Detail, "-- Regions")
			require.Zero(t, errs[0].Persist)

			require.Equal(t, tt.wantManholes, count(t, tgt.DB(), hystem.TableManhole))
			ids := allIDs(t, tgt.DB())
			if len(ids) == 0 {
				require.Equal(t, int64(1), nextID(t, tgt.DB()))
			} else {
				require.Equal(t, ids[len(ids)-1]+1, nextID(t, tgt.DB()))
			}
		})
	}
}

func TestExportTargetFailure(t *testing.T) {
	ctx := context.Background()
	tgt := newTarget(t)
	_, err := tgt.DB().Exec(`DROP TABLE "ROHR"`)
	require.NoError(t, err)
	rec := &report.Recorder{}

	err = newExporter(project(), tgt, storage.PerFamily, rec, Options{}).Export(ctx)
	require.Error(t, err)

	var qe *QueryError
	require.ErrorAs(t, err, &qe)
	require.Equal(t, SideTarget, qe.Side)
	require.Contains(t, qe.Stmt, `INSERT INTO "ROHR"`)

	errs := rec.Filter(report.KindError)
	require.Len(t, errs, 1)
	require.Equal(t, titleTarget, errs[0].Title)
	require.Equal(t, 2, count(t, tgt.DB(), hystem.TableManhole))
}
