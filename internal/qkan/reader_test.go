package qkan

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
	"github.com/stretchr/testify/require"
)

func newMockReader(t *testing.T, kind, driver string) (*Reader, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	r, err := NewReader(sqlx.NewDb(raw, driver), kind, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = raw.Close() })
	return r, mock
}

func TestNewReaderRejectsUnknownKind(t *testing.T) {
	_, err := NewReader(nil, "oracle", nil)
	require.ErrorContains(t, err, `unknown source kind "oracle"`)
}

func TestOpenRequiresDSN(t *testing.T) {
	_, err := Open(context.Background(), Config{Kind: "postgis"}, nil)
	require.ErrorContains(t, err, "DSN must not be empty")
}

func TestSelectionAllows(t *testing.T) {
	all := Selection(nil)
	require.True(t, all.Allows(sql.NullString{}))

	sel := Selection{"TG1", "TG2"}
	require.True(t, sel.Allows(sql.NullString{String: "TG2", Valid: true}))
	require.False(t, sel.Allows(sql.NullString{String: "TG3", Valid: true}))
	require.False(t, sel.Allows(sql.NullString{}))
	require.Equal(t, "TG1,TG2", sel.String())
}

func TestManholesSelectionExpandsAndRebinds(t *testing.T) {
	r, mock := newMockReader(t, KindPostGIS, "pgx")

	mock.ExpectQuery(regexp.QuoteMeta("WHERE schachttyp = $1 AND teilgebiet IN ($2, $3) ORDER BY schnam")).
		WithArgs("Speicher", "TG1", "TG2").
		WillReturnRows(sqlmock.NewRows([]string{"schnam", "deckelhoehe", "sohlhoehe", "schachttyp"}).
			AddRow("SP1", 105.25, 101.0, "Speicher"))

	got, err := r.Manholes(context.Background(), KindStorage, Selection{"TG1", "TG2"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "SP1", got[0].Name)
	require.Equal(t, sql.NullFloat64{Float64: 105.25, Valid: true}, got[0].Cover)
	require.False(t, got[0].X.Valid)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPipesWithoutSelection(t *testing.T) {
	r, mock := newMockReader(t, KindSpatiaLite, "sqlite3")

	mock.ExpectQuery(regexp.QuoteMeta("WHERE (st.he_nr = '0' OR st.he_nr IS NULL) ORDER BY h.haltnam")).
		WithoutArgs().
		WillReturnRows(sqlmock.NewRows([]string{"haltnam", "schoben", "schunten", "profil_he_nr", "oben_x", "unten_x"}).
			AddRow("H1", "S1", "S2", "1", 0.0, 3.0))

	got, err := r.Pipes(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "1", got[0].ProfileCode.String)
	require.Equal(t, 3.0, got[0].LowerX.Float64)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRainGaugeRefs(t *testing.T) {
	r, mock := newMockReader(t, KindPostGIS, "pgx")

	mock.ExpectQuery(regexp.QuoteMeta(rainGaugesSQL)).
		WillReturnRows(sqlmock.NewRows([]string{"regenschreiber"}).AddRow("RS1").AddRow(nil).AddRow("RS2"))

	got, err := r.RainGaugeRefs(context.Background())
	require.NoError(t, err)
	require.Equal(t, RainGaugeRefs{Names: []string{"RS1", "RS2"}, HasNull: true}, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCatchmentsDecodeGeometry(t *testing.T) {
	r, mock := newMockReader(t, KindPostGIS, "pgx")

	poly := orb.Polygon{{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}}
	raw, err := wkb.Marshal(poly)
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta("FROM tezg t")).
		WillReturnRows(sqlmock.NewRows([]string{"pk", "flnam", "haltnam", "teilgebiet", "geom"}).
			AddRow(int64(7), "T7", "H1", nil, raw))

	got, err := r.Catchments(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, int64(7), got[0].PK)
	require.False(t, got[0].Region.Valid)

	g, err := got[0].Geometry()
	require.NoError(t, err)
	require.Equal(t, poly, g)
}

func TestCatchmentIntersectionsDialect(t *testing.T) {
	tests := []struct {
		kind, driver, predicate string
	}{
		{KindPostGIS, "pgx", "JOIN flaechen f ON ST_Intersects(t.geom, f.geom)\n"},
		{KindSpatiaLite, "sqlite3", "JOIN flaechen f ON ST_Intersects(t.geom, f.geom) = 1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			r, mock := newMockReader(t, tt.kind, tt.driver)
			mock.ExpectQuery(regexp.QuoteMeta(tt.predicate)).
				WillReturnRows(sqlmock.NewRows([]string{"pk", "flaeche"}).AddRow(int64(1), 12.5))

			got, err := r.CatchmentIntersections(context.Background(), nil)
			require.NoError(t, err)
			require.Equal(t, []Intersection{{PK: 1, Area: sql.NullFloat64{Float64: 12.5, Valid: true}}}, got)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestQueryFailureCarriesStatement(t *testing.T) {
	r, mock := newMockReader(t, KindPostGIS, "pgx")

	boom := errors.New(`relation "teilgebiete" does not exist`)
	mock.ExpectQuery("FROM teilgebiete").WillReturnError(boom)

	_, err := r.Regions(context.Background(), nil)
	var se *StmtError
	require.ErrorAs(t, err, &se)
	require.ErrorIs(t, err, boom)
	require.Contains(t, se.Statement(), "FROM teilgebiete")
}

func TestCorrectiveWrites(t *testing.T) {
	r, mock := newMockReader(t, KindPostGIS, "pgx")
	ctx := context.Background()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO teilgebiete (tgnam, ewdichte, wverbrauch, stdmittel, fremdwas, kommentar)")).
		WithArgs("Teilgebiet1", 60.0, 120.0, 14.0, 100.0, "x").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE tezg SET teilgebiet = $1 WHERE pk = $2")).
		WithArgs("Teilgebiet1", int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE tezg SET teilgebiet = $1")).
		WithArgs("Teilgebiet1").
		WillReturnResult(sqlmock.NewResult(0, 4))

	valid := func(f float64) sql.NullFloat64 { return sql.NullFloat64{Float64: f, Valid: true} }
	require.NoError(t, r.InsertRegion(ctx, Region{
		Name: "Teilgebiet1", Density: valid(60), Consumption: valid(120), HourlyMean: valid(14), Surcharge: valid(100),
		Comment: sql.NullString{String: "x", Valid: true},
	}))
	require.NoError(t, r.AssignCatchmentRegion(ctx, 3, sql.NullString{String: "Teilgebiet1", Valid: true}))
	require.NoError(t, r.AssignAllCatchments(ctx, "Teilgebiet1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
