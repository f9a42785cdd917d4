package qkan

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Config selects the QKan database.
type Config struct {
	Kind string
	DSN  string
	// Extension overrides the SpatiaLite module to load.
	Extension string
}

// Reader is the sqlx implementation of Source.
type Reader struct {
	db      *sqlx.DB
	dialect dialect
	log     *zap.Logger
}

var _ Source = (*Reader)(nil)

// Open connects to the QKan database and pings it.
func Open(ctx context.Context, cfg Config, log *zap.Logger) (*Reader, error) {
	d, err := dialectFor(strings.ToLower(strings.TrimSpace(cfg.Kind)))
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("qkan: %s: DSN must not be empty", d.kind)
	}

	driver := "pgx"
	if d.kind == KindSpatiaLite {
		driver = spatialiteDriverFor(cfg.Extension)
	}
	db, err := sqlx.Open(driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("qkan: open %s: %w", d.kind, err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("qkan: ping %s: %w", d.kind, err)
	}
	return NewReader(db, d.kind, log)
}

// NewReader wraps an open connection. kind picks the SQL dialect.
func NewReader(db *sqlx.DB, kind string, log *zap.Logger) (*Reader, error) {
	d, err := dialectFor(kind)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Reader{db: db, dialect: d, log: log.With(zap.String("source", d.kind))}, nil
}

func (r *Reader) Close() error { return r.db.Close() }

// bind expands IN (?) lists and rebinds placeholders for the driver.
func (r *Reader) bind(query string, args ...any) (string, []any, error) {
	q, a, err := sqlx.In(query, args...)
	if err != nil {
		return "", nil, &StmtError{Stmt: query, Err: err}
	}
	return r.db.Rebind(q), a, nil
}

func selectRows[T any](ctx context.Context, r *Reader, query string, args ...any) ([]T, error) {
	q, a, err := r.bind(query, args...)
	if err != nil {
		return nil, err
	}
	var out []T
	if err := r.db.SelectContext(ctx, &out, q, a...); err != nil {
		return nil, &StmtError{Stmt: q, Err: err}
	}
	r.log.Debug("qkan query", zap.Int("rows", len(out)), zap.String("sql", oneLine(q)))
	return out, nil
}

func (r *Reader) exec(ctx context.Context, query string, args ...any) error {
	q, a, err := r.bind(query, args...)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, q, a...)
	if err != nil {
		return &StmtError{Stmt: q, Err: err}
	}
	n, _ := res.RowsAffected()
	r.log.Debug("qkan update", zap.Int64("rows", n), zap.String("sql", oneLine(q)))
	return nil
}

// where appends the selection filter on column when sel is not empty.
func where(base, column string, sel Selection, args []any) (string, []any) {
	if sel.Empty() {
		return base, args
	}
	joiner := " WHERE "
	if strings.Contains(strings.ToUpper(base), "WHERE ") {
		joiner = " AND "
	}
	return base + joiner + column + " IN (?)", append(args, []string(sel))
}

func oneLine(q string) string { return strings.Join(strings.Fields(q), " ") }

const countsSQL = `SELECT
  (SELECT COUNT(*) FROM schaechte) AS manholes,
  (SELECT COUNT(*) FROM haltungen) AS pipes,
  (SELECT COUNT(*) FROM flaechen) AS surfaces`

func (r *Reader) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	if err := r.db.GetContext(ctx, &c, countsSQL); err != nil {
		return Counts{}, &StmtError{Stmt: countsSQL, Err: err}
	}
	return c, nil
}

const manholesSQL = `SELECT schnam, deckelhoehe, sohlhoehe, strasse, xsch, ysch, schachttyp,
  teilgebiet, kommentar, CAST(createdat AS TEXT) AS createdat
FROM schaechte
WHERE schachttyp = ?`

func (r *Reader) Manholes(ctx context.Context, kind ManholeKind, sel Selection) ([]Manhole, error) {
	q, args := where(manholesSQL, "teilgebiet", sel, []any{string(kind)})
	return selectRows[Manhole](ctx, r, q+" ORDER BY schnam", args...)
}

// Pipes whose endpoints are not both known manholes drop out of the inner
// joins. Simulation status he_nr '0' (or none) means "export".
const pipesSQL = `SELECT h.haltnam, h.schoben, h.schunten, h.laenge, h.sohleoben, h.sohleunten,
  h.profilnam, p.he_nr AS profil_he_nr, h.hoehe, h.breite, e.he_nr AS entw_he_nr, h.ks,
  h.teilgebiet, CAST(h.createdat AS TEXT) AS createdat,
  n1.xsch AS oben_x, n1.ysch AS oben_y, n1.sohlhoehe AS oben_sohlhoehe,
  n2.xsch AS unten_x, n2.ysch AS unten_y, n2.sohlhoehe AS unten_sohlhoehe,
  st.he_nr AS sim_he_nr
FROM haltungen h
  JOIN schaechte n1 ON h.schoben = n1.schnam
  JOIN schaechte n2 ON h.schunten = n2.schnam
  LEFT JOIN profile p ON h.profilnam = p.profilnam
  LEFT JOIN entwaesserungsarten e ON h.entwart = e.kuerzel
  LEFT JOIN simulationsstatus st ON h.simstatus = st.bezeichnung
WHERE (st.he_nr = '0' OR st.he_nr IS NULL)`

func (r *Reader) Pipes(ctx context.Context, sel Selection) ([]Pipe, error) {
	q, args := where(pipesSQL, "h.teilgebiet", sel, nil)
	return selectRows[Pipe](ctx, r, q+" ORDER BY h.haltnam", args...)
}

const runoffSQL = `SELECT apnam, anfangsabflussbeiwert, endabflussbeiwert, benetzungsverlust,
  muldenverlust, benetzung_startwert, mulden_startwert, bodenklasse, kommentar,
  CAST(createdat AS TEXT) AS createdat
FROM abflussparameter
ORDER BY apnam`

func (r *Reader) RunoffParameterSets(ctx context.Context) ([]RunoffParameterSet, error) {
	return selectRows[RunoffParameterSet](ctx, r, runoffSQL)
}

const rainGaugesSQL = `SELECT DISTINCT regenschreiber FROM flaechen`

func (r *Reader) RainGaugeRefs(ctx context.Context) (RainGaugeRefs, error) {
	names, err := selectRows[sql.NullString](ctx, r, rainGaugesSQL)
	if err != nil {
		return RainGaugeRefs{}, err
	}
	return collectGauges(names), nil
}

func collectGauges(names []sql.NullString) RainGaugeRefs {
	var refs RainGaugeRefs
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if !n.Valid {
			refs.HasNull = true
			continue
		}
		if _, dup := seen[n.String]; dup {
			continue
		}
		seen[n.String] = struct{}{}
		refs.Names = append(refs.Names, n.String)
	}
	return refs
}

const surfacesSQL = `SELECT f.pk, f.flnam, f.haltnam, f.neigkl, f.regenschreiber, f.abflussparameter,
  a.bodenklasse, f.teilgebiet, f.kommentar, CAST(f.createdat AS TEXT) AS createdat,
  ST_AsBinary(f.geom) AS geom
FROM flaechen f
  LEFT JOIN abflussparameter a ON f.abflussparameter = a.apnam`

func (r *Reader) SurfaceAreas(ctx context.Context, sel Selection) ([]SurfaceArea, error) {
	q, args := where(surfacesSQL, "f.teilgebiet", sel, nil)
	return selectRows[SurfaceArea](ctx, r, q+" ORDER BY f.pk", args...)
}

const catchmentsSQL = `SELECT t.pk, t.flnam, t.haltnam, t.neigkl, t.regenschreiber, t.abflussparameter,
  a.bodenklasse, t.teilgebiet, t.kommentar, CAST(t.createdat AS TEXT) AS createdat,
  ST_AsBinary(t.geom) AS geom
FROM tezg t
  LEFT JOIN abflussparameter a ON t.abflussparameter = a.apnam`

func (r *Reader) Catchments(ctx context.Context, sel Selection) ([]Catchment, error) {
	q, args := where(catchmentsSQL, "t.teilgebiet", sel, nil)
	return selectRows[Catchment](ctx, r, q+" ORDER BY t.pk", args...)
}

// CatchmentIntersections sums, per catchment, the area shared with
// impervious area features. Catchments without any overlap are absent.
func (r *Reader) CatchmentIntersections(ctx context.Context, sel Selection) ([]Intersection, error) {
	base := `SELECT t.pk, SUM(ST_Area(ST_Intersection(t.geom, f.geom))) AS flaeche
FROM tezg t
  JOIN flaechen f ON ` + r.dialect.intersects("t.geom", "f.geom") + `
  LEFT JOIN abflussparameter a ON f.abflussparameter = a.apnam
WHERE a.bodenklasse IS NULL`
	q, args := where(base, "f.teilgebiet", sel, nil)
	return selectRows[Intersection](ctx, r, q+" GROUP BY t.pk ORDER BY t.pk", args...)
}

const regionsSQL = `SELECT pk, tgnam, ewdichte, wverbrauch, stdmittel, fremdwas, kommentar,
  CAST(createdat AS TEXT) AS createdat, ST_AsBinary(geom) AS geom
FROM teilgebiete`

func (r *Reader) Regions(ctx context.Context, sel Selection) ([]Region, error) {
	q, args := where(regionsSQL, "tgnam", sel, nil)
	return selectRows[Region](ctx, r, q+" ORDER BY pk", args...)
}

const insertRegionSQL = `INSERT INTO teilgebiete (tgnam, ewdichte, wverbrauch, stdmittel, fremdwas, kommentar)
VALUES (?, ?, ?, ?, ?, ?)`

func (r *Reader) InsertRegion(ctx context.Context, reg Region) error {
	return r.exec(ctx, insertRegionSQL,
		reg.Name, reg.Density, reg.Consumption, reg.HourlyMean, reg.Surcharge, reg.Comment)
}

func (r *Reader) AssignCatchmentRegion(ctx context.Context, pk int64, name sql.NullString) error {
	return r.exec(ctx, `UPDATE tezg SET teilgebiet = ? WHERE pk = ?`, name, pk)
}

func (r *Reader) AssignAllCatchments(ctx context.Context, name string) error {
	return r.exec(ctx, `UPDATE tezg SET teilgebiet = ?`, name)
}
