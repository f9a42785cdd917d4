// Package qkan reads a QKan project database, the source of an export.
//
// Rows are typed with sqlx db tags matching the QKan column names. Polygons
// arrive as WKB and are decoded by the caller with package geo; the only
// database-side spatial work is the intersection sum behind
// CatchmentIntersections.
package qkan

import (
	"database/sql"
	"strings"

	"github.com/paulmach/orb"

	"qkhe/internal/geo"
)

// ManholeKind is the schachttyp tag that splits schaechte into three
// target tables.
type ManholeKind string

const (
	KindNode    ManholeKind = "Schacht"
	KindStorage ManholeKind = "Speicher"
	KindOutlet  ManholeKind = "Auslass"
)

// Selection restricts an export to the named sub-catchment regions
// (teilgebiete). An empty Selection means everything.
type Selection []string

func (s Selection) Empty() bool { return len(s) == 0 }

// Allows reports whether a row tagged with region passes the selection.
func (s Selection) Allows(region sql.NullString) bool {
	if s.Empty() {
		return true
	}
	if !region.Valid {
		return false
	}
	for _, name := range s {
		if name == region.String {
			return true
		}
	}
	return false
}

func (s Selection) String() string { return strings.Join(s, ",") }

// Counts sizes the run for the planning log line.
type Counts struct {
	Manholes     int64 `db:"manholes"`
	Pipes        int64 `db:"pipes"`
	SurfaceAreas int64 `db:"surfaces"`
}

type Manhole struct {
	Name      string          `db:"schnam"`
	Cover     sql.NullFloat64 `db:"deckelhoehe"`
	Invert    sql.NullFloat64 `db:"sohlhoehe"`
	Street    sql.NullString  `db:"strasse"`
	X         sql.NullFloat64 `db:"xsch"`
	Y         sql.NullFloat64 `db:"ysch"`
	Kind      string          `db:"schachttyp"`
	Region    sql.NullString  `db:"teilgebiet"`
	Comment   sql.NullString  `db:"kommentar"`
	CreatedAt sql.NullString  `db:"createdat"`
}

// Pipe is a haltungen row joined to both endpoint manholes and to the
// profile and drainage-type catalogs.
type Pipe struct {
	Name         string          `db:"haltnam"`
	Upper        string          `db:"schoben"`
	Lower        string          `db:"schunten"`
	Length       sql.NullFloat64 `db:"laenge"`
	UpperInvert  sql.NullFloat64 `db:"sohleoben"`
	LowerInvert  sql.NullFloat64 `db:"sohleunten"`
	ProfileName  sql.NullString  `db:"profilnam"`
	ProfileCode  sql.NullString  `db:"profil_he_nr"`
	Height       sql.NullFloat64 `db:"hoehe"`
	Width        sql.NullFloat64 `db:"breite"`
	DrainageCode sql.NullString  `db:"entw_he_nr"`
	Roughness    sql.NullFloat64 `db:"ks"`
	Region       sql.NullString  `db:"teilgebiet"`
	CreatedAt    sql.NullString  `db:"createdat"`

	UpperX      sql.NullFloat64 `db:"oben_x"`
	UpperY      sql.NullFloat64 `db:"oben_y"`
	UpperSohle  sql.NullFloat64 `db:"oben_sohlhoehe"`
	LowerX      sql.NullFloat64 `db:"unten_x"`
	LowerY      sql.NullFloat64 `db:"unten_y"`
	LowerSohle  sql.NullFloat64 `db:"unten_sohlhoehe"`
	SimStatusNr sql.NullString  `db:"sim_he_nr"`
}

type RunoffParameterSet struct {
	Name            string          `db:"apnam"`
	InitialCoeff    sql.NullFloat64 `db:"anfangsabflussbeiwert"`
	FinalCoeff      sql.NullFloat64 `db:"endabflussbeiwert"`
	WettingLoss     sql.NullFloat64 `db:"benetzungsverlust"`
	DepressionLoss  sql.NullFloat64 `db:"muldenverlust"`
	WettingStart    sql.NullFloat64 `db:"benetzung_startwert"`
	DepressionStart sql.NullFloat64 `db:"mulden_startwert"`
	SoilClass       sql.NullString  `db:"bodenklasse"`
	Comment         sql.NullString  `db:"kommentar"`
	CreatedAt       sql.NullString  `db:"createdat"`
}

// Pervious reports whether the set refers to a soil class.
func (p RunoffParameterSet) Pervious() bool { return p.SoilClass.Valid }

// RainGaugeRefs are the distinct gauge names area features refer to.
// HasNull is set when at least one feature names no gauge.
type RainGaugeRefs struct {
	Names   []string
	HasNull bool
}

// SurfaceArea is a flaechen row with the soil class of its runoff set.
type SurfaceArea struct {
	PK         int64          `db:"pk"`
	Name       string         `db:"flnam"`
	Pipe       sql.NullString `db:"haltnam"`
	SlopeClass sql.NullInt64  `db:"neigkl"`
	RainGauge  sql.NullString `db:"regenschreiber"`
	RunoffSet  sql.NullString `db:"abflussparameter"`
	SoilClass  sql.NullString `db:"bodenklasse"`
	Region     sql.NullString `db:"teilgebiet"`
	Comment    sql.NullString `db:"kommentar"`
	CreatedAt  sql.NullString `db:"createdat"`
	Geom       []byte         `db:"geom"`
}

func (s SurfaceArea) Pervious() bool { return s.SoilClass.Valid }

// Geometry decodes the WKB polygon; a missing geometry yields nil.
func (s SurfaceArea) Geometry() (orb.Geometry, error) { return geo.Decode(s.Geom) }

// Catchment is a tezg row: the drainage polygon feeding one pipe.
type Catchment struct {
	PK         int64          `db:"pk"`
	Name       string         `db:"flnam"`
	Pipe       sql.NullString `db:"haltnam"`
	SlopeClass sql.NullInt64  `db:"neigkl"`
	RainGauge  sql.NullString `db:"regenschreiber"`
	RunoffSet  sql.NullString `db:"abflussparameter"`
	SoilClass  sql.NullString `db:"bodenklasse"`
	Region     sql.NullString `db:"teilgebiet"`
	Comment    sql.NullString `db:"kommentar"`
	CreatedAt  sql.NullString `db:"createdat"`
	Geom       []byte         `db:"geom"`
}

func (c Catchment) Pervious() bool { return c.SoilClass.Valid }

func (c Catchment) Geometry() (orb.Geometry, error) { return geo.Decode(c.Geom) }

// Intersection is the summed area a catchment shares with impervious
// area features.
type Intersection struct {
	PK   int64           `db:"pk"`
	Area sql.NullFloat64 `db:"flaeche"`
}

// Region is a teilgebiete row.
type Region struct {
	PK          int64           `db:"pk"`
	Name        string          `db:"tgnam"`
	Density     sql.NullFloat64 `db:"ewdichte"`
	Consumption sql.NullFloat64 `db:"wverbrauch"`
	HourlyMean  sql.NullFloat64 `db:"stdmittel"`
	Surcharge   sql.NullFloat64 `db:"fremdwas"`
	Comment     sql.NullString  `db:"kommentar"`
	CreatedAt   sql.NullString  `db:"createdat"`
	Geom        []byte          `db:"geom"`
}

func (r Region) Geometry() (orb.Geometry, error) { return geo.Decode(r.Geom) }
