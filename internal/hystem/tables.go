// Package hystem describes the HYSTEM-EXTRAN model database the export
// writes into: the control record, the tables with the columns qkhe fills,
// typed rows for each of them and the fixed soil-class catalog.
//
// Column names are the ones HYSTEM-EXTRAN uses and stay in German.
package hystem

import "qkhe/internal/ddl"

// Control record holding the next free ID.
const (
	ProgInfoTable  = "ITWH$PROGINFO"
	NextIDColumn   = "NEXTID"
	IDColumn       = "ID"
	NameColumn     = "NAME"
	DefaultComment = "eingefuegt von qkhe"
)

// Table names.
const (
	TableManhole    = "SCHACHT"
	TableStorage    = "SPEICHERSCHACHT"
	TableOutlet     = "AUSLASS"
	TablePipe       = "ROHR"
	TableSoilClass  = "BODENKLASSE"
	TableRunoff     = "ABFLUSSPARAMETER"
	TableRainGauge  = "REGENSCHREIBER"
	TableSurface    = "FLAECHE"
	TableRegion     = "TEILEINZUGSGEBIET"
	TableDischarger = "EINZELEINLEITER"
)

// Table is one target table: the columns the exporter inserts, in order,
// and the reference columns the resolver fills afterwards.
type Table struct {
	Name    string
	Columns []ddl.ColumnDef
	Refs    []ddl.ColumnDef
}

// InsertColumns returns the names of the inserted columns.
func (t Table) InsertColumns() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// Def returns the full table definition for template creation.
func (t Table) Def() ddl.TableDef {
	cols := make([]ddl.ColumnDef, 0, len(t.Columns)+len(t.Refs))
	cols = append(cols, t.Columns...)
	cols = append(cols, t.Refs...)
	return ddl.TableDef{FQN: t.Name, Columns: cols}
}

func id() ddl.ColumnDef {
	return ddl.ColumnDef{Name: IDColumn, Kind: ddl.KindInteger, PrimaryKey: true}
}

func text(name string) ddl.ColumnDef {
	return ddl.ColumnDef{Name: name, Kind: ddl.KindText, Nullable: true}
}

func number(name string) ddl.ColumnDef {
	return ddl.ColumnDef{Name: name, Kind: ddl.KindReal, Nullable: true}
}

func integer(name string) ddl.ColumnDef {
	return ddl.ColumnDef{Name: name, Kind: ddl.KindInteger, Nullable: true}
}

func numbers(names ...string) []ddl.ColumnDef {
	out := make([]ddl.ColumnDef, len(names))
	for i, n := range names {
		out[i] = number(n)
	}
	return out
}

func integers(names ...string) []ddl.ColumnDef {
	out := make([]ddl.ColumnDef, len(names))
	for i, n := range names {
		out[i] = integer(n)
	}
	return out
}

func columns(groups ...[]ddl.ColumnDef) []ddl.ColumnDef {
	var out []ddl.ColumnDef
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

func one(c ddl.ColumnDef) []ddl.ColumnDef { return []ddl.ColumnDef{c} }

var (
	Manholes = Table{
		Name: TableManhole,
		Columns: columns(
			one(id()), one(text(NameColumn)),
			numbers("DECKELHOEHE", "SOHLHOEHE", "XKOORDINATE", "YKOORDINATE", "GELAENDEHOEHE"),
			integers("KANALART", "DRUCKDICHTERDECKEL"),
			numbers("KONSTANTERZUFLUSS"),
			integers("ART", "ANZAHLKANTEN"),
			numbers("SCHEITELHOEHE"),
			integers("PLANUNGSSTATUS"),
			numbers("DURCHMESSER"),
			one(text("LASTMODIFIED")),
		),
	}

	StorageStructures = Table{
		Name: TableStorage,
		Columns: columns(
			one(id()), one(text(NameColumn)), integers("TYP"),
			numbers("SOHLHOEHE", "XKOORDINATE", "YKOORDINATE", "GELAENDEHOEHE", "SCHEITELHOEHE", "HOEHEVOLLFUELLUNG"),
			integers("ART", "ANZAHLKANTEN"),
			numbers("KONSTANTERZUFLUSS", "ABSETZWIRKUNG"),
			integers("PLANUNGSSTATUS"),
			one(text("KOMMENTAR")), one(text("LASTMODIFIED")),
		),
	}

	Outlets = Table{
		Name: TableOutlet,
		Columns: columns(
			one(id()), one(text(NameColumn)), integers("TYP", "RUECKSCHLAGKLAPPE"),
			numbers("SOHLHOEHE", "XKOORDINATE", "YKOORDINATE", "GELAENDEHOEHE", "SCHEITELHOEHE"),
			integers("ART", "ANZAHLKANTEN"),
			numbers("KONSTANTERZUFLUSS"),
			integers("PLANUNGSSTATUS"),
			one(text("KOMMENTAR")), one(text("LASTMODIFIED")),
		),
	}

	Pipes = Table{
		Name: TablePipe,
		Columns: columns(
			one(id()), one(text(NameColumn)), one(text("SCHACHTOBEN")), one(text("SCHACHTUNTEN")),
			numbers("LAENGE", "SOHLHOEHEOBEN", "SOHLHOEHEUNTEN"),
			integers("PROFILTYP"), one(text("SONDERPROFILBEZEICHNUNG")),
			numbers("GEOMETRIE1", "GEOMETRIE2"),
			integers("KANALART"),
			numbers("RAUIGKEITSBEIWERT"),
			integers("ANZAHL"), one(text("TEILEINZUGSGEBIET")),
			integers("RUECKSCHLAGKLAPPE"),
			numbers("KONSTANTERZUFLUSS", "EINZUGSGEBIET", "KONSTANTERZUFLUSSTEZG", "GEFAELLE", "GESAMTFLAECHE"),
			integers("ABFLUSSART", "INDIVIDUALKONZEPT"),
			numbers("HYDRAULISCHERRADIUS"),
			integers("PLANUNGSSTATUS", "EREIGNISBILANZIERUNG"),
			numbers("EREIGNISGRENZWERTENDE", "EREIGNISGRENZWERTANFANG", "EREIGNISTRENNDAUER"),
			integers("EREIGNISINDIVIDUELL", "RAUIGKEITSANSATZ"),
			numbers("RAUHIGKEITANZEIGE"),
			integers("MATERIALART"),
			one(text("LASTMODIFIED")),
		),
		Refs: integers("SCHACHTOBENREF", "SCHACHTUNTENREF", "TEILEINZUGSGEBIETREF"),
	}

	SoilClasses = Table{
		Name: TableSoilClass,
		Columns: columns(
			one(id()), one(text(NameColumn)),
			numbers("INFILTRATIONSRATEANFANG", "INFILTRATIONSRATEENDE", "INFILTRATIONSRATESTART",
				"RUECKGANGSKONSTANTE", "REGENERATIONSKONSTANTE", "SAETTIGUNGSWASSERGEHALT"),
			one(text("KOMMENTAR")), one(text("LASTMODIFIED")),
		),
	}

	RunoffParameters = Table{
		Name: TableRunoff,
		Columns: columns(
			one(id()), one(text(NameColumn)),
			numbers("ABFLUSSBEIWERTANFANG", "ABFLUSSBEIWERTENDE", "BENETZUNGSVERLUST", "MULDENVERLUST",
				"BENETZUNGSPEICHERSTART", "MULDENAUFFUELLGRADSTART",
				"SPEICHERKONSTANTEKONSTANT", "SPEICHERKONSTANTEMIN", "SPEICHERKONSTANTEMAX",
				"SPEICHERKONSTANTEKONSTANT2", "SPEICHERKONSTANTEMIN2", "SPEICHERKONSTANTEMAX2"),
			one(text("BODENKLASSE")),
			numbers("CHARAKTERISTISCHEREGENSPENDE", "CHARAKTERISTISCHEREGENSPENDE2"),
			integers("TYP", "JAHRESGANGVERLUSTE"),
			one(text("KOMMENTAR")), one(text("LASTMODIFIED")),
		),
		Refs: integers("BODENKLASSEREF"),
	}

	RainGauges = Table{
		Name: TableRainGauge,
		Columns: columns(
			one(id()), integers("NUMMER"), one(text("STATION")), one(text(NameColumn)),
			numbers("XKOORDINATE", "YKOORDINATE", "ZKOORDINATE",
				"FLAECHEGESAMT", "FLAECHEDURCHLAESSIG", "FLAECHEUNDURCHLAESSIG"),
			integers("ANZAHLHALTUNGEN", "INTERNENUMMER"),
			one(text("KOMMENTAR")), one(text("LASTMODIFIED")),
		),
	}

	Surfaces = Table{
		Name: TableSurface,
		Columns: columns(
			one(id()), one(text(NameColumn)),
			numbers("GROESSE"), one(text("REGENSCHREIBER")), one(text("HALTUNG")),
			integers("ANZAHLSPEICHER"),
			numbers("SPEICHERKONSTANTE", "SCHWERPUNKTLAUFZEIT"),
			integers("BERECHNUNGSPEICHERKONSTANTE", "TYP"),
			one(text("PARAMETERSATZ")),
			integers("NEIGUNGSKLASSE", "ZUORDNUNABHEZG"),
			one(text("KOMMENTAR")), one(text("LASTMODIFIED")),
		),
	}

	Regions = Table{
		Name: TableRegion,
		Columns: columns(
			one(id()), one(text(NameColumn)),
			numbers("EINWOHNERDICHTE", "WASSERVERBRAUCH", "STUNDENMITTEL", "FREMDWASSERZUSCHLAG", "FLAECHE"),
			one(text("KOMMENTAR")), one(text("LASTMODIFIED")),
		),
	}

	Dischargers = Table{
		Name: TableDischarger,
		Columns: columns(
			one(id()), one(text(NameColumn)),
			numbers("XKOORDINATE", "YKOORDINATE"),
			one(text("ROHR")),
			numbers("EINWOHNER", "STUNDENMITTEL", "FREMDWASSERZUSCHLAG"),
			integers("HERKUNFT", "ABWASSERART", "ZUORDNUNGGESPERRT", "ZUORDNUNABHEZG"),
			numbers("WASSERVERBRAUCH", "FAKTOR", "GESAMTFLAECHE"),
			integers("ZUFLUSSMODELL"),
			numbers("ZUFLUSSDIREKT", "ZUFLUSS"),
			integers("PLANUNGSSTATUS"),
			one(text("TEILEINZUGSGEBIET")),
			one(text("LASTMODIFIED")),
		),
	}
)

// All lists every data table in template creation order.
func All() []Table {
	return []Table{
		Manholes, StorageStructures, Outlets, Pipes, SoilClasses,
		RunoffParameters, RainGauges, Surfaces, Regions, Dischargers,
	}
}

// ProgInfo is the definition of the control table.
func ProgInfo() ddl.TableDef {
	return ddl.TableDef{
		FQN:     ProgInfoTable,
		Columns: []ddl.ColumnDef{{Name: NextIDColumn, Kind: ddl.KindInteger, Default: "1"}},
	}
}

// Defs returns the control table followed by all data tables.
func Defs() []ddl.TableDef {
	out := []ddl.TableDef{ProgInfo()}
	for _, t := range All() {
		out = append(out, t.Def())
	}
	return out
}
