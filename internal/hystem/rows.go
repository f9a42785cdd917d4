package hystem

import "database/sql"

// Rows carry exactly the inserted columns of their table via db tags.
// Columns without a source counterpart keep the Go zero value, which is
// the HYSTEM-EXTRAN default; non-zero constants are set by the exporters.

type Manhole struct {
	ID              int64           `db:"ID"`
	Name            string          `db:"NAME"`
	CoverElevation  sql.NullFloat64 `db:"DECKELHOEHE"`
	InvertElevation sql.NullFloat64 `db:"SOHLHOEHE"`
	X               sql.NullFloat64 `db:"XKOORDINATE"`
	Y               sql.NullFloat64 `db:"YKOORDINATE"`
	GroundElevation sql.NullFloat64 `db:"GELAENDEHOEHE"`
	SewerKind       int             `db:"KANALART"`
	PressureTight   int             `db:"DRUCKDICHTERDECKEL"`
	ConstantInflow  float64         `db:"KONSTANTERZUFLUSS"`
	Kind            int             `db:"ART"`
	Edges           int             `db:"ANZAHLKANTEN"`
	CrownElevation  float64         `db:"SCHEITELHOEHE"`
	PlanningStatus  int             `db:"PLANUNGSSTATUS"`
	Diameter        float64         `db:"DURCHMESSER"`
	LastModified    string          `db:"LASTMODIFIED"`
}

type StorageStructure struct {
	ID              int64           `db:"ID"`
	Name            string          `db:"NAME"`
	Type            int             `db:"TYP"`
	InvertElevation sql.NullFloat64 `db:"SOHLHOEHE"`
	X               sql.NullFloat64 `db:"XKOORDINATE"`
	Y               sql.NullFloat64 `db:"YKOORDINATE"`
	GroundElevation sql.NullFloat64 `db:"GELAENDEHOEHE"`
	CrownElevation  sql.NullFloat64 `db:"SCHEITELHOEHE"`
	FullLevel       sql.NullFloat64 `db:"HOEHEVOLLFUELLUNG"`
	Kind            int             `db:"ART"`
	Edges           int             `db:"ANZAHLKANTEN"`
	ConstantInflow  float64         `db:"KONSTANTERZUFLUSS"`
	Settling        float64         `db:"ABSETZWIRKUNG"`
	PlanningStatus  int             `db:"PLANUNGSSTATUS"`
	Comment         sql.NullString  `db:"KOMMENTAR"`
	LastModified    string          `db:"LASTMODIFIED"`
}

type Outlet struct {
	ID              int64           `db:"ID"`
	Name            string          `db:"NAME"`
	Type            int             `db:"TYP"`
	CheckValve      int             `db:"RUECKSCHLAGKLAPPE"`
	InvertElevation sql.NullFloat64 `db:"SOHLHOEHE"`
	X               sql.NullFloat64 `db:"XKOORDINATE"`
	Y               sql.NullFloat64 `db:"YKOORDINATE"`
	GroundElevation sql.NullFloat64 `db:"GELAENDEHOEHE"`
	CrownElevation  sql.NullFloat64 `db:"SCHEITELHOEHE"`
	Kind            int             `db:"ART"`
	Edges           int             `db:"ANZAHLKANTEN"`
	ConstantInflow  float64         `db:"KONSTANTERZUFLUSS"`
	PlanningStatus  int             `db:"PLANUNGSSTATUS"`
	Comment         sql.NullString  `db:"KOMMENTAR"`
	LastModified    string          `db:"LASTMODIFIED"`
}

type Pipe struct {
	ID                 int64           `db:"ID"`
	Name               string          `db:"NAME"`
	UpperManhole       string          `db:"SCHACHTOBEN"`
	LowerManhole       string          `db:"SCHACHTUNTEN"`
	Length             sql.NullFloat64 `db:"LAENGE"`
	UpperInvert        sql.NullFloat64 `db:"SOHLHOEHEOBEN"`
	LowerInvert        sql.NullFloat64 `db:"SOHLHOEHEUNTEN"`
	ProfileType        int64           `db:"PROFILTYP"`
	CustomProfile      sql.NullString  `db:"SONDERPROFILBEZEICHNUNG"`
	Geometry1          sql.NullFloat64 `db:"GEOMETRIE1"`
	Geometry2          sql.NullFloat64 `db:"GEOMETRIE2"`
	SewerKind          sql.NullInt64   `db:"KANALART"`
	Roughness          float64         `db:"RAUIGKEITSBEIWERT"`
	Count              int             `db:"ANZAHL"`
	Region             sql.NullString  `db:"TEILEINZUGSGEBIET"`
	CheckValve         int             `db:"RUECKSCHLAGKLAPPE"`
	ConstantInflow     float64         `db:"KONSTANTERZUFLUSS"`
	CatchmentArea      float64         `db:"EINZUGSGEBIET"`
	ConstantInflowTezg float64         `db:"KONSTANTERZUFLUSSTEZG"`
	Slope              float64         `db:"GEFAELLE"`
	TotalArea          float64         `db:"GESAMTFLAECHE"`
	RunoffKind         int             `db:"ABFLUSSART"`
	IndividualConcept  int             `db:"INDIVIDUALKONZEPT"`
	HydraulicRadius    float64         `db:"HYDRAULISCHERRADIUS"`
	PlanningStatus     int             `db:"PLANUNGSSTATUS"`
	EventBalance       int             `db:"EREIGNISBILANZIERUNG"`
	EventLimitEnd      float64         `db:"EREIGNISGRENZWERTENDE"`
	EventLimitStart    float64         `db:"EREIGNISGRENZWERTANFANG"`
	EventSeparation    float64         `db:"EREIGNISTRENNDAUER"`
	EventIndividual    int             `db:"EREIGNISINDIVIDUELL"`
	RoughnessApproach  int             `db:"RAUIGKEITSANSATZ"`
	RoughnessDisplay   float64         `db:"RAUHIGKEITANZEIGE"`
	Material           int             `db:"MATERIALART"`
	LastModified       string          `db:"LASTMODIFIED"`
}

type SoilClassRow struct {
	ID                int64   `db:"ID"`
	Name              string  `db:"NAME"`
	InfiltrationStart float64 `db:"INFILTRATIONSRATEANFANG"`
	InfiltrationEnd   float64 `db:"INFILTRATIONSRATEENDE"`
	InfiltrationInit  float64 `db:"INFILTRATIONSRATESTART"`
	Recession         float64 `db:"RUECKGANGSKONSTANTE"`
	Regeneration      float64 `db:"REGENERATIONSKONSTANTE"`
	SaturationContent float64 `db:"SAETTIGUNGSWASSERGEHALT"`
	Comment           string  `db:"KOMMENTAR"`
	LastModified      string  `db:"LASTMODIFIED"`
}

type RunoffParameter struct {
	ID              int64           `db:"ID"`
	Name            string          `db:"NAME"`
	InitialCoeff    sql.NullFloat64 `db:"ABFLUSSBEIWERTANFANG"`
	FinalCoeff      sql.NullFloat64 `db:"ABFLUSSBEIWERTENDE"`
	WettingLoss     sql.NullFloat64 `db:"BENETZUNGSVERLUST"`
	DepressionLoss  sql.NullFloat64 `db:"MULDENVERLUST"`
	WettingStart    sql.NullFloat64 `db:"BENETZUNGSPEICHERSTART"`
	DepressionStart sql.NullFloat64 `db:"MULDENAUFFUELLGRADSTART"`
	StorageConst    float64         `db:"SPEICHERKONSTANTEKONSTANT"`
	StorageMin      float64         `db:"SPEICHERKONSTANTEMIN"`
	StorageMax      float64         `db:"SPEICHERKONSTANTEMAX"`
	StorageConst2   float64         `db:"SPEICHERKONSTANTEKONSTANT2"`
	StorageMin2     float64         `db:"SPEICHERKONSTANTEMIN2"`
	StorageMax2     float64         `db:"SPEICHERKONSTANTEMAX2"`
	SoilClass       sql.NullString  `db:"BODENKLASSE"`
	CharRain        float64         `db:"CHARAKTERISTISCHEREGENSPENDE"`
	CharRain2       float64         `db:"CHARAKTERISTISCHEREGENSPENDE2"`
	Type            int             `db:"TYP"`
	AnnualLosses    int             `db:"JAHRESGANGVERLUSTE"`
	Comment         sql.NullString  `db:"KOMMENTAR"`
	LastModified    string          `db:"LASTMODIFIED"`
}

type RainGauge struct {
	ID             int64   `db:"ID"`
	Number         int     `db:"NUMMER"`
	Station        string  `db:"STATION"`
	Name           string  `db:"NAME"`
	X              float64 `db:"XKOORDINATE"`
	Y              float64 `db:"YKOORDINATE"`
	Z              float64 `db:"ZKOORDINATE"`
	AreaTotal      float64 `db:"FLAECHEGESAMT"`
	AreaPervious   float64 `db:"FLAECHEDURCHLAESSIG"`
	AreaImpervious float64 `db:"FLAECHEUNDURCHLAESSIG"`
	Pipes          int     `db:"ANZAHLHALTUNGEN"`
	InternalNumber int     `db:"INTERNENUMMER"`
	Comment        string  `db:"KOMMENTAR"`
	LastModified   string  `db:"LASTMODIFIED"`
}

type Surface struct {
	ID                int64          `db:"ID"`
	Name              string         `db:"NAME"`
	Size              float64        `db:"GROESSE"`
	RainGauge         string         `db:"REGENSCHREIBER"`
	Pipe              string         `db:"HALTUNG"`
	Reservoirs        int            `db:"ANZAHLSPEICHER"`
	StorageConstant   float64        `db:"SPEICHERKONSTANTE"`
	ConcentrationTime float64        `db:"SCHWERPUNKTLAUFZEIT"`
	StorageMethod     int            `db:"BERECHNUNGSPEICHERKONSTANTE"`
	Type              int            `db:"TYP"`
	ParameterSet      sql.NullString `db:"PARAMETERSATZ"`
	SlopeClass        sql.NullInt64  `db:"NEIGUNGSKLASSE"`
	Independent       int            `db:"ZUORDNUNABHEZG"`
	Comment           string         `db:"KOMMENTAR"`
	LastModified      string         `db:"LASTMODIFIED"`
}

type Region struct {
	ID           int64           `db:"ID"`
	Name         string          `db:"NAME"`
	Density      sql.NullFloat64 `db:"EINWOHNERDICHTE"`
	Consumption  sql.NullFloat64 `db:"WASSERVERBRAUCH"`
	HourlyMean   sql.NullFloat64 `db:"STUNDENMITTEL"`
	Surcharge    sql.NullFloat64 `db:"FREMDWASSERZUSCHLAG"`
	Area         sql.NullFloat64 `db:"FLAECHE"`
	Comment      string          `db:"KOMMENTAR"`
	LastModified string          `db:"LASTMODIFIED"`
}

type Discharger struct {
	ID               int64           `db:"ID"`
	Name             string          `db:"NAME"`
	X                sql.NullFloat64 `db:"XKOORDINATE"`
	Y                sql.NullFloat64 `db:"YKOORDINATE"`
	Pipe             sql.NullString  `db:"ROHR"`
	Population       sql.NullFloat64 `db:"EINWOHNER"`
	HourlyMean       sql.NullFloat64 `db:"STUNDENMITTEL"`
	Surcharge        sql.NullFloat64 `db:"FREMDWASSERZUSCHLAG"`
	Origin           int             `db:"HERKUNFT"`
	SewageKind       int             `db:"ABWASSERART"`
	AssignmentLocked int             `db:"ZUORDNUNGGESPERRT"`
	Independent      int             `db:"ZUORDNUNABHEZG"`
	Consumption      float64         `db:"WASSERVERBRAUCH"`
	Factor           float64         `db:"FAKTOR"`
	TotalArea        float64         `db:"GESAMTFLAECHE"`
	InflowModel      int             `db:"ZUFLUSSMODELL"`
	InflowDirect     float64         `db:"ZUFLUSSDIREKT"`
	Inflow           float64         `db:"ZUFLUSS"`
	PlanningStatus   int             `db:"PLANUNGSSTATUS"`
	Region           sql.NullString  `db:"TEILEINZUGSGEBIET"`
	LastModified     string          `db:"LASTMODIFIED"`
}
