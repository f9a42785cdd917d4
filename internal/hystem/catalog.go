package hystem

// CatalogComment marks rows that do not come from the source database.
const CatalogComment = "Exportiert mit qkhe"

// SoilCatalog returns the fixed soil classes. Values are infiltration rates
// in mm/h, constants in 1/h and the saturation water content in percent.
func SoilCatalog() []SoilClassRow {
	return []SoilClassRow{
		soil("VollDurchlaessig", 10, 9, 10, 144, 1.584, 100),
		soil("Sand", 2.099, 0.16, 1.256, 227.9, 1.584, 12),
		soil("SandigerLehm", 1.798, 0.101, 1.06, 143.9, 0.72, 18),
		soil("LehmLoess", 1.601, 0.081, 0.94, 100.2, 0.432, 23),
		soil("Ton", 1.9, 0.03, 1.087, 180, 0.144, 16),
	}
}

func soil(name string, start, end, init, recession, regeneration, saturation float64) SoilClassRow {
	return SoilClassRow{
		Name:              name,
		InfiltrationStart: start,
		InfiltrationEnd:   end,
		InfiltrationInit:  init,
		Recession:         recession,
		Regeneration:      regeneration,
		SaturationContent: saturation,
		Comment:           CatalogComment,
	}
}
