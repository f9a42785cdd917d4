package qkan

import "fmt"

// Kinds of QKan databases.
const (
	KindPostGIS    = "postgis"
	KindSpatiaLite = "spatialite"
)

// dialect holds the few spots where PostGIS and SpatiaLite SQL differ.
type dialect struct {
	kind string
	// intersects renders a spatial predicate usable in ON/WHERE.
	intersects func(a, b string) string
}

var dialects = map[string]dialect{
	KindPostGIS: {
		kind: KindPostGIS,
		intersects: func(a, b string) string {
			return fmt.Sprintf("ST_Intersects(%s, %s)", a, b)
		},
	},
	KindSpatiaLite: {
		kind: KindSpatiaLite,
		intersects: func(a, b string) string {
			return fmt.Sprintf("ST_Intersects(%s, %s) = 1", a, b)
		},
	},
}

func dialectFor(kind string) (dialect, error) {
	d, ok := dialects[kind]
	if !ok {
		return dialect{}, fmt.Errorf("qkan: unknown source kind %q (want %s or %s)", kind, KindPostGIS, KindSpatiaLite)
	}
	return d, nil
}
