package pipeline

import (
	"context"
	"database/sql"
	"fmt"

	"qkhe/internal/geo"
	"qkhe/internal/hystem"
	"qkhe/internal/qkan"
	"qkhe/internal/storage"
	"qkhe/internal/units"
)

const (
	dischargerSuffix = "_SW_TEZG"
	originPopulation = 3
)

// inhabitants is one catchment with its region and derived geometry.
type inhabitants struct {
	catchment qkan.Catchment
	region    qkan.Region
	area      float64
	x, y      sql.NullFloat64
}

func (e *Exporter) dischargers() family[inhabitants, hystem.Discharger] {
	return family[inhabitants, hystem.Discharger]{
		name: "dischargers", table: hystem.Dischargers,
		label: "Export Einzeleinleiter...", done: "%s Einzeleinleiter eingefügt", start: 0.90, stop: 0.95,
		load:      e.loadDischargers,
		transform: e.dischargerRow,
	}
}

// loadDischargers pairs every selected catchment with its declared region.
// Catchments without one produce no discharger.
func (e *Exporter) loadDischargers(ctx context.Context, _ *storage.Tx) ([]inhabitants, error) {
	regions, err := e.src.Regions(ctx, nil)
	if err != nil {
		return nil, sourceErr(err)
	}
	byName := make(map[string]qkan.Region, len(regions))
	for _, r := range regions {
		byName[r.Name] = r
	}
	catchments, err := e.src.Catchments(ctx, e.opts.Selection)
	if err != nil {
		return nil, sourceErr(err)
	}

	out := make([]inhabitants, 0, len(catchments))
	for _, c := range catchments {
		if !validRef(c.Region) {
			continue
		}
		r, ok := byName[c.Region.String]
		if !ok {
			continue
		}
		g, err := c.Geometry()
		if err != nil {
			return nil, sourceErr(fmt.Errorf("tezg %q: %w", c.Name, err))
		}
		l := inhabitants{catchment: c, region: r, area: geo.Area(g)}
		if p, ok := geo.Centroid(g); ok {
			l.x = units.Float(units.Round(p.X(), 3))
			l.y = units.Float(units.Round(p.Y(), 3))
		}
		out = append(out, l)
	}
	return out, nil
}

// dischargerRow derives the population equivalent from the region's
// density: ewdichte · area / 10000.
func (e *Exporter) dischargerRow(l inhabitants, id int64) (hystem.Discharger, bool) {
	name := units.Name(l.catchment.Name)
	if name == "" {
		return hystem.Discharger{}, false
	}
	var population sql.NullFloat64
	if l.region.Density.Valid {
		population = units.Float(units.Round(l.region.Density.Float64*l.area/10000, 3))
	}
	return hystem.Discharger{
		ID:           id,
		Name:         name + dischargerSuffix,
		X:            l.x,
		Y:            l.y,
		Pipe:         units.NullName(l.catchment.Pipe),
		Population:   population,
		HourlyMean:   l.region.HourlyMean,
		Surcharge:    l.region.Surcharge,
		Origin:       originPopulation,
		Independent:  1,
		Factor:       1,
		Region:       sql.NullString{String: l.region.Name, Valid: true},
		LastModified: units.LastModified(l.catchment.CreatedAt, e.now),
	}, true
}
