package pipeline

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/paulmach/orb"
	"go.uber.org/zap"

	"qkhe/internal/config"
	"qkhe/internal/geo"
	"qkhe/internal/hystem"
	"qkhe/internal/metrics"
	"qkhe/internal/storage"
	"qkhe/internal/units"
)

// Fixed FLAECHE values.
const (
	surfacePrefix     = "f_"
	surfaceReservoirs = 3
	surfaceMethod     = 2
)

const (
	titleCatchmentData = "Fehlerhafte Daten in Tabelle 'tezg'"
	warnDifference     = "%d Haltungsflächen haben eine Differenzfläche <= 0"
)

// surface is one FLAECHE row before it receives its ID.
type surface struct {
	name      string
	area      float64
	gauge     string
	pipe      string
	typ       int
	set       sql.NullString
	slope     sql.NullInt64
	comment   sql.NullString
	createdAt sql.NullString
}

func (e *Exporter) surfaceFamily(name, label string, start, stop float64, load func(context.Context, *storage.Tx) ([]surface, error)) family[surface, hystem.Surface] {
	return family[surface, hystem.Surface]{
		name: name, table: hystem.Surfaces,
		label: label, done: "%s Flächen eingefügt", start: start, stop: stop,
		load:      load,
		transform: e.surfaceRow,
	}
}

func (e *Exporter) imperviousSurfaces() family[surface, hystem.Surface] {
	return e.surfaceFamily("surfaces_impervious", "Export befestigte Flächen...", 0.66, 0.70,
		func(ctx context.Context, _ *storage.Tx) ([]surface, error) { return e.loadAreaFeatures(ctx, false) })
}

func (e *Exporter) perviousSurfaces() family[surface, hystem.Surface] {
	return e.surfaceFamily("surfaces_pervious", "Export durchlässige Flächen...", 0.76, 0.80,
		func(ctx context.Context, _ *storage.Tx) ([]surface, error) { return e.loadAreaFeatures(ctx, true) })
}

func (e *Exporter) differenceSurfaces() family[surface, hystem.Surface] {
	return e.surfaceFamily("surfaces_difference", "Export Differenzflächen...", 0.71, 0.75, e.loadDifferences)
}

// surfaceRow maps a surface. Under the skip policy non-positive areas are
// dropped; otherwise they are written with zero hydraulic constants.
func (e *Exporter) surfaceRow(s surface, id int64) (hystem.Surface, bool) {
	if s.area <= 0 && e.opts.DifferencePolicy == config.DifferenceSkip {
		return hystem.Surface{}, false
	}
	return hystem.Surface{
		ID:                id,
		Name:              surfacePrefix + s.name,
		Size:              units.Round(s.area, 4),
		RainGauge:         s.gauge,
		Pipe:              s.pipe,
		Reservoirs:        surfaceReservoirs,
		StorageConstant:   units.StorageConstant(s.area),
		ConcentrationTime: units.ConcentrationTime(s.area),
		StorageMethod:     surfaceMethod,
		Type:              s.typ,
		ParameterSet:      s.set,
		SlopeClass:        s.slope,
		Comment:           units.Text(s.comment, hystem.DefaultComment),
		LastModified:      units.LastModified(s.createdAt, e.now),
	}, true
}

func gaugeName(s sql.NullString) string {
	if n := units.NullName(s); n.Valid {
		return n.String
	}
	return DefaultRainGauge
}

func surfaceType(pervious bool) int {
	if pervious {
		return 1
	}
	return 0
}

// loadAreaFeatures returns the area features of one permeability. Features
// without a pipe of their own take the pipe of the catchment containing
// their centroid; features with neither are left out.
func (e *Exporter) loadAreaFeatures(ctx context.Context, pervious bool) ([]surface, error) {
	rows, err := e.src.SurfaceAreas(ctx, e.opts.Selection)
	if err != nil {
		return nil, sourceErr(err)
	}
	out := make([]surface, 0, len(rows))
	for _, a := range rows {
		if a.Pervious() != pervious {
			continue
		}
		g, err := a.Geometry()
		if err != nil {
			return nil, sourceErr(fmt.Errorf("flaechen %q: %w", a.Name, err))
		}
		pipe := units.NullName(a.Pipe)
		if !pipe.Valid {
			if pipe, err = e.catchmentPipeAt(ctx, g); err != nil {
				return nil, err
			}
		}
		if !pipe.Valid {
			e.log.Debug("area feature without pipe", zap.String("flaeche", a.Name))
			continue
		}
		out = append(out, surface{
			name:      units.Name(a.Name),
			area:      geo.Area(g),
			gauge:     gaugeName(a.RainGauge),
			pipe:      pipe.String,
			typ:       surfaceType(pervious),
			set:       units.NullName(a.RunoffSet),
			slope:     a.SlopeClass,
			comment:   a.Comment,
			createdAt: a.CreatedAt,
		})
	}
	return out, nil
}

// catchmentPipeAt looks up the pipe of the catchment containing the
// centroid of g. The lookup covers all catchments regardless of selection
// and is built on first use.
func (e *Exporter) catchmentPipeAt(ctx context.Context, g orb.Geometry) (sql.NullString, error) {
	c, ok := geo.Centroid(g)
	if !ok {
		return sql.NullString{}, nil
	}
	if e.catchmentPipes == nil {
		all, err := e.src.Catchments(ctx, nil)
		if err != nil {
			return sql.NullString{}, sourceErr(err)
		}
		ix := &geo.Index[string]{}
		for _, t := range all {
			pipe := units.NullName(t.Pipe)
			if !pipe.Valid {
				continue
			}
			tg, err := t.Geometry()
			if err != nil {
				return sql.NullString{}, sourceErr(fmt.Errorf("tezg %q: %w", t.Name, err))
			}
			ix.Add(pipe.String, tg)
		}
		e.catchmentPipes = ix
	}
	pipe, ok := e.catchmentPipes.Locate(c)
	if !ok {
		return sql.NullString{}, nil
	}
	return sql.NullString{String: pipe, Valid: true}, nil
}

// loadDifferences derives the unsealed remainder per pipe: the summed area
// of the catchments draining into it that overlap impervious features,
// minus the summed overlap. Attributes come from the first catchment of
// each pipe. Non-positive remainders are reported as a warning.
func (e *Exporter) loadDifferences(ctx context.Context, _ *storage.Tx) ([]surface, error) {
	cuts, err := e.src.CatchmentIntersections(ctx, e.opts.Selection)
	if err != nil {
		return nil, sourceErr(err)
	}
	overlap := make(map[int64]float64, len(cuts))
	for _, c := range cuts {
		overlap[c.PK] = c.Area.Float64
	}
	catchments, err := e.src.Catchments(ctx, e.opts.Selection)
	if err != nil {
		return nil, sourceErr(err)
	}

	byPipe := map[string]int{}
	var out []surface
	for _, c := range catchments {
		cut, ok := overlap[c.PK]
		if !ok {
			continue
		}
		pipe := units.NullName(c.Pipe)
		if !pipe.Valid {
			continue
		}
		g, err := c.Geometry()
		if err != nil {
			return nil, sourceErr(fmt.Errorf("tezg %q: %w", c.Name, err))
		}
		diff := geo.Area(g) - cut
		if i, seen := byPipe[pipe.String]; seen {
			out[i].area += diff
			continue
		}
		byPipe[pipe.String] = len(out)
		out = append(out, surface{
			name:      units.Name(c.Name),
			area:      diff,
			gauge:     gaugeName(c.RainGauge),
			pipe:      pipe.String,
			typ:       surfaceType(c.Pervious()),
			set:       units.NullName(c.RunoffSet),
			slope:     c.SlopeClass,
			comment:   c.Comment,
			createdAt: c.CreatedAt,
		})
	}

	var bad int
	for _, s := range out {
		if s.area <= 0 {
			bad++
		}
	}
	if bad > 0 {
		e.warn(titleCatchmentData, fmt.Sprintf(warnDifference, bad), "difference_area")
	}
	return out, nil
}

// warn reports a data-quality finding and counts it.
func (e *Exporter) warn(title, detail, kind string) {
	e.rep.Warning(title, detail)
	metrics.RecordWarning(e.opts.Job, kind)
	e.log.Warn(title, zap.String("detail", detail), zap.String("kind", kind))
}
