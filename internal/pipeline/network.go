package pipeline

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/paulmach/orb"

	"qkhe/internal/geo"
	"qkhe/internal/hystem"
	"qkhe/internal/qkan"
	"qkhe/internal/storage"
	"qkhe/internal/units"
)

// Network constants.
const (
	CustomProfileCode = 68 // PROFILTYP of a custom (Sonderprofil) cross-section
	DefaultRoughness  = 1.5
	MaterialKind      = 28
	ManholeDiameter   = 1000
)

func (e *Exporter) loadManholes(kind qkan.ManholeKind) func(context.Context, *storage.Tx) ([]qkan.Manhole, error) {
	return func(ctx context.Context, _ *storage.Tx) ([]qkan.Manhole, error) {
		rows, err := e.src.Manholes(ctx, kind, e.opts.Selection)
		return rows, sourceErr(err)
	}
}

func (e *Exporter) manholes() family[qkan.Manhole, hystem.Manhole] {
	return family[qkan.Manhole, hystem.Manhole]{
		name: "manholes", table: hystem.Manholes,
		label: "Export Schächte...", done: "%s Schächte eingefügt", start: 0.10, stop: 0.20,
		load: e.loadManholes(qkan.KindNode),
		transform: func(m qkan.Manhole, id int64) (hystem.Manhole, bool) {
			name := units.Name(m.Name)
			if name == "" {
				return hystem.Manhole{}, false
			}
			cover := units.RoundNull(m.Cover, 3)
			return hystem.Manhole{
				ID:              id,
				Name:            name,
				CoverElevation:  cover,
				InvertElevation: units.RoundNull(m.Invert, 3),
				X:               units.RoundNull(m.X, 3),
				Y:               units.RoundNull(m.Y, 3),
				GroundElevation: cover,
				Kind:            1,
				Diameter:        ManholeDiameter,
				LastModified:    units.LastModified(m.CreatedAt, e.now),
			}, true
		},
	}
}

func (e *Exporter) storageStructures() family[qkan.Manhole, hystem.StorageStructure] {
	return family[qkan.Manhole, hystem.StorageStructure]{
		name: "storage", table: hystem.StorageStructures,
		label: "Export Speicherbauwerke...", done: "%s Speicher eingefügt", start: 0.21, stop: 0.25,
		load: e.loadManholes(qkan.KindStorage),
		transform: func(m qkan.Manhole, id int64) (hystem.StorageStructure, bool) {
			name := units.Name(m.Name)
			if name == "" {
				return hystem.StorageStructure{}, false
			}
			cover := units.RoundNull(m.Cover, 3)
			return hystem.StorageStructure{
				ID:              id,
				Name:            name,
				Type:            1,
				InvertElevation: units.RoundNull(m.Invert, 3),
				X:               units.RoundNull(m.X, 3),
				Y:               units.RoundNull(m.Y, 3),
				GroundElevation: cover,
				CrownElevation:  cover,
				FullLevel:       cover,
				Kind:            1,
				Comment:         nullText(m.Comment),
				LastModified:    units.LastModified(m.CreatedAt, e.now),
			}, true
		},
	}
}

func (e *Exporter) outlets() family[qkan.Manhole, hystem.Outlet] {
	return family[qkan.Manhole, hystem.Outlet]{
		name: "outlets", table: hystem.Outlets,
		label: "Export Auslässe...", done: "%s Auslässe eingefügt", start: 0.26, stop: 0.30,
		load: e.loadManholes(qkan.KindOutlet),
		transform: func(m qkan.Manhole, id int64) (hystem.Outlet, bool) {
			name := units.Name(m.Name)
			if name == "" {
				return hystem.Outlet{}, false
			}
			cover := units.RoundNull(m.Cover, 3)
			return hystem.Outlet{
				ID:              id,
				Name:            name,
				Type:            1,
				InvertElevation: units.RoundNull(m.Invert, 3),
				X:               units.RoundNull(m.X, 3),
				Y:               units.RoundNull(m.Y, 3),
				GroundElevation: cover,
				CrownElevation:  cover,
				Kind:            3,
				Comment:         nullText(m.Comment),
				LastModified:    units.LastModified(m.CreatedAt, e.now),
			}, true
		},
	}
}

func (e *Exporter) pipes() family[qkan.Pipe, hystem.Pipe] {
	return family[qkan.Pipe, hystem.Pipe]{
		name: "pipes", table: hystem.Pipes,
		label: "Export Haltungen...", done: "%s Haltungen eingefügt", start: 0.35, stop: 0.50,
		load: func(ctx context.Context, _ *storage.Tx) ([]qkan.Pipe, error) {
			rows, err := e.src.Pipes(ctx, e.opts.Selection)
			return rows, sourceErr(err)
		},
		transform: e.pipeRow,
	}
}

// pipeRow maps one pipe. Pipes whose profile code is missing, not an
// integer or not positive are skipped.
func (e *Exporter) pipeRow(p qkan.Pipe, id int64) (hystem.Pipe, bool) {
	code, ok := profileCode(p.ProfileCode)
	if !ok || code <= 0 {
		return hystem.Pipe{}, false
	}

	roughness := DefaultRoughness
	if p.Roughness.Valid {
		roughness = units.Round(p.Roughness.Float64, 3)
	}
	var custom sql.NullString
	if code == CustomProfileCode {
		custom = units.NullName(p.ProfileName)
	}

	return hystem.Pipe{
		ID:                id,
		Name:              units.Name(p.Name),
		UpperManhole:      units.Name(p.Upper),
		LowerManhole:      units.Name(p.Lower),
		Length:            units.RoundNull(pipeLength(p), 4),
		UpperInvert:       units.RoundNull(units.Coalesce(p.UpperInvert, p.UpperSohle), 4),
		LowerInvert:       units.RoundNull(units.Coalesce(p.LowerInvert, p.LowerSohle), 4),
		ProfileType:       code,
		CustomProfile:     custom,
		Geometry1:         units.RoundNull(p.Height, 4),
		Geometry2:         units.RoundNull(p.Width, 4),
		SewerKind:         sewerKind(p.DrainageCode),
		Roughness:         roughness,
		Count:             1,
		Region:            units.NullName(p.Region),
		RoughnessApproach: 1,
		RoughnessDisplay:  roughness,
		Material:          MaterialKind,
		LastModified:      units.LastModified(p.CreatedAt, e.now),
	}, true
}

// pipeLength is the stored length, else the distance between the endpoint
// manholes when both have coordinates.
func pipeLength(p qkan.Pipe) sql.NullFloat64 {
	if p.Length.Valid {
		return p.Length
	}
	if !p.UpperX.Valid || !p.UpperY.Valid || !p.LowerX.Valid || !p.LowerY.Valid {
		return sql.NullFloat64{}
	}
	d := geo.Distance(
		orb.Point{p.UpperX.Float64, p.UpperY.Float64},
		orb.Point{p.LowerX.Float64, p.LowerY.Float64},
	)
	return units.Float(d)
}

func profileCode(s sql.NullString) (int64, bool) {
	if !s.Valid {
		return 0, false
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s.String), 10, 64)
	return n, err == nil
}

func sewerKind(s sql.NullString) sql.NullInt64 {
	n, ok := profileCode(s)
	if !ok {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: n, Valid: true}
}

// nullText turns blank text into NULL.
func nullText(s sql.NullString) sql.NullString {
	if !s.Valid || strings.TrimSpace(s.String) == "" {
		return sql.NullString{}
	}
	return s
}
