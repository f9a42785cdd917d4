package pipeline

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"qkhe/internal/geo"
	"qkhe/internal/hystem"
	"qkhe/internal/qkan"
	"qkhe/internal/storage"
	"qkhe/internal/units"
)

// Defaults of a synthesized sub-catchment region.
const (
	DefaultRegionName = "Teilgebiet1"
	regionDensity     = 60
	regionConsumption = 120
	regionHourlyMean  = 14
	regionSurcharge   = 100
	regionComment     = "Hinzugefuegt aus QKan"
)

const (
	noticeRegionsAdded  = "Es wurden %d Teilgebiete hinzugefügt"
	noticeAssignedAll   = "Alle Flächen in der Tabelle 'tezg' wurden einem Teilgebiet zugeordnet"
	noticeAssignedByPos = "Alle Flächen in der Tabelle 'tezg' wurden dem Teilgebiet zugeordnet, in dem sie liegen."
	warnUnassigned      = "%d Flächen sind keinem Teilgebiet zugeordnet"
)

// RegionState classifies the source before reconciliation.
type RegionState int

const (
	// NoRegionsNoRefs: no teilgebiete and no catchment names one.
	NoRegionsNoRefs RegionState = iota
	// NoRegionsWithRefs: no teilgebiete but catchments name some.
	NoRegionsWithRefs
	// SingleRegionUnassigned: one teilgebiet, no catchment refers to it.
	SingleRegionUnassigned
	// RegionsUnassigned: several teilgebiete, no catchment refers to any.
	RegionsUnassigned
	// RegionsPartiallyAssigned: at least one catchment refers to a
	// declared teilgebiet.
	RegionsPartiallyAssigned
)

func (s RegionState) String() string {
	switch s {
	case NoRegionsNoRefs:
		return "no-regions-no-refs"
	case NoRegionsWithRefs:
		return "no-regions-with-refs"
	case SingleRegionUnassigned:
		return "single-region-unassigned"
	case RegionsUnassigned:
		return "regions-unassigned"
	case RegionsPartiallyAssigned:
		return "regions-partially-assigned"
	}
	return fmt.Sprintf("RegionState(%d)", int(s))
}

// validRef reports whether a catchment names a region at all. The literal
// text NULL counts as missing.
func validRef(s sql.NullString) bool {
	return s.Valid && s.String != "" && s.String != "NULL"
}

// ClassifyRegions decides the reconciliation branch.
func ClassifyRegions(regions []qkan.Region, catchments []qkan.Catchment) RegionState {
	if len(regions) == 0 {
		for _, c := range catchments {
			if validRef(c.Region) {
				return NoRegionsWithRefs
			}
		}
		return NoRegionsNoRefs
	}
	declared := regionNames(regions)
	for _, c := range catchments {
		if _, ok := declared[c.Region.String]; ok && validRef(c.Region) {
			return RegionsPartiallyAssigned
		}
	}
	if len(regions) == 1 {
		return SingleRegionUnassigned
	}
	return RegionsUnassigned
}

// Unassigned counts catchments whose region is missing or not declared.
func Unassigned(regions []qkan.Region, catchments []qkan.Catchment) int {
	declared := regionNames(regions)
	n := 0
	for _, c := range catchments {
		if _, ok := declared[c.Region.String]; !ok || !validRef(c.Region) {
			n++
		}
	}
	return n
}

func regionNames(regions []qkan.Region) map[string]struct{} {
	out := make(map[string]struct{}, len(regions))
	for _, r := range regions {
		out[r.Name] = struct{}{}
	}
	return out
}

func defaultRegion(name string) qkan.Region {
	return qkan.Region{
		Name:        name,
		Density:     units.Float(regionDensity),
		Consumption: units.Float(regionConsumption),
		HourlyMean:  units.Float(regionHourlyMean),
		Surcharge:   units.Float(regionSurcharge),
		Comment:     sql.NullString{String: regionComment, Valid: true},
	}
}

// reconcileRegions makes sure the source has sub-catchment regions the
// catchments can be matched against. It writes to the source only; the
// whole source is considered regardless of selection.
func (e *Exporter) reconcileRegions(ctx context.Context) error {
	e.rep.Progress("Teilgebiete abgleichen...", 0.81)

	regions, err := e.src.Regions(ctx, nil)
	if err != nil {
		return sourceErr(err)
	}
	catchments, err := e.src.Catchments(ctx, nil)
	if err != nil {
		return sourceErr(err)
	}

	state := ClassifyRegions(regions, catchments)
	e.log.Info("reconciling regions",
		zap.Stringer("state", state),
		zap.Int("regions", len(regions)),
		zap.Int("catchments", len(catchments)),
	)

	switch state {
	case NoRegionsNoRefs:
		return sourceErr(e.src.InsertRegion(ctx, defaultRegion(DefaultRegionName)))

	case NoRegionsWithRefs:
		seen := map[string]struct{}{}
		var names []string
		for _, c := range catchments {
			if !validRef(c.Region) {
				continue
			}
			if _, dup := seen[c.Region.String]; !dup {
				seen[c.Region.String] = struct{}{}
				names = append(names, c.Region.String)
			}
		}
		sort.Strings(names)
		for _, n := range names {
			if err := e.src.InsertRegion(ctx, defaultRegion(n)); err != nil {
				return sourceErr(err)
			}
		}
		e.rep.Notice("Teilgebiete", fmt.Sprintf(noticeRegionsAdded, len(names)))

	case SingleRegionUnassigned:
		if err := e.src.AssignAllCatchments(ctx, regions[0].Name); err != nil {
			return sourceErr(err)
		}
		e.rep.Notice("Teilgebiete", noticeAssignedAll)
		return nil

	case RegionsUnassigned:
		if err := e.assignByPosition(ctx, regions, catchments); err != nil {
			return err
		}
		e.rep.Notice("Teilgebiete", noticeAssignedByPos)
	}

	return e.checkAssignments(ctx)
}

// assignByPosition gives every catchment the region containing its
// centroid, or NULL when none does.
func (e *Exporter) assignByPosition(ctx context.Context, regions []qkan.Region, catchments []qkan.Catchment) error {
	ix := &geo.Index[string]{}
	for _, r := range regions {
		g, err := r.Geometry()
		if err != nil {
			return sourceErr(fmt.Errorf("teilgebiete %q: %w", r.Name, err))
		}
		ix.Add(r.Name, g)
	}
	for _, c := range catchments {
		g, err := c.Geometry()
		if err != nil {
			return sourceErr(fmt.Errorf("tezg %q: %w", c.Name, err))
		}
		var name sql.NullString
		if p, ok := geo.Centroid(g); ok {
			if n, found := ix.Locate(p); found {
				name = sql.NullString{String: n, Valid: true}
			}
		}
		if err := e.src.AssignCatchmentRegion(ctx, c.PK, name); err != nil {
			return sourceErr(err)
		}
	}
	return nil
}

// checkAssignments warns about catchments still without a region.
func (e *Exporter) checkAssignments(ctx context.Context) error {
	regions, err := e.src.Regions(ctx, nil)
	if err != nil {
		return sourceErr(err)
	}
	catchments, err := e.src.Catchments(ctx, nil)
	if err != nil {
		return sourceErr(err)
	}
	if n := Unassigned(regions, catchments); n > 0 {
		e.warn(titleCatchmentData, fmt.Sprintf(warnUnassigned, n), "unassigned_catchment")
	}
	return nil
}

func (e *Exporter) regions() family[qkan.Region, hystem.Region] {
	return family[qkan.Region, hystem.Region]{
		name: "regions", table: hystem.Regions,
		label: "Export Teileinzugsgebiete...", done: "%s Teileinzugsgebiete eingefügt", start: 0.83, stop: 0.85,
		load: func(ctx context.Context, _ *storage.Tx) ([]qkan.Region, error) {
			rows, err := e.src.Regions(ctx, e.opts.Selection)
			return rows, sourceErr(err)
		},
		transform: func(r qkan.Region, id int64) (hystem.Region, bool) {
			name := units.Name(r.Name)
			if name == "" {
				return hystem.Region{}, false
			}
			var area sql.NullFloat64
			if g, err := r.Geometry(); err == nil && g != nil {
				area = units.Float(units.Round(geo.Area(g), 4))
			}
			return hystem.Region{
				ID:           id,
				Name:         name,
				Density:      r.Density,
				Consumption:  r.Consumption,
				HourlyMean:   r.HourlyMean,
				Surcharge:    r.Surcharge,
				Area:         area,
				Comment:      units.Text(r.Comment, hystem.DefaultComment),
				LastModified: units.LastModified(r.CreatedAt, e.now),
			}, true
		},
	}
}
