// Package qkantest provides an in-memory qkan.Source for tests.
package qkantest

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"

	"github.com/paulmach/orb"

	"qkhe/internal/geo"
	"qkhe/internal/qkan"
)

// Memory is a qkan.Source over plain slices. Joins the SQL reader does
// (runoff set soil class, pipe endpoints) are resolved on read. Area
// features are intersected with catchments as their bounding rectangles.
//
// Fail injects an error for a method, keyed by its name.
type Memory struct {
	mu sync.Mutex

	ManholeRows   []qkan.Manhole
	PipeRows      []qkan.Pipe
	RunoffSets    []qkan.RunoffParameterSet
	SurfaceRows   []qkan.SurfaceArea
	CatchmentRows []qkan.Catchment
	RegionRows    []qkan.Region

	Fail   map[string]error
	Closed bool
}

var _ qkan.Source = (*Memory)(nil)

func (m *Memory) fail(method string) error {
	if err, ok := m.Fail[method]; ok {
		return &qkan.StmtError{Stmt: "-- " + method, Err: err}
	}
	return nil
}

func (m *Memory) soilClass(set sql.NullString) sql.NullString {
	if !set.Valid {
		return sql.NullString{}
	}
	for _, r := range m.RunoffSets {
		if r.Name == set.String {
			return r.SoilClass
		}
	}
	return sql.NullString{}
}

func (m *Memory) Counts(context.Context) (qkan.Counts, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("Counts"); err != nil {
		return qkan.Counts{}, err
	}
	return qkan.Counts{
		Manholes:     int64(len(m.ManholeRows)),
		Pipes:        int64(len(m.PipeRows)),
		SurfaceAreas: int64(len(m.SurfaceRows)),
	}, nil
}

func (m *Memory) Manholes(_ context.Context, kind qkan.ManholeKind, sel qkan.Selection) ([]qkan.Manhole, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("Manholes"); err != nil {
		return nil, err
	}
	var out []qkan.Manhole
	for _, r := range m.ManholeRows {
		if r.Kind == string(kind) && sel.Allows(r.Region) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Memory) manhole(name string) (qkan.Manhole, bool) {
	for _, r := range m.ManholeRows {
		if r.Name == name {
			return r, true
		}
	}
	return qkan.Manhole{}, false
}

func (m *Memory) Pipes(_ context.Context, sel qkan.Selection) ([]qkan.Pipe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("Pipes"); err != nil {
		return nil, err
	}
	var out []qkan.Pipe
	for _, p := range m.PipeRows {
		if !sel.Allows(p.Region) {
			continue
		}
		if p.SimStatusNr.Valid && p.SimStatusNr.String != "0" {
			continue
		}
		up, ok1 := m.manhole(p.Upper)
		down, ok2 := m.manhole(p.Lower)
		if !ok1 || !ok2 {
			continue
		}
		p.UpperX, p.UpperY, p.UpperSohle = up.X, up.Y, up.Invert
		p.LowerX, p.LowerY, p.LowerSohle = down.X, down.Y, down.Invert
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Memory) RunoffParameterSets(context.Context) ([]qkan.RunoffParameterSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("RunoffParameterSets"); err != nil {
		return nil, err
	}
	out := append([]qkan.RunoffParameterSet(nil), m.RunoffSets...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Memory) RainGaugeRefs(context.Context) (qkan.RainGaugeRefs, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("RainGaugeRefs"); err != nil {
		return qkan.RainGaugeRefs{}, err
	}
	var refs qkan.RainGaugeRefs
	seen := map[string]bool{}
	for _, s := range m.SurfaceRows {
		if !s.RainGauge.Valid {
			refs.HasNull = true
			continue
		}
		if !seen[s.RainGauge.String] {
			seen[s.RainGauge.String] = true
			refs.Names = append(refs.Names, s.RainGauge.String)
		}
	}
	return refs, nil
}

func (m *Memory) SurfaceAreas(_ context.Context, sel qkan.Selection) ([]qkan.SurfaceArea, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("SurfaceAreas"); err != nil {
		return nil, err
	}
	var out []qkan.SurfaceArea
	for _, s := range m.SurfaceRows {
		if sel.Allows(s.Region) {
			s.SoilClass = m.soilClass(s.RunoffSet)
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *Memory) Catchments(_ context.Context, sel qkan.Selection) ([]qkan.Catchment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("Catchments"); err != nil {
		return nil, err
	}
	var out []qkan.Catchment
	for _, c := range m.CatchmentRows {
		if sel.Allows(c.Region) {
			c.SoilClass = m.soilClass(c.RunoffSet)
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *Memory) CatchmentIntersections(_ context.Context, sel qkan.Selection) ([]qkan.Intersection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("CatchmentIntersections"); err != nil {
		return nil, err
	}
	var out []qkan.Intersection
	for _, c := range m.CatchmentRows {
		cg, err := geo.Decode(c.Geom)
		if err != nil {
			return nil, err
		}
		if cg == nil {
			continue
		}
		var (
			sum float64
			hit bool
		)
		for _, s := range m.SurfaceRows {
			if !sel.Allows(s.Region) || m.soilClass(s.RunoffSet).Valid {
				continue
			}
			sg, err := geo.Decode(s.Geom)
			if err != nil {
				return nil, err
			}
			if sg == nil || !cg.Bound().Intersects(sg.Bound()) {
				continue
			}
			hit = true
			sum += geo.BoundIntersectionArea(cg, sg.Bound())
		}
		if hit {
			out = append(out, qkan.Intersection{PK: c.PK, Area: sql.NullFloat64{Float64: sum, Valid: true}})
		}
	}
	return out, nil
}

func (m *Memory) Regions(_ context.Context, sel qkan.Selection) ([]qkan.Region, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("Regions"); err != nil {
		return nil, err
	}
	var out []qkan.Region
	for _, r := range m.RegionRows {
		if sel.Allows(sql.NullString{String: r.Name, Valid: true}) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *Memory) InsertRegion(_ context.Context, r qkan.Region) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("InsertRegion"); err != nil {
		return err
	}
	var maxPK int64
	for _, x := range m.RegionRows {
		if x.PK > maxPK {
			maxPK = x.PK
		}
	}
	r.PK = maxPK + 1
	m.RegionRows = append(m.RegionRows, r)
	return nil
}

func (m *Memory) AssignCatchmentRegion(_ context.Context, pk int64, name sql.NullString) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("AssignCatchmentRegion"); err != nil {
		return err
	}
	for i := range m.CatchmentRows {
		if m.CatchmentRows[i].PK == pk {
			m.CatchmentRows[i].Region = name
			return nil
		}
	}
	return fmt.Errorf("qkantest: no catchment with pk %d", pk)
}

func (m *Memory) AssignAllCatchments(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("AssignAllCatchments"); err != nil {
		return err
	}
	for i := range m.CatchmentRows {
		m.CatchmentRows[i].Region = Str(name)
	}
	return nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}

// Str is a valid sql.NullString.
func Str(s string) sql.NullString { return sql.NullString{String: s, Valid: true} }

// Num is a valid sql.NullFloat64.
func Num(f float64) sql.NullFloat64 { return sql.NullFloat64{Float64: f, Valid: true} }

// Rect returns the WKB of an axis-aligned rectangle.
func Rect(minX, minY, maxX, maxY float64) []byte {
	b, err := geo.Encode(orb.Polygon{{{minX, minY}, {maxX, minY}, {maxX, maxY}, {minX, maxY}, {minX, minY}}})
	if err != nil {
		panic(err)
	}
	return b
}
