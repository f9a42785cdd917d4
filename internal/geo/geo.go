// Package geo provides the planar geometry the export needs on top of
// orb: decoding WKB from the source database, areas, centroids,
// point-in-polygon tests and a small containment lookup.
//
// All computations are planar; QKan projects are stored in a metric
// projected CRS, so areas come out in square metres.
package geo

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/clip"
	"github.com/paulmach/orb/encoding/wkb"
	"github.com/paulmach/orb/planar"
)

// Decode parses a WKB blob. An empty blob is a NULL geometry and yields
// (nil, nil).
func Decode(b []byte) (orb.Geometry, error) {
	if len(b) == 0 {
		return nil, nil
	}
	g, err := wkb.Unmarshal(b)
	if err != nil {
		return nil, fmt.Errorf("geo: decode wkb: %w", err)
	}
	return g, nil
}

// Encode is the inverse of Decode, used when writing geometry back.
func Encode(g orb.Geometry) ([]byte, error) {
	if g == nil {
		return nil, nil
	}
	b, err := wkb.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("geo: encode wkb: %w", err)
	}
	return b, nil
}

// Area returns the planar area of g; nil and non-areal geometries yield 0.
func Area(g orb.Geometry) float64 {
	if g == nil {
		return 0
	}
	return planar.Area(g)
}

// Centroid returns the area-weighted centroid of g. ok is false for a
// nil geometry.
func Centroid(g orb.Geometry) (orb.Point, bool) {
	if g == nil {
		return orb.Point{}, false
	}
	c, _ := planar.CentroidArea(g)
	return c, true
}

// Contains reports whether p lies inside the areal geometry g.
func Contains(g orb.Geometry, p orb.Point) bool {
	switch v := g.(type) {
	case orb.Polygon:
		return planar.PolygonContains(v, p)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(v, p)
	case orb.Ring:
		return planar.RingContains(v, p)
	case orb.Bound:
		return v.Contains(p)
	case orb.Collection:
		for _, m := range v {
			if Contains(m, p) {
				return true
			}
		}
	}
	return false
}

// Distance is the Euclidean distance between two points.
func Distance(a, b orb.Point) float64 {
	return planar.Distance(a, b)
}

// BoundIntersectionArea returns the area of g clipped to the rectangle b.
// It is exact when the clipping feature is an axis-aligned rectangle.
func BoundIntersectionArea(g orb.Geometry, b orb.Bound) float64 {
	if g == nil || !g.Bound().Intersects(b) {
		return 0
	}
	c := clip.Geometry(b, g)
	if c == nil {
		return 0
	}
	return planar.Area(c)
}

// Index answers "which polygon contains this point" over a fixed set of
// keyed geometries, pre-filtering by bounding box. Lookups return the
// first match in insertion order.
type Index[K any] struct {
	entries []indexEntry[K]
}

type indexEntry[K any] struct {
	key   K
	geom  orb.Geometry
	bound orb.Bound
}

// Add registers geometry g under key. Nil geometries are ignored.
func (ix *Index[K]) Add(key K, g orb.Geometry) {
	if g == nil {
		return
	}
	ix.entries = append(ix.entries, indexEntry[K]{key: key, geom: g, bound: g.Bound()})
}

// Len returns the number of indexed geometries.
func (ix *Index[K]) Len() int { return len(ix.entries) }

// Locate returns the key of the first geometry containing p.
func (ix *Index[K]) Locate(p orb.Point) (K, bool) {
	for _, e := range ix.entries {
		if !e.bound.Contains(p) {
			continue
		}
		if Contains(e.geom, p) {
			return e.key, true
		}
	}
	var zero K
	return zero, false
}
