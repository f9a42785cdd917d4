package qkan

import (
	"context"
	"database/sql"
	"fmt"
)

// Source is everything an export reads from (and corrects in) a QKan
// database. Selection-aware methods drop rows outside the selected
// sub-catchment regions. Writes are committed immediately.
type Source interface {
	Counts(ctx context.Context) (Counts, error)
	Manholes(ctx context.Context, kind ManholeKind, sel Selection) ([]Manhole, error)
	Pipes(ctx context.Context, sel Selection) ([]Pipe, error)
	RunoffParameterSets(ctx context.Context) ([]RunoffParameterSet, error)
	RainGaugeRefs(ctx context.Context) (RainGaugeRefs, error)
	SurfaceAreas(ctx context.Context, sel Selection) ([]SurfaceArea, error)
	Catchments(ctx context.Context, sel Selection) ([]Catchment, error)
	CatchmentIntersections(ctx context.Context, sel Selection) ([]Intersection, error)
	Regions(ctx context.Context, sel Selection) ([]Region, error)

	InsertRegion(ctx context.Context, r Region) error
	AssignCatchmentRegion(ctx context.Context, pk int64, name sql.NullString) error
	AssignAllCatchments(ctx context.Context, name string) error

	Close() error
}

// StmtError is a failed statement against the QKan database.
type StmtError struct {
	Stmt string
	Err  error
}

func (e *StmtError) Error() string { return fmt.Sprintf("qkan: %v", e.Err) }
func (e *StmtError) Unwrap() error { return e.Err }

// Statement returns the SQL text that failed.
func (e *StmtError) Statement() string { return e.Stmt }
