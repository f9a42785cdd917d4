package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"qkhe/internal/ddl"
	"qkhe/internal/hystem"
)

// StmtError is a failed statement against the target database.
type StmtError struct {
	Stmt string
	Err  error
}

func (e *StmtError) Error() string { return fmt.Sprintf("storage: %v", e.Err) }
func (e *StmtError) Unwrap() error { return e.Err }

// Statement returns the SQL text that failed.
func (e *StmtError) Statement() string { return e.Stmt }

func stmtErr(stmt string, err error) error {
	if err == nil {
		return nil
	}
	return &StmtError{Stmt: stmt, Err: err}
}

// Target is an open HYSTEM-EXTRAN model database.
type Target struct {
	db      *sqlx.DB
	kind    string
	backend Backend
}

// New wraps an already open connection. Tests use it with an in-memory
// SQLite database.
func New(db *sqlx.DB, kind string, b Backend) *Target {
	return &Target{db: db, kind: kind, backend: b}
}

func (t *Target) DB() *sqlx.DB      { return t.db }
func (t *Target) Kind() string      { return t.kind }
func (t *Target) FileBased() bool   { return t.backend.FileBased }
func (t *Target) Close() error      { return t.db.Close() }
func (t *Target) q(s string) string { return t.backend.Quote(s) }

// Bootstrap creates the given tables if they are missing and seeds the
// control record with nextID when it has no row yet.
func (t *Target) Bootstrap(ctx context.Context, defs []ddl.TableDef, nextID int64) error {
	if t.backend.CreateTable == nil {
		return fmt.Errorf("storage: %s: no DDL builder registered", t.kind)
	}
	for _, d := range defs {
		stmt, err := t.backend.CreateTable(d)
		if err != nil {
			return fmt.Errorf("storage: bootstrap %s: %w", d.FQN, err)
		}
		if _, err := t.db.ExecContext(ctx, stmt); err != nil {
			return stmtErr(stmt, err)
		}
	}

	count := fmt.Sprintf("SELECT COUNT(*) FROM %s", t.q(hystem.ProgInfoTable))
	var n int64
	if err := t.db.GetContext(ctx, &n, count); err != nil {
		return stmtErr(count, err)
	}
	if n > 0 {
		return nil
	}
	seed := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%d)", t.q(hystem.ProgInfoTable), t.q(hystem.NextIDColumn), nextID)
	_, err := t.db.ExecContext(ctx, seed)
	return stmtErr(seed, err)
}

// Begin starts a transaction on the target.
func (t *Target) Begin(ctx context.Context) (*Tx, error) {
	tx, err := t.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("storage: begin tx: %w", err)
	}
	return &Tx{tx: tx, quote: t.backend.Quote}, nil
}

// Tx groups the writes of one family (or of the whole run).
type Tx struct {
	tx    *sqlx.Tx
	quote func(string) string
	done  bool
}

// NextID reads the control record. A missing row counts as 1.
func (x *Tx) NextID(ctx context.Context) (int64, error) {
	stmt := fmt.Sprintf("SELECT %s FROM %s", x.quote(hystem.NextIDColumn), x.quote(hystem.ProgInfoTable))
	var id sql.NullInt64
	err := x.tx.GetContext(ctx, &id, stmt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return 1, nil
	case err != nil:
		return 0, stmtErr(stmt, err)
	case !id.Valid || id.Int64 < 1:
		return 1, nil
	}
	return id.Int64, nil
}

// SetNextID writes the control record, inserting it when absent.
func (x *Tx) SetNextID(ctx context.Context, id int64) error {
	upd := fmt.Sprintf("UPDATE %s SET %s = %d", x.quote(hystem.ProgInfoTable), x.quote(hystem.NextIDColumn), id)
	res, err := x.tx.ExecContext(ctx, upd)
	if err != nil {
		return stmtErr(upd, err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return nil
	}
	ins := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%d)", x.quote(hystem.ProgInfoTable), x.quote(hystem.NextIDColumn), id)
	_, err = x.tx.ExecContext(ctx, ins)
	return stmtErr(ins, err)
}

// DeleteAll empties table.
func (x *Tx) DeleteAll(ctx context.Context, table string) (int64, error) {
	stmt := "DELETE FROM " + x.quote(table)
	res, err := x.tx.ExecContext(ctx, stmt)
	if err != nil {
		return 0, stmtErr(stmt, err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// Names returns the NAME values present in table.
func (x *Tx) Names(ctx context.Context, table string) (map[string]struct{}, error) {
	stmt := fmt.Sprintf("SELECT %s FROM %s", x.quote(hystem.NameColumn), x.quote(table))
	var names []sql.NullString
	if err := x.tx.SelectContext(ctx, &names, stmt); err != nil {
		return nil, stmtErr(stmt, err)
	}
	out := make(map[string]struct{}, len(names))
	for _, n := range names {
		if n.Valid {
			out[n.String] = struct{}{}
		}
	}
	return out, nil
}

// InsertStmt returns the named INSERT for columns of table.
func (x *Tx) InsertStmt(table string, columns []string) string {
	quoted := make([]string, len(columns))
	named := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = x.quote(c)
		named[i] = ":" + c
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		x.quote(table), strings.Join(quoted, ", "), strings.Join(named, ", "))
}

// Insert writes rows into table through one prepared named statement. Row
// fields are bound by their db tags, which must name the given columns.
func Insert[R any](ctx context.Context, x *Tx, table string, columns []string, rows []R) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("storage: insert %s: columns must not be empty", table)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	query := x.InsertStmt(table, columns)
	stmt, err := x.tx.PrepareNamedContext(ctx, query)
	if err != nil {
		return 0, stmtErr(query, err)
	}
	defer stmt.Close()

	var inserted int64
	for i := range rows {
		if _, err := stmt.ExecContext(ctx, rows[i]); err != nil {
			return inserted, stmtErr(query, err)
		}
		inserted++
	}
	return inserted, nil
}

// Backfill sets Table.Ref to the ID of the Lookup row whose NAME equals
// Table.Column. Rows with no or more than one match are left alone.
type Backfill struct {
	Table  string
	Ref    string
	Column string
	Lookup string
}

// BackfillStmt renders b for this transaction's dialect.
func (x *Tx) BackfillStmt(b Backfill) string {
	outer := x.quote(b.Table) + "." + x.quote(b.Column)
	match := fmt.Sprintf("FROM %s l WHERE l.%s = %s", x.quote(b.Lookup), x.quote(hystem.NameColumn), outer)
	return fmt.Sprintf("UPDATE %s SET %s = (SELECT l.%s %s) WHERE (SELECT COUNT(*) %s) = 1",
		x.quote(b.Table), x.quote(b.Ref), x.quote(hystem.IDColumn), match, match)
}

// Backfill runs one name-to-ID update and returns the affected row count.
func (x *Tx) Backfill(ctx context.Context, b Backfill) (int64, error) {
	stmt := x.BackfillStmt(b)
	res, err := x.tx.ExecContext(ctx, stmt)
	if err != nil {
		return 0, stmtErr(stmt, err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (x *Tx) Commit() error {
	if x.done {
		return nil
	}
	x.done = true
	if err := x.tx.Commit(); err != nil {
		return fmt.Errorf("storage: commit: %w", err)
	}
	return nil
}

// Rollback is a no-op after Commit.
func (x *Tx) Rollback() error {
	if x.done {
		return nil
	}
	x.done = true
	if err := x.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("storage: rollback: %w", err)
	}
	return nil
}
