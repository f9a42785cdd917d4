package pipeline

import (
	"errors"
	"fmt"
)

// Side names the database a query ran against.
type Side string

const (
	SideSource Side = "source"
	SideTarget Side = "target"
)

// SetupError is a failure before any family ran: template provisioning or
// opening either database.
type SetupError struct {
	Step string // provision, target, bootstrap, source
	Err  error
}

func (e *SetupError) Error() string { return fmt.Sprintf("pipeline: setup %s: %v", e.Step, e.Err) }
func (e *SetupError) Unwrap() error { return e.Err }

// QueryError is a failed statement during the export. Stmt is empty when
// the driver error carried no statement text.
type QueryError struct {
	Side Side
	Stmt string
	Err  error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("pipeline: %s query: %v", e.Side, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// statementer is implemented by the storage and qkan statement errors.
type statementer interface {
	Statement() string
}

func queryErr(side Side, err error) error {
	if err == nil {
		return nil
	}
	var qe *QueryError
	if errors.As(err, &qe) {
		return err
	}
	out := &QueryError{Side: side, Err: err}
	var st statementer
	if errors.As(err, &st) {
		out.Stmt = st.Statement()
	}
	return out
}

func sourceErr(err error) error { return queryErr(SideSource, err) }
func targetErr(err error) error { return queryErr(SideTarget, err) }

// Titles of the terminal error report.
const (
	titleTarget = "SQL-Fehler in HE-Datenbank"
	titleSource = "SQL-Fehler in QKan-Datenbank"
	titleSetup  = "Fehler beim Vorbereiten des Exports"
)

// describe renders err as the title and detail of the error report.
func describe(err error) (title, detail string) {
	var qe *QueryError
	if errors.As(err, &qe) {
		title = titleTarget
		if qe.Side == SideSource {
			title = titleSource
		}
		if qe.Stmt == "" {
			return title, qe.Err.Error()
		}
		return title, qe.Stmt + "\n" + qe.Err.Error()
	}
	var se *SetupError
	if errors.As(err, &se) {
		return titleSetup, se.Step + ": " + se.Err.Error()
	}
	return titleSetup, err.Error()
}
