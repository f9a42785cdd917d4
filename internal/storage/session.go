package storage

import (
	"context"
	"fmt"
)

// Policy decides how family writes are grouped into transactions.
type Policy string

const (
	// PerFamily commits after every family. A failure leaves earlier
	// families committed.
	PerFamily Policy = "per-family"
	// WholeRun keeps one transaction open for the entire run.
	WholeRun Policy = "whole-run"
)

// ParsePolicy maps a config value onto a Policy. Empty means PerFamily.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", PerFamily:
		return PerFamily, nil
	case WholeRun:
		return WholeRun, nil
	}
	return "", fmt.Errorf("storage: unknown transaction policy %q", s)
}

// Session hands out transactions according to a Policy.
type Session struct {
	target *Target
	policy Policy
	open   *Tx
}

func NewSession(t *Target, p Policy) *Session {
	if p == "" {
		p = PerFamily
	}
	return &Session{target: t, policy: p}
}

func (s *Session) Policy() Policy { return s.policy }

// Do runs fn inside a transaction. Under PerFamily the transaction is
// committed when fn succeeds; under WholeRun it stays open until Close.
// Any error rolls back the transaction fn ran in.
func (s *Session) Do(ctx context.Context, fn func(*Tx) error) error {
	tx := s.open
	if tx == nil {
		var err error
		if tx, err = s.target.Begin(ctx); err != nil {
			return err
		}
		if s.policy == WholeRun {
			s.open = tx
		}
	}
	if err := fn(tx); err != nil {
		s.open = nil
		_ = tx.Rollback()
		return err
	}
	if s.policy == WholeRun {
		return nil
	}
	return tx.Commit()
}

// Close commits a pending whole-run transaction.
func (s *Session) Close() error {
	if s.open == nil {
		return nil
	}
	tx := s.open
	s.open = nil
	return tx.Commit()
}

// Abort rolls back a pending whole-run transaction.
func (s *Session) Abort() {
	if s.open != nil {
		_ = s.open.Rollback()
		s.open = nil
	}
}
