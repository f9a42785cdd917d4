package pipeline

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"qkhe/internal/qkan"
	"qkhe/internal/storage"
)

func TestQueryErrCarriesStatement(t *testing.T) {
	boom := errors.New("no such table: ROHR")
	err := targetErr(fmt.Errorf("wrapped: %w", &storage.StmtError{Stmt: "INSERT INTO ROHR", Err: boom}))

	var qe *QueryError
	require.ErrorAs(t, err, &qe)
	require.Equal(t, SideTarget, qe.Side)
	require.Equal(t, "INSERT INTO ROHR", qe.Stmt)
	require.ErrorIs(t, err, boom)

	// already classified errors are not wrapped twice
	require.Same(t, qe, sourceErr(err).(*QueryError))
	require.NoError(t, sourceErr(nil))
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantTitle  string
		wantDetail string
	}{
		{
			name:       "source statement",
			err:        sourceErr(&qkan.StmtError{Stmt: "SELECT 1", Err: errors.New("down")}),
			wantTitle:  "SQL-Fehler in QKan-Datenbank",
			wantDetail: "SELECT 1\nqkan: down",
		},
		{
			name:       "target without statement",
			err:        targetErr(errors.New("disk full")),
			wantTitle:  "SQL-Fehler in HE-Datenbank",
			wantDetail: "disk full",
		},
		{
			name:       "setup",
			err:        &SetupError{Step: "provision", Err: errors.New("locked")},
			wantTitle:  "Fehler beim Vorbereiten des Exports",
			wantDetail: "provision: locked",
		},
		{
			name:       "other",
			err:        errors.New("canceled"),
			wantTitle:  "Fehler beim Vorbereiten des Exports",
			wantDetail: "canceled",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, detail := describe(tt.err)
			require.Equal(t, tt.wantTitle, title)
			require.Equal(t, tt.wantDetail, detail)
		})
	}
}
