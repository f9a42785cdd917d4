// Package units holds the numeric and textual conventions of the
// HYSTEM-EXTRAN export: fixed-decimal rounding, the hydraulic constants
// derived from an area, LASTMODIFIED timestamps and name normalisation.
package units

import (
	"database/sql"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

// TimeLayout is the LASTMODIFIED format expected by HYSTEM-EXTRAN.
const TimeLayout = "02.01.2006 15:04:05"

// Round rounds v half away from zero to the given number of decimals.
// NaN and infinities are returned unchanged.
func Round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// RoundNull rounds a nullable value; NULL stays NULL.
func RoundNull(v sql.NullFloat64, places int32) sql.NullFloat64 {
	if !v.Valid {
		return v
	}
	return sql.NullFloat64{Float64: Round(v.Float64, places), Valid: true}
}

// Float wraps v as a valid nullable value.
func Float(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: true}
}

// Coalesce returns the first valid value, or NULL.
func Coalesce(vs ...sql.NullFloat64) sql.NullFloat64 {
	for _, v := range vs {
		if v.Valid {
			return v
		}
	}
	return sql.NullFloat64{}
}

// StorageConstant returns 2·√area rounded to 3 decimals. Non-positive
// areas yield 0.
func StorageConstant(area float64) float64 {
	if area <= 0 {
		return 0
	}
	return Round(2*math.Sqrt(area), 3)
}

// ConcentrationTime returns 6·√area rounded to 2 decimals. Non-positive
// areas yield 0.
func ConcentrationTime(area float64) float64 {
	if area <= 0 {
		return 0
	}
	return Round(6*math.Sqrt(area), 2)
}

// Timestamp formats t as a LASTMODIFIED value.
func Timestamp(t time.Time) string {
	return t.Format(TimeLayout)
}

// LastModified prefers the source creation stamp (cut to 19 characters)
// and falls back to now.
func LastModified(createdAt sql.NullString, now time.Time) string {
	s := strings.TrimSpace(createdAt.String)
	if !createdAt.Valid || s == "" {
		return Timestamp(now)
	}
	if len(s) > 19 {
		s = s[:19]
	}
	return s
}

// Name trims surrounding space and normalises to NFC so that name-keyed
// lookups match regardless of how umlauts were composed at the source.
func Name(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// NullName applies Name to a nullable string; blank values become NULL.
func NullName(s sql.NullString) sql.NullString {
	if !s.Valid {
		return s
	}
	n := Name(s.String)
	if n == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: n, Valid: true}
}

// Text returns s, or fallback when s is NULL or blank.
func Text(s sql.NullString, fallback string) string {
	if !s.Valid || strings.TrimSpace(s.String) == "" {
		return fallback
	}
	return s.String
}
