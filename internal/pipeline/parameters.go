package pipeline

import (
	"context"
	"sort"
	"strconv"

	"qkhe/internal/hystem"
	"qkhe/internal/qkan"
	"qkhe/internal/storage"
	"qkhe/internal/units"
)

// Rain gauge numbering.
const (
	DefaultRainGauge = "RainGauge1"
	StationBase      = 10000
	RainGaugeComment = "Ergänzt durch QKan"
)

func (e *Exporter) soilClasses() family[hystem.SoilClassRow, hystem.SoilClassRow] {
	return family[hystem.SoilClassRow, hystem.SoilClassRow]{
		name: "soil", table: hystem.SoilClasses,
		label: "Export Bodenklassen...", done: "%s Bodenklassen eingefügt", start: 0.51, stop: 0.55,
		load: func(context.Context, *storage.Tx) ([]hystem.SoilClassRow, error) {
			return hystem.SoilCatalog(), nil
		},
		transform: func(s hystem.SoilClassRow, id int64) (hystem.SoilClassRow, bool) {
			s.ID = id
			s.LastModified = units.Timestamp(e.now)
			return s, true
		},
	}
}

func (e *Exporter) runoffParameters() family[qkan.RunoffParameterSet, hystem.RunoffParameter] {
	return family[qkan.RunoffParameterSet, hystem.RunoffParameter]{
		name: "runoff", table: hystem.RunoffParameters,
		label: "Export Abflussparameter...", done: "%s Abflussparameter eingefügt", start: 0.56, stop: 0.60,
		load: func(ctx context.Context, _ *storage.Tx) ([]qkan.RunoffParameterSet, error) {
			rows, err := e.src.RunoffParameterSets(ctx)
			return rows, sourceErr(err)
		},
		transform: func(p qkan.RunoffParameterSet, id int64) (hystem.RunoffParameter, bool) {
			name := units.Name(p.Name)
			if name == "" {
				return hystem.RunoffParameter{}, false
			}
			typ := 0
			if p.Pervious() {
				typ = 1
			}
			return hystem.RunoffParameter{
				ID:              id,
				Name:            name,
				InitialCoeff:    units.RoundNull(p.InitialCoeff, 2),
				FinalCoeff:      units.RoundNull(p.FinalCoeff, 2),
				WettingLoss:     units.RoundNull(p.WettingLoss, 2),
				DepressionLoss:  units.RoundNull(p.DepressionLoss, 2),
				WettingStart:    units.RoundNull(p.WettingStart, 2),
				DepressionStart: units.RoundNull(p.DepressionStart, 2),
				StorageConst:    1,
				StorageConst2:   1,
				SoilClass:       units.NullName(p.SoilClass),
				Type:            typ,
				Comment:         nullText(p.Comment),
				LastModified:    units.LastModified(p.CreatedAt, e.now),
			}, true
		},
	}
}

// rainGauge is a gauge name with its run-local number.
type rainGauge struct {
	name   string
	number int
}

func (e *Exporter) rainGauges() family[rainGauge, hystem.RainGauge] {
	return family[rainGauge, hystem.RainGauge]{
		name: "rain", table: hystem.RainGauges,
		label: "Export Regenschreiber...", done: "%s Regenschreiber eingefügt", start: 0.61, stop: 0.65,
		load: e.loadRainGauges,
		transform: func(g rainGauge, id int64) (hystem.RainGauge, bool) {
			return hystem.RainGauge{
				ID:           id,
				Number:       g.number,
				Station:      strconv.Itoa(StationBase + g.number),
				Name:         g.name,
				Comment:      RainGaugeComment,
				LastModified: units.Timestamp(e.now),
			}, true
		},
	}
}

// loadRainGauges collects the referenced gauge names that the target does
// not hold yet. Area features without a gauge fall back to
// DefaultRainGauge, as does a project that references none at all.
func (e *Exporter) loadRainGauges(ctx context.Context, tx *storage.Tx) ([]rainGauge, error) {
	refs, err := e.src.RainGaugeRefs(ctx)
	if err != nil {
		return nil, sourceErr(err)
	}
	existing, err := tx.Names(ctx, hystem.TableRainGauge)
	if err != nil {
		return nil, targetErr(err)
	}

	seen := make(map[string]struct{}, len(refs.Names)+1)
	var names []string
	for _, n := range refs.Names {
		n = units.Name(n)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		names = append(names, n)
	}
	sort.Strings(names)
	if _, ok := seen[DefaultRainGauge]; !ok && (len(names) == 0 || refs.HasNull) {
		names = append(names, DefaultRainGauge)
	}

	out := make([]rainGauge, 0, len(names))
	for _, n := range names {
		if _, ok := existing[n]; ok {
			continue
		}
		out = append(out, rainGauge{name: n, number: len(out) + 1})
	}
	return out, nil
}
