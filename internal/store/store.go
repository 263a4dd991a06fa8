// Package store persists energy systems as a directory: a JSON manifest
// listing every unit's id, kind, and scalar attributes, plus one CSV file
// per time-series attribute. Timestamps are RFC3339 and values use the
// shortest float64 representation, so a saved system reloads losslessly.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jszwec/csvutil"

	"resource_adequacy/internal/model"
	"resource_adequacy/internal/timeseries"
)

const manifestVersion = 1

const manifestFile = "manifest.json"

// PersistenceError wraps a corrupted or incompatible saved system.
type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence error at %s: %v", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

type manifest struct {
	Version int          `json:"version"`
	Units   []unitRecord `json:"units"`
}

// unitRecord stores one unit's scalar attributes and the file name of each
// time-series attribute.
type unitRecord struct {
	ID   int    `json:"id"`
	Kind string `json:"kind"`

	NameplateCapacity   *float64 `json:"nameplate_capacity,omitempty"`
	ChargeRateMW        *float64 `json:"charge_rate_mw,omitempty"`
	DischargeRateMW     *float64 `json:"discharge_rate_mw,omitempty"`
	ChargeCapacityMWh   *float64 `json:"charge_capacity_mwh,omitempty"`
	RoundtripEfficiency *float64 `json:"roundtrip_efficiency,omitempty"`

	Series map[string]string `json:"series,omitempty"`
}

type seriesRow struct {
	Time  time.Time `csv:"time"`
	Value float64   `csv:"value"`
}

// Save writes the system into dir, creating it if needed. Existing files
// are overwritten.
func Save(dir string, sys *model.EnergySystem) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &PersistenceError{Path: dir, Err: err}
	}

	m := manifest{Version: manifestVersion}
	for _, u := range sys.Units() {
		rec := unitRecord{ID: u.ID, Kind: string(u.Kind), Series: map[string]string{}}
		switch u.Kind {
		case model.UnitDemand:
			if err := writeSeries(dir, &rec, "hourly_demand", u.HourlyDemand); err != nil {
				return err
			}
		case model.UnitStatic:
			rec.NameplateCapacity = ptr(u.NameplateCapacity)
			if err := writeSeries(dir, &rec, "hourly_capacity", u.HourlyCapacity); err != nil {
				return err
			}
		case model.UnitStochastic:
			rec.NameplateCapacity = ptr(u.NameplateCapacity)
			if err := writeSeries(dir, &rec, "hourly_capacity", u.HourlyCapacity); err != nil {
				return err
			}
			if err := writeSeries(dir, &rec, "hourly_forced_outage_rate", u.HourlyForcedOutageRate); err != nil {
				return err
			}
		case model.UnitStorage:
			rec.NameplateCapacity = ptr(u.NameplateCapacity)
			rec.ChargeRateMW = ptr(u.ChargeRateMW)
			rec.DischargeRateMW = ptr(u.DischargeRateMW)
			rec.ChargeCapacityMWh = ptr(u.ChargeCapacityMWh)
			rec.RoundtripEfficiency = ptr(u.RoundtripEfficiency)
		default:
			return &PersistenceError{Path: dir, Err: fmt.Errorf("unit %d has unknown kind %q", u.ID, u.Kind)}
		}
		if len(rec.Series) == 0 {
			rec.Series = nil
		}
		m.Units = append(m.Units, rec)
	}

	raw, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return &PersistenceError{Path: dir, Err: err}
	}
	path := filepath.Join(dir, manifestFile)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return &PersistenceError{Path: path, Err: err}
	}
	return nil
}

// Load reconstructs a system saved by Save. Every unit passes through its
// constructor again, so invariant violations in tampered files surface as
// persistence errors.
func Load(dir string) (*model.EnergySystem, error) {
	path := filepath.Join(dir, manifestFile)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &PersistenceError{Path: path, Err: err}
	}
	var m manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, &PersistenceError{Path: path, Err: err}
	}
	if m.Version != manifestVersion {
		return nil, &PersistenceError{Path: path, Err: fmt.Errorf("unsupported manifest version %d", m.Version)}
	}

	b := model.NewBuilder()
	for _, rec := range m.Units {
		u, err := loadUnit(dir, rec)
		if err != nil {
			return nil, err
		}
		if err := b.AddUnit(u); err != nil {
			return nil, &PersistenceError{Path: path, Err: err}
		}
	}
	return b.Build(), nil
}

func loadUnit(dir string, rec unitRecord) (model.Unit, error) {
	var u model.Unit
	var err error
	switch model.UnitKind(rec.Kind) {
	case model.UnitDemand:
		demand, rerr := readSeries(dir, rec, "hourly_demand")
		if rerr != nil {
			return model.Unit{}, rerr
		}
		u, err = model.NewDemandUnit(rec.ID, demand)
	case model.UnitStatic:
		capacity, rerr := readSeries(dir, rec, "hourly_capacity")
		if rerr != nil {
			return model.Unit{}, rerr
		}
		u, err = model.NewStaticUnit(rec.ID, scalar(rec.NameplateCapacity), capacity)
	case model.UnitStochastic:
		capacity, rerr := readSeries(dir, rec, "hourly_capacity")
		if rerr != nil {
			return model.Unit{}, rerr
		}
		rate, rerr := readSeries(dir, rec, "hourly_forced_outage_rate")
		if rerr != nil {
			return model.Unit{}, rerr
		}
		u, err = model.NewStochasticUnit(rec.ID, scalar(rec.NameplateCapacity), capacity, rate)
	case model.UnitStorage:
		u, err = model.NewStorageUnit(rec.ID, scalar(rec.NameplateCapacity),
			scalar(rec.ChargeRateMW), scalar(rec.DischargeRateMW),
			scalar(rec.ChargeCapacityMWh), scalar(rec.RoundtripEfficiency))
	default:
		return model.Unit{}, &PersistenceError{Path: dir, Err: fmt.Errorf("unit %d has unknown kind %q", rec.ID, rec.Kind)}
	}
	if err != nil {
		return model.Unit{}, &PersistenceError{Path: dir, Err: fmt.Errorf("unit %d: %w", rec.ID, err)}
	}
	return u, nil
}

func seriesFileName(id int, attr string) string {
	return fmt.Sprintf("unit_%d_%s.csv", id, attr)
}

func writeSeries(dir string, rec *unitRecord, attr string, s timeseries.Series) error {
	rows := make([]seriesRow, s.Len())
	for i := range rows {
		rows[i] = seriesRow{Time: s.Time(i), Value: s.At(i)}
	}
	raw, err := csvutil.Marshal(rows)
	if err != nil {
		return &PersistenceError{Path: dir, Err: err}
	}
	name := seriesFileName(rec.ID, attr)
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return &PersistenceError{Path: path, Err: err}
	}
	rec.Series[attr] = name
	return nil
}

func readSeries(dir string, rec unitRecord, attr string) (timeseries.Series, error) {
	name, ok := rec.Series[attr]
	if !ok {
		return timeseries.Series{}, &PersistenceError{
			Path: dir,
			Err:  fmt.Errorf("unit %d is missing the %s series file entry", rec.ID, attr),
		}
	}
	path := filepath.Join(dir, name)
	raw, err := os.ReadFile(path)
	if err != nil {
		return timeseries.Series{}, &PersistenceError{Path: path, Err: err}
	}
	var rows []seriesRow
	if err := csvutil.Unmarshal(raw, &rows); err != nil {
		return timeseries.Series{}, &PersistenceError{Path: path, Err: err}
	}
	times := make([]time.Time, len(rows))
	values := make([]float64, len(rows))
	for i, r := range rows {
		times[i] = r.Time
		values[i] = r.Value
	}
	s, err := timeseries.FromPoints(times, values)
	if err != nil {
		return timeseries.Series{}, &PersistenceError{Path: path, Err: err}
	}
	return s, nil
}

func ptr(v float64) *float64 { return &v }

func scalar(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
