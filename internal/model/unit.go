package model

import (
	"time"

	"resource_adequacy/internal/timeseries"
)

// UnitKind tags the closed set of unit variants.
type UnitKind string

const (
	UnitDemand     UnitKind = "demand"
	UnitStatic     UnitKind = "static"
	UnitStochastic UnitKind = "stochastic"
	UnitStorage    UnitKind = "storage"
)

// Unit is a tagged record: exactly the fields for its Kind are populated.
// Units carry no dispatch state; the simulator interprets them per kind.
type Unit struct {
	ID   int
	Kind UnitKind

	// Demand units.
	HourlyDemand timeseries.Series

	// Static and stochastic units.
	NameplateCapacity float64
	HourlyCapacity    timeseries.Series

	// Stochastic units. Each rate is the probability the unit is
	// unavailable for that hour, in [0, 1].
	HourlyForcedOutageRate timeseries.Series

	// Storage units. Rates in MW, capacity in MWh, efficiency in (0, 1].
	ChargeRateMW        float64
	DischargeRateMW     float64
	ChargeCapacityMWh   float64
	RoundtripEfficiency float64
}

// NewDemandUnit creates a demand unit. Its nameplate is the peak of the
// demand series; its contribution to net capacity is the negated demand.
func NewDemandUnit(id int, hourlyDemand timeseries.Series) (Unit, error) {
	if id < 0 {
		return Unit{}, &InvalidUnitError{Field: "id", Message: "must be non-negative"}
	}
	if hourlyDemand.Len() == 0 {
		return Unit{}, &InvalidUnitError{Field: "hourly_demand", Message: "must not be empty"}
	}
	return Unit{ID: id, Kind: UnitDemand, HourlyDemand: hourlyDemand}, nil
}

// NewStaticUnit creates a unit contributing its hourly capacity deterministically.
func NewStaticUnit(id int, nameplateMW float64, hourlyCapacity timeseries.Series) (Unit, error) {
	if id < 0 {
		return Unit{}, &InvalidUnitError{Field: "id", Message: "must be non-negative"}
	}
	if nameplateMW < 0 {
		return Unit{}, &InvalidUnitError{Field: "nameplate_capacity", Message: "must be non-negative"}
	}
	if hourlyCapacity.Len() == 0 {
		return Unit{}, &InvalidUnitError{Field: "hourly_capacity", Message: "must not be empty"}
	}
	return Unit{ID: id, Kind: UnitStatic, NameplateCapacity: nameplateMW, HourlyCapacity: hourlyCapacity}, nil
}

// NewStochasticUnit creates a unit whose hourly capacity is available with
// probability 1 − hourlyForcedOutageRate[h], sampled independently per
// (hour, trial). Both series must share the same hourly grid.
func NewStochasticUnit(id int, nameplateMW float64, hourlyCapacity, hourlyForcedOutageRate timeseries.Series) (Unit, error) {
	if id < 0 {
		return Unit{}, &InvalidUnitError{Field: "id", Message: "must be non-negative"}
	}
	if nameplateMW < 0 {
		return Unit{}, &InvalidUnitError{Field: "nameplate_capacity", Message: "must be non-negative"}
	}
	if hourlyCapacity.Len() == 0 {
		return Unit{}, &InvalidUnitError{Field: "hourly_capacity", Message: "must not be empty"}
	}
	if !hourlyCapacity.Start().Equal(hourlyForcedOutageRate.Start()) || hourlyCapacity.Len() != hourlyForcedOutageRate.Len() {
		return Unit{}, &InvalidUnitError{Field: "hourly_forced_outage_rate", Message: "must share the capacity series' hourly grid"}
	}
	for i := 0; i < hourlyForcedOutageRate.Len(); i++ {
		if r := hourlyForcedOutageRate.At(i); r < 0 || r > 1 {
			return Unit{}, &InvalidUnitError{Field: "hourly_forced_outage_rate", Message: "rates must be in [0, 1]"}
		}
	}
	return Unit{
		ID:                     id,
		Kind:                   UnitStochastic,
		NameplateCapacity:      nameplateMW,
		HourlyCapacity:         hourlyCapacity,
		HourlyForcedOutageRate: hourlyForcedOutageRate,
	}, nil
}

// NewStorageUnit creates a stateful storage unit dispatched against the
// pre-storage net capacity profile.
func NewStorageUnit(id int, nameplateMW, chargeRateMW, dischargeRateMW, chargeCapacityMWh, roundtripEfficiency float64) (Unit, error) {
	if id < 0 {
		return Unit{}, &InvalidUnitError{Field: "id", Message: "must be non-negative"}
	}
	if nameplateMW < 0 {
		return Unit{}, &InvalidUnitError{Field: "nameplate_capacity", Message: "must be non-negative"}
	}
	if chargeRateMW < 0 {
		return Unit{}, &InvalidUnitError{Field: "charge_rate", Message: "must be non-negative"}
	}
	if dischargeRateMW < 0 {
		return Unit{}, &InvalidUnitError{Field: "discharge_rate", Message: "must be non-negative"}
	}
	if chargeCapacityMWh < 0 {
		return Unit{}, &InvalidUnitError{Field: "charge_capacity", Message: "must be non-negative"}
	}
	if roundtripEfficiency <= 0 || roundtripEfficiency > 1 {
		return Unit{}, &InvalidUnitError{Field: "roundtrip_efficiency", Message: "must be in (0, 1]"}
	}
	return Unit{
		ID:                  id,
		Kind:                UnitStorage,
		NameplateCapacity:   nameplateMW,
		ChargeRateMW:        chargeRateMW,
		DischargeRateMW:     dischargeRateMW,
		ChargeCapacityMWh:   chargeCapacityMWh,
		RoundtripEfficiency: roundtripEfficiency,
	}, nil
}

// Nameplate returns the unit's nameplate capacity in MW.
func (u Unit) Nameplate() float64 {
	if u.Kind == UnitDemand {
		return u.HourlyDemand.Peak()
	}
	return u.NameplateCapacity
}

// Window returns the time range the unit's series cover. Storage units have
// no series and place no bound (bounded == false).
func (u Unit) Window() (start, end time.Time, bounded bool) {
	switch u.Kind {
	case UnitDemand:
		return u.HourlyDemand.Start(), u.HourlyDemand.End(), true
	case UnitStatic, UnitStochastic:
		// Stochastic rate series share the capacity grid by construction.
		return u.HourlyCapacity.Start(), u.HourlyCapacity.End(), true
	default:
		return time.Time{}, time.Time{}, false
	}
}

// WithID returns a copy of the unit under a different id. Used when
// composing systems whose id spaces overlap.
func (u Unit) WithID(id int) Unit {
	u.ID = id
	return u
}
