package simulator

import (
	"math"

	"resource_adequacy/internal/model"
)

// dispatchStorage folds one storage unit over a single trial's net capacity
// row, mutating it in place. State of charge starts empty. Round-trip
// efficiency is split symmetrically: each leg applies √η.
func dispatchStorage(u model.Unit, net []float64) {
	sqrtEff := math.Sqrt(u.RoundtripEfficiency)
	soc := 0.0 // MWh

	for h, n := range net {
		switch {
		case n >= 0 && soc < u.ChargeCapacityMWh:
			// Surplus: absorb as load, limited by rate and headroom.
			charged := math.Min(n, math.Min(u.ChargeRateMW, u.ChargeCapacityMWh-soc))
			soc += charged * sqrtEff
			net[h] = n - charged
		case n < 0 && soc > 0:
			// Deficit: discharge, limited by rate and deliverable energy.
			discharged := math.Min(-n, math.Min(u.DischargeRateMW, soc*sqrtEff))
			soc -= discharged / sqrtEff
			if soc < 0 {
				soc = 0
			}
			net[h] = n + discharged
		}
	}
}
