package model

// EnergySystem is an immutable collection of units ordered by ascending id.
// Safe to share between simulations once built.
type EnergySystem struct {
	units []Unit
	byID  map[int]int // id → index into units
}

// Size returns the number of units.
func (s *EnergySystem) Size() int { return len(s.units) }

// Units returns the units in ascending id order.
func (s *EnergySystem) Units() []Unit {
	out := make([]Unit, len(s.units))
	copy(out, s.units)
	return out
}

// UnitsByKind returns the subset of the given kind, in ascending id order.
func (s *EnergySystem) UnitsByKind(kind UnitKind) []Unit {
	var out []Unit
	for _, u := range s.units {
		if u.Kind == kind {
			out = append(out, u)
		}
	}
	return out
}

// Unit looks up a unit by id.
func (s *EnergySystem) Unit(id int) (Unit, bool) {
	i, ok := s.byID[id]
	if !ok {
		return Unit{}, false
	}
	return s.units[i], true
}

// SystemCapacity returns the summed nameplate capacity of all non-demand
// units, in MW.
func (s *EnergySystem) SystemCapacity() float64 {
	total := 0.0
	for _, u := range s.units {
		if u.Kind != UnitDemand {
			total += u.Nameplate()
		}
	}
	return total
}

// MaxID returns the largest unit id, or -1 for an empty system.
func (s *EnergySystem) MaxID() int {
	max := -1
	for _, u := range s.units {
		if u.ID > max {
			max = u.ID
		}
	}
	return max
}
