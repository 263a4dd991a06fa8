package model

import "sort"

// Builder accumulates units and produces immutable EnergySystem snapshots.
// The zero value is not usable; call NewBuilder.
type Builder struct {
	units map[int]Unit
}

func NewBuilder() *Builder {
	return &Builder{units: make(map[int]Unit)}
}

// AddUnit registers a unit. The id must not already be present.
func (b *Builder) AddUnit(u Unit) error {
	if _, ok := b.units[u.ID]; ok {
		return &DuplicateIDError{ID: u.ID}
	}
	b.units[u.ID] = u
	return nil
}

// RemoveUnit deletes a previously added unit by id.
func (b *Builder) RemoveUnit(id int) error {
	if _, ok := b.units[id]; !ok {
		return &UnknownIDError{ID: id}
	}
	delete(b.units, id)
	return nil
}

// Size returns the number of accumulated units.
func (b *Builder) Size() int { return len(b.units) }

// Build snapshots the current units into an EnergySystem ordered by
// ascending id. The builder can keep mutating afterwards without affecting
// the snapshot.
func (b *Builder) Build() *EnergySystem {
	units := make([]Unit, 0, len(b.units))
	for _, u := range b.units {
		units = append(units, u)
	}
	sort.Slice(units, func(i, j int) bool { return units[i].ID < units[j].ID })

	byID := make(map[int]int, len(units))
	for i, u := range units {
		byID[u.ID] = i
	}
	return &EnergySystem{units: units, byID: byID}
}
