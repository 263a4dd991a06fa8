package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resource_adequacy/internal/timeseries"
)

func testStatic(t *testing.T, id int, nameplate float64) Unit {
	t.Helper()
	u, err := NewStaticUnit(id, nameplate, timeseries.Constant(t0, 24, nameplate))
	require.NoError(t, err)
	return u
}

func testDemand(t *testing.T, id int, mw float64) Unit {
	t.Helper()
	u, err := NewDemandUnit(id, timeseries.Constant(t0, 24, mw))
	require.NoError(t, err)
	return u
}

func TestBuilder_AddAndSize(t *testing.T) {
	b := NewBuilder()
	assert.Equal(t, 0, b.Size())

	require.NoError(t, b.AddUnit(testStatic(t, 1, 100)))
	require.NoError(t, b.AddUnit(testDemand(t, 2, 80)))
	assert.Equal(t, 2, b.Size())
}

func TestBuilder_DuplicateID(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.AddUnit(testStatic(t, 1, 100)))

	err := b.AddUnit(testDemand(t, 1, 80))
	var dup *DuplicateIDError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, 1, dup.ID)
	assert.Equal(t, 1, b.Size())
}

func TestBuilder_RemoveUnit(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.AddUnit(testStatic(t, 1, 100)))
	require.NoError(t, b.RemoveUnit(1))
	assert.Equal(t, 0, b.Size())

	err := b.RemoveUnit(1)
	var unknown *UnknownIDError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, 1, unknown.ID)
}

func TestBuilder_BuildSnapshotIsIndependent(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.AddUnit(testStatic(t, 1, 100)))

	sys := b.Build()
	require.NoError(t, b.AddUnit(testStatic(t, 2, 50)))
	require.NoError(t, b.RemoveUnit(1))

	assert.Equal(t, 1, sys.Size())
	_, ok := sys.Unit(1)
	assert.True(t, ok)
	_, ok = sys.Unit(2)
	assert.False(t, ok)
}

func TestEnergySystem_OrderedByID(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.AddUnit(testStatic(t, 7, 10)))
	require.NoError(t, b.AddUnit(testStatic(t, 2, 20)))
	require.NoError(t, b.AddUnit(testStatic(t, 5, 30)))

	units := b.Build().Units()
	ids := []int{units[0].ID, units[1].ID, units[2].ID}
	assert.Equal(t, []int{2, 5, 7}, ids)
}

func TestEnergySystem_UnitsByKind(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.AddUnit(testDemand(t, 3, 80)))
	require.NoError(t, b.AddUnit(testStatic(t, 1, 100)))
	storage, err := NewStorageUnit(2, 50, 50, 50, 200, 0.9)
	require.NoError(t, err)
	require.NoError(t, b.AddUnit(storage))

	sys := b.Build()
	assert.Len(t, sys.UnitsByKind(UnitStatic), 1)
	assert.Len(t, sys.UnitsByKind(UnitDemand), 1)
	assert.Len(t, sys.UnitsByKind(UnitStorage), 1)
	assert.Empty(t, sys.UnitsByKind(UnitStochastic))
}

func TestEnergySystem_SystemCapacityExcludesDemand(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.AddUnit(testDemand(t, 0, 500)))
	require.NoError(t, b.AddUnit(testStatic(t, 1, 100)))
	storage, err := NewStorageUnit(2, 50, 50, 50, 200, 0.9)
	require.NoError(t, err)
	require.NoError(t, b.AddUnit(storage))

	assert.InDelta(t, 150, b.Build().SystemCapacity(), 0)
}

func TestEnergySystem_MaxID(t *testing.T) {
	assert.Equal(t, -1, NewBuilder().Build().MaxID())

	b := NewBuilder()
	require.NoError(t, b.AddUnit(testStatic(t, 4, 10)))
	require.NoError(t, b.AddUnit(testStatic(t, 11, 10)))
	assert.Equal(t, 11, b.Build().MaxID())
}
