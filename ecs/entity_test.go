package ecs_test

import (
	"testing"

	"github.com/plus3/archstore/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityAddRemoveScenario(t *testing.T) {
	registry := ecs.NewRegistry()
	pos := ecs.MustRegister[Position](registry)
	vel := ecs.MustRegister[Velocity](registry)

	e1, err := ecs.NewEntity(registry, pos)
	require.NoError(t, err)
	p, err := ecs.GetComponent[Position](e1)
	require.NoError(t, err)
	*p = Position{X: 3, Y: 4}

	require.NoError(t, ecs.AddComponent(e1, Velocity{DX: 1, DY: 2}))
	assert.True(t, e1.Archetype().Key().Equal(ecs.NewBitset(pos, vel)))

	p, err = ecs.GetComponent[Position](e1)
	require.NoError(t, err)
	assert.Equal(t, Position{X: 3, Y: 4}, *p)

	removed, err := ecs.RemoveComponent[Position](e1)
	require.NoError(t, err)
	assert.Equal(t, Position{X: 3, Y: 4}, removed)
	assert.True(t, e1.Archetype().Key().Equal(ecs.NewBitset(vel)))

	has, err := ecs.HasComponent[Position](e1)
	require.NoError(t, err)
	assert.False(t, has)

	v, err := ecs.GetComponent[Velocity](e1)
	require.NoError(t, err)
	assert.Equal(t, Velocity{DX: 1, DY: 2}, *v)
}

func TestEntityStartsInEmptyArchetype(t *testing.T) {
	registry := newTestRegistry()

	e, err := ecs.NewEntity(registry)
	require.NoError(t, err)

	assert.Same(t, registry.Empty(), e.Archetype())
	assert.True(t, e.Components().IsEmpty())
	assert.True(t, e.Alive())
	assert.NotZero(t, e.ID())
}

func TestEntityIDsAreUnique(t *testing.T) {
	registry := newTestRegistry()

	seen := make(map[ecs.EntityId]bool)
	for i := 0; i < 100; i++ {
		e, err := ecs.NewEntity(registry, mustID[Score](registry))
		require.NoError(t, err)
		assert.False(t, seen[e.ID()])
		seen[e.ID()] = true
	}
}

func TestAddComponentReplacesExisting(t *testing.T) {
	registry := newTestRegistry()

	e, err := ecs.NewEntity(registry, mustID[Health](registry))
	require.NoError(t, err)
	before := e.Archetype()

	require.NoError(t, ecs.AddComponent(e, Health{Current: 10, Max: 20}))
	require.NoError(t, ecs.AddComponent(e, Health{Current: 15, Max: 20}))

	assert.Same(t, before, e.Archetype())
	assert.Equal(t, 1, before.Len())
	hp, err := ecs.GetComponent[Health](e)
	require.NoError(t, err)
	assert.Equal(t, 15, hp.Current)
}

func TestRemoveMissingComponent(t *testing.T) {
	registry := newTestRegistry()

	e, err := ecs.NewEntity(registry, mustID[Position](registry))
	require.NoError(t, err)
	before := e.Archetype()

	_, err = ecs.RemoveComponent[Velocity](e)
	assert.ErrorIs(t, err, ecs.ErrComponentNotFound)
	assert.Same(t, before, e.Archetype())

	_, err = ecs.GetComponent[Velocity](e)
	assert.ErrorIs(t, err, ecs.ErrComponentNotFound)
}

func TestUnregisteredComponentOperations(t *testing.T) {
	registry := ecs.NewRegistry()
	ecs.MustRegister[Position](registry)

	e, err := ecs.NewEntity(registry, mustID[Position](registry))
	require.NoError(t, err)

	assert.ErrorIs(t, ecs.AddComponent(e, Velocity{}), ecs.ErrUnregisteredComponent)
	_, err = ecs.RemoveComponent[Velocity](e)
	assert.ErrorIs(t, err, ecs.ErrUnregisteredComponent)
	_, err = ecs.HasComponent[Velocity](e)
	assert.ErrorIs(t, err, ecs.ErrUnregisteredComponent)
	_, err = ecs.GetComponent[Velocity](e)
	assert.ErrorIs(t, err, ecs.ErrUnregisteredComponent)

	_, err = ecs.NewEntity(registry, 9)
	assert.ErrorIs(t, err, ecs.ErrUnregisteredComponent)
}

func TestDestroyedEntityIsStale(t *testing.T) {
	registry := newTestRegistry()
	pos := mustID[Position](registry)

	keep, err := ecs.NewEntity(registry, pos)
	require.NoError(t, err)
	gone, err := ecs.NewEntity(registry, pos)
	require.NoError(t, err)
	a := gone.Archetype()

	require.NoError(t, gone.Destroy())
	assert.False(t, gone.Alive())
	assert.Nil(t, gone.Archetype())
	assert.Equal(t, 1, a.Len())
	assert.True(t, keep.Alive())

	assert.ErrorIs(t, gone.Destroy(), ecs.ErrEntityNotFound)
	assert.ErrorIs(t, ecs.AddComponent(gone, Velocity{}), ecs.ErrEntityNotFound)
	_, err = ecs.GetComponent[Position](gone)
	assert.ErrorIs(t, err, ecs.ErrEntityNotFound)
	assert.ErrorIs(t, gone.AssignComponents(ecs.NewBitset(pos)), ecs.ErrEntityNotFound)
}

func TestAssignComponents(t *testing.T) {
	registry := ecs.NewRegistry()
	pos := ecs.MustRegister[Position](registry)
	vel := ecs.MustRegister[Velocity](registry)
	hp, err := ecs.RegisterComponentDefault(registry, Health{Current: 100, Max: 100})
	require.NoError(t, err)

	e, err := ecs.NewEntity(registry, pos, vel)
	require.NoError(t, err)
	require.NoError(t, ecs.AddComponent(e, Position{X: 1, Y: 1}))
	require.NoError(t, ecs.AddComponent(e, Velocity{DX: 2, DY: 2}))

	require.NoError(t, e.AssignComponents(ecs.NewBitset(vel, hp)))
	assert.True(t, e.Components().Equal(ecs.NewBitset(vel, hp)))

	v, err := ecs.GetComponent[Velocity](e)
	require.NoError(t, err)
	assert.Equal(t, Velocity{DX: 2, DY: 2}, *v)

	h, err := ecs.GetComponent[Health](e)
	require.NoError(t, err)
	assert.Equal(t, Health{Current: 100, Max: 100}, *h)

	has, err := ecs.HasComponent[Position](e)
	require.NoError(t, err)
	assert.False(t, has)

	assert.ErrorIs(t, e.AssignComponents(ecs.NewBitset(vel, 77)), ecs.ErrUnregisteredComponent)
	assert.True(t, e.Components().Equal(ecs.NewBitset(vel, hp)))
}

func TestGetComponentIsMutableReference(t *testing.T) {
	registry := newTestRegistry()

	e, err := ecs.NewEntity(registry, mustID[Name](registry))
	require.NoError(t, err)

	n, err := ecs.GetComponent[Name](e)
	require.NoError(t, err)
	n.Value = "ranger"

	again, err := ecs.GetComponent[Name](e)
	require.NoError(t, err)
	assert.Equal(t, "ranger", again.Value)
}

func TestEntityHandlesSurviveNeighbourMoves(t *testing.T) {
	registry := newTestRegistry()
	pos := mustID[Position](registry)

	entities := make([]*ecs.Entity, 10)
	for i := range entities {
		e, err := ecs.NewEntity(registry, pos)
		require.NoError(t, err)
		require.NoError(t, ecs.AddComponent(e, Position{X: float32(i)}))
		entities[i] = e
	}

	// move every even entity out, which compacts the odd ones around
	for i := 0; i < len(entities); i += 2 {
		require.NoError(t, ecs.AddComponent(entities[i], Velocity{DX: float32(i)}))
	}

	for i, e := range entities {
		p, err := ecs.GetComponent[Position](e)
		require.NoError(t, err)
		assert.Equal(t, float32(i), p.X)

		has, err := ecs.HasComponent[Velocity](e)
		require.NoError(t, err)
		assert.Equal(t, i%2 == 0, has)
	}
}
