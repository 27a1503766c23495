package ecs

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertRowsConsistent checks that every live row's handle points back at
// that row and that its compX value is the tag the test gave it.
func assertRowsConsistent(t *testing.T, a *Archetype, tags map[*Entity]int) {
	t.Helper()

	pool, err := ComponentPool[compX](a)
	require.NoError(t, err)

	seen := make(map[*Entity]bool, a.Len())
	for row, e := range a.Entities() {
		require.Same(t, a, e.archetype)
		require.Equal(t, row, e.row)
		require.Equal(t, tags[e], pool.Get(row).V)
		seen[e] = true
	}
	assert.Len(t, seen, len(tags))
	for e := range tags {
		assert.True(t, seen[e], "entity %d missing", e.id)
	}
}

func TestArchetypeInsertInitialisesDefaults(t *testing.T) {
	r := NewRegistry()
	x, err := RegisterComponentDefault(r, compX{V: 42})
	require.NoError(t, err)

	e, err := NewEntity(r, x)
	require.NoError(t, err)

	a := e.Archetype()
	assert.Equal(t, 1, a.Len())
	assert.Equal(t, 0, e.Row())
	assert.Same(t, e, a.EntityPool().Get(0))

	v, err := GetComponent[compX](e)
	require.NoError(t, err)
	assert.Equal(t, 42, v.V)
}

func TestArchetypeCompactionKeepsHandlesConsistent(t *testing.T) {
	r, x, _, _ := newXYZRegistry()
	rng := rand.New(rand.NewPCG(42, 42))

	const n = 300
	tags := make(map[*Entity]int, n)
	entities := make([]*Entity, 0, n)
	for i := 0; i < n; i++ {
		e, err := NewEntity(r, x)
		require.NoError(t, err)
		require.NoError(t, AddComponent(e, compX{V: i}))
		tags[e] = i
		entities = append(entities, e)
	}

	a := entities[0].Archetype()
	assert.Equal(t, n, a.Len())
	assert.Equal(t, 512, a.Cap())
	assertRowsConsistent(t, a, tags)

	rng.Shuffle(len(entities), func(i, j int) {
		entities[i], entities[j] = entities[j], entities[i]
	})
	for _, e := range entities[:220] {
		require.NoError(t, e.Destroy())
		delete(tags, e)

		assert.GreaterOrEqual(t, a.Cap(), MinCapacity)
		assert.GreaterOrEqual(t, a.Cap(), a.Len())
	}

	assert.Equal(t, 80, a.Len())
	assert.Equal(t, MinCapacity, a.Cap())
	assertRowsConsistent(t, a, tags)

	// vacated tail rows are cleared
	pool, err := ComponentPool[compX](a)
	require.NoError(t, err)
	for row := a.Len(); row < a.Cap(); row++ {
		assert.Equal(t, compX{}, pool.Get(row))
		assert.Nil(t, a.EntityPool().Get(row))
	}
}

func TestArchetypeGrowAndShrinkTiers(t *testing.T) {
	r, x, _, _ := newXYZRegistry()

	entities := make([]*Entity, 200)
	for i := range entities {
		e, err := NewEntity(r, x)
		require.NoError(t, err)
		entities[i] = e
	}

	a := entities[0].Archetype()
	assert.Equal(t, 256, a.Cap())

	rng := rand.New(rand.NewPCG(9, 9))
	for _, i := range rng.Perm(200)[:150] {
		require.NoError(t, entities[i].Destroy())
	}

	assert.Equal(t, 50, a.Len())
	assert.Equal(t, 128, a.Cap())
}

func TestArchetypeMoveCopiesSharedComponents(t *testing.T) {
	r, x, y, z := newXYZRegistry()

	src, err := r.FindOrCreate(NewBitset(x, y))
	require.NoError(t, err)
	dst, err := r.FindOrCreate(NewBitset(y, z))
	require.NoError(t, err)

	first, err := NewEntity(r, x, y)
	require.NoError(t, err)
	mover, err := NewEntity(r, x, y)
	require.NoError(t, err)
	last, err := NewEntity(r, x, y)
	require.NoError(t, err)

	src.columns[x].(*Pool[compX]).Set(mover.row, compX{V: 1})
	src.columns[y].(*Pool[compY]).Set(mover.row, compY{V: 2})
	src.columns[y].(*Pool[compY]).Set(last.row, compY{V: 3})

	require.NoError(t, src.moveEntity(mover, dst))

	assert.Same(t, dst, mover.Archetype())
	assert.Equal(t, 0, mover.Row())
	assert.Equal(t, 1, dst.Len())
	assert.Equal(t, 2, dst.columns[y].(*Pool[compY]).Get(0).V)
	assert.Equal(t, compZ{}, dst.columns[z].(*Pool[compZ]).Get(0))
	assert.Nil(t, dst.columns[x])

	// the last row of the source filled the hole
	assert.Equal(t, 2, src.Len())
	assert.Equal(t, 0, first.Row())
	assert.Equal(t, 1, last.Row())
	assert.Same(t, last, src.EntityPool().Get(1))
	assert.Equal(t, 3, src.columns[y].(*Pool[compY]).Get(1).V)
}

func TestArchetypeMoveLeavesTargetOnlySlotUntouched(t *testing.T) {
	r, x, y, z := newXYZRegistry()

	src, err := r.FindOrCreate(NewBitset(x, y))
	require.NoError(t, err)
	dst, err := r.FindOrCreate(NewBitset(y, z))
	require.NoError(t, err)

	e, err := NewEntity(r, x, y)
	require.NoError(t, err)

	dst.columns[z].(*Pool[compZ]).Set(dst.Len(), compZ{V: 99})
	require.NoError(t, src.moveEntity(e, dst))

	assert.Equal(t, 99, dst.columns[z].(*Pool[compZ]).Get(e.row).V)
}

func TestArchetypeMoveToSelfIsNoop(t *testing.T) {
	r, x, _, _ := newXYZRegistry()

	e, err := NewEntity(r, x)
	require.NoError(t, err)
	a := e.Archetype()

	require.NoError(t, a.moveEntity(e, a))
	assert.Equal(t, 1, a.Len())
	assert.Equal(t, 0, e.Row())
}

func TestArchetypeMoveRejectsStaleHandle(t *testing.T) {
	r, x, y, _ := newXYZRegistry()

	src, err := r.FindOrCreate(NewBitset(x))
	require.NoError(t, err)
	dst, err := r.FindOrCreate(NewBitset(x, y))
	require.NoError(t, err)

	keep, err := NewEntity(r, x)
	require.NoError(t, err)
	stale, err := NewEntity(r, x)
	require.NoError(t, err)

	// pretend the handle claims a row that belongs to someone else
	stale.row = keep.row

	err = src.moveEntity(stale, dst)
	assert.ErrorIs(t, err, ErrEntityNotFound)
	assert.Equal(t, 2, src.Len())
	assert.Equal(t, 0, dst.Len())
	assert.Same(t, src, stale.archetype)
	assert.Same(t, keep, src.EntityPool().Get(0))
}

func TestArchetypeMoveGrowsFullTarget(t *testing.T) {
	r, x, y, _ := newXYZRegistry()

	for i := 0; i < MinCapacity; i++ {
		_, err := NewEntity(r, x, y)
		require.NoError(t, err)
	}
	dst, err := r.FindOrCreate(NewBitset(x, y))
	require.NoError(t, err)
	require.Equal(t, MinCapacity, dst.Cap())

	e, err := NewEntity(r, x)
	require.NoError(t, err)
	require.NoError(t, AddComponent(e, compY{V: 5}))

	assert.Equal(t, 2*MinCapacity, dst.Cap())
	assert.Equal(t, MinCapacity, e.Row())
	assert.Equal(t, 5, dst.columns[y].(*Pool[compY]).Get(e.row).V)
}

func TestArchetypeEdgesAreCachedPerDirection(t *testing.T) {
	r, x, y, _ := newXYZRegistry()

	a, err := r.FindOrCreate(NewBitset(x))
	require.NoError(t, err)
	require.Equal(t, noEdge, a.next[y])

	next, err := a.findNext(y)
	require.NoError(t, err)
	assert.True(t, next.Key().Equal(NewBitset(x, y)))
	assert.Equal(t, next.id, a.next[y])

	// the inverse edge on the target is not filled in
	assert.Equal(t, noEdge, next.prev[y])

	count := len(r.arena)
	again, err := a.findNext(y)
	require.NoError(t, err)
	assert.Same(t, next, again)
	assert.Len(t, r.arena, count)

	back, err := next.findPrev(y)
	require.NoError(t, err)
	assert.Same(t, a, back)
	assert.Equal(t, a.id, next.prev[y])
}

func TestArchetypeFindNextUnregisteredID(t *testing.T) {
	r, _, _, _ := newXYZRegistry()

	_, err := r.Empty().findNext(200)
	assert.ErrorIs(t, err, ErrUnregisteredComponent)
	assert.Equal(t, noEdge, r.Empty().next[200])
}
