package ecs

import (
	"fmt"
	"reflect"
)

const (
	// MinCapacity is the capacity every archetype starts with and never
	// shrinks below.
	MinCapacity = 128

	noEdge int32 = -1
)

// Archetype stores every entity whose component set equals its key. Each
// component gets its own column, and row i of every column belongs to the
// entity in row i of the entity pool.
type Archetype struct {
	id       int32
	registry *Registry
	key      Bitset
	ids      []ComponentID
	columns  [MaxComponents]iColumn
	entities *Pool[*Entity]
	length   int
	capacity int

	// next[id] and prev[id] cache the arena index of the archetype reached by
	// adding or removing id.
	next [MaxComponents]int32
	prev [MaxComponents]int32
}

func newArchetype(r *Registry, id int32, key Bitset) *Archetype {
	a := &Archetype{
		id:       id,
		registry: r,
		key:      key,
		ids:      key.IDs(),
		entities: newPool[*Entity](MinCapacity),
		capacity: MinCapacity,
	}

	for _, cid := range a.ids {
		a.columns[cid] = r.components[cid].newColumn(MinCapacity)
	}
	for i := range a.next {
		a.next[i] = noEdge
		a.prev[i] = noEdge
	}
	return a
}

// ID returns the archetype's index in its registry. It is stable for the
// life of the registry.
func (a *Archetype) ID() int {
	return int(a.id)
}

// Key returns the component set of this archetype.
func (a *Archetype) Key() Bitset {
	return a.key
}

// Components returns the component ids of this archetype in ascending order.
func (a *Archetype) Components() []ComponentID {
	return a.key.IDs()
}

// Len returns the number of live entities.
func (a *Archetype) Len() int {
	return a.length
}

// Cap returns the number of allocated rows.
func (a *Archetype) Cap() int {
	return a.capacity
}

// EntityPool returns the pool of entity handles. Rows [0, Len()) are live.
func (a *Archetype) EntityPool() *Pool[*Entity] {
	return a.entities
}

// Entities returns the live entity handles in row order. The slice aliases
// the pool and is invalidated by the next structural change.
func (a *Archetype) Entities() []*Entity {
	return a.entities.Slice(a.length)
}

// HasComponent reports whether id is part of the archetype's key.
func (a *Archetype) HasComponent(id ComponentID) bool {
	return a.key.Contains(id)
}

// ComponentPool returns the column holding T in a. Rows [0, a.Len()) are live.
func ComponentPool[T any](a *Archetype) (*Pool[T], error) {
	id, err := ComponentIDOf[T](a.registry)
	if err != nil {
		return nil, err
	}
	col := a.columns[id]
	if col == nil {
		return nil, fmt.Errorf("archetype %s: %w: %s", a.key, ErrComponentNotFound, reflect.TypeFor[T]())
	}
	return col.(*Pool[T]), nil
}

func (a *Archetype) resize(n int) {
	a.capacity = n
	a.entities.Resize(n)
	for _, id := range a.ids {
		a.columns[id].resize(n)
	}
}

// reserve makes room for one more row.
func (a *Archetype) reserve() {
	if a.length == a.capacity {
		a.resize(a.capacity * 2)
	}
}

// initEntity appends e with every component set to its registered default.
func (a *Archetype) initEntity(e *Entity) {
	a.reserve()

	row := a.length
	a.entities.Set(row, e)
	for _, id := range a.ids {
		a.registry.components[id].reset(a.columns[id], row)
	}

	e.archetype = a
	e.row = row
	a.length++
}

// destroyEntity removes the given row by moving the last live row into it.
// Row order is not preserved.
func (a *Archetype) destroyEntity(row int) {
	last := a.length - 1
	if row != last {
		moved := a.entities.Get(last)
		a.entities.Set(row, moved)
		for _, id := range a.ids {
			col := a.columns[id]
			col.copyRow(col, row, last)
		}
		moved.row = row
	}

	a.entities.Clear(last)
	for _, id := range a.ids {
		a.columns[id].clear(last)
	}
	a.length = last

	if a.capacity > MinCapacity && a.length < a.capacity/2 {
		a.resize(a.capacity / 2)
	}
}

// holds reports whether e really lives in a at the row it records.
func (a *Archetype) holds(e *Entity) bool {
	return e.archetype == a &&
		e.row >= 0 && e.row < a.length &&
		a.entities.Get(e.row) == e
}

// moveEntity moves e from a into target, carrying over the components both
// archetypes share. Components only target has keep whatever the target slot
// holds; tail slots are cleared on removal, so that is the zero value.
func (a *Archetype) moveEntity(e *Entity, target *Archetype) error {
	if !a.holds(e) {
		return fmt.Errorf("move entity %d out of %s: %w", e.id, a.key, ErrEntityNotFound)
	}
	if target == a {
		return nil
	}

	target.reserve()
	dst := target.length
	target.entities.Set(dst, e)
	for _, id := range a.ids {
		if target.key.Contains(id) {
			a.columns[id].copyRow(target.columns[id], dst, e.row)
		}
	}
	target.length++

	// The source row must be read before compaction can move another
	// entity into it.
	a.destroyEntity(e.row)

	e.archetype = target
	e.row = dst
	return nil
}

func (a *Archetype) findNext(id ComponentID) (*Archetype, error) {
	if idx := a.next[id]; idx != noEdge {
		return a.registry.arena[idx], nil
	}
	next, err := a.registry.FindOrCreate(a.key.Add(id))
	if err != nil {
		return nil, err
	}
	a.next[id] = next.id
	return next, nil
}

func (a *Archetype) findPrev(id ComponentID) (*Archetype, error) {
	if idx := a.prev[id]; idx != noEdge {
		return a.registry.arena[idx], nil
	}
	prev, err := a.registry.FindOrCreate(a.key.Remove(id))
	if err != nil {
		return nil, err
	}
	a.prev[id] = prev.id
	return prev, nil
}

func (a *Archetype) String() string {
	return fmt.Sprintf("Archetype%s[%d/%d]", a.key, a.length, a.capacity)
}
