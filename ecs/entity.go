package ecs

import (
	"fmt"
	"reflect"
)

// EntityId is the number a registry hands out to every entity it creates.
// Ids start at 1 and are never reused.
type EntityId uint64

// Entity is a stable handle to an entity. Its data lives in a row of its
// current archetype; both fields change together whenever the entity moves.
type Entity struct {
	id        EntityId
	archetype *Archetype
	row       int
}

// NewEntity creates an entity with the given components, each initialised to
// its registered default. With no ids the entity starts in the empty
// archetype.
func NewEntity(r *Registry, ids ...ComponentID) (*Entity, error) {
	a, err := r.FindOrCreate(NewBitset(ids...))
	if err != nil {
		return nil, fmt.Errorf("new entity: %w", err)
	}

	e := &Entity{id: r.nextEntityId()}
	a.initEntity(e)
	return e, nil
}

// ID returns the entity's id.
func (e *Entity) ID() EntityId {
	return e.id
}

// Archetype returns the archetype currently holding the entity, or nil once
// it has been destroyed.
func (e *Entity) Archetype() *Archetype {
	return e.archetype
}

// Row returns the entity's row in its current archetype. Any structural
// change may alter it.
func (e *Entity) Row() int {
	return e.row
}

// Components returns the entity's current component set.
func (e *Entity) Components() Bitset {
	if e.archetype == nil {
		return Bitset{}
	}
	return e.archetype.key
}

// Alive reports whether the entity still occupies a row.
func (e *Entity) Alive() bool {
	return e.check() == nil
}

func (e *Entity) check() error {
	if e == nil || e.archetype == nil || !e.archetype.holds(e) {
		var id EntityId
		if e != nil {
			id = e.id
		}
		return fmt.Errorf("entity %d: %w", id, ErrEntityNotFound)
	}
	return nil
}

// Destroy removes the entity from its archetype. The handle is dead
// afterwards and every operation on it returns ErrEntityNotFound.
func (e *Entity) Destroy() error {
	if err := e.check(); err != nil {
		return err
	}
	e.archetype.destroyEntity(e.row)
	e.archetype = nil
	e.row = -1
	return nil
}

// AssignComponents moves the entity to the archetype for key. Components in
// both the old and new set keep their values; components new to the entity
// are set to their registered defaults.
func (e *Entity) AssignComponents(key Bitset) error {
	if err := e.check(); err != nil {
		return err
	}

	target, err := e.archetype.registry.FindOrCreate(key)
	if err != nil {
		return fmt.Errorf("assign components to entity %d: %w", e.id, err)
	}

	old := e.archetype.key
	if err := e.archetype.moveEntity(e, target); err != nil {
		return err
	}
	for _, id := range target.ids {
		if !old.Contains(id) {
			target.registry.components[id].reset(target.columns[id], e.row)
		}
	}
	return nil
}

// addID moves the entity along the add edge for id and returns the column
// that now holds its value.
func (e *Entity) addID(id ComponentID) (iColumn, error) {
	next, err := e.archetype.findNext(id)
	if err != nil {
		return nil, err
	}
	if err := e.archetype.moveEntity(e, next); err != nil {
		return nil, err
	}
	return next.columns[id], nil
}

func (e *Entity) removeID(id ComponentID) error {
	prev, err := e.archetype.findPrev(id)
	if err != nil {
		return err
	}
	return e.archetype.moveEntity(e, prev)
}

// AddComponent attaches v to the entity, moving it to the matching
// archetype. If the entity already has a T, it is overwritten.
func AddComponent[T any](e *Entity, v T) error {
	if err := e.check(); err != nil {
		return err
	}
	id, err := ComponentIDOf[T](e.archetype.registry)
	if err != nil {
		return err
	}

	col, err := e.addID(id)
	if err != nil {
		return err
	}
	col.(*Pool[T]).Set(e.row, v)
	return nil
}

// RemoveComponent detaches T from the entity and returns its last value.
func RemoveComponent[T any](e *Entity) (T, error) {
	var zero T
	if err := e.check(); err != nil {
		return zero, err
	}
	id, err := ComponentIDOf[T](e.archetype.registry)
	if err != nil {
		return zero, err
	}
	if !e.archetype.key.Contains(id) {
		return zero, fmt.Errorf("remove from entity %d: %w: %s", e.id, ErrComponentNotFound, reflect.TypeFor[T]())
	}

	v := e.archetype.columns[id].(*Pool[T]).Get(e.row)
	if err := e.removeID(id); err != nil {
		return zero, err
	}
	return v, nil
}

// HasComponent reports whether the entity has a T.
func HasComponent[T any](e *Entity) (bool, error) {
	if err := e.check(); err != nil {
		return false, err
	}
	id, err := ComponentIDOf[T](e.archetype.registry)
	if err != nil {
		return false, err
	}
	return e.archetype.key.Contains(id), nil
}

// GetComponent returns a pointer to the entity's T. The pointer is only valid
// until the next structural change to the entity's archetype.
func GetComponent[T any](e *Entity) (*T, error) {
	if err := e.check(); err != nil {
		return nil, err
	}
	id, err := ComponentIDOf[T](e.archetype.registry)
	if err != nil {
		return nil, err
	}
	col := e.archetype.columns[id]
	if col == nil {
		return nil, fmt.Errorf("get from entity %d: %w: %s", e.id, ErrComponentNotFound, reflect.TypeFor[T]())
	}
	return col.(*Pool[T]).At(e.row), nil
}
