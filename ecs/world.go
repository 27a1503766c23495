package ecs

import (
	"fmt"
	"reflect"

	"github.com/kamstrup/intmap"
	"go.uber.org/zap"
)

// World is the type-erased front end over a Registry. It keeps a directory of
// live entities by id so callers that only hold an EntityId, like the command
// buffer, can reach them.
type World struct {
	registry *Registry
	entities *intmap.Map[EntityId, *Entity]
}

// NewWorld creates a world on top of the given registry.
func NewWorld(registry *Registry) *World {
	return &World{
		registry: registry,
		entities: intmap.New[EntityId, *Entity](1024),
	}
}

// Registry returns the registry backing the world.
func (w *World) Registry() *Registry {
	return w.registry
}

// Len returns the number of live entities spawned through or adopted by the
// world. Entries for entities destroyed through their handle are pruned first,
// which makes Len linear in the directory size.
func (w *World) Len() int {
	var dead []EntityId
	for id, e := range w.entities.All() {
		if !e.Alive() {
			dead = append(dead, id)
		}
	}
	for _, id := range dead {
		w.entities.Del(id)
	}
	return w.entities.Len()
}

// Entity returns the handle for id if the entity is still alive.
func (w *World) Entity(id EntityId) (*Entity, bool) {
	e, err := w.lookup(id)
	return e, err == nil
}

// resolve returns the component id for a value passed as T or *T. The value's
// own type is tried first, so pointer component types resolve as themselves.
func (w *World) resolve(component any) (ComponentID, error) {
	if component == nil {
		return 0, fmt.Errorf("%w: nil component", ErrTypeMismatch)
	}
	typ := reflect.TypeOf(component)
	if id, ok := w.registry.ids.Get(typeKey(typ)); ok {
		return id, nil
	}
	if typ.Kind() != reflect.Ptr {
		return 0, fmt.Errorf("%w: %s", ErrUnregisteredComponent, typ)
	}
	if reflect.ValueOf(component).IsNil() {
		return 0, fmt.Errorf("%w: nil %s", ErrTypeMismatch, typ)
	}
	return w.registry.idOf(typ.Elem())
}

// Spawn creates an entity holding the given components. Values may be passed
// as T or *T; every type must be registered.
func (w *World) Spawn(components ...any) (*Entity, error) {
	ids := make([]ComponentID, len(components))
	for i, comp := range components {
		id, err := w.resolve(comp)
		if err != nil {
			return nil, fmt.Errorf("spawn: %w", err)
		}
		ids[i] = id
	}

	a, err := w.registry.FindOrCreate(NewBitset(ids...))
	if err != nil {
		return nil, fmt.Errorf("spawn: %w", err)
	}

	e := &Entity{}
	a.initEntity(e)
	for i, comp := range components {
		if err := a.columns[ids[i]].set(e.row, comp); err != nil {
			a.destroyEntity(e.row)
			return nil, fmt.Errorf("spawn: %w", err)
		}
	}

	// the id is only taken once the entity is committed
	e.id = w.registry.nextEntityId()
	w.entities.Put(e.id, e)
	return e, nil
}

// Adopt adds an entity created directly on the registry to the directory.
func (w *World) Adopt(e *Entity) error {
	if err := e.check(); err != nil {
		return err
	}
	if e.archetype.registry != w.registry {
		return fmt.Errorf("adopt entity %d: %w: foreign registry", e.id, ErrEntityNotFound)
	}
	w.entities.Put(e.id, e)
	return nil
}

// lookup returns the live entity for id. A directory entry whose entity was
// destroyed through its handle is dropped.
func (w *World) lookup(id EntityId) (*Entity, error) {
	e, ok := w.entities.Get(id)
	if ok && !e.Alive() {
		w.entities.Del(id)
		ok = false
	}
	if !ok {
		return nil, fmt.Errorf("entity %d: %w", id, ErrEntityNotFound)
	}
	return e, nil
}

// Despawn destroys the entity and drops it from the directory.
func (w *World) Despawn(id EntityId) error {
	e, err := w.lookup(id)
	if err != nil {
		return err
	}
	w.entities.Del(id)
	return e.Destroy()
}

// AddComponent attaches component to the entity, replacing an existing value
// of the same type.
func (w *World) AddComponent(id EntityId, component any) error {
	e, err := w.lookup(id)
	if err != nil {
		return err
	}
	cid, err := w.resolve(component)
	if err != nil {
		return err
	}

	col, err := e.addID(cid)
	if err != nil {
		return err
	}
	return col.set(e.row, component)
}

// RemoveComponent detaches the component of type typ from the entity.
func (w *World) RemoveComponent(id EntityId, typ reflect.Type) error {
	e, err := w.lookup(id)
	if err != nil {
		return err
	}
	cid, err := w.registry.idOf(typ)
	if err != nil {
		return err
	}
	if err := e.check(); err != nil {
		return err
	}
	if !e.archetype.key.Contains(cid) {
		return fmt.Errorf("remove from entity %d: %w: %s", id, ErrComponentNotFound, typ)
	}
	return e.removeID(cid)
}

// GetComponent returns a pointer to the entity's component of type typ,
// wrapped in an interface.
func (w *World) GetComponent(id EntityId, typ reflect.Type) (any, error) {
	e, err := w.lookup(id)
	if err != nil {
		return nil, err
	}
	cid, err := w.registry.idOf(typ)
	if err != nil {
		return nil, err
	}
	if err := e.check(); err != nil {
		return nil, err
	}
	col := e.archetype.columns[cid]
	if col == nil {
		return nil, fmt.Errorf("get from entity %d: %w: %s", id, ErrComponentNotFound, typ)
	}
	return col.get(e.row), nil
}

// HasComponent reports whether the entity exists and has a component of type typ.
func (w *World) HasComponent(id EntityId, typ reflect.Type) bool {
	e, ok := w.entities.Get(id)
	if !ok || !e.Alive() {
		return false
	}
	cid, err := w.registry.idOf(typ)
	if err != nil {
		return false
	}
	return e.archetype.key.Contains(cid)
}

// ReadComponent is the typed form of World.GetComponent.
func ReadComponent[T any](w *World, id EntityId) (*T, error) {
	e, err := w.lookup(id)
	if err != nil {
		return nil, err
	}
	return GetComponent[T](e)
}

func (w *World) logger() *zap.Logger {
	return w.registry.log
}
