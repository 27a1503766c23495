package ecs

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/kamstrup/intmap"
	"go.uber.org/zap"
)

// componentInfo is the factory record kept for every registered type.
type componentInfo struct {
	typ       reflect.Type
	newColumn func(capacity int) iColumn
	reset     func(col iColumn, row int)
}

type watcher struct {
	filter Filter
	fn     func(*Archetype)
}

// Registry assigns component ids and interns archetypes. Every world owns its
// own Registry, so several independent worlds can live in one process.
//
// A Registry is not safe for concurrent use.
type Registry struct {
	ids        *intmap.Map[uintptr, ComponentID]
	components []componentInfo

	// arena holds archetypes by creation order; edge caches index into it.
	arena  []*Archetype
	sorted []*Archetype
	empty  *Archetype

	watchers  []watcher
	entitySeq EntityId
	log       *zap.Logger
}

// NewRegistry creates an empty registry holding only the empty archetype.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		ids:        intmap.New[uintptr, ComponentID](MaxComponents),
		components: make([]componentInfo, 0, 16),
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.empty = r.insertArchetype(0, Bitset{})
	return r
}

// RegisterComponent assigns the next component id to T. Registering the same
// type again returns the id it already has. Slots of T are initialised to
// the zero value.
func RegisterComponent[T any](r *Registry) (ComponentID, error) {
	var zero T
	return registerComponent(r, zero)
}

// RegisterComponentDefault is RegisterComponent with def as the value new
// slots are initialised to. def is copied by assignment, so reference types
// inside it are shared between entities.
func RegisterComponentDefault[T any](r *Registry, def T) (ComponentID, error) {
	return registerComponent(r, def)
}

// MustRegister is RegisterComponent that panics on error.
func MustRegister[T any](r *Registry) ComponentID {
	id, err := RegisterComponent[T](r)
	if err != nil {
		panic(err)
	}
	return id
}

func registerComponent[T any](r *Registry, def T) (ComponentID, error) {
	typ := reflect.TypeFor[T]()
	if id, ok := r.ids.Get(typeKey(typ)); ok {
		return id, nil
	}

	if len(r.components) >= MaxComponents {
		return 0, fmt.Errorf("register %s: %w (%d)", typ, ErrComponentLimit, MaxComponents)
	}

	id := ComponentID(len(r.components))
	r.components = append(r.components, componentInfo{
		typ: typ,
		newColumn: func(capacity int) iColumn {
			return newPool[T](capacity)
		},
		reset: func(col iColumn, row int) {
			col.(*Pool[T]).items[row] = def
		},
	})
	r.ids.Put(typeKey(typ), id)

	r.log.Debug("component registered",
		zap.Stringer("type", typ),
		zap.Uint8("id", uint8(id)),
	)
	return id, nil
}

// ComponentIDOf returns the id assigned to T.
func ComponentIDOf[T any](r *Registry) (ComponentID, error) {
	return r.idOf(reflect.TypeFor[T]())
}

func (r *Registry) idOf(typ reflect.Type) (ComponentID, error) {
	id, ok := r.ids.Get(typeKey(typ))
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnregisteredComponent, typ)
	}
	return id, nil
}

// ComponentType returns the type registered under id.
func (r *Registry) ComponentType(id ComponentID) (reflect.Type, bool) {
	if int(id) >= len(r.components) {
		return nil, false
	}
	return r.components[id].typ, true
}

// ComponentCount returns the number of registered component types.
func (r *Registry) ComponentCount() int {
	return len(r.components)
}

func (r *Registry) search(key Bitset) (int, bool) {
	return slices.BinarySearchFunc(r.sorted, key, func(a *Archetype, key Bitset) int {
		return a.key.Compare(key)
	})
}

// FindOrCreate returns the archetype for key, creating it on first use. Keys
// that are equal always map to the same archetype.
func (r *Registry) FindOrCreate(key Bitset) (*Archetype, error) {
	at, found := r.search(key)
	if found {
		return r.sorted[at], nil
	}

	for id := range key.Members() {
		if int(id) >= len(r.components) {
			return nil, fmt.Errorf("create archetype %s: %w: id %d", key, ErrUnregisteredComponent, id)
		}
	}

	a := r.insertArchetype(at, key)
	r.log.Debug("archetype created",
		zap.Stringer("key", key),
		zap.Int32("index", a.id),
		zap.Int("archetypes", len(r.arena)),
	)

	for _, w := range r.watchers {
		if w.filter.Matches(key) {
			w.fn(a)
		}
	}
	return a, nil
}

func (r *Registry) insertArchetype(at int, key Bitset) *Archetype {
	a := newArchetype(r, int32(len(r.arena)), key)
	r.arena = append(r.arena, a)
	r.sorted = slices.Insert(r.sorted, at, a)
	return a
}

// Empty returns the archetype with no components.
func (r *Registry) Empty() *Archetype {
	return r.empty
}

// Archetypes returns every archetype in key order. The slice is a snapshot.
func (r *Registry) Archetypes() []*Archetype {
	return slices.Clone(r.sorted)
}

// ArchetypesMatching returns the archetypes whose key satisfies f, in key
// order. The slice is a snapshot and does not track later creations.
func (r *Registry) ArchetypesMatching(f Filter) []*Archetype {
	var matched []*Archetype
	for _, a := range r.sorted {
		if f.Matches(a.key) {
			matched = append(matched, a)
		}
	}
	return matched
}

// Watch registers fn to be called for every archetype created from now on
// whose key satisfies f. Existing archetypes are not replayed; pair it with
// ArchetypesMatching to seed a working set.
func (r *Registry) Watch(f Filter, fn func(*Archetype)) {
	r.watchers = append(r.watchers, watcher{filter: f, fn: fn})
}

func (r *Registry) nextEntityId() EntityId {
	r.entitySeq++
	return r.entitySeq
}
