package ecs

import (
	"fmt"
	"iter"
	"slices"
)

// Group is the working set of archetypes matching a filter. It is seeded from
// the registry once and then kept current by archetype-creation
// notifications, so iterating it never rescans the registry.
//
// Structural changes while iterating a group move rows under the iterator;
// queue them on Commands instead.
type Group struct {
	registry   *Registry
	filter     Filter
	archetypes []*Archetype
}

// NewGroup creates a group over every current and future archetype of r that
// matches f.
func NewGroup(r *Registry, f Filter) *Group {
	g := &Group{
		registry:   r,
		filter:     f,
		archetypes: r.ArchetypesMatching(f),
	}
	r.Watch(f, func(a *Archetype) {
		g.archetypes = append(g.archetypes, a)
	})
	return g
}

// Filter returns the filter the group was built from.
func (g *Group) Filter() Filter {
	return g.filter
}

// Archetypes returns a snapshot of the matching archetypes.
func (g *Group) Archetypes() []*Archetype {
	return slices.Clone(g.archetypes)
}

// Len returns the number of entities across all matching archetypes.
func (g *Group) Len() int {
	n := 0
	for _, a := range g.archetypes {
		n += a.length
	}
	return n
}

// Entities iterates over every live entity in the group.
func (g *Group) Entities() iter.Seq[*Entity] {
	return func(yield func(*Entity) bool) {
		for _, a := range g.archetypes {
			for _, e := range a.Entities() {
				if !yield(e) {
					return
				}
			}
		}
	}
}

// Each iterates over the entities of the group that have a T, together with a
// pointer to their T. Archetypes without a T are skipped, which only happens
// when T is not part of the group's all clause.
//
// Each panics with an error wrapping ErrUnregisteredComponent when T is not
// registered with the group's registry.
func Each[T any](g *Group) iter.Seq2[*Entity, *T] {
	id, err := ComponentIDOf[T](g.registry)
	if err != nil {
		panic(fmt.Errorf("each: %w", err))
	}

	return func(yield func(*Entity, *T) bool) {
		for _, a := range g.archetypes {
			if a.length == 0 || !a.HasComponent(id) {
				continue
			}
			pool := a.columns[id].(*Pool[T])
			entities := a.Entities()
			for row := range entities {
				if !yield(entities[row], pool.At(row)) {
					return
				}
			}
		}
	}
}
