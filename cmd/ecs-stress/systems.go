package main

import (
	"math/rand/v2"
	"reflect"

	"github.com/plus3/archstore/ecs"
)

type MovementSystem struct {
	Entities *ecs.Group
}

func (s *MovementSystem) Init(world *ecs.World) error {
	r := world.Registry()
	pos, err := ecs.ComponentIDOf[Position](r)
	if err != nil {
		return err
	}
	vel, err := ecs.ComponentIDOf[Velocity](r)
	if err != nil {
		return err
	}
	frozen, err := ecs.ComponentIDOf[Frozen](r)
	if err != nil {
		return err
	}
	s.Entities = ecs.NewGroup(r, ecs.Filter{}.All(pos, vel).None(frozen))
	return nil
}

func (s *MovementSystem) Execute(frame *ecs.UpdateFrame) {
	dt := float32(frame.DeltaTime)
	for e, p := range ecs.Each[Position](s.Entities) {
		v, err := ecs.GetComponent[Velocity](e)
		if err != nil {
			continue
		}
		p.X += v.DX * dt
		p.Y += v.DY * dt
	}
}

// LifetimeSystem counts lifetimes down and replaces expired entities with a
// fresh one so the population stays roughly constant.
type LifetimeSystem struct {
	Entities *ecs.Group
	Expired  int
}

func (s *LifetimeSystem) Init(world *ecs.World) error {
	lt, err := ecs.ComponentIDOf[Lifetime](world.Registry())
	if err != nil {
		return err
	}
	s.Entities = ecs.NewGroup(world.Registry(), ecs.Filter{}.All(lt))
	return nil
}

func (s *LifetimeSystem) Execute(frame *ecs.UpdateFrame) {
	for e, lt := range ecs.Each[Lifetime](s.Entities) {
		lt.Remaining -= frame.DeltaTime
		if lt.Remaining > 0 {
			continue
		}
		frame.Commands.Delete(e.ID())
		frame.Commands.Spawn(Position{}, Velocity{DX: 1}, Lifetime{Remaining: 5})
		s.Expired++
	}
}

type HealthSystem struct {
	Entities *ecs.Group
}

func (s *HealthSystem) Init(world *ecs.World) error {
	r := world.Registry()
	hp, err := ecs.ComponentIDOf[Health](r)
	if err != nil {
		return err
	}
	mass, err := ecs.ComponentIDOf[Mass](r)
	if err != nil {
		return err
	}
	team, err := ecs.ComponentIDOf[Team](r)
	if err != nil {
		return err
	}
	s.Entities = ecs.NewGroup(r, ecs.Filter{}.All(hp).Any(mass, team))
	return nil
}

func (s *HealthSystem) Execute(frame *ecs.UpdateFrame) {
	for _, h := range ecs.Each[Health](s.Entities) {
		if h.Current < h.Max {
			h.Current++
		}
	}
}

// ChurnSystem toggles a random component on up to PerTick random entities
// every frame. It drives archetype transitions, compaction and resizing.
type ChurnSystem struct {
	PerTick int
	Rand    *rand.Rand
	Added   int
	Removed int

	ids      []ecs.ComponentID
	registry *ecs.Registry
	all      *ecs.Group
}

func (s *ChurnSystem) Init(world *ecs.World) error {
	s.registry = world.Registry()
	s.all = ecs.NewGroup(s.registry, ecs.Filter{})
	for id := 0; id < s.registry.ComponentCount(); id++ {
		s.ids = append(s.ids, ecs.ComponentID(id))
	}
	return nil
}

func (s *ChurnSystem) pick() *ecs.Entity {
	archetypes := s.all.Archetypes()
	for range 8 {
		a := archetypes[s.Rand.IntN(len(archetypes))]
		if a.Len() == 0 {
			continue
		}
		return a.Entities()[s.Rand.IntN(a.Len())]
	}
	return nil
}

func (s *ChurnSystem) Execute(frame *ecs.UpdateFrame) {
	if len(s.ids) == 0 {
		return
	}
	touched := make(map[ecs.EntityId]bool, s.PerTick)
	for range s.PerTick {
		e := s.pick()
		if e == nil || touched[e.ID()] {
			continue
		}
		touched[e.ID()] = true
		id := s.ids[s.Rand.IntN(len(s.ids))]
		typ, _ := s.registry.ComponentType(id)

		if e.Components().Contains(id) {
			frame.Commands.RemoveComponent(e.ID(), typ)
			s.Removed++
		} else {
			frame.Commands.AddComponent(e.ID(), reflect.New(typ).Elem().Interface())
			s.Added++
		}
	}
}
