package main

import (
	"math/rand/v2"

	"github.com/plus3/archstore/ecs"
)

type Position struct{ X, Y float32 }

type Velocity struct{ DX, DY float32 }

type Health struct{ Current, Max int32 }

type Lifetime struct{ Remaining float64 }

type Mass struct{ Kg float32 }

type Team uint8

type Frozen struct{}

type Label struct{ Text string }

// registerComponents registers every stress component and returns their ids
// in registration order.
func registerComponents(r *ecs.Registry) ([]ecs.ComponentID, error) {
	register := []func(*ecs.Registry) (ecs.ComponentID, error){
		ecs.RegisterComponent[Position],
		ecs.RegisterComponent[Velocity],
		func(r *ecs.Registry) (ecs.ComponentID, error) {
			return ecs.RegisterComponentDefault(r, Health{Current: 100, Max: 100})
		},
		func(r *ecs.Registry) (ecs.ComponentID, error) {
			return ecs.RegisterComponentDefault(r, Lifetime{Remaining: 5})
		},
		ecs.RegisterComponent[Mass],
		ecs.RegisterComponent[Team],
		ecs.RegisterComponent[Frozen],
		ecs.RegisterComponent[Label],
	}

	ids := make([]ecs.ComponentID, 0, len(register))
	for _, fn := range register {
		id, err := fn(r)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// spawnRandomEntity creates an entity holding n distinct components picked
// from ids and adds it to the world's directory.
func spawnRandomEntity(world *ecs.World, rng *rand.Rand, ids []ecs.ComponentID, n int) (*ecs.Entity, error) {
	n = min(n, len(ids))
	picked := make([]ecs.ComponentID, n)
	for i, j := range rng.Perm(len(ids))[:n] {
		picked[i] = ids[j]
	}

	e, err := ecs.NewEntity(world.Registry(), picked...)
	if err != nil {
		return nil, err
	}
	if p, err := ecs.GetComponent[Position](e); err == nil {
		p.X, p.Y = rng.Float32()*1000, rng.Float32()*1000
	}
	if v, err := ecs.GetComponent[Velocity](e); err == nil {
		v.DX, v.DY = rng.Float32()*2-1, rng.Float32()*2-1
	}
	return e, world.Adopt(e)
}
