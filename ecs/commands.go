package ecs

import (
	"errors"
	"reflect"

	"go.uber.org/zap"
)

// Commands provides a buffer for deferred structural changes that are applied
// at the end of a frame, so systems never move rows while iterating them.
type Commands struct {
	spawns  []spawnCommand
	deletes []EntityId
	adds    []addComponentCommand
	removes []removeComponentCommand
	defers  []deferCommand
}

func newCommands() *Commands {
	return &Commands{}
}

type deferCommand struct {
	fn func()
}

type spawnCommand struct {
	components []any
}

type addComponentCommand struct {
	entity    EntityId
	component any
}

type removeComponentCommand struct {
	entity   EntityId
	compType reflect.Type
}

// Defer queues a function execution operation.
func (c *Commands) Defer(fn func()) {
	c.defers = append(c.defers, deferCommand{fn: fn})
}

// Spawn queues an entity spawn operation with the given components.
func (c *Commands) Spawn(components ...any) {
	c.spawns = append(c.spawns, spawnCommand{components: components})
}

// Delete queues an entity deletion operation.
func (c *Commands) Delete(entity EntityId) {
	c.deletes = append(c.deletes, entity)
}

// AddComponent queues a component addition operation.
func (c *Commands) AddComponent(entity EntityId, component any) {
	c.adds = append(c.adds, addComponentCommand{
		entity:    entity,
		component: component,
	})
}

// RemoveComponent queues a component removal operation.
func (c *Commands) RemoveComponent(entity EntityId, compType reflect.Type) {
	c.removes = append(c.removes, removeComponentCommand{
		entity:   entity,
		compType: compType,
	})
}

// Len returns the number of queued operations.
func (c *Commands) Len() int {
	return len(c.spawns) + len(c.deletes) + len(c.adds) + len(c.removes) + len(c.defers)
}

// Flush applies all queued commands to the world in the order deletes,
// removes, adds, spawns, defers, and resets the buffer. Every command is
// attempted; the failures are returned joined.
func (c *Commands) Flush(world *World) error {
	var errs []error
	fail := func(op string, err error) {
		world.logger().Warn("command failed", zap.String("op", op), zap.Error(err))
		errs = append(errs, err)
	}

	deletedEntities := make(map[EntityId]bool)

	for _, cmd := range c.deletes {
		if err := world.Despawn(cmd); err != nil {
			fail("delete", err)
		}
		deletedEntities[cmd] = true
	}

	for _, cmd := range c.removes {
		if deletedEntities[cmd.entity] {
			continue
		}
		if err := world.RemoveComponent(cmd.entity, cmd.compType); err != nil {
			fail("remove", err)
		}
	}

	for _, cmd := range c.adds {
		if deletedEntities[cmd.entity] {
			continue
		}
		if err := world.AddComponent(cmd.entity, cmd.component); err != nil {
			fail("add", err)
		}
	}

	for _, cmd := range c.spawns {
		if _, err := world.Spawn(cmd.components...); err != nil {
			fail("spawn", err)
		}
	}

	for _, df := range c.defers {
		df.fn()
	}

	c.spawns = c.spawns[:0]
	c.deletes = c.deletes[:0]
	c.adds = c.adds[:0]
	c.removes = c.removes[:0]
	c.defers = c.defers[:0]

	return errors.Join(errs...)
}
