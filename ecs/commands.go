package ecs

import (
	"reflect"

	"github.com/kamstrup/intmap"
)

// Commands provides a buffer for deferred ECS operations that are executed at the end of a frame.
// This prevents structural changes to the ECS storage during system execution.
type Commands struct {
	spawns  []spawnCommand
	deletes []Entity
	inserts []insertCommand
	removes []removeComponentCommand
	defers  []deferCommand

	deleted *intmap.Set[Entity]
}

func newCommands() *Commands {
	return &Commands{
		deleted: intmap.NewSet[Entity](16),
	}
}

type deferCommand struct {
	fn func()
}

type spawnCommand struct {
	components []any
}

type insertCommand struct {
	entity     Entity
	components []any
}

type removeComponentCommand struct {
	entity   Entity
	compType reflect.Type
}

// Defer queues a function execution operation.
func (c *Commands) Defer(fn func()) {
	c.defers = append(c.defers, deferCommand{fn: fn})
}

// Spawn queues an entity spawn operation with the given components or bundles.
func (c *Commands) Spawn(components ...any) {
	c.spawns = append(c.spawns, spawnCommand{components: components})
}

// Delete queues an entity deletion operation.
func (c *Commands) Delete(entity Entity) {
	c.deletes = append(c.deletes, entity)
}

// AddComponent queues a component addition operation.
func (c *Commands) AddComponent(entity Entity, component any) {
	c.Insert(entity, component)
}

// Insert queues an atomic insertion of several components or bundles.
func (c *Commands) Insert(entity Entity, components ...any) {
	c.inserts = append(c.inserts, insertCommand{
		entity:     entity,
		components: components,
	})
}

// RemoveComponent queues a component removal operation.
func (c *Commands) RemoveComponent(entity Entity, compType reflect.Type) {
	c.removes = append(c.removes, removeComponentCommand{
		entity:   entity,
		compType: compType,
	})
}

// Flush flushes all commands to the provided storage, reseting the buffer state
func (c *Commands) Flush(storage *Storage) {
	for _, cmd := range c.deletes {
		storage.Delete(cmd)
		c.deleted.Add(cmd)
	}

	for _, cmd := range c.removes {
		if !c.deleted.Has(cmd.entity) {
			storage.RemoveComponent(cmd.entity, cmd.compType)
		}
	}

	for _, cmd := range c.inserts {
		if !c.deleted.Has(cmd.entity) {
			storage.Insert(cmd.entity, cmd.components...)
		}
	}

	for _, cmd := range c.spawns {
		storage.Spawn(cmd.components...)
	}

	for _, df := range c.defers {
		df.fn()
	}

	c.spawns = c.spawns[:0]
	c.deletes = c.deletes[:0]
	c.inserts = c.inserts[:0]
	c.removes = c.removes[:0]
	c.defers = c.defers[:0]
	c.deleted.Clear()
}
