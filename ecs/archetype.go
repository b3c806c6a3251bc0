package ecs

import (
	"reflect"
	"slices"
)

type byTypeName []reflect.Type

func (a byTypeName) Len() int           { return len(a) }
func (a byTypeName) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }
func (a byTypeName) Less(i, j int) bool { return a[i].String() < a[j].String() }

// Archetype represents a unique combination of component types
type Archetype struct {
	id       uint32
	types    []reflect.Type
	storages []iComponentStorage
	// entities maps a storage row back to the entity living in it (zero when the row is free)
	entities []Entity
	count    int
}

// NewArchetype creates a new archetype with the given ID and sorted component types
func NewArchetype(id uint32, types []reflect.Type, registry *ComponentRegistry) *Archetype {
	a := &Archetype{
		id:       id,
		types:    types,
		storages: make([]iComponentStorage, len(types)),
	}

	// Initialize storage for each component type
	for idx, typ := range types {
		factory := registry.getFactory(typ)
		if factory == nil {
			panic("component type " + typ.String() + " not registered")
		}
		a.storages[idx] = factory()
	}

	return a
}

// Spawn stores the components of entity in this archetype and returns the storage row.
// components and ticks are parallel slices ordered like the archetype's types.
func (a *Archetype) Spawn(entity Entity, components []any, ticks []ComponentTicks) uint32 {
	var storagePos int
	for idx, comp := range components {
		storagePos = a.storages[idx].Append(comp, ticks[idx])
	}

	row := uint32(storagePos)
	for int(row) >= len(a.entities) {
		a.entities = append(a.entities, 0)
	}
	a.entities[row] = entity
	a.count++
	return row
}

func (a *Archetype) typeIndex(compType reflect.Type) int {
	for i, typ := range a.types {
		if typ == compType {
			return i
		}
	}
	return -1
}

// GetComponent returns a pointer to the component of the given type stored at row
func (a *Archetype) GetComponent(row uint32, compType reflect.Type) any {
	idx := a.typeIndex(compType)
	if idx == -1 {
		return nil
	}

	return a.storages[idx].Get(int(row))
}

func (a *Archetype) componentTicks(row uint32, compType reflect.Type) *ComponentTicks {
	idx := a.typeIndex(compType)
	if idx == -1 {
		return nil
	}
	return a.storages[idx].Ticks(int(row))
}

// Delete marks a row's components as deleted.
// Rows of other entities remain stable - the slot is simply marked as empty
func (a *Archetype) Delete(row uint32) {
	if int(row) >= len(a.entities) || a.entities[row] == 0 {
		return
	}
	for _, storage := range a.storages {
		storage.Delete(int(row))
	}
	a.entities[row] = 0
	a.count--
}

// HasComponent checks if this archetype has the given component type
func (a *Archetype) HasComponent(compType reflect.Type) bool {
	return slices.Contains(a.types, compType)
}

// ID returns the archetype's unique identifier
func (a *Archetype) ID() uint32 {
	return a.id
}

// Types returns the sorted component types for this archetype
func (a *Archetype) Types() []reflect.Type {
	return a.types
}

// Len returns the number of live entities stored in the archetype
func (a *Archetype) Len() int {
	return a.count
}

// compact reorganizes all component storage to eliminate empty slots and reduce fragmentation.
// It returns the old row -> new row mapping so the caller can relocate entities.
func (a *Archetype) compact() map[int]int {
	if len(a.storages) == 0 {
		return nil
	}

	// Compact the first storage and use it as the canonical index mapping
	indexMap := a.storages[0].Compact()
	for i := 1; i < len(a.storages); i++ {
		a.storages[i].Compact()
	}

	entities := make([]Entity, len(indexMap))
	for oldRow, newRow := range indexMap {
		entities[newRow] = a.entities[oldRow]
	}
	a.entities = entities

	return indexMap
}

// Iter returns an iterator over all live entities in this archetype, paired with their row
func (a *Archetype) Iter() func(yield func(Entity, uint32) bool) {
	return func(yield func(Entity, uint32) bool) {
		if len(a.storages) == 0 {
			return
		}

		for index := range a.storages[0].Iter() {
			if !yield(a.entities[index], uint32(index)) {
				return
			}
		}
	}
}
