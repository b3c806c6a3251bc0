package ecs

import (
	"iter"
	"reflect"
	"unsafe"
)

var entityType = reflect.TypeFor[Entity]()

// View represents a query for entities with a specific combination of components
// The type T should be a struct with embedded pointer fields for each component type
// Named fields can be marked as optional using the `ecs:"optional"` struct tag
// A field of type Entity, if present, receives the entity being viewed
type View[T any] struct {
	storage     *Storage
	types       []reflect.Type
	optional    []bool
	fieldOffset []uintptr

	// offset of the Entity field, -1 if the struct has none
	entityOffset int
}

// NewView creates a new view for the given struct type
// The struct T should have embedded or named fields that are pointers to component types
// Embedded fields are always required
// Named fields can be marked as optional using the `ecs:"optional"` struct tag
func NewView[T any](storage *Storage) *View[T] {
	structType := reflect.TypeFor[T]()

	if structType.Kind() != reflect.Struct {
		panic("View type parameter must be a struct")
	}

	types := make([]reflect.Type, 0, structType.NumField())
	optional := make([]bool, 0, structType.NumField())
	fieldOffset := make([]uintptr, 0, structType.NumField())
	entityOffset := -1

	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		fieldType := field.Type

		if fieldType == entityType {
			if entityOffset != -1 {
				panic("View struct may only contain one Entity field")
			}
			entityOffset = int(field.Offset)
			continue
		}

		if fieldType.Kind() != reflect.Ptr {
			panic("View struct fields must be pointer types")
		}

		componentType := fieldType.Elem()
		types = append(types, componentType)
		fieldOffset = append(fieldOffset, field.Offset)

		// Parse struct tag to check if component is optional
		// Embedded fields (field.Anonymous) are always required
		isOptional := false
		if !field.Anonymous {
			tag := field.Tag.Get("ecs")
			if tag != "" {
				if tag == "optional" {
					isOptional = true
				} else {
					panic("invalid ecs tag value: \"" + tag + "\" (only \"optional\" is supported)")
				}
			}
		}
		optional = append(optional, isOptional)
	}

	return &View[T]{
		storage:      storage,
		types:        types,
		optional:     optional,
		fieldOffset:  fieldOffset,
		entityOffset: entityOffset,
	}
}

// Storage returns the storage the view reads from
func (v *View[T]) Storage() *Storage {
	return v.storage
}

// Fill populates the provided struct pointer with component data for the given entity
// Returns false if the entity is dead or missing any required components
// Optional components are set to nil if not present
func (v *View[T]) Fill(id Entity, ptr *T) bool {
	archetype, row, ok := v.storage.locate(id)
	if !ok {
		return false
	}

	// Use unsafe.Pointer to directly access the struct's memory
	// This avoids reflection overhead in the hot path
	structPtr := unsafe.Pointer(ptr)

	for i := 0; i < len(v.types); i++ {
		component := archetype.GetComponent(row, v.types[i])

		// Calculate the address of the field using the pre-computed offset
		fieldPtr := unsafe.Pointer(uintptr(structPtr) + v.fieldOffset[i])

		if component == nil {
			// If this is a required component, fail
			if !v.optional[i] {
				return false
			}
			// Optional component is missing, set field to nil
			*(*unsafe.Pointer)(fieldPtr) = nil
		} else {
			// Component found, extract the pointer from the interface{}
			componentPtr := (*iface)(unsafe.Pointer(&component)).data
			*(*unsafe.Pointer)(fieldPtr) = componentPtr
		}
	}

	v.setEntity(structPtr, id)
	return true
}

func (v *View[T]) setEntity(structPtr unsafe.Pointer, id Entity) {
	if v.entityOffset >= 0 {
		*(*Entity)(unsafe.Pointer(uintptr(structPtr) + uintptr(v.entityOffset))) = id
	}
}

// Get returns a populated view struct for the given entity, or nil if the entity
// doesn't have all the required components
func (v *View[T]) Get(id Entity) *T {
	var result T
	if !v.Fill(id, &result) {
		return nil
	}
	return &result
}

// Has reports whether the entity matches the view
func (v *View[T]) Has(id Entity) bool {
	archetype, _, ok := v.storage.locate(id)
	return ok && v.matchesArchetype(archetype)
}

// matchesArchetype checks if an archetype contains all the required component types for this view
// Optional components are not checked - they may or may not be present
func (v *View[T]) matchesArchetype(archetype *Archetype) bool {
	for i, requiredType := range v.types {
		// Skip optional components
		if v.optional[i] {
			continue
		}
		// Required component must be present
		if !archetype.HasComponent(requiredType) {
			return false
		}
	}
	return true
}

func (v *View[T]) buildStorageIndices(archetype *Archetype) []int {
	storageIndices := make([]int, len(v.types))
	for i, componentType := range v.types {
		storageIndices[i] = archetype.typeIndex(componentType)
	}
	return storageIndices
}

func (v *View[T]) populateResult(resultPtr unsafe.Pointer, archetype *Archetype, entityIndex int, storageIndices []int) bool {
	for i, storageIdx := range storageIndices {
		fieldPtr := unsafe.Pointer(uintptr(resultPtr) + v.fieldOffset[i])

		if storageIdx == -1 {
			if v.optional[i] {
				*(*unsafe.Pointer)(fieldPtr) = nil
				continue
			}
			return false
		}

		component := archetype.storages[storageIdx].Get(entityIndex)
		if component == nil {
			if v.optional[i] {
				*(*unsafe.Pointer)(fieldPtr) = nil
				continue
			}
			return false
		}

		componentPtr := (*iface)(unsafe.Pointer(&component)).data
		*(*unsafe.Pointer)(fieldPtr) = componentPtr
	}
	v.setEntity(resultPtr, archetype.entities[entityIndex])
	return true
}

// iterArchetype yields every entity of one archetype that satisfies the view
func (v *View[T]) iterArchetype(archetype *Archetype) iter.Seq2[Entity, T] {
	return func(yield func(Entity, T) bool) {
		if len(archetype.storages) == 0 || archetype.count == 0 {
			return
		}

		storageIndices := v.buildStorageIndices(archetype)
		firstStorage := archetype.storages[0]

		var result T
		resultPtr := unsafe.Pointer(&result)

		for entityIndex := range firstStorage.Iter() {
			if !v.populateResult(resultPtr, archetype, entityIndex, storageIndices) {
				continue
			}

			if !yield(archetype.entities[entityIndex], result) {
				return
			}
		}
	}
}

// Iter returns an iterator over all entities that have all the required components for this view
// The iterator yields (Entity, T) pairs where T is the populated view struct
// Optional components are set to nil if not present
func (v *View[T]) Iter() iter.Seq2[Entity, T] {
	return func(yield func(Entity, T) bool) {
		for _, archetype := range v.storage.archetypeList {
			if !v.matchesArchetype(archetype) {
				continue
			}

			for id, item := range v.iterArchetype(archetype) {
				if !yield(id, item) {
					return
				}
			}
		}
	}
}

// Values returns an iterator over just the view structs (without entity IDs)
// This is useful when you only care about the component data, not which entity it belongs to
func (v *View[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, value := range v.Iter() {
			if !yield(value) {
				return
			}
		}
	}
}

// Len counts the entities matching the view
func (v *View[T]) Len() int {
	count := 0
	for _, archetype := range v.storage.archetypeList {
		if v.matchesArchetype(archetype) {
			count += archetype.count
		}
	}
	return count
}

// Spawn creates a new entity with components extracted from the view struct
func (v *View[T]) Spawn(data T) Entity {
	structPtr := unsafe.Pointer(&data)

	components := make([]any, 0, len(v.types))
	for i := 0; i < len(v.types); i++ {
		fieldPtr := unsafe.Pointer(uintptr(structPtr) + v.fieldOffset[i])

		componentPtr := *(*unsafe.Pointer)(fieldPtr)

		if componentPtr == nil {
			if !v.optional[i] {
				panic("required component is nil in View.Spawn")
			}
			continue
		}

		component := reflect.NewAt(v.types[i], componentPtr).Elem().Interface()
		components = append(components, component)
	}

	if len(components) == 0 {
		panic("cannot spawn entity without components")
	}

	return v.storage.Spawn(components...)
}
