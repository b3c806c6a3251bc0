package ecs

import (
	"reflect"
	"unsafe"
)

// singletonEntry holds the boxed value of a singleton component
type singletonEntry struct {
	value   reflect.Value
	dataPtr unsafe.Pointer
}

// AddSingleton stores value as the singleton of its type, replacing any previous one.
// Existing Singleton accessors keep pointing at the old value until re-initialized.
func (s *Storage) AddSingleton(value any) {
	valueType := reflect.TypeOf(value)
	boxed := reflect.New(valueType)
	boxed.Elem().Set(reflect.ValueOf(value))
	s.singletons[valueType] = &singletonEntry{
		value:   boxed,
		dataPtr: boxed.UnsafePointer(),
	}
}

// RemoveSingleton deletes the singleton of the given type
func (s *Storage) RemoveSingleton(valueType reflect.Type) {
	delete(s.singletons, valueType)
}

// ReadSingleton points target (a **T) at the singleton of type T.
// Returns false, leaving target untouched, when no such singleton exists.
func (s *Storage) ReadSingleton(target any) bool {
	ptr := reflect.ValueOf(target)
	if ptr.Kind() != reflect.Ptr || ptr.Elem().Kind() != reflect.Ptr {
		panic("ReadSingleton target must be a pointer to a pointer")
	}
	entry := s.getSingletonEntry(ptr.Elem().Type().Elem())
	if entry == nil {
		return false
	}
	ptr.Elem().Set(entry.value)
	return true
}

func (s *Storage) getSingletonEntry(valueType reflect.Type) *singletonEntry {
	return s.singletons[valueType]
}

// Singleton provides efficient access to a single component instance
// that is not associated with any entity. Use this for global game state,
// configuration, or other singleton data.
type Singleton[T any] struct {
	storage       *Storage
	componentPtr  unsafe.Pointer
	componentType reflect.Type
}

// NewSingleton creates a new Singleton accessor for the given storage.
// If initializer is provided and the singleton doesn't exist in storage,
// it will be created with the initializer value. Otherwise, a zero value is used.
// This guarantees the singleton exists in storage after the call.
func NewSingleton[T any](storage *Storage, initializer ...T) *Singleton[T] {
	componentType := reflect.TypeFor[T]()

	// Check if singleton already exists
	entry := storage.getSingletonEntry(componentType)
	if entry == nil {
		// Create the singleton with initializer or zero value
		var value T
		if len(initializer) > 0 {
			value = initializer[0]
		}
		storage.AddSingleton(value)
		entry = storage.getSingletonEntry(componentType)
	}

	return &Singleton[T]{
		storage:       storage,
		componentPtr:  entry.dataPtr,
		componentType: componentType,
	}
}

// Init initializes the Singleton with a storage reference.
// This is called automatically by the Scheduler during system registration.
func (s *Singleton[T]) Init(storage *Storage) {
	s.storage = storage
	s.componentType = reflect.TypeFor[T]()
	s.updateCache()
}

// Get returns a pointer to the singleton component.
// Returns nil if the singleton has not been added to storage.
func (s *Singleton[T]) Get() *T {
	if s.componentPtr == nil {
		s.updateCache()
	}
	if s.componentPtr == nil {
		return nil
	}
	return (*T)(s.componentPtr)
}

// updateCache refreshes the cached pointer from storage
func (s *Singleton[T]) updateCache() {
	if s.storage == nil {
		return
	}
	entry := s.storage.getSingletonEntry(s.componentType)
	if entry != nil {
		s.componentPtr = entry.dataPtr
	} else {
		s.componentPtr = nil
	}
}

// Exists returns true if the singleton component has been added to storage
func (s *Singleton[T]) Exists() bool {
	if s.componentPtr == nil {
		s.updateCache()
	}
	return s.componentPtr != nil
}
